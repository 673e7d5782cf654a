package cli

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/fdkevin0/v2md"
	"github.com/fdkevin0/v2md/internal/configsource"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type runtimeConfig struct {
	App        *v2md.Config
	Debug      bool
	ConfigFile string
}

type runtimeConfigValues struct {
	v2md.Config `mapstructure:",squash"`
	Debug       bool `mapstructure:"debug"`
}

func buildRuntimeConfig(cmd *cobra.Command) (*runtimeConfig, error) {
	v, err := configsource.NewViperForCommand(cmd, flagConfigFile)
	if err != nil {
		return nil, err
	}

	values := runtimeConfigValues{
		Config: *v2md.NewDefaultConfig(),
	}
	if err := v.Unmarshal(&values, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	))); err != nil {
		return nil, fmt.Errorf("反序列化配置失败: %w", err)
	}

	values.BaseURL = strings.TrimRight(strings.TrimSpace(values.BaseURL), "/")
	values.HTTPCookieFile = strings.TrimSpace(values.HTTPCookieFile)
	values.HTTPUserAgent = strings.TrimSpace(values.HTTPUserAgent)
	values.DataDir = strings.TrimSpace(values.DataDir)

	cfg := &runtimeConfig{
		App:        &values.Config,
		Debug:      values.Debug,
		ConfigFile: v.ConfigFileUsed(),
	}

	if err := validateRuntimeConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateRuntimeConfig(cfg *runtimeConfig) error {
	if cfg.App.BaseURL == "" {
		return fmt.Errorf("base-url 不能为空")
	}
	if cfg.App.HTTPTimeout <= 0 {
		return fmt.Errorf("timeout 必须大于 0")
	}
	if cfg.App.HTTPRatePerSecond < 0 {
		return fmt.Errorf("rate-per-second 不能为负数")
	}
	if cfg.App.HTTPRateBurst < 0 {
		return fmt.Errorf("rate-burst 不能为负数")
	}
	if cfg.App.DataDir == "" {
		return fmt.Errorf("data-dir 不能为空")
	}
	return nil
}

func durationDecodeHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType {
			return data, nil
		}

		switch value := data.(type) {
		case int:
			return time.Duration(value) * time.Second, nil
		case int64:
			return time.Duration(value) * time.Second, nil
		case float64:
			return time.Duration(value * float64(time.Second)), nil
		case string:
			trimmed := strings.TrimSpace(value)
			if trimmed == "" {
				return time.Duration(0), nil
			}
			if strings.ContainsAny(trimmed, "hmsuµns") {
				return time.ParseDuration(trimmed)
			}
			return time.ParseDuration(trimmed + "s")
		default:
			return data, nil
		}
	}
}
