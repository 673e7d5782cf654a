package configsource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fdkevin0/v2md"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "V2MD"
	configEnv      = envPrefix + "_CONFIG"
	configFileName = "v2md.toml"
)

// NewViperForCommand layers defaults, the config file, V2MD_* environment
// variables and the flags of cmd, in increasing priority.
func NewViperForCommand(cmd *cobra.Command, configFlagValue string) (*viper.Viper, error) {
	v := viper.New()
	applyViperDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := bindViperFlags(v, cmd); err != nil {
		return nil, err
	}

	configPath, explicit, err := resolveConfigFilePath(cmd, configFlagValue)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok && !explicit {
				return v, nil
			}
			return nil, fmt.Errorf("读取配置文件失败 %q: %w", configPath, err)
		}
	}

	return v, nil
}

func applyViperDefaults(v *viper.Viper) {
	defaultConfig := v2md.NewDefaultConfig()
	v.SetDefault("base_url", defaultConfig.BaseURL)
	v.SetDefault("timeout", int(defaultConfig.HTTPTimeout.Seconds()))
	v.SetDefault("user_agent", defaultConfig.HTTPUserAgent)
	v.SetDefault("rate_per_second", defaultConfig.HTTPRatePerSecond)
	v.SetDefault("rate_burst", defaultConfig.HTTPRateBurst)
	v.SetDefault("cloudflare_bypass", defaultConfig.HTTPCloudflareBypass)
	v.SetDefault("cookie_file", defaultConfig.HTTPCookieFile)
	v.SetDefault("data_dir", defaultConfig.DataDir)
	v.SetDefault("history_limit", defaultConfig.HistoryLimit)
	v.SetDefault("debug", false)
}

func bindViperFlags(v *viper.Viper, cmd *cobra.Command) error {
	visited := make(map[string]struct{})
	var bindErr error
	bindFlag := func(f *pflag.Flag) {
		if f == nil || bindErr != nil {
			return
		}
		if _, ok := visited[f.Name]; ok {
			return
		}
		visited[f.Name] = struct{}{}
		configName := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(configName, f); err != nil {
			bindErr = fmt.Errorf("绑定 flag %q 到 key %q 失败: %w", f.Name, configName, err)
		}
	}

	cmd.Flags().VisitAll(bindFlag)
	cmd.InheritedFlags().VisitAll(bindFlag)
	return bindErr
}

func resolveConfigFilePath(cmd *cobra.Command, configFlagValue string) (string, bool, error) {
	if flagChanged(cmd, "config") {
		path := strings.TrimSpace(configFlagValue)
		if path == "" {
			return "", true, errors.New("--config 不能为空")
		}
		return path, true, nil
	}

	if value := strings.TrimSpace(os.Getenv(configEnv)); value != "" {
		return value, true, nil
	}

	candidates := []string{
		filepath.Join(".", configFileName),
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil && userConfigDir != "" {
		candidates = append(candidates, filepath.Join(userConfigDir, "v2md", "config.toml"))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, false, nil
		}
	}

	return "", false, nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Changed
	}
	if f := cmd.InheritedFlags().Lookup(name); f != nil {
		return f.Changed
	}
	return false
}
