package v2md

import (
	"path/filepath"
	"time"
)

// Config 应用配置
type Config struct {
	BaseURL string `mapstructure:"base_url" toml:"base_url"` // 论坛基础URL

	// HTTP 配置
	HTTPTimeout          time.Duration `mapstructure:"timeout" toml:"timeout"`                     // 请求超时时间
	HTTPUserAgent        string        `mapstructure:"user_agent" toml:"user_agent"`               // User-Agent
	HTTPRatePerSecond    float64       `mapstructure:"rate_per_second" toml:"rate_per_second"`     // 每秒请求数
	HTTPRateBurst        int           `mapstructure:"rate_burst" toml:"rate_burst"`               // 突发请求数
	HTTPCloudflareBypass bool          `mapstructure:"cloudflare_bypass" toml:"cloudflare_bypass"` // 是否启用 Cloudflare 绕过
	HTTPCookieFile       string        `mapstructure:"cookie_file" toml:"cookie_file"`             // Cookie文件路径

	// 本地数据
	DataDir      string `mapstructure:"data_dir" toml:"data_dir"`           // 本地数据目录
	HistoryLimit int    `mapstructure:"history_limit" toml:"history_limit"` // 浏览历史上限
}

// NewDefaultConfig 创建默认配置
func NewDefaultConfig() *Config {
	return &Config{
		BaseURL:              "https://www.v2ex.com",
		HTTPTimeout:          30 * time.Second,
		HTTPUserAgent:        "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
		HTTPRatePerSecond:    1,
		HTTPRateBurst:        5,
		HTTPCloudflareBypass: false,
		HTTPCookieFile:       DefaultCookieFile(appName),
		DataDir:              DefaultDataDir(appName),
		HistoryLimit:         DefaultHistoryLimit,
	}
}

// TopicStoreDir returns the directory that holds saved topics.
func (c *Config) TopicStoreDir() string {
	return filepath.Join(c.DataDir, "topics")
}

// HistoryDBPath returns the sqlite file of the reading history.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// TransportOptions converts the HTTP part of the config.
func (c *Config) TransportOptions() TransportOptions {
	return TransportOptions{
		BaseURL:          c.BaseURL,
		Timeout:          c.HTTPTimeout,
		UserAgent:        c.HTTPUserAgent,
		RatePerSecond:    c.HTTPRatePerSecond,
		RateBurst:        c.HTTPRateBurst,
		CloudflareBypass: c.HTTPCloudflareBypass,
	}
}
