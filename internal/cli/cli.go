package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/fdkevin0/v2md"
	"github.com/spf13/cobra"
)

var (
	// 全局参数
	flagConfigFile       string
	flagBaseURL          string
	flagTimeout          int
	flagUserAgent        string
	flagRatePerSecond    float64
	flagRateBurst        int
	flagCloudflareBypass bool
	flagCookieFile       string
	flagDataDir          string
	flagHistoryLimit     int
	flagDebug            bool

	// Cookie相关参数
	flagCookieImportFile string
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "v2md",
	Short: "V2EX 命令行客户端 - 浏览主题、管理收藏并导出为Markdown",
	Long: `v2md 通过抓取 V2EX 网页实现一个命令行客户端。
支持功能：
- 浏览热门、最新、节点与收藏的主题列表
- 阅读主题与回复，保存到本地库并导出为Markdown
- 回复、收藏主题，关注节点与用户
- 查看提醒、余额，领取每日登录奖励
- 账号密码登录（含两步验证）或导入浏览器Cookie`,
	Example: `  # 查看热门主题
  v2md tab hot

  # 阅读主题并保存到本地库
  v2md topic 1024 --all --save --images

  # 导入浏览器导出的Cookie
  v2md cookie import --file=./cookies.txt`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		v2md.InitLogger(flagDebug)
	},
	SilenceUsage: true,
}

// cookieCmd cookie管理命令
var cookieCmd = &cobra.Command{
	Use:   "cookie",
	Short: "Cookie管理工具",
	Long:  `管理和操作Cookie数据`,
}

// cookieImportCmd cookie导入命令
var cookieImportCmd = &cobra.Command{
	Use:   "import",
	Short: "导入 Netscape 格式的 Cookie 文件",
	Long:  `导入浏览器导出的 Netscape 格式 Cookie 文件，合并到本地 Cookie 库`,
	Example: `  # Import a Netscape cookie file
  v2md cookie import --file=./cookies.txt`,
	RunE: runCookieImport,
}

func init() {
	config := v2md.NewDefaultConfig()

	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "配置文件路径 (TOML)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", config.BaseURL, "论坛基础URL")
	rootCmd.PersistentFlags().IntVar(&flagTimeout, "timeout", int(config.HTTPTimeout.Seconds()), "HTTP请求超时(秒)")
	rootCmd.PersistentFlags().StringVar(&flagUserAgent, "user-agent", config.HTTPUserAgent, "User-Agent")
	rootCmd.PersistentFlags().Float64Var(&flagRatePerSecond, "rate-per-second", config.HTTPRatePerSecond, "每秒请求数，0 表示不限速")
	rootCmd.PersistentFlags().IntVar(&flagRateBurst, "rate-burst", config.HTTPRateBurst, "突发请求数")
	rootCmd.PersistentFlags().BoolVar(&flagCloudflareBypass, "cloudflare-bypass", config.HTTPCloudflareBypass, "启用 Cloudflare 绕过")
	rootCmd.PersistentFlags().StringVar(&flagCookieFile, "cookie-file", config.HTTPCookieFile, "Cookie 库路径 (TOML)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", config.DataDir, "本地数据目录")
	rootCmd.PersistentFlags().IntVar(&flagHistoryLimit, "history-limit", config.HistoryLimit, "浏览历史上限")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "启用调试日志")

	rootCmd.AddCommand(cookieCmd)
	cookieCmd.AddCommand(cookieImportCmd)
	cookieImportCmd.Flags().StringVar(&flagCookieImportFile, "file", "", "Cookie file path (Netscape format)")

	registerTopicCommands(rootCmd)
	registerActionCommands(rootCmd)
	registerAccountCommands(rootCmd)
}

// Execute 执行命令行程序
func Execute() error {
	return rootCmd.Execute()
}

// app 一次命令执行所需的依赖
type app struct {
	cfg     *runtimeConfig
	cookies *v2md.CookieManager
	forum   *v2md.Forum
	out     io.Writer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := buildRuntimeConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		v2md.InitLogger(true)
	}
	if cfg.ConfigFile != "" {
		slog.Debug("Using config file", "path", cfg.ConfigFile)
	}

	cookies := v2md.NewCookieManager()
	if err := cookies.LoadFromFile(cfg.App.HTTPCookieFile); err != nil {
		return nil, fmt.Errorf("加载Cookie失败: %w", err)
	}

	transport, err := v2md.NewRestyTransport(cfg.App.TransportOptions(), cookies)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP客户端失败: %w", err)
	}

	return &app{
		cfg:     cfg,
		cookies: cookies,
		forum:   v2md.NewForum(transport, cfg.App.BaseURL),
		out:     cmd.OutOrStdout(),
	}, nil
}

// saveCookies writes the jar back so renewed session cookies survive the run.
func (a *app) saveCookies() {
	if err := a.cookies.SaveToFile(a.cfg.App.HTTPCookieFile); err != nil {
		slog.Warn("Failed to save cookies", "path", a.cfg.App.HTTPCookieFile, "error", err)
	}
}

func (a *app) requireLogin() error {
	if !a.cookies.IsLoggedIn() {
		return v2md.NewAuthError("未登录，请先执行 v2md login 或 v2md cookie import")
	}
	return nil
}

// runCookieImport 运行 cookie 导入命令
func runCookieImport(cmd *cobra.Command, args []string) error {
	if flagCookieImportFile == "" {
		return fmt.Errorf("missing required flag: --file")
	}

	cfg, err := buildRuntimeConfig(cmd)
	if err != nil {
		return err
	}
	destPath := cfg.App.HTTPCookieFile

	cm := v2md.NewCookieManager()
	if err := cm.LoadFromFile(destPath); err != nil {
		return fmt.Errorf("failed to load cookie cache: %v", err)
	}

	f, err := os.Open(flagCookieImportFile)
	if err != nil {
		return fmt.Errorf("failed to open cookie file: %v", err)
	}
	defer f.Close()

	n, err := cm.ImportNetscape(f)
	if err != nil {
		return fmt.Errorf("failed to import cookie file: %v", err)
	}
	if err := cm.SaveToFile(destPath); err != nil {
		return fmt.Errorf("failed to save cookie file: %v", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cookies into %s\n", n, destPath)
	if !cm.IsLoggedIn() {
		fmt.Fprintf(cmd.OutOrStdout(), "Warning: no %s cookie found, requests will be anonymous\n", v2md.LoginCookieName)
	}
	return nil
}

func parseIDArg(kind, arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, v2md.NewValidationError(fmt.Sprintf("无效的%s: %q", kind, arg))
	}
	return id, nil
}
