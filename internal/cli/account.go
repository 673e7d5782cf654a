package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fdkevin0/v2md"
	"github.com/spf13/cobra"
)

var (
	flagMemberTopics  bool
	flagMemberReplies bool
	flagLoginUsername string
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "显示当前登录用户",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.saveCookies()

		user, err := a.forum.CurrentUser(cmd.Context())
		if err != nil {
			return fmt.Errorf("获取当前用户失败: %w", err)
		}
		if user.Username == "" {
			fmt.Fprintln(a.out, "未登录")
			return nil
		}
		fmt.Fprintln(a.out, user.Username)
		return nil
	},
}

var memberCmd = &cobra.Command{
	Use:   "member <username>",
	Short: "查看用户资料，可附带主题或回复列表",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.saveCookies()
		ctx := cmd.Context()
		username := args[0]

		profile, err := a.forum.Profile(ctx, username)
		if err != nil {
			return fmt.Errorf("获取用户资料失败: %w", err)
		}
		renderProfile(a.out, profile)

		if flagMemberTopics {
			page, err := a.forum.MemberTopics(ctx, username, flagPage)
			if err != nil {
				return fmt.Errorf("获取用户主题失败: %w", err)
			}
			if page.IsHidden {
				fmt.Fprintln(a.out, "该用户的主题列表已隐藏")
			} else {
				renderTopics(a.out, page.Topics)
				renderPageHint(a.out, flagPage, page.MaxPage)
			}
		}
		if flagMemberReplies {
			page, err := a.forum.MemberReplies(ctx, username, flagPage)
			if err != nil {
				return fmt.Errorf("获取用户回复失败: %w", err)
			}
			renderUserReplies(a.out, page.Replies)
			renderPageHint(a.out, flagPage, page.MaxPage)
		}
		return nil
	},
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "查看提醒",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.saveCookies()
		if err := a.requireLogin(); err != nil {
			return err
		}

		page, err := a.forum.Notifications(cmd.Context(), flagPage)
		if err != nil {
			return fmt.Errorf("获取提醒失败: %w", err)
		}
		renderNotifications(a.out, page.Notifications)
		renderPageHint(a.out, flagPage, page.MaxPage)
		return nil
	},
}

var myNodesCmd = &cobra.Command{
	Use:   "my-nodes",
	Short: "查看收藏的节点",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.saveCookies()
		if err := a.requireLogin(); err != nil {
			return err
		}

		nodes, err := a.forum.MyNodes(cmd.Context())
		if err != nil {
			return fmt.Errorf("获取收藏节点失败: %w", err)
		}
		renderMyNodes(a.out, nodes)
		return nil
	},
}

var followingCmd = &cobra.Command{
	Use:   "following",
	Short: "查看关注的用户",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.saveCookies()
		if err := a.requireLogin(); err != nil {
			return err
		}

		following, err := a.forum.MyFollowing(cmd.Context())
		if err != nil {
			return fmt.Errorf("获取关注列表失败: %w", err)
		}
		renderFollowing(a.out, following)
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "查看账户余额",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.saveCookies()
		if err := a.requireLogin(); err != nil {
			return err
		}

		page, err := a.forum.Balance(cmd.Context())
		if err != nil {
			return fmt.Errorf("获取余额失败: %w", err)
		}
		renderBalance(a.out, page)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "账号密码登录，支持两步验证",
	Long: `从标准输入读取用户名、密码与验证码完成登录。
验证码图片会保存到数据目录下的 captcha.png，打开后输入其中的字符。`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func registerAccountCommands(root *cobra.Command) {
	for _, c := range []*cobra.Command{memberCmd, notificationsCmd} {
		c.Flags().IntVarP(&flagPage, "page", "p", 1, "页码")
	}
	memberCmd.Flags().BoolVar(&flagMemberTopics, "topics", false, "列出用户主题")
	memberCmd.Flags().BoolVar(&flagMemberReplies, "replies", false, "列出用户回复")
	loginCmd.Flags().StringVarP(&flagLoginUsername, "username", "u", "", "用户名")

	root.AddCommand(whoamiCmd, memberCmd, notificationsCmd, myNodesCmd, followingCmd, balanceCmd, loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	in := bufio.NewReader(cmd.InOrStdin())

	sess := v2md.NewSession("")
	flow := a.forum.NewLoginFlow(sess)
	form, err := flow.Load(ctx)
	if err != nil {
		return fmt.Errorf("加载登录页失败: %w", err)
	}
	if flow.State() == v2md.StateCoolingDown {
		return v2md.NewAuthError(v2md.CooldownAdvisory)
	}

	creds := v2md.Credentials{Username: flagLoginUsername}
	if creds.Username == "" {
		if creds.Username, err = prompt(a.out, in, "用户名: "); err != nil {
			return err
		}
	}
	if creds.Password, err = prompt(a.out, in, "密码: "); err != nil {
		return err
	}
	if form.CaptchaField != "" {
		captchaPath, err := a.saveCaptcha(cmd, form)
		if err != nil {
			return err
		}
		if creds.Captcha, err = prompt(a.out, in, fmt.Sprintf("验证码 (%s): ", captchaPath)); err != nil {
			return err
		}
	}

	result, err := flow.Submit(ctx, creds)
	if err != nil {
		return fmt.Errorf("登录失败: %w", err)
	}

	switch flow.State() {
	case v2md.StateLoggedIn:
	case v2md.StateTwoFactorRequired:
		code, err := prompt(a.out, in, "两步验证码: ")
		if err != nil {
			return err
		}
		verified, err := flow.Verify(ctx, code)
		if err != nil {
			return fmt.Errorf("两步验证失败: %w", err)
		}
		if !verified.IsLogged {
			if verified.Message != "" {
				renderProblems(a.out, []string{verified.Message})
			}
			return v2md.NewAuthError("两步验证未通过")
		}
	default:
		renderProblems(a.out, result.Problems)
		return v2md.NewAuthError("登录未成功: " + result.Outcome.String())
	}

	a.saveCookies()
	fmt.Fprintf(a.out, "✓ 已登录为 %s\n", sess.Username)
	return nil
}

func (a *app) saveCaptcha(cmd *cobra.Command, form v2md.LoginForm) (string, error) {
	data, err := a.forum.Captcha(cmd.Context(), form)
	if err != nil {
		return "", fmt.Errorf("下载验证码失败: %w", err)
	}
	path := filepath.Join(a.cfg.App.DataDir, "captcha.png")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("创建数据目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("保存验证码失败: %w", err)
	}
	return path, nil
}

func prompt(out io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("读取输入失败: %w", err)
	}
	return strings.TrimSpace(line), nil
}
