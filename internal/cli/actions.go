package cli

import (
	"fmt"
	"strings"

	"github.com/fdkevin0/v2md"
	"github.com/spf13/cobra"
)

var flagRedeem bool

var replyCmd = &cobra.Command{
	Use:   "reply <id> <content>",
	Short: "回复主题",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg("主题ID", args[0])
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.saveCookies()
		if err := a.requireLogin(); err != nil {
			return err
		}
		ctx := cmd.Context()

		// 每次操作都要先从页面拿到新的 once
		page, err := a.forum.Topic(ctx, id, 1)
		if err != nil {
			return fmt.Errorf("获取主题失败: %w", err)
		}
		sess := v2md.NewSession(page.Once)
		if sess.Stale() {
			return v2md.NewAuthError("主题页没有 once，登录可能已失效")
		}

		result, err := a.forum.ReplyTopic(ctx, sess, id, strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("回复失败: %w", err)
		}
		if !result.Succeeded {
			renderProblems(a.out, result.Problems)
			return fmt.Errorf("回复被拒绝")
		}
		fmt.Fprintf(a.out, "✓ 已回复《%s》，当前 %d 条回复\n", result.Topic.Title, result.Topic.ReplyCount)
		return nil
	},
}

func newCollectCmd(use, short string, collect bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("主题ID", args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.saveCookies()
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()

			page, err := a.forum.Topic(ctx, id, 1)
			if err != nil {
				return fmt.Errorf("获取主题失败: %w", err)
			}
			if page.Topic.IsCollect == collect {
				fmt.Fprintf(a.out, "主题《%s》已处于目标状态\n", page.Topic.Title)
				return nil
			}

			var result v2md.CollectResult
			if collect {
				result, err = a.forum.FavoriteTopic(ctx, id, page.Topic.CSRFToken)
			} else {
				result, err = a.forum.UnfavoriteTopic(ctx, id, page.Topic.CSRFToken)
			}
			if err != nil {
				return fmt.Errorf("%s失败: %w", short, err)
			}
			if !result.Succeeded {
				return fmt.Errorf("%s失败，服务器返回的状态未改变", short)
			}
			fmt.Fprintf(a.out, "✓ %s《%s》\n", short, page.Topic.Title)
			return nil
		},
	}
}

func newFollowNodeCmd(use, short string, follow bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.saveCookies()
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()

			page, err := a.forum.NodeTopics(ctx, args[0], 1)
			if err != nil {
				return fmt.Errorf("获取节点失败: %w", err)
			}
			if page.Node.IsFollowed == follow {
				fmt.Fprintf(a.out, "节点 %s 已处于目标状态\n", page.Node.Title)
				return nil
			}

			result, err := a.forum.FollowNode(ctx, v2md.NewSession(page.Node.Once), page.Node.Code, page.Node.Name, follow)
			if err != nil {
				return fmt.Errorf("%s失败: %w", short, err)
			}
			if !result.Succeeded {
				return fmt.Errorf("%s失败，服务器返回的状态未改变", short)
			}
			fmt.Fprintf(a.out, "✓ %s %s\n", short, page.Node.Title)
			return nil
		},
	}
}

func newFollowUserCmd(use, short string, follow bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.saveCookies()
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()

			page, err := a.forum.Profile(ctx, args[0])
			if err != nil {
				return fmt.Errorf("获取用户资料失败: %w", err)
			}
			if page.IsFollowed == follow {
				fmt.Fprintf(a.out, "用户 %s 已处于目标状态\n", page.Profile.Username)
				return nil
			}

			result, err := a.forum.FollowUser(ctx, v2md.NewSession(page.Once), page.Profile.ID, page.Profile.Username, follow)
			if err != nil {
				return fmt.Errorf("%s失败: %w", short, err)
			}
			if !result.Succeeded {
				return fmt.Errorf("%s失败，服务器返回的状态未改变", short)
			}
			fmt.Fprintf(a.out, "✓ %s %s\n", short, page.Profile.Username)
			return nil
		},
	}
}

var missionCmd = &cobra.Command{
	Use:   "mission",
	Short: "查看每日登录奖励，--redeem 领取",
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

		result, err := a.forum.DailyMission(cmd.Context(), v2md.NewSession(""), flagRedeem)
		if err != nil {
			return fmt.Errorf("获取每日任务失败: %w", err)
		}
		state := "未领取"
		if result.IsSigned {
			state = "已领取"
		}
		fmt.Fprintf(a.out, "每日登录奖励%s，已连续登录 %d 天\n", state, result.Days)
		return nil
	},
}

func registerActionCommands(root *cobra.Command) {
	missionCmd.Flags().BoolVar(&flagRedeem, "redeem", false, "领取每日登录奖励")

	root.AddCommand(
		replyCmd,
		newCollectCmd("fav", "收藏主题", true),
		newCollectCmd("unfav", "取消收藏主题", false),
		newFollowNodeCmd("follow-node", "收藏节点", true),
		newFollowNodeCmd("unfollow-node", "取消收藏节点", false),
		newFollowUserCmd("follow-user", "关注用户", true),
		newFollowUserCmd("unfollow-user", "取消关注用户", false),
		missionCmd,
	)
}
