package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fdkevin0/v2md"
	"github.com/spf13/cobra"
)

var (
	flagPage       int
	flagAllPages   bool
	flagSave       bool
	flagImages     bool
	flagExportDir  string
	flagFeedTab    string
	flagFeedNode   string
	flagFeedFormat string
	flagFeedOutput string
)

var tabCmd = &cobra.Command{
	Use:   "tab [name]",
	Short: "查看标签页主题 (all, hot, tech, creative ...)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.saveCookies()

		tab := "all"
		if len(args) > 0 {
			tab = args[0]
		}
		topics, err := a.forum.TopicsByTab(cmd.Context(), tab)
		if err != nil {
			return fmt.Errorf("获取主题列表失败: %w", err)
		}
		renderTopics(a.out, topics)
		return nil
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "查看最新主题",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.saveCookies()

		page, err := a.forum.RecentTopics(cmd.Context(), flagPage)
		if err != nil {
			return fmt.Errorf("获取最新主题失败: %w", err)
		}
		renderTopics(a.out, page.Topics)
		renderPageHint(a.out, flagPage, page.MaxPage)
		return nil
	},
}

var nodeCmd = &cobra.Command{
	Use:   "node <name>",
	Short: "查看节点主题",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.saveCookies()

		page, err := a.forum.NodeTopics(cmd.Context(), args[0], flagPage)
		if err != nil {
			return fmt.Errorf("获取节点失败: %w", err)
		}
		renderNode(a.out, page.Node)
		renderTopics(a.out, page.Topics)
		renderPageHint(a.out, flagPage, page.MaxPage)
		return nil
	},
}

var collectedCmd = &cobra.Command{
	Use:   "collected",
	Short: "查看收藏的主题",
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

		page, err := a.forum.CollectedTopics(cmd.Context(), flagPage)
		if err != nil {
			return fmt.Errorf("获取收藏主题失败: %w", err)
		}
		renderTopics(a.out, page.Topics)
		renderPageHint(a.out, flagPage, page.MaxPage)
		return nil
	},
}

var topicCmd = &cobra.Command{
	Use:   "topic <id>",
	Short: "阅读主题，可保存到本地库并导出",
	Example: `  # 输出第一页的Markdown
  v2md topic 1024

  # 抓取全部回复并保存，图片一并下载
  v2md topic 1024 --all --save --images

  # 保存后导出到指定目录
  v2md topic 1024 --all --export=./exports`,
	Args: cobra.ExactArgs(1),
	RunE: runTopic,
}

var exportCmd = &cobra.Command{
	Use:   "export <id> <dir>",
	Short: "从本地库导出已保存的主题，不访问网络",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg("主题ID", args[0])
		if err != nil {
			return err
		}
		cfg, err := buildRuntimeConfig(cmd)
		if err != nil {
			return err
		}

		store := v2md.NewTopicStore(cfg.App.TopicStoreDir())
		if _, err := store.LoadTopic(id); err != nil {
			return fmt.Errorf("离线加载主题失败: %w", err)
		}
		dir, err := store.ExportTopic(id, args[1])
		if err != nil {
			return fmt.Errorf("离线导出失败: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ 离线导出完成: %s\n", dir)
		return nil
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "把主题列表输出为 Atom/RSS 订阅",
	Example: `  v2md feed --tab=hot
  v2md feed --node=python --format=rss --output=python.xml`,
	Args: cobra.NoArgs,
	RunE: runFeed,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "查看浏览历史",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(ctx context.Context, h *v2md.History) error {
			entries, err := h.List(ctx)
			if err != nil {
				return err
			}
			renderHistory(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "清空浏览历史",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(ctx context.Context, h *v2md.History) error {
			if err := h.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ 浏览历史已清空")
			return nil
		})
	},
}

func registerTopicCommands(root *cobra.Command) {
	for _, c := range []*cobra.Command{recentCmd, nodeCmd, collectedCmd, topicCmd} {
		c.Flags().IntVarP(&flagPage, "page", "p", 1, "页码")
	}
	topicCmd.Flags().BoolVar(&flagAllPages, "all", false, "抓取全部回复分页")
	topicCmd.Flags().BoolVar(&flagSave, "save", false, "保存到本地库")
	topicCmd.Flags().BoolVar(&flagImages, "images", false, "保存时下载图片")
	topicCmd.Flags().StringVar(&flagExportDir, "export", "", "保存后导出到目录")

	feedCmd.Flags().StringVar(&flagFeedTab, "tab", "all", "标签页")
	feedCmd.Flags().StringVar(&flagFeedNode, "node", "", "节点名，指定时忽略 --tab")
	feedCmd.Flags().StringVar(&flagFeedFormat, "format", string(v2md.FeedAtom), "订阅格式 (atom, rss)")
	feedCmd.Flags().StringVarP(&flagFeedOutput, "output", "o", "", "输出文件，默认标准输出")

	historyCmd.AddCommand(historyClearCmd)
	root.AddCommand(tabCmd, recentCmd, nodeCmd, collectedCmd, topicCmd, exportCmd, feedCmd, historyCmd)
}

func runTopic(cmd *cobra.Command, args []string) error {
	id, err := parseIDArg("主题ID", args[0])
	if err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.saveCookies()
	ctx := cmd.Context()

	page, err := a.forum.Topic(ctx, id, flagPage)
	if err != nil {
		return fmt.Errorf("获取主题失败: %w", err)
	}
	replies := page.Replies
	if flagAllPages {
		for p := page.CurrPage + 1; p <= page.MaxPage; p++ {
			next, err := a.forum.Topic(ctx, id, p)
			if err != nil {
				return fmt.Errorf("获取第 %d 页回复失败: %w", p, err)
			}
			replies = append(replies, next.Replies...)
		}
	}
	a.recordHistory(ctx, page.Topic)

	formatter := v2md.NewMarkdownFormatter(a.cfg.App.BaseURL)
	markdown, err := formatter.RenderTopic(page.Topic, replies)
	if err != nil {
		return fmt.Errorf("生成Markdown失败: %w", err)
	}

	if !flagSave && flagExportDir == "" {
		fmt.Fprint(a.out, markdown)
		if !flagAllPages {
			renderPageHint(a.out, page.CurrPage, page.MaxPage)
		}
		return nil
	}

	store := v2md.NewTopicStore(a.cfg.App.TopicStoreDir())
	stored := &v2md.StoredTopic{Topic: page.Topic, Replies: replies}
	if flagImages {
		var known []v2md.Image
		if previous, err := store.LoadTopic(id); err == nil {
			known = previous.Images
		}
		handler := v2md.NewImageHandler(a.cfg.App.HTTPUserAgent, a.cfg.App.HTTPTimeout)
		markdown, stored.Images, err = handler.LocalizeImages(ctx, store.ImagesDir(id), markdown, known)
		if err != nil {
			return fmt.Errorf("下载图片失败: %w", err)
		}
	}

	dir, err := store.SaveTopic(stored, markdown)
	if err != nil {
		return fmt.Errorf("保存主题到本地库失败: %w", err)
	}
	fmt.Fprintf(a.out, "✓ 主题已存储到 %s\n", dir)

	if flagExportDir != "" {
		exported, err := store.ExportTopic(id, flagExportDir)
		if err != nil {
			return fmt.Errorf("导出主题失败: %w", err)
		}
		fmt.Fprintf(a.out, "✓ 主题已导出到 %s\n", exported)
	}
	return nil
}

func (a *app) recordHistory(ctx context.Context, topic v2md.Topic) {
	h, err := v2md.OpenHistory(a.cfg.App.HistoryDBPath(), a.cfg.App.HistoryLimit)
	if err != nil {
		slog.Warn("Failed to open history", "error", err)
		return
	}
	defer h.Close()
	if err := h.Record(ctx, topic); err != nil {
		slog.Warn("Failed to record history", "topic", topic.ID, "error", err)
	}
}

func withHistory(cmd *cobra.Command, fn func(context.Context, *v2md.History) error) error {
	cfg, err := buildRuntimeConfig(cmd)
	if err != nil {
		return err
	}
	h, err := v2md.OpenHistory(cfg.App.HistoryDBPath(), cfg.App.HistoryLimit)
	if err != nil {
		return fmt.Errorf("打开浏览历史失败: %w", err)
	}
	defer h.Close()
	return fn(cmd.Context(), h)
}

func runFeed(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.saveCookies()
	ctx := cmd.Context()

	var (
		title, path string
		topics      []v2md.Topic
	)
	if flagFeedNode != "" {
		page, err := a.forum.NodeTopics(ctx, flagFeedNode, 1)
		if err != nil {
			return fmt.Errorf("获取节点失败: %w", err)
		}
		title, path, topics = page.Node.Title, "/go/"+flagFeedNode, page.Topics
	} else {
		topics, err = a.forum.TopicsByTab(ctx, flagFeedTab)
		if err != nil {
			return fmt.Errorf("获取主题列表失败: %w", err)
		}
		title, path = flagFeedTab, "/?tab="+flagFeedTab
	}

	builder := v2md.NewFeedBuilder(a.cfg.App.BaseURL)
	out, err := builder.Render(builder.Build(title, path, topics), v2md.FeedFormat(flagFeedFormat))
	if err != nil {
		return err
	}

	if flagFeedOutput == "" {
		fmt.Fprintln(a.out, out)
		return nil
	}
	if err := os.WriteFile(flagFeedOutput, []byte(out), 0o644); err != nil {
		return fmt.Errorf("写入订阅文件失败: %w", err)
	}
	fmt.Fprintf(a.out, "✓ 订阅已写入 %s (%d 个主题)\n", flagFeedOutput, len(topics))
	return nil
}
