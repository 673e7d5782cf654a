package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fdkevin0/v2md"
	"github.com/jedib0t/go-pretty/v6/table"
)

const titleWidth = 48

func newTable(out io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(header)
	t.SetStyle(table.StyleRounded)
	return t
}

func renderTopics(out io.Writer, topics []v2md.Topic) {
	t := newTable(out, table.Row{"ID", "节点", "标题", "作者", "回复", "最后回复"})
	for _, topic := range topics {
		last := topic.LastReplyDatetime
		if topic.LastRepliedBy != "" {
			last = strings.TrimSpace(topic.LastRepliedBy + " " + last)
		}
		t.AppendRow(table.Row{
			topic.ID,
			topic.NodeTitle,
			v2md.TruncateText(topic.Title, titleWidth),
			topic.Author,
			topic.ReplyCount,
			last,
		})
	}
	t.SetCaption("%d 个主题", len(topics))
	t.Render()
}

func renderPageHint(out io.Writer, page, maxPage int) {
	if maxPage > 1 {
		fmt.Fprintf(out, "第 %d / %d 页\n", max(page, 1), maxPage)
	}
}

func renderNode(out io.Writer, node v2md.Node) {
	state := "未收藏"
	if node.IsFollowed {
		state = "已收藏"
	}
	fmt.Fprintf(out, "%s (%s) · %d 个主题 · %s\n", node.Title, node.Name, node.TopicCount, state)
	if node.Intro != "" {
		fmt.Fprintln(out, node.Intro)
	}
}

func renderProfile(out io.Writer, page v2md.ProfilePage) {
	p := page.Profile
	t := newTable(out, table.Row{"字段", "值"})
	t.AppendRow(table.Row{"用户名", p.Username})
	t.AppendRow(table.Row{"会员编号", p.ID})
	t.AppendRow(table.Row{"注册时间", p.CreatedAt})
	if p.DAU != "" {
		t.AppendRow(table.Row{"今日活跃度排名", p.DAU})
	}
	if p.Company != "" || p.WorkTitle != "" {
		t.AppendRow(table.Row{"公司 / 职位", strings.Trim(p.Company+" / "+p.WorkTitle, " /")})
	}
	if p.TagLine != "" {
		t.AppendRow(table.Row{"签名", p.TagLine})
	}
	if p.Bio != "" {
		t.AppendRow(table.Row{"简介", v2md.TruncateText(v2md.NormalizeText(p.Bio), titleWidth)})
	}
	t.AppendRow(table.Row{"在线", p.IsOnline})
	t.AppendRow(table.Row{"已关注", page.IsFollowed})
	for _, s := range p.Socials {
		t.AppendRow(table.Row{s.Name, s.URL})
	}
	t.Render()
}

func renderUserReplies(out io.Writer, replies []v2md.UserReply) {
	t := newTable(out, table.Row{"主题", "标题", "回复", "时间"})
	for _, r := range replies {
		t.AppendRow(table.Row{
			r.TopicID,
			v2md.TruncateText(r.TopicTitle, titleWidth),
			v2md.TruncateText(v2md.NormalizeText(r.Content), titleWidth),
			r.CreatedAt,
		})
	}
	t.Render()
}

func renderNotifications(out io.Writer, notifications []v2md.Notification) {
	t := newTable(out, table.Row{"类型", "用户", "主题", "内容", "时间"})
	for _, n := range notifications {
		t.AppendRow(table.Row{
			n.Type,
			n.Username,
			v2md.TruncateText(n.TopicTitle, titleWidth),
			v2md.TruncateText(v2md.NormalizeText(n.Payload), titleWidth),
			n.CreatedAt,
		})
	}
	t.Render()
}

func renderMyNodes(out io.Writer, nodes []v2md.MyNode) {
	t := newTable(out, table.Row{"节点", "名称"})
	for _, n := range nodes {
		t.AppendRow(table.Row{n.Name, n.Title})
	}
	t.Render()
}

func renderFollowing(out io.Writer, following []v2md.Following) {
	t := newTable(out, table.Row{"用户"})
	for _, f := range following {
		t.AppendRow(table.Row{f.Username})
	}
	t.Render()
}

func renderBalance(out io.Writer, page v2md.BalancePage) {
	t := newTable(out, table.Row{"金币", "银币", "铜币"})
	t.AppendRow(table.Row{page.Balance.Gold, page.Balance.Silver, page.Balance.Bronze})
	t.Render()
}

func renderHistory(out io.Writer, entries []v2md.HistoryEntry) {
	t := newTable(out, table.Row{"ID", "节点", "标题", "作者", "浏览时间"})
	for _, e := range entries {
		t.AppendRow(table.Row{
			e.TopicID,
			e.NodeTitle,
			v2md.TruncateText(e.Title, titleWidth),
			e.Author,
			e.ViewedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	t.Render()
}

func renderProblems(out io.Writer, problems []string) {
	for _, p := range problems {
		fmt.Fprintf(out, "✗ %s\n", p)
	}
}
