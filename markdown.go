package v2md

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/samber/lo"
)

const popularReplyLimit = 10

// MarkdownFormatter handles markdown formatting of a topic
type MarkdownFormatter struct {
	baseURL string
	now     func() time.Time
}

// NewMarkdownFormatter creates a formatter resolving relative links against baseURL
func NewMarkdownFormatter(baseURL string) *MarkdownFormatter {
	return &MarkdownFormatter{
		baseURL: trimBase(baseURL),
		now:     time.Now,
	}
}

// FormatTitle formats the document title
func (mf *MarkdownFormatter) FormatTitle(topic Topic) string {
	return fmt.Sprintf("## %s\n\n", EscapeMarkdown(topic.Title))
}

// FormatMeta formats the topic header as a list
func (mf *MarkdownFormatter) FormatMeta(topic Topic) string {
	var md strings.Builder
	fmt.Fprintf(&md, "- 链接: %s/t/%d\n", mf.baseURL, topic.ID)
	if topic.NodeName != "" {
		fmt.Fprintf(&md, "- 节点: [%s](%s/go/%s)\n", EscapeMarkdown(topic.NodeTitle), mf.baseURL, topic.NodeName)
	}
	fmt.Fprintf(&md, "- 作者: %s\n", EscapeMarkdown(topic.Author))
	if topic.CreatedAt != "" {
		fmt.Fprintf(&md, "- 发布: %s\n", topic.CreatedAt)
	}
	if topic.Via != ViaNone {
		fmt.Fprintf(&md, "- 客户端: %s\n", topic.Via)
	}
	fmt.Fprintf(&md, "- 点击 %d · 收藏 %d · 感谢 %d · 回复 %d\n\n", topic.Views, topic.Likes, topic.Thanks, topic.ReplyCount)
	return md.String()
}

// FormatContent converts an HTML fragment from the site to markdown
func (mf *MarkdownFormatter) FormatContent(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	markdown, err := htmltomarkdown.ConvertString(html, converter.WithDomain(mf.baseURL))
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return markdown, nil
}

// FormatSupplements formats the addenda in order
func (mf *MarkdownFormatter) FormatSupplements(supplements []Supplement) (string, error) {
	var md strings.Builder
	for i, s := range supplements {
		fmt.Fprintf(&md, "##### 第 %d 条附言 %s\n\n", i+1, s.CreatedAt)
		content, err := mf.FormatContent(s.Content)
		if err != nil {
			return "", err
		}
		md.WriteString(content)
		md.WriteString("\n\n")
	}
	return md.String(), nil
}

// FormatPopularReplies links the most thanked replies
func (mf *MarkdownFormatter) FormatPopularReplies(replies []Reply) string {
	thanked := lo.Filter(replies, func(r Reply, _ int) bool {
		return r.Thanks > 0
	})
	if len(thanked) == 0 {
		return ""
	}
	slices.SortStableFunc(thanked, func(a, b Reply) int {
		return cmp.Compare(b.Thanks, a.Thanks)
	})

	var md strings.Builder
	md.WriteString("##### 热门回复\n\n")
	for i, reply := range thanked {
		if i >= popularReplyLimit {
			break
		}
		preview, err := mf.FormatContent(reply.Content)
		if err != nil {
			preview = ""
		}
		preview = TruncateText(NormalizeText(preview), 50)
		fmt.Fprintf(&md, "- [#%d](#r_%d) ♥%d: %s\n", reply.No, reply.ID, reply.Thanks, EscapeMarkdown(preview))
	}
	md.WriteString("\n")
	return md.String()
}

// FormatReply formats one reply with an anchor header
func (mf *MarkdownFormatter) FormatReply(reply Reply) (string, error) {
	var md strings.Builder
	fmt.Fprintf(&md, "##### <span id=\"r_%d\">#%d %s · %s</span>\n\n",
		reply.ID, reply.No, EscapeMarkdown(reply.Author), reply.CreatedAt)

	content, err := mf.FormatContent(reply.Content)
	if err != nil {
		return "", err
	}
	md.WriteString(content)
	md.WriteString("\n\n")
	return md.String(), nil
}

// FormatFooter formats the document footer
func (mf *MarkdownFormatter) FormatFooter() string {
	var md strings.Builder
	md.WriteString("---\n\n")
	md.WriteString("*本文档由 v2md 自动生成*\n\n")
	fmt.Fprintf(&md, "*生成时间: %s*\n", mf.now().Format(time.DateTime))
	return md.String()
}

// RenderTopic renders a topic and the given replies as one document.
func (mf *MarkdownFormatter) RenderTopic(topic Topic, replies []Reply) (string, error) {
	var md strings.Builder
	md.WriteString(mf.FormatTitle(topic))
	md.WriteString(mf.FormatMeta(topic))

	content, err := mf.FormatContent(topic.Content)
	if err != nil {
		return "", err
	}
	if content != "" {
		md.WriteString(content)
		md.WriteString("\n\n")
	}

	supplements, err := mf.FormatSupplements(topic.Supplements)
	if err != nil {
		return "", err
	}
	md.WriteString(supplements)
	md.WriteString(mf.FormatPopularReplies(replies))

	for _, reply := range replies {
		entry, err := mf.FormatReply(reply)
		if err != nil {
			return "", fmt.Errorf("reply #%d: %w", reply.No, err)
		}
		md.WriteString(entry)
	}

	md.WriteString(mf.FormatFooter())
	return md.String(), nil
}
