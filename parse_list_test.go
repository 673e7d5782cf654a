package v2md

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topicRowHTML(id int, title, node, author, lastBy string, count int) string {
	nodeLink := ""
	if node != "" {
		nodeLink = fmt.Sprintf(`<a class="node" href="/go/%s">%s</a> • `, node, node)
	}
	last := ""
	if lastBy != "" {
		last = fmt.Sprintf(` • 最后回复来自 <strong><a href="/member/%s">%s</a></strong>`, lastBy, lastBy)
	}
	return fmt.Sprintf(`<div class="cell item"><table><tr>
  <td><a href="/member/%[4]s"><img src="https://cdn.v2ex.com/avatar/%[4]s.png" class="avatar" alt="%[4]s"></a></td>
  <td><span class="item_title"><a href="/t/%[1]d#reply%[6]d" class="topic-link">%[2]s</a></span>
  <span class="topic_info">%[3]s<strong><a href="/member/%[4]s">%[4]s</a></strong> • <span title="2024-01-02 12:00:00 +08:00">1 小时前</span>%[5]s</span></td>
  <td><a href="/t/%[1]d#reply%[6]d" class="count_livid">%[6]d</a></td>
</tr></table></div>`, id, title, nodeLink, author, last, count)
}

func TestParseTabPage(t *testing.T) {
	body := `<html><body><div id="Main"><div class="box">` +
		topicRowHTML(1024, "如何优雅地退出", "python", "alice", "bob", 3) +
		topicRowHTML(1025, "第二个主题", "qna", "carol", "", 0) +
		`</div></div></body></html>`

	topics := ParseTabPage(mustPage(t, body))
	require.Len(t, topics, 2)

	first := topics[0]
	assert.Equal(t, 1024, first.ID)
	assert.Equal(t, "如何优雅地退出", first.Title)
	assert.Equal(t, "python", first.NodeName)
	assert.Equal(t, "alice", first.Author)
	assert.Equal(t, "bob", first.LastRepliedBy)
	assert.Equal(t, 3, first.ReplyCount)
	assert.Equal(t, "2024-01-02T12:00:00+08:00", first.LastReplyDatetime)
	assert.Equal(t, "https://cdn.v2ex.com/avatar/alice.png", first.Avatar)

	assert.Equal(t, "", topics[1].LastRepliedBy)
	assert.Equal(t, 0, topics[1].ReplyCount)
}

func TestParseTabPageEmpty(t *testing.T) {
	topics := ParseTabPage(mustPage(t, "<html></html>"))
	require.NotNil(t, topics)
	assert.Empty(t, topics)
}

const nodePageHTML = `<html><head><title>V2EX › Python</title></head><body>
<div id="Main"><div class="box">
  <div class="cell page-content-header"><img src="/static/img/python.png">
    <div class="cell_ops"><a href="/unfavorite/node/90?once=74770">Unfavorite</a></div>
    <div class="topic-count">主题总数 <strong>12,345</strong></div>
    <span class="intro">这里讨论各种 Python 语言编程话题</span>
  </div>
  <div id="TopicsNode">%s</div>
</div></div>
<input type="number" class="page_input" value="1" min="1" max="617">
</body></html>`

func TestParseNodePage(t *testing.T) {
	body := fmt.Sprintf(nodePageHTML,
		`<div class="cell">`+topicRowHTML(1024, "节点里的主题", "", "alice", "", 1)+`</div>`)

	page := ParseNodePage(mustPage(t, body), "python")

	assert.Equal(t, Node{
		Name:       "python",
		Title:      "Python",
		Icon:       "/static/img/python.png",
		Intro:      "这里讨论各种 Python 语言编程话题",
		Code:       "90",
		Once:       "74770",
		IsFollowed: true,
		TopicCount: 12345,
	}, page.Node)
	assert.Equal(t, 617, page.MaxPage)
	require.Len(t, page.Topics, 1)
	assert.Equal(t, "python", page.Topics[0].NodeName, "rows inherit the viewed node")
	assert.Equal(t, "Python", page.Topics[0].NodeTitle)
}

func TestNodeFollowLinkRoundTrip(t *testing.T) {
	const href = "/unfavorite/node/90?once=74770"
	body := fmt.Sprintf(`<div class="cell_ops"><a href="%s">Unfavorite</a></div>`, href)

	code, once, followed := ParseNodeFollowState(mustPage(t, body))
	require.True(t, followed)
	assert.Equal(t, href, "/unfavorite/node/"+code+"?once="+once)

	code, once, followed = ParseNodeFollowState(mustPage(t, `<div class="cell_ops"><a href="/favorite/node/90?once=1">加入收藏</a></div>`))
	assert.False(t, followed)
	assert.Equal(t, "90", code)
	assert.Equal(t, "1", once)
}

func TestParseCollectionPage(t *testing.T) {
	body := `<html><body><div id="Main">
<div class="sep20"></div>
<div class="box"><div class="cell">其他</div></div>
<div class="box">` + topicRowHTML(7, "收藏的主题", "apple", "dave", "erin", 9) + `</div>
</div><input class="page_input" value="1" max="2"></body></html>`

	page := ParseCollectionPage(mustPage(t, body))
	require.Len(t, page.Topics, 1)
	assert.Equal(t, 7, page.Topics[0].ID)
	assert.Equal(t, 2, page.MaxPage)
}

func TestParseMemberTopicsPage(t *testing.T) {
	t.Run("listed", func(t *testing.T) {
		body := `<html><body><div id="Main"><div class="box">
<div class="header"><div class="fr"><span class="gray">主题总数 42</span></div>alice 创建的所有主题</div>` +
			topicRowHTML(1, "一", "python", "alice", "", 0) +
			`</div></div></body></html>`

		page := ParseMemberTopicsPage(mustPage(t, body))
		assert.False(t, page.IsHidden)
		assert.Equal(t, 42, page.TopicCount)
		assert.Equal(t, 1, page.MaxPage)
		require.Len(t, page.Topics, 1)
	})

	t.Run("hidden", func(t *testing.T) {
		body := `<div id="Main"><div class="box"><div class="cell"><div class="topic_content">根据 alice 的设置，主题列表被隐藏</div></div></div></div>`

		page := ParseMemberTopicsPage(mustPage(t, body))
		assert.True(t, page.IsHidden)
		assert.Empty(t, page.Topics)
		assert.Equal(t, 1, page.MaxPage)
	})
}
