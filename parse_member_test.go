package v2md

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profilePageHTML = `<html><body><div id="Main">
<div class="box">
  <div class="cell"><table><tbody><tr>
    <td><img src="https://cdn.v2ex.com/avatar/alice_large.png" class="avatar"></td>
    <td></td>
    <td>
      <div class="fr">
        <input type="button" value="取消特别关注" onclick="if (confirm('确认要取消对 alice 的关注？')) { location.href = '/unfollow/12345?once=74770'; }" class="super inverse button">
        <input type="button" value="Block" onclick="if (confirm('确认要屏蔽 alice？')) { location.href = '/block/12345?t=1700000000'; }" class="super normal button">
      </div>
      <h1>alice</h1>
      <span class="bigger">写代码的</span>
      <div class="sep10"></div>
      <span>Acme / 工程师</span>
      <strong class="online">ONLINE</strong>
      <span class="gray">V2EX 第 12345 号会员，加入于 2015-03-04 05:06:07 +08:00，今日活跃度排名 <a href="/top/dau">100</a></span>
    </td>
  </tr></tbody></table></div>
  <div class="widgets">
    <a href="https://github.com/alice" class="social_label"><img src="/static/img/social_github.png" alt="GitHub">alice</a>
    <a href="https://twitter.com/alice" class="social_label">@alice</a>
  </div>
  <div class="cell">喜欢 Go 和 Python</div>
</div>
<div class="box"><div class="cell"><div class="topic_content">普通主题</div></div></div>
</div></body></html>`

func TestParseProfilePage(t *testing.T) {
	page := ParseProfilePage(mustPage(t, profilePageHTML), "alice", "https://www.v2ex.com/")
	p := page.Profile

	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, 12345, p.ID)
	assert.Equal(t, "https://cdn.v2ex.com/avatar/alice_large.png", p.Avatar)
	assert.Equal(t, "写代码的", p.TagLine)
	assert.Equal(t, "Acme", p.Company)
	assert.Equal(t, "工程师", p.WorkTitle)
	assert.True(t, p.IsOnline)
	assert.Equal(t, "2015-03-04T05:06:07+08:00", p.CreatedAt)
	assert.Equal(t, "100", p.DAU)
	assert.Equal(t, "喜欢 Go 和 Python", p.Bio)
	assert.Equal(t, "1700000000", p.BlockToken)

	require.Len(t, p.Socials, 2)
	assert.Equal(t, Social{
		ID:   "alice_0_alice",
		Name: "alice",
		URL:  "https://github.com/alice",
		Icon: "https://www.v2ex.com/static/img/social_github.png",
	}, p.Socials[0])
	assert.Empty(t, p.Socials[1].Icon)

	assert.True(t, page.IsFollowed)
	assert.Equal(t, "74770", page.Once)
	assert.False(t, page.IsHidden)
}

func TestParseUserFollowState(t *testing.T) {
	followed, once := ParseUserFollowState(mustPage(t,
		`<input type="button" value="加入特别关注" onclick="if (confirm('确认要开始关注 alice？')) { location.href = '/follow/12345?once=80001'; }" class="super special button">`))
	assert.False(t, followed)
	assert.Equal(t, "80001", once)

	followed, once = ParseUserFollowState(mustPage(t, `<div>nothing</div>`))
	assert.False(t, followed)
	assert.Empty(t, once)
}

func TestParseProfilePageOnEmptyDocument(t *testing.T) {
	page := ParseProfilePage(mustPage(t, ""), "ghost", "https://www.v2ex.com")
	assert.Equal(t, "ghost", page.Profile.Username)
	assert.NotNil(t, page.Profile.Socials)
	assert.Empty(t, page.Profile.Socials)
	assert.Zero(t, page.Profile.ID)
}

const memberRepliesHTML = `<html><body><div id="Main"><div class="box">
<div class="header"><div class="fr"><span class="gray">回复总数 88</span></div>alice 最近回复了</div>
<div class="dock_area"><table><tr><td><div class="fr"><span class="fade">2024-01-02 10:00:00 +08:00</span></div>
  <span class="gray">回复了 <a href="/member/bob">bob</a> 创建的主题 › <a href="/go/python">Python</a> › <a href="/t/1024#reply3">如何优雅地退出</a></span></td></tr></table></div>
<div class="inner"><div class="reply_content">用 context</div></div>
<div class="dock_area"><table><tr><td><div class="fr"><span class="fade">2024-01-01 09:00:00 +08:00</span></div>
  <span class="gray">回复了 <a href="/member/carol">carol</a> 创建的主题 › <a href="/go/qna">问与答</a> › <a href="/t/2048">另一个主题</a></span></td></tr></table></div>
<div class="inner"><div class="reply_content">第二条</div></div>
</div></div><input class="page_input" value="1" max="9"></body></html>`

func TestParseMemberRepliesPage(t *testing.T) {
	page := ParseMemberRepliesPage(mustPage(t, memberRepliesHTML))

	assert.Equal(t, 88, page.ReplyCount)
	assert.Equal(t, 9, page.MaxPage)
	require.Len(t, page.Replies, 2)

	assert.Equal(t, UserReply{
		Author:     "bob",
		NodeName:   "python",
		NodeTitle:  "Python",
		TopicID:    1024,
		TopicTitle: "如何优雅地退出",
		Content:    "用 context",
		CreatedAt:  "2024-01-02T10:00:00+08:00",
	}, page.Replies[0])
	assert.Equal(t, 2048, page.Replies[1].TopicID)
	assert.Equal(t, "第二条", page.Replies[1].Content)
}
