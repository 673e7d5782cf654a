package v2md

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userChromeHTML = `<div id="Top"><div class="tools">
  <a href="/">首页</a><a href="/member/alice" class="top">alice</a>
  <a href="#" onclick="if (confirm('确定要从 V2EX 登出？')) { location.href= '/signout?once=55555'; }" class="top">登出</a>
</div></div>
<div id="Rightbar"><div class="box">
  <div class="cell"><a href="/member/alice"><img src="https://cdn.v2ex.com/avatar/alice.png" class="avatar"></a></div>
  <div class="cell">
    <a href="/my/nodes"><span class="bigger">12</span> 节点收藏</a>
    <a href="/my/topics"><span class="bigger">34</span> 主题收藏</a>
    <a href="/my/following"><span class="bigger">5</span> 特别关注</a>
  </div>
  <div class="inner"><a href="/notifications" class="fade">3 条未读提醒</a></div>
</div></div>`

func TestParseUserBoxAndInfo(t *testing.T) {
	p := mustPage(t, "<html><body>"+userChromeHTML+"</body></html>")

	assert.Equal(t, UserBox{
		Unread:           3,
		MyFavNodeCount:   12,
		MyFavTopicCount:  34,
		MyFollowingCount: 5,
	}, ParseUserBox(p))
	assert.Equal(t, UserInfo{
		Username: "alice",
		Avatar:   "https://cdn.v2ex.com/avatar/alice.png",
	}, ParseUserInfo(p))
}

func TestParseUserBoxAnonymous(t *testing.T) {
	p := mustPage(t, `<div id="Rightbar"><div class="box"><div class="cell">现在注册</div></div></div>`)
	assert.Equal(t, UserBox{}, ParseUserBox(p))
	assert.Equal(t, UserInfo{}, ParseUserInfo(p))
}

func TestParseBalancePage(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Balance
	}{
		{"all coins", "12 34 56", Balance{Gold: 12, Silver: 34, Bronze: 56}},
		{"no gold", "34 56", Balance{Silver: 34, Bronze: 56}},
		{"bronze only", "7", Balance{Bronze: 7}},
		{"empty", "", Balance{}},
		{"too many groups", "1 2 3 4", Balance{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			body := `<div class="balance_area bigger">` + c.text + `</div>`
			assert.Equal(t, c.want, ParseBalancePage(mustPage(t, body)).Balance)
		})
	}
}

func TestParseMyNodesPage(t *testing.T) {
	body := `<div id="my-nodes">
<a class="fav-node" id="n_90" href="/go/python"><img src="/static/img/python.png"><span class="fav-node-name">Python</span></a>
<a class="fav-node" id="n_12" href="/go/qna"><img src="/static/img/qna.png"><span class="fav-node-name">问与答</span></a>
</div>`

	nodes := ParseMyNodesPage(mustPage(t, body))
	require.Len(t, nodes, 2)
	assert.Equal(t, MyNode{ID: "n_90", Name: "python", Title: "Python", Icon: "/static/img/python.png"}, nodes[0])
	assert.Equal(t, "qna", nodes[1].Name)
}

func TestParseFollowingPage(t *testing.T) {
	body := `<html><body><div id="Rightbar">
<div class="sep20"></div><div class="box">1</div><div class="sep20"></div><div class="box">2</div><div class="sep20"></div>
<div class="box">
  <div class="cell">我关注的人</div>
  <div class="cell"><a href="/member/bob"><img src="https://cdn.v2ex.com/avatar/bob_mini.png" class="avatar"></a> <a href="/member/bob">bob</a></div>
  <div class="cell"><a href="/member/carol"><img src="https://cdn.v2ex.com/avatar/carol_mini.png" class="avatar"></a> <a href="/member/carol">carol</a></div>
</div></div></body></html>`

	following := ParseFollowingPage(mustPage(t, body))
	require.Len(t, following, 2)
	assert.Equal(t, Following{Username: "bob", Avatar: "https://cdn.v2ex.com/avatar/bob_large.png"}, following[0])
	assert.Equal(t, "carol", following[1].Username)
}
