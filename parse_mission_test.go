package v2md

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func missionPageHTML(status string) string {
	return `<html><body>
<div id="Top"><div class="content"><div class="tools">
  <a href="/" class="top">首页</a>
  <a href="#" onclick="if (confirm('确定要从 V2EX 登出？')) { location.href= '/signout?once=55555'; }" class="top">登出</a>
</div></div></div>
<div id="Main"><div class="sep20"></div><div class="box">
  <div class="cell">日常任务</div>
  <div class="cell">` + status + `</div>
  <div class="cell">已连续登录 12 天</div>
</div></div></body></html>`
}

func TestParseMissionPage(t *testing.T) {
	open := ParseMissionPage(mustPage(t, missionPageHTML(
		`<input type="button" class="super normal button" value="领取 X 铜币" onclick="location.href = '/mission/daily/redeem?once=55555';">`)))
	assert.Equal(t, MissionResult{IsSigned: false, Days: 12, Once: "55555"}, open)

	signed := ParseMissionPage(mustPage(t, missionPageHTML(`<span class="gray">每日登录奖励已领取</span>`)))
	assert.True(t, signed.IsSigned)
	assert.Equal(t, 12, signed.Days)
}

func TestParseMissionPageOnEmptyDocument(t *testing.T) {
	assert.Equal(t, MissionResult{}, ParseMissionPage(mustPage(t, "")))
}

func TestParseRedeemResult(t *testing.T) {
	assert.True(t, ParseRedeemResult(mustPage(t, `<div class="message">已成功领取每日登录奖励</div>`)))
	assert.False(t, ParseRedeemResult(mustPage(t, `<div class="message">你要查看的页面需要先登录</div>`)))
}
