package v2md

import (
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
)

// 每日任务页
var missionXPath = struct {
	main  *xpath.Expr
	tools *xpath.Expr
	cells *xpath.Expr
}{
	main:  xpath.MustCompile(`//*[@id="Main"]`),
	tools: xpath.MustCompile(`//*[@id="Top"]//*[contains(concat(" ", normalize-space(@class), " "), " tools ")]`),
	cells: xpath.MustCompile(`//*[@id="Main"]/*[contains(concat(" ", normalize-space(@class), " "), " box ")]/*[contains(concat(" ", normalize-space(@class), " "), " cell ")]`),
}

var (
	missionDaysPattern = regexp.MustCompile(`已连续登录 (\d+?) 天`)
	messageSel         = cascadia.MustCompile(".message")
)

const (
	missionSignedMarker   = "每日登录奖励已领取"
	missionRedeemedMarker = "已成功领取每日登录奖励"
)

// MissionResult 每日签到结果
type MissionResult struct {
	IsSigned bool   `toml:"is_signed"` // 今日是否已领取
	Days     int    `toml:"days"`      // 连续登录天数
	Once     string `toml:"once"`      // 领取奖励用的 once
}

// ParseMissionPage parses /mission/daily. Once is taken from the logout link
// in the top bar; Days from the last cell of the mission box.
func ParseMissionPage(p *Page) MissionResult {
	var result MissionResult

	root := p.Root()
	if root == nil {
		return result
	}

	if main := htmlquery.QuerySelector(root, missionXPath.main); main != nil {
		result.IsSigned = strings.Contains(htmlquery.InnerText(main), missionSignedMarker)
	}
	if tools := htmlquery.QuerySelector(root, missionXPath.tools); tools != nil {
		result.Once = MatchOnce(htmlquery.OutputHTML(tools, false))
	}
	if cells := htmlquery.QuerySelectorAll(root, missionXPath.cells); len(cells) > 0 {
		last := htmlquery.OutputHTML(cells[len(cells)-1], false)
		if m := missionDaysPattern.FindStringSubmatch(last); m != nil {
			result.Days = ParseInt(m[1])
		}
	}
	return result
}

// ParseRedeemResult reports whether /mission/daily/redeem granted the reward.
func ParseRedeemResult(p *Page) bool {
	return strings.Contains(p.Find(messageSel).Text(), missionRedeemedMarker)
}
