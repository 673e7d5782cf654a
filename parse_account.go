package v2md

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// 右侧栏账户信息
var userBoxSel = struct {
	box       cascadia.Selector
	unread    cascadia.Selector
	nodes     cascadia.Selector
	topics    cascadia.Selector
	following cascadia.Selector
}{
	box:       cascadia.MustCompile("#Rightbar > .box"),
	unread:    cascadia.MustCompile("a[href='/notifications']"),
	nodes:     cascadia.MustCompile("a[href='/my/nodes'] .bigger"),
	topics:    cascadia.MustCompile("a[href='/my/topics'] .bigger"),
	following: cascadia.MustCompile("a[href='/my/following'] .bigger"),
}

// 当前用户
var userInfoSel = struct {
	username cascadia.Selector
	avatar   cascadia.Selector
}{
	username: cascadia.MustCompile("#Top .tools a[href^='/member/']"),
	avatar:   cascadia.MustCompile("#Rightbar .box .cell a[href^='/member/'] img.avatar"),
}

// 余额 / 收藏节点 / 关注
var (
	balanceSel = cascadia.MustCompile(".balance_area.bigger")
	favNodeSel = struct {
		item  cascadia.Selector
		icon  cascadia.Selector
		title cascadia.Selector
	}{
		item:  cascadia.MustCompile(".fav-node"),
		icon:  cascadia.MustCompile("img"),
		title: cascadia.MustCompile(".fav-node-name"),
	}
	followingSel = struct {
		rows   cascadia.Selector
		avatar cascadia.Selector
		link   cascadia.Selector
	}{
		rows:   cascadia.MustCompile("#Rightbar > .box:nth-child(6) > div"),
		avatar: cascadia.MustCompile(".avatar"),
		link:   cascadia.MustCompile("a"),
	}
)

var digitGroupPattern = regexp.MustCompile(`\d+`)

// ParseUserBox reads the account counters of the right bar. Pages viewed
// without a session have none and yield zeros.
func ParseUserBox(p *Page) UserBox {
	box := p.Find(userBoxSel.box)
	return UserBox{
		Unread:           ParseInt(text(within(box, userBoxSel.unread).First())),
		MyFavNodeCount:   ParseInt(text(within(box, userBoxSel.nodes).First())),
		MyFavTopicCount:  ParseInt(text(within(box, userBoxSel.topics).First())),
		MyFollowingCount: ParseInt(text(within(box, userBoxSel.following).First())),
	}
}

// ParseUserInfo reads the logged-in user from the page chrome.
func ParseUserInfo(p *Page) UserInfo {
	return UserInfo{
		Username: text(p.Find(userInfoSel.username).First()),
		Avatar:   attr(p.Find(userInfoSel.avatar).First(), "src"),
	}
}

// ParseBalancePage parses /balance. Coin groups are right-aligned, so an
// account without gold still gets its silver and bronze.
func ParseBalancePage(p *Page) BalancePage {
	groups := digitGroupPattern.FindAllString(p.Find(balanceSel).First().Text(), -1)

	var balance Balance
	fields := []*int{&balance.Gold, &balance.Silver, &balance.Bronze}
	if len(groups) <= len(fields) {
		offset := len(fields) - len(groups)
		for i, g := range groups {
			*fields[offset+i] = ParseInt(g)
		}
	}

	return BalancePage{Balance: balance, UserBox: ParseUserBox(p)}
}

// ParseMyNodesPage parses /my/nodes.
func ParseMyNodesPage(p *Page) []MyNode {
	nodes := []MyNode{}
	p.Find(favNodeSel.item).Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, MyNode{
			ID:    attr(s, "id"),
			Name:  NodeNameFromPath(attr(s, "href")),
			Title: text(within(s, favNodeSel.title).First()),
			Icon:  attr(within(s, favNodeSel.icon).First(), "src"),
		})
	})
	return nodes
}

// ParseFollowingPage parses /my/following. Row 0 is the list header.
func ParseFollowingPage(p *Page) []Following {
	following := []Following{}
	p.Find(followingSel.rows).Each(func(i int, s *goquery.Selection) {
		if i == 0 {
			return
		}
		avatar := attr(within(s, followingSel.avatar).First(), "src")
		following = append(following, Following{
			Username: text(within(s, followingSel.link).Last()),
			Avatar:   strings.Replace(avatar, "mini", "large", 1),
		})
	})
	return following
}
