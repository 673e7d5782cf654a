package v2md

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// 主题列表行 (首页 / 最近 / 节点 / 收藏 / 用户主题)
var listSel = struct {
	titleLink cascadia.Selector
	avatar    cascadia.Selector
	node      cascadia.Selector
	users     cascadia.Selector
	lastReply cascadia.Selector
	count     cascadia.Selector
	votes     cascadia.Selector
}{
	titleLink: cascadia.MustCompile(".item_title a"),
	avatar:    cascadia.MustCompile("img.avatar"),
	node:      cascadia.MustCompile("a.node"),
	users:     cascadia.MustCompile(".topic_info strong"),
	lastReply: cascadia.MustCompile(".topic_info span[title]"),
	count:     cascadia.MustCompile("a.count_livid, a.count_orange"),
	votes:     cascadia.MustCompile(".votes"),
}

// 列表容器
var (
	tabItemsSel        = cascadia.MustCompile(".cell.item")
	nodeItemsSel       = cascadia.MustCompile("#TopicsNode > .cell")
	collectionItemsSel = cascadia.MustCompile("#Main > .box:nth-child(3) > .cell.item")
)

// 节点页头部
var nodeSel = struct {
	topicCount cascadia.Selector
	icon       cascadia.Selector
	intro      cascadia.Selector
	followLink cascadia.Selector
	docTitle   cascadia.Selector
}{
	topicCount: cascadia.MustCompile(".topic-count > strong"),
	icon:       cascadia.MustCompile(".cell.page-content-header > img"),
	intro:      cascadia.MustCompile(".intro"),
	followLink: cascadia.MustCompile(".cell_ops a"),
	docTitle:   cascadia.MustCompile("title"),
}

// 用户主题页
var memberTopicsSel = struct {
	content cascadia.Selector
	count   cascadia.Selector
}{
	content: cascadia.MustCompile(".topic_content"),
	count:   cascadia.MustCompile(".header > .fr > .gray"),
}

// unfavoriteLabel is the text of the control shown once a node is followed.
const unfavoriteLabel = "Unfavorite"

// hiddenTopicsMarker marks a member whose topic list is private.
const hiddenTopicsMarker = "主题列表被隐藏"

// ParseTopicList builds one Topic per matched row, in document order.
func ParseTopicList(rows *goquery.Selection) []Topic {
	topics := make([]Topic, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		topics = append(topics, parseTopicRow(row))
	})
	return topics
}

func parseTopicRow(row *goquery.Selection) Topic {
	link := within(row, listSel.titleLink).First()
	avatar := within(row, listSel.avatar).First()
	node := within(row, listSel.node).First()
	users := within(row, listSel.users)

	topic := Topic{
		ID:                TopicIDFromPath(attr(link, "href")),
		Title:             text(link),
		NodeName:          NodeNameFromPath(attr(node, "href")),
		NodeTitle:         text(node),
		Author:            text(users.Eq(0)),
		Avatar:            attr(avatar, "src"),
		Vote:              ParseInt(text(within(row, listSel.votes).First())),
		ReplyCount:        ParseInt(text(within(row, listSel.count).First())),
		LastRepliedBy:     text(users.Eq(1)),
		LastReplyDatetime: ParseDatetime(attr(within(row, listSel.lastReply).First(), "title")),
		Supplements:       []Supplement{},
	}
	if topic.Author == "" {
		topic.Author = attr(avatar, "alt")
	}
	return topic
}

// ParseTabPage parses the home page for one tab.
func ParseTabPage(p *Page) []Topic {
	return ParseTopicList(p.Find(tabItemsSel))
}

// ParseRecentPage parses /recent.
func ParseRecentPage(p *Page) TopicListPage {
	_, maxPage := pageInput(p, 1)
	return TopicListPage{
		Topics:  ParseTopicList(p.Find(tabItemsSel)),
		MaxPage: maxPage,
	}
}

// ParseCollectionPage parses /my/topics.
func ParseCollectionPage(p *Page) TopicListPage {
	_, maxPage := pageInput(p, 1)
	return TopicListPage{
		Topics:  ParseTopicList(p.Find(collectionItemsSel)),
		MaxPage: maxPage,
	}
}

// ParseNodePage parses /go/<name>. Rows on a node page carry no node link, so
// each topic is attached to the node being viewed.
func ParseNodePage(p *Page, name string) NodePage {
	_, maxPage := pageInput(p, 1)
	code, once, followed := ParseNodeFollowState(p)

	node := Node{
		Name:       name,
		Title:      nodeTitleFromDocTitle(text(p.Find(nodeSel.docTitle).First())),
		Icon:       attr(p.Find(nodeSel.icon).First(), "src"),
		Intro:      text(p.Find(nodeSel.intro).First()),
		Code:       code,
		Once:       once,
		IsFollowed: followed,
		TopicCount: ParseInt(text(p.Find(nodeSel.topicCount).First())),
	}

	topics := ParseTopicList(p.Find(nodeItemsSel))
	for i := range topics {
		if topics[i].NodeName == "" {
			topics[i].NodeName = node.Name
			topics[i].NodeTitle = node.Title
		}
	}

	return NodePage{Node: node, Topics: topics, MaxPage: maxPage}
}

// ParseNodeFollowState reads the follow control of a node page. followed is
// true when the control offers "Unfavorite". code and once stay empty when the
// link does not match.
func ParseNodeFollowState(p *Page) (code, once string, followed bool) {
	control := p.Find(nodeSel.followLink)
	code, once = MatchNodeFollow(attr(control.First(), "href"))
	followed = strings.Contains(control.Text(), unfavoriteLabel)
	return code, once, followed
}

// "V2EX › Python" → "Python"
func nodeTitleFromDocTitle(title string) string {
	parts := strings.Split(title, "›")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-1])
}

// ParseMemberTopicsPage parses /member/<name>/topics.
func ParseMemberTopicsPage(p *Page) MemberTopicsPage {
	if strings.Contains(p.Find(memberTopicsSel.content).Text(), hiddenTopicsMarker) {
		return MemberTopicsPage{Topics: []Topic{}, MaxPage: 1, IsHidden: true}
	}

	_, maxPage := pageInput(p, 1)
	return MemberTopicsPage{
		Topics:     ParseTopicList(p.Find(tabItemsSel)),
		TopicCount: ParseInt(text(p.Find(memberTopicsSel.count).First())),
		MaxPage:    maxPage,
	}
}
