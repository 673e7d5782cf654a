package v2md

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// 主题详情
var topicSel = struct {
	title       cascadia.Selector
	content     cascadia.Selector
	createdAt   cascadia.Selector
	node        cascadia.Selector
	avatar      cascadia.Selector
	byline      cascadia.Selector
	buttons     cascadia.Selector
	votes       cascadia.Selector
	stats       cascadia.Selector
	supplements cascadia.Selector
	subtleTime  cascadia.Selector
}{
	title:       cascadia.MustCompile("h1"),
	content:     cascadia.MustCompile(".topic_content"),
	createdAt:   cascadia.MustCompile("small.gray > span"),
	node:        cascadia.MustCompile(".header > a:nth-child(4)"),
	avatar:      cascadia.MustCompile(".header .avatar"),
	byline:      cascadia.MustCompile("small.gray"),
	buttons:     cascadia.MustCompile(".topic_buttons .tb"),
	votes:       cascadia.MustCompile(".votes a"),
	stats:       cascadia.MustCompile(".topic_stats"),
	supplements: cascadia.MustCompile(".subtle"),
	subtleTime:  cascadia.MustCompile(".fade > span"),
}

// 回复列表
var replySel = struct {
	rows      cascadia.Selector
	aggregate cascadia.Selector
	avatar    cascadia.Selector
	author    cascadia.Selector
	createdAt cascadia.Selector
	thanks    cascadia.Selector
	no        cascadia.Selector
	content   cascadia.Selector
	thanked   cascadia.Selector
}{
	rows:      cascadia.MustCompile("#Main > .box:nth-child(4) .cell"),
	aggregate: cascadia.MustCompile(".gray"),
	avatar:    cascadia.MustCompile(".avatar"),
	author:    cascadia.MustCompile(".dark"),
	createdAt: cascadia.MustCompile(".ago"),
	thanks:    cascadia.MustCompile(".small.fade"),
	no:        cascadia.MustCompile(".no"),
	content:   cascadia.MustCompile(".reply_content"),
	thanked:   cascadia.MustCompile(".thank_area.thanked"),
}

// ReplyPaginationThreshold is the reply count above which the reply box
// renders pager rows at index 1 and at the last index.
const ReplyPaginationThreshold = 100

const thankedMarker = "感谢已发送"

// ReplyRowKind is the role of one row of the reply box.
type ReplyRowKind int

const (
	// AggregateRow carries the reply count and last reply time.
	AggregateRow ReplyRowKind = iota
	// PaginationRow carries the pager.
	PaginationRow
	// DataRow is one reply.
	DataRow
)

func (k ReplyRowKind) String() string {
	switch k {
	case AggregateRow:
		return "aggregate"
	case PaginationRow:
		return "pagination"
	default:
		return "data"
	}
}

// ReplyRowKindAt classifies a row of the reply box by position. replyCount is
// the count read from the aggregate row; rowCount is the number of rows.
func ReplyRowKindAt(index, rowCount, replyCount int) ReplyRowKind {
	switch {
	case index == 0:
		return AggregateRow
	case replyCount > ReplyPaginationThreshold && (index == 1 || index == rowCount-1):
		return PaginationRow
	default:
		return DataRow
	}
}

// ReplyList is the reply box of one topic page.
type ReplyList struct {
	Replies           []Reply
	ReplyCount        int
	LastReplyDatetime string
	CurrPage          int
	MaxPage           int
}

// ParseReplyList scans the reply box once, row by row.
func ParseReplyList(p *Page) ReplyList {
	list := ReplyList{
		Replies:  []Reply{},
		CurrPage: 1,
		MaxPage:  1,
	}

	rows := p.Find(replySel.rows)
	rowCount := rows.Length()
	rows.Each(func(i int, row *goquery.Selection) {
		switch ReplyRowKindAt(i, rowCount, list.ReplyCount) {
		case AggregateRow:
			info := strings.Split(within(row, replySel.aggregate).Text(), "•")
			list.ReplyCount = ParseInt(info[0])
			if len(info) > 1 {
				list.LastReplyDatetime = ParseDatetime(info[1])
			}
		case PaginationRow:
			list.CurrPage, list.MaxPage = pageInput(p, 1)
		case DataRow:
			list.Replies = append(list.Replies, parseReplyRow(row))
		}
	})
	return list
}

func parseReplyRow(row *goquery.Selection) Reply {
	reply := Reply{
		No:        ParseInt(text(within(row, replySel.no).First())),
		Author:    text(within(row, replySel.author).First()),
		Avatar:    attr(within(row, replySel.avatar).First(), "src"),
		Content:   innerHTML(within(row, replySel.content)),
		CreatedAt: ParseDatetime(attr(within(row, replySel.createdAt).First(), "title")),
		Thanks:    ParseInt(text(within(row, replySel.thanks).First())),
		Thanked:   strings.Contains(within(row, replySel.thanked).Text(), thankedMarker),
	}

	// id="r_12345"
	if parts := strings.Split(attr(row, "id"), "_"); len(parts) == 2 {
		reply.ID = ParseInt(parts[1])
	}
	return reply
}

type topicStat int

const (
	statUnknown topicStat = iota
	statViews
	statLikes
	statThanks
)

// "1234 views ∙ 5 likes ∙ 3 人感谢"
var topicStatRules = []Rule[topicStat]{
	ContainsRule("views", statViews),
	ContainsRule("likes", statLikes),
	ContainsRule("感谢", statThanks),
}

// ParseTopicDetails reads the topic header, body, counters and supplements.
// Reply-derived fields are left to ParseReplyList.
func ParseTopicDetails(p *Page) Topic {
	node := p.Find(topicSel.node).First()
	avatar := p.Find(topicSel.avatar).First()

	topic := Topic{
		Title:       text(p.Find(topicSel.title).First()),
		Content:     innerHTML(p.Find(topicSel.content)),
		CreatedAt:   ParseDatetime(attr(p.Find(topicSel.createdAt).First(), "title")),
		NodeName:    NodeNameFromPath(attr(node, "href")),
		NodeTitle:   text(node),
		Avatar:      attr(avatar, "src"),
		Author:      attr(avatar, "alt"),
		Vote:        ParseInt(text(p.Find(topicSel.votes).First())),
		Supplements: ParseSupplements(p),
	}

	// "author · 3 小时前 via iPhone · 1234 次点击"
	if byline := strings.Split(p.Find(topicSel.byline).Text(), "·"); len(byline) > 1 {
		topic.Via = ClassifyVia(byline[1])
	}

	topic.IsCollect, topic.CSRFToken = ParseCollectState(p)

	for _, segment := range strings.Split(p.Find(topicSel.stats).Text(), "∙") {
		switch Classify(segment, topicStatRules, statUnknown) {
		case statViews:
			topic.Views = ParseInt(segment)
		case statLikes:
			topic.Likes = ParseInt(segment)
		case statThanks:
			topic.Thanks = ParseInt(segment)
		}
	}

	return topic
}

// ParseSupplements returns the addenda in DOM order.
func ParseSupplements(p *Page) []Supplement {
	supplements := []Supplement{}
	p.Find(topicSel.supplements).Each(func(_ int, s *goquery.Selection) {
		supplements = append(supplements, Supplement{
			CreatedAt: ParseDatetime(attr(within(s, topicSel.subtleTime).First(), "title")),
			Content:   innerHTML(within(s, topicSel.content)),
		})
	})
	return supplements
}

// ParseCollectState reads the first topic button. The topic is collected when
// that button links to "unfavorite"; its "t" parameter is the token for the
// next toggle.
func ParseCollectState(p *Page) (isCollect bool, token string) {
	href := attr(p.Find(topicSel.buttons).Eq(0), "href")
	return strings.Contains(href, "unfavorite"), ParseQuery(href).Get("t")
}

// ParseTopicPage parses /t/<id>.
func ParseTopicPage(p *Page, id int) TopicPage {
	topic := ParseTopicDetails(p)
	replies := ParseReplyList(p)

	topic.ID = id
	topic.ReplyCount = replies.ReplyCount
	topic.LastReplyDatetime = replies.LastReplyDatetime
	if n := len(replies.Replies); n > 0 && replies.CurrPage == replies.MaxPage {
		topic.LastRepliedBy = replies.Replies[n-1].Author
	}

	return TopicPage{
		Topic:    topic,
		Replies:  replies.Replies,
		CurrPage: replies.CurrPage,
		MaxPage:  replies.MaxPage,
		Once:     ParseOnce(p),
		UserBox:  ParseUserBox(p),
	}
}
