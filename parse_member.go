package v2md

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// 用户主页
var profileSel = struct {
	box         cascadia.Selector
	avatar      cascadia.Selector
	dau         cascadia.Selector
	tagLine     cascadia.Selector
	company     cascadia.Selector
	gray        cascadia.Selector
	bio         cascadia.Selector
	online      cascadia.Selector
	unfollowBtn cascadia.Selector
	followBtn   cascadia.Selector
	blockBtn    cascadia.Selector
	social      cascadia.Selector
	socialIcon  cascadia.Selector
	topics      cascadia.Selector
}{
	box:         cascadia.MustCompile("#Main > .box"),
	avatar:      cascadia.MustCompile(".avatar"),
	dau:         cascadia.MustCompile(`a[href="/top/dau"]`),
	tagLine:     cascadia.MustCompile(".bigger"),
	company:     cascadia.MustCompile(".cell > table > tbody > tr > td:nth-child(3) > span:nth-child(5)"),
	gray:        cascadia.MustCompile(".gray"),
	bio:         cascadia.MustCompile(".cell:nth-child(3)"),
	online:      cascadia.MustCompile(".online"),
	unfollowBtn: cascadia.MustCompile(".super.inverse.button"),
	followBtn:   cascadia.MustCompile(".super.special.button"),
	blockBtn:    cascadia.MustCompile(".super.normal.button"),
	social:      cascadia.MustCompile(".widgets .social_label"),
	socialIcon:  cascadia.MustCompile("img"),
	topics:      cascadia.MustCompile(".topic_content"),
}

// 用户回复页
var memberRepliesSel = struct {
	dock     cascadia.Selector
	time     cascadia.Selector
	links    cascadia.Selector
	contents cascadia.Selector
	content  cascadia.Selector
	count    cascadia.Selector
}{
	dock:     cascadia.MustCompile(".dock_area"),
	time:     cascadia.MustCompile(".fr"),
	links:    cascadia.MustCompile(".gray > a"),
	contents: cascadia.MustCompile("#Main > .box > .inner"),
	content:  cascadia.MustCompile(".reply_content"),
	count:    cascadia.MustCompile(".header > .fr > .gray"),
}

var (
	memberNoPattern   = regexp.MustCompile(`V2EX 第 (\d+) 号会员`)
	memberJoinPattern = regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}\s\d{1,2}:\d{1,2}:\d{1,2}(?:\s*[+-]\d{2}:?\d{2})?`)
)

const onlineLabel = "ONLINE"

// ParseProfilePage parses /member/<username>. Social icons are site-relative
// and are joined to baseURL.
func ParseProfilePage(p *Page, username, baseURL string) ProfilePage {
	box := p.Find(profileSel.box).First()

	profile := UserProfile{
		Username: username,
		Avatar:   attr(within(box, profileSel.avatar).First(), "src"),
		DAU:      text(within(box, profileSel.dau).First()),
		TagLine:  text(within(box, profileSel.tagLine).First()),
		Bio:      text(within(box, profileSel.bio)),
		IsOnline: text(within(box, profileSel.online).First()) == onlineLabel,
		Socials:  []Social{},
	}

	// "公司 / 职位"
	if parts := strings.Split(within(box, profileSel.company).Text(), " / "); len(parts) > 1 {
		profile.Company = strings.TrimSpace(parts[0])
		profile.WorkTitle = strings.TrimSpace(parts[1])
	}

	gray := within(box, profileSel.gray).First().Text()
	if m := memberNoPattern.FindStringSubmatch(gray); m != nil {
		profile.ID = ParseInt(m[1])
	}
	profile.CreatedAt = ParseDatetime(memberJoinPattern.FindString(gray))

	profile.BlockToken = MatchToken(attr(within(box, profileSel.blockBtn).First(), "onclick"))

	base := trimBase(baseURL)
	within(box, profileSel.social).Each(func(i int, s *goquery.Selection) {
		name := text(s)
		social := Social{
			ID:   fmt.Sprintf("%s_%d_%s", username, i, name),
			Name: name,
			URL:  attr(s, "href"),
		}
		if icon := attr(within(s, profileSel.socialIcon).First(), "src"); icon != "" {
			social.Icon = base + icon
		}
		profile.Socials = append(profile.Socials, social)
	})

	followed, once := parseFollowControls(box)
	return ProfilePage{
		Profile:    profile,
		Once:       once,
		IsFollowed: followed,
		IsHidden:   strings.Contains(p.Find(profileSel.topics).Text(), hiddenTopicsMarker),
	}
}

// ParseUserFollowState reads the follow control of a member page, as rendered
// after a follow or unfollow. followed is true when the "unfollow" button is
// present.
func ParseUserFollowState(p *Page) (followed bool, once string) {
	return parseFollowControls(p.doc.Selection)
}

func parseFollowControls(s *goquery.Selection) (followed bool, once string) {
	unfollow := attr(within(s, profileSel.unfollowBtn).First(), "onclick")
	follow := attr(within(s, profileSel.followBtn).First(), "onclick")

	onclick := unfollow
	if onclick == "" {
		onclick = follow
	}
	return unfollow != "", MatchOnce(onclick)
}

// ParseMemberRepliesPage parses /member/<username>/replies. Each header row
// pairs with the content block at the same index.
func ParseMemberRepliesPage(p *Page) MemberRepliesPage {
	contents := p.Find(memberRepliesSel.contents)
	_, maxPage := pageInput(p, 1)

	page := MemberRepliesPage{
		Replies:    []UserReply{},
		ReplyCount: ParseInt(text(p.Find(memberRepliesSel.count).First())),
		MaxPage:    maxPage,
	}

	p.Find(memberRepliesSel.dock).Each(func(i int, dock *goquery.Selection) {
		links := within(dock, memberRepliesSel.links)
		node := links.Eq(1)
		topic := links.Eq(2)

		page.Replies = append(page.Replies, UserReply{
			Author:     text(links.Eq(0)),
			NodeName:   NodeNameFromPath(attr(node, "href")),
			NodeTitle:  text(node),
			TopicID:    TopicIDFromPath(attr(topic, "href")),
			TopicTitle: text(topic),
			Content:    innerHTML(contents.Eq(i).ChildrenMatcher(memberRepliesSel.content)),
			CreatedAt:  ParseDatetime(text(within(dock, memberRepliesSel.time).First())),
		})
	})
	return page
}
