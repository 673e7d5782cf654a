package v2md

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Forum issues requests through a Transport and parses the pages it gets
// back. It holds no per-user state; tokens travel in a Session.
type Forum struct {
	transport Transport
	baseURL   string
}

// NewForum creates a Forum. baseURL is used to build Referer headers and
// absolute asset URLs; the transport resolves request paths on its own.
func NewForum(transport Transport, baseURL string) *Forum {
	return &Forum{
		transport: transport,
		baseURL:   trimBase(baseURL),
	}
}

// BaseURL returns the site root without a trailing slash.
func (f *Forum) BaseURL() string {
	return f.baseURL
}

func (f *Forum) url(path string) string {
	return f.baseURL + path
}

// fetch performs req and loads the response as a Page.
func (f *Forum) fetch(ctx context.Context, req Request) (*Page, *Response, error) {
	res, err := f.transport.Do(ctx, req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", req.Path, err)
	}
	page, err := NewPage(res.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", req.Path, err)
	}
	return page, res, nil
}

func (f *Forum) get(ctx context.Context, path string, query url.Values) (*Page, error) {
	page, _, err := f.fetch(ctx, Request{Path: path, Query: query})
	return page, err
}

func pageQuery(p int) url.Values {
	if p < 1 {
		p = 1
	}
	return url.Values{"p": {strconv.Itoa(p)}}
}

func requireName(kind, name string) error {
	if name == "" {
		return NewValidationError(kind + "不能为空")
	}
	return nil
}

func requireID(kind string, id int) error {
	if id <= 0 {
		return NewValidationError(fmt.Sprintf("无效的%s: %d", kind, id))
	}
	return nil
}

// TopicsByTab lists the home page for tab ("" for the default tab).
func (f *Forum) TopicsByTab(ctx context.Context, tab string) ([]Topic, error) {
	var query url.Values
	if tab != "" {
		query = url.Values{"tab": {tab}}
	}
	page, err := f.get(ctx, "/", query)
	if err != nil {
		return nil, err
	}
	return ParseTabPage(page), nil
}

// RecentTopics lists /recent.
func (f *Forum) RecentTopics(ctx context.Context, p int) (TopicListPage, error) {
	page, err := f.get(ctx, "/recent", pageQuery(p))
	if err != nil {
		return TopicListPage{}, err
	}
	return ParseRecentPage(page), nil
}

// NodeTopics lists a node together with its header and follow control.
func (f *Forum) NodeTopics(ctx context.Context, name string, p int) (NodePage, error) {
	if err := requireName("节点名", name); err != nil {
		return NodePage{}, err
	}
	page, err := f.get(ctx, "/go/"+url.PathEscape(name), pageQuery(p))
	if err != nil {
		return NodePage{}, err
	}
	return ParseNodePage(page, name), nil
}

// CollectedTopics lists the topics the logged-in user has collected.
func (f *Forum) CollectedTopics(ctx context.Context, p int) (TopicListPage, error) {
	page, err := f.get(ctx, "/my/topics", pageQuery(p))
	if err != nil {
		return TopicListPage{}, err
	}
	return ParseCollectionPage(page), nil
}

// Topic loads one page of a topic and its replies.
func (f *Forum) Topic(ctx context.Context, id, p int) (TopicPage, error) {
	if err := requireID("主题ID", id); err != nil {
		return TopicPage{}, err
	}
	page, err := f.get(ctx, "/t/"+strconv.Itoa(id), pageQuery(p))
	if err != nil {
		return TopicPage{}, err
	}
	return ParseTopicPage(page, id), nil
}

// Profile loads a member page.
func (f *Forum) Profile(ctx context.Context, username string) (ProfilePage, error) {
	if err := requireName("用户名", username); err != nil {
		return ProfilePage{}, err
	}
	page, err := f.get(ctx, "/member/"+url.PathEscape(username), nil)
	if err != nil {
		return ProfilePage{}, err
	}
	return ParseProfilePage(page, username, f.baseURL), nil
}

// MemberTopics lists the topics of a member.
func (f *Forum) MemberTopics(ctx context.Context, username string, p int) (MemberTopicsPage, error) {
	if err := requireName("用户名", username); err != nil {
		return MemberTopicsPage{}, err
	}
	page, err := f.get(ctx, "/member/"+url.PathEscape(username)+"/topics", pageQuery(p))
	if err != nil {
		return MemberTopicsPage{}, err
	}
	return ParseMemberTopicsPage(page), nil
}

// MemberReplies lists the replies of a member.
func (f *Forum) MemberReplies(ctx context.Context, username string, p int) (MemberRepliesPage, error) {
	if err := requireName("用户名", username); err != nil {
		return MemberRepliesPage{}, err
	}
	page, err := f.get(ctx, "/member/"+url.PathEscape(username)+"/replies", pageQuery(p))
	if err != nil {
		return MemberRepliesPage{}, err
	}
	return ParseMemberRepliesPage(page), nil
}

// MyNodes lists the nodes the logged-in user follows.
func (f *Forum) MyNodes(ctx context.Context) ([]MyNode, error) {
	page, err := f.get(ctx, "/my/nodes", nil)
	if err != nil {
		return nil, err
	}
	return ParseMyNodesPage(page), nil
}

// MyFollowing lists the members the logged-in user follows.
func (f *Forum) MyFollowing(ctx context.Context) ([]Following, error) {
	page, err := f.get(ctx, "/my/following", nil)
	if err != nil {
		return nil, err
	}
	return ParseFollowingPage(page), nil
}

// Notifications lists one page of notifications.
func (f *Forum) Notifications(ctx context.Context, p int) (NotificationPage, error) {
	page, err := f.get(ctx, "/notifications", pageQuery(p))
	if err != nil {
		return NotificationPage{}, err
	}
	return ParseNotificationsPage(page), nil
}

// Balance loads /balance.
func (f *Forum) Balance(ctx context.Context) (BalancePage, error) {
	page, err := f.get(ctx, "/balance", nil)
	if err != nil {
		return BalancePage{}, err
	}
	return ParseBalancePage(page), nil
}

// CurrentUser reads the logged-in user from the home page. Username is
// empty when the session is anonymous.
func (f *Forum) CurrentUser(ctx context.Context) (UserInfo, error) {
	page, err := f.get(ctx, "/", nil)
	if err != nil {
		return UserInfo{}, err
	}
	return ParseUserInfo(page), nil
}
