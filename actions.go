package v2md

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// CollectResult 收藏/取消收藏主题的结果
type CollectResult struct {
	IsCollect bool   `toml:"is_collect"` // 操作后是否处于收藏状态
	Token     string `toml:"token"`      // 下一次切换用的 t 参数，空表示未能读取
	Succeeded bool   `toml:"succeeded"`  // 收藏状态是否与请求一致
}

// FollowResult 关注/取消关注的结果
type FollowResult struct {
	IsFollowed bool   `toml:"is_followed"`
	Once       string `toml:"once"` // 空表示未能读取，需要重新加载页面
	Succeeded  bool   `toml:"succeeded"`
}

// ReplyResult 回复结果
type ReplyResult struct {
	Problems  []string `toml:"problems"`
	Replies   []Reply  `toml:"replies"`
	Topic     Topic    `toml:"topic"`
	Once      string   `toml:"once"`
	Succeeded bool     `toml:"succeeded"`
}

// FavoriteTopic collects a topic. token is the "t" value read from the topic
// page (Topic.CSRFToken). The request carries the topic page as Referer.
func (f *Forum) FavoriteTopic(ctx context.Context, id int, token string) (CollectResult, error) {
	return f.toggleCollect(ctx, id, token, true)
}

// UnfavoriteTopic reverses FavoriteTopic. The request carries the topic page
// as Referer.
func (f *Forum) UnfavoriteTopic(ctx context.Context, id int, token string) (CollectResult, error) {
	return f.toggleCollect(ctx, id, token, false)
}

func (f *Forum) toggleCollect(ctx context.Context, id int, token string, collect bool) (CollectResult, error) {
	if err := requireID("主题ID", id); err != nil {
		return CollectResult{}, err
	}

	action := "unfavorite"
	if collect {
		action = "favorite"
	}
	topicPath := "/t/" + strconv.Itoa(id)

	page, _, err := f.fetch(ctx, Request{
		Method:  http.MethodGet,
		Path:    "/" + action + "/topic/" + strconv.Itoa(id),
		Query:   url.Values{"t": {token}},
		Referer: f.url(topicPath),
	})
	if err != nil {
		return CollectResult{}, err
	}

	isCollect, next := ParseCollectState(page)
	logRenewal(action+" topic", next, "topic", id)
	return CollectResult{
		IsCollect: isCollect,
		Token:     next,
		Succeeded: isCollect == collect,
	}, nil
}

// FollowNode follows or unfollows a node. code is the numeric node code from
// the node page's follow control (Node.Code); name is the node slug, which
// the request needs for its Referer. The session token is consumed and
// replaced by the one on the result page.
func (f *Forum) FollowNode(ctx context.Context, sess *Session, code, name string, follow bool) (FollowResult, error) {
	if err := requireName("节点代码", code); err != nil {
		return FollowResult{}, err
	}
	if err := requireName("节点名", name); err != nil {
		return FollowResult{}, err
	}

	action := "unfavorite"
	if follow {
		action = "favorite"
	}

	page, _, err := f.fetch(ctx, Request{
		Method:  http.MethodGet,
		Path:    "/" + action + "/node/" + code,
		Query:   url.Values{"once": {sess.Token()}},
		Referer: f.url("/go/" + url.PathEscape(name)),
	})
	if err != nil {
		return FollowResult{}, err
	}

	_, once, followed := ParseNodeFollowState(page)
	sess.Renew(once)
	logRenewal(action+" node", once, "node", name)
	return FollowResult{
		IsFollowed: followed,
		Once:       once,
		Succeeded:  followed == follow,
	}, nil
}

// FollowUser follows or unfollows a member. username is needed for the
// Referer, which must be the member's page.
func (f *Forum) FollowUser(ctx context.Context, sess *Session, userID int, username string, follow bool) (FollowResult, error) {
	if err := requireID("用户ID", userID); err != nil {
		return FollowResult{}, err
	}
	if err := requireName("用户名", username); err != nil {
		return FollowResult{}, err
	}

	action := "unfollow"
	if follow {
		action = "follow"
	}

	page, _, err := f.fetch(ctx, Request{
		Method:  http.MethodGet,
		Path:    "/" + action + "/" + strconv.Itoa(userID),
		Query:   url.Values{"once": {sess.Token()}},
		Referer: f.url("/member/" + url.PathEscape(username)),
	})
	if err != nil {
		return FollowResult{}, err
	}

	followed, once := ParseUserFollowState(page)
	sess.Renew(once)
	logRenewal(action+" user", once, "user", username)
	return FollowResult{
		IsFollowed: followed,
		Once:       once,
		Succeeded:  followed == follow,
	}, nil
}

// ReplyTopic posts a reply. content and once travel as query parameters.
// A rejected reply is reported through Problems, not as an error.
func (f *Forum) ReplyTopic(ctx context.Context, sess *Session, id int, content string) (ReplyResult, error) {
	if err := requireID("主题ID", id); err != nil {
		return ReplyResult{}, err
	}
	if content == "" {
		return ReplyResult{}, NewValidationError("回复内容不能为空")
	}

	topicPath := "/t/" + strconv.Itoa(id)
	page, _, err := f.fetch(ctx, Request{
		Method:  http.MethodPost,
		Path:    topicPath,
		Query:   url.Values{"content": {content}, "once": {sess.Token()}},
		Referer: f.url(topicPath),
	})
	if err != nil {
		return ReplyResult{}, err
	}

	problems := ParseProblems(page)
	details := ParseTopicDetails(page)
	replies := ParseReplyList(page)
	details.ID = id
	details.ReplyCount = replies.ReplyCount
	details.LastReplyDatetime = replies.LastReplyDatetime

	once := ParseOnce(page)
	sess.Renew(once)
	logRenewal("reply", once, "topic", id)
	return ReplyResult{
		Problems:  problems,
		Replies:   replies.Replies,
		Topic:     details,
		Once:      once,
		Succeeded: len(problems) == 0,
	}, nil
}

// DailyMission loads the daily mission page and, when redeem is set and the
// reward is still open, claims it. A successful claim adds the day to Days.
func (f *Forum) DailyMission(ctx context.Context, sess *Session, redeem bool) (MissionResult, error) {
	page, err := f.get(ctx, "/mission/daily", nil)
	if err != nil {
		return MissionResult{}, err
	}

	result := ParseMissionPage(page)
	sess.Renew(result.Once)
	logRenewal("mission", result.Once, "signed", result.IsSigned)

	if result.IsSigned || !redeem {
		return result, nil
	}

	page, err = f.get(ctx, "/mission/daily/redeem", url.Values{"once": {sess.Token()}})
	if err != nil {
		return result, err
	}
	// 结果页同样只在登出链接里带 once
	result.Once = ParseMissionPage(page).Once
	sess.Renew(result.Once)
	logRenewal("mission redeem", result.Once, "signed", result.IsSigned)
	if ParseRedeemResult(page) {
		result.IsSigned = true
		result.Days++
	}
	return result, nil
}

func logRenewal(action, once string, args ...any) {
	args = append([]any{"action", action}, args...)
	if once == "" {
		slog.Warn("No token on result page, reload before the next action", args...)
		return
	}
	slog.Debug("Token renewed", append(args, "once", once)...)
}
