package v2md

import (
	"strings"

	"github.com/samber/lo"
)

// Rule pairs a predicate over a text fragment with the value it selects.
type Rule[T any] struct {
	Match  func(string) bool
	Result T
}

// ContainsRule selects result when the text contains substr.
func ContainsRule[T any](substr string, result T) Rule[T] {
	return Rule[T]{
		Match: func(s string) bool {
			return strings.Contains(s, substr)
		},
		Result: result,
	}
}

// Classify evaluates rules top to bottom and returns the first match, or fallback.
func Classify[T any](text string, rules []Rule[T], fallback T) T {
	rule, ok := lo.Find(rules, func(r Rule[T]) bool {
		return r.Match(text)
	})
	if !ok {
		return fallback
	}
	return rule.Result
}

// 客户端标识，按顺序匹配
var viaRules = []Rule[Via]{
	ContainsRule("iPhone", ViaIPhone),
	ContainsRule("Android", ViaAndroid),
}

// 提醒文本有两段时，按第二段判断
var notificationActionRules = []Rule[NotificationType]{
	ContainsRule("回复", NotificationReply),
	ContainsRule("提到", NotificationRefer),
}

// 只有一段时，按第一段判断
var notificationSubjectRules = []Rule[NotificationType]{
	ContainsRule("收藏", NotificationCollect),
	ContainsRule("感谢", NotificationThanks),
}

// ClassifyNotification maps the label text of a notification row to its kind.
// segments is the row's own text split on a double space.
func ClassifyNotification(segments []string) NotificationType {
	switch {
	case len(segments) >= 2:
		return Classify(segments[1], notificationActionRules, NotificationReply)
	case len(segments) == 1:
		return Classify(segments[0], notificationSubjectRules, NotificationReply)
	default:
		return NotificationReply
	}
}
