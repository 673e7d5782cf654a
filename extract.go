package v2md

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled patterns shared by the parsers.
var (
	nonDigitPattern   = regexp.MustCompile(`\D+`)
	datetimePattern   = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})[ T]+(\d{1,2}):(\d{1,2})(?::(\d{1,2}))?(?:\s*([+-]\d{2}):?(\d{2}))?`)
	nodePathPattern   = regexp.MustCompile(`(?:^|/)go/([^/]+)/?$`)
	topicPathPattern  = regexp.MustCompile(`(?:^|/)t/(\d+)/?$`)
	queryPairPattern  = regexp.MustCompile(`[?&]([^=#&]+)=([^&#]*)`)
	oncePattern       = regexp.MustCompile(`once=(\d+)`)
	nodeFollowPattern = regexp.MustCompile(`(\d+)\?once=(\d+)`)
	tokenPattern      = regexp.MustCompile(`t=(\d+)`)
)

// ParseInt strips every non-digit rune and parses what remains.
// Labels such as "views" or "人感谢" are dropped; no digits yields 0.
func ParseInt(s string) int {
	digits := nonDigitPattern.ReplaceAllString(s, "")
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// ParseDatetime normalizes a displayed "2006-1-2 15:04:05 +08:00" style
// timestamp found anywhere in s to "2006-01-02T15:04:05+08:00". The zone is
// kept only when present. Text without a timestamp, such as "3 小时前", is
// returned trimmed; empty input yields "".
func ParseDatetime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	m := datetimePattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}

	num := func(v string) int {
		n, _ := strconv.Atoi(v)
		return n
	}

	out := fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
		num(m[1]), num(m[2]), num(m[3]), num(m[4]), num(m[5]), num(m[6]))
	if m[7] != "" {
		out += m[7] + ":" + m[8]
	}
	return out
}

// NodeNameFromPath recovers the node slug from "/go/<name>".
func NodeNameFromPath(href string) string {
	m := nodePathPattern.FindStringSubmatch(pathOf(href))
	if m == nil {
		return ""
	}
	return m[1]
}

// TopicIDFromPath recovers the topic id from "/t/<id>", ignoring any
// "#reply<n>" fragment.
func TopicIDFromPath(href string) int {
	m := topicPathPattern.FindStringSubmatch(pathOf(href))
	if m == nil {
		return 0
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return id
}

func pathOf(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Path
}

// QueryParams is an ordered key/value view of a query string.
type QueryParams struct {
	keys   []string
	values map[string]string
}

// Get returns the value for key, or "".
func (q QueryParams) Get(key string) string {
	return q.values[key]
}

// Keys returns the keys in first-seen order.
func (q QueryParams) Keys() []string {
	return q.keys
}

// Len returns the number of distinct keys.
func (q QueryParams) Len() int {
	return len(q.keys)
}

// ParseQuery reads "k=v" pairs from the query part of rawURL. Duplicate keys
// keep their first position and take the last value. Input without "?" is
// treated as a bare query string. Values are returned as written.
func ParseQuery(rawURL string) QueryParams {
	q := QueryParams{values: make(map[string]string)}
	if rawURL == "" {
		return q
	}
	if !strings.Contains(rawURL, "?") {
		rawURL = "?" + rawURL
	}

	for _, m := range queryPairPattern.FindAllStringSubmatch(rawURL, -1) {
		key, value := m[1], m[2]
		if _, seen := q.values[key]; !seen {
			q.keys = append(q.keys, key)
		}
		q.values[key] = value
	}
	return q
}

// ClassifyVia picks the client label from the text around a topic's byline.
// Checks run in order (iPhone, then Android); the first match wins.
func ClassifyVia(text string) Via {
	return Classify(text, viaRules, ViaNone)
}

// MatchOnce extracts the token from "once=<digits>".
func MatchOnce(s string) string {
	m := oncePattern.FindStringSubmatch(strings.TrimSpace(s))
	if len(m) != 2 {
		return ""
	}
	return m[1]
}

// MatchNodeFollow extracts the node code and token from a follow link such as
// "/unfavorite/node/90?once=74770".
func MatchNodeFollow(href string) (code, once string) {
	m := nodeFollowPattern.FindStringSubmatch(strings.TrimSpace(href))
	if len(m) != 3 {
		return "", ""
	}
	return m[1], m[2]
}

// MatchToken extracts "t=<digits>".
func MatchToken(s string) string {
	m := tokenPattern.FindStringSubmatch(s)
	if len(m) != 2 {
		return ""
	}
	return m[1]
}
