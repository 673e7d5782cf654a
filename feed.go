package v2md

import (
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"time"

	"github.com/gorilla/feeds"
)

// FeedFormat 订阅输出格式
type FeedFormat string

const (
	FeedAtom FeedFormat = "atom"
	FeedRSS  FeedFormat = "rss"
)

// FeedBuilder turns topic lists into Atom or RSS documents.
type FeedBuilder struct {
	baseURL string
	now     func() time.Time
}

// NewFeedBuilder creates a builder linking items to baseURL.
func NewFeedBuilder(baseURL string) *FeedBuilder {
	return &FeedBuilder{baseURL: trimBase(baseURL), now: time.Now}
}

// Build creates a feed for topics listed under path ("/?tab=hot", "/go/python").
func (fb *FeedBuilder) Build(title, path string, topics []Topic) *feeds.Feed {
	now := fb.now()
	feed := &feeds.Feed{
		Title:       title,
		Description: "V2EX · " + title,
		Link:        &feeds.Link{Href: fb.baseURL + path, Rel: "self", Type: "text/html"},
		Id:          fb.baseURL + path,
		Created:     now,
		Updated:     now,
	}

	for _, topic := range topics {
		link := fb.baseURL + "/t/" + strconv.Itoa(topic.ID)
		created := parseTimestamp(topic.LastReplyDatetime, now)

		feed.Items = append(feed.Items, &feeds.Item{
			Title:       topic.Title,
			Link:        &feeds.Link{Href: link, Rel: "alternate", Type: "text/html"},
			Id:          link,
			Author:      &feeds.Author{Name: topic.Author},
			Description: fb.describe(topic),
			Created:     created,
			Updated:     created,
		})
	}
	return feed
}

func (fb *FeedBuilder) describe(topic Topic) string {
	desc := fmt.Sprintf("<p>%s · %d 条回复</p>", html.EscapeString(topic.NodeTitle), topic.ReplyCount)
	if topic.LastRepliedBy != "" {
		desc += fmt.Sprintf("<p>最后回复: %s</p>", html.EscapeString(topic.LastRepliedBy))
	}
	return desc
}

// Render serializes the feed in the requested format.
func (fb *FeedBuilder) Render(feed *feeds.Feed, format FeedFormat) (string, error) {
	var (
		out string
		err error
	)
	switch format {
	case FeedRSS:
		out, err = feed.ToRss()
	case FeedAtom, "":
		out, err = feed.ToAtom()
	default:
		return "", NewValidationError("不支持的订阅格式: " + string(format))
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s feed: %w", format, err)
	}

	slog.Debug("Feed generated", "format", format, "items", len(feed.Items), "size", len(out))
	return out, nil
}

// parseTimestamp reads the values ParseDatetime produces. Relative times
// ("3 小时前") fall back to def.
func parseTimestamp(s string, def time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
		return t
	}
	return def
}
