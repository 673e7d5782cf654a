package v2md

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// 提醒页
var notificationSel = struct {
	rows      cascadia.Selector
	payload   cascadia.Selector
	avatar    cascadia.Selector
	fade      cascadia.Selector
	user      cascadia.Selector
	topic     cascadia.Selector
	createdAt cascadia.Selector
}{
	rows:      cascadia.MustCompile("#notifications > .cell"),
	payload:   cascadia.MustCompile(".payload"),
	avatar:    cascadia.MustCompile(".avatar"),
	fade:      cascadia.MustCompile(".fade"),
	user:      cascadia.MustCompile("a:nth-child(1)"),
	topic:     cascadia.MustCompile("a:nth-child(2)"),
	createdAt: cascadia.MustCompile(".snow"),
}

// ParseNotificationsPage parses /notifications. A page without a pager
// reports MaxPage 0.
func ParseNotificationsPage(p *Page) NotificationPage {
	page := NotificationPage{Notifications: []Notification{}}
	_, page.MaxPage = pageInput(p, 0)

	p.Find(notificationSel.rows).Each(func(_ int, row *goquery.Selection) {
		page.Notifications = append(page.Notifications, parseNotificationRow(row))
	})
	return page
}

func parseNotificationRow(row *goquery.Selection) Notification {
	fade := within(row, notificationSel.fade).First()
	topic := within(fade, notificationSel.topic).First()

	return Notification{
		Type:       ClassifyNotification(strings.Split(ownText(fade), "  ")),
		Username:   text(within(fade, notificationSel.user).First()),
		Avatar:     attr(within(row, notificationSel.avatar).First(), "src"),
		TopicID:    TopicIDFromPath(attr(topic, "href")),
		TopicTitle: text(topic),
		Payload:    text(within(row, notificationSel.payload).First()),
		CreatedAt:  ParseDatetime(text(within(row, notificationSel.createdAt).First())),
	}
}
