package v2md

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notificationRowHTML(user, label string, payload string) string {
	return fmt.Sprintf(`<div class="cell"><table><tr>
  <td><a href="/member/%[1]s"><img src="https://cdn.v2ex.com/avatar/%[1]s.png" class="avatar"></a></td>
  <td><span class="fade"><a href="/member/%[1]s"><strong>%[1]s</strong></a>%[2]s</span>
  &nbsp;<span class="snow">2024-01-02 10:00:00 +08:00</span>
  <div class="payload">%[3]s</div></td>
</tr></table></div>`, user, label, payload)
}

func TestParseNotificationsPage(t *testing.T) {
	rows := []string{
		notificationRowHTML("bob", ` 在 <a href="/t/1024#reply3">如何优雅地退出</a>  里回复了你`, "用 context"),
		notificationRowHTML("carol", ` 在回复 <a href="/t/1025#reply1">第二个主题</a>  时提到了你`, "@alice 你看看"),
		notificationRowHTML("dave", ` 收藏了你发布的主题 › <a href="/t/1026">第三个主题</a>`, ""),
		notificationRowHTML("erin", ` 感谢了你发布的主题 › <a href="/t/1027">第四个主题</a>`, ""),
	}
	body := `<html><body><div id="notifications">` + strings.Join(rows, "") + `</div></body></html>`

	page := ParseNotificationsPage(mustPage(t, body))
	assert.Equal(t, 0, page.MaxPage, "no pager means MaxPage 0")
	require.Len(t, page.Notifications, 4)

	kinds := make([]NotificationType, 0, len(page.Notifications))
	for _, n := range page.Notifications {
		kinds = append(kinds, n.Type)
	}
	assert.Equal(t, []NotificationType{
		NotificationReply,
		NotificationRefer,
		NotificationCollect,
		NotificationThanks,
	}, kinds)

	first := page.Notifications[0]
	assert.Equal(t, "bob", first.Username)
	assert.Equal(t, "https://cdn.v2ex.com/avatar/bob.png", first.Avatar)
	assert.Equal(t, 1024, first.TopicID)
	assert.Equal(t, "如何优雅地退出", first.TopicTitle)
	assert.Equal(t, "用 context", first.Payload)
	assert.Equal(t, "2024-01-02T10:00:00+08:00", first.CreatedAt)
}

func TestParseNotificationsPageWithPager(t *testing.T) {
	body := `<div id="notifications"></div><input class="page_input" value="1" max="12">`
	page := ParseNotificationsPage(mustPage(t, body))
	assert.Equal(t, 12, page.MaxPage)
	assert.NotNil(t, page.Notifications)
	assert.Empty(t, page.Notifications)
}
