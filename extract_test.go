package v2md

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseInt(t *testing.T) {
	cases := map[string]int{
		"1234 views":  1234,
		"3 人感谢":       3,
		"  12 条回复 ": 12,
		"no digits":   0,
		"":            0,
		"1,024":       1024,
	}
	for in, want := range cases {
		if got := ParseInt(in); got != want {
			t.Errorf("ParseInt(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseDatetime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-1-2 3:04:05 +08:00", "2024-01-02T03:04:05+08:00"},
		{"2024-01-02 13:04", "2024-01-02T13:04:00"},
		{"发布于 2023-12-31 23:59:59 +0800", "2023-12-31T23:59:59+08:00"},
		{"3 小时前", "3 小时前"},
		{"  ", ""},
	}
	for _, c := range cases {
		if got := ParseDatetime(c.in); got != c.want {
			t.Errorf("ParseDatetime(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPathHelpers(t *testing.T) {
	if got := NodeNameFromPath("/go/python"); got != "python" {
		t.Errorf("NodeNameFromPath = %q", got)
	}
	if got := NodeNameFromPath("https://www.v2ex.com/go/qna/"); got != "qna" {
		t.Errorf("NodeNameFromPath absolute = %q", got)
	}
	if got := NodeNameFromPath("/member/alice"); got != "" {
		t.Errorf("NodeNameFromPath non-node = %q", got)
	}
	if got := TopicIDFromPath("/t/1024#reply35"); got != 1024 {
		t.Errorf("TopicIDFromPath with fragment = %d", got)
	}
	if got := TopicIDFromPath("/go/python"); got != 0 {
		t.Errorf("TopicIDFromPath non-topic = %d", got)
	}
}

func TestParseQuery(t *testing.T) {
	q := ParseQuery("/favorite/topic/1?t=123&once=9&t=456")
	if diff := cmp.Diff([]string{"t", "once"}, q.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if got := q.Get("t"); got != "456" {
		t.Errorf("duplicate key keeps last value, got %q", got)
	}
	if q.Len() != 2 {
		t.Errorf("Len = %d", q.Len())
	}

	bare := ParseQuery("a=1&b=2")
	if bare.Get("a") != "1" || bare.Get("b") != "2" {
		t.Errorf("bare query not parsed: %v", bare.Keys())
	}
	if ParseQuery("").Len() != 0 {
		t.Error("empty input should have no keys")
	}
}

func TestTokenMatchers(t *testing.T) {
	if got := MatchOnce("location.href = '/follow/1?once=74770'"); got != "74770" {
		t.Errorf("MatchOnce = %q", got)
	}
	if got := MatchOnce("no token"); got != "" {
		t.Errorf("MatchOnce without token = %q", got)
	}

	code, once := MatchNodeFollow("/unfavorite/node/90?once=74770")
	if code != "90" || once != "74770" {
		t.Errorf("MatchNodeFollow = %q, %q", code, once)
	}
	code, once = MatchNodeFollow("/go/python")
	if code != "" || once != "" {
		t.Errorf("MatchNodeFollow non-matching = %q, %q", code, once)
	}

	if got := MatchToken("if (confirm('确定要屏蔽吗？')) { location.href = '/block/1?t=1700000000'; }"); got != "1700000000" {
		t.Errorf("MatchToken = %q", got)
	}
}

func TestClassifyVia(t *testing.T) {
	cases := map[string]Via{
		" 3 小时前 via iPhone ":  ViaIPhone,
		" via Android ":        ViaAndroid,
		"via iPhone / Android": ViaIPhone,
		" 1234 次点击 ":          ViaNone,
	}
	for in, want := range cases {
		if got := ClassifyVia(in); got != want {
			t.Errorf("ClassifyVia(%q) = %q, want %q", in, got, want)
		}
	}
}
