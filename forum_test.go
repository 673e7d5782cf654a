package v2md

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport serves canned bodies keyed by "METHOD path" and records
// every request it sees.
type fakeTransport struct {
	mu       sync.Mutex
	pages    map[string]string
	cookies  []*http.Cookie
	err      error
	requests []Request
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{pages: make(map[string]string)}
}

func (ft *fakeTransport) serve(method, path, body string) {
	ft.pages[method+" "+path] = body
}

func (ft *fakeTransport) Do(_ context.Context, req Request) (*Response, error) {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	if req.Method == "" {
		req.Method = http.MethodGet
	}
	ft.requests = append(ft.requests, req)
	if ft.err != nil {
		return nil, ft.err
	}
	body, ok := ft.pages[req.Method+" "+req.Path]
	if !ok {
		return nil, NewHTTPStatusError(req.Method, req.Path, http.StatusNotFound)
	}
	return &Response{Body: body, StatusCode: http.StatusOK, Cookies: ft.cookies}, nil
}

func (ft *fakeTransport) last(t *testing.T) Request {
	t.Helper()
	require.NotEmpty(t, ft.requests, "no request was made")
	return ft.requests[len(ft.requests)-1]
}

const testBaseURL = "https://www.v2ex.com"

func TestForumReadOperations(t *testing.T) {
	ft := newFakeTransport()
	ft.serve("GET", "/", topicRowHTML(1, "t", "python", "alice", "", 0))
	ft.serve("GET", "/t/1024", topicPageHTML(1, replyRowHTML(1, 1, "bob")))
	ft.serve("GET", "/member/alice", profilePageHTML)
	f := NewForum(ft, testBaseURL+"/")
	ctx := context.Background()

	topics, err := f.TopicsByTab(ctx, "hot")
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "hot", ft.last(t).Query.Get("tab"))

	page, err := f.Topic(ctx, 1024, 0)
	require.NoError(t, err)
	assert.Equal(t, 1024, page.Topic.ID)
	assert.Equal(t, "1", ft.last(t).Query.Get("p"), "page numbers below 1 are clamped")

	profile, err := f.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 12345, profile.Profile.ID)
	assert.Equal(t, testBaseURL, f.BaseURL())
}

func TestForumValidatesArguments(t *testing.T) {
	ft := newFakeTransport()
	f := NewForum(ft, testBaseURL)
	ctx := context.Background()

	_, err := f.Topic(ctx, 0, 1)
	assert.True(t, IsErrorType(err, ValidationError))
	_, err = f.NodeTopics(ctx, "", 1)
	assert.True(t, IsErrorType(err, ValidationError))
	_, err = f.Profile(ctx, "")
	assert.True(t, IsErrorType(err, ValidationError))
	assert.Empty(t, ft.requests, "invalid arguments must not reach the transport")
}

func TestForumWrapsTransportErrors(t *testing.T) {
	ft := newFakeTransport()
	ft.err = NewNetworkError("boom", errors.New("connection reset"))
	f := NewForum(ft, testBaseURL)

	_, err := f.RecentTopics(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsErrorType(err, NetworkError))
	assert.Contains(t, err.Error(), "/recent")
}

func TestForumHTTPStatusError(t *testing.T) {
	f := NewForum(newFakeTransport(), testBaseURL)

	_, err := f.Balance(context.Background())
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "HTTP404", appErr.Code)
}
