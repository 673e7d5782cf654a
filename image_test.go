package v2md

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectImageURLs(t *testing.T) {
	markdown := strings.Join([]string{
		"![a](https://i.imgur.com/a.png)",
		"[link](https://i.imgur.com/b.png)",
		"![local](images/c.png)",
		"![again](https://i.imgur.com/a.png)",
		"![d](http://example.com/d.jpg)",
	}, "\n\n")

	urls, err := CollectImageURLs(markdown)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://i.imgur.com/a.png", "http://example.com/d.jpg"}, urls)
}

func TestRewriteImageDestinationsLeavesLinks(t *testing.T) {
	markdown := "![img](https://cdn.example.com/a.jpg)\n\n[link](https://cdn.example.com/a.jpg)"

	got, err := rewriteImageDestinations(markdown, map[string]string{
		"https://cdn.example.com/a.jpg": "a-local.jpg",
	})
	require.NoError(t, err)
	assert.Contains(t, got, "![img](images/a-local.jpg)")
	assert.Contains(t, got, "[link](https://cdn.example.com/a.jpg)")
}

func TestLocalizeImages(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("image:" + r.URL.Path))
	}))
	defer srv.Close()

	markdown := strings.Join([]string{
		"![ok](" + srv.URL + "/ok.png)",
		"![gone](" + srv.URL + "/missing.png)",
		"![cached](" + srv.URL + "/cached.gif)",
	}, "\n\n")
	known := []Image{{URL: srv.URL + "/cached.gif", Local: "cached.gif", Downloaded: true}}
	dir := filepath.Join(t.TempDir(), "images")

	h := NewImageHandler("v2md-test", 5*time.Second)
	got, images, err := h.LocalizeImages(context.Background(), dir, markdown, known)
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load(), "cached images are not fetched again")
	require.Len(t, images, 2)
	fresh := images[1]
	assert.Equal(t, srv.URL+"/ok.png", fresh.URL)
	assert.True(t, strings.HasSuffix(fresh.Local, ".png"))
	assert.Equal(t, int64(len("image:/ok.png")), fresh.FileSize)

	data, err := os.ReadFile(filepath.Join(dir, fresh.Local))
	require.NoError(t, err)
	assert.Equal(t, "image:/ok.png", string(data))

	assert.Contains(t, got, "images/"+fresh.Local)
	assert.Contains(t, got, "images/cached.gif")
	assert.Contains(t, got, srv.URL+"/missing.png", "failed downloads keep the remote URL")
}

func TestLocalizeImagesWithoutImages(t *testing.T) {
	h := NewImageHandler("", 0)
	got, images, err := h.LocalizeImages(context.Background(), t.TempDir(), "纯文本", nil)
	require.NoError(t, err)
	assert.Equal(t, "纯文本", got)
	assert.Empty(t, images)
}

func TestImageExt(t *testing.T) {
	assert.Equal(t, ".png", imageExt("https://i.imgur.com/a.png?x=1"))
	assert.Equal(t, "", imageExt("https://i.imgur.com/a"))
	assert.False(t, isRemoteURL("images/a.png"))
	assert.False(t, isRemoteURL("ftp://host/a.png"))
	assert.True(t, isRemoteURL("https://host/a.png"))
}
