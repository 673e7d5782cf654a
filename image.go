package v2md

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/go-resty/resty/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

const maxImageWorkers = 4

// ImageHandler downloads the images a topic embeds and points the markdown
// at the local copies.
type ImageHandler struct {
	client  *resty.Client
	workers int
}

// NewImageHandler creates a new image handler
func NewImageHandler(userAgent string, timeout time.Duration) *ImageHandler {
	client := resty.New()
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &ImageHandler{client: client, workers: maxImageWorkers}
}

type downloadResult struct {
	URL       string
	ImageData []byte
	Error     error
}

// CollectImageURLs walks a markdown document and returns the remote image
// destinations in document order, without duplicates.
func CollectImageURLs(markdown string) ([]string, error) {
	md := goldmark.New()
	source := []byte(markdown)
	doc := md.Parser().Parse(gmtext.NewReader(source))

	seen := make(map[string]bool)
	var urls []string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindImage {
			return ast.WalkContinue, nil
		}
		imageURL := string(n.(*ast.Image).Destination)
		if isRemoteURL(imageURL) && !seen[imageURL] {
			seen[imageURL] = true
			urls = append(urls, imageURL)
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error during AST walk: %w", err)
	}
	return urls, nil
}

// LocalizeImages downloads every remote image of markdown into imagesDir and
// rewrites the image destinations to "images/<file>". Images already in known
// are reused. Failed downloads keep their remote URL.
func (ih *ImageHandler) LocalizeImages(ctx context.Context, imagesDir, markdown string, known []Image) (string, []Image, error) {
	mapping := make(map[string]string)
	images := append([]Image(nil), known...)
	for _, img := range known {
		if img.Downloaded {
			mapping[img.URL] = img.Local
		}
	}

	urls, err := CollectImageURLs(markdown)
	if err != nil {
		return "", nil, err
	}
	var pending []string
	for _, u := range urls {
		if _, ok := mapping[u]; ok {
			slog.Debug("Reusing cached image", "url", u, "file", mapping[u])
			continue
		}
		pending = append(pending, u)
	}
	if len(urls) == 0 {
		return markdown, images, nil
	}

	if len(pending) > 0 {
		if err := os.MkdirAll(imagesDir, 0o755); err != nil {
			return "", nil, NewIOError("failed to create images dir", err)
		}
		for _, result := range ih.downloadConcurrently(ctx, pending) {
			if result.Error != nil {
				slog.Warn("Failed to download image", "url", result.URL, "error", result.Error)
				continue
			}
			img, err := saveImage(imagesDir, result.URL, result.ImageData)
			if err != nil {
				slog.Warn("Failed to save image", "url", result.URL, "error", err)
				continue
			}
			mapping[img.URL] = img.Local
			images = append(images, img)
		}
	}

	rewritten, err := rewriteImageDestinations(markdown, mapping)
	if err != nil {
		return "", nil, err
	}
	return rewritten, images, nil
}

// downloadConcurrently downloads images using a worker pool
func (ih *ImageHandler) downloadConcurrently(ctx context.Context, imageURLs []string) []downloadResult {
	workers := min(ih.workers, len(imageURLs))

	tasks := make(chan string, len(imageURLs))
	results := make(chan downloadResult, len(imageURLs))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range tasks {
				data, err := ih.downloadImage(ctx, u)
				results <- downloadResult{URL: u, ImageData: data, Error: err}
			}
		}()
	}

	for _, u := range imageURLs {
		tasks <- u
	}
	close(tasks)
	wg.Wait()
	close(results)

	collected := make([]downloadResult, 0, len(imageURLs))
	for r := range results {
		collected = append(collected, r)
	}
	return collected
}

func (ih *ImageHandler) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	res, err := ih.client.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("bad status code: %s", res.Status())
	}
	return res.Body(), nil
}

// saveImage stores data under its MD5 hash and keeps the URL's extension.
func saveImage(imagesDir, imageURL string, data []byte) (Image, error) {
	filename := fmt.Sprintf("%x%s", md5.Sum(data), imageExt(imageURL))
	filePath := filepath.Join(imagesDir, filename)

	if _, err := os.Stat(filePath); err != nil {
		if err := os.WriteFile(filePath, data, 0o644); err != nil {
			return Image{}, err
		}
	}
	slog.Debug("Cached image", "url", imageURL, "path", filePath)

	return Image{
		URL:        imageURL,
		Local:      filename,
		FileSize:   int64(len(data)),
		Downloaded: true,
	}, nil
}

func imageExt(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}
	return path.Ext(u.Path)
}

// rewriteImageDestinations points image nodes at images/<file> and renders
// the document back to markdown.
func rewriteImageDestinations(markdown string, mapping map[string]string) (string, error) {
	md := goldmark.New()
	source := []byte(markdown)
	doc := md.Parser().Parse(gmtext.NewReader(source))

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindImage {
			return ast.WalkContinue, nil
		}
		img := n.(*ast.Image)
		if local, ok := mapping[string(img.Destination)]; ok {
			img.Destination = []byte(imagesDirName + "/" + local)
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("error during URL replacement: %w", err)
	}

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, source, doc); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	// 渲染结果是 HTML，再转回 Markdown
	out, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML back to markdown: %w", err)
	}
	return out, nil
}

// isRemoteURL checks if a URL is an absolute http(s) URL.
func isRemoteURL(imageURL string) bool {
	u, err := url.Parse(imageURL)
	if err != nil || !u.IsAbs() || !strings.HasPrefix(u.Scheme, "http") {
		return false
	}
	return true
}
