package v2md

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Request is one call into the forum. Mutating endpoints take their
// parameters in the query string, also for POST.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Referer string
	Header  map[string]string
}

// Response is the text of a fetched page.
type Response struct {
	Body       string
	StatusCode int
	// Cookies the session carries after the exchange, including any set on
	// the way through redirects.
	Cookies []*http.Cookie
}

// Transport performs requests against the forum. Implementations own the
// cookie jar, timeouts and request pacing.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// TransportOptions HTTP 传输配置
type TransportOptions struct {
	BaseURL          string
	Timeout          time.Duration
	UserAgent        string
	RatePerSecond    float64
	RateBurst        int
	CloudflareBypass bool
}

// RestyTransport is the resty-backed Transport.
type RestyTransport struct {
	client  *resty.Client
	limiter *rate.Limiter
	jar     http.CookieJar
	baseURL *url.URL
}

// NewRestyTransport builds the HTTP client. jar may be nil, in which case
// cookies live only for the lifetime of the transport.
func NewRestyTransport(opts TransportOptions, jar http.CookieJar) (*RestyTransport, error) {
	baseURL, err := url.Parse(trimBase(opts.BaseURL))
	if err != nil || baseURL.Host == "" {
		return nil, NewConfigError("无效的 base_url: "+opts.BaseURL, err)
	}
	if jar == nil {
		jar = NewCookieManager()
	}

	client := resty.New()
	client.SetBaseURL(baseURL.String())
	client.SetCookieJar(jar)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	t := &RestyTransport{
		client:  client,
		limiter: newLimiter(opts.RatePerSecond, opts.RateBurst),
		jar:     jar,
		baseURL: baseURL,
	}
	client.OnBeforeRequest(t.waitForSlot)
	return t, nil
}

func newLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func (t *RestyTransport) waitForSlot(_ *resty.Client, req *resty.Request) error {
	if t.limiter == nil {
		return nil
	}
	return t.limiter.Wait(req.Context())
}

// Do implements Transport. A response outside 2xx is an error.
func (t *RestyTransport) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	r := t.client.R().SetContext(ctx)
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.Referer != "" {
		r.SetHeader("Referer", req.Referer)
	}
	r.SetHeaders(req.Header)

	start := time.Now()
	res, err := r.Execute(method, req.Path)
	if err != nil {
		return nil, NewNetworkError(method+" "+req.Path+" 请求失败", err)
	}

	slog.Debug("HTTP request",
		"method", method,
		"path", req.Path,
		"status", res.StatusCode(),
		"elapsed", time.Since(start))

	if !res.IsSuccess() {
		return nil, NewHTTPStatusError(method, req.Path, res.StatusCode())
	}

	return &Response{
		Body:       string(res.Body()),
		StatusCode: res.StatusCode(),
		Cookies:    t.jar.Cookies(t.baseURL),
	}, nil
}

func trimBase(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}
