package pixiv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"koneko/internal/collection"
	"koneko/internal/services"
)

const (
	defaultBaseURL     = "https://app-api.pixiv.net"
	defaultUserAgent   = "koneko/dev"
	defaultHTTPTimeout = 30 * time.Second
	maxErrorBody       = 4096
)

// Config describes the API client configuration.
type Config struct {
	BaseURL     string
	AccessToken string
	UserAgent   string
	Referer     string
	HTTPClient  *http.Client
}

// Client fetches raw catalog pages from the app API.
type Client struct {
	token     string
	userAgent string
	referer   string
	baseURL   *url.URL
	http      *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, services.Wrap(services.ErrConfiguration, "pixiv", "new client", "access token is required (set api.access_token or KONEKO_ACCESS_TOKEN)", nil)
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pixiv", "parse base url", base, err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		token:     token,
		userAgent: userAgent,
		referer:   strings.TrimSpace(cfg.Referer),
		baseURL:   baseURL,
		http:      client,
	}, nil
}

// Endpoint returns the URL that serves req.
func (c *Client) Endpoint(req collection.Request) (string, error) {
	params := url.Values{}
	var path string
	switch req.Kind {
	case collection.KindGallery:
		path = "v1/user/illusts"
		params.Set("user_id", req.ID)
		params.Set("type", "illust")
		params.Set("offset", strconv.Itoa(req.Offset))
	case collection.KindFeed:
		path = "v2/illust/follow"
		params.Set("restrict", "public")
		params.Set("offset", strconv.Itoa(req.Offset))
	case collection.KindUsers:
		path = "v1/user/following"
		params.Set("user_id", req.ID)
		params.Set("restrict", "public")
		params.Set("offset", strconv.Itoa(req.Offset))
	case collection.KindPost:
		path = "v1/illust/detail"
		params.Set("illust_id", req.ID)
	default:
		return "", services.Wrap(services.ErrValidation, "pixiv", "endpoint", fmt.Sprintf("unknown collection kind %q", req.Kind), nil)
	}
	endpoint := c.baseURL.JoinPath(path)
	endpoint.RawQuery = params.Encode()
	return endpoint.String(), nil
}

// FetchPage implements collection.PageSource.
func (c *Client) FetchPage(ctx context.Context, req collection.Request) ([]byte, error) {
	endpoint, err := c.Endpoint(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("pixiv: build request: %w", err)
	}
	c.applyHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "pixiv", "fetch page", endpoint, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp, "fetch page"); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "pixiv", "read page", endpoint, err)
	}
	return body, nil
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.referer != "" {
		req.Header.Set("Referer", c.referer)
	}
}

// statusError classifies a non-2xx response. Not-found responses carry
// ErrNotFound, throttling and server errors carry ErrTransient.
func statusError(resp *http.Response, operation string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := fmt.Sprintf("%s (%s): %s", resp.Request.URL.Redacted(), resp.Status, strings.TrimSpace(string(body)))
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "pixiv", operation, detail, nil)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return services.Wrap(services.ErrTransient, "pixiv", operation, detail, nil)
	default:
		return services.Wrap(services.ErrPageFetch, "pixiv", operation, detail, nil)
	}
}
