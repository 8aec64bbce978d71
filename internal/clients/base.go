package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

const maxBody = 4 << 20

type Client struct {
	Name    string
	BaseURL *url.URL
	HTTP    *http.Client
}

// NewHTTPClient returns the client shared by every typed client. The grocery
// API keeps its session in a cookie, so the jar is what makes a login stick.
func NewHTTPClient(timeout time.Duration) *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{Timeout: timeout, Jar: jar}
}

func NewClient(name string, baseURL string, httpClient *http.Client) *Client {
	u, err := url.Parse(baseURL)
	if err != nil {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid %s base url %q: %v", name, baseURL, err))
	}
	return &Client{Name: name, BaseURL: u, HTTP: httpClient}
}

func (c *Client) Do(ctx context.Context, method, path, rawQuery string, body io.Reader, inHeaders http.Header) (*http.Response, error) {
	rel := &url.URL{Path: path, RawQuery: rawQuery}
	u := c.BaseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	copyHeaders(req.Header, inHeaders)

	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(middleware.HeaderCorrelationID, cid)
	}

	return c.HTTP.Do(req)
}

// URL resolves path against the base URL.
func (c *Client) URL(path, rawQuery string) string {
	return c.BaseURL.ResolveReference(&url.URL{Path: path, RawQuery: rawQuery}).String()
}

// Cookies returns the session cookies the jar holds for the API origin.
func (c *Client) Cookies() []*http.Cookie {
	if c.HTTP.Jar == nil {
		return nil
	}
	return c.HTTP.Jar.Cookies(c.BaseURL)
}

// SetCookies seeds the jar, e.g. with a session saved by a previous run.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	if c.HTTP.Jar == nil || len(cookies) == 0 {
		return
	}
	c.HTTP.Jar.SetCookies(c.BaseURL, cookies)
}

// ClearCookies drops the session by expiring every cookie the jar holds.
func (c *Client) ClearCookies() {
	cookies := c.Cookies()
	for _, ck := range cookies {
		ck.MaxAge = -1
		ck.Path = "/"
	}
	c.SetCookies(cookies)
}

func (c *Client) doJSON(ctx context.Context, method, path string, hdr http.Header, in, out any) error {
	h := http.Header{}
	copyHeaders(h, hdr)
	h.Set("Accept", "application/json")

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(b)
		h.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(ctx, method, path, "", body, h)
	if err != nil {
		return fmt.Errorf("%s %s %s: %w", c.Name, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%s %s %s: read body: %w", c.Name, method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		if isHopByHopHeader(k) {
			continue
		}
		if strings.EqualFold(k, "Host") {
			continue
		}
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

// Hop-by-hop headers (RFC 7230)
func isHopByHopHeader(k string) bool {
	switch http.CanonicalHeaderKey(k) {
	case "Connection", "Proxy-Connection", "Keep-Alive",
		"Proxy-Authenticate", "Proxy-Authorization",
		"Te", "Trailer", "Transfer-Encoding", "Upgrade":
		return true
	default:
		return false
	}
}
