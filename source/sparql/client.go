package sparql

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http/httpproxy"
)

const (
	defaultTimeout         = 60 * time.Second
	defaultUserAgent       = "sparqlexport/0.1.0"
	defaultMaxResponseSize = 512 * 1024 * 1024
	maxRedirects           = 5
)

// ClientOptions configures a Client. Zero values fall back to defaults.
type ClientOptions struct {
	// Timeout bounds the whole exchange including reading the body.
	Timeout time.Duration
	// UserAgent is sent on every request.
	UserAgent string
	// MaxResponseSize caps the buffered body in bytes.
	MaxResponseSize int64
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// Result is a successful endpoint response.
type Result struct {
	Body        []byte
	ContentType string
	StatusCode  int
	Duration    time.Duration
}

// Client posts CONSTRUCT queries to a SPARQL endpoint.
type Client struct {
	client          *http.Client
	userAgent       string
	maxResponseSize int64
}

// NewClient creates a new SPARQL client.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxResponseSize <= 0 {
		opts.MaxResponseSize = defaultMaxResponseSize
	}

	transport := opts.Transport
	if transport == nil {
		transport = newTransport(opts.Timeout)
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (max %d)", maxRedirects)
				}
				return nil
			},
		},
		userAgent:       opts.UserAgent,
		maxResponseSize: opts.MaxResponseSize,
	}
}

func newTransport(timeout time.Duration) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	// Read the proxy environment per client; http.ProxyFromEnvironment
	// caches it for the life of the process.
	proxyFunc := httpproxy.FromEnvironment().ProxyFunc()

	return &http.Transport{
		Proxy: func(req *http.Request) (*url.URL, error) {
			return proxyFunc(req.URL)
		},
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          2,
		IdleConnTimeout:       90 * time.Second,
	}
}

// Construct posts req to endpoint and returns the fully buffered body.
//
// A non-2xx answer is returned as *StatusError and its body is discarded
// apart from a short excerpt. Transport and read failures are returned as
// *NetworkError.
func (c *Client) Construct(ctx context.Context, endpoint string, req Request) (*Result, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(req.Form().Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.Format != "" {
		httpReq.Header.Set("Accept", req.Format)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, NewNetworkError(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Best effort: the excerpt is diagnostic only.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, excerptReadLimit))
		return nil, &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Excerpt:    Excerpt(snippet, resp.Header.Get("Content-Type")),
		}
	}

	// Read body with size limit
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
	if err != nil {
		return nil, NewNetworkError(endpoint, fmt.Errorf("read body: %w", err))
	}
	if int64(len(body)) > c.maxResponseSize {
		return nil, NewNetworkError(endpoint, fmt.Errorf("response too large (exceeds %d bytes)", c.maxResponseSize))
	}

	return &Result{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		Duration:    time.Since(start),
	}, nil
}

func statusText(resp *http.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
