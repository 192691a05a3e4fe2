package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/creamcroissant/sub2xray/internal/link"
)

const (
	// DefaultUserAgent 模拟 Windows 上的 Chrome，部分机场会拒绝非浏览器 UA。
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"
	DefaultTimeout   = 10 * time.Second
	DefaultMaxBytes  = 8 << 20
)

// Options 配置订阅客户端。
type Options struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
	Retry     RetryConfig
	Logger    *slog.Logger
	// HTTPClient 非空时直接使用，测试注入 httptest 客户端。
	HTTPClient *http.Client
}

// Client 拉取订阅并校验其为合法的 base64 信封。
type Client struct {
	http      *http.Client
	maxBytes  int64
	userAgent string
	retry     RetryConfig
	logger    *slog.Logger
}

// NewClient 创建订阅客户端，连接与响应头各自受 Timeout 约束。
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = DefaultUserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
			},
		}
	}

	return &Client{
		http:      client,
		maxBytes:  maxBytes,
		userAgent: ua,
		retry:     opts.Retry,
		logger:    logger,
	}
}

// Fetch 拉取订阅原文。返回的字节保证能被 link.DecodeEnvelope 解码。
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	attempt := 0
	err := DoWithRetry(ctx, c.retry, func(ctx context.Context) error {
		attempt++
		data, err := c.get(ctx, url)
		if err != nil {
			c.logger.Warn("subscription fetch failed", "url", url, "attempt", attempt, "error", err)
			return err
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidSubscription)
	}
	if _, err := link.DecodeEnvelope(body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubscription, err)
	}
	c.logger.Debug("subscription fetched", "url", url, "bytes", len(body), "attempts", attempt)
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("transport: read body: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, c.maxBytes)
	}
	return data, nil
}
