package binance

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/riven-blade/binance-cex/pkg/logger"
)

const (
	HeaderAPIKey      = "X-MBX-APIKEY"
	ContentTypeForm   = "application/x-www-form-urlencoded"
	defaultTracerName = "binance-cex"
)

// Client REST 调度器，无状态，可在多个 goroutine 间共享
type Client struct {
	apiKey     string
	secretKey  string
	host       *url.URL
	httpClient *http.Client
	userAgent  string
	tracer     trace.Tracer
	recvWindow uint64
}

// ClientOption 构造选项
type ClientOption func(*Client)

// WithHTTPClient 使用自定义 http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent 覆盖 User-Agent
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRecvWindow 签名请求未指定 recvWindow 时使用的默认值（毫秒），0 表示不发送
func WithRecvWindow(ms uint64) ClientOption {
	return func(c *Client) {
		c.recvWindow = ms
	}
}

// WithTracerName 指定 otel tracer 名称
func WithTracerName(name string) ClientOption {
	return func(c *Client) {
		c.tracer = otel.Tracer(name)
	}
}

// NewClient 创建客户端，凭证缺失时传空字符串
func NewClient(apiKey, secretKey, host string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, NewEncodingError("malformed host "+host, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, NewEncodingError("malformed host "+host, nil)
	}

	c := &Client{
		apiKey:     apiKey,
		secretKey:  secretKey,
		host:       u,
		httpClient: newPooledHTTPClient(),
		userAgent:  DefaultUserAgent,
		tracer:     otel.Tracer(defaultTracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewClientFromConfig 使用 APIConfig 的现货 REST 地址和 recvWindow
func NewClientFromConfig(apiKey, secretKey string, cfg APIConfig, opts ...ClientOption) (*Client, error) {
	return NewClient(apiKey, secretKey, cfg.RestAPIEndpoint, append([]ClientOption{WithRecvWindow(cfg.RecvWindow)}, opts...)...)
}

// NewFuturesClientFromConfig 使用 APIConfig 的合约 REST 地址和 recvWindow
func NewFuturesClientFromConfig(apiKey, secretKey string, cfg APIConfig, opts ...ClientOption) (*Client, error) {
	return NewClient(apiKey, secretKey, cfg.FuturesRestAPIEndpoint, append([]ClientOption{WithRecvWindow(cfg.RecvWindow)}, opts...)...)
}

func newPooledHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{Transport: transport}
}

// Clone 复制客户端，底层连接池共享
func (c *Client) Clone() *Client {
	clone := *c
	return &clone
}

// Keys 返回 (apiKey, secretKey)
func (c *Client) Keys() (string, string) {
	return c.apiKey, c.secretKey
}

// RecvWindow 默认 recvWindow，0 表示不发送
func (c *Client) RecvWindow() uint64 {
	return c.recvWindow
}

// NewBaseRequest 当前时间戳加上客户端的默认 recvWindow
func (c *Client) NewBaseRequest() BaseRequest {
	return c.ApplyRecvWindow(NewBaseRequest())
}

// ApplyRecvWindow 请求自身未设置 recvWindow 时填入默认值
func (c *Client) ApplyRecvWindow(b BaseRequest) BaseRequest {
	if b.RecvWindow == nil && c.recvWindow != 0 {
		return b.WithRecvWindow(c.recvWindow)
	}
	return b
}

// Host 基础地址
func (c *Client) Host() string {
	return c.host.String()
}

// ========== 调度 ==========

// Call 校验、编码、签名并发送一次请求，解析响应信封
func Call[T any](ctx context.Context, c *Client, ep Endpoint, req Encoder) (T, error) {
	var zero T

	if req != nil {
		if v, ok := req.(Validator); ok {
			if err := v.Validate(); err != nil {
				return zero, asValidationError(err)
			}
		}
	}

	method, security, path := ep.ActionParams()
	query := ""
	if req != nil {
		query = req.Encode()
	}

	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("binance.security", security.String()),
		attribute.String("binance.path", path),
	))
	defer span.End()

	data, err := dispatch[T](ctx, c, method, security, path, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return zero, err
	}
	return data, nil
}

func dispatch[T any](ctx context.Context, c *Client, method string, security SecurityType, path, query string) (T, error) {
	var zero T

	httpReq, err := c.buildRequest(ctx, method, security, path, query)
	if err != nil {
		return zero, err
	}
	body, err := c.send(httpReq)
	if err != nil {
		return zero, err
	}
	return decodeBody[T](ctx, body)
}

func decodeBody[T any](ctx context.Context, body []byte) (T, error) {
	data, err := DecodeResponse[T](body)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			logger.Ctx(ctx).Error("FailedToDecodeResponseBody", zap.String("body", decodeErr.Body))
		}
		return data, err
	}
	return data, nil
}

// buildRequest 按 (method, tier) 选择六种路径之一
func (c *Client) buildRequest(ctx context.Context, method string, security SecurityType, path, query string) (*http.Request, error) {
	var (
		withKey  bool
		rawQuery string
		body     string
	)

	switch method {
	case http.MethodGet:
		switch {
		case security == SecurityNone:
			rawQuery = query
		case security.Signed():
			rawQuery = Sign(query, c.secretKey)
		case security.KeyOnly():
			withKey = true
			rawQuery = Sign(query, c.secretKey)
		default:
			return nil, NewUnsupportedError(method, security)
		}
	case http.MethodPost:
		switch {
		case security == SecurityNone:
			body = query
		case security.Signed():
			body = Sign(query, c.secretKey)
		case security.KeyOnly():
			withKey = true
			body = query
		default:
			return nil, NewUnsupportedError(method, security)
		}
	default:
		return nil, NewUnsupportedError(method, security)
	}

	return c.newRequest(ctx, method, path, rawQuery, body, withKey)
}

func (c *Client) newRequest(ctx context.Context, method, path, rawQuery, body string, withKey bool) (*http.Request, error) {
	if withKey && !validHeaderValue(c.apiKey) {
		return nil, NewEncodingError("invalid header value for "+HeaderAPIKey, nil)
	}

	ref, err := url.Parse(path)
	if err != nil {
		return nil, NewEncodingError("malformed endpoint path "+path, err)
	}
	u := c.host.ResolveReference(ref)
	u.RawQuery = rawQuery

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, NewEncodingError("failed to build request", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", ContentTypeForm)
	if withKey {
		req.Header.Set(HeaderAPIKey, c.apiKey)
	}
	return req, nil
}

// send 发送请求并读取完整响应体
func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransportError("HTTP request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError("failed to read response body", err)
	}
	return body, nil
}

// ========== listenKey 维护 ==========

// KeepAliveListenKey PUT listenKey=<key>，延长用户数据流有效期
func (c *Client) KeepAliveListenKey(ctx context.Context, path, listenKey string) error {
	return c.listenKeyRequest(ctx, http.MethodPut, path, listenKey)
}

// CloseListenKey DELETE listenKey=<key>，关闭用户数据流
func (c *Client) CloseListenKey(ctx context.Context, path, listenKey string) error {
	return c.listenKeyRequest(ctx, http.MethodDelete, path, listenKey)
}

func (c *Client) listenKeyRequest(ctx context.Context, method, path, listenKey string) error {
	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("binance.security", SecurityUserStream.String()),
		attribute.String("binance.path", path),
	))
	defer span.End()

	body := NewQuery().Add("listenKey", listenKey).String()
	req, err := c.newRequest(ctx, method, path, "", body, true)
	if err == nil {
		var raw []byte
		if raw, err = c.send(req); err == nil {
			_, err = decodeBody[struct{}](ctx, raw)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func asValidationError(err error) error {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return err
	}
	return errors.WithStack(NewValidationError("", err.Error()))
}

// validHeaderValue 只允许可见 ASCII、空格和制表符
func validHeaderValue(v string) bool {
	for i := 0; i < len(v); i++ {
		b := v[i]
		if b == '\t' {
			continue
		}
		if b < 0x20 || b > 0x7e {
			return false
		}
	}
	return true
}
