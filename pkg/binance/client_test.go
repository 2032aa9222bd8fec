package binance

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey    = "test-api-key"
	testSecretKey = "test-secret-key"
)

type recordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Body     string
	Header   http.Header
}

type recordingServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	status   int
	response string
}

func newRecordingServer(t *testing.T, response string) *recordingServer {
	t.Helper()
	rs := &recordingServer{status: http.StatusOK, response: response}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rs.mu.Lock()
		rs.requests = append(rs.requests, recordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Body:     string(body),
			Header:   r.Header.Clone(),
		})
		status, resp := rs.status, rs.response
		rs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *recordingServer) calls() []recordedRequest {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]recordedRequest(nil), rs.requests...)
}

type fixtureRequest struct {
	Symbol string
	Base   BaseRequest
}

func (r fixtureRequest) Encode() string {
	return NewQuery().Add("symbol", r.Symbol).Merge(r.Base).String()
}

type guardedRequest struct {
	Price *string
}

func (r guardedRequest) Encode() string {
	return NewQuery().OptString("price", r.Price).String()
}

func (r guardedRequest) Validate() error {
	if r.Price == nil {
		return NewValidationError("price", "price is required")
	}
	return nil
}

func newTestClient(t *testing.T, host string) *Client {
	t.Helper()
	c, err := NewClient(testAPIKey, testSecretKey, host)
	require.NoError(t, err)
	return c
}

func TestCallDispatchPaths(t *testing.T) {
	req := fixtureRequest{Symbol: "BTCUSDT", Base: BaseRequest{Timestamp: 1700000000000}}
	query := req.Encode()
	signed := Sign(query, testSecretKey)

	cases := []struct {
		name      string
		method    string
		security  SecurityType
		wantKey   bool
		wantQuery string
		wantBody  string
	}{
		{"get none", http.MethodGet, SecurityNone, false, query, ""},
		{"get trade", http.MethodGet, SecurityTrade, false, signed, ""},
		{"get margin", http.MethodGet, SecurityMargin, false, signed, ""},
		{"get user data", http.MethodGet, SecurityUserData, false, signed, ""},
		{"get user stream", http.MethodGet, SecurityUserStream, true, signed, ""},
		{"get market data", http.MethodGet, SecurityMarketData, true, signed, ""},
		{"post none", http.MethodPost, SecurityNone, false, "", query},
		{"post trade", http.MethodPost, SecurityTrade, false, "", signed},
		{"post margin", http.MethodPost, SecurityMargin, false, "", signed},
		{"post user data", http.MethodPost, SecurityUserData, false, "", signed},
		{"post user stream", http.MethodPost, SecurityUserStream, true, "", query},
		{"post market data", http.MethodPost, SecurityMarketData, true, "", query},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newRecordingServer(t, `{"ok":true}`)
			c := newTestClient(t, srv.URL)

			ep := EndpointDescriptor{Method: tc.method, Security: tc.security, Path: "/api/v3/fixture"}
			resp, err := Call[map[string]bool](context.Background(), c, ep, req)
			require.NoError(t, err)
			assert.True(t, resp["ok"])

			calls := srv.calls()
			require.Len(t, calls, 1)
			got := calls[0]
			assert.Equal(t, tc.method, got.Method)
			assert.Equal(t, "/api/v3/fixture", got.Path)
			assert.Equal(t, tc.wantQuery, got.RawQuery)
			assert.Equal(t, tc.wantBody, got.Body)
			assert.Equal(t, ContentTypeForm, got.Header.Get("Content-Type"))
			assert.Equal(t, DefaultUserAgent, got.Header.Get("User-Agent"))
			if tc.wantKey {
				assert.Equal(t, testAPIKey, got.Header.Get(HeaderAPIKey))
			} else {
				assert.Empty(t, got.Header.Values(HeaderAPIKey))
			}
		})
	}
}

func TestCallWithoutQuery(t *testing.T) {
	srv := newRecordingServer(t, `{}`)
	c := newTestClient(t, srv.URL)

	_, err := Call[struct{}](context.Background(), c, Get(SecurityNone, "/api/v3/ping"), nil)
	require.NoError(t, err)
	_, err = Call[struct{}](context.Background(), c, Get(SecurityUserData, "/api/v3/account"), nil)
	require.NoError(t, err)
	_, err = Call[struct{}](context.Background(), c, Get(SecurityMarketData, "/api/v3/historicalTrades"), nil)
	require.NoError(t, err)

	calls := srv.calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "", calls[0].RawQuery)
	assert.Equal(t, "signature="+hmacSHA256("", testSecretKey), calls[1].RawQuery)
	assert.Equal(t, "signature="+hmacSHA256("", testSecretKey), calls[2].RawQuery)
}

func TestCallUnsupportedMethodsFailFast(t *testing.T) {
	srv := newRecordingServer(t, `{}`)
	c := newTestClient(t, srv.URL)

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		for _, security := range []SecurityType{SecurityNone, SecurityTrade, SecurityUserStream} {
			ep := EndpointDescriptor{Method: method, Security: security, Path: "/api/v3/order"}
			_, err := Call[struct{}](context.Background(), c, ep, fixtureRequest{Symbol: "BTCUSDT"})
			require.Error(t, err)

			var unsupported *UnsupportedError
			require.True(t, errors.As(err, &unsupported))
			assert.Equal(t, method, unsupported.Method)
			assert.True(t, errors.Is(err, ErrUnsupportedDispatch))
		}
	}
	assert.Empty(t, srv.calls())
}

func TestCallValidationBeforeIO(t *testing.T) {
	srv := newRecordingServer(t, `{}`)
	c := newTestClient(t, srv.URL)

	_, err := Call[struct{}](context.Background(), c, Post(SecurityTrade, "/api/v3/order"), guardedRequest{})
	require.Error(t, err)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "price", validationErr.Field)
	assert.Empty(t, srv.calls())

	_, err = Call[struct{}](context.Background(), c, Post(SecurityTrade, "/api/v3/order"), guardedRequest{Price: Ptr("1.5")})
	require.NoError(t, err)
	assert.Len(t, srv.calls(), 1)
}

func TestCallInvalidAPIKeyHeader(t *testing.T) {
	srv := newRecordingServer(t, `{}`)
	c, err := NewClient("ключ", testSecretKey, srv.URL)
	require.NoError(t, err)

	_, err = Call[struct{}](context.Background(), c, Get(SecurityMarketData, "/api/v3/historicalTrades"), nil)
	var encodingErr *EncodingError
	require.True(t, errors.As(err, &encodingErr))
	assert.Empty(t, srv.calls())

	// 不需要 key 的路径不受影响
	_, err = Call[struct{}](context.Background(), c, Get(SecurityNone, "/api/v3/ping"), nil)
	require.NoError(t, err)
	assert.Len(t, srv.calls(), 1)
}

func TestNewClientMalformedHost(t *testing.T) {
	for _, host := range []string{"", "::bad", "api.binance.com"} {
		_, err := NewClient("", "", host)
		var encodingErr *EncodingError
		assert.True(t, errors.As(err, &encodingErr), host)
	}
}

func TestCallAPIError(t *testing.T) {
	srv := newRecordingServer(t, `{"code":-1121,"msg":"Invalid symbol."}`)
	srv.status = http.StatusBadRequest
	c := newTestClient(t, srv.URL)

	_, err := Call[map[string]string](context.Background(), c, Get(SecurityNone, "/api/v3/ticker/price"), fixtureRequest{Symbol: "NOPE"})
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, int64(-1121), apiErr.Code)
	assert.Equal(t, "Invalid symbol.", apiErr.Msg)
	assert.True(t, apiErr.IsInvalidSymbol())

	var decodeErr *DecodeError
	assert.False(t, errors.As(err, &decodeErr))
}

func TestCallDecodeErrorCarriesBody(t *testing.T) {
	srv := newRecordingServer(t, `<html>gateway timeout</html>`)
	c := newTestClient(t, srv.URL)

	_, err := Call[map[string]string](context.Background(), c, Get(SecurityNone, "/api/v3/time"), nil)
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, `<html>gateway timeout</html>`, decodeErr.Body)

	_, isAPI := AsAPIError(err)
	assert.False(t, isAPI)
}

func TestCallTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(t, srv.URL)
	srv.Close()

	_, err := Call[struct{}](context.Background(), c, Get(SecurityNone, "/api/v3/ping"), nil)
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
}

func TestClientCloneSharesTransport(t *testing.T) {
	c := newTestClient(t, "https://api.binance.com")
	clone := c.Clone()
	assert.Same(t, c.httpClient, clone.httpClient)
	key, secret := clone.Keys()
	assert.Equal(t, testAPIKey, key)
	assert.Equal(t, testSecretKey, secret)
}

func TestClientHostWithPathPrefix(t *testing.T) {
	srv := newRecordingServer(t, `{}`)
	c := newTestClient(t, srv.URL+"/ignored/")

	_, err := Call[struct{}](context.Background(), c, Get(SecurityNone, "/api/v3/ping"), nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/v3/ping", srv.calls()[0].Path)
}

func TestListenKeyMaintenance(t *testing.T) {
	srv := newRecordingServer(t, `{}`)
	c := newTestClient(t, srv.URL)

	require.NoError(t, c.KeepAliveListenKey(context.Background(), "/api/v3/userDataStream", "abc"))
	require.NoError(t, c.CloseListenKey(context.Background(), "/api/v3/userDataStream", "abc"))

	calls := srv.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPut, calls[0].Method)
	assert.Equal(t, http.MethodDelete, calls[1].Method)
	for _, call := range calls {
		assert.Equal(t, "listenKey=abc", call.Body)
		assert.Equal(t, testAPIKey, call.Header.Get(HeaderAPIKey))
	}
}

func TestListenKeyAPIError(t *testing.T) {
	srv := newRecordingServer(t, `{"code":-1125,"msg":"This listenKey does not exist."}`)
	c := newTestClient(t, srv.URL)

	err := c.KeepAliveListenKey(context.Background(), "/api/v3/userDataStream", "gone")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, int64(-1125), apiErr.Code)
}
