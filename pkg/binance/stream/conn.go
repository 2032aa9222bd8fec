package stream

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/riven-blade/binance-cex/pkg/binance"
	"github.com/riven-blade/binance-cex/pkg/logger"
	"github.com/riven-blade/binance-cex/pkg/utils"
)

const (
	handshakeTimeout  = 10 * time.Second
	closeWriteTimeout = time.Second
	maxLoggedFrame    = 512
)

// ErrStreamClosed 连接已关闭或已被消费
var ErrStreamClosed = binance.ErrStreamClosed

// errBroken 读失败且不是正常关闭，调用方转成一次重连信号
var errBroken = errors.New("websocket read failed")

// Stats 连接计数
type Stats struct {
	Frames     int64
	Events     int64
	Heartbeats int64
	Reconnects int64
}

type connStats struct {
	frames     atomic.Int64
	events     atomic.Int64
	heartbeats atomic.Int64
	reconnects atomic.Int64
}

func (s *connStats) snapshot() Stats {
	return Stats{
		Frames:     s.frames.Load(),
		Events:     s.events.Load(),
		Heartbeats: s.heartbeats.Load(),
		Reconnects: s.reconnects.Load(),
	}
}

// wsConn 单个 websocket 连接，只允许一个读协程，关闭可以并发调用
type wsConn struct {
	url    string
	conn   *websocket.Conn
	closed atomic.Bool
	once   sync.Once
	stats  connStats
	log    *logger.MLogger
}

func dial(ctx context.Context, rawURL string) (*wsConn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, rawURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, binance.NewTransportError("websocket handshake failed: "+rawURL, err)
	}

	c := &wsConn{
		url:  rawURL,
		conn: conn,
		log:  logger.With(zap.String("url", rawURL)),
	}
	c.log.Debug("StreamConnected")
	return c, nil
}

// read 读取下一帧；正常关闭返回 ErrStreamClosed，其他读错误返回 errBroken
func (c *wsConn) read() ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrStreamClosed
	}
	_, frame, err := c.conn.ReadMessage()
	if err != nil {
		wasClosed := c.closed.Load()
		c.terminate(false)
		if wasClosed || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			c.log.Debug("StreamClosed", zap.Error(err))
			return nil, ErrStreamClosed
		}
		c.log.Debug("StreamReadFailed", zap.Error(err))
		return nil, errors.Mark(errors.Wrap(err, c.url), errBroken)
	}
	c.stats.frames.Inc()
	return frame, nil
}

// classify 非 UTF-8 或无法识别的帧返回 false
func (c *wsConn) classify(frame []byte) (StreamEvent, bool) {
	if !utf8.Valid(frame) {
		c.log.Debug("StreamFrameNotUTF8", zap.Int("size", len(frame)), zap.String("frame", utils.LogFrame(frame, maxLoggedFrame)))
		return StreamEvent{}, false
	}
	ev, err := DecodeStreamEvent(frame)
	if err != nil {
		c.log.Debug("StreamFrameUndecodable", zap.String("frame", utils.LogFrame(frame, maxLoggedFrame)), zap.Error(err))
		return StreamEvent{}, false
	}
	return ev, true
}

func (c *wsConn) signalReconnect() {
	c.stats.reconnects.Inc()
	c.log.Debug("StreamReconnectSignal")
}

// terminate 只执行一次；sendClose 时先发送正常关闭帧
func (c *wsConn) terminate(sendClose bool) error {
	var err error
	c.once.Do(func() {
		c.closed.Store(true)
		if sendClose {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			werr := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout))
			if werr != nil && !errors.Is(werr, websocket.ErrCloseSent) {
				err = binance.NewTransportError("failed to send close frame", werr)
			}
		}
		if cerr := c.conn.Close(); cerr != nil && err == nil && sendClose {
			err = binance.NewTransportError("failed to close websocket", cerr)
		}
		c.log.Debug("StreamTerminated", zap.Bool("sendClose", sendClose))
	})
	return err
}

func (c *wsConn) isClosed() bool {
	return c.closed.Load()
}

// streamURL 去掉 endpoint 末尾的 /
func streamURL(wsEndpoint, suffix string) string {
	return strings.TrimRight(wsEndpoint, "/") + suffix
}
