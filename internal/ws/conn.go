package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

var (
	ErrSendBufferFull = errors.New("send buffer full")
	ErrConnClosed     = errors.New("connection closed")
)

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
)

// MessageLimiter decides whether an inbound message from ip may be handled.
type MessageLimiter interface {
	MessageAllowed(ip string) bool
}

// Conn is a websocket connection with a buffered writer goroutine. Both
// the relay and the game client use it.
type Conn struct {
	ws      *websocket.Conn
	sendCh  chan []byte
	done    chan struct{}
	once    sync.Once
	ID      string
	IP      string
	limiter MessageLimiter
	log     *slog.Logger

	errMu sync.Mutex
	err   error
}

func NewConn(ws *websocket.Conn, id string, ip string, limiter MessageLimiter) *Conn {
	return &Conn{
		ws:      ws,
		sendCh:  make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		ID:      id,
		IP:      ip,
		limiter: limiter,
		log:     slog.With("conn", id),
	}
}

// Dial connects to a relay endpoint.
func Dial(ctx context.Context, url string) (*Conn, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewConn(c, "client", "", nil), nil
}

// SetReadLimit caps the size of inbound frames.
func (c *Conn) SetReadLimit(n int64) {
	c.ws.SetReadLimit(n)
}

func (c *Conn) Send(msg Message) error {
	data, err := Encode(msg)
	if err != nil {
		return fmt.Errorf("conn %s: %w", c.ID, err)
	}
	return c.SendRaw(data)
}

// SendRaw queues an already encoded frame. It never blocks; a full buffer
// drops the frame.
func (c *Conn) SendRaw(data []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.sendCh <- data:
		return nil
	default:
		c.log.Warn("send buffer full, dropping message")
		return ErrSendBufferFull
	}
}

// ReadLoop decodes inbound frames until the connection fails or ctx ends.
// The returned channel is closed when reading stops. Frames over the
// message rate limit are dropped without disconnecting.
func (c *Conn) ReadLoop(ctx context.Context) <-chan Message {
	ch := make(chan Message, sendBuffer)
	go func() {
		defer close(ch)
		for {
			_, data, err := c.ws.Read(ctx)
			if err != nil {
				c.fail(err)
				c.Close()
				return
			}
			if c.limiter != nil && !c.limiter.MessageAllowed(c.IP) {
				continue
			}
			msg, err := Decode(data)
			if err != nil {
				c.log.Warn("dropping undecodable message", "err", err)
				continue
			}
			msg.Raw = data
			select {
			case ch <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// WriteLoop drains the send buffer until the connection closes. It returns
// the write error that ended it, if any.
func (c *Conn) WriteLoop(ctx context.Context) error {
	for {
		select {
		case data := <-c.sendCh:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.ws.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.fail(err)
				c.Close()
				return c.Err()
			}
		case <-c.done:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// fail records the first error that was not an orderly shutdown.
func (c *Conn) fail(err error) {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		c.err = err
		c.log.Warn("connection error", "err", err)
	}
}

// Err returns the error that broke the connection, or nil after an
// orderly close.
func (c *Conn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *Conn) Close() {
	c.CloseWith(websocket.StatusNormalClosure, "")
}

// CloseWith closes the connection with an explicit status, e.g. when the
// server is full.
func (c *Conn) CloseWith(code websocket.StatusCode, reason string) {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close(code, reason)
	})
}

func (c *Conn) Done() <-chan struct{} {
	return c.done
}
