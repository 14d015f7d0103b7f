package netsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/uset82/My-Football-Game/internal/config"
	"github.com/uset82/My-Football-Game/internal/ws"
)

// inboxSize bounds messages waiting for the next frame. When full, the
// newest message is dropped.
const inboxSize = 256

var ErrNotConnected = errors.New("not connected to relay")

// Status is the connection state shown to the player.
type Status int

const (
	StatusOffline Status = iota
	StatusAwaitingConfig
	StatusConnecting
	StatusConnected
	StatusJoined
	StatusDisconnected
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOffline:
		return "offline"
	case StatusAwaitingConfig:
		return "awaiting config"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusJoined:
		return "joined"
	case StatusDisconnected:
		return "disconnected"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Live reports whether messages can currently flow.
func (s Status) Live() bool {
	return s == StatusConnected || s == StatusJoined
}

// Client holds one connection to the relay. Inbound messages are queued
// for the frame loop, which drains them on its own goroutine.
type Client struct {
	endpoint string
	room     string
	inbox    chan ws.Message
	dropped  atomic.Int64
	log      *slog.Logger

	mu     sync.RWMutex
	status Status
	err    error
	conn   *ws.Conn
}

func NewClient(endpoint, room string) *Client {
	return &Client{
		endpoint: endpoint,
		room:     room,
		inbox:    make(chan ws.Message, inboxSize),
		log:      slog.Default().With("component", "client", "room", room),
	}
}

// RoomURL appends the room query parameter to endpoint.
func RoomURL(endpoint, room string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	if room != "" {
		q := u.Query()
		q.Set("room", room)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Run connects and pumps messages until the connection ends or ctx is
// cancelled. It returns config.ErrNotConfigured without dialing when no
// endpoint is set.
func (c *Client) Run(ctx context.Context) error {
	if c.endpoint == "" {
		c.setStatus(StatusAwaitingConfig, nil)
		return config.ErrNotConfigured
	}
	target, err := RoomURL(c.endpoint, c.room)
	if err != nil {
		c.setStatus(StatusError, err)
		return err
	}

	c.setStatus(StatusConnecting, nil)
	conn, err := ws.Dial(ctx, target)
	if err != nil {
		c.setStatus(StatusError, err)
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.status = StatusConnected
	c.mu.Unlock()
	c.log.Info("connected to relay", "url", target)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return conn.WriteLoop(gctx)
	})
	g.Go(func() error {
		defer conn.Close()
		for msg := range conn.ReadLoop(gctx) {
			if msg.Type == ws.MsgJoined {
				c.setStatus(StatusJoined, nil)
			}
			c.enqueue(msg)
		}
		return conn.Err()
	})
	err = g.Wait()
	if err == nil {
		err = conn.Err()
	}
	if ctx.Err() != nil {
		// Cancelled by the caller; whatever the read saw is a consequence.
		err = nil
	}

	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()
	if err != nil {
		c.setStatus(StatusError, err)
		return fmt.Errorf("relay session: %w", err)
	}
	c.setStatus(StatusDisconnected, nil)
	c.log.Info("disconnected from relay")
	return nil
}

func (c *Client) enqueue(msg ws.Message) {
	select {
	case c.inbox <- msg:
	default:
		n := c.dropped.Add(1)
		c.log.Warn("inbox full, dropping message", "type", msg.Type, "dropped", n)
	}
}

// Drain hands every queued message to fn and returns how many there were.
func (c *Client) Drain(fn func(ws.Message)) int {
	n := 0
	for {
		select {
		case msg := <-c.inbox:
			fn(msg)
			n++
		default:
			return n
		}
	}
}

// Dropped returns how many inbound messages were lost to a full inbox.
func (c *Client) Dropped() int64 { return c.dropped.Load() }

func (c *Client) Send(msg ws.Message) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.Send(msg)
}

func (c *Client) Status() (Status, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status, c.err
}

func (c *Client) setStatus(s Status, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = s
	c.err = err
}
