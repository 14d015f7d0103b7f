package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Limits bounds what one client address may do on the relay.
type Limits struct {
	// ConnsPerIP caps simultaneous sockets from one address.
	ConnsPerIP int
	// Messages is the burst size and the refill per Window.
	Messages int
	Window   time.Duration
	// PruneEvery is how often idle addresses are forgotten.
	PruneEvery time.Duration
}

// DefaultLimits suits two players and a few spectators per household
// sending inputs at frame rate.
func DefaultLimits() Limits {
	return Limits{
		ConnsPerIP: 8,
		Messages:   120,
		Window:     time.Second,
		PruneEvery: 5 * time.Minute,
	}
}

// orDefault fills unset or nonsensical fields from DefaultLimits.
func (l Limits) orDefault() Limits {
	def := DefaultLimits()
	if l.ConnsPerIP <= 0 {
		l.ConnsPerIP = def.ConnsPerIP
	}
	if l.Messages <= 0 {
		l.Messages = def.Messages
	}
	if l.Window <= 0 {
		l.Window = def.Window
	}
	if l.PruneEvery <= 0 {
		l.PruneEvery = def.PruneEvery
	}
	return l
}

// bucket is the per-address state: open sockets plus a message token
// bucket refilled in whole windows.
type bucket struct {
	open   int
	tokens int
	since  time.Time
}

func (b *bucket) refill(now time.Time, l Limits) {
	gap := now.Sub(b.since)
	if gap < l.Window {
		return
	}
	n := int(gap / l.Window)
	b.tokens = min(b.tokens+n*l.Messages, l.Messages)
	b.since = b.since.Add(time.Duration(n) * l.Window)
}

// IPRateLimiter enforces Limits per client address for the relay. It
// satisfies both the hub's connection gate and the socket message gate.
type IPRateLimiter struct {
	limits Limits
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	refusedConns atomic.Uint64
	droppedMsgs  atomic.Uint64

	quit     chan struct{}
	quitOnce sync.Once
}

// NewIPRateLimiter starts a limiter and its pruning goroutine. Zero fields
// in l take their DefaultLimits value. Call Close to stop pruning.
func NewIPRateLimiter(l Limits) *IPRateLimiter {
	rl := &IPRateLimiter{
		limits:  l.orDefault(),
		now:     time.Now,
		buckets: make(map[string]*bucket),
		quit:    make(chan struct{}),
	}
	go rl.pruneLoop()
	return rl
}

// Limits reports the limits in force.
func (rl *IPRateLimiter) Limits() Limits { return rl.limits }

// lookup returns ip's bucket, creating a full one. Callers hold rl.mu.
func (rl *IPRateLimiter) lookup(ip string) *bucket {
	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{tokens: rl.limits.Messages, since: rl.now()}
		rl.buckets[ip] = b
	}
	return b
}

// ConnectAllowed reserves a socket slot for ip, or counts a refusal when
// the address is already at ConnsPerIP.
func (rl *IPRateLimiter) ConnectAllowed(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b := rl.lookup(ip)
	if b.open >= rl.limits.ConnsPerIP {
		rl.refusedConns.Add(1)
		return false
	}
	b.open++
	return true
}

// Disconnect releases a slot taken by ConnectAllowed.
func (rl *IPRateLimiter) Disconnect(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if b, ok := rl.buckets[ip]; ok && b.open > 0 {
		b.open--
	}
}

// MessageAllowed spends one token from ip's bucket.
func (rl *IPRateLimiter) MessageAllowed(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b := rl.lookup(ip)
	b.refill(rl.now(), rl.limits)
	if b.tokens == 0 {
		rl.droppedMsgs.Add(1)
		return false
	}
	b.tokens--
	return true
}

// Rejected returns the refused connections and dropped messages so far.
func (rl *IPRateLimiter) Rejected() (conns, msgs uint64) {
	return rl.refusedConns.Load(), rl.droppedMsgs.Load()
}

func (rl *IPRateLimiter) Close() {
	rl.quitOnce.Do(func() { close(rl.quit) })
}

func (rl *IPRateLimiter) pruneLoop() {
	t := time.NewTicker(rl.limits.PruneEvery)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			rl.prune()
		case <-rl.quit:
			return
		}
	}
}

// prune forgets addresses with no open socket.
func (rl *IPRateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, b := range rl.buckets {
		if b.open == 0 {
			delete(rl.buckets, ip)
		}
	}
}

// RealIP is the first X-Forwarded-For hop when a proxy set one, else the
// host part of RemoteAddr.
func RealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
