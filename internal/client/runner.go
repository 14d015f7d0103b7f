package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/uset82/My-Football-Game/internal/game"
	"github.com/uset82/My-Football-Game/internal/netsync"
	"github.com/uset82/My-Football-Game/internal/ws"
)

// Session is the relay connection as the frame loop sees it.
type Session interface {
	netsync.Outbox
	Status() (netsync.Status, error)
	Drain(fn func(ws.Message)) int
}

// InputSource supplies the local participant's controls each frame. idx is
// the Inputs slot being driven.
type InputSource interface {
	Poll(w *game.World, idx int) game.Input
}

// Renderer draws a frame. view is a copy the renderer may keep.
type Renderer interface {
	Render(view game.World, status netsync.Status, events []game.Event)
}

type Config struct {
	Mode       game.Mode
	Difficulty game.Difficulty
	// TimeLeft overrides the difficulty's match length when positive.
	TimeLeft int

	FrameInterval     time.Duration
	ClockInterval     time.Duration
	BroadcastInterval time.Duration

	// MaxFrames stops the loop after this many frames when positive.
	MaxFrames int
}

func DefaultConfig() Config {
	return Config{
		Mode:              game.ModeSolo,
		Difficulty:        game.DifficultyMedium,
		FrameInterval:     16 * time.Millisecond,
		ClockInterval:     time.Second,
		BroadcastInterval: 120 * time.Millisecond,
	}
}

// Runner owns the world and drives it from a single goroutine: frame
// ticks step the simulation, clock ticks count the match down, and on the
// host broadcast ticks publish snapshots.
type Runner struct {
	cfg     Config
	world   *game.World
	sim     *game.Simulator
	sync    *netsync.Sync
	session Session
	input   InputSource
	render  Renderer
	log     *slog.Logger

	status  netsync.Status
	frames  int
	events  []game.Event
	publish bool

	// finalSent marks the closing snapshot of a finished match as sent.
	finalSent bool
}

// NewRunner builds a frame loop. session may be nil in solo mode.
func NewRunner(cfg Config, sim *game.Simulator, session Session, room string, input InputSource, render Renderer) *Runner {
	def := DefaultConfig()
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = def.FrameInterval
	}
	if cfg.ClockInterval <= 0 {
		cfg.ClockInterval = def.ClockInterval
	}
	if cfg.BroadcastInterval <= 0 {
		cfg.BroadcastInterval = def.BroadcastInterval
	}
	if cfg.Difficulty == "" {
		cfg.Difficulty = def.Difficulty
	}
	return &Runner{
		cfg:     cfg,
		world:   game.NewWorld(),
		sim:     sim,
		sync:    netsync.NewSync(room),
		session: session,
		input:   input,
		render:  render,
		log:     slog.Default().With("component", "runner", "mode", cfg.Mode),
	}
}

// World exposes the live state for inspection between runs.
func (r *Runner) World() *game.World { return r.world }

func (r *Runner) Sync() *netsync.Sync { return r.sync }

func (r *Runner) networked() bool {
	return r.cfg.Mode == game.ModeNetworked && r.session != nil
}

// authoritative reports whether this side runs the full simulation.
func (r *Runner) authoritative() bool {
	return !r.networked() || r.sync.IsHost()
}

// Run loops until the match ends, ctx is cancelled, or MaxFrames is
// reached.
func (r *Runner) Run(ctx context.Context) error {
	if !r.networked() {
		if err := r.sim.Start(r.world, game.StartOptions{
			Difficulty: r.cfg.Difficulty,
			Mode:       game.ModeSolo,
			TimeLeft:   r.cfg.TimeLeft,
		}); err != nil {
			return err
		}
	}

	frame := time.NewTicker(r.cfg.FrameInterval)
	defer frame.Stop()
	clock := time.NewTicker(r.cfg.ClockInterval)
	defer clock.Stop()

	var broadcast *time.Ticker
	var broadcastC <-chan time.Time
	defer func() {
		if broadcast != nil {
			broadcast.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-frame.C:
			done := r.Frame()
			if r.publish && broadcast == nil {
				broadcast = time.NewTicker(r.cfg.BroadcastInterval)
				broadcastC = broadcast.C
			}
			if !r.publish && broadcast != nil {
				broadcast.Stop()
				broadcast, broadcastC = nil, nil
			}
			if done {
				return nil
			}

		case <-clock.C:
			r.Clock()

		case <-broadcastC:
			r.Broadcast()
		}
	}
}

// Frame advances one frame and renders it. It reports whether the loop
// should stop.
func (r *Runner) Frame() bool {
	w := r.world
	r.frames++

	if r.networked() {
		r.session.Drain(func(msg ws.Message) {
			if err := r.sync.Handle(w, r.sim, msg); err != nil {
				r.log.Debug("dropped relay message", "type", msg.Type, "err", err)
			}
		})
		r.trackStatus()
		r.maybeKickOff()
	}

	idx := r.localIndex()
	if idx >= 0 && r.input != nil && w.Match.Running() {
		r.applyInput(idx)
	}

	switch {
	case !w.Match.Running():
	case r.authoritative():
		r.events = append(r.events, r.sim.Step(w)...)
	case idx >= 0:
		game.PredictLocal(w, idx)
	}

	if w.Match.Over() && r.networked() && r.sync.IsHost() && !r.finalSent {
		r.Broadcast()
		r.finalSent = true
		r.publish = false
	}

	r.flush()
	if w.Match.Over() {
		r.log.Info("match over", "score", w.Match.Score, "frames", r.frames)
		return true
	}
	return r.cfg.MaxFrames > 0 && r.frames >= r.cfg.MaxFrames
}

// Clock counts the match down by a second. Only the authoritative side
// owns the clock; guests take time from snapshots.
func (r *Runner) Clock() {
	if !r.authoritative() {
		return
	}
	r.events = append(r.events, r.sim.ClockTick(r.world)...)
}

// Broadcast publishes a snapshot when this side is the host.
func (r *Runner) Broadcast() {
	if !r.networked() || !r.sync.IsHost() {
		return
	}
	if err := r.sync.BroadcastState(r.session, r.world); err != nil {
		r.log.Warn("state broadcast failed", "err", err)
	}
}

func (r *Runner) localIndex() int {
	if !r.networked() {
		return 0
	}
	return r.sync.LocalIndex()
}

// applyInput merges polled controls into the world. The charge level
// belongs to the simulation and a pending kick is kept until consumed.
func (r *Runner) applyInput(idx int) {
	cur := &r.world.Inputs[idx]
	in := r.input.Poll(r.world, idx)
	in.Power = cur.Power
	in.Kick = in.Kick || cur.Kick
	*cur = in

	if !r.networked() {
		return
	}
	if err := r.sync.SendInput(r.session, *cur); err != nil {
		r.log.Debug("input not sent", "err", err)
		return
	}
	if !r.sync.IsHost() && cur.Kick {
		// The host consumes the kick; the guest only predicts movement.
		cur.Kick = false
		cur.Charging = false
		cur.Power = 0
	}
}

func (r *Runner) trackStatus() {
	st, err := r.session.Status()
	if st == r.status {
		return
	}
	r.log.Info("connection status", "from", r.status, "to", st, "err", err)
	r.status = st
	if st == netsync.StatusDisconnected || st == netsync.StatusError {
		r.publish = false
	}
}

// maybeKickOff starts a networked match on the host once the other
// player has arrived.
func (r *Runner) maybeKickOff() {
	w := r.world
	if !r.sync.IsHost() || !r.sync.PeerPresent() || w.Match.Phase != game.PhaseNotStarted {
		return
	}
	opts := game.StartOptions{Difficulty: r.cfg.Difficulty, Mode: game.ModeNetworked, TimeLeft: r.cfg.TimeLeft}
	if err := r.sim.Start(w, opts); err != nil {
		r.log.Error("could not start match", "err", err)
		return
	}
	if err := r.sync.SendStart(r.session, opts.Difficulty, w.Match.TimeLeft); err != nil {
		r.log.Warn("start not sent", "err", err)
	}
	r.publish = true
	r.Broadcast()
}

func (r *Runner) flush() {
	if r.render != nil {
		r.render.Render(r.world.View(), r.status, r.events)
	}
	r.events = nil
}
