package netsync

//go:generate go tool mockgen -destination=./mocks/outbox_mock.go -package=mocks . Outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uset82/My-Football-Game/internal/game"
	"github.com/uset82/My-Football-Game/internal/ws"
)

var (
	ErrStaleSnapshot = errors.New("stale snapshot")
	ErrNotHost       = errors.New("only the host broadcasts state")
	ErrNoSeat        = errors.New("role has no actor")
)

// Outbox sends a message to the rest of the room.
type Outbox interface {
	Send(msg ws.Message) error
}

// Sync is one side's view of the authority protocol: which seat it holds,
// which snapshots it has applied, and what input it last sent.
type Sync struct {
	room string
	role ws.Role

	peer        bool
	applied     bool
	lastApplied uint64

	sent     bool
	lastKeys ws.Keys

	log *slog.Logger
}

func NewSync(room string) *Sync {
	return &Sync{
		room: room,
		log:  slog.Default().With("component", "netsync"),
	}
}

func (s *Sync) Room() string  { return s.room }
func (s *Sync) Role() ws.Role { return s.role }

// Joined reports whether the relay has assigned a role yet.
func (s *Sync) Joined() bool { return s.role != "" }

// IsHost reports whether this side runs the authoritative simulation.
func (s *Sync) IsHost() bool { return s.role.Host() }

// PeerPresent reports whether the other player is in the room.
func (s *Sync) PeerPresent() bool { return s.peer }

// LocalIndex is the World.Inputs/Players slot this side drives, or -1 for
// a spectator or a side still awaiting its role.
func (s *Sync) LocalIndex() int {
	return seat(s.role)
}

func seat(r ws.Role) int {
	switch r {
	case ws.RoleP1:
		return 0
	case ws.RoleP2:
		return 1
	}
	return -1
}

// Handle applies one inbound relay message to w. Errors describe a message
// that was dropped; none of them leave w half updated.
func (s *Sync) Handle(w *game.World, sim *game.Simulator, msg ws.Message) error {
	switch msg.Type {
	case ws.MsgJoined:
		p, err := ws.DecodePayload[ws.JoinedPayload](msg)
		if err != nil {
			return err
		}
		s.role = p.Role
		if p.Room != "" {
			s.room = p.Room
		}
		s.log.Info("joined room", "room", s.room, "role", s.role)

	case ws.MsgPlayerJoined, ws.MsgPlayerLeft:
		p, err := ws.DecodePayload[ws.PeerPayload](msg)
		if err != nil {
			return err
		}
		if p.Role.Player() && p.Role != s.role {
			s.peer = msg.Type == ws.MsgPlayerJoined
		}
		s.log.Info(msg.Type, "role", p.Role, "id", p.ID)

	case ws.MsgStart:
		return s.applyStart(w, sim, msg)

	case ws.MsgInput:
		p, err := ws.DecodePayload[ws.InputPayload](msg)
		if err != nil {
			return err
		}
		return s.ApplyRemoteInput(w, p)

	case ws.MsgState:
		p, err := ws.DecodePayload[ws.StatePayload](msg)
		if err != nil {
			return err
		}
		return s.ApplyRemoteState(w, p)

	default:
		return fmt.Errorf("unexpected message type %q", msg.Type)
	}
	return nil
}

// applyStart mirrors the host's kick-off locally. The host already started
// when it sent the message.
func (s *Sync) applyStart(w *game.World, sim *game.Simulator, msg ws.Message) error {
	if s.IsHost() {
		return nil
	}
	p, err := ws.DecodePayload[ws.StartPayload](msg)
	if err != nil {
		return err
	}
	d, err := game.ParseDifficulty(p.Difficulty)
	if err != nil {
		d = game.DifficultyMedium
	}
	s.ResetGate()
	s.peer = true
	return sim.Start(w, game.StartOptions{Difficulty: d, Mode: game.ModeNetworked, TimeLeft: p.TimeLeft})
}

// ApplyRemoteInput overwrites the other participant's controls. Input that
// claims this side's own role, or a seat without an actor, is ignored.
func (s *Sync) ApplyRemoteInput(w *game.World, p ws.InputPayload) error {
	if p.Role == s.role {
		return nil
	}
	idx := seat(p.Role)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrNoSeat, p.Role)
	}

	in := &w.Inputs[idx]
	pendingKick := in.Kick
	*in = inputFromKeys(p.Keys)
	in.Kick = in.Kick || pendingKick
	return nil
}

// ApplyRemoteState replaces the local world with a host snapshot. The host
// ignores snapshots; the guest drops partial ones and any not newer than
// the last it applied.
func (s *Sync) ApplyRemoteState(w *game.World, p ws.StatePayload) error {
	if s.IsHost() {
		return nil
	}
	snap, err := game.DecodeSnapshot(p.Data)
	if err != nil {
		return err
	}
	if s.applied && snap.Seq <= s.lastApplied {
		return fmt.Errorf("%w: seq %d, last applied %d", ErrStaleSnapshot, snap.Seq, s.lastApplied)
	}
	snap.Apply(w)
	s.applied = true
	s.lastApplied = snap.Seq
	return nil
}

// ResetGate forgets the last applied sequence; a new match restarts the
// host's tick count.
func (s *Sync) ResetGate() {
	s.applied = false
	s.lastApplied = 0
}

// SendInput publishes the local controls when they differ from what was
// last sent. A kick is always sent. The charge level alone does not count
// as a change; it rides along with the next one.
func (s *Sync) SendInput(out Outbox, in game.Input) error {
	if seat(s.role) < 0 {
		return ErrNoSeat
	}
	keys := keysFromInput(in)
	cmp := keys
	cmp.PowerLevel = s.lastKeys.PowerLevel
	if s.sent && !keys.Kick && cmp == s.lastKeys {
		return nil
	}

	msg, err := ws.NewMessage(ws.MsgInput, ws.InputPayload{Role: s.role, Room: s.room, Keys: keys})
	if err != nil {
		return err
	}
	if err := out.Send(msg); err != nil {
		return fmt.Errorf("send input: %w", err)
	}
	keys.Kick = false
	s.lastKeys = keys
	s.sent = true
	return nil
}

// SendStart announces a kick-off to the room.
func (s *Sync) SendStart(out Outbox, d game.Difficulty, timeLeft int) error {
	msg, err := ws.NewMessage(ws.MsgStart, ws.StartPayload{Room: s.room, Difficulty: string(d), TimeLeft: timeLeft})
	if err != nil {
		return err
	}
	if err := out.Send(msg); err != nil {
		return fmt.Errorf("send start: %w", err)
	}
	return nil
}

// BroadcastState sends the host's snapshot of w to the room.
func (s *Sync) BroadcastState(out Outbox, w *game.World) error {
	if !s.IsHost() {
		return ErrNotHost
	}
	data, err := json.Marshal(game.Capture(w))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	msg, err := ws.NewMessage(ws.MsgState, ws.StatePayload{Room: s.room, Data: data})
	if err != nil {
		return err
	}
	if err := out.Send(msg); err != nil {
		return fmt.Errorf("send state: %w", err)
	}
	return nil
}

func keysFromInput(in game.Input) ws.Keys {
	return ws.Keys{
		LeftPressed:     in.Left,
		RightPressed:    in.Right,
		UpPressed:       in.Up,
		DownPressed:     in.Down,
		IsChargingPower: in.Charging,
		PowerLevel:      in.Power,
		Kick:            in.Kick,
	}
}

func inputFromKeys(k ws.Keys) game.Input {
	return game.Input{
		Left:     k.LeftPressed,
		Right:    k.RightPressed,
		Up:       k.UpPressed,
		Down:     k.DownPressed,
		Charging: k.IsChargingPower,
		Power:    k.PowerLevel,
		Kick:     k.Kick,
	}
}
