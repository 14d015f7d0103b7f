package game

import (
	"log/slog"
	"math/rand"
)

type EventKind uint8

const (
	EventBounce EventKind = iota
	EventKick
	EventPowerKick
	EventPass
	EventSave
	EventGoal
	EventCard
	EventWhistle
	EventGameOver
)

var eventNames = [...]string{
	EventBounce:    "bounce",
	EventKick:      "kick",
	EventPowerKick: "powerKick",
	EventPass:      "pass",
	EventSave:      "save",
	EventGoal:      "goal",
	EventCard:      "card",
	EventWhistle:   "whistle",
	EventGameOver:  "gameOver",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is a side effect of a step for sound, particles or UI. Side is set
// for goals, kicks and game over; Red only for cards.
type Event struct {
	Kind EventKind
	Side Side
	Pos  Vec
	Red  bool
}

// Tuning holds the knobs that are not part of a difficulty tier.
type Tuning struct {
	CardChance   float64 // probability of a card on a qualifying collision
	CardForce    float64 // player speed a collision must exceed to risk a card
	SeekEnter    float64
	SeekExit     float64
	WanderJitter float64 // per-tick chance of a new patrol velocity
}

func DefaultTuning() Tuning {
	return Tuning{
		CardChance:   0.15,
		CardForce:    4,
		SeekEnter:    200,
		SeekExit:     240,
		WanderJitter: 0.02,
	}
}

// Simulator advances a World. It owns the random source so a seeded match
// replays identically; the World itself stays plain data.
type Simulator struct {
	Tuning Tuning

	rng    *rand.Rand
	log    *slog.Logger
	bodies *bodyIndex
	events []Event
}

type Option func(*Simulator)

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.log = l }
}

func WithTuning(t Tuning) Option {
	return func(s *Simulator) { s.Tuning = t }
}

func NewSimulator(seed int64, opts ...Option) *Simulator {
	s := &Simulator{
		Tuning: DefaultTuning(),
		rng:    rand.New(rand.NewSource(seed)),
		log:    slog.Default(),
		bodies: newBodyIndex(),
		events: make([]Event, 0, 16),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) emit(e Event) {
	s.events = append(s.events, e)
}

// drain hands the collected events to the caller, who may keep them.
func (s *Simulator) drain() []Event {
	if len(s.events) == 0 {
		return nil
	}
	out := make([]Event, len(s.events))
	copy(out, s.events)
	s.events = s.events[:0]
	return out
}

// Step runs one authoritative tick: kicks, movement, ball physics, AI,
// collisions and scoring. Nothing moves unless the match is running.
func (s *Simulator) Step(w *World) []Event {
	s.events = s.events[:0]
	if !w.Match.Running() {
		return nil
	}
	w.Tick++
	networked := w.Match.Mode == ModeNetworked

	UpdateControlled(w)
	s.consumeKicks(w)

	movePrimary(w)
	if networked {
		moveSecond(w)
	}

	AdvanceBall(w, s.emit)

	if !networked {
		s.moveOpponents(w)
	}
	moveKeeper(w, KeeperTop)
	moveKeeper(w, KeeperBottom)
	moveTeammates(w)
	moveReferee(w)

	s.resolveCollisions(w)
	s.checkGoals(w)

	chargePower(&w.Inputs[0])
	if networked {
		chargePower(&w.Inputs[1])
	}

	if w.Match.GoalTimer > 0 {
		w.Match.GoalTimer--
		if w.Match.GoalTimer == 0 {
			w.Match.GoalMessage = ""
		}
	}
	return s.drain()
}

// consumeKicks applies pending one-shot kicks. A kick spends the kicker's
// charge whether or not the ball was in reach.
func (s *Simulator) consumeKicks(w *World) {
	n := 1
	if w.Match.Mode == ModeNetworked {
		n = 2
	}
	for i := 0; i < n; i++ {
		in := &w.Inputs[i]
		if !in.Kick {
			continue
		}
		struck, powered := Kick(&w.Ball, kickerCenter(w, i), in.Power, in.Charging, s.rng)
		in.Kick = false
		in.Charging = false
		in.Power = 0
		if !struck {
			continue
		}
		kind := EventKick
		if powered {
			kind = EventPowerKick
		}
		s.emit(Event{Kind: kind, Side: Side(i), Pos: w.Ball.Pos})
	}
}

// PredictLocal moves only the guest's own actor and its charge meter. The
// next authoritative snapshot overwrites the result.
func PredictLocal(w *World, idx int) {
	if !w.Match.Running() {
		return
	}
	if idx == 1 {
		moveSecond(w)
	} else {
		movePrimary(w)
	}
	chargePower(&w.Inputs[idx])
}
