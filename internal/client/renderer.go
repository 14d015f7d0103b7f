package client

import (
	"log/slog"

	"github.com/uset82/My-Football-Game/internal/game"
	"github.com/uset82/My-Football-Game/internal/netsync"
)

// LogRenderer writes match events and a periodic scoreline to a logger.
type LogRenderer struct {
	// Every is the number of frames between scoreline lines; zero disables them.
	Every int

	log    *slog.Logger
	frames int
	status netsync.Status
}

func NewLogRenderer(l *slog.Logger, every int) *LogRenderer {
	if l == nil {
		l = slog.Default()
	}
	return &LogRenderer{Every: every, log: l.With("component", "render")}
}

func (r *LogRenderer) Render(view game.World, status netsync.Status, events []game.Event) {
	r.frames++
	if status != r.status {
		r.log.Info("status", "status", status)
		r.status = status
	}

	for _, e := range events {
		switch e.Kind {
		case game.EventBounce:
			continue
		case game.EventGoal:
			r.log.Info(view.Match.GoalMessage, "score", view.Match.Score, "timeLeft", view.Match.TimeLeft)
		case game.EventCard:
			card := "yellow"
			if e.Red {
				card = "red"
			}
			r.log.Info("card shown", "card", card, "x", e.Pos.X, "y", e.Pos.Y)
		case game.EventGameOver:
			result := e.Side.String() + " wins"
			if view.Match.Draw() {
				result = "draw"
			}
			r.log.Info("full time", "result", result, "score", view.Match.Score)
		default:
			r.log.Debug(e.Kind.String(), "side", e.Side, "x", e.Pos.X, "y", e.Pos.Y)
		}
	}

	if r.Every > 0 && r.frames%r.Every == 0 && view.Match.Running() {
		r.log.Info("match",
			"score", view.Match.Score,
			"timeLeft", view.Match.TimeLeft,
			"weather", view.Match.Weather,
			"ball", view.Ball.Pos,
		)
	}
}
