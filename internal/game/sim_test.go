package game_test

import (
	"errors"
	"testing"

	"github.com/uset82/My-Football-Game/internal/game"
)

func startMatch(t *testing.T, mode game.Mode) (*game.World, *game.Simulator) {
	t.Helper()
	w := game.NewWorld()
	sim := game.NewSimulator(42)
	if err := sim.Start(w, game.StartOptions{Difficulty: game.DifficultyMedium, Mode: mode}); err != nil {
		t.Fatalf("start: %v", err)
	}
	w.Match.Weather = game.WeatherClear
	w.Match.Wind = 0
	return w, sim
}

func hasEvent(events []game.Event, kind game.EventKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func TestStep_IdleBeforeStart(t *testing.T) {
	w := game.NewWorld()
	sim := game.NewSimulator(1)
	w.Ball.Vel = game.Vec{X: 5, Y: 5}

	if events := sim.Step(w); events != nil {
		t.Fatalf("events before start: %v", events)
	}
	if w.Ball.Pos != (game.Vec{X: game.BallStartX, Y: game.BallStartY}) || w.Tick != 0 {
		t.Fatalf("world moved before start: tick %d ball %+v", w.Tick, w.Ball.Pos)
	}
}

func TestStep_OpponentKicksTowardDefendedGoal(t *testing.T) {
	w, sim := startMatch(t, game.ModeSolo)
	w.Ball.Pos = w.Opponents[2].Center()
	w.Ball.Vel = game.Vec{}

	events := sim.Step(w)

	if vy := w.Ball.Vel.Y; vy < 5 || vy > 8 {
		t.Fatalf("ball vy = %v, want in [5, 8]", vy)
	}
	if !hasEvent(events, game.EventKick) {
		t.Fatalf("no kick event in %v", events)
	}
}

func TestStep_ChargedKick(t *testing.T) {
	w, sim := startMatch(t, game.ModeSolo)
	w.Inputs[0].Charging = true
	for i := 0; i < 10; i++ {
		sim.Step(w)
	}
	if w.Inputs[0].Power != 20 {
		t.Fatalf("power after 10 ticks = %v, want 20", w.Inputs[0].Power)
	}
	sim.Step(w)

	c := w.Players[0].Center()
	w.Ball.Pos = game.Vec{X: c.X + 10, Y: c.Y - 30}
	w.Ball.Vel = game.Vec{}
	w.Inputs[0].Kick = true

	events := sim.Step(w)

	if !hasEvent(events, game.EventPowerKick) {
		t.Fatalf("no power kick in %v", events)
	}
	if w.Inputs[0].Power != 0 || w.Inputs[0].Charging || w.Inputs[0].Kick {
		t.Fatalf("input not reset after kick: %+v", w.Inputs[0])
	}
}

func TestStep_GoalOnLeftPost(t *testing.T) {
	w, sim := startMatch(t, game.ModeNetworked)
	timeLeft := w.Match.TimeLeft
	w.Ball.Pos = game.Vec{X: game.TopGoal.X, Y: 14}
	w.Ball.Vel = game.Vec{X: 0, Y: -6}

	events := sim.Step(w)

	if !hasEvent(events, game.EventGoal) {
		t.Fatalf("no goal event in %v", events)
	}
	if w.Match.Score != [2]int{1, 0} {
		t.Fatalf("score = %v, want [1 0]", w.Match.Score)
	}
	if w.Match.GoalMessage != "BLUE SCORES!" {
		t.Fatalf("goal message = %q", w.Match.GoalMessage)
	}
	if w.Ball.Pos != (game.Vec{X: game.BallStartX, Y: game.BallStartY}) {
		t.Fatalf("ball not reset: %+v", w.Ball.Pos)
	}
	if w.Referee.State != game.RefereeWhistle {
		t.Fatalf("referee state = %q, want whistle", w.Referee.State)
	}
	if w.Match.TimeLeft != timeLeft {
		t.Fatalf("time changed on goal")
	}
}

func TestStep_GoalMessageExpires(t *testing.T) {
	w, sim := startMatch(t, game.ModeNetworked)
	w.Match.GoalMessage = "BLUE SCORES!"
	w.Match.GoalTimer = 2

	sim.Step(w)
	sim.Step(w)

	if w.Match.GoalMessage != "" || w.Match.GoalTimer != 0 {
		t.Fatalf("goal message still shown: %q (%d)", w.Match.GoalMessage, w.Match.GoalTimer)
	}
}

func TestResetPositions_Idempotent(t *testing.T) {
	w, sim := startMatch(t, game.ModeSolo)
	for i := 0; i < 50; i++ {
		sim.Step(w)
	}
	w.Match.Score = [2]int{3, 2}
	w.Match.TimeLeft = 17
	w.Players[0].Pos = game.Vec{X: 1, Y: 2}
	w.Players[1].Pos = game.Vec{X: 3, Y: 4}
	w.Ball.Vel = game.Vec{X: 9, Y: 9}

	w.ResetPositions()
	first := game.Capture(w)
	w.ResetPositions()
	second := game.Capture(w)

	if first != second {
		t.Fatalf("reset not idempotent:\n%+v\n%+v", first, second)
	}
	fresh := game.NewWorld()
	if w.Ball.Pos != fresh.Ball.Pos || w.Ball.Vel != (game.Vec{}) {
		t.Fatalf("ball = %+v / %+v", w.Ball.Pos, w.Ball.Vel)
	}
	for i := range w.Players {
		if w.Players[i].Pos != fresh.Players[i].Pos {
			t.Fatalf("player %d at %+v, want %+v", i, w.Players[i].Pos, fresh.Players[i].Pos)
		}
	}
	for i := range w.Teammates {
		if w.Teammates[i].Pos != fresh.Teammates[i].Pos {
			t.Fatalf("teammate %d at %+v, want %+v", i, w.Teammates[i].Pos, fresh.Teammates[i].Pos)
		}
	}
	if w.Match.Score != [2]int{3, 2} || w.Match.TimeLeft != 17 {
		t.Fatalf("reset touched score %v or time %d", w.Match.Score, w.Match.TimeLeft)
	}
}

func TestClockTick_EndsMatchOnce(t *testing.T) {
	w, sim := startMatch(t, game.ModeSolo)
	w.Match.TimeLeft = 1

	events := sim.ClockTick(w)
	if w.Match.TimeLeft != 0 || !w.Match.Over() {
		t.Fatalf("timeLeft %d over %v", w.Match.TimeLeft, w.Match.Over())
	}
	if !hasEvent(events, game.EventGameOver) {
		t.Fatalf("no game over event in %v", events)
	}

	for i := 0; i < 3; i++ {
		if events := sim.ClockTick(w); events != nil {
			t.Fatalf("extra events after game over: %v", events)
		}
	}
	if w.Match.TimeLeft != 0 {
		t.Fatalf("timeLeft went to %d", w.Match.TimeLeft)
	}

	ball := w.Ball
	sim.Step(w)
	if w.Ball != ball {
		t.Fatalf("ball moved after game over")
	}
}

func TestStart_TimeLimits(t *testing.T) {
	tests := []struct {
		name string
		opts game.StartOptions
		want int
	}{
		{"easy", game.StartOptions{Difficulty: game.DifficultyEasy}, 90},
		{"medium", game.StartOptions{Difficulty: game.DifficultyMedium}, 60},
		{"hard", game.StartOptions{Difficulty: game.DifficultyHard}, 45},
		{"networked", game.StartOptions{Difficulty: game.DifficultyEasy, Mode: game.ModeNetworked}, game.NetworkedTimeLimit},
		{"override", game.StartOptions{Difficulty: game.DifficultyHard, TimeLeft: 5}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := game.NewWorld()
			if err := game.NewSimulator(1).Start(w, tt.opts); err != nil {
				t.Fatalf("start: %v", err)
			}
			if w.Match.TimeLeft != tt.want {
				t.Fatalf("timeLeft = %d, want %d", w.Match.TimeLeft, tt.want)
			}
			if !w.Match.Running() {
				t.Fatalf("match not running")
			}
		})
	}
}

func TestStart_UnknownDifficulty(t *testing.T) {
	w := game.NewWorld()
	err := game.NewSimulator(1).Start(w, game.StartOptions{Difficulty: "insane"})
	if !errors.Is(err, game.ErrUnknownDifficulty) {
		t.Fatalf("err = %v, want ErrUnknownDifficulty", err)
	}
	if w.Match.Running() {
		t.Fatalf("match started with a bad difficulty")
	}
	if _, err := game.ParseDifficulty("hard"); err != nil {
		t.Fatalf("parse hard: %v", err)
	}
}

func TestStart_OpponentSpeedKeepsDirection(t *testing.T) {
	w := game.NewWorld()
	if err := game.NewSimulator(1).Start(w, game.StartOptions{Difficulty: game.DifficultyHard}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if w.Opponents[0].Vel != (game.Vec{X: 2.5, Y: -2.5}) {
		t.Fatalf("opponent 0 vel = %+v", w.Opponents[0].Vel)
	}
	if w.Opponents[1].Vel != (game.Vec{X: -2.5, Y: -2.5}) {
		t.Fatalf("opponent 1 vel = %+v", w.Opponents[1].Vel)
	}
}

func TestUpdateControlled(t *testing.T) {
	w := game.NewWorld()
	w.Ball.Pos = w.Teammates[3].Center()
	game.UpdateControlled(w)
	if w.Controlled != 3 {
		t.Fatalf("controlled = %d, want 3", w.Controlled)
	}

	w.Match.Mode = game.ModeNetworked
	game.UpdateControlled(w)
	if w.Controlled != game.ControlPrimary {
		t.Fatalf("networked controlled = %d, want primary", w.Controlled)
	}
}

func TestPredictLocal_MovesOnlyOwnActor(t *testing.T) {
	w, _ := startMatch(t, game.ModeNetworked)
	before := game.Capture(w)
	w.Inputs[1].Left = true

	game.PredictLocal(w, 1)

	if w.Players[1].Pos.X >= before.Player2X {
		t.Fatalf("player 2 did not move left: %v", w.Players[1].Pos.X)
	}
	after := game.Capture(w)
	after.Player2X = before.Player2X
	if after != before {
		t.Fatalf("prediction touched other state:\n%+v\n%+v", before, after)
	}
}
