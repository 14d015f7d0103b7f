package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
)

var ErrPartialSnapshot = errors.New("partial snapshot")

// Snapshot is the host's authoritative view sent to the guest. Seq is the
// host's simulation tick; the rest are the positional and score fields the
// guest renders from.
type Snapshot struct {
	Seq uint64 `json:"seq"`

	PlayerX  float64 `json:"playerX"`
	PlayerY  float64 `json:"playerY"`
	Player2X float64 `json:"player2X"`
	Player2Y float64 `json:"player2Y"`

	BallX         float64 `json:"ballX"`
	BallY         float64 `json:"ballY"`
	BallSpeedX    float64 `json:"ballSpeedX"`
	BallSpeedY    float64 `json:"ballSpeedY"`
	BallSpin      float64 `json:"ballSpin"`
	BallRotation  float64 `json:"ballRotation"`
	BallHeight    float64 `json:"ballHeight"`
	BallHeightVel float64 `json:"ballHeightVel"`

	Score      int  `json:"score"`
	EnemyScore int  `json:"enemyScore"`
	TimeLeft   int  `json:"timeLeft"`
	GameOver   bool `json:"gameOver"`

	WeatherType  Weather `json:"weatherType"`
	WindStrength float64 `json:"windStrength"`

	TopKeeperX    float64            `json:"topKeeperX"`
	BottomKeeperX float64            `json:"bottomKeeperX"`
	RefereeX      float64            `json:"refereeX"`
	RefereeY      float64            `json:"refereeY"`
	RefereeState  RefereeState       `json:"refereeState"`
	RefereeTimer  int                `json:"refereeTimer"`
	Teammates     [TeammateCount]Vec `json:"teammates"`
	GoalMessage   string             `json:"goalMessage"`
	GoalTimer     int                `json:"goalTimer"`
}

// snapshotKeys lists every json key a snapshot must carry.
var snapshotKeys = func() []string {
	t := reflect.TypeOf((*Snapshot)(nil)).Elem()
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys = append(keys, name)
		}
	}
	return keys
}()

// Capture copies the broadcast fields out of w.
func Capture(w *World) Snapshot {
	s := Snapshot{
		Seq:           w.Tick,
		PlayerX:       w.Players[0].Pos.X,
		PlayerY:       w.Players[0].Pos.Y,
		Player2X:      w.Players[1].Pos.X,
		Player2Y:      w.Players[1].Pos.Y,
		BallX:         w.Ball.Pos.X,
		BallY:         w.Ball.Pos.Y,
		BallSpeedX:    w.Ball.Vel.X,
		BallSpeedY:    w.Ball.Vel.Y,
		BallSpin:      w.Ball.Spin,
		BallRotation:  w.Ball.Rotation,
		BallHeight:    w.Ball.Height,
		BallHeightVel: w.Ball.HeightVel,
		Score:         w.Match.Score[SideHome],
		EnemyScore:    w.Match.Score[SideAway],
		TimeLeft:      w.Match.TimeLeft,
		GameOver:      w.Match.Over(),
		WeatherType:   w.Match.Weather,
		WindStrength:  w.Match.Wind,
		TopKeeperX:    w.Keepers[KeeperTop].Pos.X,
		BottomKeeperX: w.Keepers[KeeperBottom].Pos.X,
		RefereeX:      w.Referee.Pos.X,
		RefereeY:      w.Referee.Pos.Y,
		RefereeState:  w.Referee.State,
		RefereeTimer:  w.Referee.Timer,
		GoalMessage:   w.Match.GoalMessage,
		GoalTimer:     w.Match.GoalTimer,
	}
	for i := range w.Teammates {
		s.Teammates[i] = w.Teammates[i].Pos
	}
	return s
}

// Apply overwrites w with the snapshot. Last write wins; nothing is
// interpolated or reconciled with local prediction.
func (s Snapshot) Apply(w *World) {
	w.Tick = s.Seq
	w.Players[0].Pos = Vec{s.PlayerX, s.PlayerY}
	w.Players[1].Pos = Vec{s.Player2X, s.Player2Y}

	b := &w.Ball
	b.Pos = Vec{s.BallX, s.BallY}
	b.Vel = Vec{s.BallSpeedX, s.BallSpeedY}
	b.Spin = s.BallSpin
	b.Rotation = s.BallRotation
	b.Height = s.BallHeight
	b.HeightVel = s.BallHeightVel

	m := &w.Match
	m.Mode = ModeNetworked
	m.Score = [2]int{SideHome: s.Score, SideAway: s.EnemyScore}
	m.TimeLeft = s.TimeLeft
	m.Phase = PhaseRunning
	if s.GameOver {
		m.Phase = PhaseOver
	}
	m.Weather = s.WeatherType
	m.Wind = s.WindStrength
	m.GoalMessage = s.GoalMessage
	m.GoalTimer = s.GoalTimer

	w.Keepers[KeeperTop].Pos.X = s.TopKeeperX
	w.Keepers[KeeperBottom].Pos.X = s.BottomKeeperX
	w.Referee.Pos = Vec{s.RefereeX, s.RefereeY}
	w.Referee.State = s.RefereeState
	w.Referee.Timer = s.RefereeTimer
	for i := range w.Teammates {
		w.Teammates[i].Pos = s.Teammates[i]
	}
	w.Controlled = ControlPrimary
}

// Validate rejects snapshots carrying NaN or infinite numbers.
func (s Snapshot) Validate() error {
	nums := []float64{
		s.PlayerX, s.PlayerY, s.Player2X, s.Player2Y,
		s.BallX, s.BallY, s.BallSpeedX, s.BallSpeedY,
		s.BallSpin, s.BallRotation, s.BallHeight, s.BallHeightVel,
		s.WindStrength, s.TopKeeperX, s.BottomKeeperX, s.RefereeX, s.RefereeY,
	}
	for _, t := range s.Teammates {
		nums = append(nums, t.X, t.Y)
	}
	for _, n := range nums {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf("%w: non-finite value", ErrPartialSnapshot)
		}
	}
	if s.BallHeight < 0 {
		return fmt.Errorf("%w: negative ball height", ErrPartialSnapshot)
	}
	if s.TimeLeft < 0 {
		return fmt.Errorf("%w: negative time left", ErrPartialSnapshot)
	}
	if !s.WeatherType.Known() {
		return fmt.Errorf("%w: unknown weather %q", ErrPartialSnapshot, s.WeatherType)
	}
	if !s.RefereeState.Known() {
		return fmt.Errorf("%w: unknown referee state %q", ErrPartialSnapshot, s.RefereeState)
	}
	return nil
}

// DecodeSnapshot parses a relayed snapshot. A payload missing any field, or
// with a null or short one, is rejected whole rather than half applied.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	for _, key := range snapshotKeys {
		v, ok := raw[key]
		if !ok || string(v) == "null" {
			return Snapshot{}, fmt.Errorf("%w: missing %q", ErrPartialSnapshot, key)
		}
	}

	var mates []json.RawMessage
	if err := json.Unmarshal(raw["teammates"], &mates); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot teammates: %w", err)
	}
	if len(mates) != TeammateCount {
		return Snapshot{}, fmt.Errorf("%w: %d teammates", ErrPartialSnapshot, len(mates))
	}
	for i, m := range mates {
		var xy map[string]json.RawMessage
		if err := json.Unmarshal(m, &xy); err != nil {
			return Snapshot{}, fmt.Errorf("decode snapshot teammate %d: %w", i, err)
		}
		for _, key := range [...]string{"x", "y"} {
			if v, ok := xy[key]; !ok || string(v) == "null" {
				return Snapshot{}, fmt.Errorf("%w: teammate %d missing %q", ErrPartialSnapshot, i, key)
			}
		}
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
