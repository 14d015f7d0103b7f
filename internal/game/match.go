package game

import (
	"errors"
	"fmt"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DifficultySettings are the constants a tier fixes for the whole match.
type DifficultySettings struct {
	OpponentSpeed     float64
	KeeperSpeed       float64
	OpponentKickPower float64
	PlayerSpeed       float64
	TimeLimit         int
}

var difficultyTable = map[Difficulty]DifficultySettings{
	DifficultyEasy: {
		OpponentSpeed:     1,
		KeeperSpeed:       2,
		OpponentKickPower: 3,
		PlayerSpeed:       6,
		TimeLimit:         90,
	},
	DifficultyMedium: {
		OpponentSpeed:     1.5,
		KeeperSpeed:       3,
		OpponentKickPower: 5,
		PlayerSpeed:       5,
		TimeLimit:         60,
	},
	DifficultyHard: {
		OpponentSpeed:     2.5,
		KeeperSpeed:       4,
		OpponentKickPower: 7,
		PlayerSpeed:       5,
		TimeLimit:         45,
	},
}

// NetworkedTimeLimit is the default length of a networked match in seconds.
const NetworkedTimeLimit = 120

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if _, ok := difficultyTable[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
	return d, nil
}

func (d Difficulty) Settings() (DifficultySettings, error) {
	s, ok := difficultyTable[d]
	if !ok {
		return DifficultySettings{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, string(d))
	}
	return s, nil
}

// settings is Settings for code paths that already validated the tier.
func (d Difficulty) settings() DifficultySettings {
	if s, ok := difficultyTable[d]; ok {
		return s
	}
	return difficultyTable[DifficultyMedium]
}

type StartOptions struct {
	Difficulty Difficulty
	Mode       Mode
	// TimeLeft overrides the tier's time limit when positive.
	TimeLeft int
}

// Start configures and kicks off a match. Scores, cards and positions are
// reset; weather is rolled fresh.
func (s *Simulator) Start(w *World, opts StartOptions) error {
	settings, err := opts.Difficulty.Settings()
	if err != nil {
		return err
	}

	m := &w.Match
	m.Difficulty = opts.Difficulty
	m.Mode = opts.Mode
	m.Score = [2]int{}
	m.Cards = 0
	m.GoalMessage = ""
	m.GoalTimer = 0

	m.TimeLeft = settings.TimeLimit
	if opts.Mode == ModeNetworked {
		m.TimeLeft = NetworkedTimeLimit
	}
	if opts.TimeLeft > 0 {
		m.TimeLeft = opts.TimeLeft
	}

	w.Players[0].BaseSpeed = settings.PlayerSpeed
	w.Keepers[KeeperTop].Speed = settings.KeeperSpeed
	for i := range w.Opponents {
		o := &w.Opponents[i]
		o.Vel.X = signedSpeed(o.Vel.X, settings.OpponentSpeed)
		o.Vel.Y = signedSpeed(o.Vel.Y, settings.OpponentSpeed)
		o.Mode = AIWander
	}

	s.rollWeather(w)
	w.Tick = 0
	w.Inputs = [2]Input{}
	w.ResetPositions()
	m.Phase = PhaseRunning

	s.log.Info("match started", "difficulty", opts.Difficulty, "mode", opts.Mode,
		"timeLeft", m.TimeLeft, "weather", m.Weather)
	return nil
}

// signedSpeed keeps the direction of v (zero counts as negative) at magnitude speed.
func signedSpeed(v, speed float64) float64 {
	if v > 0 {
		return speed
	}
	return -speed
}

func (s *Simulator) rollWeather(w *World) {
	m := &w.Match
	switch r := s.rng.Float64(); {
	case r < 0.7:
		m.Weather = WeatherClear
		m.Wind = 0
	case r < 0.9:
		m.Weather = WeatherRain
		m.Wind = (s.rng.Float64() - 0.5) * 0.3
	default:
		m.Weather = WeatherWindy
		dir := -1.0
		if s.rng.Float64() > 0.5 {
			dir = 1
		}
		m.Wind = dir * (0.3 + s.rng.Float64()*0.3)
	}
}

// ClockTick counts one wall-clock second off a running match. Reaching zero
// ends the match exactly once; later calls do nothing.
func (s *Simulator) ClockTick(w *World) []Event {
	s.events = s.events[:0]
	m := &w.Match
	if m.Phase != PhaseRunning {
		return nil
	}

	m.TimeLeft--
	if m.TimeLeft <= 0 {
		m.TimeLeft = 0
		m.Phase = PhaseOver
		s.emit(Event{Kind: EventWhistle})
		s.emit(Event{Kind: EventGameOver, Side: m.Leader()})
		s.log.Info("game over", "home", m.Score[SideHome], "away", m.Score[SideAway])
	}
	return s.drain()
}

// Leader returns the side ahead, or SideHome on a draw; Draw tells them apart.
func (m *Match) Leader() Side {
	if m.Score[SideAway] > m.Score[SideHome] {
		return SideAway
	}
	return SideHome
}

func (m *Match) Draw() bool {
	return m.Score[SideHome] == m.Score[SideAway]
}
