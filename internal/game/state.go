package game

// Field & physics constants. Units are pixels and ticks (~60 per second).
const (
	FieldWidth  = 500.0
	FieldHeight = 600.0

	BallRadius = 12.0
	BallStartX = 250.0
	BallStartY = 300.0

	MaxTrailLength = 8
	TrailMinSpeed  = 3.0
	TrailFade      = 0.12

	SpinDecay       = 0.98
	SpinCurve       = 0.02
	HeightGravity   = 0.5
	HeightBounce    = 0.5
	HeightRestSpeed = 1.0
	AirFriction     = 0.995
	GroundFriction  = 0.975
	WindFactor      = 0.05
	RestSpeed       = 0.1

	PlayerWidth       = 40.0
	PlayerHeight      = 40.0
	SecondPlayerSpeed = 5.0
	TeammateSize      = 36.0
	OpponentSize      = 35.0
	KeeperWidth       = 50.0
	KeeperHeight      = 30.0
	RefereeSize       = 30.0

	MaxStamina     = 100.0
	StaminaDrain   = 0.15
	StaminaRegen   = 0.3
	StaminaMinMult = 0.7

	MaxPower           = 100.0
	PowerChargeRate    = 2.0
	PowerKickThreshold = 20.0
	KickRange          = 60.0
	PowerKickMult      = 1.5

	GoalMessageTicks = 60
	WhistleTicks     = 60
	CardTicks        = 90

	TeammateCount = 5
	OpponentCount = 5
)

// ControlPrimary is the Controlled value meaning the primary player, not a teammate.
const ControlPrimary = -1

// Side identifies a team. Home (blue, player 1) attacks the top goal, Away
// (red, player 2 or the scripted opponents) attacks the bottom goal.
type Side uint8

const (
	SideHome Side = iota
	SideAway
)

func (s Side) String() string {
	if s == SideHome {
		return "home"
	}
	return "away"
}

type Mode uint8

const (
	ModeSolo Mode = iota
	ModeNetworked
)

func (m Mode) String() string {
	if m == ModeNetworked {
		return "networked"
	}
	return "solo"
}

type Phase uint8

const (
	PhaseNotStarted Phase = iota
	PhaseRunning
	PhaseOver
)

type Weather string

const (
	WeatherClear Weather = "clear"
	WeatherRain  Weather = "rain"
	WeatherWindy Weather = "windy"
)

func (w Weather) Known() bool {
	return w == WeatherClear || w == WeatherRain || w == WeatherWindy
}

type RefereeState string

const (
	RefereeWatching   RefereeState = "watching"
	RefereeRunning    RefereeState = "running"
	RefereeWhistle    RefereeState = "whistle"
	RefereeCardYellow RefereeState = "cardYellow"
	RefereeCardRed    RefereeState = "cardRed"
)

func (r RefereeState) Known() bool {
	switch r {
	case RefereeWatching, RefereeRunning, RefereeWhistle, RefereeCardYellow, RefereeCardRed:
		return true
	}
	return false
}

// AIMode is the explicit opponent behaviour state.
type AIMode uint8

const (
	AIWander AIMode = iota
	AISeek
)

func (m AIMode) String() string {
	if m == AISeek {
		return "seek"
	}
	return "wander"
}

type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Input is one participant's control state. Kick is a one-shot action that
// the next simulation step consumes.
type Input struct {
	Left     bool    `json:"leftPressed"`
	Right    bool    `json:"rightPressed"`
	Up       bool    `json:"upPressed"`
	Down     bool    `json:"downPressed"`
	Charging bool    `json:"isChargingPower"`
	Power    float64 `json:"powerLevel"`
	Kick     bool    `json:"kick"`
}

func (in Input) Moving() bool {
	return in.Left || in.Right || in.Up || in.Down
}

type Ball struct {
	Pos       Vec
	Vel       Vec
	Spin      float64
	Rotation  float64
	Height    float64
	HeightVel float64
	Trail     Trail
}

func (b *Ball) Speed() float64 {
	return hypot(b.Vel.X, b.Vel.Y)
}

// Player is a human-driven actor. Pos is the top-left corner.
type Player struct {
	Pos       Vec
	BaseSpeed float64
	Stamina   float64
	Facing    float64
	Running   bool
	AnimFrame float64
}

func (p *Player) Center() Vec {
	return Vec{p.Pos.X + PlayerWidth/2, p.Pos.Y + PlayerHeight/2}
}

type Teammate struct {
	Pos  Vec
	Vel  Vec
	Base Vec
}

func (t *Teammate) Center() Vec {
	return Vec{t.Pos.X + TeammateSize/2, t.Pos.Y + TeammateSize/2}
}

type Opponent struct {
	Pos  Vec
	Vel  Vec
	Mode AIMode
}

func (o *Opponent) Center() Vec {
	return Vec{o.Pos.X + OpponentSize/2, o.Pos.Y + OpponentSize/2}
}

// Goalkeeper moves along a lane in front of its goal; its velocity is implicit.
type Goalkeeper struct {
	Pos   Vec
	Speed float64
}

type Referee struct {
	Pos   Vec
	Vel   Vec
	State RefereeState
	Timer int
}

type Match struct {
	Phase       Phase
	Mode        Mode
	Difficulty  Difficulty
	Score       [2]int
	TimeLeft    int
	Weather     Weather
	Wind        float64
	GoalMessage string
	GoalTimer   int
	Cards       int
}

func (m *Match) Running() bool { return m.Phase == PhaseRunning }
func (m *Match) Over() bool    { return m.Phase == PhaseOver }

const (
	KeeperTop    = 0 // defends the top goal (home attacks it)
	KeeperBottom = 1 // defends the bottom goal
)

// World is the single owned simulation state. Subsystems receive it by
// pointer and never keep copies of their own.
type World struct {
	Tick       uint64
	Ball       Ball
	Players    [2]Player
	Teammates  [TeammateCount]Teammate
	Opponents  [OpponentCount]Opponent
	Keepers    [2]Goalkeeper
	Referee    Referee
	Match      Match
	Inputs     [2]Input
	Controlled int
}

var (
	primaryStart = Vec{230, 450}
	secondStart  = Vec{230, 120}

	teammateStarts = [TeammateCount]Teammate{
		{Pos: Vec{100, 320}, Vel: Vec{1.5, 1}, Base: Vec{100, 320}},
		{Pos: Vec{350, 320}, Vel: Vec{-1.5, 1}, Base: Vec{350, 320}},
		{Pos: Vec{230, 180}, Vel: Vec{1, -1.5}, Base: Vec{230, 180}},
		{Pos: Vec{80, 420}, Vel: Vec{1, 0.5}, Base: Vec{80, 420}},
		{Pos: Vec{380, 420}, Vel: Vec{-1, 0.5}, Base: Vec{380, 420}},
	}

	opponentStarts = [OpponentCount]Opponent{
		{Pos: Vec{120, 150}, Vel: Vec{2, 0}},
		{Pos: Vec{320, 150}, Vel: Vec{-2, 0}},
		{Pos: Vec{230, 280}, Vel: Vec{0, 2}},
		{Pos: Vec{60, 380}, Vel: Vec{1.5, 0}},
		{Pos: Vec{380, 380}, Vel: Vec{-1.5, 0}},
	}
)

// NewWorld returns the fixed load-time layout.
func NewWorld() *World {
	w := &World{
		Ball: Ball{Pos: Vec{BallStartX, BallStartY}},
		Players: [2]Player{
			{Pos: primaryStart, BaseSpeed: 5, Stamina: MaxStamina},
			{Pos: secondStart, BaseSpeed: SecondPlayerSpeed, Stamina: MaxStamina},
		},
		Teammates: teammateStarts,
		Opponents: opponentStarts,
		Keepers: [2]Goalkeeper{
			KeeperTop:    {Pos: Vec{200, 55}, Speed: 3},
			KeeperBottom: {Pos: Vec{200, 515}, Speed: 2.5},
		},
		Referee: Referee{Pos: Vec{250, 300}, State: RefereeWatching},
		Match: Match{
			Difficulty: DifficultyMedium,
			TimeLeft:   60,
			Weather:    WeatherClear,
		},
		Controlled: ControlPrimary,
	}
	return w
}

// View returns a copy safe to hand to renderers.
func (w *World) View() World {
	return *w
}

// ResetPositions puts ball, both players and the teammates back on their
// kick-off marks. Scores and time are untouched.
func (w *World) ResetPositions() {
	w.Ball.Pos = Vec{BallStartX, BallStartY}
	w.Ball.Vel = Vec{}
	w.Ball.Spin = 0
	w.Ball.Height = 0
	w.Ball.HeightVel = 0
	w.Ball.Trail.Reset()

	w.Players[0].Pos = primaryStart
	w.Players[1].Pos = secondStart
	w.Controlled = ControlPrimary

	for i := range w.Teammates {
		w.Teammates[i].Pos = teammateStarts[i].Pos
		w.Teammates[i].Base = teammateStarts[i].Base
	}
}

// Trail is a bounded ring of recent ball positions with decaying alpha.
type Trail struct {
	points [MaxTrailLength]TrailPoint
	start  int
	n      int
}

type TrailPoint struct {
	X     float64
	Y     float64
	Alpha float64
}

func (t *Trail) Len() int { return t.n }

// At returns the i-th point, oldest first.
func (t *Trail) At(i int) TrailPoint {
	return t.points[(t.start+i)%MaxTrailLength]
}

func (t *Trail) Push(p TrailPoint) {
	if t.n == MaxTrailLength {
		t.start = (t.start + 1) % MaxTrailLength
		t.n--
	}
	t.points[(t.start+t.n)%MaxTrailLength] = p
	t.n++
}

// Fade lowers every alpha and drops the entries that reached zero. Points
// fade at the same rate, so the dead ones are always the oldest.
func (t *Trail) Fade(amount float64) {
	for i := 0; i < t.n; i++ {
		t.points[(t.start+i)%MaxTrailLength].Alpha -= amount
	}
	for t.n > 0 && t.points[t.start].Alpha <= 0 {
		t.start = (t.start + 1) % MaxTrailLength
		t.n--
	}
}

func (t *Trail) Reset() {
	t.start = 0
	t.n = 0
}
