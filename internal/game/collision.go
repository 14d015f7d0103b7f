package game

import (
	"math"
	"slices"

	"github.com/solarlune/resolv"
)

const (
	tagPlayer   = "player"
	tagOpponent = "opponent"

	// bodyCell is the broad-phase grid cell size in field units.
	bodyCell = 20

	// clearance keeps a pushed ball or player from touching again next tick.
	clearance = 5.0

	// bodyMargin pads every indexed body so fractional overlaps near a cell
	// edge still share a cell. The exact test is rectsOverlap.
	bodyMargin = 1.0
)

// bodyIndex mirrors the primary player and the opponents in a resolv space
// so body contacts only test opponents sharing a grid cell with the player.
type bodyIndex struct {
	space     *resolv.Space
	player    *resolv.Object
	opponents [OpponentCount]*resolv.Object
}

func newBodyIndex() *bodyIndex {
	space := resolv.NewSpace(int(FieldWidth), int(FieldHeight), bodyCell, bodyCell)

	player := paddedBody(PlayerWidth, PlayerHeight, tagPlayer)
	space.Add(player)

	idx := &bodyIndex{space: space, player: player}
	for i := range idx.opponents {
		obj := paddedBody(OpponentSize, OpponentSize, tagOpponent)
		space.Add(obj)
		idx.opponents[i] = obj
	}
	return idx
}

func paddedBody(w, h float64, tag string) *resolv.Object {
	obj := resolv.NewObject(-bodyMargin, -bodyMargin, w+2*bodyMargin, h+2*bodyMargin, tag)
	obj.SetShape(resolv.NewRectangle(0, 0, w+2*bodyMargin, h+2*bodyMargin))
	return obj
}

// place moves obj so its padded box surrounds a body at pos.
func place(obj *resolv.Object, pos Vec) {
	obj.X, obj.Y = pos.X-bodyMargin, pos.Y-bodyMargin
	obj.Update()
}

func (b *bodyIndex) sync(w *World) {
	place(b.player, w.Players[0].Pos)
	for i, obj := range b.opponents {
		place(obj, w.Opponents[i].Pos)
	}
}

// candidates returns, in index order, the opponents the broad phase says
// may touch the player.
func (b *bodyIndex) candidates() []int {
	check := b.player.Check(0, 0, tagOpponent)
	if check == nil {
		return nil
	}
	var out []int
	for _, obj := range check.ObjectsByTags(tagOpponent) {
		for i, o := range b.opponents {
			if o == obj {
				out = append(out, i)
				break
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func rectsOverlap(a Vec, aw, ah float64, b Vec, bw, bh float64) bool {
	return a.X < b.X+bw && a.X+aw > b.X && a.Y < b.Y+bh && a.Y+ah > b.Y
}

// ballTouches is the circle-vs-rectangle test used for every actor: the
// ball center strictly inside the rectangle grown by the ball radius.
func ballTouches(ball Vec, pos Vec, w, h float64) bool {
	return ball.X > pos.X-BallRadius && ball.X < pos.X+w+BallRadius &&
		ball.Y > pos.Y-BallRadius && ball.Y < pos.Y+h+BallRadius
}

// resolveCollisions runs after all movement. Scripted opponents only exist
// in solo matches; keepers and teammates play in every mode.
func (s *Simulator) resolveCollisions(w *World) {
	if w.Match.Mode == ModeSolo {
		s.playerVsOpponents(w)
		s.ballVsOpponents(w)
	}
	s.ballVsKeepers(w)
	s.ballVsTeammates(w)
	if w.Match.Mode == ModeNetworked {
		ballVsSecondPlayer(w)
	}
}

// playerVsOpponents pushes the primary player out of any opponent it
// overlaps, toward the nearer side, and may book a card on a hard hit.
func (s *Simulator) playerVsOpponents(w *World) {
	s.bodies.sync(w)
	p := &w.Players[0]

	for _, i := range s.bodies.candidates() {
		o := &w.Opponents[i]
		if !rectsOverlap(p.Pos, PlayerWidth, PlayerHeight, o.Pos, OpponentSize, OpponentSize) {
			continue
		}

		force := 0.0
		if p.Running {
			force = p.BaseSpeed
		}
		if p.Pos.X < o.Pos.X {
			p.Pos.X = o.Pos.X - PlayerWidth - clearance
		} else {
			p.Pos.X = o.Pos.X + OpponentSize + clearance
		}
		place(s.bodies.player, p.Pos)

		if force > s.Tuning.CardForce && s.rng.Float64() < s.Tuning.CardChance {
			s.bookCard(w, p.Pos)
		}
	}
}

// bookCard shows a yellow card, or red for a repeat offence.
func (s *Simulator) bookCard(w *World, at Vec) {
	red := w.Match.Cards > 0
	w.Match.Cards++
	w.Referee.ShowCard(red)
	s.emit(Event{Kind: EventCard, Side: SideHome, Pos: at, Red: red})
	s.emit(Event{Kind: EventWhistle, Pos: w.Referee.Pos})
	s.log.Info("card", "red", red, "cards", w.Match.Cards, "tick", w.Tick)
}

// ballVsOpponents: an opponent touching the ball boots it toward the
// bottom goal at the tier's kick power.
func (s *Simulator) ballVsOpponents(w *World) {
	power := w.Match.Difficulty.settings().OpponentKickPower
	b := &w.Ball
	for i := range w.Opponents {
		o := &w.Opponents[i]
		if !ballTouches(b.Pos, o.Pos, OpponentSize, OpponentSize) {
			continue
		}
		b.Vel.Y = power + s.rng.Float64()*3
		b.Vel.X = (s.rng.Float64() - 0.5) * 4
		b.Pos.Y = o.Pos.Y + OpponentSize + BallRadius + clearance
		s.emit(Event{Kind: EventKick, Side: SideAway, Pos: b.Pos})
	}
}

// ballVsKeepers reflects the ball away from each keeper's own goal with a
// lateral push proportional to the offset from the keeper's center.
func (s *Simulator) ballVsKeepers(w *World) {
	b := &w.Ball

	top := &w.Keepers[KeeperTop]
	if ballTouches(b.Pos, top.Pos, KeeperWidth, KeeperHeight) {
		b.Vel.Y = math.Abs(b.Vel.Y) + 2
		b.Vel.X = (b.Pos.X - (top.Pos.X + KeeperWidth/2)) * 0.3
		b.Pos.Y = top.Pos.Y + KeeperHeight + BallRadius + clearance
		s.emit(Event{Kind: EventSave, Side: SideAway, Pos: b.Pos})
	}

	bottom := &w.Keepers[KeeperBottom]
	if ballTouches(b.Pos, bottom.Pos, KeeperWidth, KeeperHeight) {
		b.Vel.Y = -math.Abs(b.Vel.Y) - 3
		b.Vel.X = (b.Pos.X - (bottom.Pos.X + KeeperWidth/2)) * 0.3
		b.Pos.Y = bottom.Pos.Y - BallRadius - clearance
		s.emit(Event{Kind: EventSave, Side: SideHome, Pos: b.Pos})
	}
}

// ballVsTeammates: a teammate touching the ball passes it up the field.
func (s *Simulator) ballVsTeammates(w *World) {
	b := &w.Ball
	for i := range w.Teammates {
		t := &w.Teammates[i]
		if !ballTouches(b.Pos, t.Pos, TeammateSize, TeammateSize) {
			continue
		}
		b.Vel.Y = -6 - s.rng.Float64()*3
		b.Vel.X = (s.rng.Float64() - 0.5) * 4
		b.Pos.Y = t.Pos.Y - BallRadius - clearance
		s.emit(Event{Kind: EventPass, Side: SideHome, Pos: b.Pos})
	}
}

// ballVsSecondPlayer lets player 2 dribble: the ball is pushed just outside
// the player along the center-to-ball line and nudged the way they run.
func ballVsSecondPlayer(w *World) {
	b := &w.Ball
	p := &w.Players[1]
	if !ballTouches(b.Pos, p.Pos, PlayerWidth, PlayerHeight) {
		return
	}

	c := p.Center()
	dx := b.Pos.X - c.X
	dy := b.Pos.Y - c.Y
	dist := hypot(dx, dy)
	if dist == 0 {
		return
	}
	b.Pos.X = c.X + dx/dist*(PlayerWidth/2+BallRadius+clearance)
	b.Pos.Y = c.Y + dy/dist*(PlayerHeight/2+BallRadius+clearance)

	if !p.Running {
		return
	}
	in := w.Inputs[1]
	if in.Left {
		b.Vel.X = -2
	}
	if in.Right {
		b.Vel.X = 2
	}
	if in.Up {
		b.Vel.Y = -2
	}
	if in.Down {
		b.Vel.Y = 2
	}
}
