package game

import "islandwar/internal/geom"

// attackPhase is the lifecycle of one offensive: grow a roster, gather it
// at a rally point, throw it at the target, then take stock.
type attackPhase int

const (
	atkBuildArmy attackPhase = iota
	atkRally
	atkAssault
	atkReassess
)

func (p attackPhase) String() string {
	switch p {
	case atkBuildArmy:
		return "build_army"
	case atkRally:
		return "rally"
	case atkAssault:
		return "assault"
	case atkReassess:
		return "reassess"
	default:
		return "unknown"
	}
}

type attackState struct {
	phase        attackPhase
	since        int // tick the current phase began
	targetIsland int
	targetPos    geom.Point
	rally        geom.Point
	roster       []EntityID
	lastOrder    int
	orderedAt    int // tick of the last assault order, for the stall check
}

func (a *attackState) transition(b *Bot, next attackPhase) {
	b.w.Log.Add(b.w.Tick, b.p.Name, "attack", "phase",
		a.phase.String()+" -> "+next.String(), float64(len(a.roster)))
	a.phase = next
	a.since = b.w.Tick
}

func (a *attackState) step(b *Bot) {
	switch a.phase {
	case atkBuildArmy:
		a.stepBuild(b)
	case atkRally:
		a.stepRally(b)
	case atkAssault:
		a.stepAssault(b)
	case atkReassess:
		a.stepReassess(b)
	}
}

// stepBuild waits for the roster to reach fighting size. The failsafe
// guarantees an attack eventually launches even when the economy cannot
// sustain the full roster.
func (a *attackState) stepBuild(b *Bot) {
	if b.w.Tick-b.joined < b.prof.AttackStartDelay {
		return
	}
	roster := b.armyRoster()
	launch := len(roster) >= b.prof.RosterMin
	if !launch && len(roster) > 0 && b.w.Tick-a.since >= b.prof.FailsafeWait {
		b.w.Log.Add(b.w.Tick, b.p.Name, "attack", "failsafe_launch", "", float64(len(roster)))
		launch = true
	}
	if !launch {
		return
	}
	if !a.pickTarget(b) {
		a.since = b.w.Tick // nobody to attack; keep waiting
		return
	}
	a.roster = unitIDs(roster)
	a.rally = b.rallyPointToward(a.targetPos)
	a.transition(b, atkRally)
}

// pickTarget chooses an enemy headquarters, biased toward human players at
// the higher tiers. Returns false when no enemy base stands.
func (a *attackState) pickTarget(b *Bot) bool {
	var pick *Building
	bestD := -1.0
	hq := b.w.playerHQ(b.p.ID)
	from := geom.Point{X: b.w.Map.Width / 2, Y: b.w.Map.Height / 2}
	if hq != nil {
		from = hq.Pos
	}
	for _, bl := range b.w.buildings {
		if bl.Type != BuildingHQ || bl.Owner == b.p.ID || !bl.Alive() {
			continue
		}
		owner := b.w.Player(bl.Owner)
		if owner == nil || owner.Status != PlayerActive {
			continue
		}
		d := from.Dist(bl.Pos)
		if b.prof.HumanBias && !owner.Bot {
			d *= 0.5
		}
		if bestD < 0 || d < bestD {
			pick, bestD = bl, d
		}
	}
	if pick == nil {
		return false
	}
	a.targetIsland = pick.Island
	a.targetPos = pick.Pos
	return true
}

// rallyPointToward places the gathering point on friendly ground, offset
// from the HQ toward the objective.
func (b *Bot) rallyPointToward(objective geom.Point) geom.Point {
	hq := b.w.playerHQ(b.p.ID)
	if hq == nil {
		return objective
	}
	d := hq.Pos.Dist(objective)
	if d < 1e-9 {
		return hq.Pos
	}
	t := 300 / d
	if t > 0.45 {
		t = 0.45
	}
	p := hq.Pos.Lerp(objective, t)
	if b.w.valid(p, DomainGround, NoEntity) {
		return p
	}
	return hq.Pos.Add(0, -120)
}

// stepRally herds the roster to the rally point, re-issuing the order on
// the cadence. Launch happens at the gather fraction or on timeout with
// whoever showed up.
func (a *attackState) stepRally(b *Bot) {
	alive := a.aliveRoster(b)
	if len(alive) == 0 {
		a.transition(b, atkReassess)
		return
	}
	if b.w.Tick-a.lastOrder >= b.w.Tun.OrderCadence && b.spend() {
		a.lastOrder = b.w.Tick
		_ = b.w.MoveUnits(b.p.ID, alive, a.rally)
	}

	gathered := 0
	for _, id := range alive {
		if u := b.w.Unit(id); u != nil && u.Pos.Dist(a.rally) <= b.w.Tun.GatherRadius {
			gathered++
		}
	}
	frac := float64(gathered) / float64(len(alive))
	if frac >= b.w.Tun.RallyGatherFrac || b.w.Tick-a.since >= b.w.Tun.RallyTimeout {
		a.roster = alive
		a.orderedAt = 0
		a.transition(b, atkAssault)
	}
}

// stepAssault drives the roster onto the objective. A stalled push (most
// of the roster idle well after the order) is re-ordered rather than
// abandoned; a dead roster or dead target moves to reassessment.
func (a *attackState) stepAssault(b *Bot) {
	alive := a.aliveRoster(b)
	if len(alive) == 0 {
		a.transition(b, atkReassess)
		return
	}
	if !a.targetStands(b) {
		b.w.Log.Add(b.w.Tick, b.p.Name, "attack", "objective_down", "", 0)
		a.transition(b, atkReassess)
		return
	}

	if a.orderedAt == 0 {
		if !b.spend() {
			return
		}
		a.orderedAt = b.w.Tick
		a.orderAssault(b, alive)
		return
	}

	if b.w.Tick-a.orderedAt >= b.w.Tun.StallWindow {
		idle := 0
		for _, id := range alive {
			if u := b.w.Unit(id); u != nil && u.Status == StatusIdle {
				idle++
			}
		}
		if float64(idle)/float64(len(alive)) >= b.w.Tun.StallIdleFrac && b.spend() {
			b.w.Log.Add(b.w.Tick, b.p.Name, "attack", "stall_reorder", "", float64(idle))
			a.orderedAt = b.w.Tick
			a.orderAssault(b, alive)
		}
	}
}

// orderAssault splits the roster by domain: ground takes the island route,
// everything else heads straight for the objective.
func (a *attackState) orderAssault(b *Bot, ids []EntityID) {
	var ground, direct []EntityID
	for _, id := range ids {
		u := b.w.Unit(id)
		if u == nil {
			continue
		}
		if u.Type.Spec().Domain == DomainGround && a.targetIsland >= 0 {
			ground = append(ground, id)
		} else {
			direct = append(direct, id)
		}
	}
	if len(ground) > 0 {
		if err := b.w.MoveToIsland(b.p.ID, ground, a.targetIsland); err != nil {
			_ = b.w.MoveUnits(b.p.ID, ground, a.targetPos)
		}
	}
	if len(direct) > 0 {
		_ = b.w.MoveUnits(b.p.ID, direct, a.targetPos)
	}
}

// stepReassess decides between pressing on with the survivors and falling
// back to rebuild.
func (a *attackState) stepReassess(b *Bot) {
	alive := a.aliveRoster(b)
	if len(alive) >= b.prof.RosterMin/2 && a.pickTarget(b) {
		a.roster = alive
		a.rally = b.rallyPointToward(a.targetPos)
		a.transition(b, atkRally)
		return
	}
	// Reset: clear the campaign and grow a fresh roster.
	a.roster = nil
	a.targetIsland = -1
	a.transition(b, atkBuildArmy)
}

func (a *attackState) targetStands(b *Bot) bool {
	for _, bl := range b.w.buildings {
		if bl.Type == BuildingHQ && bl.Alive() && bl.Pos.DistSq(a.targetPos) < 1 {
			return true
		}
	}
	return false
}

func (a *attackState) aliveRoster(b *Bot) []EntityID {
	var out []EntityID
	for _, id := range a.roster {
		if u := b.w.Unit(id); u != nil && u.Alive() && !u.Embarked {
			out = append(out, id)
		}
	}
	return out
}

func unitIDs(us []*Unit) []EntityID {
	out := make([]EntityID, len(us))
	for i, u := range us {
		out[i] = u.ID
	}
	return out
}
