package game

import (
	"math"

	"golang.org/x/time/rate"

	"islandwar/internal/geom"
)

// Bot is the autonomous player driver. It acts only through the same
// command surface humans use; every mutating call spends a token from the
// APM bucket, so a cheap tier issues orders at a human-plausible pace.
type Bot struct {
	w    *World
	p    *Player
	prof DifficultyProfile
	doc  *doctrine
	apm  *rate.Limiter

	nextThink int
	joined    int // tick the bot entered the match

	attack  attackState
	defense defenseState
}

func newBot(w *World, p *Player) *Bot {
	prof := ProfileFor(p.Difficulty)
	doc, err := compileDoctrine(w.Tun)
	if err != nil {
		// A broken formula override falls back to the shipped doctrine.
		def := w.Tun
		def.GoalExpand, def.GoalAttack, def.GoalDefend = "", "", ""
		doc, _ = compileDoctrine(def)
	}
	return &Bot{
		w:      w,
		p:      p,
		prof:   prof,
		doc:    doc,
		apm:    rate.NewLimiter(rate.Limit(prof.APMRate), prof.APMBurst),
		joined: w.Tick,
		attack: attackState{phase: atkBuildArmy, since: w.Tick, targetIsland: -1},
	}
}

// spend consumes one APM token, or reports the action throttled.
func (b *Bot) spend() bool {
	return b.apm.AllowN(b.w.now(), 1)
}

// Think is the per-tick entry point. The heavy decision pass runs on the
// think interval; the attack and defense lifecycles advance every pass.
func (b *Bot) Think() {
	if b.w.Tick < b.nextThink {
		return
	}
	b.nextThink = b.w.Tick + b.prof.ThinkInterval

	env := b.buildEnv()
	expand := b.doc.score(b.doc.expand, env)
	attack := b.doc.score(b.doc.attack, env)
	defend := b.doc.score(b.doc.defend, env)

	top := "expand"
	if attack > expand && attack >= defend {
		top = "attack"
	} else if defend > expand && defend > attack {
		top = "defend"
	}
	b.w.diag.AgentReasons[b.p.ID] = top
	b.w.Log.AddVerbose(b.w.Tick, b.p.Name, "agent", "goal", top, 0)

	// The leading goal gets first claim on the treasury this pass.
	switch top {
	case "expand":
		b.runEconomy()
	case "defend":
		b.defense.step(b)
	case "attack":
		b.trainArmy()
	}

	// Lifecycles always advance; gating lives inside the machines.
	b.attack.step(b)
	if top != "defend" {
		b.defense.step(b)
	}
	if top != "expand" {
		b.runEconomy()
	}
}

// buildEnv snapshots the facts the goal formulas read.
func (b *Bot) buildEnv() map[string]any {
	env := doctrineEnv()
	env["tick"] = b.w.Tick
	env["gold"] = b.p.Gold
	env["oil"] = b.p.Oil
	env["army"] = len(b.armyRoster())
	env["min_army"] = int(float64(b.prof.SoftArmyCap) * b.prof.ArmyMinFrac)
	env["soft_cap"] = b.prof.SoftArmyCap
	env["idle_builders"] = b.countIdleBuilders()
	env["free_gold_spots"] = b.countFreeGoldSpots()
	env["free_islands"] = b.countFreeIslands()
	env["threat"] = b.countThreats()
	env["towers"] = b.countOwn(BuildingTower)
	env["planned_towers"] = b.prof.FinalTowers
	return env
}

// armyRoster returns the bot's living combat units. Builders and
// transports never fight and never count.
func (b *Bot) armyRoster() []*Unit {
	var out []*Unit
	for _, u := range b.w.units {
		if u.Owner == b.p.ID && u.Alive() && u.Type.Spec().Combat {
			out = append(out, u)
		}
	}
	return out
}

func (b *Bot) countIdleBuilders() int {
	n := 0
	for _, u := range b.w.units {
		if u.Owner == b.p.ID && u.Type == UnitBuilder && u.Alive() && u.Status == StatusIdle {
			n++
		}
	}
	return n
}

func (b *Bot) countFreeGoldSpots() int {
	n := 0
	for i := range b.w.islands {
		if b.w.islands[i].Owner != b.p.ID {
			continue
		}
		for _, sp := range b.w.islands[i].Spots {
			if sp.Occupant == NoEntity {
				n++
			}
		}
	}
	return n
}

func (b *Bot) countFreeIslands() int {
	n := 0
	for i := range b.w.islands {
		if b.w.islands[i].Owner == NeutralPlayer {
			n++
		}
	}
	return n
}

// countThreats counts enemy combat units within threat radius of the HQ.
func (b *Bot) countThreats() int {
	hq := b.w.playerHQ(b.p.ID)
	if hq == nil {
		return 0
	}
	n := 0
	for _, u := range b.w.units {
		if u.Owner == b.p.ID || u.Owner == NeutralPlayer || !u.Alive() {
			continue
		}
		if !u.Type.Spec().Combat {
			continue
		}
		if u.Pos.Dist(hq.Pos) <= b.prof.ThreatRadius {
			n++
		}
	}
	return n
}

func (b *Bot) countOwn(t BuildingType) int {
	n := 0
	for _, bl := range b.w.buildings {
		if bl.Owner == b.p.ID && bl.Type == t && bl.Alive() {
			n++
		}
	}
	return n
}

func (b *Bot) findOwn(t BuildingType) *Building {
	for _, bl := range b.w.buildings {
		if bl.Owner == b.p.ID && bl.Type == t && bl.Alive() {
			return bl
		}
	}
	return nil
}

// runEconomy keeps the production base growing: builders first, then
// extractors on free spots, then the military tail.
func (b *Bot) runEconomy() {
	hq := b.w.playerHQ(b.p.ID)
	if hq == nil {
		return
	}

	builders := 0
	for _, u := range b.w.units {
		if u.Owner == b.p.ID && u.Type == UnitBuilder && u.Alive() {
			builders++
		}
	}
	if builders < 2 && len(hq.Queue) == 0 && b.spend() {
		if b.w.RecruitUnit(b.p.ID, hq.ID, UnitBuilder) == nil {
			return
		}
	}

	// Claim the nearest free gold spot on an owned island.
	if spot, ok := b.nearestFreeGoldSpot(hq.Pos); ok {
		if b.spend() {
			if _, err := b.w.BuildStructure(b.p.ID, BuildingMine, spot); err == nil {
				return
			}
			// Usually a builder out of range: walk one over.
			b.sendBuilderTo(spot)
			return
		}
	}

	if b.findOwn(BuildingBarracks) == nil && b.p.Gold >= BuildingBarracks.Spec().CostGold {
		pos := b.openGroundNear(hq.Pos, hq.Island)
		if b.spend() {
			if _, err := b.w.BuildStructure(b.p.ID, BuildingBarracks, pos); err != nil {
				b.sendBuilderTo(pos)
			}
			return
		}
	}

	b.trainArmy()
}

// trainArmy queues combat units at every idle producer, cheapest first.
func (b *Bot) trainArmy() {
	if len(b.armyRoster()) >= b.prof.SoftArmyCap {
		return
	}
	for _, bl := range b.w.buildings {
		if bl.Owner != b.p.ID || bl.Constructing() || !bl.Alive() {
			continue
		}
		if len(bl.Queue) > 1 {
			continue
		}
		for _, t := range bl.Type.Spec().Produces {
			if !t.Spec().Combat {
				continue
			}
			if b.p.Gold < t.Spec().CostGold || b.p.Oil < t.Spec().CostOil {
				continue
			}
			if !b.spend() {
				return
			}
			if b.w.RecruitUnit(b.p.ID, bl.ID, t) == nil {
				break
			}
		}
	}
}

func (b *Bot) nearestFreeGoldSpot(from geom.Point) (geom.Point, bool) {
	var best geom.Point
	bestD := -1.0
	for i := range b.w.islands {
		if b.w.islands[i].Owner != b.p.ID {
			continue
		}
		for _, sp := range b.w.islands[i].Spots {
			if sp.Occupant != NoEntity {
				continue
			}
			d := from.Dist(sp.Pos)
			if bestD < 0 || d < bestD {
				best, bestD = sp.Pos, d
			}
		}
	}
	return best, bestD >= 0
}

// sendBuilderTo walks the nearest free builder toward a work site.
func (b *Bot) sendBuilderTo(pos geom.Point) {
	var pick *Unit
	bestD := -1.0
	for _, u := range b.w.units {
		if u.Owner != b.p.ID || u.Type != UnitBuilder || !u.Alive() || u.Embarked {
			continue
		}
		d := u.Pos.Dist(pos)
		if bestD < 0 || d < bestD {
			pick, bestD = u, d
		}
	}
	if pick == nil || !b.spend() {
		return
	}
	_ = b.w.MoveUnits(b.p.ID, []EntityID{pick.ID}, pos)
}

// openGroundNear probes a spiral of positions around a point for a legal
// building site on the same island.
func (b *Bot) openGroundNear(center geom.Point, island int) geom.Point {
	for r := 90.0; r <= 330; r += 60 {
		for i := 0; i < 12; i++ {
			a := 2 * math.Pi * float64(i) / 12
			p := geom.Point{X: center.X + math.Cos(a)*r, Y: center.Y + math.Sin(a)*r}
			if b.w.Map.IslandAt(p) != island {
				continue
			}
			if b.w.valid(p, DomainGround, NoEntity) && b.w.placementFree(BuildingBarracks, p, DomainGround) {
				return p
			}
		}
	}
	return center.Add(120, 0)
}
