package game

import "math"

// constructionPass advances building sites, training queues, passive repair
// and the periodic resource income, in that order.
func (w *World) constructionPass() {
	w.advanceSites()
	w.advanceQueues()
	w.passiveRepair()
	if w.Tun.IncomeEvery > 0 && w.Tick%w.Tun.IncomeEvery == 0 {
		w.grantIncome()
	}
}

// advanceSites grows construction progress on every incomplete building.
// Base rate alone finishes the site in BuildTicks; each builder standing
// within assist radius adds one full rate on top, with no stacking cap.
// Health tracks progress monotonically and never regresses from building
// alone.
func (w *World) advanceSites() {
	for _, b := range w.buildings {
		if !b.Constructing() || !b.Alive() {
			continue
		}
		spec := b.Type.Spec()
		if spec.BuildTicks <= 0 {
			b.Progress = 100
			b.Health = spec.MaxHealth
			continue
		}
		rate := 100.0 / float64(spec.BuildTicks) * float64(1+w.buildersNear(b))
		b.Progress = math.Min(100, b.Progress+rate)

		floor := b.Progress / 100 * spec.MaxHealth
		if b.Health < floor {
			b.Health = floor
		}
		if b.Progress >= 100 {
			w.record("completed", map[string]any{"id": int(b.ID), "type": b.Type.String()})
			w.Log.Add(w.Tick, w.playerName(b.Owner), "build", "complete", b.Type.String(), float64(b.ID))
		}
	}
}

// buildersNear counts the owner's idle-or-stationed builders within assist
// radius of the site.
func (w *World) buildersNear(b *Building) int {
	n := 0
	for _, u := range w.units {
		if u.Type != UnitBuilder || u.Owner != b.Owner || !u.Alive() {
			continue
		}
		if u.Pos.Dist(b.Pos) <= w.Tun.AssistRadius {
			n++
		}
	}
	return n
}

// advanceQueues ticks the front production item of every completed
// producer and spawns the finished unit on the ring outside the source.
// Producers are buildings or queue-carrying units (the carrier trains its
// air wing at sea).
func (w *World) advanceQueues() {
	for _, b := range w.buildings {
		if b.Constructing() || !b.Alive() || len(b.Queue) == 0 {
			continue
		}
		rest, done, ok := tickQueue(b.Queue)
		if !ok {
			continue
		}
		b.Queue = rest
		spec := done.Spec()
		pos := w.findSpawnPos(b.Pos, b.Type.Spec().Radius, spec.Radius, spec.Domain)
		w.spawnUnit(b.Owner, done, pos)
	}
	for _, u := range w.units {
		if !u.Alive() || len(u.Queue) == 0 {
			continue
		}
		rest, done, ok := tickQueue(u.Queue)
		if !ok {
			continue
		}
		u.Queue = rest
		spec := done.Spec()
		pos := w.findSpawnPos(u.Pos, u.Type.Spec().Radius, spec.Radius, spec.Domain)
		w.spawnUnit(u.Owner, done, pos)
	}
}

// tickQueue advances the front item and pops it when training completes.
func tickQueue(q []Production) ([]Production, UnitType, bool) {
	item := &q[0]
	spec := item.Type.Spec()
	if spec.BuildTicks > 0 {
		item.Progress += 100.0 / float64(spec.BuildTicks)
	} else {
		item.Progress = 100
	}
	if item.Progress < 100 {
		return q, 0, false
	}
	return q[1:], item.Type, true
}

// passiveRepair heals damaged completed buildings that have builders
// nearby. Each builder contributes the repair rate, capped so stacking a
// crowd cannot make a building unkillable.
func (w *World) passiveRepair() {
	for _, b := range w.buildings {
		if b.Constructing() || !b.Alive() {
			continue
		}
		maxHP := b.Type.Spec().MaxHealth
		if b.Health >= maxHP {
			continue
		}
		builders := w.buildersNear(b)
		if builders > w.Tun.RepairCap {
			builders = w.Tun.RepairCap
		}
		if builders == 0 {
			continue
		}
		b.Health = math.Min(maxHP, b.Health+w.Tun.RepairRate*float64(builders))
	}
}

// grantIncome pays each player for their completed extractors.
func (w *World) grantIncome() {
	for _, b := range w.buildings {
		if b.Constructing() || !b.Alive() {
			continue
		}
		p := w.Player(b.Owner)
		if p == nil || p.Status != PlayerActive {
			continue
		}
		switch b.Type {
		case BuildingMine:
			p.Gold += w.Tun.GoldPerMine
		case BuildingRig:
			p.Oil += w.Tun.OilPerRig
		}
	}
}
