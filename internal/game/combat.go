package game

import "islandwar/internal/geom"

const (
	beamDuration = 45 // ticks a beam lock persists before it must re-acquire
	rocketDamage = 30
	rocketRange  = 340
	rocketReload = 70
)

// target is one attackable entity: exactly one of the three pointers is set.
type target struct {
	unit *Unit
	bld  *Building
	lnk  *Link
}

func (t target) valid() bool {
	switch {
	case t.unit != nil:
		return t.unit.Alive()
	case t.bld != nil:
		return t.bld.Alive()
	case t.lnk != nil:
		return t.lnk.Health > 0
	}
	return false
}

func (t target) pos(w *World) geom.Point {
	switch {
	case t.unit != nil:
		return t.unit.Pos
	case t.bld != nil:
		return t.bld.Pos
	default:
		a, b := w.Building(t.lnk.A), w.Building(t.lnk.B)
		if a == nil || b == nil {
			return geom.Point{}
		}
		return a.Pos.Lerp(b.Pos, 0.5)
	}
}

func (t target) owner() PlayerID {
	switch {
	case t.unit != nil:
		return t.unit.Owner
	case t.bld != nil:
		return t.bld.Owner
	default:
		return t.lnk.Owner
	}
}

// hit applies damage, respecting the target owner's god mode.
func (t target) hit(w *World, dmg float64) {
	if p := w.Player(t.owner()); p != nil && p.GodMode {
		return
	}
	switch {
	case t.unit != nil:
		t.unit.Health -= dmg
	case t.bld != nil:
		t.bld.Health -= dmg
	default:
		t.lnk.Health -= dmg
	}
	w.diag.DamageDealt += dmg
}

// combatPass lets every armed unit and every completed tower fire once per
// cooldown at its nearest legal enemy. Iteration is registry order, which
// also breaks distance ties deterministically.
func (w *World) combatPass() {
	for _, u := range w.units {
		if !u.Alive() {
			continue
		}
		w.unitCombat(u)
	}
	for _, b := range w.buildings {
		if !b.Alive() || b.Constructing() {
			continue
		}
		w.buildingCombat(b)
	}
}

func (w *World) unitCombat(u *Unit) {
	spec := u.Type.Spec()
	if spec.Weapon == WeaponNone {
		return
	}
	if u.CooldownLeft > 0 {
		u.CooldownLeft--
	}

	if spec.Weapon == WeaponBeam {
		w.beamCombat(u, spec)
		return
	}

	tgt := w.nearestEnemy(u.Pos, u.Owner, spec.Range, spec.CanAttackAir)
	if !tgt.valid() {
		if u.Status == StatusFighting {
			u.Status = StatusIdle
			if u.Target != nil {
				u.Status = StatusMoving
			}
		}
		return
	}
	u.Status = StatusFighting
	if u.CooldownLeft > 0 {
		return
	}
	u.CooldownLeft = spec.Cooldown

	switch spec.Weapon {
	case WeaponInstant:
		tgt.hit(w, spec.Damage)
	case WeaponArea:
		w.areaBurst(tgt.pos(w), spec.AoERadius, spec.Damage, u.Owner, spec.CanAttackAir)
	}
	w.diag.Shots++
}

// beamCombat maintains a sustained lock: damage lands every tick while the
// lock holds, the target is only re-rolled when the lock expires or the
// target dies, and a fresh lock costs the full cooldown.
func (w *World) beamCombat(u *Unit, spec unitSpec) {
	if u.BeamLeft > 0 {
		tgt := w.resolveEntity(u.BeamTarget)
		if tgt.valid() && tgt.pos(w).Dist(u.Pos) <= spec.Range*1.15 {
			u.BeamLeft--
			u.Status = StatusFighting
			tgt.hit(w, spec.Damage)
			return
		}
		u.BeamLeft = 0
		u.BeamTarget = NoEntity
	}

	if u.CooldownLeft > 0 {
		return
	}
	tgt := w.nearestEnemy(u.Pos, u.Owner, spec.Range, spec.CanAttackAir)
	if !tgt.valid() {
		if u.Status == StatusFighting {
			u.Status = StatusIdle
			if u.Target != nil {
				u.Status = StatusMoving
			}
		}
		return
	}
	u.BeamTarget = targetID(tgt)
	u.BeamLeft = beamDuration
	u.CooldownLeft = spec.Cooldown
	u.Status = StatusFighting
	tgt.hit(w, spec.Damage)
	w.diag.Shots++
}

func (w *World) buildingCombat(b *Building) {
	spec := b.Type.Spec()
	if spec.Damage <= 0 {
		return
	}
	if b.CooldownLeft > 0 {
		b.CooldownLeft--
	}
	if b.rocketCD > 0 {
		b.rocketCD--
	}

	if b.CooldownLeft == 0 {
		tgt := w.nearestEnemy(b.Pos, b.Owner, spec.Range, spec.CanAttackAir)
		if tgt.valid() {
			b.CooldownLeft = spec.Cooldown
			tgt.hit(w, spec.Damage)
			w.diag.Shots++
		}
	}

	// Upgraded towers carry a rocket battery: longer reach, hits every
	// domain, independent cooldown.
	if b.Upgraded && b.rocketCD == 0 {
		tgt := w.nearestEnemy(b.Pos, b.Owner, rocketRange, true)
		if tgt.valid() {
			b.rocketCD = rocketReload
			tgt.hit(w, rocketDamage)
			w.diag.Shots++
		}
	}
}

// areaBurst damages every enemy entity within radius of the impact point.
// Air units are only caught when the weapon can reach air.
func (w *World) areaBurst(at geom.Point, radius, dmg float64, shooter PlayerID, air bool) {
	for _, u := range w.units {
		if !u.Alive() || u.Owner == shooter {
			continue
		}
		if u.Type.Spec().Domain.Air() && !air {
			continue
		}
		if u.Pos.Dist(at) <= radius {
			(target{unit: u}).hit(w, dmg)
		}
	}
	for _, b := range w.buildings {
		if !b.Alive() || b.Owner == shooter {
			continue
		}
		if b.Pos.Dist(at) <= radius {
			(target{bld: b}).hit(w, dmg)
		}
	}
}

// nearestEnemy scans units, buildings and links for the closest enemy in
// range. Neutral entities are never targets; air targets need an
// air-capable weapon.
func (w *World) nearestEnemy(from geom.Point, shooter PlayerID, rng float64, air bool) target {
	var best target
	bestD := rng * rng
	consider := func(t target, p geom.Point) {
		d := from.DistSq(p)
		if d < bestD {
			bestD = d
			best = t
		}
	}
	for _, u := range w.units {
		if !u.Alive() || u.Owner == shooter || u.Owner == NeutralPlayer {
			continue
		}
		if u.Type.Spec().Domain.Air() && !air {
			continue
		}
		consider(target{unit: u}, u.Pos)
	}
	for _, b := range w.buildings {
		if !b.Alive() || b.Owner == shooter || b.Owner == NeutralPlayer {
			continue
		}
		consider(target{bld: b}, b.Pos)
	}
	for _, l := range w.links {
		if l.Health <= 0 || l.Owner == shooter || l.Owner == NeutralPlayer {
			continue
		}
		consider(target{lnk: l}, (target{lnk: l}).pos(w))
	}
	return best
}

// resolveEntity turns a stored id back into a target; a stale id yields an
// invalid target.
func (w *World) resolveEntity(id EntityID) target {
	if u := w.Unit(id); u != nil {
		return target{unit: u}
	}
	if b := w.Building(id); b != nil {
		return target{bld: b}
	}
	if l := w.Link(id); l != nil {
		return target{lnk: l}
	}
	return target{}
}

func targetID(t target) EntityID {
	switch {
	case t.unit != nil:
		return t.unit.ID
	case t.bld != nil:
		return t.bld.ID
	case t.lnk != nil:
		return t.lnk.ID
	}
	return NoEntity
}
