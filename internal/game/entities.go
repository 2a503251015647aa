package game

import (
	"math"

	"islandwar/internal/geom"
)

// spawnUnit creates a unit at full health and registers it.
func (w *World) spawnUnit(owner PlayerID, t UnitType, pos geom.Point) *Unit {
	u := &Unit{
		ID:           w.allocID(),
		Owner:        owner,
		Type:         t,
		Pos:          pos,
		Health:       t.Spec().MaxHealth,
		TargetIsland: -1,
	}
	w.units = append(w.units, u)
	w.unitByID[u.ID] = u
	w.record("spawn", map[string]any{"id": int(u.ID), "type": t.String(), "player": int(owner)})
	return u
}

// placeBuilding creates a building and registers it on its island. Instant
// placements (and link nodes) start complete; everything else starts as a
// site at 0 progress with proportional health.
func (w *World) placeBuilding(owner PlayerID, t BuildingType, island int, pos geom.Point, instant bool) *Building {
	spec := t.Spec()
	b := &Building{
		ID:         w.allocID(),
		Owner:      owner,
		Type:       t,
		Island:     island,
		Pos:        pos,
		SpotIsland: -1,
		SpotIdx:    -1,
	}
	if island >= 0 {
		b.Rel = geom.Point{X: pos.X - w.Map.Islands[island].Poly.Centroid().X,
			Y: pos.Y - w.Map.Islands[island].Poly.Centroid().Y}
	}
	if instant || spec.Instant {
		b.Progress = 100
		b.Health = spec.MaxHealth
	} else {
		b.Progress = 0
		b.Health = 1 // a bare site can still be destroyed
	}
	w.buildings = append(w.buildings, b)
	w.buildingByID[b.ID] = b
	if island >= 0 {
		w.islands[island].Buildings = append(w.islands[island].Buildings, b.ID)
	}
	w.record("place", map[string]any{"id": int(b.ID), "type": t.String(), "player": int(owner), "island": island})
	return b
}

// findSpawnPos walks a ring just outside the producer's footprint looking
// for a valid position, widening the ring until one fits. Falls back to the
// ring start if everything is somehow blocked.
func (w *World) findSpawnPos(center geom.Point, buildingR, unitR float64, d Domain) geom.Point {
	for ring := 0; ring < 4; ring++ {
		r := buildingR + unitR + 4 + float64(ring)*unitR*2
		for i := 0; i < 16; i++ {
			a := 2 * math.Pi * float64(i) / 16
			p := geom.Point{X: center.X + math.Cos(a)*r, Y: center.Y + math.Sin(a)*r}
			if w.valid(p, d, NoEntity) && w.unitSpaceFree(p, unitR, d) {
				return p
			}
		}
	}
	return geom.Point{X: center.X + buildingR + unitR + 4, Y: center.Y}
}

func (w *World) unitSpaceFree(p geom.Point, r float64, d Domain) bool {
	for _, u := range w.units {
		if u.Type.Spec().Domain != d {
			continue
		}
		if p.Dist(u.Pos) < r+u.Type.Spec().Radius {
			return false
		}
	}
	return true
}

// cleanupPass removes entities whose health reached zero, frees occupied
// resource spots, severs links whose endpoints died, and fires the
// elimination check when a headquarters falls.
func (w *World) cleanupPass() {
	var fallenHQ []PlayerID

	live := w.buildings[:0]
	for _, b := range w.buildings {
		if b.Alive() {
			live = append(live, b)
			continue
		}
		delete(w.buildingByID, b.ID)
		w.freeSpot(b)
		w.detachFromIsland(b)
		w.severLinksOf(b.ID)
		if b.Type == BuildingHQ {
			fallenHQ = append(fallenHQ, b.Owner)
		}
		w.record("destroyed", map[string]any{"id": int(b.ID), "type": b.Type.String()})
	}
	w.buildings = live

	// Eliminations run before the unit sweep so a fallen HQ's units leave
	// the world in the same tick.
	for _, pid := range fallenHQ {
		w.eliminate(pid)
	}

	liveU := w.units[:0]
	for _, u := range w.units {
		if u.Alive() {
			liveU = append(liveU, u)
			continue
		}
		delete(w.unitByID, u.ID)
		// Cargo goes down with the transport.
		for _, cid := range u.Cargo {
			delete(w.unitByID, cid)
		}
		w.record("killed", map[string]any{"id": int(u.ID), "type": u.Type.String()})
	}
	w.units = liveU

	liveL := w.links[:0]
	for _, l := range w.links {
		if l.Health > 0 {
			liveL = append(liveL, l)
			continue
		}
		delete(w.linkByID, l.ID)
		w.invalidateIslandPaths()
		w.record("link_down", map[string]any{"id": int(l.ID), "kind": l.Kind.String()})
	}
	w.links = liveL
}

// freeSpot releases the resource spot an extractor occupied. Idempotent:
// the spot reference is cleared on first use.
func (w *World) freeSpot(b *Building) {
	if !b.Type.Spec().NeedsSpot || b.SpotIdx < 0 {
		return
	}
	var spots []ResourceSpot
	if b.SpotIsland >= 0 {
		spots = w.islands[b.SpotIsland].Spots
	} else {
		spots = w.oilSpots
	}
	if b.SpotIdx < len(spots) && spots[b.SpotIdx].Occupant == b.ID {
		spots[b.SpotIdx].Occupant = NoEntity
	}
	b.SpotIdx = -1
}

func (w *World) detachFromIsland(b *Building) {
	if b.Island < 0 {
		return
	}
	ids := w.islands[b.Island].Buildings
	for i, id := range ids {
		if id == b.ID {
			w.islands[b.Island].Buildings = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}

// severLinksOf kills every link attached to a destroyed node building.
func (w *World) severLinksOf(node EntityID) {
	for _, l := range w.links {
		if l.A == node || l.B == node {
			l.Health = 0
		}
	}
}
