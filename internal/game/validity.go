package game

import "islandwar/internal/geom"

// valid is the single position-legality predicate. Every placement check,
// movement step and path cell goes through it, so movement and construction
// can never disagree about what counts as legal ground.
//
// Ground: inside bounds, on an island, off high ground, outside foreign
// building footprints. Water: inside bounds, off every island. Air ignores
// terrain entirely and only respects bounds.
func (w *World) valid(p geom.Point, d Domain, self EntityID) bool {
	if !w.Map.InBounds(p) {
		return false
	}
	switch d {
	case DomainGround:
		if w.Map.OnHighGround(p) {
			return false
		}
		if !w.Map.OnLand(p) && !w.onBridge(p) {
			return false
		}
		return !w.blockedByFootprint(p, d, self)
	case DomainWater:
		if w.Map.OnLand(p) {
			return false
		}
		return !w.blockedByFootprint(p, d, self)
	default:
		return true
	}
}

// blockedByFootprint reports whether p lies inside a building footprint in
// the same domain. The querying entity's own footprint never blocks it, so
// a freshly produced unit standing on its factory ring can step off.
func (w *World) blockedByFootprint(p geom.Point, d Domain, self EntityID) bool {
	for _, b := range w.buildings {
		if b.ID == self {
			continue
		}
		if buildingDomain(b) != d {
			continue
		}
		r := b.Type.Spec().Radius
		if p.DistSq(b.Pos) < r*r {
			return true
		}
	}
	return false
}

// buildingDomain classifies which movement domain a building obstructs.
// Extractors on oil spots sit in open water; everything else is on land.
func buildingDomain(b *Building) Domain {
	if b.Island < 0 {
		return DomainWater
	}
	return DomainGround
}

// bridgeWidth is the half-width of the walkable corridor along a bridge.
const bridgeWidth = 34

// onBridge reports whether p lies on a bridge deck. Bridges extend ground
// validity over water between their two nodes.
func (w *World) onBridge(p geom.Point) bool {
	for _, l := range w.links {
		if l.Kind != LinkBridge {
			continue
		}
		a, b := w.Building(l.A), w.Building(l.B)
		if a == nil || b == nil {
			continue
		}
		if geom.PointSegmentDist(p, a.Pos, b.Pos) <= bridgeWidth {
			return true
		}
	}
	return false
}

// validForUnit wraps valid with the unit's own domain and id.
func (w *World) validForUnit(u *Unit, p geom.Point) bool {
	return w.valid(p, u.Type.Spec().Domain, u.ID)
}

// placementFree reports whether a new building of type t can occupy pos
// without overlapping an existing building or a unit of the same domain.
// Link nodes tolerate adjacent nodes at closer range.
func (w *World) placementFree(t BuildingType, pos geom.Point, d Domain) bool {
	r := t.Spec().Radius
	for _, b := range w.buildings {
		br := b.Type.Spec().Radius
		if pos.Dist(b.Pos) < r+br {
			return false
		}
	}
	for _, u := range w.units {
		if u.Type.Spec().Domain != d {
			continue
		}
		if pos.Dist(u.Pos) < r+u.Type.Spec().Radius {
			return false
		}
	}
	return true
}
