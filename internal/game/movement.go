package game

import (
	"math"

	"islandwar/internal/geom"
)

// movementPass advances every unit with a destination by at most one
// speed-step, in registry order. When the direct step is illegal the
// solver degrades through a fixed cascade: slide along the blocking
// boundary, slide on one axis, ask the planner for a route, walk the
// blocking island's perimeter, and finally hold position without giving
// up the destination.
func (w *World) movementPass() {
	for _, u := range w.units {
		if !u.Alive() {
			continue
		}
		if u.replanIn > 0 {
			u.replanIn--
		}
		if u.Target == nil {
			continue
		}
		w.moveUnit(u)
	}
}

func (w *World) moveUnit(u *Unit) {
	dest := w.currentLeg(u)
	dist := u.Pos.Dist(dest)
	if dist <= w.Tun.ArriveRadius {
		w.advanceLeg(u)
		return
	}

	spec := u.Type.Spec()
	step := math.Min(spec.Speed, dist)
	dx := (dest.X - u.Pos.X) / dist * step
	dy := (dest.Y - u.Pos.Y) / dist * step
	cand := u.Pos.Add(dx, dy)

	if w.stepLegal(u, cand) {
		u.Pos = cand
		u.stuck = 0
		w.markMoving(u)
		return
	}

	// 1. Tangent slide along the blocking boundary.
	if p, ok := w.tangentSlide(u, dest, step); ok && w.stepLegal(u, p) {
		u.Pos = p
		u.stuck = 0
		w.markMoving(u)
		return
	}

	// 2. Axis slides: give up one axis of the step, keep the other.
	for _, p := range [2]geom.Point{u.Pos.Add(dx, 0), u.Pos.Add(0, dy)} {
		if w.stepLegal(u, p) && p.DistSq(dest) < u.Pos.DistSq(dest) {
			u.Pos = p
			u.stuck = 0
			w.markMoving(u)
			return
		}
	}

	// 3. Ask the planner, rate limited so a boxed-in unit does not burn a
	// full grid search every tick.
	if u.replanIn == 0 {
		u.replanIn = 15
		pl := w.newPlanner(spec.Domain, u.ID)
		if wp := pl.Route(u.Pos, dest); len(wp) > 0 {
			keep := geom.Point{}
			if u.Target != nil {
				keep = *u.Target
			}
			u.Waypoints = wp
			if u.Target != nil && len(wp) > 0 && wp[len(wp)-1].DistSq(keep) > 1 {
				u.Waypoints = append(u.Waypoints, keep)
			}
			w.markMoving(u)
			return
		}
		// 4. Planner found nothing: walk the blocking island's rim.
		if wp := w.perimeterRoute(u, dest); len(wp) > 0 {
			u.Waypoints = append(wp, dest)
			w.markMoving(u)
			return
		}
	}

	// 5. Hold position. The destination stays set; status stays moving so
	// the stall detector upstream can see the intent.
	u.stuck++
	w.markMoving(u)
}

// currentLeg returns the point the unit is steering toward this tick.
func (w *World) currentLeg(u *Unit) geom.Point {
	if len(u.Waypoints) > 0 {
		return u.Waypoints[0]
	}
	return *u.Target
}

// advanceLeg pops the reached waypoint, or clears the whole intent when
// the final destination is reached.
func (w *World) advanceLeg(u *Unit) {
	if len(u.Waypoints) > 0 {
		u.Waypoints = u.Waypoints[1:]
		return
	}
	u.Target = nil
	u.TargetIsland = -1
	u.stuck = 0
	if u.Status == StatusMoving {
		u.Status = StatusIdle
	}
}

func (w *World) markMoving(u *Unit) {
	if u.Status != StatusFighting {
		u.Status = StatusMoving
	}
}

// stepLegal combines position validity with wall crossing: a step may not
// pass through a wall segment, or through a gate belonging to someone
// else. Air traffic ignores links entirely.
func (w *World) stepLegal(u *Unit, to geom.Point) bool {
	if !w.validForUnit(u, to) {
		return false
	}
	if u.Type.Spec().Domain.Air() {
		return true
	}
	for _, l := range w.links {
		switch l.Kind {
		case LinkWall:
			// blocks everyone
		case LinkGate:
			if l.Owner == u.Owner {
				continue
			}
		default:
			continue
		}
		a, b := w.Building(l.A), w.Building(l.B)
		if a == nil || b == nil {
			continue
		}
		if geom.SegmentsIntersect(u.Pos, to, a.Pos, b.Pos) {
			return false
		}
	}
	return true
}

// tangentSlide projects the blocked step onto the tangent of the nearest
// blocking boundary, keeping whichever direction still closes distance to
// the destination.
func (w *World) tangentSlide(u *Unit, dest geom.Point, step float64) (geom.Point, bool) {
	tx, ty, ok := w.blockingTangent(u)
	if !ok {
		return geom.Point{}, false
	}
	fwd := u.Pos.Add(tx*step, ty*step)
	back := u.Pos.Add(-tx*step, -ty*step)
	if fwd.DistSq(dest) <= back.DistSq(dest) {
		return fwd, true
	}
	return back, true
}

// blockingTangent finds the boundary the unit is pressed against and
// returns its unit tangent. Ground units pressed against water use their
// island's shoreline; water units pressed against land use the offending
// island's shoreline; both fall back to the nearest building rim.
func (w *World) blockingTangent(u *Unit) (float64, float64, bool) {
	d := u.Type.Spec().Domain
	probe := u.Type.Spec().Speed * 1.5

	if d == DomainGround {
		if isl := w.Map.IslandAt(u.Pos); isl >= 0 {
			poly := w.Map.Islands[isl].Poly
			edgePt, edge := poly.ClosestEdgePoint(u.Pos)
			if u.Pos.Dist(edgePt) <= probe+w.Tun.ArriveRadius {
				tx, ty := poly.EdgeTangent(edge)
				return tx, ty, true
			}
		}
	}
	if d == DomainWater {
		for i := range w.Map.Islands {
			poly := w.Map.Islands[i].Poly
			edgePt, edge := poly.ClosestEdgePoint(u.Pos)
			if u.Pos.Dist(edgePt) <= probe+w.Tun.ArriveRadius {
				tx, ty := poly.EdgeTangent(edge)
				return tx, ty, true
			}
		}
	}
	// Building rim: tangent is perpendicular to the radial direction.
	for _, b := range w.buildings {
		if buildingDomain(b) != d {
			continue
		}
		r := b.Type.Spec().Radius
		dist := u.Pos.Dist(b.Pos)
		if dist < r+probe && dist > 1e-9 {
			rx := (u.Pos.X - b.Pos.X) / dist
			ry := (u.Pos.Y - b.Pos.Y) / dist
			return -ry, rx, true
		}
	}
	return 0, 0, false
}

// perimeterRoute builds a waypoint chain around the single island standing
// between a water unit and its destination, picking the shorter winding
// direction. Offsets each rim vertex outward so the hull keeps clearance.
func (w *World) perimeterRoute(u *Unit, dest geom.Point) []geom.Point {
	if u.Type.Spec().Domain != DomainWater {
		return nil
	}
	blocking := -1
	for i := range w.Map.Islands {
		poly := w.Map.Islands[i].Poly
		n := len(poly)
		for j := 0; j < n; j++ {
			if geom.SegmentsIntersect(u.Pos, dest, poly[j], poly[(j+1)%n]) {
				blocking = i
				break
			}
		}
		if blocking >= 0 {
			break
		}
	}
	if blocking < 0 {
		return nil
	}
	poly := w.Map.Islands[blocking].Poly
	_, startEdge := poly.ClosestEdgePoint(u.Pos)
	_, endEdge := poly.ClosestEdgePoint(dest)

	fwd := poly.PerimeterFrom(startEdge, endEdge, false)
	rev := poly.PerimeterFrom(startEdge, endEdge, true)
	pick := fwd
	if pathLen(u.Pos, rev, dest) < pathLen(u.Pos, fwd, dest) {
		pick = rev
	}

	c := poly.Centroid()
	out := make([]geom.Point, 0, len(pick))
	for _, p := range pick {
		dist := p.Dist(c)
		if dist < 1e-9 {
			continue
		}
		// Push the rim vertex away from the centroid for hull clearance.
		scale := (dist + u.Type.Spec().Radius + 30) / dist
		out = append(out, geom.Point{X: c.X + (p.X-c.X)*scale, Y: c.Y + (p.Y-c.Y)*scale})
	}
	return out
}

func pathLen(from geom.Point, via []geom.Point, to geom.Point) float64 {
	total := 0.0
	cur := from
	for _, p := range via {
		total += cur.Dist(p)
		cur = p
	}
	return total + cur.Dist(to)
}
