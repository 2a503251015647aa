package game

import (
	"math"

	"islandwar/internal/geom"
)

const (
	// separationSlack lets hulls interpenetrate slightly before any push
	// happens, which keeps packed formations from jittering.
	separationSlack = 2.0
	// separationCap bounds the displacement applied to one unit per tick.
	separationCap = 3.0
)

// collisionPass resolves overlaps between same-domain entities with an
// inverse-mass push: light units give way to heavy ones, and buildings with
// zero mass never move at all. A push that would land a unit on invalid
// terrain is dropped rather than clamped, so separation can never shove a
// ground unit into the sea.
func (w *World) collisionPass() {
	n := len(w.units)
	for i := 0; i < n; i++ {
		a := w.units[i]
		if !a.Alive() {
			continue
		}
		for j := i + 1; j < n; j++ {
			b := w.units[j]
			if !b.Alive() {
				continue
			}
			if a.Type.Spec().Domain != b.Type.Spec().Domain {
				continue
			}
			w.separateUnits(a, b)
		}
		w.separateFromBuildings(a)
	}
}

func (w *World) separateUnits(a, b *Unit) {
	sa, sb := a.Type.Spec(), b.Type.Spec()
	minDist := sa.Radius + sb.Radius - separationSlack
	if minDist <= 0 {
		return
	}
	d := a.Pos.Dist(b.Pos)
	if d >= minDist {
		return
	}

	var nx, ny float64
	if d < 1e-9 {
		// Perfect overlap: deterministic split along x.
		nx, ny = 1, 0
		d = 0
	} else {
		nx = (b.Pos.X - a.Pos.X) / d
		ny = (b.Pos.Y - a.Pos.Y) / d
	}

	overlap := minDist - d
	total := sa.Mass + sb.Mass
	pushA := overlap * sb.Mass / total
	pushB := overlap * sa.Mass / total
	pushA = math.Min(pushA, separationCap)
	pushB = math.Min(pushB, separationCap)

	w.tryDisplace(a, -nx*pushA, -ny*pushA)
	w.tryDisplace(b, nx*pushB, ny*pushB)
}

// separateFromBuildings pushes a unit off any same-domain building footprint
// it ended up inside. The building never moves; extractors in particular are
// anchored to their spot.
func (w *World) separateFromBuildings(u *Unit) {
	spec := u.Type.Spec()
	if spec.Domain.Air() {
		return
	}
	for _, b := range w.buildings {
		if buildingDomain(b) != spec.Domain {
			continue
		}
		minDist := spec.Radius + b.Type.Spec().Radius - separationSlack
		d := u.Pos.Dist(b.Pos)
		if d >= minDist {
			continue
		}
		var nx, ny float64
		if d < 1e-9 {
			nx, ny = 1, 0
		} else {
			nx = (u.Pos.X - b.Pos.X) / d
			ny = (u.Pos.Y - b.Pos.Y) / d
		}
		push := math.Min(minDist-d, separationCap)
		w.tryDisplace(u, nx*push, ny*push)
	}
}

// tryDisplace applies the push only if the destination is valid for the
// unit. The footprint check excludes the unit itself, but an invalid
// outcome simply cancels the push for this tick.
func (w *World) tryDisplace(u *Unit, dx, dy float64) {
	cand := geom.Point{X: u.Pos.X + dx, Y: u.Pos.Y + dy}
	if w.validForUnit(u, cand) {
		u.Pos = cand
	}
}
