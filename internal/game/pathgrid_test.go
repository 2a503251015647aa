package game

import (
	"testing"

	"islandwar/internal/geom"
)

func TestRouteAirFliesDirect(t *testing.T) {
	w := NewTestWorld()
	pl := w.newPlanner(DomainAirHigh, NoEntity)

	wp := pl.Route(geom.Point{X: 200, Y: 200}, geom.Point{X: 4000, Y: 2000})
	if len(wp) != 1 {
		t.Fatalf("air route should be a single waypoint, got %d", len(wp))
	}
	if wp[0].Dist(geom.Point{X: 4000, Y: 2000}) > 1 {
		t.Fatalf("air waypoint should be the destination, got %v", wp[0])
	}
}

func TestRouteWaterAroundIsland(t *testing.T) {
	w := NewTestWorld()
	pl := w.newPlanner(DomainWater, NoEntity)

	from := geom.Point{X: 300, Y: 1350}
	to := geom.Point{X: 2400, Y: 1350}
	wp := pl.Route(from, to)
	if wp == nil {
		t.Fatal("expected a route past the island, got none")
	}
	for i, p := range wp[:len(wp)-1] {
		if w.Map.OnLand(p) {
			t.Fatalf("waypoint %d at %v is on land", i, p)
		}
	}
	if wp[len(wp)-1].Dist(to) > 1 {
		t.Fatalf("route should end at the destination, got %v", wp[len(wp)-1])
	}
}

func TestRouteSnapsBlockedEndpoint(t *testing.T) {
	w := NewTestWorld()
	pl := w.newPlanner(DomainWater, NoEntity)

	// Start just inland: a water route from there must snap to the shore.
	from := geom.Point{X: 1500, Y: 1350}
	if !w.Map.OnLand(from) {
		t.Fatal("fixture drift: start point expected on land")
	}
	wp := pl.Route(from, geom.Point{X: 2400, Y: 1350})
	if wp == nil {
		t.Fatal("snapped start should still route")
	}
}

func TestRouteGroundAcrossOpenWaterFails(t *testing.T) {
	w := NewTestWorld()
	pl := w.newPlanner(DomainGround, NoEntity)

	wp := pl.Route(geom.Point{X: 1000, Y: 1200}, geom.Point{X: 3800, Y: 1200})
	if wp != nil {
		t.Fatalf("no ground connection between islands, got route %v", wp)
	}
}

func TestRouteSimplifiesStraightRuns(t *testing.T) {
	w := NewTestWorld()
	pl := w.newPlanner(DomainWater, NoEntity)

	// Open water, no obstacle: the simplified path is just the destination.
	wp := pl.Route(geom.Point{X: 2200, Y: 400}, geom.Point{X: 2600, Y: 400})
	if len(wp) != 1 {
		t.Fatalf("straight open-water route should simplify to 1 waypoint, got %d: %v", len(wp), wp)
	}
}
