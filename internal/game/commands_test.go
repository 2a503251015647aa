package game

import (
	"errors"
	"strings"
	"testing"

	"islandwar/internal/geom"
)

// Scenario: a builder within range, 50 gold, a 40-gold structure. The site
// appears at token health with construction pending and the gold is spent.
func TestBuildTowerSpendsGoldAndOpensSite(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithGold(0, 50, 0),
	)
	hq := w.playerHQ(0)
	pos := hq.Pos.Add(140, 0)

	b, err := w.BuildStructure(0, BuildingTower, pos)
	if err != nil {
		t.Fatalf("build denied: %v", err)
	}
	if w.Player(0).Gold != 50-BuildingTower.Spec().CostGold {
		t.Fatalf("gold = %d", w.Player(0).Gold)
	}
	if !b.Constructing() {
		t.Fatal("fresh site should be under construction")
	}
	if b.Health != 1 {
		t.Fatalf("fresh site health = %.1f, want token 1", b.Health)
	}
}

func TestBuildDeniedWithoutFunds(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithGold(0, 10, 0),
	)
	hq := w.playerHQ(0)
	if _, err := w.BuildStructure(0, BuildingTower, hq.Pos.Add(140, 0)); !errors.Is(err, ErrDenied) {
		t.Fatalf("want denial, got %v", err)
	}
	if w.Player(0).Gold != 10 {
		t.Fatal("denied build must not charge")
	}
	if d := w.LastDenial(0); !strings.Contains(d, "need") {
		t.Fatalf("denial message %q", d)
	}
}

func TestBuildDeniedWithoutBuilder(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithGold(0, 500, 0),
	)
	// Far corner of the home island, outside builder range.
	if _, err := w.BuildStructure(0, BuildingTower, geom.Point{X: 600, Y: 1800}); !errors.Is(err, ErrDenied) {
		t.Fatalf("want denial, got %v", err)
	}
}

func TestConnectWallNodesOnceOnly(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithBuilding(0, BuildingWallNode, 800, 1100),
		WithBuilding(0, BuildingWallNode, 920, 1100), // 120 apart
		WithGold(0, 500, 0),
	)
	var nodes []*Building
	for _, b := range w.BuildingsOf(0) {
		if b.Type == BuildingWallNode {
			nodes = append(nodes, b)
		}
	}
	l, err := w.ConnectNodes(0, nodes[0].ID, nodes[1].ID)
	if err != nil {
		t.Fatalf("connect denied: %v", err)
	}
	if l.Kind != LinkWall {
		t.Fatalf("link kind = %v, want wall", l.Kind)
	}
	if _, err := w.ConnectNodes(0, nodes[0].ID, nodes[1].ID); !errors.Is(err, ErrDenied) {
		t.Fatalf("duplicate link accepted: %v", err)
	}
	if len(w.Links()) != 1 {
		t.Fatalf("%d links, want 1", len(w.Links()))
	}
}

func TestConnectDeniedOverLengthLimit(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithBuilding(0, BuildingWallNode, 700, 1000),
		WithBuilding(0, BuildingWallNode, 700, 1600), // 600 apart, over the wall limit
		WithGold(0, 500, 0),
	)
	var nodes []*Building
	for _, b := range w.BuildingsOf(0) {
		if b.Type == BuildingWallNode {
			nodes = append(nodes, b)
		}
	}
	if _, err := w.ConnectNodes(0, nodes[0].ID, nodes[1].ID); !errors.Is(err, ErrDenied) {
		t.Fatalf("overlong wall accepted: %v", err)
	}
}

func TestEnsureLoopClosesRingOnce(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithBuilding(0, BuildingWallNode, 580, 1000),
		WithBuilding(0, BuildingWallNode, 700, 880),
		WithBuilding(0, BuildingWallNode, 820, 1000),
		WithBuilding(0, BuildingWallNode, 700, 1120), // square, 170 per side
		WithGold(0, 500, 0),
	)
	var ids []EntityID
	for _, b := range w.BuildingsOf(0) {
		if b.Type == BuildingWallNode {
			ids = append(ids, b.ID)
		}
	}
	if err := w.EnsureLoop(0, ids); err != nil {
		t.Fatalf("loop denied: %v", err)
	}
	if len(w.Links()) != len(ids) {
		t.Fatalf("%d links, want %d (closed ring)", len(w.Links()), len(ids))
	}

	// Re-ensuring an intact ring is free and creates nothing.
	gold := w.Player(0).Gold
	if err := w.EnsureLoop(0, ids); err != nil {
		t.Fatalf("re-ensure denied: %v", err)
	}
	if len(w.Links()) != len(ids) || w.Player(0).Gold != gold {
		t.Fatalf("re-ensure changed state: %d links, gold %d -> %d",
			len(w.Links()), gold, w.Player(0).Gold)
	}
}

func TestEnsureLoopSkipsOverlongSpan(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithBuilding(0, BuildingWallNode, 600, 1100),
		WithBuilding(0, BuildingWallNode, 900, 1100),
		WithBuilding(0, BuildingWallNode, 900, 1500),
		WithBuilding(0, BuildingWallNode, 600, 1560), // closing span back to the first node is 460, over the limit
		WithGold(0, 500, 0),
	)
	var ids []EntityID
	for _, b := range w.BuildingsOf(0) {
		if b.Type == BuildingWallNode {
			ids = append(ids, b.ID)
		}
	}
	err := w.EnsureLoop(0, ids)
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("want denial for the overlong span, got %v", err)
	}
	if len(w.Links()) != 3 {
		t.Fatalf("%d links, want 3 (every legal span despite the gap)", len(w.Links()))
	}
}

func TestHQDeleteProtectedEarly(t *testing.T) {
	w := NewTestWorld(WithPlayer("p1"))
	hq := w.playerHQ(0)
	if err := w.DeleteEntity(0, hq.ID); !errors.Is(err, ErrDenied) {
		t.Fatalf("early HQ delete accepted: %v", err)
	}
	if !hq.Alive() {
		t.Fatal("HQ should still stand")
	}

	w.Tick = w.Tun.ProtectHQ + 1
	if err := w.DeleteEntity(0, hq.ID); err != nil {
		t.Fatalf("late HQ delete denied: %v", err)
	}
}

func TestCommandsApplyNextTick(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithUnit(0, UnitSoldier, 700, 1100),
	)
	u := w.UnitsOf(0)[len(w.UnitsOf(0))-1]
	w.Submit(Command{Kind: CmdMove, Player: 0, Units: []EntityID{u.ID}, X: 900, Y: 1100})
	if u.Target != nil {
		t.Fatal("queued command visible before the tick")
	}
	w.Step()
	if u.Target == nil {
		t.Fatal("queued command not applied at tick start")
	}
}

func TestTransportLoadUnload(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithUnit(0, UnitCarrier, 1740, 1350),
		WithUnit(0, UnitSoldier, 1630, 1350),
		WithUnit(0, UnitSoldier, 1620, 1300),
	)
	var carrier *Unit
	for _, u := range w.UnitsOf(0) {
		if u.Type == UnitCarrier {
			carrier = u
		}
	}
	if err := w.LoadTransport(0, carrier.ID); err != nil {
		t.Fatalf("load denied: %v", err)
	}
	if len(carrier.Cargo) == 0 {
		t.Fatal("nothing embarked")
	}
	for _, u := range w.units {
		if u.Embarked {
			t.Fatal("embarked unit still in the live list")
		}
	}

	// Sail close to the far island and unload onto it.
	carrier.Pos = geom.Point{X: 3100, Y: 1350}
	if err := w.UnloadTransport(0, carrier.ID); err != nil {
		t.Fatalf("unload denied: %v", err)
	}
	if len(carrier.Cargo) != 0 {
		t.Fatalf("%d units still aboard", len(carrier.Cargo))
	}
	for _, u := range w.UnitsOf(0) {
		if u.Type == UnitSoldier && !w.validForUnit(u, u.Pos) {
			t.Fatalf("unloaded unit on invalid terrain at %v", u.Pos)
		}
	}
}
