package game

import "testing"

func TestIslandCaptureFollowsBuildings(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithBuilding(0, BuildingBarracks, 3700, 1200),
	)
	if w.Island(1).Owner != NeutralPlayer {
		t.Fatal("island 1 should start neutral")
	}
	w.Step()
	if w.Island(1).Owner != 0 {
		t.Fatalf("island 1 owner = %d, want 0", w.Island(1).Owner)
	}

	// Clearing the island reverts it to neutral.
	for _, b := range w.BuildingsOf(0) {
		if b.Island == 1 {
			b.Health = 0
		}
	}
	w.Step()
	if w.Island(1).Owner != NeutralPlayer {
		t.Fatalf("cleared island owner = %d, want neutral", w.Island(1).Owner)
	}
}

func TestEliminationIsIdempotent(t *testing.T) {
	w := NewTestWorld(WithPlayer("p1"), WithPlayer("p2"))
	w.eliminate(1)
	w.eliminate(1)
	if got := len(w.Eliminations()); got != 1 {
		t.Fatalf("elimination ledger has %d entries, want 1", got)
	}
	if w.Player(1).Status != PlayerEliminated {
		t.Fatal("player not eliminated")
	}
	if n := w.Log.CountCategory("player", "eliminated"); n != 1 {
		t.Fatalf("%d elimination log events, want 1", n)
	}
}

func TestHQDeathEliminatesAndRemovesUnits(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithPlayer("p2"),
		WithUnit(1, UnitSoldier, 3600, 1200),
	)
	hq := w.playerHQ(1)
	soldier := w.UnitsOf(1)[len(w.UnitsOf(1))-1]

	hq.Health = 0
	w.Step()

	if w.Player(1).Status != PlayerEliminated {
		t.Fatal("player should be eliminated when the headquarters falls")
	}
	snap := w.BuildSnapshot()
	for _, uv := range snap.Units {
		if uv.ID == int(soldier.ID) {
			t.Fatal("eliminated player's unit still in the snapshot")
		}
	}
	// Non-HQ buildings remain as ruins.
	if len(w.BuildingsOf(1)) == 0 {
		t.Log("note: player 1 had no other buildings to leave standing")
	}
	if !w.Over || w.Winner != 0 {
		t.Fatalf("match should end with winner 0, got over=%v winner=%d", w.Over, w.Winner)
	}
}

func TestIslandPathMatchesReachability(t *testing.T) {
	tun := DefaultTuning()
	tun.MaxBridgeLen = 1800
	w := NewTestWorld(
		WithTuning(tun),
		WithPlayer("p1"),
		WithBuilding(0, BuildingBridgeNode, 1600, 1350),
		WithBuilding(0, BuildingBridgeNode, 3200, 1350),
	)
	if w.IslandsConnected(0, 1) {
		t.Fatal("islands should start disconnected")
	}

	var nodes []*Building
	for _, b := range w.BuildingsOf(0) {
		if b.Type == BuildingBridgeNode {
			nodes = append(nodes, b)
		}
	}
	l, err := w.ConnectNodes(0, nodes[0].ID, nodes[1].ID)
	if err != nil {
		t.Fatalf("bridge denied: %v", err)
	}
	if l.Kind != LinkBridge {
		t.Fatalf("link kind = %v, want bridge", l.Kind)
	}
	path := w.findIslandPath(0, 1)
	if len(path) != 2 || path[0] != 0 || path[1] != 1 {
		t.Fatalf("path = %v, want [0 1]", path)
	}

	// Destroying the bridge must flush the cache, not serve the old path.
	l.Health = 0
	w.Step()
	if w.IslandsConnected(0, 1) {
		t.Fatal("stale path served after link destruction")
	}
}

func TestPathCacheIgnoresOwnershipChanges(t *testing.T) {
	tun := DefaultTuning()
	tun.MaxBridgeLen = 1800
	w := NewTestWorld(
		WithTuning(tun),
		WithPlayer("p1"),
		WithBuilding(0, BuildingBridgeNode, 1600, 1350),
		WithBuilding(0, BuildingBridgeNode, 3200, 1350),
	)
	var nodes []*Building
	for _, b := range w.BuildingsOf(0) {
		if b.Type == BuildingBridgeNode {
			nodes = append(nodes, b)
		}
	}
	if _, err := w.ConnectNodes(0, nodes[0].ID, nodes[1].ID); err != nil {
		t.Fatalf("bridge denied: %v", err)
	}
	before := w.findIslandPath(0, 1)

	// An ownership flip alone leaves the cached route in place.
	w.islands[1].Owner = 0
	after := w.findIslandPath(0, 1)
	if len(before) != len(after) {
		t.Fatalf("ownership change disturbed the path cache: %v vs %v", before, after)
	}
}
