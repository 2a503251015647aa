package game

import (
	"math"
	"testing"
)

func TestNaNPositionRepaired(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithUnit(0, UnitSoldier, 700, 1100),
	)
	u := w.UnitsOf(0)[len(w.UnitsOf(0))-1]
	u.Pos.X = math.NaN()
	w.Step()

	if math.IsNaN(u.Pos.X) || math.IsNaN(u.Pos.Y) {
		t.Fatalf("position still corrupt: %v", u.Pos)
	}
	if u.Status != StatusIdle || u.Target != nil {
		t.Fatal("repaired unit should be idle with no intent")
	}
	if !w.Log.HasEntry("repair", "nan_position", "") {
		t.Fatal("repair not logged")
	}
}

func TestAgentFaultIsolated(t *testing.T) {
	w := NewTestWorld(
		WithBot("bot1", 5),
		WithPlayer("p2"),
	)
	// Sabotage the bot so its decision pass panics.
	w.Player(0).bot.w = nil

	w.Step()
	if w.Diag().AgentFaults != 1 {
		t.Fatalf("faults = %d, want 1", w.Diag().AgentFaults)
	}
	w.RunTicks(5) // the match keeps running
	if w.Over {
		t.Fatal("a faulting agent must not end the match")
	}
}

func TestMatchEndsWithLastActivePlayer(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithPlayer("p2"),
		WithPlayer("p3"),
	)
	w.eliminate(1)
	w.Step()
	if w.Over {
		t.Fatal("two active players remain")
	}
	w.eliminate(2)
	w.Step()
	if !w.Over || w.Winner != 0 {
		t.Fatalf("over=%v winner=%d, want winner 0", w.Over, w.Winner)
	}
}

func TestDisconnectEliminatesHumanOnly(t *testing.T) {
	w := NewTestWorld(
		WithBot("bot1", 3),
		WithPlayer("p2"),
		WithPlayer("p3"),
	)
	w.RemovePlayer(0) // bots keep playing
	if w.Player(0).Status != PlayerActive {
		t.Fatal("bot should survive a disconnect notification")
	}
	w.RemovePlayer(1)
	if w.Player(1).Status != PlayerEliminated {
		t.Fatal("disconnected human should be eliminated")
	}
}

func TestSnapshotConsumesDenials(t *testing.T) {
	w := NewTestWorld(WithPlayer("p1"), WithGold(0, 0, 0))
	hq := w.playerHQ(0)
	_, _ = w.BuildStructure(0, BuildingTower, hq.Pos.Add(140, 0))

	s1 := w.BuildSnapshot()
	if s1.Players[0].Denial == "" {
		t.Fatal("denial missing from snapshot")
	}
	s2 := w.BuildSnapshot()
	if s2.Players[0].Denial != "" {
		t.Fatal("denial should appear in exactly one snapshot")
	}
}

func TestSnapshotRoundsPositions(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithUnit(0, UnitSoldier, 700, 1100),
	)
	u := w.UnitsOf(0)[len(w.UnitsOf(0))-1]
	u.Pos.X = 700.123456
	u.Pos.Y = 1100.98765

	s := w.BuildSnapshot()
	uv := s.Units[len(s.Units)-1]
	if uv.X != 700.1 || uv.Y != 1101.0 {
		t.Fatalf("snapshot position (%v,%v), want tenth-rounded (700.1,1101)", uv.X, uv.Y)
	}
}

func TestReplayJournalDrains(t *testing.T) {
	w := NewTestWorld(WithPlayer("p1"))
	ev := w.DrainEvents()
	if len(ev) == 0 {
		t.Fatal("player join should be journaled")
	}
	if got := w.DrainEvents(); len(got) != 0 {
		t.Fatalf("journal not cleared, %d events remain", len(got))
	}
}
