package main

import (
	"strings"
	"testing"

	"islandwar/internal/game"
)

func TestFirstTickMatchesSubstring(t *testing.T) {
	entries := []game.SimLogEntry{
		{Tick: 10, Category: "attack", Key: "phase", Value: "build_army -> rally"},
		{Tick: 40, Category: "attack", Key: "phase", Value: "rally -> assault"},
		{Tick: 90, Category: "attack", Key: "phase", Value: "assault -> reassess"},
	}

	if got := firstTick(entries, "attack", "phase", "-> assault"); got != 40 {
		t.Fatalf("first assault tick = %d, want 40", got)
	}
	if got := firstTick(entries, "attack", "phase", ""); got != 10 {
		t.Fatalf("first phase tick = %d, want 10", got)
	}
	if got := firstTick(entries, "defense", "phase", ""); got != -1 {
		t.Fatalf("missing marker = %d, want -1", got)
	}
}

func TestAvgTickString(t *testing.T) {
	if got := avgTickString(nil); got != "n/a" {
		t.Fatalf("empty avg = %q", got)
	}
	if got := avgTickString([]int{10, 20}); got != "15.0" {
		t.Fatalf("avg = %q, want 15.0", got)
	}
}

func TestJoinSetSortsLabels(t *testing.T) {
	got := joinSet(map[string]struct{}{"move": {}, "build": {}, "connect": {}})
	if got != "build,connect,move" {
		t.Fatalf("joined = %q", got)
	}
	if joinSet(nil) != "none" {
		t.Fatal("empty set should print none")
	}
}

func TestRunMatchCollectsStats(t *testing.T) {
	rs := runMatch(1, 7, 400, "twin-isles", 3, 3)
	if rs.endTick == 0 {
		t.Fatal("match never ticked")
	}
	if rs.winner == "" {
		t.Fatal("winner label missing")
	}
	if rs.deniedCommands == nil {
		t.Fatal("denial set not initialized")
	}
}

func TestRunMatchSameSeedIsDeterministic(t *testing.T) {
	a := runMatch(1, 99, 600, "twin-isles", 4, 4)
	b := runMatch(2, 99, 600, "twin-isles", 4, 4)
	a.runIndex, b.runIndex = 0, 0
	if a.attackPhaseChanges != b.attackPhaseChanges ||
		a.buildsCompleted != b.buildsCompleted ||
		a.commandDenials != b.commandDenials ||
		a.endTick != b.endTick {
		t.Fatalf("same-seed runs diverged:\n%+v\n%+v", a, b)
	}
}

func TestWinnerLabelIsPlayerName(t *testing.T) {
	rs := runMatch(1, 5, 100, "twin-isles", 2, 2)
	if rs.winner != "draw" && !strings.HasPrefix(rs.winner, "bot-") {
		t.Fatalf("winner = %q", rs.winner)
	}
}
