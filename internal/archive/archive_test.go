package archive

import (
	"testing"
	"time"

	"islandwar/internal/game"
)

func TestSaveAndLoadMatch(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	id := NewMatchID()
	r := MatchResult{
		ID:        id,
		StartedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		EndedAt:   time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC),
		Ticks:     54000,
		Winner:    1,
		Players: []PlayerResult{
			{ID: 0, Name: "alice", Eliminated: true},
			{ID: 1, Name: "bot", Bot: true, Difficulty: 6},
		},
	}
	if err := s.SaveMatch(r, []byte("blob")); err != nil {
		t.Fatal(err)
	}

	got, replay, err := s.LoadMatch(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Winner != 1 || got.Ticks != 54000 {
		t.Fatalf("row mismatch: %+v", got)
	}
	if len(got.Players) != 2 || !got.Players[0].Eliminated || !got.Players[1].Bot {
		t.Fatalf("players mismatch: %+v", got.Players)
	}
	if string(replay) != "blob" {
		t.Fatalf("replay blob mismatch: %q", replay)
	}
}

func TestJournalRoundTrip(t *testing.T) {
	j, err := NewJournal()
	if err != nil {
		t.Fatal(err)
	}
	in := []game.ReplayEvent{
		{Tick: 1, Kind: "spawn", Data: map[string]any{"id": float64(4)}},
		{Tick: 2, Kind: "place", Data: map[string]any{"type": "tower"}},
		{Tick: 9, Kind: "killed", Data: map[string]any{"id": float64(4)}},
	}
	if err := j.Append(in[:2]); err != nil {
		t.Fatal(err)
	}
	if err := j.Append(in[2:]); err != nil {
		t.Fatal(err)
	}
	if j.Len() != 3 {
		t.Fatalf("journal length = %d", j.Len())
	}

	blob, err := j.Finish()
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeReplay(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("%d events decoded, want 3", len(out))
	}
	if out[0].Kind != "spawn" || out[2].Tick != 9 {
		t.Fatalf("decoded stream mismatch: %+v", out)
	}
	if out[1].Data["type"] != "tower" {
		t.Fatalf("event payload lost: %+v", out[1].Data)
	}
}

func TestJournalFromWorld(t *testing.T) {
	w := game.NewTestWorld(game.WithPlayer("p1"))
	j, err := NewJournal()
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Append(w.DrainEvents()); err != nil {
		t.Fatal(err)
	}
	if j.Len() == 0 {
		t.Fatal("player join produced no journal events")
	}
}
