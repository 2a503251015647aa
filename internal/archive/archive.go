// Package archive persists finished matches: a result row per match in a
// local SQLite database, plus the replay journal as a zstd-compressed
// stream of JSON events alongside it.
package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"islandwar/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id         TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	ended_at   TEXT NOT NULL,
	ticks      INTEGER NOT NULL,
	winner     INTEGER NOT NULL,
	players    TEXT NOT NULL,
	replay     BLOB
);`

// PlayerResult is one row of the per-match player summary.
type PlayerResult struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Bot        bool   `json:"bot"`
	Difficulty int    `json:"difficulty,omitempty"`
	Eliminated bool   `json:"eliminated"`
}

// MatchResult is everything the archive keeps about a finished match.
type MatchResult struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Ticks     int
	Winner    int
	Players   []PlayerResult
}

// Store is a handle on the match archive database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the archive at path (":memory:" works for tests).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// NewMatchID mints an archive key for a fresh match.
func NewMatchID() string { return uuid.NewString() }

// SaveMatch writes the result row with its compressed replay blob.
func (s *Store) SaveMatch(r MatchResult, replay []byte) error {
	players, err := json.Marshal(r.Players)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO matches (id, started_at, ended_at, ticks, winner, players, replay)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.EndedAt.UTC().Format(time.RFC3339),
		r.Ticks, r.Winner, string(players), replay)
	if err != nil {
		return fmt.Errorf("save match %s: %w", r.ID, err)
	}
	return nil
}

// LoadMatch reads a result row and its replay blob back.
func (s *Store) LoadMatch(id string) (MatchResult, []byte, error) {
	var r MatchResult
	var started, ended, players string
	var replay []byte
	err := s.db.QueryRow(
		`SELECT id, started_at, ended_at, ticks, winner, players, replay
		 FROM matches WHERE id = ?`, id).
		Scan(&r.ID, &started, &ended, &r.Ticks, &r.Winner, &players, &replay)
	if err != nil {
		return MatchResult{}, nil, fmt.Errorf("load match %s: %w", id, err)
	}
	if r.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
		return MatchResult{}, nil, err
	}
	if r.EndedAt, err = time.Parse(time.RFC3339, ended); err != nil {
		return MatchResult{}, nil, err
	}
	if err := json.Unmarshal([]byte(players), &r.Players); err != nil {
		return MatchResult{}, nil, err
	}
	return r, replay, nil
}

// ResultFor summarizes a finished world into an archive row.
func ResultFor(id string, w *game.World, started time.Time) MatchResult {
	r := MatchResult{
		ID:        id,
		StartedAt: started,
		EndedAt:   time.Now(),
		Ticks:     w.Tick,
		Winner:    int(w.Winner),
	}
	for _, p := range w.Players() {
		r.Players = append(r.Players, PlayerResult{
			ID: int(p.ID), Name: p.Name, Bot: p.Bot, Difficulty: p.Difficulty,
			Eliminated: p.Status == game.PlayerEliminated,
		})
	}
	return r
}
