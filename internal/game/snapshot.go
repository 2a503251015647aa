package game

import "math"

// Snapshot is the wire-facing view of the world, rebuilt on demand. All
// fields are plain data so the protocol layer can marshal it directly.
// Positions are rounded to a tenth of a world unit; sub-tenth jitter is
// display noise and bloats the encoded frames.
type Snapshot struct {
	Tick    int              `json:"tick"`
	Over    bool             `json:"over"`
	Winner  int              `json:"winner"`
	Players []PlayerView     `json:"players"`
	Units   []UnitView       `json:"units"`
	Bldgs   []BuildingView   `json:"buildings"`
	Links   []LinkView       `json:"links"`
	Islands []IslandView     `json:"islands"`
}

type PlayerView struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Gold       int    `json:"gold"`
	Oil        int    `json:"oil"`
	Status     string `json:"status"`
	Bot        bool   `json:"bot"`
	Difficulty int    `json:"difficulty,omitempty"`
	Denial     string `json:"denial,omitempty"`
}

type UnitView struct {
	ID     int     `json:"id"`
	Owner  int     `json:"owner"`
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health float64 `json:"health"`
	Max    float64 `json:"max_health"`
	Status string  `json:"status"`
	Cargo  int     `json:"cargo,omitempty"`
	Queue  int     `json:"queue,omitempty"`
}

type BuildingView struct {
	ID       int     `json:"id"`
	Owner    int     `json:"owner"`
	Type     string  `json:"type"`
	Island   int     `json:"island"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Health   float64 `json:"health"`
	Max      float64 `json:"max_health"`
	Progress float64 `json:"progress"`
	Queue    int     `json:"queue,omitempty"`
	Upgraded bool    `json:"upgraded,omitempty"`
}

type LinkView struct {
	ID     int     `json:"id"`
	Owner  int     `json:"owner"`
	Kind   string  `json:"kind"`
	A      int     `json:"a"`
	B      int     `json:"b"`
	Health float64 `json:"health"`
}

type IslandView struct {
	ID    int `json:"id"`
	Owner int `json:"owner"`
}

// BuildSnapshot assembles the current public state. Denial messages are
// consumed per player: each appears in exactly one snapshot.
func (w *World) BuildSnapshot() Snapshot {
	s := Snapshot{Tick: w.Tick, Over: w.Over, Winner: int(w.Winner)}
	for _, p := range w.players {
		s.Players = append(s.Players, PlayerView{
			ID: int(p.ID), Name: p.Name, Gold: p.Gold, Oil: p.Oil,
			Status: p.Status.String(), Bot: p.Bot, Difficulty: p.Difficulty,
			Denial: w.LastDenial(p.ID),
		})
	}
	for _, u := range w.units {
		s.Units = append(s.Units, UnitView{
			ID: int(u.ID), Owner: int(u.Owner), Type: u.Type.String(),
			X: roundTenth(u.Pos.X), Y: roundTenth(u.Pos.Y),
			Health: u.Health, Max: u.Type.Spec().MaxHealth,
			Status: u.Status.String(), Cargo: len(u.Cargo), Queue: len(u.Queue),
		})
	}
	for _, b := range w.buildings {
		s.Bldgs = append(s.Bldgs, BuildingView{
			ID: int(b.ID), Owner: int(b.Owner), Type: b.Type.String(), Island: b.Island,
			X: roundTenth(b.Pos.X), Y: roundTenth(b.Pos.Y),
			Health: b.Health, Max: b.Type.Spec().MaxHealth,
			Progress: b.Progress, Queue: len(b.Queue), Upgraded: b.Upgraded,
		})
	}
	for _, l := range w.links {
		s.Links = append(s.Links, LinkView{
			ID: int(l.ID), Owner: int(l.Owner), Kind: l.Kind.String(),
			A: int(l.A), B: int(l.B), Health: l.Health,
		})
	}
	for i := range w.islands {
		s.Islands = append(s.Islands, IslandView{ID: i, Owner: int(w.islands[i].Owner)})
	}
	return s
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
