package game

import (
	"islandwar/internal/geom"
	"islandwar/internal/worldmap"
)

// simOptionKind controls the pass in which an option is applied: world
// configuration first, players once the world exists, entities last.
type simOptionKind int

const (
	simOptWorld simOptionKind = iota
	simOptPlayer
	simOptEntity
)

// SimOption is a builder function applied to a test world during
// construction. Used exclusively by tests.
type SimOption struct {
	kind simOptionKind
	fn   func(*World)
}

// WithMap selects the fixture map (default TwinIsles).
func WithMap(m *worldmap.Map) SimOption {
	return SimOption{simOptWorld, func(w *World) {
		*w = *NewWorld(m, w.Tun, 1)
	}}
}

// WithTuning overrides the tuning table.
func WithTuning(t Tuning) SimOption {
	return SimOption{simOptWorld, func(w *World) {
		w.Tun = t
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptWorld, func(w *World) {
		*w = *NewWorld(w.Map, w.Tun, seed)
	}}
}

// WithVerboseLog enables per-tick verbose logging.
func WithVerboseLog() SimOption {
	return SimOption{simOptWorld, func(w *World) {
		w.Log = NewSimLog(true)
	}}
}

// WithPlayer adds a human-controlled player with a starting base.
func WithPlayer(name string) SimOption {
	return SimOption{simOptPlayer, func(w *World) {
		w.AddPlayer(name, false, 0)
	}}
}

// WithBot adds a bot player at the given difficulty tier.
func WithBot(name string, difficulty int) SimOption {
	return SimOption{simOptPlayer, func(w *World) {
		w.AddPlayer(name, true, difficulty)
	}}
}

// WithUnit spawns a unit directly, bypassing production.
func WithUnit(pid PlayerID, t UnitType, x, y float64) SimOption {
	return SimOption{simOptEntity, func(w *World) {
		w.spawnUnit(pid, t, geom.Point{X: x, Y: y})
	}}
}

// WithBuilding places a completed building directly, bypassing cost and
// construction.
func WithBuilding(pid PlayerID, t BuildingType, x, y float64) SimOption {
	return SimOption{simOptEntity, func(w *World) {
		pos := geom.Point{X: x, Y: y}
		w.placeBuilding(pid, t, w.Map.IslandAt(pos), pos, true)
	}}
}

// WithSite places an incomplete construction site at the given progress.
func WithSite(pid PlayerID, t BuildingType, x, y, progress float64) SimOption {
	return SimOption{simOptEntity, func(w *World) {
		pos := geom.Point{X: x, Y: y}
		b := w.placeBuilding(pid, t, w.Map.IslandAt(pos), pos, false)
		b.Progress = progress
		b.Health = progress / 100 * t.Spec().MaxHealth
		if b.Health < 1 {
			b.Health = 1
		}
	}}
}

// WithGold sets a player's treasury.
func WithGold(pid PlayerID, gold, oil int) SimOption {
	return SimOption{simOptEntity, func(w *World) {
		if p := w.Player(pid); p != nil {
			p.Gold = gold
			p.Oil = oil
		}
	}}
}

// NewTestWorld constructs a world from the given options in three ordered
// passes: world configuration, players, entities.
func NewTestWorld(opts ...SimOption) *World {
	w := NewWorld(worldmap.TwinIsles(), DefaultTuning(), 1)
	for _, o := range opts {
		if o.kind == simOptWorld {
			o.fn(w)
		}
	}
	for _, o := range opts {
		if o.kind == simOptPlayer {
			o.fn(w)
		}
	}
	for _, o := range opts {
		if o.kind == simOptEntity {
			o.fn(w)
		}
	}
	return w
}

// UnitsOf returns a player's living units.
func (w *World) UnitsOf(pid PlayerID) []*Unit {
	var out []*Unit
	for _, u := range w.units {
		if u.Owner == pid && u.Alive() {
			out = append(out, u)
		}
	}
	return out
}

// BuildingsOf returns a player's standing buildings.
func (w *World) BuildingsOf(pid PlayerID) []*Building {
	var out []*Building
	for _, b := range w.buildings {
		if b.Owner == pid && b.Alive() {
			out = append(out, b)
		}
	}
	return out
}
