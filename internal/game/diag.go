package game

// TickDiag is the per-tick diagnostic snapshot: counters the passes bump
// while running, readable by the report runner and the viewer overlay
// after the tick completes.
type TickDiag struct {
	Tick        int
	Shots       int
	DamageDealt float64
	Repairs     int // NaN position relocations
	AgentFaults int

	// AgentReasons holds the last decision label per bot this tick.
	AgentReasons map[PlayerID]string
}

// ReplayEvent is one journal record for the match archive.
type ReplayEvent struct {
	Tick int            `json:"tick"`
	Kind string         `json:"kind"`
	Data map[string]any `json:"data,omitempty"`
}
