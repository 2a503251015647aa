package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the match-wide tuneable parameters. Values mirror the
// shipped balance; a yaml file can override any field. The rally/assault
// thresholds are tuned constants carried as configuration — their defaults
// are load-bearing and must not be changed casually.
type Tuning struct {
	TickMs        int     `yaml:"tick_ms"`
	ArriveRadius  float64 `yaml:"arrive_radius"`
	BuilderRange  float64 `yaml:"builder_range"`
	AssistRadius  float64 `yaml:"assist_radius"`
	RepairRate    float64 `yaml:"repair_rate"`
	RepairCap     int     `yaml:"repair_cap"`
	SpotSnap      float64 `yaml:"spot_snap"`
	MaxWallLen    float64 `yaml:"max_wall_len"`
	MaxBridgeLen  float64 `yaml:"max_bridge_len"`
	WallCostPer   float64 `yaml:"wall_cost_per"`   // gold per 100 units of link length
	GateCost      int     `yaml:"gate_cost"`
	UpgradeCost   int     `yaml:"upgrade_cost"`
	IncomeEvery   int     `yaml:"income_every"` // ticks between income grants
	GoldPerMine   int     `yaml:"gold_per_mine"`
	OilPerRig     int     `yaml:"oil_per_rig"`
	ProtectHQ     int     `yaml:"protect_hq_ticks"` // early window in which HQs cannot be deleted
	SnapshotEvery int     `yaml:"snapshot_every"`

	// Attack FSM thresholds (tuned constants; treat as config, keep values).
	RallyGatherFrac  float64 `yaml:"rally_gather_frac"`  // 0.55
	RallyTimeout     int     `yaml:"rally_timeout"`      // ticks; 8 s at 30 Hz
	GatherRadius     float64 `yaml:"gather_radius"`
	OrderCadence     int     `yaml:"order_cadence"`      // ticks between re-issued orders
	StallWindow      int     `yaml:"stall_window"`       // ticks after an order before the idle check
	StallIdleFrac    float64 `yaml:"stall_idle_frac"`
	LoopRetryMax     int     `yaml:"loop_retry_max"`     // wall-loop under-count retries before accepting partial
	RingMinRadius    float64 `yaml:"ring_min_radius"`
	RingMaxRadius    float64 `yaml:"ring_max_radius"`
	RingAngularGap   float64 `yaml:"ring_angular_gap"`   // radians between accepted candidates

	// Goal score formulas, compiled with expr. Empty = built-in defaults.
	GoalExpand string `yaml:"goal_expand"`
	GoalAttack string `yaml:"goal_attack"`
	GoalDefend string `yaml:"goal_defend"`
}

// DefaultTuning returns the shipped balance values.
func DefaultTuning() Tuning {
	return Tuning{
		TickMs:        33,
		ArriveRadius:  14,
		BuilderRange:  160,
		AssistRadius:  180,
		RepairRate:    0.35,
		RepairCap:     3,
		SpotSnap:      60,
		MaxWallLen:    420,
		MaxBridgeLen:  1400,
		WallCostPer:   10,
		GateCost:      60,
		UpgradeCost:   200,
		IncomeEvery:   90,
		GoldPerMine:   12,
		OilPerRig:     8,
		ProtectHQ:     5400,
		SnapshotEvery: 3,

		RallyGatherFrac: 0.55,
		RallyTimeout:    240,
		GatherRadius:    250,
		OrderCadence:    45,
		StallWindow:     90,
		StallIdleFrac:   0.6,
		LoopRetryMax:    5,
		RingMinRadius:   140,
		RingMaxRadius:   340,
		RingAngularGap:  0.5,
	}
}

// LoadTuning reads a yaml tuning file over the defaults. A missing path
// returns the defaults unchanged.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}
