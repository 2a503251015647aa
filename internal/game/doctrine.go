package game

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Built-in goal formulas. Tuning can override each with its own expression;
// the compiled programs see the same environment either way.
const (
	defaultExpandExpr = `free_gold_spots > 0
		? 0.55 + 0.08*idle_builders + 0.15*(gold > 400 ? 1 : 0)
		: 0.25*(free_islands > 0 ? 1 : 0)`

	defaultAttackExpr = `army < min_army
		? 0.0
		: 0.35 + 0.5*min(1.0, army/soft_cap) + 0.1*(gold > 800 ? 1 : 0)`

	defaultDefendExpr = `0.2 + 0.6*min(1.0, threat/4.0) + 0.15*(towers < planned_towers ? 1 : 0)`
)

// doctrine holds the compiled goal-score programs for one bot.
type doctrine struct {
	expand *vm.Program
	attack *vm.Program
	defend *vm.Program
}

// doctrineEnv is the fact sheet one evaluation sees. Keys must stay in
// sync with the formula defaults above.
func doctrineEnv() map[string]any {
	return map[string]any{
		"tick":            0,
		"gold":            0,
		"oil":             0,
		"army":            0,
		"min_army":        0,
		"soft_cap":        0,
		"idle_builders":   0,
		"free_gold_spots": 0,
		"free_islands":    0,
		"threat":          0,
		"towers":          0,
		"planned_towers":  0,
		"min": func(a, b float64) float64 {
			if a < b {
				return a
			}
			return b
		},
	}
}

func compileDoctrine(tun Tuning) (*doctrine, error) {
	pick := func(override, def string) string {
		if override != "" {
			return override
		}
		return def
	}
	env := doctrineEnv()
	var d doctrine
	var err error
	if d.expand, err = expr.Compile(pick(tun.GoalExpand, defaultExpandExpr), expr.Env(env), expr.AsFloat64()); err != nil {
		return nil, err
	}
	if d.attack, err = expr.Compile(pick(tun.GoalAttack, defaultAttackExpr), expr.Env(env), expr.AsFloat64()); err != nil {
		return nil, err
	}
	if d.defend, err = expr.Compile(pick(tun.GoalDefend, defaultDefendExpr), expr.Env(env), expr.AsFloat64()); err != nil {
		return nil, err
	}
	return &d, nil
}

// score runs one compiled program; evaluation errors score zero so a bad
// override cannot crash the decision pass.
func (d *doctrine) score(prog *vm.Program, env map[string]any) float64 {
	out, err := expr.Run(prog, env)
	if err != nil {
		return 0
	}
	f, _ := out.(float64)
	return f
}
