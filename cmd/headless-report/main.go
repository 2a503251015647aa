package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"islandwar/internal/game"
	"islandwar/internal/worldmap"
)

type runStats struct {
	runIndex int
	seed     int64

	firstAttackTick    int
	firstAssaultTick   int
	firstCaptureTick   int
	firstBuildDoneTick int
	firstElimTick      int
	endTick            int
	winner             string

	attackPhaseChanges  int
	defensePhaseChanges int
	buildsCompleted     int
	capturedEvents      int
	commandDenials      int
	failsafeLaunches    int
	stallReorders       int
	partialAccepts      int
	agentFaults         int
	nanRepairs          int
	deniedCommands      map[string]struct{}
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var mapName string
	var diffA, diffB int

	flag.IntVar(&runs, "runs", 5, "number of headless match runs")
	flag.IntVar(&ticks, "ticks", 36000, "tick cap per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&mapName, "map", "twin-isles", "fixture map name")
	flag.IntVar(&diffA, "diff-a", 5, "difficulty of bot A (1-10)")
	flag.IntVar(&diffB, "diff-b", 5, "difficulty of bot B (1-10)")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}

	fmt.Printf("=== Headless Match Report ===\n")
	fmt.Printf("map=%s runs=%d ticks=%d diff_a=%d diff_b=%d seed_base=%d seed_step=%d\n\n",
		mapName, runs, ticks, diffA, diffB, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := runMatch(i+1, seed, ticks, mapName, diffA, diffB)
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

func runMatch(runIndex int, seed int64, ticks int, mapName string, diffA, diffB int) runStats {
	w := game.NewWorld(worldmap.ByName(mapName), game.DefaultTuning(), seed)
	w.AddPlayer("bot-a", true, diffA)
	w.AddPlayer("bot-b", true, diffB)
	w.RunTicks(ticks)

	entries := w.Log.Entries()
	denied := map[string]struct{}{}
	denials := 0
	for _, e := range entries {
		if e.Category == "command" {
			denials++
			denied[e.Key] = struct{}{}
		}
	}

	winner := "draw"
	if w.Over {
		if p := w.Player(w.Winner); p != nil {
			winner = p.Name
		}
	}

	return runStats{
		runIndex:            runIndex,
		seed:                seed,
		firstAttackTick:     firstTick(entries, "attack", "phase", "build_army -> rally"),
		firstAssaultTick:    firstTick(entries, "attack", "phase", "-> assault"),
		firstCaptureTick:    firstTick(entries, "island", "captured", ""),
		firstBuildDoneTick:  firstTick(entries, "build", "complete", ""),
		firstElimTick:       firstTick(entries, "player", "eliminated", ""),
		endTick:             w.Tick,
		winner:              winner,
		attackPhaseChanges:  w.Log.CountCategory("attack", "phase"),
		defensePhaseChanges: w.Log.CountCategory("defense", "phase"),
		buildsCompleted:     w.Log.CountCategory("build", "complete"),
		capturedEvents:      w.Log.CountCategory("island", "captured"),
		commandDenials:      denials,
		failsafeLaunches:    w.Log.CountCategory("attack", "failsafe_launch"),
		stallReorders:       w.Log.CountCategory("attack", "stall_reorder"),
		partialAccepts:      w.Log.CountCategory("defense", "partial_accept"),
		agentFaults:         w.Log.CountCategory("agent", "fault"),
		nanRepairs:          w.Log.CountCategory("repair", "nan_position"),
		deniedCommands:      denied,
	}
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome: winner=%s end_tick=%d\n", rs.winner, rs.endTick)
	fmt.Printf("phase_markers: first_rally=%d first_assault=%d first_build_done=%d first_capture=%d first_elimination=%d\n",
		rs.firstAttackTick, rs.firstAssaultTick, rs.firstBuildDoneTick, rs.firstCaptureTick, rs.firstElimTick)
	fmt.Printf("event_totals: attack_phase=%d defense_phase=%d builds_done=%d captures=%d denials=%d\n",
		rs.attackPhaseChanges, rs.defensePhaseChanges, rs.buildsCompleted, rs.capturedEvents, rs.commandDenials)
	fmt.Printf("edge_events: failsafe_launch=%d stall_reorder=%d partial_accept=%d agent_fault=%d nan_repair=%d\n",
		rs.failsafeLaunches, rs.stallReorders, rs.partialAccepts, rs.agentFaults, rs.nanRepairs)
	fmt.Printf("denied_commands: %s\n", joinSet(rs.deniedCommands))
	fmt.Println()
}

func printAggregate(all []runStats) {
	totalAttack := 0
	totalDefense := 0
	totalBuilds := 0
	totalCaptures := 0
	totalDenials := 0
	totalFailsafe := 0
	totalStall := 0
	totalPartial := 0
	totalFaults := 0
	totalRepairs := 0

	rallyTicks := make([]int, 0, len(all))
	assaultTicks := make([]int, 0, len(all))
	elimTicks := make([]int, 0, len(all))
	endTicks := make([]int, 0, len(all))
	wins := map[string]int{}
	deniedGlobal := map[string]struct{}{}

	for _, rs := range all {
		totalAttack += rs.attackPhaseChanges
		totalDefense += rs.defensePhaseChanges
		totalBuilds += rs.buildsCompleted
		totalCaptures += rs.capturedEvents
		totalDenials += rs.commandDenials
		totalFailsafe += rs.failsafeLaunches
		totalStall += rs.stallReorders
		totalPartial += rs.partialAccepts
		totalFaults += rs.agentFaults
		totalRepairs += rs.nanRepairs
		wins[rs.winner]++
		endTicks = append(endTicks, rs.endTick)
		if rs.firstAttackTick >= 0 {
			rallyTicks = append(rallyTicks, rs.firstAttackTick)
		}
		if rs.firstAssaultTick >= 0 {
			assaultTicks = append(assaultTicks, rs.firstAssaultTick)
		}
		if rs.firstElimTick >= 0 {
			elimTicks = append(elimTicks, rs.firstElimTick)
		}
		for k := range rs.deniedCommands {
			deniedGlobal[k] = struct{}{}
		}
	}

	fmt.Println("=== Aggregate Match Inputs ===")
	fmt.Printf("runs=%d\n", len(all))
	names := make([]string, 0, len(wins))
	for name := range wins {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, wins[name]))
	}
	fmt.Printf("win_tally: %s\n", strings.Join(parts, " "))
	fmt.Printf("avg_events_per_run: attack_phase=%.1f defense_phase=%.1f builds_done=%.1f captures=%.1f denials=%.1f\n",
		avg(totalAttack, len(all)), avg(totalDefense, len(all)), avg(totalBuilds, len(all)), avg(totalCaptures, len(all)), avg(totalDenials, len(all)))
	fmt.Printf("avg_edge_events_per_run: failsafe=%.1f stall_reorder=%.1f partial_accept=%.1f fault=%.1f nan_repair=%.1f\n",
		avg(totalFailsafe, len(all)), avg(totalStall, len(all)), avg(totalPartial, len(all)), avg(totalFaults, len(all)), avg(totalRepairs, len(all)))
	fmt.Printf("phase_marker_avg_ticks: first_rally=%s first_assault=%s first_elimination=%s match_end=%s\n",
		avgTickString(rallyTicks), avgTickString(assaultTicks), avgTickString(elimTicks), avgTickString(endTicks))
	fmt.Printf("denied_command_kinds=%d [%s]\n", len(deniedGlobal), joinSet(deniedGlobal))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinSet(s map[string]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(s))
	for k := range s {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}
