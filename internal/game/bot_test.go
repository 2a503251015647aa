package game

import (
	"testing"

	"golang.org/x/time/rate"
)

// A tier-1 bot with a roster below minimum and the start delay not yet
// elapsed must sit in the build phase and leave the roster unordered.
func TestAttackWaitsBelowRosterMinimum(t *testing.T) {
	w := NewTestWorld(
		WithBot("bot1", 1),
		WithPlayer("p2"),
		WithUnit(0, UnitSoldier, 700, 1000),
		WithUnit(0, UnitSoldier, 740, 1000),
		WithUnit(0, UnitSoldier, 700, 1040),
		WithUnit(0, UnitSoldier, 740, 1040),
	)
	bot := w.Player(0).bot
	w.RunTicks(200) // past at least one think pass

	if bot.attack.phase != atkBuildArmy {
		t.Fatalf("phase = %v, want build_army", bot.attack.phase)
	}
	for _, u := range w.UnitsOf(0) {
		if u.Type == UnitSoldier && u.Target != nil {
			t.Fatalf("roster unit %d received a move order in build phase", u.ID)
		}
	}
}

func TestAttackFailsafeLaunchesUndersizeRoster(t *testing.T) {
	w := NewTestWorld(
		WithBot("bot1", 1),
		WithPlayer("p2"),
		WithUnit(0, UnitSoldier, 700, 1000),
		WithUnit(0, UnitSoldier, 740, 1000),
	)
	bot := w.Player(0).bot
	bot.prof.ThinkInterval = 1
	bot.prof.AttackStartDelay = 0
	bot.prof.FailsafeWait = 10
	bot.apm = rate.NewLimiter(rate.Inf, 1)

	w.RunTicks(40)
	if bot.attack.phase == atkBuildArmy {
		t.Fatalf("failsafe never launched\n%s", w.Log.Format())
	}
	if !w.Log.HasEntry("attack", "failsafe_launch", "") {
		t.Fatal("failsafe launch not logged")
	}
}

func TestAttackRallyTimesOutIntoAssault(t *testing.T) {
	tun := DefaultTuning()
	tun.RallyTimeout = 5
	w := NewTestWorld(
		WithTuning(tun),
		WithBot("bot1", 1),
		WithPlayer("p2"),
		WithUnit(0, UnitSoldier, 700, 1000),
	)
	bot := w.Player(0).bot
	bot.prof.ThinkInterval = 1
	bot.prof.AttackStartDelay = 0
	bot.prof.RosterMin = 1
	bot.apm = rate.NewLimiter(rate.Inf, 1)

	w.RunTicks(60)
	if !w.Log.HasEntry("attack", "phase", "rally -> assault") {
		t.Fatalf("rally never handed over to assault\n%s", w.Log.Format())
	}
}

func TestDefensePlacesRingOnHomeIsland(t *testing.T) {
	w := NewTestWorld(
		WithBot("bot1", 3),
		WithPlayer("p2"),
		WithGold(0, 5000, 0),
	)
	bot := w.Player(0).bot
	bot.prof.ThinkInterval = 2
	bot.apm = rate.NewLimiter(rate.Inf, 4)

	hq := w.playerHQ(0)
	end := w.RunUntil(func(*World) bool {
		return bot.countOwn(BuildingTower) >= 1 && bot.countOwn(BuildingWallNode) >= 2
	}, 4000)
	if end < 0 {
		t.Fatalf("defense plan never placed the opening ring\n%s", w.Summary())
	}

	for _, b := range w.BuildingsOf(0) {
		if b.Type != BuildingTower && b.Type != BuildingWallNode {
			continue
		}
		d := b.Pos.Dist(hq.Pos)
		if d < w.Tun.RingMinRadius-1 || d > w.Tun.RingMaxRadius+1 {
			t.Fatalf("%s placed %.0f from HQ, outside the ring band", b.Type, d)
		}
		if w.Map.IslandAt(b.Pos) != hq.Island {
			t.Fatalf("%s placed off the home island", b.Type)
		}
	}
}

func TestDoctrineOverridesCompile(t *testing.T) {
	tun := DefaultTuning()
	tun.GoalAttack = "1.0"
	d, err := compileDoctrine(tun)
	if err != nil {
		t.Fatalf("override failed to compile: %v", err)
	}
	env := doctrineEnv()
	if got := d.score(d.attack, env); got != 1.0 {
		t.Fatalf("override score = %v, want 1.0", got)
	}

	// A broken override falls back at bot construction instead of crashing.
	tun.GoalAttack = "this is not an expression ))"
	w := NewTestWorld(WithTuning(tun), WithBot("bot1", 5))
	if w.Player(0).bot.doc == nil {
		t.Fatal("bot lost its doctrine on a bad override")
	}
}

func TestAPMBucketThrottlesOrders(t *testing.T) {
	w := NewTestWorld(WithBot("bot1", 1))
	bot := w.Player(0).bot

	spent := 0
	for i := 0; i < 50; i++ {
		if bot.spend() {
			spent++
		}
	}
	if spent > bot.prof.APMBurst {
		t.Fatalf("burst of %d exceeded bucket capacity %d", spent, bot.prof.APMBurst)
	}
}
