package game

import (
	"math"
	"testing"
)

// An unattended site still advances: the builder count only multiplies the
// base rate, it never gates it.
func TestUnattendedSiteAccruesBaseRate(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithSite(0, BuildingBarracks, 700, 1000, 0),
	)
	var site *Building
	for _, b := range w.BuildingsOf(0) {
		if b.Type == BuildingBarracks {
			site = b
		}
	}
	w.RunTicks(50)
	want := 50 * 100.0 / float64(BuildingBarracks.Spec().BuildTicks)
	if math.Abs(site.Progress-want) > 0.01 {
		t.Fatalf("unattended progress = %.2f, want base rate %.2f", site.Progress, want)
	}
}

func TestBuildersStackConstructionRate(t *testing.T) {
	run := func(builders int) float64 {
		opts := []SimOption{
			WithPlayer("p1"),
			WithSite(0, BuildingBarracks, 700, 1000, 0),
		}
		for i := 0; i < builders; i++ {
			opts = append(opts, WithUnit(0, UnitBuilder, 720+float64(i)*25, 1040))
		}
		w := NewTestWorld(opts...)
		var site *Building
		for _, b := range w.BuildingsOf(0) {
			if b.Type == BuildingBarracks {
				site = b
			}
		}
		w.RunTicks(20)
		return site.Progress
	}
	one := run(1)
	three := run(3)
	if one <= 0 {
		t.Fatal("attended site did not advance")
	}
	if three <= one {
		t.Fatalf("3 builders (%.2f) should outpace 1 builder (%.2f)", three, one)
	}
}

func TestProgressMonotoneAndCompletion(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithSite(0, BuildingTower, 700, 1000, 95),
		WithUnit(0, UnitBuilder, 720, 1040),
	)
	var site *Building
	for _, b := range w.BuildingsOf(0) {
		if b.Type == BuildingTower {
			site = b
		}
	}
	prev := site.Progress
	end := w.RunUntil(func(*World) bool {
		if site.Progress < prev {
			t.Fatalf("progress regressed %.2f -> %.2f", prev, site.Progress)
		}
		prev = site.Progress
		return !site.Constructing()
	}, 300)
	if end < 0 {
		t.Fatal("site never completed")
	}
	if site.Health != BuildingTower.Spec().MaxHealth {
		t.Fatalf("completed health %.1f, want max %.1f", site.Health, BuildingTower.Spec().MaxHealth)
	}
}

func TestProductionSpawnsOnRing(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithBuilding(0, BuildingBarracks, 700, 1000),
		WithGold(0, 1000, 0),
	)
	var barracks *Building
	for _, b := range w.BuildingsOf(0) {
		if b.Type == BuildingBarracks {
			barracks = b
		}
	}
	if err := w.RecruitUnit(0, barracks.ID, UnitSoldier); err != nil {
		t.Fatalf("recruit denied: %v", err)
	}
	if got := w.Player(0).Gold; got != 1000-UnitSoldier.Spec().CostGold {
		t.Fatalf("gold = %d after recruit", got)
	}

	before := len(w.UnitsOf(0))
	end := w.RunUntil(func(*World) bool { return len(w.UnitsOf(0)) > before }, UnitSoldier.Spec().BuildTicks+30)
	if end < 0 {
		t.Fatal("queued soldier never spawned")
	}
	fresh := w.UnitsOf(0)[len(w.UnitsOf(0))-1]
	if fresh.Type != UnitSoldier {
		t.Fatalf("spawned %v, want soldier", fresh.Type)
	}
	d := fresh.Pos.Dist(barracks.Pos)
	if d < barracks.Type.Spec().Radius {
		t.Fatalf("unit spawned inside the producer footprint (%.1f away)", d)
	}
	if !w.validForUnit(fresh, fresh.Pos) {
		t.Fatalf("unit spawned on invalid terrain at %v", fresh.Pos)
	}
}

// The carrier is a mobile producer: it queues and spawns its own air wing.
func TestCarrierTrainsGunship(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithUnit(0, UnitCarrier, 2400, 1350), // mid-channel, open water
		WithGold(0, 1000, 100),
	)
	var carrier *Unit
	for _, u := range w.UnitsOf(0) {
		if u.Type == UnitCarrier {
			carrier = u
		}
	}
	if err := w.RecruitUnit(0, carrier.ID, UnitSoldier); err == nil {
		t.Fatal("carrier accepted a ground recruit")
	}
	if err := w.RecruitUnit(0, carrier.ID, UnitGunship); err != nil {
		t.Fatalf("recruit denied: %v", err)
	}
	if len(carrier.Queue) != 1 {
		t.Fatalf("queue length %d, want 1", len(carrier.Queue))
	}

	before := len(w.UnitsOf(0))
	end := w.RunUntil(func(*World) bool { return len(w.UnitsOf(0)) > before }, UnitGunship.Spec().BuildTicks+30)
	if end < 0 {
		t.Fatal("queued gunship never spawned")
	}
	fresh := w.UnitsOf(0)[len(w.UnitsOf(0))-1]
	if fresh.Type != UnitGunship {
		t.Fatalf("spawned %v, want gunship", fresh.Type)
	}
	if d := fresh.Pos.Dist(carrier.Pos); d < carrier.Type.Spec().Radius {
		t.Fatalf("unit spawned inside the carrier footprint (%.1f away)", d)
	}
}

func TestRepairCapLimitsStacking(t *testing.T) {
	mk := func(builders int) *World {
		opts := []SimOption{
			WithPlayer("p1"),
			WithBuilding(0, BuildingBarracks, 700, 1000),
		}
		for i := 0; i < builders; i++ {
			opts = append(opts, WithUnit(0, UnitBuilder, 720+float64(i)*25, 1060))
		}
		w := NewTestWorld(opts...)
		for _, b := range w.BuildingsOf(0) {
			if b.Type == BuildingBarracks {
				b.Health = 100
			}
		}
		return w
	}
	heal := func(w *World) float64 {
		w.RunTicks(10)
		for _, b := range w.BuildingsOf(0) {
			if b.Type == BuildingBarracks {
				return b.Health - 100
			}
		}
		return 0
	}
	atCap := heal(mk(3))
	overCap := heal(mk(6))
	if atCap <= 0 {
		t.Fatal("builders did not repair")
	}
	if overCap > atCap+0.01 {
		t.Fatalf("repair exceeded the cap: %.2f vs %.2f", overCap, atCap)
	}
}

func TestMineSnapsToSpotAndFreesOnce(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithUnit(0, UnitBuilder, 860, 1200),
		WithGold(0, 500, 0),
	)
	spot := w.Map.Islands[0].Spots[0].Pos // gold spot at (760, 1120)
	b, err := w.BuildStructure(0, BuildingMine, spot.Add(20, 15))
	if err != nil {
		t.Fatalf("mine denied: %v", err)
	}
	if b.Pos.Dist(spot) > 0.5 {
		t.Fatalf("mine did not snap to the spot: %v vs %v", b.Pos, spot)
	}
	if w.islands[0].Spots[0].Occupant != b.ID {
		t.Fatal("spot not marked occupied")
	}

	// A second mine on the same spot must be refused.
	if _, err := w.BuildStructure(0, BuildingMine, spot); err == nil {
		t.Fatal("occupied spot accepted a second mine")
	}

	b.Health = 0
	w.Step()
	if w.islands[0].Spots[0].Occupant != NoEntity {
		t.Fatal("spot not freed on destruction")
	}
}

func TestExtractorIncome(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithUnit(0, UnitBuilder, 860, 1200),
		WithGold(0, 500, 0),
	)
	spot := w.Map.Islands[0].Spots[0].Pos
	b, err := w.BuildStructure(0, BuildingMine, spot)
	if err != nil {
		t.Fatalf("mine denied: %v", err)
	}
	b.Progress = 100
	b.Health = BuildingMine.Spec().MaxHealth

	gold := w.Player(0).Gold
	w.RunTicks(w.Tun.IncomeEvery + 1)
	if w.Player(0).Gold <= gold {
		t.Fatalf("no income from completed mine: %d -> %d", gold, w.Player(0).Gold)
	}
}
