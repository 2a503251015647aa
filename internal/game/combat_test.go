package game

import "testing"

func TestFireRateRespected(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithPlayer("p2"),
		WithUnit(0, UnitSoldier, 700, 1100),
		WithUnit(1, UnitBuilder, 700, 1180),
	)
	victim := w.UnitsOf(1)[len(w.UnitsOf(1))-1]
	cd := UnitSoldier.Spec().Cooldown
	shots := int(UnitBuilder.Spec().MaxHealth/UnitSoldier.Spec().Damage) + 1

	end := w.RunUntil(func(*World) bool { return !victim.Alive() || w.Unit(victim.ID) == nil }, 400)
	if end < 0 {
		t.Fatal("victim never died")
	}
	// First shot lands on the first combat pass; each further shot waits
	// out the full cooldown.
	if minTick := (shots - 1) * cd; end < minTick {
		t.Fatalf("kill at tick %d, cooldown floor is %d", end, minTick)
	}
}

func TestBeamLockPersists(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithPlayer("p2"),
		WithUnit(0, UnitArcer, 700, 1100),
		WithUnit(1, UnitTank, 700, 1250),
	)
	tank := w.UnitsOf(1)[len(w.UnitsOf(1))-1]
	arcer := w.UnitsOf(0)[len(w.UnitsOf(0))-1]

	w.RunTicks(2)
	if arcer.BeamTarget != tank.ID {
		t.Fatalf("beam target = %d, want %d", arcer.BeamTarget, tank.ID)
	}
	h1 := tank.Health
	w.RunTicks(5)
	if tank.Health >= h1 {
		t.Fatal("beam should deal damage every tick while locked")
	}

	// A closer enemy walking in must not steal the lock mid-beam.
	closer := w.spawnUnit(1, UnitBuilder, arcer.Pos.Add(0, 60))
	w.RunTicks(3)
	if arcer.BeamLeft > 0 && arcer.BeamTarget != tank.ID {
		t.Fatalf("lock re-rolled to %d while beam still active", arcer.BeamTarget)
	}
	_ = closer
}

func TestAreaBurstHitsGroup(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithPlayer("p2"),
		WithUnit(0, UnitMortar, 700, 1000),
		WithUnit(1, UnitBuilder, 700, 1260),
		WithUnit(1, UnitBuilder, 740, 1260),
		WithUnit(1, UnitBuilder, 660, 1260),
	)
	w.RunTicks(2)
	hurt := 0
	for _, u := range w.UnitsOf(1) {
		if u.Type == UnitBuilder && u.Health < UnitBuilder.Spec().MaxHealth {
			hurt++
		}
	}
	if hurt < 3 {
		t.Fatalf("area burst hurt %d of 3 clustered units", hurt)
	}
}

func TestGodModeSuppressesDamage(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithPlayer("p2"),
		WithUnit(0, UnitSoldier, 700, 1100),
		WithUnit(1, UnitBuilder, 700, 1180),
	)
	if err := w.SetGodMode(1, true); err != nil {
		t.Fatalf("god mode: %v", err)
	}
	victim := w.UnitsOf(1)[len(w.UnitsOf(1))-1]
	w.RunTicks(120)
	if victim.Health != UnitBuilder.Spec().MaxHealth {
		t.Fatalf("god-mode unit took damage: %.1f", victim.Health)
	}
}

func TestUpgradedTowerRocketReach(t *testing.T) {
	w := NewTestWorld(
		WithPlayer("p1"),
		WithPlayer("p2"),
		WithBuilding(0, BuildingTower, 900, 1100),
		WithUnit(1, UnitBuilder, 1200, 1100), // 300 away: past primary range, inside rocket range
		WithGold(0, 1000, 0),
	)
	victim := w.UnitsOf(1)[len(w.UnitsOf(1))-1]
	var tower *Building
	for _, b := range w.BuildingsOf(0) {
		if b.Type == BuildingTower {
			tower = b
		}
	}

	w.RunTicks(30)
	if victim.Health < UnitBuilder.Spec().MaxHealth {
		t.Fatal("primary weapon should not reach 300 units")
	}
	if err := w.UpgradeBuilding(0, tower.ID); err != nil {
		t.Fatalf("upgrade denied: %v", err)
	}
	w.RunTicks(30)
	if victim.Health >= UnitBuilder.Spec().MaxHealth {
		t.Fatal("rocket battery should reach 300 units")
	}
}
