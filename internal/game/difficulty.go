package game

// DifficultyProfile parameterizes every bot threshold. One row per tier;
// behavior code never branches on the raw tier number, only on the profile.
type DifficultyProfile struct {
	Tier          int
	ThinkInterval int     // ticks between decision passes
	APMRate       float64 // mutating calls per second, continuous refill
	APMBurst      int     // bucket capacity

	// Attack lifecycle.
	AttackStartDelay int     // ticks before the first attack may launch
	RosterMin        int     // minimum roster before RALLY
	SoftArmyCap      int     // soft ceiling the attack score normalizes on
	ArmyMinFrac      float64 // fraction of SoftArmyCap below which attack scores zero
	FailsafeWait     int     // ticks in BUILD_ARMY before any non-zero roster launches
	HumanBias        bool    // prefer human targets when picking a base

	// Defense.
	ThreatRadius float64

	// Fortification plan sizes. Opening is the fast/cheap sequence that
	// must complete before the full plan resumes.
	OpeningTowers int
	OpeningNodes  int
	FinalTowers   int
	FinalNodes    int
}

// difficultyTable maps tier 1..10 to a profile. Index 0 is unused.
var difficultyTable = [11]DifficultyProfile{
	1:  {Tier: 1, ThinkInterval: 150, APMRate: 0.8, APMBurst: 4, AttackStartDelay: 10800, RosterMin: 6, SoftArmyCap: 10, ArmyMinFrac: 0.60, FailsafeWait: 16200, ThreatRadius: 360, OpeningTowers: 1, OpeningNodes: 3, FinalTowers: 2, FinalNodes: 5},
	2:  {Tier: 2, ThinkInterval: 135, APMRate: 1.0, APMBurst: 5, AttackStartDelay: 9600, RosterMin: 6, SoftArmyCap: 12, ArmyMinFrac: 0.58, FailsafeWait: 14400, ThreatRadius: 380, OpeningTowers: 1, OpeningNodes: 3, FinalTowers: 2, FinalNodes: 6},
	3:  {Tier: 3, ThinkInterval: 120, APMRate: 1.3, APMBurst: 6, AttackStartDelay: 8400, RosterMin: 7, SoftArmyCap: 14, ArmyMinFrac: 0.56, FailsafeWait: 12600, ThreatRadius: 400, OpeningTowers: 2, OpeningNodes: 4, FinalTowers: 3, FinalNodes: 6},
	4:  {Tier: 4, ThinkInterval: 105, APMRate: 1.6, APMBurst: 7, AttackStartDelay: 7200, RosterMin: 7, SoftArmyCap: 16, ArmyMinFrac: 0.55, FailsafeWait: 10800, ThreatRadius: 420, OpeningTowers: 2, OpeningNodes: 4, FinalTowers: 3, FinalNodes: 7},
	5:  {Tier: 5, ThinkInterval: 90, APMRate: 2.0, APMBurst: 8, AttackStartDelay: 6000, RosterMin: 8, SoftArmyCap: 18, ArmyMinFrac: 0.55, FailsafeWait: 9000, ThreatRadius: 450, OpeningTowers: 2, OpeningNodes: 5, FinalTowers: 4, FinalNodes: 8},
	6:  {Tier: 6, ThinkInterval: 75, APMRate: 2.5, APMBurst: 9, AttackStartDelay: 5100, RosterMin: 8, SoftArmyCap: 20, ArmyMinFrac: 0.55, FailsafeWait: 7800, ThreatRadius: 480, OpeningTowers: 3, OpeningNodes: 5, FinalTowers: 4, FinalNodes: 8, HumanBias: true},
	7:  {Tier: 7, ThinkInterval: 60, APMRate: 3.0, APMBurst: 10, AttackStartDelay: 4200, RosterMin: 9, SoftArmyCap: 22, ArmyMinFrac: 0.55, FailsafeWait: 6600, ThreatRadius: 520, OpeningTowers: 3, OpeningNodes: 6, FinalTowers: 5, FinalNodes: 9, HumanBias: true},
	8:  {Tier: 8, ThinkInterval: 50, APMRate: 3.6, APMBurst: 12, AttackStartDelay: 3600, RosterMin: 9, SoftArmyCap: 24, ArmyMinFrac: 0.55, FailsafeWait: 5400, ThreatRadius: 560, OpeningTowers: 3, OpeningNodes: 6, FinalTowers: 5, FinalNodes: 10, HumanBias: true},
	9:  {Tier: 9, ThinkInterval: 40, APMRate: 4.4, APMBurst: 14, AttackStartDelay: 3000, RosterMin: 10, SoftArmyCap: 26, ArmyMinFrac: 0.55, FailsafeWait: 4500, ThreatRadius: 600, OpeningTowers: 4, OpeningNodes: 7, FinalTowers: 6, FinalNodes: 11, HumanBias: true},
	10: {Tier: 10, ThinkInterval: 30, APMRate: 5.5, APMBurst: 16, AttackStartDelay: 2400, RosterMin: 10, SoftArmyCap: 30, ArmyMinFrac: 0.55, FailsafeWait: 3600, ThreatRadius: 650, OpeningTowers: 4, OpeningNodes: 8, FinalTowers: 6, FinalNodes: 12, HumanBias: true},
}

// ProfileFor clamps the tier into 1..10 and returns its profile.
func ProfileFor(tier int) DifficultyProfile {
	if tier < 1 {
		tier = 1
	}
	if tier > 10 {
		tier = 10
	}
	return difficultyTable[tier]
}
