package game

import (
	"islandwar/internal/geom"
	"islandwar/internal/worldmap"
)

// EntityID identifies a unit, building or link. IDs are never reused within
// a match; lookups go through the world's id registries so a stale id simply
// resolves to nil instead of a dangling pointer.
type EntityID int

// PlayerID indexes into the world's player table. -1 means neutral.
type PlayerID int

const NeutralPlayer PlayerID = -1

// Domain is the movement/targeting class of an entity. It fixes which
// terrain is valid and which weapons can reach it, and never changes for
// the lifetime of a unit.
type Domain int

const (
	DomainGround Domain = iota
	DomainWater
	DomainAirLow
	DomainAirHigh
)

func (d Domain) String() string {
	switch d {
	case DomainGround:
		return "ground"
	case DomainWater:
		return "water"
	case DomainAirLow:
		return "air-low"
	case DomainAirHigh:
		return "air-high"
	default:
		return "unknown"
	}
}

// Air reports whether the domain ignores terrain (map bounds only).
func (d Domain) Air() bool {
	return d == DomainAirLow || d == DomainAirHigh
}

// Status is a unit's coarse activity state.
type Status int

const (
	StatusIdle Status = iota
	StatusMoving
	StatusFighting
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusMoving:
		return "moving"
	case StatusFighting:
		return "fighting"
	default:
		return "unknown"
	}
}

// WeaponKind selects the fire-resolution mode in the combat pass.
type WeaponKind int

const (
	WeaponNone    WeaponKind = iota
	WeaponInstant            // single-target instant hit
	WeaponBeam               // sustained lock, damage in sub-ticks
	WeaponArea               // burst around the impact point
)

// UnitType enumerates every recruitable unit.
type UnitType int

const (
	UnitBuilder UnitType = iota
	UnitSoldier
	UnitTank
	UnitArcer
	UnitMortar
	UnitGunboat
	UnitDestroyer
	UnitCarrier
	UnitGunship
	UnitBomber

	unitTypeCount
)

func (t UnitType) String() string {
	switch t {
	case UnitBuilder:
		return "builder"
	case UnitSoldier:
		return "soldier"
	case UnitTank:
		return "tank"
	case UnitArcer:
		return "arcer"
	case UnitMortar:
		return "mortar"
	case UnitGunboat:
		return "gunboat"
	case UnitDestroyer:
		return "destroyer"
	case UnitCarrier:
		return "carrier"
	case UnitGunship:
		return "gunship"
	case UnitBomber:
		return "bomber"
	default:
		return "unknown"
	}
}

// unitSpec is the static per-type table; the single source of truth for
// domain classification, combat stats and costs. Replaces any string-based
// type checks with one lookup.
type unitSpec struct {
	Domain       Domain
	MaxHealth    float64
	Damage       float64
	Range        float64
	Cooldown     int // ticks between shots
	Weapon       WeaponKind
	CanAttackAir bool
	Speed        float64 // world units per tick
	Radius       float64
	Mass         float64
	CostGold     int
	CostOil      int
	BuildTicks   int  // production time
	Combat       bool // roster-eligible for attack FSMs
	CargoCap     int  // transport capacity (ground units)
	AoERadius    float64
	Produces     []UnitType
}

var unitSpecs = [unitTypeCount]unitSpec{
	UnitBuilder: {Domain: DomainGround, MaxHealth: 60, Speed: 2.4, Radius: 10, Mass: 1,
		CostGold: 80, BuildTicks: 150},
	UnitSoldier: {Domain: DomainGround, MaxHealth: 100, Damage: 9, Range: 140, Cooldown: 24,
		Weapon: WeaponInstant, CanAttackAir: true, Speed: 2.2, Radius: 10, Mass: 1,
		CostGold: 100, BuildTicks: 180, Combat: true},
	UnitTank: {Domain: DomainGround, MaxHealth: 320, Damage: 30, Range: 200, Cooldown: 50,
		Weapon: WeaponInstant, Speed: 1.8, Radius: 16, Mass: 4,
		CostGold: 300, CostOil: 40, BuildTicks: 360, Combat: true},
	UnitArcer: {Domain: DomainGround, MaxHealth: 140, Damage: 4, Range: 180, Cooldown: 80,
		Weapon: WeaponBeam, CanAttackAir: true, Speed: 1.9, Radius: 12, Mass: 2,
		CostGold: 260, CostOil: 20, BuildTicks: 320, Combat: true},
	UnitMortar: {Domain: DomainGround, MaxHealth: 110, Damage: 24, Range: 320, Cooldown: 90,
		Weapon: WeaponArea, Speed: 1.5, Radius: 12, Mass: 2, AoERadius: 70,
		CostGold: 280, BuildTicks: 340, Combat: true},
	UnitGunboat: {Domain: DomainWater, MaxHealth: 220, Damage: 18, Range: 240, Cooldown: 40,
		Weapon: WeaponInstant, Speed: 2.6, Radius: 16, Mass: 3,
		CostGold: 240, CostOil: 20, BuildTicks: 300, Combat: true},
	UnitDestroyer: {Domain: DomainWater, MaxHealth: 420, Damage: 34, Range: 320, Cooldown: 55,
		Weapon: WeaponInstant, CanAttackAir: true, Speed: 2.1, Radius: 20, Mass: 6,
		CostGold: 480, CostOil: 80, BuildTicks: 480, Combat: true},
	UnitCarrier: {Domain: DomainWater, MaxHealth: 500, Speed: 1.7, Radius: 24, Mass: 8,
		CostGold: 420, CostOil: 60, BuildTicks: 460, CargoCap: 6,
		Produces: []UnitType{UnitGunship}},
	UnitGunship: {Domain: DomainAirLow, MaxHealth: 160, Damage: 14, Range: 220, Cooldown: 30,
		Weapon: WeaponInstant, CanAttackAir: true, Speed: 3.4, Radius: 13, Mass: 2,
		CostGold: 360, CostOil: 60, BuildTicks: 380, Combat: true},
	UnitBomber: {Domain: DomainAirHigh, MaxHealth: 200, Damage: 40, Range: 260, Cooldown: 120,
		Weapon: WeaponArea, Speed: 3.0, Radius: 15, Mass: 3, AoERadius: 90,
		CostGold: 520, CostOil: 120, BuildTicks: 520, Combat: true},
}

// Spec returns the static table entry for a unit type.
func (t UnitType) Spec() unitSpec {
	return unitSpecs[t]
}

// BuildingType enumerates every placeable structure.
type BuildingType int

const (
	BuildingHQ BuildingType = iota
	BuildingBarracks
	BuildingFactory
	BuildingHarbor
	BuildingAirfield
	BuildingMine
	BuildingRig
	BuildingTower
	BuildingWallNode
	BuildingBridgeNode

	buildingTypeCount
)

func (t BuildingType) String() string {
	switch t {
	case BuildingHQ:
		return "headquarters"
	case BuildingBarracks:
		return "barracks"
	case BuildingFactory:
		return "factory"
	case BuildingHarbor:
		return "harbor"
	case BuildingAirfield:
		return "airfield"
	case BuildingMine:
		return "mine"
	case BuildingRig:
		return "rig"
	case BuildingTower:
		return "tower"
	case BuildingWallNode:
		return "wall node"
	case BuildingBridgeNode:
		return "bridge node"
	default:
		return "unknown"
	}
}

type buildingSpec struct {
	MaxHealth    float64
	CostGold     int
	CostOil      int
	BuildTicks   int // full construction time at one builder
	Radius       float64
	Mass         float64 // 0 = immovable (infinite mass)
	Damage       float64
	Range        float64
	Cooldown     int
	CanAttackAir bool
	Produces     []UnitType
	NeedsSpot    bool
	SpotKind     worldmap.SpotKind
	Instant      bool // completes on placement (link nodes)
}

var buildingSpecs = [buildingTypeCount]buildingSpec{
	BuildingHQ: {MaxHealth: 1500, CostGold: 800, BuildTicks: 900, Radius: 48, Mass: 60,
		Produces: []UnitType{UnitBuilder}},
	BuildingBarracks: {MaxHealth: 500, CostGold: 220, BuildTicks: 360, Radius: 32, Mass: 40,
		Produces: []UnitType{UnitSoldier, UnitArcer, UnitMortar}},
	BuildingFactory: {MaxHealth: 650, CostGold: 380, CostOil: 40, BuildTicks: 480, Radius: 36, Mass: 45,
		Produces: []UnitType{UnitTank}},
	BuildingHarbor: {MaxHealth: 600, CostGold: 360, BuildTicks: 460, Radius: 40, Mass: 45,
		Produces: []UnitType{UnitGunboat, UnitDestroyer, UnitCarrier}},
	BuildingAirfield: {MaxHealth: 550, CostGold: 420, CostOil: 60, BuildTicks: 520, Radius: 40, Mass: 45,
		Produces: []UnitType{UnitGunship, UnitBomber}},
	BuildingMine: {MaxHealth: 400, CostGold: 150, BuildTicks: 300, Radius: 26,
		NeedsSpot: true, SpotKind: worldmap.SpotGold},
	BuildingRig: {MaxHealth: 400, CostGold: 250, BuildTicks: 380, Radius: 28,
		NeedsSpot: true, SpotKind: worldmap.SpotOil},
	BuildingTower: {MaxHealth: 450, CostGold: 40, BuildTicks: 260, Radius: 20, Mass: 40,
		Damage: 22, Range: 280, Cooldown: 36, CanAttackAir: true},
	BuildingWallNode:   {MaxHealth: 250, CostGold: 30, Radius: 10, Mass: 40, Instant: true},
	BuildingBridgeNode: {MaxHealth: 300, CostGold: 60, Radius: 12, Mass: 40, Instant: true},
}

// Spec returns the static table entry for a building type.
func (t BuildingType) Spec() buildingSpec {
	return buildingSpecs[t]
}

// Immovable reports whether collision separation may never displace this
// building (resource extractors are anchored to their spot).
func (t BuildingType) Immovable() bool {
	return buildingSpecs[t].Mass == 0
}

// producerOf returns true if the building type can train the unit type.
func (t BuildingType) producerOf(u UnitType) bool {
	for _, p := range buildingSpecs[t].Produces {
		if p == u {
			return true
		}
	}
	return false
}

// producerOf returns true if the unit type can train the unit type.
func (t UnitType) producerOf(u UnitType) bool {
	for _, p := range unitSpecs[t].Produces {
		if p == u {
			return true
		}
	}
	return false
}

// Production is one queued unit under training.
type Production struct {
	Type     UnitType
	Progress float64 // 0..100
}

// Unit is a mobile entity. Mutated only by the tick loop.
type Unit struct {
	ID     EntityID
	Owner  PlayerID
	Type   UnitType
	Pos    geom.Point
	Health float64
	Status Status

	// Movement intent. Target nil means no destination. Waypoints, when
	// non-empty, are consumed front to back before heading to Target.
	// Overwriting these is the only cancellation primitive.
	Target       *geom.Point
	TargetIsland int // -1 when not island-bound
	Waypoints    []geom.Point

	CooldownLeft int

	// Beam lock state (WeaponBeam types only).
	BeamTarget EntityID
	BeamLeft   int // remaining beam ticks; 0 = no lock

	// Transport cargo (unit ids riding this transport).
	Cargo []EntityID

	// Training queue (producer types only; the carrier).
	Queue []Production

	// Embarked units stay in the id registry but leave the live list;
	// no pass touches them until unload.
	Embarked bool

	stuck    int // consecutive ticks without forward progress
	replanIn int // ticks until the planner may be consulted again
}

// Alive reports whether the unit is still in play.
func (u *Unit) Alive() bool {
	return u.Health > 0
}

// Moving reports whether the unit has a movement intent.
func (u *Unit) Moving() bool {
	return u.Target != nil
}

// Building is a static entity anchored to an island (rigs anchor to an
// open-water oil spot and carry Island == -1).
type Building struct {
	ID       EntityID
	Owner    PlayerID
	Type     BuildingType
	Island   int
	Pos      geom.Point // world position
	Rel      geom.Point // position relative to the island centroid
	Health   float64
	Progress float64 // construction 0..100; 100 = complete
	Queue    []Production

	CooldownLeft int
	Upgraded     bool // tower: rocket battery installed
	rocketCD     int  // secondary weapon cooldown

	// SpotRef points at the resource spot this extractor occupies:
	// island id (or -1 for open water) and spot index. Freed exactly once
	// on destruction.
	SpotIsland int
	SpotIdx    int
}

// Constructing reports whether the building is still being built.
func (b *Building) Constructing() bool {
	return b.Progress < 100
}

// Alive reports whether the building still stands.
func (b *Building) Alive() bool {
	return b.Health > 0
}

// LinkKind distinguishes the three connection types.
type LinkKind int

const (
	LinkWall LinkKind = iota
	LinkGate
	LinkBridge
)

func (k LinkKind) String() string {
	switch k {
	case LinkWall:
		return "wall"
	case LinkGate:
		return "gate"
	case LinkBridge:
		return "bridge"
	default:
		return "unknown"
	}
}

// Link connects exactly two node buildings of matching kind. Walls block
// every unit, gates are transparent to their owner only, bridges never
// block and carry ground units between islands.
type Link struct {
	ID     EntityID
	Kind   LinkKind
	Owner  PlayerID
	A, B   EntityID // node building ids
	Health float64
}

// PlayerStatus tracks elimination.
type PlayerStatus int

const (
	PlayerActive PlayerStatus = iota
	PlayerEliminated
)

func (s PlayerStatus) String() string {
	if s == PlayerEliminated {
		return "eliminated"
	}
	return "active"
}

// Player holds per-player match state.
type Player struct {
	ID         PlayerID
	Name       string
	Gold       int
	Oil        int
	Status     PlayerStatus
	Bot        bool
	Difficulty int // 1..10, bots only
	GodMode    bool

	bot        *Bot
	lastDenial string
}

// ResourceSpot is the runtime occupancy state of a static deposit.
// Occupant is the live extractor building id, or NoEntity.
type ResourceSpot struct {
	Kind     worldmap.SpotKind
	Pos      geom.Point
	Occupant EntityID
	Owner    PlayerID // oil spots keep their developer's ownership
}

// NoEntity is the null EntityID.
const NoEntity EntityID = 0

// IslandState is the mutable side of an island: current owner and the
// buildings standing on it. Static geometry stays in worldmap.
type IslandState struct {
	Owner     PlayerID
	Buildings []EntityID
	Spots     []ResourceSpot
}
