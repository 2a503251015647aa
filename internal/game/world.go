package game

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"islandwar/internal/geom"
	"islandwar/internal/worldmap"
)

// World is the authoritative match state. All mutation happens on the tick
// goroutine; the only concession to the outside is the command inbox, which
// external callers append to and the tick drains at its start.
type World struct {
	Map *worldmap.Map
	Tun Tuning

	Tick int

	units     []*Unit
	buildings []*Building
	links     []*Link

	unitByID     map[EntityID]*Unit
	buildingByID map[EntityID]*Building
	linkByID     map[EntityID]*Link

	players  []*Player
	islands  []IslandState
	oilSpots []ResourceSpot

	nextID EntityID

	// Island-pair path cache. Invalidated only on link create/delete;
	// ownership changes that could affect traversal do NOT invalidate it,
	// matching the original behavior (known staleness, kept on purpose).
	islandPaths map[[2]int][]int

	inboxMu sync.Mutex
	inbox   []Command

	Over   bool
	Winner PlayerID

	elimLog []PlayerID // one entry per elimination event

	diag TickDiag
	Log  *SimLog

	events []ReplayEvent

	rng   *rand.Rand
	epoch time.Time // synthetic clock base for the APM buckets
}

// NewWorld builds an empty world over a finished map.
func NewWorld(m *worldmap.Map, tun Tuning, seed int64) *World {
	w := &World{
		Map:          m,
		Tun:          tun,
		unitByID:     make(map[EntityID]*Unit),
		buildingByID: make(map[EntityID]*Building),
		linkByID:     make(map[EntityID]*Link),
		islandPaths:  make(map[[2]int][]int),
		Winner:       NeutralPlayer,
		Log:          NewSimLog(false),
		rng:          rand.New(rand.NewSource(seed)), // #nosec G404 -- match sim, not crypto
		epoch:        time.Unix(0, 0),
	}
	w.islands = make([]IslandState, len(m.Islands))
	for i := range m.Islands {
		st := IslandState{Owner: NeutralPlayer}
		for _, sp := range m.Islands[i].Spots {
			st.Spots = append(st.Spots, ResourceSpot{Kind: sp.Kind, Pos: sp.Pos, Occupant: NoEntity, Owner: NeutralPlayer})
		}
		w.islands[i] = st
	}
	for _, sp := range m.OilSpots {
		w.oilSpots = append(w.oilSpots, ResourceSpot{Kind: sp.Kind, Pos: sp.Pos, Occupant: NoEntity, Owner: NeutralPlayer})
	}
	return w
}

// now returns the synthetic wall-clock time for the current tick, used by
// the APM rate limiters so headless runs stay deterministic.
func (w *World) now() time.Time {
	return w.epoch.Add(time.Duration(w.Tick) * time.Duration(w.Tun.TickMs) * time.Millisecond)
}

func (w *World) allocID() EntityID {
	w.nextID++
	return w.nextID
}

// Unit returns the live unit with the given id, or nil.
func (w *World) Unit(id EntityID) *Unit { return w.unitByID[id] }

// Building returns the live building with the given id, or nil.
func (w *World) Building(id EntityID) *Building { return w.buildingByID[id] }

// Link returns the live link with the given id, or nil.
func (w *World) Link(id EntityID) *Link { return w.linkByID[id] }

// Player returns the player record, or nil.
func (w *World) Player(id PlayerID) *Player {
	if id < 0 || int(id) >= len(w.players) {
		return nil
	}
	return w.players[id]
}

// Players returns the player table.
func (w *World) Players() []*Player { return w.players }

// Units returns the live unit list in deterministic order.
func (w *World) Units() []*Unit { return w.units }

// Buildings returns the live building list in deterministic order.
func (w *World) Buildings() []*Building { return w.buildings }

// Links returns the live link list.
func (w *World) Links() []*Link { return w.links }

// Island returns the runtime state of island id.
func (w *World) Island(id int) *IslandState {
	if id < 0 || id >= len(w.islands) {
		return nil
	}
	return &w.islands[id]
}

// AddPlayer registers a player and assigns their starting base: an instantly
// complete headquarters on the first unclaimed island plus one builder next
// to it. Safe to call mid-match (late join).
func (w *World) AddPlayer(name string, bot bool, difficulty int) PlayerID {
	id := PlayerID(len(w.players))
	p := &Player{ID: id, Name: name, Gold: 600, Oil: 0, Bot: bot, Difficulty: difficulty}
	w.players = append(w.players, p)

	isl := w.freeStartIsland()
	if isl >= 0 {
		c := w.Map.Islands[isl].Poly.Centroid()
		hq := w.placeBuilding(id, BuildingHQ, isl, c, true)
		w.islands[isl].Owner = id
		spawn := w.findSpawnPos(c, BuildingHQ.Spec().Radius, UnitBuilder.Spec().Radius, DomainGround)
		w.spawnUnit(id, UnitBuilder, spawn)
		_ = hq
	}
	if bot {
		p.bot = newBot(w, p)
	}
	w.record("player_join", map[string]any{"player": int(id), "name": name, "bot": bot})
	return id
}

// RemovePlayer handles a disconnect notification from the session layer.
// Bots keep playing; humans are eliminated.
func (w *World) RemovePlayer(id PlayerID) {
	p := w.Player(id)
	if p == nil || p.Bot {
		return
	}
	w.eliminate(id)
}

// freeStartIsland picks the first island with no owner and no HQ.
func (w *World) freeStartIsland() int {
	for i := range w.islands {
		if w.islands[i].Owner == NeutralPlayer && !w.islandHasHQ(i) {
			return i
		}
	}
	return -1
}

func (w *World) islandHasHQ(isl int) bool {
	for _, bid := range w.islands[isl].Buildings {
		if b := w.Building(bid); b != nil && b.Type == BuildingHQ {
			return true
		}
	}
	return false
}

// Submit queues a command from the boundary; it becomes visible at the
// start of the next tick.
func (w *World) Submit(c Command) {
	w.inboxMu.Lock()
	w.inbox = append(w.inbox, c)
	w.inboxMu.Unlock()
}

// Step advances the world one tick. Pass order is fixed: queued commands,
// agent decisions, movement, collision separation, combat, construction,
// corruption repair, cleanup of dead entities, capture checks, match end.
func (w *World) Step() {
	if w.Over {
		return
	}
	w.Tick++
	w.diag = TickDiag{Tick: w.Tick, AgentReasons: map[PlayerID]string{}}

	w.drainInbox()
	w.agentPass()
	w.movementPass()
	w.collisionPass()
	w.combatPass()
	w.constructionPass()
	w.repairCorruptPositions()
	w.cleanupPass()
	w.capturePass()
	w.checkMatchEnd()
}

// RunTicks advances n ticks (stops early once the match is over).
func (w *World) RunTicks(n int) {
	for i := 0; i < n && !w.Over; i++ {
		w.Step()
	}
}

// RunUntil steps until the predicate holds or maxTicks elapse. Returns the
// tick at which the predicate was satisfied, or -1.
func (w *World) RunUntil(pred func(*World) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		w.Step()
		if pred(w) {
			return w.Tick
		}
	}
	return -1
}

func (w *World) drainInbox() {
	w.inboxMu.Lock()
	cmds := w.inbox
	w.inbox = nil
	w.inboxMu.Unlock()
	for _, c := range cmds {
		w.Apply(c)
	}
}

// agentPass runs every bot whose think interval has elapsed. A panicking
// bot is isolated: its decision pass is skipped this tick, the fault is
// recorded, and the match continues.
func (w *World) agentPass() {
	for _, p := range w.players {
		if !p.Bot || p.Status != PlayerActive || p.bot == nil {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					w.diag.AgentFaults++
					w.diag.AgentReasons[p.ID] = "fault"
					w.Log.Add(w.Tick, p.Name, "agent", "fault", "decision pass panicked", 0)
				}
			}()
			p.bot.Think()
		}()
	}
}

// repairCorruptPositions finds NaN coordinates and relocates the entity to
// a known-safe owned location, forcing it idle. Logged, never fatal.
func (w *World) repairCorruptPositions() {
	for _, u := range w.units {
		if !math.IsNaN(u.Pos.X) && !math.IsNaN(u.Pos.Y) {
			continue
		}
		safe := w.safePosFor(u.Owner)
		u.Pos = safe
		u.Target = nil
		u.Waypoints = nil
		u.TargetIsland = -1
		u.Status = StatusIdle
		w.diag.Repairs++
		w.Log.Add(w.Tick, w.playerName(u.Owner), "repair", "nan_position",
			u.Type.String(), float64(u.ID))
	}
}

// safePosFor returns the owner's HQ position, or the map center.
func (w *World) safePosFor(pid PlayerID) geom.Point {
	if hq := w.playerHQ(pid); hq != nil {
		return hq.Pos.Add(hq.Type.Spec().Radius+20, 0)
	}
	return geom.Point{X: w.Map.Width / 2, Y: w.Map.Height / 2}
}

// playerHQ returns the player's headquarters, or nil.
func (w *World) playerHQ(pid PlayerID) *Building {
	for _, b := range w.buildings {
		if b.Owner == pid && b.Type == BuildingHQ {
			return b
		}
	}
	return nil
}

func (w *World) playerName(pid PlayerID) string {
	if p := w.Player(pid); p != nil {
		return p.Name
	}
	return "--"
}

// Diag returns the diagnostic snapshot of the last completed tick.
func (w *World) Diag() TickDiag { return w.diag }

// Eliminations returns the elimination ledger (one entry per event).
func (w *World) Eliminations() []PlayerID { return w.elimLog }

func (w *World) record(kind string, data map[string]any) {
	w.events = append(w.events, ReplayEvent{Tick: w.Tick, Kind: kind, Data: data})
}

// DrainEvents returns and clears the replay journal accumulated since the
// previous drain.
func (w *World) DrainEvents() []ReplayEvent {
	ev := w.events
	w.events = nil
	return ev
}
