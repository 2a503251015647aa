package game

import (
	"errors"
	"fmt"
	"math"

	"islandwar/internal/geom"
	"islandwar/internal/worldmap"
)

// CommandKind names the externally visible operations.
type CommandKind string

const (
	CmdMove         CommandKind = "move"
	CmdMoveIsland   CommandKind = "move_island"
	CmdBuild        CommandKind = "build"
	CmdRecruit      CommandKind = "recruit"
	CmdConnect      CommandKind = "connect"
	CmdEnsureLoop   CommandKind = "ensure_loop"
	CmdUpgrade      CommandKind = "upgrade"
	CmdGate         CommandKind = "gate"
	CmdDelete       CommandKind = "delete"
	CmdLoad         CommandKind = "load"
	CmdUnload       CommandKind = "unload"
	CmdGodMode      CommandKind = "god_mode"
)

// Command is one queued player operation. Fields beyond Kind and Player are
// interpreted per kind; the protocol layer populates them from the wire.
type Command struct {
	Kind   CommandKind
	Player PlayerID

	Units    []EntityID
	Entity   EntityID
	Other    EntityID
	X, Y     float64
	Island   int
	UnitT    UnitType
	BuildT   BuildingType
	Enable   bool
}

// ErrDenied wraps every command rejection; the reason is also stored on the
// player for the next snapshot.
var ErrDenied = errors.New("denied")

func (w *World) deny(p *Player, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p != nil {
		p.lastDenial = msg
	}
	return fmt.Errorf("%w: %s", ErrDenied, msg)
}

// Apply executes a queued command against the current tick's state.
// Failures are recorded, never fatal.
func (w *World) Apply(c Command) {
	var err error
	switch c.Kind {
	case CmdMove:
		err = w.MoveUnits(c.Player, c.Units, geom.Point{X: c.X, Y: c.Y})
	case CmdMoveIsland:
		err = w.MoveToIsland(c.Player, c.Units, c.Island)
	case CmdBuild:
		_, err = w.BuildStructure(c.Player, c.BuildT, geom.Point{X: c.X, Y: c.Y})
	case CmdRecruit:
		err = w.RecruitUnit(c.Player, c.Entity, c.UnitT)
	case CmdConnect:
		_, err = w.ConnectNodes(c.Player, c.Entity, c.Other)
	case CmdEnsureLoop:
		err = w.EnsureLoop(c.Player, c.Units)
	case CmdUpgrade:
		err = w.UpgradeBuilding(c.Player, c.Entity)
	case CmdGate:
		err = w.ConvertWallToGate(c.Player, c.Entity)
	case CmdDelete:
		err = w.DeleteEntity(c.Player, c.Entity)
	case CmdLoad:
		err = w.LoadTransport(c.Player, c.Entity)
	case CmdUnload:
		err = w.UnloadTransport(c.Player, c.Entity)
	case CmdGodMode:
		err = w.SetGodMode(c.Player, c.Enable)
	default:
		err = fmt.Errorf("unknown command %q", c.Kind)
	}
	if err != nil {
		w.Log.Add(w.Tick, w.playerName(c.Player), "command", string(c.Kind), err.Error(), 0)
	}
}

// ownedUnits filters the id list down to the player's live, unembarked
// units. Stale and foreign ids are silently dropped.
func (w *World) ownedUnits(pid PlayerID, ids []EntityID) []*Unit {
	var out []*Unit
	for _, id := range ids {
		u := w.Unit(id)
		if u != nil && u.Owner == pid && u.Alive() && !u.Embarked {
			out = append(out, u)
		}
	}
	return out
}

// MoveUnits sets a shared destination. Each unit replans independently;
// any previous intent (including island travel) is overwritten.
func (w *World) MoveUnits(pid PlayerID, ids []EntityID, dest geom.Point) error {
	p := w.Player(pid)
	if p == nil || p.Status != PlayerActive {
		return w.deny(p, "player not active")
	}
	units := w.ownedUnits(pid, ids)
	if len(units) == 0 {
		return w.deny(p, "no valid units")
	}
	for _, u := range units {
		d := dest
		u.Target = &d
		u.TargetIsland = -1
		u.Waypoints = nil
		u.stuck = 0
		w.markMoving(u)
	}
	return nil
}

// MoveToIsland routes ground units across the island graph to a target
// island. Unreachable islands are denied up front; water and air units
// just head for the island's shore or centroid directly.
func (w *World) MoveToIsland(pid PlayerID, ids []EntityID, island int) error {
	p := w.Player(pid)
	if p == nil || p.Status != PlayerActive {
		return w.deny(p, "player not active")
	}
	if w.Map.Island(island) == nil {
		return w.deny(p, "no such island %d", island)
	}
	units := w.ownedUnits(pid, ids)
	if len(units) == 0 {
		return w.deny(p, "no valid units")
	}
	center := w.Map.Islands[island].Poly.Centroid()
	for _, u := range units {
		d := u.Type.Spec().Domain
		if d != DomainGround {
			dest := center
			if d == DomainWater {
				dest = w.Map.ClosestShore(island, u.Pos)
			}
			dd := dest
			u.Target = &dd
			u.TargetIsland = island
			u.Waypoints = nil
			w.markMoving(u)
			continue
		}
		from := w.Map.IslandAt(u.Pos)
		if from < 0 {
			from = w.nearestIsland(u.Pos)
		}
		hops := w.findIslandPath(from, island)
		if hops == nil {
			return w.deny(p, "island %d unreachable", island)
		}
		u.Waypoints = w.hopWaypoints(u.Pos, hops)
		dd := center
		u.Target = &dd
		u.TargetIsland = island
		u.stuck = 0
		w.markMoving(u)
	}
	return nil
}

func (w *World) nearestIsland(p geom.Point) int {
	best, bestD := 0, -1.0
	for i := range w.Map.Islands {
		d := p.Dist(w.Map.Islands[i].Poly.Centroid())
		if bestD < 0 || d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// hopWaypoints turns an island-id path into crossing waypoints: bridge
// decks are crossed end to end along the deck axis, overlapping islands
// through the point on the next island's shore nearest the previous hop.
// Deck waypoints sit just outside the node footprints so arrival is never
// contested by the node's own collision rim.
func (w *World) hopWaypoints(from geom.Point, hops []int) []geom.Point {
	var out []geom.Point
	cur := from
	for i := 0; i+1 < len(hops); i++ {
		a, b := hops[i], hops[i+1]
		if na, nb, ok := w.bridgeBetween(a, b); ok {
			dx := nb.Pos.X - na.Pos.X
			dy := nb.Pos.Y - na.Pos.Y
			l := math.Hypot(dx, dy)
			if l < 1e-9 {
				continue
			}
			ux, uy := dx/l, dy/l
			entry := na.Pos.Add(-ux*30, -uy*30)
			exit := nb.Pos.Add(ux*30, uy*30)
			out = append(out, entry, exit)
			cur = exit
			continue
		}
		shore := w.Map.ClosestShore(b, cur)
		c := w.Map.Islands[b].Poly.Centroid()
		// Step past the shoreline onto solid ground.
		inland := shore.Lerp(c, 0.12)
		out = append(out, inland)
		cur = inland
	}
	return out
}

// bridgeBetween returns the node pair of a completed bridge joining the
// two islands, ordered a-side first.
func (w *World) bridgeBetween(a, b int) (*Building, *Building, bool) {
	for _, l := range w.links {
		if l.Kind != LinkBridge || l.Health <= 0 {
			continue
		}
		na, nb := w.Building(l.A), w.Building(l.B)
		if na == nil || nb == nil {
			continue
		}
		if na.Island == a && nb.Island == b {
			return na, nb, true
		}
		if na.Island == b && nb.Island == a {
			return nb, na, true
		}
	}
	return nil, nil, false
}

func (w *World) charge(p *Player, gold, oil int) error {
	if p.Gold < gold || p.Oil < oil {
		return w.deny(p, "need %dg %do, have %dg %do", gold, oil, p.Gold, p.Oil)
	}
	p.Gold -= gold
	p.Oil -= oil
	return nil
}

// BuildStructure places a construction site. Placement requires an owned
// builder in range, a valid legal position, and for extractors a free
// resource spot of the right kind within snap distance (the site snaps to
// the spot's exact position).
func (w *World) BuildStructure(pid PlayerID, t BuildingType, pos geom.Point) (*Building, error) {
	p := w.Player(pid)
	if p == nil || p.Status != PlayerActive {
		return nil, w.deny(p, "player not active")
	}
	spec := t.Spec()

	spotIsl, spotIdx := -1, -1
	if spec.NeedsSpot {
		var ok bool
		spotIsl, spotIdx, ok = w.freeSpotNear(pos, spec.SpotKind)
		if !ok {
			return nil, w.deny(p, "no free %s spot near (%.0f, %.0f)", t, pos.X, pos.Y)
		}
		if spotIsl >= 0 {
			pos = w.islands[spotIsl].Spots[spotIdx].Pos
		} else {
			pos = w.oilSpots[spotIdx].Pos
		}
	}

	island := w.Map.IslandAt(pos)
	d := DomainGround
	if island < 0 {
		if t != BuildingRig {
			return nil, w.deny(p, "%s must stand on land", t)
		}
		d = DomainWater
	}
	if d == DomainGround && w.Map.OnHighGround(pos) {
		return nil, w.deny(p, "cannot build on high ground")
	}
	if !w.Map.InBounds(pos) {
		return nil, w.deny(p, "out of bounds")
	}
	if !w.placementFree(t, pos, d) {
		return nil, w.deny(p, "placement blocked")
	}
	if !w.builderInRange(pid, pos) {
		return nil, w.deny(p, "no builder in range")
	}
	if err := w.charge(p, spec.CostGold, spec.CostOil); err != nil {
		return nil, err
	}

	b := w.placeBuilding(pid, t, island, pos, false)
	if spec.NeedsSpot {
		b.SpotIsland = spotIsl
		b.SpotIdx = spotIdx
		if spotIsl >= 0 {
			w.islands[spotIsl].Spots[spotIdx].Occupant = b.ID
			w.islands[spotIsl].Spots[spotIdx].Owner = pid
		} else {
			w.oilSpots[spotIdx].Occupant = b.ID
			w.oilSpots[spotIdx].Owner = pid
		}
	}
	return b, nil
}

// freeSpotNear finds an unoccupied spot of the given kind within snap
// range. Returns the owning island id (-1 for open water) and spot index.
func (w *World) freeSpotNear(pos geom.Point, kind worldmap.SpotKind) (int, int, bool) {
	bestIsl, bestIdx := -1, -1
	bestD := w.Tun.SpotSnap * w.Tun.SpotSnap
	for i := range w.islands {
		for j := range w.islands[i].Spots {
			sp := &w.islands[i].Spots[j]
			if sp.Kind != kind || sp.Occupant != NoEntity {
				continue
			}
			if d := pos.DistSq(sp.Pos); d < bestD {
				bestD, bestIsl, bestIdx = d, i, j
			}
		}
	}
	for j := range w.oilSpots {
		sp := &w.oilSpots[j]
		if sp.Kind != kind || sp.Occupant != NoEntity {
			continue
		}
		if d := pos.DistSq(sp.Pos); d < bestD {
			bestD, bestIsl, bestIdx = d, -1, j
		}
	}
	return bestIsl, bestIdx, bestIdx >= 0
}

func (w *World) builderInRange(pid PlayerID, pos geom.Point) bool {
	for _, u := range w.units {
		if u.Type == UnitBuilder && u.Owner == pid && u.Alive() && !u.Embarked {
			if u.Pos.Dist(pos) <= w.Tun.BuilderRange {
				return true
			}
		}
	}
	return false
}

// RecruitUnit appends a training order to a completed producer's queue.
// The producer is a building or a queue-carrying unit; the carrier trains
// its air wing at sea.
func (w *World) RecruitUnit(pid PlayerID, producer EntityID, t UnitType) error {
	p := w.Player(pid)
	if p == nil || p.Status != PlayerActive {
		return w.deny(p, "player not active")
	}
	spec := t.Spec()
	if b := w.Building(producer); b != nil {
		if b.Owner != pid {
			return w.deny(p, "no such producer")
		}
		if b.Constructing() {
			return w.deny(p, "%s still under construction", b.Type)
		}
		if !b.Type.producerOf(t) {
			return w.deny(p, "%s cannot train %s", b.Type, t)
		}
		if err := w.charge(p, spec.CostGold, spec.CostOil); err != nil {
			return err
		}
		b.Queue = append(b.Queue, Production{Type: t})
		return nil
	}
	u := w.Unit(producer)
	if u == nil || u.Owner != pid {
		return w.deny(p, "no such producer")
	}
	if !u.Type.producerOf(t) {
		return w.deny(p, "%s cannot train %s", u.Type, t)
	}
	if err := w.charge(p, spec.CostGold, spec.CostOil); err != nil {
		return err
	}
	u.Queue = append(u.Queue, Production{Type: t})
	return nil
}

// ConnectNodes creates a link between two completed node buildings of the
// same kind owned by the player. Wall nodes yield walls, bridge nodes
// yield bridges; length limits and per-length cost apply. Creating a link
// flushes the island path cache.
func (w *World) ConnectNodes(pid PlayerID, a, b EntityID) (*Link, error) {
	p := w.Player(pid)
	if p == nil || p.Status != PlayerActive {
		return nil, w.deny(p, "player not active")
	}
	na, nb := w.Building(a), w.Building(b)
	if na == nil || nb == nil || na.Owner != pid || nb.Owner != pid {
		return nil, w.deny(p, "both nodes must be yours")
	}
	if na.ID == nb.ID {
		return nil, w.deny(p, "cannot link a node to itself")
	}
	if na.Type != nb.Type || (na.Type != BuildingWallNode && na.Type != BuildingBridgeNode) {
		return nil, w.deny(p, "nodes must be a matching link pair")
	}
	for _, l := range w.links {
		if (l.A == a && l.B == b) || (l.A == b && l.B == a) {
			return nil, w.deny(p, "already linked")
		}
	}

	length := na.Pos.Dist(nb.Pos)
	kind := LinkWall
	maxLen := w.Tun.MaxWallLen
	if na.Type == BuildingBridgeNode {
		kind = LinkBridge
		maxLen = w.Tun.MaxBridgeLen
		if na.Island < 0 || nb.Island < 0 || na.Island == nb.Island {
			return nil, w.deny(p, "bridge must join two islands")
		}
	}
	if length > maxLen {
		return nil, w.deny(p, "span %.0f exceeds limit %.0f", length, maxLen)
	}
	cost := int(length / 100 * w.Tun.WallCostPer)
	if err := w.charge(p, cost, 0); err != nil {
		return nil, err
	}

	l := &Link{
		ID:     w.allocID(),
		Kind:   kind,
		Owner:  pid,
		A:      a,
		B:      b,
		Health: 200 + length*0.2,
	}
	w.links = append(w.links, l)
	w.linkByID[l.ID] = l
	w.invalidateIslandPaths()
	w.record("link_up", map[string]any{"id": int(l.ID), "kind": kind.String(), "player": int(pid)})
	return l, nil
}

// EnsureLoop links an ordered node ring pair by pair, wrapping back to the
// first node. Spans that already exist are kept; each missing span goes
// through the same legality and cost checks as ConnectNodes. Rejected
// spans do not stop the walk, so one bad segment still leaves the rest of
// the ring standing; the first denial is returned.
func (w *World) EnsureLoop(pid PlayerID, nodes []EntityID) error {
	p := w.Player(pid)
	if p == nil || p.Status != PlayerActive {
		return w.deny(p, "player not active")
	}
	if len(nodes) < 2 {
		return w.deny(p, "a loop needs at least 2 nodes")
	}
	var firstErr error
	for i := range nodes {
		a, b := nodes[i], nodes[(i+1)%len(nodes)]
		if w.linkExists(a, b) {
			continue
		}
		if _, err := w.ConnectNodes(pid, a, b); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// UpgradeBuilding installs the tower rocket battery.
func (w *World) UpgradeBuilding(pid PlayerID, id EntityID) error {
	p := w.Player(pid)
	if p == nil || p.Status != PlayerActive {
		return w.deny(p, "player not active")
	}
	b := w.Building(id)
	if b == nil || b.Owner != pid {
		return w.deny(p, "no such building")
	}
	if b.Type != BuildingTower {
		return w.deny(p, "%s has no upgrade", b.Type)
	}
	if b.Constructing() {
		return w.deny(p, "tower still under construction")
	}
	if b.Upgraded {
		return w.deny(p, "already upgraded")
	}
	if err := w.charge(p, w.Tun.UpgradeCost, 0); err != nil {
		return err
	}
	b.Upgraded = true
	return nil
}

// ConvertWallToGate turns an owned wall into a gate, transparent to its
// owner's units only.
func (w *World) ConvertWallToGate(pid PlayerID, id EntityID) error {
	p := w.Player(pid)
	if p == nil || p.Status != PlayerActive {
		return w.deny(p, "player not active")
	}
	l := w.Link(id)
	if l == nil || l.Owner != pid {
		return w.deny(p, "no such link")
	}
	if l.Kind != LinkWall {
		return w.deny(p, "only walls convert to gates")
	}
	if err := w.charge(p, w.Tun.GateCost, 0); err != nil {
		return err
	}
	l.Kind = LinkGate
	return nil
}

// DeleteEntity demolishes an owned unit, building or link. Headquarters
// are protected during the opening window so a misclick cannot forfeit the
// match.
func (w *World) DeleteEntity(pid PlayerID, id EntityID) error {
	p := w.Player(pid)
	if p == nil || p.Status != PlayerActive {
		return w.deny(p, "player not active")
	}
	if u := w.Unit(id); u != nil {
		if u.Owner != pid {
			return w.deny(p, "not yours")
		}
		u.Health = 0
		return nil
	}
	if b := w.Building(id); b != nil {
		if b.Owner != pid {
			return w.deny(p, "not yours")
		}
		if b.Type == BuildingHQ && w.Tick < w.Tun.ProtectHQ {
			return w.deny(p, "headquarters protected this early")
		}
		b.Health = 0
		return nil
	}
	if l := w.Link(id); l != nil {
		if l.Owner != pid {
			return w.deny(p, "not yours")
		}
		l.Health = 0
		return nil
	}
	return w.deny(p, "no such entity")
}

const loadRange = 140

// LoadTransport embarks nearby owned ground units onto a transport, up to
// capacity. Embarked units leave the live list but keep their id.
func (w *World) LoadTransport(pid PlayerID, id EntityID) error {
	p := w.Player(pid)
	if p == nil || p.Status != PlayerActive {
		return w.deny(p, "player not active")
	}
	t := w.Unit(id)
	if t == nil || t.Owner != pid || t.Type.Spec().CargoCap == 0 {
		return w.deny(p, "no such transport")
	}
	room := t.Type.Spec().CargoCap - len(t.Cargo)
	if room <= 0 {
		return w.deny(p, "transport full")
	}
	loaded := 0
	live := w.units[:0]
	for _, u := range w.units {
		if loaded < room && u.Owner == pid && u.Alive() && !u.Embarked &&
			u.Type.Spec().Domain == DomainGround && u.ID != id &&
			u.Pos.Dist(t.Pos) <= loadRange {
			u.Embarked = true
			u.Target = nil
			u.Waypoints = nil
			u.Status = StatusIdle
			t.Cargo = append(t.Cargo, u.ID)
			loaded++
			continue
		}
		live = append(live, u)
	}
	w.units = live
	if loaded == 0 {
		return w.deny(p, "no units in load range")
	}
	return nil
}

// UnloadTransport disembarks all cargo onto valid ground near the
// transport. Units that cannot find a landing position stay aboard.
func (w *World) UnloadTransport(pid PlayerID, id EntityID) error {
	p := w.Player(pid)
	if p == nil || p.Status != PlayerActive {
		return w.deny(p, "player not active")
	}
	t := w.Unit(id)
	if t == nil || t.Owner != pid || t.Type.Spec().CargoCap == 0 {
		return w.deny(p, "no such transport")
	}
	if len(t.Cargo) == 0 {
		return w.deny(p, "transport empty")
	}
	var kept []EntityID
	for _, cid := range t.Cargo {
		u := w.unitByID[cid]
		if u == nil {
			continue
		}
		pos := w.findSpawnPos(t.Pos, t.Type.Spec().Radius, u.Type.Spec().Radius, DomainGround)
		if !w.valid(pos, DomainGround, u.ID) {
			kept = append(kept, cid)
			continue
		}
		u.Pos = pos
		u.Embarked = false
		w.units = append(w.units, u)
	}
	t.Cargo = kept
	if len(kept) > 0 {
		return w.deny(p, "no landing ground for %d units", len(kept))
	}
	return nil
}

// SetGodMode toggles damage immunity for the player (debug surface).
func (w *World) SetGodMode(pid PlayerID, on bool) error {
	p := w.Player(pid)
	if p == nil {
		return w.deny(p, "no such player")
	}
	p.GodMode = on
	return nil
}

// LastDenial returns and clears the player's most recent command denial.
func (w *World) LastDenial(pid PlayerID) string {
	p := w.Player(pid)
	if p == nil {
		return ""
	}
	d := p.lastDenial
	p.lastDenial = ""
	return d
}
