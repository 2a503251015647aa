package game

import (
	"math"
	"sort"

	"islandwar/internal/geom"
)

// defensePhase walks the fortification plan: towers first, then the wall
// node ring, then connecting the ring into a loop, then gates and tower
// upgrades. The opening plan runs the loop once with small counts; the
// final plan repeats it at full size.
type defensePhase int

const (
	defPlaceTowers defensePhase = iota
	defPlaceNodes
	defConnectWalls
	defUpgradeGate
	defDone
)

func (p defensePhase) String() string {
	switch p {
	case defPlaceTowers:
		return "place_towers"
	case defPlaceNodes:
		return "place_nodes"
	case defConnectWalls:
		return "connect_walls"
	case defUpgradeGate:
		return "upgrade_gate"
	case defDone:
		return "done"
	default:
		return "unknown"
	}
}

type defenseState struct {
	phase   defensePhase
	opening bool // false once the opening plan completed
	retries int
	started bool
}

func (d *defenseState) plan(b *Bot) (towers, nodes int) {
	if !d.started || d.opening {
		return b.prof.OpeningTowers, b.prof.OpeningNodes
	}
	return b.prof.FinalTowers, b.prof.FinalNodes
}

func (d *defenseState) transition(b *Bot, next defensePhase) {
	b.w.Log.Add(b.w.Tick, b.p.Name, "defense", "phase",
		d.phase.String()+" -> "+next.String(), 0)
	d.phase = next
	d.retries = 0
}

func (d *defenseState) step(b *Bot) {
	if !d.started {
		d.started = true
		d.opening = true
	}
	hq := b.w.playerHQ(b.p.ID)
	if hq == nil {
		return
	}
	switch d.phase {
	case defPlaceTowers:
		d.stepTowers(b, hq)
	case defPlaceNodes:
		d.stepNodes(b, hq)
	case defConnectWalls:
		d.stepConnect(b, hq)
	case defUpgradeGate:
		d.stepUpgrade(b, hq)
	case defDone:
	}
}

func (d *defenseState) stepTowers(b *Bot, hq *Building) {
	towers, _ := d.plan(b)
	if b.countOwn(BuildingTower) >= towers {
		d.transition(b, defPlaceNodes)
		return
	}
	if b.p.Gold < BuildingTower.Spec().CostGold {
		return
	}
	pos, ok := d.ringSlot(b, hq, BuildingTower, b.ownPositions(BuildingTower, hq))
	if !ok {
		d.retryOrAccept(b, defPlaceNodes)
		return
	}
	if !b.spend() {
		return
	}
	if _, err := b.w.BuildStructure(b.p.ID, BuildingTower, pos); err != nil {
		b.sendBuilderTo(pos)
	}
}

func (d *defenseState) stepNodes(b *Bot, hq *Building) {
	_, nodes := d.plan(b)
	if b.countOwn(BuildingWallNode) >= nodes {
		d.transition(b, defConnectWalls)
		return
	}
	if b.p.Gold < BuildingWallNode.Spec().CostGold {
		return
	}
	pos, ok := d.ringSlot(b, hq, BuildingWallNode, b.ownPositions(BuildingWallNode, hq))
	if !ok {
		d.retryOrAccept(b, defConnectWalls)
		return
	}
	if !b.spend() {
		return
	}
	if _, err := b.w.BuildStructure(b.p.ID, BuildingWallNode, pos); err != nil {
		b.sendBuilderTo(pos)
	}
}

// stepConnect sorts the ring nodes by angle around the HQ and closes them
// into a loop with one batch order. Spans the loop rejects (over the wall
// length limit, or unaffordable this pass) leave gaps; the ring is
// accepted partial after the retry budget runs out.
func (d *defenseState) stepConnect(b *Bot, hq *Building) {
	nodes := b.ownNodeRing(hq)
	if len(nodes) < 2 {
		d.transition(b, defUpgradeGate)
		return
	}
	ids := make([]EntityID, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	if !b.spend() {
		return
	}
	if err := b.w.EnsureLoop(b.p.ID, ids); err != nil {
		d.retryOrAccept(b, defUpgradeGate)
		return
	}
	d.transition(b, defUpgradeGate)
}

// stepUpgrade converts the wall facing open water into a gate so the
// bot's own units can leave, then upgrades towers, then either graduates
// the opening plan into the full plan or finishes.
func (d *defenseState) stepUpgrade(b *Bot, hq *Building) {
	if l := b.gatelessWall(hq); l != nil && b.p.Gold >= b.w.Tun.GateCost {
		if b.spend() {
			_ = b.w.ConvertWallToGate(b.p.ID, l.ID)
		}
		return
	}
	if !d.opening {
		for _, bl := range b.w.buildings {
			if bl.Owner == b.p.ID && bl.Type == BuildingTower && !bl.Upgraded && !bl.Constructing() {
				if b.p.Gold < b.w.Tun.UpgradeCost {
					return
				}
				if b.spend() {
					_ = b.w.UpgradeBuilding(b.p.ID, bl.ID)
				}
				return
			}
		}
		d.transition(b, defDone)
		return
	}
	// Opening plan complete; run the loop again at full size.
	d.opening = false
	d.transition(b, defPlaceTowers)
}

func (d *defenseState) retryOrAccept(b *Bot, next defensePhase) {
	d.retries++
	if d.retries > b.w.Tun.LoopRetryMax {
		b.w.Log.Add(b.w.Tick, b.p.Name, "defense", "partial_accept", d.phase.String(), float64(d.retries))
		d.transition(b, next)
	}
}

// ringSlot proposes a placement on the defense ring: a radius band around
// the HQ, keeping a minimum angular gap from the structures already on the
// ring and staying on the HQ's island.
func (d *defenseState) ringSlot(b *Bot, hq *Building, t BuildingType, taken []float64) (geom.Point, bool) {
	for _, r := range []float64{b.w.Tun.RingMinRadius, (b.w.Tun.RingMinRadius + b.w.Tun.RingMaxRadius) / 2, b.w.Tun.RingMaxRadius} {
		for i := 0; i < 24; i++ {
			a := 2 * math.Pi * float64(i) / 24
			if tooCloseAngular(a, taken, b.w.Tun.RingAngularGap) {
				continue
			}
			p := geom.Point{X: hq.Pos.X + math.Cos(a)*r, Y: hq.Pos.Y + math.Sin(a)*r}
			if b.w.Map.IslandAt(p) != hq.Island {
				continue
			}
			if !b.w.valid(p, DomainGround, NoEntity) || !b.w.placementFree(t, p, DomainGround) {
				continue
			}
			return p, true
		}
	}
	return geom.Point{}, false
}

func tooCloseAngular(a float64, taken []float64, gap float64) bool {
	for _, t := range taken {
		diff := math.Abs(math.Mod(a-t+3*math.Pi, 2*math.Pi) - math.Pi)
		if diff < gap {
			return true
		}
	}
	return false
}

// ownPositions returns the ring angles of the player's structures of the
// given type around the HQ.
func (b *Bot) ownPositions(t BuildingType, hq *Building) []float64 {
	var out []float64
	for _, bl := range b.w.buildings {
		if bl.Owner == b.p.ID && bl.Type == t && bl.Alive() {
			out = append(out, math.Atan2(bl.Pos.Y-hq.Pos.Y, bl.Pos.X-hq.Pos.X))
		}
	}
	return out
}

// ownNodeRing returns the player's wall nodes sorted by angle around the HQ.
func (b *Bot) ownNodeRing(hq *Building) []*Building {
	var nodes []*Building
	for _, bl := range b.w.buildings {
		if bl.Owner == b.p.ID && bl.Type == BuildingWallNode && bl.Alive() {
			nodes = append(nodes, bl)
		}
	}
	sort.Slice(nodes, func(i, j int) bool {
		ai := math.Atan2(nodes[i].Pos.Y-hq.Pos.Y, nodes[i].Pos.X-hq.Pos.X)
		aj := math.Atan2(nodes[j].Pos.Y-hq.Pos.Y, nodes[j].Pos.X-hq.Pos.X)
		return ai < aj
	})
	return nodes
}

// gatelessWall picks the bot's wall nearest the island shore that has not
// been converted yet; that is where traffic wants to pass.
func (b *Bot) gatelessWall(hq *Building) *Link {
	hasGate := false
	for _, l := range b.w.links {
		if l.Owner == b.p.ID && l.Kind == LinkGate {
			hasGate = true
			break
		}
	}
	if hasGate {
		return nil
	}
	var pick *Link
	bestD := -1.0
	for _, l := range b.w.links {
		if l.Owner != b.p.ID || l.Kind != LinkWall {
			continue
		}
		na, nb := b.w.Building(l.A), b.w.Building(l.B)
		if na == nil || nb == nil || na.Island < 0 {
			continue
		}
		mid := na.Pos.Lerp(nb.Pos, 0.5)
		shore, _ := b.w.Map.Islands[na.Island].Poly.ClosestEdgePoint(mid)
		d := mid.Dist(shore)
		if bestD < 0 || d < bestD {
			pick, bestD = l, d
		}
	}
	return pick
}

// linkExists reports whether the two nodes are already linked.
func (w *World) linkExists(a, b EntityID) bool {
	for _, l := range w.links {
		if (l.A == a && l.B == b) || (l.A == b && l.B == a) {
			return true
		}
	}
	return false
}
