package game

import (
	"container/heap"

	"islandwar/internal/geom"
)

// pathCell is the planning grid resolution in world units. Coarse on
// purpose: the movement solver handles local steering, the planner only
// needs the topology right.
const pathCell = 80

type gridNode struct {
	cx, cy int
	g, h   float64
	parent *gridNode
	index  int // heap index
}

type gridOpen []*gridNode

func (ol gridOpen) Len() int           { return len(ol) }
func (ol gridOpen) Less(i, j int) bool { return (ol[i].g + ol[i].h) < (ol[j].g + ol[j].h) }
func (ol gridOpen) Swap(i, j int) {
	ol[i], ol[j] = ol[j], ol[i]
	ol[i].index = i
	ol[j].index = j
}
func (ol *gridOpen) Push(x any) {
	n := x.(*gridNode)
	n.index = len(*ol)
	*ol = append(*ol, n)
}
func (ol *gridOpen) Pop() any {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

var gridDirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// planner answers route queries for one domain over the current world
// state. Passability is evaluated against the validity predicate on the
// fly; the grid is small enough that nothing needs caching or invalidation.
type planner struct {
	w     *World
	d     Domain
	self  EntityID
	cols  int
	rows  int
}

func (w *World) newPlanner(d Domain, self EntityID) *planner {
	return &planner{
		w:    w,
		d:    d,
		self: self,
		cols: int(w.Map.Width)/pathCell + 1,
		rows: int(w.Map.Height)/pathCell + 1,
	}
}

func (pl *planner) cellCenter(cx, cy int) geom.Point {
	return geom.Point{
		X: float64(cx)*pathCell + pathCell/2,
		Y: float64(cy)*pathCell + pathCell/2,
	}
}

func (pl *planner) toCell(p geom.Point) (int, int) {
	return int(p.X) / pathCell, int(p.Y) / pathCell
}

func (pl *planner) passable(cx, cy int) bool {
	if cx < 0 || cy < 0 || cx >= pl.cols || cy >= pl.rows {
		return false
	}
	return pl.w.valid(pl.cellCenter(cx, cy), pl.d, pl.self)
}

// snap finds the nearest passable cell to (cx, cy) by walking outward in
// square rings. Returns false when no passable cell exists within the
// search radius.
func (pl *planner) snap(cx, cy int) (int, int, bool) {
	if pl.passable(cx, cy) {
		return cx, cy, true
	}
	for r := 1; r <= 6; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				if pl.passable(cx+dx, cy+dy) {
					return cx + dx, cy + dy, true
				}
			}
		}
	}
	return cx, cy, false
}

// Route plans a waypoint path from `from` to `to`. Air domains skip the
// grid entirely and fly direct. Blocked endpoints snap to the nearest
// passable cell; expansion is capped so a sealed-off goal fails fast
// instead of flooding the whole grid.
func (pl *planner) Route(from, to geom.Point) []geom.Point {
	if pl.d.Air() {
		return []geom.Point{to}
	}
	scx, scy := pl.toCell(from)
	gcx, gcy := pl.toCell(to)
	scx, scy, ok := pl.snap(scx, scy)
	if !ok {
		return nil
	}
	gcx, gcy, ok = pl.snap(gcx, gcy)
	if !ok {
		return nil
	}
	if scx == gcx && scy == gcy {
		return []geom.Point{to}
	}

	key := func(cx, cy int) int { return cy*pl.cols + cx }
	// Chebyshev distance: admissible for 8-way movement with uniform
	// diagonal cost, and keeps expansions tight on open water.
	heur := func(ax, ay int) float64 {
		return float64(max(abs(ax-gcx), abs(ay-gcy)))
	}

	start := &gridNode{cx: scx, cy: scy, h: heur(scx, scy)}
	ol := &gridOpen{start}
	heap.Init(ol)

	closed := make(map[int]bool)
	best := map[int]*gridNode{key(scx, scy): start}
	budget := 4 * pl.cols * pl.rows

	for ol.Len() > 0 && budget > 0 {
		budget--
		cur := heap.Pop(ol).(*gridNode)
		if cur.cx == gcx && cur.cy == gcy {
			return pl.assemble(cur, to)
		}
		k := key(cur.cx, cur.cy)
		if closed[k] {
			continue
		}
		closed[k] = true

		for _, d := range gridDirs {
			nx, ny := cur.cx+d[0], cur.cy+d[1]
			if !pl.passable(nx, ny) {
				continue
			}
			// No cutting corners diagonally past a blocked cell.
			if d[0] != 0 && d[1] != 0 {
				if !pl.passable(cur.cx+d[0], cur.cy) || !pl.passable(cur.cx, cur.cy+d[1]) {
					continue
				}
			}
			nk := key(nx, ny)
			if closed[nk] {
				continue
			}
			cost := 1.0
			if d[0] != 0 && d[1] != 0 {
				cost = 1.41421356
			}
			g := cur.g + cost
			if prev, ok := best[nk]; ok && g >= prev.g {
				continue
			}
			node := &gridNode{cx: nx, cy: ny, g: g, h: heur(nx, ny), parent: cur}
			best[nk] = node
			heap.Push(ol, node)
		}
	}
	return nil
}

// assemble walks the parent chain back to the start, reverses it, drops
// the collinear interior cells and substitutes the exact destination for
// the goal cell center.
func (pl *planner) assemble(end *gridNode, to geom.Point) []geom.Point {
	var cells [][2]int
	for n := end; n != nil; n = n.parent {
		cells = append(cells, [2]int{n.cx, n.cy})
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}

	var out []geom.Point
	for i := 1; i < len(cells); i++ {
		if i == len(cells)-1 {
			break
		}
		// Keep only cells where the step direction changes.
		pdx, pdy := cells[i][0]-cells[i-1][0], cells[i][1]-cells[i-1][1]
		ndx, ndy := cells[i+1][0]-cells[i][0], cells[i+1][1]-cells[i][1]
		if pdx != ndx || pdy != ndy {
			out = append(out, pl.cellCenter(cells[i][0], cells[i][1]))
		}
	}
	out = append(out, to)
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
