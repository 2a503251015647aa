// Package worldmap holds the immutable per-match geometry: islands, resource
// spot positions and high-ground obstacles. Map generation itself is an
// external concern; this package only consumes finished maps and answers
// geometric queries about them. Fixture maps stand in for the generator.
package worldmap

import (
	"math"

	"islandwar/internal/geom"
)

// SpotKind distinguishes the two deposit types.
type SpotKind int

const (
	SpotGold SpotKind = iota
	SpotOil
)

// Spot is a static resource deposit position. Gold spots sit on island
// ground; oil spots sit in open water.
type Spot struct {
	Kind SpotKind
	Pos  geom.Point
}

// Island is one landmass. Circular islands are converted to polygons at
// load time so every island answers the same edge queries.
type Island struct {
	ID    int
	Poly  geom.Polygon
	Spots []Spot
}

// Map is the finished, immutable match geometry.
type Map struct {
	Width, Height float64
	Islands       []Island
	HighGround    []geom.Polygon // impassable to everyone except air
	OilSpots      []Spot         // open-water deposits, not tied to an island

	adjacent [][]int // islands whose polygons overlap or touch
}

// New finalizes a map: assigns island ids and precomputes the overlap
// adjacency used by island-to-island path queries.
func New(w, h float64, islands []Island, highGround []geom.Polygon, oil []Spot) *Map {
	m := &Map{Width: w, Height: h, Islands: islands, HighGround: highGround, OilSpots: oil}
	for i := range m.Islands {
		m.Islands[i].ID = i
	}
	m.adjacent = make([][]int, len(m.Islands))
	for i := range m.Islands {
		for j := range m.Islands {
			if i != j && polysTouch(m.Islands[i].Poly, m.Islands[j].Poly) {
				m.adjacent[i] = append(m.adjacent[i], j)
			}
		}
	}
	return m
}

// InBounds reports whether p lies inside the playable area.
func (m *Map) InBounds(p geom.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= m.Width && p.Y <= m.Height
}

// IslandAt returns the id of the island containing p, or -1 for open water.
func (m *Map) IslandAt(p geom.Point) int {
	for i := range m.Islands {
		if m.Islands[i].Poly.Contains(p) {
			return i
		}
	}
	return -1
}

// OnLand reports whether p is on any island.
func (m *Map) OnLand(p geom.Point) bool {
	return m.IslandAt(p) >= 0
}

// OnHighGround reports whether p is inside a high-ground obstacle.
func (m *Map) OnHighGround(p geom.Point) bool {
	for _, hg := range m.HighGround {
		if hg.Contains(p) {
			return true
		}
	}
	return false
}

// Island returns the island with the given id, or nil.
func (m *Map) Island(id int) *Island {
	if id < 0 || id >= len(m.Islands) {
		return nil
	}
	return &m.Islands[id]
}

// Overlapping returns the ids of islands whose polygons touch island id.
func (m *Map) Overlapping(id int) []int {
	if id < 0 || id >= len(m.adjacent) {
		return nil
	}
	return m.adjacent[id]
}

// ClosestShore returns the point on island id's boundary nearest to p.
func (m *Map) ClosestShore(id int, p geom.Point) geom.Point {
	isl := m.Island(id)
	if isl == nil {
		return p
	}
	c, _ := isl.Poly.ClosestEdgePoint(p)
	return c
}

// polysTouch reports whether two polygons overlap or share boundary:
// any vertex containment or any edge crossing counts.
func polysTouch(a, b geom.Polygon) bool {
	for _, p := range a {
		if b.Contains(p) {
			return true
		}
	}
	for _, p := range b {
		if a.Contains(p) {
			return true
		}
	}
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		for j := 0; j < nb; j++ {
			if geom.SegmentsIntersect(a[i], a[(i+1)%na], b[j], b[(j+1)%nb]) {
				return true
			}
		}
	}
	return false
}

// hexIsland builds a slightly irregular hexagonal island around a center.
func hexIsland(cx, cy, r float64, spots []Spot) Island {
	poly := make(geom.Polygon, 6)
	for i := 0; i < 6; i++ {
		a := math.Pi/6 + 2*math.Pi*float64(i)/6
		rr := r * (0.92 + 0.08*math.Cos(float64(i)*2.3))
		poly[i] = geom.Point{X: cx + math.Cos(a)*rr, Y: cy + math.Sin(a)*rr}
	}
	return Island{Poly: poly, Spots: spots}
}

// TwinIsles is the standard two-player fixture: two large islands facing
// each other across open water, three gold spots each, two oil spots in
// the channel between them.
func TwinIsles() *Map {
	const w, h = 4800, 2700
	left := hexIsland(1000, 1350, 760, []Spot{
		{Kind: SpotGold, Pos: geom.Point{X: 760, Y: 1120}},
		{Kind: SpotGold, Pos: geom.Point{X: 1240, Y: 1180}},
		{Kind: SpotGold, Pos: geom.Point{X: 980, Y: 1640}},
	})
	right := hexIsland(3800, 1350, 760, []Spot{
		{Kind: SpotGold, Pos: geom.Point{X: 3560, Y: 1120}},
		{Kind: SpotGold, Pos: geom.Point{X: 4040, Y: 1180}},
		{Kind: SpotGold, Pos: geom.Point{X: 3820, Y: 1640}},
	})
	oil := []Spot{
		{Kind: SpotOil, Pos: geom.Point{X: 2400, Y: 900}},
		{Kind: SpotOil, Pos: geom.Point{X: 2400, Y: 1800}},
	}
	return New(w, h, []Island{left, right}, nil, oil)
}

// Crossfire is a four-player fixture: four corner islands around a
// contested center island with a high-ground ridge on it.
func Crossfire() *Map {
	const w, h = 6400, 3600
	corner := func(cx, cy float64) Island {
		return hexIsland(cx, cy, 620, []Spot{
			{Kind: SpotGold, Pos: geom.Point{X: cx - 180, Y: cy - 140}},
			{Kind: SpotGold, Pos: geom.Point{X: cx + 200, Y: cy + 160}},
		})
	}
	center := hexIsland(3200, 1800, 700, []Spot{
		{Kind: SpotGold, Pos: geom.Point{X: 3000, Y: 1700}},
		{Kind: SpotGold, Pos: geom.Point{X: 3400, Y: 1920}},
		{Kind: SpotGold, Pos: geom.Point{X: 3220, Y: 1560}},
	})
	ridge := geom.Polygon{
		{X: 3120, Y: 1360}, {X: 3300, Y: 1380},
		{X: 3340, Y: 1520}, {X: 3140, Y: 1500},
	}
	oil := []Spot{
		{Kind: SpotOil, Pos: geom.Point{X: 1700, Y: 1800}},
		{Kind: SpotOil, Pos: geom.Point{X: 4700, Y: 1800}},
		{Kind: SpotOil, Pos: geom.Point{X: 3200, Y: 560}},
		{Kind: SpotOil, Pos: geom.Point{X: 3200, Y: 3040}},
	}
	islands := []Island{
		corner(900, 800), corner(5500, 800),
		corner(900, 2800), corner(5500, 2800),
		center,
	}
	return New(w, h, islands, []geom.Polygon{ridge}, oil)
}

// ByName resolves a fixture map by its lobby name.
func ByName(name string) *Map {
	switch name {
	case "crossfire":
		return Crossfire()
	default:
		return TwinIsles()
	}
}
