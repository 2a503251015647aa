// Package geom provides the 2D primitives the map and simulation are built
// on: points, polygons and circles with containment, closest-point and
// perimeter queries.
package geom

import "math"

// Point is a position in world units.
type Point struct {
	X, Y float64
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Dist returns the euclidean distance to q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// DistSq returns the squared distance to q (cheap comparison form).
func (p Point) DistSq(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Lerp returns the point a fraction t along the segment p→q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Polygon is a closed ring of vertices in order (no repeated last vertex).
type Polygon []Point

// Contains reports whether pt lies inside the polygon (ray cast, odd-even).
func (pg Polygon) Contains(pt Point) bool {
	inside := false
	n := len(pg)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := pg[i], pg[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := a.X + (pt.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if pt.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// ClosestEdgePoint returns the point on the polygon's boundary nearest to pt,
// together with the index of the edge it lies on.
func (pg Polygon) ClosestEdgePoint(pt Point) (Point, int) {
	best := pg[0]
	bestEdge := 0
	bestD := math.MaxFloat64
	n := len(pg)
	for i := 0; i < n; i++ {
		a := pg[i]
		b := pg[(i+1)%n]
		c := ClosestOnSegment(pt, a, b)
		d := pt.DistSq(c)
		if d < bestD {
			bestD = d
			best = c
			bestEdge = i
		}
	}
	return best, bestEdge
}

// EdgeTangent returns the unit direction vector of edge i.
func (pg Polygon) EdgeTangent(i int) (float64, float64) {
	a := pg[i]
	b := pg[(i+1)%len(pg)]
	dx := b.X - a.X
	dy := b.Y - a.Y
	l := math.Hypot(dx, dy)
	if l < 1e-9 {
		return 1, 0
	}
	return dx / l, dy / l
}

// Centroid returns the vertex average (sufficient for convex-ish islands).
func (pg Polygon) Centroid() Point {
	var sx, sy float64
	for _, p := range pg {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pg))
	return Point{X: sx / n, Y: sy / n}
}

// Bounds returns the axis-aligned bounding box (min, max).
func (pg Polygon) Bounds() (Point, Point) {
	lo := pg[0]
	hi := pg[0]
	for _, p := range pg[1:] {
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
	}
	return lo, hi
}

// PerimeterFrom walks the polygon boundary from edge startEdge to edge
// endEdge, returning the intermediate vertices. If reverse is true the walk
// goes in decreasing vertex order. Used for around-obstacle routing.
func (pg Polygon) PerimeterFrom(startEdge, endEdge int, reverse bool) []Point {
	n := len(pg)
	var out []Point
	if !reverse {
		// Forward: vertices startEdge+1 .. endEdge inclusive.
		for i := (startEdge + 1) % n; ; i = (i + 1) % n {
			out = append(out, pg[i])
			if i == endEdge || len(out) >= n {
				break
			}
		}
	} else {
		for i := startEdge; ; i = (i - 1 + n) % n {
			out = append(out, pg[i])
			if i == (endEdge+1)%n || len(out) >= n {
				break
			}
		}
	}
	return out
}

// ClosestOnSegment returns the point on segment ab nearest to p.
func ClosestOnSegment(p, a, b Point) Point {
	abx := b.X - a.X
	aby := b.Y - a.Y
	l2 := abx*abx + aby*aby
	if l2 < 1e-12 {
		return a
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Point{X: a.X + t*abx, Y: a.Y + t*aby}
}

// PointSegmentDist returns the distance from p to segment ab.
func PointSegmentDist(p, a, b Point) float64 {
	return p.Dist(ClosestOnSegment(p, a, b))
}

// SegmentsIntersect reports whether segments ab and cd properly intersect
// (shared endpoints count as intersecting).
func SegmentsIntersect(a, b, c, d Point) bool {
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(c, d, a) {
		return true
	}
	if d2 == 0 && onSegment(c, d, b) {
		return true
	}
	if d3 == 0 && onSegment(a, b, c) {
		return true
	}
	if d4 == 0 && onSegment(a, b, d) {
		return true
	}
	return false
}

func cross(a, b, p Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// Circle is a circular island or footprint.
type Circle struct {
	C Point
	R float64
}

// Contains reports whether pt lies inside the circle.
func (c Circle) Contains(pt Point) bool {
	return c.C.DistSq(pt) <= c.R*c.R
}

// ClosestBoundary returns the boundary point nearest to pt.
func (c Circle) ClosestBoundary(pt Point) Point {
	dx := pt.X - c.C.X
	dy := pt.Y - c.C.Y
	l := math.Hypot(dx, dy)
	if l < 1e-9 {
		return Point{X: c.C.X + c.R, Y: c.C.Y}
	}
	return Point{X: c.C.X + dx/l*c.R, Y: c.C.Y + dy/l*c.R}
}

// RegularPolygon approximates a circle as an n-gon, used when circular
// islands need polygon queries (perimeter walks, edge tangents).
func (c Circle) RegularPolygon(n int) Polygon {
	pg := make(Polygon, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pg[i] = Point{X: c.C.X + math.Cos(a)*c.R, Y: c.C.Y + math.Sin(a)*c.R}
	}
	return pg
}
