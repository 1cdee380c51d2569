// Package geom implements the 2D predicates shared by the pathfinders and
// the force models. All functions are pure and total: malformed input
// (degenerate polygons, coincident points) yields a safe default, never a
// panic.
package geom

import (
	"math"

	"github.com/pedflow/pedflow/internal/core"
)

// DefaultObstacleMargin keeps agents visibly clear of obstacle boundaries.
const DefaultObstacleMargin = 40.0

// PointInPolygon reports whether p lies inside the polygon under the
// even-odd (ray casting) rule. A polygon with fewer than 3 vertices
// contains nothing.
func PointInPolygon(p core.Point, poly []core.Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		if (poly[i].Y > p.Y) != (poly[j].Y > p.Y) &&
			p.X < (poly[j].X-poly[i].X)*(p.Y-poly[i].Y)/(poly[j].Y-poly[i].Y)+poly[i].X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// SegmentsIntersect reports whether segment ab crosses segment cd.
// Parallel segments (determinant within 1e-10 of zero) never intersect;
// collinear overlap is deliberately treated as non-intersecting.
func SegmentsIntersect(a, b, c, d core.Point) bool {
	d1 := b.Sub(a)
	d2 := d.Sub(c)

	det := d1.X*d2.Y - d1.Y*d2.X
	if math.Abs(det) < 1e-10 {
		return false
	}

	t := ((c.X-a.X)*d2.Y - (c.Y-a.Y)*d2.X) / det
	u := ((c.X-a.X)*d1.Y - (c.Y-a.Y)*d1.X) / det
	return t >= 0 && t <= 1 && u >= 0 && u <= 1
}

// ClosestPointOnSegment projects p onto segment s1s2, clamped to the
// endpoints. A zero-length segment yields s1.
func ClosestPointOnSegment(p, s1, s2 core.Point) core.Point {
	d := s2.Sub(s1)
	lenSq := d.Dot(d)
	if lenSq == 0 {
		return s1
	}
	t := p.Sub(s1).Dot(d) / lenSq
	if t < 0 {
		return s1
	}
	if t > 1 {
		return s2
	}
	return s1.Add(d.Scale(t))
}

// DistPointToSegment returns the perpendicular-projection distance from p
// to segment s1s2, clamped to the endpoints.
func DistPointToSegment(p, s1, s2 core.Point) float64 {
	return p.Dist(ClosestPointOnSegment(p, s1, s2))
}

// ClosestPointOnPolygon returns the nearest point on the polygon's
// boundary to p. Returns p itself for polygons with no vertices.
func ClosestPointOnPolygon(p core.Point, poly []core.Point) core.Point {
	if len(poly) == 0 {
		return p
	}
	if len(poly) == 1 {
		return poly[0]
	}
	best := poly[0]
	bestDist := math.Inf(1)
	for i := 0; i < len(poly); i++ {
		j := (i + 1) % len(poly)
		cp := ClosestPointOnSegment(p, poly[i], poly[j])
		if d := p.Dist(cp); d < bestDist {
			bestDist = d
			best = cp
		}
	}
	return best
}

// InsideWalkableArea reports whether p lies in any walkable polygon. A
// scene with no walkable areas at all is open world: everywhere walkable.
func InsideWalkableArea(p core.Point, sc *core.Scene) bool {
	areas := sc.WalkableAreas()
	if len(areas) == 0 {
		return true
	}
	for _, area := range areas {
		if PointInPolygon(p, area.Points) {
			return true
		}
	}
	return false
}

// NearObstacle reports whether p lies within margin of any obstacle edge.
func NearObstacle(p core.Point, sc *core.Scene, margin float64) bool {
	for _, obs := range sc.Obstacles() {
		pts := obs.Points
		if len(pts) < 2 {
			continue
		}
		for i := 0; i < len(pts); i++ {
			j := (i + 1) % len(pts)
			if DistPointToSegment(p, pts[i], pts[j]) < margin {
				return true
			}
		}
	}
	return false
}

// SegmentClear reports whether segment ab crosses no obstacle edge, i.e.
// the two points have line of sight past every obstacle.
func SegmentClear(a, b core.Point, sc *core.Scene) bool {
	for _, obs := range sc.Obstacles() {
		pts := obs.Points
		if len(pts) < 2 {
			continue
		}
		for i := 0; i < len(pts); i++ {
			j := (i + 1) % len(pts)
			if SegmentsIntersect(a, b, pts[i], pts[j]) {
				return false
			}
		}
	}
	return true
}

// PointInRect reports whether p lies inside the axis-aligned rectangle
// spanned by two opposite corners, inclusive of the boundary.
func PointInRect(p, c1, c2 core.Point) bool {
	minX, maxX := math.Min(c1.X, c2.X), math.Max(c1.X, c2.X)
	minY, maxY := math.Min(c1.Y, c2.Y), math.Max(c1.Y, c2.Y)
	return p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY
}

// PolygonCentroid returns the vertex average. Zero point for an empty
// polygon.
func PolygonCentroid(poly []core.Point) core.Point {
	if len(poly) == 0 {
		return core.Point{}
	}
	var c core.Point
	for _, p := range poly {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(len(poly)))
}

// RoomContaining returns the room whose polygon contains p, nil if none.
func RoomContaining(p core.Point, sc *core.Scene) *core.Element {
	for _, room := range sc.Rooms() {
		if PointInPolygon(p, room.Points) {
			return room
		}
	}
	return nil
}
