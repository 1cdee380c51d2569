package algo

import (
	"container/heap"
	"math"
	"math/rand"

	"github.com/pedflow/pedflow/internal/core"
	"github.com/pedflow/pedflow/internal/geom"
)

// Options parameterizes the grid pathfinder. The editor's three divergent
// pathfinding implementations disagreed on these constants; here they are
// explicit inputs with one set of defaults.
type Options struct {
	CellSize       float64 // grid resolution in scene units
	SafetyMargin   float64 // obstacle inflation distance
	Padding        float64 // bounding-box padding around the scene
	SnapRadius     int     // max ring radius (cells) when snapping endpoints
	SmoothingAngle float64 // radians; flatter turns than this are collapsed
	RandomSamples  int     // detour samples before giving up
}

// DefaultOptions returns the standard pathfinder parameters.
func DefaultOptions() Options {
	return Options{
		CellSize:       20,
		SafetyMargin:   geom.DefaultObstacleMargin,
		Padding:        100,
		SnapRadius:     10,
		SmoothingAngle: 0.3,
		RandomSamples:  30,
	}
}

// detourFractions are the perpendicular offsets, as fractions of the
// direct distance, tried on each side of the direct line when A* fails.
var detourFractions = [...]float64{0.3, 0.5, 0.7, 0.9}

// cell addresses one grid square.
type cell struct {
	X, Y int
}

// gridNode for the A* priority queue.
type gridNode struct {
	cell   cell
	g      float64 // cost so far
	f      float64 // g + h
	parent *gridNode
	index  int // heap index
}

type gridHeap []*gridNode

func (h gridHeap) Len() int           { return len(h) }
func (h gridHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h gridHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *gridHeap) Push(x any) {
	n := x.(*gridNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *gridHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// grid is the rasterized scene: a uniform lattice of walkable/blocked
// cells covering the padded bounding box.
type grid struct {
	origin  core.Point
	size    float64
	cols    int
	rows    int
	blocked []bool
}

func rasterize(start, end core.Point, sc *core.Scene, opts Options) *grid {
	min, max := sc.Bounds(start, end)
	min = min.Sub(core.Point{X: opts.Padding, Y: opts.Padding})
	max = max.Add(core.Point{X: opts.Padding, Y: opts.Padding})

	g := &grid{
		origin: min,
		size:   opts.CellSize,
		cols:   int(math.Ceil((max.X-min.X)/opts.CellSize)) + 1,
		rows:   int(math.Ceil((max.Y-min.Y)/opts.CellSize)) + 1,
	}
	g.blocked = make([]bool, g.cols*g.rows)
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			center := g.center(cell{x, y})
			if !geom.InsideWalkableArea(center, sc) || geom.NearObstacle(center, sc, opts.SafetyMargin) {
				g.blocked[y*g.cols+x] = true
			}
		}
	}
	return g
}

func (g *grid) inBounds(c cell) bool {
	return c.X >= 0 && c.X < g.cols && c.Y >= 0 && c.Y < g.rows
}

func (g *grid) isBlocked(c cell) bool {
	return !g.inBounds(c) || g.blocked[c.Y*g.cols+c.X]
}

func (g *grid) center(c cell) core.Point {
	return core.Point{
		X: g.origin.X + (float64(c.X)+0.5)*g.size,
		Y: g.origin.Y + (float64(c.Y)+0.5)*g.size,
	}
}

func (g *grid) cellAt(p core.Point) cell {
	return cell{
		X: int(math.Floor((p.X - g.origin.X) / g.size)),
		Y: int(math.Floor((p.Y - g.origin.Y) / g.size)),
	}
}

// snap finds the nearest non-blocked cell to p via an expanding ring
// search, ok=false when every cell within the snap radius is blocked.
func (g *grid) snap(p core.Point, maxRadius int) (cell, bool) {
	c := g.cellAt(p)
	if !g.isBlocked(c) {
		return c, true
	}
	for r := 1; r <= maxRadius; r++ {
		best := cell{}
		bestDist := math.Inf(1)
		found := false
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx > -r && dx < r && dy > -r && dy < r {
					continue // interior already covered by smaller rings
				}
				cand := cell{c.X + dx, c.Y + dy}
				if g.isBlocked(cand) {
					continue
				}
				if d := p.Dist(g.center(cand)); d < bestDist {
					bestDist = d
					best = cand
					found = true
				}
			}
		}
		if found {
			return best, true
		}
	}
	return cell{}, false
}

var neighborOffsets = [8]cell{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// FindPathAStar searches the rasterized scene for a minimal-cost path from
// start to end using 8-connected movement with Euclidean edge cost and
// heuristic. The heuristic is admissible and consistent, so the result is
// optimal over the discretized grid. On success the reconstructed path is
// smoothed to remove grid-induced zig-zag. When the goal is unreachable or
// an endpoint cannot be snapped onto the grid, a deterministic fallback
// chain runs: perpendicular detour points, then seeded random samples,
// then the single-point stay-in-place path. Never returns an empty slice.
func FindPathAStar(start, end core.Point, sc *core.Scene, rng *rand.Rand, opts Options) []core.Point {
	g := rasterize(start, end, sc, opts)

	startCell, ok1 := g.snap(start, opts.SnapRadius)
	endCell, ok2 := g.snap(end, opts.SnapRadius)
	if !ok1 || !ok2 {
		return fallbackPath(start, end, sc, rng, opts)
	}

	goal := g.center(endCell)
	open := &gridHeap{}
	heap.Init(open)
	heap.Push(open, &gridNode{
		cell: startCell,
		g:    0,
		f:    g.center(startCell).Dist(goal),
	})
	visited := make(map[cell]bool)

	for open.Len() > 0 {
		current := heap.Pop(open).(*gridNode)

		if current.cell == endCell {
			return smoothPath(reconstructCells(g, current, start, end), opts.SmoothingAngle)
		}

		if visited[current.cell] {
			continue
		}
		visited[current.cell] = true

		for _, off := range neighborOffsets {
			next := cell{current.cell.X + off.X, current.cell.Y + off.Y}
			if g.isBlocked(next) || visited[next] {
				continue
			}
			step := g.center(current.cell).Dist(g.center(next))
			heap.Push(open, &gridNode{
				cell:   next,
				g:      current.g + step,
				f:      current.g + step + g.center(next).Dist(goal),
				parent: current,
			})
		}
	}

	return fallbackPath(start, end, sc, rng, opts)
}

// reconstructCells walks parent pointers back to the start and pins the
// endpoints to the exact requested points.
func reconstructCells(g *grid, node *gridNode, start, end core.Point) []core.Point {
	var path []core.Point
	for n := node; n != nil; n = n.parent {
		path = append([]core.Point{g.center(n.cell)}, path...)
	}
	if len(path) == 1 {
		return []core.Point{start, end}
	}
	path[0] = start
	path[len(path)-1] = end
	return path
}

// smoothPath collapses consecutive segments whose turning angle stays
// below the threshold, removing the stair-stepping the grid introduces.
func smoothPath(path []core.Point, angle float64) []core.Point {
	if len(path) <= 2 {
		return path
	}
	out := []core.Point{path[0]}
	for i := 1; i < len(path)-1; i++ {
		in := path[i].Sub(out[len(out)-1]).Normalize()
		outDir := path[i+1].Sub(path[i]).Normalize()
		dot := in.Dot(outDir)
		if dot > 1 {
			dot = 1
		} else if dot < -1 {
			dot = -1
		}
		if math.Acos(dot) >= angle {
			out = append(out, path[i])
		}
	}
	return append(out, path[len(path)-1])
}

// fallbackPath is the give-up-gracefully chain: a clear direct segment,
// perpendicular detour points on both sides of the direct line, random
// samples within the span, and finally staying in place.
func fallbackPath(start, end core.Point, sc *core.Scene, rng *rand.Rand, opts Options) []core.Point {
	if geom.SegmentClear(start, end, sc) {
		return []core.Point{start, end}
	}

	d := end.Sub(start)
	dist := d.Norm()
	if dist < 1e-9 {
		return []core.Point{start}
	}
	mid := start.Add(d.Scale(0.5))
	perp := core.Point{X: -d.Y / dist, Y: d.X / dist}

	for _, frac := range detourFractions {
		for _, sign := range [...]float64{-1, 1} {
			detour := mid.Add(perp.Scale(sign * frac * dist))
			if geom.SegmentClear(start, detour, sc) && geom.SegmentClear(detour, end, sc) {
				return []core.Point{start, detour, end}
			}
		}
	}

	for i := 0; i < opts.RandomSamples; i++ {
		detour := mid.Add(core.Point{
			X: (rng.Float64()*2 - 1) * dist,
			Y: (rng.Float64()*2 - 1) * dist,
		}.Scale(0.5))
		if geom.SegmentClear(start, detour, sc) && geom.SegmentClear(detour, end, sc) {
			return []core.Point{start, detour, end}
		}
	}

	return []core.Point{start}
}
