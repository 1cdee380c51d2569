// Package algo implements the two pathfinders: breadth-first search over
// the waypoint graph and grid-based A* with obstacle inflation.
package algo

import (
	"math"

	"github.com/pedflow/pedflow/internal/core"
	"github.com/pedflow/pedflow/internal/geom"
)

// FindWaypointPath routes from start to end through the scene's waypoint
// graph. It picks the nearest waypoint with line of sight to each endpoint
// and breadth-first searches the directed connection graph, only
// traversing edges whose straight segment clears every obstacle. The
// returned path is [start, waypoints..., end] together with the traversed
// waypoint ids; ok is false when the scene has no waypoints, no endpoint
// has line of sight to one, or the graph search exhausts without reaching
// the target. BFS minimizes hop count, not geometric length.
func FindWaypointPath(start, end core.Point, sc *core.Scene) (path []core.Point, ids []string, ok bool) {
	wps := sc.Waypoints()
	if len(wps) == 0 {
		return nil, nil, false
	}

	first := nearestVisibleWaypoint(start, wps, sc)
	last := nearestVisibleWaypoint(end, wps, sc)
	if first == nil || last == nil {
		return nil, nil, false
	}

	if first.ID == last.ID {
		return []core.Point{start, first.Position(), end}, []string{first.ID}, true
	}

	hops := bfsWaypoints(first, last, wps, sc)
	if hops == nil {
		return nil, nil, false
	}

	path = make([]core.Point, 0, len(hops)+2)
	ids = make([]string, 0, len(hops))
	path = append(path, start)
	for _, wp := range hops {
		path = append(path, wp.Position())
		ids = append(ids, wp.ID)
	}
	path = append(path, end)
	return path, ids, true
}

// nearestVisibleWaypoint returns the closest waypoint whose straight
// segment to p crosses no obstacle edge, nil when every waypoint is
// occluded.
func nearestVisibleWaypoint(p core.Point, wps []*core.Element, sc *core.Scene) *core.Element {
	var best *core.Element
	bestDist := math.Inf(1)
	for _, wp := range wps {
		pos := wp.Position()
		if !geom.SegmentClear(p, pos, sc) {
			continue
		}
		if d := p.Dist(pos); d < bestDist {
			bestDist = d
			best = wp
		}
	}
	return best
}

// bfsWaypoints searches the directed connection graph from first to last.
// Visited-set tracking by id keeps cycles from looping forever.
func bfsWaypoints(first, last *core.Element, wps []*core.Element, sc *core.Scene) []*core.Element {
	byID := make(map[string]*core.Element, len(wps))
	for _, wp := range wps {
		byID[wp.ID] = wp
	}

	type queued struct {
		wp   *core.Element
		path []*core.Element
	}
	queue := []queued{{first, []*core.Element{first}}}
	visited := map[string]bool{first.ID: true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.wp.ID == last.ID {
			return cur.path
		}

		for _, connID := range cur.wp.Connections() {
			if visited[connID] {
				continue
			}
			next, ok := byID[connID]
			if !ok {
				continue // stale connection to a deleted waypoint
			}
			if !geom.SegmentClear(cur.wp.Position(), next.Position(), sc) {
				continue
			}
			visited[connID] = true
			branch := append(append([]*core.Element(nil), cur.path...), next)
			queue = append(queue, queued{next, branch})
		}
	}
	return nil
}
