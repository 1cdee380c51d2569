package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pedflow/pedflow/internal/algo"
	"github.com/pedflow/pedflow/internal/core"
	"github.com/pedflow/pedflow/internal/geom"
)

// spawnAll places one agent on every start point and AgentCount agents in
// every source rectangle, in the scene's element order.
func (s *Session) spawnAll() {
	for _, sp := range s.scene.StartPoints() {
		s.spawnAgent(sp.Position())
	}
	for _, src := range s.scene.Sources() {
		min, max := src.Rect()
		for n := 0; n < src.AgentCount(); n++ {
			pos, ok := s.samplePosition(min, max)
			if !ok {
				s.stats.Skipped++
				s.log.Debug("spawn rejected",
					zap.String("source", src.ID),
					zap.Int("attempts", s.cfg.SpawnAttempts))
				continue
			}
			s.spawnAgent(pos)
		}
	}
}

// samplePosition rejection-samples a walkable, obstacle-clear point inside
// the rectangle. Gives up after the configured attempt budget.
func (s *Session) samplePosition(min, max core.Point) (core.Point, bool) {
	for attempt := 0; attempt < s.cfg.SpawnAttempts; attempt++ {
		p := core.Point{
			X: min.X + s.rng.Float64()*(max.X-min.X),
			Y: min.Y + s.rng.Float64()*(max.Y-min.Y),
		}
		if !geom.InsideWalkableArea(p, s.scene) {
			continue
		}
		if geom.NearObstacle(p, s.scene, s.cfg.Pathfinder.SafetyMargin) {
			continue
		}
		return p, true
	}
	return core.Point{}, false
}

// spawnAgent creates an agent at pos, assigns its nearest exit, and plans
// its route: waypoint graph first, grid search as the fallback.
func (s *Session) spawnAgent(pos core.Point) {
	exit := s.nearestExit(pos)
	if exit == nil {
		return
	}

	ag := &core.Agent{
		ID:       fmt.Sprintf("agent-%d", s.stats.Spawned),
		Position: pos,
		Radius:   s.cfg.RadiusMin + s.rng.Float64()*(s.cfg.RadiusMax-s.cfg.RadiusMin),
		MaxSpeed: s.cfg.BaseSpeed * s.scene.SimulationSpeed,
	}
	if room := geom.RoomContaining(pos, s.scene); room != nil {
		ag.RoomID = room.ID
	}

	goal := exit.Center()
	path, waypointIDs, ok := algo.FindWaypointPath(pos, goal, s.scene)
	if !ok {
		path = algo.FindPathAStar(pos, goal, s.scene, s.rng, s.cfg.Pathfinder)
		waypointIDs = nil
	}
	ag.Route = s.buildRoute(ag, waypointIDs, exit, goal)

	run := &agentRun{
		agent: ag,
		path:  path,
		total: framesFor(pathLength(path), ag.MaxSpeed, s.scene.TimeStep),
		exit:  exit,
	}
	s.active = append(s.active, run)
	s.stats.Spawned++
}

// buildRoute lists the element IDs the agent will pass: best door out of
// its room when the exit lies elsewhere, then waypoints, then the exit.
func (s *Session) buildRoute(ag *core.Agent, waypointIDs []string, exit *core.Element, goal core.Point) []string {
	var route []string
	if ag.RoomID != "" {
		if room := s.scene.ElementByID(ag.RoomID); room != nil && !geom.PointInPolygon(goal, room.Points) {
			if door := bestDoor(ag.Position, goal, ag.RoomID, s.scene); door != nil {
				route = append(route, door.ID)
			}
		}
	}
	route = append(route, waypointIDs...)
	return append(route, exit.ID)
}

// bestDoor picks the open door on the room that minimizes the detour
// through it.
func bestDoor(pos, goal core.Point, roomID string, sc *core.Scene) *core.Element {
	var best *core.Element
	bestCost := 0.0
	for _, door := range sc.Doors() {
		if door.Door == nil || !door.Door.IsOpen || !door.ConnectsRoom(roomID) {
			continue
		}
		c := door.Center()
		cost := pos.Dist(c) + c.Dist(goal)
		if best == nil || cost < bestCost {
			best, bestCost = door, cost
		}
	}
	return best
}

// nearestExit returns the exit whose center is closest to pos.
func (s *Session) nearestExit(pos core.Point) *core.Element {
	var best *core.Element
	bestDist := 0.0
	for _, exit := range s.scene.Exits() {
		d := pos.Dist(exit.Center())
		if best == nil || d < bestDist {
			best, bestDist = exit, d
		}
	}
	return best
}

func pathLength(path []core.Point) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += path[i-1].Dist(path[i])
	}
	return total
}
