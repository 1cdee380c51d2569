package core

import "fmt"

// Limits bound what a single simulation request may ask for. Values mirror
// the editor's backend configuration.
type Limits struct {
	MaxSimulationTime float64 // seconds
	MaxTimeStep       float64 // seconds
	MaxSpeedFactor    float64
	MaxAgents         int
}

// DefaultLimits returns the standard engine limits.
func DefaultLimits() Limits {
	return Limits{
		MaxSimulationTime: 300,
		MaxTimeStep:       1,
		MaxSpeedFactor:    10,
		MaxAgents:         1000,
	}
}

// Scene is the full set of elements at simulation start plus the selected
// model and run parameters. The editor keeps mutating its live copy; a run
// operates on the snapshot taken at start time.
type Scene struct {
	Elements []*Element

	SelectedModel   string
	SimulationSpeed float64 // speed multiplier applied to the base agent speed
	SimulationTime  float64 // horizon in seconds
	TimeStep        float64 // seconds per frame
	Seed            int64   // RNG seed; same scene + same seed gives an identical trajectory
}

// Snapshot returns a deep copy, isolating a running simulation from
// further editor mutations.
func (sc *Scene) Snapshot() *Scene {
	c := *sc
	c.Elements = make([]*Element, len(sc.Elements))
	for i, e := range sc.Elements {
		c.Elements[i] = e.Clone()
	}
	return &c
}

// ElementByID finds an element by id, nil if absent.
func (sc *Scene) ElementByID(id string) *Element {
	for _, e := range sc.Elements {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (sc *Scene) byType(t ElementType) []*Element {
	var out []*Element
	for _, e := range sc.Elements {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// WalkableAreas returns every polygon agents may walk inside: walkable
// area elements and rooms, both with at least 3 vertices.
func (sc *Scene) WalkableAreas() []*Element {
	var out []*Element
	for _, e := range sc.Elements {
		if (e.Type == WalkableArea || e.Type == Room) && e.IsPolygon() {
			out = append(out, e)
		}
	}
	return out
}

// Obstacles returns obstacle polygons.
func (sc *Scene) Obstacles() []*Element { return sc.byType(Obstacle) }

// StartPoints returns single-agent spawn locations.
func (sc *Scene) StartPoints() []*Element { return sc.byType(StartPoint) }

// Sources returns source rectangles.
func (sc *Scene) Sources() []*Element { return sc.byType(SourceRect) }

// Exits returns exit zones.
func (sc *Scene) Exits() []*Element { return sc.byType(ExitZone) }

// Waypoints returns waypoint nodes.
func (sc *Scene) Waypoints() []*Element { return sc.byType(WaypointNode) }

// Rooms returns room polygons.
func (sc *Scene) Rooms() []*Element { return sc.byType(Room) }

// Doors returns doors.
func (sc *Scene) Doors() []*Element { return sc.byType(Door) }

// DeleteElement removes the element with the given id and cascades the
// removal through every waypoint's connection list and every door's room
// list, so no element ever references a deleted id.
func (sc *Scene) DeleteElement(id string) bool {
	idx := -1
	for i, e := range sc.Elements {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	sc.Elements = append(sc.Elements[:idx], sc.Elements[idx+1:]...)

	for _, e := range sc.Elements {
		if e.Waypoint != nil {
			e.Waypoint.Connections = removeID(e.Waypoint.Connections, id)
		}
		if e.Door != nil {
			e.Door.ConnectingRoomIDs = removeID(e.Door.ConnectingRoomIDs, id)
		}
	}
	return true
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Bounds returns the axis-aligned bounding box over every element vertex
// plus any extra points. Zero box when the scene is empty.
func (sc *Scene) Bounds(extra ...Point) (min, max Point) {
	first := true
	grow := func(p Point) {
		if first {
			min, max = p, p
			first = false
			return
		}
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	for _, e := range sc.Elements {
		for _, p := range e.Points {
			grow(p)
		}
	}
	for _, p := range extra {
		grow(p)
	}
	return min, max
}

// Normalize fills unset run parameters with their defaults.
func (sc *Scene) Normalize() {
	if sc.TimeStep == 0 {
		sc.TimeStep = 0.05
	}
	if sc.SimulationTime == 0 {
		sc.SimulationTime = 10
	}
	if sc.SimulationSpeed == 0 {
		sc.SimulationSpeed = 1
	}
}

// CheckParams validates the run parameters against engine limits. Malformed
// parameters reject the whole simulation request.
func (sc *Scene) CheckParams(lim Limits) error {
	if sc.TimeStep <= 0 || sc.TimeStep > lim.MaxTimeStep {
		return fmt.Errorf("time step must be in (0, %g] seconds, got %g", lim.MaxTimeStep, sc.TimeStep)
	}
	if sc.SimulationTime <= 0 || sc.SimulationTime > lim.MaxSimulationTime {
		return fmt.Errorf("simulation time must be in (0, %g] seconds, got %g", lim.MaxSimulationTime, sc.SimulationTime)
	}
	if sc.SimulationSpeed < 0 || sc.SimulationSpeed > lim.MaxSpeedFactor {
		return fmt.Errorf("simulation speed must be in [0, %g], got %g", lim.MaxSpeedFactor, sc.SimulationSpeed)
	}
	total := len(sc.StartPoints())
	for _, src := range sc.Sources() {
		total += src.AgentCount()
	}
	if lim.MaxAgents > 0 && total > lim.MaxAgents {
		return fmt.Errorf("scene requests %d agents, limit is %d", total, lim.MaxAgents)
	}
	return nil
}
