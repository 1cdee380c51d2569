// Package core defines the domain model for pedestrian-flow scenes:
// elements drawn on the canvas, the scene snapshot handed to the engine,
// agents, and the trajectory the engine emits.
package core

import (
	"math"

	"github.com/google/uuid"
)

// Point is a scene-local coordinate in canvas pixels. Immutable value type;
// all vector operations return new points.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }
func (p Point) Dot(q Point) float64   { return p.X*q.X + p.Y*q.Y }
func (p Point) Norm() float64         { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64  { return p.Sub(q).Norm() }

// Normalize returns the unit vector. A zero-length vector normalizes to the
// zero vector rather than NaN.
func (p Point) Normalize() Point {
	n := p.Norm()
	if n < 1e-12 {
		return Point{}
	}
	return Point{p.X / n, p.Y / n}
}

// ElementType classifies placed scene objects.
type ElementType int

const (
	WalkableArea ElementType = iota // Polygon agents may walk inside
	Obstacle                        // Polygon agents must avoid
	StartPoint                      // Single agent spawn location
	SourceRect                      // Rectangle spawning AgentCount agents
	ExitZone                        // Rectangle (two opposite corners) agents leave through
	WaypointNode                    // Named point with directed connections
	Room                            // Named walkable polygon with capacity
	Door                            // Two-point opening between rooms
)

func (t ElementType) String() string {
	return [...]string{
		"walkable-line", "obstacle", "start-point", "source-rectangle",
		"exit-point", "waypoint", "room", "door",
	}[t]
}

// SourceProps configures a source rectangle.
type SourceProps struct {
	AgentCount int
}

// WaypointProps holds the directed outgoing connections of a waypoint.
// A connection from A to B does not imply one from B to A.
type WaypointProps struct {
	Connections []string
}

// RoomProps names a room and bounds its occupancy.
type RoomProps struct {
	Name     string
	Capacity int
}

// DoorProps links a door to the rooms it connects.
type DoorProps struct {
	ConnectingRoomIDs []string
	IsOpen            bool
}

// Element is a placed scene object. Points semantics depend on Type:
// polygon vertices for areas/obstacles/rooms, two opposite corners for
// source and exit rectangles, a single point for start points and
// waypoints, two endpoints for doors. At most one of the property structs
// is populated, matching Type.
type Element struct {
	ID     string
	Type   ElementType
	Points []Point

	Source   *SourceProps
	Waypoint *WaypointProps
	Room     *RoomProps
	Door     *DoorProps
}

// DefaultAgentCount is the number of agents a source spawns when the user
// never set one.
const DefaultAgentCount = 10

// DefaultRoomCapacity bounds room occupancy when unset.
const DefaultRoomCapacity = 100

// NewElement creates an element with a generated id and type-appropriate
// default properties.
func NewElement(t ElementType, points ...Point) *Element {
	e := &Element{
		ID:     uuid.NewString(),
		Type:   t,
		Points: points,
	}
	switch t {
	case SourceRect:
		e.Source = &SourceProps{AgentCount: DefaultAgentCount}
	case WaypointNode:
		e.Waypoint = &WaypointProps{}
	case Room:
		e.Room = &RoomProps{Capacity: DefaultRoomCapacity}
	case Door:
		e.Door = &DoorProps{IsOpen: true}
	}
	return e
}

// Position returns the element's anchor point (first vertex). Zero point
// for an element with no vertices.
func (e *Element) Position() Point {
	if len(e.Points) == 0 {
		return Point{}
	}
	return e.Points[0]
}

// Rect returns the axis-aligned rectangle spanned by the element's first
// two points, normalized so min <= max on both axes.
func (e *Element) Rect() (min, max Point) {
	if len(e.Points) < 2 {
		p := e.Position()
		return p, p
	}
	a, b := e.Points[0], e.Points[1]
	return Point{math.Min(a.X, b.X), math.Min(a.Y, b.Y)},
		Point{math.Max(a.X, b.X), math.Max(a.Y, b.Y)}
}

// Center returns the midpoint of the element's bounding rectangle. For
// doors and exits this is the point agents aim for.
func (e *Element) Center() Point {
	min, max := e.Rect()
	return Point{(min.X + max.X) / 2, (min.Y + max.Y) / 2}
}

// IsPolygon reports whether the element carries enough vertices to act as
// a polygon.
func (e *Element) IsPolygon() bool { return len(e.Points) >= 3 }

// AgentCount returns the configured spawn count for a source, or the
// default when unset.
func (e *Element) AgentCount() int {
	if e.Source == nil || e.Source.AgentCount <= 0 {
		return DefaultAgentCount
	}
	return e.Source.AgentCount
}

// Connections returns the waypoint's outgoing edges, nil for non-waypoints.
func (e *Element) Connections() []string {
	if e.Waypoint == nil {
		return nil
	}
	return e.Waypoint.Connections
}

// ConnectsRoom reports whether a door connects the given room.
func (e *Element) ConnectsRoom(roomID string) bool {
	if e.Door == nil {
		return false
	}
	for _, id := range e.Door.ConnectingRoomIDs {
		if id == roomID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	c := *e
	c.Points = append([]Point(nil), e.Points...)
	if e.Source != nil {
		s := *e.Source
		c.Source = &s
	}
	if e.Waypoint != nil {
		w := WaypointProps{Connections: append([]string(nil), e.Waypoint.Connections...)}
		c.Waypoint = &w
	}
	if e.Room != nil {
		r := *e.Room
		c.Room = &r
	}
	if e.Door != nil {
		d := DoorProps{
			ConnectingRoomIDs: append([]string(nil), e.Door.ConnectingRoomIDs...),
			IsOpen:            e.Door.IsOpen,
		}
		c.Door = &d
	}
	return &c
}
