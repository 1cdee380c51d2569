package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteElementCascades(t *testing.T) {
	room := NewElement(Room, Point{X: 0, Y: 0}, Point{X: 100, Y: 0}, Point{X: 100, Y: 100}, Point{X: 0, Y: 100})
	door := NewElement(Door, Point{X: 100, Y: 40}, Point{X: 100, Y: 60})
	door.Door.ConnectingRoomIDs = []string{room.ID}
	wpB := NewElement(WaypointNode, Point{X: 200, Y: 50})
	wpA := NewElement(WaypointNode, Point{X: 150, Y: 50})
	wpA.Waypoint.Connections = []string{wpB.ID}
	sc := &Scene{Elements: []*Element{room, door, wpA, wpB}}

	require.True(t, sc.DeleteElement(wpB.ID))
	assert.Empty(t, wpA.Waypoint.Connections, "connection to the deleted waypoint is removed")

	require.True(t, sc.DeleteElement(room.ID))
	assert.Empty(t, door.Door.ConnectingRoomIDs, "door no longer references the deleted room")

	assert.False(t, sc.DeleteElement("no-such-id"))
	assert.Len(t, sc.Elements, 2)
}

func TestSceneSnapshotIsolation(t *testing.T) {
	wp := NewElement(WaypointNode, Point{X: 1, Y: 2})
	wp.Waypoint.Connections = []string{"x"}
	sc := &Scene{Elements: []*Element{wp}, SelectedModel: SocialForce.String()}

	snap := sc.Snapshot()
	wp.Points[0] = Point{X: 9, Y: 9}
	wp.Waypoint.Connections[0] = "mutated"

	assert.Equal(t, Point{X: 1, Y: 2}, snap.Elements[0].Points[0])
	assert.Equal(t, "x", snap.Elements[0].Waypoint.Connections[0])
}

func TestSceneAccessorsFilterByType(t *testing.T) {
	sc := &Scene{Elements: []*Element{
		NewElement(WalkableArea, Point{}, Point{X: 10}, Point{X: 10, Y: 10}),
		NewElement(Room, Point{}, Point{X: 10}, Point{X: 10, Y: 10}),
		NewElement(Obstacle, Point{X: 5, Y: 5}, Point{X: 6, Y: 6}),
		NewElement(StartPoint, Point{X: 1, Y: 1}),
		NewElement(ExitZone, Point{X: 8, Y: 8}, Point{X: 9, Y: 9}),
	}}

	assert.Len(t, sc.WalkableAreas(), 2, "room polygons are walkable")
	assert.Len(t, sc.Obstacles(), 1)
	assert.Len(t, sc.StartPoints(), 1)
	assert.Len(t, sc.Exits(), 1)
	assert.Empty(t, sc.Sources())
}

func TestBounds(t *testing.T) {
	sc := &Scene{Elements: []*Element{
		NewElement(Obstacle, Point{X: 10, Y: 20}, Point{X: 30, Y: 5}),
	}}
	min, max := sc.Bounds(Point{X: -5, Y: 40})
	assert.Equal(t, Point{X: -5, Y: 5}, min)
	assert.Equal(t, Point{X: 30, Y: 40}, max)
}

func TestNormalizeDefaults(t *testing.T) {
	sc := &Scene{}
	sc.Normalize()
	assert.Equal(t, 0.05, sc.TimeStep)
	assert.Equal(t, 10.0, sc.SimulationTime)
	assert.Equal(t, 1.0, sc.SimulationSpeed)
}

func TestCheckParams(t *testing.T) {
	lim := DefaultLimits()

	ok := &Scene{SimulationTime: 60, TimeStep: 0.05, SimulationSpeed: 1}
	assert.NoError(t, ok.CheckParams(lim))

	bad := &Scene{SimulationTime: 500, TimeStep: 0.05, SimulationSpeed: 1}
	assert.Error(t, bad.CheckParams(lim))

	bad = &Scene{SimulationTime: 60, TimeStep: 2, SimulationSpeed: 1}
	assert.Error(t, bad.CheckParams(lim))

	bad = &Scene{SimulationTime: 60, TimeStep: 0.05, SimulationSpeed: 50}
	assert.Error(t, bad.CheckParams(lim))

	src := NewElement(SourceRect, Point{}, Point{X: 10, Y: 10})
	src.Source.AgentCount = 2000
	bad = &Scene{SimulationTime: 60, TimeStep: 0.05, SimulationSpeed: 1, Elements: []*Element{src}}
	assert.Error(t, bad.CheckParams(lim), "agent budget exceeded")
}

func TestLookupModel(t *testing.T) {
	m, err := LookupModel("SocialForceModel")
	require.NoError(t, err)
	assert.Equal(t, SocialForce, m)

	_, err = LookupModel("TotallyMadeUpModel")
	var unknown *UnknownModelError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "TotallyMadeUpModel", unknown.Name)

	_, err = LookupModel("")
	assert.Error(t, err, "empty name fails closed")
}

func TestModelsRegistry(t *testing.T) {
	ms := Models()
	require.Len(t, ms, 4)
	for _, m := range ms {
		got, err := LookupModel(m.Name)
		require.NoError(t, err)
		assert.Equal(t, m.Name, got.String())
	}
}

func TestAgentCurrentTarget(t *testing.T) {
	ag := &Agent{Route: []string{"a", "b"}}
	assert.Equal(t, "a", ag.CurrentTarget())
	ag.RouteIndex = 2
	assert.Equal(t, "", ag.CurrentTarget())
}

func TestElementDefaults(t *testing.T) {
	src := NewElement(SourceRect, Point{}, Point{X: 10, Y: 10})
	assert.Equal(t, DefaultAgentCount, src.AgentCount())
	src.Source.AgentCount = -3
	assert.Equal(t, DefaultAgentCount, src.AgentCount(), "non-positive count falls back")

	door := NewElement(Door, Point{}, Point{X: 10})
	assert.True(t, door.Door.IsOpen, "doors start open")
	assert.False(t, door.ConnectsRoom("r1"))
	door.Door.ConnectingRoomIDs = []string{"r1"}
	assert.True(t, door.ConnectsRoom("r1"))

	exit := NewElement(ExitZone, Point{X: 0, Y: 0}, Point{X: 10, Y: 20})
	assert.Equal(t, Point{X: 5, Y: 10}, exit.Center())
}
