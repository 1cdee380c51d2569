package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedflow/pedflow/internal/core"
)

func waypointAt(x, y float64, connections ...string) *core.Element {
	wp := core.NewElement(core.WaypointNode, core.Point{X: x, Y: y})
	wp.Waypoint.Connections = connections
	return wp
}

func TestFindWaypointPathPrefersFewerHops(t *testing.T) {
	b := waypointAt(200, 100)
	c := waypointAt(300, 100)
	a := waypointAt(100, 100, b.ID, c.ID)
	b.Waypoint.Connections = []string{c.ID}
	sc := &core.Scene{Elements: []*core.Element{a, b, c}}

	path, ids, ok := FindWaypointPath(core.Point{X: 50, Y: 100}, core.Point{X: 350, Y: 100}, sc)
	require.True(t, ok)
	assert.Equal(t, []string{a.ID, c.ID}, ids, "direct edge beats the two-hop route")
	require.Len(t, path, 4)
	assert.Equal(t, core.Point{X: 50, Y: 100}, path[0])
	assert.Equal(t, core.Point{X: 350, Y: 100}, path[3])
}

func TestFindWaypointPathNoWaypoints(t *testing.T) {
	_, _, ok := FindWaypointPath(core.Point{}, core.Point{X: 100}, &core.Scene{})
	assert.False(t, ok)
}

func TestFindWaypointPathSameWaypoint(t *testing.T) {
	wp := waypointAt(100, 100)
	sc := &core.Scene{Elements: []*core.Element{wp}}

	path, ids, ok := FindWaypointPath(core.Point{X: 90, Y: 100}, core.Point{X: 110, Y: 100}, sc)
	require.True(t, ok)
	assert.Equal(t, []string{wp.ID}, ids)
	assert.Equal(t, []core.Point{{X: 90, Y: 100}, {X: 100, Y: 100}, {X: 110, Y: 100}}, path)
}

func TestFindWaypointPathCycleTerminates(t *testing.T) {
	a := waypointAt(100, 100)
	b := waypointAt(200, 100, a.ID)
	a.Waypoint.Connections = []string{b.ID}
	isolated := waypointAt(500, 100)
	sc := &core.Scene{Elements: []*core.Element{a, b, isolated}}

	_, _, ok := FindWaypointPath(core.Point{X: 90, Y: 100}, core.Point{X: 510, Y: 100}, sc)
	assert.False(t, ok, "nothing connects to the target waypoint")
}

func TestFindWaypointPathStaleConnection(t *testing.T) {
	b := waypointAt(200, 100)
	a := waypointAt(100, 100, "deleted-id", b.ID)
	sc := &core.Scene{Elements: []*core.Element{a, b}}

	_, ids, ok := FindWaypointPath(core.Point{X: 90, Y: 100}, core.Point{X: 210, Y: 100}, sc)
	require.True(t, ok)
	assert.Equal(t, []string{a.ID, b.ID}, ids)
}

func TestFindWaypointPathBlockedEdge(t *testing.T) {
	a := waypointAt(100, 100)
	b := waypointAt(300, 100)
	a.Waypoint.Connections = []string{b.ID}
	wall := core.NewElement(core.Obstacle,
		core.Point{X: 200, Y: 0}, core.Point{X: 200, Y: 200})
	sc := &core.Scene{Elements: []*core.Element{a, b, wall}}

	_, _, ok := FindWaypointPath(core.Point{X: 90, Y: 100}, core.Point{X: 310, Y: 100}, sc)
	assert.False(t, ok, "the only edge crosses an obstacle")
}
