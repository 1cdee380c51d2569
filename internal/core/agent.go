package core

// Agent state tags carried on trajectory snapshots.
const (
	StateMoving  = "moving"
	StateWaiting = "waiting"
	StateExiting = "exiting"
	StateArrived = "arrived"
)

// Agent is a dynamic simulation entity. Created when spawned from a start
// point or source rectangle, removed from the active set once ReachedExit
// is true or the frame horizon ends.
type Agent struct {
	ID       string
	Position Point
	Velocity Point
	Radius   float64
	MaxSpeed float64

	// Route lists target element ids in order: waypoints and doors to
	// pass, ending with an exit. RouteIndex is the current target.
	Route      []string
	RouteIndex int

	RoomID      string // room containing the agent, empty outside rooms
	ReachedExit bool
}

// CurrentTarget returns the id of the route element the agent is heading
// for, empty once the route is exhausted.
func (a *Agent) CurrentTarget() string {
	if a.RouteIndex < 0 || a.RouteIndex >= len(a.Route) {
		return ""
	}
	return a.Route[a.RouteIndex]
}

// Snapshot captures the agent's state for a trajectory frame.
func (a *Agent) Snapshot(state string) AgentSnapshot {
	return AgentSnapshot{
		ID:       a.ID,
		Position: a.Position,
		Radius:   a.Radius,
		Velocity: a.Velocity,
		State:    state,
	}
}
