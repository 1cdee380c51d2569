package core

// AgentSnapshot is one agent's state inside a frame.
type AgentSnapshot struct {
	ID       string  `json:"id"`
	Position Point   `json:"position"`
	Radius   float64 `json:"radius"`
	Velocity Point   `json:"velocity"`
	State    string  `json:"state,omitempty"`
}

// Frame is one discrete time-step snapshot of all active agents. Frame
// times are monotonically increasing and evenly spaced by the configured
// time step.
type Frame struct {
	Time   float64         `json:"time"`
	Agents []AgentSnapshot `json:"agents"`
}

// Trajectory is the complete ordered frame sequence produced by one
// simulation run, the engine's sole output artifact.
type Trajectory struct {
	RunID          string
	Model          string
	TimeStep       float64
	SimulationTime float64
	AgentCount     int // agents present in the first frame
	Frames         []Frame
}
