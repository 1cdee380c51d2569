// Package sim drives pedestrian-flow simulation runs: validating the
// scene, spawning agents, stepping the force models frame by frame, and
// accumulating the output trajectory.
//
// A run is an explicit Session value owned by the caller and advanced by
// Step; there is no global state. For a given scene and seed the produced
// trajectory is identical across runs.
package sim

import (
	"context"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pedflow/pedflow/internal/algo"
	"github.com/pedflow/pedflow/internal/core"
	"github.com/pedflow/pedflow/internal/geom"
	"github.com/pedflow/pedflow/internal/model"
)

// Phase tracks a run through its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseSpawning
	PhaseStepping
	PhaseCompleted
	PhaseAborted
)

func (p Phase) String() string {
	return [...]string{"idle", "validating", "spawning", "stepping", "completed", "aborted"}[p]
}

// Config tunes a simulation run. Zero values fall back to defaults.
type Config struct {
	// BaseSpeed is the agent speed in scene units (pixels) per second
	// before the scene's SimulationSpeed multiplier.
	BaseSpeed float64

	// RadiusMin/RadiusMax bound the per-agent radius jitter.
	RadiusMin float64
	RadiusMax float64

	// SpawnAttempts bounds rejection sampling inside a source rectangle.
	SpawnAttempts int

	// Seed is used when the scene carries none.
	Seed int64

	// Parallel evaluates per-agent forces concurrently within a frame.
	// Frame N+1 never begins before frame N is committed either way.
	Parallel bool

	Limits     core.Limits
	Pathfinder algo.Options
	Forces     model.Params
	Logger     *zap.Logger
}

// DefaultConfig returns the standard run configuration.
func DefaultConfig() Config {
	return Config{
		BaseSpeed:     50,
		RadiusMin:     4,
		RadiusMax:     6,
		SpawnAttempts: 15,
		Seed:          42,
		Parallel:      true,
		Limits:        core.DefaultLimits(),
		Pathfinder:    algo.DefaultOptions(),
		Forces:        model.DefaultParams(),
	}
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.BaseSpeed == 0 {
		c.BaseSpeed = def.BaseSpeed
	}
	if c.RadiusMin == 0 {
		c.RadiusMin = def.RadiusMin
	}
	if c.RadiusMax == 0 {
		c.RadiusMax = def.RadiusMax
	}
	if c.SpawnAttempts == 0 {
		c.SpawnAttempts = def.SpawnAttempts
	}
	if c.Seed == 0 {
		c.Seed = def.Seed
	}
	if c.Limits == (core.Limits{}) {
		c.Limits = def.Limits
	}
	if c.Pathfinder == (algo.Options{}) {
		c.Pathfinder = def.Pathfinder
	}
	if c.Forces == (model.Params{}) {
		c.Forces = def.Forces
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// agentRun is the transient per-agent state scoped to one run.
type agentRun struct {
	agent *core.Agent
	path  []core.Point
	total int // frames to traverse the whole path
	frame int // frames since spawn
	exit  *core.Element
}

// Stats summarizes a run.
type Stats struct {
	Spawned int
	Skipped int
	Exited  int
	Frames  int
}

// Session is one simulation run over an immutable scene snapshot.
type Session struct {
	cfg   Config
	scene *core.Scene
	mdl   core.Model
	rng   *rand.Rand
	log   *zap.Logger

	runID     string
	phase     Phase
	time      float64
	frameIdx  int
	maxFrames int

	active []*agentRun
	frames []core.Frame
	stats  Stats
}

// NewSession validates the scene, snapshots it, and spawns all agents.
// Validation failures come back as *core.ValidationError or
// *core.UnknownModelError before any stepping work happens.
func NewSession(sc *core.Scene, cfg Config) (*Session, error) {
	cfg.fillDefaults()

	s := &Session{
		cfg:   cfg,
		runID: uuid.NewString(),
		log:   cfg.Logger,
		phase: PhaseValidating,
	}

	scene := sc.Snapshot()
	scene.Normalize()
	if err := scene.CheckParams(cfg.Limits); err != nil {
		return nil, err
	}

	mdl, err := core.LookupModel(scene.SelectedModel)
	if err != nil {
		return nil, err
	}
	if err := validateScene(scene); err != nil {
		return nil, err
	}

	seed := scene.Seed
	if seed == 0 {
		seed = cfg.Seed
	}

	s.scene = scene
	s.mdl = mdl
	s.rng = rand.New(rand.NewSource(seed))
	s.maxFrames = int(scene.SimulationTime/scene.TimeStep) + 1

	s.phase = PhaseSpawning
	s.spawnAll()
	s.phase = PhaseIdle

	s.log.Info("session ready",
		zap.String("run_id", s.runID),
		zap.String("model", mdl.String()),
		zap.Int("agents", s.stats.Spawned),
		zap.Int("skipped", s.stats.Skipped),
		zap.Int("max_frames", s.maxFrames))
	return s, nil
}

// validateScene checks the categories a runnable scene must have. The
// engine reports the first missing one.
func validateScene(sc *core.Scene) error {
	if len(sc.WalkableAreas()) == 0 {
		return &core.ValidationError{Missing: core.MissingWalkableArea}
	}
	if len(sc.StartPoints()) == 0 && len(sc.Sources()) == 0 {
		return &core.ValidationError{Missing: core.MissingAgentSource}
	}
	if len(sc.Exits()) == 0 {
		return &core.ValidationError{Missing: core.MissingExit}
	}
	return nil
}

// Step records the current frame and advances every active agent by one
// time step. Returns false once the run is complete: the active set is
// empty or the configured horizon elapsed.
func (s *Session) Step() bool {
	if s.phase == PhaseCompleted || s.phase == PhaseAborted {
		return false
	}
	if len(s.active) == 0 || s.frameIdx >= s.maxFrames {
		s.phase = PhaseCompleted
		return false
	}
	s.phase = PhaseStepping

	s.recordFrame()
	s.advance()

	s.frameIdx++
	s.time += s.scene.TimeStep
	return true
}

// recordFrame snapshots every active agent at the current time.
func (s *Session) recordFrame() {
	snap := make([]core.AgentSnapshot, len(s.active))
	for i, run := range s.active {
		snap[i] = run.agent.Snapshot(s.agentState(run))
	}
	s.frames = append(s.frames, core.Frame{Time: s.time, Agents: snap})
	s.stats.Frames = len(s.frames)
}

// agentState derives the snapshot state tag from the agent's kinematics
// and surroundings.
func (s *Session) agentState(run *agentRun) string {
	ag := run.agent
	if ag.ReachedExit {
		return core.StateArrived
	}
	for _, door := range s.scene.Doors() {
		if door.Door != nil && door.Door.IsOpen && ag.Position.Dist(door.Center()) < 3*ag.Radius {
			return core.StateExiting
		}
	}
	if ag.Velocity.Norm() < 0.05*ag.MaxSpeed {
		return core.StateWaiting
	}
	return core.StateMoving
}

// advance retires agents whose arrival frame was just recorded, then
// computes forces for the rest against the committed frame and
// integrates. The force pass reads only prior-frame state, so it may run
// in parallel.
func (s *Session) advance() {
	dt := s.scene.TimeStep

	remaining := s.active[:0]
	for _, run := range s.active {
		if run.agent.ReachedExit {
			s.stats.Exited++
			continue
		}
		remaining = append(remaining, run)
	}
	s.active = remaining
	if len(s.active) == 0 {
		return
	}

	peers := make([]*core.Agent, len(s.active))
	for i, run := range s.active {
		peers[i] = run.agent
	}

	forces := make([]core.Point, len(s.active))
	compute := func(i int) {
		run := s.active[i]
		progress := model.Progress(s.mdl, run.frame, run.total)
		target := model.PointAlongPath(run.path, progress)
		forces[i] = model.Forces(run.agent, target, peers, s.scene, s.cfg.Forces)
	}

	if s.cfg.Parallel {
		var g errgroup.Group
		for i := range s.active {
			i := i
			g.Go(func() error {
				compute(i)
				return nil
			})
		}
		_ = g.Wait() // workers never fail
	} else {
		for i := range s.active {
			compute(i)
		}
	}

	for i, run := range s.active {
		model.Integrate(run.agent, forces[i], dt)
		run.frame++
		s.updateRoute(run)
	}
}

// updateRoute advances the agent's route index when it reaches its current
// waypoint or door, and marks the agent exited once it is geometrically
// inside its exit.
func (s *Session) updateRoute(run *agentRun) {
	ag := run.agent

	if room := geom.RoomContaining(ag.Position, s.scene); room != nil {
		ag.RoomID = room.ID
	} else {
		ag.RoomID = ""
	}

	targetID := ag.CurrentTarget()
	if targetID != "" && targetID != run.exit.ID {
		if elem := s.scene.ElementByID(targetID); elem != nil {
			if ag.Position.Dist(elem.Center()) < ag.Radius {
				ag.RouteIndex++
			}
		} else {
			ag.RouteIndex++ // target deleted mid-edit; skip it
		}
	}

	if reachedExit(ag, run.exit) {
		ag.ReachedExit = true
	}
}

// reachedExit tests rectangle containment, falling back to midpoint
// proximity for degenerate (zero-area) exit lines.
func reachedExit(ag *core.Agent, exit *core.Element) bool {
	min, max := exit.Rect()
	if max.X-min.X > 1e-9 && max.Y-min.Y > 1e-9 {
		return geom.PointInRect(ag.Position, min, max)
	}
	return ag.Position.Dist(exit.Center()) < 2*ag.Radius
}

// Run steps the session to completion, honoring cancellation between
// frames. A cancelled run discards its partial trajectory.
func (s *Session) Run(ctx context.Context) (*core.Trajectory, error) {
	for {
		select {
		case <-ctx.Done():
			s.phase = PhaseAborted
			return nil, ctx.Err()
		default:
		}
		if !s.Step() {
			break
		}
	}
	s.log.Info("simulation completed",
		zap.String("run_id", s.runID),
		zap.Int("frames", s.stats.Frames),
		zap.Int("spawned", s.stats.Spawned),
		zap.Int("exited", s.stats.Exited))
	return s.Trajectory(), nil
}

// Trajectory returns the frames produced so far.
func (s *Session) Trajectory() *core.Trajectory {
	tr := &core.Trajectory{
		RunID:          s.runID,
		Model:          s.mdl.String(),
		TimeStep:       s.scene.TimeStep,
		SimulationTime: s.scene.SimulationTime,
		Frames:         s.frames,
	}
	if len(s.frames) > 0 {
		tr.AgentCount = len(s.frames[0].Agents)
	}
	return tr
}

// Phase returns the session's current lifecycle phase.
func (s *Session) Phase() Phase { return s.phase }

// Stats returns run counters.
func (s *Session) Stats() Stats { return s.stats }

// Simulate is the convenience path: build a session for the scene and run
// it to completion.
func Simulate(ctx context.Context, sc *core.Scene, cfg Config) (*core.Trajectory, error) {
	s, err := NewSession(sc, cfg)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}

// framesFor converts a path length into a frame budget. Paths shorter
// than one step still take a frame.
func framesFor(pathLen, speed, dt float64) int {
	if speed <= 0 || dt <= 0 {
		return 1
	}
	return int(math.Max(1, math.Ceil(pathLen/(speed*dt))))
}
