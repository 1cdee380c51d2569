package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedflow/pedflow/internal/core"
)

func corridorScene() *core.Scene {
	sc := &core.Scene{
		SelectedModel:   core.SocialForce.String(),
		SimulationSpeed: 1,
		SimulationTime:  60,
		TimeStep:        0.05,
		Seed:            42,
	}
	sc.Elements = append(sc.Elements,
		core.NewElement(core.WalkableArea,
			core.Point{X: 0, Y: 0}, core.Point{X: 800, Y: 0},
			core.Point{X: 800, Y: 200}, core.Point{X: 0, Y: 200}),
		core.NewElement(core.ExitZone,
			core.Point{X: 760, Y: 0}, core.Point{X: 800, Y: 200}),
	)
	for i := 0; i < 5; i++ {
		y := 60.0 + float64(i)*20
		sc.Elements = append(sc.Elements,
			core.NewElement(core.StartPoint, core.Point{X: 40, Y: y}))
	}
	return sc
}

func TestNewSessionValidation(t *testing.T) {
	exit := core.NewElement(core.ExitZone, core.Point{X: 90, Y: 40}, core.Point{X: 100, Y: 60})
	area := core.NewElement(core.WalkableArea,
		core.Point{X: 0, Y: 0}, core.Point{X: 100, Y: 0},
		core.Point{X: 100, Y: 100}, core.Point{X: 0, Y: 100})
	start := core.NewElement(core.StartPoint, core.Point{X: 10, Y: 50})
	model := core.SocialForce.String()

	cases := []struct {
		name    string
		scene   *core.Scene
		missing string
	}{
		{"no walkable area", &core.Scene{SelectedModel: model, Elements: []*core.Element{start, exit}}, core.MissingWalkableArea},
		{"no agent source", &core.Scene{SelectedModel: model, Elements: []*core.Element{area, exit}}, core.MissingAgentSource},
		{"no exit", &core.Scene{SelectedModel: model, Elements: []*core.Element{area, start}}, core.MissingExit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSession(tc.scene, DefaultConfig())
			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.missing, verr.Missing)
		})
	}
}

func TestNewSessionUnknownModel(t *testing.T) {
	sc := corridorScene()
	sc.SelectedModel = "WarpDriveModel"

	_, err := NewSession(sc, DefaultConfig())
	var uerr *core.UnknownModelError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "WarpDriveModel", uerr.Name)
}

func TestNewSessionRejectsBadParams(t *testing.T) {
	sc := corridorScene()
	sc.SimulationTime = 10_000

	_, err := NewSession(sc, DefaultConfig())
	assert.Error(t, err)
}

func TestSpawnCounts(t *testing.T) {
	sc := corridorScene()
	src := core.NewElement(core.SourceRect,
		core.Point{X: 100, Y: 40}, core.Point{X: 300, Y: 160})
	src.Source.AgentCount = 20
	sc.Elements = append(sc.Elements, src)

	s, err := NewSession(sc, DefaultConfig())
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 25, stats.Spawned, "5 start points plus 20 from the source")
	assert.Zero(t, stats.Skipped, "the source sits fully inside the walkable area")
}

func TestRunCorridorEvacuates(t *testing.T) {
	s, err := NewSession(corridorScene(), DefaultConfig())
	require.NoError(t, err)

	tr, err := s.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, PhaseCompleted, s.Phase())

	require.NotEmpty(t, tr.Frames)
	first := tr.Frames[0]
	assert.Equal(t, 0.0, first.Time)
	assert.Len(t, first.Agents, 5)
	assert.Equal(t, 5, tr.AgentCount)

	prev := len(first.Agents)
	for i, fr := range tr.Frames {
		assert.LessOrEqual(t, len(fr.Agents), prev, "active count never grows")
		prev = len(fr.Agents)
		assert.InDelta(t, float64(i)*0.05, fr.Time, 1e-9, "frames evenly spaced")
	}
	assert.Equal(t, 5, s.Stats().Exited, "everyone reaches the exit")
	assert.Less(t, len(tr.Frames), int(60/0.05)+1, "finishes before the horizon")

	arrived := 0
	for _, fr := range tr.Frames {
		for _, ag := range fr.Agents {
			if ag.State == core.StateArrived {
				arrived++
			}
		}
	}
	assert.Equal(t, 5, arrived, "each agent gets exactly one arrived frame")
}

func TestRunDeterministicAcrossRuns(t *testing.T) {
	build := func() *core.Scene {
		sc := corridorScene()
		src := core.NewElement(core.SourceRect,
			core.Point{X: 100, Y: 40}, core.Point{X: 300, Y: 160})
		src.ID = "src-fixed"
		src.Source.AgentCount = 10
		sc.Elements = append(sc.Elements, src)
		return sc
	}

	tr1, err := Simulate(context.Background(), build(), DefaultConfig())
	require.NoError(t, err)
	tr2, err := Simulate(context.Background(), build(), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, tr1.Frames, tr2.Frames, "same scene and seed give identical trajectories")
	assert.NotEqual(t, tr1.RunID, tr2.RunID)
}

func TestRunStopsAtFrameHorizon(t *testing.T) {
	sc := &core.Scene{
		SelectedModel:   core.CollisionFreeSpeed.String(),
		SimulationSpeed: 1,
		SimulationTime:  1,
		TimeStep:        0.05,
		Seed:            42,
	}
	sc.Elements = append(sc.Elements,
		core.NewElement(core.WalkableArea,
			core.Point{X: 0, Y: 0}, core.Point{X: 100, Y: 0},
			core.Point{X: 100, Y: 100}, core.Point{X: 0, Y: 100}),
		core.NewElement(core.StartPoint, core.Point{X: 50, Y: 50}),
		core.NewElement(core.ExitZone,
			core.Point{X: 5000, Y: 5000}, core.Point{X: 5050, Y: 5050}),
	)

	s, err := NewSession(sc, DefaultConfig())
	require.NoError(t, err)
	tr, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, tr.Frames, int(1/0.05)+1, "exactly the frame budget")
	assert.Zero(t, s.Stats().Exited, "the exit is unreachable in one second")
}

func TestRunCancellation(t *testing.T) {
	s, err := NewSession(corridorScene(), DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr, err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, tr)
	assert.Equal(t, PhaseAborted, s.Phase())
}

func TestRunRoomWithDoor(t *testing.T) {
	sc := &core.Scene{
		SelectedModel:   core.CollisionFreeSpeedV2.String(),
		SimulationSpeed: 1,
		SimulationTime:  120,
		TimeStep:        0.05,
		Seed:            42,
	}
	room := core.NewElement(core.Room,
		core.Point{X: 40, Y: 40}, core.Point{X: 300, Y: 40},
		core.Point{X: 300, Y: 300}, core.Point{X: 40, Y: 300})
	door := core.NewElement(core.Door,
		core.Point{X: 300, Y: 150}, core.Point{X: 300, Y: 190})
	door.Door.ConnectingRoomIDs = []string{room.ID}
	sc.Elements = append(sc.Elements,
		core.NewElement(core.WalkableArea,
			core.Point{X: 0, Y: 0}, core.Point{X: 720, Y: 0},
			core.Point{X: 720, Y: 340}, core.Point{X: 0, Y: 340}),
		room, door,
		core.NewElement(core.StartPoint, core.Point{X: 100, Y: 170}),
		core.NewElement(core.ExitZone,
			core.Point{X: 680, Y: 0}, core.Point{X: 720, Y: 340}),
	)

	s, err := NewSession(sc, DefaultConfig())
	require.NoError(t, err)
	tr, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, s.Stats().Exited)
	assert.NotEmpty(t, tr.Frames)
}

func TestSequentialMatchesParallel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Parallel = false
	seq, err := Simulate(context.Background(), corridorScene(), cfg)
	require.NoError(t, err)

	par, err := Simulate(context.Background(), corridorScene(), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, seq.Frames, par.Frames)
}
