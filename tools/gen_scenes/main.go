// Package main generates deterministic sample scenes for the simulation
// engine. Useful for benchmarks and manual testing of the CLI.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/pedflow/pedflow/internal/core"
)

func main() {
	outDir := flag.String("out", "scenes", "output directory")
	seed := flag.Int64("seed", 42, "random seed baked into the scenes")
	agents := flag.Int("agents", 25, "source agent count for the crowd scene")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	scenes := []struct {
		name  string
		scene *core.Scene
	}{
		{"corridor.json", corridorScene(*seed)},
		{"crowd.json", crowdScene(*seed, *agents)},
		{"rooms.json", roomScene(*seed)},
	}
	for _, s := range scenes {
		data, err := core.EncodeScene(s.scene)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		path := filepath.Join(*outDir, s.name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%d elements)\n", path, len(s.scene.Elements))
	}
}

// corridorScene is a straight run: five start points walking a corridor to
// a single exit.
func corridorScene(seed int64) *core.Scene {
	sc := &core.Scene{
		SelectedModel:   core.SocialForce.String(),
		SimulationSpeed: 1,
		SimulationTime:  60,
		TimeStep:        0.05,
		Seed:            seed,
	}
	sc.Elements = append(sc.Elements,
		core.NewElement(core.WalkableArea,
			core.Point{X: 0, Y: 0}, core.Point{X: 800, Y: 0},
			core.Point{X: 800, Y: 200}, core.Point{X: 0, Y: 200}),
		core.NewElement(core.ExitZone,
			core.Point{X: 760, Y: 60}, core.Point{X: 800, Y: 140}),
	)
	for i := 0; i < 5; i++ {
		y := 40.0 + float64(i)*30
		sc.Elements = append(sc.Elements,
			core.NewElement(core.StartPoint, core.Point{X: 40, Y: y}))
	}
	return sc
}

// crowdScene stresses the repulsion terms: one source rectangle emptying
// through a narrow exit past an obstacle.
func crowdScene(seed int64, agents int) *core.Scene {
	sc := &core.Scene{
		SelectedModel:   core.CollisionFreeSpeed.String(),
		SimulationSpeed: 1,
		SimulationTime:  120,
		TimeStep:        0.05,
		Seed:            seed,
	}
	src := core.NewElement(core.SourceRect,
		core.Point{X: 40, Y: 40}, core.Point{X: 240, Y: 360})
	src.Source.AgentCount = agents

	sc.Elements = append(sc.Elements,
		core.NewElement(core.WalkableArea,
			core.Point{X: 0, Y: 0}, core.Point{X: 600, Y: 0},
			core.Point{X: 600, Y: 400}, core.Point{X: 0, Y: 400}),
		src,
		core.NewElement(core.Obstacle,
			core.Point{X: 320, Y: 120}, core.Point{X: 400, Y: 120},
			core.Point{X: 400, Y: 280}, core.Point{X: 320, Y: 280}),
		core.NewElement(core.ExitZone,
			core.Point{X: 560, Y: 170}, core.Point{X: 600, Y: 230}),
	)
	return sc
}

// roomScene exercises rooms, doors, and the waypoint graph. Agents leave a
// room through its door and follow two waypoints to the exit.
func roomScene(seed int64) *core.Scene {
	rng := rand.New(rand.NewSource(seed))

	sc := &core.Scene{
		SelectedModel:   core.CollisionFreeSpeedV2.String(),
		SimulationSpeed: 1,
		SimulationTime:  120,
		TimeStep:        0.05,
		Seed:            seed,
	}

	room := core.NewElement(core.Room,
		core.Point{X: 40, Y: 40}, core.Point{X: 300, Y: 40},
		core.Point{X: 300, Y: 300}, core.Point{X: 40, Y: 300})
	room.Room.Name = "lobby"

	door := core.NewElement(core.Door,
		core.Point{X: 300, Y: 150}, core.Point{X: 300, Y: 190})
	door.Door.ConnectingRoomIDs = []string{room.ID}

	wpA := core.NewElement(core.WaypointNode, core.Point{X: 420, Y: 170})
	wpB := core.NewElement(core.WaypointNode, core.Point{X: 560, Y: 170})
	wpA.Waypoint.Connections = []string{wpB.ID}
	wpB.Waypoint.Connections = []string{wpA.ID}

	sc.Elements = append(sc.Elements,
		core.NewElement(core.WalkableArea,
			core.Point{X: 0, Y: 0}, core.Point{X: 720, Y: 0},
			core.Point{X: 720, Y: 340}, core.Point{X: 0, Y: 340}),
		room, door, wpA, wpB,
		core.NewElement(core.ExitZone,
			core.Point{X: 680, Y: 140}, core.Point{X: 720, Y: 200}),
	)
	for i := 0; i < 4; i++ {
		p := core.Point{
			X: 80 + rng.Float64()*180,
			Y: 80 + rng.Float64()*180,
		}
		sc.Elements = append(sc.Elements, core.NewElement(core.StartPoint, p))
	}
	return sc
}
