// Package model implements the pedestrian force and kinematics models: the
// summed social-force terms, semi-implicit Euler integration, and the
// per-model mapping from elapsed frames to progress along a precomputed
// path.
package model

import (
	"math"

	"github.com/pedflow/pedflow/internal/core"
	"github.com/pedflow/pedflow/internal/geom"
)

// Params weights the force terms. Scene coordinates are canvas pixels, so
// the defaults are pixel-scaled.
type Params struct {
	DesiredGain       float64 // desired-force gain applied to max speed
	RepulsionStrength float64 // agent-agent repulsion
	ObstacleStrength  float64 // obstacle-edge repulsion
	DoorAttraction    float64 // pull toward the chosen door when leaving a room
}

// DefaultParams returns the standard force weights.
func DefaultParams() Params {
	return Params{
		DesiredGain:       2.0, // desired speed over a 0.5s relaxation time
		RepulsionStrength: 2.0,
		ObstacleStrength:  10.0,
		DoorAttraction:    3.0,
	}
}

// DesiredForce attracts the agent toward its target: the unit direction
// scaled by gain and max speed. Zero when the agent sits on the target.
func DesiredForce(ag *core.Agent, target core.Point, p Params) core.Point {
	return target.Sub(ag.Position).Normalize().Scale(p.DesiredGain * ag.MaxSpeed)
}

// AgentRepulsion sums exponential-decay repulsion from every peer within
// three combined radii. The cutoff is hard, not smoothed; beyond it peers
// exert no force. For two agents of equal radius the forces are equal and
// opposite.
func AgentRepulsion(ag *core.Agent, peers []*core.Agent, p Params) core.Point {
	var sum core.Point
	for _, other := range peers {
		if other.ID == ag.ID || other.ReachedExit {
			continue
		}
		delta := ag.Position.Sub(other.Position)
		dist := delta.Norm()
		combined := ag.Radius + other.Radius
		if dist < 1e-9 || dist > 3*combined {
			continue
		}
		strength := p.RepulsionStrength * math.Exp(-(dist-combined)/combined)
		sum = sum.Add(delta.Scale(strength / dist))
	}
	return sum
}

// ObstacleRepulsion pushes the agent away from the closest point on each
// obstacle boundary within five radii, with the same exponential decay as
// agent repulsion.
func ObstacleRepulsion(ag *core.Agent, sc *core.Scene, p Params) core.Point {
	var sum core.Point
	for _, obs := range sc.Obstacles() {
		if len(obs.Points) < 2 {
			continue
		}
		cp := geom.ClosestPointOnPolygon(ag.Position, obs.Points)
		delta := ag.Position.Sub(cp)
		dist := delta.Norm()
		if dist < 1e-9 || dist > 5*ag.Radius {
			continue
		}
		strength := p.ObstacleStrength * math.Exp(-(dist-ag.Radius)/ag.Radius)
		sum = sum.Add(delta.Scale(strength / dist))
	}
	return sum
}

// DoorAttraction pulls an agent inside a room toward the best door when
// its target lies outside that room. The chosen door is the open,
// connected one minimizing distance(agent,door) + distance(door,target).
func DoorAttraction(ag *core.Agent, target core.Point, sc *core.Scene, p Params) core.Point {
	if ag.RoomID == "" {
		return core.Point{}
	}
	room := sc.ElementByID(ag.RoomID)
	if room == nil || geom.PointInPolygon(target, room.Points) {
		return core.Point{}
	}

	var best *core.Element
	bestCost := math.Inf(1)
	for _, door := range sc.Doors() {
		if door.Door == nil || !door.Door.IsOpen || !door.ConnectsRoom(ag.RoomID) {
			continue
		}
		center := door.Center()
		cost := ag.Position.Dist(center) + center.Dist(target)
		if cost < bestCost {
			bestCost = cost
			best = door
		}
	}
	if best == nil {
		return core.Point{}
	}
	return best.Center().Sub(ag.Position).Normalize().Scale(p.DoorAttraction)
}

// Forces sums every force term acting on the agent this frame and returns
// the resulting acceleration vector.
func Forces(ag *core.Agent, target core.Point, peers []*core.Agent, sc *core.Scene, p Params) core.Point {
	f := DesiredForce(ag, target, p)
	f = f.Add(AgentRepulsion(ag, peers, p))
	f = f.Add(ObstacleRepulsion(ag, sc, p))
	f = f.Add(DoorAttraction(ag, target, sc, p))
	return f
}

// Integrate advances the agent one step of semi-implicit Euler: velocity
// first, clamped to max speed, then position.
func Integrate(ag *core.Agent, force core.Point, dt float64) {
	ag.Velocity = ag.Velocity.Add(force.Scale(dt))
	if speed := ag.Velocity.Norm(); speed > ag.MaxSpeed && speed > 0 {
		ag.Velocity = ag.Velocity.Scale(ag.MaxSpeed / speed)
	}
	ag.Position = ag.Position.Add(ag.Velocity.Scale(dt))
}

// Progress maps elapsed frames to path progress in [0,1]. Each model
// shapes the mapping differently; this governs where along the
// precomputed path the desired position sits each frame.
func Progress(m core.Model, frame, total int) float64 {
	if total <= 0 {
		return 1
	}
	f := float64(frame) / float64(total)
	var p float64
	switch m {
	case core.CollisionFreeSpeed:
		p = math.Min(f*1.2, 1)
	case core.CollisionFreeSpeedV2:
		p = 0.5 * (1 - math.Cos(math.Pi*math.Min(f, 1)))
	case core.GeneralizedCentrifugalForce:
		p = f * (1 + 0.2*math.Sin(10*f))
	case core.SocialForce:
		p = f + math.Sin(float64(frame)*0.2)*0.1
	default:
		p = f
	}
	return clamp01(p)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// PointAlongPath interpolates the path by arc length: progress 0 is the
// first vertex, 1 the last. Degenerate paths return their single point.
func PointAlongPath(path []core.Point, progress float64) core.Point {
	if len(path) == 0 {
		return core.Point{}
	}
	if len(path) == 1 {
		return path[0]
	}
	progress = clamp01(progress)

	total := 0.0
	for i := 1; i < len(path); i++ {
		total += path[i].Dist(path[i-1])
	}
	if total < 1e-9 {
		return path[0]
	}

	remaining := progress * total
	for i := 1; i < len(path); i++ {
		seg := path[i].Dist(path[i-1])
		if remaining <= seg {
			if seg < 1e-9 {
				return path[i]
			}
			return path[i-1].Add(path[i].Sub(path[i-1]).Scale(remaining / seg))
		}
		remaining -= seg
	}
	return path[len(path)-1]
}
