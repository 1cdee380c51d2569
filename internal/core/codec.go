package core

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// elementWire mirrors the editor's element payload, including the legacy
// open properties bag, which is narrowed into the typed variants on decode.
type elementWire struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Points     []Point    `json:"points"`
	Properties *propsWire `json:"properties,omitempty"`
}

type propsWire struct {
	AgentCount        *int     `json:"agentCount,omitempty"`
	Connections       []string `json:"connections,omitempty"`
	Name              string   `json:"name,omitempty"`
	Capacity          *int     `json:"capacity,omitempty"`
	ConnectingRoomIDs []string `json:"connectingRoomIds,omitempty"`
	IsOpen            *bool    `json:"isOpen,omitempty"`
}

type sceneWire struct {
	Elements        []elementWire `json:"elements"`
	SelectedModel   string        `json:"selectedModel"`
	SimulationSpeed float64       `json:"simulationSpeed"`
	SimulationTime  float64       `json:"simulationTime"`
	TimeStep        float64       `json:"timeStep"`
	Seed            int64         `json:"seed,omitempty"`
}

type trajectoryWire struct {
	Frames   []Frame            `json:"frames"`
	Metadata trajectoryMetadata `json:"metadata"`
}

type trajectoryMetadata struct {
	SimulationTime float64 `json:"simulationTime"`
	TimeStep       float64 `json:"timeStep"`
	ModelName      string  `json:"modelName"`
	AgentCount     int     `json:"agentCount"`
	RunID          string  `json:"runId,omitempty"`
}

// element type names on the wire; the upper-case forms are the editor's
// legacy tool names.
var elementTypeNames = map[string]ElementType{
	"walkable-line":    WalkableArea,
	"obstacle":         Obstacle,
	"start-point":      StartPoint,
	"source-rectangle": SourceRect,
	"exit-point":       ExitZone,
	"waypoint":         WaypointNode,
	"room":             Room,
	"door":             Door,

	"STREET_LINE":      WalkableArea,
	"FREE_LINE":        WalkableArea,
	"OBSTACLE":         Obstacle,
	"START_POINT":      StartPoint,
	"SOURCE_RECTANGLE": SourceRect,
	"EXIT_POINT":       ExitZone,
	"WAYPOINT":         WaypointNode,
	"ROOM":             Room,
	"DOOR":             Door,
}

// DecodeScene parses a simulation request payload into a Scene. A payload
// with an unrecognized element type or missing required fields is rejected
// as a malformed request.
func DecodeScene(data []byte) (*Scene, error) {
	var w sceneWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	sc := &Scene{
		SelectedModel:   w.SelectedModel,
		SimulationSpeed: w.SimulationSpeed,
		SimulationTime:  w.SimulationTime,
		TimeStep:        w.TimeStep,
		Seed:            w.Seed,
	}
	for i, ew := range w.Elements {
		t, ok := elementTypeNames[ew.Type]
		if !ok {
			return nil, fmt.Errorf("decode scene: element %d has unknown type %q", i, ew.Type)
		}
		e := &Element{ID: ew.ID, Type: t, Points: ew.Points}
		if e.ID == "" {
			return nil, fmt.Errorf("decode scene: element %d has no id", i)
		}
		applyProps(e, ew.Properties)
		sc.Elements = append(sc.Elements, e)
	}
	sc.Normalize()
	return sc, nil
}

func applyProps(e *Element, p *propsWire) {
	switch e.Type {
	case SourceRect:
		e.Source = &SourceProps{AgentCount: DefaultAgentCount}
		if p != nil && p.AgentCount != nil && *p.AgentCount > 0 {
			e.Source.AgentCount = *p.AgentCount
		}
	case WaypointNode:
		e.Waypoint = &WaypointProps{}
		if p != nil {
			e.Waypoint.Connections = p.Connections
		}
	case Room:
		e.Room = &RoomProps{Capacity: DefaultRoomCapacity}
		if p != nil {
			e.Room.Name = p.Name
			if p.Capacity != nil && *p.Capacity > 0 {
				e.Room.Capacity = *p.Capacity
			}
		}
	case Door:
		e.Door = &DoorProps{IsOpen: true}
		if p != nil {
			e.Door.ConnectingRoomIDs = p.ConnectingRoomIDs
			if p.IsOpen != nil {
				e.Door.IsOpen = *p.IsOpen
			}
		}
	}
}

// EncodeScene renders a scene back to the request wire shape. Used by the
// scene generator and round-trip tests.
func EncodeScene(sc *Scene) ([]byte, error) {
	w := sceneWire{
		SelectedModel:   sc.SelectedModel,
		SimulationSpeed: sc.SimulationSpeed,
		SimulationTime:  sc.SimulationTime,
		TimeStep:        sc.TimeStep,
		Seed:            sc.Seed,
	}
	for _, e := range sc.Elements {
		ew := elementWire{ID: e.ID, Type: e.Type.String(), Points: e.Points}
		switch {
		case e.Source != nil:
			n := e.Source.AgentCount
			ew.Properties = &propsWire{AgentCount: &n}
		case e.Waypoint != nil:
			if len(e.Waypoint.Connections) > 0 {
				ew.Properties = &propsWire{Connections: e.Waypoint.Connections}
			}
		case e.Room != nil:
			c := e.Room.Capacity
			ew.Properties = &propsWire{Name: e.Room.Name, Capacity: &c}
		case e.Door != nil:
			open := e.Door.IsOpen
			ew.Properties = &propsWire{ConnectingRoomIDs: e.Door.ConnectingRoomIDs, IsOpen: &open}
		}
		w.Elements = append(w.Elements, ew)
	}
	return json.MarshalIndent(w, "", "  ")
}

// EncodeTrajectory renders a trajectory to the playback wire shape.
func EncodeTrajectory(tr *Trajectory) ([]byte, error) {
	w := trajectoryWire{
		Frames: tr.Frames,
		Metadata: trajectoryMetadata{
			SimulationTime: tr.SimulationTime,
			TimeStep:       tr.TimeStep,
			ModelName:      tr.Model,
			AgentCount:     tr.AgentCount,
			RunID:          tr.RunID,
		},
	}
	if w.Frames == nil {
		w.Frames = []Frame{}
	}
	return json.Marshal(w)
}
