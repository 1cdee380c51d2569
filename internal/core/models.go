package core

// Model selects the force/kinematics model a run uses.
type Model int

const (
	CollisionFreeSpeed Model = iota
	CollisionFreeSpeedV2
	GeneralizedCentrifugalForce
	SocialForce
)

func (m Model) String() string {
	return [...]string{
		"CollisionFreeSpeedModel",
		"CollisionFreeSpeedModelV2",
		"GeneralizedCentrifugalForceModel",
		"SocialForceModel",
	}[m]
}

// ModelInfo describes a registry entry for callers listing the supported
// models.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Models returns the fixed registry of supported simulation models.
func Models() []ModelInfo {
	return []ModelInfo{
		{ID: "1", Name: CollisionFreeSpeed.String(), Description: "A speed model that avoids collisions between agents"},
		{ID: "2", Name: CollisionFreeSpeedV2.String(), Description: "An improved version of the Collision Free Speed Model"},
		{ID: "3", Name: GeneralizedCentrifugalForce.String(), Description: "A force-based model that simulates repulsive forces between agents"},
		{ID: "4", Name: SocialForce.String(), Description: "A model based on social forces between pedestrians"},
	}
}

// LookupModel resolves a model name, failing closed on anything outside
// the registry.
func LookupModel(name string) (Model, error) {
	for m := CollisionFreeSpeed; m <= SocialForce; m++ {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, &UnknownModelError{Name: name}
}
