package core

import "fmt"

// Validation categories a scene must satisfy before any simulation work
// begins.
const (
	MissingWalkableArea = "walkable area"
	MissingAgentSource  = "agent source"
	MissingExit         = "exit"
)

// ValidationError reports a scene that cannot be simulated. It is produced
// during validation, never mid-run.
type ValidationError struct {
	Missing string // the absent element category
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("scene validation failed: no %s defined", e.Missing)
}

// UnknownModelError reports a model name outside the fixed registry. This
// is a configuration error and is raised at validation time.
type UnknownModelError struct {
	Name string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown simulation model %q", e.Name)
}
