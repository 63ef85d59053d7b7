package pipeline

import "fmt"

// Stage names a pipeline step.
type Stage string

const (
	StageFetch  Stage = "fetch"
	StageLocate Stage = "locate"
	StagePatch  Stage = "patch"
	StageBuild  Stage = "build"
	StageDeploy Stage = "deploy"
)

// StageError wraps the error that stopped a run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
