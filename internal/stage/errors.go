package stage

import "errors"

// Sentinel errors for the handler lifecycle. Callers classify with
// errors.Is; none of these are retried by this package.
var (
	// ErrUnsupportedInput means the upstream format is not accepted by
	// the stage. Raised during setup, before any artifact exists.
	ErrUnsupportedInput = errors.New("input extension not supported")

	// ErrNoCompatibleFormat means no producible format is accepted by the
	// next stage.
	ErrNoCompatibleFormat = errors.New("no compatible output format for next stage")

	// ErrAmbiguousProcess means a stage implements more than one process
	// style. A stage-authoring defect, never resolved silently.
	ErrAmbiguousProcess = errors.New("stage implements more than one process style")

	// ErrArtifactBound means a second artifact was attached to a handler.
	// Handlers are single-use; this is a lifecycle misuse by the caller.
	ErrArtifactBound = errors.New("handler already has an artifact")
)
