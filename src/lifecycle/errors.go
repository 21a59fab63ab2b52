package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNameInUse means another instance already owns the name. During
	// concurrent creates the exclusive state-directory mkdir decides the
	// winner; the loser gets this error and should retry with a new name
	// or after re-checking.
	ErrNameInUse = errors.New("instance already exists")

	// ErrPortInUse rejects an explicitly requested port that is already
	// assigned or bound.
	ErrPortInUse = errors.New("port already in use")
)

// StepFailure is one failed step inside a multi-step operation.
type StepFailure struct {
	Step string
	Err  error
}

// PartialError reports a multi-step operation where some steps succeeded
// and some failed. Delete always runs every step and returns one of these
// instead of stopping at the first failure.
type PartialError struct {
	Op    string
	Steps []StepFailure
}

func (e *PartialError) Error() string {
	parts := make([]string, 0, len(e.Steps))
	for _, s := range e.Steps {
		parts = append(parts, fmt.Sprintf("%s: %v", s.Step, s.Err))
	}
	return fmt.Sprintf("%s completed with %d failed step(s): %s", e.Op, len(e.Steps), strings.Join(parts, "; "))
}

// Unwrap exposes the step errors to errors.Is/errors.As.
func (e *PartialError) Unwrap() []error {
	out := make([]error, len(e.Steps))
	for i, s := range e.Steps {
		out[i] = s.Err
	}
	return out
}
