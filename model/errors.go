package model

import (
	"errors"
	"fmt"
)

var (
	// ErrStructural marks input that fails the minimal shape check. It is the
	// only hard reject of the pipeline.
	ErrStructural = errors.New("structural error")

	ErrInputTooLarge = fmt.Errorf("%w: input exceeds size limit", ErrStructural)
	ErrNoNodes       = fmt.Errorf("%w: no nodes after extraction", ErrStructural)
	ErrMissingShape  = fmt.Errorf("%w: object has neither nodes nor connections", ErrStructural)
)

// StructuralError carries the reason a document could not be built.
type StructuralError struct {
	Reason string
	Err    error
}

func (e *StructuralError) Error() string {
	if errors.Is(e.Err, ErrStructural) {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("structural error: %s: %v", e.Reason, e.Err)
	}
	return "structural error: " + e.Reason
}

func (e *StructuralError) Unwrap() error { return e.Err }

func (e *StructuralError) Is(target error) bool { return target == ErrStructural }
