package filter

import (
	"errors"
	"fmt"
)

// ErrNotAList is returned by Apply when the selected key does not hold a list
var ErrNotAList = errors.New("filter: value is not a list of records")

type (
	// CompilationError indicates a filter expression could not be compiled
	CompilationError struct {
		Expression string
		Reason     string
		Err        error
	}

	// UnknownPresetError indicates a preset name that is not registered
	UnknownPresetError struct {
		Name string
	}
)

func (e *CompilationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compilation error in '%s': %s: %v", e.Expression, e.Reason, e.Err)
	}
	return fmt.Sprintf("compilation error in '%s': %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

func (e *UnknownPresetError) Error() string {
	return fmt.Sprintf("filter preset '%s' not found", e.Name)
}
