package pos

import (
	"errors"
	"fmt"
)

// ErrNoPath is returned when no tag sequence reaches the final state.
var ErrNoPath = errors.New("no tag path reaches the final state")

// LoadError is returned when a model cannot be read or contains an invalid
// probability. Line is zero when the failure is not tied to a line.
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	source := e.Path
	if source == "" {
		source = "model"
	}
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", source, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type NoPathError struct {
	Tokens int
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("decode sentence of %d tokens: %v", e.Tokens, ErrNoPath)
}

func (e *NoPathError) Unwrap() error {
	return ErrNoPath
}
