package nn

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	ErrConfig        = errors.New("invalid configuration")
	ErrShapeMismatch = errors.New("shape mismatch")
)

// ConfigError reports an invalid construction argument.
type ConfigError struct {
	Field  string // Config field at fault (e.g. "HiddenDims[1]")
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// ShapeMismatchError reports an input whose shape disagrees with the network.
type ShapeMismatchError struct {
	Field string // "batch", "labels", "labels[3]", or a parameter name
	Want  int
	Got   int
	Desc  string // what Want and Got count
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: %s: want %d %s, got %d", e.Field, e.Want, e.Desc, e.Got)
}

// Is reports whether target is ErrShapeMismatch.
func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

func configError(field, format string, args ...interface{}) error {
	return errors.WithStack(&ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)})
}

func shapeError(field string, want, got int, desc string) error {
	return errors.WithStack(&ShapeMismatchError{Field: field, Want: want, Got: got, Desc: desc})
}
