package nn

import "github.com/pkg/errors"

// Errors returned by the engine. They are contract violations by the caller
// and are never retried internally.
var (
	ErrUninitializedFunctions     = errors.New("activation or derivative function is not set")
	ErrUninitializedTrainingState = errors.New("delta buffers are not allocated, call InitLearn first")
	ErrShapeMismatch              = errors.New("buffer length does not match layer size")
	ErrEmptyTopology              = errors.New("topology must contain at least one layer of positive size")
	ErrMalformedDocument          = errors.New("malformed network document")
)

func shapeMismatch(what string, got, want int) error {
	return errors.Wrapf(ErrShapeMismatch, "%s has %d values, want %d", what, got, want)
}
