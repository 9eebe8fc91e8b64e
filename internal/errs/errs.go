// Package errs defines the error taxonomy shared by the perception pipeline.
//
// Callers wrap these sentinels with fmt.Errorf("...: %w", err) and classify
// failures with errors.Is. Only ErrNotFound on the root input path and
// ErrInvalidArgument on call-level parameters abort a whole batch; everything
// else is downgraded to a per-image error entry.
package errs

import "errors"

var (
	// ErrNotFound is returned for a missing input path or an unreadable image file.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for call parameters outside their allowed
	// values, such as an unknown mode override or partial camera parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrProviderUnavailable is returned when a model provider cannot be acquired.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrDegenerateInput marks input that cannot support a computation, such as
	// a zero-moment luminance field. It is normally recovered locally.
	ErrDegenerateInput = errors.New("degenerate input")
)
