// FILE: hookwisp/src/internal/sink/errors.go
package sink

import (
	"fmt"
)

// ConfigError aborts sink construction
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("webhook sink config: %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("webhook sink config: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Stage identifies where in Submit a failure happened
type Stage string

const (
	StageFormat  Stage = "format"
	StageBuild   Stage = "build"
	StageDeliver Stage = "deliver"
)

// SubmitError is the single error type Submit returns in propagate mode.
// The underlying EncodingError, BuildError or DeliveryError is reachable
// through errors.As.
type SubmitError struct {
	Stage Stage
	Err   error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("webhook sink %s failed: %v", e.Stage, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}
