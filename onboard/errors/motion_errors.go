package errors

import (
	"fmt"
	"time"
)

// HomingTimeoutError reports a homing run that never reached a detectable
// stall before the deadline. A jammed or free-spinning actuator looks
// exactly like this; the caller must treat the position reference as
// uncalibrated.
type HomingTimeoutError struct {
	Direction string
	Elapsed   time.Duration
}

func (err HomingTimeoutError) Error() string {
	if len(err.Direction) == 0 {
		err.Direction = "UNKOWN"
	}

	return fmt.Sprintf("homing %s did not stall within %s", err.Direction, err.Elapsed)
}

// HomingCancelledError reports a homing run aborted by its context.
type HomingCancelledError struct {
	Direction string
}

func (err HomingCancelledError) Error() string {
	return fmt.Sprintf("homing %s cancelled", err.Direction)
}

// ConfigVersionError reports a device config whose schema version falls
// outside the range this build understands.
type ConfigVersionError struct {
	Version    string
	Constraint string
}

func (err ConfigVersionError) Error() string {
	return fmt.Sprintf("unable to use config version %s - require %s", err.Version, err.Constraint)
}
