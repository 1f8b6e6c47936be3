package phytron

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrLinkFault is returned by a link whose transport previously failed.
// The link refuses further exchanges until ClearFault is called after a
// reconnect.
var ErrLinkFault = errors.New("controller link is faulted")

// NotAcknowledgedError is returned when the controller answers a command
// with NAK instead of ACK. The command is never retried automatically.
type NotAcknowledgedError struct {
	Command string
}

func (e *NotAcknowledgedError) Error() string {
	return fmt.Sprintf("controller did not acknowledge command %q", e.Command)
}

// IsNotAcknowledged reports whether err is a NotAcknowledgedError.
func IsNotAcknowledged(err error) bool {
	var nak *NotAcknowledgedError
	return errors.As(err, &nak)
}

// OutOfRangeError is returned when a parameter write is rejected before
// transmission because the value falls outside the documented bounds.
type OutOfRangeError struct {
	Name     string
	Value    float64
	Min, Max float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s value %v not in range %v..%v", e.Name, e.Value, e.Min, e.Max)
}

// StatusLayoutError is returned when a flag index is referenced beyond the
// width of the decoded status word. This indicates a generation/profile
// mismatch and is never silently defaulted.
type StatusLayoutError struct {
	Index int
	Width int
}

func (e *StatusLayoutError) Error() string {
	return fmt.Sprintf("status flag index %d out of range for %d decoded flags", e.Index, e.Width)
}
