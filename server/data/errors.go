package data

import (
	"errors"
	"fmt"
)

// ErrEmptyResult marks a well-formed remote response that carried no data.
// It is distinguishable from a transport failure so callers can render
// "no data" instead of an error state
var ErrEmptyResult = errors.New("query returned no data")

// StructureNotFoundError reports a dataflow id the remote catalog does not
// know, or a structure message that could not be interpreted
type StructureNotFoundError struct {
	Dataflow string
	Reason   string
}

func (e *StructureNotFoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("structure for dataflow %q not found: %s", e.Dataflow, e.Reason)
	}
	return fmt.Sprintf("structure for dataflow %q not found", e.Dataflow)
}

// InvalidDimensionKeyError reports a caller-supplied selection key that the
// dataflow's structure does not declare. Rejected before any remote call
type InvalidDimensionKeyError struct {
	Dataflow string
	Key      string
}

func (e *InvalidDimensionKeyError) Error() string {
	return fmt.Sprintf("dimension %q is not declared by dataflow %q", e.Key, e.Dataflow)
}

// RemoteUnavailableError wraps a transport failure that survived the retry
// policy
type RemoteUnavailableError struct {
	Err error
}

func (e *RemoteUnavailableError) Error() string {
	return fmt.Sprintf("remote catalog unavailable: %v", e.Err)
}

func (e *RemoteUnavailableError) Unwrap() error {
	return e.Err
}
