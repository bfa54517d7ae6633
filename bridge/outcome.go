package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable covers every reason a screenshot could not be produced.
	ErrUnavailable = errors.New("screenshot unavailable")
	// ErrPermissionDenied means write access to shared storage is missing.
	ErrPermissionDenied = errors.New("write permission to shared storage missing")
	// ErrNotImplemented is returned for operation names the bridge does not know.
	ErrNotImplemented = errors.New("not implemented")
)

// Status is the terminal state of a single bridge call.
type Status int

const (
	StatusOK Status = iota
	StatusUnavailable
	StatusPermissionDenied
	StatusNotImplemented
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "unavailable"
	case StatusPermissionDenied:
		return "permission_denied"
	case StatusNotImplemented:
		return "not_implemented"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the structured result of a bridge operation. Exactly one of Path or Data
// is set when Status is StatusOK. Err carries the swallowed cause for diagnostics.
type Outcome struct {
	Status Status
	Path   string
	Data   []byte
	Err    error
}

func (o Outcome) OK() bool {
	return o.Status == StatusOK
}

// Value collapses the outcome to what the channel caller sees: a path, the encoded
// bytes, or nil for every failure.
func (o Outcome) Value() interface{} {
	if o.Status != StatusOK {
		return nil
	}
	if o.Path != "" {
		return o.Path
	}
	return o.Data
}

func pathOutcome(path string) Outcome {
	return Outcome{Status: StatusOK, Path: path}
}

func dataOutcome(data []byte) Outcome {
	return Outcome{Status: StatusOK, Data: data}
}

func unavailable(format string, args ...interface{}) Outcome {
	return Outcome{
		Status: StatusUnavailable,
		Err:    fmt.Errorf("%w: %s", ErrUnavailable, fmt.Sprintf(format, args...)),
	}
}

func unavailableErr(context string, err error) Outcome {
	return Outcome{
		Status: StatusUnavailable,
		Err:    fmt.Errorf("%w: %s: %w", ErrUnavailable, context, err),
	}
}

func permissionDenied() Outcome {
	return Outcome{Status: StatusPermissionDenied, Err: ErrPermissionDenied}
}

func notImplemented(method string) Outcome {
	return Outcome{
		Status: StatusNotImplemented,
		Err:    fmt.Errorf("%w: %s", ErrNotImplemented, method),
	}
}
