package provisioning

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnknown is any failure not raised through Error.
	KindUnknown Kind = iota
	// KindValidation is a missing or invalid configuration value.
	KindValidation
	// KindConflict is an existing tenant that was not cleared.
	KindConflict
	// KindDependency is a failed external lookup, install or server startup.
	KindDependency
	// KindPersistence is a failed configuration write. It skips rollback.
	KindPersistence
	// KindProvisioning is a failed tenant or user operation. It triggers rollback.
	KindProvisioning
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindDependency:
		return "dependency"
	case KindPersistence:
		return "persistence"
	case KindProvisioning:
		return "provisioning"
	default:
		return "unknown"
	}
}

// ErrDeclined is wrapped when the operator refuses a destructive confirmation.
var ErrDeclined = errors.New("declined by operator")

// DefaultFailureMessage is reported for failures without a specific message.
const DefaultFailureMessage = "Install was unsuccessful. Please check the console output."

// Error is a classified phase failure with an operator-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// NewError creates an Error.
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first Error in err's chain.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// MessageOf returns the operator-facing message for err.
func MessageOf(err error) string {
	var perr *Error
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return DefaultFailureMessage
}

// RunError is the outcome of an aborted run.
type RunError struct {
	Stage       Stage
	Kind        Kind
	Message     string
	Err         error
	RollbackErr error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s (while %s): %v", e.Message, e.Stage.Label(), e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
