package property

import (
	"errors"
	"fmt"
)

// Status is the result code handed back across the host call surface.
// Zero means success; everything else identifies one entry of the error
// taxonomy.
type Status int32

const (
	StatusOK                  Status = 0
	StatusNotSupported        Status = -1
	StatusUnknownObject       Status = -2
	StatusUnsupportedProperty Status = -3
	StatusNotSettable         Status = -4
	StatusBadPropertySize     Status = -5
	StatusStreamNotReady      Status = -6
	StatusInvalidClient       Status = -7
	StatusOverload            Status = -8
	StatusIllegalOperation    Status = -9
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotSupported:
		return "not supported"
	case StatusUnknownObject:
		return "unknown object"
	case StatusUnsupportedProperty:
		return "unsupported property"
	case StatusNotSettable:
		return "not settable"
	case StatusBadPropertySize:
		return "bad property size"
	case StatusStreamNotReady:
		return "stream not ready"
	case StatusInvalidClient:
		return "invalid client"
	case StatusOverload:
		return "overload"
	case StatusIllegalOperation:
		return "illegal operation"
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

// Error carries a Status across Go error chains.
type Error struct {
	Status  Status
	Message string
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is makes every wrapped *Error with the same status match the taxonomy
// sentinels below, so errors.Is(err, ErrUnknownObject) works on
// decorated errors.
func (e *Error) Is(target error) bool {
	var te *Error
	if !errors.As(target, &te) {
		return false
	}
	return e.Status == te.Status
}

func NewError(status Status, cause error) *Error {
	return &Error{
		Status:  status,
		Message: cause.Error(),
		cause:   cause,
	}
}

// Taxonomy sentinels. Wrap them with fmt.Errorf("%w: detail", ...) to
// add context without losing the status.
var (
	ErrNotSupported        = &Error{Status: StatusNotSupported, Message: "operation not supported"}
	ErrUnknownObject       = &Error{Status: StatusUnknownObject, Message: "unknown object"}
	ErrUnsupportedProperty = &Error{Status: StatusUnsupportedProperty, Message: "unsupported property"}
	ErrNotSettable         = &Error{Status: StatusNotSettable, Message: "property is not settable"}
	ErrBadPropertySize     = &Error{Status: StatusBadPropertySize, Message: "bad property size"}
	ErrStreamNotReady      = &Error{Status: StatusStreamNotReady, Message: "stream not ready"}
	ErrInvalidClient       = &Error{Status: StatusInvalidClient, Message: "invalid client"}
	ErrOverload            = &Error{Status: StatusOverload, Message: "cycle missed its deadline"}
	ErrIllegalOperation    = &Error{Status: StatusIllegalOperation, Message: "illegal operation"}
)

// StatusOf maps an error to its host result code. nil maps to StatusOK,
// errors outside the taxonomy to StatusNotSupported.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Status
	}
	return StatusNotSupported
}
