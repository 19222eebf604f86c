package errors

import (
	"fmt"
)

// ParseError represents a sysdef document parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures sysdef or runtime configuration validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DuplicatePortError reports two connections claiming the same part/port
// while both are active at the snapshot instant. It always indicates a data
// integrity violation upstream, so snapshot construction aborts on it.
type DuplicatePortError struct {
	Side string
	Key  string
}

// NewDuplicatePortError constructs a DuplicatePortError for the colliding key.
func NewDuplicatePortError(side, key string) error {
	return &DuplicatePortError{Side: side, Key: key}
}

func (e *DuplicatePortError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("duplicate active %s port %s", e.Side, e.Key)
}

// DuplicateStatusError reports more than one open apriori status for an antenna.
type DuplicateStatusError struct {
	Antenna string
}

// NewDuplicateStatusError constructs a DuplicateStatusError.
func NewDuplicateStatusError(antenna string) error {
	return &DuplicateStatusError{Antenna: antenna}
}

func (e *DuplicateStatusError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s already has an active apriori status", e.Antenna)
}

// UnknownPartTypeError indicates the topology definition has no port table
// for the requested part type.
type UnknownPartTypeError struct {
	PartType     string
	Side         string
	Polarization string
}

// NewUnknownPartTypeError constructs an UnknownPartTypeError.
func NewUnknownPartTypeError(partType, side, polarization string) error {
	return &UnknownPartTypeError{PartType: partType, Side: side, Polarization: polarization}
}

func (e *UnknownPartTypeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Side != "" {
		return fmt.Sprintf("unknown part type %q for side %s polarization %s", e.PartType, e.Side, e.Polarization)
	}
	return fmt.Sprintf("unknown part type %q", e.PartType)
}

// UnknownTopologyError indicates a hookup topology name missing from the
// topology definition.
type UnknownTopologyError struct {
	Topology string
}

// NewUnknownTopologyError constructs an UnknownTopologyError.
func NewUnknownTopologyError(topology string) error {
	return &UnknownTopologyError{Topology: topology}
}

func (e *UnknownTopologyError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("unknown hookup topology %q", e.Topology)
}

// CycleError is raised when a hookup walk revisits a connection or exceeds
// its step bound. The connection data contains a cycle.
type CycleError struct {
	Part string
	Port string
}

// NewCycleError constructs a CycleError for the part/port where the walk tripped.
func NewCycleError(part, port string) error {
	return &CycleError{Part: part, Port: port}
}

func (e *CycleError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("connection cycle detected at %s port %s", e.Part, e.Port)
}

// DateParseError reports a malformed date/time literal with the offending input echoed.
type DateParseError struct {
	Input   string
	Message string
}

// NewDateParseError constructs a DateParseError.
func NewDateParseError(input, message string) error {
	return &DateParseError{Input: input, Message: message}
}

func (e *DateParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("invalid date/time %q: %s", e.Input, e.Message)
}

// NotFoundError indicates a requested record does not exist in the store.
type NotFoundError struct {
	Kind string
	Key  string
}

// NewNotFoundError constructs a NotFoundError.
func NewNotFoundError(kind, key string) error {
	return &NotFoundError{Kind: kind, Key: key}
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}
