package tool

import (
	"errors"
	"fmt"
)

// Kind classifies a tool failure.
type Kind int

const (
	// UnknownTool means no routing rule or handler claimed the requested name.
	UnknownTool Kind = iota + 1
	// InvalidParams means required arguments were missing or malformed; it is
	// raised before any upstream call is attempted.
	InvalidParams
	// UpstreamFailure means an SDK operation or HTTP API call failed.
	UpstreamFailure
)

func (k Kind) String() string {
	switch k {
	case UnknownTool:
		return "unknown_tool"
	case InvalidParams:
		return "invalid_params"
	case UpstreamFailure:
		return "upstream_failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the typed error every handler surfaces.
type Error struct {
	Kind Kind
	// Name is the offending tool or resource name for UnknownTool errors.
	Name    string
	Message string
}

func (e *Error) Error() string {
	if e.Kind == UnknownTool {
		return fmt.Sprintf("unknown tool: %s", e.Name)
	}
	return e.Message
}

// NewUnknownTool reports that name did not match any route.
func NewUnknownTool(name string) *Error {
	return &Error{Kind: UnknownTool, Name: name}
}

// InvalidParamsf reports malformed or missing arguments.
func InvalidParamsf(format string, args ...any) *Error {
	return &Error{Kind: InvalidParams, Message: fmt.Sprintf(format, args...)}
}

// Upstream classifies err as an UpstreamFailure, prefixing the message with
// context such as the API and identifier involved. Errors that are already a
// *Error are returned unchanged. The result keeps the original message text
// but not the original error's type.
func Upstream(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	msg := err.Error()
	if format != "" {
		msg = fmt.Sprintf(format, args...) + ": " + msg
	}
	return &Error{Kind: UpstreamFailure, Message: msg}
}

// KindOf returns the Kind of err, or zero when err is not a *Error.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return 0
}
