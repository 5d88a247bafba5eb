package mcp

import "fmt"

// ErrorKind classifies every failure the bridge can hand back to a caller.
// Tool calls never surface raw Go errors; they surface one of these kinds
// with a human-readable message.
type ErrorKind string

const (
	ErrKindUnknownTool ErrorKind = "unknown_tool"
	ErrKindValidation  ErrorKind = "validation_error"
	ErrKindUpstream    ErrorKind = "upstream_error"
	ErrKindTransport   ErrorKind = "transport_failure"
)

// ValidationReason identifies which check rejected a tool argument.
type ValidationReason string

const (
	ReasonMissingParameter ValidationReason = "missing_parameter"
	ReasonTypeMismatch     ValidationReason = "type_mismatch"
	ReasonUnknownParameter ValidationReason = "unknown_parameter"
)

// ValidationError reports the first argument check that failed.
// Validation stops at the first failure, so a single error carries
// everything the caller needs to correct the call.
type ValidationError struct {
	Reason   ValidationReason
	Param    string
	Expected string
	Actual   string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonMissingParameter:
		return fmt.Sprintf("missing required parameter %q", e.Param)
	case ReasonTypeMismatch:
		return fmt.Sprintf("parameter %q expects %s, got %s", e.Param, e.Expected, e.Actual)
	case ReasonUnknownParameter:
		return fmt.Sprintf("unknown parameter %q", e.Param)
	}
	return fmt.Sprintf("invalid parameter %q", e.Param)
}

// FailureCause classifies a transport-level failure. Only timeouts and
// connection resets are considered retryable; cancellation always wins.
type FailureCause string

const (
	CauseTimeout         FailureCause = "timeout"
	CauseConnectionReset FailureCause = "connection_reset"
	CauseCancelled       FailureCause = "cancelled"
	CauseOther           FailureCause = "other"
)

// TransportError wraps a network-level error together with its classified
// cause. An upstream response with an error status is not a TransportError;
// it means the HTTP exchange itself never completed.
type TransportError struct {
	Cause FailureCause
	Err   error
}

func (e *TransportError) Error() string {
	switch e.Cause {
	case CauseTimeout:
		return fmt.Sprintf("request timed out: %v", e.Err)
	case CauseConnectionReset:
		return fmt.Sprintf("connection reset: %v", e.Err)
	case CauseCancelled:
		return fmt.Sprintf("request cancelled: %v", e.Err)
	}
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
