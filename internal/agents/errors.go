package agents

import "fmt"

// APICallError represents a transport-level failure talking to the model.
type APICallError struct {
	Role    Role
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("agent %s: API call failed: %s: %v", e.Role, e.Message, e.Cause)
	}
	return fmt.Sprintf("agent %s: API call failed: %s", e.Role, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError means the model answered but the payload could not be
// extracted, parsed, or validated. It is distinct from APICallError so each
// caller can pick its own policy: fatal for the analyst, degraded for the
// marketer, a rejection outcome for the controller.
type MalformedResponseError struct {
	Role    Role
	Message string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("agent %s: malformed response: %s: %v", e.Role, e.Message, e.Cause)
	}
	return fmt.Sprintf("agent %s: malformed response: %s", e.Role, e.Message)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}
