package app

import "fmt"

// DomainError marks an invariant violation: missing records, unknown enum
// values, unconfigured collaborators. Policy denials never use it; those are
// Decision values.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Decision is the structured outcome of a policy check. Denials carry a
// human-readable reason and are ordinary values, not errors.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allowed() Decision {
	return Decision{Allowed: true}
}

func denied(format string, args ...any) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}
