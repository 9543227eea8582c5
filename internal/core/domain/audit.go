package domain

import "time"

// AuditKind identifies the authentication operation an AuditEvent records.
type AuditKind string

const (
	AuditLogin        AuditKind = "login"
	AuditRegister     AuditKind = "register"
	AuditTokenRefresh AuditKind = "token_refresh"
)

// AuditOutcome is the taxonomy bucket an operation ended in.
type AuditOutcome string

const (
	OutcomeSuccess         AuditOutcome = "success"
	OutcomeUnauthenticated AuditOutcome = "unauthenticated"
	OutcomeInvalidInput    AuditOutcome = "invalid_input"
	OutcomeConflict        AuditOutcome = "conflict"
	OutcomeThrottled       AuditOutcome = "throttled"
	OutcomeError           AuditOutcome = "error"
)

// AuditEvent is an append-only record of an authentication attempt.
type AuditEvent struct {
	Kind    AuditKind
	Subject string
	Outcome AuditOutcome
	At      time.Time
}
