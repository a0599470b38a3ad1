package domain

import "time"

// EventType names a state change recorded in the audit trail.
type EventType string

const (
	EventRegistered      EventType = "registered"
	EventActivated       EventType = "activated"
	EventCodeRenewed     EventType = "code_renewed"
	EventProfileUpdated  EventType = "profile_updated"
	EventPasswordReset   EventType = "password_reset"
	EventPasswordUpdated EventType = "password_updated"
	EventDeleted         EventType = "deleted"
)

// AccountEvent is an audit record of a successful lifecycle change.
type AccountEvent struct {
	ID         string
	AccountID  string
	Email      string
	Role       Role
	Type       EventType
	OccurredAt time.Time
}
