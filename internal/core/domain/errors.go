package domain

import "errors"

// Kind is the stable, machine-checkable category of an outcome.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindConflict             Kind = "conflict"
	KindValidationFailed     Kind = "validation_failed"
	KindUnauthorized         Kind = "unauthorized"
	KindAlreadyActive        Kind = "already_active"
	KindCodeExpired          Kind = "code_expired"
	KindCodeMismatch         Kind = "code_mismatch"
	KindOldPasswordIncorrect Kind = "old_password_incorrect"
	KindDeliveryFailed       Kind = "delivery_failed"
	KindInternal             Kind = "internal"
)

// Error is a business outcome with a kind and a message safe to show to users.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrAccountNotFound      = &Error{Kind: KindNotFound, Message: "account not found"}
	ErrAccountExists        = &Error{Kind: KindConflict, Message: "an account with this email and role already exists"}
	ErrInvalidInput         = &Error{Kind: KindValidationFailed, Message: "invalid input"}
	ErrPasswordTooLong      = &Error{Kind: KindValidationFailed, Message: "password must be at most 72 bytes"}
	ErrInvalidCredentials   = &Error{Kind: KindUnauthorized, Message: "invalid credentials"}
	ErrAppMismatch          = &Error{Kind: KindUnauthorized, Message: "account is not registered for this application"}
	ErrAccountNotActive     = &Error{Kind: KindUnauthorized, Message: "account is not activated"}
	ErrInvalidToken         = &Error{Kind: KindUnauthorized, Message: "invalid or expired token"}
	ErrAlreadyActive        = &Error{Kind: KindAlreadyActive, Message: "account is already active, please log in"}
	ErrCodeExpired          = &Error{Kind: KindCodeExpired, Message: "activation code expired, a new code has been sent"}
	ErrCodeMismatch         = &Error{Kind: KindCodeMismatch, Message: "activation code does not match"}
	ErrOldPasswordIncorrect = &Error{Kind: KindOldPasswordIncorrect, Message: "old password is incorrect"}
	ErrDeliveryFailed       = &Error{Kind: KindDeliveryFailed, Message: "the code could not be delivered, please retry"}
	ErrStorageUnavailable   = &Error{Kind: KindInternal, Message: "storage unavailable"}
)

// KindOf returns the kind carried by err, or KindInternal for anything that
// is not a domain Error.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
