package domain

import "errors"

// Kind classifies a failure for the caller. Every failure reported to a
// client falls into exactly one kind.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindConflict
	KindUnauthorized
	KindUnknownHolder
	KindTransactionAborted
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindUnknownHolder:
		return "unknown_holder"
	case KindTransactionAborted:
		return "transaction_aborted"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Error is a classified, client-facing error. Message is the short reason
// shown to the requesting client.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// KindOf returns the kind of the first classified error in err's chain.
// Validation errors of this package count as KindInvalid.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}

	switch {
	case errors.Is(err, ErrInvalidLabel),
		errors.Is(err, ErrInvalidTheater),
		errors.Is(err, ErrInvalidShowtime):
		return KindInvalid
	}

	return KindInternal
}

// Message returns the client-facing reason for err.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}

	switch {
	case errors.Is(err, ErrInvalidLabel):
		return "invalid seat label"
	case errors.Is(err, ErrInvalidTheater):
		return "invalid theater"
	case errors.Is(err, ErrInvalidShowtime):
		return "unknown showtime"
	}

	return "internal error"
}
