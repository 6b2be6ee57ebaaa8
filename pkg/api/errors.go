package api

import (
	"errors"
	"net/http"

	"github.com/tidwall/gjson"
)

// Kind classifies an API failure. Callers branch on the kind, never on raw
// status codes or transport errors.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindUnauthorized
	KindValidation
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	}
	return "unknown"
}

// Error is the normalized failure shape returned by every Client call.
// FieldErrors is populated for validation failures only, one message per
// field (the first one the server reported).
type Error struct {
	Kind        Kind
	Message     string
	FieldErrors map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

func normalizeError(status int, body []byte) *Error {
	msg := gjson.GetBytes(body, "message").Str
	if msg == "" {
		msg = "an error occurred"
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Kind: KindUnauthorized, Message: msg}
	case status == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Message: msg}
	case status == http.StatusUnprocessableEntity:
		fieldErrs := map[string]string{}
		gjson.GetBytes(body, "errors").ForEach(func(field, messages gjson.Result) bool {
			if arr := messages.Array(); len(arr) > 0 {
				fieldErrs[field.Str] = arr[0].Str
			} else {
				fieldErrs[field.Str] = messages.Str
			}
			return true
		})
		return &Error{Kind: KindValidation, Message: msg, FieldErrors: fieldErrs}
	}
	return &Error{Kind: KindUnknown, Message: msg}
}

// IsUnauthorized reports whether err is a 401/403 from the API. The CLI
// treats this uniformly: drop the session and ask the user to log in again.
func IsUnauthorized(err error) bool {
	return kindOf(err) == KindUnauthorized
}

// IsValidation reports whether err carries field-level validation messages.
func IsValidation(err error) bool {
	return kindOf(err) == KindValidation
}

// IsNetwork reports whether err was a transport-level failure.
func IsNetwork(err error) bool {
	return kindOf(err) == KindNetwork
}

func kindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// FieldErrors extracts the per-field validation messages from err, or nil.
func FieldErrors(err error) map[string]string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindValidation {
		return apiErr.FieldErrors
	}
	return nil
}
