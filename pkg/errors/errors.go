package errors

import (
	"errors"
	"strings"
)

// UnknownMessage is shown when an error carries no usable text.
const UnknownMessage = "Unknown Error"

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// MessageCarrier is implemented by transport errors that hold a message
// reported by the remote side (e.g. the "message" field of an error body).
type MessageCarrier interface {
	RemoteMessage() string
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Message renders err for display: a remote message found anywhere in the
// chain wins, then the error text, then UnknownMessage.
func Message(err error) string {
	if err == nil {
		return UnknownMessage
	}
	var carrier MessageCarrier
	if errors.As(err, &carrier) {
		if msg := strings.TrimSpace(carrier.RemoteMessage()); msg != "" {
			return msg
		}
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return UnknownMessage
}
