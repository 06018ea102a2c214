package auth

import "errors"

// Flat error taxonomy exposed to clients. Provider failures outside this
// set collapse to INTERNAL_ERROR.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeEmailExists        = "EMAIL_ALREADY_EXISTS"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS"
	CodeAccountDisabled    = "ACCOUNT_DISABLED"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInternal           = "INTERNAL_ERROR"
)

// Error is a coded authentication failure.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// AsError maps any error onto the taxonomy; unknown errors become
// INTERNAL_ERROR without leaking internals to the client.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded
	}
	return &Error{Code: CodeInternal, Message: "internal error"}
}
