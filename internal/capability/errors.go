package capability

import "fmt"

// Code is a closed set of authority-error kinds (spec §7 "Authority
// errors"). Callers switch on Code rather than matching error strings.
type Code string

const (
	CodeInvalid            Code = "CapabilityInvalid"
	CodeRevoked            Code = "CapabilityRevoked"
	CodeLeaseExpired       Code = "CapabilityLeaseExpired"
	CodeInsufficient       Code = "InsufficientAuthority"
	CodeInvalidCast        Code = "InvalidCast"
	CodeGranteeNotFound    Code = "GranteeNotFound"
	CodeUnknownHandle      Code = "UnknownHandle"
)

// Error is the typed error returned by every fallible capability operation.
type Error struct {
	Code    Code
	Handle  Handle
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("capability: %s (handle=%d): %s", e.Code, e.Handle, e.Message)
}

func newError(code Code, h Handle, msg string) *Error {
	return &Error{Code: code, Handle: h, Message: msg}
}
