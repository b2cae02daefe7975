package kernel

import "fmt"

// Code is the closed set of kernel-operation error kinds (spec §4.2 table).
type Code string

const (
	CodeSpawnFailed        Code = "SpawnFailed"
	CodeChannelError       Code = "ChannelError"
	CodeSendFailed         Code = "SendFailed"
	CodeTimeout            Code = "Timeout"
	CodeAlreadyRegistered  Code = "AlreadyRegistered"
	CodeServiceNotFound    Code = "ServiceNotFound"
	CodeWouldDeadlock      Code = "WouldDeadlock"
)

// Error reports a kernel-operation failure.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("kernel: %s: %s", e.Code, e.Message) }

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
