package procmgr

import "fmt"

// Code is the closed set of process-manager error kinds.
type Code string

const (
	CodeAlreadyManaged Code = "AlreadyManaged"
	CodeNotManaged     Code = "NotManaged"
	CodeSpawnFailed    Code = "SpawnFailed"
)

// Error reports a process-manager operation failure.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("procmgr: %s: %s", e.Code, e.Message) }

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
