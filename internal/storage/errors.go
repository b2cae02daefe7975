package storage

import "fmt"

// Code is the closed set of storage-operation error kinds.
type Code string

const (
	CodeObjectNotFound     Code = "ObjectNotFound"
	CodeVersionNotFound    Code = "VersionNotFound"
	CodeTransactionClosed  Code = "TransactionClosed"
	CodeOutOfBounds        Code = "OutOfBounds"
	CodeIoError            Code = "IoError"
	CodeNotReady           Code = "NotReady"
	CodeInvalidSize        Code = "InvalidSize"
	CodeCorruptJournal     Code = "CorruptJournal"
)

// Error reports a storage-operation failure.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("storage: %s: %s", e.Code, e.Message) }

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
