package ipc

import "encoding/json"

// Code is the closed set of serialization-error kinds (spec §7).
type Code string

const (
	CodeEncodeFailed Code = "PayloadEncodeFailed"
	CodeDecodeFailed Code = "PayloadDecodeFailed"
)

// PayloadError wraps a JSON marshal/unmarshal failure with a typed Code, so
// it is always fatal to the message and never retried silently (spec §7).
type PayloadError struct {
	Code Code
	Err  error
}

func (e *PayloadError) Error() string { return string(e.Code) + ": " + e.Err.Error() }
func (e *PayloadError) Unwrap() error  { return e.Err }

// Payload is an opaque, serialized message body. The envelope contract is
// payload-format-agnostic (spec §3); this implementation uses JSON, which the
// spec names as an acceptable concrete choice.
type Payload struct {
	bytes []byte
}

// NewPayload serializes value into a Payload.
func NewPayload(value any) (Payload, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return Payload{}, &PayloadError{Code: CodeEncodeFailed, Err: err}
	}
	return Payload{bytes: b}, nil
}

// Bytes returns the raw serialized payload.
func (p Payload) Bytes() []byte { return p.bytes }

// Deserialize attempts to parse the payload into a value of type T.
func Deserialize[T any](p Payload) (T, error) {
	var out T
	if err := json.Unmarshal(p.bytes, &out); err != nil {
		return out, &PayloadError{Code: CodeDecodeFailed, Err: err}
	}
	return out, nil
}
