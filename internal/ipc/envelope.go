package ipc

import "pandakernel/internal/ids"

// Envelope is a typed IPC message: a destination, an action, a schema
// version, and an opaque serialized payload, plus optional source/
// correlation metadata (spec §3 "Message envelope").
type Envelope struct {
	ID            ids.MessageId
	Destination   ids.ServiceId
	Source        *ids.TaskId
	Action        string
	Schema        SchemaVersion
	CorrelationID *ids.MessageId
	Payload       Payload
}

// NewEnvelope constructs an envelope addressed to destination with the given
// action, schema version and payload. Source and correlation ID are set via
// the builder-style With* methods.
func NewEnvelope(id ids.MessageId, destination ids.ServiceId, action string, schema SchemaVersion, payload Payload) Envelope {
	return Envelope{
		ID:          id,
		Destination: destination,
		Action:      action,
		Schema:      schema,
		Payload:     payload,
	}
}

// WithSource returns a copy of e with its source task set.
func (e Envelope) WithSource(task ids.TaskId) Envelope {
	e.Source = &task
	return e
}

// WithCorrelationID returns a copy of e with its correlation ID set, linking
// it to e.g. the request this envelope is a response to.
func (e Envelope) WithCorrelationID(id ids.MessageId) Envelope {
	e.CorrelationID = &id
	return e
}
