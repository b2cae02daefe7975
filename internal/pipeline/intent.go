// Package pipeline implements typed intent routing and budget-aware stage
// pipelines (spec §4.9). An Intent is a fresh, dotted-type request routed by
// a Router to the first registered handler service; an Executor runs an
// ordered sequence of StageSpecs against an initial payload, retrying per
// stage according to a RetryPolicy and consuming one budget.ResourcePipelineStages
// unit per completed stage.
package pipeline

import (
	"sync"

	"pandakernel/internal/ids"
	"pandakernel/internal/ipc"
)

// Param is one (key, value) parameter carried by an Intent.
type Param struct {
	Key   string
	Value any
}

// Intent is a typed, versioned request for action (spec §4.9, glossary
// "Intent"): a fresh IntentId, a dotted type string (e.g. "open_file"), a
// schema version pair, and an ordered parameter list.
type Intent struct {
	ID     ids.IntentId
	Type   string
	Schema ipc.SchemaVersion
	Params []Param
}

// NewIntent mints a fresh Intent of the given type, versioned at schema.
func NewIntent(gen *ids.Generators, intentType string, schema ipc.SchemaVersion, params ...Param) Intent {
	return Intent{ID: gen.NewIntentId(), Type: intentType, Schema: schema, Params: params}
}

// Param looks up a parameter by key, returning ok=false if absent.
func (i Intent) Param(key string) (any, bool) {
	for _, p := range i.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Router maps intent types to the service ID that handles them. Registering
// a second handler for the same type does not replace the first: Route
// returns the first matching registration (spec §4.9 "route(type) returns
// the first matching registration"), and ListHandlers groups handlers by
// intent type, types in first-registration order and handlers within a type
// in registration order.
type Router struct {
	mu       sync.Mutex
	handlers map[string][]ids.ServiceId
	order    []string
}

// NewRouter returns an empty intent router.
func NewRouter() *Router {
	return &Router{handlers: make(map[string][]ids.ServiceId)}
}

// RegisterHandler adds handler as a candidate for intentType.
func (r *Router) RegisterHandler(intentType string, handler ids.ServiceId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[intentType]; !ok {
		r.order = append(r.order, intentType)
	}
	r.handlers[intentType] = append(r.handlers[intentType], handler)
}

// UnregisterHandler removes handler from intentType's candidate list, if
// present. Reports whether a registration was removed.
func (r *Router) UnregisterHandler(intentType string, handler ids.ServiceId) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.handlers[intentType]
	for i, h := range list {
		if h == handler {
			r.handlers[intentType] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Route returns the first registered handler for intentType.
func (r *Router) Route(intentType string) (ids.ServiceId, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.handlers[intentType]
	if len(list) == 0 {
		return ids.ServiceId{}, false
	}
	return list[0], true
}

// HandlerEntry is one row of ListHandlers, naming a registered (type,
// handler) pair.
type HandlerEntry struct {
	Type    string
	Handler ids.ServiceId
}

// ListHandlers returns every registered (type, handler) pair, grouped by
// type in the order each type was first registered and in registration
// order within a type, matching the registry.list / list_handlers action
// shape used elsewhere in the contract layer.
func (r *Router) ListHandlers() []HandlerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []HandlerEntry
	for _, t := range r.order {
		for _, h := range r.handlers[t] {
			out = append(out, HandlerEntry{Type: t, Handler: h})
		}
	}
	return out
}
