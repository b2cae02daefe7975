// Package registry implements the typed service registry: ID→channel,
// name→ID, and descriptor maps, with all-or-nothing insertion (spec §4.5).
package registry

import (
	"fmt"
	"sync"

	"pandakernel/internal/ids"
	"pandakernel/internal/ipc"
)

// Code is the closed set of registry-error kinds.
type Code string

const (
	CodeAlreadyRegistered     Code = "AlreadyRegistered"
	CodeNameAlreadyRegistered Code = "NameAlreadyRegistered"
	CodeNotFound              Code = "ServiceNotFound"
	CodeNameNotFound          Code = "NameNotFound"
)

// Error reports a registry failure.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("registry: %s: %s", e.Code, e.Message) }

// Descriptor carries a service's schema version alongside its registration.
type Descriptor struct {
	Schema ipc.SchemaVersion
}

// Registry maps service IDs to channels and names to service IDs, all
// mutated together so that insertion is all-or-nothing (spec §4.5).
type Registry struct {
	mu          sync.RWMutex
	byID        map[ids.ServiceId]ids.ChannelId
	descriptors map[ids.ServiceId]Descriptor
	byName      map[string]ids.ServiceId
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byID:        make(map[ids.ServiceId]ids.ChannelId),
		descriptors: make(map[ids.ServiceId]Descriptor),
		byName:      make(map[string]ids.ServiceId),
	}
}

// Register records service -> channel under the given name and descriptor.
// Fails, mutating nothing, if the service ID or the name is already in use.
func (r *Registry) Register(service ids.ServiceId, name string, channel ids.ChannelId, desc Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[service]; exists {
		return &Error{Code: CodeAlreadyRegistered, Message: service.String()}
	}
	if _, exists := r.byName[name]; exists {
		return &Error{Code: CodeNameAlreadyRegistered, Message: name}
	}

	r.byID[service] = channel
	r.descriptors[service] = desc
	r.byName[name] = service
	return nil
}

// Unregister atomically removes service from all three maps.
func (r *Registry) Unregister(service ids.ServiceId) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[service]; !exists {
		return &Error{Code: CodeNotFound, Message: service.String()}
	}

	delete(r.byID, service)
	delete(r.descriptors, service)
	for name, id := range r.byName {
		if id == service {
			delete(r.byName, name)
			break
		}
	}
	return nil
}

// Lookup returns the channel registered for service.
func (r *Registry) Lookup(service ids.ServiceId) (ids.ChannelId, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.byID[service]
	if !ok {
		return ids.ChannelId{}, &Error{Code: CodeNotFound, Message: service.String()}
	}
	return ch, nil
}

// LookupByName composes name->ID with ID->channel. Either lookup failing
// produces the corresponding not-found error (spec §4.5).
func (r *Registry) LookupByName(name string) (ids.ServiceId, ids.ChannelId, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.byName[name]
	if !ok {
		return ids.ServiceId{}, ids.ChannelId{}, &Error{Code: CodeNameNotFound, Message: name}
	}
	ch, ok := r.byID[svc]
	if !ok {
		return ids.ServiceId{}, ids.ChannelId{}, &Error{Code: CodeNotFound, Message: svc.String()}
	}
	return svc, ch, nil
}

// Descriptor returns the descriptor recorded for service.
func (r *Registry) Descriptor(service ids.ServiceId) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[service]
	if !ok {
		return Descriptor{}, &Error{Code: CodeNotFound, Message: service.String()}
	}
	return d, nil
}

// Entry describes one registered service, returned by List.
type Entry struct {
	Service ids.ServiceId
	Name    string
	Channel ids.ChannelId
	Schema  ipc.SchemaVersion
}

// List returns every registered service entry.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make(map[ids.ServiceId]string, len(r.byName))
	for name, svc := range r.byName {
		names[svc] = name
	}

	out := make([]Entry, 0, len(r.byID))
	for svc, ch := range r.byID {
		out = append(out, Entry{
			Service: svc,
			Name:    names[svc],
			Channel: ch,
			Schema:  r.descriptors[svc].Schema,
		})
	}
	return out
}
