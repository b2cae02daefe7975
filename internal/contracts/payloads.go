package contracts

import (
	"pandakernel/internal/ids"
	"pandakernel/internal/ipc"
	"pandakernel/internal/procmgr"
	"pandakernel/internal/storage"
)

// --- registry.* ---------------------------------------------------------

// RegistryRegisterRequest is the payload of a registry.register envelope.
type RegistryRegisterRequest struct {
	Service ids.ServiceId
	Name    string
	Channel ids.ChannelId
	Schema  ipc.SchemaVersion
}

// RegistryRegisterResponse acknowledges a registry.register request.
type RegistryRegisterResponse struct {
	Registered bool
}

// RegistryLookupRequest is the payload of a registry.lookup envelope.
type RegistryLookupRequest struct {
	Service ids.ServiceId
	Name    string // alternative to Service; lookup by name if Service is zero
}

// RegistryLookupResponse carries the resolved channel for a lookup.
type RegistryLookupResponse struct {
	Service ids.ServiceId
	Channel ids.ChannelId
	Schema  ipc.SchemaVersion
}

// RegistryUnregisterRequest is the payload of a registry.unregister envelope.
type RegistryUnregisterRequest struct {
	Service ids.ServiceId
}

// RegistryUnregisterResponse acknowledges a registry.unregister request.
type RegistryUnregisterResponse struct {
	Unregistered bool
}

// RegistryListRequest is the (empty) payload of a registry.list envelope.
type RegistryListRequest struct{}

// RegistryEntry is one row of a registry.list response.
type RegistryEntry struct {
	Service ids.ServiceId
	Name    string
	Channel ids.ChannelId
	Schema  ipc.SchemaVersion
}

// RegistryListResponse carries every currently registered service.
type RegistryListResponse struct {
	Entries []RegistryEntry
}

// --- storage.* -----------------------------------------------------------

// StorageCreateObjectRequest is the payload of a storage.create_object
// envelope.
type StorageCreateObjectRequest struct {
	Kind  storage.ObjectKind
	Value storage.Value
}

// StorageCreateObjectResponse carries the newly minted object's identifier
// and its first version.
type StorageCreateObjectResponse struct {
	Object  ids.ObjectId
	Version ids.VersionId
}

// StorageReadObjectRequest is the payload of a storage.read_object envelope.
// A zero Version reads the latest committed version.
type StorageReadObjectRequest struct {
	Object  ids.ObjectId
	Version ids.VersionId
}

// StorageReadObjectResponse carries the object's value at the requested
// version.
type StorageReadObjectResponse struct {
	Value   storage.Value
	Version ids.VersionId
}

// StorageWriteObjectRequest is the payload of a storage.write_object
// envelope. Transaction, when non-zero, stages the write inside an
// already-open transaction instead of committing it immediately.
type StorageWriteObjectRequest struct {
	Object      ids.ObjectId
	Value       storage.Value
	Transaction ids.TransactionId
}

// StorageWriteObjectResponse carries the version the write produced, once
// committed.
type StorageWriteObjectResponse struct {
	Version ids.VersionId
}

// StorageDeleteObjectRequest is the payload of a storage.delete_object
// envelope.
type StorageDeleteObjectRequest struct {
	Object ids.ObjectId
}

// StorageDeleteObjectResponse acknowledges a storage.delete_object request.
type StorageDeleteObjectResponse struct {
	Deleted bool
}

// StorageListVersionsRequest is the payload of a storage.list_versions
// envelope.
type StorageListVersionsRequest struct {
	Object ids.ObjectId
}

// StorageListVersionsResponse carries every version ID recorded for an
// object, oldest first.
type StorageListVersionsResponse struct {
	Versions []ids.VersionId
}

// --- process_manager.* ----------------------------------------------------

// ProcessManagerSpawnRequest is the payload of a process_manager.spawn
// envelope.
type ProcessManagerSpawnRequest struct {
	Name    string
	Task    ids.TaskId
	Restart procmgr.RestartPolicy
}

// ProcessManagerSpawnResponse carries the spawned service's identifiers.
type ProcessManagerSpawnResponse struct {
	Service ids.ServiceId
	Task    ids.TaskId
}

// ProcessManagerTerminateRequest is the payload of a
// process_manager.terminate envelope.
type ProcessManagerTerminateRequest struct {
	Service ids.ServiceId
}

// ProcessManagerTerminateResponse acknowledges a process_manager.terminate
// request.
type ProcessManagerTerminateResponse struct {
	Terminated bool
}

// ProcessManagerGetStatusRequest is the payload of a
// process_manager.get_status envelope.
type ProcessManagerGetStatusRequest struct {
	Service ids.ServiceId
}

// ProcessManagerGetStatusResponse carries one service's current status.
type ProcessManagerGetStatusResponse struct {
	Status procmgr.Status
}

// ProcessManagerListProcessesRequest is the (empty) payload of a
// process_manager.list_processes envelope.
type ProcessManagerListProcessesRequest struct{}

// ProcessManagerListProcessesResponse carries every managed service's status.
type ProcessManagerListProcessesResponse struct {
	Processes []procmgr.Status
}

// --- intent_router.* -------------------------------------------------------

// IntentRouterRouteIntentRequest is the payload of an
// intent_router.route_intent envelope.
type IntentRouterRouteIntentRequest struct {
	Intent ids.IntentId
	Type   string
	Params map[string]any
}

// IntentRouterRouteIntentResponse carries the resolved handler, if any.
type IntentRouterRouteIntentResponse struct {
	Handler ids.ServiceId
	Matched bool
}

// IntentRouterRegisterHandlerRequest is the payload of an
// intent_router.register_handler envelope.
type IntentRouterRegisterHandlerRequest struct {
	Type    string
	Handler ids.ServiceId
}

// IntentRouterRegisterHandlerResponse acknowledges a
// intent_router.register_handler request.
type IntentRouterRegisterHandlerResponse struct {
	Registered bool
}

// IntentRouterUnregisterHandlerRequest is the payload of an
// intent_router.unregister_handler envelope.
type IntentRouterUnregisterHandlerRequest struct {
	Type    string
	Handler ids.ServiceId
}

// IntentRouterUnregisterHandlerResponse acknowledges a
// intent_router.unregister_handler request.
type IntentRouterUnregisterHandlerResponse struct {
	Unregistered bool
}

// IntentRouterListHandlersRequest is the (empty) payload of an
// intent_router.list_handlers envelope.
type IntentRouterListHandlersRequest struct{}

// IntentRouterHandlerEntry is one row of an intent_router.list_handlers
// response.
type IntentRouterHandlerEntry struct {
	Type    string
	Handler ids.ServiceId
}

// IntentRouterListHandlersResponse carries every registered intent-type to
// handler-service mapping.
type IntentRouterListHandlersResponse struct {
	Handlers []IntentRouterHandlerEntry
}

// --- console.* -------------------------------------------------------------

// ConsoleCommandRequest is the payload of a console.command.request
// envelope: a REPL line the console service dispatches to a target service.
type ConsoleCommandRequest struct {
	Line string
}

// ConsoleCommandResponse is the payload of a console.command.response
// envelope.
type ConsoleCommandResponse struct {
	Output string
	Err    *CommandError
}

// --- ui.* --------------------------------------------------------------

// UISnapshotRequest is the (empty) payload of a ui.snapshot envelope.
type UISnapshotRequest struct{}

// UISnapshotResponse carries a point-in-time rendering of kernel state for
// display.
type UISnapshotResponse struct {
	Processes []procmgr.Status
	Services  []RegistryEntry
}

// --- remote.capability.* --------------------------------------------------

// RemoteCapabilityCallRequest is the payload of a remote.capability.call
// envelope: an action to perform on behalf of a capability held elsewhere.
type RemoteCapabilityCallRequest struct {
	Handle ids.ExecutionId
	Action Action
	Args   map[string]any
}

// RemoteCapabilityResponse is the payload of a remote.capability.response
// envelope.
type RemoteCapabilityResponse struct {
	Result map[string]any
	Err    *CommandError
}
