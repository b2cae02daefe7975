// Package contracts pins the stable external interface named in spec §6:
// the dot-separated action identifiers every service's envelopes carry, the
// wire-stable enum variants, and the typed payload shape for each action.
// These strings and types are part of the contract and must not change
// without a major schema-version bump (ipc.SchemaVersion.Major).
package contracts

// Action is a dot-separated action identifier, the stable external
// interface spec §6 pins (e.g. "registry.register").
type Action string

// Registry service actions.
const (
	ActionRegistryRegister   Action = "registry.register"
	ActionRegistryLookup     Action = "registry.lookup"
	ActionRegistryUnregister Action = "registry.unregister"
	ActionRegistryList       Action = "registry.list"
)

// Storage service actions.
const (
	ActionStorageCreateObject Action = "storage.create_object"
	ActionStorageReadObject   Action = "storage.read_object"
	ActionStorageWriteObject  Action = "storage.write_object"
	ActionStorageDeleteObject Action = "storage.delete_object"
	ActionStorageListVersions Action = "storage.list_versions"
)

// Process manager service actions.
const (
	ActionProcessManagerSpawn         Action = "process_manager.spawn"
	ActionProcessManagerTerminate     Action = "process_manager.terminate"
	ActionProcessManagerGetStatus     Action = "process_manager.get_status"
	ActionProcessManagerListProcesses Action = "process_manager.list_processes"
)

// Intent router service actions.
const (
	ActionIntentRouterRouteIntent       Action = "intent_router.route_intent"
	ActionIntentRouterRegisterHandler   Action = "intent_router.register_handler"
	ActionIntentRouterUnregisterHandler Action = "intent_router.unregister_handler"
	ActionIntentRouterListHandlers      Action = "intent_router.list_handlers"
)

// Console service actions.
const (
	ActionConsoleCommandRequest  Action = "console.command.request"
	ActionConsoleCommandResponse Action = "console.command.response"
)

// UI service actions.
const (
	ActionUISnapshot Action = "ui.snapshot"
)

// Remote capability service actions.
const (
	ActionRemoteCapabilityCall     Action = "remote.capability.call"
	ActionRemoteCapabilityResponse Action = "remote.capability.response"
)
