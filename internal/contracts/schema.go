package contracts

import "pandakernel/internal/ipc"

// DefaultSchema returns the schema version every service listed in spec §6
// declares unless a newer minor revision is negotiated: major 1, minor 0.
func DefaultSchema() ipc.SchemaVersion { return ipc.V1_0 }

// ServiceSchemas records the schema version each named service currently
// declares. Every service listed in spec §6 has an entry, and all are at
// DefaultSchema (V1_0).
var ServiceSchemas = map[string]ipc.SchemaVersion{
	"registry":          ipc.V1_0,
	"storage":           ipc.V1_0,
	"process_manager":   ipc.V1_0,
	"intent_router":     ipc.V1_0,
	"console":           ipc.V1_0,
	"ui":                ipc.V1_0,
	"remote_capability": ipc.V1_0,
}

// SchemaFor returns the declared schema version for service, or DefaultSchema
// if the service isn't separately tracked.
func SchemaFor(service string) ipc.SchemaVersion {
	if v, ok := ServiceSchemas[service]; ok {
		return v
	}
	return DefaultSchema()
}
