package ipc

import "fmt"

// SchemaVersion is a (major, minor) pair. Two versions are wire-compatible
// iff their major components are equal (spec §3, P7).
type SchemaVersion struct {
	Major uint32
	Minor uint32
}

// V1_0 is the default schema version declared by every service in §6.
var V1_0 = SchemaVersion{Major: 1, Minor: 0}

// IsCompatibleWith reports whether v and other share a major version.
func (v SchemaVersion) IsCompatibleWith(other SchemaVersion) bool {
	return v.Major == other.Major
}

// String renders the version as "major.minor".
func (v SchemaVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
