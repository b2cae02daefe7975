// Package pkgmanifest parses and validates the package manifest format named
// in spec §6.5: a pandagend.json document describing a package's components.
// This package is a pure parse/validate library; deciding whether to install
// a package is a policy concern explicitly out of scope (spec §1).
package pkgmanifest

import (
	"encoding/json"
	"fmt"
)

// ComponentType enumerates the wire-stable component kinds a manifest may
// declare.
type ComponentType string

const (
	ComponentEditor          ComponentType = "editor"
	ComponentCLI             ComponentType = "cli"
	ComponentPipelineExecutor ComponentType = "pipeline_executor"
	ComponentCustom          ComponentType = "custom"
)

// FormatVersion is the manifest document's own schema version, independent
// of any component's.
type FormatVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
}

// Budget mirrors internal/budget's cap shape for a manifest-declared
// component, so a package can request resource limits without the manifest
// package importing internal/budget's mutable Context machinery.
type Budget struct {
	Messages       *uint64 `json:"messages,omitempty"`
	CPUTicks       *uint64 `json:"cpu_ticks,omitempty"`
	StorageOps     *uint64 `json:"storage_ops,omitempty"`
	PipelineStages *uint64 `json:"pipeline_stages,omitempty"`
}

// Component is one entry of a manifest's "components" array.
type Component struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	ComponentType ComponentType     `json:"component_type"`
	Entry         string            `json:"entry"`
	Focusable     *bool             `json:"focusable,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Budget        *Budget           `json:"budget,omitempty"`
}

// Manifest is a parsed pandagend.json document.
type Manifest struct {
	FormatVersion FormatVersion `json:"format_version"`
	Name          string        `json:"name"`
	Version       string        `json:"version"`
	Components    []Component   `json:"components"`
}

// ValidationError reports a single manifest validation failure, structured
// so callers can report several at once instead of failing on the first.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pkgmanifest: %s: %s", e.Field, e.Message)
}

// Parse decodes raw JSON into a Manifest without validating it; callers
// should call Validate separately so parse errors (malformed JSON) and
// validation errors (duplicate IDs, empty entry) stay distinguishable.
func Parse(raw []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("pkgmanifest: parsing manifest: %w", err)
	}
	return m, nil
}

// Validate checks the structural invariants spec §6.5 names: component IDs
// unique within the package, component names unique within the package, and
// every entry non-empty. It returns every violation found, not just the
// first.
func Validate(m Manifest) []ValidationError {
	var errs []ValidationError

	seenIDs := make(map[string]bool, len(m.Components))
	seenNames := make(map[string]bool, len(m.Components))

	if m.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "must not be empty"})
	}

	for i, c := range m.Components {
		if c.ID == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("components[%d].id", i), Message: "must not be empty"})
		} else if seenIDs[c.ID] {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("components[%d].id", i), Message: fmt.Sprintf("duplicate component id %q", c.ID)})
		}
		seenIDs[c.ID] = true

		if c.Name == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("components[%d].name", i), Message: "must not be empty"})
		} else if seenNames[c.Name] {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("components[%d].name", i), Message: fmt.Sprintf("duplicate component name %q", c.Name)})
		}
		seenNames[c.Name] = true

		if c.Entry == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("components[%d].entry", i), Message: "must not be empty"})
		}

		switch c.ComponentType {
		case ComponentEditor, ComponentCLI, ComponentPipelineExecutor, ComponentCustom, "":
		default:
			errs = append(errs, ValidationError{Field: fmt.Sprintf("components[%d].component_type", i), Message: fmt.Sprintf("unknown component type %q", c.ComponentType)})
		}
	}

	return errs
}

// ParseAndValidate is the common entry point: parse raw JSON and validate
// the result, returning the first parse error or every validation error
// found.
func ParseAndValidate(raw []byte) (Manifest, []ValidationError, error) {
	m, err := Parse(raw)
	if err != nil {
		return Manifest{}, nil, err
	}
	return m, Validate(m), nil
}
