package storage

// MigrationStepFunc transforms one schema version's encoding of a Value into
// the next.
type MigrationStepFunc func(Value) (Value, error)

// registeredStep pairs a migration function with the version transition it
// performs.
type registeredStep struct {
	from, to int
	fn       MigrationStepFunc
	note     string
}

// Migrator walks a fixed, ascending sequence of migration steps for one
// schema ID, recording each applied step's lineage on the migrated value
// (spec §4.7 "Schema evolution").
type Migrator struct {
	schemaID string
	steps    []registeredStep
}

// NewMigrator returns a Migrator for schemaID with no steps registered yet.
func NewMigrator(schemaID string) *Migrator {
	return &Migrator{schemaID: schemaID}
}

// AddStep registers a migration from version `from` to `to`. Steps must be
// added in ascending `from` order; Migrate applies them in that order.
func (m *Migrator) AddStep(from, to int, note string, fn MigrationStepFunc) {
	m.steps = append(m.steps, registeredStep{from: from, to: to, fn: fn, note: note})
}

// Migrate walks registered steps in ascending version order starting from
// v's current schema version, applying every step whose `from` matches the
// value's current version, and appending each applied step to the value's
// lineage.
func (m *Migrator) Migrate(v Value) (Value, error) {
	for _, step := range m.steps {
		if v.Schema.SchemaID != m.schemaID || v.Schema.Version != step.from {
			continue
		}
		next, err := step.fn(v)
		if err != nil {
			return Value{}, newError(CodeIoError, "migrating schema %s from v%d to v%d: %v", m.schemaID, step.from, step.to, err)
		}
		next.Schema.SchemaID = m.schemaID
		next.Schema.Version = step.to
		next.Schema.Lineage = append(append([]MigrationStep{}, v.Schema.Lineage...),
			MigrationStep{FromVersion: step.from, ToVersion: step.to, Note: step.note})
		v = next
	}
	return v, nil
}
