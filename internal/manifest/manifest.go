package manifest

import (
	"fmt"
)

// Disposition is the per-field policy applied when cascading a user deletion.
type Disposition string

const (
	DispositionDelete    Disposition = "delete"
	DispositionAnonymize Disposition = "anonymize"
	DispositionPreserve  Disposition = "preserve"
	DispositionReassign  Disposition = "reassign"
)

// Sentinel values written by the anonymize strategy.
const (
	AnonymizedOwner = "anonymous"
	RedactedValue   = "[redacted]"
)

// DefaultBatchSize bounds a single read/write page against the store.
const DefaultBatchSize = 50

// FieldRule binds one user-referencing field to a disposition. PIIFields
// lists additional fields scrubbed alongside the reference when the strategy
// is anonymize.
type FieldRule struct {
	Name      string
	Strategy  Disposition
	PIIFields []string
}

// Entry registers one table. Every user-referencing table must appear here,
// even if only as preserve; an unregistered table is a policy violation.
type Entry struct {
	Table      string
	Fields     []FieldRule
	BatchSize  int      // optional override, 0 means DefaultBatchSize
	BlobFields []string // blob-bearing fields the storage sweeper inspects
}

// Manifest is the declarative table -> field -> strategy registry. Entry and
// field order is the declared order and is stable across runs, which keeps
// partial-failure resumption predictable and audit logs diffable.
type Manifest struct {
	entries []Entry
	index   map[string]int
}

func New(entries []Entry) *Manifest {
	m := &Manifest{
		entries: entries,
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		m.index[e.Table] = i
	}
	return m
}

// CascadeTables returns table names in declared order.
func (m *Manifest) CascadeTables() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Table
	}
	return out
}

// Entry returns the registration for a table.
func (m *Manifest) Entry(table string) (Entry, bool) {
	i, ok := m.index[table]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

// StrategyFor returns the disposition for a table/field pair.
func (m *Manifest) StrategyFor(table, field string) (Disposition, bool) {
	e, ok := m.Entry(table)
	if !ok {
		return "", false
	}
	for _, f := range e.Fields {
		if f.Name == field {
			return f.Strategy, true
		}
	}
	return "", false
}

// BatchSizeFor resolves the page size for a table.
func (m *Manifest) BatchSizeFor(table string) int {
	if e, ok := m.Entry(table); ok && e.BatchSize > 0 {
		return e.BatchSize
	}
	return DefaultBatchSize
}

// Validate checks the registry for configuration defects: duplicate tables,
// entries with no fields, unknown strategies, negative batch overrides.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.entries))
	for _, e := range m.entries {
		if e.Table == "" {
			return fmt.Errorf("manifest entry with empty table name")
		}
		if seen[e.Table] {
			return fmt.Errorf("duplicate manifest entry for table %s", e.Table)
		}
		seen[e.Table] = true

		if len(e.Fields) == 0 {
			return fmt.Errorf("manifest entry for table %s has no field rules", e.Table)
		}
		if e.BatchSize < 0 {
			return fmt.Errorf("manifest entry for table %s has negative batch size", e.Table)
		}

		fields := make(map[string]bool, len(e.Fields))
		for _, f := range e.Fields {
			if f.Name == "" {
				return fmt.Errorf("table %s: field rule with empty name", e.Table)
			}
			if fields[f.Name] {
				return fmt.Errorf("table %s: duplicate rule for field %s", e.Table, f.Name)
			}
			fields[f.Name] = true

			switch f.Strategy {
			case DispositionDelete, DispositionAnonymize, DispositionPreserve, DispositionReassign:
			default:
				return fmt.Errorf("table %s field %s: unknown strategy %q", e.Table, f.Name, f.Strategy)
			}
			if len(f.PIIFields) > 0 && f.Strategy != DispositionAnonymize {
				return fmt.Errorf("table %s field %s: pii fields only apply to anonymize", e.Table, f.Name)
			}
		}
	}
	return nil
}
