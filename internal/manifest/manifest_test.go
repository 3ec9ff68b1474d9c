package manifest

import (
	"testing"
)

func testEntries() []Entry {
	return []Entry{
		{Table: "tasks", Fields: []FieldRule{{Name: "owner_id", Strategy: DispositionDelete}}},
		{Table: "invoices", Fields: []FieldRule{{
			Name: "created_by", Strategy: DispositionAnonymize, PIIFields: []string{"customer_email"},
		}}},
		{Table: "projects", Fields: []FieldRule{{Name: "owner_id", Strategy: DispositionReassign}}, BatchSize: 25},
	}
}

func TestManifest_CascadeTablesStableOrder(t *testing.T) {
	m := New(testEntries())

	want := []string{"tasks", "invoices", "projects"}
	for run := 0; run < 3; run++ {
		got := m.CascadeTables()
		if len(got) != len(want) {
			t.Fatalf("CascadeTables() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("run %d: CascadeTables()[%d] = %s, want %s", run, i, got[i], want[i])
			}
		}
	}
}

func TestManifest_StrategyFor(t *testing.T) {
	m := New(testEntries())

	if s, ok := m.StrategyFor("tasks", "owner_id"); !ok || s != DispositionDelete {
		t.Errorf("StrategyFor(tasks, owner_id) = (%s, %v)", s, ok)
	}
	if _, ok := m.StrategyFor("tasks", "missing_field"); ok {
		t.Error("StrategyFor on unknown field should report not found")
	}
	if _, ok := m.StrategyFor("unregistered", "owner_id"); ok {
		t.Error("StrategyFor on unregistered table should report not found")
	}
}

func TestManifest_BatchSizeFor(t *testing.T) {
	m := New(testEntries())

	if got := m.BatchSizeFor("projects"); got != 25 {
		t.Errorf("BatchSizeFor(projects) = %d, want 25", got)
	}
	if got := m.BatchSizeFor("tasks"); got != DefaultBatchSize {
		t.Errorf("BatchSizeFor(tasks) = %d, want default %d", got, DefaultBatchSize)
	}
	if got := m.BatchSizeFor("unregistered"); got != DefaultBatchSize {
		t.Errorf("BatchSizeFor(unregistered) = %d, want default %d", got, DefaultBatchSize)
	}
}

func TestManifest_Validate(t *testing.T) {
	t.Run("valid manifest passes", func(t *testing.T) {
		if err := New(testEntries()).Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("default manifest passes", func(t *testing.T) {
		if err := Default().Validate(); err != nil {
			t.Errorf("Default().Validate() = %v, want nil", err)
		}
	})

	t.Run("duplicate table fails", func(t *testing.T) {
		m := New([]Entry{
			{Table: "tasks", Fields: []FieldRule{{Name: "owner_id", Strategy: DispositionDelete}}},
			{Table: "tasks", Fields: []FieldRule{{Name: "owner_id", Strategy: DispositionDelete}}},
		})
		if err := m.Validate(); err == nil {
			t.Error("Validate() = nil, want error for duplicate table")
		}
	})

	t.Run("entry without fields fails", func(t *testing.T) {
		m := New([]Entry{{Table: "tasks"}})
		if err := m.Validate(); err == nil {
			t.Error("Validate() = nil, want error for empty field rules")
		}
	})

	t.Run("unknown strategy fails", func(t *testing.T) {
		m := New([]Entry{
			{Table: "tasks", Fields: []FieldRule{{Name: "owner_id", Strategy: "obliterate"}}},
		})
		if err := m.Validate(); err == nil {
			t.Error("Validate() = nil, want error for unknown strategy")
		}
	})

	t.Run("pii fields on non-anonymize fails", func(t *testing.T) {
		m := New([]Entry{
			{Table: "tasks", Fields: []FieldRule{{
				Name: "owner_id", Strategy: DispositionDelete, PIIFields: []string{"email"},
			}}},
		})
		if err := m.Validate(); err == nil {
			t.Error("Validate() = nil, want error for pii fields on delete strategy")
		}
	})
}
