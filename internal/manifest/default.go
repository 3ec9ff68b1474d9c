package manifest

// Default registers every user-referencing table in the application. Adding a
// table to the schema without registering it here is a policy violation; the
// schema checker in CI compares this list against live collections.
func Default() *Manifest {
	return New([]Entry{
		{
			Table: "tasks",
			Fields: []FieldRule{
				{Name: "owner_id", Strategy: DispositionDelete},
			},
			BlobFields: []string{"attachment_id"},
		},
		{
			Table: "notes",
			Fields: []FieldRule{
				{Name: "author_id", Strategy: DispositionDelete},
			},
		},
		{
			Table: "drafts",
			Fields: []FieldRule{
				{Name: "owner_id", Strategy: DispositionDelete},
			},
		},
		{
			Table: "sessions",
			Fields: []FieldRule{
				{Name: "user_id", Strategy: DispositionDelete},
			},
			BatchSize: 100,
		},
		{
			Table: "notifications",
			Fields: []FieldRule{
				{Name: "user_id", Strategy: DispositionDelete},
			},
			BatchSize: 100,
		},
		{
			Table: "preferences",
			Fields: []FieldRule{
				{Name: "user_id", Strategy: DispositionDelete},
			},
		},
		{
			Table: "uploads",
			Fields: []FieldRule{
				{Name: "owner_id", Strategy: DispositionDelete},
			},
			BlobFields: []string{"blob_id"},
		},
		{
			Table: "invoices",
			Fields: []FieldRule{
				{
					Name:      "created_by",
					Strategy:  DispositionAnonymize,
					PIIFields: []string{"customer_name", "customer_email"},
				},
			},
		},
		{
			Table: "ledger_entries",
			Fields: []FieldRule{
				{Name: "user_id", Strategy: DispositionAnonymize},
			},
		},
		{
			Table: "comments",
			Fields: []FieldRule{
				{Name: "author_id", Strategy: DispositionAnonymize, PIIFields: []string{"author_name"}},
			},
		},
		{
			Table: "compliance_logs",
			Fields: []FieldRule{
				{Name: "user_id", Strategy: DispositionPreserve},
			},
		},
		{
			Table: "projects",
			Fields: []FieldRule{
				{Name: "owner_id", Strategy: DispositionReassign},
			},
			BatchSize: 25,
		},
	})
}
