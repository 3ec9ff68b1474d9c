package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"user-deletion-service/pkg/xerrors"
)

// PGStore keeps every logical table in one relation, documents, keyed by
// (collection, id) with a JSONB payload. Equality filters go through the
// data->>field text projection, which the GIN index covers well enough for
// the per-user cardinalities a cascade sees.
type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// Migrate creates the documents relation if it does not exist.
func (s *PGStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			data       JSONB NOT NULL DEFAULT '{}'::jsonb,
			PRIMARY KEY (collection, id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS documents_data_gin
		ON documents USING gin (data jsonb_path_ops)
	`)
	if err != nil {
		return fmt.Errorf("failed to create documents index: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, table, id string) (*Document, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `
		SELECT data FROM documents
		WHERE collection = $1 AND id = $2
	`, table, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrDocNotFound
		}
		return nil, fmt.Errorf("failed to get document %s/%s: %w", table, id, err)
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode document %s/%s: %w", table, id, err)
	}
	return &Document{ID: id, Fields: fields}, nil
}

func (s *PGStore) Query(ctx context.Context, table string, f Filter) ([]Document, error) {
	sqlQuery := `
		SELECT id, data FROM documents
		WHERE collection = $1
	`
	args := []interface{}{table}
	argIdx := 2

	if f.Field != "" {
		sqlQuery += fmt.Sprintf(" AND data->>$%d = $%d", argIdx, argIdx+1)
		args = append(args, f.Field, fmt.Sprint(f.Value))
		argIdx += 2
	}
	if f.AfterID != "" {
		sqlQuery += fmt.Sprintf(" AND id > $%d", argIdx)
		args = append(args, f.AfterID)
		argIdx++
	}

	sqlQuery += " ORDER BY id"
	if f.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		fields := make(map[string]any)
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode document %s/%s: %w", table, id, err)
		}
		out = append(out, Document{ID: id, Fields: fields})
	}
	return out, rows.Err()
}

func (s *PGStore) Patch(ctx context.Context, table, id string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode patch for %s/%s: %w", table, id, err)
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE documents
		SET data = data || $3::jsonb
		WHERE collection = $1 AND id = $2
	`, table, id, patch)
	if err != nil {
		return fmt.Errorf("failed to patch document %s/%s: %w", table, id, err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrDocNotFound
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, table, id string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM documents
		WHERE collection = $1 AND id = $2
	`, table, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", table, id, err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrDocNotFound
	}
	return nil
}

func (s *PGStore) Insert(ctx context.Context, table string, fields map[string]any) (string, error) {
	if table == "" {
		return "", xerrors.ErrTableRequired
	}

	id := uuid.NewString()
	if v, ok := fields["id"].(string); ok && v != "" {
		id = v
	}

	payload := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "id" {
			continue
		}
		payload[k] = v
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
	`, table, id, data)
	if err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return id, nil
}
