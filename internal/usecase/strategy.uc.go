package usecase

import (
	"context"

	"go.uber.org/zap"

	"user-deletion-service/internal/manifest"
	"user-deletion-service/internal/store"
)

// StrategyExecutors applies one disposition to a batch of documents sharing
// the same user-referencing field. Each executor returns the number of
// documents it actually touched; a per-document failure is logged and counted
// as shortfall, never aborting the batch.
type StrategyExecutors struct {
	store store.DocumentStore
	log   *zap.Logger
}

func NewStrategyExecutors(s store.DocumentStore, log *zap.Logger) *StrategyExecutors {
	return &StrategyExecutors{store: s, log: log}
}

// Delete removes each document outright. Used for strictly personal,
// non-shared data.
func (e *StrategyExecutors) Delete(ctx context.Context, table string, docs []store.Document) int {
	touched := 0
	for _, doc := range docs {
		if err := e.store.Delete(ctx, table, doc.ID); err != nil {
			e.log.Warn("failed to delete document",
				zap.String("table", table),
				zap.String("doc_id", doc.ID),
				zap.Error(err))
			continue
		}
		touched++
	}
	return touched
}

// Anonymize overwrites the user-referencing field with a sentinel and scrubs
// any flagged PII fields, keeping the document. Used where the record has
// independent value but the linkage to a person must not survive.
func (e *StrategyExecutors) Anonymize(ctx context.Context, table, field string, piiFields []string, docs []store.Document) int {
	touched := 0
	for _, doc := range docs {
		patch := map[string]any{field: manifest.AnonymizedOwner}
		for _, pii := range piiFields {
			if _, ok := doc.Fields[pii]; ok {
				patch[pii] = manifest.RedactedValue
			}
		}
		if err := e.store.Patch(ctx, table, doc.ID, patch); err != nil {
			e.log.Warn("failed to anonymize document",
				zap.String("table", table),
				zap.String("doc_id", doc.ID),
				zap.Error(err))
			continue
		}
		touched++
	}
	return touched
}

// Preserve leaves the batch untouched; it only reports the retained count.
func (e *StrategyExecutors) Preserve(docs []store.Document) int {
	return len(docs)
}

// Reassign rewrites the user-referencing field to the new owner. The caller
// must have checked that a target owner exists; an empty target here is a
// configuration error and the batch is skipped loudly.
func (e *StrategyExecutors) Reassign(ctx context.Context, table, field, newOwnerID string, docs []store.Document) int {
	if newOwnerID == "" {
		e.log.Error("reassign strategy invoked without a target owner",
			zap.String("table", table),
			zap.String("field", field))
		return 0
	}

	touched := 0
	for _, doc := range docs {
		if err := e.store.Patch(ctx, table, doc.ID, map[string]any{field: newOwnerID}); err != nil {
			e.log.Warn("failed to reassign document",
				zap.String("table", table),
				zap.String("doc_id", doc.ID),
				zap.Error(err))
			continue
		}
		touched++
	}
	return touched
}
