package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"user-deletion-service/internal/blob"
	"user-deletion-service/internal/domain"
	"user-deletion-service/internal/identity"
	"user-deletion-service/internal/manifest"
	"user-deletion-service/internal/repository"
	"user-deletion-service/internal/store"
	"user-deletion-service/pkg/xerrors"
)

// CascadeUsecase drives a user deletion end to end: guard, tombstone, audit
// entry, blob sweep, per-table strategy application in bounded batches,
// identity severing, root record removal and journal finalization.
//
// The engine deliberately trades cross-table atomicity for resumability: each
// batch commits independently, and an interrupted cascade is picked up again
// once its tombstone goes stale.
type CascadeUsecase struct {
	docs     store.DocumentStore
	users    *repository.UserRepository
	journal  *repository.JournalRepository
	exec     *StrategyExecutors
	sweeper  *StorageSweeper
	identity identity.Registry
	manifest *manifest.Manifest
	guard    *Guard
	producer DeletionEventProducer
	log      *zap.Logger
}

func NewCascadeUsecase(
	docs store.DocumentStore,
	blobs blob.Store,
	registry identity.Registry,
	m *manifest.Manifest,
	staleAfter time.Duration,
	producer DeletionEventProducer,
	log *zap.Logger,
) *CascadeUsecase {
	return &CascadeUsecase{
		users:    repository.NewUserRepository(docs),
		journal:  repository.NewJournalRepository(docs),
		exec:     NewStrategyExecutors(docs, log),
		sweeper:  NewStorageSweeper(docs, blobs, m, log),
		identity: registry,
		manifest: m,
		guard:    NewGuard(staleAfter),
		producer: producer,
		log:      log,
		docs:     docs,
	}
}

// ExecuteUserDeletionCascade is the single operation the engine exposes.
// Guard rejections and fatal failures both come back as a non-exceptional
// result; callers treat success=false as "retry later".
func (uc *CascadeUsecase) ExecuteUserDeletionCascade(ctx context.Context, userID, initiatorID string, opts domain.CascadeOptions) domain.CascadeResult {
	start := time.Now()
	res := domain.CascadeResult{UserID: userID}

	if userID == "" {
		return uc.refuse(res, start, xerrors.ErrUserIDRequired.Error())
	}
	if initiatorID == "" {
		return uc.refuse(res, start, xerrors.ErrInitiatorRequired.Error())
	}

	role := opts.InitiatorRole
	if role == "" {
		role = domain.InitiatorAdmin
		if initiatorID == userID {
			role = domain.InitiatorSelf
		}
	}
	if role == domain.InitiatorAdmin && strings.TrimSpace(opts.Reason) == "" {
		return uc.refuse(res, start, xerrors.ErrReasonRequired.Error())
	}

	user, err := uc.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return uc.refuse(res, start, "user not found")
		}
		return uc.fail(ctx, nil, res, start, err)
	}

	decision := uc.guard.Check(user)
	if !decision.Proceed {
		uc.log.Info("deletion cascade refused",
			zap.String("user_id", userID),
			zap.String("reason", decision.Reason))
		return uc.refuse(res, start, decision.Reason)
	}
	if decision.Reason != "" {
		uc.log.Info("deletion cascade resuming",
			zap.String("user_id", userID),
			zap.String("reason", decision.Reason))
	}

	// Idle -> TombstoneMarked. Before the tombstone exists there is no journal
	// entry to patch; a failure here is returned without one.
	if err := uc.users.MarkTombstone(ctx, userID, start); err != nil {
		return uc.fail(ctx, nil, res, start, err)
	}

	// Capture the external identity once, for correlation after the row is gone.
	externalID, err := uc.identity.ResolveExternalID(ctx, userID)
	if err != nil {
		uc.log.Warn("failed to resolve external identity",
			zap.String("user_id", userID),
			zap.Error(err))
		externalID = ""
	}

	entry := &domain.DeletionAuditEntry{
		UserID:     userID,
		ExternalID: externalID,
		Profile: domain.ProfileSnapshot{
			Email:          user.Email,
			DisplayName:    user.DisplayName,
			Rank:           user.Rank,
			AccountStatus:  user.AccountStatus,
			DeletionStatus: string(user.DeletionStatus),
		},
		InitiatorID:   initiatorID,
		InitiatorRole: role,
		Reason:        opts.Reason,
		Scope: domain.DeletionScope{
			RelatedTables: uc.manifest.CascadeTables(),
		},
		Status:    domain.JournalInProgress,
		StartedAt: start.UTC(),
	}
	if err := uc.journal.Create(ctx, entry); err != nil {
		return uc.fail(ctx, nil, res, start, err)
	}

	uc.publish(ctx, EventDeletionStarted, entry, &res, "")

	// TombstoneMarked -> Sweeping.
	if opts.SweepStorage() {
		deleted := uc.sweeper.Sweep(ctx, user)
		res.DeletedBlobIDs = deleted
		entry.Scope.StorageFilesDeleted = deleted
	}

	// Sweeping -> Cascading(table_i). Tables in manifest order, fields in
	// declared order; both are stable across runs.
	for _, table := range uc.manifest.CascadeTables() {
		tableEntry, ok := uc.manifest.Entry(table)
		if !ok {
			// Defensive: an unregistered table is a policy violation caught in
			// CI, but the orchestrator skips rather than crashes.
			uc.log.Error("skipping unregistered table", zap.String("table", table))
			continue
		}
		batch := uc.manifest.BatchSizeFor(table)

		for _, rule := range tableEntry.Fields {
			if err := uc.cascadeField(ctx, table, rule, userID, opts, batch, entry, &res); err != nil {
				return uc.fail(ctx, entry, res, start, err)
			}
		}
		res.TablesProcessed = append(res.TablesProcessed, table)
	}

	// Cascading -> Finalizing.
	if !opts.SkipExternalIdentityDeletion {
		if err := uc.identity.SeverMapping(ctx, userID); err != nil {
			return uc.fail(ctx, entry, res, start, err)
		}
		entry.Scope.ExternalIdentityDeleted = true
	}

	if err := uc.users.DeleteUser(ctx, userID); err != nil {
		return uc.fail(ctx, entry, res, start, err)
	}
	res.RecordsDeleted++
	entry.Scope.ProfileDeleted = true

	// Finalizing -> Completed.
	entry.ChunksCascaded = res.ChunksCascaded
	entry.RecordsDeleted = res.RecordsDeleted
	entry.RecordsAnonymized = res.RecordsAnonymized
	entry.RecordsPreserved = res.RecordsPreserved
	if err := uc.journal.MarkCompleted(ctx, entry); err != nil {
		return uc.fail(ctx, entry, res, start, err)
	}

	res.Success = true
	res.Duration = time.Since(start)

	uc.publish(ctx, EventDeletionCompleted, entry, &res, "")
	uc.log.Info("deletion cascade completed",
		zap.String("user_id", userID),
		zap.String("initiator_id", initiatorID),
		zap.String("initiator_role", role),
		zap.Int("records_deleted", res.RecordsDeleted),
		zap.Int("records_anonymized", res.RecordsAnonymized),
		zap.Int("records_preserved", res.RecordsPreserved),
		zap.Int("chunks", res.ChunksCascaded),
		zap.Duration("duration", res.Duration))
	return res
}

// cascadeField pages through every document referencing the user on one field
// and applies the configured strategy batch by batch.
func (uc *CascadeUsecase) cascadeField(
	ctx context.Context,
	table string,
	rule manifest.FieldRule,
	userID string,
	opts domain.CascadeOptions,
	batchSize int,
	entry *domain.DeletionAuditEntry,
	res *domain.CascadeResult,
) error {
	if rule.Strategy == manifest.DispositionReassign && opts.NewOwnerID == "" {
		// Configuration error: skipped loudly, never silently deleted.
		uc.log.Error("reassign strategy with no target owner, skipping field",
			zap.String("table", table),
			zap.String("field", rule.Name),
			zap.String("user_id", userID))
		return nil
	}

	afterID := ""
	for {
		filter := store.Filter{Field: rule.Name, Value: userID, Limit: batchSize}
		if rule.Strategy == manifest.DispositionPreserve {
			// Preserve leaves documents matching, so the page walks forward on
			// an id cursor instead of re-querying a shrinking set.
			filter.AfterID = afterID
		}

		docs, err := uc.docs.Query(ctx, table, filter)
		if err != nil {
			return fmt.Errorf("failed to query %s.%s: %w", table, rule.Name, err)
		}
		if len(docs) == 0 {
			return nil
		}
		res.ChunksCascaded++

		touched := 0
		switch rule.Strategy {
		case manifest.DispositionDelete:
			touched = uc.exec.Delete(ctx, table, docs)
			res.RecordsDeleted += touched
		case manifest.DispositionAnonymize:
			touched = uc.exec.Anonymize(ctx, table, rule.Name, rule.PIIFields, docs)
			res.RecordsAnonymized += touched
		case manifest.DispositionPreserve:
			touched = uc.exec.Preserve(docs)
			res.RecordsPreserved += touched
			afterID = docs[len(docs)-1].ID
		case manifest.DispositionReassign:
			touched = uc.exec.Reassign(ctx, table, rule.Name, opts.NewOwnerID, docs)
			res.RecordsReassigned += touched
		default:
			uc.log.Error("unknown disposition strategy, skipping field",
				zap.String("table", table),
				zap.String("field", rule.Name),
				zap.String("strategy", string(rule.Strategy)))
			return nil
		}

		if touched < len(docs) {
			uc.log.Warn("batch completed with shortfall",
				zap.String("table", table),
				zap.String("field", rule.Name),
				zap.Int("batch", len(docs)),
				zap.Int("touched", touched))
		}

		// Delete/anonymize/reassign shrink the match set each pass. If an
		// entire batch failed, the set will not shrink; bail out instead of
		// spinning on the same page.
		if touched == 0 && rule.Strategy != manifest.DispositionPreserve {
			return nil
		}
	}
}

// refuse reports a non-exceptional rejection (guard or validation).
func (uc *CascadeUsecase) refuse(res domain.CascadeResult, start time.Time, reason string) domain.CascadeResult {
	res.Success = false
	res.ErrorMessage = reason
	res.Duration = time.Since(start)
	return res
}

// fail handles a fatal error: mark the user record failed, patch the journal
// entry if one can be found, publish the failure event and hand the caller a
// structured result.
func (uc *CascadeUsecase) fail(ctx context.Context, entry *domain.DeletionAuditEntry, res domain.CascadeResult, start time.Time, cause error) domain.CascadeResult {
	res.Success = false
	res.ErrorMessage = cause.Error()
	res.Duration = time.Since(start)

	uc.log.Error("deletion cascade failed",
		zap.String("user_id", res.UserID),
		zap.Duration("duration", res.Duration),
		zap.Error(cause))

	if err := uc.users.MarkFailed(ctx, res.UserID); err != nil {
		uc.log.Warn("failed to mark user record failed",
			zap.String("user_id", res.UserID),
			zap.Error(err))
	}

	if entry == nil {
		found, err := uc.journal.LatestInProgress(ctx, res.UserID)
		if err != nil {
			// The one case where the audit trail stays incomplete: the cascade
			// died before its journal entry existed.
			uc.log.Error("no in-progress audit entry to patch, audit trail incomplete",
				zap.String("user_id", res.UserID),
				zap.Error(err))
			return res
		}
		entry = found
	}

	entry.ChunksCascaded = res.ChunksCascaded
	entry.RecordsDeleted = res.RecordsDeleted
	entry.RecordsAnonymized = res.RecordsAnonymized
	entry.RecordsPreserved = res.RecordsPreserved
	if err := uc.journal.MarkFailed(ctx, entry, res.ErrorMessage); err != nil {
		uc.log.Error("failed to patch audit entry after cascade failure",
			zap.String("user_id", res.UserID),
			zap.String("entry_id", entry.ID),
			zap.Error(err))
	}

	uc.publish(ctx, EventDeletionFailed, entry, &res, res.ErrorMessage)
	return res
}

func (uc *CascadeUsecase) publish(ctx context.Context, eventType string, entry *domain.DeletionAuditEntry, res *domain.CascadeResult, errMsg string) {
	if uc.producer == nil {
		return
	}
	msg := &AccountDeletionMessage{
		EventType:         eventType,
		UserID:            entry.UserID,
		ExternalID:        entry.ExternalID,
		InitiatorID:       entry.InitiatorID,
		InitiatorRole:     entry.InitiatorRole,
		Reason:            entry.Reason,
		JournalEntryID:    entry.ID,
		RecordsDeleted:    res.RecordsDeleted,
		RecordsAnonymized: res.RecordsAnonymized,
		RecordsPreserved:  res.RecordsPreserved,
		ErrorMessage:      errMsg,
		Timestamp:         time.Now().UTC(),
	}
	if err := uc.producer.PublishDeletionEvent(ctx, msg); err != nil {
		uc.log.Warn("failed to publish deletion event",
			zap.String("event_type", eventType),
			zap.String("user_id", entry.UserID),
			zap.Error(err))
	}
}

// JournalEntries exposes the audit trail for a subject, oldest attempt first.
func (uc *CascadeUsecase) JournalEntries(ctx context.Context, userID string) ([]domain.DeletionAuditEntry, error) {
	return uc.journal.ListForUser(ctx, userID)
}
