package usecase

import (
	"time"

	"user-deletion-service/internal/domain"
	"user-deletion-service/pkg/xerrors"
)

// DefaultStaleAfter is how old a pending tombstone must be before a new
// cascade may assume the previous one crashed and resume.
const DefaultStaleAfter = 5 * time.Minute

// GuardDecision says whether a cascade may start for a user, and why not.
type GuardDecision struct {
	Proceed bool
	Reason  string
}

// Guard is advisory concurrency control, not a distributed lock. It assumes a
// single-writer store and accepts a narrow race at the staleness boundary.
type Guard struct {
	staleAfter time.Duration
	now        func() time.Time
}

func NewGuard(staleAfter time.Duration) *Guard {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Guard{staleAfter: staleAfter, now: time.Now}
}

// Check applies the rules in order: completed -> refuse; fresh pending ->
// refuse (another cascade presumed in flight); stale pending -> allow as a
// resumption; anything else -> allow.
func (g *Guard) Check(u *domain.User) GuardDecision {
	switch u.DeletionStatus {
	case domain.DeletionCompleted:
		return GuardDecision{Proceed: false, Reason: xerrors.ErrDeletionCompleted.Error()}
	case domain.DeletionPending:
		if age := u.TombstoneAge(g.now()); u.DeletedAt != nil && age < g.staleAfter {
			return GuardDecision{Proceed: false, Reason: xerrors.ErrDeletionInProgress.Error()}
		}
		return GuardDecision{Proceed: true, Reason: "resuming stale cascade"}
	default:
		return GuardDecision{Proceed: true}
	}
}
