package usecase

import (
	"testing"
	"time"

	"user-deletion-service/internal/domain"
	"user-deletion-service/pkg/xerrors"
)

func TestGuard_Check(t *testing.T) {
	g := NewGuard(5 * time.Minute)

	newUser := func(status domain.DeletionStatus, age time.Duration) *domain.User {
		u := &domain.User{ID: "42", DeletionStatus: status}
		if age > 0 {
			ts := time.Now().Add(-age)
			u.DeletedAt = &ts
		}
		return u
	}

	t.Run("completed refuses", func(t *testing.T) {
		d := g.Check(newUser(domain.DeletionCompleted, 0))
		if d.Proceed {
			t.Error("completed deletion must refuse")
		}
		if d.Reason != xerrors.ErrDeletionCompleted.Error() {
			t.Errorf("reason = %q", d.Reason)
		}
	})

	t.Run("fresh pending refuses", func(t *testing.T) {
		d := g.Check(newUser(domain.DeletionPending, time.Minute))
		if d.Proceed {
			t.Error("fresh pending tombstone must refuse, cascade presumed in flight")
		}
		if d.Reason != xerrors.ErrDeletionInProgress.Error() {
			t.Errorf("reason = %q", d.Reason)
		}
	})

	t.Run("stale pending resumes", func(t *testing.T) {
		d := g.Check(newUser(domain.DeletionPending, 10*time.Minute))
		if !d.Proceed {
			t.Error("stale pending tombstone must allow resumption")
		}
	})

	t.Run("failed allows retry", func(t *testing.T) {
		d := g.Check(newUser(domain.DeletionFailed, time.Minute))
		if !d.Proceed {
			t.Error("failed cascade must allow retry")
		}
	})

	t.Run("untouched user allows", func(t *testing.T) {
		d := g.Check(newUser(domain.DeletionNone, 0))
		if !d.Proceed {
			t.Error("clean user must allow")
		}
	})
}
