// Package preview holds the draft state of a scheduling run between
// computation and apply/cancel. Exactly one session is active per user;
// storing a new one supersedes the old.
package preview

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
	"github.com/google/uuid"
)

var ErrNoActivePreview = errors.New("no active preview for user")

// Session is one inspectable, reversible scheduling draft.
type Session struct {
	UserID       uuid.UUID
	Result       *domain.SchedulingResult
	RangeStart   time.Time
	RangeEnd     time.Time
	SnapshotHash string
	CreatedAt    time.Time
}

// Store persists preview sessions keyed by user.
type Store interface {
	// Put stores the session, replacing any active session for the user.
	Put(ctx context.Context, session *Session) error

	// Get returns the active session, or ErrNoActivePreview.
	Get(ctx context.Context, userID uuid.UUID) (*Session, error)

	// Delete discards the active session. Deleting a missing session is
	// not an error.
	Delete(ctx context.Context, userID uuid.UUID) error
}

// Fingerprint derives a stable hash of the committed blocks a preview was
// computed against. Apply compares fingerprints to detect a stale preview.
func Fingerprint(blocks []*domain.ScheduleBlock) string {
	keys := make([]string, 0, len(blocks))
	for _, b := range blocks {
		keys = append(keys, fmt.Sprintf("%s|%d|%d", b.ID(), b.StartTime().UnixNano(), b.UpdatedAt().UnixNano()))
	}
	sort.Strings(keys)

	h := fnv.New64a()
	for _, k := range keys {
		_, _ = h.Write([]byte(k))
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
