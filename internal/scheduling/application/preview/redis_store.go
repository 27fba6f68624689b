package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL bounds how long an unapplied preview survives.
const DefaultSessionTTL = 30 * time.Minute

// RedisStore keeps preview sessions in Redis with a TTL, for server mode
// where CLI and API processes share drafts.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed preview store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(userID uuid.UUID) string {
	return fmt.Sprintf("tempora:preview:user:%s", userID)
}

// Put stores the session, replacing any active session for the user.
func (s *RedisStore) Put(ctx context.Context, session *Session) error {
	payload, err := json.Marshal(encodeSession(session))
	if err != nil {
		return fmt.Errorf("encode preview session: %w", err)
	}
	return s.client.Set(ctx, sessionKey(session.UserID), payload, s.ttl).Err()
}

// Get returns the active session, or ErrNoActivePreview.
func (s *RedisStore) Get(ctx context.Context, userID uuid.UUID) (*Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNoActivePreview
	}
	if err != nil {
		return nil, err
	}

	var doc sessionDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode preview session: %w", err)
	}
	return decodeSession(doc), nil
}

// Delete discards the active session.
func (s *RedisStore) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.client.Del(ctx, sessionKey(userID)).Err()
}

// Wire documents. Domain entities keep their fields unexported, so the
// store flattens them for serialization and rehydrates on read.

type sessionDoc struct {
	UserID       uuid.UUID      `json:"user_id"`
	RangeStart   time.Time      `json:"range_start"`
	RangeEnd     time.Time      `json:"range_end"`
	SnapshotHash string         `json:"snapshot_hash"`
	CreatedAt    time.Time      `json:"created_at"`
	Blocks       []blockDoc     `json:"blocks"`
	SubTasks     []taskDoc      `json:"sub_tasks"`
	Unplaced     []unplacedDoc  `json:"unplaced"`
	Suggestions  []string       `json:"suggestions"`
	Utilization  float64        `json:"utilization_pct"`
	ComputedAt   time.Time      `json:"computed_at"`
}

type blockDoc struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	TaskID      uuid.UUID `json:"task_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Completed   bool      `json:"completed"`
	SplitPart   int       `json:"split_part,omitempty"`
	SplitTotal  int       `json:"split_total,omitempty"`
	SplitReason string    `json:"split_reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type taskDoc struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	DurationMin int        `json:"duration_min"`
	Priority    int        `json:"priority"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Status      string     `json:"status"`
	Boost       bool       `json:"boost"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	SplitIndex  int        `json:"split_index"`
	SplitTotal  int        `json:"split_total"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type unplacedDoc struct {
	TaskID uuid.UUID `json:"task_id"`
	Title  string    `json:"title"`
	Reason string    `json:"reason"`
}

func encodeSession(session *Session) sessionDoc {
	doc := sessionDoc{
		UserID:       session.UserID,
		RangeStart:   session.RangeStart,
		RangeEnd:     session.RangeEnd,
		SnapshotHash: session.SnapshotHash,
		CreatedAt:    session.CreatedAt,
		Suggestions:  session.Result.Suggestions,
		Utilization:  session.Result.UtilizationPct,
		ComputedAt:   session.Result.ComputedAt,
	}
	for _, b := range session.Result.Blocks {
		doc.Blocks = append(doc.Blocks, encodeBlock(b))
	}
	for _, t := range session.Result.SubTasks {
		doc.SubTasks = append(doc.SubTasks, encodeTask(t))
	}
	for _, u := range session.Result.Unplaced {
		doc.Unplaced = append(doc.Unplaced, unplacedDoc{TaskID: u.TaskID, Title: u.Title, Reason: string(u.Reason)})
	}
	return doc
}

func decodeSession(doc sessionDoc) *Session {
	result := &domain.SchedulingResult{
		Suggestions:    doc.Suggestions,
		UtilizationPct: doc.Utilization,
		ComputedAt:     doc.ComputedAt,
	}
	for _, b := range doc.Blocks {
		result.Blocks = append(result.Blocks, decodeBlock(b))
	}
	for _, t := range doc.SubTasks {
		result.SubTasks = append(result.SubTasks, decodeTask(t))
	}
	for _, u := range doc.Unplaced {
		result.Unplaced = append(result.Unplaced, domain.UnplacedTask{
			TaskID: u.TaskID,
			Title:  u.Title,
			Reason: domain.ConflictReason(u.Reason),
		})
	}
	return &Session{
		UserID:       doc.UserID,
		Result:       result,
		RangeStart:   doc.RangeStart,
		RangeEnd:     doc.RangeEnd,
		SnapshotHash: doc.SnapshotHash,
		CreatedAt:    doc.CreatedAt,
	}
}

func encodeBlock(b *domain.ScheduleBlock) blockDoc {
	doc := blockDoc{
		ID:        b.ID(),
		UserID:    b.UserID(),
		TaskID:    b.TaskID(),
		StartTime: b.StartTime(),
		EndTime:   b.EndTime(),
		Completed: b.IsCompleted(),
		CreatedAt: b.CreatedAt(),
		UpdatedAt: b.UpdatedAt(),
	}
	if split := b.Split(); split != nil {
		doc.SplitPart = split.Part
		doc.SplitTotal = split.Total
		doc.SplitReason = string(split.Reason)
	}
	return doc
}

func decodeBlock(doc blockDoc) *domain.ScheduleBlock {
	var split *domain.SplitDescriptor
	if doc.SplitTotal > 0 {
		split = &domain.SplitDescriptor{
			Part:   doc.SplitPart,
			Total:  doc.SplitTotal,
			Reason: domain.SplitReason(doc.SplitReason),
		}
	}
	return domain.RehydrateScheduleBlock(
		doc.ID, doc.UserID, doc.TaskID,
		doc.StartTime, doc.EndTime,
		doc.Completed, split,
		doc.CreatedAt, doc.UpdatedAt,
	)
}

func encodeTask(t *domain.Task) taskDoc {
	return taskDoc{
		ID:          t.ID(),
		UserID:      t.UserID(),
		Title:       t.Title(),
		Category:    t.Category(),
		DurationMin: t.DurationMin(),
		Priority:    int(t.Priority()),
		Deadline:    t.Deadline(),
		Status:      t.Status().String(),
		Boost:       t.HasBoost(),
		ParentID:    t.ParentID(),
		SplitIndex:  t.SplitIndex(),
		SplitTotal:  t.SplitTotal(),
		CreatedAt:   t.CreatedAt(),
		UpdatedAt:   t.UpdatedAt(),
	}
}

func decodeTask(doc taskDoc) *domain.Task {
	return domain.RehydrateTask(
		doc.ID, doc.UserID,
		doc.Title, doc.Category,
		doc.DurationMin,
		domain.Priority(doc.Priority),
		doc.Deadline,
		domain.Status(doc.Status),
		doc.Boost,
		doc.ParentID,
		doc.SplitIndex, doc.SplitTotal,
		doc.CreatedAt, doc.UpdatedAt,
	)
}
