package commands

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTasks is an in-memory TaskRepository.
type fakeTasks struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.Task
}

func newFakeTasks(tasks ...*domain.Task) *fakeTasks {
	r := &fakeTasks{items: make(map[uuid.UUID]*domain.Task)}
	for _, task := range tasks {
		r.items[task.ID()] = task
	}
	return r
}

func (r *fakeTasks) Save(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[task.ID()] = task
	return nil
}

func (r *fakeTasks) FindByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.items[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (r *fakeTasks) ListPending(_ context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	return r.list(func(t *domain.Task) bool {
		return t.UserID() == userID &&
			(t.Status() == domain.StatusWaiting || t.Status() == domain.StatusMissed)
	}), nil
}

func (r *fakeTasks) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	return r.list(func(t *domain.Task) bool { return t.UserID() == userID }), nil
}

func (r *fakeTasks) ListByParent(_ context.Context, parentID uuid.UUID) ([]*domain.Task, error) {
	subs := r.list(func(t *domain.Task) bool {
		return t.ParentID() != nil && *t.ParentID() == parentID
	})
	sort.Slice(subs, func(i, j int) bool { return subs[i].SplitIndex() < subs[j].SplitIndex() })
	return subs, nil
}

func (r *fakeTasks) list(keep func(*domain.Task) bool) []*domain.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Task
	for _, t := range r.items {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out
}

// fakeBlocks is an in-memory BlockRepository.
type fakeBlocks struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.ScheduleBlock
}

func newFakeBlocks(blocks ...*domain.ScheduleBlock) *fakeBlocks {
	r := &fakeBlocks{items: make(map[uuid.UUID]*domain.ScheduleBlock)}
	for _, block := range blocks {
		r.items[block.ID()] = block
	}
	return r
}

func (r *fakeBlocks) Save(_ context.Context, block *domain.ScheduleBlock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[block.ID()] = block
	return nil
}

func (r *fakeBlocks) SaveBatch(ctx context.Context, blocks []*domain.ScheduleBlock) error {
	for _, block := range blocks {
		if err := r.Save(ctx, block); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeBlocks) ListByUserRange(_ context.Context, userID uuid.UUID, start, end time.Time) ([]*domain.ScheduleBlock, error) {
	return r.list(func(b *domain.ScheduleBlock) bool {
		return b.UserID() == userID && domain.Overlaps(b.StartTime(), b.EndTime(), start, end)
	}), nil
}

func (r *fakeBlocks) ListOpenEndedBefore(_ context.Context, userID uuid.UUID, cutoff time.Time) ([]*domain.ScheduleBlock, error) {
	return r.list(func(b *domain.ScheduleBlock) bool {
		return b.UserID() == userID && !b.IsCompleted() && b.EndTime().Before(cutoff)
	}), nil
}

func (r *fakeBlocks) ListByTask(_ context.Context, taskID uuid.UUID) ([]*domain.ScheduleBlock, error) {
	return r.list(func(b *domain.ScheduleBlock) bool { return b.TaskID() == taskID }), nil
}

func (r *fakeBlocks) DeleteByTask(_ context.Context, taskID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, b := range r.items {
		if b.TaskID() == taskID {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *fakeBlocks) list(keep func(*domain.ScheduleBlock) bool) []*domain.ScheduleBlock {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ScheduleBlock
	for _, b := range r.items {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime().Before(out[j].StartTime()) })
	return out
}

// fixedPolicy returns the same working-hours policy for every user.
type fixedPolicy struct {
	policy domain.WorkingHoursPolicy
}

func (p fixedPolicy) WorkingHours(context.Context, uuid.UUID) (domain.WorkingHoursPolicy, error) {
	return p.policy, nil
}

// fakeUnitOfWork counts commits and rollbacks; there is no real
// transaction underneath the fakes.
type fakeUnitOfWork struct {
	commits   int
	rollbacks int
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (u *fakeUnitOfWork) Commit(context.Context) error                       { u.commits++; return nil }
func (u *fakeUnitOfWork) Rollback(context.Context) error                     { u.rollbacks++; return nil }
