// Package persistence implements the scheduling repositories over SQLite
// (local mode) and PostgreSQL (server mode). Repositories join any open
// unit-of-work transaction through the context.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
	sharedpersistence "github.com/tempora-app/tempora/internal/shared/infrastructure/persistence"
)

const taskColumns = `id, user_id, title, category, duration_min, priority, deadline,
	status, priority_boost, parent_id, split_index, split_total, created_at, updated_at`

// SQLiteTaskRepository persists tasks in SQLite.
type SQLiteTaskRepository struct {
	db *sql.DB
}

// NewSQLiteTaskRepository creates a SQLite task repository.
func NewSQLiteTaskRepository(db *sql.DB) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{db: db}
}

// Save inserts or updates a task.
func (r *SQLiteTaskRepository) Save(ctx context.Context, task *domain.Task) error {
	exec := sharedpersistence.SQLiteExecutor(ctx, r.db)

	var deadline any
	if d := task.Deadline(); d != nil {
		deadline = d.UTC().Format(time.RFC3339Nano)
	}
	var parentID any
	if p := task.ParentID(); p != nil {
		parentID = p.String()
	}

	_, err := exec.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			duration_min = excluded.duration_min,
			priority = excluded.priority,
			deadline = excluded.deadline,
			status = excluded.status,
			priority_boost = excluded.priority_boost,
			split_index = excluded.split_index,
			split_total = excluded.split_total,
			updated_at = excluded.updated_at`,
		task.ID().String(),
		task.UserID().String(),
		task.Title(),
		task.Category(),
		task.DurationMin(),
		int(task.Priority()),
		deadline,
		task.Status().String(),
		boolToInt(task.HasBoost()),
		parentID,
		task.SplitIndex(),
		task.SplitTotal(),
		task.CreatedAt().UTC().Format(time.RFC3339Nano),
		task.UpdatedAt().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// FindByID loads a task by ID.
func (r *SQLiteTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	exec := sharedpersistence.SQLiteExecutor(ctx, r.db)

	row := exec.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id.String())

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return task, nil
}

// ListPending returns the user's schedulable tasks (waiting and missed).
func (r *SQLiteTaskRepository) ListPending(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	exec := sharedpersistence.SQLiteExecutor(ctx, r.db)

	rows, err := exec.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE user_id = ? AND status IN (?, ?)
		 ORDER BY created_at`,
		userID.String(), domain.StatusWaiting.String(), domain.StatusMissed.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// ListByUser returns all of the user's tasks.
func (r *SQLiteTaskRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	exec := sharedpersistence.SQLiteExecutor(ctx, r.db)

	rows, err := exec.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// ListByParent returns the ordered sub-tasks of a split parent.
func (r *SQLiteTaskRepository) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error) {
	exec := sharedpersistence.SQLiteExecutor(ctx, r.db)

	rows, err := exec.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE parent_id = ? ORDER BY split_index`,
		parentID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		idStr, userIDStr, title, category, status string
		durationMin, priority                     int
		deadlineStr, parentIDStr                  sql.NullString
		boost                                     int
		splitIndex, splitTotal                    int
		createdStr, updatedStr                    string
	)
	err := row.Scan(
		&idStr, &userIDStr, &title, &category, &durationMin, &priority, &deadlineStr,
		&status, &boost, &parentIDStr, &splitIndex, &splitTotal, &createdStr, &updatedStr,
	)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid task id: %w", err)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	var deadline *time.Time
	if deadlineStr.Valid {
		t, err := time.Parse(time.RFC3339Nano, deadlineStr.String)
		if err != nil {
			return nil, fmt.Errorf("invalid deadline: %w", err)
		}
		deadline = &t
	}
	var parentID *uuid.UUID
	if parentIDStr.Valid {
		p, err := uuid.Parse(parentIDStr.String)
		if err != nil {
			return nil, fmt.Errorf("invalid parent id: %w", err)
		}
		parentID = &p
	}

	createdAt, err := time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, updatedStr)
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at: %w", err)
	}

	return domain.RehydrateTask(
		id, userID, title, category, durationMin,
		domain.Priority(priority), deadline, domain.Status(status),
		boost != 0, parentID, splitIndex, splitTotal,
		createdAt, updatedAt,
	), nil
}

func collectTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
