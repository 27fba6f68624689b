package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
	sharedpersistence "github.com/tempora-app/tempora/internal/shared/infrastructure/persistence"
)

// PostgresTaskRepository persists tasks in PostgreSQL.
type PostgresTaskRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTaskRepository creates a Postgres task repository.
func NewPostgresTaskRepository(pool *pgxpool.Pool) *PostgresTaskRepository {
	return &PostgresTaskRepository{pool: pool}
}

// Save inserts or updates a task.
func (r *PostgresTaskRepository) Save(ctx context.Context, task *domain.Task) error {
	exec := sharedpersistence.PostgresExecutor(ctx, r.pool)

	_, err := exec.Exec(ctx, `
		INSERT INTO tasks (id, user_id, title, category, duration_min, priority, deadline,
			status, priority_boost, parent_id, split_index, split_total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			duration_min = EXCLUDED.duration_min,
			priority = EXCLUDED.priority,
			deadline = EXCLUDED.deadline,
			status = EXCLUDED.status,
			priority_boost = EXCLUDED.priority_boost,
			split_index = EXCLUDED.split_index,
			split_total = EXCLUDED.split_total,
			updated_at = EXCLUDED.updated_at`,
		task.ID(),
		task.UserID(),
		task.Title(),
		task.Category(),
		task.DurationMin(),
		int(task.Priority()),
		task.Deadline(),
		task.Status().String(),
		task.HasBoost(),
		task.ParentID(),
		task.SplitIndex(),
		task.SplitTotal(),
		task.CreatedAt(),
		task.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// FindByID loads a task by ID.
func (r *PostgresTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	exec := sharedpersistence.PostgresExecutor(ctx, r.pool)

	row := exec.QueryRow(ctx, `
		SELECT id, user_id, title, category, duration_min, priority, deadline,
			status, priority_boost, parent_id, split_index, split_total, created_at, updated_at
		FROM tasks WHERE id = $1`, id)

	task, err := scanPgxTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return task, nil
}

// ListPending returns the user's schedulable tasks (waiting and missed).
func (r *PostgresTaskRepository) ListPending(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	exec := sharedpersistence.PostgresExecutor(ctx, r.pool)

	rows, err := exec.Query(ctx, `
		SELECT id, user_id, title, category, duration_min, priority, deadline,
			status, priority_boost, parent_id, split_index, split_total, created_at, updated_at
		FROM tasks
		WHERE user_id = $1 AND status = ANY($2)
		ORDER BY created_at`,
		userID, []string{domain.StatusWaiting.String(), domain.StatusMissed.String()})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tasks: %w", err)
	}
	defer rows.Close()

	return collectPgxTasks(rows)
}

// ListByUser returns all of the user's tasks.
func (r *PostgresTaskRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	exec := sharedpersistence.PostgresExecutor(ctx, r.pool)

	rows, err := exec.Query(ctx, `
		SELECT id, user_id, title, category, duration_min, priority, deadline,
			status, priority_boost, parent_id, split_index, split_total, created_at, updated_at
		FROM tasks WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	return collectPgxTasks(rows)
}

// ListByParent returns the ordered sub-tasks of a split parent.
func (r *PostgresTaskRepository) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error) {
	exec := sharedpersistence.PostgresExecutor(ctx, r.pool)

	rows, err := exec.Query(ctx, `
		SELECT id, user_id, title, category, duration_min, priority, deadline,
			status, priority_boost, parent_id, split_index, split_total, created_at, updated_at
		FROM tasks WHERE parent_id = $1 ORDER BY split_index`, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-tasks: %w", err)
	}
	defer rows.Close()

	return collectPgxTasks(rows)
}

func scanPgxTask(row pgx.Row) (*domain.Task, error) {
	var (
		id, userID             uuid.UUID
		title, category        string
		durationMin, priority  int
		deadline               *time.Time
		status                 string
		boost                  bool
		parentID               *uuid.UUID
		splitIndex, splitTotal int
		createdAt, updatedAt   time.Time
	)
	err := row.Scan(
		&id, &userID, &title, &category, &durationMin, &priority, &deadline,
		&status, &boost, &parentID, &splitIndex, &splitTotal, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateTask(
		id, userID, title, category, durationMin,
		domain.Priority(priority), deadline, domain.Status(status),
		boost, parentID, splitIndex, splitTotal,
		createdAt, updatedAt,
	), nil
}

func collectPgxTasks(rows pgx.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanPgxTask(rows)
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
