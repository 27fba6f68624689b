package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
	sharedpersistence "github.com/tempora-app/tempora/internal/shared/infrastructure/persistence"
)

// PostgresBlockRepository persists schedule blocks in PostgreSQL.
type PostgresBlockRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBlockRepository creates a Postgres block repository.
func NewPostgresBlockRepository(pool *pgxpool.Pool) *PostgresBlockRepository {
	return &PostgresBlockRepository{pool: pool}
}

// Save inserts or updates a block.
func (r *PostgresBlockRepository) Save(ctx context.Context, block *domain.ScheduleBlock) error {
	exec := sharedpersistence.PostgresExecutor(ctx, r.pool)
	return savePgxBlock(ctx, exec, block)
}

// SaveBatch persists all blocks. Run inside a unit of work for
// all-or-nothing semantics.
func (r *PostgresBlockRepository) SaveBatch(ctx context.Context, blocks []*domain.ScheduleBlock) error {
	exec := sharedpersistence.PostgresExecutor(ctx, r.pool)
	for _, block := range blocks {
		if err := savePgxBlock(ctx, exec, block); err != nil {
			return err
		}
	}
	return nil
}

func savePgxBlock(ctx context.Context, exec sharedpersistence.PgxExecutor, block *domain.ScheduleBlock) error {
	part, total, reason := 0, 0, ""
	if s := block.Split(); s != nil {
		part, total, reason = s.Part, s.Total, string(s.Reason)
	}

	_, err := exec.Exec(ctx, `
		INSERT INTO schedule_blocks (id, user_id, task_id, start_time, end_time, completed,
			split_part, split_total, split_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			completed = EXCLUDED.completed,
			split_part = EXCLUDED.split_part,
			split_total = EXCLUDED.split_total,
			split_reason = EXCLUDED.split_reason,
			updated_at = EXCLUDED.updated_at`,
		block.ID(),
		block.UserID(),
		block.TaskID(),
		block.StartTime(),
		block.EndTime(),
		block.IsCompleted(),
		part,
		total,
		reason,
		block.CreatedAt(),
		block.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save block: %w", err)
	}
	return nil
}

// ListByUserRange returns the user's blocks intersecting [start, end).
func (r *PostgresBlockRepository) ListByUserRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*domain.ScheduleBlock, error) {
	exec := sharedpersistence.PostgresExecutor(ctx, r.pool)

	rows, err := exec.Query(ctx, `
		SELECT id, user_id, task_id, start_time, end_time, completed,
			split_part, split_total, split_reason, created_at, updated_at
		FROM schedule_blocks
		WHERE user_id = $1 AND start_time < $2 AND end_time > $3
		ORDER BY start_time`,
		userID, end, start)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	defer rows.Close()

	return collectPgxBlocks(rows)
}

// ListOpenEndedBefore returns uncompleted blocks ending before cutoff.
func (r *PostgresBlockRepository) ListOpenEndedBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) ([]*domain.ScheduleBlock, error) {
	exec := sharedpersistence.PostgresExecutor(ctx, r.pool)

	rows, err := exec.Query(ctx, `
		SELECT id, user_id, task_id, start_time, end_time, completed,
			split_part, split_total, split_reason, created_at, updated_at
		FROM schedule_blocks
		WHERE user_id = $1 AND completed = FALSE AND end_time < $2
		ORDER BY end_time`,
		userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired blocks: %w", err)
	}
	defer rows.Close()

	return collectPgxBlocks(rows)
}

// ListByTask returns all blocks placing the given task.
func (r *PostgresBlockRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.ScheduleBlock, error) {
	exec := sharedpersistence.PostgresExecutor(ctx, r.pool)

	rows, err := exec.Query(ctx, `
		SELECT id, user_id, task_id, start_time, end_time, completed,
			split_part, split_total, split_reason, created_at, updated_at
		FROM schedule_blocks WHERE task_id = $1 ORDER BY start_time`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks by task: %w", err)
	}
	defer rows.Close()

	return collectPgxBlocks(rows)
}

// DeleteByTask removes all blocks placing the given task.
func (r *PostgresBlockRepository) DeleteByTask(ctx context.Context, taskID uuid.UUID) error {
	exec := sharedpersistence.PostgresExecutor(ctx, r.pool)

	if _, err := exec.Exec(ctx, `DELETE FROM schedule_blocks WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("failed to delete blocks: %w", err)
	}
	return nil
}

func scanPgxBlock(row pgx.Row) (*domain.ScheduleBlock, error) {
	var (
		id, userID, taskID   uuid.UUID
		start, end           time.Time
		completed            bool
		part, total          int
		reason               string
		createdAt, updatedAt time.Time
	)
	err := row.Scan(
		&id, &userID, &taskID, &start, &end, &completed,
		&part, &total, &reason, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	var split *domain.SplitDescriptor
	if total > 0 {
		split = &domain.SplitDescriptor{Part: part, Total: total, Reason: domain.SplitReason(reason)}
	}

	return domain.RehydrateScheduleBlock(
		id, userID, taskID, start.UTC(), end.UTC(), completed, split, createdAt, updatedAt,
	), nil
}

func collectPgxBlocks(rows pgx.Rows) ([]*domain.ScheduleBlock, error) {
	var blocks []*domain.ScheduleBlock
	for rows.Next() {
		block, err := scanPgxBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		blocks = append(blocks, block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate blocks: %w", err)
	}
	return blocks, nil
}
