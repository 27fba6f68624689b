package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
	sharedpersistence "github.com/tempora-app/tempora/internal/shared/infrastructure/persistence"
)

const blockColumns = `id, user_id, task_id, start_time, end_time, completed,
	split_part, split_total, split_reason, created_at, updated_at`

// SQLiteBlockRepository persists schedule blocks in SQLite.
type SQLiteBlockRepository struct {
	db *sql.DB
}

// NewSQLiteBlockRepository creates a SQLite block repository.
func NewSQLiteBlockRepository(db *sql.DB) *SQLiteBlockRepository {
	return &SQLiteBlockRepository{db: db}
}

// Save inserts or updates a block.
func (r *SQLiteBlockRepository) Save(ctx context.Context, block *domain.ScheduleBlock) error {
	exec := sharedpersistence.SQLiteExecutor(ctx, r.db)
	return saveBlock(ctx, exec, block)
}

// SaveBatch persists all blocks. Callers wanting all-or-nothing semantics
// run it inside a unit of work; outside one, each insert commits on its
// own.
func (r *SQLiteBlockRepository) SaveBatch(ctx context.Context, blocks []*domain.ScheduleBlock) error {
	exec := sharedpersistence.SQLiteExecutor(ctx, r.db)
	for _, block := range blocks {
		if err := saveBlock(ctx, exec, block); err != nil {
			return err
		}
	}
	return nil
}

func saveBlock(ctx context.Context, exec sharedpersistence.Executor, block *domain.ScheduleBlock) error {
	part, total, reason := 0, 0, ""
	if s := block.Split(); s != nil {
		part, total, reason = s.Part, s.Total, string(s.Reason)
	}

	_, err := exec.ExecContext(ctx, `
		INSERT INTO schedule_blocks (`+blockColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			completed = excluded.completed,
			split_part = excluded.split_part,
			split_total = excluded.split_total,
			split_reason = excluded.split_reason,
			updated_at = excluded.updated_at`,
		block.ID().String(),
		block.UserID().String(),
		block.TaskID().String(),
		block.StartTime().UTC().Format(time.RFC3339Nano),
		block.EndTime().UTC().Format(time.RFC3339Nano),
		boolToInt(block.IsCompleted()),
		part,
		total,
		reason,
		block.CreatedAt().UTC().Format(time.RFC3339Nano),
		block.UpdatedAt().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save block: %w", err)
	}
	return nil
}

// ListByUserRange returns the user's blocks intersecting [start, end).
func (r *SQLiteBlockRepository) ListByUserRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*domain.ScheduleBlock, error) {
	exec := sharedpersistence.SQLiteExecutor(ctx, r.db)

	// Half-open intersection: block.start < end AND start < block.end.
	rows, err := exec.QueryContext(ctx,
		`SELECT `+blockColumns+` FROM schedule_blocks
		 WHERE user_id = ? AND start_time < ? AND end_time > ?
		 ORDER BY start_time`,
		userID.String(),
		end.UTC().Format(time.RFC3339Nano),
		start.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	defer rows.Close()

	return collectBlocks(rows)
}

// ListOpenEndedBefore returns uncompleted blocks ending before cutoff.
func (r *SQLiteBlockRepository) ListOpenEndedBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) ([]*domain.ScheduleBlock, error) {
	exec := sharedpersistence.SQLiteExecutor(ctx, r.db)

	rows, err := exec.QueryContext(ctx,
		`SELECT `+blockColumns+` FROM schedule_blocks
		 WHERE user_id = ? AND completed = 0 AND end_time < ?
		 ORDER BY end_time`,
		userID.String(), cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("failed to list expired blocks: %w", err)
	}
	defer rows.Close()

	return collectBlocks(rows)
}

// ListByTask returns all blocks placing the given task.
func (r *SQLiteBlockRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.ScheduleBlock, error) {
	exec := sharedpersistence.SQLiteExecutor(ctx, r.db)

	rows, err := exec.QueryContext(ctx,
		`SELECT `+blockColumns+` FROM schedule_blocks WHERE task_id = ? ORDER BY start_time`,
		taskID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks by task: %w", err)
	}
	defer rows.Close()

	return collectBlocks(rows)
}

// DeleteByTask removes all blocks placing the given task.
func (r *SQLiteBlockRepository) DeleteByTask(ctx context.Context, taskID uuid.UUID) error {
	exec := sharedpersistence.SQLiteExecutor(ctx, r.db)

	_, err := exec.ExecContext(ctx,
		`DELETE FROM schedule_blocks WHERE task_id = ?`, taskID.String())
	if err != nil {
		return fmt.Errorf("failed to delete blocks: %w", err)
	}
	return nil
}

func scanBlock(row rowScanner) (*domain.ScheduleBlock, error) {
	var (
		idStr, userIDStr, taskIDStr string
		startStr, endStr            string
		completed                   int
		part, total                 int
		reason                      string
		createdStr, updatedStr      string
	)
	err := row.Scan(
		&idStr, &userIDStr, &taskIDStr, &startStr, &endStr, &completed,
		&part, &total, &reason, &createdStr, &updatedStr,
	)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid block id: %w", err)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	taskID, err := uuid.Parse(taskIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid task id: %w", err)
	}

	start, err := time.Parse(time.RFC3339Nano, startStr)
	if err != nil {
		return nil, fmt.Errorf("invalid start_time: %w", err)
	}
	end, err := time.Parse(time.RFC3339Nano, endStr)
	if err != nil {
		return nil, fmt.Errorf("invalid end_time: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, updatedStr)
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at: %w", err)
	}

	var split *domain.SplitDescriptor
	if total > 0 {
		split = &domain.SplitDescriptor{Part: part, Total: total, Reason: domain.SplitReason(reason)}
	}

	return domain.RehydrateScheduleBlock(
		id, userID, taskID, start, end, completed != 0, split, createdAt, updatedAt,
	), nil
}

func collectBlocks(rows *sql.Rows) ([]*domain.ScheduleBlock, error) {
	var blocks []*domain.ScheduleBlock
	for rows.Next() {
		block, err := scanBlock(rows)
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
