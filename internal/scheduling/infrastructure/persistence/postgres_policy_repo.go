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

// PostgresPolicyRepository stores working-hours policies in PostgreSQL.
// Users without a stored policy get the default.
type PostgresPolicyRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPolicyRepository creates a Postgres policy repository.
func NewPostgresPolicyRepository(pool *pgxpool.Pool) *PostgresPolicyRepository {
	return &PostgresPolicyRepository{pool: pool}
}

// WorkingHours resolves the user's policy, falling back to the default.
func (r *PostgresPolicyRepository) WorkingHours(ctx context.Context, userID uuid.UUID) (domain.WorkingHoursPolicy, error) {
	exec := sharedpersistence.PostgresExecutor(ctx, r.pool)

	var (
		startMinute, endMinute int
		timezone, workdays     string
	)
	err := exec.QueryRow(ctx, `
		SELECT start_minute, end_minute, timezone, workdays
		FROM working_hours_policies WHERE user_id = $1`,
		userID).Scan(&startMinute, &endMinute, &timezone, &workdays)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultWorkingHoursPolicy(), nil
	}
	if err != nil {
		return domain.WorkingHoursPolicy{}, fmt.Errorf("failed to load policy: %w", err)
	}

	return domain.WorkingHoursPolicy{
		StartMinute: startMinute,
		EndMinute:   endMinute,
		Timezone:    timezone,
		Workdays:    decodeWorkdays(workdays),
	}, nil
}

// Save stores the user's policy.
func (r *PostgresPolicyRepository) Save(ctx context.Context, userID uuid.UUID, policy domain.WorkingHoursPolicy) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	exec := sharedpersistence.PostgresExecutor(ctx, r.pool)

	_, err := exec.Exec(ctx, `
		INSERT INTO working_hours_policies (user_id, start_minute, end_minute, timezone, workdays, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			start_minute = EXCLUDED.start_minute,
			end_minute = EXCLUDED.end_minute,
			timezone = EXCLUDED.timezone,
			workdays = EXCLUDED.workdays,
			updated_at = EXCLUDED.updated_at`,
		userID,
		policy.StartMinute,
		policy.EndMinute,
		policy.Timezone,
		encodeWorkdays(policy.Workdays),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save policy: %w", err)
	}
	return nil
}
