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

// SQLitePolicyRepository stores working-hours policies in SQLite. Users
// without a stored policy get the default Monday-Friday 09:00-17:00 UTC.
type SQLitePolicyRepository struct {
	db *sql.DB
}

// NewSQLitePolicyRepository creates a SQLite policy repository.
func NewSQLitePolicyRepository(db *sql.DB) *SQLitePolicyRepository {
	return &SQLitePolicyRepository{db: db}
}

// WorkingHours resolves the user's policy, falling back to the default.
func (r *SQLitePolicyRepository) WorkingHours(ctx context.Context, userID uuid.UUID) (domain.WorkingHoursPolicy, error) {
	exec := sharedpersistence.SQLiteExecutor(ctx, r.db)

	var (
		startMinute, endMinute int
		timezone, workdays     string
	)
	err := exec.QueryRowContext(ctx,
		`SELECT start_minute, end_minute, timezone, workdays
		 FROM working_hours_policies WHERE user_id = ?`,
		userID.String()).Scan(&startMinute, &endMinute, &timezone, &workdays)
	if errors.Is(err, sql.ErrNoRows) {
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
func (r *SQLitePolicyRepository) Save(ctx context.Context, userID uuid.UUID, policy domain.WorkingHoursPolicy) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	exec := sharedpersistence.SQLiteExecutor(ctx, r.db)

	_, err := exec.ExecContext(ctx, `
		INSERT INTO working_hours_policies (user_id, start_minute, end_minute, timezone, workdays, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			start_minute = excluded.start_minute,
			end_minute = excluded.end_minute,
			timezone = excluded.timezone,
			workdays = excluded.workdays,
			updated_at = excluded.updated_at`,
		userID.String(),
		policy.StartMinute,
		policy.EndMinute,
		policy.Timezone,
		encodeWorkdays(policy.Workdays),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save policy: %w", err)
	}
	return nil
}

// Workdays are stored as seven '0'/'1' characters indexed by time.Weekday
// (Sunday first).

func encodeWorkdays(days [7]bool) string {
	buf := make([]byte, 7)
	for i, workable := range days {
		if workable {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}

func decodeWorkdays(s string) [7]bool {
	var days [7]bool
	for i := 0; i < len(s) && i < 7; i++ {
		days[i] = s[i] == '1'
	}
	return days
}
