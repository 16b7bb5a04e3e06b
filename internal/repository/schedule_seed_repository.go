package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/betosaco/soulpath-sub003/internal/models"
)

// ScheduleSeedRepository loads fixture data into the schedule tables. It is
// used by the seeding tool only; the API never writes schedules.
type ScheduleSeedRepository struct {
	db *sqlx.DB
}

// NewScheduleSeedRepository constructs a ScheduleSeedRepository.
func NewScheduleSeedRepository(db *sqlx.DB) *ScheduleSeedRepository {
	return &ScheduleSeedRepository{db: db}
}

// UpsertTeacher inserts or renames a teacher.
func (r *ScheduleSeedRepository) UpsertTeacher(ctx context.Context, id, name string) error {
	query := r.db.Rebind(`INSERT INTO teachers (id, name) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name`)
	if _, err := r.db.ExecContext(ctx, query, id, name); err != nil {
		return fmt.Errorf("upsert teacher: %w", err)
	}
	return nil
}

// UpsertVenue inserts or updates a venue.
func (r *ScheduleSeedRepository) UpsertVenue(ctx context.Context, id, name string, capacity int) error {
	query := r.db.Rebind(`INSERT INTO venues (id, name, capacity) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, capacity = excluded.capacity`)
	if _, err := r.db.ExecContext(ctx, query, id, name, capacity); err != nil {
		return fmt.Errorf("upsert venue: %w", err)
	}
	return nil
}

// InsertEntry stores entry in the table matching its kind, assigning an id
// when empty. Constraint failures come back as SCHEDULE_CONFLICT errors.
func (r *ScheduleSeedRepository) InsertEntry(ctx context.Context, entry *models.ScheduleEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	var (
		query string
		args  []interface{}
	)
	switch entry.Kind {
	case models.KindTeacher:
		var venueID interface{}
		if entry.SecondaryID != "" {
			venueID = entry.SecondaryID
		}
		query = `INSERT INTO teacher_schedules (id, teacher_id, venue_id, day_of_week, start_minute, end_minute, is_available, max_bookings)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		args = []interface{}{entry.ID, entry.OwnerID, venueID, string(entry.Day), int(entry.Range.Start), int(entry.Range.End), entry.IsAvailable, entry.MaxBookings}
	case models.KindVenue:
		query = `INSERT INTO venue_schedules (id, venue_id, day_of_week, start_minute, end_minute, is_available, capacity)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
		args = []interface{}{entry.ID, entry.OwnerID, string(entry.Day), int(entry.Range.Start), int(entry.Range.End), entry.IsAvailable, entry.Capacity}
	default:
		return fmt.Errorf("insert schedule entry: unknown kind %q", entry.Kind)
	}

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		if mapped := MapConstraintViolation(err); IsScheduleConflict(mapped) {
			return mapped
		}
		return fmt.Errorf("insert schedule entry: %w", err)
	}
	return nil
}
