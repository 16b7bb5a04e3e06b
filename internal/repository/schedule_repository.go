package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/betosaco/soulpath-sub003/internal/models"
)

const (
	teacherEntryColumns = `ts.id, 'teacher' AS kind, ts.teacher_id AS owner_id, COALESCE(ts.venue_id, '') AS secondary_id,
	COALESCE(t.name, '') AS owner_name, COALESCE(v.name, '') AS secondary_name, ts.day_of_week, ts.start_minute,
	ts.end_minute, ts.is_available, 0 AS capacity, ts.max_bookings
	FROM teacher_schedules ts
	LEFT JOIN teachers t ON t.id = ts.teacher_id
	LEFT JOIN venues v ON v.id = ts.venue_id`

	venueEntryColumns = `vs.id, 'venue' AS kind, vs.venue_id AS owner_id, '' AS secondary_id,
	COALESCE(v.name, '') AS owner_name, '' AS secondary_name, vs.day_of_week, vs.start_minute,
	vs.end_minute, vs.is_available, vs.capacity, 0 AS max_bookings
	FROM venue_schedules vs
	LEFT JOIN venues v ON v.id = vs.venue_id`

	entryOrder = ` ORDER BY start_minute, end_minute, id`
)

// scheduleEntryRow is the flattened shape shared by both schedule tables.
type scheduleEntryRow struct {
	ID            string `db:"id"`
	Kind          string `db:"kind"`
	OwnerID       string `db:"owner_id"`
	SecondaryID   string `db:"secondary_id"`
	OwnerName     string `db:"owner_name"`
	SecondaryName string `db:"secondary_name"`
	DayOfWeek     string `db:"day_of_week"`
	StartMinute   int    `db:"start_minute"`
	EndMinute     int    `db:"end_minute"`
	IsAvailable   bool   `db:"is_available"`
	Capacity      int    `db:"capacity"`
	MaxBookings   int    `db:"max_bookings"`
}

func (r scheduleEntryRow) toModel() models.ScheduleEntry {
	day, err := models.ParseDayOfWeek(r.DayOfWeek)
	if err != nil {
		day = models.DayOfWeek(r.DayOfWeek)
	}
	return models.ScheduleEntry{
		ID:            r.ID,
		Kind:          models.ScheduleKind(r.Kind),
		OwnerID:       r.OwnerID,
		SecondaryID:   r.SecondaryID,
		OwnerName:     r.OwnerName,
		SecondaryName: r.SecondaryName,
		Day:           day,
		Range:         models.TimeRange{Start: models.TimeOfDay(r.StartMinute), End: models.TimeOfDay(r.EndMinute)},
		IsAvailable:   r.IsAvailable,
		Capacity:      r.Capacity,
		MaxBookings:   r.MaxBookings,
	}
}

// ScheduleRepository reads teacher and venue schedules as one entry stream.
type ScheduleRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewScheduleRepository constructs a ScheduleRepository. A positive timeout
// bounds every query.
func NewScheduleRepository(db *sqlx.DB, timeout time.Duration) *ScheduleRepository {
	return &ScheduleRepository{db: db, timeout: timeout}
}

// ListByDay returns every teacher and venue entry scheduled on day.
func (r *ScheduleRepository) ListByDay(ctx context.Context, day models.DayOfWeek) ([]models.ScheduleEntry, error) {
	query := "SELECT " + teacherEntryColumns + " WHERE ts.day_of_week = ?" +
		" UNION ALL SELECT " + venueEntryColumns + " WHERE vs.day_of_week = ?" + entryOrder
	entries, err := r.selectEntries(ctx, query, string(day), string(day))
	if err != nil {
		return nil, fmt.Errorf("list schedules by day: %w", err)
	}
	return entries, nil
}

// ListByTeacher returns every entry owned by teacherID.
func (r *ScheduleRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleEntry, error) {
	query := "SELECT " + teacherEntryColumns + " WHERE ts.teacher_id = ?" + entryOrder
	entries, err := r.selectEntries(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list schedules by teacher: %w", err)
	}
	return entries, nil
}

// ListByVenue returns the venue's own entries plus teacher entries held at it.
func (r *ScheduleRepository) ListByVenue(ctx context.Context, venueID string) ([]models.ScheduleEntry, error) {
	query := "SELECT " + teacherEntryColumns + " WHERE ts.venue_id = ?" +
		" UNION ALL SELECT " + venueEntryColumns + " WHERE vs.venue_id = ?" + entryOrder
	entries, err := r.selectEntries(ctx, query, venueID, venueID)
	if err != nil {
		return nil, fmt.Errorf("list schedules by venue: %w", err)
	}
	return entries, nil
}

// VenueCapacity returns the seat capacity of a venue, or 0 when the venue is unknown.
func (r *ScheduleRepository) VenueCapacity(ctx context.Context, venueID string) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var capacity int
	if err := r.db.GetContext(ctx, &capacity, r.db.Rebind("SELECT capacity FROM venues WHERE id = ?"), venueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get venue capacity: %w", err)
	}
	return capacity, nil
}

// Ping verifies the database connection.
func (r *ScheduleRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.PingContext(ctx)
}

func (r *ScheduleRepository) selectEntries(ctx context.Context, query string, args ...interface{}) ([]models.ScheduleEntry, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rows []scheduleEntryRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	entries := make([]models.ScheduleEntry, len(rows))
	for i, row := range rows {
		entries[i] = row.toModel()
	}
	return entries, nil
}

func (r *ScheduleRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}
