package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betosaco/soulpath-sub003/internal/models"
	appErrors "github.com/betosaco/soulpath-sub003/pkg/errors"
)

func TestMapConstraintViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind models.ConflictKind
	}{
		{
			name: "unique violation",
			err:  &pq.Error{Code: "23505", Constraint: "venue_schedules_exact_unique"},
			kind: models.ConflictExactMatch,
		},
		{
			name: "exclusion violation",
			err:  &pq.Error{Code: "23P01", Constraint: "teacher_schedules_no_overlap"},
			kind: models.ConflictTimeOverlap,
		},
		{
			name: "wrapped exclusion violation",
			err:  fmt.Errorf("insert: %w", &pq.Error{Code: "23P01", Constraint: "venue_schedules_no_overlap"}),
			kind: models.ConflictTimeOverlap,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := MapConstraintViolation(tc.err)
			require.True(t, IsScheduleConflict(mapped))

			appErr := appErrors.FromError(mapped)
			assert.Equal(t, 409, appErr.Status)
			details, ok := appErr.Details.(ConstraintViolation)
			require.True(t, ok)
			assert.Equal(t, tc.kind, details.Kind)
			assert.Equal(t, models.SeverityError, details.Severity)
			assert.ErrorIs(t, mapped, tc.err)
		})
	}
}

func TestMapConstraintViolationPassesThroughOthers(t *testing.T) {
	assert.Nil(t, MapConstraintViolation(nil))

	plain := errors.New("connection reset")
	assert.Same(t, plain, MapConstraintViolation(plain))

	fk := &pq.Error{Code: "23503"}
	assert.Same(t, fk, MapConstraintViolation(fk))
	assert.False(t, IsScheduleConflict(fk))
}

func TestMapConstraintViolationIgnoresNonSlotConstraints(t *testing.T) {
	for _, err := range []*pq.Error{
		{Code: "23505", Constraint: "teacher_schedules_pkey"},
		{Code: "23505", Constraint: "venue_schedules_pkey"},
		{Code: "23505", Constraint: "teachers_pkey"},
		{Code: "23505"},
		{Code: "23P01"},
		{Code: "23P01", Constraint: "teacher_schedules_exact_unique"},
	} {
		mapped := MapConstraintViolation(err)
		assert.Same(t, err, mapped, "constraint %q code %s", err.Constraint, err.Code)
		assert.False(t, IsScheduleConflict(mapped))
	}
}

func TestScheduleSeedRepositoryInsertEntryMapsConflicts(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleSeedRepository(db)

	mock.ExpectExec(`INSERT INTO venue_schedules`).
		WithArgs(sqlmock.AnyArg(), "v1", "Monday", 480, 540, true, 12).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO teacher_schedules`).
		WithArgs("ts-1", "t1", "v1", "Monday", 480, 540, true, 0).
		WillReturnError(&pq.Error{Code: "23P01", Constraint: "teacher_schedules_no_overlap"})

	venue := models.ScheduleEntry{Kind: models.KindVenue, OwnerID: "v1", Day: models.Monday,
		Range: models.TimeRange{Start: 480, End: 540}, IsAvailable: true, Capacity: 12}
	require.NoError(t, repo.InsertEntry(context.Background(), &venue))
	assert.NotEmpty(t, venue.ID)

	teacher := models.ScheduleEntry{ID: "ts-1", Kind: models.KindTeacher, OwnerID: "t1", SecondaryID: "v1",
		Day: models.Monday, Range: models.TimeRange{Start: 480, End: 540}, IsAvailable: true}
	err := repo.InsertEntry(context.Background(), &teacher)
	require.Error(t, err)
	assert.True(t, IsScheduleConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSeedRepositoryUpserts(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleSeedRepository(db)

	mock.ExpectExec(`INSERT INTO teachers \(id, name\) VALUES \(\$1, \$2\)`).
		WithArgs("t1", "Ana").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO venues \(id, name, capacity\) VALUES \(\$1, \$2, \$3\)`).
		WithArgs("v1", "Studio A", 12).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpsertTeacher(context.Background(), "t1", "Ana"))
	require.NoError(t, repo.UpsertVenue(context.Background(), "v1", "Studio A", 12))
	assert.NoError(t, mock.ExpectationsWereMet())
}
