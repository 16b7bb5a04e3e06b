package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/betosaco/soulpath-sub003/internal/models"
	appErrors "github.com/betosaco/soulpath-sub003/pkg/errors"
)

type scheduleReader interface {
	ListByDay(ctx context.Context, day models.DayOfWeek) ([]models.ScheduleEntry, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleEntry, error)
	ListByVenue(ctx context.Context, venueID string) ([]models.ScheduleEntry, error)
	VenueCapacity(ctx context.Context, venueID string) (int, error)
}

type breakerStateRecorder interface {
	SetBreakerState(name string, state int)
}

// BreakerSettings tunes the storage circuit breaker.
type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
	Interval         time.Duration
}

// GuardedScheduleRepository wraps schedule reads in a circuit breaker so a
// failing store is reported as unavailable instead of piling up slow queries.
type GuardedScheduleRepository struct {
	inner   scheduleReader
	breaker *gobreaker.CircuitBreaker[any]
}

// NewGuardedScheduleRepository constructs the breaker around inner. recorder may be nil.
func NewGuardedScheduleRepository(inner scheduleReader, settings BreakerSettings, recorder breakerStateRecorder, logger *zap.Logger) *GuardedScheduleRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.Name == "" {
		settings.Name = "schedule-storage"
	}
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("storage circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if recorder != nil {
				recorder.SetBreakerState(name, int(to))
			}
		},
		// Callers abandoning a request say nothing about storage health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	if recorder != nil {
		recorder.SetBreakerState(settings.Name, int(gobreaker.StateClosed))
	}

	return &GuardedScheduleRepository{inner: inner, breaker: breaker}
}

// State reports the current breaker state.
func (g *GuardedScheduleRepository) State() gobreaker.State {
	return g.breaker.State()
}

// ListByDay delegates to the wrapped repository.
func (g *GuardedScheduleRepository) ListByDay(ctx context.Context, day models.DayOfWeek) ([]models.ScheduleEntry, error) {
	return executeEntries(g, func() ([]models.ScheduleEntry, error) { return g.inner.ListByDay(ctx, day) })
}

// ListByTeacher delegates to the wrapped repository.
func (g *GuardedScheduleRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleEntry, error) {
	return executeEntries(g, func() ([]models.ScheduleEntry, error) { return g.inner.ListByTeacher(ctx, teacherID) })
}

// ListByVenue delegates to the wrapped repository.
func (g *GuardedScheduleRepository) ListByVenue(ctx context.Context, venueID string) ([]models.ScheduleEntry, error) {
	return executeEntries(g, func() ([]models.ScheduleEntry, error) { return g.inner.ListByVenue(ctx, venueID) })
}

// VenueCapacity delegates to the wrapped repository.
func (g *GuardedScheduleRepository) VenueCapacity(ctx context.Context, venueID string) (int, error) {
	result, err := g.execute(func() (any, error) { return g.inner.VenueCapacity(ctx, venueID) })
	if err != nil {
		return 0, err
	}
	capacity, _ := result.(int)
	return capacity, nil
}

func executeEntries(g *GuardedScheduleRepository, fn func() ([]models.ScheduleEntry, error)) ([]models.ScheduleEntry, error) {
	result, err := g.execute(func() (any, error) { return fn() })
	if err != nil {
		return nil, err
	}
	entries, _ := result.([]models.ScheduleEntry)
	return entries, nil
}

func (g *GuardedScheduleRepository) execute(fn func() (any, error)) (any, error) {
	result, err := g.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, appErrors.Wrap(err, appErrors.ErrPortUnavailable.Code, appErrors.ErrPortUnavailable.Status, "schedule storage temporarily unavailable")
	}
	return result, err
}
