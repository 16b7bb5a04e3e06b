package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/betosaco/soulpath-sub003/internal/models"
	"github.com/betosaco/soulpath-sub003/internal/repository"
	"github.com/betosaco/soulpath-sub003/pkg/config"
	"github.com/betosaco/soulpath-sub003/pkg/database"
	"github.com/betosaco/soulpath-sub003/pkg/logger"
)

type fixture struct {
	Teachers []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"teachers"`
	Venues []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Capacity int    `json:"capacity"`
	} `json:"venues"`
	Schedules []fixtureSchedule `json:"schedules"`
}

type fixtureSchedule struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	OwnerID     string           `json:"ownerId"`
	SecondaryID string           `json:"secondaryId"`
	DayOfWeek   string           `json:"dayOfWeek"`
	StartTime   models.TimeOfDay `json:"startTime"`
	EndTime     models.TimeOfDay `json:"endTime"`
	IsAvailable *bool            `json:"isAvailable"`
	Capacity    int              `json:"capacity"`
	MaxBookings int              `json:"maxBookings"`
}

func (f fixtureSchedule) entry() (models.ScheduleEntry, error) {
	kind, err := models.ParseScheduleKind(f.Type)
	if err != nil {
		return models.ScheduleEntry{}, err
	}
	day, err := models.ParseDayOfWeek(f.DayOfWeek)
	if err != nil {
		return models.ScheduleEntry{}, err
	}
	timeRange := models.TimeRange{Start: f.StartTime, End: f.EndTime}
	if !timeRange.Valid() {
		return models.ScheduleEntry{}, fmt.Errorf("invalid range %s", timeRange)
	}
	available := true
	if f.IsAvailable != nil {
		available = *f.IsAvailable
	}
	return models.ScheduleEntry{
		ID:          f.ID,
		Kind:        kind,
		OwnerID:     f.OwnerID,
		SecondaryID: f.SecondaryID,
		Day:         day,
		Range:       timeRange,
		IsAvailable: available,
		Capacity:    f.Capacity,
		MaxBookings: f.MaxBookings,
	}, nil
}

func main() {
	var (
		path    string
		timeout time.Duration
	)
	flag.StringVar(&path, "file", "fixtures/schedules.json", "Path to JSON fixture file")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall seeding timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	raw, err := os.ReadFile(path)
	if err != nil {
		logr.Fatal("read fixture", zap.String("path", path), zap.Error(err))
	}
	var data fixture
	if err := json.Unmarshal(raw, &data); err != nil {
		logr.Fatal("decode fixture", zap.String("path", path), zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()

	repo := repository.NewScheduleSeedRepository(db)
	for _, t := range data.Teachers {
		if err := repo.UpsertTeacher(ctx, t.ID, t.Name); err != nil {
			logr.Fatal("seed teacher", zap.String("teacher_id", t.ID), zap.Error(err))
		}
	}
	for _, v := range data.Venues {
		if err := repo.UpsertVenue(ctx, v.ID, v.Name, v.Capacity); err != nil {
			logr.Fatal("seed venue", zap.String("venue_id", v.ID), zap.Error(err))
		}
	}

	var inserted, rejected int
	for i, item := range data.Schedules {
		entry, err := item.entry()
		if err != nil {
			logr.Fatal("invalid fixture schedule", zap.Int("index", i), zap.Error(err))
		}
		if err := repo.InsertEntry(ctx, &entry); err != nil {
			if repository.IsScheduleConflict(err) {
				rejected++
				logr.Warn("schedule rejected by storage constraint", zap.String("schedule_id", entry.ID), zap.Error(err))
				continue
			}
			logr.Fatal("seed schedule", zap.String("schedule_id", entry.ID), zap.Error(err))
		}
		inserted++
	}

	logr.Info("seeding finished",
		zap.Int("teachers", len(data.Teachers)),
		zap.Int("venues", len(data.Venues)),
		zap.Int("schedules_inserted", inserted),
		zap.Int("schedules_rejected", rejected),
	)
}
