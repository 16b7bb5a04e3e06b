package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/betosaco/soulpath-sub003/internal/models"
	appErrors "github.com/betosaco/soulpath-sub003/pkg/errors"
	"github.com/betosaco/soulpath-sub003/pkg/export"
)

type daySummarizer interface {
	Summarize(ctx context.Context, day models.DayOfWeek) (*models.DaySummary, error)
}

// ExportFile is a rendered document ready to be served as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// SummaryExportService renders day summaries as downloadable documents.
type SummaryExportService struct {
	summaries daySummarizer
	logger    *zap.Logger
}

// NewSummaryExportService constructs a SummaryExportService.
func NewSummaryExportService(summaries daySummarizer, logger *zap.Logger) *SummaryExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryExportService{summaries: summaries, logger: logger}
}

// ExportDay summarises day and renders it in the requested format.
func (s *SummaryExportService) ExportDay(ctx context.Context, day models.DayOfWeek, rawFormat string) (*ExportFile, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export format")
	}
	renderer, err := export.RendererFor(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export format")
	}

	summary, err := s.summaries.Summarize(ctx, day)
	if err != nil {
		return nil, err
	}

	payload, err := renderer.Render(daySummaryDataset(summary))
	if err != nil {
		s.logger.Error("render day summary export", zap.String("day", string(day)), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("schedule_conflicts_%s.%s", strings.ToLower(string(day)), format),
		ContentType: format.ContentType(),
		Payload:     payload,
	}, nil
}

func daySummaryDataset(summary *models.DaySummary) export.Dataset {
	data := export.Dataset{
		Title: fmt.Sprintf("Schedule conflicts for %s", summary.Day),
		Summary: []string{
			fmt.Sprintf("Total schedules: %d", summary.TotalSchedules),
			fmt.Sprintf("Duplicates: %d", summary.DuplicateCount),
			fmt.Sprintf("Warnings: %d", summary.WarningCount),
		},
		Headers: []string{"id", "type", "owner", "venue", "start", "end", "status"},
		Rows:    make([][]string, 0, len(summary.Entries)),
	}
	for _, entry := range summary.Entries {
		owner := entry.TeacherLabel()
		if entry.Kind == models.KindVenue {
			owner = entry.VenueLabel()
		}
		data.Rows = append(data.Rows, []string{
			entry.ID,
			string(entry.Kind),
			owner,
			entry.VenueLabel(),
			entry.Range.Start.String(),
			entry.Range.End.String(),
			summary.EntryStatus(entry),
		})
	}
	return data
}
