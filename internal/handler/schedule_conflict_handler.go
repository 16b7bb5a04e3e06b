package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/betosaco/soulpath-sub003/internal/dto"
	"github.com/betosaco/soulpath-sub003/internal/middleware"
	"github.com/betosaco/soulpath-sub003/internal/models"
	"github.com/betosaco/soulpath-sub003/internal/service"
	appErrors "github.com/betosaco/soulpath-sub003/pkg/errors"
	"github.com/betosaco/soulpath-sub003/pkg/logger"
	"github.com/betosaco/soulpath-sub003/pkg/response"
)

type scheduleConflictService interface {
	Check(ctx context.Context, req dto.CheckScheduleRequest) (*models.DuplicateCheckResult, error)
	Summarize(ctx context.Context, day models.DayOfWeek) (*models.DaySummary, error)
	SummarizeResource(ctx context.Context, kind models.ScheduleKind, ownerID string) (*models.ResourceSummary, error)
}

type daySummaryExporter interface {
	ExportDay(ctx context.Context, day models.DayOfWeek, format string) (*service.ExportFile, error)
}

// ScheduleConflictHandler exposes the conflict detection endpoints.
type ScheduleConflictHandler struct {
	service  scheduleConflictService
	exporter daySummaryExporter
	logger   *zap.Logger
}

// NewScheduleConflictHandler constructs the handler.
func NewScheduleConflictHandler(svc scheduleConflictService, exporter daySummaryExporter, logr *zap.Logger) *ScheduleConflictHandler {
	if logr == nil {
		logr = zap.NewNop()
	}
	return &ScheduleConflictHandler{service: svc, exporter: exporter, logger: logr}
}

// Check godoc
// @Summary Check a candidate schedule for conflicts
// @Tags ScheduleConflicts
// @Accept json
// @Produce json
// @Param payload body dto.CheckScheduleRequest true "Candidate schedule"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /schedule-conflicts/check [post]
func (h *ScheduleConflictHandler) Check(c *gin.Context) {
	var req dto.CheckScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Check(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	middleware.SetMeta(c, "conflict_count", len(result.Conflicts))
	response.JSON(c, http.StatusOK, result, middleware.ExtractMeta(c))
}

// DaySummary godoc
// @Summary Summarise conflicts for a weekday
// @Tags ScheduleConflicts
// @Produce json
// @Param day query string true "Day of week, e.g. Monday"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /schedule-conflicts/day-summary [get]
func (h *ScheduleConflictHandler) DaySummary(c *gin.Context) {
	var query dto.DaySummaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "day is required"))
		return
	}
	day, ok := parseDay(c, query.Day)
	if !ok {
		return
	}
	summary, err := h.service.Summarize(c.Request.Context(), day)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, middleware.ExtractMeta(c))
}

// ExportDaySummary godoc
// @Summary Download a weekday conflict summary
// @Tags ScheduleConflicts
// @Produce text/csv
// @Produce application/pdf
// @Param day query string true "Day of week"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /schedule-conflicts/day-summary/export [get]
func (h *ScheduleConflictHandler) ExportDaySummary(c *gin.Context) {
	var query dto.DaySummaryExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	day, ok := parseDay(c, query.Day)
	if !ok {
		return
	}
	file, err := h.exporter.ExportDay(c.Request.Context(), day, query.Format)
	if err != nil {
		writeError(c, err)
		return
	}
	logger.FromContext(h.logger, c).Info("day summary exported",
		zap.String("day", string(day)),
		zap.String("filename", file.Filename),
		zap.String("actor", actorID(c)),
	)
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// TeacherSummary godoc
// @Summary Weekly conflict summary for a teacher
// @Tags ScheduleConflicts
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /schedule-conflicts/teachers/{id}/summary [get]
func (h *ScheduleConflictHandler) TeacherSummary(c *gin.Context) {
	h.resourceSummary(c, models.KindTeacher)
}

// VenueSummary godoc
// @Summary Weekly conflict summary for a venue
// @Tags ScheduleConflicts
// @Produce json
// @Param id path string true "Venue ID"
// @Success 200 {object} response.Envelope
// @Router /schedule-conflicts/venues/{id}/summary [get]
func (h *ScheduleConflictHandler) VenueSummary(c *gin.Context) {
	h.resourceSummary(c, models.KindVenue)
}

func (h *ScheduleConflictHandler) resourceSummary(c *gin.Context, kind models.ScheduleKind) {
	summary, err := h.service.SummarizeResource(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, middleware.ExtractMeta(c))
}

func parseDay(c *gin.Context, raw string) (models.DayOfWeek, bool) {
	day, err := models.ParseDayOfWeek(raw)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid day"))
		return "", false
	}
	return day, true
}
