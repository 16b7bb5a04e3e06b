package dto

// CheckScheduleRequest is the candidate slot submitted by the schedule editor.
type CheckScheduleRequest struct {
	DayOfWeek   string `json:"dayOfWeek" validate:"required"`
	StartTime   string `json:"startTime" validate:"required"`
	EndTime     string `json:"endTime" validate:"required"`
	Type        string `json:"type" validate:"required"`
	OwnerID     string `json:"ownerId" validate:"required,max=64"`
	SecondaryID string `json:"secondaryId" validate:"omitempty,max=64"`
	ExcludeID   string `json:"excludeId" validate:"omitempty,max=64"`
	Capacity    *int   `json:"capacity" validate:"omitempty,min=1"`
}

// DaySummaryQuery selects the weekday to summarise.
type DaySummaryQuery struct {
	Day string `form:"day" binding:"required"`
}

// DaySummaryExportQuery selects the weekday and output format of an export.
type DaySummaryExportQuery struct {
	Day    string `form:"day" binding:"required"`
	Format string `form:"format" binding:"omitempty,oneof=csv pdf CSV PDF"`
}
