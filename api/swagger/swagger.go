package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Schedule Conflict API",
        "description": "Detects collisions between recurring teacher and venue schedules",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "ScheduleConflicts", "description": "Candidate checks and day summaries"},
        {"name": "Operations", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Operations"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Operations"],
                "summary": "Readiness check (pings schedule storage)",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Storage unavailable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Operations"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/schedule-conflicts/check": {
            "post": {
                "tags": ["ScheduleConflicts"],
                "summary": "Check a candidate schedule for conflicts",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CheckScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DuplicateCheckEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Storage unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/schedule-conflicts/day-summary": {
            "get": {
                "tags": ["ScheduleConflicts"],
                "summary": "Summarise conflicts for a weekday",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "day", "in": "query", "required": true, "type": "string", "enum": ["Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DaySummaryEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Storage unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/schedule-conflicts/day-summary/export": {
            "get": {
                "tags": ["ScheduleConflicts"],
                "summary": "Download a weekday conflict summary",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "day", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/schedule-conflicts/teachers/{id}/summary": {
            "get": {
                "tags": ["ScheduleConflicts"],
                "summary": "Weekly conflict summary for a teacher",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/schedule-conflicts/venues/{id}/summary": {
            "get": {
                "tags": ["ScheduleConflicts"],
                "summary": "Weekly conflict summary for a venue",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CheckScheduleRequest": {
            "type": "object",
            "properties": {
                "dayOfWeek": {"type": "string", "example": "Monday"},
                "startTime": {"type": "string", "example": "10:00"},
                "endTime": {"type": "string", "example": "11:00"},
                "type": {"type": "string", "enum": ["teacher", "venue"]},
                "ownerId": {"type": "string"},
                "secondaryId": {"type": "string"},
                "excludeId": {"type": "string"},
                "capacity": {"type": "integer"}
            },
            "required": ["dayOfWeek", "startTime", "endTime", "type", "ownerId"]
        },
        "TimeRange": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "example": "10:00"},
                "end": {"type": "string", "example": "11:00"}
            }
        },
        "ScheduleEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "type": {"type": "string", "enum": ["teacher", "venue"]},
                "ownerId": {"type": "string"},
                "secondaryId": {"type": "string"},
                "ownerName": {"type": "string"},
                "secondaryName": {"type": "string"},
                "dayOfWeek": {"type": "string"},
                "range": {"$ref": "#/definitions/TimeRange"},
                "isAvailable": {"type": "boolean"},
                "capacity": {"type": "integer"},
                "maxBookings": {"type": "integer"}
            }
        },
        "ConflictInfo": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["exact_match", "time_overlap", "same_teacher_same_day", "same_venue_same_day"]},
                "message": {"type": "string"},
                "conflictingScheduleId": {"type": "string"},
                "conflictingSchedule": {"$ref": "#/definitions/ScheduleEntry"},
                "severity": {"type": "string", "enum": ["error", "warning"]}
            }
        },
        "DuplicateCheckResult": {
            "type": "object",
            "properties": {
                "hasDuplicates": {"type": "boolean"},
                "conflicts": {"type": "array", "items": {"$ref": "#/definitions/ConflictInfo"}},
                "warnings": {"type": "array", "items": {"type": "string"}}
            }
        },
        "DayConflict": {
            "type": "object",
            "properties": {
                "scheduleId": {"type": "string"},
                "scheduleType": {"type": "string", "enum": ["teacher", "venue"]},
                "conflictingScheduleId": {"type": "string"},
                "conflictingScheduleType": {"type": "string", "enum": ["teacher", "venue"]},
                "type": {"type": "string"},
                "severity": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "DaySummary": {
            "type": "object",
            "properties": {
                "day": {"type": "string"},
                "totalSchedules": {"type": "integer"},
                "duplicateCount": {"type": "integer"},
                "warningCount": {"type": "integer"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/ScheduleEntry"}},
                "conflicts": {"type": "array", "items": {"$ref": "#/definitions/DayConflict"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        },
        "DuplicateCheckEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/DuplicateCheckResult"},
                "meta": {"type": "object"}
            }
        },
        "DaySummaryEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/DaySummary"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
