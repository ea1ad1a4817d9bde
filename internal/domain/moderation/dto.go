package moderation

import (
	"time"

	"github.com/google/uuid"
)

// CreateReportRequest for POST /moderation/reports
type CreateReportRequest struct {
	ContentKind string    `json:"content_kind" validate:"required,content_kind"`
	ContentID   uuid.UUID `json:"content_id" validate:"required"`
	Reason      string    `json:"reason,omitempty" validate:"max=500"`
}

// UpdateConfigRequest for PUT /admin/moderation/config. Omitted fields keep their value.
type UpdateConfigRequest struct {
	FailReportThreshold    *int `json:"fail_report_threshold,omitempty"`
	CommentReportThreshold *int `json:"comment_report_threshold,omitempty"`
	PanelAutoRefreshSec    *int `json:"panel_auto_refresh_sec,omitempty"`
}

// ReportResult is returned after a report is recorded
type ReportResult struct {
	ContentKind ContentKind `json:"content_kind"`
	ContentID   uuid.UUID   `json:"content_id"`
	ReportCount int         `json:"report_count"`
	Status      Status      `json:"status"`
	Duplicate   bool        `json:"duplicate"`
}

// ReportResponse represents a report in API response
type ReportResponse struct {
	ID          uuid.UUID   `json:"id"`
	ContentKind ContentKind `json:"content_kind"`
	ContentID   uuid.UUID   `json:"content_id"`
	Reason      string      `json:"reason,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewReportResponse creates ReportResponse from entity
func NewReportResponse(r *Report) ReportResponse {
	return ReportResponse{
		ID:          r.ID,
		ContentKind: r.ContentKind,
		ContentID:   r.ContentID,
		Reason:      r.Reason.String,
		CreatedAt:   r.CreatedAt,
	}
}

// RecordResponse represents a moderation record in API response
type RecordResponse struct {
	ContentKind         ContentKind `json:"content_kind"`
	ContentID           uuid.UUID   `json:"content_id"`
	Status              Status      `json:"status"`
	ApprovedReportCount int         `json:"approved_report_count"`
	UpdatedBy           *uuid.UUID  `json:"updated_by,omitempty"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// NewRecordResponse creates RecordResponse from entity
func NewRecordResponse(rec *Record) RecordResponse {
	resp := RecordResponse{
		ContentKind:         rec.ContentKind,
		ContentID:           rec.ContentID,
		Status:              rec.Status,
		ApprovedReportCount: rec.ApprovedReportCount,
		UpdatedAt:           rec.UpdatedAt,
	}
	if rec.UpdatedBy.Valid {
		id := rec.UpdatedBy.UUID
		resp.UpdatedBy = &id
	}
	return resp
}

// ConfigResponse represents moderation config in API response
type ConfigResponse struct {
	FailReportThreshold    int       `json:"fail_report_threshold"`
	CommentReportThreshold int       `json:"comment_report_threshold"`
	PanelAutoRefreshSec    int       `json:"panel_auto_refresh_sec"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// NewConfigResponse creates ConfigResponse from entity
func NewConfigResponse(cfg *Config) ConfigResponse {
	return ConfigResponse{
		FailReportThreshold:    cfg.FailReportThreshold,
		CommentReportThreshold: cfg.CommentReportThreshold,
		PanelAutoRefreshSec:    cfg.PanelAutoRefreshSec,
		UpdatedAt:              cfg.UpdatedAt,
	}
}

// FlaggedItemResponse represents a reported item in the moderation panel
type FlaggedItemResponse struct {
	ContentKind         ContentKind `json:"content_kind"`
	ContentID           uuid.UUID   `json:"content_id"`
	AuthorID            *uuid.UUID  `json:"author_id,omitempty"`
	Excerpt             string      `json:"excerpt"`
	Status              Status      `json:"status"`
	ReportCount         int         `json:"report_count"`
	ApprovedReportCount int         `json:"approved_report_count"`
	LastReportedAt      time.Time   `json:"last_reported_at"`
}

// NewFlaggedItemResponse creates FlaggedItemResponse from entity
func NewFlaggedItemResponse(item *FlaggedItem) FlaggedItemResponse {
	resp := FlaggedItemResponse{
		ContentKind:         item.ContentKind,
		ContentID:           item.ContentID,
		Excerpt:             excerpt(item.Excerpt, 140),
		Status:              item.Status,
		ReportCount:         item.ReportCount,
		ApprovedReportCount: item.ApprovedReportCount,
		LastReportedAt:      item.LastReportedAt,
	}
	if item.AuthorID.Valid {
		id := item.AuthorID.UUID
		resp.AuthorID = &id
	}
	return resp
}

func excerpt(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
