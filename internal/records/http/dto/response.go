package dto

import (
	"time"

	recordsDomain "github.com/fieldvault/fieldvault/internal/records/domain"
)

// RecordResponse is the decrypted record shape returned to API clients.
// Nil sensitive fields serialize as JSON null, covering "never set",
// "explicitly cleared" and "contained decrypt failure" alike.
type RecordResponse struct {
	ID                 string         `json:"id"`
	OwnerID            int64          `json:"owner_id"`
	RecordType         string         `json:"record_type"`
	DisplayName        string         `json:"display_name"`
	Username           *string        `json:"username"`
	Password           *string        `json:"password"`
	URL                *string        `json:"url"`
	HostOrIP           *string        `json:"host_or_ip"`
	Port               *int32         `json:"port"`
	Notes              *string        `json:"notes"`
	StructuredMetadata map[string]any `json:"structured_metadata"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	CreatedBy          string         `json:"created_by"`
}

// MapRecordViewToResponse converts a decrypted record view to its API response.
func MapRecordViewToResponse(view *recordsDomain.RecordView) RecordResponse {
	return RecordResponse{
		ID:                 view.ID.String(),
		OwnerID:            view.OwnerID,
		RecordType:         view.RecordType,
		DisplayName:        view.DisplayName,
		Username:           view.Username,
		Password:           view.Password,
		URL:                view.URL,
		HostOrIP:           view.HostOrIP,
		Port:               view.Port,
		Notes:              view.Notes,
		StructuredMetadata: view.StructuredMetadata,
		CreatedAt:          view.CreatedAt,
		UpdatedAt:          view.UpdatedAt,
		CreatedBy:          view.CreatedBy,
	}
}

// ListRecordsResponse wraps a page of record responses.
type ListRecordsResponse struct {
	Records []RecordResponse `json:"records"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
}

// MapRecordViewsToListResponse converts a page of views to the list response.
func MapRecordViewsToListResponse(views []*recordsDomain.RecordView, offset, limit int) ListRecordsResponse {
	records := make([]RecordResponse, 0, len(views))
	for _, view := range views {
		records = append(records, MapRecordViewToResponse(view))
	}
	return ListRecordsResponse{
		Records: records,
		Offset:  offset,
		Limit:   limit,
	}
}
