package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType classifies the kind of legal document
type DocumentType string

const (
	DocTypeContract     DocumentType = "contract"
	DocTypeCourtOpinion DocumentType = "court_opinion"
	DocTypeStatute      DocumentType = "statute"
	DocTypeRegulation   DocumentType = "regulation"
	DocTypeBrief        DocumentType = "brief"
	DocTypeMotion       DocumentType = "motion"
	DocTypeAffidavit    DocumentType = "affidavit"
	DocTypeUnknown      DocumentType = "unknown"
)

// Document represents an uploaded legal document
type Document struct {
	ID              uuid.UUID    `json:"id"`
	UserID          uuid.UUID    `json:"user_id"`
	Filename        string       `json:"filename"`
	MimeType        string       `json:"mime_type"`
	Size            int64        `json:"size"`
	StoragePath     string       `json:"storage_path"`
	DocumentType    DocumentType `json:"document_type"`
	Processed       bool         `json:"processed"`
	ProcessingError *string      `json:"processing_error,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	ProcessedAt     *time.Time   `json:"processed_at,omitempty"`
}
