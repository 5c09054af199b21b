package models

import (
	"time"

	"github.com/google/uuid"
)

// CitationFamily identifies which reference pattern a citation matched
type CitationFamily string

const (
	FamilyUSCode          CitationFamily = "us_code"
	FamilyCFR             CitationFamily = "cfr"
	FamilyPublicLaw       CitationFamily = "public_law"
	FamilyStatutesAtLarge CitationFamily = "statutes_at_large"
	FamilyFederalRegister CitationFamily = "federal_register"
	FamilyCaseCitation    CitationFamily = "case_citation"
	FamilyUnknown         CitationFamily = "unknown"
)

// ValidationSource identifies which tier produced a currency verdict
type ValidationSource string

const (
	SourceRegistry              ValidationSource = "primary_legal_registry"
	SourceSemantic              ValidationSource = "semantic_validation"
	SourceSemanticLowConfidence ValidationSource = "semantic_validation_low_confidence"
	SourceFallback              ValidationSource = "deterministic_fallback"
	SourceError                 ValidationSource = "validation_error"
)

// Citation represents a statute or case reference found in a document.
// The validation columns hold the latest verdict only; each revalidation
// overwrites them in place.
type Citation struct {
	ID                uuid.UUID         `json:"id"`
	DocumentID        uuid.UUID         `json:"document_id"`
	Reference         string            `json:"reference"`
	ContextWindow     string            `json:"context_window"`
	Family            CitationFamily    `json:"family"`
	JurisdictionGuess *string           `json:"jurisdiction_guess,omitempty"`
	IsCurrent         *bool             `json:"is_current,omitempty"`
	SourceUsed        *ValidationSource `json:"source_used,omitempty"`
	Confidence        *float64          `json:"confidence,omitempty"`
	VerifiedAt        *time.Time        `json:"verified_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// ValidationRecord is the outcome of one currency check for a citation
type ValidationRecord struct {
	CitationID uuid.UUID        `json:"citation_id"`
	Reference  string           `json:"reference"`
	IsCurrent  bool             `json:"is_current"`
	SourceUsed ValidationSource `json:"source_used"`
	Confidence *float64         `json:"confidence,omitempty"`
	VerifiedAt time.Time        `json:"verified_at"`
}
