package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GenerationTier identifies which generation path produced a brief
type GenerationTier string

const (
	TierPremium   GenerationTier = "premium"
	TierSecondary GenerationTier = "secondary"
	TierFallback  GenerationTier = "deterministic_fallback"
)

// BulletList is a JSONB-stored list of short text items
type BulletList []string

// Value implements driver.Valuer for JSONB
func (b BulletList) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan implements sql.Scanner for JSONB
func (b *BulletList) Scan(value interface{}) error {
	if value == nil {
		*b = make(BulletList, 0)
		return nil
	}

	// Handle different types that pgx might return for JSONB
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*b = make(BulletList, 0)
		return nil
	}

	if len(bytes) == 0 {
		*b = make(BulletList, 0)
		return nil
	}

	return json.Unmarshal(bytes, b)
}

// Brief represents a generated legal brief
type Brief struct {
	ID              uuid.UUID      `json:"id"`
	DocumentID      uuid.UUID      `json:"document_id"`
	UserID          uuid.UUID      `json:"user_id"`
	Title           string         `json:"title"`
	Content         string         `json:"content"`
	Summary         string         `json:"summary"`
	EnhancedSummary *string        `json:"enhanced_summary,omitempty"`
	KeyInsights     BulletList     `json:"key_insights"`
	ActionItems     BulletList     `json:"action_items"`
	GenerationTier  GenerationTier `json:"generation_tier"`
	FocusAreas      BulletList     `json:"focus_areas"`
	CreatedAt       time.Time      `json:"created_at"`
}
