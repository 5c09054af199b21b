package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TopicSource identifies how a topic label was produced
type TopicSource string

const (
	TopicSourceLexicon  TopicSource = "lexicon"
	TopicSourceTagger   TopicSource = "nlp_tagger"
	TopicSourceExternal TopicSource = "external"
)

// TopicLabel is a single topic assigned to a piece of text
type TopicLabel struct {
	Name   string      `json:"name"`
	Score  float64     `json:"score"`
	Source TopicSource `json:"source"`
}

// TopicLabels is an ordered list of topic labels
type TopicLabels []TopicLabel

// Value implements driver.Valuer for JSONB
func (t TopicLabels) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB
func (t *TopicLabels) Scan(value interface{}) error {
	if value == nil {
		*t = make(TopicLabels, 0)
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
		*t = make(TopicLabels, 0)
		return nil
	}

	if len(bytes) == 0 {
		*t = make(TopicLabels, 0)
		return nil
	}

	return json.Unmarshal(bytes, t)
}

// KeyPhrases is a list of noteworthy phrases pulled from a document
type KeyPhrases []string

// Value implements driver.Valuer for JSONB
func (k KeyPhrases) Value() (driver.Value, error) {
	return json.Marshal(k)
}

// Scan implements sql.Scanner for JSONB
func (k *KeyPhrases) Scan(value interface{}) error {
	if value == nil {
		*k = make(KeyPhrases, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*k = make(KeyPhrases, 0)
		return nil
	}

	if len(bytes) == 0 {
		*k = make(KeyPhrases, 0)
		return nil
	}

	return json.Unmarshal(bytes, k)
}

// TopicSet is the stored analysis result for a document or text sample
type TopicSet struct {
	ID           uuid.UUID    `json:"id"`
	DocumentID   *uuid.UUID   `json:"document_id,omitempty"`
	TextSample   *string      `json:"text_sample,omitempty"`
	Labels       TopicLabels  `json:"labels"`
	KeyPhrases   KeyPhrases   `json:"key_phrases"`
	DocumentType DocumentType `json:"document_type"`
	CreatedAt    time.Time    `json:"created_at"`
}
