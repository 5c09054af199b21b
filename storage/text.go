package storage

import (
	"context"
	"fmt"
	"io"
)

// Analysis never needs more than a few hundred KB of text
const maxTextBytes = 2 * 1024 * 1024

// TextSource reads stored documents back as plain text for analysis
type TextSource struct {
	storage Storage
}

// NewTextSource creates a text source over a storage backend
func NewTextSource(storage Storage) *TextSource {
	return &TextSource{storage: storage}
}

// ReadText downloads a document and returns its contents as a string,
// capped so a runaway upload cannot exhaust memory
func (t *TextSource) ReadText(ctx context.Context, storagePath string) (string, error) {
	reader, err := t.storage.Download(ctx, storagePath)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, maxTextBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}

	return string(data), nil
}
