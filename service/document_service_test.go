package service

import (
	"context"
	"strings"
	"testing"

	"lexbrief-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOfflineDocumentService(opts ...DocumentServiceOption) *DocumentService {
	base := []DocumentServiceOption{
		DocumentWithAnalyzer(newLocalAnalyzer()),
		DocumentWithValidator(newOfflineValidator()),
	}
	return NewDocumentService(append(base, opts...)...)
}

func TestAnalyzeText_EmptyText(t *testing.T) {
	s := newOfflineDocumentService()

	_, err := s.AnalyzeText(context.Background(), AnalyzeTextRequest{Text: " \n "})
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestAnalyzeText_ClassifiesSample(t *testing.T) {
	s := newOfflineDocumentService()

	text := "This Agreement is made between the parties. The parties agree that a breach of the agreement " +
		"entitles the non-breaching party to damages, pursuant to the terms and conditions stated herein."
	result, err := s.AnalyzeText(context.Background(), AnalyzeTextRequest{Text: text, MaxTopics: 3})
	require.NoError(t, err)

	require.NotEmpty(t, result.Topics)
	assert.Equal(t, "contract", result.Topics[0].Name)
	assert.LessOrEqual(t, len(result.Topics), 3)
	assert.Equal(t, models.DocTypeContract, result.DocumentType)
	assert.Len(t, result.Entities, 6)
	assert.NotEmpty(t, result.KeyPhrases)
}

func TestAnalyzeDocument_RequiresDependencies(t *testing.T) {
	s := newOfflineDocumentService()

	_, err := s.AnalyzeDocument(context.Background(), AnalyzeDocumentRequest{DocumentID: uuid.New()})
	assert.EqualError(t, err, "document repository not set")
}

func TestMergeLawReferences_AppendsNewAndSkipsSeen(t *testing.T) {
	s := newOfflineDocumentService()
	docID := uuid.New()
	text := "Disclosure is governed by 5 U.S.C. § 552 and 42 U.S.C. § 1983."

	citations := []*models.Citation{
		{DocumentID: docID, Reference: "42 U.S.C. § 1983", Family: models.FamilyUSCode},
	}
	foiaStart := strings.Index(text, "5 U.S.C.")
	sectionStart := strings.Index(text, "42 U.S.C.")
	lawRefs := []models.Entity{
		{Text: "5 U.S.C. § 552", Start: foiaStart, End: foiaStart + len("5 U.S.C. § 552")},
		{Text: "42 U.S.C. § 1983", Start: sectionStart, End: sectionStart + len("42 U.S.C. § 1983")},
		{Text: "  ", Start: 0, End: 2},
	}

	merged := s.mergeLawReferences(docID, text, citations, lawRefs)

	require.Len(t, merged, 2)
	added := merged[1]
	assert.Equal(t, "5 U.S.C. § 552", added.Reference)
	assert.Equal(t, models.FamilyUSCode, added.Family)
	assert.Contains(t, added.ContextWindow, "[5 U.S.C. § 552]")
	require.NotNil(t, added.JurisdictionGuess)
	assert.Equal(t, "federal", *added.JurisdictionGuess)
}
