package service

import (
	"context"
	"errors"
	"testing"

	"lexbrief-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTagger struct {
	phrases  []string
	entities models.EntitySet
}

func (t *stubTagger) NounPhrases(text string) []string { return t.phrases }

func (t *stubTagger) Entities(text string) models.EntitySet {
	if t.entities == nil {
		return models.NewEntitySet()
	}
	return t.entities
}

type stubSuggester struct {
	topics []string
	err    error
}

func (s *stubSuggester) SuggestTopics(ctx context.Context, text string, max int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.topics, nil
}

func newLocalAnalyzer(opts ...AnalysisServiceOption) *AnalysisService {
	base := []AnalysisServiceOption{AnalysisWithTopicSuggester(nil)}
	return NewAnalysisService(append(base, opts...)...)
}

func TestAnalyzeTopics_LexiconScoring(t *testing.T) {
	s := newLocalAnalyzer()

	text := "The agreement sets out obligations of each party. A breach of the agreement entitles the other party to damages for that breach."
	topics := s.AnalyzeTopics(context.Background(), text, 5)

	require.NotEmpty(t, topics)
	assert.Equal(t, "contract", topics[0].Name)
	assert.Equal(t, models.TopicSourceLexicon, topics[0].Source)
	// "agreement" twice, "obligations" once, "breach" twice
	assert.Equal(t, float64(5), topics[0].Score)
}

func TestAnalyzeTopics_TieBreaksByLexiconOrder(t *testing.T) {
	s := newLocalAnalyzer()

	// One keyword hit each for property and tort; property is declared first
	text := "The easement dispute also raised a negligence question."
	topics := s.AnalyzeTopics(context.Background(), text, 5)

	require.GreaterOrEqual(t, len(topics), 2)
	assert.Equal(t, "property", topics[0].Name)
	assert.Equal(t, "tort", topics[1].Name)
}

func TestAnalyzeTopics_MaxTopicsCap(t *testing.T) {
	s := newLocalAnalyzer()

	text := "agreement easement negligence defendant shareholder patent employee custody"
	topics := s.AnalyzeTopics(context.Background(), text, 3)

	assert.Len(t, topics, 3)
}

func TestAnalyzeTopics_TaggerFillsWhenLexiconSparse(t *testing.T) {
	tagger := &stubTagger{
		phrases: []string{"zoning variance", "zoning variance", "setback rule"},
		entities: models.EntitySet{
			models.EntityPerson: {{Text: "Alex Morgan"}},
		},
	}
	s := newLocalAnalyzer(AnalysisWithTagger(tagger))

	// Only "easement" hits the lexicon, so the tagger is consulted
	text := "The easement runs with the land."
	topics := s.AnalyzeTopics(context.Background(), text, 4)

	require.Len(t, topics, 4)
	assert.Equal(t, "property", topics[0].Name)
	assert.Equal(t, models.TopicSourceLexicon, topics[0].Source)
	// Entities outrank noun phrases through the weighting
	assert.Equal(t, "Alex Morgan", topics[1].Name)
	assert.Equal(t, models.TopicSourceTagger, topics[1].Source)
	assert.Equal(t, "zoning variance", topics[2].Name)
	assert.Equal(t, "setback rule", topics[3].Name)
}

func TestAnalyzeTopics_ExternalSuggesterFillsRemainder(t *testing.T) {
	suggester := &stubSuggester{topics: []string{"Property", "water rights", "mineral leases"}}
	s := NewAnalysisService(AnalysisWithTopicSuggester(suggester))

	text := "The easement runs with the land."
	topics := s.AnalyzeTopics(context.Background(), text, 3)

	require.Len(t, topics, 3)
	assert.Equal(t, "property", topics[0].Name)
	// Duplicate of an existing topic is skipped regardless of casing
	assert.Equal(t, "water rights", topics[1].Name)
	assert.Equal(t, models.TopicSourceExternal, topics[1].Source)
	assert.Equal(t, "mineral leases", topics[2].Name)
}

func TestAnalyzeTopics_ExternalFailureKeepsLocalResults(t *testing.T) {
	suggester := &stubSuggester{err: errors.New("quota exceeded")}
	s := NewAnalysisService(AnalysisWithTopicSuggester(suggester))

	topics := s.AnalyzeTopics(context.Background(), "The easement runs with the land.", 5)

	require.Len(t, topics, 1)
	assert.Equal(t, "property", topics[0].Name)
}

func TestAnalyzeEntities_FallbackPatterns(t *testing.T) {
	s := newLocalAnalyzer()

	text := "On January 5, 2020, Acme Widgets Inc. paid $50,000 to settle claims under 42 U.S.C. § 1983."
	set := s.AnalyzeEntities(text)

	require.Len(t, set, 6)
	assert.Equal(t, "January 5, 2020", set[models.EntityDate][0].Text)
	assert.Equal(t, "$50,000", set[models.EntityMoney][0].Text)
	require.NotEmpty(t, set[models.EntityOrganization])
	assert.Contains(t, set[models.EntityOrganization][0].Text, "Acme Widgets Inc")
	require.Len(t, set[models.EntityLawReference], 1)
	assert.Equal(t, "42 U.S.C. § 1983", set[models.EntityLawReference][0].Text)
}

func TestAnalyzeEntities_AllBucketsPresentOnEmptyText(t *testing.T) {
	s := newLocalAnalyzer()

	set := s.AnalyzeEntities("")
	assert.Len(t, set, 6)
	for kind, entities := range set {
		assert.Empty(t, entities, string(kind))
	}
}

func TestAnalyzeEntities_PersonFalsePositives(t *testing.T) {
	s := newLocalAnalyzer()

	set := s.AnalyzeEntities("The United States moved to dismiss.")
	for _, entity := range set[models.EntityPerson] {
		assert.NotContains(t, entity.Text, "United States")
	}
}

func TestIdentifyDocumentType(t *testing.T) {
	s := newLocalAnalyzer()

	tests := []struct {
		name    string
		text    string
		docType models.DocumentType
	}{
		{
			name:    "contract",
			text:    "This Agreement is entered into by the parties. The parties agree to the terms and conditions below.",
			docType: models.DocTypeContract,
		},
		{
			name:    "court opinion",
			text:    "Justice Harlan delivered the opinion of the Court. The dissenting opinion follows.",
			docType: models.DocTypeCourtOpinion,
		},
		{
			name:    "statute",
			text:    "Be it enacted by the Senate and House of Representatives of the United States of America in Congress assembled.",
			docType: models.DocTypeStatute,
		},
		{
			name:    "affidavit",
			text:    "I swear and affirm under penalty of perjury, witnessed before a notary public.",
			docType: models.DocTypeAffidavit,
		},
		{
			name:    "unknown",
			text:    "A plain note about next week's schedule.",
			docType: models.DocTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.docType, s.IdentifyDocumentType(tt.text))
		})
	}
}

func TestExtractKeyPhrases(t *testing.T) {
	s := newLocalAnalyzer()

	text := "Hereby noted. The tenant shall have no liability for damages arising before the effective date. The weather was pleasant that afternoon in May."
	phrases := s.ExtractKeyPhrases(text)

	require.Len(t, phrases, 1)
	assert.Contains(t, phrases[0], "liability")
}

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("First sentence. Second one? Third!\nFourth without terminator")

	require.Len(t, sentences, 4)
	assert.Equal(t, "First sentence.", sentences[0])
	assert.Equal(t, "Second one?", sentences[1])
	assert.Equal(t, "Third!", sentences[2])
	assert.Equal(t, "Fourth without terminator", sentences[3])
}
