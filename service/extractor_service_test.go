package service

import (
	"strings"
	"testing"

	"lexbrief-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCitations_EmptyText(t *testing.T) {
	s := NewExtractorService()

	for _, text := range []string{"", "   ", "\n\t\n"} {
		citations := s.ExtractCitations(uuid.New(), text)
		assert.NotNil(t, citations)
		assert.Empty(t, citations)
	}
}

func TestExtractCitations_Families(t *testing.T) {
	s := NewExtractorService()
	docID := uuid.New()

	text := "Claims arise under 42 U.S.C. § 1983 and 12 C.F.R. § 226.5. " +
		"See Pub. L. No. 104-191, 110 Stat. 1936, and 88 Fed. Reg. 10516. " +
		"Compare Roe v. Wade, 410 U.S. 113 (1973)."

	citations := s.ExtractCitations(docID, text)
	require.Len(t, citations, 6)

	byRef := make(map[string]*models.Citation)
	for _, c := range citations {
		byRef[c.Reference] = c
	}

	assert.Equal(t, models.FamilyUSCode, byRef["42 U.S.C. § 1983"].Family)
	assert.Equal(t, models.FamilyCFR, byRef["12 C.F.R. § 226.5"].Family)
	assert.Equal(t, models.FamilyPublicLaw, byRef["Pub. L. No. 104-191"].Family)
	assert.Equal(t, models.FamilyStatutesAtLarge, byRef["110 Stat. 1936"].Family)
	assert.Equal(t, models.FamilyFederalRegister, byRef["88 Fed. Reg. 10516"].Family)
	assert.Equal(t, models.FamilyCaseCitation, byRef["Roe v. Wade, 410 U.S. 113 (1973)"].Family)

	for _, c := range citations {
		assert.Equal(t, docID, c.DocumentID)
	}
}

func TestExtractCitations_DeduplicatesByReference(t *testing.T) {
	s := NewExtractorService()

	text := "Section 1983 claims: 42 U.S.C. § 1983. The court revisited 42 U.S.C. § 1983 later."
	citations := s.ExtractCitations(uuid.New(), text)

	require.Len(t, citations, 1)
	assert.Equal(t, "42 U.S.C. § 1983", citations[0].Reference)
}

func TestExtractCitations_ContextWindow(t *testing.T) {
	s := NewExtractorService()

	text := "The plaintiff sued under 42 U.S.C. § 1983 for deprivation of rights."
	citations := s.ExtractCitations(uuid.New(), text)

	require.Len(t, citations, 1)
	window := citations[0].ContextWindow
	assert.Contains(t, window, "[42 U.S.C. § 1983]")
	assert.True(t, strings.HasPrefix(window, "The plaintiff sued"))
	assert.True(t, strings.HasSuffix(window, "of rights."))
}

func TestExtractCitations_ContextWindowClamped(t *testing.T) {
	s := NewExtractorService(ExtractorWithContextChars(10))

	text := "See 42 U.S.C. § 1983 here."
	citations := s.ExtractCitations(uuid.New(), text)

	require.Len(t, citations, 1)
	assert.Equal(t, "See [42 U.S.C. § 1983] here.", citations[0].ContextWindow)
}

func TestExtractCitations_SequentialCallsAgree(t *testing.T) {
	s := NewExtractorService()
	docID := uuid.New()
	text := "Under 42 U.S.C. § 1983 and 29 C.F.R. § 1604.11, the employer is liable."

	first := s.ExtractCitations(docID, text)
	second := s.ExtractCitations(docID, text)

	assert.Equal(t, first, second)
}

func TestExtractCitations_Jurisdiction(t *testing.T) {
	s := NewExtractorService()

	citations := s.ExtractCitations(uuid.New(), "42 U.S.C. § 1983 and Roe v. Wade, 410 U.S. 113 (1973)")
	require.Len(t, citations, 2)

	for _, c := range citations {
		if c.Family == models.FamilyCaseCitation {
			assert.Nil(t, c.JurisdictionGuess)
		} else {
			require.NotNil(t, c.JurisdictionGuess)
			assert.Equal(t, "federal", *c.JurisdictionGuess)
		}
	}
}

func TestDetectFamily(t *testing.T) {
	tests := []struct {
		reference string
		family    models.CitationFamily
	}{
		{"42 U.S.C. § 1983", models.FamilyUSCode},
		{"12 C.F.R. § 226.5", models.FamilyCFR},
		{"Pub. L. 105-33", models.FamilyPublicLaw},
		{"110 Stat. 1936", models.FamilyStatutesAtLarge},
		{"88 Fed. Reg. 10516", models.FamilyFederalRegister},
		{"Roe v. Wade, 410 U.S. 113 (1973)", models.FamilyCaseCitation},
		{"not a citation", models.FamilyUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.family, DetectFamily(tt.reference), tt.reference)
	}
}
