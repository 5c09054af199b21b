package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lexbrief-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJudge struct {
	verdict *CurrencyVerdict
	err     error
	calls   int
}

func (j *stubJudge) JudgeCurrency(ctx context.Context, citation *models.Citation) (*CurrencyVerdict, error) {
	j.calls++
	if j.err != nil {
		return nil, j.err
	}
	return j.verdict, nil
}

func newOfflineValidator(opts ...ValidatorServiceOption) *ValidatorService {
	base := []ValidatorServiceOption{
		ValidatorWithRegistryClient(NewRegistryClient("", "")),
		ValidatorWithCurrencyJudge(nil),
	}
	return NewValidatorService(append(base, opts...)...)
}

func TestValidate_FallbackAlwaysAnswers(t *testing.T) {
	s := newOfflineValidator()

	record := s.Validate(context.Background(), &models.Citation{Reference: "42 U.S.C. § 1983"})
	require.NotNil(t, record)
	assert.True(t, record.IsCurrent)
	assert.Equal(t, models.SourceFallback, record.SourceUsed)
	assert.Nil(t, record.Confidence)
	assert.False(t, record.VerifiedAt.IsZero())
}

func TestValidate_FallbackFlagsKnownOutdated(t *testing.T) {
	s := newOfflineValidator()

	tests := []struct {
		reference string
		isCurrent bool
	}{
		{"12 U.S.C. § 24a", false},
		{"18 U.S.C. § 1521", false},
		{"21 C.F.R. § 101.12", false},
		{"Pub. L. 105-33", false},
		{"42 U.S.C. § 1983", true},
		{"Pub. L. 104-191", true},
	}

	for _, tt := range tests {
		record := s.Validate(context.Background(), &models.Citation{Reference: tt.reference})
		assert.Equal(t, tt.isCurrent, record.IsCurrent, tt.reference)
		assert.Equal(t, models.SourceFallback, record.SourceUsed, tt.reference)
	}
}

func TestValidate_VerdictMirroredOntoCitation(t *testing.T) {
	s := newOfflineValidator()

	citation := &models.Citation{Reference: "12 U.S.C. § 24a"}
	record := s.Validate(context.Background(), citation)

	require.NotNil(t, citation.IsCurrent)
	assert.Equal(t, record.IsCurrent, *citation.IsCurrent)
	require.NotNil(t, citation.SourceUsed)
	assert.Equal(t, record.SourceUsed, *citation.SourceUsed)
	require.NotNil(t, citation.VerifiedAt)
}

func TestValidate_SemanticConfidenceGating(t *testing.T) {
	tests := []struct {
		name       string
		verdict    CurrencyVerdict
		isCurrent  bool
		sourceUsed models.ValidationSource
	}{
		{
			name:       "below floor coerced to current",
			verdict:    CurrencyVerdict{IsCurrent: false, Confidence: 0.59},
			isCurrent:  true,
			sourceUsed: models.SourceSemanticLowConfidence,
		},
		{
			name:       "above floor kept as judged",
			verdict:    CurrencyVerdict{IsCurrent: false, Confidence: 0.61},
			isCurrent:  false,
			sourceUsed: models.SourceSemantic,
		},
		{
			name:       "at floor kept as judged",
			verdict:    CurrencyVerdict{IsCurrent: true, Confidence: 0.6},
			isCurrent:  true,
			sourceUsed: models.SourceSemantic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := tt.verdict
			s := newOfflineValidator(ValidatorWithCurrencyJudge(&stubJudge{verdict: &verdict}))

			record := s.Validate(context.Background(), &models.Citation{Reference: "42 U.S.C. § 1983"})
			assert.Equal(t, tt.isCurrent, record.IsCurrent)
			assert.Equal(t, tt.sourceUsed, record.SourceUsed)
			require.NotNil(t, record.Confidence)
			assert.Equal(t, tt.verdict.Confidence, *record.Confidence)
		})
	}
}

func TestValidate_JudgeFailureFallsThrough(t *testing.T) {
	judge := &stubJudge{err: errors.New("service unavailable")}
	s := newOfflineValidator(ValidatorWithCurrencyJudge(judge))

	record := s.Validate(context.Background(), &models.Citation{Reference: "42 U.S.C. § 1983"})
	assert.Equal(t, 1, judge.calls)
	assert.True(t, record.IsCurrent)
	assert.Equal(t, models.SourceFallback, record.SourceUsed)
}

func TestValidate_RegistryNotFoundIsAnAnswer(t *testing.T) {
	var path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	judge := &stubJudge{verdict: &CurrencyVerdict{IsCurrent: true, Confidence: 0.9}}
	s := NewValidatorService(
		ValidatorWithRegistryClient(NewRegistryClient(ts.URL, "test-key")),
		ValidatorWithCurrencyJudge(judge),
	)

	record := s.Validate(context.Background(), &models.Citation{
		Reference: "42 U.S.C. § 1983",
		Family:    models.FamilyUSCode,
	})

	assert.Equal(t, "/uscode/v1/titles/42/sections/1983", path)
	assert.False(t, record.IsCurrent)
	assert.Equal(t, models.SourceRegistry, record.SourceUsed)
	assert.Equal(t, 0, judge.calls, "registry answer should stop the cascade")
}

func TestValidate_RegistryCurrentSection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"is_current": true}`))
	}))
	defer ts.Close()

	s := NewValidatorService(
		ValidatorWithRegistryClient(NewRegistryClient(ts.URL, "test-key")),
		ValidatorWithCurrencyJudge(nil),
	)

	record := s.Validate(context.Background(), &models.Citation{
		Reference: "12 C.F.R. § 226.5",
		Family:    models.FamilyCFR,
	})

	assert.True(t, record.IsCurrent)
	assert.Equal(t, models.SourceRegistry, record.SourceUsed)
}

func TestValidate_RegistryGeneralSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/v1/statutes", r.URL.Path)
		assert.Equal(t, "Pub. L. 105-33", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [{"reference": "Pub. L. 105-33", "status": "superseded"}]}`))
	}))
	defer ts.Close()

	s := NewValidatorService(
		ValidatorWithRegistryClient(NewRegistryClient(ts.URL, "test-key")),
		ValidatorWithCurrencyJudge(nil),
	)

	record := s.Validate(context.Background(), &models.Citation{
		Reference: "Pub. L. 105-33",
		Family:    models.FamilyPublicLaw,
	})

	assert.False(t, record.IsCurrent)
	assert.Equal(t, models.SourceRegistry, record.SourceUsed)
}

func TestValidate_RegistryErrorFallsToJudge(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	judge := &stubJudge{verdict: &CurrencyVerdict{IsCurrent: false, Confidence: 0.95}}
	s := NewValidatorService(
		ValidatorWithRegistryClient(NewRegistryClient(ts.URL, "test-key")),
		ValidatorWithCurrencyJudge(judge),
	)

	record := s.Validate(context.Background(), &models.Citation{
		Reference: "42 U.S.C. § 1983",
		Family:    models.FamilyUSCode,
	})

	assert.Equal(t, 1, judge.calls)
	assert.False(t, record.IsCurrent)
	assert.Equal(t, models.SourceSemantic, record.SourceUsed)
}

func TestValidate_UnparseableReferenceFallsThrough(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("registry should not be reached for an unparseable section reference")
	}))
	defer ts.Close()

	s := NewValidatorService(
		ValidatorWithRegistryClient(NewRegistryClient(ts.URL, "test-key")),
		ValidatorWithCurrencyJudge(nil),
	)

	record := s.Validate(context.Background(), &models.Citation{
		Reference: "garbled reference",
		Family:    models.FamilyUSCode,
	})

	assert.True(t, record.IsCurrent)
	assert.Equal(t, models.SourceFallback, record.SourceUsed)
}

func TestValidateAll_OneRecordPerCitation(t *testing.T) {
	s := newOfflineValidator()

	citations := []*models.Citation{
		{Reference: "42 U.S.C. § 1983"},
		{Reference: "12 U.S.C. § 24a"},
	}
	records := s.ValidateAll(context.Background(), citations)

	require.Len(t, records, 2)
	assert.True(t, records[0].IsCurrent)
	assert.False(t, records[1].IsCurrent)
}

func TestRegistryClient_Configured(t *testing.T) {
	var nilClient *RegistryClient
	assert.False(t, nilClient.Configured())
	assert.False(t, NewRegistryClient("https://example.com", "").Configured())
	assert.True(t, NewRegistryClient("https://example.com", "key").Configured())
}
