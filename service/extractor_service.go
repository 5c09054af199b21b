package service

import (
	"regexp"
	"strings"

	"lexbrief-backend/models"

	"github.com/google/uuid"
)

// citationPattern pairs a reference family with its compiled pattern
type citationPattern struct {
	family models.CitationFamily
	re     *regexp.Regexp
}

// Pattern families for US federal legal references. Order matters: the
// first family to match a span wins.
var citationPatterns = []citationPattern{
	{models.FamilyUSCode, regexp.MustCompile(`\d+\s+U\.?\s?S\.?\s?C\.?\s+§+\s*\d+[a-z]*(?:\([a-z0-9]+\))*`)},
	{models.FamilyCFR, regexp.MustCompile(`\d+\s+C\.?\s?F\.?\s?R\.?\s+§+\s*\d+(?:\.\d+)?`)},
	{models.FamilyPublicLaw, regexp.MustCompile(`Pub(?:lic)?\.?\s+L(?:aw)?\.?\s+(?:No\.?\s+)?\d+-\d+`)},
	{models.FamilyStatutesAtLarge, regexp.MustCompile(`\d+\s+Stat\.?\s+\d+`)},
	{models.FamilyFederalRegister, regexp.MustCompile(`\d+\s+Fed\.?\s?Reg\.?\s+\d+`)},
	{models.FamilyCaseCitation, regexp.MustCompile(`[A-Z][A-Za-z]+\s+v\.\s+[A-Z][A-Za-z]+,\s+\d+\s+[A-Za-z0-9.\s]+?\d+\s+\(\d{4}\)`)},
}

const contextWindowChars = 100

// ExtractorService finds statute and case references in document text
type ExtractorService struct {
	contextChars int
}

// ExtractorServiceOption is a functional option for ExtractorService
type ExtractorServiceOption func(*ExtractorService)

// ExtractorWithContextChars overrides the context window size on each side
// of a match
func ExtractorWithContextChars(n int) ExtractorServiceOption {
	return func(s *ExtractorService) {
		s.contextChars = n
	}
}

// NewExtractorService creates a new extractor service
func NewExtractorService(opts ...ExtractorServiceOption) *ExtractorService {
	s := &ExtractorService{contextChars: contextWindowChars}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExtractCitations scans text against every pattern family and returns one
// citation per distinct reference string. Empty or whitespace-only text
// yields an empty list. The scan holds no state between calls, so running
// it twice on the same text returns the same result.
func (s *ExtractorService) ExtractCitations(documentID uuid.UUID, text string) []*models.Citation {
	citations := []*models.Citation{}
	if strings.TrimSpace(text) == "" {
		return citations
	}

	seen := make(map[string]bool)
	for _, pattern := range citationPatterns {
		matches := pattern.re.FindAllStringIndex(text, -1)
		for _, match := range matches {
			reference := text[match[0]:match[1]]
			if seen[reference] {
				continue
			}
			seen[reference] = true

			citations = append(citations, &models.Citation{
				DocumentID:        documentID,
				Reference:         reference,
				ContextWindow:     s.contextWindow(text, match[0], match[1]),
				Family:            pattern.family,
				JurisdictionGuess: jurisdictionFor(pattern.family),
			})
		}
	}

	return citations
}

// contextWindow returns the text surrounding a match, clamped to the
// document bounds, with the matched span set off in brackets
func (s *ExtractorService) contextWindow(text string, start, end int) string {
	from := start - s.contextChars
	if from < 0 {
		from = 0
	}
	to := end + s.contextChars
	if to > len(text) {
		to = len(text)
	}

	return text[from:start] + "[" + text[start:end] + "]" + text[end:to]
}

// DetectFamily classifies a bare reference string by re-matching it against
// the pattern families. Used when a reference arrives without extraction
// metadata, e.g. a law reference surfaced by entity analysis.
func DetectFamily(reference string) models.CitationFamily {
	for _, pattern := range citationPatterns {
		if pattern.re.MatchString(reference) {
			return pattern.family
		}
	}
	return models.FamilyUnknown
}

func jurisdictionFor(family models.CitationFamily) *string {
	if family == models.FamilyCaseCitation || family == models.FamilyUnknown {
		return nil
	}
	jurisdiction := "federal"
	return &jurisdiction
}
