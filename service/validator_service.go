package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"time"

	"lexbrief-backend/models"
	"lexbrief-backend/repository"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

// Verdicts below this confidence are coerced to current so uncertainty
// never flags a statute as outdated
const semanticConfidenceFloor = 0.6

const defaultRegistryURL = "https://api.law.gov"

// Known-outdated reference patterns used by the deterministic tier
var outdatedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`12\s+U\.?S\.?C\.?\s+§+\s*24[a-c]`),
	regexp.MustCompile(`18\s+U\.?S\.?C\.?\s+§+\s*152[0-5]`),
	regexp.MustCompile(`21\s+C\.?F\.?R\.?\s+§+\s*101\.1[0-5]`),
	regexp.MustCompile(`Pub\.?\s+L(?:aw)?\.?\s+105-`),
}

var (
	uscodeRefPattern = regexp.MustCompile(`(\d+)\s+U\.?\s?S\.?\s?C\.?\s+§+\s*(\d+[a-z]*)`)
	cfrRefPattern    = regexp.MustCompile(`(\d+)\s+C\.?\s?F\.?\s?R\.?\s+§+\s*(\d+(?:\.\d+)?)`)
)

var ErrRegistryNotConfigured = errors.New("legal registry API key not set")

// RegistryClient queries the primary legal registry for statute currency
type RegistryClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRegistryClient creates a registry client against an explicit endpoint
func NewRegistryClient(baseURL, apiKey string) *RegistryClient {
	return &RegistryClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// NewRegistryClientFromEnv creates a registry client from LEGAL_REGISTRY_URL
// and LEGAL_API_KEY
func NewRegistryClientFromEnv() *RegistryClient {
	baseURL := os.Getenv("LEGAL_REGISTRY_URL")
	if baseURL == "" {
		baseURL = defaultRegistryURL
	}
	return NewRegistryClient(baseURL, os.Getenv("LEGAL_API_KEY"))
}

// Configured reports whether the registry can be queried at all
func (c *RegistryClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Check dispatches a citation to the registry endpoint matching its family
// and returns the registry's currency answer. A not-found response is a
// real answer (no longer in force), not an error; any other failure is
// returned as an error so the caller can fall through to the next tier.
func (c *RegistryClient) Check(ctx context.Context, citation *models.Citation) (bool, error) {
	if !c.Configured() {
		return false, ErrRegistryNotConfigured
	}

	family := citation.Family
	if family == "" || family == models.FamilyUnknown {
		family = DetectFamily(citation.Reference)
	}

	switch family {
	case models.FamilyUSCode:
		match := uscodeRefPattern.FindStringSubmatch(citation.Reference)
		if match == nil {
			return false, fmt.Errorf("could not parse US Code reference: %s", citation.Reference)
		}
		return c.checkSection(ctx, fmt.Sprintf("%s/uscode/v1/titles/%s/sections/%s", c.baseURL, match[1], match[2]))
	case models.FamilyCFR:
		match := cfrRefPattern.FindStringSubmatch(citation.Reference)
		if match == nil {
			return false, fmt.Errorf("could not parse CFR reference: %s", citation.Reference)
		}
		return c.checkSection(ctx, fmt.Sprintf("%s/cfr/v1/titles/%s/sections/%s", c.baseURL, match[1], match[2]))
	default:
		return c.checkGeneral(ctx, citation.Reference)
	}
}

func (c *RegistryClient) checkSection(ctx context.Context, apiURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var body struct {
			IsCurrent *bool `json:"is_current"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return false, fmt.Errorf("failed to decode registry response: %w", err)
		}
		if body.IsCurrent == nil {
			return true, nil
		}
		return *body.IsCurrent, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		// Not found means repealed or never in force
		return false, nil
	default:
		return false, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}
}

func (c *RegistryClient) checkGeneral(ctx context.Context, reference string) (bool, error) {
	query := url.Values{}
	query.Set("q", reference)
	query.Set("fields", "reference,status")
	apiURL := fmt.Sprintf("%s/search/v1/statutes?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var body struct {
			Results []struct {
				Reference string `json:"reference"`
				Status    string `json:"status"`
			} `json:"results"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return false, fmt.Errorf("failed to decode registry response: %w", err)
		}
		if len(body.Results) == 0 {
			// No match is not evidence the statute lapsed
			return true, nil
		}
		return body.Results[0].Status == "current", nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return false, nil
	default:
		return false, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}
}

// CurrencyVerdict is a structured currency judgment from a generative service
type CurrencyVerdict struct {
	IsCurrent      bool    `json:"is_current"`
	SourceDatabase string  `json:"source_database"`
	Confidence     float64 `json:"confidence"`
}

// CurrencyJudge asks a generative service whether a citation is still in
// force. An error means the tier failed, not that the statute is outdated.
type CurrencyJudge interface {
	JudgeCurrency(ctx context.Context, citation *models.Citation) (*CurrencyVerdict, error)
}

// ValidatorService answers whether cited statutes are still in force.
// Tiers are attempted top-down and the first definitive answer wins; the
// deterministic tier guarantees the cascade always terminates with a verdict.
type ValidatorService struct {
	citationRepo *repository.CitationRepository
	registry     *RegistryClient
	judge        CurrencyJudge
}

// ValidatorServiceOption is a functional option for ValidatorService
type ValidatorServiceOption func(*ValidatorService)

// ValidatorWithCitationRepository sets the citation repository
func ValidatorWithCitationRepository(repo *repository.CitationRepository) ValidatorServiceOption {
	return func(s *ValidatorService) {
		s.citationRepo = repo
	}
}

// ValidatorWithRegistryClient sets the legal registry client
func ValidatorWithRegistryClient(client *RegistryClient) ValidatorServiceOption {
	return func(s *ValidatorService) {
		s.registry = client
	}
}

// ValidatorWithCurrencyJudge sets the semantic validation judge
func ValidatorWithCurrencyJudge(judge CurrencyJudge) ValidatorServiceOption {
	return func(s *ValidatorService) {
		s.judge = judge
	}
}

// NewValidatorService creates a new validator service
func NewValidatorService(opts ...ValidatorServiceOption) *ValidatorService {
	s := &ValidatorService{
		registry: NewRegistryClientFromEnv(),
		judge:    openaiCurrencyJudge{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate runs the tier cascade for one citation. It always returns a
// record with a source tag, never an error: tier failures fall through and
// the deterministic table is the floor. The verdict is written back onto
// the citation row when a repository is configured; a failed write is
// logged and the in-memory verdict still returned.
func (s *ValidatorService) Validate(ctx context.Context, citation *models.Citation) *models.ValidationRecord {
	record := &models.ValidationRecord{
		CitationID: citation.ID,
		Reference:  citation.Reference,
		VerifiedAt: time.Now(),
	}

	answered := false

	if s.registry.Configured() {
		isCurrent, err := s.registry.Check(ctx, citation)
		if err != nil {
			log.Printf("Registry check failed for %q, falling through: %v", citation.Reference, err)
		} else {
			record.IsCurrent = isCurrent
			record.SourceUsed = models.SourceRegistry
			answered = true
		}
	}

	if !answered && s.judge != nil {
		verdict, err := s.judge.JudgeCurrency(ctx, citation)
		if err != nil {
			log.Printf("Semantic validation failed for %q, falling through: %v", citation.Reference, err)
		} else {
			confidence := verdict.Confidence
			record.Confidence = &confidence
			if confidence < semanticConfidenceFloor {
				record.IsCurrent = true
				record.SourceUsed = models.SourceSemanticLowConfidence
			} else {
				record.IsCurrent = verdict.IsCurrent
				record.SourceUsed = models.SourceSemantic
			}
			answered = true
		}
	}

	if !answered {
		record.IsCurrent = !matchesOutdatedPattern(citation.Reference)
		record.SourceUsed = models.SourceFallback
	}

	s.applyRecord(citation, record)

	if s.citationRepo != nil && citation.ID != uuid.Nil {
		if err := s.citationRepo.UpdateValidation(ctx, record); err != nil {
			log.Printf("Failed to persist validation for %q (verdict still returned): %v", citation.Reference, err)
		}
	}

	return record
}

// ValidateAll validates each citation independently; one citation's
// persistence failure never affects the others
func (s *ValidatorService) ValidateAll(ctx context.Context, citations []*models.Citation) []*models.ValidationRecord {
	records := make([]*models.ValidationRecord, 0, len(citations))
	for _, citation := range citations {
		records = append(records, s.Validate(ctx, citation))
	}
	return records
}

func (s *ValidatorService) applyRecord(citation *models.Citation, record *models.ValidationRecord) {
	isCurrent := record.IsCurrent
	sourceUsed := record.SourceUsed
	verifiedAt := record.VerifiedAt
	citation.IsCurrent = &isCurrent
	citation.SourceUsed = &sourceUsed
	citation.Confidence = record.Confidence
	citation.VerifiedAt = &verifiedAt
}

func matchesOutdatedPattern(reference string) bool {
	for _, pattern := range outdatedPatterns {
		if pattern.MatchString(reference) {
			return true
		}
	}
	return false
}

// openaiCurrencyJudge judges statute currency with OpenAI. Availability is
// decided by the presence of the API key at call time.
type openaiCurrencyJudge struct{}

func (openaiCurrencyJudge) JudgeCurrency(ctx context.Context, citation *models.Citation) (*CurrencyVerdict, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}

	prompt := fmt.Sprintf(`Assess whether the following US legal citation is still in force.

Citation: %s

Context from the source document:
%s

Respond as JSON: {"is_current": true|false, "source_database": "name of the authority you are reasoning from", "confidence": 0.0-1.0}`,
		citation.Reference, citation.ContextWindow)

	client := openai.NewClient(apiKey)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a legal research assistant. Respond with JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty completion response")
	}

	verdict := &CurrencyVerdict{}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), verdict); err != nil {
		return nil, fmt.Errorf("failed to parse currency verdict: %w", err)
	}

	return verdict, nil
}
