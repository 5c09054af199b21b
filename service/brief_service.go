package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"lexbrief-backend/models"
	"lexbrief-backend/repository"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrEmptyDocument = errors.New("document text is empty")
	ErrBriefNotFound = errors.New("brief not found")
)

const (
	premiumCharBudget   = 10000
	secondaryCharBudget = 5000
	summaryCharLimit    = 300
	premiumModel        = "gemini-1.5-pro"
)

// Placeholders used when the secondary enhancement follow-up fails
const (
	placeholderEnhancedSummary = "Enhanced summary unavailable."
	placeholderKeyInsight      = "Key insights unavailable."
	placeholderActionItem      = "Action items unavailable."
)

// BriefPrompt carries everything a generative tier needs to draft a brief
type BriefPrompt struct {
	Title      string
	Text       string
	FocusAreas []string
	Citations  []*models.Citation
}

// GeneratedBrief is the output of one generative tier
type GeneratedBrief struct {
	Content string
	Summary string
}

// BriefGenerator drafts a brief from a structured prompt. An error means
// the tier failed and the cascade moves on.
type BriefGenerator interface {
	GenerateBrief(ctx context.Context, prompt *BriefPrompt) (*GeneratedBrief, error)
}

// BriefEnhancement is the result of the post-generation follow-up call
type BriefEnhancement struct {
	EnhancedSummary string   `json:"enhanced_summary"`
	KeyInsights     []string `json:"key_insights"`
	ActionItems     []string `json:"action_items"`
}

// BriefEnhancer derives summary, insights and action items from an
// already-generated brief. Best-effort only.
type BriefEnhancer interface {
	EnhanceBrief(ctx context.Context, content string) (*BriefEnhancement, error)
}

// GenerateBriefRequest represents a request to generate a brief
type GenerateBriefRequest struct {
	Document    *models.Document
	Text        string
	CustomTitle *string
	FocusAreas  []string
}

// BriefService produces legal briefs through a generation cascade: a
// premium generative service, then a secondary one, then a deterministic
// assembly that always succeeds on non-empty input.
type BriefService struct {
	briefRepo    *repository.BriefRepository
	citationRepo *repository.CitationRepository
	premium      BriefGenerator
	secondary    BriefGenerator
	enhancer     BriefEnhancer
}

// BriefServiceOption is a functional option for BriefService
type BriefServiceOption func(*BriefService)

// BriefWithBriefRepository sets the brief repository
func BriefWithBriefRepository(repo *repository.BriefRepository) BriefServiceOption {
	return func(s *BriefService) {
		s.briefRepo = repo
	}
}

// BriefWithCitationRepository sets the citation repository
func BriefWithCitationRepository(repo *repository.CitationRepository) BriefServiceOption {
	return func(s *BriefService) {
		s.citationRepo = repo
	}
}

// BriefWithPremiumGenerator sets the premium generative tier
func BriefWithPremiumGenerator(gen BriefGenerator) BriefServiceOption {
	return func(s *BriefService) {
		s.premium = gen
	}
}

// BriefWithSecondaryGenerator sets the secondary generative tier
func BriefWithSecondaryGenerator(gen BriefGenerator) BriefServiceOption {
	return func(s *BriefService) {
		s.secondary = gen
	}
}

// BriefWithEnhancer sets the secondary-tier enhancement service
func BriefWithEnhancer(enhancer BriefEnhancer) BriefServiceOption {
	return func(s *BriefService) {
		s.enhancer = enhancer
	}
}

// NewBriefService creates a new brief service
func NewBriefService(opts ...BriefServiceOption) *BriefService {
	openaiGen := &openaiBriefGenerator{}
	s := &BriefService{
		secondary: openaiGen,
		enhancer:  openaiGen,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces a brief for the given document text. Only empty input
// is an error: every other failure falls through the cascade and the
// deterministic tier always answers. The brief is persisted exactly once,
// and a persistence failure is logged without discarding the result.
func (s *BriefService) Generate(ctx context.Context, req GenerateBriefRequest) (*models.Brief, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyDocument
	}

	filename := ""
	if req.Document != nil {
		filename = req.Document.Filename
	}

	title := ""
	if req.CustomTitle != nil && strings.TrimSpace(*req.CustomTitle) != "" {
		title = *req.CustomTitle
	} else {
		title = generateTitle(req.Text, filename)
	}

	var citations []*models.Citation
	if s.citationRepo != nil && req.Document != nil {
		var err error
		citations, err = s.citationRepo.ListByDocumentID(ctx, req.Document.ID)
		if err != nil {
			log.Printf("Failed to load citations for brief (continuing without): %v", err)
			citations = nil
		}
	}

	brief := &models.Brief{
		Title:       title,
		KeyInsights: models.BulletList{},
		ActionItems: models.BulletList{},
		FocusAreas:  models.BulletList(req.FocusAreas),
	}
	if req.Document != nil {
		brief.DocumentID = req.Document.ID
		brief.UserID = req.Document.UserID
	}

	generated := false

	if s.premium != nil {
		prompt := &BriefPrompt{
			Title:      strings.TrimPrefix(title, "Brief: "),
			Text:       truncateForBudget(req.Text, premiumCharBudget),
			FocusAreas: req.FocusAreas,
			Citations:  citations,
		}
		result, err := s.premium.GenerateBrief(ctx, prompt)
		if err != nil {
			log.Printf("Premium brief generation failed, falling through: %v", err)
		} else {
			brief.Content = result.Content
			brief.Summary = result.Summary
			brief.GenerationTier = models.TierPremium
			generated = true
		}
	}

	if !generated && s.secondary != nil {
		prompt := &BriefPrompt{
			Title:      strings.TrimPrefix(title, "Brief: "),
			Text:       truncateForBudget(req.Text, secondaryCharBudget),
			FocusAreas: req.FocusAreas,
			Citations:  citations,
		}
		result, err := s.secondary.GenerateBrief(ctx, prompt)
		if err != nil {
			log.Printf("Secondary brief generation failed, falling through: %v", err)
		} else {
			brief.Content = result.Content
			brief.Summary = result.Summary
			brief.GenerationTier = models.TierSecondary
			s.enhance(ctx, brief)
			generated = true
		}
	}

	if !generated {
		content, summary := assembleFallbackBrief(title, req.Text, req.FocusAreas, citations)
		brief.Content = content
		brief.Summary = summary
		brief.GenerationTier = models.TierFallback
	}

	brief.Content += provenanceFooter(brief.GenerationTier)

	if s.briefRepo != nil && req.Document != nil {
		if err := s.briefRepo.Create(ctx, brief); err != nil {
			log.Printf("Failed to persist brief (result still returned): %v", err)
		}
	}

	return brief, nil
}

// GetBrief retrieves a brief by ID
func (s *BriefService) GetBrief(ctx context.Context, req GetBriefRequest) (*models.Brief, error) {
	if s.briefRepo == nil {
		return nil, errors.New("brief repository not set")
	}
	brief, err := s.briefRepo.GetByID(ctx, req.BriefID)
	if err != nil {
		return nil, ErrBriefNotFound
	}
	return brief, nil
}

// enhance runs the secondary-tier follow-up call. Any failure fills
// placeholders instead of aborting the brief.
func (s *BriefService) enhance(ctx context.Context, brief *models.Brief) {
	if s.enhancer == nil {
		s.fillPlaceholders(brief)
		return
	}
	enhancement, err := s.enhancer.EnhanceBrief(ctx, brief.Content)
	if err != nil {
		log.Printf("Brief enhancement failed, using placeholders: %v", err)
		s.fillPlaceholders(brief)
		return
	}

	if enhancement.EnhancedSummary != "" {
		summary := enhancement.EnhancedSummary
		brief.EnhancedSummary = &summary
	} else {
		placeholder := placeholderEnhancedSummary
		brief.EnhancedSummary = &placeholder
	}
	brief.KeyInsights = models.BulletList(enhancement.KeyInsights)
	if len(brief.KeyInsights) == 0 {
		brief.KeyInsights = models.BulletList{placeholderKeyInsight}
	}
	brief.ActionItems = models.BulletList(enhancement.ActionItems)
	if len(brief.ActionItems) == 0 {
		brief.ActionItems = models.BulletList{placeholderActionItem}
	}
}

func (s *BriefService) fillPlaceholders(brief *models.Brief) {
	placeholder := placeholderEnhancedSummary
	brief.EnhancedSummary = &placeholder
	brief.KeyInsights = models.BulletList{placeholderKeyInsight}
	brief.ActionItems = models.BulletList{placeholderActionItem}
}

func truncateForBudget(text string, budget int) string {
	if len(text) <= budget {
		return text
	}
	log.Printf("Truncating document text from %d to %d chars", len(text), budget)
	return text[:budget] + "... [Content truncated for API limits]"
}

func provenanceFooter(tier models.GenerationTier) string {
	return fmt.Sprintf("\n\n---\n*This brief was automatically generated on %s (%s tier). It should be reviewed for accuracy and completeness.*",
		time.Now().UTC().Format("2006-01-02"), tier)
}

// buildBriefPrompt renders the shared structured prompt both generative
// tiers send
func buildBriefPrompt(p *BriefPrompt) string {
	var focusAreasText strings.Builder
	if len(p.FocusAreas) > 0 {
		focusAreasText.WriteString("Focus especially on these areas:\n")
		for _, area := range p.FocusAreas {
			focusAreasText.WriteString(fmt.Sprintf("- %s\n", area))
		}
	}

	var statutesText strings.Builder
	if len(p.Citations) > 0 {
		statutesText.WriteString("Relevant Statutes and Regulations:\n")
		for _, citation := range p.Citations {
			statutesText.WriteString(fmt.Sprintf("- %s [%s]\n", citation.Reference, currencyStatus(citation)))
			if citation.ContextWindow != "" {
				context := citation.ContextWindow
				if len(context) > 150 {
					context = context[:150] + "..."
				}
				statutesText.WriteString(fmt.Sprintf("  Context: %s\n", context))
			}
		}
	}

	return fmt.Sprintf(`Create a detailed legal brief based on the following document content.

Document title: %s

%s

%s

Structure the brief with these sections:
1. Introduction
2. Factual Background
3. Legal Issues
4. Legal Analysis
5. Conclusion
6. Statutes and Regulations (include this only if statutes are provided above)

Document content: %s

Please format the brief in Markdown with appropriate headings.
If statutes are provided above, be sure to analyze them in your legal analysis and include them in the Statutes section.`,
		p.Title, focusAreasText.String(), statutesText.String(), p.Text)
}

func currencyStatus(citation *models.Citation) string {
	if citation.IsCurrent != nil && !*citation.IsCurrent {
		return "OUTDATED"
	}
	return "CURRENT"
}

// deriveSummary builds a short summary from the first non-heading lines of
// generated content
func deriveSummary(content string) string {
	var parts []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts = append(parts, line)
		if len(strings.Join(parts, " ")) > 200 {
			break
		}
	}

	summary := strings.Join(parts, " ")
	if len(summary) > summaryCharLimit {
		summary = summary[:summaryCharLimit-3] + "..."
	}
	return summary
}

// GeminiBriefGenerator is the premium generative tier
type GeminiBriefGenerator struct {
	client *genai.Client
}

// NewGeminiBriefGenerator creates the premium tier around a Gemini client
func NewGeminiBriefGenerator(client *genai.Client) *GeminiBriefGenerator {
	return &GeminiBriefGenerator{client: client}
}

// GenerateBrief drafts a brief with Gemini. Availability is decided by the
// presence of the API key at call time.
func (g *GeminiBriefGenerator) GenerateBrief(ctx context.Context, prompt *BriefPrompt) (*GeneratedBrief, error) {
	if g == nil || g.client == nil {
		return nil, errors.New("gemini client not set")
	}
	if os.Getenv("GEMINI_API_KEY") == "" {
		return nil, errors.New("GEMINI_API_KEY not set")
	}

	model := g.client.GenerativeModel(premiumModel)
	model.SetTemperature(0.2)

	resp, err := model.GenerateContent(ctx, genai.Text(buildBriefPrompt(prompt)))
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini returned no candidates")
	}

	var content strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			content.WriteString(string(text))
		}
	}
	if content.Len() == 0 {
		return nil, errors.New("gemini returned empty content")
	}

	return &GeneratedBrief{
		Content: content.String(),
		Summary: deriveSummary(content.String()),
	}, nil
}

// openaiBriefGenerator is the secondary generative tier; it also serves
// the enhancement follow-up. Availability is decided by the presence of
// the API key at call time.
type openaiBriefGenerator struct{}

func (openaiBriefGenerator) GenerateBrief(ctx context.Context, prompt *BriefPrompt) (*GeneratedBrief, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}

	client := openai.NewClient(apiKey)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a legal brief writer.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildBriefPrompt(prompt),
			},
		},
		Temperature: 0.2,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, errors.New("empty completion response")
	}

	content := resp.Choices[0].Message.Content
	return &GeneratedBrief{
		Content: content,
		Summary: deriveSummary(content),
	}, nil
}

func (openaiBriefGenerator) EnhanceBrief(ctx context.Context, content string) (*BriefEnhancement, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}

	sample := content
	if len(sample) > secondaryCharBudget {
		sample = sample[:secondaryCharBudget]
	}

	client := openai.NewClient(apiKey)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a legal analyst. Respond with JSON only.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(`From the legal brief below, produce a JSON object with "enhanced_summary" (2-3 sentences), "key_insights" (3-5 bullet strings) and "action_items" (2-4 bullet strings).

%s`, sample),
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

	enhancement := &BriefEnhancement{}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), enhancement); err != nil {
		return nil, fmt.Errorf("failed to parse enhancement: %w", err)
	}

	return enhancement, nil
}

// GetBriefRequest represents a request to fetch a brief
type GetBriefRequest struct {
	BriefID uuid.UUID
}
