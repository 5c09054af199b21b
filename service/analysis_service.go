package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"strings"

	"lexbrief-backend/models"

	openai "github.com/sashabaranov/go-openai"
)

// topicDomain maps a legal practice area to its indicator keywords.
// Declaration order breaks score ties.
type topicDomain struct {
	name     string
	keywords []string
}

var topicLexicon = []topicDomain{
	{"contract", []string{"agreement", "breach", "consideration", "covenant", "terms and conditions", "obligations", "party of the first part"}},
	{"property", []string{"easement", "deed", "title", "conveyance", "landlord", "tenant", "real property", "fee simple"}},
	{"tort", []string{"negligence", "duty of care", "proximate cause", "damages", "liability", "tortfeasor", "injury"}},
	{"criminal", []string{"defendant", "prosecution", "indictment", "felony", "misdemeanor", "sentencing", "beyond a reasonable doubt"}},
	{"constitutional", []string{"constitution", "first amendment", "due process", "equal protection", "fourteenth amendment", "fundamental right"}},
	{"corporate", []string{"shareholder", "board of directors", "fiduciary", "merger", "acquisition", "bylaws", "incorporation"}},
	{"intellectual property", []string{"patent", "trademark", "copyright", "infringement", "trade secret", "licensing", "prior art"}},
	{"employment", []string{"employee", "employer", "wrongful termination", "discrimination", "harassment", "wages", "collective bargaining"}},
	{"family", []string{"custody", "divorce", "alimony", "child support", "marital", "adoption", "guardianship"}},
	{"immigration", []string{"visa", "asylum", "deportation", "naturalization", "green card", "removal proceedings", "petition for alien"}},
	{"tax", []string{"internal revenue", "deduction", "taxable income", "tax liability", "irs", "withholding", "exemption"}},
	{"bankruptcy", []string{"chapter 7", "chapter 11", "chapter 13", "creditor", "debtor", "discharge", "trustee", "automatic stay"}},
	{"environmental", []string{"epa", "clean air", "clean water", "emissions", "contamination", "environmental impact", "superfund"}},
	{"international", []string{"treaty", "convention", "sovereign", "extradition", "foreign state", "international law", "tribunal"}},
	{"administrative", []string{"agency", "rulemaking", "administrative procedure", "final rule", "notice and comment", "judicial review"}},
	{"healthcare", []string{"hipaa", "medicare", "medicaid", "patient", "medical malpractice", "informed consent", "provider"}},
	{"antitrust", []string{"sherman act", "monopoly", "restraint of trade", "price fixing", "market power", "anticompetitive"}},
	{"securities", []string{"securities exchange", "sec", "prospectus", "insider trading", "registration statement", "material misstatement"}},
}

var documentTypeIndicators = map[models.DocumentType][]string{
	models.DocTypeContract:     {"agreement", "the parties agree", "hereby agrees", "terms and conditions"},
	models.DocTypeCourtOpinion: {"opinion of the court", "justice", "chief justice", "dissenting opinion"},
	models.DocTypeStatute:      {"public law", "be it enacted", "united states code", "congress"},
	models.DocTypeRegulation:   {"code of federal regulations", "federal register", "final rule", "proposed rule"},
	models.DocTypeBrief:        {"brief", "argument", "statement of facts", "prayer for relief", "certificate of compliance"},
	models.DocTypeMotion:       {"motion", "moves the court", "respectfully moves"},
	models.DocTypeAffidavit:    {"sworn", "affirm", "under penalty of perjury", "notary public"},
}

var legalTerms = []string{
	"hereby", "whereas", "pursuant to", "notwithstanding",
	"jurisdiction", "liability", "provision", "covenant",
	"damages", "remedies", "enforcement", "obligations",
	"rights", "duties", "amendment", "termination",
}

// Regex fallbacks used when no statistical tagger is configured
var (
	personPattern       = regexp.MustCompile(`(?:[A-Z][a-z]+\s+){1,2}[A-Z][a-z]+`)
	datePattern         = regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}\b`)
	moneyPattern        = regexp.MustCompile(`\$\d[\d,]*(?:\.\d+)?(?:\s+(?:million|billion|thousand))?`)
	organizationPattern = regexp.MustCompile(`[A-Z][A-Za-z&]*(?:\s+[A-Z][A-Za-z&]*)*,?\s+(?:Inc|Corp|Corporation|LLC|LLP|Ltd|Co)\.?`)
)

var personFalsePositives = []string{"united states", "department", "court", "company"}

const (
	maxKeyPhrases     = 20
	topicSampleChars  = 4000
	entityTopicWeight = 3
)

// Tagger is a local statistical model that chunks noun phrases and tags
// named entities. Optional: when absent the analyzer falls back to
// pattern-based extraction.
type Tagger interface {
	NounPhrases(text string) []string
	Entities(text string) models.EntitySet
}

// TopicSuggester asks an external service for topic labels. Strictly
// best-effort: callers swallow its errors.
type TopicSuggester interface {
	SuggestTopics(ctx context.Context, text string, max int) ([]string, error)
}

// AnalysisService identifies entities and subject-matter topics in
// legal document text
type AnalysisService struct {
	tagger    Tagger
	suggester TopicSuggester
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// AnalysisWithTagger sets the local statistical tagger
func AnalysisWithTagger(tagger Tagger) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.tagger = tagger
	}
}

// AnalysisWithTopicSuggester sets the external topic suggester
func AnalysisWithTopicSuggester(suggester TopicSuggester) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.suggester = suggester
	}
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(opts ...AnalysisServiceOption) *AnalysisService {
	s := &AnalysisService{
		suggester: openaiTopicSuggester{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeTopics classifies text into legal practice areas. The lexicon is
// the primary source; the tagger and external suggester only fill in when
// the lexicon surfaces fewer topics than wanted. Failures in the external
// call never propagate.
func (s *AnalysisService) AnalyzeTopics(ctx context.Context, text string, maxTopics int) []models.TopicLabel {
	topics := s.lexiconTopics(text, maxTopics)

	if len(topics) < 2 && s.tagger != nil {
		topics = s.mergeTaggerTopics(text, topics, maxTopics)
	}

	if len(topics) < maxTopics && s.suggester != nil {
		suggested, err := s.suggester.SuggestTopics(ctx, text, maxTopics-len(topics))
		if err != nil {
			log.Printf("Topic suggestion failed, keeping local results: %v", err)
			return topics
		}
		for _, name := range suggested {
			if len(topics) >= maxTopics {
				break
			}
			if name == "" || containsTopic(topics, name) {
				continue
			}
			topics = append(topics, models.TopicLabel{
				Name:   name,
				Source: models.TopicSourceExternal,
			})
		}
	}

	return topics
}

func (s *AnalysisService) lexiconTopics(text string, maxTopics int) []models.TopicLabel {
	lower := strings.ToLower(text)

	var topics []models.TopicLabel
	for _, domain := range topicLexicon {
		score := 0
		for _, keyword := range domain.keywords {
			score += strings.Count(lower, keyword)
		}
		if score > 0 {
			topics = append(topics, models.TopicLabel{
				Name:   domain.name,
				Score:  float64(score),
				Source: models.TopicSourceLexicon,
			})
		}
	}

	// Stable sort keeps lexicon declaration order for equal scores
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Score > topics[j].Score
	})

	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}
	return topics
}

// mergeTaggerTopics frequency-scores noun phrases and entities as a
// secondary topic source, weighting entities over generic noun phrases
func (s *AnalysisService) mergeTaggerTopics(text string, topics []models.TopicLabel, maxTopics int) []models.TopicLabel {
	counts := make(map[string]int)
	casing := make(map[string]string)

	for _, phrase := range s.tagger.NounPhrases(text) {
		key := strings.ToLower(strings.TrimSpace(phrase))
		if key == "" {
			continue
		}
		counts[key]++
		if _, ok := casing[key]; !ok {
			casing[key] = strings.TrimSpace(phrase)
		}
	}

	for _, entities := range s.tagger.Entities(text) {
		for _, entity := range entities {
			key := strings.ToLower(strings.TrimSpace(entity.Text))
			if key == "" {
				continue
			}
			counts[key] += entityTopicWeight
			if _, ok := casing[key]; !ok {
				casing[key] = strings.TrimSpace(entity.Text)
			}
		}
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	for _, key := range keys {
		if len(topics) >= maxTopics {
			break
		}
		if containsTopic(topics, key) {
			continue
		}
		topics = append(topics, models.TopicLabel{
			Name:   casing[key],
			Score:  float64(counts[key]),
			Source: models.TopicSourceTagger,
		})
	}

	return topics
}

// AnalyzeEntities buckets named entities by kind. Uses the statistical
// tagger when one is configured, otherwise falls back to pattern matching.
// Every bucket is present in the result, possibly empty.
func (s *AnalysisService) AnalyzeEntities(text string) models.EntitySet {
	if s.tagger != nil {
		set := models.NewEntitySet()
		for kind, entities := range s.tagger.Entities(text) {
			set[kind] = append(set[kind], entities...)
		}
		return set
	}
	return fallbackEntities(text)
}

func fallbackEntities(text string) models.EntitySet {
	set := models.NewEntitySet()

	for _, match := range personPattern.FindAllStringIndex(text, -1) {
		name := text[match[0]:match[1]]
		if isPersonFalsePositive(name) {
			continue
		}
		set[models.EntityPerson] = append(set[models.EntityPerson], models.Entity{
			Text:  name,
			Start: match[0],
			End:   match[1],
		})
	}

	for _, match := range organizationPattern.FindAllStringIndex(text, -1) {
		set[models.EntityOrganization] = append(set[models.EntityOrganization], models.Entity{
			Text:  text[match[0]:match[1]],
			Start: match[0],
			End:   match[1],
		})
	}

	for _, match := range datePattern.FindAllStringIndex(text, -1) {
		set[models.EntityDate] = append(set[models.EntityDate], models.Entity{
			Text:  text[match[0]:match[1]],
			Start: match[0],
			End:   match[1],
		})
	}

	for _, match := range moneyPattern.FindAllStringIndex(text, -1) {
		set[models.EntityMoney] = append(set[models.EntityMoney], models.Entity{
			Text:  text[match[0]:match[1]],
			Start: match[0],
			End:   match[1],
		})
	}

	for _, pattern := range citationPatterns {
		for _, match := range pattern.re.FindAllStringIndex(text, -1) {
			set[models.EntityLawReference] = append(set[models.EntityLawReference], models.Entity{
				Text:  text[match[0]:match[1]],
				Start: match[0],
				End:   match[1],
			})
		}
	}

	return set
}

func isPersonFalsePositive(name string) bool {
	lower := strings.ToLower(name)
	for _, word := range personFalsePositives {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// IdentifyDocumentType guesses the kind of legal document by counting
// indicator phrases. Unknown when nothing matches.
func (s *AnalysisService) IdentifyDocumentType(text string) models.DocumentType {
	lower := strings.ToLower(text)

	best := models.DocTypeUnknown
	bestScore := 0
	// Deterministic iteration so equal scores resolve the same way every run
	types := make([]models.DocumentType, 0, len(documentTypeIndicators))
	for docType := range documentTypeIndicators {
		types = append(types, docType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, docType := range types {
		score := 0
		for _, indicator := range documentTypeIndicators[docType] {
			score += strings.Count(lower, indicator)
		}
		if score > bestScore {
			bestScore = score
			best = docType
		}
	}

	return best
}

// ExtractKeyPhrases pulls sentences containing important legal terms,
// skipping fragments and run-ons
func (s *AnalysisService) ExtractKeyPhrases(text string) []string {
	var phrases []string
	for _, sentence := range splitSentences(text) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= 20 || len(sentence) >= 500 {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, term := range legalTerms {
			if strings.Contains(lower, term) {
				phrases = append(phrases, sentence)
				break
			}
		}
		if len(phrases) >= maxKeyPhrases {
			break
		}
	}
	return phrases
}

func containsTopic(topics []models.TopicLabel, name string) bool {
	for _, topic := range topics {
		if strings.EqualFold(topic.Name, name) {
			return true
		}
	}
	return false
}

// splitSentences breaks text on sentence-ending punctuation followed by
// whitespace, keeping the punctuation with the sentence
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c == '.' || c == '!' || c == '?' {
			// Consume trailing punctuation runs like "?!" or "..."
			j := i + 1
			for j < len(runes) && (runes[j] == '.' || runes[j] == '!' || runes[j] == '?' || runes[j] == '"' || runes[j] == '\'') {
				j++
			}
			if j >= len(runes) || runes[j] == ' ' || runes[j] == '\n' || runes[j] == '\t' || runes[j] == '\r' {
				sentences = append(sentences, string(runes[start:j]))
				for j < len(runes) && (runes[j] == ' ' || runes[j] == '\n' || runes[j] == '\t' || runes[j] == '\r') {
					j++
				}
				start = j
				i = j - 1
			}
		}
	}
	if start < len(runes) {
		tail := strings.TrimSpace(string(runes[start:]))
		if tail != "" {
			sentences = append(sentences, tail)
		}
	}
	return sentences
}

// openaiTopicSuggester asks OpenAI for topic labels. Availability is
// decided by the presence of the API key at call time.
type openaiTopicSuggester struct{}

func (openaiTopicSuggester) SuggestTopics(ctx context.Context, text string, max int) ([]string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}

	sample := text
	if len(sample) > topicSampleChars {
		sample = sample[:topicSampleChars]
	}

	client := openai.NewClient(apiKey)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a legal document classifier. Respond with JSON only.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(`Suggest up to %d short topic labels describing the legal subject matter of the following text. Respond as {"topics": ["label", ...]}.

%s`, max, sample),
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

	var parsed struct {
		Topics []string `json:"topics"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse topic suggestions: %w", err)
	}

	if len(parsed.Topics) > max {
		parsed.Topics = parsed.Topics[:max]
	}
	return parsed.Topics, nil
}
