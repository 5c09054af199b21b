package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"lexbrief-backend/models"
	"lexbrief-backend/repository"

	"github.com/google/uuid"
)

var ErrDocumentNotFound = errors.New("document not found")

const defaultMaxTopics = 5

// DocumentSource supplies raw document text by storage path
type DocumentSource interface {
	ReadText(ctx context.Context, storagePath string) (string, error)
}

// DocumentService runs the full analysis pipeline for a document:
// citation extraction, entity and topic analysis, and statute validation
type DocumentService struct {
	documentRepo *repository.DocumentRepository
	citationRepo *repository.CitationRepository
	topicRepo    *repository.TopicRepository
	extractor    *ExtractorService
	analyzer     *AnalysisService
	validator    *ValidatorService
	source       DocumentSource
}

// DocumentServiceOption is a functional option for DocumentService
type DocumentServiceOption func(*DocumentService)

// DocumentWithDocumentRepository sets the document repository
func DocumentWithDocumentRepository(repo *repository.DocumentRepository) DocumentServiceOption {
	return func(s *DocumentService) {
		s.documentRepo = repo
	}
}

// DocumentWithCitationRepository sets the citation repository
func DocumentWithCitationRepository(repo *repository.CitationRepository) DocumentServiceOption {
	return func(s *DocumentService) {
		s.citationRepo = repo
	}
}

// DocumentWithTopicRepository sets the topic repository
func DocumentWithTopicRepository(repo *repository.TopicRepository) DocumentServiceOption {
	return func(s *DocumentService) {
		s.topicRepo = repo
	}
}

// DocumentWithExtractor sets the citation extractor
func DocumentWithExtractor(extractor *ExtractorService) DocumentServiceOption {
	return func(s *DocumentService) {
		s.extractor = extractor
	}
}

// DocumentWithAnalyzer sets the entity and topic analyzer
func DocumentWithAnalyzer(analyzer *AnalysisService) DocumentServiceOption {
	return func(s *DocumentService) {
		s.analyzer = analyzer
	}
}

// DocumentWithValidator sets the statute validator
func DocumentWithValidator(validator *ValidatorService) DocumentServiceOption {
	return func(s *DocumentService) {
		s.validator = validator
	}
}

// DocumentWithSource sets the document text source
func DocumentWithSource(source DocumentSource) DocumentServiceOption {
	return func(s *DocumentService) {
		s.source = source
	}
}

// NewDocumentService creates a new document service
func NewDocumentService(opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{
		extractor: NewExtractorService(),
		analyzer:  NewAnalysisService(),
		validator: NewValidatorService(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeDocumentRequest represents a request to analyze a stored document
type AnalyzeDocumentRequest struct {
	DocumentID uuid.UUID
	MaxTopics  int
}

// AnalyzeDocumentResult represents the outcome of a full analysis run
type AnalyzeDocumentResult struct {
	Document     *models.Document
	Citations    []*models.Citation
	Records      []*models.ValidationRecord
	Topics       []models.TopicLabel
	Entities     models.EntitySet
	KeyPhrases   []string
	DocumentType models.DocumentType
}

// AnalyzeDocument loads the document text, extracts and validates
// citations, and classifies entities and topics. Persistence along the way
// is best-effort; only missing documents and unreadable or empty text are
// caller-visible failures.
func (s *DocumentService) AnalyzeDocument(ctx context.Context, req AnalyzeDocumentRequest) (*AnalyzeDocumentResult, error) {
	if s.documentRepo == nil {
		return nil, errors.New("document repository not set")
	}
	if s.source == nil {
		return nil, errors.New("document source not set")
	}

	doc, err := s.documentRepo.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, ErrDocumentNotFound
	}

	text, err := s.source.ReadText(ctx, doc.StoragePath)
	if err != nil {
		message := fmt.Sprintf("failed to read document text: %v", err)
		if markErr := s.documentRepo.MarkProcessed(ctx, doc.ID, doc.DocumentType, &message); markErr != nil {
			log.Printf("Failed to record processing error for document %s: %v", doc.ID, markErr)
		}
		return nil, fmt.Errorf("failed to read document text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		message := "document text is empty"
		if markErr := s.documentRepo.MarkProcessed(ctx, doc.ID, doc.DocumentType, &message); markErr != nil {
			log.Printf("Failed to record processing error for document %s: %v", doc.ID, markErr)
		}
		return nil, ErrEmptyDocument
	}

	maxTopics := req.MaxTopics
	if maxTopics <= 0 {
		maxTopics = defaultMaxTopics
	}

	citations := s.extractor.ExtractCitations(doc.ID, text)
	entities := s.analyzer.AnalyzeEntities(text)

	// Law references surfaced by entity analysis become candidate citations
	// under the same dedup rule as pattern extraction
	citations = s.mergeLawReferences(doc.ID, text, citations, entities[models.EntityLawReference])

	if s.citationRepo != nil {
		for _, citation := range citations {
			if err := s.citationRepo.FindOrCreate(ctx, citation); err != nil {
				log.Printf("Failed to store citation %q: %v", citation.Reference, err)
			}
		}
	}

	records := s.validator.ValidateAll(ctx, citations)

	docType := s.analyzer.IdentifyDocumentType(text)
	keyPhrases := s.analyzer.ExtractKeyPhrases(text)
	topics := s.analyzer.AnalyzeTopics(ctx, text, maxTopics)

	if s.topicRepo != nil {
		docID := doc.ID
		set := &models.TopicSet{
			DocumentID:   &docID,
			Labels:       models.TopicLabels(topics),
			KeyPhrases:   models.KeyPhrases(keyPhrases),
			DocumentType: docType,
		}
		if err := s.topicRepo.Create(ctx, set); err != nil {
			log.Printf("Failed to store topic set for document %s: %v", doc.ID, err)
		}
	}

	if err := s.documentRepo.MarkProcessed(ctx, doc.ID, docType, nil); err != nil {
		log.Printf("Failed to mark document %s processed: %v", doc.ID, err)
	}
	doc.Processed = true
	doc.DocumentType = docType

	return &AnalyzeDocumentResult{
		Document:     doc,
		Citations:    citations,
		Records:      records,
		Topics:       topics,
		Entities:     entities,
		KeyPhrases:   keyPhrases,
		DocumentType: docType,
	}, nil
}

// AnalyzeTextRequest represents a request to analyze a freeform text sample
type AnalyzeTextRequest struct {
	Text      string
	MaxTopics int
}

// AnalyzeTextResult represents the outcome of a freeform analysis
type AnalyzeTextResult struct {
	Topics       []models.TopicLabel
	Entities     models.EntitySet
	KeyPhrases   []string
	DocumentType models.DocumentType
}

// AnalyzeText classifies a freeform text sample without persisting any
// document. The topic set is still stored so tagging history is queryable.
func (s *DocumentService) AnalyzeText(ctx context.Context, req AnalyzeTextRequest) (*AnalyzeTextResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyDocument
	}

	maxTopics := req.MaxTopics
	if maxTopics <= 0 {
		maxTopics = defaultMaxTopics
	}

	topics := s.analyzer.AnalyzeTopics(ctx, req.Text, maxTopics)
	entities := s.analyzer.AnalyzeEntities(req.Text)
	keyPhrases := s.analyzer.ExtractKeyPhrases(req.Text)
	docType := s.analyzer.IdentifyDocumentType(req.Text)

	if s.topicRepo != nil {
		sample := req.Text
		if len(sample) > 500 {
			sample = sample[:500]
		}
		set := &models.TopicSet{
			TextSample:   &sample,
			Labels:       models.TopicLabels(topics),
			KeyPhrases:   models.KeyPhrases(keyPhrases),
			DocumentType: docType,
		}
		if err := s.topicRepo.Create(ctx, set); err != nil {
			log.Printf("Failed to store topic set for text sample: %v", err)
		}
	}

	return &AnalyzeTextResult{
		Topics:       topics,
		Entities:     entities,
		KeyPhrases:   keyPhrases,
		DocumentType: docType,
	}, nil
}

// mergeLawReferences appends entity-derived law references that pattern
// extraction missed, skipping any reference already present
func (s *DocumentService) mergeLawReferences(documentID uuid.UUID, text string, citations []*models.Citation, lawRefs []models.Entity) []*models.Citation {
	seen := make(map[string]bool, len(citations))
	for _, citation := range citations {
		seen[citation.Reference] = true
	}

	for _, entity := range lawRefs {
		reference := strings.TrimSpace(entity.Text)
		if reference == "" || seen[reference] {
			continue
		}
		seen[reference] = true

		family := DetectFamily(reference)
		citations = append(citations, &models.Citation{
			DocumentID:        documentID,
			Reference:         reference,
			ContextWindow:     s.extractor.contextWindow(text, entity.Start, entity.End),
			Family:            family,
			JurisdictionGuess: jurisdictionFor(family),
		})
	}

	return citations
}
