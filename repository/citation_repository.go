package repository

import (
	"context"

	"lexbrief-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CitationRepository handles database operations for citations
type CitationRepository struct {
	db *pgxpool.Pool
}

// NewCitationRepository creates a new citation repository
func NewCitationRepository(db *pgxpool.Pool) *CitationRepository {
	return &CitationRepository{db: db}
}

// FindOrCreate inserts a citation keyed by (document_id, reference). If the
// row already exists the context window is refreshed but the stored
// validation verdict is left untouched; the existing verdict is loaded back
// into the citation either way.
func (r *CitationRepository) FindOrCreate(ctx context.Context, citation *models.Citation) error {
	query := `
		INSERT INTO citations (
			document_id, reference, context_window, family, jurisdiction_guess
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (document_id, reference)
		DO UPDATE SET context_window = EXCLUDED.context_window
		RETURNING id, is_current, source_used, confidence, verified_at, created_at`

	err := r.db.QueryRow(
		ctx, query,
		citation.DocumentID,
		citation.Reference,
		citation.ContextWindow,
		citation.Family,
		citation.JurisdictionGuess,
	).Scan(
		&citation.ID,
		&citation.IsCurrent,
		&citation.SourceUsed,
		&citation.Confidence,
		&citation.VerifiedAt,
		&citation.CreatedAt,
	)

	return err
}

// GetByID retrieves a citation by ID
func (r *CitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Citation, error) {
	citation := &models.Citation{}
	query := `
		SELECT id, document_id, reference, context_window, family, jurisdiction_guess,
		       is_current, source_used, confidence, verified_at, created_at
		FROM citations
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&citation.ID,
		&citation.DocumentID,
		&citation.Reference,
		&citation.ContextWindow,
		&citation.Family,
		&citation.JurisdictionGuess,
		&citation.IsCurrent,
		&citation.SourceUsed,
		&citation.Confidence,
		&citation.VerifiedAt,
		&citation.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return citation, nil
}

// ListByDocumentID retrieves all citations found in a document
func (r *CitationRepository) ListByDocumentID(ctx context.Context, documentID uuid.UUID) ([]*models.Citation, error) {
	query := `
		SELECT id, document_id, reference, context_window, family, jurisdiction_guess,
		       is_current, source_used, confidence, verified_at, created_at
		FROM citations
		WHERE document_id = $1
		ORDER BY reference`

	return r.list(ctx, query, documentID)
}

// ListOutdatedByUserID retrieves every citation across a user's documents
// whose latest verdict marked it outdated
func (r *CitationRepository) ListOutdatedByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Citation, error) {
	query := `
		SELECT c.id, c.document_id, c.reference, c.context_window, c.family, c.jurisdiction_guess,
		       c.is_current, c.source_used, c.confidence, c.verified_at, c.created_at
		FROM citations c
		JOIN documents d ON d.id = c.document_id
		WHERE d.user_id = $1 AND c.is_current = false
		ORDER BY c.verified_at DESC`

	return r.list(ctx, query, userID)
}

// UpdateValidation overwrites a citation's stored verdict with the latest
// validation result
func (r *CitationRepository) UpdateValidation(ctx context.Context, record *models.ValidationRecord) error {
	query := `
		UPDATE citations
		SET is_current = $2, source_used = $3, confidence = $4, verified_at = $5
		WHERE id = $1`

	_, err := r.db.Exec(
		ctx, query,
		record.CitationID,
		record.IsCurrent,
		record.SourceUsed,
		record.Confidence,
		record.VerifiedAt,
	)
	return err
}

func (r *CitationRepository) list(ctx context.Context, query string, arg interface{}) ([]*models.Citation, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var citations []*models.Citation
	for rows.Next() {
		citation := &models.Citation{}
		err := rows.Scan(
			&citation.ID,
			&citation.DocumentID,
			&citation.Reference,
			&citation.ContextWindow,
			&citation.Family,
			&citation.JurisdictionGuess,
			&citation.IsCurrent,
			&citation.SourceUsed,
			&citation.Confidence,
			&citation.VerifiedAt,
			&citation.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		citations = append(citations, citation)
	}

	return citations, rows.Err()
}
