package repository

import (
	"context"

	"lexbrief-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TopicRepository handles database operations for topic sets
type TopicRepository struct {
	db *pgxpool.Pool
}

// NewTopicRepository creates a new topic repository
func NewTopicRepository(db *pgxpool.Pool) *TopicRepository {
	return &TopicRepository{db: db}
}

// Create creates a new topic set record
func (r *TopicRepository) Create(ctx context.Context, set *models.TopicSet) error {
	query := `
		INSERT INTO topic_sets (
			document_id, text_sample, labels, key_phrases, document_type
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		set.DocumentID,
		set.TextSample,
		set.Labels,
		set.KeyPhrases,
		set.DocumentType,
	).Scan(&set.ID, &set.CreatedAt)

	return err
}

// GetLatestByDocumentID retrieves the most recent topic set for a document
func (r *TopicRepository) GetLatestByDocumentID(ctx context.Context, documentID uuid.UUID) (*models.TopicSet, error) {
	set := &models.TopicSet{}
	query := `
		SELECT id, document_id, text_sample, labels, key_phrases, document_type, created_at
		FROM topic_sets
		WHERE document_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.QueryRow(ctx, query, documentID).Scan(
		&set.ID,
		&set.DocumentID,
		&set.TextSample,
		&set.Labels,
		&set.KeyPhrases,
		&set.DocumentType,
		&set.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return set, nil
}
