package repository

import (
	"context"
	"time"

	"lexbrief-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository handles database operations for documents
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create creates a new document record
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (
			user_id, filename, mime_type, size, storage_path, document_type
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		doc.UserID,
		doc.Filename,
		doc.MimeType,
		doc.Size,
		doc.StoragePath,
		doc.DocumentType,
	).Scan(&doc.ID, &doc.CreatedAt)

	return err
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc := &models.Document{}
	query := `
		SELECT id, user_id, filename, mime_type, size, storage_path, document_type,
		       processed, processing_error, created_at, processed_at
		FROM documents
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Filename,
		&doc.MimeType,
		&doc.Size,
		&doc.StoragePath,
		&doc.DocumentType,
		&doc.Processed,
		&doc.ProcessingError,
		&doc.CreatedAt,
		&doc.ProcessedAt,
	)

	if err != nil {
		return nil, err
	}

	return doc, nil
}

// ListByUserID retrieves all documents for a user
func (r *DocumentRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Document, error) {
	query := `
		SELECT id, user_id, filename, mime_type, size, storage_path, document_type,
		       processed, processing_error, created_at, processed_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.Filename,
			&doc.MimeType,
			&doc.Size,
			&doc.StoragePath,
			&doc.DocumentType,
			&doc.Processed,
			&doc.ProcessingError,
			&doc.CreatedAt,
			&doc.ProcessedAt,
		)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// MarkProcessed records the outcome of an analysis run. A nil
// processingError means the run succeeded.
func (r *DocumentRepository) MarkProcessed(ctx context.Context, id uuid.UUID, docType models.DocumentType, processingError *string) error {
	query := `
		UPDATE documents
		SET processed = true, document_type = $2, processing_error = $3, processed_at = $4
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, docType, processingError, time.Now())
	return err
}

// Delete deletes a document record
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM documents WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
