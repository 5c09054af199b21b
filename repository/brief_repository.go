package repository

import (
	"context"

	"lexbrief-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BriefRepository handles database operations for generated briefs
type BriefRepository struct {
	db *pgxpool.Pool
}

// NewBriefRepository creates a new brief repository
func NewBriefRepository(db *pgxpool.Pool) *BriefRepository {
	return &BriefRepository{db: db}
}

// Create creates a new brief record
func (r *BriefRepository) Create(ctx context.Context, brief *models.Brief) error {
	query := `
		INSERT INTO briefs (
			document_id, user_id, title, content, summary,
			enhanced_summary, key_insights, action_items, generation_tier, focus_areas
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		brief.DocumentID,
		brief.UserID,
		brief.Title,
		brief.Content,
		brief.Summary,
		brief.EnhancedSummary,
		brief.KeyInsights,
		brief.ActionItems,
		brief.GenerationTier,
		brief.FocusAreas,
	).Scan(&brief.ID, &brief.CreatedAt)

	return err
}

// GetByID retrieves a brief by ID
func (r *BriefRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Brief, error) {
	brief := &models.Brief{}
	query := `
		SELECT id, document_id, user_id, title, content, summary,
		       enhanced_summary, key_insights, action_items, generation_tier, focus_areas, created_at
		FROM briefs
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&brief.ID,
		&brief.DocumentID,
		&brief.UserID,
		&brief.Title,
		&brief.Content,
		&brief.Summary,
		&brief.EnhancedSummary,
		&brief.KeyInsights,
		&brief.ActionItems,
		&brief.GenerationTier,
		&brief.FocusAreas,
		&brief.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return brief, nil
}

// ListByUserID retrieves all briefs belonging to a user
func (r *BriefRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Brief, error) {
	query := `
		SELECT id, document_id, user_id, title, content, summary,
		       enhanced_summary, key_insights, action_items, generation_tier, focus_areas, created_at
		FROM briefs
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var briefs []*models.Brief
	for rows.Next() {
		brief := &models.Brief{}
		err := rows.Scan(
			&brief.ID,
			&brief.DocumentID,
			&brief.UserID,
			&brief.Title,
			&brief.Content,
			&brief.Summary,
			&brief.EnhancedSummary,
			&brief.KeyInsights,
			&brief.ActionItems,
			&brief.GenerationTier,
			&brief.FocusAreas,
			&brief.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		briefs = append(briefs, brief)
	}

	return briefs, rows.Err()
}

// Delete deletes a brief record
func (r *BriefRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM briefs WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
