package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"lexbrief-backend/repository"
	"lexbrief-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BriefHandler handles HTTP requests for brief operations
type BriefHandler struct {
	briefService *service.BriefService
	briefRepo    *repository.BriefRepository
	documentRepo *repository.DocumentRepository
	source       service.DocumentSource
}

// NewBriefHandler creates a new brief handler
func NewBriefHandler(briefService *service.BriefService, briefRepo *repository.BriefRepository, documentRepo *repository.DocumentRepository, source service.DocumentSource) *BriefHandler {
	return &BriefHandler{
		briefService: briefService,
		briefRepo:    briefRepo,
		documentRepo: documentRepo,
		source:       source,
	}
}

// GenerateBriefRequest is the JSON body for brief generation
type GenerateBriefRequest struct {
	DocumentID string   `json:"document_id" binding:"required"`
	Title      *string  `json:"title"`
	FocusAreas []string `json:"focus_areas"`
}

// GenerateBrief handles POST /api/briefs
func (h *BriefHandler) GenerateBrief(c *gin.Context) {
	var req GenerateBriefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "document_id is required",
			},
		})
		return
	}

	documentID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DOCUMENT_ID",
				"message": "Invalid document_id format",
			},
		})
		return
	}

	doc, err := h.documentRepo.GetByID(c.Request.Context(), documentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOCUMENT_NOT_FOUND",
				"message": "Document not found",
			},
		})
		return
	}

	text, err := h.source.ReadText(c.Request.Context(), doc.StoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOCUMENT_READ_ERROR",
				"message": fmt.Sprintf("Failed to read document text: %v", err),
			},
		})
		return
	}

	brief, err := h.briefService.Generate(c.Request.Context(), service.GenerateBriefRequest{
		Document:    doc,
		Text:        text,
		CustomTitle: req.Title,
		FocusAreas:  req.FocusAreas,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyDocument) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMPTY_DOCUMENT",
					"message": "Document text is empty",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "GENERATION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    brief,
	})
}

// GetBrief handles GET /api/briefs/:id
func (h *BriefHandler) GetBrief(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid brief ID format",
			},
		})
		return
	}

	brief, err := h.briefService.GetBrief(c.Request.Context(), service.GetBriefRequest{BriefID: id})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Brief not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    brief,
	})
}

// ListBriefs handles GET /api/briefs?user_id=
func (h *BriefHandler) ListBriefs(c *gin.Context) {
	userIDStr := c.Query("user_id")
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return
	}

	briefs, err := h.briefRepo.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": fmt.Sprintf("Failed to list briefs: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    briefs,
	})
}

// DeleteBrief handles DELETE /api/briefs/:id
func (h *BriefHandler) DeleteBrief(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid brief ID format",
			},
		})
		return
	}

	if _, err := h.briefRepo.GetByID(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Brief not found",
			},
		})
		return
	}

	if err := h.briefRepo.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": fmt.Sprintf("Failed to delete brief: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"deleted": true,
		},
	})
}
