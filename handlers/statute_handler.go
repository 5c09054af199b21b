package handlers

import (
	"fmt"
	"net/http"

	"lexbrief-backend/repository"
	"lexbrief-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StatuteHandler handles HTTP requests for citation and validation operations
type StatuteHandler struct {
	citationRepo *repository.CitationRepository
	validator    *service.ValidatorService
}

// NewStatuteHandler creates a new statute handler
func NewStatuteHandler(citationRepo *repository.CitationRepository, validator *service.ValidatorService) *StatuteHandler {
	return &StatuteHandler{
		citationRepo: citationRepo,
		validator:    validator,
	}
}

// ListByDocument handles GET /api/documents/:id/citations
func (h *StatuteHandler) ListByDocument(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid document ID format",
			},
		})
		return
	}

	citations, err := h.citationRepo.ListByDocumentID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": fmt.Sprintf("Failed to list citations: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    citations,
	})
}

// ListOutdated handles GET /api/citations/outdated?user_id=
func (h *StatuteHandler) ListOutdated(c *gin.Context) {
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

	citations, err := h.citationRepo.ListOutdatedByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": fmt.Sprintf("Failed to list outdated citations: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    citations,
	})
}

// Revalidate handles POST /api/citations/:id/revalidate
func (h *StatuteHandler) Revalidate(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid citation ID format",
			},
		})
		return
	}

	citation, err := h.citationRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Citation not found",
			},
		})
		return
	}

	record := h.validator.Validate(c.Request.Context(), citation)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"citation":   citation,
			"validation": record,
		},
	})
}
