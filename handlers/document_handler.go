package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"lexbrief-backend/models"
	"lexbrief-backend/repository"
	"lexbrief-backend/service"
	"lexbrief-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler handles HTTP requests for document operations
type DocumentHandler struct {
	documentRepo     *repository.DocumentRepository
	documentService  *service.DocumentService
	storage          storage.Storage
	maxFileSize      int64
	allowedMimeTypes map[string]bool
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentRepo *repository.DocumentRepository, documentService *service.DocumentService, fileStorage storage.Storage) *DocumentHandler {
	return &DocumentHandler{
		documentRepo:    documentRepo,
		documentService: documentService,
		storage:         fileStorage,
		maxFileSize:     10 * 1024 * 1024, // 10MB
		allowedMimeTypes: map[string]bool{
			"application/pdf":    true,
			"text/plain":         true,
			"application/msword": true, // .doc
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true, // .docx
		},
	}
}

// UploadDocument handles POST /api/documents
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	userIDStr := c.PostForm("user_id")
	if userIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_USER_ID",
				"message": "user_id is required",
			},
		})
		return
	}
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

	// Get file from form
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	// Validate file size
	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize),
			},
		})
		return
	}

	// Open file
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	// Determine MIME type
	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		// Try to infer from extension
		filename := strings.ToLower(fileHeader.Filename)
		switch {
		case strings.HasSuffix(filename, ".pdf"):
			mimeType = "application/pdf"
		case strings.HasSuffix(filename, ".txt"):
			mimeType = "text/plain"
		case strings.HasSuffix(filename, ".doc"):
			mimeType = "application/msword"
		case strings.HasSuffix(filename, ".docx"):
			mimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		default:
			mimeType = "application/octet-stream"
		}
	}

	// Validate MIME type
	if !h.allowedMimeTypes[mimeType] && !strings.HasPrefix(mimeType, "text/") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "File type not allowed. Allowed types: PDF, TXT, DOC, DOCX",
			},
		})
		return
	}

	// Generate document ID
	documentID := uuid.New()

	// Upload to storage
	storagePath, err := h.storage.Upload(c.Request.Context(), documentID, fileHeader.Filename, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": fmt.Sprintf("Failed to upload document: %v", err),
			},
		})
		return
	}

	// Create document record in database
	doc := &models.Document{
		ID:           documentID,
		UserID:       userID,
		Filename:     fileHeader.Filename,
		MimeType:     mimeType,
		Size:         fileHeader.Size,
		StoragePath:  storagePath,
		DocumentType: models.DocTypeUnknown,
	}

	err = h.documentRepo.Create(c.Request.Context(), doc)
	if err != nil {
		// Try to clean up uploaded document
		h.storage.Delete(c.Request.Context(), storagePath)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": fmt.Sprintf("Failed to save document record: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"id":         doc.ID,
			"filename":   doc.Filename,
			"mime_type":  doc.MimeType,
			"size":       doc.Size,
			"created_at": doc.CreatedAt,
		},
	})
}

// GetDocument handles GET /api/documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
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

	doc, err := h.documentRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Document not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    doc,
	})
}

// ListDocuments handles GET /api/documents?user_id=
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
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

	docs, err := h.documentRepo.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": fmt.Sprintf("Failed to list documents: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    docs,
	})
}

// AnalyzeDocumentRequest is the JSON body for document analysis
type AnalyzeDocumentRequest struct {
	MaxTopics int `json:"max_topics"`
}

// AnalyzeDocument handles POST /api/documents/:id/analyze
func (h *DocumentHandler) AnalyzeDocument(c *gin.Context) {
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

	var req AnalyzeDocumentRequest
	// Body is optional
	_ = c.ShouldBindJSON(&req)

	result, err := h.documentService.AnalyzeDocument(c.Request.Context(), service.AnalyzeDocumentRequest{
		DocumentID: id,
		MaxTopics:  req.MaxTopics,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDocumentNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Document not found",
				},
			})
		case errors.Is(err, service.ErrEmptyDocument):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMPTY_DOCUMENT",
					"message": "Document text is empty",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ANALYSIS_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"document_id":   result.Document.ID,
			"document_type": result.DocumentType,
			"citations":     result.Citations,
			"validations":   result.Records,
			"topics":        result.Topics,
			"entities":      result.Entities,
			"key_phrases":   result.KeyPhrases,
		},
	})
}

// AnalyzeTextRequest is the JSON body for freeform text analysis
type AnalyzeTextRequest struct {
	Text      string `json:"text"`
	MaxTopics int    `json:"max_topics"`
}

// AnalyzeText handles POST /api/analyze
func (h *DocumentHandler) AnalyzeText(c *gin.Context) {
	var req AnalyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Request body must contain text",
			},
		})
		return
	}

	result, err := h.documentService.AnalyzeText(c.Request.Context(), service.AnalyzeTextRequest{
		Text:      req.Text,
		MaxTopics: req.MaxTopics,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyDocument) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMPTY_TEXT",
					"message": "Text is required",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYSIS_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"document_type": result.DocumentType,
			"topics":        result.Topics,
			"entities":      result.Entities,
			"key_phrases":   result.KeyPhrases,
		},
	})
}
