package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardscan/backend/internal/domain"
)

// Version is reported by the health check
const Version = "1.0.0"

// multipartOverhead is allowed on top of the file size limit for form boundaries and headers
const multipartOverhead = 64 << 10

// ScanUsecase is the application logic behind the HTTP handlers
type ScanUsecase interface {
	Scan(ctx context.Context, image []byte) (*domain.ScanResult, error)
	Search(ctx context.Context, cardName, setNumber string) ([]domain.Listing, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scanner        ScanUsecase
	maxUploadBytes int64
}

// NewHandler creates a new HTTP handler. A nil scanner makes the card
// endpoints answer 503.
func NewHandler(scanner ScanUsecase, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 5 << 20
	}
	return &Handler{
		scanner:        scanner,
		maxUploadBytes: maxUploadBytes,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "cardscan-backend",
		"version": Version,
	})
}

// ScanCard runs OCR on the uploaded "file" and searches eBay for the detected card
func (h *Handler) ScanCard(c *gin.Context) {
	if h.scanner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "card scanning is not configured"})
		return
	}

	image, err := h.readUpload(c)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.scanner.Scan(c.Request.Context(), image)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchListings re-queries eBay for a card name and set number
func (h *Handler) SearchListings(c *gin.Context) {
	if h.scanner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "eBay search is not configured"})
		return
	}

	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Card name and set number are required."})
		return
	}

	listings, err := h.scanner.Search(c.Request.Context(), req.CardName, req.CardSetNumber)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, listings)
}

// readUpload returns the content of the multipart "file" field
func (h *Handler) readUpload(c *gin.Context) ([]byte, error) {
	if c.Request.ContentLength > h.maxUploadBytes+multipartOverhead {
		return nil, domain.ErrUploadTooLarge
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.ErrUploadTooLarge
		}
		return nil, fmt.Errorf("%w: No file part", domain.ErrInvalidRequest)
	}
	if header.Filename == "" {
		return nil, fmt.Errorf("%w: No selected file", domain.ErrInvalidRequest)
	}
	if header.Size > h.maxUploadBytes {
		return nil, domain.ErrUploadTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open upload: %v", domain.ErrInvalidRequest, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read upload: %v", domain.ErrInvalidRequest, err)
	}
	if int64(len(data)) > h.maxUploadBytes {
		return nil, domain.ErrUploadTooLarge
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyUpload
	}

	return data, nil
}
