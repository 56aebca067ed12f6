package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"docvault-go/internal/service"
	"docvault-go/pkg/log"
)

// DocumentHandler serves the document catalog and upload endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler instance.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// uploadResult reports the outcome of one file in a multi-file upload.
// One bad file must not sink the rest of the batch.
type uploadResult struct {
	Source string `json:"source"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Upload handles POST /api/v1/documents. It accepts one or more files in
// the multipart field "files" and enqueues each accepted file for
// background indexing.
func (h *DocumentHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		log.Warnf("[DocumentHandler] Malformed multipart form: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}
	log.Infof("[DocumentHandler] Received upload, %d files", len(files))

	results := make([]uploadResult, 0, len(files))
	for _, fh := range files {
		source := filepath.Base(fh.Filename)

		f, err := fh.Open()
		if err != nil {
			results = append(results, uploadResult{Source: source, Status: "rejected", Error: err.Error()})
			continue
		}
		raw, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			results = append(results, uploadResult{Source: source, Status: "rejected", Error: err.Error()})
			continue
		}

		if err := h.documentService.Ingest(c.Request.Context(), source, modTimeOf(fh.Header.Get("Last-Modified")), raw); err != nil {
			log.Errorf("[DocumentHandler] Ingest rejected, source: %s, error: %v", source, err)
			results = append(results, uploadResult{Source: source, Status: "rejected", Error: err.Error()})
			continue
		}
		results = append(results, uploadResult{Source: source, Status: "accepted"})
	}
	respondOK(c, results)
}

// modTimeOf parses the optional Last-Modified part header; uploads without
// one are stamped with the time of receipt.
func modTimeOf(header string) time.Time {
	if header != "" {
		if t, err := http.ParseTime(header); err == nil {
			return t
		}
	}
	return time.Now()
}

// List handles GET /api/v1/documents.
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documentService.List()
	if err != nil {
		log.Errorf("[DocumentHandler] Failed to list documents: %v", err)
		respondError(c, err)
		return
	}
	respondOK(c, docs)
}

// Delete handles DELETE /api/v1/documents/:source.
func (h *DocumentHandler) Delete(c *gin.Context) {
	source := c.Param("source")
	if err := h.documentService.Delete(c.Request.Context(), source); err != nil {
		log.Errorf("[DocumentHandler] Failed to delete document, source: %s, error: %v", source, err)
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"source": source})
}
