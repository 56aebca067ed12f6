package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docvault-go/internal/model"
	"docvault-go/internal/service"
	"docvault-go/pkg/log"
)

// SearchHandler serves the hybrid search and question answering endpoints.
type SearchHandler struct {
	searchService service.SearchService
	askService    service.AskService
}

// NewSearchHandler creates a new SearchHandler instance.
func NewSearchHandler(searchService service.SearchService, askService service.AskService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		askService:    askService,
	}
}

// Search handles POST /api/v1/search.
func (h *SearchHandler) Search(c *gin.Context) {
	var req model.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[SearchHandler] Malformed search request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	log.Infof("[SearchHandler] Received search request, query: '%s'", req.Query)

	results, err := h.searchService.Search(c.Request.Context(), req)
	if err != nil {
		log.Errorf("[SearchHandler] Search failed, query: '%s', error: %v", req.Query, err)
		respondError(c, err)
		return
	}

	log.Infof("[SearchHandler] Search succeeded, query: '%s', %d results", req.Query, len(results))
	respondOK(c, results)
}

// Ask handles POST /api/v1/ask.
func (h *SearchHandler) Ask(c *gin.Context) {
	var req service.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[SearchHandler] Malformed ask request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	log.Infof("[SearchHandler] Received ask request, query: '%s'", req.Query)

	answer, err := h.askService.Ask(c.Request.Context(), req)
	if err != nil {
		log.Errorf("[SearchHandler] Ask failed, query: '%s', error: %v", req.Query, err)
		respondError(c, err)
		return
	}
	respondOK(c, answer)
}
