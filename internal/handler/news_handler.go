package handler

import (
	"net/http"

	"github.com/Aida-adzd/smart-news-summarizer/internal/digest"
	"github.com/gin-gonic/gin"
)

type NewsHandler struct {
	svc *digest.Service
}

func NewNewsHandler(svc *digest.Service) *NewsHandler {
	return &NewsHandler{svc: svc}
}

func (h *NewsHandler) SmartNews(c *gin.Context) {
	var req SmartNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	text := h.svc.SmartNews(c.Request.Context(), req.Message)

	c.JSON(http.StatusOK, SmartNewsResponse{NewsText: text})
}
