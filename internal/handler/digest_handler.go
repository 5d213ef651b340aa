package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Aida-adzd/smart-news-summarizer/internal/model"
	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type DigestStore interface {
	GetDigests(ctx context.Context, limit, offset int) ([]model.Digest, error)
	GetDigestTotal(ctx context.Context) (int, error)
	GetDigestByID(ctx context.Context, id int64) (*model.Digest, error)
}

type DigestHandler struct {
	repository DigestStore
}

func NewDigestHandler(repository DigestStore) *DigestHandler {
	return &DigestHandler{repository: repository}
}

func listDigests(ctx context.Context, store DigestStore, limit, offset int) ([]DigestResponse, int, error) {
	digests, err := store.GetDigests(ctx, limit, offset)
	if err != nil {
		slog.Error("error fetching digests", "error", err)
		return nil, 0, err
	}

	total, err := store.GetDigestTotal(ctx)
	if err != nil {
		slog.Error("error fetching digest total", "error", err)
		return nil, 0, err
	}

	res := make([]DigestResponse, 0, len(digests))
	for _, d := range digests {
		res = append(res, toDigestResponse(d, false))
	}

	return res, total, nil
}

func (h *DigestHandler) GetDigests(c *gin.Context) {
	limit := getQueryLimit(c)
	offset := getQueryOffset(c)

	digests, total, err := listDigests(c.Request.Context(), h.repository, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, DigestsResponse{
		Digests: digests,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

func (h *DigestHandler) GetDigest(c *gin.Context) {
	id := c.Param("id")

	digestID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		slog.Error("invalid digest id", "id", id, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid digest id"})
		return
	}

	d, err := h.repository.GetDigestByID(c.Request.Context(), digestID)
	if err != nil {
		slog.Error("error fetching digest", "error", err, "digest_id", digestID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Digest not found"})
		return
	}

	c.JSON(http.StatusOK, toDigestResponse(*d, true))
}

type HealthHandler struct {
	repository DigestStore
}

func NewHealthHandler(repository DigestStore) *HealthHandler {
	return &HealthHandler{repository: repository}
}

func (h *HealthHandler) GetHealth(c *gin.Context) {
	if h.repository == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "disabled",
		})
		return
	}

	_, err := h.repository.GetDigestTotal(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

func getQueryInt(name string, defaultValue int, c *gin.Context) int {
	paramValue := c.Query(name)

	if paramValue == "" {
		return defaultValue
	}

	parsedValue, err := strconv.Atoi(paramValue)
	if err != nil {
		slog.Warn("invalid query parameter, using default", "param", name, "value", paramValue, "error", err)
		return defaultValue
	}

	return parsedValue
}

func getQueryLimit(c *gin.Context) int {
	limit := getQueryInt("limit", defaultLimit, c)
	if limit < 1 {
		slog.Warn("invalid query parameter, using default", "param", "limit", "value", limit, "default", defaultLimit)
		return defaultLimit
	}

	if limit > maxLimit {
		slog.Warn("query parameter exceeds max, clamping", "param", "limit", "value", limit, "max", maxLimit)
		return maxLimit
	}

	return limit
}

func getQueryOffset(c *gin.Context) int {
	offset := getQueryInt("offset", 0, c)
	if offset < 0 {
		slog.Warn("invalid query parameter, using default", "param", "offset", "value", offset, "default", 0)
		return 0
	}
	return offset
}
