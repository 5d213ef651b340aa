package handler

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Aida-adzd/smart-news-summarizer/internal/rpc"
	"github.com/gin-gonic/gin"
)

const APIKeyHeader = "X-MCP-API-KEY"

const maxRPCBodyBytes = 1 << 20

type RPCHandler struct {
	dispatcher *rpc.Dispatcher
}

func NewRPCHandler(dispatcher *rpc.Dispatcher) *RPCHandler {
	return &RPCHandler{dispatcher: dispatcher}
}

// The rejection is itself a JSON-RPC error so clients can parse it.
func RequireAPIKey(apiKey string) gin.HandlerFunc {
	expected := []byte(apiKey)

	return func(c *gin.Context) {
		got := []byte(c.GetHeader(APIKeyHeader))
		if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
			slog.Warn("rejected json-rpc request", "remote", c.ClientIP(), "has_key", len(got) > 0)
			c.Data(http.StatusUnauthorized, "application/json", rpc.ErrorBody(rpc.Unauthorized()))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *RPCHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxRPCBodyBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		slog.Warn("json-rpc body too large", "remote", c.ClientIP(), "limit", tooLarge.Limit)
		detail := fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)
		c.Data(http.StatusRequestEntityTooLarge, "application/json", rpc.ErrorBody(rpc.InvalidRequest(detail)))
		return
	}
	if err != nil {
		slog.Error("error reading json-rpc body", "error", err)
		c.Data(http.StatusOK, "application/json", rpc.ErrorBody(rpc.ParseError(err.Error())))
		return
	}

	res := h.dispatcher.Dispatch(c.Request.Context(), body)
	if res == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.Data(http.StatusOK, "application/json", res)
}
