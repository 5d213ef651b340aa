package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// A nil reply means every call was a notification.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) []byte {
	body = bytes.TrimSpace(body)

	if !json.Valid(body) {
		return ErrorBody(ParseError("request body is not valid JSON"))
	}

	if len(body) > 0 && body[0] == '[' {
		return d.dispatchBatch(ctx, body)
	}

	res := d.handle(ctx, body)
	if res == nil {
		return nil
	}
	return encodeReply(res)
}

func (d *Dispatcher) dispatchBatch(ctx context.Context, body []byte) []byte {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return ErrorBody(ParseError(err.Error()))
	}

	if len(items) == 0 {
		return ErrorBody(InvalidRequest("empty batch"))
	}

	replies := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		if res := d.handle(ctx, item); res != nil {
			replies = append(replies, encodeReply(res))
		}
	}

	if len(replies) == 0 {
		return nil
	}

	out, err := json.Marshal(replies)
	if err != nil {
		slog.Error("error encoding rpc batch", "error", err)
		return ErrorBody(InternalError("response could not be encoded"))
	}
	return out
}

func (d *Dispatcher) handle(ctx context.Context, raw json.RawMessage) *jsonrpc.Response {
	hasID, rpcErr := checkMembers(raw)
	if rpcErr != nil {
		return errorReply(jsonrpc.ID{}, rpcErr)
	}

	msg, err := jsonrpc.DecodeMessage(raw)
	if err != nil {
		return errorReply(jsonrpc.ID{}, InvalidRequest(err.Error()))
	}

	req, ok := msg.(*jsonrpc.Request)
	if !ok {
		// without a method the message decodes as a response
		var id jsonrpc.ID
		if res, isRes := msg.(*jsonrpc.Response); isRes {
			id = res.ID
		}
		return errorReply(id, InvalidRequest("method is required"))
	}

	result, rpcErr := d.call(ctx, req)

	// an explicit null id is still a call and gets a reply
	if !hasID {
		return nil
	}

	if rpcErr != nil {
		return errorReply(req.ID, rpcErr)
	}
	return resultReply(req.ID, result)
}

var envelopeMembers = []string{"jsonrpc", "id", "method", "params", "result", "error"}

// checkMembers rejects envelope members spelled in another case, which the
// decoder would otherwise fold onto the real ones, and reports whether the
// id member is present at all.
func checkMembers(raw json.RawMessage) (hasID bool, rpcErr *Error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return false, InvalidRequest("request must be an object")
	}

	for key := range members {
		for _, name := range envelopeMembers {
			if key != name && strings.EqualFold(key, name) {
				return false, InvalidRequest(fmt.Sprintf("unknown member %q, expected %q", key, name))
			}
		}
	}

	_, hasID = members["id"]
	return hasID, nil
}

func (d *Dispatcher) call(ctx context.Context, req *jsonrpc.Request) (result any, rpcErr *Error) {
	method, ok := d.registry.Lookup(req.Method)
	if !ok {
		slog.Warn("rpc method not found", "method", req.Method)
		return nil, MethodNotFound(req.Method)
	}

	params, perr := normalizeParams(req.Params)
	if perr != nil {
		return nil, perr
	}

	if method.resolved != nil {
		var instance any
		if err := json.Unmarshal(params, &instance); err != nil {
			return nil, InvalidParams(err.Error())
		}
		if err := method.resolved.Validate(instance); err != nil {
			return nil, InvalidParams(err.Error())
		}
	}

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			slog.Error("rpc handler panicked", "method", req.Method, "panic", p)
			result, rpcErr = nil, InternalError(fmt.Sprint(p))
		}
	}()

	res, err := method.Handler(ctx, params)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			slog.Warn("rpc call rejected", "method", req.Method, "code", e.Code, "error", e.Message)
			return nil, e
		}
		slog.Error("rpc call failed", "method", req.Method, "error", err, "duration", time.Since(start))
		return nil, InternalError(err.Error())
	}

	slog.Info("rpc call", "method", req.Method, "duration", time.Since(start))
	return res, nil
}

func normalizeParams(raw json.RawMessage) (json.RawMessage, *Error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("{}"), nil
	}
	if trimmed[0] != '{' {
		return nil, InvalidParams("params must be an object")
	}
	return trimmed, nil
}
