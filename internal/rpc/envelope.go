package rpc

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

const Version = "2.0"

const (
	CodeParseError     = jsonrpc.CodeParseError
	CodeInvalidRequest = jsonrpc.CodeInvalidRequest
	CodeMethodNotFound = jsonrpc.CodeMethodNotFound
	CodeInvalidParams  = jsonrpc.CodeInvalidParams
	CodeInternalError  = jsonrpc.CodeInternalError
	CodeToolError      = -32000
	CodeUnauthorized   = -32001
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("rpc error %d: %s (%v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func NewError(code int, message string, data any) *Error {
	return &Error{Code: code, Message: message, Data: data}
}

func ParseError(detail string) *Error {
	return NewError(CodeParseError, "Parse error", detail)
}

func InvalidRequest(detail string) *Error {
	return NewError(CodeInvalidRequest, "Invalid Request", detail)
}

func MethodNotFound(method string) *Error {
	return NewError(CodeMethodNotFound, "Method not found", method)
}

func InvalidParams(detail string) *Error {
	return NewError(CodeInvalidParams, "Invalid params", detail)
}

func InternalError(detail string) *Error {
	return NewError(CodeInternalError, "Internal error", detail)
}

// ToolError is what a handler returns when the tool ran but its work failed,
// e.g. the mail transport rejected the message.
func ToolError(message string) *Error {
	return NewError(CodeToolError, message, nil)
}

func Unauthorized() *Error {
	return NewError(CodeUnauthorized, "Unauthorized", "missing or invalid API key")
}

func (e *Error) wire() *jsonrpc.Error {
	w := &jsonrpc.Error{Code: int64(e.Code), Message: e.Message}
	if e.Data != nil {
		data, err := json.Marshal(e.Data)
		if err != nil {
			data, _ = json.Marshal(fmt.Sprint(e.Data))
		}
		w.Data = data
	}
	return w
}

func fromWire(w *jsonrpc.Error) *Error {
	e := &Error{Code: int(w.Code), Message: w.Message}
	if len(w.Data) > 0 {
		if err := json.Unmarshal(w.Data, &e.Data); err != nil {
			e.Data = string(w.Data)
		}
	}
	return e
}

func resultReply(id jsonrpc.ID, result any) *jsonrpc.Response {
	if result == nil {
		result = struct{}{}
	}
	data, err := json.Marshal(result)
	if err != nil {
		slog.Error("error encoding rpc result", "error", err)
		return errorReply(id, InternalError("result could not be encoded"))
	}
	return &jsonrpc.Response{ID: id, Result: data}
}

func errorReply(id jsonrpc.ID, err *Error) *jsonrpc.Response {
	return &jsonrpc.Response{ID: id, Error: err.wire()}
}

// encodeReply writes a response to the wire. The encoder omits an unset id,
// but a reply to a request whose id is null or unreadable must carry "id": null.
func encodeReply(res *jsonrpc.Response) json.RawMessage {
	body, err := jsonrpc.EncodeMessage(res)
	if err != nil {
		slog.Error("error encoding rpc response", "error", err)
		body, _ = jsonrpc.EncodeMessage(errorReply(res.ID, InternalError("response could not be encoded")))
	}
	if res.ID.IsValid() {
		return body
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(body, &members); err != nil {
		return body
	}
	members["id"] = json.RawMessage("null")
	withID, err := json.Marshal(members)
	if err != nil {
		return body
	}
	return withID
}

// ErrorBody encodes a standalone error envelope with a null id.
func ErrorBody(err *Error) []byte {
	return encodeReply(errorReply(jsonrpc.ID{}, err))
}
