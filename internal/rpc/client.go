package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

type Client struct {
	url        string
	apiKey     string
	keyHeader  string
	httpClient *http.Client
}

func NewClient(url, keyHeader, apiKey string) *Client {
	return &Client{
		url:        url,
		apiKey:     apiKey,
		keyHeader:  keyHeader,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Call returns JSON-RPC error replies as *Error.
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	rawParams, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}

	id, err := jsonrpc.MakeID(uuid.NewString())
	if err != nil {
		return err
	}

	body, err := jsonrpc.EncodeMessage(&jsonrpc.Request{ID: id, Method: method, Params: rawParams})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set(c.keyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rpc call %s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	msg, err := jsonrpc.DecodeMessage(data)
	if err != nil {
		// auth and parse failures answer with a null id, which the decoder refuses
		if rpcErr := nullIDError(data); rpcErr != nil {
			return rpcErr
		}
		return fmt.Errorf("rpc call %s: status %d: %s", method, resp.StatusCode, bytes.TrimSpace(data))
	}

	res, ok := msg.(*jsonrpc.Response)
	if !ok {
		return fmt.Errorf("rpc call %s: reply is not a response", method)
	}

	if res.Error != nil {
		var w *jsonrpc.Error
		if errors.As(res.Error, &w) {
			return fromWire(w)
		}
		return InternalError(res.Error.Error())
	}

	if resp.StatusCode >= 300 {
		return fmt.Errorf("rpc call %s: status %d", method, resp.StatusCode)
	}

	if res.ID != id {
		return fmt.Errorf("rpc call %s: response id %v does not match request id %v", method, res.ID.Raw(), id.Raw())
	}

	if result == nil || len(res.Result) == 0 {
		return nil
	}

	return json.Unmarshal(res.Result, result)
}

func nullIDError(data []byte) *Error {
	var res struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Error   *jsonrpc.Error  `json:"error"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return nil
	}
	if res.JSONRPC != Version || string(res.ID) != "null" || res.Error == nil {
		return nil
	}
	return fromWire(res.Error)
}
