// Package odoo implements the JSON-RPC client used to pull records out of an
// Odoo instance. Two authentication variants exist behind one interface: a
// session-cookie client (web/session) and a stateless client that re-supplies
// credentials on every call (jsonrpc endpoint).
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds every HTTP exchange with the Odoo server.
const DefaultTimeout = 30 * time.Second

// maxResponseSize caps how much of an Odoo response is read (10MB).
const maxResponseSize = 10 * 1024 * 1024

// Client is the capability set the sync depends on. Authenticate must be
// called before SearchRead; a client instance is valid for exactly one
// endpoint and database.
type Client interface {
	Authenticate(ctx context.Context) error
	SearchRead(ctx context.Context, model string, fields []string, limit int, order string) ([]map[string]any, error)
}

// rpcRequest is the JSON-RPC 2.0 envelope Odoo expects.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int    `json:"id,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// postJSON performs one request/response exchange and surfaces failures per
// the error taxonomy: transport problems as *TransportError (body retained),
// an error member in the response as *RPCError. The raw result is returned
// undecoded so each call site can pick its own shape.
func postJSON(ctx context.Context, hc *http.Client, url string, payload rpcRequest) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Status: resp.StatusCode, Body: string(raw)}
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return nil, &TransportError{Status: resp.StatusCode, Body: string(raw), Err: err}
	}
	if len(rpcResp.Error) > 0 && string(rpcResp.Error) != "null" {
		return nil, &RPCError{Message: string(rpcResp.Error)}
	}

	return rpcResp.Result, nil
}

// truthy mirrors Odoo's loose typing: absent, null, false, 0 and "" all mean
// "no value".
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
