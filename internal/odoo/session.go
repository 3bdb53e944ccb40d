package odoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"github.com/cloudcrm/odoo-order-sync/internal/credentials"
)

// SessionClient authenticates through /web/session/authenticate and relies on
// the session cookie for subsequent calls. One client instance owns one
// cookie jar and therefore one server-side session.
type SessionClient struct {
	bundle        credentials.Bundle
	hc            *http.Client
	authenticated bool
}

// NewSessionClient builds a session-cookie client for the given credentials.
func NewSessionClient(bundle credentials.Bundle) *SessionClient {
	jar, _ := cookiejar.New(nil)
	return &SessionClient{
		bundle: bundle,
		hc: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
	}
}

// Authenticate opens the web session. Success requires a truthy uid in the
// result; the session cookie lands in the jar as a side effect.
func (c *SessionClient) Authenticate(ctx context.Context) error {
	result, err := postJSON(ctx, c.hc, c.bundle.URL+"/web/session/authenticate", rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params: map[string]any{
			"login":    c.bundle.Login,
			"password": c.bundle.Secret,
			"db":       c.bundle.Database,
		},
	})
	if err != nil {
		return err
	}

	var session map[string]any
	if err := json.Unmarshal(result, &session); err != nil {
		return &RPCError{Message: fmt.Sprintf("unexpected authenticate result: %s", result)}
	}
	if !truthy(session["uid"]) {
		return &RPCError{Message: "authentication failed: no uid returned"}
	}

	c.authenticated = true
	return nil
}

// SearchRead runs model.search_read through /web/dataset/call_kw, reusing the
// session cookie from Authenticate.
func (c *SessionClient) SearchRead(ctx context.Context, model string, fields []string, limit int, order string) ([]map[string]any, error) {
	if !c.authenticated {
		return nil, &RPCError{Message: "not authenticated"}
	}

	result, err := postJSON(ctx, c.hc, c.bundle.URL+"/web/dataset/call_kw", rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params: map[string]any{
			"model":  model,
			"method": "search_read",
			"args":   []any{},
			"kwargs": map[string]any{
				"fields": fields,
				"limit":  limit,
				"order":  order,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	var records []map[string]any
	if err := json.Unmarshal(result, &records); err != nil {
		return nil, &RPCError{Message: fmt.Sprintf("unexpected search_read result: %s", result)}
	}
	return records, nil
}
