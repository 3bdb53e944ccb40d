package odoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cloudcrm/odoo-order-sync/internal/credentials"
)

// JSONRPCClient talks to the /jsonrpc endpoint. There is no server-side
// session: the database, uid and secret ride along on every call.
type JSONRPCClient struct {
	bundle credentials.Bundle
	hc     *http.Client
	uid    any
	nextID int
}

// NewJSONRPCClient builds a stateless client for the given credentials.
func NewJSONRPCClient(bundle credentials.Bundle) *JSONRPCClient {
	return &JSONRPCClient{
		bundle: bundle,
		hc:     &http.Client{Timeout: DefaultTimeout},
	}
}

func (c *JSONRPCClient) endpoint() string {
	return c.bundle.URL + "/jsonrpc"
}

func (c *JSONRPCClient) call(ctx context.Context, service, method string, args []any) (json.RawMessage, error) {
	c.nextID++
	return postJSON(ctx, c.hc, c.endpoint(), rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params: map[string]any{
			"service": service,
			"method":  method,
			"args":    args,
		},
		ID: c.nextID,
	})
}

// Authenticate resolves the uid for the configured database and login. Odoo
// returns false instead of a uid when the credentials are wrong.
func (c *JSONRPCClient) Authenticate(ctx context.Context) error {
	result, err := c.call(ctx, "common", "authenticate", []any{
		c.bundle.Database, c.bundle.Login, c.bundle.Secret, map[string]any{},
	})
	if err != nil {
		return err
	}

	var uid any
	if err := json.Unmarshal(result, &uid); err != nil {
		return &RPCError{Message: fmt.Sprintf("unexpected authenticate result: %s", result)}
	}
	if !truthy(uid) {
		return &RPCError{Message: "authentication failed: no uid returned"}
	}

	c.uid = uid
	return nil
}

// SearchRead runs model.search_read through execute_kw and decodes the
// records as loosely-typed maps.
func (c *JSONRPCClient) SearchRead(ctx context.Context, model string, fields []string, limit int, order string) ([]map[string]any, error) {
	if c.uid == nil {
		return nil, &RPCError{Message: "not authenticated"}
	}

	result, err := c.call(ctx, "object", "execute_kw", []any{
		c.bundle.Database, c.uid, c.bundle.Secret,
		model, "search_read", []any{},
		map[string]any{
			"fields": fields,
			"order":  order,
			"limit":  limit,
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
