package odoo

import "github.com/cloudcrm/odoo-order-sync/internal/credentials"

// Auth modes selectable through ODOO_AUTH_MODE.
const (
	ModeJSONRPC = "jsonrpc"
	ModeSession = "session"
)

// NewClient picks the auth variant for the given mode. Anything that is not
// the session mode gets the stateless client.
func NewClient(mode string, bundle credentials.Bundle) Client {
	if mode == ModeSession {
		return NewSessionClient(bundle)
	}
	return NewJSONRPCClient(bundle)
}
