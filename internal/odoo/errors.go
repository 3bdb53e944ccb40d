package odoo

import "fmt"

// TransportError covers everything that went wrong below the JSON-RPC
// protocol: connection failures, timeouts, non-2xx responses. The response
// body is retained for diagnostics.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("odoo: http request failed: %v", e.Err)
	}
	return fmt.Sprintf("odoo: http status %d: %s", e.Status, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RPCError is an application-level error reported inside a 2xx JSON-RPC
// response body, or an authenticate response without a usable uid.
type RPCError struct {
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("odoo: rpc error: %s", e.Message)
}
