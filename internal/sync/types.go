package sync

import "github.com/cloudcrm/odoo-order-sync/internal/orders"

// Event is the invocation input. {test:true} short-circuits the run without
// any network or store interaction; the REST trigger may carry a fetch limit
// override.
type Event struct {
	Test  bool `json:"test,omitempty"`
	Limit int  `json:"limit,omitempty"`
}

// Result is the invocation output. Exactly one of Records or Error is set
// for a real run; the caller never sees a raised error.
type Result struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message,omitempty"`
	Records    []orders.Record `json:"records,omitempty"`
	Error      string          `json:"error,omitempty"`
}
