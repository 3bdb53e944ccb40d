package validation

// SyncRequest is the optional body for POST /sync. An empty body runs the
// sync with its configured defaults.
type SyncRequest struct {
	Test  bool `json:"test,omitempty"`
	Limit int  `json:"limit,omitempty" validate:"omitempty,min=1,max=1000"` // fetch ceiling override
}
