// Package credentials resolves the Odoo credential bundle from either the
// environment or AWS Secrets Manager.
package credentials

import (
	"context"
	"fmt"
	"strings"
)

// Bundle holds everything needed to reach one Odoo database.
type Bundle struct {
	URL      string `json:"ODOO_URL"`
	Database string `json:"ODOO_DB"`
	Login    string `json:"ODOO_EMAIL"`
	Secret   string `json:"ODOO_PASSWORD"`
}

// missingKeys returns the names of empty bundle fields, using the external
// key names so error messages match what the operator has to fix.
func (b Bundle) missingKeys() []string {
	var missing []string
	if b.URL == "" {
		missing = append(missing, "ODOO_URL")
	}
	if b.Database == "" {
		missing = append(missing, "ODOO_DB")
	}
	if b.Login == "" {
		missing = append(missing, "ODOO_EMAIL")
	}
	if b.Secret == "" {
		missing = append(missing, "ODOO_PASSWORD")
	}
	return missing
}

// Provider yields a credential bundle. Implementations may cache; the bundle
// is immutable once returned.
type Provider interface {
	Credentials(ctx context.Context) (Bundle, error)
}

// ConfigError reports missing or unusable configuration. It enumerates every
// missing item so a single failed run surfaces the full fix.
type ConfigError struct {
	Missing []string
	Reason  string
}

func (e *ConfigError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing configuration: %s", strings.Join(e.Missing, ", "))
	}
	return e.Reason
}
