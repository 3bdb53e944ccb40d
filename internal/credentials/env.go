package credentials

import (
	"context"
	"os"
	"strings"
)

// EnvProvider reads the bundle straight from environment variables. Used by
// deployments that configure the Lambda directly instead of through a secret.
type EnvProvider struct{}

func (EnvProvider) Credentials(ctx context.Context) (Bundle, error) {
	b := Bundle{
		URL:      strings.TrimRight(os.Getenv("ODOO_URL"), "/"),
		Database: os.Getenv("ODOO_DB"),
		Login:    os.Getenv("ODOO_EMAIL"),
		Secret:   os.Getenv("ODOO_API_KEY"),
	}
	if missing := b.missingKeys(); len(missing) > 0 {
		// the env variant names its secret ODOO_API_KEY, not ODOO_PASSWORD
		for i, m := range missing {
			if m == "ODOO_PASSWORD" {
				missing[i] = "ODOO_API_KEY"
			}
		}
		return Bundle{}, &ConfigError{Missing: missing}
	}
	return b, nil
}
