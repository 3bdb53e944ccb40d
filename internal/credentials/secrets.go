package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/cloudcrm/odoo-order-sync/internal/aws"
)

// SecretsProvider fetches the bundle from AWS Secrets Manager and caches it
// for the lifetime of the process. Warm Lambda invocations reuse the cached
// bundle without touching the secret again; the cache is never invalidated.
type SecretsProvider struct {
	client   aws.SecretsManagerAPI
	secretID string

	mu     sync.Mutex
	cached *Bundle
}

// NewSecretsProvider returns a provider bound to one secret ARN or name.
func NewSecretsProvider(client aws.SecretsManagerAPI, secretID string) *SecretsProvider {
	return &SecretsProvider{client: client, secretID: secretID}
}

func (p *SecretsProvider) Credentials(ctx context.Context) (Bundle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil {
		return *p.cached, nil
	}

	if p.secretID == "" {
		return Bundle{}, &ConfigError{Missing: []string{"ODOO_SECRET_ARN"}}
	}

	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &p.secretID,
	})
	if err != nil {
		return Bundle{}, &ConfigError{Reason: fmt.Sprintf("fetch secret %s: %v", p.secretID, err)}
	}

	raw := out.SecretBinary
	if out.SecretString != nil {
		raw = []byte(*out.SecretString)
	}

	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return Bundle{}, &ConfigError{Reason: fmt.Sprintf("secret %s is not valid JSON: %v", p.secretID, err)}
	}
	b.URL = strings.TrimRight(b.URL, "/")

	if missing := b.missingKeys(); len(missing) > 0 {
		return Bundle{}, &ConfigError{Missing: missing, Reason: "secret missing keys"}
	}

	p.cached = &b
	return b, nil
}
