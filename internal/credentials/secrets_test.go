package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSecrets is a minimal in-memory Secrets Manager used by these tests.
type mockSecrets struct {
	value    string
	binary   []byte
	err      error
	getCalls int
}

func (m *mockSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	m.getCalls++
	if m.err != nil {
		return nil, m.err
	}
	out := &secretsmanager.GetSecretValueOutput{}
	if m.value != "" {
		v := m.value
		out.SecretString = &v
	} else {
		out.SecretBinary = m.binary
	}
	return out, nil
}

const goodSecret = `{"ODOO_URL":"https://erp.example.com/","ODOO_DB":"prod","ODOO_EMAIL":"sync@example.com","ODOO_PASSWORD":"hunter2"}`

func TestSecretsProvider_FetchesOnceAndCaches(t *testing.T) {
	mock := &mockSecrets{value: goodSecret}
	p := NewSecretsProvider(mock, "arn:aws:secretsmanager:us-east-1:1:secret:odoo")

	b1, err := p.Credentials(context.Background())
	require.NoError(t, err)
	b2, err := p.Credentials(context.Background())
	require.NoError(t, err)

	assert.Equal(t, b1, b2)
	assert.Equal(t, 1, mock.getCalls, "warm calls must reuse the cached bundle")
	assert.Equal(t, "https://erp.example.com", b1.URL, "trailing slash stripped")
	assert.Equal(t, "prod", b1.Database)
}

func TestSecretsProvider_SecretBinary(t *testing.T) {
	mock := &mockSecrets{binary: []byte(goodSecret)}
	p := NewSecretsProvider(mock, "odoo")

	b, err := p.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sync@example.com", b.Login)
}

func TestSecretsProvider_MissingKeys(t *testing.T) {
	mock := &mockSecrets{value: `{"ODOO_URL":"https://erp.example.com"}`}
	p := NewSecretsProvider(mock, "odoo")

	_, err := p.Credentials(context.Background())
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.ElementsMatch(t, []string{"ODOO_DB", "ODOO_EMAIL", "ODOO_PASSWORD"}, cfgErr.Missing)
}

func TestSecretsProvider_FetchFailureNotCached(t *testing.T) {
	mock := &mockSecrets{err: errors.New("access denied")}
	p := NewSecretsProvider(mock, "odoo")

	_, err := p.Credentials(context.Background())
	require.Error(t, err)

	// a failed fetch must not poison the cache
	mock.err = nil
	mock.value = goodSecret
	_, err = p.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, mock.getCalls)
}

func TestSecretsProvider_MissingSecretID(t *testing.T) {
	p := NewSecretsProvider(&mockSecrets{}, "")
	_, err := p.Credentials(context.Background())
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Missing, "ODOO_SECRET_ARN")
}

func TestEnvProvider(t *testing.T) {
	t.Setenv("ODOO_URL", "https://erp.example.com/")
	t.Setenv("ODOO_DB", "prod")
	t.Setenv("ODOO_EMAIL", "sync@example.com")
	t.Setenv("ODOO_API_KEY", "key123")

	b, err := EnvProvider{}.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://erp.example.com", b.URL)
	assert.Equal(t, "key123", b.Secret)
}

func TestEnvProvider_ReportsAllMissing(t *testing.T) {
	t.Setenv("ODOO_URL", "")
	t.Setenv("ODOO_DB", "")
	t.Setenv("ODOO_EMAIL", "")
	t.Setenv("ODOO_API_KEY", "")

	_, err := EnvProvider{}.Credentials(context.Background())
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.ElementsMatch(t, []string{"ODOO_URL", "ODOO_DB", "ODOO_EMAIL", "ODOO_API_KEY"}, cfgErr.Missing)
}
