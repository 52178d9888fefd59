package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Account: "demo",
		Secret:  []byte("0123456789abcdef0123456789abcdef"),
		TTL:     time.Minute,
	}
}

func TestGenerateValidate(t *testing.T) {
	cfg := testConfig()

	tok, err := Generate(cfg, "West US 2")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := Validate(cfg, tok)
	require.NoError(t, err)
	assert.Equal(t, "West US 2", claims.Region)
	assert.Equal(t, "demo", claims.Issuer)
}

func TestValidate_WrongSecret(t *testing.T) {
	cfg := testConfig()
	tok, err := Generate(cfg, "West US 2")
	require.NoError(t, err)

	other := cfg
	other.Secret = []byte("another-secret-another-secret-000")

	_, err = Validate(other, tok)
	assert.Error(t, err)
}

func TestValidate_WrongAccount(t *testing.T) {
	cfg := testConfig()
	tok, err := Generate(cfg, "West US 2")
	require.NoError(t, err)

	other := cfg
	other.Account = "prod"

	_, err = Validate(other, tok)
	assert.ErrorIs(t, err, ErrAccountMismatch)
}

func TestValidate_Expired(t *testing.T) {
	cfg := testConfig()
	cfg.TTL = time.Nanosecond

	tok, err := Generate(cfg, "r")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	_, err = Validate(cfg, tok)
	assert.Error(t, err)
}

func TestValidate_Garbage(t *testing.T) {
	_, err := Validate(testConfig(), "not-a-token")
	assert.Error(t, err)
}
