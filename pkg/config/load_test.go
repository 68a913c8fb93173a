package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "unit-test-secret")

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.Jwt.Expiry)
	assert.Equal(t, "memory", cfg.EventBus.Driver)
	assert.Equal(t, "by_type", cfg.Ledger.WithdrawalDebit)
	assert.True(t, cfg.Site.WithdrawalCharge.IsZero())
	assert.Equal(t, "https://api.binance.com", cfg.PriceTicker.BaseURL)
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env.unit")
	content := "AUTH_JWT_SECRET=from-file\nLEDGER_WITHDRAWAL_DEBIT=legacy_deposit\nSITE_WITHDRAWAL_CHARGE=12.50\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("AUTH_JWT_SECRET")
		_ = os.Unsetenv("LEDGER_WITHDRAWAL_DEBIT")
		_ = os.Unsetenv("SITE_WITHDRAWAL_CHARGE")
	})

	cfg, err := Load(".env.unit")
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Auth.Jwt.Secret)
	assert.Equal(t, "legacy_deposit", cfg.Ledger.WithdrawalDebit)
	assert.Equal(t, "12.5", cfg.Site.WithdrawalCharge.String())
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "unit-test-secret")
	t.Setenv("LEDGER_WITHDRAWAL_DEBIT", "whatever")

	_, err := Load("does-not-exist.env")
	assert.Error(t, err)
}

func TestLoadRequiresJwtSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "placeholder")
	require.NoError(t, os.Unsetenv("AUTH_JWT_SECRET"))

	_, err := Load("does-not-exist.env")
	assert.Error(t, err)
}

func TestMaskValue(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", maskValue(""))
	assert.Equal(t, "****", maskValue("abc"))
	assert.Equal(t, "ab****6789", maskValue("abcdef6789"))
}

func TestFindEnvFileWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env.walk"), []byte("X=1\n"), 0o600))
	t.Chdir(nested)

	found, err := FindEnvFile(".env.walk")
	require.NoError(t, err)
	assert.Equal(t, ".env.walk", filepath.Base(found))

	_, err = FindEnvFile(".env.absent")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
