package config_test

import (
	"testing"
	"time"

	"github.com/Nzyazin/payouts/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigPayoutsDefaults(t *testing.T) {
	t.Setenv("MIN_AMOUNT", "")
	t.Setenv("PROCESSING_DELAY", "")
	t.Setenv("CARD_NUMBER_LENGTH", "")
	t.Setenv("ACCOUNT_NUMBER_LENGTH", "")

	cfg, err := config.LoadConfigPayouts()
	require.NoError(t, err)

	assert.True(t, cfg.MinAmount.Equal(decimal.Zero))
	assert.Equal(t, 5*time.Second, cfg.ProcessingDelay)
	assert.Equal(t, 16, cfg.CardNumberLength)
	assert.Equal(t, 20, cfg.AccountNumberLength)
}

func TestLoadConfigPayoutsOverrides(t *testing.T) {
	t.Setenv("MIN_AMOUNT", "10.50")
	t.Setenv("PROCESSING_DELAY", "250ms")
	t.Setenv("CARD_NUMBER_LENGTH", "19")
	t.Setenv("ACCOUNT_NUMBER_LENGTH", "22")

	cfg, err := config.LoadConfigPayouts()
	require.NoError(t, err)

	assert.True(t, cfg.MinAmount.Equal(decimal.RequireFromString("10.50")))
	assert.Equal(t, 250*time.Millisecond, cfg.ProcessingDelay)
	assert.Equal(t, 19, cfg.CardNumberLength)
	assert.Equal(t, 22, cfg.AccountNumberLength)
}

func TestLoadConfigPayoutsRejectsGarbage(t *testing.T) {
	t.Setenv("MIN_AMOUNT", "ten")

	_, err := config.LoadConfigPayouts()
	assert.Error(t, err)
}

func TestLoadConfigQueueDefaults(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("WORKER_CONCURRENCY", "")

	cfg, err := config.LoadConfigQueue()
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 10, cfg.Concurrency)
}

func TestLoadConfigServerDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")

	cfg, err := config.LoadConfigServer()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoadConfigDBRequiresPort(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")

	_, err := config.LoadConfigDB()
	assert.Error(t, err)
}
