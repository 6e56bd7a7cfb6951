package cache

import (
	"context"
	"customer-service/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient_EmptyAddr(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), config.RedisConfig{}, logger)
	require.Error(t, err)
	assert.Nil(t, rdb)
	assert.Contains(t, err.Error(), "redis address (addr) is not configured")
}

func TestCloseRedisClient_Nil(t *testing.T) {
	assert.NotPanics(t, func() { CloseRedisClient(nil, logger) })
}
