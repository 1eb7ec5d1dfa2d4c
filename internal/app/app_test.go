package app

import (
	"testing"
	"time"

	"go-leave/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestModels(t *testing.T) {
	assert.Len(t, Models(), 5)
}

func TestIdempotencyTTL(t *testing.T) {
	assert.Equal(t, 24*time.Hour, idempotencyTTL(config.Config{}))
	assert.Equal(t, time.Hour, idempotencyTTL(config.Config{IdempotencyTTL: time.Hour}))
}
