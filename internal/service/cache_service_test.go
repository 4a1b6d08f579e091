package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheService_SetGet(t *testing.T) {
	cs := NewCacheService()

	cs.Set(reviewTimeoutCacheKey("eth"), 24*time.Hour, time.Minute)

	v, ok := cs.Get(reviewTimeoutCacheKey("eth"))
	assert.True(t, ok)
	assert.Equal(t, 24*time.Hour, v)

	_, ok = cs.Get(reviewTimeoutCacheKey("xdai"))
	assert.False(t, ok)
}

func TestCacheService_Expiry(t *testing.T) {
	cs := NewCacheService()

	cs.Set("eth:reviewTimeout", time.Hour, -time.Second)

	_, ok := cs.Get("eth:reviewTimeout")
	assert.False(t, ok)
}

func TestCacheService_InvalidateContract(t *testing.T) {
	cs := NewCacheService()

	cs.Set(reviewTimeoutCacheKey("eth"), time.Hour, time.Minute)
	cs.Set(rewardPoolCacheKey("eth"), "pool", time.Minute)
	cs.Set(reviewTimeoutCacheKey("xdai"), time.Hour, time.Minute)

	cs.InvalidateContract("eth")

	_, ok := cs.Get(reviewTimeoutCacheKey("eth"))
	assert.False(t, ok)
	_, ok = cs.Get(rewardPoolCacheKey("eth"))
	assert.False(t, ok)

	// Other deployments keep their constants.
	_, ok = cs.Get(reviewTimeoutCacheKey("xdai"))
	assert.True(t, ok)
}
