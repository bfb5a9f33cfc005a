package predictor

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgredis "github.com/parkmetrics/queuecast/pkg/redis"
)

func newMockCache(t *testing.T, ttl time.Duration) (*ResultCache, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	cache := NewResultCache(&pkgredis.Client{Client: db}, ttl)
	return cache, mock
}

func cacheTestRequest() *Request {
	return &Request{Attraction: "Shambhala", Date: "2025-07-10", Time: "12:00"}
}

func TestCacheKeyStableAndDistinct(t *testing.T) {
	req := cacheTestRequest()
	assert.Equal(t, cacheKey(req), cacheKey(cacheTestRequest()))

	other := cacheTestRequest()
	other.Time = "13:00"
	assert.NotEqual(t, cacheKey(req), cacheKey(other))

	// Explicit weather is part of the key; absent weather uses sentinels.
	temp := 25.0
	withWeather := cacheTestRequest()
	withWeather.Temperature = &temp
	assert.NotEqual(t, cacheKey(req), cacheKey(withWeather))
}

func TestResultCacheGetHit(t *testing.T) {
	cache, mock := newMockCache(t, time.Minute)
	req := cacheTestRequest()

	stored := &Result{PredictedMinutes: 67.3, Specificity: SpecHour}
	raw, err := json.Marshal(stored)
	require.NoError(t, err)
	mock.ExpectGet(cacheKey(req)).SetVal(string(raw))

	got, ok := cache.Get(context.Background(), req)
	require.True(t, ok)
	assert.Equal(t, stored, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultCacheGetMiss(t *testing.T) {
	cache, mock := newMockCache(t, time.Minute)
	req := cacheTestRequest()

	mock.ExpectGet(cacheKey(req)).RedisNil()

	_, ok := cache.Get(context.Background(), req)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultCacheGetCorruptPayload(t *testing.T) {
	cache, mock := newMockCache(t, time.Minute)
	req := cacheTestRequest()

	mock.ExpectGet(cacheKey(req)).SetVal("not json")

	_, ok := cache.Get(context.Background(), req)
	assert.False(t, ok)
}

func TestResultCacheSet(t *testing.T) {
	cache, mock := newMockCache(t, time.Minute)
	req := cacheTestRequest()

	result := &Result{PredictedMinutes: 67.3, Specificity: SpecHour}
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	mock.ExpectSet(cacheKey(req), raw, time.Minute).SetVal("OK")

	cache.Set(context.Background(), req, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewResultCacheDefaultTTL(t *testing.T) {
	cache, _ := newMockCache(t, 0)
	assert.Equal(t, defaultCacheTTL, cache.ttl)
}
