package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/parkmetrics/queuecast/pkg/logger"
	"github.com/parkmetrics/queuecast/pkg/redis"
)

// defaultCacheTTL bounds how long a cached prediction stays valid. The
// pipeline is deterministic for fixed artifacts, so the TTL only has to
// cover artifact redeploys, not data freshness.
const defaultCacheTTL = 5 * time.Minute

// ResultCache memoizes prediction results in Redis keyed by the full request
// tuple. Cache failures are logged and ignored; the pipeline is cheap enough
// to recompute.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache creates a result cache. A zero ttl uses the default.
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &ResultCache{client: client, ttl: ttl}
}

func cacheKey(req *Request) string {
	temp, hum, feels, code := -1.0, -1.0, -1.0, -1
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	if req.Humidity != nil {
		hum = *req.Humidity
	}
	if req.FeelsLike != nil {
		feels = *req.FeelsLike
	}
	if req.WeatherCode != nil {
		code = *req.WeatherCode
	}
	return fmt.Sprintf("queuecast:pred:%s:%s:%s:%s:%.1f:%.1f:%.1f:%d",
		req.Attraction, req.Zone, req.Date, req.Time, temp, hum, feels, code)
}

// Get returns a cached result for the request, if any.
func (c *ResultCache) Get(ctx context.Context, req *Request) (*Result, bool) {
	raw, err := c.client.GetString(ctx, cacheKey(req))
	if err != nil {
		return nil, false
	}
	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		logger.Warn("failed to decode cached prediction", zap.Error(err))
		return nil, false
	}
	return &result, true
}

// Set stores a result under the request key.
func (c *ResultCache) Set(ctx context.Context, req *Request, result *Result) {
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.client.SetWithExpiration(ctx, cacheKey(req), raw, c.ttl); err != nil {
		logger.Warn("failed to cache prediction", zap.Error(err))
	}
}
