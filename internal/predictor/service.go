package predictor

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/parkmetrics/queuecast/internal/artifacts"
	"github.com/parkmetrics/queuecast/internal/temporal"
	"github.com/parkmetrics/queuecast/pkg/logger"
)

// Service runs the prediction pipeline. All of its state is read-only after
// construction, so a single instance serves concurrent requests without
// locking.
type Service struct {
	bundle *artifacts.Bundle
	cache  *ResultCache

	attractions []string
	zones       []string
	zoneFor     map[string]string
}

// NewService builds a service over a loaded artifact bundle. The cache is
// optional; pass nil to disable result caching.
func NewService(bundle *artifacts.Bundle, cache *ResultCache) *Service {
	s := &Service{
		bundle:  bundle,
		cache:   cache,
		zoneFor: make(map[string]string),
	}

	seenAttr := make(map[string]bool)
	seenZone := make(map[string]bool)
	for _, o := range bundle.Observations {
		if !seenAttr[o.Attraction] {
			seenAttr[o.Attraction] = true
			s.attractions = append(s.attractions, o.Attraction)
			s.zoneFor[o.Attraction] = o.Zone
		}
		if o.Zone != "" && !seenZone[o.Zone] {
			seenZone[o.Zone] = true
			s.zones = append(s.zones, o.Zone)
		}
	}
	sort.Strings(s.attractions)
	sort.Strings(s.zones)
	return s
}

// Attractions returns the distinct attraction names in the historical set.
func (s *Service) Attractions() []string { return s.attractions }

// Zones returns the distinct park zones in the historical set.
func (s *Service) Zones() []string { return s.zones }

// ZoneFor returns the zone an attraction belongs to, or "" if unknown.
func (s *Service) ZoneFor(attraction string) string { return s.zoneFor[attraction] }

// Predict runs the full pipeline for one request. It always returns a result
// for a syntactically accepted request: every missing or unparsable optional
// input is defaulted, and historical gaps degrade through the specificity
// cascade instead of failing.
func (s *Service) Predict(ctx context.Context, req *Request) (*Result, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, req); ok {
			return cached, nil
		}
	}

	start := time.Now()
	result, err := s.predict(req)
	if err != nil {
		return nil, err
	}
	observePrediction(result, time.Since(start))

	if s.cache != nil {
		s.cache.Set(ctx, req, result)
	}
	return result, nil
}

func (s *Service) predict(req *Request) (*Result, error) {
	date, dateFallback := temporal.ParseDate(req.Date)
	hour, hourFallback := temporal.ParseClock(req.Time)
	if dateFallback || hourFallback {
		logger.Debug("temporal input defaulted",
			zap.String("atraccion", req.Attraction),
			zap.Bool("fecha_fallback", dateFallback),
			zap.Bool("hora_fallback", hourFallback))
	}

	zone := req.Zone
	if zone == "" {
		zone = s.zoneFor[req.Attraction]
	}

	temperature := s.bundle.TemperatureMedian
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	humidity := s.bundle.HumidityMedian
	if req.Humidity != nil {
		humidity = *req.Humidity
	}
	feelsLike := temperature
	if req.FeelsLike != nil {
		feelsLike = *req.FeelsLike
	}
	weatherCode := weatherDefaultCode
	if req.WeatherCode != nil {
		weatherCode = *req.WeatherCode
	}

	vector, err := assemble(s.bundle, assembleInput{
		Attraction:  req.Attraction,
		Zone:        zone,
		Date:        date,
		Hour:        hour,
		Temperature: temperature,
		Humidity:    humidity,
		FeelsLike:   feelsLike,
		WeatherCode: weatherCode,
	})
	if err != nil {
		return nil, fmt.Errorf("assemble feature vector: %w", err)
	}
	base := s.bundle.Model.Predict(vector)

	month := int(date.Month())
	weekday := temporal.WeekdayIndex(date)
	weekend := weekday == 5 || weekday == 6

	res := resolve(s.bundle, req.Attraction, month, int(hour), weekday)

	// Hour classes follow the resolved hour, which may have shifted by one
	// to the nearest hour with data.
	bctx := &blendContext{
		attraction: req.Attraction,
		month:      month,
		weekday:    weekday,
		weekend:    weekend,
		bridge:     temporal.IsBridgeDay(date),
		opening:    temporal.IsOpeningHour(res.HourInt),
		peak:       temporal.IsPeakHour(res.HourInt),
		valley:     temporal.IsValleyHour(res.HourInt),
		base:       base,
		res:        res,
		obs:        s.bundle.Observations,
	}

	blend(bctx)
	minutes, tag := adjust(bctx)

	return &Result{
		PredictedMinutes: minutes,
		BaseMinutes:      round1(base),
		HistoricalP75:    round1(res.P75),
		HistoricalMedian: round1(res.Median),
		Adjustment:       tag,
		Specificity:      bctx.res.Tag,
		Hour:             round2(hour),
		HourInt:          res.HourInt,
		IsOpeningHour:    bctx.opening,
		IsPeakHour:       bctx.peak,
		IsValleyHour:     bctx.valley,
		IsBridgeDay:      bctx.bridge,
		IsBatmanOctober:  isBatmanOctober(req.Attraction, month),
		Month:            month,
		DayOfMonth:       date.Day(),
		WeekdayName:      weekdayNames[weekday],
		IsWeekend:        weekend,
		HistoricalCount:  res.Count,
	}, nil
}

// PredictBatch runs the pipeline over a list of requests in order.
func (s *Service) PredictBatch(ctx context.Context, reqs []Request) ([]*Result, error) {
	results := make([]*Result, 0, len(reqs))
	for i := range reqs {
		r, err := s.Predict(ctx, &reqs[i])
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		results = append(results, r)
	}
	return results, nil
}

// ProfileEntry is one hour of an intraday prediction profile.
type ProfileEntry struct {
	Time   string  `json:"hora"`
	Result *Result `json:"prediccion"`
}

// Park operating hours evaluated by HourlyProfile.
const (
	profileStartHour = 10
	profileEndHour   = 20
)

// HourlyProfile evaluates the same request across the park's operating hours,
// giving the dashboard a full intraday curve in one call.
func (s *Service) HourlyProfile(ctx context.Context, req *Request) ([]ProfileEntry, error) {
	profile := make([]ProfileEntry, 0, profileEndHour-profileStartHour+1)
	for h := profileStartHour; h <= profileEndHour; h++ {
		hourly := *req
		hourly.Time = fmt.Sprintf("%02d:00:00", h)
		r, err := s.Predict(ctx, &hourly)
		if err != nil {
			return nil, fmt.Errorf("hour %d: %w", h, err)
		}
		profile = append(profile, ProfileEntry{Time: hourly.Time, Result: r})
	}
	return profile, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
