// Package weather fetches current conditions for the taskbar.
package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webtop/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/tracing"
)

var (
	ErrDisabled          = errors.New("weather disabled: no api key configured")
	ErrUpstream          = errors.New("weather provider error")
	ErrInvalidCoordinate = errors.New("invalid coordinates")
)

// Config configures the weather provider client
type Config struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	RefreshInterval time.Duration
	RetryMax        int
	RetryWaitMin    time.Duration
	RetryWaitMax    time.Duration
	CacheSize       int // Locations kept in the report cache
}

// DefaultConfig returns the stock client settings without an API key
func DefaultConfig() Config {
	return Config{
		BaseURL:         "https://api.weatherapi.com/v1",
		Timeout:         10 * time.Second,
		RefreshInterval: 10 * time.Minute,
		RetryMax:        2,
		RetryWaitMin:    500 * time.Millisecond,
		RetryWaitMax:    5 * time.Second,
		CacheSize:       64,
	}
}

// Report is the taskbar weather summary
type Report struct {
	Temp      int       `json:"temp"`
	Condition string    `json:"condition"`
	Icon      string    `json:"icon"`
	Location  string    `json:"location"`
	FetchedAt time.Time `json:"fetchedAt"`
}

type apiResponse struct {
	Current struct {
		TempC     float64 `json:"temp_c"`
		Condition struct {
			Text string `json:"text"`
			Icon string `json:"icon"`
		} `json:"condition"`
	} `json:"current"`
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
}

type coords struct {
	lat, lon float64
}

func (c coords) query() string {
	return strconv.FormatFloat(c.lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.lon, 'f', -1, 64)
}

// Service fetches and caches weather reports
type Service struct {
	cfg     Config
	client  *resty.Client
	breaker *resilience.Breaker
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	cache map[coords]*Report
	last  *coords
}

// New creates a weather service. A nil logger discards output.
func New(cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultConfig().RefreshInterval
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultConfig().CacheSize
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "webtop-weather/1.0").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			tracing.Inject(r.Context(), r.Header)
			return nil
		})

	breaker := resilience.New("weather", resilience.Settings{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Service{
		cfg:     cfg,
		client:  client,
		breaker: breaker,
		logger:  logger,
		now:     time.Now,
		cache:   make(map[coords]*Report),
	}
}

// Enabled reports whether an API key is configured
func (s *Service) Enabled() bool {
	return s.cfg.APIKey != ""
}

// Breaker exposes the circuit breaker state
func (s *Service) Breaker() *resilience.Breaker {
	return s.breaker
}

// Current returns the weather at the given coordinates. Reports younger
// than the refresh interval are served from the cache.
func (s *Service) Current(ctx context.Context, lat, lon float64) (*Report, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 || math.IsNaN(lat) || math.IsNaN(lon) {
		return nil, fmt.Errorf("%w: %v,%v", ErrInvalidCoordinate, lat, lon)
	}

	c := coords{lat: lat, lon: lon}
	s.mu.Lock()
	s.last = &c
	cached := s.cache[c]
	s.mu.Unlock()

	if cached != nil && s.now().Sub(cached.FetchedAt) < s.cfg.RefreshInterval {
		return cached, nil
	}
	return s.fetch(ctx, c)
}

// Refresh refetches the most recently requested location
func (s *Service) Refresh(ctx context.Context) error {
	if !s.Enabled() {
		return ErrDisabled
	}

	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	if last == nil {
		return nil
	}

	_, err := s.fetch(ctx, *last)
	return err
}

// Run refreshes the last location every refresh interval until ctx is done
func (s *Service) Run(ctx context.Context) {
	if !s.Enabled() {
		s.logger.Info("Weather disabled, refresh loop not started")
		return
	}

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn("Weather refresh failed", zap.Error(err))
			}
		}
	}
}

func (s *Service) fetch(ctx context.Context, c coords) (*Report, error) {
	report, err := resilience.Execute(s.breaker, func() (*Report, error) {
		var body apiResponse
		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"key": s.cfg.APIKey,
				"q":   c.query(),
				"aqi": "no",
			}).
			SetResult(&body).
			Get(s.cfg.BaseURL + "/current.json")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode())
		}
		return s.toReport(&body), nil
	})
	if err != nil {
		return nil, err
	}

	s.store(c, report)

	s.logger.Debug("Fetched weather",
		zap.String("location", report.Location),
		zap.Int("temp", report.Temp))
	return report, nil
}

// store caches a report, sweeping expired entries and evicting the oldest
// one when the cache is full
func (s *Service) store(c coords, report *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache[c]; !ok {
		now := s.now()
		for k, r := range s.cache {
			if now.Sub(r.FetchedAt) >= s.cfg.RefreshInterval {
				delete(s.cache, k)
			}
		}
		for len(s.cache) >= s.cfg.CacheSize {
			var oldest coords
			var oldestAt time.Time
			first := true
			for k, r := range s.cache {
				if first || r.FetchedAt.Before(oldestAt) {
					oldest, oldestAt, first = k, r.FetchedAt, false
				}
			}
			delete(s.cache, oldest)
		}
	}
	s.cache[c] = report
}

// cached returns the number of cached locations
func (s *Service) cached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

func (s *Service) toReport(body *apiResponse) *Report {
	icon := body.Current.Condition.Icon
	if strings.HasPrefix(icon, "//") {
		icon = "https:" + icon
	}
	return &Report{
		Temp:      int(math.Floor(body.Current.TempC + 0.5)),
		Condition: body.Current.Condition.Text,
		Icon:      icon,
		Location:  body.Location.Name,
		FetchedAt: s.now(),
	}
}
