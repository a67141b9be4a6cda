package connection

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"argus-dashboard-go/internal/models"
)

// HealthProbe polls the backend liveness endpoint on a fixed interval,
// independent of the streaming channel. Its last result gates whether a new
// streaming session is attempted at all.
type HealthProbe struct {
	url      string
	interval time.Duration
	client   *http.Client
	log      zerolog.Logger

	mu      sync.RWMutex
	last    models.BackendHealth
	haveOne bool

	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewHealthProbe builds a probe against baseURL's /health endpoint. The
// HTTP client timeout bounds every probe so a hung backend never blocks the
// next tick.
func NewHealthProbe(baseURL string, interval, timeout time.Duration, log zerolog.Logger) *HealthProbe {
	return &HealthProbe{
		url:      baseURL + "/health",
		interval: interval,
		client:   &http.Client{Timeout: timeout},
		log:      log,
		last:     models.BackendHealth{Status: "unknown"},
		stopChan: make(chan struct{}),
	}
}

// Start launches the polling loop. It probes once immediately so callers
// get a real answer before the first interval elapses.
func (p *HealthProbe) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		p.probe(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopChan:
				return
			case <-ticker.C:
				p.probe(ctx)
			}
		}
	}()
}

// Stop halts polling. Idempotent.
func (p *HealthProbe) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})
	p.wg.Wait()
}

func (p *HealthProbe) probe(ctx context.Context) {
	health, err := p.Check(ctx)
	if err != nil {
		p.log.Debug().Err(err).Str("url", p.url).Msg("Backend health probe failed")
		health = models.BackendHealth{Status: "unhealthy"}
	}

	p.mu.Lock()
	p.last = health
	p.haveOne = true
	p.mu.Unlock()
}

// Check performs one probe synchronously without touching the cached
// result.
func (p *HealthProbe) Check(ctx context.Context) (models.BackendHealth, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return models.BackendHealth{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return models.BackendHealth{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.BackendHealth{}, fmt.Errorf("health endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.BackendHealth{}, err
	}

	var health models.BackendHealth
	if err := json.Unmarshal(body, &health); err != nil {
		return models.BackendHealth{}, fmt.Errorf("decoding health response: %w", err)
	}
	if health.Status == "" {
		health.Status = "unknown"
	}
	return health, nil
}

// Last returns the most recent probe result and whether any probe has
// completed yet.
func (p *HealthProbe) Last() (models.BackendHealth, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last, p.haveOne
}

// BackendHealthy reports whether the last completed probe saw a healthy
// backend.
func (p *HealthProbe) BackendHealthy() bool {
	last, ok := p.Last()
	return ok && last.Healthy()
}
