// Package health exposes Kubernetes-style liveness and readiness probes.
//
// Probes are evaluated by a single background sweeper at a fixed interval.
// A probe flips to failing only after a run of consecutive errors, and flips
// back after a run of consecutive successes, so one slow database ping does
// not bounce the pod out of the load balancer.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Check reports the health of one component. A nil return means healthy.
type Check func(ctx context.Context) error

// Option adjusts Service defaults.
type Option func(*Service)

// WithInterval sets how often the sweeper evaluates probes.
func WithInterval(d time.Duration) Option {
	return func(s *Service) { s.interval = d }
}

// WithCheckTimeout bounds a single probe evaluation.
func WithCheckTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithFailAfter sets how many consecutive errors flip a probe to failing.
func WithFailAfter(n int) Option {
	return func(s *Service) { s.failAfter = n }
}

// WithRecoverAfter sets how many consecutive successes flip a failing probe
// back to passing.
func WithRecoverAfter(n int) Option {
	return func(s *Service) { s.recoverAfter = n }
}

// Service tracks liveness and readiness probes and serves the probe endpoints.
//
// Readiness is the AND of the manual ready flag (SetReady) and every
// registered readiness probe. The flag lets graceful shutdown pull the
// service out of rotation before the listener closes.
type Service struct {
	interval     time.Duration
	timeout      time.Duration
	failAfter    int
	recoverAfter int

	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []*probe
	readiness []*probe
	cancel    context.CancelFunc
}

// New creates a Service with no probes registered. The service starts not
// ready; call SetReady(true) once initialization completes.
func New(opts ...Option) *Service {
	s := &Service{
		interval:     10 * time.Second,
		timeout:      5 * time.Second,
		failAfter:    3,
		recoverAfter: 1,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AddLiveness registers a liveness probe. Liveness answers "is the process
// wedged": goroutine leaks, deadlocks, runaway GC.
func (s *Service) AddLiveness(name string, check Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, s.newProbe(name, check))
}

// AddReadiness registers a readiness probe. Readiness answers "can this
// instance serve traffic": database connectivity, dependency availability.
func (s *Service) AddReadiness(name string, check Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, s.newProbe(name, check))
}

func (s *Service) newProbe(name string, check Check) *probe {
	return &probe{
		name:         name,
		check:        check,
		failAfter:    s.failAfter,
		recoverAfter: s.recoverAfter,
	}
}

// Start launches the background sweeper. Probes are evaluated once
// immediately, then every interval until ctx is cancelled or Stop is called.
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

// Stop cancels the sweeper. Safe to call multiple times.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// sweep evaluates every registered probe once.
func (s *Service) sweep(ctx context.Context) {
	s.mu.RLock()
	probes := make([]*probe, 0, len(s.liveness)+len(s.readiness))
	probes = append(probes, s.liveness...)
	probes = append(probes, s.readiness...)
	s.mu.RUnlock()

	for _, p := range probes {
		checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
		p.observe(p.check(checkCtx))
		cancel()
	}
}

// SetReady flips the manual readiness flag. Called with true after startup
// and with false at the beginning of graceful shutdown.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady reports whether the instance should receive traffic.
func (s *Service) IsReady() bool {
	if !s.ready.Load() {
		return false
	}

	s.mu.RLock()
	probes := s.readiness
	s.mu.RUnlock()

	for _, p := range probes {
		if failing, _ := p.status(); failing {
			return false
		}
	}
	return true
}

// LiveHandler serves the /livez endpoint: 200 when every liveness probe
// passes, 503 with per-probe detail otherwise.
func (s *Service) LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.mu.RLock()
		probes := slices.Clone(s.liveness)
		s.mu.RUnlock()

		writeReport(w, buildReport(probes, true))
	}
}

// ReadyHandler serves the /readyz endpoint. It fails when the manual ready
// flag is off or any readiness probe is failing.
func (s *Service) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.mu.RLock()
		probes := slices.Clone(s.readiness)
		s.mu.RUnlock()

		rep := buildReport(probes, s.ready.Load())
		if !s.ready.Load() {
			rep.Checks["service"] = "not accepting traffic"
		}
		writeReport(w, rep)
	}
}

// probe holds threshold-smoothed state for a single check.
type probe struct {
	name         string
	check        Check
	failAfter    int
	recoverAfter int

	mu      sync.Mutex
	errRun  int
	okRun   int
	failing bool
	lastErr error
}

// observe records one evaluation result and updates the failing flag
// according to the consecutive-run thresholds.
func (p *probe) observe(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastErr = err
	if err != nil {
		p.okRun = 0
		p.errRun++
		if p.errRun >= p.failAfter {
			p.failing = true
		}
		return
	}
	p.errRun = 0
	p.okRun++
	if p.okRun >= p.recoverAfter {
		p.failing = false
	}
}

func (p *probe) status() (failing bool, lastErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failing, p.lastErr
}

type probeReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`

	healthy bool
}

// buildReport summarizes every probe: "ok" for passing probes, the last
// error message for failing ones.
func buildReport(probes []*probe, healthy bool) probeReport {
	rep := probeReport{healthy: healthy, Checks: make(map[string]string, len(probes))}
	for _, p := range probes {
		failing, lastErr := p.status()
		if !failing {
			rep.Checks[p.name] = "ok"
			continue
		}
		rep.healthy = false
		if lastErr != nil {
			rep.Checks[p.name] = lastErr.Error()
		} else {
			rep.Checks[p.name] = "failing"
		}
	}
	return rep
}

func writeReport(w http.ResponseWriter, rep probeReport) {
	w.Header().Set("Content-Type", "application/json")

	rep.Status = "ok"
	code := http.StatusOK
	if !rep.healthy {
		rep.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	if len(rep.Checks) == 0 {
		rep.Checks = nil
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(rep)
}
