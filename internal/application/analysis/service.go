package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/GraphSentinel/internal/domain/fraud"
	"github.com/turtacn/GraphSentinel/internal/domain/graph"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/GraphSentinel/pkg/errors"
)

// Service defines the interface for entity analysis operations.
type Service interface {
	// AnalyzeEntity runs the full detection pipeline for one company.
	AnalyzeEntity(ctx context.Context, entityID string) (*Result, error)
}

// ResultCache is the optional per-entity result cache.  Get returns (nil,
// nil) on a miss.
type ResultCache interface {
	Get(ctx context.Context, entityID string) (*Result, error)
	Set(ctx context.Context, entityID string, res *Result, ttl time.Duration) error
}

// Alert is the event published when an analysis crosses the alert threshold.
type Alert struct {
	AlertID     string    `json:"alertId"`
	AnalysisID  string    `json:"analysisId"`
	EntityID    string    `json:"entityId"`
	EntityName  string    `json:"entityName,omitempty"`
	RiskScore   float64   `json:"riskScore"`
	ChainCount  int       `json:"chainCount"`
	CycleCount  int       `json:"cycleCount"`
	TripleCount int       `json:"tripleCount"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// AlertPublisher delivers fraud alerts to the message broker.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert Alert) error
}

// Options holds the orchestration tunables.
type Options struct {
	Hops           int
	Timeout        time.Duration
	CacheTTL       time.Duration
	AlertThreshold float64
}

// DefaultOptions returns the production orchestration settings.
func DefaultOptions() Options {
	return Options{
		Hops:           graph.DefaultHops,
		Timeout:        30 * time.Second,
		CacheTTL:       5 * time.Minute,
		AlertThreshold: 0.80,
	}
}

type service struct {
	store     graph.Store
	extractor *graph.Extractor
	shell     *fraud.ShellChainDetector
	circular  *fraud.CircularTradeDetector
	influence *fraud.HiddenInfluenceDetector
	cache     ResultCache    // optional
	alerts    AlertPublisher // optional
	metrics   *prometheus.AppMetrics
	logger    logging.Logger
	opts      Options
	group     singleflight.Group
}

// NewService constructs the analysis Service.  cache, alerts and metrics may
// be nil; the corresponding behaviour is then disabled.
func NewService(
	store graph.Store,
	extractor *graph.Extractor,
	shell *fraud.ShellChainDetector,
	circular *fraud.CircularTradeDetector,
	influence *fraud.HiddenInfluenceDetector,
	cache ResultCache,
	alerts AlertPublisher,
	metrics *prometheus.AppMetrics,
	logger logging.Logger,
	opts Options,
) Service {
	if logger == nil {
		logger = logging.Default()
	}
	if opts.Hops <= 0 {
		opts.Hops = graph.DefaultHops
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	return &service{
		store:     store,
		extractor: extractor,
		shell:     shell,
		circular:  circular,
		influence: influence,
		cache:     cache,
		alerts:    alerts,
		metrics:   metrics,
		logger:    logger.Named("analysis"),
		opts:      opts,
	}
}

// AnalyzeEntity validates the entity, then runs extraction and the three
// detectors concurrently and joins on all of them.  Concurrent requests for
// the same entity are collapsed into a single computation.
func (s *service) AnalyzeEntity(ctx context.Context, entityID string) (*Result, error) {
	if entityID == "" {
		return nil, errors.InvalidParam("entity id must not be empty")
	}

	v, err, _ := s.group.Do(entityID, func() (interface{}, error) {
		return s.analyze(ctx, entityID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (s *service) analyze(ctx context.Context, entityID string) (*Result, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, entityID)
		if err != nil {
			s.logger.Warn("result cache read failed", logging.String("entity", entityID), logging.Err(err))
		}
		if s.metrics != nil {
			prometheus.RecordCacheAccess(s.metrics, "analysis", cached != nil)
		}
		if cached != nil {
			return cached, nil
		}
	}

	// A missing root aborts the whole analysis before any detector runs;
	// the lookup also provides the intrinsic risk attribute and the name.
	company, err := s.store.Company(ctx, entityID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.CodeStoreUnavailable, "entity lookup failed")
	}

	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var (
		wg           sync.WaitGroup
		sub          *graph.Subgraph
		subErr       error
		chains       []fraud.ShellChain
		chainsErr    error
		cycles       []fraud.TradeCycle
		cyclesErr    error
		triples      []fraud.InfluenceTriple
		iterations   int
		influenceErr error
	)

	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t := time.Now()
			err := fn()
			if s.metrics != nil {
				prometheus.RecordDetectorRun(s.metrics, name, time.Since(t), err, string(errors.GetCode(err)))
			}
		}()
	}

	run(DetectorExtractor, func() error {
		sub, subErr = s.extractor.Extract(ctx, entityID, s.opts.Hops)
		return subErr
	})
	run(DetectorShellChain, func() error {
		chains, chainsErr = s.shell.Detect(ctx)
		return chainsErr
	})
	run(DetectorCircularTrade, func() error {
		cycles, cyclesErr = s.circular.Detect(ctx)
		return cyclesErr
	})
	run(DetectorHiddenInfluence, func() error {
		triples, iterations, influenceErr = s.influence.Detect(ctx)
		return influenceErr
	})
	wg.Wait()

	// Without a neighborhood there is nothing to visualize or score against;
	// extraction failure is fatal while individual detector failures are
	// isolated below.
	if subErr != nil {
		if s.metrics != nil {
			s.metrics.AnalysesTotal.WithLabelValues("failed").Inc()
		}
		return nil, subErr
	}

	diagnostics := make(map[string]string)
	if chainsErr != nil {
		diagnostics[DetectorShellChain] = chainsErr.Error()
		s.logger.Error("detector failed", logging.String("detector", DetectorShellChain), logging.Err(chainsErr))
		chains = nil
	}
	if cyclesErr != nil {
		diagnostics[DetectorCircularTrade] = cyclesErr.Error()
		s.logger.Error("detector failed", logging.String("detector", DetectorCircularTrade), logging.Err(cyclesErr))
		cycles = nil
	}
	if influenceErr != nil {
		diagnostics[DetectorHiddenInfluence] = influenceErr.Error()
		s.logger.Error("detector failed", logging.String("detector", DetectorHiddenInfluence), logging.Err(influenceErr))
		triples = nil
	}

	patterns := Patterns{
		ShellChains:     emptyIfNil(chains),
		CircularTrade:   emptyIfNil(cycles),
		HiddenInfluence: emptyIfNil(triples),
	}

	result := &Result{
		AnalysisID:       uuid.NewString(),
		EntityID:         entityID,
		EntityName:       company.Name,
		RiskScore:        AggregateRisk(entityID, chains, cycles, company.RiskScore),
		OpportunityScore: AggregateOpportunity(entityID, triples),
		Patterns:         patterns,
		Visualization:    BuildVizModel(sub, patterns),
		GeneratedAt:      time.Now().UTC(),
	}
	if len(diagnostics) > 0 {
		result.Diagnostics = diagnostics
	}

	s.observe(result, iterations, time.Since(started), len(diagnostics) > 0)

	if s.cache != nil {
		if err := s.cache.Set(ctx, entityID, result, s.opts.CacheTTL); err != nil {
			s.logger.Warn("result cache write failed", logging.String("entity", entityID), logging.Err(err))
		}
	}

	s.maybeAlert(ctx, result)

	return result, nil
}

func (s *service) observe(res *Result, iterations int, elapsed time.Duration, partial bool) {
	s.logger.Info("entity analysis complete",
		logging.String("entity", res.EntityID),
		logging.Float64("risk_score", res.RiskScore),
		logging.Float64("opportunity_score", res.OpportunityScore),
		logging.Int("shell_chains", len(res.Patterns.ShellChains)),
		logging.Int("trade_cycles", len(res.Patterns.CircularTrade)),
		logging.Int("influence_triples", len(res.Patterns.HiddenInfluence)),
		logging.Duration("elapsed", elapsed))

	if s.metrics == nil {
		return
	}
	status := "ok"
	if partial {
		status = "partial"
	}
	s.metrics.AnalysesTotal.WithLabelValues(status).Inc()
	s.metrics.AnalysisDuration.WithLabelValues("api").Observe(elapsed.Seconds())
	s.metrics.AnalysisRiskScore.WithLabelValues("api").Observe(res.RiskScore)
	s.metrics.PatternsFound.WithLabelValues(string(fraud.PatternShellChain)).Add(float64(len(res.Patterns.ShellChains)))
	s.metrics.PatternsFound.WithLabelValues(string(fraud.PatternCircularTrade)).Add(float64(len(res.Patterns.CircularTrade)))
	s.metrics.PatternsFound.WithLabelValues(string(fraud.PatternHiddenInfluence)).Add(float64(len(res.Patterns.HiddenInfluence)))
	s.metrics.CentralityIterations.WithLabelValues(DetectorHiddenInfluence).Observe(float64(iterations))
}

func (s *service) maybeAlert(ctx context.Context, res *Result) {
	if s.alerts == nil || res.RiskScore < s.opts.AlertThreshold {
		return
	}
	alert := Alert{
		AlertID:     uuid.NewString(),
		AnalysisID:  res.AnalysisID,
		EntityID:    res.EntityID,
		EntityName:  res.EntityName,
		RiskScore:   res.RiskScore,
		ChainCount:  len(res.Patterns.ShellChains),
		CycleCount:  len(res.Patterns.CircularTrade),
		TripleCount: len(res.Patterns.HiddenInfluence),
		GeneratedAt: res.GeneratedAt,
	}
	if err := s.alerts.PublishAlert(ctx, alert); err != nil {
		s.logger.Error("fraud alert publish failed",
			logging.String("entity", res.EntityID),
			logging.Err(err))
	}
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
