package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nathantilsley/chart-graph/internal/graph/builder"
	"github.com/nathantilsley/chart-graph/internal/graph/chartparse"
	"github.com/nathantilsley/chart-graph/internal/graph/domain"
	"github.com/nathantilsley/chart-graph/internal/graph/layout"
	"github.com/nathantilsley/chart-graph/internal/graph/ports"
)

// DefaultCacheSize is used when Options.CacheSize is not positive.
const DefaultCacheSize = 128

// Options configures an AnalyzeService.
type Options struct {
	CacheSize int
	Layout    layout.Config
}

// AnalyzeService implements ports.AnalyzeUseCase by orchestrating the chart
// pipeline: validate the drop, assemble the chart, build the graph, and lay
// it out. Results are cached by content fingerprint and layout settings.
type AnalyzeService struct {
	assembler *chartparse.Assembler
	diff      ports.DiffPort
	layout    layout.Config
	cache     *lru.Cache[string, domain.Analysis]
	logger    *slog.Logger
	tracer    trace.Tracer

	analyses   metric.Int64Counter
	cacheHits  metric.Int64Counter
	references metric.Int64Counter
	duration   metric.Float64Histogram
}

var _ ports.AnalyzeUseCase = (*AnalyzeService)(nil)

// NewAnalyzeService creates an AnalyzeService wired with its driven ports and
// telemetry instruments.
func NewAnalyzeService(
	diff ports.DiffPort,
	logger *slog.Logger,
	meter metric.Meter,
	tracer trace.Tracer,
	opts Options,
) (*AnalyzeService, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, domain.Analysis](size)
	if err != nil {
		return nil, fmt.Errorf("creating analysis cache: %w", err)
	}

	s := &AnalyzeService{
		assembler: chartparse.New(logger),
		diff:      diff,
		layout:    opts.Layout.WithDefaults(),
		cache:     cache,
		logger:    logger,
		tracer:    tracer,
	}

	if s.analyses, err = meter.Int64Counter("chartgraph.analyses",
		metric.WithDescription("Chart analyses by result")); err != nil {
		return nil, fmt.Errorf("creating analyses counter: %w", err)
	}
	if s.cacheHits, err = meter.Int64Counter("chartgraph.cache.hits",
		metric.WithDescription("Analyses served from the fingerprint cache")); err != nil {
		return nil, fmt.Errorf("creating cache hit counter: %w", err)
	}
	if s.references, err = meter.Int64Counter("chartgraph.references",
		metric.WithDescription("References extracted by type")); err != nil {
		return nil, fmt.Errorf("creating references counter: %w", err)
	}
	if s.duration, err = meter.Float64Histogram("chartgraph.analyze.duration",
		metric.WithDescription("Pipeline duration"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	return s, nil
}

// Analyze runs the full pipeline. It returns domain.ErrNoChartFile when the
// drop holds no Chart.yaml; every other input yields a best-effort analysis.
func (s *AnalyzeService) Analyze(
	ctx context.Context,
	files map[string]string,
	cfg *layout.Config,
) (domain.Analysis, error) {
	ctx, span := s.tracer.Start(ctx, "AnalyzeService.Analyze",
		trace.WithAttributes(attribute.Int("chart.files", len(files))))
	defer span.End()
	start := time.Now()

	if err := domain.ValidateUpload(domain.SortedKeys(files)); err != nil {
		s.analyses.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "rejected")))
		span.SetStatus(codes.Error, err.Error())
		return domain.Analysis{}, err
	}

	layoutCfg := s.layout
	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return domain.Analysis{}, fmt.Errorf("%w: %w", domain.ErrInvalidLayout, err)
		}
		layoutCfg = cfg.WithDefaults()
	}

	fingerprint := domain.Fingerprint(files)
	key := cacheKey(fingerprint, layoutCfg)
	if cached, ok := s.cache.Get(key); ok {
		s.cacheHits.Add(ctx, 1)
		s.analyses.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "cached")))
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.logger.Debug("analysis served from cache", "fingerprint", fingerprint)
		return cached, nil
	}

	analysis := s.run(ctx, files, layoutCfg)
	analysis.Fingerprint = fingerprint
	s.cache.Add(key, analysis)

	for t, n := range analysis.Chart.ReferenceCounts() {
		s.references.Add(ctx, int64(n), metric.WithAttributes(attribute.String("type", string(t))))
	}
	s.analyses.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "ok")))
	s.duration.Record(ctx, time.Since(start).Seconds())
	span.SetAttributes(
		attribute.String("chart.name", analysis.Chart.Name),
		attribute.Int("graph.nodes", analysis.Stats.TotalNodes),
		attribute.Int("graph.edges", analysis.Stats.TotalEdges),
	)

	s.logger.Info("chart analyzed",
		"chart", analysis.Chart.Name,
		"fingerprint", fingerprint,
		"files", len(analysis.Chart.Files),
		"references", len(analysis.Chart.References),
		"nodes", analysis.Stats.TotalNodes,
		"edges", analysis.Stats.TotalEdges,
	)
	return analysis, nil
}

func (s *AnalyzeService) run(ctx context.Context, files map[string]string, cfg layout.Config) domain.Analysis {
	_, span := s.tracer.Start(ctx, "chartparse.Assemble")
	chart := s.assembler.Assemble(files)
	span.End()

	_, span = s.tracer.Start(ctx, "builder.Build")
	g := builder.Build(chart)
	span.End()

	_, span = s.tracer.Start(ctx, "layout.Apply")
	g.Nodes = layout.Apply(g.Nodes, g.Edges, cfg)
	span.End()

	return domain.Analysis{
		Chart: chart,
		Graph: g,
		Stats: domain.ComputeStats(g),
	}
}

// Filter analyzes the chart with the service layout and returns the 1-hop
// subgraph around filePath. An unknown file yields an empty graph.
func (s *AnalyzeService) Filter(
	ctx context.Context,
	files map[string]string,
	filePath string,
) (domain.Graph, error) {
	analysis, err := s.Analyze(ctx, files, nil)
	if err != nil {
		return domain.Graph{}, err
	}
	return domain.FilterByFile(analysis.Graph, domain.CleanPath(filePath)), nil
}

// Compare analyzes both charts and diffs their reference listings. Either
// side may be empty, which is treated as a chart with no references.
func (s *AnalyzeService) Compare(
	ctx context.Context,
	base, head map[string]string,
) (domain.Comparison, error) {
	ctx, span := s.tracer.Start(ctx, "AnalyzeService.Compare")
	defer span.End()

	baseRefs, baseFP, err := s.referencesOf(ctx, base)
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("analyzing base chart: %w", err)
	}
	headRefs, headFP, err := s.referencesOf(ctx, head)
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("analyzing head chart: %w", err)
	}

	diff := s.diff.ComputeDiff("base", "head",
		[]byte(domain.ReferenceListing(baseRefs)),
		[]byte(domain.ReferenceListing(headRefs)))

	s.logger.Info("charts compared", "base", baseFP, "head", headFP, "changed", diff != "")
	return domain.Comparison{
		BaseFingerprint: baseFP,
		HeadFingerprint: headFP,
		Diff:            diff,
		Changed:         diff != "",
	}, nil
}

func (s *AnalyzeService) referencesOf(ctx context.Context, files map[string]string) ([]domain.Reference, string, error) {
	if len(files) == 0 {
		return nil, "", nil
	}
	analysis, err := s.Analyze(ctx, files, nil)
	if err != nil {
		return nil, "", err
	}
	return analysis.Chart.References, analysis.Fingerprint, nil
}

// cacheKey encodes cfg as JSON so optional fields key by value, not address.
func cacheKey(fingerprint string, cfg layout.Config) string {
	b, _ := json.Marshal(cfg)
	return fingerprint + "|" + string(b)
}
