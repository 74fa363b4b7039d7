// Package advisor runs the branch recommendation pipeline: it narrows the
// dataset to eligible candidates, ranks them, asks a text generator for the
// best pick and degrades to a distance-only answer when that fails.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/branchmove/branch-service/internal/branch"
	"github.com/branchmove/branch-service/internal/scoring"
)

// DegradedRationale is returned as the rationale of every fallback result.
const DegradedRationale = "Degraded mode: this is an automatic distance-only recommendation because the advisory service is temporarily unavailable."

// DefaultFallbackPick is used when no eligible branch exists at all.
const DefaultFallbackPick = "Head Office"

// State is a step of the recommendation pipeline.
type State string

const (
	StateReceived       State = "received"
	StateGeoFiltered    State = "geo_filtered"
	StateFunneled       State = "funneled"
	StateScored         State = "scored"
	StatePromptSent     State = "prompt_sent"
	StateResponseParsed State = "response_parsed"
	StateFallback       State = "fallback"
	StateCompleted      State = "completed"
)

// Request is a validated recommendation request.
type Request struct {
	Region          string
	CurrentLocation string
	Priorities      []branch.Criterion
}

// Result is the recommendation returned to the caller.
type Result struct {
	Pick      string       `json:"pick"`
	Rationale string       `json:"rationale"`
	Nearest   string       `json:"nearest"`
	Degraded  bool         `json:"degraded"`
	Stage     branch.Stage `json:"stage,omitempty"`
	Provider  string       `json:"provider,omitempty"`
}

// Config holds orchestrator settings.
type Config struct {
	GeneratorTimeout time.Duration `mapstructure:"generator_timeout"`
	FallbackPick     string        `mapstructure:"default_pick"`
}

// DefaultConfig returns the default orchestrator settings.
func DefaultConfig() Config {
	return Config{
		GeneratorTimeout: 60 * time.Second,
		FallbackPick:     DefaultFallbackPick,
	}
}

// Advisor orchestrates one recommendation per call. It keeps no
// per-request state and is safe for concurrent use.
type Advisor struct {
	store     LocationStore
	generator TextGenerator
	engine    *scoring.Engine
	config    Config
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// New creates an advisor. A nil engine uses the default scoring config.
func New(store LocationStore, generator TextGenerator, engine *scoring.Engine, config Config, logger zerolog.Logger) *Advisor {
	if engine == nil {
		engine = scoring.NewEngine(nil, logger)
	}
	defaults := DefaultConfig()
	if config.GeneratorTimeout <= 0 {
		config.GeneratorTimeout = defaults.GeneratorTimeout
	}
	if config.FallbackPick == "" {
		config.FallbackPick = defaults.FallbackPick
	}
	return &Advisor{
		store:     store,
		generator: generator,
		engine:    engine,
		config:    config,
		logger:    logger.With().Str("component", "advisor").Logger(),
		tracer:    otel.Tracer("github.com/branchmove/branch-service/internal/advisor"),
	}
}

// ProviderName returns the configured generator name.
func (a *Advisor) ProviderName() string {
	return a.generator.Name()
}

// Recommend runs the pipeline. Only ErrNotFound, ErrDataSource and caller
// cancellation are returned as errors; generator failures yield a degraded
// result instead.
func (a *Advisor) Recommend(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "advisor.Recommend", trace.WithAttributes(
		attribute.String("region", req.Region),
		attribute.String("current_location", req.CurrentLocation),
		attribute.Int("priorities", len(req.Priorities)),
	))
	defer span.End()

	log := a.logger.With().
		Str("region", req.Region).
		Str("current_location", req.CurrentLocation).
		Logger()
	log.Debug().Str("state", string(StateReceived)).Int("priorities", len(req.Priorities)).Msg("Recommendation requested")

	result, outcome, err := a.recommend(ctx, req, log)

	recommendationsTotal.WithLabelValues(outcome).Inc()
	recommendationDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("pick", result.Pick),
		attribute.Bool("degraded", result.Degraded),
		attribute.String("stage", string(result.Stage)),
	)
	log.Info().
		Str("state", string(StateCompleted)).
		Str("pick", result.Pick).
		Str("nearest", result.Nearest).
		Bool("degraded", result.Degraded).
		Dur("duration", time.Since(start)).
		Msg("Recommendation completed")
	return result, nil
}

func (a *Advisor) recommend(ctx context.Context, req Request, log zerolog.Logger) (*Result, string, error) {
	all, err := a.store.FindAll(ctx)
	if err != nil {
		return nil, outcomeDataSourceError, fmt.Errorf("%w: %v", ErrDataSource, err)
	}

	current, err := a.store.FindByName(ctx, req.CurrentLocation)
	if err != nil {
		if errors.Is(err, branch.ErrLocationNotFound) {
			return nil, outcomeNotFound, fmt.Errorf("%w: %s", ErrNotFound, req.CurrentLocation)
		}
		return nil, outcomeDataSourceError, fmt.Errorf("%w: %v", ErrDataSource, err)
	}

	eligible := branch.Eligible(all, req.Region, current.Name)
	log.Debug().Str("state", string(StateGeoFiltered)).Int("eligible", len(eligible)).Msg("Geographic filter applied")

	selection := branch.SelectCandidates(eligible, req.Priorities)
	funnelStageTotal.WithLabelValues(string(selection.Stage)).Inc()
	candidatesCount.Observe(float64(len(selection.Candidates)))
	log.Debug().
		Str("state", string(StateFunneled)).
		Str("stage", string(selection.Stage)).
		Int("candidates", len(selection.Candidates)).
		Msg("Candidate funnel applied")

	top := a.engine.SelectTop(scoring.Annotate(current, selection.Candidates), req.Priorities)
	nearest, ok := scoring.Nearest(top)
	if !ok {
		return a.fallback(ctx, req, reasonNoCandidates, log)
	}
	nearestDistanceKm.Observe(nearest.DistanceKm)
	log.Debug().
		Str("state", string(StateScored)).
		Int("top_k", len(top)).
		Str("nearest", nearest.Name).
		Float64("nearest_km", nearest.DistanceKm).
		Msg("Candidates scored")

	prompt := BuildPrompt(PromptInput{
		Current:    current,
		Region:     req.Region,
		Priorities: req.Priorities,
		Candidates: top,
		Nearest:    &nearest,
		IsVeryFar:  a.engine.IsVeryFar,
		VeryFarKm:  a.engine.Config().VeryFarKm,
	})

	text, err := a.generate(ctx, prompt, log)
	if err != nil {
		if ctx.Err() != nil {
			return nil, outcomeCanceled, ctx.Err()
		}
		reason := reasonGeneratorError
		if errors.Is(err, context.DeadlineExceeded) {
			reason = reasonTimeout
		}
		log.Warn().Err(err).Str("provider", a.generator.Name()).Msg("Text generator failed")
		return a.fallback(ctx, req, reason, log)
	}

	pick, explanation := ParseResponse(text)
	if pick == "" {
		log.Warn().Str("response", truncate(text, 200)).Msg("Generator response has no pick")
		return a.fallback(ctx, req, reasonEmptyPick, log)
	}
	chosen, ok := resolvePick(pick, top)
	if !ok {
		log.Warn().Str("pick", truncate(pick, 200)).Msg("Generator picked a branch outside the candidate set")
		return a.fallback(ctx, req, reasonUnknownPick, log)
	}
	log.Debug().Str("state", string(StateResponseParsed)).Str("pick", chosen.Name).Msg("Generator response parsed")

	rationale := explanation
	if rationale == "" {
		rationale = selection.Rationale
	}

	return &Result{
		Pick:      chosen.Name,
		Rationale: rationale,
		Nearest:   nearest.Name,
		Stage:     selection.Stage,
		Provider:  a.generator.Name(),
	}, outcomeAdvised, nil
}

func (a *Advisor) generate(ctx context.Context, prompt string, log zerolog.Logger) (string, error) {
	ctx, span := a.tracer.Start(ctx, "advisor.Generate", trace.WithAttributes(
		attribute.String("provider", a.generator.Name()),
		attribute.Int("prompt_length", len(prompt)),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, a.config.GeneratorTimeout)
	defer cancel()

	log.Debug().Str("state", string(StatePromptSent)).Int("prompt_length", len(prompt)).Msg("Prompt sent")

	start := time.Now()
	text, err := a.generator.Generate(ctx, prompt)
	generatorDuration.WithLabelValues(a.generator.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return text, nil
}

// fallback recomputes the eligible set from a fresh store read and returns
// the nearest eligible branch as both pick and nearest.
func (a *Advisor) fallback(ctx context.Context, req Request, reason string, log zerolog.Logger) (*Result, string, error) {
	_, span := a.tracer.Start(ctx, "advisor.Fallback", trace.WithAttributes(attribute.String("reason", reason)))
	defer span.End()

	fallbackTotal.WithLabelValues(reason).Inc()
	log.Warn().Str("state", string(StateFallback)).Str("reason", reason).Msg("Switching to distance-only recommendation")

	all, err := a.store.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, outcomeDataSourceError, fmt.Errorf("%w: fallback: %v", ErrDataSource, err)
	}
	current, err := a.store.FindByName(ctx, req.CurrentLocation)
	if err != nil {
		span.RecordError(err)
		return nil, outcomeDataSourceError, fmt.Errorf("%w: fallback: %v", ErrDataSource, err)
	}

	pick := a.config.FallbackPick
	annotated := scoring.Annotate(current, branch.Eligible(all, req.Region, current.Name))
	if nearest, ok := scoring.Nearest(annotated); ok {
		pick = nearest.Name
		nearestDistanceKm.Observe(nearest.DistanceKm)
		log.Debug().Str("nearest", pick).Str("distance", scoring.FormatDistance(nearest.DistanceKm)).Msg("Fallback picked nearest eligible branch")
	} else {
		log.Warn().Str("default_pick", pick).Msg("No eligible branch in region, using default pick")
	}

	return &Result{
		Pick:      pick,
		Rationale: DegradedRationale,
		Nearest:   pick,
		Degraded:  true,
	}, outcomeDegraded, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
