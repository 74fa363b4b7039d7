package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchmove/branch-service/internal/branch"
	"github.com/branchmove/branch-service/internal/scoring"
)

// kmPerDegreeLat is the meridian arc length of one degree for R = 6371 km.
const kmPerDegreeLat = 6371 * 3.141592653589793 / 180

func at(km float64) branch.Coordinate {
	return branch.Coordinate{Lat: 41 + km/kmPerDegreeLat, Lon: 29}
}

func fixtureDataset() []branch.Location {
	return []branch.Location{
		{ID: 1, Name: "Origin Branch", Region: "Istanbul", Coordinate: at(0), ATMCount: 5, Density: branch.DensityHigh},
		{ID: 2, Name: "Harbor Branch", Region: "Istanbul", Coordinate: at(5), ATMCount: 2, Density: branch.DensityMedium},
		{ID: 3, Name: "Plaza Branch", Region: "Istanbul", Coordinate: at(20), ATMCount: 8, Density: branch.DensityLow},
		{ID: 4, Name: "Hillside Branch", Region: "Istanbul", Coordinate: at(45), ATMCount: 1, Density: branch.DensityLow},
		{ID: 5, Name: "Capital Branch", Region: "Ankara", Coordinate: at(1), ATMCount: 1, Density: branch.DensityLow},
	}
}

type fakeStore struct {
	mu          sync.Mutex
	locs        []branch.Location
	findAllErr  error
	byNameErr   error
	byNameCalls int
	// failByNameFrom makes FindByName fail from the given call number on
	failByNameFrom int
}

func (s *fakeStore) FindAll(ctx context.Context) ([]branch.Location, error) {
	if s.findAllErr != nil {
		return nil, s.findAllErr
	}
	out := make([]branch.Location, len(s.locs))
	copy(out, s.locs)
	return out, nil
}

func (s *fakeStore) FindByName(ctx context.Context, name string) (branch.Location, error) {
	s.mu.Lock()
	s.byNameCalls++
	call := s.byNameCalls
	s.mu.Unlock()

	if s.byNameErr != nil {
		return branch.Location{}, s.byNameErr
	}
	if s.failByNameFrom > 0 && call >= s.failByNameFrom {
		return branch.Location{}, errors.New("dataset file truncated")
	}
	for _, l := range s.locs {
		if l.Name == branch.NormalizeName(name) {
			return l, nil
		}
	}
	return branch.Location{}, fmt.Errorf("%w: %s", branch.ErrLocationNotFound, name)
}

type fakeGenerator struct {
	response string
	err      error
	block    bool
	prompts  []string
}

func (g *fakeGenerator) Name() string { return "fake" }

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.response, g.err
}

func newTestAdvisor(store LocationStore, gen TextGenerator, timeout time.Duration) *Advisor {
	return New(store, gen, scoring.NewEngine(nil, zerolog.Nop()), Config{GeneratorTimeout: timeout}, zerolog.Nop())
}

func lowATMRequest() Request {
	return Request{
		Region:          "Istanbul",
		CurrentLocation: "Origin Branch",
		Priorities:      []branch.Criterion{branch.LowATMDensity},
	}
}

func TestRecommendEndToEnd(t *testing.T) {
	store := &fakeStore{locs: fixtureDataset()}
	gen := &fakeGenerator{response: "**Harbor Branch**\nEXPLANATION: Low ATM density and the closest candidate."}
	a := newTestAdvisor(store, gen, time.Second)

	result, err := a.Recommend(context.Background(), lowATMRequest())
	require.NoError(t, err)

	assert.Equal(t, "Harbor Branch", result.Pick)
	assert.Equal(t, "Low ATM density and the closest candidate.", result.Rationale)
	assert.Equal(t, "Harbor Branch", result.Nearest)
	assert.Equal(t, branch.StageFullMatch, result.Stage)
	assert.False(t, result.Degraded)
	assert.Equal(t, "fake", result.Provider)

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	harbor := strings.Index(prompt, "1. Harbor Branch")
	hillside := strings.Index(prompt, "2. Hillside Branch")
	assert.True(t, harbor >= 0 && hillside > harbor, "matching candidates are ranked Harbor then Hillside")
	assert.NotContains(t, prompt, "Plaza Branch", "unmatching branch is dropped by the full-match stage")
	assert.NotContains(t, prompt, "Capital Branch", "out-of-region branch is not eligible")
	assert.NotContains(t, prompt, "1. Origin Branch", "current branch is never a candidate")
	assert.Contains(t, prompt, "45.0 km (very far)")
}

func TestRankedOrderWithPriorityBonus(t *testing.T) {
	engine := scoring.NewEngine(nil, zerolog.Nop())
	all := fixtureDataset()
	eligible := branch.Eligible(all, "Istanbul", "Origin Branch")
	ranked := engine.Rank(scoring.Annotate(all[0], eligible), lowATMRequest().Priorities)

	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.Name
	}
	// Harbor 27+40+20, Hillside 3+40+20, Plaza 18+0+0
	assert.Equal(t, []string{"Harbor Branch", "Hillside Branch", "Plaza Branch"}, names)
	assert.InDelta(t, 87, ranked[0].Score, 0.01)
	assert.InDelta(t, 63, ranked[1].Score, 0.01)
	assert.InDelta(t, 18, ranked[2].Score, 0.01)
}

func TestRecommendFallsBackOnTimeout(t *testing.T) {
	store := &fakeStore{locs: fixtureDataset()}
	gen := &fakeGenerator{block: true}
	a := newTestAdvisor(store, gen, 20*time.Millisecond)

	req := lowATMRequest()
	req.Priorities = []branch.Criterion{branch.LowBranchDensity}

	result, err := a.Recommend(context.Background(), req)
	require.NoError(t, err)

	// Harbor is the nearest eligible branch even though it does not match.
	assert.Equal(t, "Harbor Branch", result.Pick)
	assert.Equal(t, "Harbor Branch", result.Nearest)
	assert.True(t, result.Degraded)
	assert.Contains(t, result.Rationale, "Degraded mode")
	assert.Contains(t, result.Rationale, "distance-only")
	assert.Empty(t, result.Stage)
}

func TestRecommendFallbackReasons(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"generator error", &fakeGenerator{err: errors.New("401 unauthorized")}},
		{"empty response", &fakeGenerator{response: "   "}},
		{"explanation only", &fakeGenerator{response: "EXPLANATION: nothing to add"}},
		{"pick outside candidates", &fakeGenerator{response: "Moon Branch\nEXPLANATION: it is great"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdvisor(&fakeStore{locs: fixtureDataset()}, tt.gen, time.Second)
			result, err := a.Recommend(context.Background(), lowATMRequest())
			require.NoError(t, err)
			assert.True(t, result.Degraded)
			assert.Equal(t, "Harbor Branch", result.Pick)
			assert.Equal(t, DegradedRationale, result.Rationale)
		})
	}
}

func TestRecommendUsesFunnelRationaleWithoutExplanation(t *testing.T) {
	gen := &fakeGenerator{response: "hillside branch."}
	a := newTestAdvisor(&fakeStore{locs: fixtureDataset()}, gen, time.Second)

	result, err := a.Recommend(context.Background(), lowATMRequest())
	require.NoError(t, err)
	assert.Equal(t, "Hillside Branch", result.Pick, "pick is canonicalized to the candidate name")
	assert.Equal(t, branch.RationaleFullMatch, result.Rationale)
	assert.Equal(t, "Harbor Branch", result.Nearest, "nearest is independent of the generator pick")
}

func TestRecommendNoEligibleBranches(t *testing.T) {
	store := &fakeStore{locs: fixtureDataset()[:1]}
	gen := &fakeGenerator{response: "Harbor Branch"}
	a := newTestAdvisor(store, gen, time.Second)

	result, err := a.Recommend(context.Background(), lowATMRequest())
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, DefaultFallbackPick, result.Pick)
	assert.Equal(t, DefaultFallbackPick, result.Nearest)
	assert.Empty(t, gen.prompts, "generator is not called without candidates")
}

func TestRecommendErrors(t *testing.T) {
	tests := []struct {
		name    string
		store   *fakeStore
		req     Request
		wantErr error
	}{
		{
			name:    "unknown current location",
			store:   &fakeStore{locs: fixtureDataset()},
			req:     Request{Region: "Istanbul", CurrentLocation: "Nowhere Branch"},
			wantErr: ErrNotFound,
		},
		{
			name:    "dataset unreadable",
			store:   &fakeStore{findAllErr: errors.New("permission denied")},
			req:     lowATMRequest(),
			wantErr: ErrDataSource,
		},
		{
			name:    "lookup fails with io error",
			store:   &fakeStore{locs: fixtureDataset(), byNameErr: errors.New("connection reset")},
			req:     lowATMRequest(),
			wantErr: ErrDataSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{response: "Harbor Branch"}
			_, err := newTestAdvisor(tt.store, gen, time.Second).Recommend(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, gen.prompts)
		})
	}
}

func TestRecommendFallbackLookupFailure(t *testing.T) {
	store := &fakeStore{locs: fixtureDataset(), failByNameFrom: 2}
	a := newTestAdvisor(store, &fakeGenerator{err: errors.New("unreachable")}, time.Second)

	_, err := a.Recommend(context.Background(), lowATMRequest())
	assert.ErrorIs(t, err, ErrDataSource)
	assert.Equal(t, 2, store.byNameCalls)
}

func TestRecommendCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &fakeGenerator{block: true}
	a := newTestAdvisor(&fakeStore{locs: fixtureDataset()}, gen, time.Minute)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := a.Recommend(ctx, lowATMRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewAppliesDefaults(t *testing.T) {
	a := New(&fakeStore{}, &fakeGenerator{}, nil, Config{}, zerolog.Nop())
	assert.Equal(t, 60*time.Second, a.config.GeneratorTimeout)
	assert.Equal(t, DefaultFallbackPick, a.config.FallbackPick)
	assert.Equal(t, "fake", a.ProviderName())
}
