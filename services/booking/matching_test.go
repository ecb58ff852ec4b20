package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"nestly/database/repository"
	"nestly/models"
)

func TestMatchProvidersRanksByRatingThenReviews(t *testing.T) {
	a := bookableProvider("A", 4.0, 10, "cleaning")
	b := bookableProvider("B", 4.5, 2, "cleaning")
	c := bookableProvider("C", 4.5, 8, "cleaning")
	f := newFixture(t, a, b, c)

	got, err := f.matching.MatchProviders(context.Background(), "cleaning")
	if err != nil {
		t.Fatalf("MatchProviders: %v", err)
	}
	want := []string{"C", "B", "A"}
	if len(got) != len(want) {
		t.Fatalf("got %d providers, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ProviderID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ProviderID, id)
		}
	}
}

func TestMatchProvidersFiltersIneligible(t *testing.T) {
	offline := bookableProvider("offline", 5, 1, "plumbing")
	offline.IsOnline = false
	paused := bookableProvider("paused", 5, 1, "plumbing")
	paused.AcceptingBookings = false
	unapproved := bookableProvider("unapproved", 5, 1, "plumbing")
	unapproved.IsApproved = false
	wrongService := bookableProvider("cleaner", 5, 1, "cleaning")
	ok := bookableProvider("ok", 3, 1, "plumbing", "electrical")
	f := newFixture(t, offline, paused, unapproved, wrongService, ok)

	got, err := f.matching.MatchProviders(context.Background(), "Plumbing")
	if err != nil {
		t.Fatalf("MatchProviders: %v", err)
	}
	if len(got) != 1 || got[0].ProviderID != "ok" {
		t.Fatalf("got %+v, want only provider ok", got)
	}
}

func TestMatchProvidersEmptyIsNotAnError(t *testing.T) {
	f := newFixture(t)
	got, err := f.matching.MatchProviders(context.Background(), "caregiving")
	if err != nil {
		t.Fatalf("MatchProviders: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d providers, want none", len(got))
	}
}

func TestMatchProvidersUnknownService(t *testing.T) {
	f := newFixture(t)
	_, err := f.matching.MatchProviders(context.Background(), "dog walking")
	if !errors.Is(err, ErrInvalidService) {
		t.Fatalf("got %v, want ErrInvalidService", err)
	}
}

func TestRankProvidersKeepsInputOrderOnExactTies(t *testing.T) {
	in := []models.ProviderProfile{
		bookableProvider("first", 4, 3, "cleaning"),
		bookableProvider("second", 4, 3, "cleaning"),
	}
	got := RankProviders(in)
	if got[0].ProviderID != "first" || got[1].ProviderID != "second" {
		t.Fatalf("tie order changed: %s, %s", got[0].ProviderID, got[1].ProviderID)
	}
}

type mapCache struct {
	mu          sync.Mutex
	entries     map[string][]models.ProviderProfile
	generations map[string]int64
	invalidated []string
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]models.ProviderProfile{}, generations: map[string]int64{}}
}

func (c *mapCache) Get(_ context.Context, service string) ([]models.ProviderProfile, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[service]
	return v, c.generations[service], ok
}

func (c *mapCache) Set(_ context.Context, service string, generation int64, providers []models.ProviderProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[service] != generation {
		return
	}
	c.entries[service] = providers
}

func (c *mapCache) Invalidate(_ context.Context, services ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range services {
		c.generations[s]++
		delete(c.entries, s)
		c.invalidated = append(c.invalidated, s)
	}
}

func (c *mapCache) cached(service string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[service]
	return ok
}

// invalidatingRepo runs onRead after each service query returns, standing in
// for a profile change that commits while discovery is still ranking.
type invalidatingRepo struct {
	repository.ProviderRepository
	onRead func()
}

func (r *invalidatingRepo) GetByService(ctx context.Context, service string) ([]models.ProviderProfile, error) {
	profiles, err := r.ProviderRepository.GetByService(ctx, service)
	if r.onRead != nil {
		r.onRead()
	}
	return profiles, err
}

func TestMatchProvidersUsesCacheUntilInvalidated(t *testing.T) {
	f := newFixture(t, bookableProvider("A", 4, 1, "handyman"))
	cache := newMapCache()
	f.matching.Cache = cache
	ctx := context.Background()

	if _, err := f.matching.MatchProviders(ctx, "handyman"); err != nil {
		t.Fatalf("MatchProviders: %v", err)
	}
	f.mem.SeedProvider(bookableProvider("B", 5, 1, "handyman"))

	got, _ := f.matching.MatchProviders(ctx, "handyman")
	if len(got) != 1 {
		t.Fatalf("expected cached result with 1 provider, got %d", len(got))
	}

	f.matching.Invalidate(ctx, "handyman")
	got, _ = f.matching.MatchProviders(ctx, "handyman")
	if len(got) != 2 || got[0].ProviderID != "B" {
		t.Fatalf("expected fresh result led by B, got %+v", got)
	}
}

func TestInvalidateDuringMatchDropsStaleResult(t *testing.T) {
	f := newFixture(t, bookableProvider("A", 4, 1, "outdoor-care"))
	cache := newMapCache()
	f.matching.Cache = cache
	ctx := context.Background()

	// A goes offline after discovery read it but before the result is cached.
	f.matching.ProviderRepo = &invalidatingRepo{
		ProviderRepository: f.store.Providers,
		onRead: func() {
			offline := bookableProvider("A", 4, 1, "outdoor-care")
			offline.IsOnline = false
			f.mem.SeedProvider(offline)
			f.matching.Invalidate(ctx, "outdoor-care")
		},
	}
	got, err := f.matching.MatchProviders(ctx, "outdoor-care")
	if err != nil {
		t.Fatalf("MatchProviders: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("in-flight result: got %d providers, want 1", len(got))
	}
	if cache.cached("outdoor-care") {
		t.Fatal("result read before the invalidation was cached")
	}

	f.matching.ProviderRepo = f.store.Providers
	got, _ = f.matching.MatchProviders(ctx, "outdoor-care")
	if len(got) != 0 {
		t.Fatalf("offline provider still listed: %+v", got)
	}
}

func TestEligibleProvider(t *testing.T) {
	offline := bookableProvider("offline", 4, 1, "cleaning")
	offline.IsOnline = false
	f := newFixture(t, bookableProvider("ok", 4, 1, "cleaning"), offline)
	ctx := context.Background()

	if _, err := f.matching.EligibleProvider(ctx, "cleaning", "ok"); err != nil {
		t.Fatalf("EligibleProvider(ok): %v", err)
	}
	if _, err := f.matching.EligibleProvider(ctx, "cleaning", "offline"); !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("offline: got %v, want ErrProviderUnavailable", err)
	}
	if _, err := f.matching.EligibleProvider(ctx, "plumbing", "ok"); !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("wrong service: got %v, want ErrProviderUnavailable", err)
	}
	if _, err := f.matching.EligibleProvider(ctx, "cleaning", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: got %v, want ErrNotFound", err)
	}
}
