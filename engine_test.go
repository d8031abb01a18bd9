package permkit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestEngine(t *testing.T, cfg Config, opts ...func(*Builder)) *Engine {
	t.Helper()

	b := New().WithConfig(cfg)
	for _, opt := range opts {
		opt(b)
	}
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func newCachedEngine(t *testing.T, perms ...*Permission) (*Engine, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := DefaultConfig()
	cfg.Cache.Enabled = true

	engine := newTestEngine(t, cfg, func(b *Builder) {
		b.WithRedis(rdb).WithPermissions(perms...)
	})
	return engine, mr
}

func TestBuilderBuildsWorkingEngine(t *testing.T) {
	p1 := NewPermission("p1", 1)
	p2 := NewPermission("p2", 2, "p1")

	engine := newTestEngine(t, DefaultConfig(), func(b *Builder) {
		b.WithPermissions(p1, p2)
	})

	if got := engine.Mask(context.Background(), p2); got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
	if got := engine.Lookup(Name("p1")); got != p1 {
		t.Fatalf("expected p1, got %v", got)
	}
	if engine.Registry().Len() != 2 {
		t.Fatalf("expected 2 permissions, got %d", engine.Registry().Len())
	}
}

func TestBuilderRejectsReuse(t *testing.T) {
	b := New()
	if _, err := b.Build(); err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrBuilderReused) {
		t.Fatalf("expected ErrBuilderReused, got %v", err)
	}
}

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Enabled = true
	cfg.Cache.KeyPrefix = ""

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected config validation error")
	}
}

func TestBuilderSurfacesYAMLErrors(t *testing.T) {
	b := New().WithDefinitionsYAML([]byte("permissions: ["))
	if _, err := b.Build(); !errors.Is(err, ErrInvalidDefinition) {
		t.Fatalf("expected ErrInvalidDefinition, got %v", err)
	}
}

func TestBuilderRegistersYAMLDefinitions(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig(), func(b *Builder) {
		b.WithDefinitionsYAML([]byte(definitionsYAML))
	})

	if got := engine.Mask(context.Background(), Name("manage")); got != 0x7 {
		t.Fatalf("expected 0x7, got %v", got)
	}
}

func TestBuilderRejectsDuplicatePermissions(t *testing.T) {
	b := New().WithPermissions(
		NewPermission("dup", 1),
		NewPermission("dup", 2),
	)
	if _, err := b.Build(); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestEngineRegisterDuplicateCounted(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())
	ctx := context.Background()

	p := NewPermission("x", 1)
	if _, err := engine.Register(ctx, p); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := engine.Register(ctx, NewPermission("x", 2)); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricRegister] != 1 || snap.Counters[MetricRegisterDuplicate] != 1 {
		t.Fatalf("unexpected counters: %v", snap.Counters)
	}
}

func TestEngineMaskCountsResolutionMisses(t *testing.T) {
	p1 := NewPermission("p1", 1)
	engine := newTestEngine(t, DefaultConfig(), func(b *Builder) {
		b.WithPermissions(p1)
	})

	if got := engine.Mask(context.Background(), Name("ghost"), p1); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	if got := engine.MetricsSnapshot().Counters[MetricResolutionMiss]; got != 1 {
		t.Fatalf("expected 1 resolution miss, got %d", got)
	}
}

func TestEngineMaskStrict(t *testing.T) {
	p1 := NewPermission("p1", 1)
	engine := newTestEngine(t, DefaultConfig(), func(b *Builder) {
		b.WithPermissions(p1)
	})
	ctx := context.Background()

	got, err := engine.MaskStrict(ctx, p1, RawBits(0x10))
	if err != nil {
		t.Fatalf("MaskStrict failed: %v", err)
	}
	if got != 0x11 {
		t.Fatalf("expected 0x11, got %v", got)
	}

	if _, err := engine.MaskStrict(ctx, Name("ghost")); !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricStrictFailure]; got != 1 {
		t.Fatalf("expected 1 strict failure, got %d", got)
	}
}

func TestEngineNilSafe(t *testing.T) {
	var engine *Engine
	if got := engine.Mask(context.Background(), Name("x")); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if _, err := engine.Register(context.Background(), NewPermission("x", 1)); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
	engine.Close()
}

func TestEngineMaskCacheHit(t *testing.T) {
	p1 := NewPermission("p1", 1)
	p2 := NewPermission("p2", 2, "p1")
	engine, _ := newCachedEngine(t, p1, p2)
	ctx := context.Background()

	if got := engine.Mask(ctx, p2); got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
	if got := engine.Mask(ctx, p2); got != 3 {
		t.Fatalf("expected 3 from cache, got %v", got)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricCacheMiss] != 1 {
		t.Fatalf("expected 1 cache miss, got %d", snap.Counters[MetricCacheMiss])
	}
	if snap.Counters[MetricCacheHit] != 1 {
		t.Fatalf("expected 1 cache hit, got %d", snap.Counters[MetricCacheHit])
	}
	if snap.Counters[MetricMaskComputed] != 1 {
		t.Fatalf("expected 1 computation, got %d", snap.Counters[MetricMaskComputed])
	}
}

func TestEngineMaskCacheInvalidatedByRegistration(t *testing.T) {
	p1 := NewPermission("p1", 1)
	engine, _ := newCachedEngine(t, p1)
	ctx := context.Background()

	if got := engine.Mask(ctx, p1); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}

	// registry mutation bumps the version, stranding the cached entry
	if _, err := engine.Register(ctx, NewPermission("p2", 2)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if got := engine.Mask(ctx, p1); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricCacheMiss] != 2 {
		t.Fatalf("expected 2 cache misses, got %d", snap.Counters[MetricCacheMiss])
	}
	if snap.Counters[MetricCacheHit] != 0 {
		t.Fatalf("expected 0 cache hits, got %d", snap.Counters[MetricCacheHit])
	}
}

func TestEngineMaskSurvivesCacheOutage(t *testing.T) {
	p1 := NewPermission("p1", 1)
	engine, mr := newCachedEngine(t, p1)
	ctx := context.Background()

	mr.Close()

	if got := engine.Mask(ctx, p1); got != 1 {
		t.Fatalf("expected 1 despite cache outage, got %v", got)
	}
	if got := engine.MetricsSnapshot().Counters[MetricCacheError]; got == 0 {
		t.Fatal("expected cache errors to be counted")
	}
}

func TestEngineEmitsAuditEvents(t *testing.T) {
	sink := NewChannelSink(32)
	cfg := DefaultConfig()
	cfg.Audit.Enabled = true

	engine := newTestEngine(t, cfg, func(b *Builder) {
		b.WithAuditSink(sink)
	})
	ctx := context.Background()

	p := NewPermission("audited", 1)
	if _, err := engine.Register(ctx, p); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	engine.Mask(ctx, p)
	if err := engine.Unregister(ctx, p); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}
	engine.Close()

	want := map[string]bool{
		AuditPermissionRegistered:   false,
		AuditMaskComputed:           false,
		AuditPermissionUnregistered: false,
	}
	deadline := time.After(2 * time.Second)
	for remaining := len(want); remaining > 0; {
		select {
		case event := <-sink.Events():
			if event.ID == "" {
				t.Fatal("expected event ID")
			}
			if seen, tracked := want[event.EventType]; tracked && !seen {
				want[event.EventType] = true
				remaining--
			}
		case <-deadline:
			t.Fatalf("missing audit events: %v", want)
		}
	}
}
