package permkit

import (
	"context"
	"strconv"
)

// Engine is the built authorization kernel: a registry plus the optional
// cache, audit, and metrics wiring from [Builder.Build]. All methods are safe
// for concurrent use.
//
// Engine instances are intended to be configured during initialization and
// then treated as immutable.
type Engine struct {
	config   Config
	registry *Registry
	cache    *maskCache
	audit    *auditDispatcher
	metrics  *Metrics
}

// Close drains and stops the audit dispatcher. The registry remains usable.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// Registry exposes the engine's registry for direct kernel access.
func (e *Engine) Registry() *Registry {
	if e == nil {
		return nil
	}
	return e.registry
}

// Register registers p, emitting an audit event and counting the outcome.
func (e *Engine) Register(ctx context.Context, p *Permission) (*Permission, error) {
	if e == nil || e.registry == nil {
		return nil, ErrEngineNotReady
	}

	registered, err := e.registry.Register(p)
	if err != nil {
		e.metricInc(MetricRegisterDuplicate)
		event := newAuditEvent(AuditPermissionDuplicate)
		if p != nil {
			event.Permission = string(p.name)
		}
		event.Error = err.Error()
		e.audit.Emit(ctx, event)
		return nil, err
	}

	e.metricInc(MetricRegister)
	event := newAuditEvent(AuditPermissionRegistered)
	event.Permission = string(registered.name)
	event.Mask = uint64(registered.bit)
	e.audit.Emit(ctx, event)

	return registered, nil
}

// Unregister removes p from the registry if currently registered.
func (e *Engine) Unregister(ctx context.Context, p *Permission) error {
	if e == nil || e.registry == nil {
		return ErrEngineNotReady
	}
	if p == nil {
		return ErrNilPermission
	}

	e.registry.Unregister(p)
	e.metricInc(MetricUnregister)

	event := newAuditEvent(AuditPermissionUnregistered)
	event.Permission = string(p.name)
	e.audit.Emit(ctx, event)

	return nil
}

// Lookup resolves a reference to the registered permission, or nil.
func (e *Engine) Lookup(ref Reference) *Permission {
	if e == nil || e.registry == nil {
		return nil
	}
	return e.registry.Lookup(ref)
}

// Mask computes the combined bitmask of refs with grant-closure expansion,
// consulting the Redis cache when wired. Cache failures degrade to direct
// computation and never propagate. Unresolvable references contribute zero
// bits; they are surfaced through MetricResolutionMiss and, when
// Resolution.Strict is set, through mask.resolution_miss audit events.
func (e *Engine) Mask(ctx context.Context, refs ...Reference) Mask {
	if e == nil || e.registry == nil {
		return 0
	}

	var key string
	if e.cache != nil {
		var cacheable bool
		key, cacheable = e.cache.key(refs, e.registry.Version())
		if cacheable {
			mask, hit, err := e.cache.Get(ctx, key)
			switch {
			case err != nil:
				e.metricInc(MetricCacheError)
			case hit:
				e.metricInc(MetricCacheHit)
				return mask
			default:
				e.metricInc(MetricCacheMiss)
			}
		} else {
			key = ""
		}
	}

	mask, misses := e.registry.maskOf(refs)
	e.metricInc(MetricMaskComputed)

	if len(misses) > 0 {
		e.metrics.Add(MetricResolutionMiss, uint64(len(misses)))
		if e.config.Resolution.Strict {
			for _, name := range misses {
				event := newAuditEvent(AuditResolutionMiss)
				event.Permission = string(name)
				event.RefCount = len(refs)
				e.audit.Emit(ctx, event)
			}
		}
	}

	if e.audit != nil {
		event := newAuditEvent(AuditMaskComputed)
		event.Mask = uint64(mask)
		event.RefCount = len(refs)
		if len(misses) > 0 {
			event.Metadata = map[string]string{
				"resolution_misses": strconv.Itoa(len(misses)),
			}
		}
		e.audit.Emit(ctx, event)
	}

	if key != "" {
		if err := e.cache.Save(ctx, key, mask); err != nil {
			e.metricInc(MetricCacheError)
		}
	}

	return mask
}

// MaskStrict computes the same union as Mask but fails on the first
// unresolvable reference or grant target. It bypasses the cache.
func (e *Engine) MaskStrict(ctx context.Context, refs ...Reference) (Mask, error) {
	if e == nil || e.registry == nil {
		return 0, ErrEngineNotReady
	}

	mask, err := e.registry.MaskOfStrict(refs...)
	if err != nil {
		e.metricInc(MetricStrictFailure)
		event := newAuditEvent(AuditResolutionMiss)
		event.Error = err.Error()
		event.RefCount = len(refs)
		e.audit.Emit(ctx, event)
		return 0, err
	}

	e.metricInc(MetricMaskComputed)
	return mask, nil
}

// MetricsSnapshot copies the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports events dropped by a full audit buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}
