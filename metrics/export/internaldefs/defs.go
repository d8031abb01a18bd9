package internaldefs

import (
	permkit "github.com/permkit/permkit"
)

// CounterDef pairs a [permkit.MetricID] with its exported metric name and
// help text. Both exporters render from this single table so their output
// stays aligned.
type CounterDef struct {
	ID   permkit.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter exposed by the exporters, in stable order.
var CounterDefs = []CounterDef{
	{ID: permkit.MetricRegister, Name: "permkit_register_total", Help: "Successful permission registrations."},
	{ID: permkit.MetricRegisterDuplicate, Name: "permkit_register_duplicate_total", Help: "Registrations rejected for a duplicate name."},
	{ID: permkit.MetricUnregister, Name: "permkit_unregister_total", Help: "Permission unregistrations."},
	{ID: permkit.MetricMaskComputed, Name: "permkit_mask_computed_total", Help: "Mask computations resolved against the registry."},
	{ID: permkit.MetricResolutionMiss, Name: "permkit_resolution_miss_total", Help: "References that resolved to no registered permission."},
	{ID: permkit.MetricStrictFailure, Name: "permkit_strict_failure_total", Help: "Strict mask computations that failed on an unknown reference."},
	{ID: permkit.MetricCacheHit, Name: "permkit_cache_hit_total", Help: "Mask computations served from the Redis cache."},
	{ID: permkit.MetricCacheMiss, Name: "permkit_cache_miss_total", Help: "Cache lookups that found no entry."},
	{ID: permkit.MetricCacheError, Name: "permkit_cache_error_total", Help: "Cache operations that failed and fell back to computation."},
}

// AuditDroppedName is the counter for audit events lost to dispatcher
// backpressure; it is read from the engine rather than the counter table.
const AuditDroppedName = "permkit_audit_dropped_total"

// AuditDroppedHelp documents AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
