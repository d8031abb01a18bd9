package permkit

import (
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the engine's methods are called.
type Builder struct {
	config Config
	redis  *redis.Client

	definitions []Definition
	defErr      error
	permissions []*Permission
	auditSink   AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis supplies the client backing the computed-mask cache. The cache is
// only active when Cache.Enabled is also set.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithDefinitions queues declarative definitions for registration at Build.
func (b *Builder) WithDefinitions(defs ...Definition) *Builder {
	b.definitions = append(b.definitions, defs...)
	return b
}

// WithDefinitionsYAML parses a YAML definitions document and queues it for
// registration at Build. Parse errors surface from Build.
func (b *Builder) WithDefinitionsYAML(data []byte) *Builder {
	defs, err := ParseDefinitions(data)
	if err != nil {
		if b.defErr == nil {
			b.defErr = err
		}
		return b
	}
	return b.WithDefinitions(defs...)
}

// WithPermissions queues already-constructed permissions for registration at Build.
func (b *Builder) WithPermissions(perms ...*Permission) *Builder {
	b.permissions = append(b.permissions, perms...)
	return b
}

// WithAuditSink sets the sink receiving audit events when Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration, registers queued definitions and
// permissions, and wires the cache, audit dispatcher, and metrics. A Builder
// builds at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderReused
	}

	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if b.defErr != nil {
		return nil, b.defErr
	}
	if err := ValidateDefinitions(b.definitions); err != nil {
		return nil, err
	}

	registry := NewRegistry()
	if err := registry.RegisterDefinitions(b.definitions); err != nil {
		return nil, err
	}
	for _, p := range b.permissions {
		if _, err := registry.Register(p); err != nil {
			return nil, err
		}
	}

	engine := &Engine{
		config:   b.config,
		registry: registry,
		metrics:  NewMetrics(b.config.Metrics),
		audit:    newAuditDispatcher(b.config.Audit, b.auditSink),
	}

	if b.redis != nil && b.config.Cache.Enabled {
		engine.cache = newMaskCache(b.redis, b.config.Cache)
	}

	b.built = true
	return engine, nil
}
