package permkit

import (
	"fmt"
	"iter"
	"sync"
)

// Registry is the single source of truth mapping permission name to
// permission instance. It is explicitly constructed and passed to callers
// rather than held as ambient process state, so test isolation and lifetime
// are owned by the host application.
//
// All methods are safe for concurrent use. Registration takes the write lock;
// lookups and mask computation take the read lock, so masks are computed
// against a consistent view of the grant graph.
type Registry struct {
	mu      sync.RWMutex
	byName  map[Name]*Permission
	order   []Name
	version uint64
}

// NewRegistry creates an empty permission registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[Name]*Permission),
	}
}

// Register inserts p under its name and returns it. Registering a different
// instance under a name already in use fails with [ErrDuplicateName];
// re-registering the identical instance is idempotent and succeeds.
func (r *Registry) Register(p *Permission) (*Permission, error) {
	if p == nil {
		return nil, ErrNilPermission
	}
	if p.name == "" {
		return nil, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byName[p.name]; ok {
		if existing == p {
			return p, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, p.name)
	}

	r.byName[p.name] = p
	r.order = append(r.order, p.name)
	r.version++

	return p, nil
}

// Unregister removes p's entry if p is currently registered under its name.
// Unregistering a permission that is absent, or whose name is bound to a
// different instance, is a no-op.
func (r *Registry) Unregister(p *Permission) {
	if p == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byName[p.name] != p {
		return
	}
	r.removeLocked(p.name)
}

// UnregisterName removes whatever permission is bound to name, if any.
func (r *Registry) UnregisterName(name Name) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; !ok {
		return
	}
	r.removeLocked(name)
}

func (r *Registry) removeLocked(name Name) {
	delete(r.byName, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.version++
}

// Lookup resolves a reference to the registered permission, or nil when the
// reference carries no name or the name is not registered. This is the single
// polymorphic entry point all other resolution builds on.
func (r *Registry) Lookup(ref Reference) *Permission {
	name, ok := PermissionName(ref)
	if !ok {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Len returns the number of registered permissions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Version returns a counter incremented by every successful Register and
// Unregister. The mask cache scopes its keys by this value so registry
// mutation implicitly invalidates cached masks.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// All returns a restartable sequence of the registered permissions in
// insertion order. The order is not part of the contract; callers must not
// depend on it for correctness. The sequence iterates over a snapshot, so it
// is safe to register or unregister while ranging.
func (r *Registry) All() iter.Seq[*Permission] {
	return func(yield func(*Permission) bool) {
		r.mu.RLock()
		snapshot := make([]*Permission, 0, len(r.order))
		for _, name := range r.order {
			snapshot = append(snapshot, r.byName[name])
		}
		r.mu.RUnlock()

		for _, p := range snapshot {
			if !yield(p) {
				return
			}
		}
	}
}

// MaskOf computes the combined bitmask of the given references, expanding
// each resolved permission's grant closure. Per reference:
//
//   - [RawBits] is OR'd in directly, bypassing grant expansion.
//   - A [*Permission] instance is used as-is, registered or not; its grant
//     names still resolve through the registry.
//   - A [Name] or [Definer] resolves through the registry. Unresolvable
//     references contribute no bits and produce no error.
//
// Expansion carries a visited set keyed by name, so duplicate references are
// idempotent, work is bounded by the number of reachable permissions, and an
// accidentally cyclic grant declaration terminates. Empty input yields 0.
func (r *Registry) MaskOf(refs ...Reference) Mask {
	mask, _ := r.maskOf(refs)
	return mask
}

// MaskOfStrict computes the same union as [Registry.MaskOf] but fails with
// [ErrUnknownReference] on the first reference or grant target that does not
// resolve to a registered permission. Nil references also fail. RawBits and
// direct instances never fail.
func (r *Registry) MaskOfStrict(refs ...Reference) (Mask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var acc Mask
	visited := make(map[Name]struct{})

	for _, ref := range refs {
		switch v := ref.(type) {
		case nil:
			return 0, fmt.Errorf("%w: nil reference", ErrUnknownReference)
		case RawBits:
			acc |= Mask(v)
		case *Permission:
			if v == nil {
				return 0, fmt.Errorf("%w: nil reference", ErrUnknownReference)
			}
			m, err := r.expandStrictLocked(v, visited)
			if err != nil {
				return 0, err
			}
			acc |= m
		default:
			name, ok := PermissionName(ref)
			if !ok {
				return 0, fmt.Errorf("%w: %T", ErrUnknownReference, ref)
			}
			p, ok := r.byName[name]
			if !ok {
				return 0, fmt.Errorf("%w: %s", ErrUnknownReference, name)
			}
			m, err := r.expandStrictLocked(p, visited)
			if err != nil {
				return 0, err
			}
			acc |= m
		}
	}

	return acc, nil
}

// maskOf is the lenient closure walk. It returns the names of references that
// failed to resolve so the engine can count and audit them.
func (r *Registry) maskOf(refs []Reference) (Mask, []Name) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var acc Mask
	var misses []Name
	visited := make(map[Name]struct{})

	for _, ref := range refs {
		switch v := ref.(type) {
		case nil:
			// no contribution
		case RawBits:
			acc |= Mask(v)
		case *Permission:
			if v != nil {
				acc |= r.expandLocked(v, visited)
			}
		default:
			name, ok := PermissionName(ref)
			if !ok {
				continue
			}
			p, ok := r.byName[name]
			if !ok {
				misses = append(misses, name)
				continue
			}
			acc |= r.expandLocked(p, visited)
		}
	}

	return acc, misses
}

func (r *Registry) expandLocked(p *Permission, visited map[Name]struct{}) Mask {
	if _, seen := visited[p.name]; seen {
		return 0
	}
	visited[p.name] = struct{}{}

	m := p.bit
	for _, grant := range p.grants {
		if gp, ok := r.byName[grant]; ok {
			m |= r.expandLocked(gp, visited)
		}
	}
	return m
}

func (r *Registry) expandStrictLocked(p *Permission, visited map[Name]struct{}) (Mask, error) {
	if _, seen := visited[p.name]; seen {
		return 0, nil
	}
	visited[p.name] = struct{}{}

	m := p.bit
	for _, grant := range p.grants {
		gp, ok := r.byName[grant]
		if !ok {
			return 0, fmt.Errorf("%w: %s (granted by %s)", ErrUnknownReference, grant, p.name)
		}
		gm, err := r.expandStrictLocked(gp, visited)
		if err != nil {
			return 0, err
		}
		m |= gm
	}
	return m, nil
}
