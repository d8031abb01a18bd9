package permkit

// Permission is one named, bit-tagged capability, optionally declaring other
// permissions it transitively grants.
//
// Permission instances are immutable after construction. Construction performs
// no validation of bit uniqueness or grant-target existence: grants may name
// permissions that are registered later, since definitions can be declared in
// any order.
type Permission struct {
	name   Name
	bit    Mask
	grants []Name
}

// NewPermission constructs a permission with the given name, bit value, and
// granted permission names. The permission is not live until registered.
func NewPermission(name Name, bit Mask, grants ...Name) *Permission {
	p := &Permission{
		name: name,
		bit:  bit,
	}
	if len(grants) > 0 {
		p.grants = make([]Name, len(grants))
		copy(p.grants, grants)
	}
	return p
}

func (p *Permission) isReference() {}

// Name returns the permission's unique name.
func (p *Permission) Name() Name {
	return p.name
}

// Bit returns the permission's own bit value, excluding granted permissions.
func (p *Permission) Bit() Mask {
	return p.bit
}

// Grants returns a copy of the permission names this permission implies.
func (p *Permission) Grants() []Name {
	if len(p.grants) == 0 {
		return nil
	}
	out := make([]Name, len(p.grants))
	copy(out, p.grants)
	return out
}
