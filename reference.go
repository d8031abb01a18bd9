package permkit

// Reference is a closed set of permission reference shapes accepted by mask
// computation and lookup:
//
//   - [Name]: a permission name, resolved through the registry.
//   - [RawBits]: a pre-computed mask contribution, OR'd in directly and never
//     expanded through grants.
//   - [*Permission]: a direct instance, used as-is.
//   - a [Definer]: a static permission declaration (a type embedding
//     [ClassToken] and reporting its permission name), resolved through the
//     registry like a Name.
//
// The set is closed: only this package can add variants, so resolution is an
// exhaustive type switch rather than open-ended runtime inspection.
type Reference interface {
	isReference()
}

// Name identifies a permission. String and symbolic references both coerce to
// this type; no registry lookup is implied by holding one.
type Name string

func (Name) isReference() {}

func (n Name) String() string { return string(n) }

// RawBits is a literal mask contribution. Callers are responsible for any
// grant semantics already encoded in the value; it bypasses expansion.
type RawBits uint64

func (RawBits) isReference() {}

// ClassToken is embedded by static permission declarations so they satisfy
// [Reference]. A declaration pairs it with a PermissionName method:
//
//	type ManageComments struct{ permkit.ClassToken }
//
//	func (ManageComments) PermissionName() permkit.Name { return "manage_comments" }
type ClassToken struct{}

func (ClassToken) isReference() {}

// Definer is satisfied by static permission declarations: types that embed
// [ClassToken] and report the name of the permission they stand for.
type Definer interface {
	Reference
	PermissionName() Name
}

// PermissionName extracts a permission name from a reference without
// consulting any registry. It is purely syntactic: the returned name is not
// validated as registered. RawBits and nil references carry no name.
func PermissionName(ref Reference) (Name, bool) {
	switch v := ref.(type) {
	case nil:
		return "", false
	case Name:
		return v, true
	case RawBits:
		return "", false
	case *Permission:
		if v == nil {
			return "", false
		}
		return v.name, true
	case Definer:
		return v.PermissionName(), true
	default:
		return "", false
	}
}
