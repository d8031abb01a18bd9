package permkit

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Definition is the declarative form of one permission, as loaded from a YAML
// definitions document:
//
//	permissions:
//	  - name: write
//	    bit: 0x1
//	  - name: edit
//	    bit: 0x2
//	    grants: [write]
//	  - name: manage
//	    bit: 0x4
//	    grants: [edit]
type Definition struct {
	Name   string   `yaml:"name"`
	Bit    uint64   `yaml:"bit"`
	Grants []string `yaml:"grants,omitempty"`
}

type definitionsDoc struct {
	Permissions []Definition `yaml:"permissions"`
}

// ParseDefinitions decodes a YAML definitions document. Unknown fields are
// rejected so typos (e.g. "grant:" for "grants:") fail loudly instead of
// silently producing permissions with no implications.
func ParseDefinitions(data []byte) ([]Definition, error) {
	var doc definitionsDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return doc.Permissions, nil
}

// ValidateDefinitions checks one definitions set for the mistakes the
// registry itself does not prevent: empty names, zero bits, duplicate names,
// duplicate bit values, self-grants, and grants naming permissions absent
// from the set. The check is scoped to the document; cross-registry bit
// collisions remain the caller's responsibility.
func ValidateDefinitions(defs []Definition) error {
	names := make(map[string]struct{}, len(defs))
	bits := make(map[uint64]string, len(defs))

	for _, def := range defs {
		if def.Name == "" {
			return fmt.Errorf("%w: empty name", ErrInvalidDefinition)
		}
		if def.Bit == 0 {
			return fmt.Errorf("%w: %s has zero bit value", ErrInvalidDefinition, def.Name)
		}
		if _, dup := names[def.Name]; dup {
			return fmt.Errorf("%w: duplicate name %s", ErrInvalidDefinition, def.Name)
		}
		names[def.Name] = struct{}{}

		if holder, dup := bits[def.Bit]; dup {
			return fmt.Errorf("%w: %s and %s share bit value %#x",
				ErrInvalidDefinition, holder, def.Name, def.Bit)
		}
		bits[def.Bit] = def.Name

		for _, grant := range def.Grants {
			if grant == def.Name {
				return fmt.Errorf("%w: %s grants itself", ErrInvalidDefinition, def.Name)
			}
		}
	}

	for _, def := range defs {
		for _, grant := range def.Grants {
			if _, ok := names[grant]; !ok {
				return fmt.Errorf("%w: %s grants undefined permission %s",
					ErrInvalidDefinition, def.Name, grant)
			}
		}
	}

	return nil
}

// RegisterDefinitions constructs and registers a permission per definition,
// in document order.
func (r *Registry) RegisterDefinitions(defs []Definition) error {
	for _, def := range defs {
		grants := make([]Name, len(def.Grants))
		for i, g := range def.Grants {
			grants[i] = Name(g)
		}
		if _, err := r.Register(NewPermission(Name(def.Name), Mask(def.Bit), grants...)); err != nil {
			return err
		}
	}
	return nil
}
