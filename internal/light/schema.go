package light

import (
	"fmt"
	"slices"
)

// Args is an ordered list of parsed, range-checked primitives (int or
// enumerated string). Only a successful ParseFunc produces one.
type Args []any

// ParseFunc type-checks arity-checked tokens and returns validated Args.
type ParseFunc func(tokens []string) (Args, error)

// ParamsFunc maps validated Args to the device call parameters.
type ParamsFunc func(args Args) []any

// Definition describes one chat command: how it is looked up, how its
// arguments are validated and which device method it drives.
type Definition struct {
	Name    string
	Aliases []string
	Arity   int
	Usage   string // positional argument template, e.g. "<r> <g> <b>"
	Method  string
	Parse   ParseFunc
	Params  ParamsFunc
}

// Keys returns the canonical name followed by every alias.
func (d *Definition) Keys() []string {
	return append([]string{d.Name}, d.Aliases...)
}

// Schema is an immutable lookup table from keyword (name or alias) to
// Definition. It is safe for concurrent reads.
type Schema struct {
	defs  []*Definition
	index map[string]*Definition
}

// NewSchema builds a schema from defs, keeping declaration order. It fails if
// two definitions share a lookup key or a definition is incomplete.
func NewSchema(defs ...Definition) (*Schema, error) {
	s := &Schema{
		defs:  make([]*Definition, 0, len(defs)),
		index: make(map[string]*Definition),
	}
	for i := range defs {
		def := defs[i]
		if def.Name == "" {
			return nil, fmt.Errorf("definition %d: empty name", i)
		}
		if def.Arity < 0 {
			return nil, fmt.Errorf("definition %q: negative arity %d", def.Name, def.Arity)
		}
		if def.Parse == nil || def.Params == nil {
			return nil, fmt.Errorf("definition %q: missing parse or params func", def.Name)
		}
		if def.Method == "" {
			return nil, fmt.Errorf("definition %q: empty device method", def.Name)
		}
		def.Aliases = slices.Clone(def.Aliases)

		d := &def
		for _, key := range d.Keys() {
			if key == "" {
				return nil, fmt.Errorf("definition %q: empty alias", d.Name)
			}
			if prev, ok := s.index[key]; ok {
				return nil, fmt.Errorf("keyword %q used by both %q and %q", key, prev.Name, d.Name)
			}
			s.index[key] = d
		}
		s.defs = append(s.defs, d)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. Use it for static tables.
func MustSchema(defs ...Definition) *Schema {
	s, err := NewSchema(defs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup finds a definition by exact match on its name or any alias.
func (s *Schema) Lookup(keyword string) (*Definition, bool) {
	def, ok := s.index[keyword]
	return def, ok
}

// Definitions returns the definitions in declaration order.
func (s *Schema) Definitions() []*Definition {
	return slices.Clone(s.defs)
}

// Keywords returns the canonical command names in declaration order.
func (s *Schema) Keywords() []string {
	names := make([]string, 0, len(s.defs))
	for _, d := range s.defs {
		names = append(names, d.Name)
	}
	return names
}
