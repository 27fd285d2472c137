// Package configspace defines the abstract contract this module consumes
// from the dynamic configuration framework: describing a configuration
// shape, encoding one or more configuration maps to bytes, and decoding
// bytes back into a mapping. The framework itself lives outside this
// module (see SPEC_FULL.md §12 Non-goals); package configspace/static
// provides one concrete, self-contained implementation of the contract.
package configspace

import (
	"fmt"
	"sort"
)

// Scope classifies where a ConfigValue may legally be set.
type Scope uint8

const (
	ScopeSession Scope = iota
	ScopeDatabase
	ScopeSystem
	ScopeCompilation
)

func (s Scope) String() string {
	switch s {
	case ScopeSession:
		return "SESSION"
	case ScopeDatabase:
		return "DATABASE"
	case ScopeSystem:
		return "SYSTEM"
	case ScopeCompilation:
		return "COMPILATION"
	default:
		return fmt.Sprintf("Scope(%d)", uint8(s))
	}
}

// Value is an opaque per-setting value. The core never inspects Value
// itself; it is carried through exclusively by the ConfigSpace codec.
type Value struct {
	Name   string
	Value  any
	Source string // "session" | "database" | "system"
	Scope  Scope
}

// Map is a mapping from setting name to ConfigValue. Its iteration order
// is never relied upon for identity — callers needing determinism use
// SortedNames.
type Map map[string]Value

// SortedNames returns the map's keys in ascending order.
func (m Map) SortedNames() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Space is the contract this module consumes from the dynamic
// configuration framework.
type Space interface {
	// Describe returns this space's stable 16-byte id and the descriptor
	// bytes that fully describe its shape.
	Describe() (id [16]byte, descriptor []byte)

	// EncodeConfigs overlays maps left to right (a later map overrides an
	// earlier one for any setting name present in both) and returns the
	// deterministic byte encoding of the result. An all-empty invocation
	// returns empty bytes.
	EncodeConfigs(maps ...Map) ([]byte, error)

	// Decode is the inverse of encoding a single map: it recovers a
	// mapping from setting name to its decoded value.
	Decode(data []byte) (map[string]any, error)

	// ID returns the same id Describe does, for callers that only need
	// the identity.
	ID() [16]byte

	// FromDescriptor constructs a new Space of the same kind from a
	// different id and descriptor, under the given protocol version. It
	// is called by the deserializer when a serialized request carries a
	// config-space id that does not match the one already on hand (see
	// SPEC_FULL.md §8 / spec.md §4.E step 5).
	FromDescriptor(id [16]byte, descriptor []byte, protocolMajor, protocolMinor uint16) (Space, error)
}
