// Package source provides the per-input-language Source variants that a
// CompilationRequest wraps: each carries an opaque serialized form, a
// fingerprint used only for cache identity, and a plain-text rendering.
package source

// Kind identifies which input language a Source was built from. It is
// stored on the owning request because the serialized body alone is not
// self-describing.
type Kind uint8

const (
	// Edgeql is a normalized structural query produced by a tokenizer.
	Edgeql Kind = iota
	// Sql is a raw SQL-dialect query text.
	Sql
	// SqlParams is a parameter-introspection request.
	SqlParams
)

// Name returns the canonical enum spelling, used as hash input for the
// input_language field (the wire tag byte is a different, shorter
// encoding — see package wire).
func (k Kind) Name() string {
	switch k {
	case Edgeql:
		return "EDGEQL"
	case Sql:
		return "SQL"
	case SqlParams:
		return "SQL_PARAMS"
	default:
		return "UNKNOWN"
	}
}

// Tag returns the single-byte wire encoding for the language.
func (k Kind) Tag() byte {
	switch k {
	case Edgeql:
		return 'E'
	case Sql:
		return 'S'
	case SqlParams:
		return 'P'
	default:
		return 0
	}
}

// KindFromTag reverses Tag, reporting ok=false for any other byte.
func KindFromTag(b byte) (Kind, bool) {
	switch b {
	case 'E':
		return Edgeql, true
	case 'S':
		return Sql, true
	case 'P':
		return SqlParams, true
	default:
		return 0, false
	}
}

// Source is a tagged value: a normalized structural query, a raw SQL
// text, or a SQL-parameter introspection request. Implementations are
// immutable after construction; every method is total and deterministic.
type Source interface {
	// Serialize returns the opaque on-wire body for this source.
	Serialize() []byte
	// CacheKey returns at least 16 bytes of identity; only its content
	// matters, never its byte layout.
	CacheKey() []byte
	// Text returns a plain-text rendering, possibly a placeholder.
	Text() string
	// Kind reports which variant this is, for deserializer dispatch.
	Kind() Kind
}
