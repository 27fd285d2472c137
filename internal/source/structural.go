package source

import "smf/internal/cachekey"

// structural wraps a normalized query produced by an external tokenizer
// (out of scope for this module — see SPEC_FULL.md §12 Non-goals). It
// stores the tokenizer's serialized form and fingerprint verbatim and
// keeps the original query text separately, since the serialized form is
// normalized and may strip literal values the text still carries.
type structural struct {
	serialized  []byte
	fingerprint []byte
	text        string
}

// NewStructural builds a Source for the structural (EdgeQL) input
// language from a tokenizer's already-computed serialized form and
// fingerprint, plus the original query text.
//
// If fingerprint is empty, it defaults to the Blake2b-128 digest of
// serialized. Tokenization itself is out of scope for this module; a
// caller wired to a real tokenizer should pass its fingerprint directly,
// but then owns keeping it reproducible across a deserialize round-trip
// (the wire format never carries the fingerprint — see package wire).
func NewStructural(serialized, fingerprint []byte, text string) Source {
	fp := fingerprint
	if len(fp) == 0 {
		fp = structuralFallbackFingerprint(serialized)
	}
	return &structural{
		serialized:  append([]byte(nil), serialized...),
		fingerprint: append([]byte(nil), fp...),
		text:        text,
	}
}

// DecodeStructural reconstructs a structural Source from a wire body and
// the plain-text query supplied out-of-band by the caller, since the
// serialized form alone does not carry the original text.
//
// The fingerprint is not stored on the wire (see package wire, step 8):
// decoding recomputes it as the Blake2b-128 digest of the serialized
// body, which is the only information the deserializer has available.
// A real tokenizer-backed fingerprint may differ in derivation from this
// fallback, but callers that need the writer's exact fingerprint should
// keep the request's CacheKey rather than re-deriving the Source's.
func DecodeStructural(body []byte, text string) (Source, error) {
	fp := structuralFallbackFingerprint(body)
	return NewStructural(body, fp, text), nil
}

func (s *structural) Serialize() []byte { return append([]byte(nil), s.serialized...) }
func (s *structural) CacheKey() []byte  { return append([]byte(nil), s.fingerprint...) }
func (s *structural) Text() string      { return s.text }
func (s *structural) Kind() Kind        { return Edgeql }

func structuralFallbackFingerprint(body []byte) []byte {
	k := cachekey.SumSource(body)
	return k[:]
}
