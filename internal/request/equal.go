package request

import (
	"bytes"

	"smf/internal/modalias"
)

// Equal implements the equality spec.md §4.C and §8 invariant 2 define:
// it compares the source fingerprint, protocol version, input language,
// output/input formats, expect_one, implicit_limit, inline flags, role,
// branch, schema_version, encoded modaliases and the combined-config
// encoding, never the internal derived-field cache. It does not compare
// the ConfigSpace descriptor or the session-only config encoding, both of
// which the cache key hashes, so two Equal requests can still have
// different cache keys when those differ.
func (r *Request) Equal(other *Request) bool {
	if r == nil || other == nil {
		return r == other
	}

	if r.p.ProtocolVersion != other.p.ProtocolVersion {
		return false
	}
	if r.p.InputLanguage != other.p.InputLanguage {
		return false
	}
	if r.p.OutputFormat != other.p.OutputFormat {
		return false
	}
	if r.p.InputFormat != other.p.InputFormat {
		return false
	}
	if r.p.ExpectOne != other.p.ExpectOne {
		return false
	}
	if r.p.ImplicitLimit != other.p.ImplicitLimit {
		return false
	}
	if r.p.InlineTypeIDs != other.p.InlineTypeIDs ||
		r.p.InlineTypeNames != other.p.InlineTypeNames ||
		r.p.InlineObjectIDs != other.p.InlineObjectIDs {
		return false
	}
	if r.p.RoleName != other.p.RoleName {
		return false
	}
	if r.p.BranchName != other.p.BranchName {
		return false
	}
	if r.p.SchemaVersion != other.p.SchemaVersion || r.p.SchemaVersionSet != other.p.SchemaVersionSet {
		return false
	}

	rSrcKey, otherSrcKey := sourceCacheKey(r), sourceCacheKey(other)
	if !bytes.Equal(rSrcKey, otherSrcKey) {
		return false
	}

	rAliases, rOK := modaliasBytes(r)
	otherAliases, otherOK := modaliasBytes(other)
	if rOK != otherOK || !bytes.Equal(rAliases, otherAliases) {
		return false
	}

	rCombined, rErr := combinedConfigBytes(r)
	otherCombined, otherErr := combinedConfigBytes(other)
	if rErr != nil || otherErr != nil {
		return false
	}
	return bytes.Equal(rCombined, otherCombined)
}

func sourceCacheKey(r *Request) []byte {
	if r.p.Source == nil {
		return nil
	}
	return r.p.Source.CacheKey()
}

func modaliasBytes(r *Request) ([]byte, bool) {
	return modalias.Encode(r.p.ModAliases)
}

func combinedConfigBytes(r *Request) ([]byte, error) {
	if r.p.ConfigSpace == nil {
		return nil, nil
	}
	return r.p.ConfigSpace.EncodeConfigs(r.p.SystemConfig, r.p.DatabaseConfig, r.p.SessionConfig)
}
