package wire

import (
	"smf/internal/cachekey"
	"smf/internal/modalias"
	"smf/internal/request"
)

// compute runs the full version-1 write procedure (spec.md §4.D) over r,
// returning the serialized buffer and the trailing cache key. It is
// registered with package request as the lazy CacheKey/Serialize
// computer; callers should go through *request.Request, not this
// function, except from within this module's own tests.
func compute(r *request.Request) ([]byte, cachekey.Key, error) {
	schemaVersion, ok := r.SchemaVersion()
	if !ok {
		return nil, cachekey.Key{}, &request.InvalidStateError{Field: "schema_version"}
	}
	src := r.Source()
	if src == nil {
		return nil, cachekey.Key{}, &request.InvalidStateError{Field: "source"}
	}
	cs := r.ConfigSpace()
	if cs == nil {
		return nil, cachekey.Key{}, &request.InvalidStateError{Field: "config_space"}
	}
	if _, ok := r.OutputFormat().Tag(); !ok {
		return nil, cachekey.Key{}, &request.BinaryProtocolError{Reason: "unknown output_format"}
	}

	s := newSink()

	// 1. version byte
	s.writeHashByte(Version1)

	// 2. flags byte
	s.writeHashByte(buildFlags(r))

	// 3. protocol_version
	s.writeHashUint16(r.ProtocolVersion().Major)
	s.writeHashUint16(r.ProtocolVersion().Minor)

	// 4. output_format
	tag, _ := r.OutputFormat().Tag()
	s.writeHashByte(tag)

	// 5. implicit_limit
	s.writeHashInt64(r.ImplicitLimit())

	// 6. modaliases
	count := modalias.Count(r.ModAliases())
	s.writeHashInt32(count)
	if count >= 0 {
		encoded, _ := modalias.Encode(r.ModAliases())
		s.writeHashBytes(encoded)
	}

	// 7. ConfigSpace descriptor
	id, descriptor := cs.Describe()
	s.writeHashBytes(id[:])
	s.writeHashLenPrefixed(descriptor)

	// 8. hash injection of source fingerprint (not written)
	s.hashOnlyBytes(src.CacheKey())

	// 9. session-config block
	sessionBlob, err := cs.EncodeConfigs(r.SessionConfig())
	if err != nil {
		return nil, cachekey.Key{}, err
	}
	s.writeLenPrefixedHashContentOnly(sessionBlob)

	// 10. combined-config hash input (not written)
	combined, err := cs.EncodeConfigs(r.SystemConfig(), r.DatabaseConfig(), r.SessionConfig())
	if err != nil {
		return nil, cachekey.Key{}, err
	}
	s.hashOnlyBytes(combined)

	// 11. schema_version, hashed only at this point for ordering
	s.hashOnlyBytes(schemaVersion[:])

	// 12. source body, written but not hashed (fingerprint already covered it)
	s.writeOnlyLenPrefixed(src.Serialize())

	// 13. schema_version, written
	s.writeOnlyBytes(schemaVersion[:])

	// 14. input_language tag, written; language name, hashed only
	lang := r.InputLanguage()
	s.writeOnlyByte(lang.Tag())
	s.hashOnlyBytes([]byte(lang.Name()))

	// 15. role_name
	s.writeLenPrefixedHashContentOnly([]byte(r.RoleName()))

	// 16. branch_name
	s.writeLenPrefixedHashContentOnly([]byte(r.BranchName()))

	// 17. cache key, written at the tail, not itself hashed
	key := s.hash.Sum()
	s.out.Write(key[:])

	return s.out.Bytes(), key, nil
}

func buildFlags(r *request.Request) byte {
	var f byte
	if r.InputFormat() == request.InputJSON {
		f |= flagInputFormatJSON
	}
	if r.ExpectOne() {
		f |= flagExpectOne
	}
	if r.InlineTypeIDs() {
		f |= flagInlineTypeIDs
	}
	if r.InlineTypeNames() {
		f |= flagInlineTypeNames
	}
	if r.InlineObjectIDs() {
		f |= flagInlineObjectIDs
	}
	return f & flagReservedMask
}
