package wire

import (
	"fmt"

	"github.com/google/uuid"

	"smf/internal/cachekey"
	"smf/internal/configspace"
	"smf/internal/modalias"
	"smf/internal/request"
	"smf/internal/source"
)

// Deserialize reads a version-1 serialized request (spec.md §4.E). text
// is the plain-text query, needed to rehydrate a structural (EdgeQL)
// source since its serialized form stores only the normalized version.
// cs is the caller's current ConfigSpace, used to decode the
// session-config blob when its embedded id matches; if the stream
// carries a different id, a new Space is built from the embedded
// descriptor via cs.FromDescriptor and used instead (spec.md §4.E step
// 5 / §8 invariant 9).
func Deserialize(buf []byte, text string, cs configspace.Space) (*request.Request, error) {
	r := newReader(buf)

	version, err := r.byte()
	if err != nil {
		return nil, err
	}
	if version != Version1 {
		return nil, &request.UnsupportedVersionError{Reason: fmt.Sprintf("serialization version 0x%02x", version)}
	}

	flags, err := r.byte()
	if err != nil {
		return nil, err
	}
	inputFormat := request.InputBinary
	if flags&flagInputFormatJSON != 0 {
		inputFormat = request.InputJSON
	}
	expectOne := flags&flagExpectOne != 0
	inlineTypeIDs := flags&flagInlineTypeIDs != 0
	inlineTypeNames := flags&flagInlineTypeNames != 0
	inlineObjectIDs := flags&flagInlineObjectIDs != 0

	protoMajor, err := r.uint16()
	if err != nil {
		return nil, err
	}
	protoMinor, err := r.uint16()
	if err != nil {
		return nil, err
	}
	if protoMajor < 1 {
		return nil, &request.UnsupportedVersionError{Reason: fmt.Sprintf("protocol_version major %d", protoMajor)}
	}

	ofTag, err := r.byte()
	if err != nil {
		return nil, err
	}
	outputFormat, ok := request.OutputFormatFromTag(ofTag)
	if !ok {
		return nil, &request.BinaryProtocolError{Reason: fmt.Sprintf("unknown output_format tag %q", ofTag)}
	}

	implicitLimit, err := r.int64()
	if err != nil {
		return nil, err
	}

	modAliases, err := readModAliases(r)
	if err != nil {
		return nil, err
	}

	csID, err := r.bytesN(16)
	if err != nil {
		return nil, err
	}
	descriptor, err := r.lenPrefixedBytes()
	if err != nil {
		return nil, err
	}
	resolvedCS, err := resolveConfigSpace(cs, csID, descriptor, protoMajor, protoMinor)
	if err != nil {
		return nil, err
	}

	sessionBlob, err := r.lenPrefixedBytes()
	if err != nil {
		return nil, err
	}
	sessionConfig, err := decodeSessionConfig(resolvedCS, sessionBlob)
	if err != nil {
		return nil, err
	}

	sourceBody, err := r.lenPrefixedBytes()
	if err != nil {
		return nil, err
	}

	schemaVersionBytes, err := r.bytesN(16)
	if err != nil {
		return nil, err
	}
	var schemaVersion uuid.UUID
	copy(schemaVersion[:], schemaVersionBytes)

	langTag, err := r.byte()
	if err != nil {
		return nil, err
	}
	kind, ok := source.KindFromTag(langTag)
	if !ok {
		return nil, &request.BinaryProtocolError{Reason: fmt.Sprintf("unknown input_language tag %q", langTag)}
	}
	src, err := decodeSource(kind, sourceBody, text)
	if err != nil {
		return nil, err
	}

	roleNameBytes, err := r.lenPrefixedBytes()
	if err != nil {
		return nil, err
	}
	branchNameBytes, err := r.lenPrefixedBytes()
	if err != nil {
		return nil, err
	}

	trailing, err := r.bytesN(cachekey.Size)
	if err != nil {
		return nil, err
	}
	var key cachekey.Key
	copy(key[:], trailing)

	req := request.New(request.Params{
		Source:           src,
		ProtocolVersion:  request.ProtocolVersion{Major: protoMajor, Minor: protoMinor},
		SchemaVersion:    schemaVersion,
		SchemaVersionSet: true,
		ConfigSpace:      resolvedCS,
		InputLanguage:    kind,
		OutputFormat:     outputFormat,
		InputFormat:      inputFormat,
		ExpectOne:        expectOne,
		ImplicitLimit:    implicitLimit,
		InlineTypeIDs:    inlineTypeIDs,
		InlineTypeNames:  inlineTypeNames,
		InlineObjectIDs:  inlineObjectIDs,
		RoleName:         string(roleNameBytes),
		BranchName:       string(branchNameBytes),
		ModAliases:       modAliases,
		SessionConfig:    sessionConfig,
	})
	req.SetCachedResult(buf, key)
	return req, nil
}

func readModAliases(r *reader) (modalias.Map, error) {
	count, err := r.int32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, nil
	}
	m := make(modalias.Map, count)
	for i := int32(0); i < count; i++ {
		flag, err := r.byte()
		if err != nil {
			return nil, err
		}
		var key modalias.Key
		switch flag {
		case 0:
			key = modalias.Key{Present: false}
		case 1:
			name, err := r.cString()
			if err != nil {
				return nil, err
			}
			key = modalias.Key{Present: true, Name: name}
		default:
			return nil, &request.BinaryProtocolError{Reason: fmt.Sprintf("invalid modalias flag %d", flag)}
		}
		value, err := r.cString()
		if err != nil {
			return nil, err
		}
		m[key] = value
	}
	return m, nil
}

func resolveConfigSpace(cs configspace.Space, id, descriptor []byte, protoMajor, protoMinor uint16) (configspace.Space, error) {
	if cs == nil {
		return nil, &request.InvalidStateError{Field: "config_space"}
	}
	var idArr [16]byte
	copy(idArr[:], id)
	if idArr == cs.ID() {
		return cs, nil
	}
	return cs.FromDescriptor(idArr, descriptor, protoMajor, protoMinor)
}

func decodeSessionConfig(cs configspace.Space, blob []byte) (configspace.Map, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	raw, err := cs.Decode(blob)
	if err != nil {
		return nil, err
	}
	m := make(configspace.Map, len(raw))
	for name, v := range raw {
		m[name] = configspace.Value{
			Name:   name,
			Value:  v,
			Source: "session",
			Scope:  configspace.ScopeSession,
		}
	}
	return m, nil
}

func decodeSource(kind source.Kind, body []byte, text string) (source.Source, error) {
	switch kind {
	case source.Edgeql:
		return source.DecodeStructural(body, text)
	case source.Sql:
		return source.DecodeSQL(body)
	case source.SqlParams:
		return source.DecodeSQLParams(body)
	default:
		return nil, &request.BinaryProtocolError{Reason: "unknown input language"}
	}
}
