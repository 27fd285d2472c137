package source

import (
	"encoding/binary"
	"sync"

	"smf/internal/cachekey"
)

// OutputParam is a single named, typed output parameter.
type OutputParam struct {
	Name string
	Type string
}

// SQLParams is the accessor interface a SqlParams Source satisfies, for
// callers that need the declared types rather than just the opaque
// Source contract.
type SQLParams interface {
	Source
	InputTypes() []string
	OutputTypes() []OutputParam
}

// sqlParams is a parameter-introspection request: given the input
// parameter types and the expected output column types, describe them
// without running a full compile. Its text rendering is always the
// placeholder "<unknown>" since there is no source text to show.
type sqlParams struct {
	inputTypes  []string
	outputTypes []OutputParam

	once        sync.Once
	serialized  []byte
	fingerprint []byte
}

// NewSQLParams builds a Source for the SqlParams input language.
func NewSQLParams(inputTypes []string, outputTypes []OutputParam) Source {
	return &sqlParams{
		inputTypes:  append([]string(nil), inputTypes...),
		outputTypes: append([]OutputParam(nil), outputTypes...),
	}
}

// DecodeSQLParams reconstructs a SqlParams Source from its wire body.
func DecodeSQLParams(body []byte) (Source, error) {
	inputTypes, outputTypes, err := decodeSQLParamsBody(body)
	if err != nil {
		return nil, err
	}
	s := &sqlParams{inputTypes: inputTypes, outputTypes: outputTypes}
	s.serialized = append([]byte(nil), body...)
	return s, nil
}

func (s *sqlParams) ensure() {
	s.once.Do(func() {
		if s.serialized == nil {
			s.serialized = encodeSQLParamsBody(s.inputTypes, s.outputTypes)
		}
		k := cachekey.SumSource(s.serialized)
		s.fingerprint = k[:]
	})
}

func (s *sqlParams) Serialize() []byte {
	s.ensure()
	return append([]byte(nil), s.serialized...)
}

// CacheKey is Blake2b-128 of Serialize's output, cached on first call
// (whichever of Serialize/CacheKey runs first computes both).
func (s *sqlParams) CacheKey() []byte {
	s.ensure()
	return append([]byte(nil), s.fingerprint...)
}

func (s *sqlParams) Text() string { return "<unknown>" }
func (s *sqlParams) Kind() Kind   { return SqlParams }

// InputTypes returns the list of declared input parameter types.
func (s *sqlParams) InputTypes() []string { return append([]string(nil), s.inputTypes...) }

// OutputTypes returns the list of declared output parameters.
func (s *sqlParams) OutputTypes() []OutputParam {
	return append([]OutputParam(nil), s.outputTypes...)
}

func encodeSQLParamsBody(inputTypes []string, outputTypes []OutputParam) []byte {
	var buf []byte
	buf = appendUint32(buf, uint32(len(inputTypes)))
	for _, t := range inputTypes {
		buf = appendLenPrefixedString(buf, t)
	}
	buf = appendUint32(buf, uint32(len(outputTypes)))
	for _, o := range outputTypes {
		buf = appendLenPrefixedString(buf, o.Name)
		buf = appendLenPrefixedString(buf, o.Type)
	}
	return buf
}

func decodeSQLParamsBody(body []byte) ([]string, []OutputParam, error) {
	r := &byteReader{buf: body}
	inCount, err := r.uint32()
	if err != nil {
		return nil, nil, err
	}
	inputTypes := make([]string, inCount)
	for i := range inputTypes {
		s, err := r.lenPrefixedString()
		if err != nil {
			return nil, nil, err
		}
		inputTypes[i] = s
	}
	outCount, err := r.uint32()
	if err != nil {
		return nil, nil, err
	}
	outputTypes := make([]OutputParam, outCount)
	for i := range outputTypes {
		name, err := r.lenPrefixedString()
		if err != nil {
			return nil, nil, err
		}
		typ, err := r.lenPrefixedString()
		if err != nil {
			return nil, nil, err
		}
		outputTypes[i] = OutputParam{Name: name, Type: typ}
	}
	return inputTypes, outputTypes, nil
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendLenPrefixedString(buf []byte, s string) []byte {
	buf = appendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// byteReader is a tiny cursor over a byte slice used by the SqlParams
// body codec; package wire has its own, richer reader for the outer
// request layout.
type byteReader struct {
	buf []byte
	pos int
}

func (r *byteReader) uint32() (uint32, error) {
	if len(r.buf)-r.pos < 4 {
		return 0, errTruncated
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *byteReader) lenPrefixedString() (string, error) {
	n, err := r.uint32()
	if err != nil {
		return "", err
	}
	if uint32(len(r.buf)-r.pos) < n {
		return "", errTruncated
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}
