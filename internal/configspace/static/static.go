// Package static provides a self-contained ConfigSpace implementation
// whose shape is declared with a TOML descriptor, the same library the
// teacher repo uses for its own declarative schema parsing.
package static

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/BurntSushi/toml"

	"smf/internal/cachekey"
	"smf/internal/configspace"
)

// Kind is the declared type of a setting in a descriptor.
type Kind string

const (
	KindString Kind = "string"
	KindInt64  Kind = "int64"
	KindBool   Kind = "bool"
	KindFloat  Kind = "float64"
)

type descriptor struct {
	Settings map[string]Kind `toml:"settings"`
}

// Space is a ConfigSpace backed by a TOML-declared settings schema.
type Space struct {
	id         [16]byte
	raw        []byte
	settings   map[string]Kind
	protoMajor uint16
	protoMinor uint16
}

// New parses a TOML descriptor and derives the space's id as the
// Blake2b-128 digest of the descriptor bytes, reusing the same hash
// primitive the request serializer uses for cache-key derivation.
func New(descriptorBytes []byte, protocolMajor, protocolMinor uint16) (*Space, error) {
	var d descriptor
	if _, err := toml.NewDecoder(bytes.NewReader(descriptorBytes)).Decode(&d); err != nil {
		return nil, fmt.Errorf("configspace/static: invalid descriptor: %w", err)
	}
	id := cachekey.SumSource(descriptorBytes)
	return &Space{
		id:         id,
		raw:        append([]byte(nil), descriptorBytes...),
		settings:   d.Settings,
		protoMajor: protocolMajor,
		protoMinor: protocolMinor,
	}, nil
}

// NewWithID is like New but pins the id explicitly rather than deriving
// it, used when reconstructing a space whose id was already fixed by an
// earlier writer (see FromDescriptor).
func NewWithID(id [16]byte, descriptorBytes []byte, protocolMajor, protocolMinor uint16) (*Space, error) {
	var d descriptor
	if _, err := toml.NewDecoder(bytes.NewReader(descriptorBytes)).Decode(&d); err != nil {
		return nil, fmt.Errorf("configspace/static: invalid descriptor: %w", err)
	}
	return &Space{
		id:         id,
		raw:        append([]byte(nil), descriptorBytes...),
		settings:   d.Settings,
		protoMajor: protocolMajor,
		protoMinor: protocolMinor,
	}, nil
}

func (s *Space) Describe() (id [16]byte, descriptor []byte) {
	return s.id, append([]byte(nil), s.raw...)
}

func (s *Space) ID() [16]byte { return s.id }

func (s *Space) FromDescriptor(id [16]byte, descriptorBytes []byte, protocolMajor, protocolMinor uint16) (configspace.Space, error) {
	return NewWithID(id, descriptorBytes, protocolMajor, protocolMinor)
}

// EncodeConfigs overlays the given maps left to right and encodes the
// result as a sequence of (name, kind tag, value) records, sorted by
// name for determinism. An all-empty invocation returns empty bytes.
func (s *Space) EncodeConfigs(maps ...configspace.Map) ([]byte, error) {
	overlay := make(configspace.Map)
	for _, m := range maps {
		for name, v := range m {
			overlay[name] = v
		}
	}
	if len(overlay) == 0 {
		return nil, nil
	}

	var buf []byte
	for _, name := range overlay.SortedNames() {
		v := overlay[name]
		kind, ok := s.settings[name]
		if !ok {
			return nil, fmt.Errorf("configspace/static: unknown setting %q", name)
		}
		encoded, err := encodeValue(kind, v.Value)
		if err != nil {
			return nil, fmt.Errorf("configspace/static: setting %q: %w", name, err)
		}
		buf = appendLenPrefixed(buf, []byte(name))
		buf = append(buf, byte(kindTag(kind)))
		buf = appendLenPrefixed(buf, encoded)
	}
	return buf, nil
}

// Decode is the inverse of encoding a single map.
func (s *Space) Decode(data []byte) (map[string]any, error) {
	out := make(map[string]any)
	if len(data) == 0 {
		return out, nil
	}
	pos := 0
	for pos < len(data) {
		name, next, err := readLenPrefixed(data, pos)
		if err != nil {
			return nil, err
		}
		pos = next
		if pos >= len(data) {
			return nil, fmt.Errorf("configspace/static: truncated record")
		}
		tag := data[pos]
		pos++
		valueBytes, next, err := readLenPrefixed(data, pos)
		if err != nil {
			return nil, err
		}
		pos = next
		kind := kindFromTag(tag)
		v, err := decodeValue(kind, valueBytes)
		if err != nil {
			return nil, fmt.Errorf("configspace/static: setting %q: %w", string(name), err)
		}
		out[string(name)] = v
	}
	return out, nil
}

func kindTag(k Kind) byte {
	switch k {
	case KindString:
		return 's'
	case KindInt64:
		return 'i'
	case KindBool:
		return 'b'
	case KindFloat:
		return 'f'
	default:
		return 0
	}
}

func kindFromTag(b byte) Kind {
	switch b {
	case 's':
		return KindString
	case 'i':
		return KindInt64
	case 'b':
		return KindBool
	case 'f':
		return KindFloat
	default:
		return ""
	}
}

func encodeValue(kind Kind, value any) ([]byte, error) {
	switch kind {
	case KindString:
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		return []byte(str), nil
	case KindInt64:
		iv, ok := toInt64(value)
		if !ok {
			return nil, fmt.Errorf("expected int64, got %T", value)
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(iv))
		return buf[:], nil
	case KindBool:
		bv, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", value)
		}
		if bv {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case KindFloat:
		fv, ok := value.(float64)
		if !ok {
			return nil, fmt.Errorf("expected float64, got %T", value)
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(fv))
		return buf[:], nil
	default:
		return nil, fmt.Errorf("unknown setting kind %q", kind)
	}
}

func decodeValue(kind Kind, data []byte) (any, error) {
	switch kind {
	case KindString:
		return string(data), nil
	case KindInt64:
		if len(data) != 8 {
			return nil, fmt.Errorf("bad int64 length %d", len(data))
		}
		return int64(binary.BigEndian.Uint64(data)), nil
	case KindBool:
		if len(data) != 1 {
			return nil, fmt.Errorf("bad bool length %d", len(data))
		}
		return data[0] != 0, nil
	case KindFloat:
		if len(data) != 8 {
			return nil, fmt.Errorf("bad float64 length %d", len(data))
		}
		return math.Float64frombits(binary.BigEndian.Uint64(data)), nil
	default:
		return nil, fmt.Errorf("unknown setting kind tag")
	}
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func appendLenPrefixed(buf []byte, b []byte) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(b)))
	buf = append(buf, tmp[:]...)
	return append(buf, b...)
}

func readLenPrefixed(data []byte, pos int) ([]byte, int, error) {
	if len(data)-pos < 4 {
		return nil, 0, fmt.Errorf("configspace/static: truncated length prefix")
	}
	n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4
	if len(data)-pos < n {
		return nil, 0, fmt.Errorf("configspace/static: truncated value")
	}
	return data[pos : pos+n], pos + n, nil
}
