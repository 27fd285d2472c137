package wire

import (
	"bytes"
	"encoding/binary"

	"smf/internal/cachekey"
)

// sink writes a field to the output buffer, the running hash, both, or
// neither — matching the per-step "written"/"hashed"/"written and
// hashed" annotations in spec.md §4.D.
type sink struct {
	out  *bytes.Buffer
	hash *cachekey.Writer
}

func newSink() *sink {
	return &sink{out: new(bytes.Buffer), hash: cachekey.New()}
}

func (s *sink) writeHashByte(b byte) {
	s.out.WriteByte(b)
	s.hash.WriteByte(b)
}

func (s *sink) writeOnlyByte(b byte) {
	s.out.WriteByte(b)
}

func (s *sink) writeHashBytes(b []byte) {
	s.out.Write(b)
	s.hash.WriteBytes(b)
}

func (s *sink) writeOnlyBytes(b []byte) {
	s.out.Write(b)
}

func (s *sink) hashOnlyBytes(b []byte) {
	s.hash.WriteBytes(b)
}

func (s *sink) writeHashUint16(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	s.writeHashBytes(buf[:])
}

func (s *sink) writeHashInt64(v int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	s.writeHashBytes(buf[:])
}

func (s *sink) writeHashInt32(v int32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	s.writeHashBytes(buf[:])
}

// writeOnlyLenPrefixed writes an i32 length prefix followed by b, neither
// of which is hashed.
func (s *sink) writeOnlyLenPrefixed(b []byte) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(int32(len(b))))
	s.out.Write(buf[:])
	s.out.Write(b)
}

// writeHashLenPrefixed writes and hashes an i32 length prefix followed by
// b, and writes and hashes b as well. It is used for the ConfigSpace
// descriptor (spec.md §4.D step 7), which the deserializer rereads.
func (s *sink) writeHashLenPrefixed(b []byte) {
	s.writeHashInt32(int32(len(b)))
	s.writeHashBytes(b)
}

func (s *sink) writeOnlyInt32(v int32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	s.out.Write(buf[:])
}

// writeLenPrefixedHashContentOnly writes an i32 length prefix and the
// bytes themselves, but feeds only the content bytes (not the prefix)
// into the running hash. This matches the session-config block
// (spec.md §4.D step 9) and the role/branch name fields (steps 15-16),
// where the spec calls out that the hashed material is "those bytes" /
// "raw UTF-8 bytes", not the framing around them.
func (s *sink) writeLenPrefixedHashContentOnly(b []byte) {
	s.writeOnlyInt32(int32(len(b)))
	s.out.Write(b)
	s.hash.WriteBytes(b)
}
