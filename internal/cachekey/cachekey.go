// Package cachekey implements the running-hash machinery that turns a
// serialized CompilationRequest into a stable 128-bit cache key. The hash
// is Blake2b-128: cryptographic, not a truncated SHA-1 or similar, chosen
// only for collision resistance on identity, never as a MAC.
package cachekey

import (
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Size is the length, in bytes, of a cache key.
const Size = 16

// Key is a 128-bit content-addressed identity.
type Key [Size]byte

// Writer accumulates bytes into a running Blake2b-128 state. Fields that
// affect compiler output are fed through the Write* helpers; fields that
// merely need to round-trip on the wire are never passed to a Writer.
// The zero value is not usable; construct with New.
type Writer struct {
	h hash.Hash
}

// New returns a Writer ready to accumulate hash input.
func New() *Writer {
	h, err := blake2b.New(Size, nil)
	if err != nil {
		// blake2b.New only fails for an out-of-range size or an
		// oversized key; Size and a nil key are always valid.
		panic(err)
	}
	return &Writer{h: h}
}

// WriteByte mixes a single byte into the running hash.
func (w *Writer) WriteByte(b byte) {
	_, _ = w.h.Write([]byte{b})
}

// WriteBytes mixes raw bytes into the running hash, with no length prefix.
// Callers that need unambiguous framing should use WriteLenPrefixed.
func (w *Writer) WriteBytes(b []byte) {
	_, _ = w.h.Write(b)
}

// WriteUint16 mixes a big-endian u16 into the running hash.
func (w *Writer) WriteUint16(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, _ = w.h.Write(buf[:])
}

// WriteUint32 mixes a big-endian u32 into the running hash.
func (w *Writer) WriteUint32(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, _ = w.h.Write(buf[:])
}

// WriteInt64 mixes a big-endian i64 into the running hash.
func (w *Writer) WriteInt64(v int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, _ = w.h.Write(buf[:])
}

// WriteLenPrefixed mixes an i32 length prefix followed by the bytes
// themselves into the running hash. Used where a downstream reader
// needs to recover field boundaries from the hash-equivalent framing
// (the request never actually re-reads hash input, but keeping framing
// consistent between write-and-hash fields avoids ambiguity bugs).
func (w *Writer) WriteLenPrefixed(b []byte) {
	w.WriteUint32(uint32(int32(len(b))))
	_, _ = w.h.Write(b)
}

// Sum finalizes the running hash into a Key without mutating the Writer's
// internal state, mirroring hash.Hash.Sum's append semantics.
func (w *Writer) Sum() Key {
	var k Key
	copy(k[:], w.h.Sum(nil))
	return k
}

// SumSource returns the Blake2b-128 digest of buf, used directly by
// Source variants (e.g. SqlParams) whose CacheKey is defined as the
// digest of their own serialized bytes rather than participating in a
// request-level running hash.
func SumSource(buf []byte) Key {
	w := New()
	w.WriteBytes(buf)
	return w.Sum()
}
