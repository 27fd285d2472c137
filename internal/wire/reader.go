package wire

import (
	"encoding/binary"

	"smf/internal/request"
)

// reader is a forward-only cursor over a serialized request buffer. Every
// accessor returns a *request.BinaryProtocolError on truncation.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) need(n int) error {
	if len(r.buf)-r.pos < n {
		return &request.BinaryProtocolError{Reason: "truncated buffer"}
	}
	return nil
}

func (r *reader) byte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) uint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

func (r *reader) int32() (int32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4]))
	r.pos += 4
	return v, nil
}

func (r *reader) int64() (int64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := int64(binary.BigEndian.Uint64(r.buf[r.pos : r.pos+8]))
	r.pos += 8
	return v, nil
}

func (r *reader) bytesN(n int) ([]byte, error) {
	if n < 0 {
		return nil, &request.BinaryProtocolError{Reason: "negative length"}
	}
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) lenPrefixedBytes() ([]byte, error) {
	n, err := r.int32()
	if err != nil {
		return nil, err
	}
	return r.bytesN(int(n))
}

// cString reads bytes up to and including a NUL terminator, returning the
// content without the terminator.
func (r *reader) cString() (string, error) {
	start := r.pos
	for r.pos < len(r.buf) {
		if r.buf[r.pos] == 0 {
			s := string(r.buf[start:r.pos])
			r.pos++
			return s, nil
		}
		r.pos++
	}
	return "", &request.BinaryProtocolError{Reason: "unterminated string"}
}
