// Package wire implements the versioned binary layout a CompilationRequest
// serializes to and deserializes from (components D and E of
// SPEC_FULL.md §2/§6). Version 1 is the only version this module knows
// how to write; any other version byte on read is a hard error — the
// format is not required to be forward-compatible with unknown future
// versions.
package wire

import (
	"smf/internal/request"
)

// Version1 is the only serialization version this module writes or
// accepts.
const Version1 byte = 0x01

// Flag bit positions within the flags byte (spec.md §6.2). Bits 5-7 are
// reserved: masked on read, zeroed on write.
const (
	flagInputFormatJSON = 1 << 0
	flagExpectOne       = 1 << 1
	flagInlineTypeIDs   = 1 << 2
	flagInlineTypeNames = 1 << 3
	flagInlineObjectIDs = 1 << 4
	flagReservedMask    = 0x1F // bits 0-4 are meaningful
)

func init() {
	request.RegisterSerializer(compute)
}
