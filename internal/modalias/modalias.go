// Package modalias defines the module-alias map type shared by the
// request and wire packages: a mapping from an optional module name to
// a target module name, plus the canonical byte encoding spec.md §4.D
// step 6 requires so that two semantically equal maps always hash and
// serialize identically regardless of their Go map iteration order.
package modalias

import "sort"

// Key is a module-alias map key: either the default (unnamed) alias, or
// a named one. At most one entry may have Present == false.
type Key struct {
	Present bool
	Name    string
}

// Map is a mapping from an optional module-name key to a module-name
// value. A nil Map means "absent"; a non-nil, possibly empty, Map means
// "present with these entries" — the two encode differently on the wire
// (spec.md §6.3).
type Map map[Key]string

// Encode produces the canonical byte form spec.md §4.D step 6 describes:
// a null key sorts first, the remainder follow in ascending string-key
// order; each entry is a 1-byte present flag, an optional NUL-terminated
// key, and a NUL-terminated value. Encode returns (nil, false) for an
// absent map and (bytes, true) — possibly of zero entries — for a
// present one.
func Encode(m Map) ([]byte, bool) {
	if m == nil {
		return nil, false
	}

	named := make([]string, 0, len(m))
	hasDefault := false
	for k := range m {
		if k.Present {
			named = append(named, k.Name)
		} else {
			hasDefault = true
		}
	}
	sort.Strings(named)

	var buf []byte
	if hasDefault {
		buf = append(buf, 0)
		buf = appendCString(buf, m[Key{Present: false}])
	}
	for _, name := range named {
		buf = append(buf, 1)
		buf = appendCString(buf, name)
		buf = appendCString(buf, m[Key{Present: true, Name: name}])
	}
	return buf, true
}

// Count returns the entry count used for the i32 length prefix, or -1
// for an absent map.
func Count(m Map) int32 {
	if m == nil {
		return -1
	}
	return int32(len(m))
}

func appendCString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	return append(buf, 0)
}
