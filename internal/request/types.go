package request

import "smf/internal/source"

// ProtocolVersion is the client/server protocol version a request was
// compiled under. Only majors >= 1 are supported; major 0 is rejected at
// deserialization time.
type ProtocolVersion struct {
	Major uint16
	Minor uint16
}

// OutputFormat is the requested shape of compiled query results.
type OutputFormat uint8

const (
	OutputBinary OutputFormat = iota
	OutputJSON
	OutputJSONElements
	OutputNone
)

// Tag returns the single ASCII byte this format is encoded as on the
// wire (spec.md §6.1).
func (f OutputFormat) Tag() (byte, bool) {
	switch f {
	case OutputBinary:
		return 'b', true
	case OutputJSON:
		return 'j', true
	case OutputJSONElements:
		return 'J', true
	case OutputNone:
		return 'n', true
	default:
		return 0, false
	}
}

// OutputFormatFromTag reverses Tag.
func OutputFormatFromTag(b byte) (OutputFormat, bool) {
	switch b {
	case 'b':
		return OutputBinary, true
	case 'j':
		return OutputJSON, true
	case 'J':
		return OutputJSONElements, true
	case 'n':
		return OutputNone, true
	default:
		return 0, false
	}
}

func (f OutputFormat) String() string {
	switch f {
	case OutputBinary:
		return "Binary"
	case OutputJSON:
		return "Json"
	case OutputJSONElements:
		return "JsonElements"
	case OutputNone:
		return "None"
	default:
		return "Unknown"
	}
}

// InputFormat is the encoding of the query's bound arguments.
type InputFormat uint8

const (
	InputBinary InputFormat = iota
	InputJSON
)

func (f InputFormat) String() string {
	if f == InputJSON {
		return "Json"
	}
	return "Binary"
}

// InputLanguage identifies which Source variant a request carries. It is
// the same enumeration as source.Kind; request reuses it directly so the
// wire tag and the Source's own Kind can never drift apart.
type InputLanguage = source.Kind

const (
	Edgeql    = source.Edgeql
	Sql       = source.Sql
	SqlParams = source.SqlParams
)
