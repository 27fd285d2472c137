package source

import (
	"strings"

	tidbparser "github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/format"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"smf/internal/cachekey"
)

// sqlText is a raw SQL-dialect query. Its serialized form is just the
// UTF-8 text, so Serialize and Text agree; CacheKey is the Blake2b-128
// digest of that text.
type sqlText struct {
	text string
}

// NewSQL builds a Source for the Sql input language from raw text.
func NewSQL(text string) Source {
	return &sqlText{text: text}
}

// DecodeSQL reconstructs a Sql Source from its wire body, which is the
// raw UTF-8 text itself.
func DecodeSQL(body []byte) (Source, error) {
	return &sqlText{text: string(body)}, nil
}

func (s *sqlText) Serialize() []byte { return []byte(s.text) }
func (s *sqlText) CacheKey() []byte {
	k := cachekey.SumSource([]byte(s.text))
	return k[:]
}
func (s *sqlText) Text() string { return s.text }
func (s *sqlText) Kind() Kind   { return Sql }

// Normalize parses the text with the project's SQL-dialect parser and
// restores it to canonical form (consistent whitespace, keyword casing).
// It does not affect Serialize, CacheKey, or Text — it exists only for
// display — and returns an error if the text
// does not parse as a single statement list.
func Normalize(text string) (string, error) {
	p := tidbparser.New()
	stmts, _, err := p.Parse(text, "", "")
	if err != nil {
		return "", err
	}
	var parts []string
	for _, stmt := range stmts {
		var sb strings.Builder
		ctx := format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)
		if err := stmt.Restore(ctx); err != nil {
			return "", err
		}
		parts = append(parts, strings.TrimSpace(sb.String()))
	}
	return strings.Join(parts, ";\n"), nil
}
