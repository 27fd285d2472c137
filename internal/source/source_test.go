package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smf/internal/cachekey"
	"smf/internal/source"
)

func TestStructuralKeepsTextSeparateFromSerialized(t *testing.T) {
	src := source.NewStructural([]byte{0x00}, bytesOf16(0x01), "select User filter .name = 'x'")
	assert.Equal(t, []byte{0x00}, src.Serialize())
	assert.Equal(t, "select User filter .name = 'x'", src.Text())
	assert.Equal(t, source.Edgeql, src.Kind())
	assert.Equal(t, bytesOf16(0x01), src.CacheKey())
}

func TestStructuralDefaultsFingerprintWhenEmpty(t *testing.T) {
	a := source.NewStructural([]byte("body"), nil, "text")
	b := source.NewStructural([]byte("body"), nil, "different text")
	assert.Equal(t, a.CacheKey(), b.CacheKey(), "fingerprint fallback depends only on serialized body")
}

func TestDecodeStructuralRoundTrips(t *testing.T) {
	original := source.NewStructural([]byte("norm-form"), nil, "original text")
	decoded, err := source.DecodeStructural(original.Serialize(), "original text")
	require.NoError(t, err)
	assert.Equal(t, original.Serialize(), decoded.Serialize())
	assert.Equal(t, original.CacheKey(), decoded.CacheKey())
	assert.Equal(t, "original text", decoded.Text())
}

func TestSQLSourceIsTotalAndDeterministic(t *testing.T) {
	src := source.NewSQL("SELECT * FROM widgets")
	assert.Equal(t, "SELECT * FROM widgets", src.Text())
	assert.Equal(t, []byte("SELECT * FROM widgets"), src.Serialize())
	assert.Equal(t, source.Sql, src.Kind())
	assert.Len(t, src.CacheKey(), 16)
}

func TestDecodeSQLRoundTrip(t *testing.T) {
	decoded, err := source.DecodeSQL([]byte("SELECT 1"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", decoded.Text())
}

func TestNormalizeCanonicalizesWhitespace(t *testing.T) {
	out, err := source.Normalize("select   1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", out)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := source.Normalize("not sql at all {{{")
	assert.Error(t, err)
}

func TestSQLParamsCacheKeyIsDigestOfSerialize(t *testing.T) {
	src := source.NewSQLParams([]string{"int4"}, []source.OutputParam{{Name: "x", Type: "int4"}})
	assert.Equal(t, "<unknown>", src.Text())
	assert.Equal(t, source.SqlParams, src.Kind())

	body := src.Serialize()
	key := src.CacheKey()
	assert.Equal(t, body, src.Serialize(), "serialize must be deterministic across calls")
	assert.Len(t, key, 16)
	digest := cachekey.SumSource(body)
	assert.Equal(t, digest[:], key)
}

func TestSQLParamsRoundTrip(t *testing.T) {
	original := source.NewSQLParams(
		[]string{"int4", "text"},
		[]source.OutputParam{{Name: "x", Type: "int4"}, {Name: "y", Type: "text"}},
	)
	decoded, err := source.DecodeSQLParams(original.Serialize())
	require.NoError(t, err)

	typed, ok := decoded.(source.SQLParams)
	require.True(t, ok)
	assert.Equal(t, []string{"int4", "text"}, typed.InputTypes())
	assert.Equal(t, []source.OutputParam{{Name: "x", Type: "int4"}, {Name: "y", Type: "text"}}, typed.OutputTypes())
	assert.Equal(t, original.CacheKey(), decoded.CacheKey())
}

func TestKindTagRoundTrip(t *testing.T) {
	for _, k := range []source.Kind{source.Edgeql, source.Sql, source.SqlParams} {
		got, ok := source.KindFromTag(k.Tag())
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := source.KindFromTag('x')
	assert.False(t, ok)
}

func bytesOf16(b byte) []byte {
	out := make([]byte, 16)
	for i := range out {
		out[i] = b
	}
	return out
}
