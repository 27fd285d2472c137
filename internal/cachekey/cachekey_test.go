package cachekey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smf/internal/cachekey"
)

func TestWriterDeterministic(t *testing.T) {
	build := func() cachekey.Key {
		w := cachekey.New()
		w.WriteByte(0x01)
		w.WriteUint16(3)
		w.WriteInt64(-42)
		w.WriteLenPrefixed([]byte("hello"))
		return w.Sum()
	}

	a := build()
	b := build()
	assert.Equal(t, a, b)
}

func TestWriterSensitiveToInput(t *testing.T) {
	w1 := cachekey.New()
	w1.WriteBytes([]byte("alpha"))
	k1 := w1.Sum()

	w2 := cachekey.New()
	w2.WriteBytes([]byte("beta"))
	k2 := w2.Sum()

	assert.NotEqual(t, k1, k2)
}

func TestSumSourceMatchesDirectWrite(t *testing.T) {
	buf := []byte("select 1")

	w := cachekey.New()
	w.WriteBytes(buf)
	direct := w.Sum()

	require.Equal(t, direct, cachekey.SumSource(buf))
}

func TestKeySize(t *testing.T) {
	k := cachekey.SumSource([]byte("x"))
	assert.Len(t, k, cachekey.Size)
	assert.Equal(t, 16, cachekey.Size)
}
