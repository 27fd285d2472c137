package modalias_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smf/internal/modalias"
)

func TestEncodeAbsentMapIsNilFalse(t *testing.T) {
	buf, ok := modalias.Encode(nil)
	assert.False(t, ok)
	assert.Nil(t, buf)
	assert.Equal(t, int32(-1), modalias.Count(nil))
}

func TestEncodePresentEmptyMapIsEmptyTrue(t *testing.T) {
	buf, ok := modalias.Encode(modalias.Map{})
	assert.True(t, ok)
	assert.Empty(t, buf)
	assert.Equal(t, int32(0), modalias.Count(modalias.Map{}))
}

func TestEncodeIsOrderIndependent(t *testing.T) {
	m1 := modalias.Map{
		{Present: true, Name: "alpha"}: "mod_alpha",
		{Present: true, Name: "beta"}:  "mod_beta",
		{Present: false}:               "mod_default",
	}
	m2 := modalias.Map{
		{Present: false}:               "mod_default",
		{Present: true, Name: "beta"}:  "mod_beta",
		{Present: true, Name: "alpha"}: "mod_alpha",
	}

	a, aok := modalias.Encode(m1)
	b, bok := modalias.Encode(m2)
	assert.True(t, aok)
	assert.True(t, bok)
	assert.Equal(t, a, b)
}

func TestEncodeDefaultKeySortsFirst(t *testing.T) {
	m := modalias.Map{
		{Present: true, Name: "aaa"}: "x",
		{Present: false}:             "default_target",
	}
	buf, ok := modalias.Encode(m)
	assert.True(t, ok)
	assert.Equal(t, byte(0), buf[0], "default entry's present flag must come first")
}

func TestCountMatchesEntryCount(t *testing.T) {
	m := modalias.Map{
		{Present: true, Name: "a"}: "x",
		{Present: true, Name: "b"}: "y",
	}
	assert.Equal(t, int32(2), modalias.Count(m))
}
