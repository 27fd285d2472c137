package wire_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smf/internal/configspace"
	"smf/internal/configspace/static"
	"smf/internal/modalias"
	"smf/internal/request"
	"smf/internal/source"
	"smf/internal/wire"
)

const wireTestDescriptor = `[settings]
search_path = "string"
statement_timeout = "int64"
`

func newSpace(t *testing.T) *static.Space {
	t.Helper()
	cs, err := static.New([]byte(wireTestDescriptor), 3, 0)
	require.NoError(t, err)
	return cs
}

func buildRequest(t *testing.T, mutate func(*request.Params)) *request.Request {
	t.Helper()
	p := request.Params{
		Source:           source.NewSQL("SELECT 1"),
		ProtocolVersion:  request.ProtocolVersion{Major: 3, Minor: 0},
		SchemaVersion:    uuid.New(),
		SchemaVersionSet: true,
		ConfigSpace:      newSpace(t),
		InputLanguage:    request.Sql,
		OutputFormat:     request.OutputBinary,
		InputFormat:      request.InputBinary,
		RoleName:         "admin",
		BranchName:       "main",
	}
	if mutate != nil {
		mutate(&p)
	}
	return request.New(p)
}

func TestRoundTripPreservesEquality(t *testing.T) {
	req := buildRequest(t, nil)
	buf, err := req.Serialize()
	require.NoError(t, err)

	decoded, err := wire.Deserialize(buf, "", newSpace(t))
	require.NoError(t, err)

	assert.True(t, req.Equal(decoded))
}

func TestDeserializeRecoversTrailingKeyWithoutRecomputing(t *testing.T) {
	req := buildRequest(t, nil)
	buf, err := req.Serialize()
	require.NoError(t, err)
	originalKey, err := req.CacheKey()
	require.NoError(t, err)

	decoded, err := wire.Deserialize(buf, "", newSpace(t))
	require.NoError(t, err)
	decodedKey, err := decoded.CacheKey()
	require.NoError(t, err)

	assert.Equal(t, originalKey, decodedKey)
}

func TestIdenticalRequestsProduceIdenticalKeys(t *testing.T) {
	schemaVersion := uuid.New()
	build := func() *request.Request {
		return buildRequest(t, func(p *request.Params) { p.SchemaVersion = schemaVersion })
	}

	k1, err := build().CacheKey()
	require.NoError(t, err)
	k2, err := build().CacheKey()
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestCacheKeyIsSensitiveToSourceText(t *testing.T) {
	req1 := buildRequest(t, nil)
	req2 := buildRequest(t, func(p *request.Params) { p.Source = source.NewSQL("SELECT 2") })

	k1, err := req1.CacheKey()
	require.NoError(t, err)
	k2, err := req2.CacheKey()
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestCacheKeyInsensitiveToDatabaseAndSystemConfigWhenCombinedViewUnchanged(t *testing.T) {
	schemaVersion := uuid.New()

	req1 := buildRequest(t, func(p *request.Params) {
		p.SchemaVersion = schemaVersion
		p.SessionConfig = configspace.Map{
			"search_path": {Name: "search_path", Value: "public", Scope: configspace.ScopeSession},
		}
	})
	req2 := buildRequest(t, func(p *request.Params) {
		p.SchemaVersion = schemaVersion
		p.DatabaseConfig = configspace.Map{
			"search_path": {Name: "search_path", Value: "ignored_because_session_wins", Scope: configspace.ScopeDatabase},
		}
		p.SessionConfig = configspace.Map{
			"search_path": {Name: "search_path", Value: "public", Scope: configspace.ScopeSession},
		}
	})

	k1, err := req1.CacheKey()
	require.NoError(t, err)
	k2, err := req2.CacheKey()
	require.NoError(t, err)
	assert.Equal(t, k1, k2, "database_config never reaches the combined view when session already sets the same name")
}

func TestCacheKeySensitiveToDatabaseConfigWhenItChangesCombinedView(t *testing.T) {
	schemaVersion := uuid.New()

	req1 := buildRequest(t, func(p *request.Params) { p.SchemaVersion = schemaVersion })
	req2 := buildRequest(t, func(p *request.Params) {
		p.SchemaVersion = schemaVersion
		p.DatabaseConfig = configspace.Map{
			"search_path": {Name: "search_path", Value: "analytics", Scope: configspace.ScopeDatabase},
		}
	})

	k1, err := req1.CacheKey()
	require.NoError(t, err)
	k2, err := req2.CacheKey()
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestModAliasEncodingIsOrderIndependentInCacheKey(t *testing.T) {
	schemaVersion := uuid.New()

	req1 := buildRequest(t, func(p *request.Params) {
		p.SchemaVersion = schemaVersion
		p.ModAliases = aliasMap("alpha", "beta")
	})
	req2 := buildRequest(t, func(p *request.Params) {
		p.SchemaVersion = schemaVersion
		p.ModAliases = aliasMap("beta", "alpha")
	})

	k1, err := req1.CacheKey()
	require.NoError(t, err)
	k2, err := req2.CacheKey()
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestDeserializeRejectsUnknownVersionByte(t *testing.T) {
	req := buildRequest(t, nil)
	buf, err := req.Serialize()
	require.NoError(t, err)
	buf[0] = 0xFF

	_, err = wire.Deserialize(buf, "", newSpace(t))
	require.Error(t, err)
	var unsupported *request.UnsupportedVersionError
	assert.ErrorAs(t, err, &unsupported)
}

func TestDeserializeRejectsTruncatedBuffer(t *testing.T) {
	req := buildRequest(t, nil)
	buf, err := req.Serialize()
	require.NoError(t, err)

	_, err = wire.Deserialize(buf[:len(buf)/2], "", newSpace(t))
	require.Error(t, err)
	var protoErr *request.BinaryProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestDeserializeResolvesConfigSpaceUpgradeOnIDMismatch(t *testing.T) {
	req := buildRequest(t, nil)
	buf, err := req.Serialize()
	require.NoError(t, err)

	otherDescriptor := `[settings]
search_path = "string"
statement_timeout = "int64"
jit = "bool"
`
	staleSpace, err := static.New([]byte(otherDescriptor), 3, 0)
	require.NoError(t, err)

	decoded, err := wire.Deserialize(buf, "", staleSpace)
	require.NoError(t, err)
	assert.NotEqual(t, staleSpace.ID(), func() [16]byte { id, _ := decoded.ConfigSpace().Describe(); return id }())
}

func TestSerializeRejectsMissingSchemaVersion(t *testing.T) {
	req := buildRequest(t, func(p *request.Params) {
		p.SchemaVersion = uuid.Nil
		p.SchemaVersionSet = false
	})
	_, err := req.Serialize()
	require.Error(t, err)
	var invalidState *request.InvalidStateError
	assert.ErrorAs(t, err, &invalidState)
}

func aliasMap(names ...string) modalias.Map {
	m := make(modalias.Map, len(names))
	for _, n := range names {
		m[modalias.Key{Present: true, Name: n}] = "mod_" + n
	}
	return m
}
