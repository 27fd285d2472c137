// Package request defines CompilationRequest: an immutable, content-
// addressed bundle of every input that can change a query compiler's
// output. The full set of inputs is listed on Params below.
package request

import (
	"sync"

	"github.com/google/uuid"

	"smf/internal/cachekey"
	"smf/internal/configspace"
	"smf/internal/modalias"
	"smf/internal/source"
)

// Params bundles every input accepted by New. SchemaVersion may be left
// as uuid.Nil with SchemaVersionSet=false; schema_version is then
// expected to be attached later with WithSchemaVersion, and Serialize
// fails with InvalidStateError until it is.
type Params struct {
	Source          source.Source
	ProtocolVersion ProtocolVersion
	SchemaVersion   uuid.UUID
	SchemaVersionSet bool
	ConfigSpace     configspace.Space
	InputLanguage   InputLanguage
	OutputFormat    OutputFormat
	InputFormat     InputFormat
	ExpectOne       bool
	ImplicitLimit   int64
	InlineTypeIDs   bool
	InlineTypeNames bool
	InlineObjectIDs bool
	RoleName        string
	BranchName      string
	ModAliases      modalias.Map // nil = absent
	SessionConfig   configspace.Map // nil = absent
	DatabaseConfig  configspace.Map // nil = absent
	SystemConfig    configspace.Map // nil = absent
}

// Request is CompilationRequest: immutable once constructed. Every
// "setter" below returns a modified copy with derived fields (CacheKey,
// serialized bytes) invalidated, never mutates the receiver.
type Request struct {
	p Params

	derived *derivedState
}

// derivedState holds the lazily computed, memoized cache key and
// serialized buffer. It is safe for concurrent readers: the first caller
// to touch either pays the cost, under sync.Once, and every caller
// (including ones racing on different goroutines) observes the same
// result. A Request that has never been serialized carries a fresh,
// not-yet-run derivedState; copies made by a mutator get their own fresh
// one so the previous computation never leaks into the copy.
type derivedState struct {
	once sync.Once
	key  cachekey.Key
	buf  []byte
	err  error
}

// serializer is the wire-layout function CacheKey/Serialize delegate to.
// Package wire installs it from an init func via RegisterSerializer, the
// same registration pattern the teacher's dialect package uses for
// pluggable Generators — it exists to avoid an import cycle (wire needs
// *Request's fields; request needs wire's layout to memoize).
var (
	serializerMu sync.RWMutex
	serializer   func(r *Request) ([]byte, cachekey.Key, error)
)

// RegisterSerializer installs the function CacheKey/Serialize call to
// compute a request's wire layout and cache key. Called once, from
// package wire's init; not meant for use outside this module.
func RegisterSerializer(f func(r *Request) ([]byte, cachekey.Key, error)) {
	serializerMu.Lock()
	defer serializerMu.Unlock()
	serializer = f
}

// New constructs a Request from every input it needs. Derived fields
// start empty and are computed lazily on first CacheKey/Serialize call.
func New(p Params) *Request {
	return &Request{p: cloneParams(p), derived: &derivedState{}}
}

func cloneParams(p Params) Params {
	cp := p
	if p.ModAliases != nil {
		cp.ModAliases = make(modalias.Map, len(p.ModAliases))
		for k, v := range p.ModAliases {
			cp.ModAliases[k] = v
		}
	}
	cp.SessionConfig = cloneConfigMap(p.SessionConfig)
	cp.DatabaseConfig = cloneConfigMap(p.DatabaseConfig)
	cp.SystemConfig = cloneConfigMap(p.SystemConfig)
	return cp
}

func cloneConfigMap(m configspace.Map) configspace.Map {
	if m == nil {
		return nil
	}
	cp := make(configspace.Map, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func (r *Request) withCopy(mutate func(p *Params)) *Request {
	p := cloneParams(r.p)
	mutate(&p)
	return &Request{p: p, derived: &derivedState{}}
}

// WithModAliases returns a copy with the module-alias map replaced. Pass
// nil for "absent".
func (r *Request) WithModAliases(m modalias.Map) *Request {
	return r.withCopy(func(p *Params) {
		if m == nil {
			p.ModAliases = nil
			return
		}
		p.ModAliases = make(modalias.Map, len(m))
		for k, v := range m {
			p.ModAliases[k] = v
		}
	})
}

// WithSessionConfig returns a copy with the session config map replaced.
func (r *Request) WithSessionConfig(m configspace.Map) *Request {
	return r.withCopy(func(p *Params) { p.SessionConfig = cloneConfigMap(m) })
}

// WithDatabaseConfig returns a copy with the database config map replaced.
func (r *Request) WithDatabaseConfig(m configspace.Map) *Request {
	return r.withCopy(func(p *Params) { p.DatabaseConfig = cloneConfigMap(m) })
}

// WithSystemConfig returns a copy with the system config map replaced.
func (r *Request) WithSystemConfig(m configspace.Map) *Request {
	return r.withCopy(func(p *Params) { p.SystemConfig = cloneConfigMap(m) })
}

// WithSchemaVersion returns a copy with schema_version set.
func (r *Request) WithSchemaVersion(id uuid.UUID) *Request {
	return r.withCopy(func(p *Params) {
		p.SchemaVersion = id
		p.SchemaVersionSet = true
	})
}

// Accessors. None of these trigger derived-field computation.

func (r *Request) Source() source.Source               { return r.p.Source }
func (r *Request) ProtocolVersion() ProtocolVersion     { return r.p.ProtocolVersion }
func (r *Request) SchemaVersion() (uuid.UUID, bool)     { return r.p.SchemaVersion, r.p.SchemaVersionSet }
func (r *Request) ConfigSpace() configspace.Space       { return r.p.ConfigSpace }
func (r *Request) InputLanguage() InputLanguage         { return r.p.InputLanguage }
func (r *Request) OutputFormat() OutputFormat           { return r.p.OutputFormat }
func (r *Request) InputFormat() InputFormat             { return r.p.InputFormat }
func (r *Request) ExpectOne() bool                      { return r.p.ExpectOne }
func (r *Request) ImplicitLimit() int64                 { return r.p.ImplicitLimit }
func (r *Request) InlineTypeIDs() bool                  { return r.p.InlineTypeIDs }
func (r *Request) InlineTypeNames() bool                { return r.p.InlineTypeNames }
func (r *Request) InlineObjectIDs() bool                { return r.p.InlineObjectIDs }
func (r *Request) RoleName() string                     { return r.p.RoleName }
func (r *Request) BranchName() string                   { return r.p.BranchName }
func (r *Request) ModAliases() modalias.Map             { return r.p.ModAliases }
func (r *Request) SessionConfig() configspace.Map       { return r.p.SessionConfig }
func (r *Request) DatabaseConfig() configspace.Map      { return r.p.DatabaseConfig }
func (r *Request) SystemConfig() configspace.Map        { return r.p.SystemConfig }

// CacheKey triggers the serializer if the derived state hasn't been
// computed yet, then returns the 128-bit cache key.
func (r *Request) CacheKey() (cachekey.Key, error) {
	r.ensure()
	return r.derived.key, r.derived.err
}

// Serialize triggers the serializer if needed and returns the full
// binary buffer, including the trailing cache key.
func (r *Request) Serialize() ([]byte, error) {
	r.ensure()
	if r.derived.err != nil {
		return nil, r.derived.err
	}
	return append([]byte(nil), r.derived.buf...), nil
}

func (r *Request) ensure() {
	r.derived.once.Do(func() {
		serializerMu.RLock()
		f := serializer
		serializerMu.RUnlock()
		if f == nil {
			r.derived.err = &InvalidStateError{Field: "wire serializer"}
			return
		}
		buf, key, err := f(r)
		r.derived.buf = buf
		r.derived.key = key
		r.derived.err = err
	})
}

// SetCachedResult installs an already-known serialization and cache key
// directly, bypassing the registered serializer. It is used by the deserializer (which
// already has both in hand from the bytes it just read) so that a
// reconstructed Request never needs to re-run the serializer to answer
// CacheKey/Serialize.
func (r *Request) SetCachedResult(buf []byte, key cachekey.Key) {
	r.derived.once.Do(func() {
		r.derived.buf = append([]byte(nil), buf...)
		r.derived.key = key
	})
}
