package registry

import (
	"sort"
	"sync"
)

// Expansion names a StarCraft II release line
type Expansion string

const (
	WingsOfLiberty   Expansion = "WoL"
	HeartOfTheSwarm  Expansion = "HotS"
	LegacyOfTheVoid  Expansion = "LotV"
	UnknownExpansion Expansion = ""
)

// Version identifies the build a replay was recorded with. Builds increase
// monotonically across expansions.
type Version struct {
	Expansion Expansion
	Build     int
}

type rule[D any] struct {
	pred    Predicate
	decoder D
}

// Registry maps (stream name, version) to a decoder. Rules registered later
// take precedence over earlier ones, so a narrow override for a handful of
// builds is registered after the general rule it refines.
//
// A Registry is safe for concurrent use; lookups only take a read lock.
type Registry[D any] struct {
	mu    sync.RWMutex
	rules map[string][]rule[D] // stream name -> rules, newest first
}

// NewRegistry creates an empty registry
func NewRegistry[D any]() *Registry[D] {
	return &Registry[D]{
		rules: make(map[string][]rule[D]),
	}
}

// Register adds a rule for stream. It is consulted before every rule
// registered earlier for the same stream.
func (r *Registry[D]) Register(stream string, pred Predicate, decoder D) {
	if pred == nil {
		pred = Always()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[stream] = append([]rule[D]{{pred: pred, decoder: decoder}}, r.rules[stream]...)
}

// Resolve returns the decoder of the most recently registered rule whose
// predicate accepts v.
func (r *Registry[D]) Resolve(stream string, v Version) (D, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rl := range r.rules[stream] {
		if rl.pred(v) {
			return rl.decoder, nil
		}
	}

	var zero D
	return zero, &NoDecoderError{Stream: stream, Expansion: v.Expansion, Build: v.Build}
}

// Has reports whether any rule exists for stream.
func (r *Registry[D]) Has(stream string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules[stream]) > 0
}

// Rules returns the number of rules registered for stream.
func (r *Registry[D]) Rules(stream string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules[stream])
}

// Streams lists the stream names with at least one rule
func (r *Registry[D]) Streams() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
