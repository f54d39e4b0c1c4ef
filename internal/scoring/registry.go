package scoring

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

// Registry holds validated weighting schemes by name
// Safe for concurrent readers; Register is expected at startup.
type Registry struct {
	mu      sync.RWMutex
	schemes map[string]registered
}

type registered struct {
	scheme Scheme
	hash   string
	source string
}

// SchemeInfo describes a registered scheme
type SchemeInfo struct {
	Scheme
	Hash   string `json:"hash"`
	Source string `json:"source"` // builtin or file path
}

// NewRegistry returns a registry preloaded with the built-in schemes
func NewRegistry() *Registry {
	r := &Registry{schemes: make(map[string]registered)}
	for _, s := range BuiltinSchemes() {
		// built-ins are valid by construction
		if err := r.register(s, "builtin"); err != nil {
			panic(err)
		}
	}
	return r
}

// Register validates and adds s, replacing any scheme with the same name
func (r *Registry) Register(s Scheme, source string) error {
	return r.register(s, source)
}

func (r *Registry) register(s Scheme, source string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	hash, err := s.Hash()
	if err != nil {
		return fmt.Errorf("hash scheme %s: %w", s.Name, err)
	}

	// 호출자 슬라이스와 분리
	s.Weights = append([]Weight(nil), s.Weights...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemes[s.Name] = registered{scheme: s, hash: hash, source: source}
	return nil
}

// Get returns the scheme and its hash
func (r *Registry) Get(name string) (Scheme, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.schemes[name]
	if !ok {
		return Scheme{}, "", fmt.Errorf("%w: %q", contracts.ErrUnknownScheme, name)
	}
	s := reg.scheme
	s.Weights = append([]Weight(nil), reg.scheme.Weights...)
	return s, reg.hash, nil
}

// List returns all schemes sorted by name
func (r *Registry) List() []SchemeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SchemeInfo, 0, len(r.schemes))
	for _, reg := range r.schemes {
		s := reg.scheme
		s.Weights = append([]Weight(nil), reg.scheme.Weights...)
		out = append(out, SchemeInfo{Scheme: s, Hash: reg.hash, Source: reg.source})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
