package scoring

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk scheme document
//
//	schemes:
//	  - name: balanced-v4
//	    weights:
//	      - {factor: volatility, weight: 50}
//	      - {factor: sharpe, weight: 50}
type File struct {
	Schemes []Scheme `yaml:"schemes"`
}

// LoadFile reads a YAML scheme file
// KnownFields(true)로 오타/미사용 필드 즉시 실패
func LoadFile(path string) ([]Scheme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scheme file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scheme document
func Parse(data []byte) ([]Scheme, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode scheme file: %w", err)
	}

	seen := make(map[string]bool, len(f.Schemes))
	for i := range f.Schemes {
		s := &f.Schemes[i]
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate scheme %q in file", s.Name)
		}
		seen[s.Name] = true
	}
	return f.Schemes, nil
}

// LoadInto registers every scheme in path, overriding built-ins with the same name
func (r *Registry) LoadInto(path string) (int, error) {
	schemes, err := LoadFile(path)
	if err != nil {
		return 0, err
	}
	for _, s := range schemes {
		if err := r.Register(s, path); err != nil {
			return 0, err
		}
	}
	return len(schemes), nil
}
