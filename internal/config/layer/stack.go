package layer

import (
	"fmt"
	"sync"

	"github.com/dshills/linepat/internal/config/loader"
)

// Stack holds one optional layer per source and merges them.
type Stack struct {
	mu     sync.RWMutex
	layers [numSources]*Layer
	merged map[string]any // cached; nil when a layer changed
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// Put installs l, replacing the layer of the same source.
func (s *Stack) Put(l *Layer) {
	if !l.Source.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers[l.Source] = l
	s.merged = nil
}

// Layer returns the layer of source, or nil.
func (s *Stack) Layer(source Source) *Layer {
	if !source.Valid() {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layers[source]
}

// Layers returns the installed layers, lowest priority first.
func (s *Stack) Layers() []*Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Layer
	for _, l := range s.layers {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

// Merge combines every layer into one map. The caller owns the result.
func (s *Stack) Merge() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.merged == nil {
		s.merged = make(map[string]any)
		for _, l := range s.layers {
			if l != nil {
				s.merged = loader.DeepMerge(s.merged, loader.Clone(l.Data))
			}
		}
	}
	return loader.Clone(s.merged)
}

// Lookup returns the effective value at path and the source supplying it.
func (s *Stack) Lookup(path string) (any, Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.layers) - 1; i >= 0; i-- {
		l := s.layers[i]
		if l == nil {
			continue
		}
		if v, ok := loader.GetByPath(l.Data, path); ok {
			return v, l.Source, true
		}
	}
	return nil, 0, false
}

// Set stores value at path in the layer of source.
func (s *Stack) Set(source Source, path string, value any) error {
	if !source.Valid() {
		return fmt.Errorf("unknown layer source %d", source)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.layers[source]
	if l == nil {
		return fmt.Errorf("no %s layer", source)
	}
	loader.SetByPath(l.Data, path, value)
	s.merged = nil
	return nil
}
