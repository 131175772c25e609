package postprocessors

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

// ErrUnknownProcessor is returned when a step names an unregistered processor.
var ErrUnknownProcessor = errors.New("unknown processor")

// Factory builds a processor from its step config, which may be nil.
type Factory func(cfg map[string]any) (driven.DocumentProcessor, error)

// Step is one pipeline stage: a registered processor and its config.
type Step struct {
	Name   string
	Config map[string]any
}

// Registry resolves processor names to factories.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds a factory. Registering a name twice replaces the first.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Names lists registered processors alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Build(name string, cfg map[string]any) (driven.DocumentProcessor, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownProcessor, name, r.Names())
	}
	p, err := f(cfg)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", name, err)
	}
	return p, nil
}

// Pipeline builds the steps in order. All steps are resolved before any is
// built so a typo fails fast.
func (r *Registry) Pipeline(steps ...Step) (*Pipeline, error) {
	for _, s := range steps {
		if !r.Has(s.Name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProcessor, s.Name)
		}
	}
	p := NewPipeline()
	for _, s := range steps {
		proc, err := r.Build(s.Name, s.Config)
		if err != nil {
			return nil, err
		}
		p.Add(proc)
	}
	return p, nil
}

// configInt reads an integer that may have been decoded from TOML or JSON.
func configInt(cfg map[string]any, key string) (int, bool) {
	switch v := cfg[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

// stepNames is used in log lines.
func stepNames(steps []Step) []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	return slices.Clip(names)
}
