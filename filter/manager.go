package filter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Manager holds named filters, such as the presets from the config file
type Manager struct {
	compiler  Compiler
	evaluator *Evaluator
	filters   map[string]Filter
	mu        sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		compiler:  defaultCompiler,
		evaluator: NewEvaluator(),
		filters:   make(map[string]Filter),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// RegisterFilter registers a new filter or updates an existing one
func (m *Manager) RegisterFilter(name, expression string) error {
	f, err := m.compiler.Compile(expression)
	if err != nil {
		return fmt.Errorf("failed to compile filter '%s': %w", name, err)
	}

	m.mu.Lock()
	m.filters[name] = f
	m.mu.Unlock()

	return nil
}

// RegisterFilters registers multiple filters at once. Nothing is
// registered if any expression fails to compile.
func (m *Manager) RegisterFilters(filters map[string]string) error {
	compiled := make(map[string]Filter, len(filters))

	for _, name := range slices.Sorted(maps.Keys(filters)) {
		f, err := m.compiler.Compile(filters[name])
		if err != nil {
			return fmt.Errorf("failed to compile filter '%s': %w", name, err)
		}
		compiled[name] = f
	}

	m.mu.Lock()
	maps.Copy(m.filters, compiled)
	m.mu.Unlock()

	return nil
}

// GetFilter returns a compiled filter by name
func (m *Manager) GetFilter(name string) (Filter, bool) {
	m.mu.RLock()
	f, exists := m.filters[name]
	m.mu.RUnlock()
	return f, exists
}

// ListFilters returns all registered filter names, sorted
func (m *Manager) ListFilters() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.filters))
}

// Resolve returns the filter to use for an expression and a preset name.
// An expression takes precedence; with neither, every record matches.
func (m *Manager) Resolve(expression, preset string) (Filter, error) {
	if expression != "" {
		return m.compiler.Compile(expression)
	}
	if preset != "" {
		f, ok := m.GetFilter(preset)
		if !ok {
			return nil, &UnknownPresetError{Name: preset}
		}
		return f, nil
	}
	return MatchAll(), nil
}

// Apply resolves expression or preset and filters the list under key in
// result with the manager's evaluator. With neither set, result is
// returned unchanged.
func (m *Manager) Apply(ctx context.Context, result map[string]any, key, expression, preset string) (map[string]any, error) {
	if expression == "" && preset == "" {
		return result, nil
	}

	f, err := m.Resolve(expression, preset)
	if err != nil {
		return nil, err
	}
	return m.evaluator.Apply(ctx, result, key, f)
}
