package capability

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrUnknownCapabilityType = errors.New("unknown capability type")
	ErrUnresolvedCapability  = errors.New("no constructor matches arguments")
	ErrCapabilityExists      = errors.New("capability already registered")
)

type Kind string

const (
	KindSensor     Kind = "sensor"
	KindActuator   Kind = "actuator"
	KindInput      Kind = "input"
	KindController Kind = "controller"
	KindEvaluator  Kind = "evaluator"
)

// Constructor is one declared way of building a capability. New receives the
// caller's arguments already normalized by the matching Params, so a boxed
// *int argument arrives as an int.
type Constructor struct {
	Params []Param
	New    func(args []any) (any, error)
}

type Spec struct {
	Name         string
	Kind         Kind
	Aliases      []string
	Constructors []Constructor
}

type registered struct {
	name         string
	kind         Kind
	constructors []Constructor
}

// Registry maps capability names to their declared constructors. It never
// caches instances; every Resolve allocates.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registered
	aliases map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*registered),
		aliases: make(map[string]string),
	}
}

func (r *Registry) Register(spec Spec) error {
	if strings.TrimSpace(spec.Name) == "" {
		return errors.New("capability name is required")
	}
	if len(spec.Constructors) == 0 {
		return fmt.Errorf("capability %s declares no constructors", spec.Name)
	}
	for i, c := range spec.Constructors {
		if c.New == nil {
			return fmt.Errorf("capability %s constructor %d has no factory", spec.Name, i)
		}
	}

	key := Canonical(spec.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[key]; exists {
		return fmt.Errorf("%w: %s", ErrCapabilityExists, spec.Name)
	}
	if _, exists := r.aliases[key]; exists {
		return fmt.Errorf("%w: %s", ErrCapabilityExists, spec.Name)
	}
	for _, alias := range spec.Aliases {
		aliasKey := Canonical(alias)
		if _, exists := r.entries[aliasKey]; exists {
			return fmt.Errorf("%w: alias %s", ErrCapabilityExists, alias)
		}
		if _, exists := r.aliases[aliasKey]; exists {
			return fmt.Errorf("%w: alias %s", ErrCapabilityExists, alias)
		}
	}

	r.entries[key] = &registered{
		name:         spec.Name,
		kind:         spec.Kind,
		constructors: append([]Constructor(nil), spec.Constructors...),
	}
	for _, alias := range spec.Aliases {
		r.aliases[Canonical(alias)] = key
	}
	return nil
}

func (r *Registry) MustRegister(spec Spec) {
	if err := r.Register(spec); err != nil {
		panic(err)
	}
}

// Resolve builds a new instance of the named capability using the first
// declared constructor whose parameter list accepts args.
func (r *Registry) Resolve(name string, args ...any) (any, error) {
	entry, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCapabilityType, name)
	}
	for _, c := range entry.constructors {
		normalized, ok := match(c.Params, args)
		if !ok {
			continue
		}
		instance, err := c.New(normalized)
		if err != nil {
			return nil, fmt.Errorf("construct %s: %w", entry.name, err)
		}
		return instance, nil
	}
	return nil, fmt.Errorf("%w: %s(%s)", ErrUnresolvedCapability, entry.name, describeArgs(args))
}

// ResolveAs resolves name and asserts the instance provides T.
func ResolveAs[T any](r *Registry, name string, args ...any) (T, error) {
	var zero T
	instance, err := r.Resolve(name, args...)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s does not provide %s", ErrUnresolvedCapability, name, strings.TrimPrefix(fmt.Sprintf("%T", new(T)), "*"))
	}
	return typed, nil
}

// Accepts reports whether some constructor of name matches args, without
// building anything.
func (r *Registry) Accepts(name string, args ...any) bool {
	entry, ok := r.lookup(name)
	if !ok {
		return false
	}
	for _, c := range entry.constructors {
		if _, ok := match(c.Params, args); ok {
			return true
		}
	}
	return false
}

func (r *Registry) Has(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// KindOf reports the kind a capability was registered with.
func (r *Registry) KindOf(name string) (Kind, bool) {
	entry, ok := r.lookup(name)
	if !ok {
		return "", false
	}
	return entry.kind, true
}

// List returns the registered names of the given kind, sorted. An empty kind
// lists everything.
func (r *Registry) List(kind Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		if kind != "" && entry.kind != kind {
			continue
		}
		names = append(names, entry.name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) lookup(name string) (*registered, bool) {
	key := Canonical(name)
	if key == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, ok := r.entries[key]; ok {
		return entry, true
	}
	if target, ok := r.aliases[key]; ok {
		entry, ok := r.entries[target]
		return entry, ok
	}
	return nil, false
}

func match(params []Param, args []any) ([]any, bool) {
	if len(params) != len(args) {
		return nil, false
	}
	normalized := make([]any, len(args))
	for i, p := range params {
		v, ok := p.accept(args[i])
		if !ok {
			return nil, false
		}
		normalized[i] = v
	}
	return normalized, true
}

func describeArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%T", a)
	}
	return strings.Join(parts, ", ")
}

// Canonical folds a capability name for lookup: case, spaces, dashes and
// underscores are ignored, so "wall_ray_sensor" finds "WallRaySensor".
func Canonical(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(normalized)
}
