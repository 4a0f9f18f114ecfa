package capability

import (
	"errors"
	"testing"
)

type gain struct {
	value float64
	label string
}

type namer interface {
	Name() string
}

type named string

func (n named) Name() string { return string(n) }

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	err := reg.Register(Spec{
		Name: "Gain",
		Kind: KindInput,
		Constructors: []Constructor{
			{
				Params: []Param{Float("value")},
				New: func(args []any) (any, error) {
					return &gain{value: args[0].(float64), label: "float"}, nil
				},
			},
			{
				Params: []Param{Int("value")},
				New: func(args []any) (any, error) {
					return &gain{value: float64(args[0].(int)), label: "int"}, nil
				},
			},
			{
				Params: []Param{Of[namer]("source")},
				New: func(args []any) (any, error) {
					return &gain{label: args[0].(namer).Name()}, nil
				},
			},
			{
				Params: []Param{Float("value"), String("label")},
				New: func(args []any) (any, error) {
					return &gain{value: args[0].(float64), label: args[1].(string)}, nil
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func TestResolveAcceptsBoxedPrimitive(t *testing.T) {
	reg := newTestRegistry(t)

	boxed := 2.5
	instance, err := reg.Resolve("Gain", &boxed)
	if err != nil {
		t.Fatalf("resolve with boxed float: %v", err)
	}
	g := instance.(*gain)
	if g.value != 2.5 || g.label != "float" {
		t.Fatalf("unexpected instance: %+v", g)
	}

	count := 3
	instance, err = reg.Resolve("Gain", &count)
	if err != nil {
		t.Fatalf("resolve with boxed int: %v", err)
	}
	if g := instance.(*gain); g.value != 3 || g.label != "int" {
		t.Fatalf("unexpected instance: %+v", g)
	}
}

func TestResolveUsesFirstDeclaredMatch(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Spec{
		Name: "Twice",
		Constructors: []Constructor{
			{Params: []Param{Float("a")}, New: func([]any) (any, error) { return "first", nil }},
			{Params: []Param{Float("b")}, New: func([]any) (any, error) { return "second", nil }},
		},
	})
	got, err := reg.Resolve("twice", 1.0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "first" {
		t.Fatalf("expected first declared constructor, got %v", got)
	}
}

func TestResolveMatchesArityAndInterfaces(t *testing.T) {
	reg := newTestRegistry(t)

	instance, err := reg.Resolve("Gain", named("compass"))
	if err != nil {
		t.Fatalf("resolve with interface arg: %v", err)
	}
	if g := instance.(*gain); g.label != "compass" {
		t.Fatalf("unexpected instance: %+v", g)
	}

	instance, err = reg.Resolve("Gain", 1.5, "custom")
	if err != nil {
		t.Fatalf("resolve two-arg constructor: %v", err)
	}
	if g := instance.(*gain); g.label != "custom" {
		t.Fatalf("unexpected instance: %+v", g)
	}
}

func TestResolveErrors(t *testing.T) {
	reg := newTestRegistry(t)

	if _, err := reg.Resolve("Missing", 1.0); !errors.Is(err, ErrUnknownCapabilityType) {
		t.Fatalf("expected ErrUnknownCapabilityType, got %v", err)
	}
	if _, err := reg.Resolve("Gain", "text"); !errors.Is(err, ErrUnresolvedCapability) {
		t.Fatalf("expected ErrUnresolvedCapability for wrong type, got %v", err)
	}
	if _, err := reg.Resolve("Gain"); !errors.Is(err, ErrUnresolvedCapability) {
		t.Fatalf("expected ErrUnresolvedCapability for wrong arity, got %v", err)
	}
	var nilFloat *float64
	if _, err := reg.Resolve("Gain", nilFloat); !errors.Is(err, ErrUnresolvedCapability) {
		t.Fatalf("expected nil boxed value to be rejected, got %v", err)
	}
	if _, err := ResolveAs[namer](reg, "Gain", 1.0); !errors.Is(err, ErrUnresolvedCapability) {
		t.Fatalf("expected type assertion failure, got %v", err)
	}
}

func TestRegisterValidationAliasesAndListing(t *testing.T) {
	reg := newTestRegistry(t)
	noop := Constructor{New: func([]any) (any, error) { return struct{}{}, nil }}

	if err := reg.Register(Spec{Name: "", Constructors: []Constructor{noop}}); err == nil {
		t.Fatal("expected name validation")
	}
	if err := reg.Register(Spec{Name: "Empty"}); err == nil {
		t.Fatal("expected constructor validation")
	}
	if err := reg.Register(Spec{Name: "gain", Constructors: []Constructor{noop}}); !errors.Is(err, ErrCapabilityExists) {
		t.Fatalf("expected ErrCapabilityExists, got %v", err)
	}
	if err := reg.Register(Spec{Name: "Wheels", Kind: KindActuator, Aliases: []string{"two_wheels"}, Constructors: []Constructor{noop}}); err != nil {
		t.Fatalf("register with alias: %v", err)
	}
	if !reg.Has("two-wheels") || !reg.Has("WHEELS") {
		t.Fatal("expected canonical and alias lookups to succeed")
	}
	if kind, ok := reg.KindOf("two_wheels"); !ok || kind != KindActuator {
		t.Fatalf("unexpected kind: %q ok=%v", kind, ok)
	}

	all := reg.List("")
	if len(all) != 2 || all[0] != "Gain" || all[1] != "Wheels" {
		t.Fatalf("unexpected listing: %v", all)
	}
	if inputs := reg.List(KindInput); len(inputs) != 1 || inputs[0] != "Gain" {
		t.Fatalf("unexpected input listing: %v", inputs)
	}
}
