package host

import (
	"errors"
	"testing"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	factory := func() (Processor, error) { return &countingProcessor{}, nil }

	if err := r.Register(Component{Name: "b", Factory: factory}); err != nil {
		t.Fatal(err)
	}

	if err := r.Register(Component{Name: "a", Factory: factory}); err != nil {
		t.Fatal(err)
	}

	if err := r.Register(Component{Name: "a", Factory: factory}); !errors.Is(err, errDuplicateComponent) {
		t.Fatalf("duplicate Register error = %v", err)
	}

	if err := r.Register(Component{Factory: factory}); err == nil {
		t.Fatal("empty name accepted")
	}

	if err := r.Register(Component{Name: "c"}); err == nil {
		t.Fatal("nil factory accepted")
	}

	if _, ok := r.Lookup("a"); !ok {
		t.Fatal("Lookup(a) failed")
	}

	if _, ok := r.Lookup("missing"); ok {
		t.Fatal("Lookup(missing) succeeded")
	}

	if got := r.Names(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Names() = %v", got)
	}
}

func TestMustRegisterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustRegister did not panic")
		}
	}()

	NewRegistry().MustRegister(Component{Name: "x"})
}

func TestCustomRegistry(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Component{
		Name:    ComponentName,
		Factory: func() (Processor, error) { return &countingProcessor{}, nil },
	})

	h, err := New(WithRegistry(r))
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := h.proc.(*countingProcessor); !ok {
		t.Fatalf("processor %T not built by the registry", h.proc)
	}

	failing := NewRegistry()
	failing.MustRegister(Component{
		Name:    ComponentName,
		Factory: func() (Processor, error) { return nil, errScripted },
	})

	if _, err := New(WithRegistry(failing)); !errors.Is(err, errScripted) {
		t.Fatalf("factory error = %v", err)
	}
}
