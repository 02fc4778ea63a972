package node

import (
	"errors"
	"slices"
	"testing"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("Echo", newEcho); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := r.Register("Echo", newEcho); !errors.Is(err, ErrDuplicateRegistration) {
		t.Errorf("duplicate Register error = %v, want ErrDuplicateRegistration", err)
	}
	if err := r.Register("", newEcho); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("empty name error = %v, want ErrInvalidRegistration", err)
	}
	if err := r.Register("Nil", nil); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("nil ctor error = %v, want ErrInvalidRegistration", err)
	}

	n, ok := r.New("Echo")
	if !ok || n.Name() != "Echo" {
		t.Fatalf("New(Echo) = %v, %v", n, ok)
	}
	m, _ := r.New("Echo")
	if n.ID() == m.ID() {
		t.Error("constructed nodes share an ID")
	}

	if _, ok := r.New("Unknown"); ok {
		t.Error("New(Unknown) should report false")
	}

	r.MustRegister("Hollow", func() Node { return nil })
	if _, ok := r.New("Hollow"); ok {
		t.Error("New(Hollow) should report false for a nil node")
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("b", newEcho)
	r.MustRegister("a", newEcho)
	r.MustRegister("c", newEcho)

	if got, want := r.Names(), []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
}

func TestMustRegisterPanics(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("a", newEcho)
	defer func() {
		if recover() == nil {
			t.Error("MustRegister should panic on duplicate")
		}
	}()
	r.MustRegister("a", newEcho)
}
