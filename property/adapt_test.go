package property

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAdaptSequenceAcceptsTypedGoSlices(t *testing.T) {
	// Sequence/Set/Mapping adapters accept native Go container types
	// (not just []any / map[string]any) via reflection, so build-script
	// authors can pass []string literals directly.
	p := New(nil, "names", Input, SequenceOf(String()), nil, nil)
	if err := p.Set([]string{"a", "b", "c"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := p.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := []any{"a", "b", "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}
}

func TestAdaptNoneRequiresNil(t *testing.T) {
	p := New(nil, "marker", Input, None(), nil, nil)
	if err := p.Set("not nil"); err == nil {
		t.Fatal("Set(non-nil) on a None-typed property: want error, got nil")
	}
	if err := p.Set(nil); err != nil {
		t.Fatalf("Set(nil): %v", err)
	}
	got, err := p.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("Get = %v, want nil", got)
	}
}

func TestAdaptEmptyCollections(t *testing.T) {
	tests := map[string]struct {
		typ   Type
		value any
	}{
		"empty sequence": {SequenceOf(String()), []any{}},
		"empty set":      {SetOf(Number()), []any{}},
		"empty mapping":  {MappingOf(String()), map[string]any{}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			p := New(nil, name, Input, tc.typ, nil, nil)
			if err := p.Set(tc.value); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if !p.IsFilled() {
				t.Errorf("IsFilled() = false for an explicitly-set empty collection")
			}
		})
	}
}

func TestAdaptRejectsHeterogeneousElementType(t *testing.T) {
	p := New(nil, "counts", Input, SequenceOf(Number()), nil, nil)
	err := p.Set([]any{1, "not a number", 3})
	var tm *TypeMismatchError
	if !errors.As(err, &tm) {
		t.Fatalf("Set: want *TypeMismatchError, got %v", err)
	}
}
