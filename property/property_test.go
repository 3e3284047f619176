package property

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zclconf/go-cty/cty"
)

func TestPropertyStaticGet(t *testing.T) {
	tests := map[string]struct {
		typ   Type
		value any
		want  any
	}{
		"bool":   {Bool(), true, true},
		"number": {Number(), 3, float64(3)},
		"string": {String(), "hi", "hi"},
		"path":   {Path(), "a/b", PathValue("a/b")},
		"sequence of string": {
			SequenceOf(String()), []any{"a", "b"}, []any{"a", "b"},
		},
		"mapping of number": {
			MappingOf(Number()), map[string]any{"x": 1}, map[string]any{"x": float64(1)},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			p := New(nil, name, Input, tc.typ, nil, nil)
			if err := p.Set(tc.value); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := p.Get()
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Get mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPropertyUnsetGet(t *testing.T) {
	p := New(nil, "src", Input, String(), nil, nil)
	_, err := p.Get()
	var ue *UnsetError
	if !errors.As(err, &ue) {
		t.Fatalf("Get on unset property: want *UnsetError, got %v", err)
	}
}

func TestPropertyTypeMismatch(t *testing.T) {
	p := New(nil, "count", Input, Number(), nil, nil)
	err := p.Set("not a number")
	var tm *TypeMismatchError
	if !errors.As(err, &tm) {
		t.Fatalf("Set: want *TypeMismatchError, got %v", err)
	}
}

func TestPropertySetDefaultDoesNotOverwrite(t *testing.T) {
	p := New(nil, "name", Input, String(), nil, nil)
	if err := p.Set("explicit"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := p.SetDefault("default"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	got, err := p.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "explicit" {
		t.Errorf("Get = %v, want %q (SetDefault must not overwrite)", got, "explicit")
	}
}

func TestPropertyDerivedFromAnotherProperty(t *testing.T) {
	upstream := New(nil, "out", Output, String(), nil, nil)
	downstream := New(nil, "in", Input, String(), nil, nil)
	if err := downstream.Set(upstream); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Upstream not yet produced: reading downstream reports NotHydrated,
	// not the more generic Unset.
	_, err := downstream.Get()
	var nh *NotHydratedError
	if !errors.As(err, &nh) {
		t.Fatalf("Get before upstream produced: want *NotHydratedError, got %v", err)
	}

	if err := upstream.Set("value"); err != nil {
		t.Fatalf("Set upstream: %v", err)
	}
	got, err := downstream.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "value" {
		t.Errorf("Get = %v, want %q", got, "value")
	}

	ups := downstream.Upstream()
	if len(ups) != 1 || ups[0] != upstream {
		t.Errorf("Upstream() = %v, want [upstream]", ups)
	}
}

func TestPropertyFrozenAfterFinalize(t *testing.T) {
	finalized := true
	p := New(nil, "in", Input, String(), func() bool { return finalized }, nil)
	err := p.Set("too late")
	var fe *FrozenError
	if !errors.As(err, &fe) {
		t.Fatalf("Set after finalize: want *FrozenError, got %v", err)
	}
}

func TestPropertyOutputWritableWhileExecuting(t *testing.T) {
	finalized := true
	executing := true
	p := New(nil, "out", Output, String(), func() bool { return finalized }, func() bool { return executing })
	if err := p.Set("produced"); err != nil {
		t.Fatalf("Set while executing: %v", err)
	}
	executing = false
	if err := p.Set("too late"); err == nil {
		t.Fatalf("Set after execution window closed: want error, got nil")
	}
}

func TestUnionResolutionIsOrderDependent(t *testing.T) {
	// String and Path both accept a raw Go string, so which alternative
	// wins is purely a function of declaration order.
	stringFirst := Union(String(), Path())
	pathFirst := Union(Path(), String())

	a := New(nil, "a", Input, stringFirst, nil, nil)
	if err := a.Set("a/b"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := a.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, ok := got.(string); !ok {
		t.Errorf("stringFirst union got %T, want a plain string (String declared before Path)", got)
	}

	b := New(nil, "b", Input, pathFirst, nil, nil)
	if err := b.Set("a/b"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got2, err := b.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, ok := got2.(PathValue); !ok {
		t.Errorf("pathFirst union got %T, want PathValue (Path declared before String)", got2)
	}
}

func TestToGoUnionMatchesActualContainerKind(t *testing.T) {
	// A union of two container alternatives must resolve toGo by the
	// stored cty.Value's own collection kind, not by always matching
	// whichever container alternative was declared first: a mapping
	// value must come back as a map even though the sequence
	// alternative is declared first in this union.
	u := Union(SequenceOf(String()), MappingOf(String()))
	mapVal := cty.MapVal(map[string]cty.Value{"a": cty.StringVal("x"), "b": cty.StringVal("y")})

	got, err := toGo(u, mapVal)
	if err != nil {
		t.Fatalf("toGo: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("toGo(union, mapVal) = %T, want map[string]any (matched via the mapping alternative)", got)
	}
	if m["a"] != "x" || m["b"] != "y" {
		t.Errorf("toGo(union, mapVal) = %v, want {a:x b:y}", m)
	}
}
