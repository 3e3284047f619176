package property

import (
	"errors"
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// Kind distinguishes a task's inputs from its outputs. Outputs may only
// be written from within the owning task's own Execute call once the
// owning context has been finalized; Inputs become immutable at that
// point.
type Kind int

const (
	Input Kind = iota
	Output
)

func (k Kind) String() string {
	if k == Output {
		return "output"
	}
	return "input"
}

type state int

const (
	stateUnset state = iota
	stateStatic
	stateDerived
)

// Property is a typed, lazily-evaluated value cell. It is always in
// exactly one of three states: unset, holding a static value, or
// derived from a Supplier (which may itself be another Property,
// wiring one task's output directly into another task's input).
//
// Property implements Supplier, so a Property can be passed directly as
// the upstream argument to OfCallable, Map or ZipWith, or set directly
// as another Property's value.
type Property struct {
	mu   sync.Mutex
	name string
	kind Kind
	typ  Type
	self any // the owning Task, opaque to this package

	state     state
	staticVal cty.Value
	supplier  Supplier

	// finalized and executing let the owning TaskBase enforce the
	// freeze rule without this package needing to know what a Task is.
	finalized func() bool
	executing func() bool
}

// New constructs a Property. owner is stored opaquely (retrievable via
// Owner) for callers that need to map a Property back to its owning
// task; finalized and executing implement the freeze rule described on
// Kind and may be nil, in which case the property is never frozen (used
// by tests that exercise Property in isolation from any task).
func New(owner any, name string, kind Kind, typ Type, finalized, executing func() bool) *Property {
	return &Property{
		name:      name,
		kind:      kind,
		typ:       typ,
		self:      owner,
		finalized: finalized,
		executing: executing,
	}
}

// Name returns the property's declared name.
func (p *Property) Name() string { return p.name }

// Kind reports whether this is an Input or an Output.
func (p *Property) Kind() Kind { return p.kind }

// Type returns the property's declared Type.
func (p *Property) Type() Type { return p.typ }

// Owner returns the opaque owner value passed to New or SetOwner.
func (p *Property) Owner() any { return p.self }

// SetOwner back-patches the property's owner. It exists for callers like
// kraken.TaskBase that must create a Property before the concrete Task
// value wrapping them is known (a build script's task factory calls
// TaskBase.Input/Output before returning the Task it just built), and so
// cannot pass the real owner to New.
func (p *Property) SetOwner(owner any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.self = owner
}

func (p *Property) frozen() bool {
	if p.finalized == nil || !p.finalized() {
		return false
	}
	if p.kind == Output && p.executing != nil && p.executing() {
		return false
	}
	return true
}

// Set assigns value to the property. value may be any raw Go value
// adaptable to the property's declared Type, or a Supplier (including
// another Property), in which case the property becomes Derived.
func (p *Property) Set(value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frozen() {
		return &FrozenError{Property: p.name}
	}
	return p.setLocked(value)
}

// SetDefault assigns value only if the property has never been set
// (directly or via SetDefault). It is a no-op, not an error, if the
// property already has a value or a Supplier wired into it.
func (p *Property) SetDefault(value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != stateUnset {
		return nil
	}
	if p.frozen() {
		return &FrozenError{Property: p.name}
	}
	return p.setLocked(value)
}

func (p *Property) setLocked(value any) error {
	if sup, ok := value.(Supplier); ok {
		p.state = stateDerived
		p.supplier = sup
		p.staticVal = cty.NilVal
		return nil
	}
	v, err := adapt(p.name, p.typ, value)
	if err != nil {
		return err
	}
	p.state = stateStatic
	p.staticVal = v
	p.supplier = nil
	return nil
}

// Get returns the property's current value as an idiomatic Go value
// (bool, string, float64, PathValue, []any, map[string]any, or nil for
// None), or an error if the property is Unset, or NotHydrated if it is
// Derived from an Output that has not been produced yet.
//
// Get satisfies the Supplier interface: Property.Get() and Supplier.Get()
// are the same method, which is what lets a Property be wired directly
// as another Property's Supplier.
func (p *Property) Get() (any, error) {
	p.mu.Lock()
	st := p.state
	name := p.name
	typ := p.typ
	var staticVal cty.Value
	var sup Supplier
	if st == stateStatic {
		staticVal = p.staticVal
	}
	if st == stateDerived {
		sup = p.supplier
	}
	p.mu.Unlock()

	switch st {
	case stateUnset:
		return nil, &UnsetError{Property: name}
	case stateStatic:
		return toGo(typ, staticVal)
	case stateDerived:
		raw, err := sup.Get()
		if err != nil {
			var ue *UnsetError
			if errors.As(err, &ue) {
				return nil, &NotHydratedError{Property: name, Upstream: ue.Property}
			}
			return nil, err
		}
		v, err := adapt(name, typ, raw)
		if err != nil {
			return nil, err
		}
		return toGo(typ, v)
	default:
		return nil, &UnsetError{Property: name}
	}
}

// GetOr returns the property's value, or fallback if the property is
// Unset. Any other error (NotHydrated, a type mismatch surfaced lazily
// from a Derived chain) still propagates.
func (p *Property) GetOr(fallback any) (any, error) {
	v, err := p.Get()
	if err != nil {
		var ue *UnsetError
		if errors.As(err, &ue) {
			return fallback, nil
		}
		return nil, err
	}
	return v, nil
}

// IsSet reports whether the property has been configured at all, static
// or Derived, regardless of whether a Derived chain can currently
// resolve to a value.
func (p *Property) IsSet() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state != stateUnset
}

// IsFilled reports whether Get would currently succeed.
func (p *Property) IsFilled() bool {
	_, err := p.Get()
	return err == nil
}

// Upstream reports the Properties this property is directly Derived
// from, or nil if it is Unset or Static. Used to infer task dependencies
// from property wiring.
func (p *Property) Upstream() []*Property {
	p.mu.Lock()
	st := p.state
	sup := p.supplier
	p.mu.Unlock()
	if st != stateDerived {
		return nil
	}
	return upstreamOf(sup)
}

// upstreamOf reports the upstream-dependency contribution of a Supplier.
// A bare Property supplier contributes itself, regardless of its own
// internal derivation: the dependency that matters to the reader is the
// property (and its owning task) it was wired to directly, not whatever
// that property happens to be further derived from.
func upstreamOf(s Supplier) []*Property {
	if p, ok := s.(*Property); ok {
		return []*Property{p}
	}
	return s.Upstream()
}

// toGo converts a resolved cty.Value back into an idiomatic Go
// representation matching t.
func toGo(t Type, v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	switch t.kind {
	case kindBool:
		return v.True(), nil
	case kindNumber:
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	case kindString:
		return v.AsString(), nil
	case kindNone:
		return nil, nil
	case kindPath:
		return PathValue(v.AsString()), nil
	case kindSequence, kindSet:
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			gv, err := toGo(*t.elem, ev)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	case kindMapping:
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			gv, err := toGo(*t.elem, ev)
			if err != nil {
				return nil, err
			}
			out[kv.AsString()] = gv
		}
		return out, nil
	case kindUnion:
		// The concrete cty.Value of a resolved union carries its own
		// type; find the alternative whose shape actually matches it
		// and recurse. Ground types compare by their single cty.Type;
		// the three container kinds have no single cty.Type (a List, a
		// Set and a Map are all legal element types for any of them),
		// so they're matched by the value's own collection kind instead.
		for _, alt := range t.union {
			matches := false
			switch alt.kind {
			case kindSequence:
				matches = v.Type().IsListType()
			case kindSet:
				matches = v.Type().IsSetType()
			case kindMapping:
				matches = v.Type().IsMapType()
			default:
				matches = v.Type().Equals(alt.ctyElemType())
			}
			if !matches {
				continue
			}
			if gv, err := toGo(alt, v); err == nil {
				return gv, nil
			}
		}
		return nil, &TypeMismatchError{Property: t.String(), Declared: t, Value: v}
	default:
		return nil, &TypeMismatchError{Property: t.String(), Declared: t}
	}
}
