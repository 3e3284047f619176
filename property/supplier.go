package property

import "sync"

// Supplier is a lazily-evaluated source of a value. Property itself
// implements Supplier, which is what lets one task's output be wired
// directly into another task's input: the consuming Property stores the
// producing Property as its Supplier and only calls Get on it when its
// own value is asked for.
//
// The Suppliers built by OfCallable, Map and ZipWith memoize Get: once
// evaluated, later calls return the cached result (value or error)
// without re-invoking the underlying callable. A Property used as a
// Supplier is read afresh on every call. Code built on Supplier must not
// depend on how many times the underlying function actually runs.
type Supplier interface {
	Get() (any, error)

	// Upstream reports the Properties this supplier reads from directly,
	// used to compute implied task dependencies. It is not transitive:
	// a Supplier wrapping another Property reports that Property itself,
	// not that Property's own upstream chain.
	Upstream() []*Property
}

type constSupplier struct {
	value any
}

// Of wraps a fixed value as a Supplier with no upstream.
func Of(value any) Supplier {
	return constSupplier{value: value}
}

func (s constSupplier) Get() (any, error)      { return s.value, nil }
func (s constSupplier) Upstream() []*Property  { return nil }

type callableSupplier struct {
	fn       func() (any, error)
	upstream []*Property

	once  sync.Once
	value any
	err   error
}

// OfCallable wraps fn as a Supplier whose declared upstream properties
// are used for dependency inference even though fn itself is an opaque
// closure the graph cannot otherwise see into.
func OfCallable(fn func() (any, error), upstream ...*Property) Supplier {
	return &callableSupplier{fn: fn, upstream: append([]*Property(nil), upstream...)}
}

func (s *callableSupplier) Get() (any, error) {
	s.once.Do(func() {
		s.value, s.err = s.fn()
	})
	return s.value, s.err
}

func (s *callableSupplier) Upstream() []*Property { return s.upstream }

type mapSupplier struct {
	inner Supplier
	fn    func(any) (any, error)

	once  sync.Once
	value any
	err   error
}

// Map returns a Supplier that applies fn to inner's value. If inner
// fails, Map fails the same way without calling fn.
func Map(inner Supplier, fn func(any) (any, error)) Supplier {
	return &mapSupplier{inner: inner, fn: fn}
}

func (s *mapSupplier) Get() (any, error) {
	s.once.Do(func() {
		v, err := s.inner.Get()
		if err != nil {
			s.err = err
			return
		}
		s.value, s.err = s.fn(v)
	})
	return s.value, s.err
}

func (s *mapSupplier) Upstream() []*Property { return upstreamOf(s.inner) }

type zipSupplier struct {
	a, b Supplier
	fn   func(any, any) (any, error)

	once  sync.Once
	value any
	err   error
}

// ZipWith returns a Supplier that combines the values of a and b via fn.
// Both a and b are evaluated (in order, a then b) even if one of them
// ultimately errors, so that both sides' side effects, if any, still run;
// the first error encountered wins.
func ZipWith(a, b Supplier, fn func(any, any) (any, error)) Supplier {
	return &zipSupplier{a: a, b: b, fn: fn}
}

func (s *zipSupplier) Get() (any, error) {
	s.once.Do(func() {
		av, aerr := s.a.Get()
		bv, berr := s.b.Get()
		if aerr != nil {
			s.err = aerr
			return
		}
		if berr != nil {
			s.err = berr
			return
		}
		s.value, s.err = s.fn(av, bv)
	})
	return s.value, s.err
}

func (s *zipSupplier) Upstream() []*Property {
	return append(upstreamOf(s.a), upstreamOf(s.b)...)
}
