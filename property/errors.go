package property

import "fmt"

// TypeMismatchError is returned when a raw value cannot be adapted to a
// property's declared Type.
type TypeMismatchError struct {
	Property string
	Declared Type
	Value    any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("property %q: value %#v does not adapt to declared type %s", e.Property, e.Value, e.Declared)
}

// UnsetError is returned when Property.Get is called on a property that
// has never been given a value.
type UnsetError struct {
	Property string
}

func (e *UnsetError) Error() string {
	return fmt.Sprintf("property %q: no value has been set", e.Property)
}

// NotHydratedError is returned when Property.Get is called on a Derived
// property whose supplier chain bottoms out in an Output property that
// the owning task has not yet executed.
type NotHydratedError struct {
	Property string
	Upstream string
}

func (e *NotHydratedError) Error() string {
	return fmt.Sprintf("property %q: upstream property %q has not been produced yet (its task has not run)", e.Property, e.Upstream)
}

// FrozenError is returned when a property is written to after its owning
// context has been finalized, outside of the one window (the owning
// task's own Execute call) in which an Output property may still be set.
type FrozenError struct {
	Property string
}

func (e *FrozenError) Error() string {
	return fmt.Sprintf("property %q: cannot be set, its context has been finalized", e.Property)
}
