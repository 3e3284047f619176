package property

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// kind distinguishes the handful of shapes a Type can take. Sequence, Set
// and Mapping all carry an element Type; Union carries a non-empty,
// ordered list of alternatives.
type kind int

const (
	kindBool kind = iota
	kindNumber
	kindString
	kindNone
	kindPath
	kindSequence
	kindSet
	kindMapping
	kindUnion
)

// Type describes the shape a Property's value must take. Values are never
// compared by Go's == on Type: use Type.Equal.
type Type struct {
	kind  kind
	elem  *Type
	union []Type
}

// Bool is the ground type for Go bool values.
func Bool() Type { return Type{kind: kindBool} }

// Number is the ground type for Go integer and floating point values.
func Number() Type { return Type{kind: kindNumber} }

// String is the ground type for Go string values.
func String() Type { return Type{kind: kindString} }

// None is satisfied only by a nil value. It exists so a property can
// declare "present but intentionally empty" as a first-class type rather
// than overloading a zero value of some other type.
func None() Type { return Type{kind: kindNone} }

// Path is the ground type for filesystem paths. Its values adapt from
// plain strings and from PathValue.
func Path() Type { return Type{kind: kindPath} }

// SequenceOf declares a homogeneous, ordered sequence of elem.
func SequenceOf(elem Type) Type { return Type{kind: kindSequence, elem: &elem} }

// SetOf declares a homogeneous, unordered, deduplicated collection of elem.
func SetOf(elem Type) Type { return Type{kind: kindSet, elem: &elem} }

// MappingOf declares a string-keyed mapping whose values are elem.
func MappingOf(elem Type) Type { return Type{kind: kindMapping, elem: &elem} }

// Union declares a type satisfied by any of alts, tried in the given
// order. Resolution is first-success-wins: when two alternatives could
// both adapt a given raw value, the earlier one in alts is the one that
// is actually stored, and that choice is externally observable (it
// affects which Go type Property.Get later returns, e.g. string or
// PathValue).
func Union(alts ...Type) Type {
	if len(alts) == 0 {
		panic("property: Union requires at least one alternative")
	}
	return Type{kind: kindUnion, union: append([]Type(nil), alts...)}
}

// PathValue is the Go representation of a Path-typed property value.
type PathValue string

func (t Type) String() string {
	switch t.kind {
	case kindBool:
		return "bool"
	case kindNumber:
		return "number"
	case kindString:
		return "string"
	case kindNone:
		return "none"
	case kindPath:
		return "path"
	case kindSequence:
		return fmt.Sprintf("sequence<%s>", t.elem.String())
	case kindSet:
		return fmt.Sprintf("set<%s>", t.elem.String())
	case kindMapping:
		return fmt.Sprintf("mapping<%s>", t.elem.String())
	case kindUnion:
		parts := make([]string, len(t.union))
		for i, alt := range t.union {
			parts[i] = alt.String()
		}
		return fmt.Sprintf("union<%s>", strings.Join(parts, ", "))
	default:
		return "unknown"
	}
}

// Equal reports whether t and other describe the same declared shape.
func (t Type) Equal(other Type) bool {
	if t.kind != other.kind {
		return false
	}
	switch t.kind {
	case kindSequence, kindSet, kindMapping:
		return t.elem.Equal(*other.elem)
	case kindUnion:
		if len(t.union) != len(other.union) {
			return false
		}
		for i := range t.union {
			if !t.union[i].Equal(other.union[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// ctyElemType returns the cty.Type that values of this shape are stored
// as, for the non-union ground types. Union has no single cty.Type since
// its resolved value depends on which alternative matched.
func (t Type) ctyElemType() cty.Type {
	switch t.kind {
	case kindBool:
		return cty.Bool
	case kindNumber:
		return cty.Number
	case kindString:
		return cty.String
	case kindNone:
		return cty.NilType
	case kindPath:
		return cty.String
	default:
		return cty.NilType
	}
}
