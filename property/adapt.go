package property

import (
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// adapt coerces a raw Go value into a cty.Value matching t, trying each
// built-in adapter for t.kind. name is only used to build a readable
// TypeMismatchError and carries no semantic weight.
func adapt(name string, t Type, raw any) (cty.Value, error) {
	switch t.kind {
	case kindUnion:
		return adaptUnion(name, t, raw)
	case kindBool:
		return adaptBool(name, t, raw)
	case kindNumber:
		return adaptNumber(name, t, raw)
	case kindString:
		return adaptString(name, t, raw)
	case kindNone:
		return adaptNone(name, t, raw)
	case kindPath:
		return adaptPath(name, t, raw)
	case kindSequence:
		return adaptSequence(name, t, raw)
	case kindSet:
		return adaptSet(name, t, raw)
	case kindMapping:
		return adaptMapping(name, t, raw)
	default:
		return cty.NilVal, &TypeMismatchError{Property: name, Declared: t, Value: raw}
	}
}

// adaptUnion tries each alternative in declaration order and keeps the
// first one that succeeds. This ordering is load-bearing: given
// Union(Number(), String()) the raw value "3" adapts as a String even
// though it also looks numeric, because String was declared second and
// Number, tried first, already rejects a Go string.
func adaptUnion(name string, t Type, raw any) (cty.Value, error) {
	for _, alt := range t.union {
		if v, err := adapt(name, alt, raw); err == nil {
			return v, nil
		}
	}
	return cty.NilVal, &TypeMismatchError{Property: name, Declared: t, Value: raw}
}

func mismatch(name string, t Type, raw any) error {
	return &TypeMismatchError{Property: name, Declared: t, Value: raw}
}

func adaptBool(name string, t Type, raw any) (cty.Value, error) {
	switch v := raw.(type) {
	case bool:
		return cty.BoolVal(v), nil
	case cty.Value:
		return convertCty(name, t, v)
	default:
		return cty.NilVal, mismatch(name, t, raw)
	}
}

func adaptNumber(name string, t Type, raw any) (cty.Value, error) {
	switch v := raw.(type) {
	case int:
		return cty.NumberIntVal(int64(v)), nil
	case int32:
		return cty.NumberIntVal(int64(v)), nil
	case int64:
		return cty.NumberIntVal(v), nil
	case uint:
		return cty.NumberUIntVal(uint64(v)), nil
	case uint64:
		return cty.NumberUIntVal(v), nil
	case float32:
		return cty.NumberFloatVal(float64(v)), nil
	case float64:
		return cty.NumberFloatVal(v), nil
	case cty.Value:
		return convertCty(name, t, v)
	default:
		return cty.NilVal, mismatch(name, t, raw)
	}
}

func adaptString(name string, t Type, raw any) (cty.Value, error) {
	switch v := raw.(type) {
	case string:
		return cty.StringVal(v), nil
	case cty.Value:
		return convertCty(name, t, v)
	default:
		return cty.NilVal, mismatch(name, t, raw)
	}
}

func adaptNone(name string, t Type, raw any) (cty.Value, error) {
	if raw == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	return cty.NilVal, mismatch(name, t, raw)
}

func adaptPath(name string, t Type, raw any) (cty.Value, error) {
	switch v := raw.(type) {
	case PathValue:
		return cty.StringVal(string(v)), nil
	case string:
		return cty.StringVal(v), nil
	case cty.Value:
		return convertCty(name, t, v)
	default:
		return cty.NilVal, mismatch(name, t, raw)
	}
}

// asSlice normalizes raw into a []any if it is any slice or array kind
// (including already-homogeneous Go slices like []string), so callers
// need not declare sequences and sets as []any literals.
func asSlice(raw any) ([]any, bool) {
	if s, ok := raw.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(raw)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func adaptSequence(name string, t Type, raw any) (cty.Value, error) {
	elems, ok := asSlice(raw)
	if !ok {
		return cty.NilVal, mismatch(name, t, raw)
	}
	if len(elems) == 0 {
		return cty.ListValEmpty(t.elem.ctyElemType()), nil
	}
	vals := make([]cty.Value, len(elems))
	for i, e := range elems {
		v, err := adapt(name, *t.elem, e)
		if err != nil {
			return cty.NilVal, mismatch(name, t, raw)
		}
		vals[i] = v
	}
	return cty.ListVal(vals), nil
}

func adaptSet(name string, t Type, raw any) (cty.Value, error) {
	elems, ok := asSlice(raw)
	if !ok {
		return cty.NilVal, mismatch(name, t, raw)
	}
	if len(elems) == 0 {
		return cty.SetValEmpty(t.elem.ctyElemType()), nil
	}
	vals := make([]cty.Value, len(elems))
	for i, e := range elems {
		v, err := adapt(name, *t.elem, e)
		if err != nil {
			return cty.NilVal, mismatch(name, t, raw)
		}
		vals[i] = v
	}
	return cty.SetVal(vals), nil
}

func adaptMapping(name string, t Type, raw any) (cty.Value, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		rv := reflect.ValueOf(raw)
		if rv.IsValid() && rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
			m = make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[iter.Key().String()] = iter.Value().Interface()
			}
		} else {
			return cty.NilVal, mismatch(name, t, raw)
		}
	}
	if len(m) == 0 {
		return cty.MapValEmpty(t.elem.ctyElemType()), nil
	}
	vals := make(map[string]cty.Value, len(m))
	for k, e := range m {
		v, err := adapt(name, *t.elem, e)
		if err != nil {
			return cty.NilVal, mismatch(name, t, raw)
		}
		vals[k] = v
	}
	return cty.MapVal(vals), nil
}

func convertCty(name string, t Type, v cty.Value) (cty.Value, error) {
	out, err := convert.Convert(v, t.ctyElemType())
	if err != nil {
		return cty.NilVal, mismatch(name, t, v)
	}
	return out, nil
}
