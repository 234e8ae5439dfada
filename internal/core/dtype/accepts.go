package dtype

import (
	"reflect"
)

// AcceptsValue reports whether a concrete value satisfies the dtype. nil is
// accepted iff AllowNone; batched dtypes require an iterable whose every
// element independently passes the unbatched check, with the empty
// collection passing trivially.
func (d *DType) AcceptsValue(v any) bool {
	if d.Batched {
		return d.batchAcceptsValue(v)
	}
	if v == nil {
		return d.AllowNone
	}
	return d.acceptsNonNil(v)
}

// AcceptsDType reports whether an output of dtype other may legally feed an
// input of dtype d. Untyped on either side is a misuse of the API: Untyped
// matches must always be made by value, never by dtype.
func (d *DType) AcceptsDType(other *DType) (bool, error) {
	if d.Kind == KindUntyped || other.Kind == KindUntyped {
		return false, ErrUntypedMatch
	}
	switch d.Kind {
	case KindData, KindInteger, KindFloat, KindBoolean, KindString:
		return d.dataAcceptsDType(other), nil
	case KindChoice:
		return d.choiceAcceptsDType(other), nil
	case KindList:
		return d.listAcceptsDType(other), nil
	default:
		return false, ErrUnknownKind
	}
}

// dataAcceptsDType: same or generically related kind with matching batch
// flags and a valid-class subset; a batched data input additionally accepts
// an unbatched List producer whose element classes are a subset (the
// list-to-batch widening).
func (d *DType) dataAcceptsDType(other *DType) bool {
	if kindsCompatible(d.Kind, other.Kind) && other.Batched == d.Batched {
		return classesSubset(other.ValidClasses, d.ValidClasses) && !d.surpriseNone(other)
	}
	if d.Batched && other.Kind == KindList && !other.Batched {
		return classesSubset(other.ValidClasses, d.ValidClasses)
	}
	return false
}

// choiceAcceptsDType: an unbatched choice accepts any unbatched data-family
// producer whose classes are a subset; a batched choice accepts an unbatched
// List or a batched data-family producer. The connection may still yield an
// invalid value state when the produced value is not in Items; that is
// caught by value validation at update time.
func (d *DType) choiceAcceptsDType(other *DType) bool {
	if d.Batched {
		kindOK := (other.Kind == KindList && !other.Batched) ||
			(isDataFamily(other.Kind) && other.Batched)
		return kindOK && classesSubset(other.ValidClasses, d.ValidClasses) && !d.surpriseNone(other)
	}
	return isDataFamily(other.Kind) && !other.Batched &&
		classesSubset(other.ValidClasses, d.ValidClasses) && !d.surpriseNone(other)
}

// listAcceptsDType: a batched list only accepts another batched list; an
// unbatched list accepts another list or a batched data-family producer.
func (d *DType) listAcceptsDType(other *DType) bool {
	if d.Batched {
		return other.Kind == KindList && other.Batched &&
			classesSubset(other.ValidClasses, d.ValidClasses)
	}
	if other.Kind == KindList || (isDataFamily(other.Kind) && other.Batched) {
		return classesSubset(other.ValidClasses, d.ValidClasses)
	}
	return false
}

// surpriseNone: the producer may emit nil but this dtype cannot hold it.
func (d *DType) surpriseNone(other *DType) bool {
	return other.AllowNone && !d.AllowNone
}

func (d *DType) acceptsNonNil(v any) bool {
	switch d.Kind {
	case KindUntyped:
		return true
	case KindData, KindInteger, KindFloat, KindBoolean, KindString:
		return d.instanceOfValidClasses(v)
	case KindChoice:
		return d.inItems(v)
	case KindList:
		elems, ok := elements(v)
		if !ok {
			return false
		}
		for _, e := range elems {
			if e == nil || !d.instanceOfValidClasses(e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (d *DType) batchAcceptsValue(v any) bool {
	elems, ok := elements(v)
	if !ok {
		return false
	}
	switch d.Kind {
	case KindUntyped:
		return true
	case KindData, KindInteger, KindFloat, KindBoolean, KindString:
		for _, e := range elems {
			if e == nil {
				if !d.AllowNone {
					return false
				}
				continue
			}
			if !d.instanceOfValidClasses(e) {
				return false
			}
		}
		return true
	case KindChoice:
		for _, e := range elems {
			if !d.inItems(e) {
				return false
			}
		}
		return true
	case KindList:
		for _, e := range elems {
			if e == nil {
				if !d.AllowNone {
					return false
				}
				continue
			}
			if !d.acceptsNonNil(e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// An empty valid-class set means unconstrained.
func (d *DType) instanceOfValidClasses(v any) bool {
	if len(d.ValidClasses) == 0 {
		return true
	}
	for _, c := range d.ValidClasses {
		if c.Instance(v) {
			return true
		}
	}
	return false
}

func (d *DType) inItems(v any) bool {
	for _, it := range d.Items {
		if reflect.DeepEqual(v, it) {
			return true
		}
	}
	return false
}

// elements flattens a slice or array value into []any. Non-iterable values
// report false.
func elements(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			e := rv.Index(i)
			if e.Kind() == reflect.Interface || e.Kind() == reflect.Ptr {
				if e.IsNil() {
					out[i] = nil
					continue
				}
			}
			out[i] = e.Interface()
		}
		return out, true
	default:
		return nil, false
	}
}
