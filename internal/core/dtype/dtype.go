// Package dtype provides the port type system for the node-graph runtime:
// semantic value descriptors with nullability, batching and kind-specific
// constraints, plus the acceptance protocol used to validate connections.
// Core domain package with zero external dependencies.
package dtype

// Kind identifies the concrete dtype variant.
type Kind string

const (
	// KindUntyped places no constraint on values; matching against another
	// dtype is a programming error and must be done by value instead.
	KindUntyped Kind = "untyped"
	// KindData is the generic data kind constrained only by valid classes.
	KindData Kind = "data"
	// KindInteger accepts the Go integer families.
	KindInteger Kind = "integer"
	// KindFloat accepts the Go float families.
	KindFloat Kind = "float"
	// KindBoolean accepts booleans.
	KindBoolean Kind = "boolean"
	// KindString accepts strings.
	KindString Kind = "string"
	// KindChoice accepts values drawn from a fixed item list.
	KindChoice Kind = "choice"
	// KindList accepts homogeneous collections of the valid classes.
	KindList Kind = "list"
)

// Bounds carries optional numeric range metadata for Integer and Float
// dtypes. It is round-tripped through serialization and exposed to hosts
// for widget configuration; value acceptance does not enforce it.
type Bounds struct {
	Lo float64 `json:"lo" msgpack:"lo"`
	Hi float64 `json:"hi" msgpack:"hi"`
}

// DType describes the semantic type and validity constraint of a data port.
// DTypes carry mutable state (Items, Default) and are therefore always cloned
// when a port is built from a blueprint; two instances of the same node class
// must never share a DType.
type DType struct {
	Kind         Kind
	Default      any
	AllowNone    bool
	Batched      bool
	ValidClasses []Class
	// Items is the allowed value list for Choice dtypes.
	Items []any
	// Bounds is optional range metadata for numeric dtypes.
	Bounds *Bounds
	Doc    string
}

// Untyped builds the no-constraint dtype used for unannotated data ports.
// Untyped always allows nil.
func Untyped() *DType {
	return &DType{Kind: KindUntyped, AllowNone: true}
}

// Data builds a generic data dtype constrained to the given classes.
func Data(classes ...Class) *DType {
	return &DType{Kind: KindData, ValidClasses: classes}
}

// Integer builds an integer dtype with default 0.
func Integer() *DType {
	return &DType{Kind: KindInteger, Default: 0, ValidClasses: []Class{Int}}
}

// FloatNum builds a float dtype with default 0.0.
func FloatNum() *DType {
	return &DType{Kind: KindFloat, Default: 0.0, ValidClasses: []Class{Float}}
}

// Boolean builds a boolean dtype with default false.
func Boolean() *DType {
	return &DType{Kind: KindBoolean, Default: false, ValidClasses: []Class{Bool}}
}

// Str builds a string dtype with default "".
func Str() *DType {
	return &DType{Kind: KindString, Default: "", ValidClasses: []Class{String}}
}

// Choice builds a dtype whose values must come from items.
func Choice(items ...any) *DType {
	return &DType{Kind: KindChoice, Items: items}
}

// List builds a dtype for homogeneous collections of the given element
// classes. With no classes, any slice or array is accepted.
func List(classes ...Class) *DType {
	return &DType{Kind: KindList, ValidClasses: classes}
}

// WithDefault sets the default value placed into unset inputs.
func (d *DType) WithDefault(v any) *DType {
	d.Default = v
	return d
}

// WithClasses replaces the valid-class set.
func (d *DType) WithClasses(classes ...Class) *DType {
	d.ValidClasses = classes
	return d
}

// WithBounds attaches numeric range metadata.
func (d *DType) WithBounds(lo, hi float64) *DType {
	d.Bounds = &Bounds{Lo: lo, Hi: hi}
	return d
}

// WithDoc attaches a documentation string.
func (d *DType) WithDoc(doc string) *DType {
	d.Doc = doc
	return d
}

// Nullable marks nil as an acceptable value.
func (d *DType) Nullable() *DType {
	d.AllowNone = true
	return d
}

// Batch marks the dtype as carrying a homogeneous collection of its base
// type instead of a single instance.
func (d *DType) Batch() *DType {
	d.Batched = true
	return d
}

// Clone returns a deep copy. Mutable fields (Items, ValidClasses, Bounds and
// collection-valued defaults) are independently owned by the copy; mutating
// one clone never affects another.
func (d *DType) Clone() *DType {
	if d == nil {
		return nil
	}
	c := *d
	if d.ValidClasses != nil {
		c.ValidClasses = make([]Class, len(d.ValidClasses))
		copy(c.ValidClasses, d.ValidClasses)
	}
	if d.Items != nil {
		c.Items = make([]any, len(d.Items))
		for i, it := range d.Items {
			c.Items[i] = deepCopyValue(it)
		}
	}
	if d.Bounds != nil {
		b := *d.Bounds
		c.Bounds = &b
	}
	c.Default = deepCopyValue(d.Default)
	return &c
}

// isDataFamily reports whether k is the generic Data kind or one of its
// concrete scalar refinements.
func isDataFamily(k Kind) bool {
	switch k {
	case KindData, KindInteger, KindFloat, KindBoolean, KindString:
		return true
	}
	return false
}

// kindsCompatible implements the Data-family kind relation: identical kinds
// match, and the generic Data kind matches any family member in either
// direction. Two different concrete kinds never match.
func kindsCompatible(a, b Kind) bool {
	if !isDataFamily(a) || !isDataFamily(b) {
		return false
	}
	return a == b || a == KindData || b == KindData
}

// deepCopyValue copies slice values one level down so cloned defaults and
// choice items cannot alias each other. Scalars are returned as-is.
func deepCopyValue(v any) any {
	switch s := v.(type) {
	case []any:
		out := make([]any, len(s))
		copy(out, s)
		return out
	case []int:
		out := make([]int, len(s))
		copy(out, s)
		return out
	case []float64:
		out := make([]float64, len(s))
		copy(out, s)
		return out
	case []string:
		out := make([]string, len(s))
		copy(out, s)
		return out
	case map[string]any:
		out := make(map[string]any, len(s))
		for k, val := range s {
			out[k] = val
		}
		return out
	default:
		return v
	}
}
