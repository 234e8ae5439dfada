package dtype

// State is the serializable form of a DType. It is embedded as an opaque
// blob in port documents and must round-trip every mutable field, so that a
// loaded session restores exactly the dtype state it was saved with (items
// added at runtime included).
type State struct {
	Kind         string   `json:"kind" msgpack:"kind" validate:"required"`
	Default      any      `json:"default,omitempty" msgpack:"default,omitempty"`
	AllowNone    bool     `json:"allow_none" msgpack:"allow_none"`
	Batched      bool     `json:"batched" msgpack:"batched"`
	ValidClasses []string `json:"valid_classes,omitempty" msgpack:"valid_classes,omitempty"`
	Items        []any    `json:"items,omitempty" msgpack:"items,omitempty"`
	Bounds       *Bounds  `json:"bounds,omitempty" msgpack:"bounds,omitempty"`
	Doc          string   `json:"doc,omitempty" msgpack:"doc,omitempty"`
}

// GetState captures the dtype into its serializable form.
func (d *DType) GetState() State {
	s := State{
		Kind:      string(d.Kind),
		Default:   d.Default,
		AllowNone: d.AllowNone,
		Batched:   d.Batched,
		Doc:       d.Doc,
	}
	for _, c := range d.ValidClasses {
		s.ValidClasses = append(s.ValidClasses, c.Name())
	}
	if d.Items != nil {
		s.Items = append([]any{}, d.Items...)
	}
	if d.Bounds != nil {
		b := *d.Bounds
		s.Bounds = &b
	}
	return s
}

// FromState rebuilds a dtype from serialized state. Class names must resolve
// against the built-in classes or classes registered via ClassOf before
// loading.
func FromState(s State) (*DType, error) {
	d := &DType{
		Kind:      Kind(s.Kind),
		Default:   s.Default,
		AllowNone: s.AllowNone,
		Batched:   s.Batched,
		Doc:       s.Doc,
	}
	switch d.Kind {
	case KindUntyped, KindData, KindInteger, KindFloat, KindBoolean, KindString, KindChoice, KindList:
	default:
		return nil, ErrUnknownKind
	}
	for _, name := range s.ValidClasses {
		c, err := ClassByName(name)
		if err != nil {
			return nil, err
		}
		d.ValidClasses = append(d.ValidClasses, c)
	}
	if s.Items != nil {
		d.Items = append([]any{}, s.Items...)
	}
	if s.Bounds != nil {
		b := *s.Bounds
		d.Bounds = &b
	}
	return d, nil
}
