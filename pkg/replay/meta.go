package replay

// Field is one named metadata value together with the default its owning
// type uses when the field is absent.
type Field struct {
	Name    string
	Value   any
	Default any
}

// Meta is implemented by every format's metadata type. It lets a writer for
// one format rebuild its own metadata from any other format's fields without
// knowing the concrete source type.
type Meta interface {
	Fields() []Field
}

// FieldValue returns the value of the named field as T. A missing field, or a
// field holding another type, yields def.
func FieldValue[T any](fields []Field, name string, def T) T {
	for _, f := range fields {
		if f.Name != name {
			continue
		}
		if v, ok := f.Value.(T); ok {
			return v
		}
		return def
	}
	return def
}

// Fields is a Meta backed by a plain field list.
type Fields []Field

// Fields implements Meta.
func (f Fields) Fields() []Field {
	return f
}
