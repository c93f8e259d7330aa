package slc3

// AtomID identifies an atom type.
type AtomID uint32

const (
	AtomNull   AtomID = 0
	AtomAction AtomID = 1
)

// Atom is a typed chunk of an slc3 container.
type Atom interface {
	ID() AtomID
	MarshalBinary() ([]byte, error)
}

// NullAtom is an empty placeholder atom.
type NullAtom struct{}

// ID implements Atom.
func (NullAtom) ID() AtomID { return AtomNull }

// MarshalBinary implements Atom.
func (NullAtom) MarshalBinary() ([]byte, error) { return nil, nil }

// RawAtom keeps an atom of a type this package does not interpret, so it can
// be written back untouched.
type RawAtom struct {
	Kind AtomID
	Data []byte
}

// ID implements Atom.
func (a *RawAtom) ID() AtomID { return a.Kind }

// MarshalBinary implements Atom.
func (a *RawAtom) MarshalBinary() ([]byte, error) { return a.Data, nil }

func decodeAtom(id AtomID, payload []byte) (Atom, error) {
	switch id {
	case AtomNull:
		return NullAtom{}, nil
	case AtomAction:
		atom := NewActionAtom()
		if err := atom.UnmarshalBinary(payload); err != nil {
			return nil, err
		}
		return atom, nil
	}
	return &RawAtom{Kind: id, Data: payload}, nil
}
