package silicate

import (
	"encoding/binary"
	"fmt"

	"github.com/ssargent/siliconv/pkg/replay"
)

const (
	// DefaultTPS is used when source metadata carries no rate.
	DefaultTPS = 240.0

	// DefaultSeed stands in for seeds a source format did not record.
	DefaultSeed uint64 = 2137

	slc2MetaSize = 64
)

// Meta is the metadata shared by every Silicate revision.
type Meta struct {
	TPS  float64
	Seed uint64
}

// Fields implements replay.Meta.
func (m Meta) Fields() []replay.Field {
	return []replay.Field{
		{Name: "tps", Value: m.TPS, Default: DefaultTPS},
		{Name: "seed", Value: m.Seed, Default: uint64(0)},
	}
}

// MetaFromFields rebuilds a Meta from any format's fields, applying defaults
// for missing ones.
func MetaFromFields(fields []replay.Field) Meta {
	return Meta{
		TPS:  replay.FieldValue(fields, "tps", DefaultTPS),
		Seed: replay.FieldValue(fields, "seed", uint64(0)),
	}
}

// Slc2Meta is the 64-byte slc2 metadata block: the seed followed by 56
// reserved bytes that are kept but never interpreted.
type Slc2Meta struct {
	Seed     uint64
	Reserved [56]byte
}

// Size implements slc2.Meta.
func (m *Slc2Meta) Size() int {
	return slc2MetaSize
}

// MarshalBinary implements slc2.Meta.
func (m *Slc2Meta) MarshalBinary() ([]byte, error) {
	buf := make([]byte, slc2MetaSize)
	binary.LittleEndian.PutUint64(buf[0:8], m.Seed)
	copy(buf[8:], m.Reserved[:])
	return buf, nil
}

// UnmarshalBinary implements slc2.Meta.
func (m *Slc2Meta) UnmarshalBinary(data []byte) error {
	if len(data) != slc2MetaSize {
		return fmt.Errorf("slc2 metadata must be %d bytes, got %d", slc2MetaSize, len(data))
	}
	m.Seed = binary.LittleEndian.Uint64(data[0:8])
	copy(m.Reserved[:], data[8:])
	return nil
}
