// Package slc3 reads and writes the "SLC3RPLY" replay container.
//
// # Layout
//
// All integers are little-endian:
//
//	["SLC3RPLY"(8)][MetaSize u32(4)][Metadata][AtomCount u32(4)][Atoms]
//
// The metadata block is 64 bytes: TPS f64, Seed u64, Build u32 and 44
// reserved zero bytes. Each atom is framed as:
//
//	[ID u32(4)][Size u64(8)][Payload]
//
// Atom 0 is a null atom and atom 1 holds the action records. Atoms of any
// other type are kept as RawAtom values and written back unchanged.
//
// # Action records
//
// The action atom payload is a u64 record count followed by the records.
// Each record starts with a header byte:
//
//	bits 0..2   action type (see ActionType)
//	bit 3       holding
//	bit 4       player 2
//	bits 5..6   delta width: 1, 2, 4 or 8 bytes
//
// then the frame delta from the previous record, then a u64 seed for the
// three reset types or an f64 rate for TPS records.
package slc3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// Magic opens every slc3 stream.
	Magic = "SLC3RPLY"

	// MetadataSize is the size of the metadata block.
	MetadataSize = 64

	// largest atom payload accepted when reading
	maxAtomSize = 1 << 30
)

var (
	ErrInvalidMagic = errors.New("invalid slc3 magic")
	ErrMetaSize     = errors.New("metadata size mismatch")
	ErrAtomTooLarge = errors.New("atom too large")
)

// Metadata is the fixed slc3 metadata block.
type Metadata struct {
	TPS   float64
	Seed  uint64
	Build uint32
}

// NewMetadata creates a Metadata block.
func NewMetadata(tps float64, seed uint64, build uint32) Metadata {
	return Metadata{TPS: tps, Seed: seed, Build: build}
}

func (m Metadata) appendTo(buf []byte) []byte {
	var block [MetadataSize]byte
	binary.LittleEndian.PutUint64(block[0:], math.Float64bits(m.TPS))
	binary.LittleEndian.PutUint64(block[8:], m.Seed)
	binary.LittleEndian.PutUint32(block[16:], m.Build)
	return append(buf, block[:]...)
}

func decodeMetadata(block []byte) Metadata {
	return Metadata{
		TPS:   math.Float64frombits(binary.LittleEndian.Uint64(block[0:])),
		Seed:  binary.LittleEndian.Uint64(block[8:]),
		Build: binary.LittleEndian.Uint32(block[16:]),
	}
}

// Replay is an slc3 container.
type Replay struct {
	Metadata Metadata
	Atoms    []Atom
}

// New creates a container with no atoms.
func New(meta Metadata) *Replay {
	return &Replay{Metadata: meta}
}

// AddAtom appends an atom.
func (r *Replay) AddAtom(atom Atom) {
	r.Atoms = append(r.Atoms, atom)
}

// ActionAtom returns the first action atom, if any.
func (r *Replay) ActionAtom() (*ActionAtom, bool) {
	for _, atom := range r.Atoms {
		if a, ok := atom.(*ActionAtom); ok {
			return a, true
		}
	}
	return nil, false
}

// Read decodes an slc3 stream.
func Read(r io.Reader) (*Replay, error) {
	var head [12]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if string(head[:8]) != Magic {
		return nil, ErrInvalidMagic
	}
	if size := binary.LittleEndian.Uint32(head[8:]); size != MetadataSize {
		return nil, fmt.Errorf("%w: %d != %d", ErrMetaSize, size, MetadataSize)
	}

	var block [MetadataSize + 4]byte
	if _, err := io.ReadFull(r, block[:]); err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	replay := New(decodeMetadata(block[:MetadataSize]))
	count := binary.LittleEndian.Uint32(block[MetadataSize:])

	var frame [12]byte
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, frame[:]); err != nil {
			return nil, fmt.Errorf("failed to read atom %d: %w", i, err)
		}
		id := AtomID(binary.LittleEndian.Uint32(frame[0:]))
		size := binary.LittleEndian.Uint64(frame[4:])
		if size > maxAtomSize {
			return nil, fmt.Errorf("atom %d: %w: %d bytes", i, ErrAtomTooLarge, size)
		}

		// the claimed size is untrusted; buffer only what actually arrives
		var payload bytes.Buffer
		n, err := io.CopyN(&payload, r, int64(size))
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("failed to read atom %d payload (%d of %d bytes): %w", i, n, size, err)
		}
		atom, err := decodeAtom(id, payload.Bytes())
		if err != nil {
			return nil, fmt.Errorf("failed to decode atom %d: %w", i, err)
		}
		replay.AddAtom(atom)
	}

	return replay, nil
}

// Write encodes the container.
func (r *Replay) Write(w io.Writer) error {
	buf := make([]byte, 0, 12+MetadataSize+4)
	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint32(buf, MetadataSize)
	buf = r.Metadata.appendTo(buf)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(r.Atoms)))

	for i, atom := range r.Atoms {
		payload, err := atom.MarshalBinary()
		if err != nil {
			return fmt.Errorf("failed to encode atom %d: %w", i, err)
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(atom.ID()))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(payload)))
		buf = append(buf, payload...)
	}

	_, err := w.Write(buf)
	return err
}
