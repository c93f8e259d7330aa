// Package slc2 reads and writes the "SILL" replay container.
//
// # Layout
//
// All integers are little-endian:
//
//	["SILL"(4)][TPS f64(8)][MetaSize u64(8)][Meta][Count u64(8)][Inputs][EOM(3)]
//
// The metadata block is opaque to this package; its size and contents are
// owned by the caller's Meta implementation. Each input is a u64 state word:
//
//	bit 0       hold
//	bits 1..3   kind (see InputKind)
//	bit 4       player 2
//	bits 5..63  frame delta from the previous input
//
// A TPS input is followed by the new rate as an f64.
package slc2

import (
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// Magic opens every slc2 stream.
	Magic = "SILL"
	// Footer closes every slc2 stream.
	Footer = "EOM"

	maxDelta = 1<<59 - 1

	// initial capacity cap so a corrupt count cannot force a huge allocation
	maxPrealloc = 1 << 16
)

var (
	ErrInvalidMagic  = errors.New("invalid slc2 magic")
	ErrInvalidFooter = errors.New("invalid slc2 footer")
	ErrMetaSize      = errors.New("metadata size mismatch")
)

// Meta is a fixed-size metadata block.
type Meta interface {
	Size() int
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// InputKind is the 3-bit kind field of an input.
type InputKind uint8

const (
	Skip InputKind = iota
	Jump
	Left
	Right
	Restart
	RestartFull
	Death
	TPS
)

func (k InputKind) String() string {
	switch k {
	case Skip:
		return "skip"
	case Jump:
		return "jump"
	case Left:
		return "left"
	case Right:
		return "right"
	case Restart:
		return "restart"
	case RestartFull:
		return "restart_full"
	case Death:
		return "death"
	case TPS:
		return "tps"
	}
	return fmt.Sprintf("InputKind(%d)", uint8(k))
}

// IsPlayer reports whether the kind is a button input.
func (k InputKind) IsPlayer() bool {
	return k == Jump || k == Left || k == Right
}

// Input is one decoded input with its absolute frame.
type Input struct {
	Frame   uint64
	Kind    InputKind
	Hold    bool
	Player2 bool
	TPS     float64
}

// Button returns the 2-bit button code of a player input (1 jump, 2 left,
// 3 right).
func (in Input) Button() uint8 {
	return uint8(in.Kind)
}

// Replay is a decoded slc2 container.
type Replay struct {
	TPS    float64
	Meta   Meta
	Inputs []Input
}

// Read decodes an slc2 stream, unmarshalling the metadata block into meta.
func Read(r io.Reader, meta Meta) (*Replay, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if string(magic[:]) != Magic {
		return nil, ErrInvalidMagic
	}

	var head [16]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	tps := math.Float64frombits(binary.LittleEndian.Uint64(head[0:8]))
	metaSize := binary.LittleEndian.Uint64(head[8:16])
	if metaSize != uint64(meta.Size()) {
		return nil, fmt.Errorf("%w: %d != %d", ErrMetaSize, metaSize, meta.Size())
	}

	block := make([]byte, metaSize)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	if err := meta.UnmarshalBinary(block); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	var word [8]byte
	if _, err := io.ReadFull(r, word[:]); err != nil {
		return nil, fmt.Errorf("failed to read input count: %w", err)
	}
	count := binary.LittleEndian.Uint64(word[:])

	inputs := make([]Input, 0, min(count, maxPrealloc))
	var frame uint64
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(r, word[:]); err != nil {
			return nil, fmt.Errorf("failed to read input %d: %w", i, err)
		}
		state := binary.LittleEndian.Uint64(word[:])

		frame += state >> 5
		in := Input{
			Frame:   frame,
			Kind:    InputKind((state >> 1) & 0b111),
			Hold:    state&1 != 0,
			Player2: state&(1<<4) != 0,
		}
		if in.Kind == TPS {
			if _, err := io.ReadFull(r, word[:]); err != nil {
				return nil, fmt.Errorf("failed to read tps of input %d: %w", i, err)
			}
			in.TPS = math.Float64frombits(binary.LittleEndian.Uint64(word[:]))
		}
		inputs = append(inputs, in)
	}

	var footer [3]byte
	if _, err := io.ReadFull(r, footer[:]); err != nil {
		return nil, fmt.Errorf("failed to read footer: %w", err)
	}
	if string(footer[:]) != Footer {
		return nil, ErrInvalidFooter
	}

	return &Replay{TPS: tps, Meta: meta, Inputs: inputs}, nil
}

// Write encodes the replay. Input frames must be non-decreasing.
func (rp *Replay) Write(w io.Writer) error {
	block, err := rp.Meta.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if len(block) != rp.Meta.Size() {
		return fmt.Errorf("%w: %d != %d", ErrMetaSize, len(block), rp.Meta.Size())
	}

	buf := make([]byte, 0, 4+16+len(block)+8+len(rp.Inputs)*8+len(Footer))
	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(rp.TPS))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(block)))
	buf = append(buf, block...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(rp.Inputs)))

	var prev uint64
	for i, in := range rp.Inputs {
		if in.Frame < prev {
			return fmt.Errorf("input %d: frame %d precedes frame %d", i, in.Frame, prev)
		}
		delta := in.Frame - prev
		if delta > maxDelta {
			return fmt.Errorf("input %d: frame delta %d too large", i, delta)
		}
		if in.Kind > TPS {
			return fmt.Errorf("input %d: invalid kind %d", i, in.Kind)
		}
		prev = in.Frame

		state := delta<<5 | uint64(in.Kind)<<1
		if in.Hold {
			state |= 1
		}
		if in.Player2 {
			state |= 1 << 4
		}
		buf = binary.LittleEndian.AppendUint64(buf, state)
		if in.Kind == TPS {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(in.TPS))
		}
	}
	buf = append(buf, Footer...)

	_, err = w.Write(buf)
	return err
}
