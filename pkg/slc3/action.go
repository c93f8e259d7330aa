package slc3

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ActionType is the 3-bit type field of an action record.
type ActionType uint8

const (
	Jump ActionType = iota
	Left
	Right
	Restart
	RestartFull
	Death
	TPS
	Reserved
)

func (t ActionType) String() string {
	switch t {
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
	case Reserved:
		return "reserved"
	}
	return fmt.Sprintf("ActionType(%d)", uint8(t))
}

// IsPlayer reports whether the type is a button input.
func (t ActionType) IsPlayer() bool {
	return t <= Right
}

// IsDeath reports whether the type is one of the level reset types, which
// carry a seed.
func (t ActionType) IsDeath() bool {
	return t == Restart || t == RestartFull || t == Death
}

// Action is one record of the action atom. Frame is absolute; only Delta is
// stored on the wire.
type Action struct {
	Frame   uint64
	Delta   uint64
	Type    ActionType
	Holding bool
	Player2 bool
	Seed    uint64
	TPS     float64
}

// PlayerAction creates a button record delta frames after frame.
func PlayerAction(frame, delta uint64, t ActionType, holding, player2 bool) Action {
	return Action{Frame: frame + delta, Delta: delta, Type: t, Holding: holding, Player2: player2}
}

// DeathAction creates a level reset record delta frames after frame.
func DeathAction(frame, delta uint64, t ActionType, seed uint64) Action {
	return Action{Frame: frame + delta, Delta: delta, Type: t, Seed: seed}
}

// TPSAction creates a rate change record delta frames after frame.
func TPSAction(frame, delta uint64, tps float64) Action {
	return Action{Frame: frame + delta, Delta: delta, Type: TPS, TPS: tps}
}

// header byte layout
const (
	typeMask    = 0b0000_0111
	holdingBit  = 1 << 3
	player2Bit  = 1 << 4
	widthShift  = 5
	widthMask   = 0b11
	payloadSize = 8
)

// deltaWidth returns the width class (0..3) and byte count needed for delta.
func deltaWidth(delta uint64) (uint8, int) {
	switch {
	case delta <= math.MaxUint8:
		return 0, 1
	case delta <= math.MaxUint16:
		return 1, 2
	case delta <= math.MaxUint32:
		return 2, 4
	}
	return 3, 8
}

func (a Action) appendTo(buf []byte) []byte {
	class, width := deltaWidth(a.Delta)

	header := byte(a.Type&typeMask) | class<<widthShift
	if a.Holding {
		header |= holdingBit
	}
	if a.Player2 {
		header |= player2Bit
	}
	buf = append(buf, header)

	var delta [8]byte
	binary.LittleEndian.PutUint64(delta[:], a.Delta)
	buf = append(buf, delta[:width]...)

	switch {
	case a.Type.IsDeath():
		buf = binary.LittleEndian.AppendUint64(buf, a.Seed)
	case a.Type == TPS:
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(a.TPS))
	}
	return buf
}

// ActionAtom holds the ordered, delta-encoded action records.
type ActionAtom struct {
	Actions []Action
}

// NewActionAtom creates an empty action atom.
func NewActionAtom() *ActionAtom {
	return &ActionAtom{}
}

// ID implements Atom.
func (a *ActionAtom) ID() AtomID {
	return AtomAction
}

// MarshalBinary implements Atom.
func (a *ActionAtom) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 8+len(a.Actions)*2)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(a.Actions)))
	for i, action := range a.Actions {
		if action.Type > Reserved {
			return nil, fmt.Errorf("action %d: invalid type %d", i, action.Type)
		}
		buf = action.appendTo(buf)
	}
	return buf, nil
}

// UnmarshalBinary decodes the atom payload, rebuilding absolute frames by
// summing deltas from frame 0.
func (a *ActionAtom) UnmarshalBinary(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("action atom too short: %d bytes", len(data))
	}
	count := binary.LittleEndian.Uint64(data)
	data = data[8:]

	// every record is at least two bytes
	if count > uint64(len(data))/2 {
		return fmt.Errorf("action count %d exceeds payload of %d bytes", count, len(data))
	}

	actions := make([]Action, 0, count)
	var frame uint64
	for i := uint64(0); i < count; i++ {
		if len(data) < 1 {
			return fmt.Errorf("action %d: missing header", i)
		}
		header := data[0]
		width := 1 << ((header >> widthShift) & widthMask)
		data = data[1:]

		if len(data) < width {
			return fmt.Errorf("action %d: truncated delta", i)
		}
		var raw [8]byte
		copy(raw[:], data[:width])
		data = data[width:]

		delta := binary.LittleEndian.Uint64(raw[:])
		frame += delta
		action := Action{
			Frame:   frame,
			Delta:   delta,
			Type:    ActionType(header & typeMask),
			Holding: header&holdingBit != 0,
			Player2: header&player2Bit != 0,
		}

		if action.Type.IsDeath() || action.Type == TPS {
			if len(data) < payloadSize {
				return fmt.Errorf("action %d: truncated payload", i)
			}
			value := binary.LittleEndian.Uint64(data)
			data = data[payloadSize:]
			if action.Type == TPS {
				action.TPS = math.Float64frombits(value)
			} else {
				action.Seed = value
			}
		}
		actions = append(actions, action)
	}

	if len(data) != 0 {
		return fmt.Errorf("action atom has %d trailing bytes", len(data))
	}

	a.Actions = actions
	return nil
}
