package slc3

import (
	"bytes"
	"encoding/binary"
	"io"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, r *Replay) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))
	return buf.Bytes()
}

func TestReplay_RoundTrip(t *testing.T) {
	atom := NewActionAtom()
	atom.Actions = []Action{
		PlayerAction(0, 10, Jump, true, false),
		PlayerAction(10, 0, Jump, false, false),
		DeathAction(10, 300, Death, 99),
		TPSAction(310, 70000, 120),
		PlayerAction(70310, 1<<33, Right, true, true),
		{Frame: 70310 + 1<<33, Type: Reserved},
	}

	original := New(NewMetadata(240, 1234, 7))
	original.AddAtom(NullAtom{})
	original.AddAtom(&RawAtom{Kind: 42, Data: []byte("marker")})
	original.AddAtom(atom)

	data := encode(t, original)
	assert.Equal(t, Magic, string(data[:8]))

	decoded, err := Read(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, original.Metadata, decoded.Metadata)
	require.Len(t, decoded.Atoms, 3)
	assert.Equal(t, NullAtom{}, decoded.Atoms[0])
	assert.Equal(t, &RawAtom{Kind: 42, Data: []byte("marker")}, decoded.Atoms[1])

	got, ok := decoded.ActionAtom()
	require.True(t, ok)
	assert.Equal(t, atom.Actions, got.Actions)
}

func TestActionAtom_DeltaReconstruction(t *testing.T) {
	atom := NewActionAtom()
	atom.Actions = []Action{
		PlayerAction(0, 10, Jump, true, false),
		PlayerAction(10, 0, Left, true, false),
		PlayerAction(10, 15, Right, false, false),
	}

	payload, err := atom.MarshalBinary()
	require.NoError(t, err)

	decoded := NewActionAtom()
	require.NoError(t, decoded.UnmarshalBinary(payload))

	var frames, deltas []uint64
	for _, a := range decoded.Actions {
		frames = append(frames, a.Frame)
		deltas = append(deltas, a.Delta)
	}
	assert.Equal(t, []uint64{10, 10, 25}, frames)
	assert.Equal(t, []uint64{10, 0, 15}, deltas)
}

func TestActionAtom_HeaderLayout(t *testing.T) {
	atom := &ActionAtom{Actions: []Action{PlayerAction(0, 300, Right, true, true)}}
	payload, err := atom.MarshalBinary()
	require.NoError(t, err)

	// count, header, 2-byte delta
	require.Len(t, payload, 8+1+2)
	assert.Equal(t, byte(1<<5|1<<4|1<<3|byte(Right)), payload[8])
	assert.Equal(t, uint16(300), binary.LittleEndian.Uint16(payload[9:]))
}

func TestDeltaWidth(t *testing.T) {
	testCases := []struct {
		delta uint64
		class uint8
		width int
	}{
		{0, 0, 1},
		{255, 0, 1},
		{256, 1, 2},
		{65535, 1, 2},
		{65536, 2, 4},
		{1<<32 - 1, 2, 4},
		{1 << 32, 3, 8},
	}
	for _, tc := range testCases {
		class, width := deltaWidth(tc.delta)
		assert.Equal(t, tc.class, class, "delta %d", tc.delta)
		assert.Equal(t, tc.width, width, "delta %d", tc.delta)
	}
}

func TestActionAtom_Malformed(t *testing.T) {
	testCases := []struct {
		name    string
		payload []byte
	}{
		{name: "empty", payload: nil},
		{name: "count exceeds payload", payload: binary.LittleEndian.AppendUint64(nil, 10)},
		{name: "truncated delta", payload: append(binary.LittleEndian.AppendUint64(nil, 1), 3<<5, 0)},
		{name: "truncated seed", payload: append(binary.LittleEndian.AppendUint64(nil, 1), byte(Death), 5, 1, 2)},
		{name: "trailing bytes", payload: append(binary.LittleEndian.AppendUint64(nil, 0), 1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewActionAtom().UnmarshalBinary(tc.payload)
			assert.Error(t, err)
		})
	}
}

func TestRead_Errors(t *testing.T) {
	valid := encode(t, New(NewMetadata(240, 0, 0)))

	t.Run("bad magic", func(t *testing.T) {
		data := append([]byte("SLC2RPLY"), valid[8:]...)
		_, err := Read(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("bad metadata size", func(t *testing.T) {
		data := append([]byte{}, valid...)
		binary.LittleEndian.PutUint32(data[8:], 32)
		_, err := Read(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrMetaSize)
	})

	t.Run("truncated atom", func(t *testing.T) {
		r := New(NewMetadata(240, 0, 0))
		r.AddAtom(&RawAtom{Kind: 9, Data: []byte("payload")})
		data := encode(t, r)
		_, err := Read(bytes.NewReader(data[:len(data)-2]))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("oversized atom", func(t *testing.T) {
		data := append([]byte{}, valid...)
		binary.LittleEndian.PutUint32(data[12+MetadataSize:], 1)
		data = binary.LittleEndian.AppendUint32(data, 9)
		data = binary.LittleEndian.AppendUint64(data, 1<<40)
		_, err := Read(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrAtomTooLarge)
	})

	t.Run("claimed size beyond stream", func(t *testing.T) {
		data := append([]byte{}, valid...)
		binary.LittleEndian.PutUint32(data[12+MetadataSize:], 1)
		data = binary.LittleEndian.AppendUint32(data, uint32(AtomAction))
		data = binary.LittleEndian.AppendUint64(data, maxAtomSize)
		data = append(data, 0, 0, 0, 0)

		var before, after runtime.MemStats
		runtime.GC()
		runtime.ReadMemStats(&before)
		_, err := Read(bytes.NewReader(data))
		runtime.ReadMemStats(&after)

		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20), "payload buffer must track bytes read")
	})
}

func TestReplay_ActionAtomMissing(t *testing.T) {
	r := New(NewMetadata(240, 0, 0))
	r.AddAtom(NullAtom{})
	_, ok := r.ActionAtom()
	assert.False(t, ok)
}
