package silicate

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ssargent/siliconv/pkg/replay"
)

// slc1 has no container: [TPS f64][Count u32][Count x u32 record][Seed u64?]
//
// Record bits: frame [4:32), player 2 [3], button [1:3), hold [0].

// maxPrealloc caps the initial capacity taken from an untrusted count.
const maxPrealloc = 1 << 16

func readSlc1(r io.Reader) (*replay.Replay, error) {
	br := bufio.NewReader(r)

	var head [12]byte
	if _, err := io.ReadFull(br, head[:]); err != nil {
		return nil, replay.NewReadError("failed to read slc1 header", err)
	}
	tps := math.Float64frombits(binary.LittleEndian.Uint64(head[0:8]))
	count := binary.LittleEndian.Uint32(head[8:12])

	actions := make([]replay.TimedAction, 0, min(count, maxPrealloc))
	var word [4]byte
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(br, word[:]); err != nil {
			return nil, replay.NewReadError(fmt.Sprintf("failed to read slc1 action %d", i), err)
		}
		action, err := unpackSlc1(binary.LittleEndian.Uint32(word[:]))
		if err != nil {
			return nil, replay.NewReadError(fmt.Sprintf("slc1 action %d", i), err)
		}
		actions = append(actions, action)
	}

	seed := DefaultSeed
	var tail [8]byte
	_, err := io.ReadFull(br, tail[:])
	switch {
	case err == nil:
		seed = binary.LittleEndian.Uint64(tail[:])
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		// no trailing seed
	default:
		return nil, replay.NewReadError("failed to read slc1 seed", err)
	}

	return replay.New(
		Meta{TPS: tps, Seed: seed},
		actions,
		replay.FormatSlc1,
		replay.NewGameVersion(22, 60),
	), nil
}

func unpackSlc1(state uint32) (replay.TimedAction, error) {
	button, err := replay.ButtonFromCode(uint8((state & 0b0110) >> 1))
	if err != nil {
		return replay.TimedAction{}, err
	}
	return replay.At(uint64(state>>4), replay.Player{
		Button:  button,
		Hold:    state&0b0001 != 0,
		Player2: state&0b1000 != 0,
	}), nil
}
