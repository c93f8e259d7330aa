package silicate

import (
	"bufio"
	"io"

	"github.com/ssargent/siliconv/pkg/replay"
	"github.com/ssargent/siliconv/pkg/slc3"
)

func readSlc3(r io.Reader) (*replay.Replay, error) {
	container, err := slc3.Read(bufio.NewReader(r))
	if err != nil {
		return nil, replay.NewReadError("failed to read slc3 replay", err)
	}

	atom, ok := container.ActionAtom()
	if !ok {
		return nil, replay.NewReadError("missing action atom in slc3 replay", nil)
	}

	actions := make([]replay.TimedAction, 0, len(atom.Actions))
	for _, a := range atom.Actions {
		actions = append(actions, replay.At(a.Frame, fromSlc3Action(a)))
	}

	return replay.New(
		Meta{TPS: container.Metadata.TPS, Seed: container.Metadata.Seed},
		actions,
		replay.FormatSlc3,
		replay.NewGameVersion(22, 74),
	), nil
}

var slc3Buttons = map[slc3.ActionType]replay.PlayerButton{
	slc3.Jump:  replay.ButtonJump,
	slc3.Left:  replay.ButtonLeft,
	slc3.Right: replay.ButtonRight,
}

func fromSlc3Action(a slc3.Action) replay.Action {
	if a.Type.IsPlayer() {
		return replay.Player{Button: slc3Buttons[a.Type], Hold: a.Holding, Player2: a.Player2}
	}
	switch a.Type {
	case slc3.Restart:
		return replay.Restart{Type: replay.RestartTypeRestart, Seed: replay.Uint64(a.Seed)}
	case slc3.RestartFull:
		return replay.Restart{Type: replay.RestartTypeFull, Seed: replay.Uint64(a.Seed)}
	case slc3.Death:
		return replay.Restart{Type: replay.RestartTypeDeath, Seed: replay.Uint64(a.Seed)}
	case slc3.TPS:
		return replay.TPS{TPS: a.TPS}
	}
	return replay.Empty{}
}

var buttonTypes = map[replay.PlayerButton]slc3.ActionType{
	replay.ButtonJump:  slc3.Jump,
	replay.ButtonLeft:  slc3.Left,
	replay.ButtonRight: slc3.Right,
}

var restartTypes = map[replay.RestartType]slc3.ActionType{
	replay.RestartTypeRestart: slc3.Restart,
	replay.RestartTypeFull:    slc3.RestartFull,
	replay.RestartTypeDeath:   slc3.Death,
}

// encodeActions delta-encodes frame-timed actions. Actions timed any other
// way, or earlier than the action before them, are dropped. Empty actions
// produce no record but still move the baseline.
func encodeActions(actions []replay.TimedAction) []slc3.Action {
	out := make([]slc3.Action, 0, len(actions))
	var current uint64

	for _, ta := range actions {
		f, ok := ta.Time.(replay.Frame)
		if !ok {
			continue
		}
		frame := uint64(f)
		if frame < current {
			continue
		}
		delta := frame - current

		switch a := ta.Action.(type) {
		case replay.Player:
			if t, ok := buttonTypes[a.Button]; ok {
				out = append(out, slc3.PlayerAction(current, delta, t, a.Hold, a.Player2))
			}
		case replay.Restart:
			if t, ok := restartTypes[a.Type]; ok {
				out = append(out, slc3.DeathAction(current, delta, t, a.SeedOr(DefaultSeed)))
			}
		case replay.TPS:
			out = append(out, slc3.TPSAction(current, delta, a.TPS))
		}

		current = frame
	}
	return out
}

func writeSlc3(r *replay.Replay, w io.Writer) error {
	var fields []replay.Field
	if r.Meta != nil {
		fields = r.Meta.Fields()
	}
	meta := MetaFromFields(fields)

	atom := slc3.NewActionAtom()
	atom.Actions = encodeActions(r.Actions)

	container := slc3.New(slc3.NewMetadata(meta.TPS, meta.Seed, 0))
	container.AddAtom(atom)

	if err := container.Write(w); err != nil {
		return replay.NewWriteError("failed to write slc3 replay", err)
	}
	return nil
}
