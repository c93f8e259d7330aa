package silicate

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ssargent/siliconv/pkg/replay"
	"github.com/ssargent/siliconv/pkg/slc2"
)

func readSlc2(r io.Reader) (*replay.Replay, error) {
	meta := &Slc2Meta{}
	container, err := slc2.Read(bufio.NewReader(r), meta)
	if err != nil {
		return nil, replay.NewReadError("failed to read slc2 replay", err)
	}

	actions := make([]replay.TimedAction, 0, len(container.Inputs))
	for i, in := range container.Inputs {
		if in.Kind == slc2.Skip {
			continue
		}
		if in.Kind.IsPlayer() {
			button, err := replay.ButtonFromCode(in.Button())
			if err != nil {
				return nil, replay.NewReadError(fmt.Sprintf("slc2 input %d", i), err)
			}
			actions = append(actions, replay.At(in.Frame, replay.Player{Button: button, Hold: in.Hold, Player2: in.Player2}))
			continue
		}

		var action replay.Action
		switch in.Kind {
		case slc2.Restart:
			action = replay.Restart{Type: replay.RestartTypeRestart}
		case slc2.RestartFull:
			action = replay.Restart{Type: replay.RestartTypeFull}
		case slc2.Death:
			action = replay.Restart{Type: replay.RestartTypeDeath}
		case slc2.TPS:
			action = replay.TPS{TPS: in.TPS}
		default:
			return nil, replay.NewReadError(fmt.Sprintf("slc2 input %d: unknown kind %d", i, in.Kind), nil)
		}
		actions = append(actions, replay.At(in.Frame, action))
	}

	return replay.New(
		Meta{TPS: container.TPS, Seed: meta.Seed},
		actions,
		replay.FormatSlc2,
		replay.NewGameVersion(22, 74),
	), nil
}
