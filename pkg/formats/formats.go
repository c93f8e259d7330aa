// Package formats picks a replay codec from a format hint.
package formats

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/ssargent/siliconv/pkg/logger"
	"github.com/ssargent/siliconv/pkg/replay"
	"github.com/ssargent/siliconv/pkg/silicate"
)

// HintSilicate selects the Silicate codec for all three revisions.
const HintSilicate = "slc"

// Read decodes a replay using the codec selected by hint, normally the file
// extension. An unknown hint fails without reading from r.
func Read(r io.ReadSeeker, hint string) (*replay.Replay, error) {
	logger.Log.Debugf("reading replay with hint %s", hint)

	switch hint {
	case HintSilicate:
		return silicate.Read(r)
	}
	return nil, replay.NewReadError("could not determine format", nil)
}

// Write encodes a replay as slc3 regardless of the format it was read from.
func Write(r *replay.Replay, w io.Writer) error {
	return silicate.Write(r, w)
}

// HintFromPath returns the extension of path without the leading dot.
func HintFromPath(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// OutputExtension is the extension of files produced by Write.
func OutputExtension() string {
	return "." + HintSilicate
}

// Info summarizes a decoded replay
type Info struct {
	Format       string  `json:"format"`
	ActionsCount int     `json:"actions_count"`
	GameVersion  string  `json:"game_version"`
	TPS          float64 `json:"tps"`
	Seed         uint64  `json:"seed"`
}

// Describe builds the Info of r, applying metadata defaults for missing fields.
func Describe(r *replay.Replay) Info {
	var fields []replay.Field
	if r.Meta != nil {
		fields = r.Meta.Fields()
	}
	meta := silicate.MetaFromFields(fields)
	return Info{
		Format:       r.Format.String(),
		ActionsCount: len(r.Actions),
		GameVersion:  r.GameVersion.String(),
		TPS:          meta.TPS,
		Seed:         meta.Seed,
	}
}
