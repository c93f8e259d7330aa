// Package replay defines the revision-independent replay model every format
// decodes into and encodes from.
package replay

import "fmt"

// Format records which on-disk revision a Replay was decoded from.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatSlc1
	FormatSlc2
	FormatSlc3
)

func (f Format) String() string {
	switch f {
	case FormatSlc1:
		return "slc1"
	case FormatSlc2:
		return "slc2"
	case FormatSlc3:
		return "slc3"
	}
	return "unknown"
}

// GameVersion is the game build a replay targets.
type GameVersion struct {
	Major uint16
	Minor uint16
}

// NewGameVersion creates a GameVersion.
func NewGameVersion(major, minor uint16) GameVersion {
	return GameVersion{Major: major, Minor: minor}
}

func (v GameVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Replay is one playthrough's inputs plus metadata.
type Replay struct {
	Meta        Meta
	Actions     []TimedAction
	Format      Format
	GameVersion GameVersion
}

// New creates a Replay. A nil meta is replaced with an empty field set so
// Meta is always usable.
func New(meta Meta, actions []TimedAction, format Format, version GameVersion) *Replay {
	if meta == nil {
		meta = Fields(nil)
	}
	return &Replay{
		Meta:        meta,
		Actions:     actions,
		Format:      format,
		GameVersion: version,
	}
}
