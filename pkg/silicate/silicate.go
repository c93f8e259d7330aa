// Package silicate converts the three Silicate replay revisions to and from
// the unified replay model.
//
// slc1 is a raw packed layout with no magic, slc2 is a "SILL" container and
// slc3 is an atom container opened by "SLC3RPLY". Any revision can be read;
// Write always produces slc3.
package silicate

import (
	"io"

	"github.com/ssargent/siliconv/pkg/logger"
	"github.com/ssargent/siliconv/pkg/replay"
)

// Read detects the revision of r and decodes it. r must be positioned at
// offset 0.
func Read(r io.ReadSeeker) (*replay.Replay, error) {
	format, err := Sniff(r)
	if err != nil {
		return nil, err
	}
	logger.Log.WithField("format", format.String()).Debug("using the Silicate replay format")

	switch format {
	case replay.FormatSlc3:
		return readSlc3(r)
	case replay.FormatSlc2:
		return readSlc2(r)
	}
	return readSlc1(r)
}

// Write encodes r as slc3, whatever revision it was read from.
func Write(r *replay.Replay, w io.Writer) error {
	logger.Log.WithField("format", replay.FormatSlc3.String()).Debug("using the Silicate replay format")
	return writeSlc3(r, w)
}
