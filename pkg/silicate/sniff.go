package silicate

import (
	"bytes"
	"io"

	"github.com/ssargent/siliconv/pkg/replay"
	"github.com/ssargent/siliconv/pkg/slc2"
	"github.com/ssargent/siliconv/pkg/slc3"
)

// Sniff classifies a stream positioned at offset 0 by its first 8 bytes and
// rewinds it to offset 0. Anything that is not slc3 or slc2 is slc1, which
// has no magic.
func Sniff(r io.ReadSeeker) (replay.Format, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return replay.FormatUnknown, replay.NewReadError("failed to read magic", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return replay.FormatUnknown, replay.NewReadError("failed to rewind stream", err)
	}

	switch {
	case string(magic[:]) == slc3.Magic:
		return replay.FormatSlc3, nil
	case bytes.HasPrefix(magic[:], []byte(slc2.Magic)):
		return replay.FormatSlc2, nil
	}
	return replay.FormatSlc1, nil
}
