// Package codec provides the binary envelope used to store replays in the
// siliconv library.
//
// # Entry Format
//
// Entries are serialized with the following structure:
//
//	[CRC32(4)][NameSize(4)][DataSize(4)][Timestamp(8)][Format(1)][Name][Data]
//
// Fields:
//   - CRC32: IEEE checksum over every byte after the CRC32 field (little-endian)
//   - NameSize: length of the display name in bytes (little-endian)
//   - DataSize: length of the encoded replay in bytes (little-endian)
//   - Timestamp: Unix time in nanoseconds when the entry was created (little-endian)
//   - Format: the revision the replay was originally read from
//   - Name: display name, usually the source file name
//   - Data: the replay, always encoded as slc3
//
// The total entry size is 21 bytes of header plus len(Name) plus len(Data).
//
// # Usage
//
//	c := codec.NewEntryCodec()
//
//	encoded, err := c.Encode(codec.NewEntry("level1.slc", replay.FormatSlc1, slc3Bytes))
//	if err != nil {
//	    return err
//	}
//
//	entry, err := c.Decode(encoded)
//	if err != nil {
//	    return err
//	}
//	if err := entry.Validate(); err != nil {
//	    return err // corrupted
//	}
//
// # Thread Safety
//
// EntryCodec instances are safe for concurrent use. Decoded entries alias
// the input buffer.
package codec
