package codec

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"time"

	"github.com/ssargent/siliconv/pkg/replay"
)

// HeaderSize is CRC32(4) + NameSize(4) + DataSize(4) + Timestamp(8) + Format(1).
const HeaderSize = 21

// Entry is a stored replay with its metadata
type Entry struct {
	CRC32     uint32        // CRC32 checksum for integrity
	NameSize  uint32        // Size of the name in bytes
	DataSize  uint32        // Size of the replay data in bytes
	Timestamp uint64        // Unix timestamp in nanoseconds
	Format    replay.Format // Revision the replay was read from
	Name      []byte        // Display name
	Data      []byte        // slc3 encoded replay
}

// EntryCodec handles serialization and deserialization of entries
type EntryCodec struct{}

// NewEntryCodec creates a new entry codec instance
func NewEntryCodec() *EntryCodec {
	return &EntryCodec{}
}

// NewEntry creates an entry stamped with the current time
func NewEntry(name string, format replay.Format, data []byte) *Entry {
	return &Entry{
		NameSize:  uint32(len(name)),
		DataSize:  uint32(len(data)),
		Timestamp: uint64(time.Now().UnixNano()),
		Format:    format,
		Name:      []byte(name),
		Data:      data,
	}
}

// Encode serializes an entry, filling in its checksum
func (c *EntryCodec) Encode(e *Entry) ([]byte, error) {
	if uint64(len(e.Name)) > math.MaxUint32 {
		return nil, fmt.Errorf("name too large: %d bytes", len(e.Name))
	}
	if uint64(len(e.Data)) > math.MaxUint32 {
		return nil, fmt.Errorf("data too large: %d bytes", len(e.Data))
	}
	e.NameSize = uint32(len(e.Name))
	e.DataSize = uint32(len(e.Data))
	e.CRC32 = e.calculateCRC32()

	buf := make([]byte, e.Size())
	binary.LittleEndian.PutUint32(buf[0:], e.CRC32)
	e.putHeader(buf[4:HeaderSize])
	copy(buf[HeaderSize:], e.Name)
	copy(buf[HeaderSize+len(e.Name):], e.Data)

	return buf, nil
}

// Decode deserializes an entry. It does not check the CRC; call Validate.
func (c *EntryCodec) Decode(data []byte) (*Entry, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("data too short for entry header")
	}

	e := &Entry{}
	e.CRC32 = binary.LittleEndian.Uint32(data[0:4])
	e.NameSize = binary.LittleEndian.Uint32(data[4:8])
	e.DataSize = binary.LittleEndian.Uint32(data[8:12])
	e.Timestamp = binary.LittleEndian.Uint64(data[12:20])
	e.Format = replay.Format(data[20])

	total := uint64(HeaderSize) + uint64(e.NameSize) + uint64(e.DataSize)
	if uint64(len(data)) < total {
		return nil, fmt.Errorf("data too short for name/data sizes: %d < %d", len(data), total)
	}

	nameEnd := HeaderSize + int(e.NameSize)
	e.Name = data[HeaderSize:nameEnd]
	e.Data = data[nameEnd : nameEnd+int(e.DataSize)]

	return e, nil
}

// Validate checks the integrity of an entry using CRC32
func (e *Entry) Validate() error {
	if sum := e.calculateCRC32(); e.CRC32 != sum {
		return fmt.Errorf("CRC32 mismatch: %d != %d", e.CRC32, sum)
	}
	return nil
}

// Size returns the total size of the entry when encoded
func (e *Entry) Size() int {
	return HeaderSize + len(e.Name) + len(e.Data)
}

// CreatedAt returns the entry timestamp as a time.Time
func (e *Entry) CreatedAt() time.Time {
	return time.Unix(0, int64(e.Timestamp)).UTC()
}

func (e *Entry) putHeader(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], e.NameSize)
	binary.LittleEndian.PutUint32(buf[4:], e.DataSize)
	binary.LittleEndian.PutUint64(buf[8:], e.Timestamp)
	buf[16] = byte(e.Format)
}

// calculateCRC32 computes the checksum over everything but the CRC field
func (e *Entry) calculateCRC32() uint32 {
	var header [HeaderSize - 4]byte
	e.putHeader(header[:])

	crc := crc32.NewIEEE()
	crc.Write(header[:])
	crc.Write(e.Name)
	crc.Write(e.Data)
	return crc.Sum32()
}
