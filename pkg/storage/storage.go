// Package storage keeps converted replays in a Pebble-backed library.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/siliconv/pkg/codec"
	"github.com/ssargent/siliconv/pkg/formats"
	"github.com/ssargent/siliconv/pkg/logger"
	"github.com/ssargent/siliconv/pkg/replay"
)

// ErrNotFound is returned when no entry exists for an id
var ErrNotFound = errors.New("replay not found")

// Entry summarizes a stored replay
type Entry struct {
	ID        ksuid.KSUID   `json:"id"`
	Name      string        `json:"name"`
	Format    replay.Format `json:"-"`
	Source    string        `json:"source_format"`
	CreatedAt time.Time     `json:"created_at"`
	Size      int           `json:"size"`
}

// Library stores replays as slc3 inside codec entries, keyed by KSUID
type Library struct {
	db    *pebble.DB
	codec *codec.EntryCodec
}

// Open opens or creates a library at path
func Open(path string) (*Library, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open library at %s: %w", path, err)
	}
	return &Library{db: db, codec: codec.NewEntryCodec()}, nil
}

// Add encodes r as slc3 and stores it under a new id
func (l *Library) Add(name string, r *replay.Replay) (Entry, error) {
	var buf bytes.Buffer
	if err := formats.Write(r, &buf); err != nil {
		return Entry{}, fmt.Errorf("failed to encode replay: %w", err)
	}

	data, err := l.codec.Encode(codec.NewEntry(name, r.Format, buf.Bytes()))
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode entry: %w", err)
	}

	id := ksuid.New()
	if err := l.db.Set(id.Bytes(), data, pebble.Sync); err != nil {
		return Entry{}, fmt.Errorf("failed to store replay: %w", err)
	}
	logger.Log.Debugf("stored replay %s as %s (%d bytes)", name, id, len(data))

	return l.decode(id, data)
}

// Get returns the summary of a stored replay
func (l *Library) Get(id ksuid.KSUID) (Entry, error) {
	data, err := l.read(id)
	if err != nil {
		return Entry{}, err
	}
	return l.decode(id, data)
}

// Raw returns the slc3 bytes of a stored replay
func (l *Library) Raw(id ksuid.KSUID) ([]byte, error) {
	data, err := l.read(id)
	if err != nil {
		return nil, err
	}
	e, err := l.validate(data)
	if err != nil {
		return nil, err
	}
	return e.Data, nil
}

// Load decodes a stored replay
func (l *Library) Load(id ksuid.KSUID) (*replay.Replay, error) {
	data, err := l.Raw(id)
	if err != nil {
		return nil, err
	}
	r, err := formats.Read(bytes.NewReader(data), formats.HintSilicate)
	if err != nil {
		return nil, fmt.Errorf("failed to decode replay %s: %w", id, err)
	}
	return r, nil
}

// List returns all entries in creation order
func (l *Library) List() ([]Entry, error) {
	iter, err := l.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	var entries []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			return nil, fmt.Errorf("failed to parse key: %w", err)
		}
		entry, err := l.decode(id, iter.Value())
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate library: %w", err)
	}
	return entries, nil
}

// Delete removes a stored replay
func (l *Library) Delete(id ksuid.KSUID) error {
	if _, err := l.read(id); err != nil {
		return err
	}
	if err := l.db.Delete(id.Bytes(), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete replay %s: %w", id, err)
	}
	return nil
}

// Close closes the underlying database
func (l *Library) Close() error {
	return l.db.Close()
}

// read returns a copy of the stored value; pebble only guarantees the slice until closer.Close
func (l *Library) read(id ksuid.KSUID) ([]byte, error) {
	value, closer, err := l.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read replay %s: %w", id, err)
	}
	defer closer.Close()

	return append([]byte(nil), value...), nil
}

func (l *Library) validate(data []byte) (*codec.Entry, error) {
	e, err := l.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode entry: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("corrupted entry: %w", err)
	}
	return e, nil
}

func (l *Library) decode(id ksuid.KSUID, data []byte) (Entry, error) {
	e, err := l.validate(data)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:        id,
		Name:      string(e.Name),
		Format:    e.Format,
		Source:    e.Format.String(),
		CreatedAt: e.CreatedAt(),
		Size:      len(e.Data),
	}, nil
}
