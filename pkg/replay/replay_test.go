package replay

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldValue(t *testing.T) {
	fields := []Field{
		{Name: "tps", Value: 360.0, Default: 240.0},
		{Name: "seed", Value: uint64(7), Default: uint64(0)},
		{Name: "label", Value: "run", Default: ""},
	}

	testCases := []struct {
		name string
		got  any
		want any
	}{
		{name: "present float", got: FieldValue(fields, "tps", 240.0), want: 360.0},
		{name: "present uint", got: FieldValue(fields, "seed", uint64(0)), want: uint64(7)},
		{name: "missing field uses default", got: FieldValue(fields, "build", uint32(3)), want: uint32(3)},
		{name: "wrong type uses default", got: FieldValue(fields, "label", 1.5), want: 1.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.got)
		})
	}
}

func TestNew_NilMeta(t *testing.T) {
	r := New(nil, nil, FormatSlc1, NewGameVersion(22, 60))

	require.NotNil(t, r.Meta)
	assert.Empty(t, r.Meta.Fields())
	assert.Equal(t, "22.60", r.GameVersion.String())
}

func TestFormat_String(t *testing.T) {
	assert.Equal(t, "slc1", FormatSlc1.String())
	assert.Equal(t, "slc2", FormatSlc2.String())
	assert.Equal(t, "slc3", FormatSlc3.String())
	assert.Equal(t, "unknown", FormatUnknown.String())
	assert.Equal(t, "unknown", Format(9).String())
}

func TestButtonFromCode(t *testing.T) {
	testCases := []struct {
		code    uint8
		want    PlayerButton
		wantErr bool
	}{
		{code: 0, wantErr: true},
		{code: 1, want: ButtonJump},
		{code: 2, want: ButtonLeft},
		{code: 3, want: ButtonRight},
		{code: 4, wantErr: true},
	}

	for _, tc := range testCases {
		got, err := ButtonFromCode(tc.code)
		if tc.wantErr {
			assert.Error(t, err, "code %d", tc.code)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestRestart_SeedOr(t *testing.T) {
	assert.Equal(t, uint64(2137), Restart{}.SeedOr(2137))
	assert.Equal(t, uint64(9), Restart{Seed: Uint64(9)}.SeedOr(2137))
}

func TestErrors(t *testing.T) {
	err := NewReadError("failed to read slc3 replay", io.ErrUnexpectedEOF)

	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "read error: failed to read slc3 replay: unexpected EOF", err.Error())

	err = NewWriteError("boom", nil)
	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "write error: boom", err.Error())
}
