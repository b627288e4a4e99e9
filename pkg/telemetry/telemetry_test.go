package telemetry

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordString(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   string
	}{
		{
			name:   "initial charge under average light",
			record: NewRecord(10.133333333, 52),
			want:   "0, 100, 10.1333, 52",
		},
		{
			name:   "dark",
			record: NewRecord(10, 0),
			want:   "0, 100, 10.0000, 0",
		},
		{
			name:   "overcharged past the nominal ceiling",
			record: NewRecord(104.25, 100),
			want:   "0, 100, 104.2500, 100",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLineWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewLineWriter(&buf)

	require.NoError(t, w.Write(NewRecord(10.133333333, 52)))
	require.NoError(t, w.Write(NewRecord(10.266666666, 52)))
	require.NoError(t, w.Close())

	assert.Equal(t, "0, 100, 10.1333, 52\n0, 100, 10.2667, 52\n", buf.String())
}

func TestOpenStreamStdout(t *testing.T) {
	w, err := OpenStream("-", time.Second)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestOpenStreamFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.log")

	w, err := OpenStream(path, time.Second)
	require.NoError(t, err)
	require.NoError(t, w.Write(NewRecord(10, 0)))
	require.NoError(t, w.Close())
}

func TestOpenStreamTimesOut(t *testing.T) {
	// A path inside a directory that does not exist never becomes
	// openable.
	path := filepath.Join(t.TempDir(), "missing", "ttyUSB0")

	start := time.Now()
	_, err := OpenStream(path, 300*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready after")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestMultiWriter(t *testing.T) {
	a := &Recorder{}
	b := &Recorder{}

	w := MultiWriter(a, b)
	require.NoError(t, w.Write(NewRecord(42, 10)))

	assert.Len(t, a.Records, 1)
	assert.Len(t, b.Records, 1)
	assert.Equal(t, a.Last(), b.Last())
}

func TestMultiWriterFirstError(t *testing.T) {
	a := &Recorder{WriteError: assert.AnError}
	b := &Recorder{}

	w := MultiWriter(a, b)
	err := w.Write(NewRecord(42, 10))

	require.Error(t, err)
	// The failing writer must not starve the healthy one.
	assert.Len(t, b.Records, 1)
}
