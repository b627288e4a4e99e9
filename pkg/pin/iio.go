package pin

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// IIOReader reads raw ADC counts from a sysfs Industrial I/O channel,
// e.g. /sys/bus/iio/devices/iio:device0/in_voltage0_raw. This is how a
// photoresistor behind an ADC chip (MCP3008 and friends) shows up on
// Linux; there is no character-device API for IIO, plain file reads are
// the interface.
type IIOReader struct {
	path string
}

// NewIIOReader builds a reader for the given IIO device directory and
// voltage channel. It fails early if the channel file is not readable.
func NewIIOReader(device string, channel int) (*IIOReader, error) {
	path := filepath.Join(device, fmt.Sprintf("in_voltage%d_raw", channel))
	if _, err := os.Stat(path); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to stat iio channel %s", path)
	}
	return &IIOReader{path: path}, nil
}

// Read reads and parses the channel file. Readings above ADCMax are
// clamped, the controller's domain is 10-bit.
func (r *IIOReader) Read() (int, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to read iio channel %s", r.path)
	}

	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to parse iio reading %q", strings.TrimSpace(string(b)))
	}

	if v < 0 {
		v = 0
	}
	if v > ADCMax {
		v = ADCMax
	}
	return v, nil
}

// Close is a no-op, sysfs files are opened per read.
func (r *IIOReader) Close() error {
	return nil
}
