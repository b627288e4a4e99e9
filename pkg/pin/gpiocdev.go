//go:build linux

package pin

import (
	pkgerrors "github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
)

// GPIOButton reads a push-button wired between a GPIO line and ground.
// The line is requested with the internal pull-up, so the raw value is
// 1 when released and 0 when pressed.
type GPIOButton struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewGPIOButton requests the given line on the given chip as a pulled-up
// input.
func NewGPIOButton(chipName string, offset int) (*GPIOButton, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open gpio chip %s", chipName)
	}

	line, err := chip.RequestLine(offset, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		_ = chip.Close()
		return nil, pkgerrors.Wrapf(err, "failed to request button line %d", offset)
	}

	return &GPIOButton{chip: chip, line: line}, nil
}

// Pressed returns true when the line reads low.
func (b *GPIOButton) Pressed() (bool, error) {
	raw, err := b.line.Value()
	if err != nil {
		return false, pkgerrors.Wrap(err, "failed to read button line")
	}

	// Pull-up wiring: raw low = pressed.
	return raw == 0, nil
}

// Close releases the line and the chip.
func (b *GPIOButton) Close() error {
	var firstErr error
	if b.line != nil {
		if err := b.line.Close(); err != nil && firstErr == nil {
			firstErr = pkgerrors.Wrap(err, "failed to close button line")
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil && firstErr == nil {
			firstErr = pkgerrors.Wrap(err, "failed to close gpio chip")
		}
	}
	return firstErr
}

// GPIOLED drives an LED on a GPIO line.
type GPIOLED struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewGPIOLED requests the given line on the given chip as an output,
// initially low.
func NewGPIOLED(chipName string, offset int) (*GPIOLED, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open gpio chip %s", chipName)
	}

	line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		_ = chip.Close()
		return nil, pkgerrors.Wrapf(err, "failed to request led line %d", offset)
	}

	return &GPIOLED{chip: chip, line: line}, nil
}

// Set drives the line.
func (l *GPIOLED) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		return pkgerrors.Wrap(err, "failed to set led line")
	}
	return nil
}

// Close drives the line low, reconfigures it back to an input and
// releases it, so the LED is off after the daemon exits.
func (l *GPIOLED) Close() error {
	var firstErr error
	if l.line != nil {
		if err := l.line.SetValue(0); err != nil && firstErr == nil {
			firstErr = pkgerrors.Wrap(err, "failed to drive led line low")
		}
		if err := l.line.Reconfigure(gpiocdev.AsInput); err != nil && firstErr == nil {
			firstErr = pkgerrors.Wrap(err, "failed to reconfigure led line")
		}
		if err := l.line.Close(); err != nil && firstErr == nil {
			firstErr = pkgerrors.Wrap(err, "failed to close led line")
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil && firstErr == nil {
			firstErr = pkgerrors.Wrap(err, "failed to close gpio chip")
		}
	}
	return firstErr
}
