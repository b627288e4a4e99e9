//go:build !linux

package pin

import "errors"

var errNotSupported = errors.New("pin: gpio not supported on this platform (requires Linux)")

// GPIOButton is not available on non-Linux platforms.
type GPIOButton struct{}

// NewGPIOButton returns an error on non-Linux platforms.
func NewGPIOButton(_ string, _ int) (*GPIOButton, error) {
	return nil, errNotSupported
}

// Pressed is not implemented on non-Linux platforms.
func (b *GPIOButton) Pressed() (bool, error) {
	return false, errNotSupported
}

// Close is not implemented on non-Linux platforms.
func (b *GPIOButton) Close() error {
	return nil
}

// GPIOLED is not available on non-Linux platforms.
type GPIOLED struct{}

// NewGPIOLED returns an error on non-Linux platforms.
func NewGPIOLED(_ string, _ int) (*GPIOLED, error) {
	return nil, errNotSupported
}

// Set is not implemented on non-Linux platforms.
func (l *GPIOLED) Set(_ bool) error {
	return errNotSupported
}

// Close is not implemented on non-Linux platforms.
func (l *GPIOLED) Close() error {
	return nil
}
