// Package pin provides the hardware channels the controller operates on:
// one analog light sensor, one push-button input and one LED output.
// The real implementations use the Linux GPIO character device and sysfs
// IIO; the simulated and fake implementations allow running and testing
// without hardware.
package pin

// ADCMax is the largest raw reading the analog sensor can return.
// The lesson hardware is a 10-bit ADC, so readings are in [0, ADCMax].
const ADCMax = 1023

// AnalogReader reads raw counts from the light sensor channel.
type AnalogReader interface {
	// Read returns the current raw reading in [0, ADCMax].
	Read() (int, error)

	// Close releases the underlying channel.
	Close() error
}

// Input reads the push-button.
type Input interface {
	// Pressed returns the logical button state. The physical line is
	// pulled high and active-low; implementations do the inversion, so
	// true always means "pressed".
	Pressed() (bool, error)

	// Close releases the underlying line.
	Close() error
}

// Output drives the LED.
type Output interface {
	// Set drives the line high (true) or low (false).
	Set(on bool) error

	// Close releases the underlying line.
	Close() error
}
