package pin

import "errors"

// FakeAnalog is a test double that returns scripted sensor readings.
type FakeAnalog struct {
	// Samples contains scripted raw readings. Each call to Read()
	// consumes the next sample. If samples are exhausted, the last
	// one is returned repeatedly.
	Samples []int

	// ReadError, if set, will be returned by Read()
	ReadError error

	// Closed tracks if Close was called
	Closed bool

	index int
}

// NewFakeAnalog creates a FakeAnalog with the given samples.
func NewFakeAnalog(samples ...int) *FakeAnalog {
	return &FakeAnalog{Samples: samples}
}

// Read returns the next scripted reading.
func (f *FakeAnalog) Read() (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}

	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeAnalog) Close() error {
	f.Closed = true
	return nil
}

// FakeButton is a test double that returns scripted button states.
// States are logical: true = pressed.
type FakeButton struct {
	Samples []bool

	ReadError error

	Closed bool

	index int
}

// NewFakeButton creates a FakeButton with the given samples.
func NewFakeButton(samples ...bool) *FakeButton {
	return &FakeButton{Samples: samples}
}

// Pressed returns the next scripted state. If samples are exhausted,
// the last one is returned repeatedly.
func (f *FakeButton) Pressed() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, nil
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the button as closed.
func (f *FakeButton) Close() error {
	f.Closed = true
	return nil
}

// FakeLED records every state written to it.
type FakeLED struct {
	// On is the current state.
	On bool

	// Writes records every Set call in order.
	Writes []bool

	// SetError, if set, will be returned by Set()
	SetError error

	Closed bool
}

// Set records the write.
func (f *FakeLED) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.On = on
	f.Writes = append(f.Writes, on)
	return nil
}

// Close marks the LED as closed.
func (f *FakeLED) Close() error {
	f.Closed = true
	return nil
}
