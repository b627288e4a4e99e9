package pin

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// SimLight is a hardware-free light source. It produces a triangle wave
// between Min and Max so the accumulated charge and the plotted telemetry
// move the same way they would with a photoresistor under changing light.
type SimLight struct {
	// Min and Max bound the generated readings.
	Min int
	Max int
	// Step is how much the reading moves per Read call.
	Step int

	mu      sync.Mutex
	current int
	rising  bool
}

// NewSimLight returns a SimLight centered on the given average level.
func NewSimLight(average int) *SimLight {
	min := average / 2
	max := average + average/2
	if max > ADCMax {
		max = ADCMax
	}
	return &SimLight{
		Min:     min,
		Max:     max,
		Step:    7,
		current: average,
		rising:  true,
	}
}

// Read returns the next point of the triangle wave.
func (s *SimLight) Read() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rising {
		s.current += s.Step
		if s.current >= s.Max {
			s.current = s.Max
			s.rising = false
		}
	} else {
		s.current -= s.Step
		if s.current <= s.Min {
			s.current = s.Min
			s.rising = true
		}
	}

	return s.current, nil
}

// Close is a no-op for the simulated light.
func (s *SimLight) Close() error {
	return nil
}

// SimButton is a hardware-free button. It reads as released until Press
// or Release is called, which the daemon exposes so a simulated press can
// be injected at runtime.
type SimButton struct {
	mu      sync.Mutex
	pressed bool
}

// NewSimButton returns a released SimButton.
func NewSimButton() *SimButton {
	return &SimButton{}
}

// Pressed returns the current simulated state.
func (s *SimButton) Pressed() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pressed, nil
}

// Press latches the button down.
func (s *SimButton) Press() {
	s.mu.Lock()
	s.pressed = true
	s.mu.Unlock()
}

// Release lets the button back up.
func (s *SimButton) Release() {
	s.mu.Lock()
	s.pressed = false
	s.mu.Unlock()
}

// Close is a no-op for the simulated button.
func (s *SimButton) Close() error {
	return nil
}

// SimLED drives no hardware, it only logs transitions.
type SimLED struct {
	mu sync.Mutex
	on bool
}

// NewSimLED returns an off SimLED.
func NewSimLED() *SimLED {
	return &SimLED{}
}

// Set records and logs the new state.
func (s *SimLED) Set(on bool) error {
	s.mu.Lock()
	changed := s.on != on
	s.on = on
	s.mu.Unlock()

	if changed {
		logrus.WithField("on", on).Debug("simulated LED switched")
	}
	return nil
}

// On returns the current state.
func (s *SimLED) On() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

// Close is a no-op for the simulated LED.
func (s *SimLED) Close() error {
	return nil
}
