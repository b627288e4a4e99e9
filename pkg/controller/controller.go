// Package controller implements the charging control loop: read the
// light sensor, accumulate battery charge, emit telemetry, and toggle
// the light on button press edges.
package controller

import (
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/solbatt/solbatt/pkg/config"
	"github.com/solbatt/solbatt/pkg/pin"
	"github.com/solbatt/solbatt/pkg/telemetry"
)

// Controller owns the loop state. All methods are safe for concurrent
// use; the daemon drives Cycle from the loop goroutine while the HTTP
// handlers read and poke state.
type Controller struct {
	cfg config.Config

	sensor pin.AnalogReader
	button pin.Input
	led    pin.Output
	out    telemetry.Writer

	// coefficient converts one raw sensor count into a percentage
	// increment per cycle. Derived once at construction:
	// ((high - low) / secondsToFull) / loopsPerSecond / averageLight.
	coefficient float64

	mu          sync.Mutex
	charge      float64
	lightOn     bool
	prevPressed bool
	charging    bool
	lastReading int
	cycles      uint64
}

// New builds a Controller. The charge starts at the low battery limit
// and charging mode starts enabled.
func New(cfg config.Config, sensor pin.AnalogReader, button pin.Input, led pin.Output, out telemetry.Writer) *Controller {
	return &Controller{
		cfg:         cfg,
		sensor:      sensor,
		button:      button,
		led:         led,
		out:         out,
		coefficient: Coefficient(cfg),
		charge:      cfg.LowBatteryLimit(),
		charging:    true,
	}
}

// Coefficient derives the per-count charge increment from the five
// config constants.
func Coefficient(cfg config.Config) float64 {
	return ((cfg.HighBatteryLimit() - cfg.LowBatteryLimit()) / cfg.SecondsToFullCharge()) /
		float64(cfg.LoopsPerSecond()) / float64(cfg.AverageLightLevel())
}

// Rescale maps a raw reading from [0, pin.ADCMax] to [0, 100], rounding
// to the nearest percent so the average light level (530) plots as 52.
func Rescale(raw int) int {
	return (raw*100 + pin.ADCMax/2) / pin.ADCMax
}

// Cycle runs one iteration of the control loop: sense, accumulate,
// report, edge-detect. Pacing is the caller's job.
func (c *Controller) Cycle() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.sensor.Read()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to read light sensor")
	}
	c.lastReading = raw

	c.accumulate(raw)

	if err := c.out.Write(telemetry.NewRecord(c.charge, Rescale(raw))); err != nil {
		return pkgerrors.Wrap(err, "failed to emit telemetry")
	}

	pressed, err := c.button.Pressed()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to read button")
	}

	// Toggle only on a press edge. Release edges are observed but do
	// nothing. The baseline is always updated.
	if pressed && !c.prevPressed {
		c.lightOn = !c.lightOn
		if err := c.led.Set(c.lightOn); err != nil {
			c.prevPressed = pressed
			return pkgerrors.Wrap(err, "failed to drive led")
		}
		logrus.WithField("lightOn", c.lightOn).Debug("button press edge, light toggled")
	}
	c.prevPressed = pressed

	c.cycles++
	return nil
}

// accumulate applies one cycle's charge increment. In the default mode
// the charge grows unconditionally, exactly like the lesson hardware.
// With the charge window enabled, charging stops at the high limit and
// resumes below the start-charging threshold, and the charge is clamped
// to the configured window.
func (c *Controller) accumulate(raw int) {
	increment := float64(raw) * c.coefficient

	if !c.cfg.ChargeWindow() {
		c.charge += increment
		return
	}

	if c.charging {
		c.charge += increment
		if c.charge >= c.cfg.HighBatteryLimit() {
			c.charge = c.cfg.HighBatteryLimit()
			c.charging = false
			logrus.WithField("charge", c.charge).Info("high battery limit reached, charging stopped")
		}
	} else if c.charge < c.cfg.StartChargingBelow() {
		c.charging = true
		logrus.WithField("charge", c.charge).Info("charge below start threshold, charging resumed")
	}

	if c.charge < c.cfg.LowBatteryLimit() {
		c.charge = c.cfg.LowBatteryLimit()
	}
}

// Charge returns the accumulated battery percentage.
func (c *Controller) Charge() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.charge
}

// SetCharge overwrites the accumulated battery percentage.
func (c *Controller) SetCharge(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.charge = v
}

// LightOn returns the light state.
func (c *Controller) LightOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lightOn
}

// SetLight forces the light state and drives the LED, bypassing the
// button.
func (c *Controller) SetLight(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.led.Set(on); err != nil {
		return pkgerrors.Wrap(err, "failed to drive led")
	}
	c.lightOn = on
	return nil
}

// ToggleLight flips the light state and drives the LED, returning the
// new state.
func (c *Controller) ToggleLight() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	on := !c.lightOn
	if err := c.led.Set(on); err != nil {
		return c.lightOn, pkgerrors.Wrap(err, "failed to drive led")
	}
	c.lightOn = on
	return on, nil
}

// Charging reports whether charge-window mode is currently charging.
// Always true in the default mode.
func (c *Controller) Charging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.charging
}

// LastReading returns the raw sensor reading from the most recent cycle.
func (c *Controller) LastReading() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReading
}

// Cycles returns the number of completed cycles.
func (c *Controller) Cycles() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cycles
}
