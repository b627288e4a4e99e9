package config

import "time"

// Config is the controller configuration. The five charge constants
// (limits, seconds to full, loops per second, average light level) are
// what the per-cycle charge coefficient is derived from.
type Config interface {
	LowBatteryLimit() float64
	HighBatteryLimit() float64
	StartChargingBelow() float64
	SecondsToFullCharge() float64
	LoopsPerSecond() int
	AverageLightLevel() int
	ChargeWindow() bool
	AllowNonRootAccess() bool

	Hardware() string
	GPIOChip() string
	LEDPin() int
	ButtonPin() int
	IIODevice() string
	IIOChannel() int

	TelemetryPath() string
	TelemetryReadyTimeout() time.Duration
	MQTTBroker() string
	MQTTTopic() string

	LightOnSchedule() string
	LightOffSchedule() string

	SetHighBatteryLimit(float64)
	SetLowBatteryLimit(float64)
	SetStartChargingBelow(float64)
	SetChargeWindow(bool)
	SetAllowNonRootAccess(bool)
	SetLightOnSchedule(string)
	SetLightOffSchedule(string)

	// LoopInterval is the pacing delay between cycles, derived from
	// LoopsPerSecond.
	LoopInterval() time.Duration

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}

// Hardware backend names accepted in the config file.
const (
	HardwareSim  = "sim"
	HardwareGPIO = "gpio"
)
