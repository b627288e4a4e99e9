package types

// Status is the daemon's controller snapshot.
// This struct is shared between the daemon and client packages.
type Status struct {
	// Charge is the accumulated battery percentage.
	Charge float64 `json:"charge"`
	// LightOn reports whether the light output is driven high.
	LightOn bool `json:"light_on"`
	// Charging reports whether charge-window mode is currently
	// charging. Always true when the window is disabled.
	Charging bool `json:"charging"`
	// ChargeWindow reports whether charge-window mode is enabled.
	ChargeWindow bool `json:"charge_window"`
	// LastReading is the raw sensor reading from the most recent cycle.
	LastReading int `json:"last_reading"`
	// Cycles is the number of completed control loop cycles.
	Cycles uint64 `json:"cycles"`
	// LoopRate is the measured cycle rate over the last minute, in
	// cycles per second.
	LoopRate float64 `json:"loop_rate"`
	// MissedCycles is how many cycles the loop fell short of the
	// configured rate over the last minute.
	MissedCycles int `json:"missed_cycles"`
	// Version is the daemon version.
	Version string `json:"version"`
}
