package controller

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solbatt/solbatt/pkg/config"
	"github.com/solbatt/solbatt/pkg/pin"
	"github.com/solbatt/solbatt/pkg/telemetry"
	"github.com/solbatt/solbatt/pkg/utils/ptr"
)

func testConfig(overrides func(*config.RawFileConfig)) config.Config {
	raw := &config.RawFileConfig{
		LowBatteryLimit:     ptr.To(10.0),
		HighBatteryLimit:    ptr.To(90.0),
		StartChargingBelow:  ptr.To(20.0),
		SecondsToFullCharge: ptr.To(30.0),
		LoopsPerSecond:      ptr.To(20),
		AverageLightLevel:   ptr.To(530),
		ChargeWindow:        ptr.To(false),
	}
	if overrides != nil {
		overrides(raw)
	}
	return config.NewFileFromConfig(raw, "")
}

func TestCoefficient(t *testing.T) {
	cfg := testConfig(nil)

	want := ((90.0 - 10.0) / 30.0) / 20.0 / 530.0
	assert.InDelta(t, want, Coefficient(cfg), 1e-15)
}

func TestRescale(t *testing.T) {
	tests := []struct {
		name string
		raw  int
		want int
	}{
		{name: "dark", raw: 0, want: 0},
		{name: "full scale", raw: 1023, want: 100},
		{name: "average light", raw: 530, want: 52},
		{name: "half scale", raw: 512, want: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rescale(tt.raw); got != tt.want {
				t.Errorf("Rescale(%d) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCycleAccumulation(t *testing.T) {
	cfg := testConfig(nil)
	readings := []int{0, 123, 530, 1023, 777, 1, 999}

	sensor := pin.NewFakeAnalog(readings...)
	button := pin.NewFakeButton(false)
	led := &pin.FakeLED{}
	out := &telemetry.Recorder{}

	c := New(cfg, sensor, button, led, out)
	require.Equal(t, 10.0, c.Charge())

	for range readings {
		require.NoError(t, c.Cycle())
	}

	want := 10.0
	for _, r := range readings {
		want += float64(r) * Coefficient(cfg)
	}
	assert.InDelta(t, want, c.Charge(), 1e-12)
	assert.Equal(t, uint64(len(readings)), c.Cycles())
	assert.Len(t, out.Records, len(readings))
	assert.Empty(t, led.Writes, "no button activity must mean no LED writes")
}

func TestCycleBoundaryReadings(t *testing.T) {
	cfg := testConfig(nil)

	t.Run("dark sensor adds nothing", func(t *testing.T) {
		c := New(cfg, pin.NewFakeAnalog(0), pin.NewFakeButton(false), &pin.FakeLED{}, &telemetry.Recorder{})
		require.NoError(t, c.Cycle())
		assert.Equal(t, 10.0, c.Charge())
	})

	t.Run("full scale adds coefficient times 1023", func(t *testing.T) {
		c := New(cfg, pin.NewFakeAnalog(1023), pin.NewFakeButton(false), &pin.FakeLED{}, &telemetry.Recorder{})
		require.NoError(t, c.Cycle())
		assert.InDelta(t, 10.0+1023*Coefficient(cfg), c.Charge(), 1e-12)
	})
}

func TestTelemetryLine(t *testing.T) {
	// One cycle at the average light level from the initial charge must
	// plot exactly one percentage-per-loop above the low limit.
	cfg := testConfig(nil)

	out := &telemetry.Recorder{}
	c := New(cfg, pin.NewFakeAnalog(530), pin.NewFakeButton(false), &pin.FakeLED{}, out)

	require.NoError(t, c.Cycle())

	require.Len(t, out.Records, 1)
	assert.Equal(t, "0, 100, 10.1333, 52", out.Records[0].String())
}

func TestPressEdgeToggling(t *testing.T) {
	cfg := testConfig(nil)

	// Edge pattern: toggles must happen on cycles 2 and 5 only.
	samples := []bool{false, true, true, false, true}

	led := &pin.FakeLED{}
	c := New(cfg, pin.NewFakeAnalog(530), pin.NewFakeButton(samples...), led, &telemetry.Recorder{})

	wantLight := []bool{false, true, true, true, false}
	for i := range samples {
		require.NoError(t, c.Cycle())
		assert.Equalf(t, wantLight[i], c.LightOn(), "light state after cycle %d", i+1)
	}

	// Two press edges, two LED writes: on, then off.
	assert.Equal(t, []bool{true, false}, led.Writes)
}

func TestHeldButtonIsIdempotent(t *testing.T) {
	cfg := testConfig(nil)

	tests := []struct {
		name    string
		samples []bool
		toggles int
	}{
		{name: "held down", samples: []bool{true, true, true, true}, toggles: 1},
		{name: "held up", samples: []bool{false, false, false, false}, toggles: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			led := &pin.FakeLED{}
			c := New(cfg, pin.NewFakeAnalog(100), pin.NewFakeButton(tt.samples...), led, &telemetry.Recorder{})
			for range tt.samples {
				require.NoError(t, c.Cycle())
			}
			assert.Len(t, led.Writes, tt.toggles)
		})
	}
}

func TestChargeWindow(t *testing.T) {
	cfg := testConfig(func(raw *config.RawFileConfig) {
		raw.ChargeWindow = ptr.To(true)
	})

	sensor := pin.NewFakeAnalog(1023)
	c := New(cfg, sensor, pin.NewFakeButton(false), &pin.FakeLED{}, &telemetry.Recorder{})

	// Drive the charge to the high limit.
	c.SetCharge(89.999)
	require.NoError(t, c.Cycle())
	assert.Equal(t, 90.0, c.Charge(), "charge must clamp at the high limit")
	assert.False(t, c.Charging())

	// Above the start threshold, nothing accumulates.
	require.NoError(t, c.Cycle())
	assert.Equal(t, 90.0, c.Charge())

	// Below the start threshold, charging resumes.
	c.SetCharge(19.0)
	require.NoError(t, c.Cycle())
	assert.True(t, c.Charging())

	before := c.Charge()
	require.NoError(t, c.Cycle())
	assert.Greater(t, c.Charge(), before)
}

func TestCycleWithoutWindowNeverClamps(t *testing.T) {
	cfg := testConfig(nil)

	c := New(cfg, pin.NewFakeAnalog(1023), pin.NewFakeButton(false), &pin.FakeLED{}, &telemetry.Recorder{})
	c.SetCharge(99.999)

	for i := 0; i < 100; i++ {
		require.NoError(t, c.Cycle())
	}

	// The lesson behavior: the percentage grows past 100 under enough
	// light.
	assert.Greater(t, c.Charge(), 100.0)
}

func TestSetAndToggleLight(t *testing.T) {
	cfg := testConfig(nil)

	led := &pin.FakeLED{}
	c := New(cfg, pin.NewFakeAnalog(0), pin.NewFakeButton(false), led, &telemetry.Recorder{})

	require.NoError(t, c.SetLight(true))
	assert.True(t, c.LightOn())
	assert.True(t, led.On)

	on, err := c.ToggleLight()
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, led.On)
}

func TestCycleSensorError(t *testing.T) {
	cfg := testConfig(nil)

	sensor := &pin.FakeAnalog{ReadError: assert.AnError}
	c := New(cfg, sensor, pin.NewFakeButton(false), &pin.FakeLED{}, &telemetry.Recorder{})

	err := c.Cycle()
	require.Error(t, err)
	assert.Equal(t, 10.0, c.Charge(), "a failed cycle must not change the charge")
	assert.Equal(t, uint64(0), c.Cycles())
}

func TestAccumulationIsExact(t *testing.T) {
	// The derived coefficient makes a full charge take exactly
	// secondsToFull * loopsPerSecond cycles at the average light level.
	cfg := testConfig(nil)

	c := New(cfg, pin.NewFakeAnalog(530), pin.NewFakeButton(false), &pin.FakeLED{}, &telemetry.Recorder{})

	cycles := 30 * 20
	for i := 0; i < cycles; i++ {
		require.NoError(t, c.Cycle())
	}

	assert.True(t, math.Abs(c.Charge()-90.0) < 1e-9, "got %v", c.Charge())
}
