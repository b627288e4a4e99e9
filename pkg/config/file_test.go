package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solbatt/solbatt/pkg/utils/ptr"
)

func TestNewFileMissingFileYieldsDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)

	assert.Equal(t, 10.0, f.LowBatteryLimit())
	assert.Equal(t, 90.0, f.HighBatteryLimit())
	assert.Equal(t, 20.0, f.StartChargingBelow())
	assert.Equal(t, 30.0, f.SecondsToFullCharge())
	assert.Equal(t, 20, f.LoopsPerSecond())
	assert.Equal(t, 530, f.AverageLightLevel())
	assert.False(t, f.ChargeWindow())
	assert.Equal(t, HardwareSim, f.Hardware())
	assert.Equal(t, "-", f.TelemetryPath())
	assert.Equal(t, 10*time.Second, f.TelemetryReadyTimeout())
}

func TestNewFileEmptyFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0644))

	f, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, 90.0, f.HighBatteryLimit())
}

func TestNewFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFile(path)
	require.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solbatt.json")

	f, err := NewFile(path)
	require.NoError(t, err)

	f.SetHighBatteryLimit(75)
	f.SetChargeWindow(true)
	f.SetLightOnSchedule("0 18 * * *")
	require.NoError(t, f.Save())

	g, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, 75.0, g.HighBatteryLimit())
	assert.True(t, g.ChargeWindow())
	assert.Equal(t, "0 18 * * *", g.LightOnSchedule())
	// Untouched fields still come from defaults.
	assert.Equal(t, 10.0, g.LowBatteryLimit())
}

func TestLoopInterval(t *testing.T) {
	tests := []struct {
		name string
		lps  *int
		want time.Duration
	}{
		{name: "default", lps: nil, want: 50 * time.Millisecond},
		{name: "ten per second", lps: ptr.To(10), want: 100 * time.Millisecond},
		{name: "zero falls back to default", lps: ptr.To(0), want: 50 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFileFromConfig(&RawFileConfig{LoopsPerSecond: tt.lps}, "")
			if got := f.LoopInterval(); got != tt.want {
				t.Errorf("LoopInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetLimitsValidation(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{}, "")

	assert.Panics(t, func() { f.SetHighBatteryLimit(101) })
	assert.Panics(t, func() { f.SetHighBatteryLimit(10) }) // equals the low limit
	assert.Panics(t, func() { f.SetLowBatteryLimit(-1) })
	assert.Panics(t, func() { f.SetLowBatteryLimit(90) }) // equals the high limit

	assert.NotPanics(t, func() { f.SetHighBatteryLimit(80) })
	assert.NotPanics(t, func() { f.SetLowBatteryLimit(5) })
}

func TestRawFileConfigRoundTripFromConfig(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{
		HighBatteryLimit: ptr.To(70.0),
		MQTTBroker:       ptr.To("tcp://localhost:1883"),
	}, "")

	raw, err := NewRawFileConfigFromConfig(f)
	require.NoError(t, err)

	assert.Equal(t, 70.0, *raw.HighBatteryLimit)
	assert.Equal(t, "tcp://localhost:1883", *raw.MQTTBroker)
	// Defaults are materialized in the snapshot.
	assert.Equal(t, 530, *raw.AverageLightLevel)
}
