package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightSchedulerConfigure(t *testing.T) {
	var calls []bool
	s := NewLightScheduler(func(on bool) error {
		calls = append(calls, on)
		return nil
	})

	tests := []struct {
		name    string
		onSpec  string
		offSpec string
		wantErr bool
	}{
		{name: "both empty", onSpec: "", offSpec: "", wantErr: false},
		{name: "valid specs", onSpec: "0 18 * * *", offSpec: "0 23 * * *", wantErr: false},
		{name: "only on", onSpec: "*/5 * * * *", offSpec: "", wantErr: false},
		{name: "invalid on spec", onSpec: "not cron", offSpec: "", wantErr: true},
		{name: "invalid off spec", onSpec: "", offSpec: "61 * * * *", wantErr: true},
		{name: "six fields rejected", onSpec: "0 0 18 * * *", offSpec: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Configure(tt.onSpec, tt.offSpec)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}

	// Configure alone must never switch the light.
	assert.Empty(t, calls)
}

func TestLightSchedulerReconfigureReplacesEntries(t *testing.T) {
	s := NewLightScheduler(func(bool) error { return nil })

	require.NoError(t, s.Configure("0 18 * * *", "0 23 * * *"))
	firstOn, firstOff := s.onID, s.offID
	assert.NotZero(t, firstOn)
	assert.NotZero(t, firstOff)

	require.NoError(t, s.Configure("0 19 * * *", ""))
	assert.NotEqual(t, firstOn, s.onID)
	assert.Zero(t, s.offID, "empty spec must clear the entry")
}

func TestLightSchedulerInvalidSpecKeepsOldEntries(t *testing.T) {
	s := NewLightScheduler(func(bool) error { return nil })

	require.NoError(t, s.Configure("0 18 * * *", "0 23 * * *"))
	on, off := s.onID, s.offID

	require.Error(t, s.Configure("garbage", "0 22 * * *"))
	assert.Equal(t, on, s.onID)
	assert.Equal(t, off, s.offID)
}

func TestNewLightSchedulerNilFunc(t *testing.T) {
	assert.Panics(t, func() { NewLightScheduler(nil) })
}
