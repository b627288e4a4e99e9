package daemon

import (
	"sync"
	"testing"
	"time"
)

func TestCycleRecorder_CountIn(t *testing.T) {
	type fields struct {
		MaxRecordCount int
		CycleTimes     []time.Time
	}
	type args struct {
		last time.Duration
	}
	tests := []struct {
		name   string
		fields fields
		args   args
		want   int
	}{
		{
			name: "empty recorder",
			fields: fields{
				MaxRecordCount: 10,
				CycleTimes:     nil,
			},
			args: args{
				last: time.Second * 10,
			},
			want: 0,
		},
		{
			name: "all records inside the window",
			fields: fields{
				MaxRecordCount: 10,
				CycleTimes: []time.Time{
					time.Now().Add(-time.Second * 3).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 2).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 1).Add(-10 * time.Millisecond),
				},
			},
			args: args{
				last: time.Second * 10,
			},
			want: 3,
		},
		{
			name: "old records outside the window",
			fields: fields{
				MaxRecordCount: 10,
				CycleTimes: []time.Time{
					time.Now().Add(-time.Second * 30).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 20).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 2).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 1).Add(-10 * time.Millisecond),
				},
			},
			args: args{
				last: time.Second * 10,
			},
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &CycleRecorder{
				MaxRecordCount: tt.fields.MaxRecordCount,
				CycleTimes:     tt.fields.CycleTimes,
				mu:             &sync.Mutex{},
			}
			if got := r.CountIn(tt.args.last); got != tt.want {
				t.Errorf("CountIn() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCycleRecorder_AddEvictsOldest(t *testing.T) {
	r := NewCycleRecorder(3)
	base := time.Now().Add(-time.Second)

	for i := 0; i < 5; i++ {
		r.Add(base.Add(time.Duration(i) * time.Millisecond))
	}

	if len(r.CycleTimes) != 3 {
		t.Fatalf("len(CycleTimes) = %d, want 3", len(r.CycleTimes))
	}
	if got := r.LastCycle(); !got.Equal(base.Add(4 * time.Millisecond).Round(0)) {
		t.Errorf("LastCycle() = %v, want the newest record", got)
	}
}

func TestCycleRecorder_MissedIn(t *testing.T) {
	interval := 100 * time.Millisecond

	t.Run("empty recorder reports nothing missed", func(t *testing.T) {
		r := NewCycleRecorder(100)
		if got := r.MissedIn(time.Second, interval); got != 0 {
			t.Errorf("MissedIn() = %v, want 0", got)
		}
	})

	t.Run("half the cycles missing", func(t *testing.T) {
		r := NewCycleRecorder(100)
		// 5 records over a 1s window that should have held 10.
		for i := 0; i < 5; i++ {
			r.Add(time.Now().Add(-time.Duration(i*2) * interval).Add(-10 * time.Millisecond))
		}
		got := r.MissedIn(time.Second, interval)
		if got < 3 || got > 5 {
			t.Errorf("MissedIn() = %v, want roughly 4", got)
		}
	})

	t.Run("window shortened to observed history", func(t *testing.T) {
		r := NewCycleRecorder(100)
		// Only 200ms of history; a 1min window must not count the
		// time before startup as missed.
		r.Add(time.Now().Add(-200 * time.Millisecond))
		r.Add(time.Now().Add(-100 * time.Millisecond))
		r.Add(time.Now())
		if got := r.MissedIn(time.Minute, interval); got > 1 {
			t.Errorf("MissedIn() = %v, want at most 1", got)
		}
	})
}

func TestCycleRecorder_RateIn(t *testing.T) {
	r := NewCycleRecorder(100)
	for i := 0; i < 20; i++ {
		r.Add(time.Now().Add(-time.Duration(i*50) * time.Millisecond).Add(-5 * time.Millisecond))
	}

	got := r.RateIn(time.Second)
	// 20 records at 50ms spacing is 20 cycles/s; allow slack for the
	// records right at the window edge.
	if got < 15 || got > 21 {
		t.Errorf("RateIn() = %v, want about 20", got)
	}
}
