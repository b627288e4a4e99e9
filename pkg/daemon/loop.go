package daemon

import (
	"context"
	"math"
	"reflect"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/solbatt/solbatt/pkg/controller"
	"github.com/solbatt/solbatt/pkg/events"
	"github.com/solbatt/solbatt/pkg/telemetry"
)

// rateWindow is how far back the cycle recorder looks when reporting the
// effective loop rate.
const rateWindow = time.Minute

// CycleRecorder records the last N control loop cycle times, so the
// daemon can report how close the loop runs to its configured rate.
type CycleRecorder struct {
	MaxRecordCount int
	CycleTimes     []time.Time
	mu             *sync.Mutex
}

// NewCycleRecorder returns a new CycleRecorder.
func NewCycleRecorder(maxRecordCount int) *CycleRecorder {
	return &CycleRecorder{
		MaxRecordCount: maxRecordCount,
		CycleTimes:     make([]time.Time, 0),
		mu:             &sync.Mutex{},
	}
}

// AddNow adds a new record with the current time.
func (r *CycleRecorder) AddNow() {
	r.Add(time.Now())
}

// Add adds a new record.
func (r *CycleRecorder) Add(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Round to strip the monotonic clock reading, so time.Since stays
	// accurate across host suspends.
	t = t.Round(0)

	if len(r.CycleTimes) >= r.MaxRecordCount {
		r.CycleTimes = r.CycleTimes[1:]
	}
	r.CycleTimes = append(r.CycleTimes, t)
}

// CountIn returns the number of records within the last duration.
func (r *CycleRecorder) CountIn(last time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for i := len(r.CycleTimes) - 1; i >= 0; i-- {
		if time.Since(r.CycleTimes[i]) > last {
			break
		}
		count++
	}
	return count
}

// LastCycle returns the most recent record, or the zero time if none.
func (r *CycleRecorder) LastCycle() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.CycleTimes) == 0 {
		return time.Time{}
	}
	return r.CycleTimes[len(r.CycleTimes)-1]
}

// RateIn returns the measured cycle rate over the last duration, in
// cycles per second.
func (r *CycleRecorder) RateIn(last time.Duration) float64 {
	if last <= 0 {
		return 0
	}
	return float64(r.CountIn(last)) / last.Seconds()
}

// MissedIn returns how many cycles fell short of the expected count for
// the last duration at the given interval. Windows larger than the
// observed history are shortened, so a freshly started loop does not
// report everything before startup as missed.
func (r *CycleRecorder) MissedIn(last time.Duration, interval time.Duration) int {
	if interval <= 0 {
		return 0
	}

	r.mu.Lock()
	var oldest time.Time
	if len(r.CycleTimes) > 0 {
		oldest = r.CycleTimes[0]
	}
	r.mu.Unlock()

	if oldest.IsZero() {
		return 0
	}
	if observed := time.Since(oldest); observed < last {
		last = observed
	}

	expected := int(last / interval)
	missed := expected - r.CountIn(last)
	if missed < 0 {
		return 0
	}
	return missed
}

// runLoop drives the controller at the configured cadence until the
// context is cancelled.
func (d *Daemon) runLoop(ctx context.Context) {
	interval := d.cfg.LoopInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logrus.WithField("interval", interval).Debug("control loop starting")

	for {
		select {
		case <-ctx.Done():
			logrus.Debug("control loop stopping")
			return
		case <-ticker.C:
			d.cycle()
		}
	}
}

// cycle runs one controller cycle and fans the result out to the event
// hub and the status log.
func (d *Daemon) cycle() {
	if err := d.ctrl.Cycle(); err != nil {
		logrus.WithError(err).Error("control loop cycle failed")
		return
	}

	d.recorder.AddNow()

	rec := telemetry.NewRecord(d.ctrl.Charge(), controller.Rescale(d.ctrl.LastReading()))
	d.hub.Publish(events.TelemetryCycle, rec)

	d.logStatus()
}

var lastLogTime time.Time

type loopStatus struct {
	chargePercent int
	lightOn       bool
	charging      bool
}

var lastStatus loopStatus

// logStatus logs the loop state, demoting repeats to trace so a steady
// loop does not flood the log at 20 cycles per second.
func (d *Daemon) logStatus() {
	currentStatus := loopStatus{
		chargePercent: int(math.Floor(d.ctrl.Charge())),
		lightOn:       d.ctrl.LightOn(),
		charging:      d.ctrl.Charging(),
	}

	fields := logrus.Fields{
		"charge":   d.ctrl.Charge(),
		"light":    d.ctrl.LastReading(),
		"lightOn":  d.ctrl.LightOn(),
		"charging": d.ctrl.Charging(),
	}

	defer func() { lastLogTime = time.Now() }()

	// Skip printing unless something visible changed or a second passed.
	if time.Since(lastLogTime) < time.Second && reflect.DeepEqual(lastStatus, currentStatus) {
		logrus.WithFields(fields).Trace("control loop status")
		return
	}

	logrus.WithFields(fields).Debug("control loop status")

	lastStatus = currentStatus
}
