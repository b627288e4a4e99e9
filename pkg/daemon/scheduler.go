package daemon

import (
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// LightScheduler switches the light on a cron schedule, like a lamp
// timer. An empty spec disables that side of the schedule.
type LightScheduler struct {
	setLight func(bool) error

	mu    sync.Mutex
	cron  *cron.Cron
	onID  cron.EntryID
	offID cron.EntryID
}

// NewLightScheduler returns a stopped scheduler calling setLight at the
// configured times.
func NewLightScheduler(setLight func(bool) error) *LightScheduler {
	if setLight == nil {
		panic("setLight function cannot be nil")
	}

	return &LightScheduler{
		setLight: setLight,
		cron:     cron.New(),
	}
}

// Configure validates and installs the on/off cron specs, replacing any
// previous schedule. Standard 5-field cron syntax.
func (s *LightScheduler) Configure(onSpec, offSpec string) error {
	// Validate both before touching the installed entries.
	if onSpec != "" {
		if _, err := cron.ParseStandard(onSpec); err != nil {
			return pkgerrors.Wrapf(err, "invalid light-on schedule %q", onSpec)
		}
	}
	if offSpec != "" {
		if _, err := cron.ParseStandard(offSpec); err != nil {
			return pkgerrors.Wrapf(err, "invalid light-off schedule %q", offSpec)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.onID != 0 {
		s.cron.Remove(s.onID)
		s.onID = 0
	}
	if s.offID != 0 {
		s.cron.Remove(s.offID)
		s.offID = 0
	}

	if onSpec != "" {
		id, err := s.cron.AddFunc(onSpec, func() { s.run(true) })
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to install light-on schedule %q", onSpec)
		}
		s.onID = id
	}
	if offSpec != "" {
		id, err := s.cron.AddFunc(offSpec, func() { s.run(false) })
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to install light-off schedule %q", offSpec)
		}
		s.offID = id
	}

	return nil
}

func (s *LightScheduler) run(on bool) {
	if err := s.setLight(on); err != nil {
		logrus.WithError(err).Error("scheduled light switch failed")
		return
	}
	logrus.WithField("on", on).Info("scheduled light switch")
}

// Start begins running the schedule.
func (s *LightScheduler) Start() {
	s.cron.Start()
}

// Stop stops the schedule and waits for a running job to finish.
func (s *LightScheduler) Stop() {
	<-s.cron.Stop().Done()
}
