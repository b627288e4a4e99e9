// Package daemon runs the charging control loop and serves the HTTP API
// over a unix socket.
package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/solbatt/solbatt/pkg/config"
	"github.com/solbatt/solbatt/pkg/controller"
	"github.com/solbatt/solbatt/pkg/events"
	"github.com/solbatt/solbatt/pkg/pin"
	"github.com/solbatt/solbatt/pkg/telemetry"
)

// Daemon wires the controller, hardware, telemetry and HTTP API
// together.
type Daemon struct {
	cfg       config.Config
	ctrl      *controller.Controller
	recorder  *CycleRecorder
	hub       *events.Hub
	scheduler *LightScheduler

	// simButton is non-nil only with the simulated hardware backend,
	// where button activity is injected over the API.
	simButton *pin.SimButton

	closers []io.Closer
}

// hardware is the set of channels the controller runs against.
type hardware struct {
	sensor pin.AnalogReader
	button pin.Input
	led    pin.Output
	// sim is non-nil for the simulated backend
	sim *pin.SimButton
}

// buildHardware constructs the hardware backend named in the config.
func buildHardware(cfg config.Config) (*hardware, error) {
	switch cfg.Hardware() {
	case config.HardwareSim:
		sim := pin.NewSimButton()
		return &hardware{
			sensor: pin.NewSimLight(cfg.AverageLightLevel()),
			button: sim,
			led:    pin.NewSimLED(),
			sim:    sim,
		}, nil

	case config.HardwareGPIO:
		sensor, err := pin.NewIIOReader(cfg.IIODevice(), cfg.IIOChannel())
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to open light sensor")
		}

		button, err := pin.NewGPIOButton(cfg.GPIOChip(), cfg.ButtonPin())
		if err != nil {
			_ = sensor.Close()
			return nil, pkgerrors.Wrap(err, "failed to open button")
		}

		led, err := pin.NewGPIOLED(cfg.GPIOChip(), cfg.LEDPin())
		if err != nil {
			_ = button.Close()
			_ = sensor.Close()
			return nil, pkgerrors.Wrap(err, "failed to open led")
		}

		return &hardware{sensor: sensor, button: button, led: led}, nil

	default:
		return nil, pkgerrors.Errorf("unknown hardware backend %q", cfg.Hardware())
	}
}

// buildTelemetry opens the line stream and, when a broker is configured,
// the MQTT publisher. A broker that cannot be reached at startup is
// logged and skipped; the line stream is mandatory.
func buildTelemetry(cfg config.Config) (telemetry.Writer, error) {
	lw, err := telemetry.OpenStream(cfg.TelemetryPath(), cfg.TelemetryReadyTimeout())
	if err != nil {
		return nil, err
	}

	broker := cfg.MQTTBroker()
	if broker == "" {
		return lw, nil
	}

	mq, err := telemetry.NewMQTTPublisher(broker, cfg.MQTTTopic(), "solbatt")
	if err != nil {
		logrus.WithError(err).Warn("mqtt telemetry disabled")
		return lw, nil
	}

	logrus.WithFields(logrus.Fields{"broker": broker, "topic": cfg.MQTTTopic()}).Info("mqtt telemetry enabled")
	return telemetry.MultiWriter(lw, mq), nil
}

func (d *Daemon) publishLight(on bool) {
	d.hub.Publish(events.LightChanged, events.LightChangedEvent{On: on, Ts: time.Now().Unix()})
}

// Run starts the daemon and blocks until SIGINT or SIGTERM.
func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	conf, err := config.NewFile(configPath)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to parse config during startup")
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.Infof("config reloaded")
		}
	}()

	hw, err := buildHardware(conf)
	if err != nil {
		return err
	}

	out, err := buildTelemetry(conf)
	if err != nil {
		return err
	}

	ctrl := controller.New(conf, hw.sensor, hw.button, hw.led, out)

	d := &Daemon{
		cfg:       conf,
		ctrl:      ctrl,
		recorder:  NewCycleRecorder(conf.LoopsPerSecond() * int(rateWindow/time.Second)),
		hub:       events.NewHub(),
		simButton: hw.sim,
		closers:   []io.Closer{out, hw.led, hw.button, hw.sensor},
	}

	d.scheduler = NewLightScheduler(func(on bool) error {
		err := ctrl.SetLight(on)
		if err == nil {
			d.publishLight(on)
		}
		return err
	})
	if err := d.scheduler.Configure(conf.LightOnSchedule(), conf.LightOffSchedule()); err != nil {
		logrus.WithError(err).Warn("light schedule in config is invalid, ignoring")
	}
	d.scheduler.Start()

	router := d.setupRoutes()
	srv := &http.Server{
		Handler: router,
	}

	// A previous unclean exit can leave the socket file around.
	_ = os.Remove(unixSocketPath)

	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to listen on %s", unixSocketPath)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		if err := os.Chmod(unixSocketPath, 0777); err != nil {
			return pkgerrors.Wrapf(err, "failed to chmod %s", unixSocketPath)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	loopCtx, stopLoop := context.WithCancel(context.Background())
	go func() {
		logrus.Debugln("control loop starts")

		d.runLoop(loopCtx)
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("stopping control loop")
	stopLoop()

	logrus.Info("stopping light schedule")
	d.scheduler.Stop()

	if err := ctrl.SetLight(false); err != nil {
		logrus.Errorf("failed to switch the light off before exiting: %v", err)
	}

	logrus.Info("closing hardware and telemetry")
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			logrus.Errorf("failed to close resource: %v", err)
		}
	}

	_ = os.Remove(unixSocketPath)

	logrus.Info("exiting")
	return nil
}
