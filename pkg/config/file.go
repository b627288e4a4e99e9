package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/solbatt/solbatt/pkg/utils/ptr"
)

var defaultFileConfig = &RawFileConfig{
	LowBatteryLimit:    ptr.To(10.0),
	HighBatteryLimit:   ptr.To(90.0),
	StartChargingBelow: ptr.To(20.0),
	// A full charge from the low to the high limit takes 30 simulated
	// seconds under average light, at 20 cycles per second.
	SecondsToFullCharge: ptr.To(30.0),
	LoopsPerSecond:      ptr.To(20),
	AverageLightLevel:   ptr.To(530),
	ChargeWindow:        ptr.To(false),
	AllowNonRootAccess:  ptr.To(false),

	Hardware:   ptr.To(HardwareSim),
	GPIOChip:   ptr.To("gpiochip0"),
	LEDPin:     ptr.To(17),
	ButtonPin:  ptr.To(27),
	IIODevice:  ptr.To("/sys/bus/iio/devices/iio:device0"),
	IIOChannel: ptr.To(0),

	TelemetryPath:                ptr.To("-"),
	TelemetryReadyTimeoutSeconds: ptr.To(10),
	MQTTBroker:                   ptr.To(""),
	MQTTTopic:                    ptr.To("solbatt/telemetry"),

	LightOnSchedule:  ptr.To(""),
	LightOffSchedule: ptr.To(""),
}

var _ Config = &File{}

// File is a Config backed by a JSON file.
type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

// NewFile loads a File config from configPath. A missing or empty file
// yields the defaults.
func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

// NewFileFromConfig wraps an already-parsed RawFileConfig.
func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}

	return &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}
}

// RawFileConfig is the on-disk JSON shape. All fields are pointers so an
// absent field falls back to the default instead of a zero.
type RawFileConfig struct {
	LowBatteryLimit     *float64 `json:"lowBatteryLimit,omitempty"`
	HighBatteryLimit    *float64 `json:"highBatteryLimit,omitempty"`
	StartChargingBelow  *float64 `json:"startChargingBelow,omitempty"`
	SecondsToFullCharge *float64 `json:"secondsToFullCharge,omitempty"`
	LoopsPerSecond      *int     `json:"loopsPerSecond,omitempty"`
	AverageLightLevel   *int     `json:"averageLightLevel,omitempty"`
	ChargeWindow        *bool    `json:"chargeWindow,omitempty"`
	AllowNonRootAccess  *bool    `json:"allowNonRootAccess,omitempty"`

	Hardware   *string `json:"hardware,omitempty"`
	GPIOChip   *string `json:"gpioChip,omitempty"`
	LEDPin     *int    `json:"ledPin,omitempty"`
	ButtonPin  *int    `json:"buttonPin,omitempty"`
	IIODevice  *string `json:"iioDevice,omitempty"`
	IIOChannel *int    `json:"iioChannel,omitempty"`

	TelemetryPath                *string `json:"telemetryPath,omitempty"`
	TelemetryReadyTimeoutSeconds *int    `json:"telemetryReadyTimeoutSeconds,omitempty"`
	MQTTBroker                   *string `json:"mqttBroker,omitempty"`
	MQTTTopic                    *string `json:"mqttTopic,omitempty"`

	LightOnSchedule  *string `json:"lightOnSchedule,omitempty"`
	LightOffSchedule *string `json:"lightOffSchedule,omitempty"`
}

// NewRawFileConfigFromConfig snapshots a Config into its on-disk shape.
func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	return &RawFileConfig{
		LowBatteryLimit:     ptr.To(c.LowBatteryLimit()),
		HighBatteryLimit:    ptr.To(c.HighBatteryLimit()),
		StartChargingBelow:  ptr.To(c.StartChargingBelow()),
		SecondsToFullCharge: ptr.To(c.SecondsToFullCharge()),
		LoopsPerSecond:      ptr.To(c.LoopsPerSecond()),
		AverageLightLevel:   ptr.To(c.AverageLightLevel()),
		ChargeWindow:        ptr.To(c.ChargeWindow()),
		AllowNonRootAccess:  ptr.To(c.AllowNonRootAccess()),

		Hardware:   ptr.To(c.Hardware()),
		GPIOChip:   ptr.To(c.GPIOChip()),
		LEDPin:     ptr.To(c.LEDPin()),
		ButtonPin:  ptr.To(c.ButtonPin()),
		IIODevice:  ptr.To(c.IIODevice()),
		IIOChannel: ptr.To(c.IIOChannel()),

		TelemetryPath:                ptr.To(c.TelemetryPath()),
		TelemetryReadyTimeoutSeconds: ptr.To(int(c.TelemetryReadyTimeout() / time.Second)),
		MQTTBroker:                   ptr.To(c.MQTTBroker()),
		MQTTTopic:                    ptr.To(c.MQTTTopic()),

		LightOnSchedule:  ptr.To(c.LightOnSchedule()),
		LightOffSchedule: ptr.To(c.LightOffSchedule()),
	}, nil
}

// get returns *field if set, falling back to *def. The caller must hold
// at least a read lock.
func get[T any](field, def *T) T {
	if field != nil {
		return *field
	}
	return *def
}

func (f *File) LowBatteryLimit() float64 {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.LowBatteryLimit, defaultFileConfig.LowBatteryLimit)
}

func (f *File) HighBatteryLimit() float64 {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.HighBatteryLimit, defaultFileConfig.HighBatteryLimit)
}

func (f *File) StartChargingBelow() float64 {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.StartChargingBelow, defaultFileConfig.StartChargingBelow)
}

func (f *File) SecondsToFullCharge() float64 {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.SecondsToFullCharge, defaultFileConfig.SecondsToFullCharge)
}

func (f *File) LoopsPerSecond() int {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.LoopsPerSecond, defaultFileConfig.LoopsPerSecond)
}

func (f *File) AverageLightLevel() int {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.AverageLightLevel, defaultFileConfig.AverageLightLevel)
}

func (f *File) ChargeWindow() bool {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.ChargeWindow, defaultFileConfig.ChargeWindow)
}

func (f *File) AllowNonRootAccess() bool {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.AllowNonRootAccess, defaultFileConfig.AllowNonRootAccess)
}

func (f *File) Hardware() string {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.Hardware, defaultFileConfig.Hardware)
}

func (f *File) GPIOChip() string {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.GPIOChip, defaultFileConfig.GPIOChip)
}

func (f *File) LEDPin() int {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.LEDPin, defaultFileConfig.LEDPin)
}

func (f *File) ButtonPin() int {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.ButtonPin, defaultFileConfig.ButtonPin)
}

func (f *File) IIODevice() string {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.IIODevice, defaultFileConfig.IIODevice)
}

func (f *File) IIOChannel() int {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.IIOChannel, defaultFileConfig.IIOChannel)
}

func (f *File) TelemetryPath() string {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.TelemetryPath, defaultFileConfig.TelemetryPath)
}

func (f *File) TelemetryReadyTimeout() time.Duration {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return time.Duration(get(f.c.TelemetryReadyTimeoutSeconds, defaultFileConfig.TelemetryReadyTimeoutSeconds)) * time.Second
}

func (f *File) MQTTBroker() string {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.MQTTBroker, defaultFileConfig.MQTTBroker)
}

func (f *File) MQTTTopic() string {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.MQTTTopic, defaultFileConfig.MQTTTopic)
}

func (f *File) LightOnSchedule() string {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.LightOnSchedule, defaultFileConfig.LightOnSchedule)
}

func (f *File) LightOffSchedule() string {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return get(f.c.LightOffSchedule, defaultFileConfig.LightOffSchedule)
}

func (f *File) SetHighBatteryLimit(v float64) {
	if f.c == nil {
		panic("config is nil")
	}

	if v > 100 || v <= f.LowBatteryLimit() {
		panic("high battery limit must be at most 100 and greater than the low limit")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.HighBatteryLimit = &v
}

func (f *File) SetLowBatteryLimit(v float64) {
	if f.c == nil {
		panic("config is nil")
	}

	if v < 0 || v >= f.HighBatteryLimit() {
		panic("low battery limit must be between 0 and the high limit")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.LowBatteryLimit = &v
}

func (f *File) SetStartChargingBelow(v float64) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.StartChargingBelow = &v
}

func (f *File) SetChargeWindow(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.ChargeWindow = &b
}

func (f *File) SetAllowNonRootAccess(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.AllowNonRootAccess = &b
}

func (f *File) SetLightOnSchedule(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.LightOnSchedule = &s
}

func (f *File) SetLightOffSchedule(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.LightOffSchedule = &s
}

// LoopInterval derives the pacing delay from LoopsPerSecond. A
// non-positive loops-per-second falls back to the default.
func (f *File) LoopInterval() time.Duration {
	lps := f.LoopsPerSecond()
	if lps <= 0 {
		lps = *defaultFileConfig.LoopsPerSecond
	}
	return time.Second / time.Duration(lps)
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		// If the file is empty, return the empty config.
		// Do not make f.c a nil.
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

// LogrusFields returns the effective config for startup logging.
func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"lowBatteryLimit":     f.LowBatteryLimit(),
		"highBatteryLimit":    f.HighBatteryLimit(),
		"startChargingBelow":  f.StartChargingBelow(),
		"secondsToFullCharge": f.SecondsToFullCharge(),
		"loopsPerSecond":      f.LoopsPerSecond(),
		"averageLightLevel":   f.AverageLightLevel(),
		"chargeWindow":        f.ChargeWindow(),
		"hardware":            f.Hardware(),
		"telemetryPath":       f.TelemetryPath(),
		"mqttBroker":          f.MQTTBroker(),
	}
}
