package client

import (
	"encoding/json"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/solbatt/solbatt/pkg/config"
	"github.com/solbatt/solbatt/pkg/types"
)

// GetStatus returns the daemon's controller snapshot.
func (c *Client) GetStatus() (*types.Status, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get status")
	}

	var s types.Status
	if err := json.Unmarshal([]byte(ret), &s); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal status")
	}
	return &s, nil
}

// GetConfig returns the daemon's effective configuration.
func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var fc config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &fc); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}
	return &fc, nil
}

// GetCharge returns the accumulated battery percentage.
func (c *Client) GetCharge() (float64, error) {
	ret, err := c.Get("/charge")
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to get charge")
	}
	return parseFloatResponse(ret)
}

// SetCharge overwrites the accumulated battery percentage.
func (c *Client) SetCharge(v float64) (string, error) {
	return c.Put("/charge", strconv.FormatFloat(v, 'f', -1, 64))
}

// GetLimit returns the high battery limit.
func (c *Client) GetLimit() (float64, error) {
	ret, err := c.Get("/limit")
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to get limit")
	}
	return parseFloatResponse(ret)
}

// SetLimit sets the high battery limit.
func (c *Client) SetLimit(l float64) (string, error) {
	return c.Put("/limit", strconv.FormatFloat(l, 'f', -1, 64))
}

// SetChargeWindow enables or disables charge-window mode.
func (c *Client) SetChargeWindow(enabled bool) (string, error) {
	return c.Put("/charge-window", strconv.FormatBool(enabled))
}

// GetLight returns the light state.
func (c *Client) GetLight() (bool, error) {
	ret, err := c.Get("/light")
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to get light state")
	}
	return parseBoolResponse(ret)
}

// SetLight forces the light state.
func (c *Client) SetLight(on bool) (string, error) {
	return c.Put("/light", strconv.FormatBool(on))
}

// ToggleLight flips the light state and returns the new one.
func (c *Client) ToggleLight() (bool, error) {
	ret, err := c.Post("/light/toggle", "")
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to toggle light")
	}
	return parseBoolResponse(ret)
}

// PressButton injects a simulated button press.
func (c *Client) PressButton() (string, error) {
	return c.Post("/button/press", "")
}

// ReleaseButton releases the simulated button.
func (c *Client) ReleaseButton() (string, error) {
	return c.Post("/button/release", "")
}

// GetSchedule returns the light timer schedule.
func (c *Client) GetSchedule() (*types.Schedule, error) {
	ret, err := c.Get("/schedule")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get schedule")
	}

	var s types.Schedule
	if err := json.Unmarshal([]byte(ret), &s); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal schedule")
	}
	return &s, nil
}

// SetSchedule installs the light timer schedule.
func (c *Client) SetSchedule(s types.Schedule) (string, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return c.Put("/schedule", string(payload))
}

// GetVersion returns the daemon version.
func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}

	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}

func parseBoolResponse(ret string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(ret))
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to parse %q as bool", ret)
	}
	return b, nil
}

func parseFloatResponse(ret string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(ret), 64)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to parse %q as float", ret)
	}
	return f, nil
}
