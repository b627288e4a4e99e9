package daemon

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/solbatt/solbatt/pkg/config"
	"github.com/solbatt/solbatt/pkg/types"
	"github.com/solbatt/solbatt/pkg/version"
)

func (d *Daemon) setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", d.getStatus)
	router.GET("/config", d.getConfig)
	router.GET("/charge", d.getCharge)
	router.PUT("/charge", d.setCharge)
	router.GET("/limit", d.getLimit)
	router.PUT("/limit", d.setLimit)
	router.PUT("/charge-window", d.setChargeWindow)
	router.GET("/light", d.getLight)
	router.PUT("/light", d.setLight)
	router.POST("/light/toggle", d.toggleLight)
	router.POST("/button/press", d.pressButton)
	router.POST("/button/release", d.releaseButton)
	router.GET("/schedule", d.getSchedule)
	router.PUT("/schedule", d.setSchedule)
	router.GET("/events", d.streamEvents)
	router.GET("/version", d.getVersion)

	return router
}

func (d *Daemon) getStatus(c *gin.Context) {
	interval := d.cfg.LoopInterval()

	c.IndentedJSON(http.StatusOK, types.Status{
		Charge:       d.ctrl.Charge(),
		LightOn:      d.ctrl.LightOn(),
		Charging:     d.ctrl.Charging(),
		ChargeWindow: d.cfg.ChargeWindow(),
		LastReading:  d.ctrl.LastReading(),
		Cycles:       d.ctrl.Cycles(),
		LoopRate:     d.recorder.RateIn(rateWindow),
		MissedCycles: d.recorder.MissedIn(rateWindow, interval),
		Version:      version.Version,
	})
}

func (d *Daemon) getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(d.cfg)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func (d *Daemon) getCharge(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, d.ctrl.Charge())
}

func (d *Daemon) setCharge(c *gin.Context) {
	var v float64
	if err := c.BindJSON(&v); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if v < 0 || v > 100 {
		err := fmt.Errorf("charge must be between 0 and 100, got %g", v)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	d.ctrl.SetCharge(v)
	logrus.Infof("set battery charge to %g%%", v)

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("set battery charge to %g%%", v))
}

func (d *Daemon) getLimit(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, d.cfg.HighBatteryLimit())
}

func (d *Daemon) setLimit(c *gin.Context) {
	var l float64
	if err := c.BindJSON(&l); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if l > 100 || l <= d.cfg.LowBatteryLimit() {
		err := fmt.Errorf("limit must be at most 100 and greater than the low limit (%g), got %g",
			d.cfg.LowBatteryLimit(), l)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	d.cfg.SetHighBatteryLimit(l)
	if err := d.cfg.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	logrus.Infof("set high battery limit to %g%%", l)

	msg := fmt.Sprintf("set high battery limit to %g%%", l)
	if !d.cfg.ChargeWindow() {
		msg += ". Note: the charge window is disabled, so the limit is not enforced until you enable it."
	}

	c.IndentedJSON(http.StatusCreated, msg)
}

func (d *Daemon) setChargeWindow(c *gin.Context) {
	var w bool
	if err := c.BindJSON(&w); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	d.cfg.SetChargeWindow(w)
	if err := d.cfg.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	logrus.Infof("set charge window to %t", w)

	c.IndentedJSON(http.StatusCreated, "ok")
}

func (d *Daemon) getLight(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, d.ctrl.LightOn())
}

func (d *Daemon) setLight(c *gin.Context) {
	var on bool
	if err := c.BindJSON(&on); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if err := d.ctrl.SetLight(on); err != nil {
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	d.publishLight(on)
	logrus.Infof("set light to %t", on)

	c.IndentedJSON(http.StatusCreated, "ok")
}

func (d *Daemon) toggleLight(c *gin.Context) {
	on, err := d.ctrl.ToggleLight()
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	d.publishLight(on)
	logrus.Infof("toggled light to %t", on)

	c.IndentedJSON(http.StatusCreated, on)
}

// pressButton and releaseButton inject button activity into the
// simulated hardware, so a press edge can be exercised without a wired
// button. With real hardware they are rejected.
func (d *Daemon) pressButton(c *gin.Context) {
	if d.simButton == nil {
		c.IndentedJSON(http.StatusConflict, "button is real hardware, press it instead")
		return
	}

	d.simButton.Press()
	c.IndentedJSON(http.StatusCreated, "ok")
}

func (d *Daemon) releaseButton(c *gin.Context) {
	if d.simButton == nil {
		c.IndentedJSON(http.StatusConflict, "button is real hardware, release it instead")
		return
	}

	d.simButton.Release()
	c.IndentedJSON(http.StatusCreated, "ok")
}

func (d *Daemon) getSchedule(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, types.Schedule{
		On:  d.cfg.LightOnSchedule(),
		Off: d.cfg.LightOffSchedule(),
	})
}

func (d *Daemon) setSchedule(c *gin.Context) {
	var s types.Schedule
	if err := c.BindJSON(&s); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if err := d.scheduler.Configure(s.On, s.Off); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	d.cfg.SetLightOnSchedule(s.On)
	d.cfg.SetLightOffSchedule(s.Off)
	if err := d.cfg.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	logrus.WithFields(logrus.Fields{"on": s.On, "off": s.Off}).Info("light schedule updated")

	c.IndentedJSON(http.StatusCreated, "ok")
}

func (d *Daemon) streamEvents(c *gin.Context) {
	ch := d.hub.Subscribe()
	defer d.hub.Unsubscribe(ch)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (d *Daemon) getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}
