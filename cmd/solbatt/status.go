package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solbatt/solbatt/pkg/config"
	"github.com/solbatt/solbatt/pkg/types"
)

type statusData struct {
	status   *types.Status
	schedule *types.Schedule
	config   *config.RawFileConfig
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	status, err := apiClient.GetStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	schedule, err := apiClient.GetSchedule()
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	return &statusData{
		status:   status,
		schedule: schedule,
		config:   conf,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of solbatt",
		Long:    `Get solbatt status, battery charge, light state, and configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Get various info first.
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			conf := config.NewFileFromConfig(data.config, "")
			st := data.status

			cmd.Println(bold("Battery:"))
			cmd.Printf("  Charge: %s\n", bold("%.4f%%", st.Charge))
			if conf.ChargeWindow() {
				cmd.Println("  Charge window: " + bool2Text(true))
				cmd.Printf("    Charging stops at %g%% and resumes below %g%%.\n",
					conf.HighBatteryLimit(), conf.StartChargingBelow())
				if st.Charging {
					cmd.Println("  Charging: " + bool2Text(true))
				} else {
					cmd.Println("  Charging: " + bool2Text(false))
					cmd.Println("    The charge reached the high limit. It will resume below the start threshold.")
				}
			} else {
				cmd.Println("  Charge window: " + bool2Text(false))
				cmd.Println("    The charge accumulates unconditionally, like the original lesson sketch.")
			}

			cmd.Println()
			cmd.Println(bold("Light:"))
			cmd.Println("  On: " + bool2Text(st.LightOn))
			if data.schedule.On != "" || data.schedule.Off != "" {
				cmd.Printf("  Timer: on %q, off %q\n", data.schedule.On, data.schedule.Off)
			}

			cmd.Println()
			cmd.Println(bold("Control loop:"))
			cmd.Printf("  Light reading: %d (raw 0-1023)\n", st.LastReading)
			cmd.Printf("  Cycles: %d\n", st.Cycles)
			cmd.Printf("  Rate: %.1f cycles/s (configured %d)\n", st.LoopRate, conf.LoopsPerSecond())
			if st.MissedCycles > 0 {
				cmd.Printf("  Missed cycles in the last minute: %d\n", st.MissedCycles)
			}

			cmd.Println()
			cmd.Println(bold("Configuration:"))
			cmd.Printf("  Battery limits: %g%% - %g%%\n", conf.LowBatteryLimit(), conf.HighBatteryLimit())
			cmd.Printf("  Seconds to full charge: %g\n", conf.SecondsToFullCharge())
			cmd.Printf("  Average light level: %d\n", conf.AverageLightLevel())
			cmd.Printf("  Hardware: %s\n", conf.Hardware())
			cmd.Printf("  Telemetry: %s\n", conf.TelemetryPath())
			if conf.MQTTBroker() != "" {
				cmd.Printf("  MQTT: %s (topic %s)\n", conf.MQTTBroker(), conf.MQTTTopic())
			}
			cmd.Printf("  Allow non-root users to access the daemon: %s\n", bool2Text(conf.AllowNonRootAccess()))

			return nil
		},
	}
}
