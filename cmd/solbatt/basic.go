package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/solbatt/solbatt/pkg/types"
	"github.com/solbatt/solbatt/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewLimitCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "limit [percentage]",
		Short:   "Set high battery limit",
		GroupID: gBasic,
		Long: `Set high battery limit.

This is a percentage above the low limit, up to 100.

The limit only takes effect in charge-window mode ('solbatt charge-window enable'). In the default lesson mode the charge accumulates unconditionally, just like the original sketch.`,
		RunE: func(_ *cobra.Command, args []string) error {
			limit, err := parseFloatArg(args, "limit")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetLimit(limit)
			if err != nil {
				return fmt.Errorf("failed to set limit: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set high battery limit to %g%%", limit)

			return nil
		},
	}
}

func NewChargeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "charge [percentage]",
		Short:   "Get or set the simulated battery charge",
		GroupID: gBasic,
		Long: `Get or set the simulated battery charge.

Without an argument, prints the accumulated charge percentage. With one, overwrites it, which is handy for trying out the charge-window behavior without waiting for the loop to get there.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				charge, err := apiClient.GetCharge()
				if err != nil {
					return fmt.Errorf("failed to get charge: %v", err)
				}
				cmd.Printf("%.4f\n", charge)
				return nil
			}

			charge, err := parseFloatArg(args, "charge")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetCharge(charge)
			if err != nil {
				return fmt.Errorf("failed to set charge: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			return nil
		},
	}

	return cmd
}

func NewChargeWindowCommand() *cobra.Command {
	return newEnableDisableCommand(
		"charge-window",
		"charge-window mode",
		`Enable or disable charge-window mode.

The lesson sketch accumulates charge forever; charge-window mode makes the intended limits real: charging stops at the high limit and resumes once the charge drops below the start-charging threshold.`,
		func() (string, error) { return apiClient.SetChargeWindow(true) },
		func() (string, error) { return apiClient.SetChargeWindow(false) },
	)
}

func NewLightCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "light",
		Short:   "Control the light",
		GroupID: gBasic,
		Long:    `Switch the light on or off directly, bypassing the button.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "on",
			Short: "Switch the light on",
			RunE: func(_ *cobra.Command, _ []string) error {
				ret, err := apiClient.SetLight(true)
				if err != nil {
					return fmt.Errorf("failed to switch the light on: %v", err)
				}
				if ret != "" {
					logrus.Infof("daemon responded: %s", ret)
				}
				logrus.Infof("successfully switched the light on")
				return nil
			},
		},
		&cobra.Command{
			Use:   "off",
			Short: "Switch the light off",
			RunE: func(_ *cobra.Command, _ []string) error {
				ret, err := apiClient.SetLight(false)
				if err != nil {
					return fmt.Errorf("failed to switch the light off: %v", err)
				}
				if ret != "" {
					logrus.Infof("daemon responded: %s", ret)
				}
				logrus.Infof("successfully switched the light off")
				return nil
			},
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Toggle the light",
			RunE: func(_ *cobra.Command, _ []string) error {
				on, err := apiClient.ToggleLight()
				if err != nil {
					return fmt.Errorf("failed to toggle the light: %v", err)
				}
				if on {
					logrus.Infof("light is now on")
				} else {
					logrus.Infof("light is now off")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Get the current light state",
			RunE: func(_ *cobra.Command, _ []string) error {
				on, err := apiClient.GetLight()
				if err != nil {
					return fmt.Errorf("failed to get light state: %v", err)
				}
				if on {
					logrus.Infof("light is on")
				} else {
					logrus.Infof("light is off")
				}
				return nil
			},
		},
	)

	return cmd
}

func NewButtonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "button",
		Short:   "Operate the simulated button",
		GroupID: gAdvanced,
		Long: `Press or release the simulated button.

Only available with the simulated hardware backend. A press followed by a release produces exactly one press edge, so the light toggles once.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "press",
			Short: "Press the simulated button",
			RunE: func(_ *cobra.Command, _ []string) error {
				if _, err := apiClient.PressButton(); err != nil {
					return fmt.Errorf("failed to press button: %v", err)
				}
				logrus.Infof("button pressed")
				return nil
			},
		},
		&cobra.Command{
			Use:   "release",
			Short: "Release the simulated button",
			RunE: func(_ *cobra.Command, _ []string) error {
				if _, err := apiClient.ReleaseButton(); err != nil {
					return fmt.Errorf("failed to release button: %v", err)
				}
				logrus.Infof("button released")
				return nil
			},
		},
		&cobra.Command{
			Use:   "push",
			Short: "Press and release the simulated button",
			RunE: func(_ *cobra.Command, _ []string) error {
				if _, err := apiClient.PressButton(); err != nil {
					return fmt.Errorf("failed to press button: %v", err)
				}
				if _, err := apiClient.ReleaseButton(); err != nil {
					return fmt.Errorf("failed to release button: %v", err)
				}
				logrus.Infof("button pushed")
				return nil
			},
		},
	)

	return cmd
}

func NewScheduleCommand() *cobra.Command {
	var onSpec, offSpec string

	cmd := &cobra.Command{
		Use:     "schedule",
		Short:   "Set the light timer",
		GroupID: gAdvanced,
		Long: `Set the light timer.

Standard 5-field cron syntax. An empty spec disables that side of the timer.

For example, to switch the light on at 18:00 and off at 23:00 every day:

  solbatt schedule --on "0 18 * * *" --off "0 23 * * *"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if onSpec == "" && offSpec == "" {
				s, err := apiClient.GetSchedule()
				if err != nil {
					return fmt.Errorf("failed to get schedule: %v", err)
				}
				cmd.Printf("on:  %q\noff: %q\n", s.On, s.Off)
				return nil
			}

			ret, err := apiClient.SetSchedule(types.Schedule{On: onSpec, Off: offSpec})
			if err != nil {
				return fmt.Errorf("failed to set schedule: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set light schedule")

			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&onSpec, "on", "", "cron spec for switching the light on")
	f.StringVar(&offSpec, "off", "", "cron spec for switching the light off")

	return cmd
}

func newEnableDisableCommand(
	use, short, long string,
	enableFunc func() (string, error),
	disableFunc func() (string, error),
) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Long:    long,
		GroupID: gAdvanced,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Enable " + short,
			RunE: func(_ *cobra.Command, _ []string) error {
				ret, err := enableFunc()
				if err != nil {
					return fmt.Errorf("failed to enable %s: %v", use, err)
				}
				if ret != "" {
					logrus.Infof("daemon responded: %s", ret)
				}
				logrus.Infof("successfully enabled %s", use)
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Disable " + short,
			RunE: func(_ *cobra.Command, _ []string) error {
				ret, err := disableFunc()
				if err != nil {
					return fmt.Errorf("failed to disable %s: %v", use, err)
				}
				if ret != "" {
					logrus.Infof("daemon responded: %s", ret)
				}
				logrus.Infof("successfully disabled %s", use)
				return nil
			},
		},
	)

	return cmd
}
