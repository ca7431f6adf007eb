package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/contextd-io/contextd/internal/models"
	"github.com/contextd-io/contextd/internal/scenario"
)

var (
	// set-fence flags
	fenceLat    float64
	fenceLng    float64
	fenceRadius int

	// set-window flags
	windowStart string
	windowEnd   string
)

func init() {
	rootCmd.AddCommand(scenarioCmd)
	scenarioCmd.AddCommand(scenarioListCmd)
	scenarioCmd.AddCommand(scenarioEnableCmd)
	scenarioCmd.AddCommand(scenarioDisableCmd)
	scenarioCmd.AddCommand(scenarioSetFenceCmd)
	scenarioCmd.AddCommand(scenarioClearFenceCmd)
	scenarioCmd.AddCommand(scenarioSetActivityCmd)
	scenarioCmd.AddCommand(scenarioSetWindowCmd)
	scenarioCmd.AddCommand(scenarioClearWindowCmd)

	scenarioSetFenceCmd.Flags().Float64Var(&fenceLat, "lat", 0, "fence center latitude (required)")
	scenarioSetFenceCmd.Flags().Float64Var(&fenceLng, "lng", 0, "fence center longitude (required)")
	scenarioSetFenceCmd.Flags().IntVar(&fenceRadius, "radius", 50, "fence radius in meters")
	scenarioSetFenceCmd.MarkFlagRequired("lat")
	scenarioSetFenceCmd.MarkFlagRequired("lng")

	scenarioSetWindowCmd.Flags().StringVar(&windowStart, "start", "", "window start, HH:MM (required)")
	scenarioSetWindowCmd.Flags().StringVar(&windowEnd, "end", "", "window end, HH:MM (required)")
	scenarioSetWindowCmd.MarkFlagRequired("start")
	scenarioSetWindowCmd.MarkFlagRequired("end")
}

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Configure scenarios",
	Long: `Configure the automation scenarios.

Each scenario has a geofence, a target activity, an optional daily time
window, and an enabled flag. A scenario fires when its fence is entered
while the device activity matches the target.`,
}

// withStore opens the database and hands a scenario store to fn.
func withStore(cmd *cobra.Command, fn func(*scenario.Store) error) error {
	database, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(scenario.NewStore(database))
}

var scenarioListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store *scenario.Store) error {
			statuses, err := store.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SCENARIO\tENABLED\tFENCE\tTARGET\tWINDOW\tINSIDE\tTRIGGERED")
			for _, status := range statuses {
				fence := "-"
				if status.Config.HasFence() {
					fence = fmt.Sprintf("%.5f,%.5f r=%dm",
						status.Config.Latitude, status.Config.Longitude, status.Config.RadiusMeters)
				}
				window := "-"
				if status.Config.Window != nil {
					window = fmt.Sprintf("%s-%s", status.Config.Window.Start, status.Config.Window.End)
				}
				fmt.Fprintf(w, "%s\t%t\t%s\t%s\t%s\t%t\t%t\n",
					status.Config.Scenario,
					status.Config.Enabled,
					fence,
					status.Config.TargetActivity,
					window,
					status.State.GeofenceEntered,
					status.State.Triggered,
				)
			}
			return w.Flush()
		})
	},
}

var scenarioEnableCmd = &cobra.Command{
	Use:   "enable <scenario>",
	Short: "Enable a scenario",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], true)
	},
}

var scenarioDisableCmd = &cobra.Command{
	Use:   "disable <scenario>",
	Short: "Disable a scenario",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], false)
	},
}

func setEnabled(cmd *cobra.Command, name string, enabled bool) error {
	s, err := models.ParseScenario(name)
	if err != nil {
		return err
	}
	return withStore(cmd, func(store *scenario.Store) error {
		if err := store.SetEnabled(cmd.Context(), s, enabled); err != nil {
			return err
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Printf("Scenario %s %s.\n", s, state)
		return nil
	})
}

var scenarioSetFenceCmd = &cobra.Command{
	Use:   "set-fence <scenario>",
	Short: "Set a scenario's geofence",
	Example: `  # 50 meter fence around the running spot
  contextd scenario set-fence music --lat 49.8727 --lng 8.6312 --radius 50`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := models.ParseScenario(args[0])
		if err != nil {
			return err
		}
		return withStore(cmd, func(store *scenario.Store) error {
			if err := store.SetFence(cmd.Context(), s, fenceLat, fenceLng, fenceRadius); err != nil {
				return err
			}
			fmt.Printf("Fence for %s set to (%.5f, %.5f) radius %dm.\n", s, fenceLat, fenceLng, fenceRadius)
			return nil
		})
	},
}

var scenarioClearFenceCmd = &cobra.Command{
	Use:   "clear-fence <scenario>",
	Short: "Remove a scenario's geofence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := models.ParseScenario(args[0])
		if err != nil {
			return err
		}
		return withStore(cmd, func(store *scenario.Store) error {
			if err := store.ClearFence(cmd.Context(), s); err != nil {
				return err
			}
			fmt.Printf("Fence for %s cleared.\n", s)
			return nil
		})
	},
}

var scenarioSetActivityCmd = &cobra.Command{
	Use:   "set-activity <scenario> <activity>",
	Short: "Set the activity a scenario reacts to",
	Long: `Set the activity a scenario reacts to.

Valid activities: in_vehicle, on_bicycle, on_foot, still, tilting,
walking, running.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := models.ParseScenario(args[0])
		if err != nil {
			return err
		}
		kind, err := models.ParseActivityKind(args[1])
		if err != nil {
			return err
		}
		return withStore(cmd, func(store *scenario.Store) error {
			if err := store.SetTargetActivity(cmd.Context(), s, kind); err != nil {
				return err
			}
			fmt.Printf("Scenario %s now reacts to %s.\n", s, kind)
			return nil
		})
	},
}

var scenarioSetWindowCmd = &cobra.Command{
	Use:   "set-window <scenario>",
	Short: "Restrict a scenario to a daily time window",
	Example: `  # Only fire the home scenario in the evening
  contextd scenario set-window home --start 18:00 --end 02:00`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := models.ParseScenario(args[0])
		if err != nil {
			return err
		}
		window := &models.TimeWindow{Start: windowStart, End: windowEnd}
		if err := window.Validate(); err != nil {
			return err
		}
		return withStore(cmd, func(store *scenario.Store) error {
			if err := store.SetWindow(cmd.Context(), s, window); err != nil {
				return err
			}
			fmt.Printf("Scenario %s restricted to %s-%s.\n", s, window.Start, window.End)
			return nil
		})
	},
}

var scenarioClearWindowCmd = &cobra.Command{
	Use:   "clear-window <scenario>",
	Short: "Remove a scenario's time window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := models.ParseScenario(args[0])
		if err != nil {
			return err
		}
		return withStore(cmd, func(store *scenario.Store) error {
			if err := store.SetWindow(cmd.Context(), s, nil); err != nil {
				return err
			}
			fmt.Printf("Window for %s cleared.\n", s)
			return nil
		})
	},
}
