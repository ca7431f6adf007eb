package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contextd-io/contextd/internal/db"
	"github.com/contextd-io/contextd/internal/scenario"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show device and scenario state",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		store := scenario.NewStore(database)
		current, err := store.CurrentActivity(cmd.Context())
		if err != nil {
			return err
		}
		statuses, err := store.Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		fired, err := db.NewEventRepository(database).ListRecent(cmd.Context(), 1)
		if err != nil {
			return err
		}

		fmt.Printf("Current activity: %s\n", current)
		enabled := 0
		armed := 0
		triggered := 0
		for _, status := range statuses {
			if status.Config.Enabled {
				enabled++
			}
			if status.State.GeofenceEntered && !status.State.Triggered {
				armed++
			}
			if status.State.Triggered {
				triggered++
			}
		}
		fmt.Printf("Scenarios: %d enabled, %d armed, %d triggered\n", enabled, armed, triggered)

		if len(fired) > 0 {
			last := fired[0]
			fmt.Printf("Last event: %s %s at %s\n",
				last.Type, last.EntityID, last.Timestamp.Local().Format("2006-01-02 15:04:05"))
		} else {
			fmt.Println("Last event: none")
		}
		return nil
	},
}
