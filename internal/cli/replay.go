package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/contextd-io/contextd/internal/models"
	"github.com/contextd-io/contextd/internal/replay"
)

var replayVerbose bool

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVarP(&replayVerbose, "verbose", "v", false, "print every recorded event")
}

var replayCmd = &cobra.Command{
	Use:   "replay <fixture.json>",
	Short: "Replay a recorded event sequence",
	Long: `Replay a recorded event sequence through a fresh engine.

The replay runs against a throwaway in-memory database and performs no
side effects; it reports which scenarios would have fired and when.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fixture, err := replay.LoadFixture(args[0])
		if err != nil {
			return err
		}

		result, err := replay.NewHarness().Run(cmd.Context(), fixture)
		if err != nil {
			return err
		}

		if result.Description != "" {
			fmt.Printf("Replay: %s\n", result.Description)
		}
		fmt.Printf("Steps: %d\n", result.Summary.Steps)

		if replayVerbose {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tTYPE\tENTITY")
			for _, step := range result.Steps {
				for _, event := range step.Events {
					fmt.Fprintf(w, "%d\t%s\t%s\n", step.Index, event.Type, event.EntityID)
				}
			}
			w.Flush()
		}

		for _, s := range models.AllScenarios() {
			if count := result.Summary.Fired[s]; count > 0 {
				fmt.Printf("Scenario %s fired %d time(s).\n", s, count)
			}
		}
		if result.Summary.EventCounts[models.EventTypeScenarioFired] == 0 {
			fmt.Println("No scenarios fired.")
		}
		return nil
	},
}
