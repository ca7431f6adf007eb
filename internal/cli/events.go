package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/contextd-io/contextd/internal/db"
	"github.com/contextd-io/contextd/internal/models"
)

var (
	eventsLimit int
	eventsType  string
	eventsFor   string
)

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 20, "maximum events to show")
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "filter by event type (e.g. scenario.fired)")
	eventsCmd.Flags().StringVar(&eventsFor, "scenario", "", "filter by scenario")
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent events",
	Long: `Show recent events from the event log, newest first.

Without filters the most recent events of any type are shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		repo := db.NewEventRepository(database)

		var events []*models.Event
		if eventsType == "" && eventsFor == "" {
			events, err = repo.ListRecent(cmd.Context(), eventsLimit)
		} else {
			query := db.EventQuery{Limit: eventsLimit}
			if eventsType != "" {
				eventType := models.EventType(eventsType)
				query.Type = &eventType
			}
			if eventsFor != "" {
				s, perr := models.ParseScenario(eventsFor)
				if perr != nil {
					return perr
				}
				entity := string(s)
				query.EntityID = &entity
			}
			var page *db.EventPage
			page, err = repo.Query(cmd.Context(), query)
			if page != nil {
				events = page.Events
			}
		}
		if err != nil {
			return err
		}

		if len(events) == 0 {
			fmt.Println("No events recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tTYPE\tENTITY\tPAYLOAD")
		for _, event := range events {
			payload := ""
			if len(event.Payload) > 0 {
				payload = string(event.Payload)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				event.Timestamp.Local().Format("2006-01-02 15:04:05"),
				event.Type,
				event.EntityID,
				payload,
			)
		}
		return w.Flush()
	},
}
