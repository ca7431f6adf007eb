package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/contextd-io/contextd/internal/models"
)

var (
	simulateConfidence int
	simulateTimestamp  int64
)

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.AddCommand(simulateActivityCmd)
	simulateCmd.AddCommand(simulateLocationCmd)

	simulateActivityCmd.Flags().IntVar(&simulateConfidence, "confidence", 100, "sample confidence (0-100)")
	simulateLocationCmd.Flags().Int64Var(&simulateTimestamp, "timestamp-ms", 0, "fix time in unix milliseconds (default: now)")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Send synthetic updates to a running daemon",
	Long: `Send synthetic activity or location updates to a running daemon.

Useful for trying out scenario configuration without a real provider.`,
}

var simulateActivityCmd = &cobra.Command{
	Use:   "activity <kind>",
	Short: "Send an activity sample",
	Example: `  contextd simulate activity running
  contextd simulate activity still --confidence 71`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := models.ParseActivityKind(args[0])
		if err != nil {
			return err
		}
		return postJSON(apiURL("/v1/activity"), map[string]any{
			"samples": []models.ActivitySample{{Kind: kind, Confidence: simulateConfidence}},
		})
	},
}

var simulateLocationCmd = &cobra.Command{
	Use:   "location <lat> <lng>",
	Short: "Send a location fix",
	Example: `  contextd simulate location 49.8727 8.6312`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var lat, lng float64
		if _, err := fmt.Sscanf(args[0], "%f", &lat); err != nil {
			return fmt.Errorf("invalid latitude %q", args[0])
		}
		if _, err := fmt.Sscanf(args[1], "%f", &lng); err != nil {
			return fmt.Errorf("invalid longitude %q", args[1])
		}
		return postJSON(apiURL("/v1/location"), map[string]any{
			"fixes": []models.LocationFix{{Latitude: lat, Longitude: lng, TimestampMillis: simulateTimestamp}},
		})
	},
}

func postJSON(url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("is the daemon running? %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %s: %s", resp.Status, data)
	}
	fmt.Println(string(bytes.TrimSpace(data)))
	return nil
}
