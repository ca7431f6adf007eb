package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// runCommand executes the root command with a config pointing at a
// throwaway data directory.
func runCommand(t *testing.T, dataDir string, args ...string) error {
	t.Helper()

	cfgPath := filepath.Join(dataDir, "contextd.yaml")
	content := fmt.Sprintf("data_dir: %s\nlog_level: error\n", dataDir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	return rootCmd.Execute()
}

func TestScenarioConfigurationCommands(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, runCommand(t, dir, "scenario", "set-fence", "music", "--lat", "49.8727", "--lng", "8.6312", "--radius", "50"))
	require.NoError(t, runCommand(t, dir, "scenario", "set-activity", "music", "running"))
	require.NoError(t, runCommand(t, dir, "scenario", "enable", "music"))
	require.NoError(t, runCommand(t, dir, "scenario", "set-window", "home", "--start", "18:00", "--end", "02:00"))
	require.NoError(t, runCommand(t, dir, "scenario", "clear-window", "home"))
	require.NoError(t, runCommand(t, dir, "scenario", "disable", "music"))
	require.NoError(t, runCommand(t, dir, "scenario", "clear-fence", "music"))
	require.NoError(t, runCommand(t, dir, "scenario", "list"))
}

func TestScenarioCommandsRejectUnknownNames(t *testing.T) {
	dir := t.TempDir()

	require.Error(t, runCommand(t, dir, "scenario", "enable", "picnic"))
	require.Error(t, runCommand(t, dir, "scenario", "set-activity", "music", "levitating"))
	require.Error(t, runCommand(t, dir, "scenario", "set-window", "home", "--start", "25:00", "--end", "02:00"))
}

func TestStatusAndEventsCommands(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, runCommand(t, dir, "status"))
	require.NoError(t, runCommand(t, dir, "events"))
	require.NoError(t, runCommand(t, dir, "events", "--type", "scenario.fired", "--scenario", "music"))
}

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.json")
	require.NoError(t, os.WriteFile(fixture, []byte(`{
		"description": "smoke",
		"scenarios": [{
			"scenario": "music",
			"enabled": true,
			"fence": {"latitude": 49.8727, "longitude": 8.6312, "radius_meters": 50},
			"target_activity": "running"
		}],
		"start_activity": "running",
		"steps": [{"locations": [{"latitude": 49.8727, "longitude": 8.6312}]}]
	}`), 0o644))

	require.NoError(t, runCommand(t, dir, "replay", fixture, "--verbose"))
	require.Error(t, runCommand(t, dir, "replay", filepath.Join(dir, "absent.json")))
}
