package actions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/contextd-io/contextd/internal/config"
	"github.com/contextd-io/contextd/internal/models"
)

type recordedCall struct {
	name string
	args []string
}

func recordingRunner(calls *[]recordedCall) CommandRunner {
	return func(ctx context.Context, name string, args ...string) error {
		*calls = append(*calls, recordedCall{name: name, args: args})
		return nil
	}
}

func testActionsConfig() config.ActionsConfig {
	return config.ActionsConfig{
		NotifyCommand:    "notify-send",
		OpenCommand:      "xdg-open",
		MediaURI:         "spotify:playlist:4cgeOaRCHDkVDQPaDrRQFR",
		NightBrightness:  5,
		DayBrightness:    80,
	}
}

func TestMusicHandler_NotifiesAndOpensMedia(t *testing.T) {
	var calls []recordedCall
	handler := NewMusicHandler(testActionsConfig(), recordingRunner(&calls))

	err := handler.Fire(context.Background(), FireContext{Activity: models.ActivityRunning, Trigger: "location"})
	require.NoError(t, err)

	require.Len(t, calls, 2)
	require.Equal(t, "notify-send", calls[0].name)
	require.Equal(t, "xdg-open", calls[1].name)
	require.Equal(t, []string{"spotify:playlist:4cgeOaRCHDkVDQPaDrRQFR"}, calls[1].args)
}

func TestMusicHandler_NotificationOnlyWhenMediaUnset(t *testing.T) {
	cfg := testActionsConfig()
	cfg.MediaURI = ""

	var calls []recordedCall
	handler := NewMusicHandler(cfg, recordingRunner(&calls))

	require.NoError(t, handler.Fire(context.Background(), FireContext{}))
	require.Len(t, calls, 1)
	require.Equal(t, "notify-send", calls[0].name)
}

func TestMusicHandler_PropagatesCommandFailure(t *testing.T) {
	failing := func(ctx context.Context, name string, args ...string) error {
		return errors.New("command not found")
	}
	handler := NewMusicHandler(testActionsConfig(), failing)

	err := handler.Fire(context.Background(), FireContext{})
	require.Error(t, err)
}

func TestWarningHandler_NotifiesOnly(t *testing.T) {
	var calls []recordedCall
	handler := NewWarningHandler(testActionsConfig(), recordingRunner(&calls))

	require.NoError(t, handler.Fire(context.Background(), FireContext{Activity: models.ActivityStill}))
	require.Len(t, calls, 1)
	require.Equal(t, "notify-send", calls[0].name)
}

func TestWarningHandler_DisabledNotification(t *testing.T) {
	cfg := testActionsConfig()
	cfg.NotifyCommand = ""

	var calls []recordedCall
	handler := NewWarningHandler(cfg, recordingRunner(&calls))

	require.NoError(t, handler.Fire(context.Background(), FireContext{}))
	require.Empty(t, calls)
}

func TestHomeHandler_NightAndDayBrightness(t *testing.T) {
	dir := t.TempDir()
	device := filepath.Join(dir, "brightness")

	cfg := testActionsConfig()
	cfg.BrightnessDevice = device

	var calls []recordedCall
	handler := NewHomeHandler(cfg, recordingRunner(&calls))

	handler.now = func() time.Time {
		return time.Date(2026, 8, 30, 23, 15, 0, 0, time.UTC)
	}
	require.NoError(t, handler.Fire(context.Background(), FireContext{}))
	content, err := os.ReadFile(device)
	require.NoError(t, err)
	require.Equal(t, "5", strings.TrimSpace(string(content)))

	handler.now = func() time.Time {
		return time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC)
	}
	require.NoError(t, handler.Fire(context.Background(), FireContext{}))
	content, err = os.ReadFile(device)
	require.NoError(t, err)
	require.Equal(t, "80", strings.TrimSpace(string(content)))
}

func TestHomeHandler_NoBrightnessDevice(t *testing.T) {
	var calls []recordedCall
	handler := NewHomeHandler(testActionsConfig(), recordingRunner(&calls))

	require.NoError(t, handler.Fire(context.Background(), FireContext{}))
	require.Len(t, calls, 1)
}
