package actions

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/contextd-io/contextd/internal/config"
	"github.com/contextd-io/contextd/internal/logging"
	"github.com/contextd-io/contextd/internal/models"
)

// nightStartHour and nightEndHour bound the hours during which the home
// handler dims the screen instead of restoring daytime brightness.
const (
	nightStartHour = 20
	nightEndHour   = 6
)

// notify sends a desktop notification through the configured command.
// An empty command disables notifications.
func notify(ctx context.Context, run CommandRunner, cfg config.ActionsConfig, title, body string) error {
	if cfg.NotifyCommand == "" {
		return nil
	}
	if err := run(ctx, cfg.NotifyCommand, title, body); err != nil {
		return fmt.Errorf("notification command failed: %w", err)
	}
	return nil
}

// MusicHandler notifies the user and launches the configured media deep
// link when the music scenario fires.
type MusicHandler struct {
	cfg    config.ActionsConfig
	run    CommandRunner
	logger zerolog.Logger
}

// NewMusicHandler creates the music scenario handler.
func NewMusicHandler(cfg config.ActionsConfig, run CommandRunner) *MusicHandler {
	return &MusicHandler{cfg: cfg, run: run, logger: logging.Component("actions.music")}
}

// Scenario returns the scenario this handler serves.
func (h *MusicHandler) Scenario() models.Scenario { return models.ScenarioMusic }

// Fire sends the notification and opens the media URI.
func (h *MusicHandler) Fire(ctx context.Context, fc FireContext) error {
	if err := notify(ctx, h.run, h.cfg, "Music time", "You reached your running spot, starting your playlist."); err != nil {
		return err
	}

	if h.cfg.OpenCommand == "" || h.cfg.MediaURI == "" {
		h.logger.Debug().Msg("media launch disabled, notification only")
		return nil
	}
	if err := h.run(ctx, h.cfg.OpenCommand, h.cfg.MediaURI); err != nil {
		return fmt.Errorf("failed to open media uri: %w", err)
	}
	h.logger.Info().Str("uri", h.cfg.MediaURI).Msg("media player opened")
	return nil
}

// WarningHandler notifies the user when the warning scenario fires.
type WarningHandler struct {
	cfg config.ActionsConfig
	run CommandRunner
}

// NewWarningHandler creates the warning scenario handler.
func NewWarningHandler(cfg config.ActionsConfig, run CommandRunner) *WarningHandler {
	return &WarningHandler{cfg: cfg, run: run}
}

// Scenario returns the scenario this handler serves.
func (h *WarningHandler) Scenario() models.Scenario { return models.ScenarioWarning }

// Fire sends the warning notification.
func (h *WarningHandler) Fire(ctx context.Context, fc FireContext) error {
	return notify(ctx, h.run, h.cfg, "Warning", "You are lingering in a marked area.")
}

// HomeHandler notifies the user and adjusts screen brightness when the
// home scenario fires. During night hours the screen is dimmed; otherwise
// daytime brightness is restored.
type HomeHandler struct {
	cfg    config.ActionsConfig
	run    CommandRunner
	now    func() time.Time
	logger zerolog.Logger
}

// NewHomeHandler creates the home scenario handler.
func NewHomeHandler(cfg config.ActionsConfig, run CommandRunner) *HomeHandler {
	return &HomeHandler{
		cfg:    cfg,
		run:    run,
		now:    time.Now,
		logger: logging.Component("actions.home"),
	}
}

// Scenario returns the scenario this handler serves.
func (h *HomeHandler) Scenario() models.Scenario { return models.ScenarioHome }

// Fire sends the notification and applies the brightness mode.
func (h *HomeHandler) Fire(ctx context.Context, fc FireContext) error {
	if err := notify(ctx, h.run, h.cfg, "Welcome home", "Adjusting your screen for home."); err != nil {
		return err
	}

	if h.cfg.BrightnessDevice == "" {
		h.logger.Debug().Msg("brightness control disabled, notification only")
		return nil
	}

	brightness := h.cfg.DayBrightness
	mode := "day"
	if hour := h.now().Hour(); hour >= nightStartHour || hour < nightEndHour {
		brightness = h.cfg.NightBrightness
		mode = "night"
	}

	if err := os.WriteFile(h.cfg.BrightnessDevice, []byte(fmt.Sprintf("%d\n", brightness)), 0o644); err != nil {
		return fmt.Errorf("failed to set brightness: %w", err)
	}
	h.logger.Info().
		Str("mode", mode).
		Int("brightness", brightness).
		Msg("brightness adjusted")
	return nil
}
