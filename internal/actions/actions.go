// Package actions provides the handler registry for scenario side effects.
package actions

import (
	"context"
	"os/exec"
	"time"

	"github.com/contextd-io/contextd/internal/models"
)

// FireContext carries the circumstances of a scenario firing to its handler.
type FireContext struct {
	// Activity is the device activity at the time of the firing.
	Activity models.ActivityKind

	// Trigger names the event edge that caused the firing, "location" or
	// "activity".
	Trigger string

	// At is the engine's clock reading when the firing was committed.
	At time.Time
}

// Handler executes the side effect of one scenario. Handlers must be safe
// to call repeatedly; the engine guarantees at most one call per fence
// entry but replays and restarts may fire again.
type Handler interface {
	// Scenario returns the scenario this handler serves.
	Scenario() models.Scenario

	// Fire performs the side effect. Errors are logged by the dispatcher
	// and never affect engine state.
	Fire(ctx context.Context, fc FireContext) error
}

// CommandRunner abstracts external command execution so handlers can be
// tested without touching the host system.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// ExecRunner runs commands on the host via os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
