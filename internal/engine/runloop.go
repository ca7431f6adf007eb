package engine

import (
	"context"
	"errors"

	"github.com/contextd-io/contextd/internal/models"
)

// Engine run-loop errors.
var (
	ErrEngineAlreadyRunning = errors.New("engine already running")
	ErrEngineNotRunning     = errors.New("engine not running")
)

// Start begins the engine's background processing loop. Submitted batches
// are processed strictly in submission order.
func (e *Engine) Start(ctx context.Context) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if e.running {
		return ErrEngineAlreadyRunning
	}

	e.ctx, e.cancel = context.WithCancel(ctx)
	e.running = true

	e.logger.Info().Msg("engine starting")

	e.wg.Add(1)
	go e.runLoop()

	return nil
}

// Stop halts the engine and waits for in-flight processing to complete.
func (e *Engine) Stop() error {
	e.runMu.Lock()
	if !e.running {
		e.runMu.Unlock()
		return ErrEngineNotRunning
	}

	e.logger.Info().Msg("engine stopping")
	e.cancel()
	e.running = false
	e.runMu.Unlock()

	e.wg.Wait()

	e.logger.Info().Msg("engine stopped")
	return nil
}

// SubmitLocations enqueues a location batch for processing.
func (e *Engine) SubmitLocations(fixes []models.LocationFix) error {
	e.runMu.Lock()
	running := e.running
	ctx := e.ctx
	e.runMu.Unlock()

	if !running {
		return ErrEngineNotRunning
	}

	select {
	case e.locationCh <- fixes:
		return nil
	case <-ctx.Done():
		return ErrEngineNotRunning
	}
}

// SubmitActivities enqueues an activity result batch for processing.
func (e *Engine) SubmitActivities(samples []models.ActivitySample) error {
	e.runMu.Lock()
	running := e.running
	ctx := e.ctx
	e.runMu.Unlock()

	if !running {
		return ErrEngineNotRunning
	}

	select {
	case e.activityCh <- samples:
		return nil
	case <-ctx.Done():
		return ErrEngineNotRunning
	}
}

func (e *Engine) runLoop() {
	defer e.wg.Done()

	for {
		select {
		case <-e.ctx.Done():
			return
		case fixes := <-e.locationCh:
			if err := e.ProcessLocationBatch(e.ctx, fixes); err != nil {
				e.logger.Error().Err(err).Msg("location batch failed")
			}
		case samples := <-e.activityCh:
			if err := e.ProcessActivityBatch(e.ctx, samples); err != nil {
				e.logger.Error().Err(err).Msg("activity batch failed")
			}
		}
	}
}
