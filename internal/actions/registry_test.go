package actions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/contextd-io/contextd/internal/config"
	"github.com/contextd-io/contextd/internal/models"
)

type stubHandler struct {
	scenario models.Scenario
	fired    int
	err      error
	last     FireContext
}

func (s *stubHandler) Scenario() models.Scenario { return s.scenario }

func (s *stubHandler) Fire(ctx context.Context, fc FireContext) error {
	s.fired++
	s.last = fc
	return s.err
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	handler := &stubHandler{scenario: models.ScenarioMusic}

	require.NoError(t, registry.Register(handler))
	require.Equal(t, handler, registry.Get(models.ScenarioMusic))
	require.Nil(t, registry.Get(models.ScenarioHome))
}

func TestRegistry_RejectsDuplicate(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubHandler{scenario: models.ScenarioMusic}))

	err := registry.Register(&stubHandler{scenario: models.ScenarioMusic})
	require.Error(t, err)
	require.Contains(t, err.Error(), "already registered")
}

func TestRegistry_Unregister(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubHandler{scenario: models.ScenarioWarning}))

	require.True(t, registry.Unregister(models.ScenarioWarning))
	require.False(t, registry.Unregister(models.ScenarioWarning))
	require.Nil(t, registry.Get(models.ScenarioWarning))
}

func TestRegistry_DispatchSwallowsHandlerError(t *testing.T) {
	registry := NewRegistry()
	handler := &stubHandler{scenario: models.ScenarioHome, err: errors.New("boom")}
	require.NoError(t, registry.Register(handler))

	fc := FireContext{Activity: models.ActivityStill, Trigger: "location", At: time.Now()}
	registry.Dispatch(context.Background(), models.ScenarioHome, fc)

	require.Equal(t, 1, handler.fired)
	require.Equal(t, fc, handler.last)
}

func TestRegistry_DispatchMissingHandler(t *testing.T) {
	registry := NewRegistry()
	// Must not panic or error; the firing is already committed.
	registry.Dispatch(context.Background(), models.ScenarioMusic, FireContext{Trigger: "activity"})
}

func TestNewDefaultRegistry_CoversAllScenarios(t *testing.T) {
	registry := NewDefaultRegistry(config.Default().Actions)
	for _, scenario := range models.AllScenarios() {
		require.NotNil(t, registry.Get(scenario), "missing handler for %s", scenario)
	}
}
