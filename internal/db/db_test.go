package db

import (
	"context"
	"testing"

	"github.com/contextd-io/contextd/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDB, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { testDB.Close() })

	if err := testDB.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return testDB
}

func TestMigrate_SeedsScenarios(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewScenarioRepository(testDB)

	for _, scenario := range models.AllScenarios() {
		cfg, err := repo.GetConfig(context.Background(), scenario)
		if err != nil {
			t.Fatalf("GetConfig(%s) failed: %v", scenario, err)
		}
		if cfg.Enabled {
			t.Errorf("scenario %s should be seeded disabled", scenario)
		}
		if cfg.FenceSet {
			t.Errorf("scenario %s should be seeded without a fence", scenario)
		}
		if cfg.RadiusMeters != -1 {
			t.Errorf("scenario %s radius = %d, want -1", scenario, cfg.RadiusMeters)
		}
		if cfg.TargetActivity != scenario.DefaultTargetActivity() {
			t.Errorf("scenario %s target = %s, want %s",
				scenario, cfg.TargetActivity, scenario.DefaultTargetActivity())
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewScenarioRepository(testDB)

	if err := repo.SetFence(context.Background(), models.ScenarioHome, 49.8727, 8.6312, 50); err != nil {
		t.Fatalf("SetFence failed: %v", err)
	}

	// A second migration must not clobber user configuration.
	if err := testDB.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}

	cfg, err := repo.GetConfig(context.Background(), models.ScenarioHome)
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if !cfg.FenceSet || cfg.RadiusMeters != 50 {
		t.Errorf("fence lost after re-migration: %+v", cfg)
	}
}

func TestMigrate_SeedsCurrentActivity(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewScenarioRepository(testDB)

	activity, err := repo.CurrentActivity(context.Background())
	if err != nil {
		t.Fatalf("CurrentActivity failed: %v", err)
	}
	if activity != models.ActivityUnknown {
		t.Errorf("seeded current activity = %s, want %s", activity, models.ActivityUnknown)
	}
}
