package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GENERATOR_DAYS", "0")
	t.Setenv("RATE_LIMIT_ENABLED", "")

	cfg := Load()
	if cfg.Generator.Days != 7 {
		t.Fatalf("expected 7 generator days, got %d", cfg.Generator.Days)
	}
	if cfg.RateLimit.Enabled {
		t.Fatalf("expected rate limit disabled by default")
	}
	if cfg.Scheduler.DailyRollupSpec == "" {
		t.Fatalf("expected default rollup spec")
	}
}

func TestLoadPlanCatalogFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	catalog, err := LoadPlanCatalog(Config{})
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(catalog.Plans) != 6 {
		t.Fatalf("expected 6 default plans, got %d", len(catalog.Plans))
	}
}

func TestLoadPlanCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yml")
	content := []byte(`plans:
  - name: Trial
    price: "0"
    billing_cycle: MONTHLY
    max_equipment: 1
    features: ["Dashboard"]
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	catalog, err := LoadPlanCatalog(Config{PlanCatalogPath: path})
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(catalog.Plans) != 1 {
		t.Fatalf("expected 1 plan, got %d", len(catalog.Plans))
	}
	plan := catalog.Plans[0]
	if plan.Name != "Trial" || plan.MaxEquipment == nil || *plan.MaxEquipment != 1 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if len(plan.Features) != 1 || plan.Features[0] != "Dashboard" {
		t.Fatalf("unexpected features: %v", plan.Features)
	}
}

func TestLoadPlanCatalogRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yml")
	content := []byte(`plans:
  - name: Trial
    price: "0"
  - name: trial
    price: "1"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	if _, err := LoadPlanCatalog(Config{PlanCatalogPath: path}); err == nil {
		t.Fatalf("expected duplicate plan error")
	}
}

func TestWatchPlanCatalogWithoutPath(t *testing.T) {
	called := false
	if err := WatchPlanCatalog(Config{}, func(PlanCatalog, error) { called = true }); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if called {
		t.Fatalf("apply must not run without a catalog path")
	}
}

func TestWatchPlanCatalogMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yml")
	if err := WatchPlanCatalog(Config{PlanCatalogPath: path}, func(PlanCatalog, error) {}); err == nil {
		t.Fatalf("expected error for missing catalog file")
	}
}
