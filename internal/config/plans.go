package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PlanDefinition describes one entry of the subscription plan catalog.
type PlanDefinition struct {
	Name         string   `mapstructure:"name"`
	Price        string   `mapstructure:"price"`
	Currency     string   `mapstructure:"currency"`
	BillingCycle string   `mapstructure:"billing_cycle"`
	MaxEquipment *int     `mapstructure:"max_equipment"`
	MaxClients   *int     `mapstructure:"max_clients"`
	Features     []string `mapstructure:"features"`
}

type PlanCatalog struct {
	Plans []PlanDefinition `mapstructure:"plans"`
}

func DefaultPlanCatalog() PlanCatalog {
	return PlanCatalog{
		Plans: []PlanDefinition{
			{Name: "Basic (Polar Bear)", Price: "18.99", Currency: "USD", BillingCycle: "MONTHLY", MaxEquipment: intPtr(6),
				Features: []string{"Real-time temperature monitoring", "Email alerts"}},
			{Name: "Standard (Snow Bear)", Price: "35.13", Currency: "USD", BillingCycle: "MONTHLY", MaxEquipment: intPtr(12),
				Features: []string{"Real-time temperature monitoring", "Email alerts", "Energy reports"}},
			{Name: "Premium (Glacial Bear)", Price: "67.56", Currency: "USD", BillingCycle: "MONTHLY", MaxEquipment: intPtr(24),
				Features: []string{"Real-time temperature monitoring", "Email alerts", "Energy reports", "Priority support"}},
			{Name: "Small Company", Price: "40.51", Currency: "USD", BillingCycle: "MONTHLY", MaxClients: intPtr(10),
				Features: []string{"Work order management", "Technician scheduling"}},
			{Name: "Medium Company", Price: "81.08", Currency: "USD", BillingCycle: "MONTHLY", MaxClients: intPtr(30),
				Features: []string{"Work order management", "Technician scheduling", "Client analytics"}},
			{Name: "Enterprise Premium", Price: "162.16", Currency: "USD", BillingCycle: "MONTHLY", MaxClients: intPtr(999999),
				Features: []string{"Work order management", "Technician scheduling", "Client analytics", "Dedicated support"}},
		},
	}
}

func intPtr(v int) *int { return &v }

// LoadPlanCatalog reads plans.yml when present and falls back to the built-in catalog.
func LoadPlanCatalog(cfg Config) (PlanCatalog, error) {
	v := viper.New()
	v.SetConfigType("yml")
	if cfg.PlanCatalogPath != "" {
		v.SetConfigFile(cfg.PlanCatalogPath)
	} else {
		v.SetConfigName("plans")
		v.AddConfigPath("/etc/polarops")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("POLAROPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return DefaultPlanCatalog(), nil
		}
		return PlanCatalog{}, fmt.Errorf("read plan catalog: %w", err)
	}

	return decodePlanCatalog(v)
}

func decodePlanCatalog(v *viper.Viper) (PlanCatalog, error) {
	var catalog PlanCatalog
	if err := v.Unmarshal(&catalog); err != nil {
		return PlanCatalog{}, fmt.Errorf("decode plan catalog: %w", err)
	}
	if len(catalog.Plans) == 0 {
		return DefaultPlanCatalog(), nil
	}
	if err := validatePlanCatalog(catalog); err != nil {
		return PlanCatalog{}, err
	}
	return catalog, nil
}

// WatchPlanCatalog re-reads the catalog file whenever it changes and passes
// each revision to apply. Invalid revisions are reported with their error.
// It does nothing when no catalog path is configured.
func WatchPlanCatalog(cfg Config, apply func(PlanCatalog, error)) error {
	path := strings.TrimSpace(cfg.PlanCatalogPath)
	if path == "" || apply == nil {
		return nil
	}

	v := viper.New()
	v.SetConfigType("yml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read plan catalog: %w", err)
	}

	v.OnConfigChange(func(fsnotify.Event) {
		apply(decodePlanCatalog(v))
	})
	v.WatchConfig()
	return nil
}

func validatePlanCatalog(catalog PlanCatalog) error {
	seen := make(map[string]struct{}, len(catalog.Plans))
	for i, plan := range catalog.Plans {
		name := strings.TrimSpace(plan.Name)
		if name == "" {
			return fmt.Errorf("plan catalog entry %d: name is required", i)
		}
		if strings.TrimSpace(plan.Price) == "" {
			return fmt.Errorf("plan catalog entry %q: price is required", name)
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("plan catalog entry %q: duplicate name", name)
		}
		seen[key] = struct{}{}
	}
	return nil
}
