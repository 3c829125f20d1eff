package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	analyticsdomain "github.com/smallbiznis/polarops/internal/analytics/domain"
	equipmentdomain "github.com/smallbiznis/polarops/internal/equipment/domain"
	servicerequestdomain "github.com/smallbiznis/polarops/internal/servicerequest/domain"
	subscriptiondomain "github.com/smallbiznis/polarops/internal/subscription/domain"
	techniciandomain "github.com/smallbiznis/polarops/internal/technician/domain"
	workorderdomain "github.com/smallbiznis/polarops/internal/workorder/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// RunMigrations applies the embedded PostgreSQL migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&equipmentdomain.Equipment{},
		&analyticsdomain.TemperatureReading{},
		&analyticsdomain.EnergyReading{},
		&analyticsdomain.DailyTemperatureAverage{},
		&techniciandomain.Technician{},
		&servicerequestdomain.ServiceRequest{},
		&workorderdomain.WorkOrder{},
		&subscriptiondomain.Plan{},
	}
}

// AutoMigrate builds the schema from the models for dialects without SQL
// migrations (sqlite, mysql) and for tests.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
