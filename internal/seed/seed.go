package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/polarops/internal/config"
	subscriptiondomain "github.com/smallbiznis/polarops/internal/subscription/domain"
	subscriptionservice "github.com/smallbiznis/polarops/internal/subscription/service"
	"gorm.io/gorm"
)

// seedNode keeps seeded plan ids apart from the request-serving node.
const seedNode = 1023

// EnsurePlans inserts every catalog plan whose code is not stored yet and
// returns how many were created. Existing plans are left untouched.
func EnsurePlans(ctx context.Context, db *gorm.DB, catalog config.PlanCatalog) (int, error) {
	if db == nil {
		return 0, errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(seedNode)
	if err != nil {
		return 0, err
	}

	created := 0
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, def := range catalog.Plans {
			ok, err := ensurePlanTx(ctx, tx, node, def)
			if err != nil {
				return err
			}
			if ok {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func ensurePlanTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, def config.PlanDefinition) (bool, error) {
	code := subscriptionservice.PlanCode(def.Name)

	var existing subscriptiondomain.Plan
	err := tx.WithContext(ctx).Where("code = ?", code).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	price, err := decimal.NewFromString(def.Price)
	if err != nil {
		return false, fmt.Errorf("plan %q: invalid price %q: %w", def.Name, def.Price, err)
	}

	plan, err := subscriptiondomain.NewPlan(node.Generate(), code, subscriptiondomain.PlanTerms{
		PlanName:     def.Name,
		Price:        price,
		Currency:     def.Currency,
		BillingCycle: subscriptiondomain.BillingCycle(def.BillingCycle),
		MaxEquipment: def.MaxEquipment,
		MaxClients:   def.MaxClients,
		Features:     def.Features,
	}, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("plan %q: %w", def.Name, err)
	}

	if err := tx.WithContext(ctx).Create(plan).Error; err != nil {
		return false, err
	}
	return true, nil
}
