package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/polarops/internal/clock"
	"github.com/smallbiznis/polarops/internal/subscription/domain"
	"github.com/smallbiznis/polarops/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("subscription.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

// PlanCode is the stable identifier derived from a plan name.
func PlanCode(name string) string {
	return slug.Make(strings.TrimSpace(name))
}

func (s *Service) Create(ctx context.Context, req domain.CreatePlanRequest) (domain.Plan, error) {
	plan, err := domain.NewPlan(s.genID.Generate(), PlanCode(req.PlanName), domain.PlanTerms{
		PlanName:     req.PlanName,
		Price:        req.Price,
		Currency:     req.Currency,
		BillingCycle: domain.BillingCycle(req.BillingCycle),
		MaxEquipment: req.MaxEquipment,
		MaxClients:   req.MaxClients,
		Features:     req.Features,
	}, s.clock.Now())
	if err != nil {
		return domain.Plan{}, err
	}

	existing, err := s.repo.FindByCode(ctx, s.db, plan.Code)
	if err != nil {
		return domain.Plan{}, err
	}
	if existing != nil {
		return domain.Plan{}, domain.ErrPlanCodeExists
	}

	if err := s.repo.Insert(ctx, s.db, plan); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Plan{}, domain.ErrPlanCodeExists
		}
		return domain.Plan{}, err
	}

	return *plan, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Plan, error) {
	planID, err := parseID(id)
	if err != nil {
		return domain.Plan{}, err
	}

	plan, err := s.repo.FindByID(ctx, s.db, planID)
	if err != nil {
		return domain.Plan{}, err
	}
	if plan == nil {
		return domain.Plan{}, domain.ErrNotFound
	}
	return *plan, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPlanRequest) ([]domain.Plan, error) {
	userType, err := domain.ParseUserType(req.UserType)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, s.db, domain.ListPlanFilter{UserType: userType})
	if err != nil {
		return nil, err
	}

	plans := make([]domain.Plan, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		plans = append(plans, *item)
	}
	return plans, nil
}

// UpdatePlan returns (nil, nil) when the plan does not exist.
func (s *Service) UpdatePlan(ctx context.Context, req domain.UpdatePlanRequest) (*domain.Plan, error) {
	planID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var result *domain.Plan
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := s.repo.FindByID(ctx, tx, planID)
		if err != nil {
			return err
		}
		if plan == nil {
			return nil
		}
		if err := plan.UpdatePlan(domain.PlanTerms{
			PlanName:     req.PlanName,
			Price:        req.Price,
			Currency:     req.Currency,
			BillingCycle: domain.BillingCycle(req.BillingCycle),
			MaxEquipment: req.MaxEquipment,
			MaxClients:   req.MaxClients,
			Features:     req.Features,
		}, s.clock.Now()); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, plan); err != nil {
			return err
		}
		result = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
