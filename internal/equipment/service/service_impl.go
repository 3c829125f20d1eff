package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/polarops/internal/clock"
	"github.com/smallbiznis/polarops/internal/equipment/domain"
	"github.com/smallbiznis/polarops/internal/orgcontext"
	"github.com/smallbiznis/polarops/pkg/db"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Clock     clock.Clock
	Generator domain.DataGenerator `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	clock     clock.Clock
	generator domain.DataGenerator
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("equipment.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		clock:     p.Clock,
		generator: p.Generator,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEquipmentRequest) (domain.Equipment, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Equipment{}, domain.ErrInvalidOrganization
	}

	now := s.clock.Now()
	equipment, err := domain.NewEquipment(s.genID.Generate(), orgID, uuid.NewString(), req.Details, now)
	if err != nil {
		return domain.Equipment{}, err
	}
	if req.CurrentTemperature != nil {
		if err := equipment.UpdateTemperature(*req.CurrentTemperature, now); err != nil {
			return domain.Equipment{}, err
		}
	}
	if err := equipment.UpdateLocation(req.LocationName, req.LocationAddress, req.LocationLatitude, req.LocationLongitude, now); err != nil {
		return domain.Equipment{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureUnique(ctx, tx, equipment); err != nil {
			return err
		}
		if err := s.repo.Insert(ctx, tx, equipment); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrSerialNumberExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Equipment{}, err
	}

	s.generateInitialData(ctx, equipment.ID)

	return *equipment, nil
}

// generateInitialData runs after commit. Failures never fail the create.
func (s *Service) generateInitialData(ctx context.Context, equipmentID snowflake.ID) {
	if s.generator == nil {
		return
	}
	if err := s.generator.GenerateInitialDataForEquipment(ctx, equipmentID); err != nil {
		s.log.Warn("initial data generation failed",
			zap.String("equipment_id", equipmentID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Equipment, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Equipment{}, domain.ErrInvalidOrganization
	}

	equipmentID, err := parseID(id)
	if err != nil {
		return domain.Equipment{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, equipmentID)
	if err != nil {
		return domain.Equipment{}, err
	}
	if item == nil {
		return domain.Equipment{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEquipmentRequest) (domain.ListEquipmentResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListEquipmentResponse{}, domain.ErrInvalidOrganization
	}

	filter := domain.ListEquipmentFilter{}
	if ownerID := strings.TrimSpace(req.OwnerID); ownerID != "" {
		id, err := snowflake.ParseString(ownerID)
		if err != nil || id <= 0 {
			return domain.ListEquipmentResponse{}, domain.ErrInvalidOwnerID
		}
		filter.OwnerID = id
	}
	if strings.TrimSpace(req.Type) != "" {
		equipmentType, err := domain.ParseType(req.Type)
		if err != nil {
			return domain.ListEquipmentResponse{}, err
		}
		filter.Type = equipmentType
	}

	pageSize := pagination.NormalizePageSize(req.PageSize, 50)

	items, err := s.repo.List(ctx, s.db, orgID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListEquipmentResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(item *domain.Equipment) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	equipment := make([]domain.Equipment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		equipment = append(equipment, *item)
	}

	resp := domain.ListEquipmentResponse{Equipment: equipment}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateEquipmentRequest) (*domain.Equipment, error) {
	return s.mutate(ctx, req.ID, func(tx *gorm.DB, equipment *domain.Equipment, now time.Time) error {
		if err := equipment.UpdateDetails(req.Details, now); err != nil {
			return err
		}
		return s.ensureUnique(ctx, tx, equipment)
	})
}

func (s *Service) UpdateTemperature(ctx context.Context, req domain.UpdateTemperatureRequest) (*domain.Equipment, error) {
	return s.mutate(ctx, req.ID, func(_ *gorm.DB, equipment *domain.Equipment, now time.Time) error {
		return equipment.UpdateTemperature(req.Temperature, now)
	})
}

func (s *Service) UpdatePowerState(ctx context.Context, req domain.UpdatePowerStateRequest) (*domain.Equipment, error) {
	return s.mutate(ctx, req.ID, func(_ *gorm.DB, equipment *domain.Equipment, now time.Time) error {
		equipment.UpdatePowerState(req.IsPoweredOn, now)
		return nil
	})
}

func (s *Service) UpdateLocation(ctx context.Context, req domain.UpdateLocationRequest) (*domain.Equipment, error) {
	return s.mutate(ctx, req.ID, func(_ *gorm.DB, equipment *domain.Equipment, now time.Time) error {
		return equipment.UpdateLocation(req.Name, req.Address, req.Latitude, req.Longitude, now)
	})
}

func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return false, domain.ErrInvalidOrganization
	}

	equipmentID, err := parseID(id)
	if err != nil {
		return false, err
	}

	deleted := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, orgID, equipmentID)
		if err != nil {
			return err
		}
		if item == nil {
			return nil
		}
		if err := s.repo.Delete(ctx, tx, orgID, equipmentID); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

// mutate loads the equipment, applies fn and persists the result in one
// transaction. A missing equipment yields (nil, nil).
func (s *Service) mutate(ctx context.Context, id string, fn func(tx *gorm.DB, equipment *domain.Equipment, now time.Time) error) (*domain.Equipment, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	equipmentID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var result *domain.Equipment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		equipment, err := s.repo.FindByID(ctx, tx, orgID, equipmentID)
		if err != nil {
			return err
		}
		if equipment == nil {
			return nil
		}

		if err := fn(tx, equipment, s.clock.Now()); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, equipment); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrSerialNumberExists
			}
			return err
		}
		result = equipment
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) ensureUnique(ctx context.Context, tx *gorm.DB, equipment *domain.Equipment) error {
	exists, err := s.repo.ExistsBySerialNumber(ctx, tx, equipment.OrgID, equipment.SerialNumber, equipment.ID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrSerialNumberExists
	}

	exists, err = s.repo.ExistsByCode(ctx, tx, equipment.OrgID, equipment.Code, equipment.ID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrCodeExists
	}
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
