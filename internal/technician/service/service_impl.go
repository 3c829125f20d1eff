package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polarops/internal/clock"
	"github.com/smallbiznis/polarops/internal/orgcontext"
	"github.com/smallbiznis/polarops/internal/technician/domain"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
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
		log:   p.Log.Named("technician.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTechnicianRequest) (domain.Technician, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Technician{}, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Technician{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email != "" && !strings.Contains(email, "@") {
		return domain.Technician{}, domain.ErrInvalidEmail
	}

	if math.IsNaN(req.Rating) || req.Rating < 0 || req.Rating > domain.MaxRating {
		return domain.Technician{}, domain.ErrInvalidRating
	}

	availability, err := domain.ParseAvailability(req.Availability)
	if err != nil {
		return domain.Technician{}, err
	}

	var companyID snowflake.ID
	if raw := strings.TrimSpace(req.CompanyID); raw != "" {
		companyID, err = snowflake.ParseString(raw)
		if err != nil || companyID <= 0 {
			return domain.Technician{}, domain.ErrInvalidCompanyID
		}
	}

	now := s.clock.Now()
	technician := domain.Technician{
		ID:             s.genID.Generate(),
		OrgID:          orgID,
		Name:           name,
		Specialization: strings.TrimSpace(req.Specialization),
		Phone:          strings.TrimSpace(req.Phone),
		Email:          email,
		Rating:         req.Rating,
		Availability:   availability,
		CompanyID:      companyID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &technician); err != nil {
		return domain.Technician{}, err
	}

	return technician, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Technician, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Technician{}, domain.ErrInvalidOrganization
	}

	technicianID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || technicianID <= 0 {
		return domain.Technician{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, technicianID)
	if err != nil {
		return domain.Technician{}, err
	}
	if item == nil {
		return domain.Technician{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTechnicianRequest) (domain.ListTechnicianResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListTechnicianResponse{}, domain.ErrInvalidOrganization
	}

	filter := domain.ListTechnicianFilter{}
	if strings.TrimSpace(req.Availability) != "" {
		availability, err := domain.ParseAvailability(req.Availability)
		if err != nil {
			return domain.ListTechnicianResponse{}, err
		}
		filter.Availability = availability
	}

	pageSize := pagination.NormalizePageSize(req.PageSize, 50)

	items, err := s.repo.List(ctx, s.db, orgID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListTechnicianResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(item *domain.Technician) string {
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

	technicians := make([]domain.Technician, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		technicians = append(technicians, *item)
	}

	resp := domain.ListTechnicianResponse{Technicians: technicians}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
