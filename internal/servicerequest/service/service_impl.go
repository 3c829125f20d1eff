package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/polarops/internal/clock"
	"github.com/smallbiznis/polarops/internal/lifecycle"
	"github.com/smallbiznis/polarops/internal/orgcontext"
	"github.com/smallbiznis/polarops/internal/servicerequest/domain"
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
		log:   p.Log.Named("servicerequest.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateServiceRequestRequest) (domain.ServiceRequest, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ServiceRequest{}, domain.ErrInvalidOrganization
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.ServiceRequest{}, domain.ErrInvalidTitle
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.ServiceRequest{}, domain.ErrInvalidDescription
	}
	priority, err := lifecycle.ParsePriority(req.Priority, lifecycle.PriorityMedium)
	if err != nil {
		return domain.ServiceRequest{}, err
	}
	equipmentID, err := parseOptionalID(req.EquipmentID, domain.ErrInvalidEquipmentID)
	if err != nil {
		return domain.ServiceRequest{}, err
	}
	reportedBy, err := parseOptionalID(req.ReportedByUserID, domain.ErrInvalidUserID)
	if err != nil {
		return domain.ServiceRequest{}, err
	}

	now := s.clock.Now()
	requestTime := now
	if req.RequestTime != nil {
		requestTime = req.RequestTime.UTC()
	}

	request := domain.ServiceRequest{
		ID:                    s.genID.Generate(),
		OrgID:                 orgID,
		OrderNumber:           ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Title:                 title,
		Description:           description,
		IssueDetails:          strings.TrimSpace(req.IssueDetails),
		RequestTime:           requestTime,
		Status:                domain.Lifecycle.Initial,
		Priority:              priority,
		Urgency:               strings.TrimSpace(req.Urgency),
		IsEmergency:           req.IsEmergency,
		ServiceType:           strings.TrimSpace(req.ServiceType),
		ReportedByUserID:      reportedBy,
		EquipmentID:           equipmentID,
		ScheduledDate:         req.ScheduledDate,
		TimeSlot:              strings.TrimSpace(req.TimeSlot),
		ServiceAddress:        strings.TrimSpace(req.ServiceAddress),
		DesiredCompletionDate: req.DesiredCompletionDate,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.repo.Insert(ctx, s.db, &request); err != nil {
		return domain.ServiceRequest{}, err
	}

	return request, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.ServiceRequest, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ServiceRequest{}, domain.ErrInvalidOrganization
	}

	requestID, err := parseID(id)
	if err != nil {
		return domain.ServiceRequest{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, requestID)
	if err != nil {
		return domain.ServiceRequest{}, err
	}
	if item == nil {
		return domain.ServiceRequest{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListServiceRequestRequest) (domain.ListServiceRequestResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListServiceRequestResponse{}, domain.ErrInvalidOrganization
	}

	filter := domain.ListServiceRequestFilter{}
	if strings.TrimSpace(req.Status) != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			return domain.ListServiceRequestResponse{}, err
		}
		filter.Status = status
	}
	equipmentID, err := parseOptionalID(req.EquipmentID, domain.ErrInvalidEquipmentID)
	if err != nil {
		return domain.ListServiceRequestResponse{}, err
	}
	filter.EquipmentID = equipmentID

	pageSize := pagination.NormalizePageSize(req.PageSize, 50)

	items, err := s.repo.List(ctx, s.db, orgID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListServiceRequestResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(item *domain.ServiceRequest) string {
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

	requests := make([]domain.ServiceRequest, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		requests = append(requests, *item)
	}

	resp := domain.ListServiceRequestResponse{ServiceRequests: requests}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateServiceRequestRequest) (*domain.ServiceRequest, error) {
	var status domain.Status
	if strings.TrimSpace(req.Status) != "" {
		parsed, err := domain.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	var technicianID *snowflake.ID
	if req.TechnicianID != nil {
		id, err := parseTechnicianID(*req.TechnicianID)
		if err != nil {
			return nil, err
		}
		technicianID = &id
	}

	return s.mutate(ctx, req.ID, func(request *domain.ServiceRequest, now time.Time) error {
		if status != "" {
			request.UpdateStatus(status, now)
		}
		if technicianID != nil {
			return request.AssignTechnician(*technicianID, now)
		}
		return nil
	})
}

func (s *Service) AssignTechnician(ctx context.Context, req domain.AssignTechnicianRequest) (*domain.ServiceRequest, error) {
	technicianID, err := parseTechnicianID(req.TechnicianID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, req.ID, func(request *domain.ServiceRequest, now time.Time) error {
		return request.AssignTechnician(technicianID, now)
	})
}

func (s *Service) AddResolutionDetails(ctx context.Context, req domain.AddResolutionRequest) (*domain.ServiceRequest, error) {
	return s.mutate(ctx, req.ID, func(request *domain.ServiceRequest, now time.Time) error {
		return request.AddResolutionDetails(req.ResolutionDetails, req.TechnicianNotes, req.Cost, now)
	})
}

func (s *Service) AddCustomerFeedback(ctx context.Context, req domain.AddFeedbackRequest) (*domain.ServiceRequest, error) {
	return s.mutate(ctx, req.ID, func(request *domain.ServiceRequest, now time.Time) error {
		return request.AddCustomerFeedback(req.Rating, now)
	})
}

// mutate loads the request, applies fn and persists it in one transaction.
// A missing request yields (nil, nil).
func (s *Service) mutate(ctx context.Context, id string, fn func(request *domain.ServiceRequest, now time.Time) error) (*domain.ServiceRequest, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	requestID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var result *domain.ServiceRequest
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := s.repo.FindByID(ctx, tx, orgID, requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return nil
		}
		if err := fn(request, s.clock.Now()); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, request); err != nil {
			return err
		}
		result = request
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

// parseTechnicianID accepts "0" and empty input as an unassignment.
func parseTechnicianID(value string) (snowflake.ID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	id, err := snowflake.ParseString(value)
	if err != nil || id < 0 {
		return 0, lifecycle.ErrInvalidTechnician
	}
	return id, nil
}

func parseOptionalID(value string, invalid error) (snowflake.ID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	id, err := snowflake.ParseString(value)
	if err != nil || id <= 0 {
		return 0, invalid
	}
	return id, nil
}
