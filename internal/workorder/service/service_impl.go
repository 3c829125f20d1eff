package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/polarops/internal/clock"
	"github.com/smallbiznis/polarops/internal/lifecycle"
	"github.com/smallbiznis/polarops/internal/orgcontext"
	servicerequestdomain "github.com/smallbiznis/polarops/internal/servicerequest/domain"
	"github.com/smallbiznis/polarops/internal/workorder/domain"
	"github.com/smallbiznis/polarops/pkg/db"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB                 *gorm.DB
	Log                *zap.Logger
	GenID              *snowflake.Node
	Repo               domain.Repository
	ServiceRequestRepo servicerequestdomain.Repository
	Clock              clock.Clock
}

type Service struct {
	db                 *gorm.DB
	log                *zap.Logger
	genID              *snowflake.Node
	repo               domain.Repository
	serviceRequestRepo servicerequestdomain.Repository
	clock              clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:                 p.DB,
		log:                p.Log.Named("workorder.service"),
		genID:              p.GenID,
		repo:               p.Repo,
		serviceRequestRepo: p.ServiceRequestRepo,
		clock:              p.Clock,
	}
}

// Create links the work order to its service request, if any, and accepts
// that request in the same transaction.
func (s *Service) Create(ctx context.Context, req domain.CreateWorkOrderRequest) (domain.WorkOrder, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.WorkOrder{}, domain.ErrInvalidOrganization
	}

	order, err := s.newWorkOrder(orgID, req)
	if err != nil {
		return domain.WorkOrder{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if order.ServiceRequestID != nil {
			if err := s.linkServiceRequest(ctx, tx, orgID, *order.ServiceRequestID); err != nil {
				return err
			}
		}
		if err := s.repo.Insert(ctx, tx, order); err != nil {
			if db.IsDuplicateKeyErr(err) && order.ServiceRequestID != nil {
				return domain.ErrServiceRequestAlreadyLinked
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.WorkOrder{}, err
	}

	s.log.Info("work order created",
		zap.String("work_order_id", order.ID.String()),
		zap.String("work_order_number", order.WorkOrderNumber),
	)
	return *order, nil
}

func (s *Service) newWorkOrder(orgID snowflake.ID, req domain.CreateWorkOrderRequest) (*domain.WorkOrder, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, domain.ErrInvalidDescription
	}
	issueDetails := strings.TrimSpace(req.IssueDetails)
	if issueDetails == "" {
		return nil, domain.ErrInvalidIssueDetails
	}
	equipmentID, err := snowflake.ParseString(strings.TrimSpace(req.EquipmentID))
	if err != nil || equipmentID <= 0 {
		return nil, domain.ErrInvalidEquipmentID
	}
	serviceType := strings.TrimSpace(req.ServiceType)
	if serviceType == "" {
		return nil, domain.ErrInvalidServiceType
	}
	serviceAddress := strings.TrimSpace(req.ServiceAddress)
	if serviceAddress == "" {
		return nil, domain.ErrInvalidServiceAddress
	}
	priority, err := lifecycle.ParsePriority(req.Priority, "")
	if err != nil {
		return nil, err
	}

	var serviceRequestID *snowflake.ID
	if raw := strings.TrimSpace(req.ServiceRequestID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id <= 0 {
			return nil, domain.ErrInvalidServiceRequest
		}
		serviceRequestID = &id
	}

	now := s.clock.Now()
	return &domain.WorkOrder{
		ID:                    s.genID.Generate(),
		OrgID:                 orgID,
		WorkOrderNumber:       domain.FormatNumber(now, uuid.NewString()),
		ServiceRequestID:      serviceRequestID,
		Title:                 title,
		Description:           description,
		IssueDetails:          issueDetails,
		CreationTime:          now,
		Status:                domain.Lifecycle.Initial,
		Priority:              priority,
		EquipmentID:           equipmentID,
		ServiceType:           serviceType,
		ScheduledDate:         req.ScheduledDate,
		TimeSlot:              strings.TrimSpace(req.TimeSlot),
		ServiceAddress:        serviceAddress,
		DesiredCompletionDate: req.DesiredCompletionDate,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

func (s *Service) linkServiceRequest(ctx context.Context, tx *gorm.DB, orgID, serviceRequestID snowflake.ID) error {
	request, err := s.serviceRequestRepo.FindByID(ctx, tx, orgID, serviceRequestID)
	if err != nil {
		return err
	}
	if request == nil {
		return domain.ErrInvalidServiceRequest
	}

	existing, err := s.repo.FindByServiceRequestID(ctx, tx, orgID, serviceRequestID)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrServiceRequestAlreadyLinked
	}

	request.UpdateStatus(servicerequestdomain.StatusAccepted, s.clock.Now())
	return s.serviceRequestRepo.Update(ctx, tx, request)
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.WorkOrder, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.WorkOrder{}, domain.ErrInvalidOrganization
	}

	orderID, err := parseID(id)
	if err != nil {
		return domain.WorkOrder{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, orderID)
	if err != nil {
		return domain.WorkOrder{}, err
	}
	if item == nil {
		return domain.WorkOrder{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) GetByNumber(ctx context.Context, number string) (domain.WorkOrder, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.WorkOrder{}, domain.ErrInvalidOrganization
	}

	number = strings.ToUpper(strings.TrimSpace(number))
	if !strings.HasPrefix(number, domain.NumberPrefix) {
		return domain.WorkOrder{}, domain.ErrInvalidNumber
	}

	item, err := s.repo.FindByNumber(ctx, s.db, orgID, number)
	if err != nil {
		return domain.WorkOrder{}, err
	}
	if item == nil {
		return domain.WorkOrder{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListWorkOrderRequest) (domain.ListWorkOrderResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListWorkOrderResponse{}, domain.ErrInvalidOrganization
	}

	filter := domain.ListWorkOrderFilter{}
	if strings.TrimSpace(req.Status) != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			return domain.ListWorkOrderResponse{}, err
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(req.ServiceRequestID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id <= 0 {
			return domain.ListWorkOrderResponse{}, domain.ErrInvalidServiceRequest
		}
		filter.ServiceRequestID = id
	}
	if raw := strings.TrimSpace(req.TechnicianID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id <= 0 {
			return domain.ListWorkOrderResponse{}, lifecycle.ErrInvalidTechnician
		}
		filter.TechnicianID = id
	}

	pageSize := pagination.NormalizePageSize(req.PageSize, 50)

	items, err := s.repo.List(ctx, s.db, orgID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListWorkOrderResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(item *domain.WorkOrder) string {
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

	orders := make([]domain.WorkOrder, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		orders = append(orders, *item)
	}

	resp := domain.ListWorkOrderResponse{WorkOrders: orders}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) AssignTechnician(ctx context.Context, req domain.AssignTechnicianRequest) (*domain.WorkOrder, error) {
	technicianID, err := snowflake.ParseString(strings.TrimSpace(req.TechnicianID))
	if err != nil {
		return nil, lifecycle.ErrInvalidTechnician
	}
	return s.mutate(ctx, req.ID, func(order *domain.WorkOrder, now time.Time) error {
		return order.AssignTechnician(technicianID, now)
	})
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (*domain.WorkOrder, error) {
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, req.ID, func(order *domain.WorkOrder, now time.Time) error {
		order.UpdateStatus(status, now)
		return nil
	})
}

func (s *Service) UpdateSchedule(ctx context.Context, req domain.UpdateScheduleRequest) (*domain.WorkOrder, error) {
	return s.mutate(ctx, req.ID, func(order *domain.WorkOrder, now time.Time) error {
		order.UpdateSchedule(req.ScheduledDate, req.TimeSlot, now)
		return nil
	})
}

func (s *Service) UpdatePriority(ctx context.Context, req domain.UpdatePriorityRequest) (*domain.WorkOrder, error) {
	priority, err := lifecycle.ParsePriority(req.Priority, "")
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, req.ID, func(order *domain.WorkOrder, now time.Time) error {
		order.UpdatePriority(priority, now)
		return nil
	})
}

func (s *Service) AddResolutionDetails(ctx context.Context, req domain.AddResolutionRequest) (*domain.WorkOrder, error) {
	return s.mutate(ctx, req.ID, func(order *domain.WorkOrder, now time.Time) error {
		return order.AddResolutionDetails(req.ResolutionDetails, req.TechnicianNotes, req.Cost, now)
	})
}

func (s *Service) AddCustomerFeedback(ctx context.Context, req domain.AddFeedbackRequest) (*domain.WorkOrder, error) {
	return s.mutate(ctx, req.ID, func(order *domain.WorkOrder, now time.Time) error {
		return order.AddCustomerFeedback(req.Rating, req.Comment, now)
	})
}

func (s *Service) mutate(ctx context.Context, id string, fn func(order *domain.WorkOrder, now time.Time) error) (*domain.WorkOrder, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var result *domain.WorkOrder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByID(ctx, tx, orgID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return nil
		}
		if err := fn(order, s.clock.Now()); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		if errors.Is(err, lifecycle.ErrFeedbackNotAllowed) {
			s.log.Debug("feedback rejected before completion", zap.String("work_order_id", orderID.String()))
		}
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
