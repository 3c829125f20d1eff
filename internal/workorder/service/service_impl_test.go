package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/polarops/internal/clock"
	"github.com/smallbiznis/polarops/internal/lifecycle"
	"github.com/smallbiznis/polarops/internal/migration"
	"github.com/smallbiznis/polarops/internal/orgcontext"
	servicerequestdomain "github.com/smallbiznis/polarops/internal/servicerequest/domain"
	servicerequestrepository "github.com/smallbiznis/polarops/internal/servicerequest/repository"
	"github.com/smallbiznis/polarops/internal/workorder/domain"
	"github.com/smallbiznis/polarops/internal/workorder/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testOrgID = snowflake.ID(555)

type fixture struct {
	svc    *Service
	db     *gorm.DB
	node   *snowflake.Node
	clock  *clock.FakeClock
	srRepo servicerequestdomain.Repository
}

func setup(t *testing.T, name string) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC))
	srRepo := servicerequestrepository.Provide()

	svc := New(Params{
		DB:                 db,
		Log:                zap.NewNop(),
		GenID:              node,
		Repo:               repository.Provide(),
		ServiceRequestRepo: srRepo,
		Clock:              clk,
	}).(*Service)
	return fixture{svc: svc, db: db, node: node, clock: clk, srRepo: srRepo}
}

func orgCtx() context.Context {
	return orgcontext.WithOrgID(context.Background(), testOrgID)
}

func workOrderRequest() domain.CreateWorkOrderRequest {
	return domain.CreateWorkOrderRequest{
		Title:          "Freezer repair",
		Description:    "Unit stopped cooling overnight",
		IssueDetails:   "Compressor does not start",
		Priority:       "high",
		EquipmentID:    "3003",
		ServiceType:    "repair",
		ServiceAddress: "Av. Principal 100",
	}
}

func insertServiceRequest(t *testing.T, f fixture) *servicerequestdomain.ServiceRequest {
	t.Helper()
	now := f.clock.Now()
	request := &servicerequestdomain.ServiceRequest{
		ID:          f.node.Generate(),
		OrgID:       testOrgID,
		OrderNumber: f.node.Generate().String(),
		Title:       "No cooling",
		Description: "Freezer warm",
		RequestTime: now,
		Status:      servicerequestdomain.StatusPending,
		Priority:    lifecycle.PriorityMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.srRepo.Insert(context.Background(), f.db, request))
	return request
}

func TestCreateWorkOrder(t *testing.T) {
	f := setup(t, "wo_create")

	order, err := f.svc.Create(orgCtx(), workOrderRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCreated, order.Status)
	assert.Equal(t, lifecycle.PriorityHigh, order.Priority)
	assert.True(t, strings.HasPrefix(order.WorkOrderNumber, "WO-20261014-"))
	assert.Len(t, order.WorkOrderNumber, len("WO-20261014-")+8)
	assert.Nil(t, order.ServiceRequestID)

	got, err := f.svc.GetByNumber(orgCtx(), strings.ToLower(order.WorkOrderNumber))
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.svc.GetByNumber(orgCtx(), "20261014-ABC")
	assert.ErrorIs(t, err, domain.ErrInvalidNumber)
}

func TestCreateValidation(t *testing.T) {
	f := setup(t, "wo_create_validation")

	tests := []struct {
		name   string
		mutate func(*domain.CreateWorkOrderRequest)
		want   error
	}{
		{"title", func(r *domain.CreateWorkOrderRequest) { r.Title = "" }, domain.ErrInvalidTitle},
		{"description", func(r *domain.CreateWorkOrderRequest) { r.Description = " " }, domain.ErrInvalidDescription},
		{"issue details", func(r *domain.CreateWorkOrderRequest) { r.IssueDetails = "" }, domain.ErrInvalidIssueDetails},
		{"equipment", func(r *domain.CreateWorkOrderRequest) { r.EquipmentID = "" }, domain.ErrInvalidEquipmentID},
		{"service type", func(r *domain.CreateWorkOrderRequest) { r.ServiceType = "" }, domain.ErrInvalidServiceType},
		{"address", func(r *domain.CreateWorkOrderRequest) { r.ServiceAddress = "" }, domain.ErrInvalidServiceAddress},
		{"priority required", func(r *domain.CreateWorkOrderRequest) { r.Priority = "" }, lifecycle.ErrInvalidPriority},
		{"service request id", func(r *domain.CreateWorkOrderRequest) { r.ServiceRequestID = "x" }, domain.ErrInvalidServiceRequest},
		{"unknown service request", func(r *domain.CreateWorkOrderRequest) { r.ServiceRequestID = "999999" }, domain.ErrInvalidServiceRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := workOrderRequest()
			tt.mutate(&req)
			_, err := f.svc.Create(orgCtx(), req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateLinksAndAcceptsServiceRequest(t *testing.T) {
	f := setup(t, "wo_link_service_request")
	request := insertServiceRequest(t, f)

	req := workOrderRequest()
	req.ServiceRequestID = request.ID.String()
	order, err := f.svc.Create(orgCtx(), req)
	require.NoError(t, err)
	require.NotNil(t, order.ServiceRequestID)
	assert.Equal(t, request.ID, *order.ServiceRequestID)

	stored, err := f.srRepo.FindByID(context.Background(), f.db, testOrgID, request.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, servicerequestdomain.StatusAccepted, stored.Status)

	_, err = f.svc.Create(orgCtx(), req)
	assert.ErrorIs(t, err, domain.ErrServiceRequestAlreadyLinked)

	resp, err := f.svc.List(orgCtx(), domain.ListWorkOrderRequest{ServiceRequestID: request.ID.String()})
	require.NoError(t, err)
	assert.Len(t, resp.WorkOrders, 1)
}

func TestCreateForcesAcceptedOnProgressedRequest(t *testing.T) {
	f := setup(t, "wo_force_accept")
	request := insertServiceRequest(t, f)
	request.UpdateStatus(servicerequestdomain.StatusInProgress, f.clock.Now())
	require.NoError(t, f.srRepo.Update(context.Background(), f.db, request))

	req := workOrderRequest()
	req.ServiceRequestID = request.ID.String()
	_, err := f.svc.Create(orgCtx(), req)
	require.NoError(t, err)

	stored, err := f.srRepo.FindByID(context.Background(), f.db, testOrgID, request.ID)
	require.NoError(t, err)
	assert.Equal(t, servicerequestdomain.StatusAccepted, stored.Status)
}

func TestLifecycleThroughService(t *testing.T) {
	f := setup(t, "wo_lifecycle")
	order, err := f.svc.Create(orgCtx(), workOrderRequest())
	require.NoError(t, err)
	id := order.ID.String()

	_, err = f.svc.AssignTechnician(orgCtx(), domain.AssignTechnicianRequest{ID: id, TechnicianID: "0"})
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTechnician)

	updated, err := f.svc.AssignTechnician(orgCtx(), domain.AssignTechnicianRequest{ID: id, TechnicianID: "12"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, domain.StatusAssigned, updated.Status)

	_, err = f.svc.AddCustomerFeedback(orgCtx(), domain.AddFeedbackRequest{ID: id, Rating: 4})
	assert.ErrorIs(t, err, lifecycle.ErrFeedbackNotAllowed)

	scheduled := f.clock.Now().AddDate(0, 0, 1)
	updated, err = f.svc.UpdateSchedule(orgCtx(), domain.UpdateScheduleRequest{ID: id, ScheduledDate: &scheduled, TimeSlot: "morning"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "morning", updated.TimeSlot)

	updated, err = f.svc.UpdatePriority(orgCtx(), domain.UpdatePriorityRequest{ID: id, Priority: "critical"})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.PriorityCritical, updated.Priority)

	_, err = f.svc.UpdatePriority(orgCtx(), domain.UpdatePriorityRequest{ID: id, Priority: ""})
	assert.ErrorIs(t, err, lifecycle.ErrInvalidPriority)

	updated, err = f.svc.UpdateStatus(orgCtx(), domain.UpdateStatusRequest{ID: id, Status: "completed"})
	require.NoError(t, err)
	require.NotNil(t, updated.ActualCompletionDate)

	updated, err = f.svc.AddCustomerFeedback(orgCtx(), domain.AddFeedbackRequest{ID: id, Rating: 4, Comment: "quick fix"})
	require.NoError(t, err)
	require.NotNil(t, updated)

	got, err := f.svc.GetByID(orgCtx(), id)
	require.NoError(t, err)
	require.NotNil(t, got.CustomerFeedbackRating)
	assert.Equal(t, 4, *got.CustomerFeedbackRating)
	assert.Equal(t, "quick fix", got.CustomerFeedbackComment)
	assert.EqualValues(t, 12, got.AssignedTechnicianID)
	assert.Equal(t, domain.StatusCompleted, got.Status)
}

func TestListByTechnicianAndStatus(t *testing.T) {
	f := setup(t, "wo_list")

	first, err := f.svc.Create(orgCtx(), workOrderRequest())
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	_, err = f.svc.Create(orgCtx(), workOrderRequest())
	require.NoError(t, err)

	_, err = f.svc.AssignTechnician(orgCtx(), domain.AssignTechnicianRequest{ID: first.ID.String(), TechnicianID: "44"})
	require.NoError(t, err)

	resp, err := f.svc.List(orgCtx(), domain.ListWorkOrderRequest{TechnicianID: "44"})
	require.NoError(t, err)
	require.Len(t, resp.WorkOrders, 1)
	assert.Equal(t, first.ID, resp.WorkOrders[0].ID)

	resp, err = f.svc.List(orgCtx(), domain.ListWorkOrderRequest{Status: "created"})
	require.NoError(t, err)
	assert.Len(t, resp.WorkOrders, 1)

	resp, err = f.svc.List(orgCtx(), domain.ListWorkOrderRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.WorkOrders, 2)

	_, err = f.svc.List(orgCtx(), domain.ListWorkOrderRequest{TechnicianID: "x"})
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTechnician)
}

func TestCommandsOnMissingWorkOrder(t *testing.T) {
	f := setup(t, "wo_missing")

	updated, err := f.svc.UpdateStatus(orgCtx(), domain.UpdateStatusRequest{ID: "123", Status: "completed"})
	require.NoError(t, err)
	assert.Nil(t, updated)

	_, err = f.svc.GetByID(orgCtx(), "123")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.GetByNumber(orgCtx(), "WO-20261014-NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
