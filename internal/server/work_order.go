package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	workorderdomain "github.com/smallbiznis/polarops/internal/workorder/domain"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
)

type createWorkOrderRequest struct {
	ServiceRequestID      idValue      `json:"service_request_id"`
	Title                 string       `json:"title"`
	Description           string       `json:"description"`
	IssueDetails          string       `json:"issue_details"`
	Priority              string       `json:"priority"`
	EquipmentID           idValue      `json:"equipment_id"`
	ServiceType           string       `json:"service_type"`
	ServiceAddress        string       `json:"service_address"`
	ScheduledDate         optionalTime `json:"scheduled_date"`
	TimeSlot              string       `json:"time_slot"`
	DesiredCompletionDate optionalTime `json:"desired_completion_date"`
}

func (s *Server) CreateWorkOrder(c *gin.Context) {
	var req createWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workOrderSvc.Create(c.Request.Context(), workorderdomain.CreateWorkOrderRequest{
		ServiceRequestID:      req.ServiceRequestID.String(),
		Title:                 strings.TrimSpace(req.Title),
		Description:           strings.TrimSpace(req.Description),
		IssueDetails:          strings.TrimSpace(req.IssueDetails),
		Priority:              strings.TrimSpace(req.Priority),
		EquipmentID:           req.EquipmentID.String(),
		ServiceType:           strings.TrimSpace(req.ServiceType),
		ServiceAddress:        strings.TrimSpace(req.ServiceAddress),
		ScheduledDate:         req.ScheduledDate.Value,
		TimeSlot:              strings.TrimSpace(req.TimeSlot),
		DesiredCompletionDate: req.DesiredCompletionDate.Value,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListWorkOrders(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status           string `form:"status"`
		ServiceRequestID string `form:"service_request_id"`
		TechnicianID     string `form:"technician_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workOrderSvc.List(c.Request.Context(), workorderdomain.ListWorkOrderRequest{
		PageToken:        query.PageToken,
		PageSize:         int32(query.PageSize),
		Status:           strings.TrimSpace(query.Status),
		ServiceRequestID: strings.TrimSpace(query.ServiceRequestID),
		TechnicianID:     strings.TrimSpace(query.TechnicianID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetWorkOrderByID(c *gin.Context) {
	resp, err := s.workOrderSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetWorkOrderByNumber(c *gin.Context) {
	resp, err := s.workOrderSvc.GetByNumber(c.Request.Context(), strings.TrimSpace(c.Param("number")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AssignWorkOrderTechnician(c *gin.Context) {
	var req assignTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workOrderSvc.AssignTechnician(c.Request.Context(), workorderdomain.AssignTechnicianRequest{
		ID:           strings.TrimSpace(c.Param("id")),
		TechnicianID: req.TechnicianID.String(),
	})
	respondWorkOrder(c, resp, err)
}

func (s *Server) UpdateWorkOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workOrderSvc.UpdateStatus(c.Request.Context(), workorderdomain.UpdateStatusRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Status: strings.TrimSpace(req.Status),
	})
	respondWorkOrder(c, resp, err)
}

func (s *Server) UpdateWorkOrderSchedule(c *gin.Context) {
	var req struct {
		ScheduledDate optionalTime `json:"scheduled_date"`
		TimeSlot      string       `json:"time_slot"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workOrderSvc.UpdateSchedule(c.Request.Context(), workorderdomain.UpdateScheduleRequest{
		ID:            strings.TrimSpace(c.Param("id")),
		ScheduledDate: req.ScheduledDate.Value,
		TimeSlot:      strings.TrimSpace(req.TimeSlot),
	})
	respondWorkOrder(c, resp, err)
}

func (s *Server) UpdateWorkOrderPriority(c *gin.Context) {
	var req struct {
		Priority string `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workOrderSvc.UpdatePriority(c.Request.Context(), workorderdomain.UpdatePriorityRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		Priority: strings.TrimSpace(req.Priority),
	})
	respondWorkOrder(c, resp, err)
}

func (s *Server) AddWorkOrderResolution(c *gin.Context) {
	var req resolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workOrderSvc.AddResolutionDetails(c.Request.Context(), workorderdomain.AddResolutionRequest{
		ID:                strings.TrimSpace(c.Param("id")),
		ResolutionDetails: strings.TrimSpace(req.ResolutionDetails),
		TechnicianNotes:   strings.TrimSpace(req.TechnicianNotes),
		Cost:              req.Cost,
	})
	respondWorkOrder(c, resp, err)
}

func (s *Server) AddWorkOrderFeedback(c *gin.Context) {
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workOrderSvc.AddCustomerFeedback(c.Request.Context(), workorderdomain.AddFeedbackRequest{
		ID:      strings.TrimSpace(c.Param("id")),
		Rating:  req.Rating,
		Comment: strings.TrimSpace(req.Comment),
	})
	respondWorkOrder(c, resp, err)
}

func respondWorkOrder(c *gin.Context, resp *workorderdomain.WorkOrder, err error) {
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isWorkOrderValidationError(err error) bool {
	switch err {
	case workorderdomain.ErrInvalidOrganization,
		workorderdomain.ErrInvalidID,
		workorderdomain.ErrInvalidNumber,
		workorderdomain.ErrInvalidTitle,
		workorderdomain.ErrInvalidDescription,
		workorderdomain.ErrInvalidIssueDetails,
		workorderdomain.ErrInvalidEquipmentID,
		workorderdomain.ErrInvalidServiceType,
		workorderdomain.ErrInvalidServiceAddress,
		workorderdomain.ErrInvalidStatus,
		workorderdomain.ErrInvalidCost,
		workorderdomain.ErrInvalidServiceRequest:
		return true
	default:
		return false
	}
}
