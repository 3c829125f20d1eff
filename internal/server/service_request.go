package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	servicerequestdomain "github.com/smallbiznis/polarops/internal/servicerequest/domain"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
)

type createServiceRequestRequest struct {
	Title                 string       `json:"title"`
	Description           string       `json:"description"`
	IssueDetails          string       `json:"issue_details"`
	RequestTime           optionalTime `json:"request_time"`
	Priority              string       `json:"priority"`
	Urgency               string       `json:"urgency"`
	IsEmergency           bool         `json:"is_emergency"`
	ServiceType           string       `json:"service_type"`
	ReportedByUserID      idValue      `json:"reported_by_user_id"`
	EquipmentID           idValue      `json:"equipment_id"`
	ScheduledDate         optionalTime `json:"scheduled_date"`
	TimeSlot              string       `json:"time_slot"`
	ServiceAddress        string       `json:"service_address"`
	DesiredCompletionDate optionalTime `json:"desired_completion_date"`
}

type updateServiceRequestRequest struct {
	Status       string   `json:"status"`
	TechnicianID *idValue `json:"technician_id"`
}

type assignTechnicianRequest struct {
	TechnicianID idValue `json:"technician_id"`
}

type resolutionRequest struct {
	ResolutionDetails string              `json:"resolution_details"`
	TechnicianNotes   string              `json:"technician_notes"`
	Cost              decimal.NullDecimal `json:"cost"`
}

func (s *Server) CreateServiceRequest(c *gin.Context) {
	var req createServiceRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.serviceRequestSvc.Create(c.Request.Context(), servicerequestdomain.CreateServiceRequestRequest{
		Title:                 strings.TrimSpace(req.Title),
		Description:           strings.TrimSpace(req.Description),
		IssueDetails:          strings.TrimSpace(req.IssueDetails),
		RequestTime:           req.RequestTime.Value,
		Priority:              strings.TrimSpace(req.Priority),
		Urgency:               strings.TrimSpace(req.Urgency),
		IsEmergency:           req.IsEmergency,
		ServiceType:           strings.TrimSpace(req.ServiceType),
		ReportedByUserID:      req.ReportedByUserID.String(),
		EquipmentID:           req.EquipmentID.String(),
		ScheduledDate:         req.ScheduledDate.Value,
		TimeSlot:              strings.TrimSpace(req.TimeSlot),
		ServiceAddress:        strings.TrimSpace(req.ServiceAddress),
		DesiredCompletionDate: req.DesiredCompletionDate.Value,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListServiceRequests(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status      string `form:"status"`
		EquipmentID string `form:"equipment_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.serviceRequestSvc.List(c.Request.Context(), servicerequestdomain.ListServiceRequestRequest{
		PageToken:   query.PageToken,
		PageSize:    int32(query.PageSize),
		Status:      strings.TrimSpace(query.Status),
		EquipmentID: strings.TrimSpace(query.EquipmentID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetServiceRequestByID(c *gin.Context) {
	resp, err := s.serviceRequestSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateServiceRequest(c *gin.Context) {
	var req updateServiceRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var technicianID *string
	if req.TechnicianID != nil {
		value := req.TechnicianID.String()
		technicianID = &value
	}

	resp, err := s.serviceRequestSvc.Update(c.Request.Context(), servicerequestdomain.UpdateServiceRequestRequest{
		ID:           strings.TrimSpace(c.Param("id")),
		Status:       strings.TrimSpace(req.Status),
		TechnicianID: technicianID,
	})
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

func (s *Server) AssignServiceRequestTechnician(c *gin.Context) {
	var req assignTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.serviceRequestSvc.AssignTechnician(c.Request.Context(), servicerequestdomain.AssignTechnicianRequest{
		ID:           strings.TrimSpace(c.Param("id")),
		TechnicianID: req.TechnicianID.String(),
	})
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

func (s *Server) AddServiceRequestResolution(c *gin.Context) {
	var req resolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.serviceRequestSvc.AddResolutionDetails(c.Request.Context(), servicerequestdomain.AddResolutionRequest{
		ID:                strings.TrimSpace(c.Param("id")),
		ResolutionDetails: strings.TrimSpace(req.ResolutionDetails),
		TechnicianNotes:   strings.TrimSpace(req.TechnicianNotes),
		Cost:              req.Cost,
	})
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

func (s *Server) AddServiceRequestFeedback(c *gin.Context) {
	var req struct {
		Rating int `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.serviceRequestSvc.AddCustomerFeedback(c.Request.Context(), servicerequestdomain.AddFeedbackRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Rating: req.Rating,
	})
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

func isServiceRequestValidationError(err error) bool {
	switch err {
	case servicerequestdomain.ErrInvalidOrganization,
		servicerequestdomain.ErrInvalidID,
		servicerequestdomain.ErrInvalidTitle,
		servicerequestdomain.ErrInvalidDescription,
		servicerequestdomain.ErrInvalidStatus,
		servicerequestdomain.ErrInvalidEquipmentID,
		servicerequestdomain.ErrInvalidUserID,
		servicerequestdomain.ErrInvalidCost:
		return true
	default:
		return false
	}
}
