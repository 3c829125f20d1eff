package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	techniciandomain "github.com/smallbiznis/polarops/internal/technician/domain"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
)

type createTechnicianRequest struct {
	Name           string  `json:"name"`
	Specialization string  `json:"specialization"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
	Rating         float64 `json:"rating"`
	Availability   string  `json:"availability"`
	CompanyID      idValue `json:"company_id"`
}

func (s *Server) CreateTechnician(c *gin.Context) {
	var req createTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.technicianSvc.Create(c.Request.Context(), techniciandomain.CreateTechnicianRequest{
		Name:           strings.TrimSpace(req.Name),
		Specialization: strings.TrimSpace(req.Specialization),
		Phone:          strings.TrimSpace(req.Phone),
		Email:          strings.TrimSpace(req.Email),
		Rating:         req.Rating,
		Availability:   strings.TrimSpace(req.Availability),
		CompanyID:      req.CompanyID.String(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTechnicians(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Availability string `form:"availability"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.technicianSvc.List(c.Request.Context(), techniciandomain.ListTechnicianRequest{
		PageToken:    query.PageToken,
		PageSize:     int32(query.PageSize),
		Availability: strings.TrimSpace(query.Availability),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTechnicianByID(c *gin.Context) {
	resp, err := s.technicianSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isTechnicianValidationError(err error) bool {
	switch err {
	case techniciandomain.ErrInvalidOrganization,
		techniciandomain.ErrInvalidID,
		techniciandomain.ErrInvalidName,
		techniciandomain.ErrInvalidEmail,
		techniciandomain.ErrInvalidRating,
		techniciandomain.ErrInvalidAvailability,
		techniciandomain.ErrInvalidCompanyID:
		return true
	default:
		return false
	}
}
