package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	subscriptiondomain "github.com/smallbiznis/polarops/internal/subscription/domain"
)

type subscriptionPlanRequest struct {
	PlanName     string          `json:"plan_name"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	BillingCycle string          `json:"billing_cycle"`
	MaxEquipment *int            `json:"max_equipment"`
	MaxClients   *int            `json:"max_clients"`
	Features     []string        `json:"features"`
}

func (s *Server) CreateSubscriptionPlan(c *gin.Context) {
	var req subscriptionPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.subscriptionSvc.Create(c.Request.Context(), subscriptiondomain.CreatePlanRequest{
		PlanName:     strings.TrimSpace(req.PlanName),
		Price:        req.Price,
		Currency:     strings.TrimSpace(req.Currency),
		BillingCycle: strings.TrimSpace(req.BillingCycle),
		MaxEquipment: req.MaxEquipment,
		MaxClients:   req.MaxClients,
		Features:     req.Features,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSubscriptionPlans(c *gin.Context) {
	resp, err := s.subscriptionSvc.List(c.Request.Context(), subscriptiondomain.ListPlanRequest{
		UserType: strings.TrimSpace(c.Query("user_type")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSubscriptionPlanByID(c *gin.Context) {
	resp, err := s.subscriptionSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateSubscriptionPlan(c *gin.Context) {
	var req subscriptionPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.subscriptionSvc.UpdatePlan(c.Request.Context(), subscriptiondomain.UpdatePlanRequest{
		ID:           strings.TrimSpace(c.Param("id")),
		PlanName:     strings.TrimSpace(req.PlanName),
		Price:        req.Price,
		Currency:     strings.TrimSpace(req.Currency),
		BillingCycle: strings.TrimSpace(req.BillingCycle),
		MaxEquipment: req.MaxEquipment,
		MaxClients:   req.MaxClients,
		Features:     req.Features,
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

func isSubscriptionValidationError(err error) bool {
	switch err {
	case subscriptiondomain.ErrInvalidID,
		subscriptiondomain.ErrInvalidPlanName,
		subscriptiondomain.ErrInvalidPrice,
		subscriptiondomain.ErrInvalidCurrency,
		subscriptiondomain.ErrInvalidBillingCycle,
		subscriptiondomain.ErrInvalidMaxEquipment,
		subscriptiondomain.ErrInvalidMaxClients,
		subscriptiondomain.ErrInvalidUserType:
		return true
	default:
		return false
	}
}
