package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/smallbiznis/polarops/internal/analytics/domain"
)

type recordTemperatureRequest struct {
	EquipmentID idValue      `json:"equipment_id"`
	Temperature *float64     `json:"temperature"`
	Timestamp   optionalTime `json:"timestamp"`
}

type recordEnergyRequest struct {
	EquipmentID idValue      `json:"equipment_id"`
	Consumption *float64     `json:"consumption"`
	Unit        string       `json:"unit"`
	Timestamp   optionalTime `json:"timestamp"`
}

func (s *Server) RecordTemperatureReading(c *gin.Context) {
	var req recordTemperatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	tagEquipment(c, req.EquipmentID.String())

	resp, err := s.analyticsSvc.RecordTemperatureReading(c.Request.Context(), analyticsdomain.RecordTemperatureRequest{
		EquipmentID: req.EquipmentID.String(),
		Temperature: req.Temperature,
		Timestamp:   req.Timestamp.Value,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordEnergyReading(c *gin.Context) {
	var req recordEnergyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	tagEquipment(c, req.EquipmentID.String())

	resp, err := s.analyticsSvc.RecordEnergyReading(c.Request.Context(), analyticsdomain.RecordEnergyRequest{
		EquipmentID: req.EquipmentID.String(),
		Consumption: req.Consumption,
		Unit:        strings.TrimSpace(req.Unit),
		Timestamp:   req.Timestamp.Value,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTemperatureReadings(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	tagEquipment(c, id)

	hours, err := parseOptionalInt(c.Query("hours"), "hours")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.analyticsSvc.ListTemperatureReadings(c.Request.Context(), analyticsdomain.ListReadingsRequest{
		EquipmentID: id,
		Hours:       hours,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEnergyReadings(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	tagEquipment(c, id)

	hours, err := parseOptionalInt(c.Query("hours"), "hours")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.analyticsSvc.ListEnergyReadings(c.Request.Context(), analyticsdomain.ListReadingsRequest{
		EquipmentID: id,
		Hours:       hours,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDailyTemperatureAverages(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	tagEquipment(c, id)

	days, err := parseOptionalInt(c.Query("days"), "days")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.analyticsSvc.ListDailyAverages(c.Request.Context(), analyticsdomain.ListDailyAveragesRequest{
		EquipmentID: id,
		Days:        days,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isAnalyticsValidationError(err error) bool {
	switch err {
	case analyticsdomain.ErrInvalidOrganization,
		analyticsdomain.ErrInvalidEquipmentID,
		analyticsdomain.ErrInvalidTemperature,
		analyticsdomain.ErrInvalidTimestamp,
		analyticsdomain.ErrInvalidConsumption,
		analyticsdomain.ErrInvalidUnit,
		analyticsdomain.ErrInvalidHours,
		analyticsdomain.ErrInvalidDays:
		return true
	default:
		return false
	}
}
