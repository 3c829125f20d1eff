package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/polarops/internal/analytics/livefeed"
)

const streamHeartbeatInterval = 15 * time.Second

// StreamTemperatureReadings pushes readings of one equipment as server-sent
// events, starting with the buffered backlog.
func (s *Server) StreamTemperatureReadings(c *gin.Context) {
	if s.liveFeed == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	tagEquipment(c, id)

	equipment, err := s.equipmentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	equipmentID := equipment.ID.String()

	subscription, backlog, err := s.liveFeed.Subscribe(equipmentID)
	if err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	defer subscription.Close()

	writer := c.Writer
	flusher, ok := writer.(http.Flusher)
	if !ok {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	headers := writer.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if _, err := io.WriteString(writer, "retry: 2000\n\n"); err != nil {
		return
	}
	for _, event := range backlog {
		if err := writeReadingEvent(writer, equipmentID, event); err != nil {
			return
		}
	}
	flusher.Flush()

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(streamHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-subscription.Events():
			if !ok {
				return
			}
			if err := writeReadingEvent(writer, equipmentID, event); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := io.WriteString(writer, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeReadingEvent(w io.Writer, equipmentID string, event livefeed.Event) error {
	payload := event
	if payload.EquipmentID == "" {
		payload.EquipmentID = equipmentID
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", payload.Kind, data)
	return err
}
