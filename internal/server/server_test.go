package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	analyticsrepository "github.com/smallbiznis/polarops/internal/analytics/repository"
	analyticsservice "github.com/smallbiznis/polarops/internal/analytics/service"
	"github.com/smallbiznis/polarops/internal/clock"
	"github.com/smallbiznis/polarops/internal/config"
	equipmentrepository "github.com/smallbiznis/polarops/internal/equipment/repository"
	equipmentservice "github.com/smallbiznis/polarops/internal/equipment/service"
	"github.com/smallbiznis/polarops/internal/migration"
	"github.com/smallbiznis/polarops/internal/observability"
	servicerequestrepository "github.com/smallbiznis/polarops/internal/servicerequest/repository"
	servicerequestservice "github.com/smallbiznis/polarops/internal/servicerequest/service"
	subscriptionrepository "github.com/smallbiznis/polarops/internal/subscription/repository"
	subscriptionservice "github.com/smallbiznis/polarops/internal/subscription/service"
	technicianrepository "github.com/smallbiznis/polarops/internal/technician/repository"
	technicianservice "github.com/smallbiznis/polarops/internal/technician/service"
	workorderrepository "github.com/smallbiznis/polarops/internal/workorder/repository"
	workorderservice "github.com/smallbiznis/polarops/internal/workorder/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testOrg = "4242"

func newTestServer(t *testing.T, name string) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	equipmentRepo := equipmentrepository.Provide()
	readingRepo := analyticsrepository.Provide()
	serviceRequestRepo := servicerequestrepository.Provide()

	recorder := analyticsservice.NewRecorder(analyticsservice.RecorderParams{
		DB:            db,
		Log:           log,
		GenID:         node,
		Repo:          readingRepo,
		EquipmentRepo: equipmentRepo,
		Clock:         clk,
	})

	return NewServer(ServerParams{
		Gin: NewEngine(observability.Config{LogLevel: "info"}, nil),
		Cfg: config.Config{Environment: "test"},
		EquipmentSvc: equipmentservice.New(equipmentservice.Params{
			DB: db, Log: log, GenID: node, Repo: equipmentRepo, Clock: clk,
		}),
		AnalyticsSvc: analyticsservice.New(analyticsservice.Params{
			DB: db, Log: log, Repo: readingRepo, EquipmentRepo: equipmentRepo, Clock: clk, Recorder: recorder,
		}),
		ServiceRequestSvc: servicerequestservice.New(servicerequestservice.Params{
			DB: db, Log: log, GenID: node, Repo: serviceRequestRepo, Clock: clk,
		}),
		WorkOrderSvc: workorderservice.New(workorderservice.Params{
			DB: db, Log: log, GenID: node, Repo: workorderrepository.Provide(), ServiceRequestRepo: serviceRequestRepo, Clock: clk,
		}),
		TechnicianSvc: technicianservice.New(technicianservice.Params{
			DB: db, Log: log, GenID: node, Repo: technicianrepository.Provide(), Clock: clk,
		}),
		SubscriptionSvc: subscriptionservice.New(subscriptionservice.Params{
			DB: db, Log: log, GenID: node, Repo: subscriptionrepository.Provide(), Clock: clk,
		}),
	})
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderOrg, testOrg)

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

type dataEnvelope struct {
	Data map[string]any `json:"data"`
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env dataEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func equipmentBody(serial, code string) map[string]any {
	return map[string]any{
		"name":                    "Cold room " + code,
		"type":                    "COLD_ROOM",
		"serial_number":           serial,
		"code":                    code,
		"optimal_temperature_min": 0,
		"optimal_temperature_max": 4,
	}
}

func createEquipment(t *testing.T, s *Server, serial, code string) string {
	t.Helper()
	w := doRequest(t, s, http.MethodPost, "/api/equipment", equipmentBody(serial, code))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id, ok := decodeData(t, w)["id"].(string)
	require.True(t, ok)
	return id
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "server_health")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAPIRequiresOrganizationHeader(t *testing.T) {
	s := newTestServer(t, "server_org_header")

	for _, header := range []string{"", "not-a-number", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/api/equipment", nil)
		if header != "" {
			req.Header.Set(HeaderOrg, header)
		}
		w := httptest.NewRecorder()
		s.Engine().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, header)
		payload := decodeError(t, w)
		assert.Equal(t, "validation_error", payload.Type)
		require.Len(t, payload.Errors, 1)
		assert.Equal(t, "invalid_organization", payload.Errors[0].Code)
	}
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	s := newTestServer(t, "server_no_route")

	w := doRequest(t, s, http.MethodGet, "/nope", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Type)
}

func TestCreateEquipmentRejectsDuplicateSerial(t *testing.T) {
	s := newTestServer(t, "server_equipment_duplicate")

	createEquipment(t, s, "SN-1", "CR-1")
	w := doRequest(t, s, http.MethodPost, "/api/equipment", equipmentBody("SN-1", "CR-2"))

	assert.Equal(t, http.StatusConflict, w.Code)
	payload := decodeError(t, w)
	assert.Equal(t, "conflict", payload.Type)
	assert.Equal(t, "serial number already exists", payload.Message)
}

func TestCreateEquipmentValidation(t *testing.T) {
	s := newTestServer(t, "server_equipment_validation")

	body := equipmentBody("SN-1", "CR-1")
	delete(body, "name")
	w := doRequest(t, s, http.MethodPost, "/api/equipment", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	payload := decodeError(t, w)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "invalid_name", payload.Errors[0].Code)
	assert.Equal(t, "name", payload.Errors[0].Field)
}

func TestCreateEquipmentMalformedBody(t *testing.T) {
	s := newTestServer(t, "server_equipment_malformed")

	req := httptest.NewRequest(http.MethodPost, "/api/equipment", bytes.NewBufferString("{"))
	req.Header.Set(HeaderOrg, testOrg)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	payload := decodeError(t, w)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "invalid_request", payload.Errors[0].Code)
}

func TestEquipmentPowerOperation(t *testing.T) {
	s := newTestServer(t, "server_equipment_power")
	id := createEquipment(t, s, "SN-1", "CR-1")

	w := doRequest(t, s, http.MethodPatch, "/api/equipment/"+id+"/operations", map[string]any{
		"operation": "power",
		"power":     "off",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, false, decodeData(t, w)["is_powered_on"])
}

func TestEquipmentOperationValidation(t *testing.T) {
	s := newTestServer(t, "server_equipment_operation_validation")
	id := createEquipment(t, s, "SN-1", "CR-1")

	cases := []struct {
		name string
		body map[string]any
		code string
	}{
		{name: "unknown operation", body: map[string]any{"operation": "defrost"}, code: "invalid_operation"},
		{name: "bad power", body: map[string]any{"operation": "power", "power": "maybe"}, code: "invalid_power"},
		{name: "missing temperature", body: map[string]any{"operation": "temperature"}, code: "invalid_temperature"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(t, s, http.MethodPatch, "/api/equipment/"+id+"/operations", tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			payload := decodeError(t, w)
			require.Len(t, payload.Errors, 1)
			assert.Equal(t, tc.code, payload.Errors[0].Code)
		})
	}
}

func TestMissingEquipmentReturnsNotFound(t *testing.T) {
	s := newTestServer(t, "server_equipment_missing")
	missing := "1234567890"

	w := doRequest(t, s, http.MethodGet, "/api/equipment/"+missing, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, s, http.MethodPatch, "/api/equipment/"+missing+"/operations", map[string]any{
		"operation": "power",
		"power":     "ON",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, s, http.MethodDelete, "/api/equipment/"+missing, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteEquipment(t *testing.T) {
	s := newTestServer(t, "server_equipment_delete")
	id := createEquipment(t, s, "SN-1", "CR-1")

	w := doRequest(t, s, http.MethodDelete, "/api/equipment/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"id": id, "deleted": true}, decodeData(t, w))

	w = doRequest(t, s, http.MethodGet, "/api/equipment/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEquipmentIsScopedToOrganization(t *testing.T) {
	s := newTestServer(t, "server_equipment_scope")
	id := createEquipment(t, s, "SN-1", "CR-1")

	req := httptest.NewRequest(http.MethodGet, "/api/equipment/"+id, nil)
	req.Header.Set(HeaderOrg, "9999")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func createWorkOrder(t *testing.T, s *Server, equipmentID string) string {
	t.Helper()
	w := doRequest(t, s, http.MethodPost, "/api/work-orders", map[string]any{
		"title":           "Compressor noise",
		"description":     "Loud rattle from the compressor",
		"issue_details":   "Started after the last defrost cycle",
		"equipment_id":    equipmentID,
		"service_type":    "REPAIR",
		"service_address": "Jl. Sudirman 1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id, ok := decodeData(t, w)["id"].(string)
	require.True(t, ok)
	return id
}

func TestWorkOrderFeedbackBeforeCompletion(t *testing.T) {
	s := newTestServer(t, "server_work_order_feedback")
	equipmentID := createEquipment(t, s, "SN-1", "CR-1")
	orderID := createWorkOrder(t, s, equipmentID)

	w := doRequest(t, s, http.MethodPost, "/api/work-orders/"+orderID+"/feedback", map[string]any{"rating": 5})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_state", decodeError(t, w).Type)

	w = doRequest(t, s, http.MethodPost, "/api/work-orders/"+orderID+"/feedback", map[string]any{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, s, http.MethodPatch, "/api/work-orders/"+orderID+"/status", map[string]any{"status": "COMPLETED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotNil(t, decodeData(t, w)["actual_completion_date"])

	w = doRequest(t, s, http.MethodPost, "/api/work-orders/"+orderID+"/feedback", map[string]any{"rating": 5, "comment": "quick fix"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 5, decodeData(t, w)["customer_feedback_rating"])
}

func TestWorkOrderLookupByNumber(t *testing.T) {
	s := newTestServer(t, "server_work_order_number")
	equipmentID := createEquipment(t, s, "SN-1", "CR-1")
	orderID := createWorkOrder(t, s, equipmentID)

	w := doRequest(t, s, http.MethodGet, "/api/work-orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	number, ok := decodeData(t, w)["work_order_number"].(string)
	require.True(t, ok)

	w = doRequest(t, s, http.MethodGet, "/api/work-orders/number/"+number, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, orderID, decodeData(t, w)["id"])
}

func TestMissingWorkOrderReturnsNotFound(t *testing.T) {
	s := newTestServer(t, "server_work_order_missing")

	w := doRequest(t, s, http.MethodPatch, "/api/work-orders/1234567890/priority", map[string]any{"priority": "HIGH"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}
