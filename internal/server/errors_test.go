package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/smallbiznis/polarops/internal/analytics/livefeed"
	equipmentdomain "github.com/smallbiznis/polarops/internal/equipment/domain"
	"github.com/smallbiznis/polarops/internal/lifecycle"
	workorderdomain "github.com/smallbiznis/polarops/internal/workorder/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{name: "nil", err: nil, status: http.StatusInternalServerError, kind: "internal_error"},
		{name: "request", err: invalidRequestError(), status: http.StatusBadRequest, kind: "validation_error"},
		{name: "domain validation", err: equipmentdomain.ErrInvalidSerialNumber, status: http.StatusBadRequest, kind: "validation_error"},
		{name: "rating", err: lifecycle.ErrInvalidRating, status: http.StatusBadRequest, kind: "validation_error"},
		{name: "duplicate serial", err: equipmentdomain.ErrSerialNumberExists, status: http.StatusConflict, kind: "conflict"},
		{name: "linked request", err: workorderdomain.ErrServiceRequestAlreadyLinked, status: http.StatusConflict, kind: "conflict"},
		{name: "duplicated key", err: gorm.ErrDuplicatedKey, status: http.StatusConflict, kind: "conflict"},
		{name: "feedback state", err: fmt.Errorf("wrap: %w", lifecycle.ErrFeedbackNotAllowed), status: http.StatusConflict, kind: "invalid_state"},
		{name: "not found", err: workorderdomain.ErrNotFound, status: http.StatusNotFound, kind: "not_found"},
		{name: "record not found", err: gorm.ErrRecordNotFound, status: http.StatusNotFound, kind: "not_found"},
		{name: "rate limited", err: ErrRateLimited, status: http.StatusTooManyRequests, kind: "rate_limited"},
		{name: "hub", err: livefeed.ErrHubUnavailable, status: http.StatusServiceUnavailable, kind: "service_unavailable"},
		{name: "unknown", err: fmt.Errorf("boom"), status: http.StatusInternalServerError, kind: "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.kind, payload.Type)
		})
	}
}

func TestMapErrorDerivesFieldFromCode(t *testing.T) {
	_, payload := mapError(equipmentdomain.ErrInvalidSerialNumber)

	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "invalid_serial_number", payload.Errors[0].Code)
	assert.Equal(t, "serial_number", payload.Errors[0].Field)
}

func TestClassifyErrorForLog(t *testing.T) {
	kind, code := classifyErrorForLog(equipmentdomain.ErrInvalidName)
	assert.Equal(t, "validation_error", kind)
	assert.Equal(t, "invalid_name", code)

	kind, code = classifyErrorForLog(fmt.Errorf("database exploded"))
	assert.Equal(t, "internal_error", kind)
	assert.Equal(t, "internal_error", code)

	kind, code = classifyErrorForLog(ErrRateLimited)
	assert.Equal(t, "rate_limited", kind)
	assert.Equal(t, "rate_limited", code)
}

func TestIDValueAcceptsStringsAndNumbers(t *testing.T) {
	var body struct {
		A idValue `json:"a"`
		B idValue `json:"b"`
		C idValue `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":" 123 ","b":1811111111111111111,"c":null}`), &body))

	assert.Equal(t, "123", body.A.String())
	assert.Equal(t, "1811111111111111111", body.B.String())
	assert.Equal(t, "", body.C.String())

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &body))
}

func TestOptionalTime(t *testing.T) {
	var body struct {
		At optionalTime `json:"at"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"at":"2026-10-14"}`), &body))
	require.NotNil(t, body.At.Value)
	assert.Equal(t, "2026-10-14T00:00:00Z", body.At.Value.Format("2006-01-02T15:04:05Z07:00"))

	require.NoError(t, json.Unmarshal([]byte(`{"at":"2026-10-14T08:30:00+07:00"}`), &body))
	require.NotNil(t, body.At.Value)
	assert.Equal(t, 1, body.At.Value.Hour())

	assert.Error(t, json.Unmarshal([]byte(`{"at":"yesterday"}`), &body))
}

func TestParseOptionalSnowflakeID(t *testing.T) {
	id, err := parseOptionalSnowflakeID("")
	require.NoError(t, err)
	assert.Zero(t, id)

	id, err = parseOptionalSnowflakeID("42")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	_, err = parseOptionalSnowflakeID("abc")
	assert.Error(t, err)
}

func TestParsePowerState(t *testing.T) {
	on, ok := parsePowerState(" on ")
	assert.True(t, ok)
	assert.True(t, on)

	on, ok = parsePowerState("OFF")
	assert.True(t, ok)
	assert.False(t, on)

	_, ok = parsePowerState("standby")
	assert.False(t, ok)
}
