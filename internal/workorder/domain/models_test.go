package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/polarops/internal/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func created() *WorkOrder {
	return &WorkOrder{ID: 1, OrgID: 2, Status: StatusCreated, Priority: lifecycle.PriorityHigh}
}

func TestFormatNumber(t *testing.T) {
	number := FormatNumber(testNow, "1a2b3c4d-5e6f-7081-92a3-b4c5d6e7f809")
	assert.Equal(t, "WO-20261014-1A2B3C4D", number)

	assert.Equal(t, "WO-20261014-AB", FormatNumber(testNow, "ab"))
}

func TestAssignTechnicianRequiresPositiveID(t *testing.T) {
	w := created()
	assert.ErrorIs(t, w.AssignTechnician(0, testNow), lifecycle.ErrInvalidTechnician)
	assert.Equal(t, StatusCreated, w.Status)

	require.NoError(t, w.AssignTechnician(9, testNow))
	assert.Equal(t, StatusAssigned, w.Status)
	assert.EqualValues(t, 9, w.AssignedTechnicianID)

	w.UpdateStatus(StatusInProgress, testNow)
	require.NoError(t, w.AssignTechnician(10, testNow))
	assert.Equal(t, StatusInProgress, w.Status)
}

func TestUpdateStatusStampsCompletion(t *testing.T) {
	w := created()
	w.UpdateStatus(StatusInProgress, testNow)
	assert.Nil(t, w.ActualCompletionDate)

	done := testNow.Add(time.Hour)
	w.UpdateStatus(StatusCompleted, done)
	require.NotNil(t, w.ActualCompletionDate)
	assert.Equal(t, done, *w.ActualCompletionDate)
}

func TestFeedbackOnlyAfterCompletion(t *testing.T) {
	w := created()
	assert.ErrorIs(t, w.AddCustomerFeedback(5, "great", testNow), lifecycle.ErrFeedbackNotAllowed)
	assert.ErrorIs(t, w.AddCustomerFeedback(7, "", testNow), lifecycle.ErrInvalidRating, "rating is checked first")

	w.UpdateStatus(StatusCompleted, testNow)
	require.NoError(t, w.AddCustomerFeedback(5, " great ", testNow))
	require.NotNil(t, w.CustomerFeedbackRating)
	assert.Equal(t, 5, *w.CustomerFeedbackRating)
	assert.Equal(t, "great", w.CustomerFeedbackComment)
	require.NotNil(t, w.FeedbackSubmissionDate)
	assert.Equal(t, testNow, *w.FeedbackSubmissionDate)
}

func TestAddResolutionDetails(t *testing.T) {
	w := created()
	assert.ErrorIs(t, w.AddResolutionDetails("", "", decimal.NullDecimal{}, testNow), lifecycle.ErrInvalidResolution)

	require.NoError(t, w.AddResolutionDetails("Recharged gas", "", decimal.NullDecimal{}, testNow))
	assert.Equal(t, StatusResolved, w.Status)
	require.NotNil(t, w.ActualCompletionDate)
	assert.NoError(t, w.AddCustomerFeedback(2, "", testNow))
}

func TestScheduleAndPriority(t *testing.T) {
	w := created()
	date := testNow.AddDate(0, 0, 2)
	w.UpdateSchedule(&date, " 09:00-11:00 ", testNow)
	require.NotNil(t, w.ScheduledDate)
	assert.Equal(t, "09:00-11:00", w.TimeSlot)

	w.UpdateSchedule(nil, "", testNow)
	assert.Nil(t, w.ScheduledDate)

	w.UpdatePriority(lifecycle.PriorityLow, testNow)
	assert.Equal(t, lifecycle.PriorityLow, w.Priority)
}
