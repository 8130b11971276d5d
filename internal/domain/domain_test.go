package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestState_Transitions(t *testing.T) {
	cases := []struct {
		from, to RequestState
		ok       bool
	}{
		{StatePending, StateAssigned, true},
		{StatePending, StateCancelled, true},
		{StatePending, StateCompleted, false},
		{StateAssigned, StateCompleted, true},
		{StateAssigned, StateCancelled, true},
		{StateCompleted, StateReviewed, true},
		{StateCompleted, StateCancelled, false},
		{StateCancelled, StateCompleted, false},
		{StateReviewed, StateCancelled, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
	assert.False(t, RequestState("DONE").Valid())
}

func TestOverlaps_ClosedInterval(t *testing.T) {
	base := time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)
	slot := &AvailabilitySlot{StartTime: base, EndTime: base.Add(2 * time.Hour)}

	assert.True(t, slot.Overlaps(base.Add(time.Hour), base.Add(90*time.Minute)))
	// touching at either edge counts
	assert.True(t, slot.Overlaps(base.Add(2*time.Hour), base.Add(3*time.Hour)))
	assert.True(t, slot.Overlaps(base.Add(-time.Hour), base))
	assert.False(t, slot.Overlaps(base.Add(2*time.Hour+time.Minute), base.Add(3*time.Hour)))
}

func TestValidateInterval(t *testing.T) {
	start := time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateInterval(start, start.Add(time.Minute)))

	err := ValidateInterval(start, start)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var verr *ValidationError
	require.True(t, errors.As(ValidateInterval(time.Time{}, time.Time{}), &verr))
	assert.Len(t, verr.Fields, 2)
}

func TestValidateRequestedDate(t *testing.T) {
	now := time.Date(2030, 5, 1, 23, 30, 0, 0, time.UTC)

	assert.NoError(t, ValidateRequestedDate(now.AddDate(0, 0, 1), now))
	assert.ErrorIs(t, ValidateRequestedDate(now, now), ErrValidation)
	assert.ErrorIs(t, ValidateRequestedDate(DateOf(now), now), ErrValidation)
	assert.ErrorIs(t, ValidateRequestedDate(now.AddDate(0, 0, -3), now), ErrValidation)
	assert.ErrorIs(t, ValidateRequestedDate(time.Time{}, now), ErrValidation)
}

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 0.0, AverageRating(nil))
	assert.InDelta(t, 4.0, AverageRating([]int{5, 3, 4}), 1e-9)
	assert.InDelta(t, 3.5, AverageRating([]int{3, 4}), 1e-9)
}

func TestCommissionAmount(t *testing.T) {
	assert.InDelta(t, 120.0, CommissionAmount(1000, 12), 1e-9)
	assert.InDelta(t, 3.7, CommissionAmount(33.33, 11.1), 1e-9)
	assert.Equal(t, 0.0, CommissionAmount(0, 10))
}

func TestValidationError_OrNil(t *testing.T) {
	verr := NewValidationError()
	assert.Nil(t, verr.OrNil())

	verr.Add("name", "is required")
	verr.Add("hourly_rate", "must be greater than 0")
	err := verr.OrNil()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "name is required")
	assert.True(t, verr.Has("hourly_rate"))
}

func TestSentinelWrappers(t *testing.T) {
	assert.ErrorIs(t, NotFound("service", 7), ErrNotFound)
	assert.ErrorIs(t, Conflict("slot %d is reserved", 3), ErrConflict)
	assert.ErrorIs(t, InvalidTransition("complete", StatePending), ErrInvalidState)
	assert.ErrorIs(t, Forbidden("operators only"), ErrForbidden)
	assert.Contains(t, InvalidTransition("complete", StatePending).Error(), "PENDING")
}
