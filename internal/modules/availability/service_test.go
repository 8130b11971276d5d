package availability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"clickservice/internal/database"
	"clickservice/internal/domain"
	"clickservice/internal/metrics"
	"clickservice/internal/pkg/logger"
	"clickservice/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func setup(t *testing.T) (*Service, *repository.Store, *domain.Professional) {
	t.Helper()
	dsn := fmt.Sprintf("file:availability_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store := repository.NewStore(db)
	prof := &domain.Professional{
		OwnerIdentity: 7,
		FullName:      "Juan Perez",
		Phone:         "11-2345-6789",
		Available:     true,
		RegisteredAt:  time.Now().UTC(),
	}
	require.NoError(t, store.Professionals.Create(context.Background(), prof))

	svc := NewService(store, metrics.New(prometheus.NewRegistry()), logger.Nop())
	return svc, store, prof
}

func owner(p *domain.Professional) domain.Identity {
	return domain.Identity{UserID: p.OwnerIdentity, Role: domain.RoleProfessional}
}

func TestPublishSlot_Validation(t *testing.T) {
	svc, _, prof := setup(t)
	ctx := context.Background()

	_, err := svc.PublishSlot(ctx, owner(prof), prof.ID, at(11, 0), at(10, 0))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.PublishSlot(ctx, owner(prof), prof.ID, time.Time{}, at(10, 0))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.PublishSlot(ctx, owner(prof), 999, at(9, 0), at(10, 0))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPublishSlot_OnlyOwnerOrOperator(t *testing.T) {
	svc, _, prof := setup(t)
	ctx := context.Background()

	stranger := domain.Identity{UserID: 99, Role: domain.RoleProfessional}
	_, err := svc.PublishSlot(ctx, stranger, prof.ID, at(9, 0), at(10, 0))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	op := domain.Identity{UserID: 1, Role: domain.RoleOperator}
	slot, err := svc.PublishSlot(ctx, op, prof.ID, at(9, 0), at(10, 0))
	require.NoError(t, err)
	assert.True(t, slot.IsFree)
	assert.NotZero(t, slot.ID)
}

func TestPublishSlot_OverlapAllowed(t *testing.T) {
	svc, _, prof := setup(t)
	ctx := context.Background()

	_, err := svc.PublishSlot(ctx, owner(prof), prof.ID, at(9, 0), at(11, 0))
	require.NoError(t, err)
	_, err = svc.PublishSlot(ctx, owner(prof), prof.ID, at(10, 0), at(10, 30))
	require.NoError(t, err)

	all, err := svc.ListAllSlots(ctx, prof.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestHasOverlap_ClosedInterval(t *testing.T) {
	svc, _, prof := setup(t)
	ctx := context.Background()

	_, err := svc.PublishSlot(ctx, owner(prof), prof.ID, at(9, 0), at(10, 0))
	require.NoError(t, err)

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"inside", at(9, 15), at(9, 45), true},
		{"touching end", at(10, 0), at(11, 0), true},
		{"touching start", at(8, 0), at(9, 0), true},
		{"before", at(7, 0), at(8, 59), false},
		{"after", at(10, 1), at(12, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.HasOverlap(ctx, prof.ID, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReserveSlot(t *testing.T) {
	svc, _, prof := setup(t)
	ctx := context.Background()

	wide, err := svc.PublishSlot(ctx, owner(prof), prof.ID, at(9, 0), at(11, 0))
	require.NoError(t, err)
	inner, err := svc.PublishSlot(ctx, owner(prof), prof.ID, at(10, 0), at(10, 30))
	require.NoError(t, err)
	later, err := svc.PublishSlot(ctx, owner(prof), prof.ID, at(14, 0), at(15, 0))
	require.NoError(t, err)

	reserved, err := svc.ReserveSlot(ctx, wide.ID)
	require.NoError(t, err)
	assert.False(t, reserved.IsFree)

	_, err = svc.ReserveSlot(ctx, wide.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "already reserved")

	_, err = svc.ReserveSlot(ctx, inner.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "overlaps reserved slot")

	_, err = svc.ReserveSlot(ctx, later.ID)
	assert.NoError(t, err)

	_, err = svc.ReserveSlot(ctx, 12345)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	free, err := svc.ListFreeSlots(ctx, prof.ID)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, inner.ID, free[0].ID)
}

func TestReleaseSlot_Idempotent(t *testing.T) {
	svc, _, prof := setup(t)
	ctx := context.Background()

	slot, err := svc.PublishSlot(ctx, owner(prof), prof.ID, at(9, 0), at(10, 0))
	require.NoError(t, err)
	_, err = svc.ReserveSlot(ctx, slot.ID)
	require.NoError(t, err)

	released, err := svc.ReleaseSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, released.IsFree)

	again, err := svc.ReleaseSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, again.IsFree)

	_, err = svc.ReserveSlot(ctx, slot.ID)
	assert.NoError(t, err)
}

func TestDeleteSlot(t *testing.T) {
	svc, store, prof := setup(t)
	ctx := context.Background()

	slot, err := svc.PublishSlot(ctx, owner(prof), prof.ID, at(9, 0), at(10, 0))
	require.NoError(t, err)
	_, err = svc.ReserveSlot(ctx, slot.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteSlot(ctx, owner(prof), slot.ID), domain.ErrConflict)

	_, err = svc.ReleaseSlot(ctx, slot.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteSlot(ctx, owner(prof), slot.ID))

	_, err = store.Slots.GetByID(ctx, slot.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListSlots_UnknownProfessional(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.ListFreeSlots(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReleaseSlot_HeldByAssignedRequest(t *testing.T) {
	svc, store, prof := setup(t)
	ctx := context.Background()

	held, err := svc.PublishSlot(ctx, owner(prof), prof.ID, at(9, 0), at(10, 0))
	require.NoError(t, err)
	_, err = svc.ReserveSlot(ctx, held.ID)
	require.NoError(t, err)

	profID, slotID := prof.ID, held.ID
	require.NoError(t, store.Requests.Create(ctx, &domain.ServiceRequest{
		ServiceID:              1,
		ClientIdentity:         50,
		ProblemDescription:     "Kitchen sink is leaking under the cabinet",
		ServiceAddress:         "Av. Corrientes 1234, CABA",
		RequestedDate:          day,
		TimeWindow:             "morning",
		MaxBudget:              5000,
		State:                  domain.StateAssigned,
		AssignedProfessionalID: &profID,
		AssignedSlotID:         &slotID,
	}))

	_, err = svc.ReleaseSlot(ctx, held.ID)
	assert.ErrorIs(t, err, ErrSlotHeld)
	assert.ErrorIs(t, err, domain.ErrConflict)

	slot, err := svc.GetSlot(ctx, held.ID)
	require.NoError(t, err)
	assert.False(t, slot.IsFree)

	released, err := svc.ReleaseHeld(ctx, held.ID)
	require.NoError(t, err)
	assert.True(t, released.IsFree)

	// Free again but still referenced by the assigned request.
	_, err = svc.ReserveSlot(ctx, held.ID)
	assert.ErrorIs(t, err, ErrSlotHeld)
	assert.ErrorIs(t, svc.DeleteSlot(ctx, owner(prof), held.ID), ErrSlotHeld)
}

func TestReleaseSlot_UnownedReservation(t *testing.T) {
	svc, _, prof := setup(t)
	ctx := context.Background()

	s, err := svc.PublishSlot(ctx, owner(prof), prof.ID, at(9, 0), at(10, 0))
	require.NoError(t, err)
	_, err = svc.ReserveSlot(ctx, s.ID)
	require.NoError(t, err)

	_, err = svc.ReserveSlot(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSlotAlreadyReserved)

	released, err := svc.ReleaseSlot(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, released.IsFree)
}
