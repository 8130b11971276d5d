package professional

import (
	"context"
	"testing"

	"clickservice/internal/domain"
	"clickservice/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProfessionalRepository struct {
	mock.Mock
}

func (m *MockProfessionalRepository) Create(ctx context.Context, p *domain.Professional) error {
	args := m.Called(ctx, p)
	if p != nil {
		p.ID = 21 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockProfessionalRepository) GetByID(ctx context.Context, id int64) (*domain.Professional, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Professional), args.Error(1)
}

func (m *MockProfessionalRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Professional, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Professional), args.Error(1)
}

func (m *MockProfessionalRepository) GetByOwner(ctx context.Context, owner int64) (*domain.Professional, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Professional), args.Error(1)
}

func (m *MockProfessionalRepository) ExistsByOwner(ctx context.Context, owner int64) (bool, error) {
	args := m.Called(ctx, owner)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfessionalRepository) List(ctx context.Context) ([]domain.Professional, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Professional), args.Error(1)
}

func (m *MockProfessionalRepository) ListAvailable(ctx context.Context) ([]domain.Professional, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Professional), args.Error(1)
}

func (m *MockProfessionalRepository) ListByCapability(ctx context.Context, serviceID int64) ([]domain.Professional, error) {
	args := m.Called(ctx, serviceID)
	return args.Get(0).([]domain.Professional), args.Error(1)
}

func (m *MockProfessionalRepository) UpdateProfile(ctx context.Context, p *domain.Professional) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfessionalRepository) ReplaceCapabilities(ctx context.Context, id int64, serviceIDs []int64) error {
	return m.Called(ctx, id, serviceIDs).Error(0)
}

func (m *MockProfessionalRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockServiceLookup struct {
	mock.Mock
}

func (m *MockServiceLookup) FindByIDs(ctx context.Context, ids []int64) ([]domain.Service, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Service), args.Error(1)
}

type MockAssignmentCounter struct {
	mock.Mock
}

func (m *MockAssignmentCounter) CountByProfessionalAndState(ctx context.Context, professionalID int64, state domain.RequestState) (int64, error) {
	args := m.Called(ctx, professionalID, state)
	return args.Get(0).(int64), args.Error(1)
}

// inlineTx runs the callback on the fixture mocks and records how often it was entered.
type inlineTx struct {
	repo    *MockProfessionalRepository
	counter *MockAssignmentCounter
	calls   int
}

func (t *inlineTx) InTx(ctx context.Context, fn func(ProfessionalRepository, AssignmentCounter) error) error {
	t.calls++
	return fn(t.repo, t.counter)
}

var (
	operator = domain.Identity{UserID: 1, Role: domain.RoleOperator}
	pro      = domain.Identity{UserID: 7, Role: domain.RoleProfessional}
	client   = domain.Identity{UserID: 9, Role: domain.RoleClient}
)

type fixture struct {
	repo     *MockProfessionalRepository
	services *MockServiceLookup
	counter  *MockAssignmentCounter
	tx       *inlineTx
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:     new(MockProfessionalRepository),
		services: new(MockServiceLookup),
		counter:  new(MockAssignmentCounter),
	}
	f.tx = &inlineTx{repo: f.repo, counter: f.counter}
	f.svc = NewService(f.repo, f.services, f.tx, "US", logger.Nop())
	return f
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		FullName: "Juan Perez",
		Phone:    "+1 650-253-0000",
		WorkZone: "Palermo",
	}
}

func TestRegister_Defaults(t *testing.T) {
	f := newFixture()
	f.repo.On("ExistsByOwner", mock.Anything, int64(7)).Return(false, nil)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Professional")).Return(nil)

	p, err := f.svc.Register(context.Background(), pro, validRegistration())
	require.NoError(t, err)

	assert.Equal(t, int64(21), p.ID)
	assert.Equal(t, int64(7), p.OwnerIdentity)
	assert.True(t, p.Available)
	assert.Zero(t, p.AverageRating)
	assert.Zero(t, p.CompletedJobs)
	assert.Equal(t, "+16502530000", p.Phone)
	assert.False(t, p.RegisteredAt.IsZero())
	assert.Empty(t, p.Capabilities)
	f.services.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}

func TestRegister_ExplicitlyUnavailable(t *testing.T) {
	f := newFixture()
	f.repo.On("ExistsByOwner", mock.Anything, int64(7)).Return(false, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	off := false
	req := validRegistration()
	req.Available = &off
	p, err := f.svc.Register(context.Background(), pro, req)
	require.NoError(t, err)
	assert.False(t, p.Available)
}

func TestRegister_OperatorActsForOwner(t *testing.T) {
	f := newFixture()
	f.repo.On("ExistsByOwner", mock.Anything, int64(55)).Return(false, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	req := validRegistration()
	req.OwnerIdentity = 55
	p, err := f.svc.Register(context.Background(), operator, req)
	require.NoError(t, err)
	assert.Equal(t, int64(55), p.OwnerIdentity)
}

func TestRegister_ClientForbidden(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Register(context.Background(), client, validRegistration())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRegister_ValidationListsEveryField(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Register(context.Background(), pro, RegisterRequest{FullName: "Jo", Phone: "abc"})
	require.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("full_name"))
	assert.True(t, verr.Has("phone"))
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateOwner(t *testing.T) {
	f := newFixture()
	f.repo.On("ExistsByOwner", mock.Anything, int64(7)).Return(true, nil)

	_, err := f.svc.Register(context.Background(), pro, validRegistration())
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, ErrProfileExists)
}

func TestRegister_UnknownService(t *testing.T) {
	f := newFixture()
	f.repo.On("ExistsByOwner", mock.Anything, int64(7)).Return(false, nil)
	f.services.On("FindByIDs", mock.Anything, []int64{1, 2}).Return([]domain.Service{{ID: 1}}, nil)

	req := validRegistration()
	req.ServiceIDs = []int64{2, 1, 2}
	_, err := f.svc.Register(context.Background(), pro, req)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdate_MergesOnlyGivenFields(t *testing.T) {
	f := newFixture()
	current := &domain.Professional{
		ID: 3, OwnerIdentity: 7, FullName: "Juan Perez", Phone: "+16502530000",
		Bio: "Plumber", Available: true, AverageRating: 4.5, CompletedJobs: 12,
	}
	f.repo.On("GetByID", mock.Anything, int64(3)).Return(current, nil)
	f.repo.On("UpdateProfile", mock.Anything, mock.AnythingOfType("*domain.Professional")).Return(nil)

	off := false
	zone := "Belgrano"
	p, err := f.svc.Update(context.Background(), pro, 3, UpdateRequest{Available: &off, WorkZone: &zone})
	require.NoError(t, err)

	assert.False(t, p.Available)
	assert.Equal(t, "Belgrano", p.WorkZone)
	assert.Equal(t, "Juan Perez", p.FullName)
	assert.Equal(t, 4.5, p.AverageRating)
	assert.Equal(t, 12, p.CompletedJobs)
}

func TestUpdate_StrangerForbidden(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByID", mock.Anything, int64(3)).Return(&domain.Professional{ID: 3, OwnerIdentity: 7}, nil)

	stranger := domain.Identity{UserID: 8, Role: domain.RoleProfessional}
	name := "Someone Else"
	_, err := f.svc.Update(context.Background(), stranger, 3, UpdateRequest{FullName: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	f.repo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestUpdate_InvalidMergedRecord(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByID", mock.Anything, int64(3)).
		Return(&domain.Professional{ID: 3, OwnerIdentity: 7, FullName: "Juan Perez", Phone: "+16502530000"}, nil)

	short := "J"
	_, err := f.svc.Update(context.Background(), pro, 3, UpdateRequest{FullName: &short})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAssignCapabilities_CollapsesDuplicates(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByID", mock.Anything, int64(3)).Return(&domain.Professional{ID: 3, OwnerIdentity: 7}, nil)
	f.services.On("FindByIDs", mock.Anything, []int64{4, 5}).Return([]domain.Service{{ID: 4}, {ID: 5}}, nil)
	f.repo.On("ReplaceCapabilities", mock.Anything, int64(3), []int64{4, 5}).Return(nil)

	p, err := f.svc.AssignCapabilities(context.Background(), operator, 3, []int64{5, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, p.Capabilities)
	f.repo.AssertExpectations(t)
}

func TestAssignCapabilities_EmptyClears(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByID", mock.Anything, int64(3)).
		Return(&domain.Professional{ID: 3, OwnerIdentity: 7, Capabilities: []int64{4}}, nil)
	f.repo.On("ReplaceCapabilities", mock.Anything, int64(3), []int64{}).Return(nil)

	p, err := f.svc.AssignCapabilities(context.Background(), pro, 3, nil)
	require.NoError(t, err)
	assert.Empty(t, p.Capabilities)
}

func TestDelete(t *testing.T) {
	t.Run("operator only", func(t *testing.T) {
		f := newFixture()
		assert.ErrorIs(t, f.svc.Delete(context.Background(), pro, 3), domain.ErrForbidden)
		assert.Zero(t, f.tx.calls)
	})

	t.Run("unknown professional", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByIDForUpdate", mock.Anything, int64(3)).Return(nil, domain.NotFound("professional", 3))

		assert.ErrorIs(t, f.svc.Delete(context.Background(), operator, 3), domain.ErrNotFound)
		f.counter.AssertNotCalled(t, "CountByProfessionalAndState", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("assigned work blocks", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByIDForUpdate", mock.Anything, int64(3)).Return(&domain.Professional{ID: 3}, nil)
		f.counter.On("CountByProfessionalAndState", mock.Anything, int64(3), domain.StateAssigned).Return(int64(1), nil)

		err := f.svc.Delete(context.Background(), operator, 3)
		assert.ErrorIs(t, err, ErrHasAssignedWork)
		assert.ErrorIs(t, err, domain.ErrConflict)
		f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("check and delete share one locked transaction", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByIDForUpdate", mock.Anything, int64(3)).Return(&domain.Professional{ID: 3}, nil)
		f.counter.On("CountByProfessionalAndState", mock.Anything, int64(3), domain.StateAssigned).Return(int64(0), nil)
		f.repo.On("Delete", mock.Anything, int64(3)).Return(nil)

		require.NoError(t, f.svc.Delete(context.Background(), operator, 3))
		assert.Equal(t, 1, f.tx.calls)
		f.repo.AssertExpectations(t)
		f.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestFindByOwnerIdentity_NotFound(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByOwner", mock.Anything, int64(99)).Return(nil, domain.NotFound("professional", 99))

	_, err := f.svc.FindByOwnerIdentity(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
