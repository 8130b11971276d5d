package repository

import (
	"context"
	"time"

	"clickservice/internal/domain"

	"gorm.io/gorm"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

type serviceRequestModel struct {
	ID                     int64      `gorm:"column:id;primaryKey"`
	ServiceID              int64      `gorm:"column:service_id;not null;index:idx_requests_service_state"`
	ClientIdentity         int64      `gorm:"column:client_identity;not null;index"`
	ProblemDescription     string     `gorm:"column:problem_description;size:1000;not null"`
	ServiceAddress         string     `gorm:"column:service_address;size:200;not null"`
	RequestedDate          time.Time  `gorm:"column:requested_date;not null"`
	TimeWindow             string     `gorm:"column:time_window;size:50;not null"`
	MaxBudget              float64    `gorm:"column:max_budget;not null"`
	State                  string     `gorm:"column:state;size:20;not null;index:idx_requests_service_state"`
	AdditionalComments     *string    `gorm:"column:additional_comments;size:500"`
	AssignedProfessionalID *int64     `gorm:"column:assigned_professional_id;index"`
	AssignedSlotID         *int64     `gorm:"column:assigned_slot_id;index"`
	CreatedAt              time.Time  `gorm:"column:created_at"`
	UpdatedAt              time.Time  `gorm:"column:updated_at"`
	AssignedAt             *time.Time `gorm:"column:assigned_at"`
	CompletedAt            *time.Time `gorm:"column:completed_at"`
	CancelledAt            *time.Time `gorm:"column:cancelled_at"`
}

func (serviceRequestModel) TableName() string { return "service_requests" }

func toDomainRequest(m serviceRequestModel) *domain.ServiceRequest {
	return &domain.ServiceRequest{
		ID:                     m.ID,
		ServiceID:              m.ServiceID,
		ClientIdentity:         m.ClientIdentity,
		ProblemDescription:     m.ProblemDescription,
		ServiceAddress:         m.ServiceAddress,
		RequestedDate:          domain.DateOf(m.RequestedDate),
		TimeWindow:             m.TimeWindow,
		MaxBudget:              m.MaxBudget,
		State:                  domain.RequestState(m.State),
		AdditionalComments:     deref(m.AdditionalComments),
		AssignedProfessionalID: m.AssignedProfessionalID,
		AssignedSlotID:         m.AssignedSlotID,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
		AssignedAt:             m.AssignedAt,
		CompletedAt:            m.CompletedAt,
		CancelledAt:            m.CancelledAt,
	}
}

func toRequestModel(r *domain.ServiceRequest) serviceRequestModel {
	return serviceRequestModel{
		ID:                     r.ID,
		ServiceID:              r.ServiceID,
		ClientIdentity:         r.ClientIdentity,
		ProblemDescription:     r.ProblemDescription,
		ServiceAddress:         r.ServiceAddress,
		RequestedDate:          domain.DateOf(r.RequestedDate),
		TimeWindow:             r.TimeWindow,
		MaxBudget:              r.MaxBudget,
		State:                  string(r.State),
		AdditionalComments:     optional(r.AdditionalComments),
		AssignedProfessionalID: r.AssignedProfessionalID,
		AssignedSlotID:         r.AssignedSlotID,
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
		AssignedAt:             r.AssignedAt,
		CompletedAt:            r.CompletedAt,
		CancelledAt:            r.CancelledAt,
	}
}

func (r *RequestRepository) Create(ctx context.Context, req *domain.ServiceRequest) error {
	m := toRequestModel(req)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*req = *toDomainRequest(m)
	return nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	var m serviceRequestModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err, "service request", id)
	}
	return toDomainRequest(m), nil
}

func (r *RequestRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	var m serviceRequestModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&m, id).Error; err != nil {
		return nil, notFound(err, "service request", id)
	}
	return toDomainRequest(m), nil
}

// Save persists every column of an existing request.
func (r *RequestRepository) Save(ctx context.Context, req *domain.ServiceRequest) error {
	m := toRequestModel(req)
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return err
	}
	*req = *toDomainRequest(m)
	return nil
}

func (r *RequestRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&serviceRequestModel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("service request", id)
	}
	return nil
}

// RequestFilter narrows List; zero fields are ignored.
type RequestFilter struct {
	ClientID       int64
	ServiceID      int64
	ProfessionalID int64
	State          domain.RequestState
}

func (r *RequestRepository) List(ctx context.Context, f RequestFilter) ([]domain.ServiceRequest, error) {
	q := r.db.WithContext(ctx)
	if f.ClientID > 0 {
		q = q.Where("client_identity = ?", f.ClientID)
	}
	if f.ServiceID > 0 {
		q = q.Where("service_id = ?", f.ServiceID)
	}
	if f.ProfessionalID > 0 {
		q = q.Where("assigned_professional_id = ?", f.ProfessionalID)
	}
	if f.State != "" {
		q = q.Where("state = ?", string(f.State))
	}

	var rows []serviceRequestModel
	if err := q.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ServiceRequest, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainRequest(m))
	}
	return out, nil
}

func (r *RequestRepository) CountByService(ctx context.Context, serviceID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&serviceRequestModel{}).
		Where("service_id = ?", serviceID).Count(&cnt).Error
	return cnt, err
}

func (r *RequestRepository) CountByProfessionalAndState(ctx context.Context, professionalID int64, state domain.RequestState) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&serviceRequestModel{}).
		Where("assigned_professional_id = ? AND state = ?", professionalID, string(state)).
		Count(&cnt).Error
	return cnt, err
}

// CountAssignedToSlot counts ASSIGNED requests holding the slot.
func (r *RequestRepository) CountAssignedToSlot(ctx context.Context, slotID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&serviceRequestModel{}).
		Where("assigned_slot_id = ? AND state = ?", slotID, string(domain.StateAssigned)).
		Count(&cnt).Error
	return cnt, err
}
