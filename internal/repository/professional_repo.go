package repository

import (
	"context"
	"time"

	"clickservice/internal/domain"

	"gorm.io/gorm"
)

type ProfessionalRepository struct {
	db *gorm.DB
}

func NewProfessionalRepository(db *gorm.DB) *ProfessionalRepository {
	return &ProfessionalRepository{db: db}
}

type professionalModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	OwnerIdentity int64     `gorm:"column:owner_identity;not null;uniqueIndex"`
	FullName      string    `gorm:"column:full_name;size:100;not null"`
	Phone         string    `gorm:"column:phone;size:20;not null"`
	Bio           *string   `gorm:"column:bio;size:500"`
	AverageRating float64   `gorm:"column:average_rating;not null"`
	CompletedJobs int       `gorm:"column:completed_jobs;not null"`
	Available     bool      `gorm:"column:available;not null;index"`
	WorkZone      *string   `gorm:"column:work_zone;size:200"`
	RegisteredAt  time.Time `gorm:"column:registered_at;not null"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (professionalModel) TableName() string { return "professionals" }

// professionalServiceModel is the capability set: one row per (professional, service).
type professionalServiceModel struct {
	ProfessionalID int64 `gorm:"column:professional_id;primaryKey"`
	ServiceID      int64 `gorm:"column:service_id;primaryKey;index"`
}

func (professionalServiceModel) TableName() string { return "professional_services" }

func toDomainProfessional(m professionalModel, capabilities []int64) *domain.Professional {
	if capabilities == nil {
		capabilities = []int64{}
	}
	return &domain.Professional{
		ID:            m.ID,
		OwnerIdentity: m.OwnerIdentity,
		FullName:      m.FullName,
		Phone:         m.Phone,
		Bio:           deref(m.Bio),
		AverageRating: m.AverageRating,
		CompletedJobs: m.CompletedJobs,
		Available:     m.Available,
		WorkZone:      deref(m.WorkZone),
		Capabilities:  capabilities,
		RegisteredAt:  m.RegisteredAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toProfessionalModel(p *domain.Professional) professionalModel {
	return professionalModel{
		ID:            p.ID,
		OwnerIdentity: p.OwnerIdentity,
		FullName:      p.FullName,
		Phone:         p.Phone,
		Bio:           optional(p.Bio),
		AverageRating: p.AverageRating,
		CompletedJobs: p.CompletedJobs,
		Available:     p.Available,
		WorkZone:      optional(p.WorkZone),
		RegisteredAt:  p.RegisteredAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (r *ProfessionalRepository) Create(ctx context.Context, p *domain.Professional) error {
	m := toProfessionalModel(p)
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Create(&m).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.Conflict("identity %d already has a professional profile", p.OwnerIdentity)
			}
			return err
		}
		return insertCapabilities(db, m.ID, p.Capabilities)
	})
	if err != nil {
		return err
	}
	*p = *toDomainProfessional(m, p.Capabilities)
	return nil
}

func (r *ProfessionalRepository) GetByID(ctx context.Context, id int64) (*domain.Professional, error) {
	return r.get(r.db.WithContext(ctx), "id = ?", id)
}

// GetByIDForUpdate locks the professional row until the enclosing transaction ends.
func (r *ProfessionalRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Professional, error) {
	return r.get(forUpdate(r.db.WithContext(ctx)), "id = ?", id)
}

func (r *ProfessionalRepository) GetByOwner(ctx context.Context, owner int64) (*domain.Professional, error) {
	return r.get(r.db.WithContext(ctx), "owner_identity = ?", owner)
}

func (r *ProfessionalRepository) get(db *gorm.DB, cond string, arg int64) (*domain.Professional, error) {
	var m professionalModel
	if err := db.Where(cond, arg).First(&m).Error; err != nil {
		return nil, notFound(err, "professional", arg)
	}
	caps, err := r.capabilitiesOf(db.Session(&gorm.Session{NewDB: true}), []int64{m.ID})
	if err != nil {
		return nil, err
	}
	return toDomainProfessional(m, caps[m.ID]), nil
}

func (r *ProfessionalRepository) ExistsByOwner(ctx context.Context, owner int64) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&professionalModel{}).
		Where("owner_identity = ?", owner).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *ProfessionalRepository) List(ctx context.Context) ([]domain.Professional, error) {
	return r.list(r.db.WithContext(ctx))
}

func (r *ProfessionalRepository) ListAvailable(ctx context.Context) ([]domain.Professional, error) {
	return r.list(r.db.WithContext(ctx).Where("available = ?", true))
}

// ListByCapability returns available professionals able to perform serviceID.
func (r *ProfessionalRepository) ListByCapability(ctx context.Context, serviceID int64) ([]domain.Professional, error) {
	db := r.db.WithContext(ctx).
		Joins("JOIN professional_services ps ON ps.professional_id = professionals.id").
		Where("ps.service_id = ? AND professionals.available = ?", serviceID, true)
	return r.list(db)
}

func (r *ProfessionalRepository) list(db *gorm.DB) ([]domain.Professional, error) {
	var rows []professionalModel
	if err := db.Order("professionals.id").Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.ID)
	}
	caps, err := r.capabilitiesOf(r.db.WithContext(db.Statement.Context), ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Professional, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainProfessional(m, caps[m.ID]))
	}
	return out, nil
}

func (r *ProfessionalRepository) capabilitiesOf(db *gorm.DB, ids []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var links []professionalServiceModel
	if err := db.Where("professional_id IN ?", ids).
		Order("professional_id, service_id").Find(&links).Error; err != nil {
		return nil, err
	}
	for _, l := range links {
		out[l.ProfessionalID] = append(out[l.ProfessionalID], l.ServiceID)
	}
	return out, nil
}

// UpdateProfile writes the mutable profile columns only; rating, job count and
// capabilities have their own paths.
func (r *ProfessionalRepository) UpdateProfile(ctx context.Context, p *domain.Professional) error {
	m := toProfessionalModel(p)
	res := r.db.WithContext(ctx).Model(&professionalModel{ID: p.ID}).
		Select("full_name", "phone", "bio", "available", "work_zone", "updated_at").
		Updates(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("professional", p.ID)
	}
	return nil
}

func (r *ProfessionalRepository) ReplaceCapabilities(ctx context.Context, id int64, serviceIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Where("professional_id = ?", id).Delete(&professionalServiceModel{}).Error; err != nil {
			return err
		}
		if err := insertCapabilities(db, id, serviceIDs); err != nil {
			return err
		}
		return db.Model(&professionalModel{ID: id}).Update("updated_at", time.Now().UTC()).Error
	})
}

func insertCapabilities(db *gorm.DB, professionalID int64, serviceIDs []int64) error {
	if len(serviceIDs) == 0 {
		return nil
	}
	links := make([]professionalServiceModel, 0, len(serviceIDs))
	for _, sid := range serviceIDs {
		links = append(links, professionalServiceModel{ProfessionalID: professionalID, ServiceID: sid})
	}
	return db.Create(&links).Error
}

func (r *ProfessionalRepository) UpdateRating(ctx context.Context, id int64, rating float64) error {
	res := r.db.WithContext(ctx).Model(&professionalModel{ID: id}).Updates(map[string]any{
		"average_rating": rating,
		"updated_at":     time.Now().UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("professional", id)
	}
	return nil
}

func (r *ProfessionalRepository) IncrementCompletedJobs(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&professionalModel{ID: id}).Updates(map[string]any{
		"completed_jobs": gorm.Expr("completed_jobs + 1"),
		"updated_at":     time.Now().UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("professional", id)
	}
	return nil
}

// Delete removes the profile with its capability links and slots. Reviews and
// commissions reference it by id only and are kept.
func (r *ProfessionalRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Where("professional_id = ?", id).Delete(&professionalServiceModel{}).Error; err != nil {
			return err
		}
		if err := db.Where("professional_id = ?", id).Delete(&slotModel{}).Error; err != nil {
			return err
		}
		res := db.Delete(&professionalModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("professional", id)
		}
		return nil
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}
