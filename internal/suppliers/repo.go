package suppliers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omexplus/dropship-backend/pkg/db/models"
	"github.com/omexplus/dropship-backend/pkg/pagination"
)

// Repository handles supplier persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to supplier operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new supplier row.
func (r *Repository) Create(ctx context.Context, dto CreateSupplierDTO) (*models.Supplier, error) {
	supplier := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

// FindByID loads a supplier by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// FindByCode loads a supplier by its normalized code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).Where("code = ?", NormalizeCode(code)).First(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// List returns suppliers matching the filter plus the unpaged total.
func (r *Repository) List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.Supplier, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Supplier{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.DropshipOnly {
		query = query.Where("is_dropship = ?", true)
	}
	if filter.SyncEnabled != nil {
		query = query.Where("sync_enabled = ?", *filter.SyncEnabled)
	}
	if filter.Country != "" {
		query = query.Where("country_code = ?", strings.ToUpper(filter.Country))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Supplier
	err := query.
		Order("name ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListSyncCandidates returns active dropship suppliers with sync enabled.
func (r *Repository) ListSyncCandidates(ctx context.Context) ([]models.Supplier, error) {
	var rows []models.Supplier
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_dropship = ? AND sync_enabled = ?", true, true, true).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

// Update saves the provided supplier.
func (r *Repository) Update(ctx context.Context, supplier *models.Supplier) error {
	if supplier == nil {
		return fmt.Errorf("supplier is required")
	}
	return r.db.WithContext(ctx).Save(supplier).Error
}

// Delete removes the supplier row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Supplier{}).Error
}
