package supplierorders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/omexplus/dropship-backend/pkg/db/models"
	"github.com/omexplus/dropship-backend/pkg/enums"
	"github.com/omexplus/dropship-backend/pkg/pagination"
)

// Repository handles ledger entry persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to ledger operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateIfAbsentTx inserts the entry unless a row for the same
// (order_id, supplier_id) already exists. Returns whether a row was
// inserted. The ON CONFLICT clause makes the check-and-insert atomic, so
// duplicate event deliveries cannot double-book a supplier.
func (r *Repository) CreateIfAbsentTx(tx *gorm.DB, entry *models.SupplierOrder) (bool, error) {
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "supplier_id"}},
		DoNothing: true,
	}).Create(entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CreateIfAbsent is CreateIfAbsentTx on the repository's own connection.
func (r *Repository) CreateIfAbsent(ctx context.Context, entry *models.SupplierOrder) (bool, error) {
	return r.CreateIfAbsentTx(r.db.WithContext(ctx), entry)
}

// FindByID loads a ledger entry.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierOrder, error) {
	var entry models.SupplierOrder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindByOrderAndSupplier loads the single entry for an (order, supplier) pair.
func (r *Repository) FindByOrderAndSupplier(ctx context.Context, orderID, supplierID uuid.UUID) (*models.SupplierOrder, error) {
	var entry models.SupplierOrder
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND supplier_id = ?", orderID, supplierID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns filtered ledger entries newest first plus the unpaged total.
func (r *Repository) List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.SupplierOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SupplierOrder{})
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SupplierOrder
	err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListByOrder returns every ledger entry relayed from one order.
func (r *Repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.SupplierOrder, error) {
	var rows []models.SupplierOrder
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListForStatusSync returns sent entries that may have progressed remotely,
// oldest update first so stale entries are polled before fresh ones.
func (r *Repository) ListForStatusSync(ctx context.Context, limit int) ([]models.SupplierOrder, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.SupplierOrder
	err := r.db.WithContext(ctx).
		Where("status IN ?", []enums.SupplierOrderStatus{
			enums.SupplierOrderStatusSent,
			enums.SupplierOrderStatusConfirmed,
			enums.SupplierOrderStatusShipped,
		}).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// CountOpenBySupplier counts entries that have not reached a terminal state.
// Suppliers with open entries cannot be deleted.
func (r *Repository) CountOpenBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.SupplierOrder{}).
		Where("supplier_id = ? AND status NOT IN ?", supplierID, []enums.SupplierOrderStatus{
			enums.SupplierOrderStatusDelivered,
			enums.SupplierOrderStatusCancelled,
		}).
		Count(&total).Error
	return total, err
}

// UpdateTx saves the entry inside the caller's transaction.
func (r *Repository) UpdateTx(tx *gorm.DB, entry *models.SupplierOrder) error {
	if entry == nil {
		return fmt.Errorf("entry is required")
	}
	return tx.Save(entry).Error
}

// Update saves the entry on the repository's own connection.
func (r *Repository) Update(ctx context.Context, entry *models.SupplierOrder) error {
	return r.UpdateTx(r.db.WithContext(ctx), entry)
}
