package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omexplus/dropship-backend/pkg/db/models"
	"github.com/omexplus/dropship-backend/pkg/enums"
	"github.com/omexplus/dropship-backend/pkg/pagination"
)

// Repository handles product-supplier link persistence plus the product
// routing metadata the relay reads at order time.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to catalog operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateLink persists a new product-supplier link.
func (r *Repository) CreateLink(ctx context.Context, dto LinkProductDTO) (*models.SupplierProduct, error) {
	link := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

// FindLinkByID loads a link by its UUID.
func (r *Repository) FindLinkByID(ctx context.Context, id uuid.UUID) (*models.SupplierProduct, error) {
	var link models.SupplierProduct
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// FindLinkByProductAndSupplier loads the link joining one product to one supplier.
func (r *Repository) FindLinkByProductAndSupplier(ctx context.Context, productID, supplierID uuid.UUID) (*models.SupplierProduct, error) {
	var link models.SupplierProduct
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND supplier_id = ?", productID, supplierID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// FindLinkBySupplierSKU loads a link by the supplier's own SKU.
func (r *Repository) FindLinkBySupplierSKU(ctx context.Context, supplierID uuid.UUID, sku string) (*models.SupplierProduct, error) {
	var link models.SupplierProduct
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND supplier_sku = ?", supplierID, sku).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// ListBySupplier returns the supplier's links plus the unpaged total.
func (r *Repository) ListBySupplier(ctx context.Context, supplierID uuid.UUID, page pagination.Params) ([]models.SupplierProduct, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SupplierProduct{}).Where("supplier_id = ?", supplierID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SupplierProduct
	err := query.
		Order("supplier_sku ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListForProduct returns every supplier link carrying the product, so a
// multi-sourced product exposes all of its purchase options at once.
func (r *Repository) ListForProduct(ctx context.Context, productID uuid.UUID) ([]models.SupplierProduct, error) {
	var rows []models.SupplierProduct
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("supplier_price_cents ASC").
		Find(&rows).Error
	return rows, err
}

// ListActiveBySupplier returns every active link for a sync run.
func (r *Repository) ListActiveBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.SupplierProduct, error) {
	var rows []models.SupplierProduct
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND is_active = ?", supplierID, true).
		Order("supplier_sku ASC").
		Find(&rows).Error
	return rows, err
}

// UpdateLink saves the provided link.
func (r *Repository) UpdateLink(ctx context.Context, link *models.SupplierProduct) error {
	if link == nil {
		return fmt.Errorf("link is required")
	}
	return r.db.WithContext(ctx).Save(link).Error
}

// UpdateLinkSyncState stamps the outcome of one sync pass on a link.
func (r *Repository) UpdateLinkSyncState(ctx context.Context, id uuid.UUID, status enums.SyncStatus, priceCents, stock *int) error {
	updates := map[string]any{
		"sync_status":  status,
		"last_sync_at": time.Now(),
	}
	if priceCents != nil {
		updates["supplier_price_cents"] = *priceCents
	}
	if stock != nil {
		updates["supplier_stock"] = *stock
	}
	return r.db.WithContext(ctx).
		Model(&models.SupplierProduct{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// TouchSupplierLastSync stamps the supplier's last catalog sync time inside
// the caller's transaction.
func (r *Repository) TouchSupplierLastSync(tx *gorm.DB, supplierID uuid.UUID, at time.Time) error {
	return tx.Model(&models.Supplier{}).
		Where("id = ?", supplierID).
		Update("last_sync_at", at).Error
}

// DeleteLink removes the link row.
func (r *Repository) DeleteLink(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SupplierProduct{}).Error
}

// FindProductByID loads a catalog product.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// StampProductRouting records the supplier routing metadata on the product.
func (r *Repository) StampProductRouting(ctx context.Context, productID uuid.UUID, metadata *models.ProductMetadata) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("metadata", metadata).Error
}
