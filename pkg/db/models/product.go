package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the platform catalog entry. Supplier routing is carried in the
// metadata captured at catalog-sync time (supplier_id + supplier_sku), so an
// order snapshot stays stable even if links change later.
type Product struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title      string           `gorm:"column:title;not null"`
	SKU        string           `gorm:"column:sku;not null;uniqueIndex:ux_products_sku"`
	PriceCents int              `gorm:"column:price_cents;not null"`
	IsActive   bool             `gorm:"column:is_active;not null;default:true"`
	Metadata   *ProductMetadata `gorm:"column:metadata;type:jsonb;serializer:json"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductMetadata holds the routing decision stamped onto a product when its
// supplier catalog entry is linked or synced.
type ProductMetadata struct {
	SupplierID  *uuid.UUID `json:"supplier_id,omitempty"`
	SupplierSKU string     `json:"supplier_sku,omitempty"`
}

// RoutedSupplier returns the owning supplier id, or false when the product is
// not dropship-routed.
func (p Product) RoutedSupplier() (uuid.UUID, bool) {
	if p.Metadata == nil || p.Metadata.SupplierID == nil {
		return uuid.Nil, false
	}
	return *p.Metadata.SupplierID, true
}
