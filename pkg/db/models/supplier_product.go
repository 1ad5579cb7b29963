package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omexplus/dropship-backend/pkg/enums"
)

// SupplierProduct links one internal product to one supplier catalog entry.
type SupplierProduct struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID  uuid.UUID `gorm:"column:supplier_id;type:uuid;not null;uniqueIndex:ux_supplier_products_supplier_sku"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	SupplierSKU string    `gorm:"column:supplier_sku;not null;uniqueIndex:ux_supplier_products_supplier_sku"`

	SupplierPriceCents int             `gorm:"column:supplier_price_cents;not null"`
	SupplierCurrency   enums.Currency  `gorm:"column:supplier_currency;type:text;not null;default:'PLN'"`
	SupplierStock      int             `gorm:"column:supplier_stock;not null;default:0"`
	MarkupType         enums.MarkupType `gorm:"column:markup_type;type:markup_type;not null;default:'percentage'"`
	MarkupValue        decimal.Decimal `gorm:"column:markup_value;type:numeric(10,2);not null;default:20"`

	IsActive   bool             `gorm:"column:is_active;not null;default:true"`
	SyncStatus enums.SyncStatus `gorm:"column:sync_status;type:sync_status;not null;default:'pending'"`
	LastSyncAt *time.Time       `gorm:"column:last_sync_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
