package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/omexplus/dropship-backend/pkg/enums"
	"github.com/omexplus/dropship-backend/pkg/types"
)

// SupplierOrder is the ledger entry for relaying one internal order's
// supplier-attributable items to one supplier. At most one row exists per
// (order_id, supplier_id); the unique index is the idempotency backstop
// against duplicate order-placed deliveries.
type SupplierOrder struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID uuid.UUID `gorm:"column:supplier_id;type:uuid;not null;uniqueIndex:ux_supplier_orders_order_supplier"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_supplier_orders_order_supplier"`

	Status enums.SupplierOrderStatus `gorm:"column:status;type:supplier_order_status;not null;default:'pending'"`

	SupplierTotalCents int `gorm:"column:supplier_total_cents;not null"`
	MarginCents        int `gorm:"column:margin_cents;not null;default:0"`

	// External linkage, set on the first successful send.
	SupplierOrderID     *string `gorm:"column:supplier_order_id"`
	SupplierOrderNumber *string `gorm:"column:supplier_order_number"`
	TrackingNumber      *string `gorm:"column:tracking_number"`
	TrackingURL         *string `gorm:"column:tracking_url"`

	Items     types.ItemSnapshot `gorm:"column:items;type:jsonb;serializer:json"`
	LastError *string            `gorm:"column:last_error"`

	SentAt      *time.Time `gorm:"column:sent_at"`
	ConfirmedAt *time.Time `gorm:"column:confirmed_at"`
	ShippedAt   *time.Time `gorm:"column:shipped_at"`
	DeliveredAt *time.Time `gorm:"column:delivered_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// WasSent reports whether the entry has ever been forwarded to the supplier.
func (s SupplierOrder) WasSent() bool {
	return s.SupplierOrderID != nil && *s.SupplierOrderID != ""
}
