package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/omexplus/dropship-backend/pkg/types"
)

// Order is the storefront order the relay reads from. The relay never writes
// orders; it only partitions their line items across suppliers.
type Order struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DisplayID       int64                  `gorm:"column:display_id;not null"`
	Email           *string                `gorm:"column:email"`
	Status          string                 `gorm:"column:status;not null;default:'pending'"`
	ShippingAddress *types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Items           []OrderLineItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLineItem is one purchased line on a storefront order.
type OrderLineItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	ProductID      *uuid.UUID `gorm:"column:product_id;type:uuid"`
	Title          string     `gorm:"column:title;not null"`
	SKU            *string    `gorm:"column:sku"`
	Quantity       int        `gorm:"column:quantity;not null"`
	UnitPriceCents int        `gorm:"column:unit_price_cents;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
