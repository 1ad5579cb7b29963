package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/omexplus/dropship-backend/pkg/db/models"
	"github.com/omexplus/dropship-backend/pkg/types"
)

// OrderDTO is the storefront order as exposed over the API.
type OrderDTO struct {
	ID              uuid.UUID              `json:"id"`
	DisplayID       int64                  `json:"display_id"`
	Email           *string                `json:"email,omitempty"`
	Status          string                 `json:"status"`
	ShippingAddress *types.ShippingAddress `json:"shipping_address,omitempty"`
	Items           []OrderLineItemDTO     `json:"items"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// OrderLineItemDTO is one purchased line on an order.
type OrderLineItemDTO struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	Title          string     `json:"title"`
	SKU            *string    `json:"sku,omitempty"`
	Quantity       int        `json:"quantity"`
	UnitPriceCents int        `json:"unit_price_cents"`
}

// CreateOrderDTO holds creation-time order data.
type CreateOrderDTO struct {
	Email           *string
	ShippingAddress *types.ShippingAddress
	Items           []CreateOrderItemDTO
}

// CreateOrderItemDTO is one line of an order being placed.
type CreateOrderItemDTO struct {
	ProductID      *uuid.UUID
	Title          string
	SKU            *string
	Quantity       int
	UnitPriceCents int
}

// FromModel maps the persisted order into a DTO.
func FromModel(m *models.Order) *OrderDTO {
	if m == nil {
		return nil
	}
	items := make([]OrderLineItemDTO, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, OrderLineItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Title:          item.Title,
			SKU:            item.SKU,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return &OrderDTO{
		ID:              m.ID,
		DisplayID:       m.DisplayID,
		Email:           m.Email,
		Status:          m.Status,
		ShippingAddress: m.ShippingAddress,
		Items:           items,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from the creation DTO.
func (c CreateOrderDTO) ToModel() *models.Order {
	order := &models.Order{
		Email:           c.Email,
		Status:          "pending",
		ShippingAddress: c.ShippingAddress,
	}
	for _, item := range c.Items {
		order.Items = append(order.Items, models.OrderLineItem{
			ProductID:      item.ProductID,
			Title:          item.Title,
			SKU:            item.SKU,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return order
}
