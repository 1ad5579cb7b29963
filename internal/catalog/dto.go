package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omexplus/dropship-backend/pkg/db/models"
	"github.com/omexplus/dropship-backend/pkg/enums"
)

// SupplierProductDTO exposes one product-supplier link in API responses.
// SellingPriceCents is derived from the stored purchase price and markup.
type SupplierProductDTO struct {
	ID                 uuid.UUID        `json:"id"`
	SupplierID         uuid.UUID        `json:"supplier_id"`
	ProductID          uuid.UUID        `json:"product_id"`
	SupplierSKU        string           `json:"supplier_sku"`
	SupplierPriceCents int              `json:"supplier_price_cents"`
	SupplierCurrency   enums.Currency   `json:"supplier_currency"`
	SupplierStock      int              `json:"supplier_stock"`
	MarkupType         enums.MarkupType `json:"markup_type"`
	MarkupValue        decimal.Decimal  `json:"markup_value"`
	SellingPriceCents  int              `json:"selling_price_cents"`
	IsActive           bool             `json:"is_active"`
	SyncStatus         enums.SyncStatus `json:"sync_status"`
	LastSyncAt         *time.Time       `json:"last_sync_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// LinkProductDTO holds creation-time data for a product-supplier link.
type LinkProductDTO struct {
	SupplierID         uuid.UUID
	ProductID          uuid.UUID
	SupplierSKU        string
	SupplierPriceCents int
	SupplierCurrency   *enums.Currency
	SupplierStock      *int
	MarkupType         *enums.MarkupType
	MarkupValue        *decimal.Decimal
	IsActive           *bool
}

// UpdateLinkDTO captures the mutable link fields. Nil fields are left untouched.
type UpdateLinkDTO struct {
	SupplierSKU        *string
	SupplierPriceCents *int
	SupplierCurrency   *enums.Currency
	SupplierStock      *int
	MarkupType         *enums.MarkupType
	MarkupValue        *decimal.Decimal
	IsActive           *bool
}

// SyncResult summarizes one catalog sync run.
type SyncResult struct {
	SupplierID uuid.UUID `json:"supplier_id"`
	Checked    int       `json:"checked"`
	Updated    int       `json:"updated"`
	Missing    int       `json:"missing"`
	Failed     int       `json:"failed"`
}

// FromLinkModel maps the persisted link into a DTO with derived pricing.
func FromLinkModel(m *models.SupplierProduct) *SupplierProductDTO {
	if m == nil {
		return nil
	}
	dto := &SupplierProductDTO{
		ID:                 m.ID,
		SupplierID:         m.SupplierID,
		ProductID:          m.ProductID,
		SupplierSKU:        m.SupplierSKU,
		SupplierPriceCents: m.SupplierPriceCents,
		SupplierCurrency:   m.SupplierCurrency,
		SupplierStock:      m.SupplierStock,
		MarkupType:         m.MarkupType,
		MarkupValue:        m.MarkupValue,
		IsActive:           m.IsActive,
		SyncStatus:         m.SyncStatus,
		LastSyncAt:         m.LastSyncAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if selling, err := SellingPriceCents(m.SupplierPriceCents, m.MarkupType, m.MarkupValue); err == nil {
		dto.SellingPriceCents = selling
	}
	return dto
}

// ToModel prepares the GORM model from creation DTO, supplying defaults.
func (l LinkProductDTO) ToModel() *models.SupplierProduct {
	model := &models.SupplierProduct{
		SupplierID:         l.SupplierID,
		ProductID:          l.ProductID,
		SupplierSKU:        l.SupplierSKU,
		SupplierPriceCents: l.SupplierPriceCents,
		SupplierCurrency:   enums.CurrencyPLN,
		MarkupType:         enums.MarkupTypePercentage,
		MarkupValue:        decimal.NewFromInt(20),
		IsActive:           true,
		SyncStatus:         enums.SyncStatusPending,
	}
	if l.SupplierCurrency != nil {
		model.SupplierCurrency = *l.SupplierCurrency
	}
	if l.SupplierStock != nil {
		model.SupplierStock = *l.SupplierStock
	}
	if l.MarkupType != nil {
		model.MarkupType = *l.MarkupType
	}
	if l.MarkupValue != nil {
		model.MarkupValue = *l.MarkupValue
	}
	if l.IsActive != nil {
		model.IsActive = *l.IsActive
	}
	return model
}
