package supplierorders

import (
	"time"

	"github.com/google/uuid"

	"github.com/omexplus/dropship-backend/pkg/db/models"
	"github.com/omexplus/dropship-backend/pkg/enums"
	"github.com/omexplus/dropship-backend/pkg/types"
)

// SupplierOrderDTO exposes one ledger entry in API responses.
type SupplierOrderDTO struct {
	ID         uuid.UUID `json:"id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	OrderID    uuid.UUID `json:"order_id"`

	Status enums.SupplierOrderStatus `json:"status"`

	SupplierTotalCents int `json:"supplier_total_cents"`
	MarginCents        int `json:"margin_cents"`

	SupplierOrderID     *string `json:"supplier_order_id,omitempty"`
	SupplierOrderNumber *string `json:"supplier_order_number,omitempty"`
	TrackingNumber      *string `json:"tracking_number,omitempty"`
	TrackingURL         *string `json:"tracking_url,omitempty"`

	Items     []types.SnapshotItem `json:"items"`
	LastError *string              `json:"last_error,omitempty"`

	SentAt      *time.Time `json:"sent_at,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateSupplierOrderDTO holds creation-time ledger data. Used both by the
// relay and by the manual admin endpoint.
type CreateSupplierOrderDTO struct {
	SupplierID         uuid.UUID
	OrderID            uuid.UUID
	SupplierTotalCents int
	MarginCents        int
	Items              []types.SnapshotItem
}

// ListFilter narrows ledger listings. Nil fields are ignored.
type ListFilter struct {
	SupplierID *uuid.UUID
	OrderID    *uuid.UUID
	Status     *enums.SupplierOrderStatus
}

// UpdateTrackingDTO carries a manual tracking correction.
type UpdateTrackingDTO struct {
	TrackingNumber *string
	TrackingURL    *string
}

// StatusSyncDTO reports the outcome of one remote status poll.
type StatusSyncDTO struct {
	ID             uuid.UUID                 `json:"id"`
	Status         enums.SupplierOrderStatus `json:"status"`
	RemoteStatus   string                    `json:"remote_status"`
	TrackingNumber *string                   `json:"tracking_number,omitempty"`
	Changed        bool                      `json:"changed"`
}

// FromModel maps the persisted ledger entry into a DTO.
func FromModel(m *models.SupplierOrder) *SupplierOrderDTO {
	if m == nil {
		return nil
	}
	return &SupplierOrderDTO{
		ID:                  m.ID,
		SupplierID:          m.SupplierID,
		OrderID:             m.OrderID,
		Status:              m.Status,
		SupplierTotalCents:  m.SupplierTotalCents,
		MarginCents:         m.MarginCents,
		SupplierOrderID:     m.SupplierOrderID,
		SupplierOrderNumber: m.SupplierOrderNumber,
		TrackingNumber:      m.TrackingNumber,
		TrackingURL:         m.TrackingURL,
		Items:               m.Items.Items,
		LastError:           m.LastError,
		SentAt:              m.SentAt,
		ConfirmedAt:         m.ConfirmedAt,
		ShippedAt:           m.ShippedAt,
		DeliveredAt:         m.DeliveredAt,
		CancelledAt:         m.CancelledAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from the creation DTO.
func (c CreateSupplierOrderDTO) ToModel() *models.SupplierOrder {
	return &models.SupplierOrder{
		SupplierID:         c.SupplierID,
		OrderID:            c.OrderID,
		Status:             enums.SupplierOrderStatusPending,
		SupplierTotalCents: c.SupplierTotalCents,
		MarginCents:        c.MarginCents,
		Items:              types.ItemSnapshot{Items: c.Items},
	}
}
