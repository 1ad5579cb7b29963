package payloads

import (
	"time"

	"github.com/google/uuid"
)

// OrderPlacedEvent announces a storefront order ready for supplier relay.
type OrderPlacedEvent struct {
	OrderID   uuid.UUID `json:"orderId"`
	DisplayID int64     `json:"displayId"`
	PlacedAt  time.Time `json:"placedAt"`
}

// SupplierOrderCreatedEvent announces a new ledger entry for one supplier.
type SupplierOrderCreatedEvent struct {
	SupplierOrderID uuid.UUID `json:"supplierOrderId"`
	OrderID         uuid.UUID `json:"orderId"`
	SupplierID      uuid.UUID `json:"supplierId"`
	ItemCount       int       `json:"itemCount"`
	TotalCents      int       `json:"totalCents"`
}

// SupplierOrderSentEvent announces a successful forward to the supplier's API.
type SupplierOrderSentEvent struct {
	SupplierOrderID uuid.UUID `json:"supplierOrderId"`
	OrderID         uuid.UUID `json:"orderId"`
	SupplierID      uuid.UUID `json:"supplierId"`
	RemoteOrderID   string    `json:"remoteOrderId"`
	RemoteOrderNo   string    `json:"remoteOrderNo,omitempty"`
	SentAt          time.Time `json:"sentAt"`
	UnmatchedLines  int       `json:"unmatchedLines,omitempty"`
}

// SupplierOrderStatusSyncEvent announces a status change observed while
// polling the supplier's remote order.
type SupplierOrderStatusSyncEvent struct {
	SupplierOrderID uuid.UUID `json:"supplierOrderId"`
	SupplierID      uuid.UUID `json:"supplierId"`
	FromStatus      string    `json:"fromStatus"`
	ToStatus        string    `json:"toStatus"`
	TrackingNumber  string    `json:"trackingNumber,omitempty"`
	ObservedAt      time.Time `json:"observedAt"`
}

// SupplierCatalogSyncedEvent summarizes one catalog sync run for a supplier.
type SupplierCatalogSyncedEvent struct {
	SupplierID  uuid.UUID `json:"supplierId"`
	Linked      int       `json:"linked"`
	Updated     int       `json:"updated"`
	Failed      int       `json:"failed"`
	CompletedAt time.Time `json:"completedAt"`
}
