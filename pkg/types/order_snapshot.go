package types

// SnapshotItem is one relayed line captured on the ledger entry at creation
// time. The snapshot, not the live catalog, is the record of what was promised
// to the supplier.
type SnapshotItem struct {
	SKU            string `json:"sku"`
	Quantity       int    `json:"quantity"`
	Name           string `json:"name,omitempty"`
	UnitPriceCents int    `json:"unit_price_cents"`
}

// ItemSnapshot is the serialized list stored in supplier_orders.items.
type ItemSnapshot struct {
	Items []SnapshotItem `json:"items"`
}
