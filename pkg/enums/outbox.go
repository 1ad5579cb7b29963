package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder         OutboxAggregateType = "order"
	AggregateSupplier      OutboxAggregateType = "supplier"
	AggregateSupplierOrder OutboxAggregateType = "supplier_order"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateSupplier,
	AggregateSupplierOrder,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderPlaced             OutboxEventType = "order_placed"
	EventSupplierOrderCreated    OutboxEventType = "supplier_order_created"
	EventSupplierOrderSent       OutboxEventType = "supplier_order_sent"
	EventSupplierOrderStatusSync OutboxEventType = "supplier_order_status_sync"
	EventSupplierCatalogSynced   OutboxEventType = "supplier_catalog_synced"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderPlaced,
	EventSupplierOrderCreated,
	EventSupplierOrderSent,
	EventSupplierOrderStatusSync,
	EventSupplierCatalogSynced,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxDLQErrorReason maps to the outbox_dlq_error_reason enum in Postgres.
type OutboxDLQErrorReason string

const (
	DLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	DLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
)
