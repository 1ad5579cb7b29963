package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/omexplus/dropship-backend/pkg/config"
	"github.com/omexplus/dropship-backend/pkg/db/models"
	"github.com/omexplus/dropship-backend/pkg/enums"
	"github.com/omexplus/dropship-backend/pkg/outbox"
	"github.com/omexplus/dropship-backend/pkg/outbox/payloads"
)

func newTestRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{OrdersTopic: "orders"})
	if err != nil {
		t.Fatalf("NewEventRegistry: %v", err)
	}
	return reg
}

func encodeEnvelope(t *testing.T, data interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       raw,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return payload
}

func TestNewEventRegistryRequiresOrdersTopic(t *testing.T) {
	if _, err := NewEventRegistry(config.PubSubConfig{}); err == nil {
		t.Fatal("expected error for missing orders topic")
	}
}

func TestResolveSupplierOrderSent(t *testing.T) {
	reg := newTestRegistry(t)
	ledgerID := uuid.New()

	row := models.OutboxEvent{
		EventType:     enums.EventSupplierOrderSent,
		AggregateType: enums.AggregateSupplierOrder,
		AggregateID:   ledgerID,
		Payload: encodeEnvelope(t, payloads.SupplierOrderSentEvent{
			SupplierOrderID: ledgerID,
			RemoteOrderID:   "7781",
		}),
	}

	resolved, err := reg.Resolve(row)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Descriptor.Topic != "orders" {
		t.Fatalf("unexpected topic %q", resolved.Descriptor.Topic)
	}
	payload, ok := resolved.Payload.(*payloads.SupplierOrderSentEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if payload.RemoteOrderID != "7781" {
		t.Fatalf("unexpected remote order id %q", payload.RemoteOrderID)
	}
}

func TestResolveRejectsUnknownEventType(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.OutboxEventType("bogus"),
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
	})
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected NonRetryableError, got %v", err)
	}
}

func TestResolveRejectsAggregateMismatch(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateSupplier,
		AggregateID:   uuid.New(),
		Payload:       encodeEnvelope(t, payloads.OrderPlacedEvent{}),
	})
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected NonRetryableError, got %v", err)
	}
}

func TestResolveRejectsNullPayload(t *testing.T) {
	reg := newTestRegistry(t)
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version: 1,
		EventID: uuid.NewString(),
		Data:    json.RawMessage("null"),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	_, err = reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       envelope,
	})
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected NonRetryableError, got %v", err)
	}
}
