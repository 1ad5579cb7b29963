package relay

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	relayorch "github.com/omexplus/dropship-backend/internal/relay"
	"github.com/omexplus/dropship-backend/pkg/enums"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
	"github.com/omexplus/dropship-backend/pkg/logger"
	"github.com/omexplus/dropship-backend/pkg/outbox"
	"github.com/omexplus/dropship-backend/pkg/outbox/payloads"
)

type stubProcessor struct {
	processed []uuid.UUID
	err       error
}

func (s *stubProcessor) ProcessOrder(_ context.Context, orderID uuid.UUID) (*relayorch.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.processed = append(s.processed, orderID)
	return &relayorch.Result{OrderID: orderID}, nil
}

type stubIdempotency struct {
	seen    map[uuid.UUID]bool
	deleted []uuid.UUID
}

func (s *stubIdempotency) CheckAndMarkProcessed(_ context.Context, _ string, eventID uuid.UUID) (bool, error) {
	if s.seen == nil {
		s.seen = map[uuid.UUID]bool{}
	}
	already := s.seen[eventID]
	s.seen[eventID] = true
	return already, nil
}

func (s *stubIdempotency) Delete(_ context.Context, _ string, eventID uuid.UUID) error {
	s.deleted = append(s.deleted, eventID)
	delete(s.seen, eventID)
	return nil
}

func placedEnvelope(t *testing.T, orderID uuid.UUID) outbox.PayloadEnvelope {
	t.Helper()
	data, err := json.Marshal(payloads.OrderPlacedEvent{OrderID: orderID, DisplayID: 1001})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return outbox.PayloadEnvelope{
		Version: 1,
		EventID: uuid.NewString(),
		Data:    data,
	}
}

func newConsumer(t *testing.T, processor *stubProcessor, manager *stubIdempotency) *Consumer {
	t.Helper()
	consumer, err := NewConsumer(processor, manager, logger.New(logger.Options{ServiceName: "relay-consumer-test"}))
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	return consumer
}

func TestProcessRelaysOrderPlaced(t *testing.T) {
	processor := &stubProcessor{}
	consumer := newConsumer(t, processor, &stubIdempotency{})
	orderID := uuid.New()

	err := consumer.Process(context.Background(), enums.EventOrderPlaced, placedEnvelope(t, orderID))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(processor.processed) != 1 || processor.processed[0] != orderID {
		t.Fatalf("expected order processed, got %v", processor.processed)
	}
}

func TestProcessIgnoresOtherEventTypes(t *testing.T) {
	processor := &stubProcessor{}
	consumer := newConsumer(t, processor, &stubIdempotency{})

	err := consumer.Process(context.Background(), enums.EventSupplierOrderSent, placedEnvelope(t, uuid.New()))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(processor.processed) != 0 {
		t.Fatal("foreign events must not reach the orchestrator")
	}
}

func TestProcessSkipsDuplicateDelivery(t *testing.T) {
	processor := &stubProcessor{}
	manager := &stubIdempotency{}
	consumer := newConsumer(t, processor, manager)
	envelope := placedEnvelope(t, uuid.New())

	if err := consumer.Process(context.Background(), enums.EventOrderPlaced, envelope); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := consumer.Process(context.Background(), enums.EventOrderPlaced, envelope); err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if len(processor.processed) != 1 {
		t.Fatalf("expected one processing, got %d", len(processor.processed))
	}
}

func TestProcessReleasesMarkerOnFailure(t *testing.T) {
	processor := &stubProcessor{err: pkgerrors.New(pkgerrors.CodeDependency, "db unavailable")}
	manager := &stubIdempotency{}
	consumer := newConsumer(t, processor, manager)
	envelope := placedEnvelope(t, uuid.New())

	err := consumer.Process(context.Background(), enums.EventOrderPlaced, envelope)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(manager.deleted) != 1 {
		t.Fatal("marker must be released so retry can reprocess")
	}

	// retry succeeds once the orchestrator recovers
	processor.err = nil
	if err := consumer.Process(context.Background(), enums.EventOrderPlaced, envelope); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(processor.processed) != 1 {
		t.Fatalf("expected retry to process the order, got %d", len(processor.processed))
	}
}

func TestProcessRejectsMalformedPayload(t *testing.T) {
	processor := &stubProcessor{}
	consumer := newConsumer(t, processor, &stubIdempotency{})

	envelope := outbox.PayloadEnvelope{
		Version: 1,
		EventID: uuid.NewString(),
		Data:    json.RawMessage(`{"orderId": 42}`),
	}
	err := consumer.Process(context.Background(), enums.EventOrderPlaced, envelope)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(processor.processed) != 0 {
		t.Fatal("malformed payload must not reach the orchestrator")
	}
}
