package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	relayorch "github.com/omexplus/dropship-backend/internal/relay"
	"github.com/omexplus/dropship-backend/pkg/enums"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
	"github.com/omexplus/dropship-backend/pkg/logger"
	"github.com/omexplus/dropship-backend/pkg/outbox"
	"github.com/omexplus/dropship-backend/pkg/outbox/payloads"
)

const relayConsumerName = "relay"

type orderProcessor interface {
	ProcessOrder(ctx context.Context, orderID uuid.UUID) (*relayorch.Result, error)
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer feeds order.placed events into the relay orchestrator while
// honoring Redis idempotency. The ledger's unique (order_id, supplier_id)
// constraint backstops the Redis guard, so a lost marker is still safe.
type Consumer struct {
	orchestrator orderProcessor
	manager      idempotencyChecker
	logg         *logger.Logger
}

// NewConsumer builds a new relay consumer.
func NewConsumer(orchestrator orderProcessor, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if orchestrator == nil {
		return nil, fmt.Errorf("relay orchestrator required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{orchestrator: orchestrator, manager: manager, logg: logg}, nil
}

// Process relays the order referenced by the envelope. Events other than
// order.placed are ignored so the subscription can carry the whole topic.
func (c *Consumer) Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
	})

	if eventType != enums.EventOrderPlaced {
		c.logg.Info(logCtx, "event not handled by relay consumer")
		return nil
	}

	if envelope.EventID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id missing")
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse event id")
	}

	already, err := c.manager.CheckAndMarkProcessed(ctx, relayConsumerName, eventID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency check")
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return nil
	}

	var payload payloads.OrderPlacedEvent
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		// malformed payload will never succeed, keep the marker and drop it
		c.logg.Error(logCtx, "decode order placed payload", err)
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode order placed payload")
	}
	if payload.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id missing from payload")
	}

	result, err := c.orchestrator.ProcessOrder(ctx, payload.OrderID)
	if err != nil {
		// release the marker so infrastructure retry can reprocess
		if delErr := c.manager.Delete(ctx, relayConsumerName, eventID); delErr != nil {
			c.logg.Error(logCtx, "release idempotency marker", delErr)
		}
		c.logg.Error(logCtx, "relay order", err)
		return err
	}

	c.logg.Info(c.logg.WithFields(logCtx, map[string]any{
		"order_id":  payload.OrderID,
		"suppliers": len(result.Entries),
	}), "order relayed")
	return nil
}
