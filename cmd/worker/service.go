package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"

	relayconsumer "github.com/omexplus/dropship-backend/internal/consumers/relay"
	"github.com/omexplus/dropship-backend/pkg/config"
	"github.com/omexplus/dropship-backend/pkg/db"
	"github.com/omexplus/dropship-backend/pkg/enums"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
	"github.com/omexplus/dropship-backend/pkg/logger"
	"github.com/omexplus/dropship-backend/pkg/outbox"
	pkgpubsub "github.com/omexplus/dropship-backend/pkg/pubsub"
	"github.com/omexplus/dropship-backend/pkg/redis"
)

type ServiceParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            *db.Client
	Redis         *redis.Client
	PubSub        *pkgpubsub.Client
	RelayConsumer *relayconsumer.Consumer
}

// Service runs the order relay worker: it drains the orders subscription and
// feeds each envelope into the relay consumer.
type Service struct {
	cfg      *config.Config
	logg     *logger.Logger
	db       *db.Client
	redis    *redis.Client
	pubsub   *pkgpubsub.Client
	consumer *relayconsumer.Consumer
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	if params.PubSub == nil {
		return nil, errors.New("pubsub client is required")
	}
	if params.RelayConsumer == nil {
		return nil, errors.New("relay consumer is required")
	}

	return &Service{
		cfg:      params.Config,
		logg:     params.Logger,
		db:       params.DB,
		redis:    params.Redis,
		pubsub:   params.PubSub,
		consumer: params.RelayConsumer,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	if err := pingDependency(ctx, s.logg, "database", s.db.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "redis", s.redis.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "pubsub", s.pubsub.Ping); err != nil {
		return err
	}
	s.logg.Info(ctx, "all worker dependencies are ready")
	return nil
}

func pingDependency(ctx context.Context, logg *logger.Logger, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
		return fmt.Errorf("%s ping failed: %w", name, err)
	}
	return nil
}

// Run blocks on the subscription until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	subscription := s.pubsub.OrdersSubscription()
	if subscription == nil {
		return errors.New("orders subscription unavailable")
	}

	err := subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if s.process(ctx, msg) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logg.Error(ctx, "subscription receive stopped", err)
		return err
	}
	return nil
}

// process returns true when the message should be acked. Permanent failures
// (malformed envelopes, unknown orders) are acked so they do not clog the
// subscription; transient ones are nacked for redelivery.
func (s *Service) process(ctx context.Context, msg *pubsub.Message) bool {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		s.logg.Error(logCtx, "failed to decode envelope", err)
		return true
	}

	if err := s.consumer.Process(ctx, eventType, envelope); err != nil {
		return ackOnError(err)
	}
	return true
}

func ackOnError(err error) bool {
	if typed := pkgerrors.As(err); typed != nil {
		switch typed.Code() {
		case pkgerrors.CodeValidation, pkgerrors.CodeNotFound:
			return true
		}
	}
	return false
}
