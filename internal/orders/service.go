package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omexplus/dropship-backend/pkg/db/models"
	"github.com/omexplus/dropship-backend/pkg/enums"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
	"github.com/omexplus/dropship-backend/pkg/logger"
	"github.com/omexplus/dropship-backend/pkg/outbox"
	"github.com/omexplus/dropship-backend/pkg/outbox/payloads"
	"github.com/omexplus/dropship-backend/pkg/pagination"
)

type orderRepository interface {
	CreateTx(tx *gorm.DB, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, page pagination.Params) ([]models.Order, int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes order placement and lookup. Placing an order queues the
// order.placed event in the same transaction; the relay picks it up from
// there.
type Service interface {
	Create(ctx context.Context, input CreateOrderDTO) (*OrderDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, page pagination.Params) (pagination.Page[OrderDTO], error)
}

type service struct {
	repo   orderRepository
	db     txRunner
	events eventEmitter
	logg   *logger.Logger
}

// NewService builds an order service with the provided dependencies.
func NewService(repo orderRepository, db txRunner, events eventEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if db == nil {
		return nil, fmt.Errorf("db client required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, db: db, events: events, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderDTO) (*OrderDTO, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	order := input.ToModel()
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, order); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.OrderPlacedEvent{
				OrderID:   order.ID,
				DisplayID: order.DisplayID,
				PlacedAt:  time.Now(),
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	logCtx := s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(logCtx, "order placed")
	return FromModel(order), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context, page pagination.Params) (pagination.Page[OrderDTO], error) {
	page = pagination.Normalize(page)
	rows, total, err := s.repo.List(ctx, page)
	if err != nil {
		return pagination.Page[OrderDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	items := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return pagination.NewPage(items, total, page), nil
}

func validateCreate(input CreateOrderDTO) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must have at least one item")
	}
	for i, item := range input.Items {
		if strings.TrimSpace(item.Title) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: title is required", i))
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be positive", i))
		}
		if item.UnitPriceCents < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: unit_price_cents must not be negative", i))
		}
	}
	return nil
}
