package supplierorders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omexplus/dropship-backend/pkg/db/models"
	"github.com/omexplus/dropship-backend/pkg/enums"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
	"github.com/omexplus/dropship-backend/pkg/logger"
	"github.com/omexplus/dropship-backend/pkg/metrics"
	"github.com/omexplus/dropship-backend/pkg/outbox"
	"github.com/omexplus/dropship-backend/pkg/outbox/payloads"
	"github.com/omexplus/dropship-backend/pkg/pagination"
	"github.com/omexplus/dropship-backend/pkg/woocommerce"
)

const defaultSendTimeout = 10 * time.Second

type ledgerRepository interface {
	CreateIfAbsentTx(tx *gorm.DB, entry *models.SupplierOrder) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierOrder, error)
	List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.SupplierOrder, int64, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.SupplierOrder, error)
	UpdateTx(tx *gorm.DB, entry *models.SupplierOrder) error
	Update(ctx context.Context, entry *models.SupplierOrder) error
}

type supplierLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
}

type orderLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type storeClient interface {
	LookupProductID(ctx context.Context, sku string) (int64, bool, error)
	CreateOrder(ctx context.Context, req woocommerce.CreateOrderRequest) (*woocommerce.CreatedOrder, error)
	GetOrder(ctx context.Context, remoteID string) (*woocommerce.RemoteOrder, error)
}

// StoreClientFactory builds a commerce client for one supplier's store.
type StoreClientFactory func(apiURL, consumerKey, consumerSecret string) (storeClient, error)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes ledger operations: manual creation, forwarding to the
// supplier's store, remote status polling, cancellation and tracking edits.
type Service interface {
	Create(ctx context.Context, input CreateSupplierOrderDTO) (*SupplierOrderDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*SupplierOrderDTO, error)
	List(ctx context.Context, filter ListFilter, page pagination.Params) (pagination.Page[SupplierOrderDTO], error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]SupplierOrderDTO, error)
	Send(ctx context.Context, id uuid.UUID) (*SupplierOrderDTO, error)
	CheckStatus(ctx context.Context, id uuid.UUID) (*StatusSyncDTO, error)
	Cancel(ctx context.Context, id uuid.UUID) (*SupplierOrderDTO, error)
	UpdateTracking(ctx context.Context, id uuid.UUID, input UpdateTrackingDTO) (*SupplierOrderDTO, error)
}

type service struct {
	repo          ledgerRepository
	suppliers     supplierLoader
	orders        orderLoader
	clientFactory StoreClientFactory
	db            txRunner
	events        eventEmitter
	metrics       *metrics.RelayMetrics
	logg          *logger.Logger
	sendTimeout   time.Duration
}

// ServiceParams bundles the ledger service dependencies.
type ServiceParams struct {
	Repo          ledgerRepository
	Suppliers     supplierLoader
	Orders        orderLoader
	ClientFactory StoreClientFactory
	DB            txRunner
	Events        eventEmitter
	Metrics       *metrics.RelayMetrics
	Logger        *logger.Logger
	SendTimeout   time.Duration
}

// NewService builds a ledger service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if params.Suppliers == nil {
		return nil, fmt.Errorf("supplier loader required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order loader required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	factory := params.ClientFactory
	if factory == nil {
		factory = func(apiURL, key, secret string) (storeClient, error) {
			return woocommerce.NewClient(apiURL, key, secret)
		}
	}
	timeout := params.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	if params.Metrics == nil {
		params.Metrics = metrics.NewRelayMetrics(nil)
	}
	return &service{
		repo:          params.Repo,
		suppliers:     params.Suppliers,
		orders:        params.Orders,
		clientFactory: factory,
		db:            params.DB,
		events:        params.Events,
		metrics:       params.Metrics,
		logg:          params.Logger,
		sendTimeout:   timeout,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateSupplierOrderDTO) (*SupplierOrderDTO, error) {
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier_id is required")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "items must not be empty")
	}
	if input.SupplierTotalCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier_total_cents must not be negative")
	}

	supplier, err := s.loadSupplier(ctx, input.SupplierID)
	if err != nil {
		return nil, err
	}
	if _, err := s.orders.FindByID(ctx, input.OrderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	entry := input.ToModel()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.repo.CreateIfAbsentTx(tx, entry)
		if err != nil {
			return err
		}
		if !created {
			return pkgerrors.New(pkgerrors.CodeConflict, "ledger entry already exists for this order and supplier")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSupplierOrderCreated,
			AggregateType: enums.AggregateSupplierOrder,
			AggregateID:   entry.ID,
			Version:       1,
			Data: payloads.SupplierOrderCreatedEvent{
				SupplierOrderID: entry.ID,
				OrderID:         entry.OrderID,
				SupplierID:      entry.SupplierID,
				ItemCount:       len(entry.Items.Items),
				TotalCents:      entry.SupplierTotalCents,
			},
		})
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ledger entry")
	}

	logCtx := s.logg.WithSupplierOrderID(s.logg.WithSupplierID(ctx, supplier.ID.String()), entry.ID.String())
	s.logg.Info(logCtx, "supplier order created")
	return FromModel(entry), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*SupplierOrderDTO, error) {
	entry, err := s.findEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(entry), nil
}

func (s *service) List(ctx context.Context, filter ListFilter, page pagination.Params) (pagination.Page[SupplierOrderDTO], error) {
	page = pagination.Normalize(page)
	rows, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return pagination.Page[SupplierOrderDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier orders")
	}
	items := make([]SupplierOrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return pagination.NewPage(items, total, page), nil
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]SupplierOrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	rows, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier orders for order")
	}
	items := make([]SupplierOrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return items, nil
}

// Send forwards a pending ledger entry to the supplier's store. A re-send of
// an already forwarded entry is a conflict, never a second remote order.
func (s *service) Send(ctx context.Context, id uuid.UUID) (*SupplierOrderDTO, error) {
	entry, err := s.findEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.WasSent() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "supplier order already sent").
			WithDetails(map[string]string{"supplier_order_id": *entry.SupplierOrderID})
	}
	if entry.Status != enums.SupplierOrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot send supplier order in status %s", entry.Status))
	}

	supplier, err := s.loadSupplier(ctx, entry.SupplierID)
	if err != nil {
		return nil, err
	}
	if !supplier.HasAPIURL() || !supplier.HasCredentials() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier has no API integration configured")
	}

	order, err := s.orders.FindByID(ctx, entry.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	client, err := s.clientFactory(*supplier.APIURL, *supplier.APIKey, *supplier.APISecret)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build store client")
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	started := time.Now()
	created, unmatched, sendErr := s.forward(sendCtx, client, entry, order)
	s.metrics.ObserveSendDuration(supplier.Code, time.Since(started))
	if sendErr != nil {
		s.recordSendFailure(ctx, entry, supplier, sendErr)
		return nil, sendErr
	}

	now := time.Now()
	remoteID := strconv.FormatInt(created.ID, 10)
	entry.Status = enums.SupplierOrderStatusSent
	entry.SupplierOrderID = &remoteID
	if created.Number != "" {
		number := created.Number
		entry.SupplierOrderNumber = &number
	}
	if entry.SentAt == nil {
		entry.SentAt = &now
	}
	entry.LastError = nil

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, entry); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSupplierOrderSent,
			AggregateType: enums.AggregateSupplierOrder,
			AggregateID:   entry.ID,
			Version:       1,
			Data: payloads.SupplierOrderSentEvent{
				SupplierOrderID: entry.ID,
				OrderID:         entry.OrderID,
				SupplierID:      entry.SupplierID,
				RemoteOrderID:   remoteID,
				RemoteOrderNo:   created.Number,
				SentAt:          now,
				UnmatchedLines:  unmatched,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist sent supplier order")
	}

	logCtx := s.logg.WithSupplierOrderID(s.logg.WithSupplierID(ctx, supplier.ID.String()), entry.ID.String())
	s.logg.Info(logCtx, fmt.Sprintf("supplier order sent, remote order %s", remoteID))
	return FromModel(entry), nil
}

// forward places the remote order. SKUs missing from the supplier's catalog
// fall back to free-text lines so the supplier still sees the full request;
// transport failures abort the send.
func (s *service) forward(ctx context.Context, client storeClient, entry *models.SupplierOrder, order *models.Order) (*woocommerce.CreatedOrder, int, error) {
	lines := make([]woocommerce.OrderLine, 0, len(entry.Items.Items))
	unmatched := 0
	for _, item := range entry.Items.Items {
		line := woocommerce.OrderLine{
			Name:           item.Name,
			SKU:            item.SKU,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		}
		if item.SKU != "" {
			remoteID, found, err := client.LookupProductID(ctx, item.SKU)
			if err != nil {
				return nil, 0, err
			}
			if found {
				line.RemoteProductID = remoteID
			} else {
				unmatched++
			}
		} else {
			unmatched++
		}
		lines = append(lines, line)
	}

	req := woocommerce.CreateOrderRequest{
		Lines:     lines,
		Reference: fmt.Sprintf("order-%d", order.DisplayID),
	}
	if addr := order.ShippingAddress; addr != nil {
		req.Address = woocommerce.Address{
			FirstName: addr.FirstName,
			LastName:  addr.LastName,
			Address1:  addr.Line1,
			Address2:  addr.Line2,
			City:      addr.City,
			Postcode:  addr.PostalCode,
			Country:   addr.CountryCode,
			Phone:     addr.Phone,
		}
	}
	if order.Email != nil {
		req.Address.Email = *order.Email
	}

	created, err := client.CreateOrder(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	return created, unmatched, nil
}

func (s *service) recordSendFailure(ctx context.Context, entry *models.SupplierOrder, supplier *models.Supplier, sendErr error) {
	code := pkgerrors.CodeDependency
	if appErr := pkgerrors.As(sendErr); appErr != nil {
		code = appErr.Code()
	}
	s.metrics.IncSendFailure(supplier.Code, string(code))

	message := truncateError(sendErr.Error())
	entry.LastError = &message
	if err := s.repo.Update(ctx, entry); err != nil {
		s.logg.Error(ctx, "persist send failure", err)
	}

	logCtx := s.logg.WithSupplierOrderID(s.logg.WithSupplierID(ctx, supplier.ID.String()), entry.ID.String())
	s.logg.Warn(logCtx, fmt.Sprintf("supplier order send failed: %v", sendErr))
}

// CheckStatus polls the supplier's remote order and applies the observed
// status through the ledger state machine. Unmapped or backward remote
// statuses leave the entry untouched.
func (s *service) CheckStatus(ctx context.Context, id uuid.UUID) (*StatusSyncDTO, error) {
	entry, err := s.findEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entry.WasSent() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "supplier order has not been sent")
	}
	if entry.Status.IsTerminal() {
		return &StatusSyncDTO{
			ID:             entry.ID,
			Status:         entry.Status,
			TrackingNumber: entry.TrackingNumber,
		}, nil
	}

	supplier, err := s.loadSupplier(ctx, entry.SupplierID)
	if err != nil {
		return nil, err
	}
	if !supplier.HasAPIURL() || !supplier.HasCredentials() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier has no API integration configured")
	}

	client, err := s.clientFactory(*supplier.APIURL, *supplier.APIKey, *supplier.APISecret)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build store client")
	}

	pollCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	remote, err := client.GetOrder(pollCtx, *entry.SupplierOrderID)
	if err != nil {
		return nil, err
	}

	fromStatus := entry.Status
	changed := false
	if mapped, ok := mapRemoteStatus(remote.Status); ok && entry.Status.CanTransitionTo(mapped) {
		applyTransition(entry, mapped, time.Now())
		changed = true
	}

	trackingChanged := false
	if remote.TrackingNumber != "" && statusCarriesTracking(entry.Status) {
		if entry.TrackingNumber == nil || *entry.TrackingNumber != remote.TrackingNumber {
			tracking := remote.TrackingNumber
			entry.TrackingNumber = &tracking
			trackingChanged = true
		}
	}

	if changed || trackingChanged {
		err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
			if err := s.repo.UpdateTx(tx, entry); err != nil {
				return err
			}
			return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventSupplierOrderStatusSync,
				AggregateType: enums.AggregateSupplierOrder,
				AggregateID:   entry.ID,
				Version:       1,
				Data: payloads.SupplierOrderStatusSyncEvent{
					SupplierOrderID: entry.ID,
					SupplierID:      entry.SupplierID,
					FromStatus:      string(fromStatus),
					ToStatus:        string(entry.Status),
					TrackingNumber:  remote.TrackingNumber,
					ObservedAt:      time.Now(),
				},
			})
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist status sync")
		}
		if changed {
			s.metrics.IncStatusSync(supplier.Code, fmt.Sprintf("%s->%s", fromStatus, entry.Status))
		}
	}

	return &StatusSyncDTO{
		ID:             entry.ID,
		Status:         entry.Status,
		RemoteStatus:   remote.Status,
		TrackingNumber: entry.TrackingNumber,
		Changed:        changed,
	}, nil
}

// Cancel marks the entry cancelled. Allowed from pending, sent and confirmed;
// a shipped or delivered order cannot be recalled.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*SupplierOrderDTO, error) {
	entry, err := s.findEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entry.Status.CanTransitionTo(enums.SupplierOrderStatusCancelled) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot cancel supplier order in status %s", entry.Status))
	}

	fromStatus := entry.Status
	applyTransition(entry, enums.SupplierOrderStatusCancelled, time.Now())

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, entry); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSupplierOrderStatusSync,
			AggregateType: enums.AggregateSupplierOrder,
			AggregateID:   entry.ID,
			Version:       1,
			Data: payloads.SupplierOrderStatusSyncEvent{
				SupplierOrderID: entry.ID,
				SupplierID:      entry.SupplierID,
				FromStatus:      string(fromStatus),
				ToStatus:        string(enums.SupplierOrderStatusCancelled),
				ObservedAt:      time.Now(),
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cancellation")
	}

	logCtx := s.logg.WithSupplierOrderID(ctx, entry.ID.String())
	s.logg.Info(logCtx, "supplier order cancelled")
	return FromModel(entry), nil
}

func (s *service) UpdateTracking(ctx context.Context, id uuid.UUID, input UpdateTrackingDTO) (*SupplierOrderDTO, error) {
	entry, err := s.findEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.TrackingNumber == nil && input.TrackingURL == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}
	if input.TrackingNumber != nil {
		trimmed := strings.TrimSpace(*input.TrackingNumber)
		if trimmed == "" {
			entry.TrackingNumber = nil
		} else {
			entry.TrackingNumber = &trimmed
		}
	}
	if input.TrackingURL != nil {
		trimmed := strings.TrimSpace(*input.TrackingURL)
		if trimmed == "" {
			entry.TrackingURL = nil
		} else {
			entry.TrackingURL = &trimmed
		}
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tracking")
	}
	return FromModel(entry), nil
}

func (s *service) findEntry(ctx context.Context, id uuid.UUID) (*models.SupplierOrder, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier order id is required")
	}
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier order")
	}
	return entry, nil
}

func (s *service) loadSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return supplier, nil
}

// mapRemoteStatus translates a WooCommerce order status into the ledger state
// machine. Unknown statuses report false and leave the entry as is.
func mapRemoteStatus(remote string) (enums.SupplierOrderStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(remote)) {
	case "processing":
		return enums.SupplierOrderStatusConfirmed, true
	case "completed":
		return enums.SupplierOrderStatusDelivered, true
	case "shipped":
		return enums.SupplierOrderStatusShipped, true
	case "cancelled", "refunded":
		return enums.SupplierOrderStatusCancelled, true
	case "pending", "on-hold":
		return enums.SupplierOrderStatusPending, true
	default:
		return "", false
	}
}

// applyTransition moves the entry to next and stamps the matching timestamp
// on first entry into that state.
func applyTransition(entry *models.SupplierOrder, next enums.SupplierOrderStatus, now time.Time) {
	entry.Status = next
	switch next {
	case enums.SupplierOrderStatusSent:
		if entry.SentAt == nil {
			entry.SentAt = &now
		}
	case enums.SupplierOrderStatusConfirmed:
		if entry.ConfirmedAt == nil {
			entry.ConfirmedAt = &now
		}
	case enums.SupplierOrderStatusShipped:
		if entry.ShippedAt == nil {
			entry.ShippedAt = &now
		}
	case enums.SupplierOrderStatusDelivered:
		if entry.DeliveredAt == nil {
			entry.DeliveredAt = &now
		}
	case enums.SupplierOrderStatusCancelled:
		if entry.CancelledAt == nil {
			entry.CancelledAt = &now
		}
	}
}

func statusCarriesTracking(status enums.SupplierOrderStatus) bool {
	return status == enums.SupplierOrderStatusShipped || status == enums.SupplierOrderStatusDelivered
}

func truncateError(message string) string {
	const limit = 1024
	if len(message) > limit {
		return message[:limit]
	}
	return message
}
