package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omexplus/dropship-backend/internal/supplierorders"
	"github.com/omexplus/dropship-backend/pkg/db/models"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
	"github.com/omexplus/dropship-backend/pkg/logger"
	"github.com/omexplus/dropship-backend/pkg/metrics"
	"github.com/omexplus/dropship-backend/pkg/types"
)

type orderLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type supplierLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
}

type linkFinder interface {
	FindLinkBySupplierSKU(ctx context.Context, supplierID uuid.UUID, sku string) (*models.SupplierProduct, error)
}

type ledgerService interface {
	Create(ctx context.Context, input supplierorders.CreateSupplierOrderDTO) (*supplierorders.SupplierOrderDTO, error)
	Send(ctx context.Context, id uuid.UUID) (*supplierorders.SupplierOrderDTO, error)
}

// EntryResult reports what happened for one supplier group of an order.
type EntryResult struct {
	SupplierID      uuid.UUID `json:"supplier_id"`
	SupplierOrderID uuid.UUID `json:"supplier_order_id,omitempty"`
	Created         bool      `json:"created"`
	Sent            bool      `json:"sent"`
	Error           string    `json:"error,omitempty"`
}

// Result summarizes one relay pass over an order.
type Result struct {
	OrderID      uuid.UUID     `json:"order_id"`
	Entries      []EntryResult `json:"entries"`
	SkippedItems int           `json:"skipped_items"`
}

// Orchestrator partitions a placed order across dropship suppliers and books
// one ledger entry per supplier. A failure in one supplier's group never
// aborts the others, and never fails the order itself.
type Orchestrator struct {
	orders    orderLoader
	suppliers supplierLoader
	links     linkFinder
	ledger    ledgerService
	metrics   *metrics.RelayMetrics
	logg      *logger.Logger
}

// OrchestratorParams bundles the orchestrator dependencies.
type OrchestratorParams struct {
	Orders    orderLoader
	Suppliers supplierLoader
	Links     linkFinder
	Ledger    ledgerService
	Metrics   *metrics.RelayMetrics
	Logger    *logger.Logger
}

// NewOrchestrator builds a relay orchestrator with the provided dependencies.
func NewOrchestrator(params OrchestratorParams) (*Orchestrator, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order loader required")
	}
	if params.Suppliers == nil {
		return nil, fmt.Errorf("supplier loader required")
	}
	if params.Links == nil {
		return nil, fmt.Errorf("link finder required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Metrics == nil {
		params.Metrics = metrics.NewRelayMetrics(nil)
	}
	return &Orchestrator{
		orders:    params.Orders,
		suppliers: params.Suppliers,
		links:     params.Links,
		ledger:    params.Ledger,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

type routedItem struct {
	item    models.OrderLineItem
	product models.Product
}

// ProcessOrder relays one placed order. Safe to call repeatedly for the same
// order: existing (order, supplier) ledger entries are skipped, so duplicate
// event deliveries are harmless.
func (o *Orchestrator) ProcessOrder(ctx context.Context, orderID uuid.UUID) (*Result, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	logCtx := o.logg.WithOrderID(ctx, orderID.String())

	order, err := o.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	productIDs := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		if item.ProductID != nil {
			productIDs = append(productIDs, *item.ProductID)
		}
	}
	products, err := o.orders.FindProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order products")
	}

	result := &Result{OrderID: order.ID}

	// group items per routed supplier, keeping first-seen supplier order
	groups := make(map[uuid.UUID][]routedItem)
	var supplierIDs []uuid.UUID
	for _, item := range order.Items {
		if item.ProductID == nil {
			result.SkippedItems++
			continue
		}
		product, ok := products[*item.ProductID]
		if !ok {
			result.SkippedItems++
			continue
		}
		supplierID, routed := product.RoutedSupplier()
		if !routed {
			result.SkippedItems++
			continue
		}
		if _, seen := groups[supplierID]; !seen {
			supplierIDs = append(supplierIDs, supplierID)
		}
		groups[supplierID] = append(groups[supplierID], routedItem{item: item, product: product})
	}

	if len(supplierIDs) == 0 {
		o.logg.Info(logCtx, "no dropship items on order")
		o.metrics.IncOrderProcessed("no_dropship_items")
		return result, nil
	}

	failed := 0
	for _, supplierID := range supplierIDs {
		entry := o.relayGroup(ctx, order, supplierID, groups[supplierID])
		if entry.Error != "" {
			failed++
		}
		result.Entries = append(result.Entries, entry)
	}

	switch {
	case failed == 0:
		o.metrics.IncOrderProcessed("ok")
	case failed == len(result.Entries):
		o.metrics.IncOrderProcessed("failed")
	default:
		o.metrics.IncOrderProcessed("partial")
	}

	o.logg.Info(o.logg.WithFields(logCtx, map[string]any{
		"suppliers":     len(result.Entries),
		"failed":        failed,
		"skipped_items": result.SkippedItems,
	}), "order relay finished")
	return result, nil
}

func (o *Orchestrator) relayGroup(ctx context.Context, order *models.Order, supplierID uuid.UUID, items []routedItem) EntryResult {
	entry := EntryResult{SupplierID: supplierID}
	logCtx := o.logg.WithSupplierID(o.logg.WithOrderID(ctx, order.ID.String()), supplierID.String())

	supplier, err := o.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			o.logg.Warn(logCtx, "routed supplier no longer exists, skipping group")
			return entry
		}
		entry.Error = fmt.Sprintf("load supplier: %v", err)
		return entry
	}
	if !supplier.IsActive || !supplier.IsDropship {
		o.logg.Info(logCtx, "supplier inactive or not dropship, skipping group")
		return entry
	}

	snapshot, supplierTotal, revenue := o.buildSnapshot(ctx, supplier.ID, items)

	created, err := o.ledger.Create(ctx, supplierorders.CreateSupplierOrderDTO{
		SupplierID:         supplier.ID,
		OrderID:            order.ID,
		SupplierTotalCents: supplierTotal,
		MarginCents:        revenue - supplierTotal,
		Items:              snapshot,
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeConflict {
			o.logg.Info(logCtx, "ledger entry already exists, skipping group")
			return entry
		}
		entry.Error = fmt.Sprintf("create ledger entry: %v", err)
		o.logg.Error(logCtx, "create ledger entry", err)
		return entry
	}
	entry.Created = true
	entry.SupplierOrderID = created.ID

	if !supplier.HasAPIURL() || !supplier.HasCredentials() {
		o.logg.Info(logCtx, "supplier has no API integration, entry stays pending")
		return entry
	}

	if _, err := o.ledger.Send(ctx, created.ID); err != nil {
		// entry stays pending with last_error persisted by the ledger service
		entry.Error = fmt.Sprintf("send supplier order: %v", err)
		return entry
	}
	entry.Sent = true
	return entry
}

// buildSnapshot freezes the relayed lines and prices the group. The supplier
// price comes from the product-supplier link; lines without a link count as
// zero cost rather than blocking the relay.
func (o *Orchestrator) buildSnapshot(ctx context.Context, supplierID uuid.UUID, items []routedItem) ([]types.SnapshotItem, int, int) {
	snapshot := make([]types.SnapshotItem, 0, len(items))
	supplierTotal := 0
	revenue := 0
	for _, routed := range items {
		sku := ""
		if routed.product.Metadata != nil {
			sku = routed.product.Metadata.SupplierSKU
		}
		if sku == "" && routed.item.SKU != nil {
			sku = *routed.item.SKU
		}

		unitCost := 0
		if sku != "" {
			link, err := o.links.FindLinkBySupplierSKU(ctx, supplierID, sku)
			switch {
			case err == nil:
				unitCost = link.SupplierPriceCents
			case errors.Is(err, gorm.ErrRecordNotFound):
				o.logg.Warn(o.logg.WithSupplierID(ctx, supplierID.String()),
					fmt.Sprintf("no link for sku %s, costing line at zero", sku))
			default:
				o.logg.Error(ctx, "lookup supplier link", err)
			}
		}

		snapshot = append(snapshot, types.SnapshotItem{
			SKU:            sku,
			Quantity:       routed.item.Quantity,
			Name:           routed.item.Title,
			UnitPriceCents: routed.item.UnitPriceCents,
		})
		supplierTotal += unitCost * routed.item.Quantity
		revenue += routed.item.UnitPriceCents * routed.item.Quantity
	}
	return snapshot, supplierTotal, revenue
}
