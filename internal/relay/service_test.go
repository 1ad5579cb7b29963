package relay

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omexplus/dropship-backend/internal/supplierorders"
	"github.com/omexplus/dropship-backend/pkg/db/models"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
	"github.com/omexplus/dropship-backend/pkg/logger"
)

type stubOrderLoader struct {
	order    *models.Order
	products map[uuid.UUID]models.Product
}

func (s *stubOrderLoader) FindByID(context.Context, uuid.UUID) (*models.Order, error) {
	if s.order == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrderLoader) FindProductsByIDs(context.Context, []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	return s.products, nil
}

type stubSupplierLoader struct {
	suppliers map[uuid.UUID]*models.Supplier
}

func (s *stubSupplierLoader) FindByID(_ context.Context, id uuid.UUID) (*models.Supplier, error) {
	supplier, ok := s.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return supplier, nil
}

type stubLinkFinder struct {
	links map[string]*models.SupplierProduct // keyed by supplierID|sku
}

func (s *stubLinkFinder) FindLinkBySupplierSKU(_ context.Context, supplierID uuid.UUID, sku string) (*models.SupplierProduct, error) {
	link, ok := s.links[supplierID.String()+"|"+sku]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return link, nil
}

type stubLedger struct {
	createFn func(ctx context.Context, input supplierorders.CreateSupplierOrderDTO) (*supplierorders.SupplierOrderDTO, error)
	sendFn   func(ctx context.Context, id uuid.UUID) (*supplierorders.SupplierOrderDTO, error)

	creates []supplierorders.CreateSupplierOrderDTO
	sends   []uuid.UUID
}

func (s *stubLedger) Create(ctx context.Context, input supplierorders.CreateSupplierOrderDTO) (*supplierorders.SupplierOrderDTO, error) {
	s.creates = append(s.creates, input)
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &supplierorders.SupplierOrderDTO{
		ID:         uuid.New(),
		SupplierID: input.SupplierID,
		OrderID:    input.OrderID,
	}, nil
}

func (s *stubLedger) Send(ctx context.Context, id uuid.UUID) (*supplierorders.SupplierOrderDTO, error) {
	s.sends = append(s.sends, id)
	if s.sendFn != nil {
		return s.sendFn(ctx, id)
	}
	return &supplierorders.SupplierOrderDTO{ID: id}, nil
}

func integratedSupplier(name, code string) *models.Supplier {
	apiURL := "https://" + code + ".example"
	key := "ck_" + code
	secret := "cs_" + code
	return &models.Supplier{
		ID:         uuid.New(),
		Name:       name,
		Code:       code,
		APIURL:     &apiURL,
		APIKey:     &key,
		APISecret:  &secret,
		IsActive:   true,
		IsDropship: true,
	}
}

func routedProduct(supplierID uuid.UUID, sku string) models.Product {
	return models.Product{
		ID:  uuid.New(),
		SKU: sku,
		Metadata: &models.ProductMetadata{
			SupplierID:  &supplierID,
			SupplierSKU: sku,
		},
	}
}

type fixture struct {
	order     *models.Order
	products  map[uuid.UUID]models.Product
	suppliers map[uuid.UUID]*models.Supplier
	links     map[string]*models.SupplierProduct
}

// twoSupplierOrder builds an order with two routed items for distinct
// suppliers plus one item with no routing metadata.
func twoSupplierOrder() (*fixture, *models.Supplier, *models.Supplier) {
	boltCo := integratedSupplier("Bolts & Co", "bolts")
	gearCo := integratedSupplier("Gears Ltd", "gears")

	boltProduct := routedProduct(boltCo.ID, "BOLT-M8")
	gearProduct := routedProduct(gearCo.ID, "GEAR-12T")
	plainProduct := models.Product{ID: uuid.New(), SKU: "STICKER"}

	order := &models.Order{
		ID:        uuid.New(),
		DisplayID: 1001,
		Items: []models.OrderLineItem{
			{ID: uuid.New(), ProductID: &boltProduct.ID, Title: "Hex bolt M8", Quantity: 4, UnitPriceCents: 150},
			{ID: uuid.New(), ProductID: &gearProduct.ID, Title: "Gear 12T", Quantity: 1, UnitPriceCents: 2500},
			{ID: uuid.New(), ProductID: &plainProduct.ID, Title: "Sticker", Quantity: 2, UnitPriceCents: 100},
		},
	}

	return &fixture{
		order: order,
		products: map[uuid.UUID]models.Product{
			boltProduct.ID:  boltProduct,
			gearProduct.ID:  gearProduct,
			plainProduct.ID: plainProduct,
		},
		suppliers: map[uuid.UUID]*models.Supplier{
			boltCo.ID: boltCo,
			gearCo.ID: gearCo,
		},
		links: map[string]*models.SupplierProduct{
			boltCo.ID.String() + "|BOLT-M8":  {SupplierID: boltCo.ID, SupplierSKU: "BOLT-M8", SupplierPriceCents: 100},
			gearCo.ID.String() + "|GEAR-12T": {SupplierID: gearCo.ID, SupplierSKU: "GEAR-12T", SupplierPriceCents: 1800},
		},
	}, boltCo, gearCo
}

func newOrchestrator(t *testing.T, f *fixture, ledger *stubLedger) *Orchestrator {
	t.Helper()
	orch, err := NewOrchestrator(OrchestratorParams{
		Orders:    &stubOrderLoader{order: f.order, products: f.products},
		Suppliers: &stubSupplierLoader{suppliers: f.suppliers},
		Links:     &stubLinkFinder{links: f.links},
		Ledger:    ledger,
		Logger:    logger.New(logger.Options{ServiceName: "relay-test"}),
	})
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	return orch
}

func TestProcessOrderRelaysEachSupplierGroup(t *testing.T) {
	f, boltCo, gearCo := twoSupplierOrder()
	ledger := &stubLedger{}
	orch := newOrchestrator(t, f, ledger)

	result, err := orch.ProcessOrder(context.Background(), f.order.ID)
	if err != nil {
		t.Fatalf("ProcessOrder: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
	if result.SkippedItems != 1 {
		t.Fatalf("expected 1 skipped item, got %d", result.SkippedItems)
	}
	for _, entry := range result.Entries {
		if !entry.Created || !entry.Sent || entry.Error != "" {
			t.Fatalf("expected created and sent entry, got %+v", entry)
		}
	}
	if len(ledger.creates) != 2 || len(ledger.sends) != 2 {
		t.Fatalf("expected 2 creates and 2 sends, got %d/%d", len(ledger.creates), len(ledger.sends))
	}

	byID := map[uuid.UUID]supplierorders.CreateSupplierOrderDTO{}
	for _, c := range ledger.creates {
		byID[c.SupplierID] = c
	}
	bolts := byID[boltCo.ID]
	if bolts.SupplierTotalCents != 400 { // 4 × 100
		t.Fatalf("expected bolts total 400, got %d", bolts.SupplierTotalCents)
	}
	if bolts.MarginCents != 200 { // 4 × 150 revenue − 400
		t.Fatalf("expected bolts margin 200, got %d", bolts.MarginCents)
	}
	gears := byID[gearCo.ID]
	if gears.SupplierTotalCents != 1800 || gears.MarginCents != 700 {
		t.Fatalf("unexpected gears pricing %+v", gears)
	}
	if len(bolts.Items) != 1 || bolts.Items[0].SKU != "BOLT-M8" || bolts.Items[0].Quantity != 4 {
		t.Fatalf("unexpected bolts snapshot %+v", bolts.Items)
	}
}

func TestProcessOrderSkipsExistingLedgerEntries(t *testing.T) {
	f, _, _ := twoSupplierOrder()
	ledger := &stubLedger{
		createFn: func(context.Context, supplierorders.CreateSupplierOrderDTO) (*supplierorders.SupplierOrderDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "ledger entry already exists for this order and supplier")
		},
	}
	orch := newOrchestrator(t, f, ledger)

	result, err := orch.ProcessOrder(context.Background(), f.order.ID)
	if err != nil {
		t.Fatalf("ProcessOrder: %v", err)
	}
	for _, entry := range result.Entries {
		if entry.Created || entry.Sent || entry.Error != "" {
			t.Fatalf("duplicate delivery must be a clean skip, got %+v", entry)
		}
	}
	if len(ledger.sends) != 0 {
		t.Fatal("existing entries must not be re-sent")
	}
}

func TestProcessOrderIsolatesSupplierFailures(t *testing.T) {
	f, boltCo, gearCo := twoSupplierOrder()
	ledger := &stubLedger{}
	createdFor := map[uuid.UUID]uuid.UUID{} // ledger id -> supplier id
	ledger.createFn = func(_ context.Context, input supplierorders.CreateSupplierOrderDTO) (*supplierorders.SupplierOrderDTO, error) {
		id := uuid.New()
		createdFor[id] = input.SupplierID
		return &supplierorders.SupplierOrderDTO{ID: id, SupplierID: input.SupplierID, OrderID: input.OrderID}, nil
	}
	ledger.sendFn = func(_ context.Context, id uuid.UUID) (*supplierorders.SupplierOrderDTO, error) {
		if createdFor[id] == boltCo.ID {
			return nil, pkgerrors.New(pkgerrors.CodeTimeout, "create remote order: request timed out")
		}
		return &supplierorders.SupplierOrderDTO{ID: id}, nil
	}
	orch := newOrchestrator(t, f, ledger)

	result, err := orch.ProcessOrder(context.Background(), f.order.ID)
	if err != nil {
		t.Fatalf("one supplier failing must not fail the relay: %v", err)
	}

	var boltEntry, gearEntry *EntryResult
	for i := range result.Entries {
		switch result.Entries[i].SupplierID {
		case boltCo.ID:
			boltEntry = &result.Entries[i]
		case gearCo.ID:
			gearEntry = &result.Entries[i]
		}
	}
	if boltEntry == nil || gearEntry == nil {
		t.Fatalf("expected entries for both suppliers, got %+v", result.Entries)
	}
	if !boltEntry.Created || boltEntry.Sent || boltEntry.Error == "" {
		t.Fatalf("failed supplier must stay pending with error, got %+v", boltEntry)
	}
	if !gearEntry.Created || !gearEntry.Sent || gearEntry.Error != "" {
		t.Fatalf("healthy supplier must still be sent, got %+v", gearEntry)
	}
}

func TestProcessOrderSkipsInactiveSupplier(t *testing.T) {
	f, boltCo, _ := twoSupplierOrder()
	boltCo.IsActive = false
	ledger := &stubLedger{}
	orch := newOrchestrator(t, f, ledger)

	result, err := orch.ProcessOrder(context.Background(), f.order.ID)
	if err != nil {
		t.Fatalf("ProcessOrder: %v", err)
	}
	for _, entry := range result.Entries {
		if entry.SupplierID == boltCo.ID && (entry.Created || entry.Sent) {
			t.Fatalf("inactive supplier must be skipped, got %+v", entry)
		}
	}
	if len(ledger.creates) != 1 {
		t.Fatalf("expected a single create for the active supplier, got %d", len(ledger.creates))
	}
}

func TestProcessOrderLeavesUnintegratedSupplierPending(t *testing.T) {
	f, boltCo, _ := twoSupplierOrder()
	boltCo.APIURL = nil
	ledger := &stubLedger{}
	orch := newOrchestrator(t, f, ledger)

	result, err := orch.ProcessOrder(context.Background(), f.order.ID)
	if err != nil {
		t.Fatalf("ProcessOrder: %v", err)
	}
	for _, entry := range result.Entries {
		if entry.SupplierID == boltCo.ID {
			if !entry.Created || entry.Sent || entry.Error != "" {
				t.Fatalf("unintegrated supplier must keep a pending entry, got %+v", entry)
			}
		}
	}
}

func TestProcessOrderWithoutDropshipItems(t *testing.T) {
	product := models.Product{ID: uuid.New(), SKU: "PLAIN"}
	order := &models.Order{
		ID: uuid.New(),
		Items: []models.OrderLineItem{
			{ID: uuid.New(), ProductID: &product.ID, Title: "Plain", Quantity: 1, UnitPriceCents: 500},
		},
	}
	f := &fixture{
		order:     order,
		products:  map[uuid.UUID]models.Product{product.ID: product},
		suppliers: map[uuid.UUID]*models.Supplier{},
		links:     map[string]*models.SupplierProduct{},
	}
	ledger := &stubLedger{}
	orch := newOrchestrator(t, f, ledger)

	result, err := orch.ProcessOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("ProcessOrder: %v", err)
	}
	if len(result.Entries) != 0 || result.SkippedItems != 1 {
		t.Fatalf("expected no entries and one skipped item, got %+v", result)
	}
}

func TestProcessOrderUnknownOrder(t *testing.T) {
	f := &fixture{
		order:     nil,
		products:  map[uuid.UUID]models.Product{},
		suppliers: map[uuid.UUID]*models.Supplier{},
		links:     map[string]*models.SupplierProduct{},
	}
	orch := newOrchestrator(t, f, &stubLedger{})

	_, err := orch.ProcessOrder(context.Background(), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
