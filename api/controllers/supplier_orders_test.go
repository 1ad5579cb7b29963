package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/omexplus/dropship-backend/internal/supplierorders"
	"github.com/omexplus/dropship-backend/pkg/enums"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
	"github.com/omexplus/dropship-backend/pkg/pagination"
)

type stubSupplierOrderService struct {
	createFn         func(ctx context.Context, input supplierorders.CreateSupplierOrderDTO) (*supplierorders.SupplierOrderDTO, error)
	getFn            func(ctx context.Context, id uuid.UUID) (*supplierorders.SupplierOrderDTO, error)
	listFn           func(ctx context.Context, filter supplierorders.ListFilter, page pagination.Params) (pagination.Page[supplierorders.SupplierOrderDTO], error)
	listByOrderFn    func(ctx context.Context, orderID uuid.UUID) ([]supplierorders.SupplierOrderDTO, error)
	sendFn           func(ctx context.Context, id uuid.UUID) (*supplierorders.SupplierOrderDTO, error)
	checkStatusFn    func(ctx context.Context, id uuid.UUID) (*supplierorders.StatusSyncDTO, error)
	cancelFn         func(ctx context.Context, id uuid.UUID) (*supplierorders.SupplierOrderDTO, error)
	updateTrackingFn func(ctx context.Context, id uuid.UUID, input supplierorders.UpdateTrackingDTO) (*supplierorders.SupplierOrderDTO, error)
}

func (s *stubSupplierOrderService) Create(ctx context.Context, input supplierorders.CreateSupplierOrderDTO) (*supplierorders.SupplierOrderDTO, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &supplierorders.SupplierOrderDTO{}, nil
}

func (s *stubSupplierOrderService) GetByID(ctx context.Context, id uuid.UUID) (*supplierorders.SupplierOrderDTO, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return &supplierorders.SupplierOrderDTO{}, nil
}

func (s *stubSupplierOrderService) List(ctx context.Context, filter supplierorders.ListFilter, page pagination.Params) (pagination.Page[supplierorders.SupplierOrderDTO], error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter, page)
	}
	return pagination.Page[supplierorders.SupplierOrderDTO]{}, nil
}

func (s *stubSupplierOrderService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]supplierorders.SupplierOrderDTO, error) {
	if s.listByOrderFn != nil {
		return s.listByOrderFn(ctx, orderID)
	}
	return nil, nil
}

func (s *stubSupplierOrderService) Send(ctx context.Context, id uuid.UUID) (*supplierorders.SupplierOrderDTO, error) {
	if s.sendFn != nil {
		return s.sendFn(ctx, id)
	}
	return &supplierorders.SupplierOrderDTO{}, nil
}

func (s *stubSupplierOrderService) CheckStatus(ctx context.Context, id uuid.UUID) (*supplierorders.StatusSyncDTO, error) {
	if s.checkStatusFn != nil {
		return s.checkStatusFn(ctx, id)
	}
	return &supplierorders.StatusSyncDTO{}, nil
}

func (s *stubSupplierOrderService) Cancel(ctx context.Context, id uuid.UUID) (*supplierorders.SupplierOrderDTO, error) {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, id)
	}
	return &supplierorders.SupplierOrderDTO{}, nil
}

func (s *stubSupplierOrderService) UpdateTracking(ctx context.Context, id uuid.UUID, input supplierorders.UpdateTrackingDTO) (*supplierorders.SupplierOrderDTO, error) {
	if s.updateTrackingFn != nil {
		return s.updateTrackingFn(ctx, id, input)
	}
	return &supplierorders.SupplierOrderDTO{}, nil
}

func TestSupplierOrderCreateManualEntry(t *testing.T) {
	logg := testLogger()
	supplierID := uuid.New()
	orderID := uuid.New()
	var captured supplierorders.CreateSupplierOrderDTO
	svc := &stubSupplierOrderService{
		createFn: func(ctx context.Context, input supplierorders.CreateSupplierOrderDTO) (*supplierorders.SupplierOrderDTO, error) {
			captured = input
			return &supplierorders.SupplierOrderDTO{ID: uuid.New(), SupplierID: input.SupplierID, OrderID: input.OrderID}, nil
		},
	}

	body := `{"supplier_id":"` + supplierID.String() + `","order_id":"` + orderID.String() + `","supplier_total_cents":4500,"margin_cents":1500,"items":[{"sku":"BP-1001","quantity":3,"name":"Hex bolt M8","unit_price_cents":1500}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/supplier-orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	SupplierOrderCreate(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.SupplierID != supplierID || captured.OrderID != orderID {
		t.Fatalf("unexpected input %+v", captured)
	}
	if len(captured.Items) != 1 || captured.Items[0].SKU != "BP-1001" || captured.Items[0].Quantity != 3 {
		t.Fatalf("unexpected items %+v", captured.Items)
	}
}

func TestSupplierOrderCreateRequiresItems(t *testing.T) {
	logg := testLogger()
	body := `{"supplier_id":"` + uuid.NewString() + `","order_id":"` + uuid.NewString() + `","supplier_total_cents":100,"items":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/supplier-orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	SupplierOrderCreate(&stubSupplierOrderService{}, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSupplierOrderListParsesStatusFilter(t *testing.T) {
	logg := testLogger()
	supplierID := uuid.New()
	var captured supplierorders.ListFilter
	svc := &stubSupplierOrderService{
		listFn: func(ctx context.Context, filter supplierorders.ListFilter, page pagination.Params) (pagination.Page[supplierorders.SupplierOrderDTO], error) {
			captured = filter
			return pagination.Page[supplierorders.SupplierOrderDTO]{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/supplier-orders?supplier_id="+supplierID.String()+"&status=sent", nil)
	rec := httptest.NewRecorder()
	SupplierOrderList(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.SupplierID == nil || *captured.SupplierID != supplierID {
		t.Fatalf("expected supplier filter, got %+v", captured)
	}
	if captured.Status == nil || *captured.Status != enums.SupplierOrderStatusSent {
		t.Fatalf("expected sent status filter, got %+v", captured.Status)
	}
}

func TestSupplierOrderListRejectsUnknownStatus(t *testing.T) {
	logg := testLogger()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/supplier-orders?status=teleported", nil)
	rec := httptest.NewRecorder()
	SupplierOrderList(&stubSupplierOrderService{}, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSupplierOrderSendPropagatesStateConflict(t *testing.T) {
	logg := testLogger()
	entryID := uuid.New()
	svc := &stubSupplierOrderService{
		sendFn: func(ctx context.Context, id uuid.UUID) (*supplierorders.SupplierOrderDTO, error) {
			if id != entryID {
				t.Fatalf("unexpected entry %s", id)
			}
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "entry is not pending")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/supplier-orders/"+entryID.String()+"/send", nil)
	req = withRouteParam(req, "supplierOrderId", entryID.String())
	rec := httptest.NewRecorder()
	SupplierOrderSend(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestSupplierOrderCheckStatusReturnsSync(t *testing.T) {
	logg := testLogger()
	entryID := uuid.New()
	svc := &stubSupplierOrderService{
		checkStatusFn: func(ctx context.Context, id uuid.UUID) (*supplierorders.StatusSyncDTO, error) {
			return &supplierorders.StatusSyncDTO{
				ID:           id,
				Status:       enums.SupplierOrderStatusConfirmed,
				RemoteStatus: "processing",
				Changed:      true,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/supplier-orders/"+entryID.String()+"/check-status", nil)
	req = withRouteParam(req, "supplierOrderId", entryID.String())
	rec := httptest.NewRecorder()
	SupplierOrderCheckStatus(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"remote_status":"processing"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestSupplierOrderUpdateTrackingPassesInput(t *testing.T) {
	logg := testLogger()
	entryID := uuid.New()
	var captured supplierorders.UpdateTrackingDTO
	svc := &stubSupplierOrderService{
		updateTrackingFn: func(ctx context.Context, id uuid.UUID, input supplierorders.UpdateTrackingDTO) (*supplierorders.SupplierOrderDTO, error) {
			captured = input
			return &supplierorders.SupplierOrderDTO{ID: id}, nil
		},
	}

	body := `{"tracking_number":"DPD0099","tracking_url":"https://tracking.dpd.de/DPD0099"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/v1/supplier-orders/"+entryID.String()+"/tracking", strings.NewReader(body))
	req = withRouteParam(req, "supplierOrderId", entryID.String())
	rec := httptest.NewRecorder()
	SupplierOrderUpdateTracking(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.TrackingNumber == nil || *captured.TrackingNumber != "DPD0099" {
		t.Fatalf("unexpected tracking %+v", captured)
	}
}
