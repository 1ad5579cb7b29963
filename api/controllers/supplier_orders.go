package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/omexplus/dropship-backend/api/responses"
	"github.com/omexplus/dropship-backend/api/validators"
	"github.com/omexplus/dropship-backend/internal/supplierorders"
	"github.com/omexplus/dropship-backend/pkg/enums"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
	"github.com/omexplus/dropship-backend/pkg/logger"
	"github.com/omexplus/dropship-backend/pkg/types"
)

type supplierOrderItemRequest struct {
	SKU            string `json:"sku" validate:"required,min=1,max=120"`
	Quantity       int    `json:"quantity" validate:"required,min=1"`
	Name           string `json:"name,omitempty"`
	UnitPriceCents int    `json:"unit_price_cents" validate:"min=0"`
}

type supplierOrderCreateRequest struct {
	SupplierID         uuid.UUID                  `json:"supplier_id" validate:"required"`
	OrderID            uuid.UUID                  `json:"order_id" validate:"required"`
	SupplierTotalCents int                        `json:"supplier_total_cents" validate:"min=0"`
	MarginCents        int                        `json:"margin_cents"`
	Items              []supplierOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (r supplierOrderCreateRequest) toInput() supplierorders.CreateSupplierOrderDTO {
	items := make([]types.SnapshotItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, types.SnapshotItem{
			SKU:            strings.TrimSpace(item.SKU),
			Quantity:       item.Quantity,
			Name:           strings.TrimSpace(item.Name),
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return supplierorders.CreateSupplierOrderDTO{
		SupplierID:         r.SupplierID,
		OrderID:            r.OrderID,
		SupplierTotalCents: r.SupplierTotalCents,
		MarginCents:        r.MarginCents,
		Items:              items,
	}
}

// SupplierOrderCreate books a ledger entry by hand, outside the relay. Used
// for orders placed before a product was routed to its supplier.
func SupplierOrderCreate(svc supplierorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier order service unavailable"))
			return
		}

		var payload supplierOrderCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// SupplierOrderList returns ledger entries matching the optional filters.
func SupplierOrderList(svc supplierorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier order service unavailable"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplierID, err := validators.ParseQueryUUID(r, "supplier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseQueryUUID(r, "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := supplierorders.ListFilter{
			SupplierID: supplierID,
			OrderID:    orderID,
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseSupplierOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filter.Status = &status
		}

		result, err := svc.List(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// SupplierOrderDetail returns one ledger entry by ID.
func SupplierOrderDetail(svc supplierorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier order service unavailable"))
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "supplierOrderId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier order id"))
			return
		}

		entry, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entry)
	}
}

// SupplierOrderSend forwards a pending ledger entry to its supplier's store.
func SupplierOrderSend(svc supplierorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier order service unavailable"))
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "supplierOrderId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier order id"))
			return
		}

		entry, err := svc.Send(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entry)
	}
}

// SupplierOrderCheckStatus polls the supplier's store for the remote order
// state and applies any forward status transition.
func SupplierOrderCheckStatus(svc supplierorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier order service unavailable"))
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "supplierOrderId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier order id"))
			return
		}

		sync, err := svc.CheckStatus(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sync)
	}
}

// SupplierOrderCancel cancels an entry that has not shipped yet.
func SupplierOrderCancel(svc supplierorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier order service unavailable"))
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "supplierOrderId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier order id"))
			return
		}

		entry, err := svc.Cancel(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entry)
	}
}

type supplierOrderTrackingRequest struct {
	TrackingNumber *string `json:"tracking_number,omitempty" validate:"omitempty,max=120"`
	TrackingURL    *string `json:"tracking_url,omitempty" validate:"omitempty,url"`
}

// SupplierOrderUpdateTracking records a manual tracking correction.
func SupplierOrderUpdateTracking(svc supplierorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier order service unavailable"))
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "supplierOrderId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier order id"))
			return
		}

		var payload supplierOrderTrackingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.UpdateTracking(r.Context(), id, supplierorders.UpdateTrackingDTO{
			TrackingNumber: payload.TrackingNumber,
			TrackingURL:    payload.TrackingURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entry)
	}
}
