package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/omexplus/dropship-backend/api/responses"
	"github.com/omexplus/dropship-backend/api/validators"
	"github.com/omexplus/dropship-backend/internal/orders"
	"github.com/omexplus/dropship-backend/internal/relay"
	"github.com/omexplus/dropship-backend/internal/supplierorders"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
	"github.com/omexplus/dropship-backend/pkg/logger"
	"github.com/omexplus/dropship-backend/pkg/types"
)

// RelayService triggers a relay pass over one placed order.
type RelayService interface {
	ProcessOrder(ctx context.Context, orderID uuid.UUID) (*relay.Result, error)
}

type orderItemRequest struct {
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	Title          string     `json:"title" validate:"required,min=1,max=250"`
	SKU            *string    `json:"sku,omitempty"`
	Quantity       int        `json:"quantity" validate:"required,min=1"`
	UnitPriceCents int        `json:"unit_price_cents" validate:"min=0"`
}

type orderCreateRequest struct {
	Email           *string                `json:"email,omitempty" validate:"omitempty,email"`
	ShippingAddress *types.ShippingAddress `json:"shipping_address,omitempty"`
	Items           []orderItemRequest     `json:"items" validate:"required,min=1,dive"`
}

func (r orderCreateRequest) toInput() orders.CreateOrderDTO {
	items := make([]orders.CreateOrderItemDTO, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, orders.CreateOrderItemDTO{
			ProductID:      item.ProductID,
			Title:          strings.TrimSpace(item.Title),
			SKU:            item.SKU,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return orders.CreateOrderDTO{
		Email:           r.Email,
		ShippingAddress: r.ShippingAddress,
		Items:           items,
	}
}

// OrderCreate places a storefront order and emits the placed event that the
// relay worker picks up.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload orderCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderList returns orders, newest first.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// OrderDetail returns one order with its line items.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "orderId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// OrderSupplierOrders returns the ledger entries booked for one order.
func OrderSupplierOrders(svc supplierorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier order service unavailable"))
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "orderId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		entries, err := svc.ListByOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entries)
	}
}

// OrderRelay runs the relay pass for one order on demand. Existing ledger
// entries are skipped, so re-running is safe.
func OrderRelay(svc RelayService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "relay service unavailable"))
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "orderId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		result, err := svc.ProcessOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
