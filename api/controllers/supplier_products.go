package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omexplus/dropship-backend/api/responses"
	"github.com/omexplus/dropship-backend/api/validators"
	"github.com/omexplus/dropship-backend/internal/catalog"
	"github.com/omexplus/dropship-backend/pkg/enums"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
	"github.com/omexplus/dropship-backend/pkg/logger"
)

type supplierProductLinkRequest struct {
	ProductID          uuid.UUID        `json:"product_id" validate:"required"`
	SupplierSKU        string           `json:"supplier_sku" validate:"required,min=1,max=120"`
	SupplierPriceCents int              `json:"supplier_price_cents" validate:"min=0"`
	SupplierCurrency   *string          `json:"supplier_currency,omitempty"`
	SupplierStock      *int             `json:"supplier_stock,omitempty" validate:"omitempty,min=0"`
	MarkupType         *string          `json:"markup_type,omitempty"`
	MarkupValue        *decimal.Decimal `json:"markup_value,omitempty"`
	IsActive           *bool            `json:"is_active,omitempty"`
}

func (r supplierProductLinkRequest) toInput(supplierID uuid.UUID) (catalog.LinkProductDTO, error) {
	input := catalog.LinkProductDTO{
		SupplierID:         supplierID,
		ProductID:          r.ProductID,
		SupplierSKU:        strings.TrimSpace(r.SupplierSKU),
		SupplierPriceCents: r.SupplierPriceCents,
		SupplierStock:      r.SupplierStock,
		MarkupValue:        r.MarkupValue,
		IsActive:           r.IsActive,
	}

	if r.SupplierCurrency != nil {
		currency, err := enums.ParseCurrency(*r.SupplierCurrency)
		if err != nil {
			return catalog.LinkProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
		}
		input.SupplierCurrency = &currency
	}
	if r.MarkupType != nil {
		markup, err := enums.ParseMarkupType(*r.MarkupType)
		if err != nil {
			return catalog.LinkProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid markup type")
		}
		input.MarkupType = &markup
	}

	return input, nil
}

// SupplierProductLink attaches a catalog product to a supplier under the
// supplier's own SKU and pricing.
func SupplierProductLink(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		supplierID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "supplierId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id"))
			return
		}

		var payload supplierProductLinkRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		link, err := svc.Link(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, link)
	}
}

// SupplierProductList returns the supplier's linked products.
func SupplierProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		supplierID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "supplierId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListBySupplier(r.Context(), supplierID, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ProductSupplierList returns every supplier link for one product, cheapest
// purchase price first, so operators can compare sources for a multi-sourced
// product.
func ProductSupplierList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "productId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		links, err := svc.ListForProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, links)
	}
}

type supplierProductUpdateRequest struct {
	SupplierSKU        *string          `json:"supplier_sku,omitempty" validate:"omitempty,min=1,max=120"`
	SupplierPriceCents *int             `json:"supplier_price_cents,omitempty" validate:"omitempty,min=0"`
	SupplierCurrency   *string          `json:"supplier_currency,omitempty"`
	SupplierStock      *int             `json:"supplier_stock,omitempty" validate:"omitempty,min=0"`
	MarkupType         *string          `json:"markup_type,omitempty"`
	MarkupValue        *decimal.Decimal `json:"markup_value,omitempty"`
	IsActive           *bool            `json:"is_active,omitempty"`
}

func (r supplierProductUpdateRequest) toInput() (catalog.UpdateLinkDTO, error) {
	input := catalog.UpdateLinkDTO{
		SupplierSKU:        r.SupplierSKU,
		SupplierPriceCents: r.SupplierPriceCents,
		SupplierStock:      r.SupplierStock,
		MarkupValue:        r.MarkupValue,
		IsActive:           r.IsActive,
	}

	if r.SupplierCurrency != nil {
		currency, err := enums.ParseCurrency(*r.SupplierCurrency)
		if err != nil {
			return catalog.UpdateLinkDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
		}
		input.SupplierCurrency = &currency
	}
	if r.MarkupType != nil {
		markup, err := enums.ParseMarkupType(*r.MarkupType)
		if err != nil {
			return catalog.UpdateLinkDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid markup type")
		}
		input.MarkupType = &markup
	}

	return input, nil
}

// SupplierProductUpdate adjusts the mutable fields of one link.
func SupplierProductUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		linkID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "linkId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid link id"))
			return
		}

		var payload supplierProductUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		link, err := svc.UpdateLink(r.Context(), linkID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, link)
	}
}

// SupplierProductDetail returns one link by ID.
func SupplierProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		linkID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "linkId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid link id"))
			return
		}

		link, err := svc.GetLink(r.Context(), linkID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, link)
	}
}

// SupplierProductUnlink removes the supplier link and clears product routing
// when this supplier owned it.
func SupplierProductUnlink(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		linkID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "linkId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid link id"))
			return
		}

		if err := svc.Unlink(r.Context(), linkID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}
