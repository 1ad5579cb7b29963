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
	"github.com/omexplus/dropship-backend/internal/suppliers"
	"github.com/omexplus/dropship-backend/pkg/enums"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
	"github.com/omexplus/dropship-backend/pkg/logger"
)

type supplierCreateRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=160"`
	Code         string  `json:"code" validate:"required,min=2,max=32"`
	ContactName  *string `json:"contact_name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	AddressLine1 *string `json:"address_line_1,omitempty"`
	AddressLine2 *string `json:"address_line_2,omitempty"`
	City         *string `json:"city,omitempty"`
	PostalCode   *string `json:"postal_code,omitempty"`
	CountryCode  *string `json:"country_code,omitempty" validate:"omitempty,len=2"`

	APIURL    *string `json:"api_url,omitempty" validate:"omitempty,url"`
	APIKey    *string `json:"api_key,omitempty"`
	APISecret *string `json:"api_secret,omitempty"`
	// APICredentials is the historical "key:secret" combined form. Accepted
	// only when api_key/api_secret are absent.
	APICredentials *string `json:"api_credentials,omitempty"`

	SyncEnabled        *bool            `json:"sync_enabled,omitempty"`
	SyncFrequency      *string          `json:"sync_frequency,omitempty"`
	CommissionRate     *decimal.Decimal `json:"commission_rate,omitempty"`
	MinOrderValueCents *int             `json:"min_order_value_cents,omitempty" validate:"omitempty,min=0"`
	LeadTimeDays       *int             `json:"lead_time_days,omitempty" validate:"omitempty,min=0,max=365"`
	IsActive           *bool            `json:"is_active,omitempty"`
	IsDropship         *bool            `json:"is_dropship,omitempty"`
	Notes              *string          `json:"notes,omitempty"`
}

func (r supplierCreateRequest) toInput() (suppliers.CreateSupplierDTO, error) {
	input := suppliers.CreateSupplierDTO{
		Name:               r.Name,
		Code:               r.Code,
		ContactName:        r.ContactName,
		ContactEmail:       r.ContactEmail,
		ContactPhone:       r.ContactPhone,
		AddressLine1:       r.AddressLine1,
		AddressLine2:       r.AddressLine2,
		City:               r.City,
		PostalCode:         r.PostalCode,
		CountryCode:        r.CountryCode,
		APIURL:             r.APIURL,
		APIKey:             r.APIKey,
		APISecret:          r.APISecret,
		SyncEnabled:        r.SyncEnabled,
		CommissionRate:     r.CommissionRate,
		MinOrderValueCents: r.MinOrderValueCents,
		LeadTimeDays:       r.LeadTimeDays,
		IsActive:           r.IsActive,
		IsDropship:         r.IsDropship,
		Notes:              r.Notes,
	}

	if r.APICredentials != nil {
		if r.APIKey != nil || r.APISecret != nil {
			return suppliers.CreateSupplierDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "api_credentials cannot be combined with api_key/api_secret")
		}
		key, secret, ok := suppliers.SplitLegacyCredential(*r.APICredentials)
		if !ok {
			return suppliers.CreateSupplierDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "api_credentials must be in key:secret form")
		}
		input.APIKey = &key
		input.APISecret = &secret
	}

	if r.SyncFrequency != nil {
		frequency, err := enums.ParseSyncFrequency(*r.SyncFrequency)
		if err != nil {
			return suppliers.CreateSupplierDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sync frequency")
		}
		input.SyncFrequency = &frequency
	}

	return input, nil
}

// SupplierCreate registers a new supplier.
func SupplierCreate(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier service unavailable"))
			return
		}

		var payload supplierCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplier, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, supplier)
	}
}

// SupplierList returns suppliers matching the optional query filters.
func SupplierList(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier service unavailable"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		active, err := validators.ParseQueryBool(r, "active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dropship, err := validators.ParseQueryBool(r, "dropship")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		syncEnabled, err := validators.ParseQueryBool(r, "sync_enabled")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := suppliers.ListFilter{
			ActiveOnly:   active != nil && *active,
			DropshipOnly: dropship != nil && *dropship,
			SyncEnabled:  syncEnabled,
			Country:      validators.SanitizeString(r.URL.Query().Get("country"), 2),
			Search:       validators.SanitizeString(r.URL.Query().Get("search"), 120),
		}

		result, err := svc.List(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// SupplierDetail returns one supplier by ID.
func SupplierDetail(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier service unavailable"))
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "supplierId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id"))
			return
		}

		supplier, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, supplier)
	}
}

type supplierUpdateRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=2,max=160"`
	ContactName  *string `json:"contact_name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	AddressLine1 *string `json:"address_line_1,omitempty"`
	AddressLine2 *string `json:"address_line_2,omitempty"`
	City         *string `json:"city,omitempty"`
	PostalCode   *string `json:"postal_code,omitempty"`
	CountryCode  *string `json:"country_code,omitempty" validate:"omitempty,len=2"`

	APIURL         *string `json:"api_url,omitempty" validate:"omitempty,url"`
	APIKey         *string `json:"api_key,omitempty"`
	APISecret      *string `json:"api_secret,omitempty"`
	APICredentials *string `json:"api_credentials,omitempty"`

	SyncEnabled        *bool            `json:"sync_enabled,omitempty"`
	SyncFrequency      *string          `json:"sync_frequency,omitempty"`
	CommissionRate     *decimal.Decimal `json:"commission_rate,omitempty"`
	MinOrderValueCents *int             `json:"min_order_value_cents,omitempty" validate:"omitempty,min=0"`
	LeadTimeDays       *int             `json:"lead_time_days,omitempty" validate:"omitempty,min=0,max=365"`
	IsActive           *bool            `json:"is_active,omitempty"`
	IsDropship         *bool            `json:"is_dropship,omitempty"`
	Notes              *string          `json:"notes,omitempty"`
}

func (r supplierUpdateRequest) toInput() (suppliers.UpdateSupplierDTO, error) {
	input := suppliers.UpdateSupplierDTO{
		Name:               r.Name,
		ContactName:        r.ContactName,
		ContactEmail:       r.ContactEmail,
		ContactPhone:       r.ContactPhone,
		AddressLine1:       r.AddressLine1,
		AddressLine2:       r.AddressLine2,
		City:               r.City,
		PostalCode:         r.PostalCode,
		CountryCode:        r.CountryCode,
		APIURL:             r.APIURL,
		APIKey:             r.APIKey,
		APISecret:          r.APISecret,
		SyncEnabled:        r.SyncEnabled,
		CommissionRate:     r.CommissionRate,
		MinOrderValueCents: r.MinOrderValueCents,
		LeadTimeDays:       r.LeadTimeDays,
		IsActive:           r.IsActive,
		IsDropship:         r.IsDropship,
		Notes:              r.Notes,
	}

	if r.APICredentials != nil {
		if r.APIKey != nil || r.APISecret != nil {
			return suppliers.UpdateSupplierDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "api_credentials cannot be combined with api_key/api_secret")
		}
		key, secret, ok := suppliers.SplitLegacyCredential(*r.APICredentials)
		if !ok {
			return suppliers.UpdateSupplierDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "api_credentials must be in key:secret form")
		}
		input.APIKey = &key
		input.APISecret = &secret
	}

	if r.SyncFrequency != nil {
		frequency, err := enums.ParseSyncFrequency(*r.SyncFrequency)
		if err != nil {
			return suppliers.UpdateSupplierDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sync frequency")
		}
		input.SyncFrequency = &frequency
	}

	return input, nil
}

// SupplierUpdate adjusts the mutable supplier fields. Nil fields stay as-is.
func SupplierUpdate(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier service unavailable"))
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "supplierId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id"))
			return
		}

		var payload supplierUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplier, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, supplier)
	}
}

// SupplierDelete deactivates a supplier. Suppliers with open ledger entries
// are rejected by the service.
func SupplierDelete(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier service unavailable"))
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "supplierId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id"))
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

// SupplierCatalogSync pulls price and stock for every linked product from the
// supplier's store and reports the outcome counts.
func SupplierCatalogSync(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "supplierId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id"))
			return
		}

		result, err := svc.SyncSupplierCatalog(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
