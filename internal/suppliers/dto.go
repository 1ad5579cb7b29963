package suppliers

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omexplus/dropship-backend/pkg/db/models"
	"github.com/omexplus/dropship-backend/pkg/enums"
)

// SupplierDTO exposes supplier data in API responses. Credentials are
// reported as a presence flag, never echoed back.
type SupplierDTO struct {
	ID                 uuid.UUID           `json:"id"`
	Name               string              `json:"name"`
	Code               string              `json:"code"`
	ContactName        *string             `json:"contact_name,omitempty"`
	ContactEmail       *string             `json:"contact_email,omitempty"`
	ContactPhone       *string             `json:"contact_phone,omitempty"`
	AddressLine1       *string             `json:"address_line_1,omitempty"`
	AddressLine2       *string             `json:"address_line_2,omitempty"`
	City               *string             `json:"city,omitempty"`
	PostalCode         *string             `json:"postal_code,omitempty"`
	CountryCode        *string             `json:"country_code,omitempty"`
	APIURL             *string             `json:"api_url,omitempty"`
	HasCredentials     bool                `json:"has_credentials"`
	SyncEnabled        bool                `json:"sync_enabled"`
	SyncFrequency      enums.SyncFrequency `json:"sync_frequency"`
	LastSyncAt         *time.Time          `json:"last_sync_at,omitempty"`
	CommissionRate     decimal.Decimal     `json:"commission_rate"`
	MinOrderValueCents int                 `json:"min_order_value_cents"`
	LeadTimeDays       int                 `json:"lead_time_days"`
	IsActive           bool                `json:"is_active"`
	IsDropship         bool                `json:"is_dropship"`
	Notes              *string             `json:"notes,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// CreateSupplierDTO holds creation-time data for a new supplier.
type CreateSupplierDTO struct {
	Name               string
	Code               string
	ContactName        *string
	ContactEmail       *string
	ContactPhone       *string
	AddressLine1       *string
	AddressLine2       *string
	City               *string
	PostalCode         *string
	CountryCode        *string
	APIURL             *string
	APIKey             *string
	APISecret          *string
	SyncEnabled        *bool
	SyncFrequency      *enums.SyncFrequency
	CommissionRate     *decimal.Decimal
	MinOrderValueCents *int
	LeadTimeDays       *int
	IsActive           *bool
	IsDropship         *bool
	Notes              *string
}

// UpdateSupplierDTO captures the allowed supplier fields for mutation.
// Nil fields are left untouched.
type UpdateSupplierDTO struct {
	Name               *string
	ContactName        *string
	ContactEmail       *string
	ContactPhone       *string
	AddressLine1       *string
	AddressLine2       *string
	City               *string
	PostalCode         *string
	CountryCode        *string
	APIURL             *string
	APIKey             *string
	APISecret          *string
	SyncEnabled        *bool
	SyncFrequency      *enums.SyncFrequency
	CommissionRate     *decimal.Decimal
	MinOrderValueCents *int
	LeadTimeDays       *int
	IsActive           *bool
	IsDropship         *bool
	Notes              *string
}

// ListFilter narrows supplier listing.
type ListFilter struct {
	ActiveOnly   bool
	DropshipOnly bool
	SyncEnabled  *bool
	Country      string
	Search       string
}

// FromModel maps the persisted supplier into a DTO.
func FromModel(m *models.Supplier) *SupplierDTO {
	if m == nil {
		return nil
	}
	return &SupplierDTO{
		ID:                 m.ID,
		Name:               m.Name,
		Code:               m.Code,
		ContactName:        m.ContactName,
		ContactEmail:       m.ContactEmail,
		ContactPhone:       m.ContactPhone,
		AddressLine1:       m.AddressLine1,
		AddressLine2:       m.AddressLine2,
		City:               m.City,
		PostalCode:         m.PostalCode,
		CountryCode:        m.CountryCode,
		APIURL:             m.APIURL,
		HasCredentials:     m.HasCredentials(),
		SyncEnabled:        m.SyncEnabled,
		SyncFrequency:      m.SyncFrequency,
		LastSyncAt:         m.LastSyncAt,
		CommissionRate:     m.CommissionRate,
		MinOrderValueCents: m.MinOrderValueCents,
		LeadTimeDays:       m.LeadTimeDays,
		IsActive:           m.IsActive,
		IsDropship:         m.IsDropship,
		Notes:              m.Notes,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from creation DTO, supplying defaults.
func (c CreateSupplierDTO) ToModel() *models.Supplier {
	model := &models.Supplier{
		Name:          strings.TrimSpace(c.Name),
		Code:          NormalizeCode(c.Code),
		ContactName:   c.ContactName,
		ContactEmail:  c.ContactEmail,
		ContactPhone:  c.ContactPhone,
		AddressLine1:  c.AddressLine1,
		AddressLine2:  c.AddressLine2,
		City:          c.City,
		PostalCode:    c.PostalCode,
		CountryCode:   c.CountryCode,
		APIURL:        c.APIURL,
		APIKey:        c.APIKey,
		APISecret:     c.APISecret,
		SyncFrequency: enums.SyncFrequencyManual,
		LeadTimeDays:  3,
		IsActive:      true,
		IsDropship:    true,
		Notes:         c.Notes,
	}

	if c.SyncEnabled != nil {
		model.SyncEnabled = *c.SyncEnabled
	}
	if c.SyncFrequency != nil {
		model.SyncFrequency = *c.SyncFrequency
	}
	if c.CommissionRate != nil {
		model.CommissionRate = *c.CommissionRate
	}
	if c.MinOrderValueCents != nil {
		model.MinOrderValueCents = *c.MinOrderValueCents
	}
	if c.LeadTimeDays != nil {
		model.LeadTimeDays = *c.LeadTimeDays
	}
	if c.IsActive != nil {
		model.IsActive = *c.IsActive
	}
	if c.IsDropship != nil {
		model.IsDropship = *c.IsDropship
	}

	return model
}

// NormalizeCode canonicalizes a supplier code to its stored uppercase form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// SplitLegacyCredential splits the historical "key:secret" combined form.
// New payloads carry the two halves separately; the combined form is only
// accepted for backward compatibility and split exactly once, here.
func SplitLegacyCredential(combined string) (key, secret string, ok bool) {
	idx := strings.Index(combined, ":")
	if idx <= 0 || idx == len(combined)-1 {
		return "", "", false
	}
	return combined[:idx], combined[idx+1:], true
}
