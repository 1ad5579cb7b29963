package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omexplus/dropship-backend/pkg/enums"
)

// Supplier is a registered external seller of dropship goods.
type Supplier struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"column:name;not null"`
	Code string    `gorm:"column:code;not null;uniqueIndex:ux_suppliers_code"`

	ContactName  *string `gorm:"column:contact_name"`
	ContactEmail *string `gorm:"column:contact_email"`
	ContactPhone *string `gorm:"column:contact_phone"`
	AddressLine1 *string `gorm:"column:address_line_1"`
	AddressLine2 *string `gorm:"column:address_line_2"`
	City         *string `gorm:"column:city"`
	PostalCode   *string `gorm:"column:postal_code"`
	CountryCode  *string `gorm:"column:country_code"`

	// Integration. Key and secret are separate columns; the legacy
	// colon-joined form is split once at the API boundary.
	APIURL        *string             `gorm:"column:api_url"`
	APIKey        *string             `gorm:"column:api_key"`
	APISecret     *string             `gorm:"column:api_secret"`
	SyncEnabled   bool                `gorm:"column:sync_enabled;not null;default:false"`
	SyncFrequency enums.SyncFrequency `gorm:"column:sync_frequency;type:sync_frequency;not null;default:'manual'"`
	LastSyncAt    *time.Time          `gorm:"column:last_sync_at"`

	CommissionRate     decimal.Decimal `gorm:"column:commission_rate;type:numeric(5,2);not null;default:0"`
	MinOrderValueCents int             `gorm:"column:min_order_value_cents;not null;default:0"`
	LeadTimeDays       int             `gorm:"column:lead_time_days;not null;default:3"`

	IsActive   bool    `gorm:"column:is_active;not null;default:true"`
	IsDropship bool    `gorm:"column:is_dropship;not null;default:true"`
	Notes      *string `gorm:"column:notes"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// HasCredentials reports whether both halves of the API credential pair are present.
func (s Supplier) HasCredentials() bool {
	return s.APIKey != nil && *s.APIKey != "" && s.APISecret != nil && *s.APISecret != ""
}

// HasAPIURL reports whether an external commerce endpoint is configured.
func (s Supplier) HasAPIURL() bool {
	return s.APIURL != nil && *s.APIURL != ""
}
