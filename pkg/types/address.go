package types

// ShippingAddress is the recipient snapshot forwarded to a supplier. Stored as
// jsonb on orders and mirrored verbatim into supplier order payloads.
type ShippingAddress struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Line1       string `json:"address_1,omitempty"`
	Line2       string `json:"address_2,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Phone       string `json:"phone,omitempty"`
}
