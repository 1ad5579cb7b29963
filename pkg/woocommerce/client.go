package woocommerce

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
)

const (
	apiBasePath                = "/wp-json/wc/v3"
	defaultTimeout             = 10 * time.Second
	responseBodyReadLimit      = 1024
	createOrderStatus          = "processing"
	metaKeyDropshipOrder       = "_dropship_order"
	metaKeySource              = "_source"
	metaValueDropshipOrder     = "yes"
	metaValueSource            = "omexplus"
	metaKeyTracking            = "_tracking_number"
	metaKeyTrackingAlternative = "tracking_number"
)

var (
	errBaseURLRequired     = errors.New("woocommerce store url is required")
	errCredentialsRequired = errors.New("woocommerce consumer key and secret are required")
)

// Client talks to one supplier's WooCommerce REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authHeader string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds a client for the given store with Basic auth credentials.
func NewClient(baseURL, consumerKey, consumerSecret string, opts ...Option) (*Client, error) {
	trimmedURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmedURL == "" {
		return nil, errBaseURLRequired
	}
	key := strings.TrimSpace(consumerKey)
	secret := strings.TrimSpace(consumerSecret)
	if key == "" || secret == "" {
		return nil, errCredentialsRequired
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(key + ":" + secret))
	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    trimmedURL,
		authHeader: "Basic " + credentials,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return client, nil
}

// Address is the billing/shipping block sent with an order.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// OrderLine is one line of an order to forward. When RemoteProductID is zero
// the line is sent as free text so the supplier still sees the request.
type OrderLine struct {
	RemoteProductID int64
	Name            string
	SKU             string
	Quantity        int
	UnitPriceCents  int
}

// CreateOrderRequest carries everything needed to place a remote order.
type CreateOrderRequest struct {
	Address   Address
	Lines     []OrderLine
	Reference string
}

// CreatedOrder is the remote identity of a successfully placed order.
type CreatedOrder struct {
	ID     int64
	Number string
	Status string
}

// RemoteOrder is the polled state of a previously placed order.
type RemoteOrder struct {
	ID             int64
	Status         string
	TrackingNumber string
}

type metaEntry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type lineItemPayload struct {
	ProductID int64  `json:"product_id,omitempty"`
	Name      string `json:"name,omitempty"`
	SKU       string `json:"sku,omitempty"`
	Quantity  int    `json:"quantity"`
	Total     string `json:"total,omitempty"`
}

// RemoteProduct is one catalog entry from the supplier's store.
type RemoteProduct struct {
	ID            int64
	SKU           string
	PriceCents    int
	StockQuantity int
}

// GetProductBySKU fetches the remote catalog entry for the SKU. The second
// return value is false when the store has no product with that SKU.
func (c *Client) GetProductBySKU(ctx context.Context, sku string) (*RemoteProduct, bool, error) {
	if c == nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeDependency, "woocommerce client not configured")
	}
	trimmed := strings.TrimSpace(sku)
	if trimmed == "" {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}

	endpoint := fmt.Sprintf("%s%s/products?sku=%s", c.baseURL, apiBasePath, url.QueryEscape(trimmed))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build product lookup request")
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, false, wrapTransportError(err, "product lookup")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, false, statusError(resp, "product lookup")
	}

	var products []struct {
		ID            int64  `json:"id"`
		SKU           string `json:"sku"`
		Price         string `json:"price"`
		StockQuantity *int   `json:"stock_quantity"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode product lookup response")
	}
	if len(products) == 0 {
		return nil, false, nil
	}

	remote := &RemoteProduct{
		ID:         products[0].ID,
		SKU:        products[0].SKU,
		PriceCents: priceToCents(products[0].Price),
	}
	if products[0].StockQuantity != nil {
		remote.StockQuantity = *products[0].StockQuantity
	}
	return remote, true, nil
}

// LookupProductID resolves a supplier SKU to the remote product id. The
// second return value is false when the store has no product with that SKU.
func (c *Client) LookupProductID(ctx context.Context, sku string) (int64, bool, error) {
	remote, found, err := c.GetProductBySKU(ctx, sku)
	if err != nil || !found {
		return 0, found, err
	}
	return remote.ID, true, nil
}

// CreateOrder places the order on the supplier's store. Lines without a
// resolved remote product are sent as free-text lines carrying SKU and price.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreatedOrder, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "woocommerce client not configured")
	}
	if len(req.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order line is required")
	}

	lineItems := make([]lineItemPayload, 0, len(req.Lines))
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		if line.RemoteProductID > 0 {
			lineItems = append(lineItems, lineItemPayload{
				ProductID: line.RemoteProductID,
				Quantity:  line.Quantity,
			})
			continue
		}
		name := line.Name
		if line.SKU != "" {
			name = fmt.Sprintf("%s (SKU: %s)", line.Name, line.SKU)
		}
		lineItems = append(lineItems, lineItemPayload{
			Name:     name,
			SKU:      line.SKU,
			Quantity: line.Quantity,
			Total:    centsToPrice(line.UnitPriceCents * line.Quantity),
		})
	}

	meta := []metaEntry{
		{Key: metaKeyDropshipOrder, Value: json.RawMessage(strconv.Quote(metaValueDropshipOrder))},
		{Key: metaKeySource, Value: json.RawMessage(strconv.Quote(metaValueSource))},
	}
	if ref := strings.TrimSpace(req.Reference); ref != "" {
		meta = append(meta, metaEntry{Key: "_source_order", Value: json.RawMessage(strconv.Quote(ref))})
	}

	body := map[string]any{
		"status":     createOrderStatus,
		"set_paid":   false,
		"billing":    req.Address,
		"shipping":   req.Address,
		"line_items": lineItems,
		"meta_data":  meta,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal create order request")
	}

	endpoint := fmt.Sprintf("%s%s/orders", c.baseURL, apiBasePath)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build create order request")
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransportError(err, "create order")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "create order")
	}

	var created struct {
		ID     int64  `json:"id"`
		Number string `json:"number"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode create order response")
	}
	if created.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "create order response missing order id")
	}

	return &CreatedOrder{
		ID:     created.ID,
		Number: created.Number,
		Status: created.Status,
	}, nil
}

// GetOrder fetches the remote order status plus tracking metadata if the
// store's shipment plugin exposes it.
func (c *Client) GetOrder(ctx context.Context, remoteID string) (*RemoteOrder, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "woocommerce client not configured")
	}
	trimmed := strings.TrimSpace(remoteID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remote order id is required")
	}

	endpoint := fmt.Sprintf("%s%s/orders/%s", c.baseURL, apiBasePath, url.PathEscape(trimmed))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build order fetch request")
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransportError(err, "order fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "remote order not found")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "order fetch")
	}

	var remote struct {
		ID       int64       `json:"id"`
		Status   string      `json:"status"`
		MetaData []metaEntry `json:"meta_data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order fetch response")
	}

	return &RemoteOrder{
		ID:             remote.ID,
		Status:         strings.ToLower(strings.TrimSpace(remote.Status)),
		TrackingNumber: extractTracking(remote.MetaData),
	}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func extractTracking(meta []metaEntry) string {
	for _, key := range []string{metaKeyTracking, metaKeyTrackingAlternative} {
		for _, entry := range meta {
			if entry.Key != key {
				continue
			}
			var value string
			if err := json.Unmarshal(entry.Value, &value); err != nil {
				continue
			}
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func centsToPrice(cents int) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// priceToCents parses WooCommerce's decimal price strings. Malformed input
// yields zero; sync marks the row instead of failing the whole run.
func priceToCents(price string) int {
	trimmed := strings.TrimSpace(price)
	if trimmed == "" {
		return 0
	}
	whole, frac, _ := strings.Cut(trimmed, ".")
	cents := 0
	if whole != "" {
		n, err := strconv.Atoi(whole)
		if err != nil {
			return 0
		}
		cents = n * 100
	}
	if frac != "" {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		n, err := strconv.Atoi(frac)
		if err != nil {
			return 0
		}
		cents += n
	}
	return cents
}

func wrapTransportError(err error, operation string) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, fmt.Sprintf("%s timed out", operation))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s request", operation))
}

func statusError(resp *http.Response, operation string) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	return pkgerrors.Wrap(
		pkgerrors.CodeDependency,
		fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
		fmt.Sprintf("%s request failed", operation),
	)
}
