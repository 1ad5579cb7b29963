package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	dbpkg "github.com/omexplus/dropship-backend/pkg/db"
	"github.com/omexplus/dropship-backend/pkg/db/models"
	"github.com/omexplus/dropship-backend/pkg/enums"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
	"github.com/omexplus/dropship-backend/pkg/logger"
	"github.com/omexplus/dropship-backend/pkg/outbox"
	"github.com/omexplus/dropship-backend/pkg/outbox/payloads"
	"github.com/omexplus/dropship-backend/pkg/pagination"
	"github.com/omexplus/dropship-backend/pkg/woocommerce"
)

type linkRepository interface {
	CreateLink(ctx context.Context, dto LinkProductDTO) (*models.SupplierProduct, error)
	FindLinkByID(ctx context.Context, id uuid.UUID) (*models.SupplierProduct, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID, page pagination.Params) ([]models.SupplierProduct, int64, error)
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]models.SupplierProduct, error)
	ListActiveBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.SupplierProduct, error)
	UpdateLink(ctx context.Context, link *models.SupplierProduct) error
	UpdateLinkSyncState(ctx context.Context, id uuid.UUID, status enums.SyncStatus, priceCents, stock *int) error
	DeleteLink(ctx context.Context, id uuid.UUID) error
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	StampProductRouting(ctx context.Context, productID uuid.UUID, metadata *models.ProductMetadata) error
	TouchSupplierLastSync(tx *gorm.DB, supplierID uuid.UUID, at time.Time) error
}

type supplierLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
}

type storeClient interface {
	GetProductBySKU(ctx context.Context, sku string) (*woocommerce.RemoteProduct, bool, error)
}

// StoreClientFactory builds a commerce client for one supplier's store.
type StoreClientFactory func(apiURL, consumerKey, consumerSecret string) (storeClient, error)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes product-supplier link operations and catalog sync.
type Service interface {
	Link(ctx context.Context, input LinkProductDTO) (*SupplierProductDTO, error)
	GetLink(ctx context.Context, id uuid.UUID) (*SupplierProductDTO, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID, page pagination.Params) (pagination.Page[SupplierProductDTO], error)
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]SupplierProductDTO, error)
	UpdateLink(ctx context.Context, id uuid.UUID, input UpdateLinkDTO) (*SupplierProductDTO, error)
	Unlink(ctx context.Context, id uuid.UUID) error
	SyncSupplierCatalog(ctx context.Context, supplierID uuid.UUID) (*SyncResult, error)
}

type service struct {
	repo          linkRepository
	suppliers     supplierLoader
	clientFactory StoreClientFactory
	db            txRunner
	events        eventEmitter
	logg          *logger.Logger
}

// ServiceParams bundles the catalog service dependencies.
type ServiceParams struct {
	Repo          linkRepository
	Suppliers     supplierLoader
	ClientFactory StoreClientFactory
	DB            txRunner
	Events        eventEmitter
	Logger        *logger.Logger
}

// NewService builds a catalog service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Suppliers == nil {
		return nil, fmt.Errorf("supplier loader required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	factory := params.ClientFactory
	if factory == nil {
		factory = func(apiURL, key, secret string) (storeClient, error) {
			return woocommerce.NewClient(apiURL, key, secret)
		}
	}
	return &service{
		repo:          params.Repo,
		suppliers:     params.Suppliers,
		clientFactory: factory,
		db:            params.DB,
		events:        params.Events,
		logg:          params.Logger,
	}, nil
}

func (s *service) Link(ctx context.Context, input LinkProductDTO) (*SupplierProductDTO, error) {
	input.SupplierSKU = strings.TrimSpace(input.SupplierSKU)
	if input.SupplierSKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier_sku is required")
	}
	if input.SupplierPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier_price_cents must not be negative")
	}
	if input.MarkupValue != nil && input.MarkupValue.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "markup_value must not be negative")
	}

	supplier, err := s.loadSupplier(ctx, input.SupplierID)
	if err != nil {
		return nil, err
	}
	if !supplier.IsDropship {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier is not a dropship supplier")
	}

	product, err := s.repo.FindProductByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	link, err := s.repo.CreateLink(ctx, input)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_supplier_products_supplier_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "supplier already lists this sku").
				WithDetails(map[string]string{"supplier_sku": input.SupplierSKU})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product link")
	}

	metadata := &models.ProductMetadata{
		SupplierID:  &supplier.ID,
		SupplierSKU: link.SupplierSKU,
	}
	if err := s.repo.StampProductRouting(ctx, product.ID, metadata); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp product routing")
	}

	logCtx := s.logg.WithSupplierID(ctx, supplier.ID.String())
	s.logg.Info(logCtx, "product linked to supplier")
	return FromLinkModel(link), nil
}

func (s *service) GetLink(ctx context.Context, id uuid.UUID) (*SupplierProductDTO, error) {
	link, err := s.findLink(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromLinkModel(link), nil
}

func (s *service) ListBySupplier(ctx context.Context, supplierID uuid.UUID, page pagination.Params) (pagination.Page[SupplierProductDTO], error) {
	if _, err := s.loadSupplier(ctx, supplierID); err != nil {
		return pagination.Page[SupplierProductDTO]{}, err
	}
	page = pagination.Normalize(page)
	rows, total, err := s.repo.ListBySupplier(ctx, supplierID, page)
	if err != nil {
		return pagination.Page[SupplierProductDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier products")
	}
	items := make([]SupplierProductDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromLinkModel(&rows[i]))
	}
	return pagination.NewPage(items, total, page), nil
}

func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID) ([]SupplierProductDTO, error) {
	if _, err := s.repo.FindProductByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	rows, err := s.repo.ListForProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product suppliers")
	}
	items := make([]SupplierProductDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromLinkModel(&rows[i]))
	}
	return items, nil
}

func (s *service) UpdateLink(ctx context.Context, id uuid.UUID, input UpdateLinkDTO) (*SupplierProductDTO, error) {
	link, err := s.findLink(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.SupplierSKU != nil {
		trimmed := strings.TrimSpace(*input.SupplierSKU)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier_sku must not be empty")
		}
		link.SupplierSKU = trimmed
	}
	if input.SupplierPriceCents != nil {
		if *input.SupplierPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier_price_cents must not be negative")
		}
		link.SupplierPriceCents = *input.SupplierPriceCents
	}
	if input.SupplierCurrency != nil {
		link.SupplierCurrency = *input.SupplierCurrency
	}
	if input.SupplierStock != nil {
		link.SupplierStock = *input.SupplierStock
	}
	if input.MarkupType != nil {
		link.MarkupType = *input.MarkupType
	}
	if input.MarkupValue != nil {
		if input.MarkupValue.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "markup_value must not be negative")
		}
		link.MarkupValue = *input.MarkupValue
	}
	if input.IsActive != nil {
		link.IsActive = *input.IsActive
	}

	if _, err := SellingPriceCents(link.SupplierPriceCents, link.MarkupType, link.MarkupValue); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLink(ctx, link); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_supplier_products_supplier_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "supplier already lists this sku")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product link")
	}
	return FromLinkModel(link), nil
}

func (s *service) Unlink(ctx context.Context, id uuid.UUID) error {
	link, err := s.findLink(ctx, id)
	if err != nil {
		return err
	}

	product, err := s.repo.FindProductByID(ctx, link.ProductID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if err := s.repo.DeleteLink(ctx, link.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product link")
	}

	// clear routing only if it still points at this supplier
	if product != nil && product.Metadata != nil &&
		product.Metadata.SupplierID != nil && *product.Metadata.SupplierID == link.SupplierID {
		if err := s.repo.StampProductRouting(ctx, product.ID, nil); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear product routing")
		}
	}
	return nil
}

// SyncSupplierCatalog refreshes price and stock for every active link from
// the supplier's store. Individual SKU failures are collected rather than
// aborting the run.
func (s *service) SyncSupplierCatalog(ctx context.Context, supplierID uuid.UUID) (*SyncResult, error) {
	supplier, err := s.loadSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if !supplier.HasAPIURL() || !supplier.HasCredentials() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier has no API integration configured")
	}

	client, err := s.clientFactory(*supplier.APIURL, *supplier.APIKey, *supplier.APISecret)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build store client")
	}

	links, err := s.repo.ListActiveBySupplier(ctx, supplier.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list links for sync")
	}

	result := &SyncResult{SupplierID: supplier.ID}
	var skuErrs error
	for i := range links {
		link := &links[i]
		result.Checked++

		remote, found, lookupErr := client.GetProductBySKU(ctx, link.SupplierSKU)
		if lookupErr != nil {
			result.Failed++
			skuErrs = multierr.Append(skuErrs, fmt.Errorf("sku %s: %w", link.SupplierSKU, lookupErr))
			if stateErr := s.repo.UpdateLinkSyncState(ctx, link.ID, enums.SyncStatusError, nil, nil); stateErr != nil {
				skuErrs = multierr.Append(skuErrs, fmt.Errorf("sku %s: mark error state: %w", link.SupplierSKU, stateErr))
			}
			continue
		}
		if !found {
			result.Missing++
			if stateErr := s.repo.UpdateLinkSyncState(ctx, link.ID, enums.SyncStatusMissing, nil, nil); stateErr != nil {
				skuErrs = multierr.Append(skuErrs, fmt.Errorf("sku %s: mark missing state: %w", link.SupplierSKU, stateErr))
			}
			continue
		}

		price := remote.PriceCents
		stock := remote.StockQuantity
		if err := s.repo.UpdateLinkSyncState(ctx, link.ID, enums.SyncStatusSynced, &price, &stock); err != nil {
			result.Failed++
			skuErrs = multierr.Append(skuErrs, fmt.Errorf("sku %s: persist sync state: %w", link.SupplierSKU, err))
			continue
		}
		result.Updated++
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		now := time.Now()
		if err := s.repo.TouchSupplierLastSync(tx, supplier.ID, now); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSupplierCatalogSynced,
			AggregateType: enums.AggregateSupplier,
			AggregateID:   supplier.ID,
			Version:       1,
			Data: payloads.SupplierCatalogSyncedEvent{
				SupplierID:  supplier.ID,
				Linked:      result.Checked,
				Updated:     result.Updated,
				Failed:      result.Failed + result.Missing,
				CompletedAt: now,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sync run")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"supplier_id": supplier.ID.String(),
		"checked":     result.Checked,
		"updated":     result.Updated,
		"missing":     result.Missing,
		"failed":      result.Failed,
	})
	if skuErrs != nil {
		s.logg.Warn(logCtx, fmt.Sprintf("catalog sync finished with errors: %v", skuErrs))
	} else {
		s.logg.Info(logCtx, "catalog sync finished")
	}
	return result, nil
}

func (s *service) findLink(ctx context.Context, id uuid.UUID) (*models.SupplierProduct, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "link id is required")
	}
	link, err := s.repo.FindLinkByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product link not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product link")
	}
	return link, nil
}

func (s *service) loadSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id is required")
	}
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return supplier, nil
}
