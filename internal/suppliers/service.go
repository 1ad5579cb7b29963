package suppliers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/omexplus/dropship-backend/pkg/db"
	"github.com/omexplus/dropship-backend/pkg/db/models"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
	"github.com/omexplus/dropship-backend/pkg/logger"
	"github.com/omexplus/dropship-backend/pkg/pagination"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{1,31}$`)

var maxCommissionRate = decimal.NewFromInt(100)

type supplierRepository interface {
	Create(ctx context.Context, dto CreateSupplierDTO) (*models.Supplier, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.Supplier, int64, error)
	Update(ctx context.Context, supplier *models.Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ledgerCounter interface {
	CountOpenBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error)
}

// Service exposes supplier registry operations.
type Service interface {
	Create(ctx context.Context, input CreateSupplierDTO) (*SupplierDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*SupplierDTO, error)
	List(ctx context.Context, filter ListFilter, page pagination.Params) (pagination.Page[SupplierDTO], error)
	Update(ctx context.Context, id uuid.UUID, input UpdateSupplierDTO) (*SupplierDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   supplierRepository
	ledger ledgerCounter
	logg   *logger.Logger
}

// NewService builds a supplier service with the provided dependencies.
func NewService(repo supplierRepository, ledger ledgerCounter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger counter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, ledger: ledger, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateSupplierDTO) (*SupplierDTO, error) {
	if err := validateCreate(&input); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, input)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_suppliers_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "supplier code already exists").
				WithDetails(map[string]string{"code": NormalizeCode(input.Code)})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create supplier")
	}

	logCtx := s.logg.WithSupplierID(ctx, created.ID.String())
	s.logg.Info(logCtx, "supplier registered")
	return FromModel(created), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*SupplierDTO, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(supplier), nil
}

func (s *service) List(ctx context.Context, filter ListFilter, page pagination.Params) (pagination.Page[SupplierDTO], error) {
	page = pagination.Normalize(page)
	rows, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return pagination.Page[SupplierDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}
	items := make([]SupplierDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return pagination.NewPage(items, total, page), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateSupplierDTO) (*SupplierDTO, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(supplier, input)

	if err := validateSupplier(supplier); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update supplier")
	}
	return FromModel(supplier), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return err
	}

	open, err := s.ledger.CountOpenBySupplier(ctx, supplier.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open supplier orders")
	}
	if open > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "supplier has open orders").
			WithDetails(map[string]int64{"open_orders": open})
	}

	if err := s.repo.Delete(ctx, supplier.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete supplier")
	}

	logCtx := s.logg.WithSupplierID(ctx, supplier.ID.String())
	s.logg.Info(logCtx, "supplier deleted")
	return nil
}

func (s *service) findSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id is required")
	}
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return supplier, nil
}

func validateCreate(input *CreateSupplierDTO) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier name is required")
	}
	code := NormalizeCode(input.Code)
	if !codePattern.MatchString(code) {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier code must be 2-32 chars of A-Z, 0-9, dash or underscore")
	}
	input.Code = code

	probe := input.ToModel()
	return validateSupplier(probe)
}

func validateSupplier(supplier *models.Supplier) error {
	if supplier.APIURL != nil && *supplier.APIURL != "" {
		parsed, err := url.Parse(*supplier.APIURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "api_url must be an absolute URL")
		}
	}

	hasKey := supplier.APIKey != nil && *supplier.APIKey != ""
	hasSecret := supplier.APISecret != nil && *supplier.APISecret != ""
	if hasKey != hasSecret {
		return pkgerrors.New(pkgerrors.CodeValidation, "api_key and api_secret must be provided together")
	}

	if supplier.CommissionRate.IsNegative() || supplier.CommissionRate.GreaterThan(maxCommissionRate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "commission_rate must be between 0 and 100")
	}
	if supplier.MinOrderValueCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "min_order_value_cents must not be negative")
	}
	if supplier.LeadTimeDays < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "lead_time_days must not be negative")
	}
	return nil
}

func applyUpdate(supplier *models.Supplier, input UpdateSupplierDTO) {
	if input.Name != nil {
		supplier.Name = strings.TrimSpace(*input.Name)
	}
	if input.ContactName != nil {
		supplier.ContactName = input.ContactName
	}
	if input.ContactEmail != nil {
		supplier.ContactEmail = input.ContactEmail
	}
	if input.ContactPhone != nil {
		supplier.ContactPhone = input.ContactPhone
	}
	if input.AddressLine1 != nil {
		supplier.AddressLine1 = input.AddressLine1
	}
	if input.AddressLine2 != nil {
		supplier.AddressLine2 = input.AddressLine2
	}
	if input.City != nil {
		supplier.City = input.City
	}
	if input.PostalCode != nil {
		supplier.PostalCode = input.PostalCode
	}
	if input.CountryCode != nil {
		supplier.CountryCode = input.CountryCode
	}
	if input.APIURL != nil {
		supplier.APIURL = input.APIURL
	}
	if input.APIKey != nil {
		supplier.APIKey = input.APIKey
	}
	if input.APISecret != nil {
		supplier.APISecret = input.APISecret
	}
	if input.SyncEnabled != nil {
		supplier.SyncEnabled = *input.SyncEnabled
	}
	if input.SyncFrequency != nil {
		supplier.SyncFrequency = *input.SyncFrequency
	}
	if input.CommissionRate != nil {
		supplier.CommissionRate = *input.CommissionRate
	}
	if input.MinOrderValueCents != nil {
		supplier.MinOrderValueCents = *input.MinOrderValueCents
	}
	if input.LeadTimeDays != nil {
		supplier.LeadTimeDays = *input.LeadTimeDays
	}
	if input.IsActive != nil {
		supplier.IsActive = *input.IsActive
	}
	if input.IsDropship != nil {
		supplier.IsDropship = *input.IsDropship
	}
	if input.Notes != nil {
		supplier.Notes = input.Notes
	}
}
