package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/omexplus/dropship-backend/internal/supplierorders"
	"github.com/omexplus/dropship-backend/pkg/db/models"
	"github.com/omexplus/dropship-backend/pkg/logger"
)

const statusSyncBatch = 50

// StatusSyncJobParams configure the remote status poll.
type StatusSyncJobParams struct {
	Logger    *logger.Logger
	Ledger    statusSyncLedger
	Checker   statusChecker
	BatchSize int
}

type statusSyncLedger interface {
	ListForStatusSync(ctx context.Context, limit int) ([]models.SupplierOrder, error)
}

type statusChecker interface {
	CheckStatus(ctx context.Context, id uuid.UUID) (*supplierorders.StatusSyncDTO, error)
}

// NewStatusSyncJob builds the job that polls suppliers for progress on every
// in-flight ledger entry. Entries already sent but not yet delivered or
// cancelled move forward when the supplier's store reports a later status.
func NewStatusSyncJob(params StatusSyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if params.Checker == nil {
		return nil, fmt.Errorf("status checker required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = statusSyncBatch
	}
	return &statusSyncJob{
		logg:    params.Logger,
		ledger:  params.Ledger,
		checker: params.Checker,
		batch:   batch,
	}, nil
}

type statusSyncJob struct {
	logg    *logger.Logger
	ledger  statusSyncLedger
	checker statusChecker
	batch   int
}

func (j *statusSyncJob) Name() string { return "supplier-status-sync" }

func (j *statusSyncJob) Run(ctx context.Context) error {
	entries, err := j.ledger.ListForStatusSync(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("list entries for status sync: %w", err)
	}

	var errs error
	changed := 0
	for _, entry := range entries {
		sync, checkErr := j.checker.CheckStatus(ctx, entry.ID)
		if checkErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("entry %s: %w", entry.ID, checkErr))
			continue
		}
		if sync.Changed {
			changed++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"polled":  len(entries),
		"changed": changed,
	})
	j.logg.Info(logCtx, "supplier status sync complete")
	return errs
}
