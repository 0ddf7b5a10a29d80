package jobs

import (
	"context"
	"time"

	"rentalhub-backend/internal/config"
	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/service"
)

const reconcileTimeout = 5 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	inventory service.InventoryService
	config    *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(inventory service.InventoryService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		inventory: inventory,
		config:    cfg,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = domain.NewInternalError("job panicked", nil)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	start := time.Now()
	if err := jobFunc(); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return err
	}
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// ReconcileInventory audits product availability against outstanding rentals.
// Discrepancies are logged by the inventory service; nothing is repaired.
func (jr *JobRunner) ReconcileInventory() {
	_, _ = jr.RunReconcile(context.Background())
}

// RunReconcile runs the reconciliation job once and returns its report
func (jr *JobRunner) RunReconcile(ctx context.Context) (*domain.InventoryReport, error) {
	var report *domain.InventoryReport
	err := jr.runWithRecovery("reconcile-inventory", func() error {
		ctx, cancel := context.WithTimeout(ctx, reconcileTimeout)
		defer cancel()

		var err error
		report, err = jr.inventory.Reconcile(ctx)
		if err != nil {
			return err
		}
		if n := len(report.Discrepancies); n > 0 {
			logger.Warn("Inventory reconciliation found drift", "products_checked", report.ProductsChecked, "discrepancies", n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
