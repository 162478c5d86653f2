package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/retail_api/internal/cache"
	"github.com/GTDGit/retail_api/internal/config"
	"github.com/GTDGit/retail_api/internal/importer"
	"github.com/GTDGit/retail_api/internal/metrics"
	"github.com/GTDGit/retail_api/internal/sse"
	"github.com/GTDGit/retail_api/internal/utils"
)

// RowImporter runs one import batch.
type RowImporter interface {
	Import(ctx context.Context, rows []importer.Row, companyID string, opts ...importer.Option) (*importer.ImportOutcome, error)
}

// ImportLocker serializes imports of a company.
type ImportLocker interface {
	Acquire(ctx context.Context, companyID string) (func(context.Context) error, error)
}

// SummaryStore keeps the last import summary of each company.
type SummaryStore interface {
	Set(ctx context.Context, summary *cache.ImportSummary) error
	Get(ctx context.Context, companyID string) (*cache.ImportSummary, error)
}

// Archiver stores the uploaded file.
type Archiver interface {
	ArchiveImport(ctx context.Context, companyID, filename, contentType string, data []byte) (string, error)
}

// Import sources.
const (
	SourceXLSX = "xlsx"
	SourceCSV  = "csv"
	SourceJSON = "json"
)

// ImportRequest is one product import submitted by a user.
type ImportRequest struct {
	CompanyID   string
	UserID      int
	Source      string
	Filename    string
	ContentType string
	// Raw is the uploaded file, archived when an Archiver is set.
	Raw  []byte
	Rows []importer.Row
	// Lines holds the file line of each row for uploads; nil for JSON bodies.
	Lines []int
}

// ImportService wraps the importer with locking, archiving, caching and notifications.
type ImportService struct {
	importer  RowImporter
	lock      ImportLocker
	summaries SummaryStore
	archiver  Archiver
	notifier  sse.ImportNotifier
	metrics   *metrics.Metrics

	maxRows int
	timeout time.Duration
}

// NewImportService creates a new ImportService.
func NewImportService(
	imp RowImporter,
	lock ImportLocker,
	summaries SummaryStore,
	notifier sse.ImportNotifier,
	m *metrics.Metrics,
	cfg config.ImportConfig,
) *ImportService {
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	return &ImportService{
		importer:  imp,
		lock:      lock,
		summaries: summaries,
		notifier:  notifier,
		metrics:   m,
		maxRows:   cfg.MaxRows,
		timeout:   cfg.Timeout,
	}
}

// SetArchiver enables archiving of uploaded files.
func (s *ImportService) SetArchiver(a Archiver) {
	s.archiver = a
}

// ImportProducts runs an import for the request's company. It fails with
// utils.ErrImportInProgress while another import of the company is running.
func (s *ImportService) ImportProducts(ctx context.Context, req *ImportRequest) (*importer.ImportOutcome, error) {
	finish := s.metrics.ImportStarted()

	if len(req.Rows) == 0 {
		finish(metrics.OutcomeRejected)
		return nil, importer.ErrEmptyInput
	}
	if s.maxRows > 0 && len(req.Rows) > s.maxRows {
		finish(metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: %d rows, at most %d allowed", utils.ErrTooManyRows, len(req.Rows), s.maxRows)
	}

	release, err := s.lock.Acquire(ctx, req.CompanyID)
	if errors.Is(err, cache.ErrLockHeld) {
		finish(metrics.OutcomeBusy)
		log.Warn().Str("company_id", req.CompanyID).Int("user_id", req.UserID).Msg("Import refused, another import is running")
		return nil, utils.ErrImportInProgress
	}
	if err != nil {
		finish(metrics.OutcomeFailed)
		return nil, err
	}
	defer func() {
		// The request context may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := release(releaseCtx); err != nil {
			log.Error().Err(err).Str("company_id", req.CompanyID).Msg("Failed to release import lock")
		}
	}()

	start := time.Now()
	s.notifier.NotifyImport(&sse.ImportEvent{
		Event:     sse.EventImportStarted,
		CompanyID: req.CompanyID,
		UserID:    req.UserID,
		Source:    req.Source,
		Rows:      len(req.Rows),
	})

	archiveKey := s.archive(ctx, req)

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	outcome, err := s.importer.Import(runCtx, req.Rows, req.CompanyID, importer.WithLineNumbers(req.Lines))
	if err != nil {
		finish(metrics.OutcomeFailed)
		log.Error().Err(err).Str("company_id", req.CompanyID).Int("rows", len(req.Rows)).Msg("Product import failed")
		s.notifier.NotifyImport(&sse.ImportEvent{
			Event:     sse.EventImportFailed,
			CompanyID: req.CompanyID,
			UserID:    req.UserID,
			Source:    req.Source,
			Rows:      len(req.Rows),
			Error:     err.Error(),
		})
		return nil, err
	}
	finish(metrics.OutcomeSuccess)
	s.metrics.RecordImportRows(outcome.Created, outcome.InvalidCount(), outcome.DuplicateCount(), len(outcome.NewCategories))

	summary := &cache.ImportSummary{
		CompanyID:      req.CompanyID,
		UserID:         req.UserID,
		Source:         req.Source,
		ArchiveKey:     archiveKey,
		Rows:           len(req.Rows),
		Created:        outcome.Created,
		InvalidCount:   outcome.InvalidCount(),
		DuplicateCount: outcome.DuplicateCount(),
		NewCategories:  outcome.NewCategories,
		DurationMs:     time.Since(start).Milliseconds(),
		FinishedAt:     time.Now(),
	}
	if err := s.summaries.Set(ctx, summary); err != nil {
		log.Warn().Err(err).Str("company_id", req.CompanyID).Msg("Failed to cache import summary")
	}

	s.notifier.NotifyImport(&sse.ImportEvent{
		Event:          sse.EventImportCompleted,
		CompanyID:      req.CompanyID,
		UserID:         req.UserID,
		Source:         req.Source,
		Rows:           len(req.Rows),
		Created:        outcome.Created,
		InvalidCount:   summary.InvalidCount,
		DuplicateCount: summary.DuplicateCount,
		NewCategories:  outcome.NewCategories,
	})

	return outcome, nil
}

// archive uploads the raw file. Failures are logged and do not block the import.
func (s *ImportService) archive(ctx context.Context, req *ImportRequest) string {
	if s.archiver == nil || len(req.Raw) == 0 {
		return ""
	}
	key, err := s.archiver.ArchiveImport(ctx, req.CompanyID, req.Filename, req.ContentType, req.Raw)
	if err != nil {
		s.metrics.RecordArchiveFailure()
		log.Warn().Err(err).Str("company_id", req.CompanyID).Str("filename", req.Filename).Msg("Import file not archived")
		return ""
	}
	return key
}

// LastSummary returns the company's last import summary, or nil.
func (s *ImportService) LastSummary(ctx context.Context, companyID string) (*cache.ImportSummary, error) {
	return s.summaries.Get(ctx, companyID)
}
