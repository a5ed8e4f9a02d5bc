// Package ingesting turns spreadsheet uploads into upserted customer records.
package ingesting

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vfg2006/receivables-dashboard-api/infrastructure/blob"
	"github.com/vfg2006/receivables-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
	"github.com/vfg2006/receivables-dashboard-api/internal/spreadsheet"
	"github.com/vfg2006/receivables-dashboard-api/pkg/log"
	"github.com/vfg2006/receivables-dashboard-api/pkg/utils"
)

const archivePrefix = "uploads"

type Ingester interface {
	Upload(ctx context.Context, req domain.UploadRequest) (*domain.UploadResult, error)
	ListRecords(ctx context.Context) ([]domain.Record, error)
	GetRecord(ctx context.Context, code string) (*domain.Record, error)
}

type Service struct {
	store    repository.RecordStore
	archive  blob.Store
	notifier Notifier
}

type Option func(*Service)

// WithArchive keeps a copy of every raw upload in store.
func WithArchive(store blob.Store) Option {
	return func(s *Service) {
		s.archive = store
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

func NewService(store repository.RecordStore, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Upload(ctx context.Context, req domain.UploadRequest) (*domain.UploadResult, error) {
	if len(req.Content) == 0 {
		return nil, ErrMissingFile
	}
	month := strings.TrimSpace(req.Month)
	if month == "" {
		return nil, ErrMissingPeriod
	}

	uploadID, err := utils.GenerateID(utils.UploadIDSize)
	if err != nil {
		return nil, fmt.Errorf("generate upload id: %w", err)
	}

	logger := log.ForContext(ctx).WithFields(log.Fields{
		"upload_id":    uploadID,
		"upload_file":  req.Filename,
		"upload_month": month,
	})

	rows, err := spreadsheet.Parse(req.Filename, req.Content)
	if err != nil {
		logger.WithError(err).Warn("upload: parse failed")
		return nil, fmt.Errorf("%w: %w", ErrProcessingFailed, err)
	}

	inputs := make([]domain.RecordInput, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		code, ok := domain.CustomerCodeOf(row)
		if !ok {
			skipped++
			logger.WithField("upload_row", i+2).Debug("upload: row without customer code skipped")
			continue
		}
		inputs = append(inputs, domain.RecordInput{CustomerCode: code, Row: row})
	}

	var counts domain.UpsertCounts
	if len(inputs) > 0 {
		counts, err = s.store.UpsertMany(ctx, inputs, month)
		if err != nil {
			logger.WithError(err).Error("upload: upsert failed")
			return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
		}
	}

	result := &domain.UploadResult{
		NewRecords:     counts.Created,
		UpdatedRecords: counts.Updated,
		TotalRows:      len(rows),
		SkippedRows:    skipped,
		UploadID:       uploadID,
	}

	if skipped > 0 {
		logger.WithField("upload_skipped", skipped).Info("upload: rows without customer code were skipped")
	}

	result.ArchiveKey = s.archiveUpload(ctx, logger, uploadID, month, req)

	logger.WithFields(log.Fields{
		"record_created": result.NewRecords,
		"record_updated": result.UpdatedRecords,
		"upload_rows":    result.TotalRows,
	}).Info("upload: completed")

	s.notify(ctx, req.UploadedBy, month, result)

	return result, nil
}

// archiveUpload stores the raw file and returns its key, or "" when
// archiving is off or failed.
func (s *Service) archiveUpload(ctx context.Context, logger log.Logger, uploadID, month string, req domain.UploadRequest) string {
	if s.archive == nil {
		return ""
	}

	key := ArchiveKey(month, uploadID, req.Filename)

	opts := blob.PutOptions{
		Metadata: map[string]string{
			"upload-id":    uploadID,
			"upload-month": month,
		},
	}
	if format, err := spreadsheet.DetectFormat(req.Filename, req.Content); err == nil {
		opts.ContentType = format.ContentType()
	}
	if req.UploadedBy != 0 {
		opts.Metadata["uploaded-by"] = fmt.Sprint(req.UploadedBy)
	}

	if _, err := s.archive.Put(ctx, key, bytes.NewReader(req.Content), opts); err != nil {
		logger.WithError(err).WithField("upload_archive", key).Warn("upload: archive failed")
		return ""
	}

	return key
}

// ArchiveKey is uploads/<period>/<uploadId>-<filename>.
func ArchiveKey(month, uploadID, filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	period := strings.NewReplacer("/", "-", "..", "-").Replace(month)

	return fmt.Sprintf("%s/%s/%s-%s", archivePrefix, period, uploadID, name)
}

func (s *Service) notify(ctx context.Context, userID int, month string, result *domain.UploadResult) {
	if s.notifier == nil {
		return
	}

	if userID != 0 {
		message := fmt.Sprintf("%d new and %d updated records from %d rows", result.NewRecords, result.UpdatedRecords, result.TotalRows)
		if _, err := s.notifier.Create(ctx, userID, "Upload for "+month+" processed", message, domain.NotificationKindUpload); err != nil {
			log.ForContext(ctx).WithError(err).WithField("upload_id", result.UploadID).Warn("upload: notification failed")
		}
	}

	s.notifier.Publish(ctx, domain.EventUploadCompleted, map[string]any{
		"uploadId":       result.UploadID,
		"uploadMonth":    month,
		"uploadedBy":     userID,
		"newRecords":     result.NewRecords,
		"updatedRecords": result.UpdatedRecords,
		"totalRows":      result.TotalRows,
		"skippedRows":    result.SkippedRows,
		"archiveKey":     result.ArchiveKey,
	})
}

func (s *Service) ListRecords(ctx context.Context) ([]domain.Record, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return records, nil
}

func (s *Service) GetRecord(ctx context.Context, code string) (*domain.Record, error) {
	record, err := s.store.Get(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}
	return record, nil
}
