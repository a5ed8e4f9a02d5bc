package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
	"github.com/vfg2006/receivables-dashboard-api/internal/usecases/ingesting"
	"github.com/vfg2006/receivables-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/receivables-dashboard-api/pkg/log"
	"github.com/vfg2006/receivables-dashboard-api/pkg/middleware"
)

// multipartMemory is how much of a form ParseMultipartForm keeps in memory
// before spilling file parts to disk.
const multipartMemory = 8 << 20

const multipartEnvelope = 64 << 10

// summaryPath shares the :code segment of the record lookup route.
const summaryPath = "summary"

// SummaryReader serves the receivables summary.
type SummaryReader interface {
	CurrentSummary(ctx context.Context) (domain.ReceivablesSummary, error)
}

// UploadReceivables accepts a multipart form with a "file" part and a
// "month" field.
func UploadReceivables(service ingesting.Ingester, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		// the limit applies to the file; the body also carries boundaries and the month field
		bodyLimit := maxBytes + multipartEnvelope
		if r.ContentLength > bodyLimit {
			apiErrors.WriteError(w, apiErrors.ErrPayloadTooLarge, "file exceeds the upload limit", map[string]any{"maxBytes": maxBytes})
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			if isTooLarge(err) {
				apiErrors.WriteError(w, apiErrors.ErrPayloadTooLarge, "file exceeds the upload limit", map[string]any{"maxBytes": maxBytes})
				return
			}
			logger.WithError(err).Debug("upload: invalid multipart body")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "expected a multipart/form-data body", nil)
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile("file")
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, ingesting.ErrMissingFile.Error(), nil)
			return
		}
		defer file.Close()

		if header.Size > maxBytes {
			apiErrors.WriteError(w, apiErrors.ErrPayloadTooLarge, "file exceeds the upload limit", map[string]any{"maxBytes": maxBytes})
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			if isTooLarge(err) {
				apiErrors.WriteError(w, apiErrors.ErrPayloadTooLarge, "file exceeds the upload limit", map[string]any{"maxBytes": maxBytes})
				return
			}
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "could not read file", nil)
			return
		}

		req := domain.UploadRequest{
			Filename: header.Filename,
			Content:  content,
			Month:    r.FormValue("month"),
		}
		if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
			req.UploadedBy = claims.UserID
		}

		result, err := service.Upload(r.Context(), req)
		if err != nil {
			writeIngestError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func writeIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ingesting.ErrMissingFile), errors.Is(err, ingesting.ErrMissingPeriod):
		apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, err.Error(), nil)
	case errors.Is(err, ingesting.ErrProcessingFailed):
		details := strings.TrimPrefix(err.Error(), ingesting.ErrProcessingFailed.Error()+": ")
		apiErrors.WriteError(w, apiErrors.ErrUnprocessableFile, ingesting.ErrProcessingFailed.Error(), details)
	case errors.Is(err, ingesting.ErrRecordNotFound):
		apiErrors.WriteError(w, apiErrors.ErrResourceNotFound, err.Error(), nil)
	case errors.Is(err, ingesting.ErrStoreFailure):
		apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "record store failure", nil)
	default:
		log.L.WithError(err).Error("upload: unexpected error")
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "internal server error", nil)
	}
}

func ListReceivables(service ingesting.Ingester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := service.ListRecords(r.Context())
		if err != nil {
			writeIngestError(w, err)
			return
		}
		if records == nil {
			records = []domain.Record{}
		}

		writeJSON(w, http.StatusOK, records)
	}
}

// GetReceivable serves one record, or the summary when the path segment
// is "summary".
func GetReceivable(service ingesting.Ingester, summaries SummaryReader) http.HandlerFunc {
	summaryHandler := GetReceivablesSummary(summaries)

	return func(w http.ResponseWriter, r *http.Request) {
		code := httprouter.ParamsFromContext(r.Context()).ByName("code")
		if code == summaryPath {
			summaryHandler(w, r)
			return
		}
		if strings.TrimSpace(code) == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "customer code is required", nil)
			return
		}

		record, err := service.GetRecord(r.Context(), code)
		if err != nil {
			writeIngestError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, record)
	}
}

func GetReceivablesSummary(summaries SummaryReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if summaries == nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "summary service not available", nil)
			return
		}

		summary, err := summaries.CurrentSummary(r.Context())
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("summary: compute failed")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "could not compute summary", nil)
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}
