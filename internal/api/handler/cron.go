package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/receivables-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/receivables-dashboard-api/pkg/log"
	"github.com/vfg2006/receivables-dashboard-api/pkg/middleware"
)

const (
	CronJobTypeReceivablesSummary = "receivables-summary"
	CronJobTypeAll                = "all"
)

// CronJob is a scheduled job that can also be run on demand.
type CronJob interface {
	TriggerManualSync()
	GetStatus() map[string]any
}

type CronJobServices struct {
	ReceivablesSummaryService CronJob
}

// RunCronJob triggers a job in the background; a run already in flight wins.
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "cron job type is required", nil)
			return
		}

		switch cronType {
		case CronJobTypeReceivablesSummary, CronJobTypeAll:
			if services.ReceivablesSummaryService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "receivables summary job not available", nil)
				return
			}
			services.ReceivablesSummaryService.TriggerManualSync()
		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "invalid cron job type, accepted values: receivables-summary, all", nil)
			return
		}

		fields := log.Fields{"job_type": cronType}
		if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
			fields["user_id"] = claims.UserID
		}
		log.ForContext(r.Context()).WithFields(fields).Info("cron: manual run requested")

		writeJSON(w, http.StatusOK, map[string]any{
			"message": "cron job started",
			"type":    cronType,
		})
	}
}

func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{}
		if services.ReceivablesSummaryService != nil {
			status[CronJobTypeReceivablesSummary] = services.ReceivablesSummaryService.GetStatus()
		}

		writeJSON(w, http.StatusOK, status)
	}
}
