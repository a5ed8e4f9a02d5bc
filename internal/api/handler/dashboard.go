package handler

import (
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/vfg2006/receivables-dashboard-api/internal/usecases/dashboard"
	"github.com/vfg2006/receivables-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/receivables-dashboard-api/pkg/log"
)

func GetKPIs(service dashboard.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kpis, err := service.KPIs(r.Context())
		if err != nil {
			writeDashboardError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, kpis)
	}
}

func GetTrends(service dashboard.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		months := 0
		if raw := r.URL.Query().Get("months"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "months must be an integer", nil)
				return
			}
			months = n
		}

		points, err := service.Trends(r.Context(), months)
		if err != nil {
			writeDashboardError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, points)
	}
}

func GetAging(service dashboard.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := service.Aging(r.Context(), r.URL.Query().Get("region"))
		if err != nil {
			writeDashboardError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

func writeDashboardError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dashboard.ErrCustomerNotFound):
		apiErrors.WriteError(w, apiErrors.ErrResourceNotFound, err.Error(), nil)
	case errors.Is(err, dashboard.ErrInvalidMonths), errors.Is(err, dashboard.ErrInvalidStatus):
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
	default:
		log.ForContext(r.Context()).WithError(err).Error("dashboard: request failed")
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "internal server error", nil)
	}
}
