package handler

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/vfg2006/receivables-dashboard-api/internal/usecases/notifying"
	"github.com/vfg2006/receivables-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/receivables-dashboard-api/pkg/log"
	"github.com/vfg2006/receivables-dashboard-api/pkg/middleware"
)

func ListNotifications(service notifying.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "user not authenticated", nil)
			return
		}

		unreadOnly := false
		if raw := r.URL.Query().Get("unread"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "unread must be true or false", nil)
				return
			}
			unreadOnly = v
		}

		notifications, err := service.List(r.Context(), claims.UserID, unreadOnly)
		if err != nil {
			writeNotificationError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, notifications)
	}
}

func MarkNotificationRead(service notifying.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "user not authenticated", nil)
			return
		}

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		notification, err := service.MarkRead(r.Context(), claims.UserID, id)
		if err != nil {
			writeNotificationError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, notification)
	}
}

func writeNotificationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, notifying.ErrNotificationNotFound):
		apiErrors.WriteError(w, apiErrors.ErrResourceNotFound, err.Error(), nil)
	case errors.Is(err, notifying.ErrStoreFailure):
		log.ForContext(r.Context()).WithError(err).Error("notify: store failure")
		apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "notification store failure", nil)
	default:
		log.ForContext(r.Context()).WithError(err).Error("notify: request failed")
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "internal server error", nil)
	}
}
