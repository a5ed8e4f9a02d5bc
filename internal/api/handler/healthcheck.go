package handler

import (
	"net/http"
	"time"

	"github.com/vfg2006/receivables-dashboard-api/pkg/log"
)

func HealthcheckHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := w.Write([]byte(time.Now().Format(time.RFC3339))); err != nil {
			log.L.WithError(err).Warn("error responding to healthcheck")
		}
	})
}
