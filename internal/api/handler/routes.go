package handler

import (
	"net/http"

	"github.com/vfg2006/receivables-dashboard-api/internal/api/handler/router"
	"github.com/vfg2006/receivables-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/receivables-dashboard-api/internal/usecases/dashboard"
	"github.com/vfg2006/receivables-dashboard-api/internal/usecases/ingesting"
	"github.com/vfg2006/receivables-dashboard-api/internal/usecases/notifying"
	"github.com/vfg2006/receivables-dashboard-api/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:        "/v1/me",
			Method:      http.MethodGet,
			Handler:     GetMe(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Receivables(service ingesting.Ingester, summaries SummaryReader, maxUploadBytes int64) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/receivables/upload",
			Method:      http.MethodPost,
			Handler:     UploadReceivables(service, maxUploadBytes),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrManager()},
		},
		{
			Path:        "/v1/receivables",
			Method:      http.MethodGet,
			Handler:     ListReceivables(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		// also serves GET /v1/receivables/summary
		{
			Path:        "/v1/receivables/:code",
			Method:      http.MethodGet,
			Handler:     GetReceivable(service, summaries),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Dashboard(service dashboard.Dashboard) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/dashboard/kpis",
			Method:      http.MethodGet,
			Handler:     GetKPIs(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/dashboard/trends",
			Method:      http.MethodGet,
			Handler:     GetTrends(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/dashboard/receivables/aging",
			Method:      http.MethodGet,
			Handler:     GetAging(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Customers(service dashboard.Dashboard) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/customers",
			Method:      http.MethodGet,
			Handler:     ListCustomers(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/customers/:code",
			Method:      http.MethodGet,
			Handler:     GetCustomer(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/customers/:code/invoices",
			Method:      http.MethodGet,
			Handler:     ListCustomerInvoices(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Notifications(service notifying.Notifier) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/notifications",
			Method:      http.MethodGet,
			Handler:     ListNotifications(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/notifications/:id/read",
			Method:      http.MethodPut,
			Handler:     MarkNotificationRead(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrManager()},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrManager()},
		},
	}
}
