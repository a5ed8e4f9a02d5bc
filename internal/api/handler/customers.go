package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
	"github.com/vfg2006/receivables-dashboard-api/internal/usecases/dashboard"
)

func ListCustomers(service dashboard.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		customers, err := service.Customers(r.Context(), domain.CustomerFilter{
			Region: query.Get("region"),
			Query:  query.Get("q"),
		})
		if err != nil {
			writeDashboardError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, customers)
	}
}

func GetCustomer(service dashboard.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := httprouter.ParamsFromContext(r.Context()).ByName("code")

		customer, err := service.Customer(r.Context(), code)
		if err != nil {
			writeDashboardError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, customer)
	}
}

func ListCustomerInvoices(service dashboard.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := httprouter.ParamsFromContext(r.Context()).ByName("code")
		status := domain.InvoiceStatus(r.URL.Query().Get("status"))

		invoices, err := service.CustomerInvoices(r.Context(), code, status)
		if err != nil {
			writeDashboardError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, invoices)
	}
}
