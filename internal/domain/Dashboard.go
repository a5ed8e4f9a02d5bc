package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// dashboard clients read money and ratios as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type Customer struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Region      string          `json:"region"`
	Email       string          `json:"email"`
	CreditLimit decimal.Decimal `json:"creditLimit"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Overdue     decimal.Decimal `json:"overdue"`
}

type CustomerFilter struct {
	Region string
	Query  string
}

type InvoiceStatus string

const (
	InvoiceStatusOpen    InvoiceStatus = "open"
	InvoiceStatusPartial InvoiceStatus = "partial"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusOpen, InvoiceStatusPartial, InvoiceStatusOverdue, InvoiceStatusPaid:
		return true
	}
	return false
}

type Invoice struct {
	Number       string          `json:"number"`
	CustomerCode string          `json:"customerCode"`
	IssueDate    time.Time       `json:"issueDate"`
	DueDate      time.Time       `json:"dueDate"`
	Amount       decimal.Decimal `json:"amount"`
	PaidAmount   decimal.Decimal `json:"paidAmount"`
	Status       InvoiceStatus   `json:"status"`
}

func (i Invoice) Outstanding() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// DaysOverdue is zero until the due date has passed.
func (i Invoice) DaysOverdue(asOf time.Time) int {
	if !asOf.After(i.DueDate) {
		return 0
	}
	return int(asOf.Sub(i.DueDate).Hours() / 24)
}

type KPIUnit string

const (
	KPIUnitCurrency KPIUnit = "currency"
	KPIUnitPercent  KPIUnit = "percent"
	KPIUnitDays     KPIUnit = "days"
	KPIUnitCount    KPIUnit = "count"
)

type KPI struct {
	Key           string          `json:"key"`
	Label         string          `json:"label"`
	Value         decimal.Decimal `json:"value"`
	PreviousValue decimal.Decimal `json:"previousValue"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Unit          KPIUnit         `json:"unit"`
}

type TrendPoint struct {
	Period      string          `json:"period"`
	Billed      decimal.Decimal `json:"billed"`
	Collected   decimal.Decimal `json:"collected"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// Aging bucket labels, in display order.
const (
	AgingCurrent = "current"
	Aging1To30   = "1-30"
	Aging31To60  = "31-60"
	Aging61To90  = "61-90"
	AgingOver90  = "90+"
)

var AgingBuckets = []string{AgingCurrent, Aging1To30, Aging31To60, Aging61To90, AgingOver90}

// AgingBucketFor maps days past due onto a bucket label.
func AgingBucketFor(daysOverdue int) string {
	switch {
	case daysOverdue <= 0:
		return AgingCurrent
	case daysOverdue <= 30:
		return Aging1To30
	case daysOverdue <= 60:
		return Aging31To60
	case daysOverdue <= 90:
		return Aging61To90
	default:
		return AgingOver90
	}
}

type AgingBucket struct {
	Region       string          `json:"region"`
	Bucket       string          `json:"bucket"`
	Amount       decimal.Decimal `json:"amount"`
	InvoiceCount int             `json:"invoiceCount"`
}

type AgingReport struct {
	AsOf    time.Time       `json:"asOf"`
	Buckets []AgingBucket   `json:"buckets"`
	Total   decimal.Decimal `json:"total"`
}
