// Package dashboard serves the KPI, trend, aging and customer views from
// the fixture dataset.
package dashboard

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
	"github.com/vfg2006/receivables-dashboard-api/internal/fixtures"
	"github.com/vfg2006/receivables-dashboard-api/pkg/log"
)

const (
	DefaultTrendMonths = 12
	MaxTrendMonths     = 24
	dsoWindowMonths    = 3
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrInvalidMonths    = errors.New("months must be a positive number")
	ErrInvalidStatus    = errors.New("unknown invoice status")
)

var hundred = decimal.NewFromInt(100)

// SummaryProvider exposes the last receivables summary, if one was computed.
type SummaryProvider interface {
	LatestSummary() (domain.ReceivablesSummary, bool)
}

type Dashboard interface {
	KPIs(ctx context.Context) ([]domain.KPI, error)
	Trends(ctx context.Context, months int) ([]domain.TrendPoint, error)
	Aging(ctx context.Context, region string) (*domain.AgingReport, error)
	Customers(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error)
	Customer(ctx context.Context, code string) (*domain.Customer, error)
	CustomerInvoices(ctx context.Context, code string, status domain.InvoiceStatus) ([]domain.Invoice, error)
}

type Service struct {
	data      *fixtures.Dataset
	summaries SummaryProvider
	delay     time.Duration
}

func NewService(data *fixtures.Dataset, summaries SummaryProvider, delay time.Duration) *Service {
	return &Service{
		data:      data,
		summaries: summaries,
		delay:     delay,
	}
}

// wait simulates a slow backend; it gives up as soon as ctx is done.
func (s *Service) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) KPIs(ctx context.Context) ([]domain.KPI, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	asOf := s.data.ReferenceDate
	previousAsOf := asOf.AddDate(0, -1, 0)

	current := snapshot(s.data.Invoices, asOf)
	previous := snapshot(s.data.Invoices, previousAsOf)

	outstanding := current.outstanding
	if summary, ok := s.latestSummary(); ok {
		outstanding = outstanding.Add(summary.TotalAmount)
	}

	trends := s.data.Trends
	kpis := []domain.KPI{
		newKPI("total_outstanding", "Total outstanding", outstanding, previous.outstanding, domain.KPIUnitCurrency),
		newKPI("overdue_amount", "Overdue amount", current.overdue, previous.overdue, domain.KPIUnitCurrency),
		newKPI("dso", "Days sales outstanding", dso(trends, 0), dso(trends, 1), domain.KPIUnitDays),
		newKPI("collection_rate", "Collection rate", collectionRate(trends, 0), collectionRate(trends, 1), domain.KPIUnitPercent),
		newKPI("active_customers", "Active customers", decimal.NewFromInt(int64(current.customers)), decimal.NewFromInt(int64(previous.customers)), domain.KPIUnitCount),
	}

	if summary, ok := s.latestSummary(); ok {
		kpis = append(kpis, newKPI("uploaded_records", "Uploaded records", decimal.NewFromInt(int64(summary.RecordCount)), decimal.Zero, domain.KPIUnitCount))
	}

	return kpis, nil
}

func (s *Service) latestSummary() (domain.ReceivablesSummary, bool) {
	if s.summaries == nil {
		return domain.ReceivablesSummary{}, false
	}
	return s.summaries.LatestSummary()
}

type invoiceSnapshot struct {
	outstanding decimal.Decimal
	overdue     decimal.Decimal
	customers   int
}

// snapshot totals the invoices already issued on asOf.
func snapshot(invoices []domain.Invoice, asOf time.Time) invoiceSnapshot {
	snap := invoiceSnapshot{outstanding: decimal.Zero, overdue: decimal.Zero}
	active := make(map[string]bool)

	for _, invoice := range invoices {
		if invoice.IssueDate.After(asOf) {
			continue
		}
		amount := invoice.Outstanding()
		if !amount.IsPositive() {
			continue
		}
		snap.outstanding = snap.outstanding.Add(amount)
		if invoice.DaysOverdue(asOf) > 0 {
			snap.overdue = snap.overdue.Add(amount)
		}
		active[invoice.CustomerCode] = true
	}
	snap.customers = len(active)

	return snap
}

// dso is outstanding over the billing of the trailing window, in days,
// measured lag months before the last trend point.
func dso(trends []domain.TrendPoint, lag int) decimal.Decimal {
	end := len(trends) - lag
	if end <= 0 {
		return decimal.Zero
	}
	start := max(end-dsoWindowMonths, 0)

	billed := decimal.Zero
	for _, point := range trends[start:end] {
		billed = billed.Add(point.Billed)
	}
	if billed.IsZero() {
		return decimal.Zero
	}

	days := decimal.NewFromInt(int64(30 * (end - start)))
	return trends[end-1].Outstanding.Div(billed).Mul(days)
}

func collectionRate(trends []domain.TrendPoint, lag int) decimal.Decimal {
	i := len(trends) - 1 - lag
	if i < 0 || trends[i].Billed.IsZero() {
		return decimal.Zero
	}
	return trends[i].Collected.Div(trends[i].Billed).Mul(hundred)
}

func newKPI(key, label string, value, previous decimal.Decimal, unit domain.KPIUnit) domain.KPI {
	change := decimal.Zero
	if !previous.IsZero() {
		change = value.Sub(previous).Div(previous).Mul(hundred)
	}

	return domain.KPI{
		Key:           key,
		Label:         label,
		Value:         value.Round(2),
		PreviousValue: previous.Round(2),
		ChangePercent: change.Round(2),
		Unit:          unit,
	}
}

// Trends returns the last months points, oldest first. Zero means the default.
func (s *Service) Trends(ctx context.Context, months int) ([]domain.TrendPoint, error) {
	if months < 0 {
		return nil, ErrInvalidMonths
	}
	if months == 0 {
		months = DefaultTrendMonths
	}
	months = min(months, MaxTrendMonths, len(s.data.Trends))

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	points := s.data.Trends[len(s.data.Trends)-months:]
	out := make([]domain.TrendPoint, len(points))
	copy(out, points)
	return out, nil
}

// Aging buckets the outstanding invoice balances per region as of the
// reference date. An empty region covers every region.
func (s *Service) Aging(ctx context.Context, region string) (*domain.AgingReport, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	asOf := s.data.ReferenceDate
	regionOf := make(map[string]string, len(s.data.Customers))
	for _, customer := range s.data.Customers {
		regionOf[customer.Code] = customer.Region
	}

	type key struct{ region, bucket string }
	amounts := make(map[key]decimal.Decimal)
	counts := make(map[key]int)
	regions := make(map[string]bool)

	for _, customer := range s.data.Customers {
		if region == "" || strings.EqualFold(customer.Region, region) {
			regions[customer.Region] = true
		}
	}

	total := decimal.Zero
	for _, invoice := range s.data.Invoices {
		r := regionOf[invoice.CustomerCode]
		if !regions[r] {
			continue
		}
		amount := invoice.Outstanding()
		if !amount.IsPositive() {
			continue
		}

		k := key{r, domain.AgingBucketFor(invoice.DaysOverdue(asOf))}
		amounts[k] = amounts[k].Add(amount)
		counts[k]++
		total = total.Add(amount)
	}

	names := make([]string, 0, len(regions))
	for r := range regions {
		names = append(names, r)
	}
	sort.Strings(names)

	report := &domain.AgingReport{
		AsOf:    asOf,
		Buckets: make([]domain.AgingBucket, 0, len(names)*len(domain.AgingBuckets)),
		Total:   total.Round(2),
	}
	for _, r := range names {
		for _, bucket := range domain.AgingBuckets {
			k := key{r, bucket}
			report.Buckets = append(report.Buckets, domain.AgingBucket{
				Region:       r,
				Bucket:       bucket,
				Amount:       amounts[k].Round(2),
				InvoiceCount: counts[k],
			})
		}
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"region":  region,
		"buckets": len(report.Buckets),
	}).Debug("dashboard: aging computed")

	return report, nil
}

func (s *Service) Customers(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	result := make([]domain.Customer, 0)

	for _, customer := range s.data.Customers {
		if filter.Region != "" && !strings.EqualFold(customer.Region, filter.Region) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(customer.Name), query) &&
			!strings.Contains(strings.ToLower(customer.Code), query) {
			continue
		}
		result = append(result, customer)
	}

	return result, nil
}

func (s *Service) Customer(ctx context.Context, code string) (*domain.Customer, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	customer, ok := s.findCustomer(code)
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return &customer, nil
}

func (s *Service) findCustomer(code string) (domain.Customer, bool) {
	code = strings.TrimSpace(code)
	for _, customer := range s.data.Customers {
		if strings.EqualFold(customer.Code, code) {
			return customer, true
		}
	}
	return domain.Customer{}, false
}

// CustomerInvoices lists invoices newest first, optionally filtered by status.
func (s *Service) CustomerInvoices(ctx context.Context, code string, status domain.InvoiceStatus) ([]domain.Invoice, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	customer, ok := s.findCustomer(code)
	if !ok {
		return nil, ErrCustomerNotFound
	}

	invoices := make([]domain.Invoice, 0)
	for _, invoice := range s.data.Invoices {
		if invoice.CustomerCode != customer.Code {
			continue
		}
		if status != "" && invoice.Status != status {
			continue
		}
		invoices = append(invoices, invoice)
	}

	sort.SliceStable(invoices, func(i, j int) bool {
		if invoices[i].IssueDate.Equal(invoices[j].IssueDate) {
			return invoices[i].Number > invoices[j].Number
		}
		return invoices[i].IssueDate.After(invoices[j].IssueDate)
	})

	return invoices, nil
}
