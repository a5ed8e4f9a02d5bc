// Package fixtures generates the demo data the dashboard reads from.
// The same seed always yields the same dataset.
package fixtures

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
	"github.com/vfg2006/receivables-dashboard-api/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password of every fixture user.
const DefaultPassword = "dashboard123"

const (
	customerCount = 40
	trendMonths   = 24
	paymentTerms  = 30 // days
)

// ReferenceDate is the "today" of the fixture world.
var ReferenceDate = time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)

var Regions = []string{"North", "South", "East", "West", "Central"}

var (
	namePrefixes = []string{"Acme", "Globex", "Initech", "Umbrella", "Stark", "Wayne", "Hooli", "Vandelay", "Wonka", "Tyrell"}
	nameSuffixes = []string{"Industries", "Logistics", "Foods", "Retail"}
)

type Dataset struct {
	ReferenceDate time.Time
	Customers     []domain.Customer
	Invoices      []domain.Invoice
	Trends        []domain.TrendPoint
	Users         []domain.User
}

// Generate builds the dataset for seed.
func Generate(seed int64) (*Dataset, error) {
	rng := rand.New(rand.NewSource(seed))

	users, err := generateUsers()
	if err != nil {
		return nil, err
	}

	customers := generateCustomers(rng)
	invoices := generateInvoices(rng, customers, ReferenceDate)
	applyBalances(customers, invoices, ReferenceDate)

	return &Dataset{
		ReferenceDate: ReferenceDate,
		Customers:     customers,
		Invoices:      invoices,
		Trends:        generateTrends(rng, ReferenceDate, trendMonths),
		Users:         users,
	}, nil
}

func generateUsers() ([]domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("fixtures: hash password: %w", err)
	}

	users := []domain.User{
		{ID: 1, Name: "Ada Admin", Email: "admin@dashboard.local", RoleID: domain.RoleAdmin, Active: true},
		{ID: 2, Name: "Max Manager", Email: "manager@dashboard.local", RoleID: domain.RoleManager, Active: true},
		{ID: 3, Name: "Vera Viewer", Email: "viewer@dashboard.local", RoleID: domain.RoleViewer, Active: true},
		{ID: 4, Name: "Otto Former", Email: "former@dashboard.local", RoleID: domain.RoleViewer, Active: false},
	}
	for i := range users {
		users[i].PasswordHash = string(hash)
		users[i].Role = domain.RoleName(users[i].RoleID)
	}

	return users, nil
}

func generateCustomers(rng *rand.Rand) []domain.Customer {
	customers := make([]domain.Customer, 0, customerCount)
	for i := 1; i <= customerCount; i++ {
		prefix := namePrefixes[rng.Intn(len(namePrefixes))]
		suffix := nameSuffixes[rng.Intn(len(nameSuffixes))]
		code := fmt.Sprintf("CUST%04d", i)

		customers = append(customers, domain.Customer{
			Code:        code,
			Name:        fmt.Sprintf("%s %s %d", prefix, suffix, i),
			Region:      Regions[rng.Intn(len(Regions))],
			Email:       fmt.Sprintf("billing+%s@example.com", code),
			CreditLimit: decimal.NewFromInt(int64(10+rng.Intn(91)) * 1000),
			Outstanding: decimal.Zero,
			Overdue:     decimal.Zero,
		})
	}
	return customers
}

// generateInvoices issues 3 to 8 invoices per customer over the 180 days
// before asOf and settles a share of them.
func generateInvoices(rng *rand.Rand, customers []domain.Customer, asOf time.Time) []domain.Invoice {
	var invoices []domain.Invoice
	seq := 1

	for _, customer := range customers {
		n := 3 + rng.Intn(6)
		for j := 0; j < n; j++ {
			issued := asOf.AddDate(0, 0, -rng.Intn(180))
			amount := decimal.New(int64(50000+rng.Intn(1950000)), -2)

			var paid decimal.Decimal
			switch roll := rng.Intn(10); {
			case roll < 4:
				paid = amount
			case roll < 6:
				paid = amount.Mul(decimal.NewFromInt(int64(10 + rng.Intn(80)))).Div(decimal.NewFromInt(100)).Round(2)
			default:
				paid = decimal.Zero
			}

			invoice := domain.Invoice{
				Number:       fmt.Sprintf("INV-%06d", seq),
				CustomerCode: customer.Code,
				IssueDate:    issued,
				DueDate:      issued.AddDate(0, 0, paymentTerms),
				Amount:       amount,
				PaidAmount:   paid,
			}
			invoice.Status = StatusOf(invoice, asOf)

			invoices = append(invoices, invoice)
			seq++
		}
	}

	return invoices
}

// StatusOf derives the invoice status on asOf.
func StatusOf(invoice domain.Invoice, asOf time.Time) domain.InvoiceStatus {
	outstanding := invoice.Outstanding()
	switch {
	case !outstanding.IsPositive():
		return domain.InvoiceStatusPaid
	case asOf.After(invoice.DueDate):
		return domain.InvoiceStatusOverdue
	case invoice.PaidAmount.IsPositive():
		return domain.InvoiceStatusPartial
	default:
		return domain.InvoiceStatusOpen
	}
}

func applyBalances(customers []domain.Customer, invoices []domain.Invoice, asOf time.Time) {
	index := make(map[string]int, len(customers))
	for i, c := range customers {
		index[c.Code] = i
	}

	for _, invoice := range invoices {
		i := index[invoice.CustomerCode]
		outstanding := invoice.Outstanding()
		customers[i].Outstanding = customers[i].Outstanding.Add(outstanding)
		if invoice.DaysOverdue(asOf) > 0 {
			customers[i].Overdue = customers[i].Overdue.Add(outstanding)
		}
	}
}

// generateTrends walks back months periods from asOf; the outstanding
// column carries the running balance forward.
func generateTrends(rng *rand.Rand, asOf time.Time, months int) []domain.TrendPoint {
	start := utils.StartOfMonth(asOf).AddDate(0, -(months - 1), 0)
	balance := decimal.NewFromInt(int64(150000 + rng.Intn(50000)))

	points := make([]domain.TrendPoint, 0, months)
	for i := 0; i < months; i++ {
		billed := decimal.NewFromInt(int64(80000 + rng.Intn(80000)))
		rate := decimal.NewFromInt(int64(70 + rng.Intn(31))).Div(decimal.NewFromInt(100))
		collected := billed.Mul(rate).Round(2)
		balance = balance.Add(billed).Sub(collected)

		points = append(points, domain.TrendPoint{
			Period:      utils.MonthOf(start.AddDate(0, i, 0)),
			Billed:      billed,
			Collected:   collected,
			Outstanding: balance,
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Period < points[j].Period })
	return points
}
