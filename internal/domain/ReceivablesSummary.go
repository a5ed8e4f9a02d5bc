package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmountFields are the columns summed as outstanding amounts.
var AmountFields = []string{"amount", "Amount", "balance", "Balance", "outstanding"}

// ReceivablesSummary aggregates the uploaded records.
type ReceivablesSummary struct {
	RecordCount   int             `json:"recordCount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CountsByMonth map[string]int  `json:"countsByMonth"`
	GeneratedAt   time.Time       `json:"generatedAt"`
}
