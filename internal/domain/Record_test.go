package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord_AttachesMonthWithoutMutatingRow(t *testing.T) {
	row := Row{"Customer Code": "C1", "amount": 10.0}

	record := NewRecord("C1", row, "2024-01")

	assert.Equal(t, "C1", record.CustomerCode)
	assert.Equal(t, "2024-01", record.UploadMonth())
	assert.Equal(t, 10.0, record.Fields["amount"])
	assert.NotContains(t, row, UploadMonthField)
}

func TestRecord_MergeOverlaysRowAndKeepsMonth(t *testing.T) {
	record := NewRecord("C1", Row{"amount": 10.0, "region": "North"}, "2024-01")

	record.Merge(Row{"amount": 25.0, "status": "late"})

	assert.Equal(t, 25.0, record.Fields["amount"])
	assert.Equal(t, "North", record.Fields["region"])
	assert.Equal(t, "late", record.Fields["status"])
	assert.Equal(t, "2024-01", record.UploadMonth())
}

func TestRecord_CloneIsIndependent(t *testing.T) {
	record := NewRecord("C1", Row{"amount": 10.0}, "2024-01")

	clone := record.Clone()
	clone.Fields["amount"] = 99.0

	assert.Equal(t, 10.0, record.Fields["amount"])
}

func TestRecord_MarshalJSONFlattensFields(t *testing.T) {
	out, err := json.Marshal(NewRecord("C1", Row{"Customer Code": "C1"}, "2024-02"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Customer Code":"C1","uploadMonth":"2024-02"}`, string(out))

	out, err = json.Marshal(Record{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(out))
}

func TestCustomerCodeOf(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want string
		ok   bool
	}{
		{"primary header", Row{"Customer Code": "C1"}, "C1", true},
		{"alternate header", Row{"customer_code": "C2"}, "C2", true},
		{"primary wins", Row{"Customer Code": "C1", "customer_code": "C2"}, "C1", true},
		{"blank primary falls through", Row{"Customer Code": "  ", "customer_code": "C2"}, "C2", true},
		{"trimmed", Row{"Customer Code": " C3 "}, "C3", true},
		{"numeric code", Row{"Customer Code": 1001.0}, "1001", true},
		{"int code", Row{"customer_code": 7}, "7", true},
		{"missing", Row{"amount": 1.0}, "", false},
		{"unsupported type", Row{"Customer Code": true}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := CustomerCodeOf(tt.row)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestAgingBucketFor(t *testing.T) {
	cases := map[int]string{
		-5:  AgingCurrent,
		0:   AgingCurrent,
		1:   Aging1To30,
		30:  Aging1To30,
		31:  Aging31To60,
		60:  Aging31To60,
		61:  Aging61To90,
		90:  Aging61To90,
		91:  AgingOver90,
		400: AgingOver90,
	}
	for days, want := range cases {
		assert.Equal(t, want, AgingBucketFor(days), "days=%d", days)
	}
}

func TestInvoice_OutstandingAndDaysOverdue(t *testing.T) {
	due := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	invoice := Invoice{
		DueDate:    due,
		Amount:     decimal.NewFromInt(1000),
		PaidAmount: decimal.NewFromInt(250),
	}

	assert.True(t, decimal.NewFromInt(750).Equal(invoice.Outstanding()))
	assert.Equal(t, 0, invoice.DaysOverdue(due))
	assert.Equal(t, 10, invoice.DaysOverdue(due.AddDate(0, 0, 10)))
}

func TestInvoiceStatus_Valid(t *testing.T) {
	assert.True(t, InvoiceStatusOverdue.Valid())
	assert.False(t, InvoiceStatus("cancelled").Valid())
}

func TestRoleName(t *testing.T) {
	assert.Equal(t, "manager", RoleName(RoleManager))
	assert.Equal(t, "unknown", RoleName(42))
}
