package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, cells map[string]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for axis, value := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", axis, value))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	return buf.Bytes()
}

func TestParse_CSV(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		want     []domain.Row
	}{
		{
			name:     "header keyed rows with numbers coerced",
			filename: "balances.csv",
			content:  "Customer Code,amount,note\nCUST0001,100,first\nCUST0002,250.5,\n",
			want: []domain.Row{
				{"Customer Code": "CUST0001", "amount": 100.0, "note": "first"},
				{"Customer Code": "CUST0002", "amount": 250.5},
			},
		},
		{
			name:     "blank rows are dropped",
			filename: "balances.csv",
			content:  "customer_code,amount\n,\nC1,10\n\n",
			want: []domain.Row{
				{"customer_code": "C1", "amount": 10.0},
			},
		},
		{
			name:     "semicolon delimiter and leading zero codes",
			filename: "balances.csv",
			content:  "Customer Code;account\n0042;00123\n",
			want: []domain.Row{
				{"Customer Code": "0042", "account": "00123"},
			},
		},
		{
			name:     "duplicate headers get a suffix",
			filename: "dup.csv",
			content:  "code,code,code\na,b,c\n",
			want: []domain.Row{
				{"code": "a", "code_1": "b", "code_2": "c"},
			},
		},
		{
			name:     "cells past the header are ignored",
			filename: "wide.csv",
			content:  "code\na,extra\n",
			want: []domain.Row{
				{"code": "a"},
			},
		},
		{
			name:     "header only",
			filename: "empty.csv",
			content:  "Customer Code,amount\n",
			want:     []domain.Row{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Parse(tt.filename, []byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestParse_XLSX(t *testing.T) {
	content := buildWorkbook(t, map[string]any{
		"A1": "Customer Code",
		"B1": "amount",
		"C1": "region",
		"A2": "CUST0001",
		"B2": 100,
		"C2": "North",
		"A3": "CUST0002",
		"B3": 42.75,
	})

	for _, filename := range []string{"balances.xlsx", "upload.bin"} {
		t.Run(filename, func(t *testing.T) {
			rows, err := Parse(filename, content)
			require.NoError(t, err)
			assert.Equal(t, []domain.Row{
				{"Customer Code": "CUST0001", "amount": 100.0, "region": "North"},
				{"Customer Code": "CUST0002", "amount": 42.75},
			}, rows)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		wantErr  error
	}{
		{
			name:     "xlsx extension with garbage content",
			filename: "broken.xlsx",
			content:  []byte("this is not a workbook"),
			wantErr:  ErrMalformed,
		},
		{
			name:     "truncated zip",
			filename: "broken",
			content:  []byte("PK\x03\x04garbage"),
			wantErr:  ErrMalformed,
		},
		{
			name:     "legacy xls",
			filename: "old.xls",
			content:  []byte{0xD0, 0xCF, 0x11, 0xE0},
			wantErr:  ErrUnsupportedFormat,
		},
		{
			name:     "binary without extension",
			filename: "blob",
			content:  []byte{0x01, 0x00, 0x02},
			wantErr:  ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Parse(tt.filename, tt.content)
			assert.Nil(t, rows)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCoerceCell(t *testing.T) {
	tests := map[string]any{
		"100":     100.0,
		"-12.5":   -12.5,
		"0":       0.0,
		"0.25":    0.25,
		"1e3":     1000.0,
		"007":     "007",
		"12abc":   "12abc",
		"Inf":     "Inf",
		"CUST001": "CUST001",

		"123456789012345":      123456789012345.0,
		"12345678901234567890": "12345678901234567890",
		"-1234567890123456":    "-1234567890123456",
		"0.1234567890123456":   "0.1234567890123456",
		"1.5e10":               1.5e10,
	}

	for in, want := range tests {
		assert.Equal(t, want, coerceCell(in), in)
	}
}
