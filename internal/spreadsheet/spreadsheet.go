// Package spreadsheet turns the first worksheet of an uploaded file into
// header-keyed rows.
package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrMalformed         = errors.New("malformed spreadsheet")
	ErrNoWorksheet       = errors.New("workbook has no worksheet")
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

var zipMagic = []byte("PK\x03\x04")

var numericCell = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

// DetectFormat picks the reader from the file extension, falling back to
// sniffing the content.
func DetectFormat(filename string, content []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xls", ".ods", ".numbers":
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}

	if bytes.HasPrefix(content, zipMagic) {
		return FormatXLSX, nil
	}

	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return "", fmt.Errorf("%w: binary content", ErrUnsupportedFormat)
	}

	return FormatCSV, nil
}

// Parse reads the first worksheet of content. The first row names the
// fields; empty cells are omitted and fully blank rows dropped.
func Parse(filename string, content []byte) ([]domain.Row, error) {
	format, err := DetectFormat(filename, content)
	if err != nil {
		return nil, err
	}

	var table [][]string
	switch format {
	case FormatXLSX:
		table, err = readXLSX(content)
	default:
		table, err = readCSV(content)
	}
	if err != nil {
		return nil, err
	}

	return rowsFromTable(table), nil
}

func rowsFromTable(table [][]string) []domain.Row {
	rows := make([]domain.Row, 0)
	if len(table) == 0 {
		return rows
	}

	headers := headerNames(table[0])

	for _, cells := range table[1:] {
		row := make(domain.Row, len(cells))
		for i, cell := range cells {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			row[headers[i]] = coerceCell(value)
		}

		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}

	return rows
}

// headerNames trims the header row and suffixes repeated names with _1, _2…
func headerNames(cells []string) []string {
	headers := make([]string, len(cells))
	seen := make(map[string]int, len(cells))

	for i, cell := range cells {
		name := strings.TrimSpace(cell)
		if name == "" {
			continue
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "_" + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		headers[i] = name
	}

	return headers
}

// maxExactDigits is the longest digit run a float64 holds without rounding.
const maxExactDigits = 15

// coerceCell returns numeric cells as float64. Values with a leading zero
// such as account numbers stay text, as do values with more significant
// digits than a float64 can carry.
func coerceCell(value string) any {
	if !numericCell.MatchString(value) {
		return value
	}

	digits := strings.TrimPrefix(value, "-")
	if len(digits) > 1 && digits[0] == '0' && digits[1] != '.' {
		return value
	}
	if significantDigits(digits) > maxExactDigits {
		return value
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	return f
}

func significantDigits(number string) int {
	if i := strings.IndexAny(number, "eE"); i >= 0 {
		number = number[:i]
	}
	mantissa := strings.TrimLeft(strings.Replace(number, ".", "", 1), "0")
	return len(mantissa)
}
