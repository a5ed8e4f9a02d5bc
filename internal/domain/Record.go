package domain

import (
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Column names the customer code may be read from, in lookup order.
const (
	CustomerCodeHeader    = "Customer Code"
	CustomerCodeAltHeader = "customer_code"
)

// UploadMonthField is the field the period label is stored under.
const UploadMonthField = "uploadMonth"

// Row is one spreadsheet row keyed by header name.
type Row map[string]any

// Record is the latest uploaded data of one customer.
type Record struct {
	CustomerCode string
	Fields       map[string]any
}

// RecordInput is a keyed row waiting to be upserted.
type RecordInput struct {
	CustomerCode string
	Row          Row
}

// NewRecord builds the stored form of a first-seen row. The period label
// is attached here and only here.
func NewRecord(code string, row Row, month string) Record {
	fields := make(map[string]any, len(row)+1)
	for k, v := range row {
		fields[k] = v
	}
	fields[UploadMonthField] = month

	return Record{CustomerCode: code, Fields: fields}
}

// Merge overlays row onto the record; the row wins on key collision.
func (r *Record) Merge(row Row) {
	if r.Fields == nil {
		r.Fields = make(map[string]any, len(row))
	}
	for k, v := range row {
		r.Fields[k] = v
	}
}

func (r Record) Clone() Record {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return Record{CustomerCode: r.CustomerCode, Fields: fields}
}

func (r Record) UploadMonth() string {
	month, _ := r.Fields[UploadMonthField].(string)
	return month
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.Fields)
}

// CustomerCodeOf returns the upsert key of row. Blank values fall through
// to the next header spelling.
func CustomerCodeOf(row Row) (string, bool) {
	for _, header := range []string{CustomerCodeHeader, CustomerCodeAltHeader} {
		value, ok := row[header]
		if !ok {
			continue
		}
		if code := keyString(value); code != "" {
			return code, true
		}
	}
	return "", false
}

func keyString(v any) string {
	switch k := v.(type) {
	case string:
		return strings.TrimSpace(k)
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64)
	case int:
		return strconv.Itoa(k)
	case int64:
		return strconv.FormatInt(k, 10)
	default:
		return ""
	}
}
