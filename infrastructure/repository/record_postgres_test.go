package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/receivables-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
)

func TestBuildUpsertRecordQuery(t *testing.T) {
	query, args, err := buildUpsertRecordQuery("CUST0001", domain.Row{"amount": 100.0}, "2024-01")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "INSERT INTO receivable_records (customer_code,data) VALUES ($1,$2::jsonb)"), query)
	assert.Contains(t, query, "ON CONFLICT (customer_code) DO UPDATE SET")
	assert.Contains(t, query, "data = receivable_records.data || $3::jsonb")
	assert.Contains(t, query, "RETURNING (xmax = 0) AS inserted")

	require.Len(t, args, 3)
	assert.Equal(t, "CUST0001", args[0])
	assert.JSONEq(t, `{"amount":100,"uploadMonth":"2024-01"}`, args[1].(string))
	// only the row is merged on conflict
	assert.JSONEq(t, `{"amount":100}`, args[2].(string))
}

var upsertRecordSQL = regexp.QuoteMeta("INSERT INTO receivable_records (customer_code,data) VALUES ($1,$2::jsonb)")

func newMockRecordStore(t *testing.T) (RecordStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresRecordStore(&postgres.Connection{DB: db}), mock
}

func insertedRow(inserted bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"inserted"}).AddRow(inserted)
}

func TestPostgresRecordStore_UpsertManyCounts(t *testing.T) {
	store, mock := newMockRecordStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(upsertRecordSQL).
		WithArgs("CUST0001", `{"amount":100,"uploadMonth":"2024-01"}`, `{"amount":100}`).
		WillReturnRows(insertedRow(true))
	mock.ExpectQuery(upsertRecordSQL).
		WithArgs("CUST0002", sqlmock.AnyArg(), `{"note":"x"}`).
		WillReturnRows(insertedRow(false))
	mock.ExpectQuery(upsertRecordSQL).
		WithArgs("CUST0003", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(insertedRow(true))
	mock.ExpectCommit()

	counts, err := store.UpsertMany(context.Background(), []domain.RecordInput{
		{CustomerCode: "CUST0001", Row: domain.Row{"amount": 100.0}},
		{CustomerCode: "CUST0002", Row: domain.Row{"note": "x"}},
		{CustomerCode: "CUST0003", Row: domain.Row{"amount": 5.0}},
	}, "2024-01")
	require.NoError(t, err)

	assert.Equal(t, domain.UpsertCounts{Created: 2, Updated: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecordStore_UpsertManyRollsBackOnFailure(t *testing.T) {
	store, mock := newMockRecordStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(upsertRecordSQL).
		WithArgs("CUST0001", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(insertedRow(true))
	mock.ExpectQuery(upsertRecordSQL).
		WithArgs("CUST0002", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	counts, err := store.UpsertMany(context.Background(), []domain.RecordInput{
		{CustomerCode: "CUST0001", Row: domain.Row{"amount": 1.0}},
		{CustomerCode: "CUST0002", Row: domain.Row{"amount": 2.0}},
	}, "2024-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CUST0002")

	assert.Equal(t, domain.UpsertCounts{}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecordStore_UpsertReportsUpdate(t *testing.T) {
	store, mock := newMockRecordStore(t)

	mock.ExpectQuery(upsertRecordSQL).
		WithArgs("CUST0001", sqlmock.AnyArg(), `{"amount":200}`).
		WillReturnRows(insertedRow(false))

	created, err := store.Upsert(context.Background(), "CUST0001", domain.Row{"amount": 200.0}, "2024-02")
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecordStore_GetAndList(t *testing.T) {
	store, mock := newMockRecordStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT customer_code, data FROM receivable_records WHERE customer_code = $1")).
		WithArgs("CUST0001").
		WillReturnRows(sqlmock.NewRows([]string{"customer_code", "data"}).
			AddRow("CUST0001", []byte(`{"amount":200,"uploadMonth":"2024-01"}`)))

	record, err := store.Get(context.Background(), "CUST0001")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, float64(200), record.Fields["amount"])
	assert.Equal(t, "2024-01", record.UploadMonth())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT customer_code, data FROM receivable_records WHERE customer_code = $1")).
		WithArgs("MISSING").
		WillReturnRows(sqlmock.NewRows([]string{"customer_code", "data"}))

	record, err = store.Get(context.Background(), "MISSING")
	require.NoError(t, err)
	assert.Nil(t, record)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT customer_code, data FROM receivable_records ORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"customer_code", "data"}).
			AddRow("CUST0001", []byte(`{"amount":1}`)).
			AddRow("CUST0002", []byte(`{"amount":2}`)))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "CUST0001", records[0].CustomerCode)
	assert.Equal(t, "CUST0002", records[1].CustomerCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
