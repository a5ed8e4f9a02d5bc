package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/receivables-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const recordsTable = "receivable_records"

// upsertRecordSuffix merges only the incoming row on conflict, leaving the
// stored uploadMonth alone unless the row carries one. xmax = 0 holds for
// freshly inserted tuples.
const upsertRecordSuffix = `
	ON CONFLICT (customer_code) DO UPDATE SET
		data = receivable_records.data || ?::jsonb,
		updated_at = CURRENT_TIMESTAMP
	RETURNING (xmax = 0) AS inserted`

type postgresRecordStore struct {
	conn *postgres.Connection
}

func NewPostgresRecordStore(conn *postgres.Connection) RecordStore {
	return &postgresRecordStore{
		conn: conn,
	}
}

func (r *postgresRecordStore) Upsert(ctx context.Context, code string, row domain.Row, month string) (bool, error) {
	return r.upsert(ctx, r.conn, code, row, month)
}

// UpsertMany runs the whole batch in one transaction.
func (r *postgresRecordStore) UpsertMany(ctx context.Context, inputs []domain.RecordInput, month string) (domain.UpsertCounts, error) {
	var counts domain.UpsertCounts

	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, in := range inputs {
			created, err := r.upsert(ctx, tx, in.CustomerCode, in.Row, month)
			if err != nil {
				return err
			}
			if created {
				counts.Created++
			} else {
				counts.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return domain.UpsertCounts{}, err
	}

	return counts, nil
}

func (r *postgresRecordStore) upsert(ctx context.Context, q postgres.Queryer, code string, row domain.Row, month string) (bool, error) {
	query, args, err := buildUpsertRecordQuery(code, row, month)
	if err != nil {
		return false, err
	}

	var inserted bool
	if err := q.QueryRowContext(ctx, query, args...).Scan(&inserted); err != nil {
		return false, fmt.Errorf("upsert record %s: %w", code, err)
	}

	return inserted, nil
}

func buildUpsertRecordQuery(code string, row domain.Row, month string) (string, []any, error) {
	created := domain.NewRecord(code, row, month)

	createdJSON, err := json.Marshal(created.Fields)
	if err != nil {
		return "", nil, fmt.Errorf("encode record %s: %w", code, err)
	}

	rowJSON, err := json.Marshal(row)
	if err != nil {
		return "", nil, fmt.Errorf("encode row %s: %w", code, err)
	}

	query, args, err := squirrel.
		Insert(recordsTable).
		Columns("customer_code", "data").
		Values(code, squirrel.Expr("?::jsonb", string(createdJSON))).
		Suffix(upsertRecordSuffix, string(rowJSON)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build upsert query: %w", err)
	}

	return query, args, nil
}

func (r *postgresRecordStore) Get(ctx context.Context, code string) (*domain.Record, error) {
	query, args, err := squirrel.
		Select("customer_code", "data").
		From(recordsTable).
		Where(squirrel.Eq{"customer_code": code}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	record, err := scanRecord(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("select record %s: %w", code, err)
	}

	return record, nil
}

// List returns records in creation order.
func (r *postgresRecordStore) List(ctx context.Context) ([]domain.Record, error) {
	query, args, err := squirrel.
		Select("customer_code", "data").
		From(recordsTable).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}

func (r *postgresRecordStore) Count(ctx context.Context) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From(recordsTable).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var count int
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}

	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*domain.Record, error) {
	var (
		code string
		data []byte
	)
	if err := s.Scan(&code, &data); err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	return &domain.Record{CustomerCode: code, Fields: fields}, nil
}
