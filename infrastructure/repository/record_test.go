package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/receivables-dashboard-api/internal/config"
	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
)

func TestMemoryRecordStore_Upsert(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setup      func(store RecordStore)
		code       string
		row        domain.Row
		month      string
		wantCreate bool
		wantFields map[string]any
	}{
		{
			name:       "unseen key creates a record with the month attached",
			code:       "CUST0001",
			row:        domain.Row{"Customer Code": "CUST0001", "amount": 100.0},
			month:      "2024-01",
			wantCreate: true,
			wantFields: map[string]any{"Customer Code": "CUST0001", "amount": 100.0, "uploadMonth": "2024-01"},
		},
		{
			name: "seen key merges and keeps absent fields",
			setup: func(store RecordStore) {
				_, _ = store.Upsert(ctx, "CUST0001", domain.Row{"Customer Code": "CUST0001", "amount": 100.0, "region": "North"}, "2024-01")
			},
			code:       "CUST0001",
			row:        domain.Row{"Customer Code": "CUST0001", "amount": 200.0, "note": "x"},
			month:      "2024-02",
			wantCreate: false,
			wantFields: map[string]any{
				"Customer Code": "CUST0001",
				"amount":        200.0,
				"note":          "x",
				"region":        "North",
				"uploadMonth":   "2024-01",
			},
		},
		{
			name: "row carrying uploadMonth overrides the stored tag",
			setup: func(store RecordStore) {
				_, _ = store.Upsert(ctx, "C9", domain.Row{"customer_code": "C9"}, "2024-01")
			},
			code:       "C9",
			row:        domain.Row{"customer_code": "C9", "uploadMonth": "2023-12"},
			month:      "2024-03",
			wantCreate: false,
			wantFields: map[string]any{"customer_code": "C9", "uploadMonth": "2023-12"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryRecordStore()
			if tt.setup != nil {
				tt.setup(store)
			}

			created, err := store.Upsert(ctx, tt.code, tt.row, tt.month)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreate, created)

			record, err := store.Get(ctx, tt.code)
			require.NoError(t, err)
			require.NotNil(t, record)
			assert.Equal(t, tt.wantFields, record.Fields)

			count, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	}
}

func TestMemoryRecordStore_UpsertMany(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRecordStore()

	counts, err := store.UpsertMany(ctx, []domain.RecordInput{
		{CustomerCode: "A", Row: domain.Row{"customer_code": "A", "amount": 1.0}},
		{CustomerCode: "B", Row: domain.Row{"customer_code": "B", "amount": 2.0}},
		{CustomerCode: "A", Row: domain.Row{"customer_code": "A", "amount": 3.0}},
	}, "2024-05")
	require.NoError(t, err)
	assert.Equal(t, domain.UpsertCounts{Created: 2, Updated: 1}, counts)

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].CustomerCode)
	assert.Equal(t, "B", records[1].CustomerCode)
	assert.Equal(t, 3.0, records[0].Fields["amount"])
}

func TestMemoryRecordStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRecordStore()

	_, err := store.Upsert(ctx, "A", domain.Row{"amount": 1.0}, "2024-01")
	require.NoError(t, err)

	record, err := store.Get(ctx, "A")
	require.NoError(t, err)
	record.Fields["amount"] = 999.0

	again, err := store.Get(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 1.0, again.Fields["amount"])
}

func TestMemoryRecordStore_GetUnknown(t *testing.T) {
	record, err := NewMemoryRecordStore().Get(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, record)
}

func TestMemoryRecordStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryRecordStore().Upsert(ctx, "A", domain.Row{}, "2024-01")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryRecordStore_ConcurrentUpsertsKeepEveryField(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRecordStore()

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			field := fmt.Sprintf("field_%d", i)
			_, err := store.Upsert(ctx, "SHARED", domain.Row{field: float64(i)}, "2024-01")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	record, err := store.Get(ctx, "SHARED")
	require.NoError(t, err)
	for i := 0; i < writers; i++ {
		assert.Equal(t, float64(i), record.Fields[fmt.Sprintf("field_%d", i)])
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOpen_Memory(t *testing.T) {
	stores, err := Open(context.Background(), &config.Config{Store: config.Store{Driver: config.StoreDriverMemory}})
	require.NoError(t, err)
	defer stores.Close()

	assert.NotNil(t, stores.Records)
	assert.NotNil(t, stores.Notifications)

	_, err = Open(context.Background(), &config.Config{Store: config.Store{Driver: "mongo"}})
	assert.Error(t, err)
}
