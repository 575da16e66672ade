package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seolhyebom/megaticket-sub001/internal/domain/performance"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/seat"
)

func TestPerformanceRepository_CreateAndGet(t *testing.T) {
	repo := NewPerformanceRepository()
	ctx := context.Background()

	p := performance.New("テスト公演", "説明", "テスト会場", []string{"2025-12-01"}, []string{"19:00"})
	p.ID = "perf-001"

	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, "perf-001")
	require.NoError(t, err)
	assert.Equal(t, "テスト公演", got.Title)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, performance.ErrPerformanceNotFound)
}

func TestPerformanceRepository_Seats(t *testing.T) {
	repo := NewPerformanceRepository()
	ctx := context.Background()

	p := performance.New("テスト公演", "", "会場", []string{"2025-12-01"}, []string{"19:00"})
	p.ID = "perf-001"
	require.NoError(t, repo.Create(ctx, p))

	seats := []seat.Seat{
		{ID: "A-1-1", Section: "A", Row: "1", Price: 12000},
		{ID: "A-1-2", Section: "A", Row: "1", Price: 12000},
	}
	require.NoError(t, repo.CreateSeats(ctx, "perf-001", seats))

	got, err := repo.GetSeats(ctx, "perf-001")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// 存在しない公演への座席作成はエラー
	err = repo.CreateSeats(ctx, "missing", seats)
	assert.ErrorIs(t, err, performance.ErrPerformanceNotFound)

	// 座席未登録の公演は空スライス
	empty, err := repo.GetSeats(ctx, "no-seats")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
