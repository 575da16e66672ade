package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/seolhyebom/megaticket-sub001/internal/domain/performance"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/seat"
)

// PerformanceRepository はインメモリの公演カタログリポジトリ
// DBなしの開発・テスト構成で使う
type PerformanceRepository struct {
	mu    sync.RWMutex
	byID  map[string]*performance.Performance
	seats map[string][]seat.Seat
}

// NewPerformanceRepository は新しいPerformanceRepositoryを作成する
func NewPerformanceRepository() *PerformanceRepository {
	return &PerformanceRepository{
		byID:  make(map[string]*performance.Performance),
		seats: make(map[string][]seat.Seat),
	}
}

func (r *PerformanceRepository) Create(ctx context.Context, p *performance.Performance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[p.ID] = p
	return nil
}

func (r *PerformanceRepository) GetByID(ctx context.Context, id string) (*performance.Performance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, performance.ErrPerformanceNotFound
	}
	return p, nil
}

func (r *PerformanceRepository) List(ctx context.Context, limit, offset int) ([]*performance.Performance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*performance.Performance, 0, len(r.byID))
	for _, p := range r.byID {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []*performance.Performance{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *PerformanceRepository) CreateSeats(ctx context.Context, performanceID string, seats []seat.Seat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[performanceID]; !ok {
		return performance.ErrPerformanceNotFound
	}
	r.seats[performanceID] = append(r.seats[performanceID], seats...)
	return nil
}

func (r *PerformanceRepository) GetSeats(ctx context.Context, performanceID string) ([]seat.Seat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seats := r.seats[performanceID]
	result := make([]seat.Seat, len(seats))
	copy(result, seats)
	return result, nil
}

var _ performance.Repository = (*PerformanceRepository)(nil)
