package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/seolhyebom/megaticket-sub001/internal/domain/reservation"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/showtime"
)

// ReservationStore はインメモリの予約ストア
// ユーザーID引きと公演回キー引きの二次インデックスを持つ
type ReservationStore struct {
	mu     sync.RWMutex
	byID   map[string]*reservation.Reservation
	byUser map[string][]*reservation.Reservation
	byKey  map[string][]*reservation.Reservation
}

// NewReservationStore は新しいReservationStoreを作成する
func NewReservationStore() *ReservationStore {
	return &ReservationStore{
		byID:   make(map[string]*reservation.Reservation),
		byUser: make(map[string][]*reservation.Reservation),
		byKey:  make(map[string][]*reservation.Reservation),
	}
}

func (s *ReservationStore) Append(ctx context.Context, r *reservation.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[r.ID] = r
	s.byUser[r.UserID] = append(s.byUser[r.UserID], r)
	key := r.Showtime.String()
	s.byKey[key] = append(s.byKey[key], r)
	return nil
}

func (s *ReservationStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.byUser[userID]
	sorted := make([]*reservation.Reservation, len(all))
	copy(sorted, all)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if offset >= len(sorted) {
		return []*reservation.Reservation{}, nil
	}
	sorted = sorted[offset:]
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (s *ReservationStore) ListSeatIDs(ctx context.Context, key showtime.Key) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seatIDs := make([]string, 0)
	for _, r := range s.byKey[key.String()] {
		seatIDs = append(seatIDs, r.SeatIDs()...)
	}
	return seatIDs, nil
}

var _ reservation.Store = (*ReservationStore)(nil)
