package memory

import (
	"context"
	"sync"
	"time"

	"github.com/seolhyebom/megaticket-sub001/internal/domain/hold"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/showtime"
)

// HoldStore はインメモリの仮押さえストア
// ID引きと公演回キー引きの二重インデックスを持つ
// 各メソッドは単体でスレッドセーフだが、チェックと挿入の複合操作の原子性は
// 呼び出し側（HoldingService）の公演回キー単位の排他区間が保証する
type HoldStore struct {
	mu    sync.RWMutex
	byID  map[string]*hold.Hold
	byKey map[string]map[string]*hold.Hold // 公演回キー -> 仮押さえID -> 仮押さえ
}

// NewHoldStore は新しいHoldStoreを作成する
func NewHoldStore() *HoldStore {
	return &HoldStore{
		byID:  make(map[string]*hold.Hold),
		byKey: make(map[string]map[string]*hold.Hold),
	}
}

func (s *HoldStore) Insert(ctx context.Context, h *hold.Hold) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[h.ID] = h
	key := h.Showtime.String()
	if s.byKey[key] == nil {
		s.byKey[key] = make(map[string]*hold.Hold)
	}
	s.byKey[key][h.ID] = h
	return nil
}

func (s *HoldStore) Get(ctx context.Context, id string) (*hold.Hold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.byID[id]
	if !ok {
		return nil, hold.ErrHoldNotFound
	}
	return h, nil
}

func (s *HoldStore) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id), nil
}

func (s *HoldStore) removeLocked(id string) bool {
	h, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	key := h.Showtime.String()
	delete(s.byKey[key], id)
	if len(s.byKey[key]) == 0 {
		delete(s.byKey, key)
	}
	return true
}

func (s *HoldStore) FindConflicts(ctx context.Context, key showtime.Key, seatIDs []string, now time.Time) ([]string, error) {
	requested := make(map[string]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		requested[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	conflicts := make([]string, 0)
	for _, h := range s.byKey[key.String()] {
		if h.IsExpired(now) {
			continue
		}
		for _, seatID := range h.SeatIDs {
			if _, ok := requested[seatID]; ok {
				conflicts = append(conflicts, seatID)
			}
		}
	}
	return hold.NormalizeSeatIDs(conflicts), nil
}

func (s *HoldStore) ListActive(ctx context.Context, key showtime.Key, now time.Time) ([]*hold.Hold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	holds := make([]*hold.Hold, 0)
	for _, h := range s.byKey[key.String()] {
		if h.IsExpired(now) {
			continue
		}
		holds = append(holds, h)
	}
	return holds, nil
}

func (s *HoldStore) SweepExpired(ctx context.Context, key showtime.Key, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, h := range s.byKey[key.String()] {
		if h.IsExpired(now) {
			s.removeLocked(id)
			removed++
		}
	}
	return removed, nil
}

func (s *HoldStore) SweepAllExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, h := range s.byID {
		if h.IsExpired(now) {
			s.removeLocked(id)
			removed++
		}
	}
	return removed, nil
}

var _ hold.Store = (*HoldStore)(nil)
