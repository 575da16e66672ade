package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seolhyebom/megaticket-sub001/internal/config"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/hold"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/performance"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/reservation"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/seat"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/showtime"
	redisinfra "github.com/seolhyebom/megaticket-sub001/internal/infrastructure/redis"
	"github.com/seolhyebom/megaticket-sub001/internal/pkg/keymutex"
	"github.com/seolhyebom/megaticket-sub001/internal/pkg/logger"
	"github.com/seolhyebom/megaticket-sub001/internal/pkg/metrics"
	"github.com/seolhyebom/megaticket-sub001/internal/queue"
)

// EventPublisher は予約確定イベントの発行先
type EventPublisher interface {
	PublishReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error
}

// HoldingService は仮押さえと予約のライフサイクルを唯一管理するオーケストレーター
// 「競合チェックと挿入」「期限チェックと確定」の複合操作は公演回キー単位の
// 排他区間内で実行され、有効な仮押さえ同士の座席集合の不交和を保証する
type HoldingService struct {
	holds        hold.Store
	reservations reservation.Store
	catalog      performance.Repository // 座席スナップショット用（nil可）
	keyLocks     *keymutex.KeyMutex
	lockManager  *redisinfra.LockManager // 複数プロセス構成用の分散ロック（nil可）
	statusCache  *redisinfra.StatusCache // 座席状態マップキャッシュ（nil可）
	publisher    EventPublisher          // 予約確定イベント発行（nil可）
	metrics      *metrics.Metrics        // nil可
	cfg          config.HoldingConfig
}

// NewHoldingService は新しいHoldingServiceを作成する
// catalog・lockManager・statusCache・publisher・m はnilを許容する
func NewHoldingService(
	holds hold.Store,
	reservations reservation.Store,
	catalog performance.Repository,
	lockManager *redisinfra.LockManager,
	statusCache *redisinfra.StatusCache,
	publisher EventPublisher,
	m *metrics.Metrics,
	cfg config.HoldingConfig,
) *HoldingService {
	return &HoldingService{
		holds:        holds,
		reservations: reservations,
		catalog:      catalog,
		keyLocks:     keymutex.New(),
		lockManager:  lockManager,
		statusCache:  statusCache,
		publisher:    publisher,
		metrics:      m,
		cfg:          cfg,
	}
}

type CreateHoldingInput struct {
	PerformanceID string
	Date          string
	Time          string
	UserID        string
	SeatIDs       []string
}

type CreateHoldingResult struct {
	HoldingID        string
	ExpiresAt        time.Time
	RemainingSeconds int
}

// CreateHolding は座席集合の仮押さえを作成する
// 要求座席のいずれかが確保済みなら *hold.ConflictError を返し、仮押さえは一切作成しない
// （座席単位の部分成功はない）
func (s *HoldingService) CreateHolding(ctx context.Context, input CreateHoldingInput) (*CreateHoldingResult, error) {
	key := showtime.NewKey(input.PerformanceID, input.Date, input.Time)
	h := hold.New(key, input.UserID, input.SeatIDs, s.cfg.Duration)
	if err := h.Validate(); err != nil {
		s.countHolding("validation_error")
		return nil, err
	}

	release, err := s.acquireDistributedLock(ctx, key)
	if err != nil {
		s.countHolding("error")
		return nil, err
	}
	defer release()

	s.keyLocks.Lock(key.String())
	defer s.keyLocks.Unlock(key.String())

	now := time.Now()
	if err := s.sweepKey(ctx, key, now); err != nil {
		s.countHolding("error")
		return nil, err
	}

	conflicts, err := s.findConflicts(ctx, key, h.SeatIDs, now)
	if err != nil {
		s.countHolding("error")
		return nil, err
	}
	if len(conflicts) > 0 {
		s.countHolding("conflict")
		return nil, hold.NewConflictError(conflicts)
	}

	if err := s.holds.Insert(ctx, h); err != nil {
		s.countHolding("error")
		return nil, fmt.Errorf("仮押さえ作成に失敗: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ActiveHolds.Inc()
	}
	s.invalidateStatusCache(ctx, key)
	s.countHolding("success")

	return &CreateHoldingResult{
		HoldingID:        h.ID,
		ExpiresAt:        h.ExpiresAt,
		RemainingSeconds: h.RemainingSeconds(now),
	}, nil
}

// ReleaseHolding は仮押さえを解放する
// 存在しない場合はfalseを返すがエラーにはしない（二重解放は失敗ではない）
func (s *HoldingService) ReleaseHolding(ctx context.Context, holdingID string) (bool, error) {
	h, err := s.holds.Get(ctx, holdingID)
	if err != nil {
		if errors.Is(err, hold.ErrHoldNotFound) {
			return false, nil
		}
		return false, err
	}

	key := h.Showtime
	s.keyLocks.Lock(key.String())
	defer s.keyLocks.Unlock(key.String())

	removed, err := s.holds.Remove(ctx, holdingID)
	if err != nil {
		return false, err
	}
	if removed {
		if s.metrics != nil {
			s.metrics.ActiveHolds.Dec()
		}
		s.invalidateStatusCache(ctx, key)
	}
	return removed, nil
}

// ConfirmReservation は仮押さえを消費して確定予約を作成する
// 仮押さえが存在しないか期限切れの場合、座席の排他確保は保証されないため
// クライアントは座席選択からやり直す必要がある
func (s *HoldingService) ConfirmReservation(ctx context.Context, holdingID, performanceTitle, venue string) (*reservation.Reservation, error) {
	h, err := s.holds.Get(ctx, holdingID)
	if err != nil {
		s.countConfirmation("gone")
		return nil, err
	}
	key := h.Showtime

	release, err := s.acquireDistributedLock(ctx, key)
	if err != nil {
		s.countConfirmation("error")
		return nil, err
	}
	defer release()

	s.keyLocks.Lock(key.String())
	defer s.keyLocks.Unlock(key.String())

	// 排他区間内で取り直す（ロック待ちの間に解放・確定された可能性がある）
	h, err = s.holds.Get(ctx, holdingID)
	if err != nil {
		s.countConfirmation("gone")
		return nil, err
	}

	now := time.Now()
	if h.IsExpired(now) {
		if removed, _ := s.holds.Remove(ctx, holdingID); removed && s.metrics != nil {
			s.metrics.ActiveHolds.Dec()
		}
		s.countConfirmation("gone")
		return nil, hold.ErrHoldExpired
	}

	seats, err := s.seatSnapshots(ctx, h)
	if err != nil {
		s.countConfirmation("error")
		return nil, err
	}

	res := reservation.FromHold(h, performanceTitle, venue, seats)
	if err := res.Validate(); err != nil {
		s.countConfirmation("error")
		return nil, err
	}

	// 予約の書き込みを先に、仮押さえの削除を後に行う
	// 両者の間でクラッシュしても座席は予約済みとして見え続け、二重予約にはならない
	if err := s.reservations.Append(ctx, res); err != nil {
		s.countConfirmation("error")
		return nil, fmt.Errorf("予約の保存に失敗: %w", err)
	}
	if removed, err := s.holds.Remove(ctx, holdingID); err != nil {
		logger.Warn("消費済み仮押さえの削除に失敗",
			zap.String("holding_id", holdingID), zap.Error(err))
	} else if removed && s.metrics != nil {
		s.metrics.ActiveHolds.Dec()
	}

	s.invalidateStatusCache(ctx, key)
	s.publishConfirmed(ctx, res)
	s.countConfirmation("success")
	return res, nil
}

// GetSeatStatusMap は公演回キーの座席状態マップを導出する
// 有効な仮押さえの座席は holding、予約済みの座席は reserved になる
// どちらにも含まれない座席はマップに現れない（呼び出し側がavailableとして扱う）
func (s *HoldingService) GetSeatStatusMap(ctx context.Context, key showtime.Key) (map[string]seat.Status, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	if s.statusCache != nil {
		statuses, err := s.statusCache.Get(ctx, key)
		if err == nil {
			return statuses, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("座席状態キャッシュの取得エラー", zap.Error(err))
		}
	}

	now := time.Now()
	if err := s.sweepKey(ctx, key, now); err != nil {
		return nil, err
	}

	statuses := make(map[string]seat.Status)
	holds, err := s.holds.ListActive(ctx, key, now)
	if err != nil {
		return nil, err
	}
	var earliestExpiry time.Time
	for _, h := range holds {
		if earliestExpiry.IsZero() || h.ExpiresAt.Before(earliestExpiry) {
			earliestExpiry = h.ExpiresAt
		}
		for _, seatID := range h.SeatIDs {
			statuses[seatID] = seat.StatusHolding
		}
	}
	reservedSeats, err := s.reservations.ListSeatIDs(ctx, key)
	if err != nil {
		return nil, err
	}
	for _, seatID := range reservedSeats {
		statuses[seatID] = seat.StatusReserved
	}

	if s.statusCache != nil {
		if err := s.statusCache.Set(ctx, key, statuses, earliestExpiry, s.cfg.StatusCacheTTL); err != nil {
			logger.Warn("座席状態キャッシュの保存エラー", zap.Error(err))
		}
	}
	return statuses, nil
}

// GetUserReservations はユーザーの予約一覧を新しい順で返す
func (s *HoldingService) GetUserReservations(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	if userID == "" {
		return nil, reservation.ErrUserIDRequired
	}
	if limit <= 0 {
		limit = 20
	}
	return s.reservations.ListByUser(ctx, userID, limit, offset)
}

// SweepExpiredHolds は全公演回の期限切れ仮押さえを削除する
// 読み取り経路の遅延掃除を補完するバックグラウンドワーカーから呼ばれる
func (s *HoldingService) SweepExpiredHolds(ctx context.Context) (int, error) {
	removed, err := s.holds.SweepAllExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	s.recordSwept(removed)
	return removed, nil
}

// findConflicts は有効な仮押さえと確定予約の双方に対する要求座席の競合を返す
func (s *HoldingService) findConflicts(ctx context.Context, key showtime.Key, seatIDs []string, now time.Time) ([]string, error) {
	conflicts, err := s.holds.FindConflicts(ctx, key, seatIDs, now)
	if err != nil {
		return nil, fmt.Errorf("仮押さえの競合チェックに失敗: %w", err)
	}

	reservedSeats, err := s.reservations.ListSeatIDs(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("予約済み座席の取得に失敗: %w", err)
	}
	reserved := make(map[string]struct{}, len(reservedSeats))
	for _, id := range reservedSeats {
		reserved[id] = struct{}{}
	}
	for _, id := range seatIDs {
		if _, ok := reserved[id]; ok {
			conflicts = append(conflicts, id)
		}
	}
	return hold.NormalizeSeatIDs(conflicts), nil
}

// seatSnapshots は仮押さえ座席のスナップショットを作る
// カタログに定義があればグレード・価格を引き継ぎ、なければIDのみ保持する
func (s *HoldingService) seatSnapshots(ctx context.Context, h *hold.Hold) ([]seat.Seat, error) {
	var defined map[string]seat.Seat
	if s.catalog != nil {
		catalogSeats, err := s.catalog.GetSeats(ctx, h.Showtime.PerformanceID)
		if err != nil && !errors.Is(err, performance.ErrPerformanceNotFound) {
			return nil, fmt.Errorf("座席カタログの取得に失敗: %w", err)
		}
		defined = performance.SeatsByID(catalogSeats)
	}

	seats := make([]seat.Seat, len(h.SeatIDs))
	for i, id := range h.SeatIDs {
		if def, ok := defined[id]; ok {
			seats[i] = def
		} else {
			seats[i] = seat.Seat{ID: id}
		}
	}
	return seats, nil
}

func (s *HoldingService) sweepKey(ctx context.Context, key showtime.Key, now time.Time) error {
	removed, err := s.holds.SweepExpired(ctx, key, now)
	if err != nil {
		return fmt.Errorf("期限切れ仮押さえの掃除に失敗: %w", err)
	}
	s.recordSwept(removed)
	return nil
}

func (s *HoldingService) acquireDistributedLock(ctx context.Context, key showtime.Key) (func(), error) {
	if s.lockManager == nil {
		return func() {}, nil
	}
	start := time.Now()
	lock, err := s.lockManager.AcquireLockWithRetry(ctx, key.String(), 10*time.Second, 3, 100*time.Millisecond)
	if s.metrics != nil {
		status := "success"
		if err != nil {
			status = "failed"
		}
		s.metrics.DistributedLockDuration.WithLabelValues("acquire", status).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if errors.Is(err, redisinfra.ErrLockNotAcquired) {
			return nil, fmt.Errorf("公演回が他のリクエストによって処理中です: %w", err)
		}
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	return func() {
		if err := lock.Release(ctx); err != nil {
			logger.Warn("分散ロックの解放に失敗", zap.Error(err))
		}
	}, nil
}

func (s *HoldingService) invalidateStatusCache(ctx context.Context, key showtime.Key) {
	if s.statusCache == nil {
		return
	}
	if err := s.statusCache.Invalidate(ctx, key); err != nil {
		logger.Warn("座席状態キャッシュの無効化エラー", zap.Error(err))
	}
}

func (s *HoldingService) publishConfirmed(ctx context.Context, res *reservation.Reservation) {
	if s.publisher == nil {
		return
	}
	ev := queue.ReservationConfirmedEvent{
		ReservationID:    res.ID,
		UserID:           res.UserID,
		PerformanceID:    res.Showtime.PerformanceID,
		PerformanceTitle: res.PerformanceTitle,
		Venue:            res.Venue,
		Date:             res.Showtime.Date,
		Time:             res.Showtime.Time,
		SeatIDs:          res.SeatIDs(),
		TotalPrice:       res.TotalPrice,
		ConfirmedAt:      res.CreatedAt.Format(time.RFC3339),
	}
	if err := s.publisher.PublishReservationConfirmed(ctx, ev); err != nil {
		logger.Warn("予約確定イベントの発行に失敗",
			zap.String("reservation_id", res.ID), zap.Error(err))
	}
}

func (s *HoldingService) countHolding(status string) {
	if s.metrics != nil {
		s.metrics.HoldingsTotal.WithLabelValues(status).Inc()
	}
}

func (s *HoldingService) countConfirmation(status string) {
	if s.metrics != nil {
		s.metrics.ConfirmationsTotal.WithLabelValues(status).Inc()
	}
}

func (s *HoldingService) recordSwept(count int) {
	if s.metrics == nil || count <= 0 {
		return
	}
	s.metrics.SweptHoldsTotal.Add(float64(count))
	s.metrics.ActiveHolds.Sub(float64(count))
}
