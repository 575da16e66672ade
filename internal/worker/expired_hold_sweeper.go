package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/seolhyebom/megaticket-sub001/internal/pkg/logger"
)

// HoldSweeper は期限切れの仮押さえを掃除するインターフェース
type HoldSweeper interface {
	SweepExpiredHolds(ctx context.Context) (int, error)
}

// ExpiredHoldSweeper は期限切れ仮押さえを定期的に掃除するワーカー
// 期限切れ処理は読み取りパスの遅延掃除が主で、このワーカーは
// アクセスのない公演回の仮押さえが残り続けるのを防ぐ補助的な役割
type ExpiredHoldSweeper struct {
	holdingService HoldSweeper
	interval       time.Duration
	stopCh         chan struct{}
	doneCh         chan struct{}
}

// NewExpiredHoldSweeper は新しいスイーパーを作成
func NewExpiredHoldSweeper(hs HoldSweeper, interval time.Duration) *ExpiredHoldSweeper {
	return &ExpiredHoldSweeper{
		holdingService: hs,
		interval:       interval,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start はスイーパーを開始
func (s *ExpiredHoldSweeper) Start(ctx context.Context) {
	logger.Info("期限切れ仮押さえスイーパー開始",
		zap.Duration("interval", s.interval),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れ仮押さえスイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("期限切れ仮押さえスイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (s *ExpiredHoldSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// sweep は期限切れの仮押さえを削除
func (s *ExpiredHoldSweeper) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("期限切れ仮押さえの掃除開始")

	count, err := s.holdingService.SweepExpiredHolds(ctx)
	if err != nil {
		log.Error("期限切れ仮押さえの掃除失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("期限切れ仮押さえを削除", zap.Int("count", count))
	} else {
		log.Debug("期限切れ仮押さえなし")
	}
}
