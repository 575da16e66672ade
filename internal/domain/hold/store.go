package hold

import (
	"context"
	"time"

	"github.com/seolhyebom/megaticket-sub001/internal/domain/showtime"
)

// Store は仮押さえストアのインターフェース
// 仮押さえの生成・削除はHoldingServiceの排他区間内からのみ呼び出されること
type Store interface {
	// Insert は仮押さえを無条件に挿入する
	// 競合チェックは呼び出し側が同一排他区間内で事前に行う
	Insert(ctx context.Context, h *Hold) error

	// Get はIDから仮押さえを取得する（存在しなければErrHoldNotFound）
	Get(ctx context.Context, id string) (*Hold, error)

	// Remove は仮押さえを削除し、削除が行われたかを返す（冪等）
	Remove(ctx context.Context, id string) (bool, error)

	// FindConflicts は公演回キーの有効な仮押さえと要求座席集合の積を返す
	FindConflicts(ctx context.Context, key showtime.Key, seatIDs []string, now time.Time) ([]string, error)

	// ListActive は公演回キーの有効な仮押さえ一覧を返す
	ListActive(ctx context.Context, key showtime.Key, now time.Time) ([]*Hold, error)

	// SweepExpired は公演回キーの期限切れ仮押さえを削除し、削除件数を返す
	SweepExpired(ctx context.Context, key showtime.Key, now time.Time) (int, error)

	// SweepAllExpired は全公演回の期限切れ仮押さえを削除し、削除件数を返す
	SweepAllExpired(ctx context.Context, now time.Time) (int, error)
}
