package reservation

import (
	"context"

	"github.com/seolhyebom/megaticket-sub001/internal/domain/showtime"
)

// Store は予約ストアのインターフェース
// エンジンからは追記専用で、予約の作成はConfirmReservation経由に限られる
type Store interface {
	// Append は確定予約を追加する
	Append(ctx context.Context, r *Reservation) error

	// ListByUser はユーザーの予約一覧を新しい順で返す
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Reservation, error)

	// ListSeatIDs は公演回キーの予約済み座席ID一覧を返す
	// 競合チェックと座席状態マップの導出に使う
	ListSeatIDs(ctx context.Context, key showtime.Key) ([]string, error)
}
