package reservation

import (
	"time"

	"github.com/google/uuid"

	"github.com/seolhyebom/megaticket-sub001/internal/domain/hold"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/seat"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/showtime"
)

// Status は予約の状態を表す
// このコアが生成するのは confirmed のみ（キャンセルはスコープ外）
type Status string

const (
	StatusConfirmed Status = "confirmed"
)

// Reservation は確定予約エンティティを表す
// 必ず1件の仮押さえを消費して作成され、以後は不変
// 座席はIDだけでなくスナップショットを保持し、カタログ変更後もグレード・価格が残る
type Reservation struct {
	ID               string
	UserID           string
	Showtime         showtime.Key
	PerformanceTitle string
	Venue            string
	Seats            []seat.Seat
	TotalPrice       int
	Status           Status
	CreatedAt        time.Time
}

// FromHold は仮押さえを消費して確定予約を作成する
// seats には仮押さえの座席集合と同一のスナップショットを渡すこと
func FromHold(h *hold.Hold, performanceTitle, venue string, seats []seat.Seat) *Reservation {
	total := 0
	for _, s := range seats {
		total += s.Price
	}
	return &Reservation{
		ID:               uuid.New().String(),
		UserID:           h.UserID,
		Showtime:         h.Showtime,
		PerformanceTitle: performanceTitle,
		Venue:            venue,
		Seats:            seats,
		TotalPrice:       total,
		Status:           StatusConfirmed,
		CreatedAt:        time.Now(),
	}
}

// SeatIDs は予約座席のID一覧を返す
func (r *Reservation) SeatIDs() []string {
	ids := make([]string, len(r.Seats))
	for i, s := range r.Seats {
		ids[i] = s.ID
	}
	return ids
}

// Validate は予約の検証を行う
func (r *Reservation) Validate() error {
	if r.UserID == "" {
		return ErrUserIDRequired
	}
	if err := r.Showtime.Validate(); err != nil {
		return err
	}
	if len(r.Seats) == 0 {
		return ErrSeatsRequired
	}
	return nil
}
