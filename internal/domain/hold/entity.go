package hold

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/seolhyebom/megaticket-sub001/internal/domain/showtime"
)

// Hold は仮押さえエンティティを表す
// 1ユーザーが1公演回の座席集合を一定時間だけ排他的に確保する
// 有効な仮押さえ同士は同一公演回キーにおいて座席集合が重ならないこと（不変条件）
type Hold struct {
	ID        string
	Showtime  showtime.Key
	UserID    string
	SeatIDs   []string // 正規化済み（重複排除・昇順ソート）
	CreatedAt time.Time
	ExpiresAt time.Time
}

// New は新しい仮押さえを作成する
func New(key showtime.Key, userID string, seatIDs []string, duration time.Duration) *Hold {
	now := time.Now()
	return &Hold{
		ID:        uuid.New().String(),
		Showtime:  key,
		UserID:    userID,
		SeatIDs:   NormalizeSeatIDs(seatIDs),
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	}
}

// IsExpired は仮押さえが期限切れかを返す（now >= ExpiresAt で期限切れ）
func (h *Hold) IsExpired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

// RemainingSeconds は有効期限までの残り秒数を返す（期限切れなら0）
func (h *Hold) RemainingSeconds(now time.Time) int {
	if h.IsExpired(now) {
		return 0
	}
	return int(h.ExpiresAt.Sub(now).Seconds())
}

// Validate は仮押さえの検証を行う
func (h *Hold) Validate() error {
	if err := h.Showtime.Validate(); err != nil {
		return err
	}
	if h.UserID == "" {
		return ErrUserIDRequired
	}
	if len(h.SeatIDs) == 0 {
		return ErrSeatIDsRequired
	}
	return nil
}

// NormalizeSeatIDs は座席ID集合を正規化する
// 重複と空要素を除去し昇順にソートする（集合として扱うため順序は意味を持たない）
func NormalizeSeatIDs(seatIDs []string) []string {
	seen := make(map[string]struct{}, len(seatIDs))
	result := make([]string, 0, len(seatIDs))
	for _, id := range seatIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}
