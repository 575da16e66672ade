package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seolhyebom/megaticket-sub001/internal/domain/seat"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/showtime"
)

var ErrCacheMiss = errors.New("キャッシュが見つかりません")

// statusSnapshot はキャッシュされる座席状態マップと、そのマップに含まれる
// 仮押さえのうち最も早い期限を持つ
// 期限を過ぎたスナップショットは holding のまま返してはいけないためミス扱いになる
type statusSnapshot struct {
	Seats          map[string]seat.Status `json:"seats"`
	EarliestExpiry time.Time              `json:"earliestExpiry,omitempty"`
}

// StatusCache は公演回ごとの座席状態マップをキャッシュする
// 仮押さえ・解放・確定のたびに無効化されるため、TTLは短めで十分
type StatusCache struct {
	client *redis.Client
}

// NewStatusCache は新しいStatusCacheを作成する
func NewStatusCache(client *redis.Client) *StatusCache {
	return &StatusCache{client: client}
}

// Get は公演回キーの座席状態マップをキャッシュから取得する
// スナップショット内の最も早い仮押さえ期限を過ぎている場合はミスとして扱う
func (c *StatusCache) Get(ctx context.Context, key showtime.Key) (map[string]seat.Status, error) {
	data, err := c.client.Get(ctx, c.cacheKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	var snapshot statusSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("キャッシュの復元に失敗: %w", err)
	}
	if !snapshot.EarliestExpiry.IsZero() && !time.Now().Before(snapshot.EarliestExpiry) {
		return nil, ErrCacheMiss
	}
	return snapshot.Seats, nil
}

// Set は公演回キーの座席状態マップをキャッシュに保存する
// earliestExpiry にはマップに含まれる仮押さえのうち最も早い期限を渡す
// 仮押さえが1件もない場合はゼロ値でよい
func (c *StatusCache) Set(ctx context.Context, key showtime.Key, statuses map[string]seat.Status, earliestExpiry time.Time, ttl time.Duration) error {
	data, err := json.Marshal(statusSnapshot{Seats: statuses, EarliestExpiry: earliestExpiry})
	if err != nil {
		return fmt.Errorf("キャッシュの変換に失敗: %w", err)
	}
	if err := c.client.Set(ctx, c.cacheKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は公演回キーのキャッシュを無効化する
func (c *StatusCache) Invalidate(ctx context.Context, key showtime.Key) error {
	if err := c.client.Del(ctx, c.cacheKey(key)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *StatusCache) cacheKey(key showtime.Key) string {
	return fmt.Sprintf("seats:status:%s", key.String())
}
