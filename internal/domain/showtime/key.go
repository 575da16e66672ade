package showtime

import (
	"fmt"
	"time"
)

// Key は公演回を一意に識別するキー（公演ID・日付・開演時刻）
// 座席の競合チェックはこのキー単位でスコープされる
type Key struct {
	PerformanceID string
	Date          string // YYYY-MM-DD
	Time          string // HH:MM
}

// NewKey は公演回キーを作成する
func NewKey(performanceID, date, timeOfDay string) Key {
	return Key{PerformanceID: performanceID, Date: date, Time: timeOfDay}
}

// Validate は公演回キーの検証を行う
func (k Key) Validate() error {
	if k.PerformanceID == "" {
		return ErrPerformanceIDRequired
	}
	if k.Date == "" {
		return ErrDateRequired
	}
	if _, err := time.Parse("2006-01-02", k.Date); err != nil {
		return ErrInvalidDate
	}
	if k.Time == "" {
		return ErrTimeRequired
	}
	if _, err := time.Parse("15:04", k.Time); err != nil {
		return ErrInvalidTime
	}
	return nil
}

// String はロックキーやキャッシュキーに使う文字列表現を返す
func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s", k.PerformanceID, k.Date, k.Time)
}
