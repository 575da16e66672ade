package performance

import (
	"time"

	"github.com/seolhyebom/megaticket-sub001/internal/domain/seat"
)

// Performance は公演エンティティを表す
// 座席レイアウトは公演単位で定義され、全公演回で共有される
type Performance struct {
	ID          string
	Title       string
	Description string
	Venue       string
	Dates       []string // YYYY-MM-DD
	Times       []string // HH:MM
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New は新しい公演を作成する
func New(title, description, venue string, dates, times []string) *Performance {
	now := time.Now()
	return &Performance{
		Title:       title,
		Description: description,
		Venue:       venue,
		Dates:       dates,
		Times:       times,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate は公演の検証を行う
func (p *Performance) Validate() error {
	if p.Title == "" {
		return ErrTitleRequired
	}
	if p.Venue == "" {
		return ErrVenueRequired
	}
	if len(p.Dates) == 0 {
		return ErrDatesRequired
	}
	if len(p.Times) == 0 {
		return ErrTimesRequired
	}
	return nil
}

// HasShowing は指定の日付・時刻の公演回が存在するかを返す
func (p *Performance) HasShowing(date, timeOfDay string) bool {
	return contains(p.Dates, date) && contains(p.Times, timeOfDay)
}

func contains(values []string, v string) bool {
	for _, item := range values {
		if item == v {
			return true
		}
	}
	return false
}

// SeatsByID は座席一覧をIDで引けるマップに変換する
func SeatsByID(seats []seat.Seat) map[string]seat.Seat {
	m := make(map[string]seat.Seat, len(seats))
	for _, s := range seats {
		m[s.ID] = s
	}
	return m
}
