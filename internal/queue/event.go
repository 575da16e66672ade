// Package queue はメッセージブローカーとやり取りするペイロードと発行処理を定義する
package queue

// ReservationConfirmedEvent は予約確定時に発行されるイベント
// 下流の通知・分析コンシューマがデータベースを参照せずに処理できる情報を持つ
type ReservationConfirmedEvent struct {
	ReservationID    string   `json:"reservationId"`
	UserID           string   `json:"userId"`
	PerformanceID    string   `json:"performanceId"`
	PerformanceTitle string   `json:"performanceTitle"`
	Venue            string   `json:"venue"`
	Date             string   `json:"date"`
	Time             string   `json:"time"`
	SeatIDs          []string `json:"seatIds"`
	TotalPrice       int      `json:"totalPrice"`
	ConfirmedAt      string   `json:"confirmedAt"`
}
