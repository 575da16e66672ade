package reservation

import "errors"

// Reservation ドメインのエラー定義
var (
	ErrReservationNotFound = errors.New("予約が見つかりません")
	ErrUserIDRequired      = errors.New("ユーザーIDは必須です")
	ErrSeatsRequired       = errors.New("座席は必須です")
)
