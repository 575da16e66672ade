package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatIDRequired = errors.New("座席IDは必須です")
	ErrInvalidPrice   = errors.New("価格は0以上である必要があります")
)
