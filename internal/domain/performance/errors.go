package performance

import "errors"

// Performance ドメインのエラー定義
var (
	ErrPerformanceNotFound = errors.New("公演が見つかりません")
	ErrTitleRequired       = errors.New("公演タイトルは必須です")
	ErrVenueRequired       = errors.New("会場名は必須です")
	ErrDatesRequired       = errors.New("公演日は必須です")
	ErrTimesRequired       = errors.New("開演時刻は必須です")
)
