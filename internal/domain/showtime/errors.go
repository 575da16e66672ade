package showtime

import "errors"

// Showtime ドメインのエラー定義
var (
	ErrPerformanceIDRequired = errors.New("公演IDは必須です")
	ErrDateRequired          = errors.New("公演日は必須です")
	ErrInvalidDate           = errors.New("公演日はYYYY-MM-DD形式で指定してください")
	ErrTimeRequired          = errors.New("開演時刻は必須です")
	ErrInvalidTime           = errors.New("開演時刻はHH:MM形式で指定してください")
)
