package handler

import (
	"errors"

	"github.com/seolhyebom/megaticket-sub001/internal/domain/hold"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/performance"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/seat"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/showtime"
)

// validationErrors は入力不備に起因するドメイン検証エラーの一覧
// ここに含まれないエラーはストレージ障害などの内部エラーとして500で返す
var validationErrors = []error{
	hold.ErrUserIDRequired,
	hold.ErrSeatIDsRequired,
	showtime.ErrPerformanceIDRequired,
	showtime.ErrDateRequired,
	showtime.ErrInvalidDate,
	showtime.ErrTimeRequired,
	showtime.ErrInvalidTime,
	performance.ErrTitleRequired,
	performance.ErrVenueRequired,
	performance.ErrDatesRequired,
	performance.ErrTimesRequired,
	seat.ErrSeatIDRequired,
	seat.ErrInvalidPrice,
}

// isValidationError はクライアントが入力を直せば回復できるエラーかどうかを返す
func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
