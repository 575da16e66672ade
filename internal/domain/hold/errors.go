package hold

import (
	"errors"
	"fmt"
	"strings"
)

// Hold ドメインのエラー定義
var (
	ErrHoldNotFound    = errors.New("仮押さえが見つかりません")
	ErrHoldExpired     = errors.New("仮押さえの有効期限が切れています")
	ErrUserIDRequired  = errors.New("ユーザーIDは必須です")
	ErrSeatIDsRequired = errors.New("座席IDは必須です")
)

// ConflictError は要求座席の一部が既に確保されていることを表す
// 利用不可の座席IDを保持し、クライアントが再選択を促せるようにする
type ConflictError struct {
	UnavailableSeats []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("座席は既に確保されています: %s", strings.Join(e.UnavailableSeats, ", "))
}

// NewConflictError は競合エラーを作成する
func NewConflictError(unavailableSeats []string) *ConflictError {
	return &ConflictError{UnavailableSeats: NormalizeSeatIDs(unavailableSeats)}
}
