package seat

// Status は公演回ごとの座席の状態を表す
// 状態は保存されず、有効な仮押さえと確定予約から都度導出される
type Status string

const (
	StatusAvailable Status = "available"
	StatusHolding   Status = "holding"
	StatusReserved  Status = "reserved"
)

// Seat は座席を表す
// 座席定義は公演カタログが所有し、予約エンジンは読み取りのみ行う
type Seat struct {
	ID      string // 公演回内で一意な座席ID（例: A-1-1）
	Section string
	Row     string
	Grade   string
	Price   int
	PosX    int // 座席マップ表示用の座標（任意）
	PosY    int
}

// Validate は座席定義の検証を行う
func (s *Seat) Validate() error {
	if s.ID == "" {
		return ErrSeatIDRequired
	}
	if s.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}
