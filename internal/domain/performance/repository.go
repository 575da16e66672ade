package performance

import (
	"context"

	"github.com/seolhyebom/megaticket-sub001/internal/domain/seat"
)

// Repository は公演カタログリポジトリのインターフェース
type Repository interface {
	// Create は新しい公演を作成する
	Create(ctx context.Context, p *Performance) error

	// GetByID はIDから公演を取得する
	GetByID(ctx context.Context, id string) (*Performance, error)

	// List は公演一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Performance, error)

	// CreateSeats は公演の座席を一括作成する
	CreateSeats(ctx context.Context, performanceID string, seats []seat.Seat) error

	// GetSeats は公演の座席一覧を取得する
	GetSeats(ctx context.Context, performanceID string) ([]seat.Seat, error)
}
