package handler

import (
	"context"

	"github.com/seolhyebom/megaticket-sub001/internal/application"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/performance"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/reservation"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/seat"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/showtime"
)

// HoldingServiceInterface は仮押さえサービスのインターフェース
type HoldingServiceInterface interface {
	CreateHolding(ctx context.Context, input application.CreateHoldingInput) (*application.CreateHoldingResult, error)
	ReleaseHolding(ctx context.Context, holdingID string) (bool, error)
	ConfirmReservation(ctx context.Context, holdingID, performanceTitle, venue string) (*reservation.Reservation, error)
	GetSeatStatusMap(ctx context.Context, key showtime.Key) (map[string]seat.Status, error)
	GetUserReservations(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error)
}

// PerformanceServiceInterface は公演カタログサービスのインターフェース
type PerformanceServiceInterface interface {
	CreatePerformance(ctx context.Context, input application.CreatePerformanceInput) (*performance.Performance, error)
	GetPerformance(ctx context.Context, id string) (*performance.Performance, error)
	ListPerformances(ctx context.Context, limit, offset int) ([]*performance.Performance, error)
	CreateSeats(ctx context.Context, input application.CreateSeatsInput) ([]seat.Seat, error)
	GetSeats(ctx context.Context, performanceID string) ([]seat.Seat, error)
}
