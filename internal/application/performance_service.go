package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/seolhyebom/megaticket-sub001/internal/domain/performance"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/seat"
)

// PerformanceService は公演カタログを提供する
type PerformanceService struct {
	repo performance.Repository
}

func NewPerformanceService(repo performance.Repository) *PerformanceService {
	return &PerformanceService{repo: repo}
}

type CreatePerformanceInput struct {
	Title       string
	Description string
	Venue       string
	Dates       []string
	Times       []string
}

func (s *PerformanceService) CreatePerformance(ctx context.Context, input CreatePerformanceInput) (*performance.Performance, error) {
	p := performance.New(input.Title, input.Description, input.Venue, input.Dates, input.Times)
	p.ID = uuid.New().String()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PerformanceService) GetPerformance(ctx context.Context, id string) (*performance.Performance, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PerformanceService) ListPerformances(ctx context.Context, limit, offset int) ([]*performance.Performance, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, limit, offset)
}

type CreateSeatsInput struct {
	PerformanceID string
	Section       string
	Rows          int
	SeatsPerRow   int
	Grade         string
	Price         int
}

// CreateSeats は区画・行・列の指定から座席を一括生成する
// 座席IDは「区画-行-列」形式（例: A-1-1）になる
func (s *PerformanceService) CreateSeats(ctx context.Context, input CreateSeatsInput) ([]seat.Seat, error) {
	if _, err := s.repo.GetByID(ctx, input.PerformanceID); err != nil {
		return nil, fmt.Errorf("公演取得に失敗: %w", err)
	}

	seats := make([]seat.Seat, 0, input.Rows*input.SeatsPerRow)
	for row := 1; row <= input.Rows; row++ {
		for col := 1; col <= input.SeatsPerRow; col++ {
			se := seat.Seat{
				ID:      fmt.Sprintf("%s-%d-%d", input.Section, row, col),
				Section: input.Section,
				Row:     fmt.Sprintf("%d", row),
				Grade:   input.Grade,
				Price:   input.Price,
				PosX:    col,
				PosY:    row,
			}
			if err := se.Validate(); err != nil {
				return nil, err
			}
			seats = append(seats, se)
		}
	}
	if err := s.repo.CreateSeats(ctx, input.PerformanceID, seats); err != nil {
		return nil, err
	}
	return seats, nil
}

func (s *PerformanceService) GetSeats(ctx context.Context, performanceID string) ([]seat.Seat, error) {
	return s.repo.GetSeats(ctx, performanceID)
}
