package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/seolhyebom/megaticket-sub001/internal/domain/performance"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/seat"
)

type performanceRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Venue       string         `db:"venue"`
	Dates       pq.StringArray `db:"dates"`
	Times       pq.StringArray `db:"times"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type performanceSeatRow struct {
	PerformanceID string `db:"performance_id"`
	SeatID        string `db:"seat_id"`
	Section       string `db:"section"`
	Row           string `db:"row"`
	Grade         string `db:"grade"`
	Price         int    `db:"price"`
	PosX          int    `db:"pos_x"`
	PosY          int    `db:"pos_y"`
}

// PerformanceRepository はPostgreSQLを使用した公演カタログリポジトリ
type PerformanceRepository struct{ db *sqlx.DB }

func NewPerformanceRepository(db *sqlx.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

func (r *PerformanceRepository) Create(ctx context.Context, p *performance.Performance) error {
	query := `INSERT INTO performances (id, title, description, venue, dates, times, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Description, p.Venue,
		pq.Array(p.Dates), pq.Array(p.Times), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("公演作成に失敗: %w", err)
	}
	return nil
}

func (r *PerformanceRepository) GetByID(ctx context.Context, id string) (*performance.Performance, error) {
	var row performanceRow
	query := `SELECT id, title, description, venue, dates, times, created_at, updated_at FROM performances WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, performance.ErrPerformanceNotFound
		}
		return nil, fmt.Errorf("公演取得に失敗: %w", err)
	}
	return toPerformance(&row), nil
}

func (r *PerformanceRepository) List(ctx context.Context, limit, offset int) ([]*performance.Performance, error) {
	var rows []performanceRow
	query := `SELECT id, title, description, venue, dates, times, created_at, updated_at
		FROM performances ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("公演一覧取得に失敗: %w", err)
	}
	result := make([]*performance.Performance, len(rows))
	for i, row := range rows {
		result[i] = toPerformance(&row)
	}
	return result, nil
}

func (r *PerformanceRepository) CreateSeats(ctx context.Context, performanceID string, seats []seat.Seat) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO performance_seats (performance_id, seat_id, section, row, grade, price, pos_x, pos_y)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, se := range seats {
		if _, err := tx.ExecContext(ctx, query,
			performanceID, se.ID, se.Section, se.Row, se.Grade, se.Price, se.PosX, se.PosY,
		); err != nil {
			return fmt.Errorf("座席作成に失敗: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}

func (r *PerformanceRepository) GetSeats(ctx context.Context, performanceID string) ([]seat.Seat, error) {
	var rows []performanceSeatRow
	query := `SELECT performance_id, seat_id, section, row, grade, price, pos_x, pos_y
		FROM performance_seats WHERE performance_id = $1 ORDER BY seat_id`
	if err := r.db.SelectContext(ctx, &rows, query, performanceID); err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	seats := make([]seat.Seat, len(rows))
	for i, row := range rows {
		seats[i] = seat.Seat{
			ID:      row.SeatID,
			Section: row.Section,
			Row:     row.Row,
			Grade:   row.Grade,
			Price:   row.Price,
			PosX:    row.PosX,
			PosY:    row.PosY,
		}
	}
	return seats, nil
}

func toPerformance(row *performanceRow) *performance.Performance {
	return &performance.Performance{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Venue:       row.Venue,
		Dates:       []string(row.Dates),
		Times:       []string(row.Times),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

var _ performance.Repository = (*PerformanceRepository)(nil)
