package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/seolhyebom/megaticket-sub001/internal/domain/reservation"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/seat"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/showtime"
)

type reservationRow struct {
	ID               string    `db:"id"`
	UserID           string    `db:"user_id"`
	PerformanceID    string    `db:"performance_id"`
	PerformanceTitle string    `db:"performance_title"`
	Venue            string    `db:"venue"`
	Date             string    `db:"date"`
	Time             string    `db:"time"`
	TotalPrice       int       `db:"total_price"`
	Status           string    `db:"status"`
	CreatedAt        time.Time `db:"created_at"`
}

type reservationSeatRow struct {
	ReservationID string `db:"reservation_id"`
	SeatID        string `db:"seat_id"`
	Section       string `db:"section"`
	Row           string `db:"row"`
	Grade         string `db:"grade"`
	Price         int    `db:"price"`
}

// ReservationStore はPostgreSQLを使用した予約ストア
// 予約本体と、カタログ変更後も残す座席スナップショットを別テーブルで保持する
type ReservationStore struct{ db *sqlx.DB }

func NewReservationStore(db *sqlx.DB) *ReservationStore {
	return &ReservationStore{db: db}
}

func (s *ReservationStore) Append(ctx context.Context, res *reservation.Reservation) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO reservations (id, user_id, performance_id, performance_title, venue, date, time, total_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := tx.ExecContext(ctx, query,
		res.ID, res.UserID, res.Showtime.PerformanceID, res.PerformanceTitle, res.Venue,
		res.Showtime.Date, res.Showtime.Time, res.TotalPrice, string(res.Status), res.CreatedAt,
	); err != nil {
		return fmt.Errorf("予約作成に失敗: %w", err)
	}

	for _, se := range res.Seats {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reservation_seats (reservation_id, seat_id, section, row, grade, price) VALUES ($1, $2, $3, $4, $5, $6)`,
			res.ID, se.ID, se.Section, se.Row, se.Grade, se.Price,
		); err != nil {
			return fmt.Errorf("予約座席の保存に失敗: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}

func (s *ReservationStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT id, user_id, performance_id, performance_title, venue, date, time, total_price, status, created_at
		FROM reservations WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := s.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}

	result := make([]*reservation.Reservation, len(rows))
	for i, row := range rows {
		seats, err := s.getSeats(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		result[i] = toEntity(&row, seats)
	}
	return result, nil
}

func (s *ReservationStore) ListSeatIDs(ctx context.Context, key showtime.Key) ([]string, error) {
	var seatIDs []string
	query := `SELECT rs.seat_id FROM reservation_seats rs
		JOIN reservations r ON r.id = rs.reservation_id
		WHERE r.performance_id = $1 AND r.date = $2 AND r.time = $3`
	if err := s.db.SelectContext(ctx, &seatIDs, query, key.PerformanceID, key.Date, key.Time); err != nil {
		return nil, fmt.Errorf("予約済み座席の取得に失敗: %w", err)
	}
	return seatIDs, nil
}

func (s *ReservationStore) getSeats(ctx context.Context, reservationID string) ([]seat.Seat, error) {
	var rows []reservationSeatRow
	query := `SELECT reservation_id, seat_id, section, row, grade, price FROM reservation_seats WHERE reservation_id = $1 ORDER BY seat_id`
	if err := s.db.SelectContext(ctx, &rows, query, reservationID); err != nil {
		return nil, fmt.Errorf("予約座席の取得に失敗: %w", err)
	}
	seats := make([]seat.Seat, len(rows))
	for i, row := range rows {
		seats[i] = seat.Seat{ID: row.SeatID, Section: row.Section, Row: row.Row, Grade: row.Grade, Price: row.Price}
	}
	return seats, nil
}

func toEntity(row *reservationRow, seats []seat.Seat) *reservation.Reservation {
	return &reservation.Reservation{
		ID:               row.ID,
		UserID:           row.UserID,
		Showtime:         showtime.NewKey(row.PerformanceID, row.Date, row.Time),
		PerformanceTitle: row.PerformanceTitle,
		Venue:            row.Venue,
		Seats:            seats,
		TotalPrice:       row.TotalPrice,
		Status:           reservation.Status(row.Status),
		CreatedAt:        row.CreatedAt,
	}
}

var _ reservation.Store = (*ReservationStore)(nil)
