package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/seolhyebom/megaticket-sub001/internal/config"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/hold"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/performance"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/reservation"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/seat"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/showtime"
	"github.com/seolhyebom/megaticket-sub001/internal/infrastructure/memory"
)

// MockPerformanceRepository implements performance.Repository
type MockPerformanceRepository struct {
	mock.Mock
}

func (m *MockPerformanceRepository) Create(ctx context.Context, p *performance.Performance) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPerformanceRepository) GetByID(ctx context.Context, id string) (*performance.Performance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*performance.Performance), args.Error(1)
}

func (m *MockPerformanceRepository) List(ctx context.Context, limit, offset int) ([]*performance.Performance, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*performance.Performance), args.Error(1)
}

func (m *MockPerformanceRepository) CreateSeats(ctx context.Context, performanceID string, seats []seat.Seat) error {
	args := m.Called(ctx, performanceID, seats)
	return args.Error(0)
}

func (m *MockPerformanceRepository) GetSeats(ctx context.Context, performanceID string) ([]seat.Seat, error) {
	args := m.Called(ctx, performanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]seat.Seat), args.Error(1)
}

type testEnv struct {
	service      *HoldingService
	holds        *memory.HoldStore
	reservations *memory.ReservationStore
}

func newTestEnv(t *testing.T, catalog performance.Repository) *testEnv {
	t.Helper()
	holds := memory.NewHoldStore()
	reservations := memory.NewReservationStore()
	cfg := config.HoldingConfig{Duration: 5 * time.Minute, StatusCacheTTL: 10 * time.Second}
	service := NewHoldingService(holds, reservations, catalog, nil, nil, nil, nil, cfg)
	return &testEnv{service: service, holds: holds, reservations: reservations}
}

func createInput(seatIDs ...string) CreateHoldingInput {
	return CreateHoldingInput{
		PerformanceID: "perf-x",
		Date:          "2026-01-01",
		Time:          "19:00",
		UserID:        "user-a",
		SeatIDs:       seatIDs,
	}
}

func testKey() showtime.Key {
	return showtime.NewKey("perf-x", "2026-01-01", "19:00")
}

func TestCreateHolding(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	result, err := env.service.CreateHolding(ctx, createInput("A-1-1", "A-1-2"))

	require.NoError(t, err)
	assert.NotEmpty(t, result.HoldingID)
	assert.InDelta(t, 300, result.RemainingSeconds, 2)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), result.ExpiresAt, 2*time.Second)

	h, err := env.holds.Get(ctx, result.HoldingID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A-1-1", "A-1-2"}, h.SeatIDs)
	assert.Equal(t, "user-a", h.UserID)
}

func TestCreateHolding_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		input       CreateHoldingInput
		expectedErr error
	}{
		{
			name:        "座席未選択",
			input:       createInput(),
			expectedErr: hold.ErrSeatIDsRequired,
		},
		{
			name: "ユーザーID未指定",
			input: CreateHoldingInput{
				PerformanceID: "perf-x", Date: "2026-01-01", Time: "19:00",
				SeatIDs: []string{"A-1-1"},
			},
			expectedErr: hold.ErrUserIDRequired,
		},
		{
			name: "公演ID未指定",
			input: CreateHoldingInput{
				Date: "2026-01-01", Time: "19:00", UserID: "user-a",
				SeatIDs: []string{"A-1-1"},
			},
			expectedErr: showtime.ErrPerformanceIDRequired,
		},
		{
			name: "公演日の形式不正",
			input: CreateHoldingInput{
				PerformanceID: "perf-x", Date: "Jan 1", Time: "19:00", UserID: "user-a",
				SeatIDs: []string{"A-1-1"},
			},
			expectedErr: showtime.ErrInvalidDate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.CreateHolding(ctx, tt.input)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestCreateHolding_Conflict(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.service.CreateHolding(ctx, createInput("A-1-1", "A-1-2"))
	require.NoError(t, err)

	// 一部が重なる要求は重なった座席IDだけを返して失敗する
	input := createInput("A-1-2", "A-1-3")
	input.UserID = "user-b"
	_, err = env.service.CreateHolding(ctx, input)

	var conflict *hold.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"A-1-2"}, conflict.UnavailableSeats)

	// 失敗した要求の座席は一切確保されていない（座席単位の部分成功はない）
	statuses, err := env.service.GetSeatStatusMap(ctx, testKey())
	require.NoError(t, err)
	assert.NotContains(t, statuses, "A-1-3")
}

func TestCreateHolding_ConflictWithReservedSeats(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	// 確定済み予約の座席も競合対象になる
	result, err := env.service.CreateHolding(ctx, createInput("A-1-1"))
	require.NoError(t, err)
	_, err = env.service.ConfirmReservation(ctx, result.HoldingID, "公演", "会場")
	require.NoError(t, err)

	input := createInput("A-1-1")
	input.UserID = "user-b"
	_, err = env.service.CreateHolding(ctx, input)

	var conflict *hold.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"A-1-1"}, conflict.UnavailableSeats)
}

func TestCreateHolding_ExpiredHoldFreesSeats(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	result, err := env.service.CreateHolding(ctx, createInput("A-1-1"))
	require.NoError(t, err)

	// 有効期限を過去にして期限切れ扱いにする
	h, err := env.holds.Get(ctx, result.HoldingID)
	require.NoError(t, err)
	h.ExpiresAt = time.Now().Add(-1 * time.Second)

	input := createInput("A-1-1")
	input.UserID = "user-b"
	_, err = env.service.CreateHolding(ctx, input)
	require.NoError(t, err)

	// 掃除により期限切れの仮押さえは消えている
	_, err = env.holds.Get(ctx, result.HoldingID)
	assert.ErrorIs(t, err, hold.ErrHoldNotFound)
}

func TestReleaseHolding_Idempotent(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	result, err := env.service.CreateHolding(ctx, createInput("A-1-1"))
	require.NoError(t, err)

	removed, err := env.service.ReleaseHolding(ctx, result.HoldingID)
	require.NoError(t, err)
	assert.True(t, removed)

	// 2回目はfalseだがエラーにはならない
	removed, err = env.service.ReleaseHolding(ctx, result.HoldingID)
	require.NoError(t, err)
	assert.False(t, removed)

	// 解放後は座席が再び確保できる
	input := createInput("A-1-1")
	input.UserID = "user-b"
	_, err = env.service.CreateHolding(ctx, input)
	require.NoError(t, err)
}

func TestConfirmReservation(t *testing.T) {
	catalog := new(MockPerformanceRepository)
	catalog.On("GetSeats", mock.Anything, "perf-x").Return([]seat.Seat{
		{ID: "A-1-1", Section: "A", Row: "1", Grade: "S", Price: 15000},
		{ID: "A-1-2", Section: "A", Row: "1", Grade: "S", Price: 15000},
	}, nil)

	env := newTestEnv(t, catalog)
	ctx := context.Background()

	result, err := env.service.CreateHolding(ctx, createInput("A-1-1", "A-1-2"))
	require.NoError(t, err)

	res, err := env.service.ConfirmReservation(ctx, result.HoldingID, "年末公演", "メガホール")
	require.NoError(t, err)
	assert.Equal(t, "user-a", res.UserID)
	assert.Equal(t, "年末公演", res.PerformanceTitle)
	assert.Equal(t, "メガホール", res.Venue)
	assert.Equal(t, reservation.StatusConfirmed, res.Status)
	// カタログのスナップショットから価格が引き継がれる
	assert.Equal(t, 30000, res.TotalPrice)
	assert.Equal(t, []string{"A-1-1", "A-1-2"}, res.SeatIDs())
	catalog.AssertExpectations(t)
}

func TestConfirmReservation_ConsumesExactlyOnce(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	result, err := env.service.CreateHolding(ctx, createInput("A-1-1"))
	require.NoError(t, err)

	_, err = env.service.ConfirmReservation(ctx, result.HoldingID, "公演", "会場")
	require.NoError(t, err)

	// 2回目の確定は見つからないエラーになり、2件目の予約は作られない
	_, err = env.service.ConfirmReservation(ctx, result.HoldingID, "公演", "会場")
	assert.ErrorIs(t, err, hold.ErrHoldNotFound)

	// 消費済みの仮押さえは解放もできない
	removed, err := env.service.ReleaseHolding(ctx, result.HoldingID)
	require.NoError(t, err)
	assert.False(t, removed)

	list, err := env.service.GetUserReservations(ctx, "user-a", 20, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestConfirmReservation_Expired(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	result, err := env.service.CreateHolding(ctx, createInput("A-1-1"))
	require.NoError(t, err)

	h, err := env.holds.Get(ctx, result.HoldingID)
	require.NoError(t, err)
	h.ExpiresAt = time.Now().Add(-1 * time.Second)

	_, err = env.service.ConfirmReservation(ctx, result.HoldingID, "公演", "会場")
	assert.ErrorIs(t, err, hold.ErrHoldExpired)

	// 期限切れの仮押さえは消費と同時に破棄される
	_, err = env.holds.Get(ctx, result.HoldingID)
	assert.ErrorIs(t, err, hold.ErrHoldNotFound)
}

func TestConfirmReservation_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.service.ConfirmReservation(ctx, "unknown-id", "公演", "会場")
	assert.ErrorIs(t, err, hold.ErrHoldNotFound)
}

func TestGetSeatStatusMap(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	// user-a が2席を確定、user-b が1席を仮押さえ中
	held, err := env.service.CreateHolding(ctx, createInput("A-1-1", "A-1-2"))
	require.NoError(t, err)
	_, err = env.service.ConfirmReservation(ctx, held.HoldingID, "公演", "会場")
	require.NoError(t, err)

	input := createInput("A-1-3")
	input.UserID = "user-b"
	_, err = env.service.CreateHolding(ctx, input)
	require.NoError(t, err)

	statuses, err := env.service.GetSeatStatusMap(ctx, testKey())
	require.NoError(t, err)

	assert.Equal(t, seat.StatusReserved, statuses["A-1-1"])
	assert.Equal(t, seat.StatusReserved, statuses["A-1-2"])
	assert.Equal(t, seat.StatusHolding, statuses["A-1-3"])
	// どちらにも属さない座席はマップに現れない（available扱い）
	assert.NotContains(t, statuses, "A-1-4")
}

func TestGetSeatStatusMap_ExpiryMonotonicity(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	result, err := env.service.CreateHolding(ctx, createInput("A-1-1"))
	require.NoError(t, err)

	// 期限内は holding
	statuses, err := env.service.GetSeatStatusMap(ctx, testKey())
	require.NoError(t, err)
	assert.Equal(t, seat.StatusHolding, statuses["A-1-1"])

	// 期限が過ぎると消える
	h, err := env.holds.Get(ctx, result.HoldingID)
	require.NoError(t, err)
	h.ExpiresAt = time.Now()

	statuses, err = env.service.GetSeatStatusMap(ctx, testKey())
	require.NoError(t, err)
	assert.NotContains(t, statuses, "A-1-1")
}

func TestGetSeatStatusMap_InvalidKey(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.service.GetSeatStatusMap(context.Background(), showtime.NewKey("", "2026-01-01", "19:00"))
	assert.ErrorIs(t, err, showtime.ErrPerformanceIDRequired)
}

func TestGetUserReservations(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	for _, seatID := range []string{"A-1-1", "A-1-2"} {
		result, err := env.service.CreateHolding(ctx, createInput(seatID))
		require.NoError(t, err)
		_, err = env.service.ConfirmReservation(ctx, result.HoldingID, "公演", "会場")
		require.NoError(t, err)
	}

	list, err := env.service.GetUserReservations(ctx, "user-a", 20, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = env.service.GetUserReservations(ctx, "", 20, 0)
	assert.ErrorIs(t, err, reservation.ErrUserIDRequired)
}

func TestSweepExpiredHolds(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	result, err := env.service.CreateHolding(ctx, createInput("A-1-1"))
	require.NoError(t, err)
	h, err := env.holds.Get(ctx, result.HoldingID)
	require.NoError(t, err)
	h.ExpiresAt = time.Now().Add(-1 * time.Minute)

	removed, err := env.service.SweepExpiredHolds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = env.service.SweepExpiredHolds(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestConfirmReservation_CatalogError(t *testing.T) {
	catalog := new(MockPerformanceRepository)
	catalog.On("GetSeats", mock.Anything, "perf-x").Return(nil, errors.New("db down"))

	env := newTestEnv(t, catalog)
	ctx := context.Background()

	result, err := env.service.CreateHolding(ctx, createInput("A-1-1"))
	require.NoError(t, err)

	// カタログ障害では予約は作られず、仮押さえも残る
	_, err = env.service.ConfirmReservation(ctx, result.HoldingID, "公演", "会場")
	require.Error(t, err)

	_, err = env.holds.Get(ctx, result.HoldingID)
	assert.NoError(t, err)
}
