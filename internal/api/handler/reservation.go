package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seolhyebom/megaticket-sub001/internal/domain/hold"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/reservation"
)

// ReservationHandler は予約確定のハンドラー
type ReservationHandler struct {
	service HoldingServiceInterface
}

func NewReservationHandler(s HoldingServiceInterface) *ReservationHandler {
	return &ReservationHandler{service: s}
}

type ConfirmReservationRequest struct {
	HoldingID        string `json:"holdingId" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	PerformanceTitle string `json:"performanceTitle" example:"メガチケット・ライブ2025"`
	Venue            string `json:"venue" example:"東京ドーム"`
}

type SeatResponse struct {
	ID      string `json:"id"`
	Section string `json:"section,omitempty"`
	Row     string `json:"row,omitempty"`
	Grade   string `json:"grade,omitempty"`
	Price   int    `json:"price"`
}

type ReservationResponse struct {
	ID               string         `json:"id"`
	UserID           string         `json:"userId"`
	PerformanceID    string         `json:"performanceId"`
	Date             string         `json:"date"`
	Time             string         `json:"time"`
	PerformanceTitle string         `json:"performanceTitle,omitempty"`
	Venue            string         `json:"venue,omitempty"`
	Seats            []SeatResponse `json:"seats"`
	TotalPrice       int            `json:"totalPrice"`
	Status           string         `json:"status"`
	CreatedAt        time.Time      `json:"createdAt"`
}

type ConfirmReservationResponse struct {
	Success     bool                `json:"success"`
	Reservation ReservationResponse `json:"reservation"`
}

type ConfirmFailedResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type ListReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

func toReservationResponse(r *reservation.Reservation) ReservationResponse {
	seats := make([]SeatResponse, len(r.Seats))
	for i, se := range r.Seats {
		seats[i] = SeatResponse{ID: se.ID, Section: se.Section, Row: se.Row, Grade: se.Grade, Price: se.Price}
	}
	return ReservationResponse{
		ID:               r.ID,
		UserID:           r.UserID,
		PerformanceID:    r.Showtime.PerformanceID,
		Date:             r.Showtime.Date,
		Time:             r.Showtime.Time,
		PerformanceTitle: r.PerformanceTitle,
		Venue:            r.Venue,
		Seats:            seats,
		TotalPrice:       r.TotalPrice,
		Status:           string(r.Status),
		CreatedAt:        r.CreatedAt,
	}
}

// Confirm godoc
// @Summary 仮押さえを予約に確定
// @Description 有効期限内の仮押さえを恒久的な予約に変換します
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body ConfirmReservationRequest true "確定情報"
// @Success 201 {object} ConfirmReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 410 {object} ConfirmFailedResponse "仮押さえが存在しないか期限切れ"
// @Router /reservations [post]
func (h *ReservationHandler) Confirm(c echo.Context) error {
	var req ConfirmReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.service.ConfirmReservation(c.Request().Context(), req.HoldingID, req.PerformanceTitle, req.Venue)
	if err != nil {
		// 存在しない・期限切れはどちらも410（座席は既に他者が取れる状態）
		if errors.Is(err, hold.ErrHoldNotFound) || errors.Is(err, hold.ErrHoldExpired) {
			return c.JSON(http.StatusGone, ConfirmFailedResponse{
				Success: false,
				Error:   "RESERVATION_FAILED",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, ConfirmReservationResponse{
		Success:     true,
		Reservation: toReservationResponse(res),
	})
}

// GetUserReservations godoc
// @Summary ユーザーの予約一覧を取得
// @Description ログインユーザーの予約一覧を新しい順で取得します
// @Tags reservations
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {object} ListReservationsResponse
// @Failure 401 {object} map[string]string
// @Router /reservations [get]
func (h *ReservationHandler) GetUserReservations(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	reservations, err := h.service.GetUserReservations(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]ReservationResponse, len(reservations))
	for i, r := range reservations {
		resp[i] = toReservationResponse(r)
	}
	return c.JSON(http.StatusOK, ListReservationsResponse{Reservations: resp})
}
