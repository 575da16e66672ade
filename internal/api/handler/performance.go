package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seolhyebom/megaticket-sub001/internal/application"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/performance"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/seat"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/showtime"
)

// PerformanceHandler は公演カタログと座席状態マップのハンドラー
type PerformanceHandler struct {
	service  PerformanceServiceInterface
	holdings HoldingServiceInterface
}

func NewPerformanceHandler(s PerformanceServiceInterface, holdings HoldingServiceInterface) *PerformanceHandler {
	return &PerformanceHandler{service: s, holdings: holdings}
}

type CreatePerformanceRequest struct {
	Title       string   `json:"title" validate:"required" example:"メガチケット・ライブ2025"`
	Description string   `json:"description" example:"年末恒例の大型公演"`
	Venue       string   `json:"venue" validate:"required" example:"東京ドーム"`
	Dates       []string `json:"dates" validate:"required,min=1" example:"2025-12-01,2025-12-02"`
	Times       []string `json:"times" validate:"required,min=1" example:"13:00,19:00"`
}

type PerformanceResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Venue       string    `json:"venue"`
	Dates       []string  `json:"dates"`
	Times       []string  `json:"times"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateBulkSeatsRequest struct {
	Section     string `json:"section" validate:"required" example:"A"`
	Rows        int    `json:"rows" validate:"required,min=1" example:"10"`
	SeatsPerRow int    `json:"seatsPerRow" validate:"required,min=1" example:"20"`
	Grade       string `json:"grade" example:"S"`
	Price       int    `json:"price" validate:"min=0" example:"12000"`
}

type SeatStatusResponse struct {
	Seats map[string]seat.Status `json:"seats"`
}

func toPerformanceResponse(p *performance.Performance) PerformanceResponse {
	return PerformanceResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Venue:       p.Venue,
		Dates:       p.Dates,
		Times:       p.Times,
		CreatedAt:   p.CreatedAt,
	}
}

// Create godoc
// @Summary 公演を作成
// @Tags performances
// @Accept json
// @Produce json
// @Param request body CreatePerformanceRequest true "公演情報"
// @Success 201 {object} PerformanceResponse
// @Failure 400 {object} map[string]string
// @Router /performances [post]
func (h *PerformanceHandler) Create(c echo.Context) error {
	var req CreatePerformanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	p, err := h.service.CreatePerformance(c.Request().Context(), application.CreatePerformanceInput{
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		Dates:       req.Dates,
		Times:       req.Times,
	})
	if err != nil {
		if isValidationError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toPerformanceResponse(p))
}

// GetByID godoc
// @Summary 公演を取得
// @Tags performances
// @Produce json
// @Param id path string true "公演ID"
// @Success 200 {object} PerformanceResponse
// @Failure 404 {object} map[string]string
// @Router /performances/{id} [get]
func (h *PerformanceHandler) GetByID(c echo.Context) error {
	p, err := h.service.GetPerformance(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, performance.ErrPerformanceNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toPerformanceResponse(p))
}

// List godoc
// @Summary 公演一覧を取得
// @Tags performances
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} PerformanceResponse
// @Router /performances [get]
func (h *PerformanceHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	performances, err := h.service.ListPerformances(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]PerformanceResponse, len(performances))
	for i, p := range performances {
		resp[i] = toPerformanceResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

// CreateBulkSeats godoc
// @Summary 座席を一括作成
// @Description 区画・行数・列数の指定から座席レイアウトを生成します
// @Tags performances
// @Accept json
// @Produce json
// @Param id path string true "公演ID"
// @Param request body CreateBulkSeatsRequest true "座席レイアウト"
// @Success 201 {object} map[string]int
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /performances/{id}/seats/bulk [post]
func (h *PerformanceHandler) CreateBulkSeats(c echo.Context) error {
	var req CreateBulkSeatsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	seats, err := h.service.CreateSeats(c.Request().Context(), application.CreateSeatsInput{
		PerformanceID: c.Param("id"),
		Section:       req.Section,
		Rows:          req.Rows,
		SeatsPerRow:   req.SeatsPerRow,
		Grade:         req.Grade,
		Price:         req.Price,
	})
	if err != nil {
		if errors.Is(err, performance.ErrPerformanceNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		if isValidationError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]int{"created": len(seats)})
}

// SeatStatus godoc
// @Summary 公演回の座席状態マップを取得
// @Description 座席IDから状態（available/holding/reserved）へのマップを返します
// @Tags performances
// @Produce json
// @Param performance_id path string true "公演ID"
// @Param date query string true "公演日（YYYY-MM-DD）"
// @Param time query string true "開演時刻（HH:MM）"
// @Success 200 {object} SeatStatusResponse
// @Failure 400 {object} map[string]string
// @Router /performances/{performance_id}/seat-status [get]
func (h *PerformanceHandler) SeatStatus(c echo.Context) error {
	key := showtime.NewKey(c.Param("performance_id"), c.QueryParam("date"), c.QueryParam("time"))

	statuses, err := h.holdings.GetSeatStatusMap(c.Request().Context(), key)
	if err != nil {
		if isValidationError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// カタログに座席があれば未確保分をavailableで埋める
	// カタログ未登録の公演でも確保済み座席の状態だけは返せる
	result := make(map[string]seat.Status, len(statuses))
	if catalogSeats, err := h.service.GetSeats(c.Request().Context(), key.PerformanceID); err == nil {
		for _, se := range catalogSeats {
			result[se.ID] = seat.StatusAvailable
		}
	}
	for id, st := range statuses {
		result[id] = st
	}

	return c.JSON(http.StatusOK, SeatStatusResponse{Seats: result})
}
