package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seolhyebom/megaticket-sub001/internal/application"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/hold"
)

// HoldingHandler は座席仮押さえのハンドラー
type HoldingHandler struct {
	service HoldingServiceInterface
}

func NewHoldingHandler(s HoldingServiceInterface) *HoldingHandler {
	return &HoldingHandler{service: s}
}

type CreateHoldingRequest struct {
	PerformanceID string   `json:"performanceId" validate:"required" example:"perf-001"`
	Date          string   `json:"date" validate:"required" example:"2025-12-01"`
	Time          string   `json:"time" validate:"required" example:"19:00"`
	UserID        string   `json:"userId" validate:"required" example:"user-123"`
	SeatIDs       []string `json:"seatIds" validate:"required,min=1" example:"A-1-1,A-1-2"`
}

type CreateHoldingResponse struct {
	Success          bool      `json:"success"`
	HoldingID        string    `json:"holdingId"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RemainingSeconds int       `json:"remainingSeconds"`
}

type HoldingConflictResponse struct {
	Success          bool     `json:"success"`
	Error            string   `json:"error"`
	UnavailableSeats []string `json:"unavailableSeats"`
}

type ReleaseHoldingResponse struct {
	Success bool `json:"success"`
}

// Create godoc
// @Summary 座席を仮押さえ
// @Description 公演回の座席集合を一定時間仮押さえします（全席確保できない場合は失敗）
// @Tags holdings
// @Accept json
// @Produce json
// @Param request body CreateHoldingRequest true "仮押さえ情報"
// @Success 201 {object} CreateHoldingResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} HoldingConflictResponse "座席が既に確保済み"
// @Router /holdings [post]
func (h *HoldingHandler) Create(c echo.Context) error {
	var req CreateHoldingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.CreateHolding(c.Request().Context(), application.CreateHoldingInput{
		PerformanceID: req.PerformanceID,
		Date:          req.Date,
		Time:          req.Time,
		UserID:        req.UserID,
		SeatIDs:       req.SeatIDs,
	})
	if err != nil {
		var conflict *hold.ConflictError
		if errors.As(err, &conflict) {
			return c.JSON(http.StatusConflict, HoldingConflictResponse{
				Success:          false,
				Error:            "SEATS_ALREADY_HELD",
				UnavailableSeats: conflict.UnavailableSeats,
			})
		}
		if isValidationError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, CreateHoldingResponse{
		Success:          true,
		HoldingID:        result.HoldingID,
		ExpiresAt:        result.ExpiresAt,
		RemainingSeconds: result.RemainingSeconds,
	})
}

// Release godoc
// @Summary 仮押さえを解放
// @Description 仮押さえを明示的に解放し、座席を即座に利用可能にします
// @Tags holdings
// @Produce json
// @Param id path string true "仮押さえID"
// @Success 200 {object} ReleaseHoldingResponse
// @Failure 404 {object} ReleaseHoldingResponse "仮押さえが存在しない（既に解放・期限切れ・確定済み）"
// @Router /holdings/{id} [delete]
func (h *HoldingHandler) Release(c echo.Context) error {
	id := c.Param("id")

	removed, err := h.service.ReleaseHolding(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !removed {
		return c.JSON(http.StatusNotFound, ReleaseHoldingResponse{Success: false})
	}
	return c.JSON(http.StatusOK, ReleaseHoldingResponse{Success: true})
}
