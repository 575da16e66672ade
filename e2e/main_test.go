package e2e

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seolhyebom/megaticket-sub001/internal/api"
	"github.com/seolhyebom/megaticket-sub001/internal/api/handler"
	"github.com/seolhyebom/megaticket-sub001/internal/api/middleware"
	"github.com/seolhyebom/megaticket-sub001/internal/application"
	"github.com/seolhyebom/megaticket-sub001/internal/config"
	"github.com/seolhyebom/megaticket-sub001/internal/infrastructure/memory"
)

// TestServer はE2Eテスト用のインプロセスサーバー
// 外部サービスに依存しないインメモリ構成で全エンドポイントを配線する
type TestServer struct {
	Echo *echo.Echo
}

// NewTestServer はテスト用サーバーを作成
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	holdStore := memory.NewHoldStore()
	reservationStore := memory.NewReservationStore()
	catalogRepo := memory.NewPerformanceRepository()

	holdingService := application.NewHoldingService(
		holdStore, reservationStore, catalogRepo,
		nil, nil, nil, nil,
		config.HoldingConfig{Duration: 5 * time.Minute},
	)
	performanceService := application.NewPerformanceService(catalogRepo)

	holdingHandler := handler.NewHoldingHandler(holdingService)
	reservationHandler := handler.NewReservationHandler(holdingService)
	performanceHandler := handler.NewPerformanceHandler(performanceService, holdingService)
	healthHandler := handler.NewHealthHandler()

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/holdings", holdingHandler.Create)
	v1.DELETE("/holdings/:id", holdingHandler.Release)

	v1.POST("/reservations", reservationHandler.Confirm)
	v1.GET("/reservations", reservationHandler.GetUserReservations)

	v1.POST("/performances", performanceHandler.Create)
	v1.GET("/performances", performanceHandler.List)
	v1.GET("/performances/:id", performanceHandler.GetByID)
	v1.POST("/performances/:id/seats/bulk", performanceHandler.CreateBulkSeats)
	v1.GET("/performances/:performance_id/seat-status", performanceHandler.SeatStatus)

	return &TestServer{Echo: e}
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}
