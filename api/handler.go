package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradereflex/chart"
	"github.com/rustyeddy/tradereflex/ledger"
	"github.com/rustyeddy/tradereflex/market"
	"github.com/rustyeddy/tradereflex/sim"
)

type Sessions interface {
	Start(user, symbol string) (ledger.Account, error)
	Account(user, symbol string) (ledger.Account, error)
	Trades(user, symbol string) []ledger.Trade
	Symbols() []string
}

type Orders interface {
	PlaceOrder(ctx context.Context, req sim.OrderRequest) (sim.Fill, error)
}

type Charts interface {
	ChartData(ctx context.Context, symbol, period string) (map[market.Timeframe]chart.Chart, error)
}

// Handler serves the replay and chart routes.
type Handler struct {
	sessions Sessions
	orders   Orders
	charts   Charts
	log      zerolog.Logger
}

func NewHandler(s Sessions, o Orders, c Charts, log zerolog.Logger) *Handler {
	return &Handler{sessions: s, orders: o, charts: c, log: log}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.health)
	e.POST("/start_replay", h.startReplay)
	e.POST("/place_order", h.placeOrder)
	e.GET("/account/:user/:symbol", h.account)
	e.GET("/trades/:user/:symbol", h.trades)
	e.GET("/chart_data/:symbol", h.chartData)
}

type startReplayRequest struct {
	User   string `json:"user" validate:"required"`
	Symbol string `json:"symbol" validate:"required"`
}

type startReplayResponse struct {
	Message string `json:"message"`
	ledger.Account
}

type placeOrderRequest struct {
	User   string      `json:"user" validate:"required"`
	Symbol string      `json:"symbol" validate:"required"`
	Side   string      `json:"side" validate:"required"`
	Qty    json.Number `json:"qty"`
}

type placeOrderResponse struct {
	Message string `json:"message"`
	sim.Fill
}

type accountRequest struct {
	User   string `param:"user" validate:"required"`
	Symbol string `param:"symbol" validate:"required"`
}

type chartRequest struct {
	Symbol string `param:"symbol" validate:"required"`
	Period string `query:"period" default:"7d" validate:"max=8"`
}

func (h *Handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"symbols": h.sessions.Symbols(),
	})
}

func (h *Handler) startReplay(c echo.Context) error {
	var req startReplayRequest
	if err := ReadAndValidateRequest(c, &req); err != nil {
		return err
	}
	acct, err := h.sessions.Start(req.User, req.Symbol)
	if err != nil {
		return FromError(err)
	}
	return c.JSON(http.StatusOK, startReplayResponse{
		Message: fmt.Sprintf("Replay started for %s on %s", req.User, req.Symbol),
		Account: acct,
	})
}

func (h *Handler) placeOrder(c echo.Context) error {
	var req placeOrderRequest
	if err := ReadAndValidateRequest(c, &req); err != nil {
		return err
	}
	qty, err := sim.ParseQuantity(req.Qty.String())
	if err != nil {
		return FromError(err)
	}
	side, err := ledger.ParseSide(req.Side)
	if err != nil {
		return FromError(fmt.Errorf("%w: %v", sim.ErrInvalidOrder, err))
	}

	fill, err := h.orders.PlaceOrder(c.Request().Context(), sim.OrderRequest{
		User:     req.User,
		Symbol:   req.Symbol,
		Side:     side,
		Quantity: qty,
	})
	if err != nil {
		return FromError(err)
	}
	return c.JSON(http.StatusOK, placeOrderResponse{Message: "Order placed", Fill: fill})
}

func (h *Handler) account(c echo.Context) error {
	var req accountRequest
	if err := ReadAndValidateRequest(c, &req); err != nil {
		return err
	}
	acct, err := h.sessions.Account(req.User, req.Symbol)
	if err != nil {
		return FromError(err)
	}
	return c.JSON(http.StatusOK, acct)
}

func (h *Handler) trades(c echo.Context) error {
	var req accountRequest
	if err := ReadAndValidateRequest(c, &req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.sessions.Trades(req.User, req.Symbol))
}

func (h *Handler) chartData(c echo.Context) error {
	var req chartRequest
	if err := ReadAndValidateRequest(c, &req); err != nil {
		return err
	}
	charts, err := h.charts.ChartData(c.Request().Context(), req.Symbol, req.Period)
	if err != nil {
		return FromError(err)
	}
	return c.JSON(http.StatusOK, charts)
}
