package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	models "CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	icache "CoinPulse/internal/service/cache"
	"CoinPulse/internal/service/metrics"
	"CoinPulse/internal/service/ratelimit"
	"CoinPulse/internal/services/risk"
	"CoinPulse/internal/usecase"
	xhttp "CoinPulse/pkg/http"
	xlogger "CoinPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalyticsEchoHandler exposes the quantitative analytics over HTTP.
type AnalyticsEchoHandler struct {
	logger   *xlogger.Logger
	uc       *usecase.AnalyticsUseCase
	bars     *usecase.BarsUseCase
	cache    icache.BytesCache
	cacheTTL time.Duration
	rl       *ratelimit.Limiter
}

func NewAnalyticsEchoHandler(logger *xlogger.Logger, uc *usecase.AnalyticsUseCase, bars *usecase.BarsUseCase) *AnalyticsEchoHandler {
	metrics.Register()
	return &AnalyticsEchoHandler{logger: logger, uc: uc, bars: bars, cacheTTL: 5 * time.Minute, rl: ratelimit.New()}
}

// SetCache enables byte-level response caching on the heavy endpoints.
func (h *AnalyticsEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetCacheTTL overrides the default five minute response TTL.
func (h *AnalyticsEchoHandler) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		h.cacheTTL = ttl
	}
}

func (h *AnalyticsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/channel", h.Channel)
	g.GET("/rsi", h.RSI)
	g.GET("/divergences", h.Divergences)
	g.GET("/consolidations", h.Consolidations)
	g.GET("/risk/history", h.RiskHistory)
	g.GET("/risk/current", h.CurrentRisk)
	g.GET("/risk/factors", h.RiskFactors)
	g.GET("/regime/now", h.RegimeNow)
	g.GET("/regime/trajectory", h.RegimeTrajectory)
	g.GET("/overview", h.Overview)
	g.GET("/bars", h.Bars)
}

// observe records endpoint latency and counts errors.
func (h *AnalyticsEchoHandler) observe(endpoint string, start time.Time, err error) {
	metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
	}
}

func (h *AnalyticsEchoHandler) allow(c echo.Context, endpoint string) bool {
	return h.rl.Allow(c.RealIP()+":"+endpoint, 5, 2)
}

// fail maps data-availability errors onto their HTTP statuses before writing
// the response. Unmapped errors fall through to a 500.
func (h *AnalyticsEchoHandler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, risk.ErrUnsupportedAsset):
		err = xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, risk.ErrNoData), errors.Is(err, risk.ErrInsufficientData):
		err = xhttp.NewAppError("ERR_INSUFFICIENT_DATA", "", err.Error(), http.StatusUnprocessableEntity).WithError(err)
	}
	return xhttp.AppErrorResponse(c, err)
}

// cached serves a previously marshaled payload, if present.
func (h *AnalyticsEchoHandler) cachedBytes(key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		h.logger.Warn("cache get error", xlogger.String("key", key), xlogger.Error(err))
		return nil, false
	}
	return b, ok
}

func (h *AnalyticsEchoHandler) storeBytes(key string, v interface{}, ttl time.Duration) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if h.cache != nil {
		if err := h.cache.SetBytes(key, b, ttl); err != nil {
			h.logger.Warn("cache set error", xlogger.String("key", key), xlogger.Error(err))
		}
	}
	return b
}

func (h *AnalyticsEchoHandler) Channel(c echo.Context) error {
	start := time.Now()
	req := &models.ChannelRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "channel") {
		return echo.NewHTTPError(429, "rate limited")
	}
	key := "channel:" + req.Symbol + ":" + req.TF
	if b, ok := h.cachedBytes(key); ok {
		h.observe("channel", start, nil)
		return c.JSONBlob(200, b)
	}

	res, err := h.uc.Channel(c.Request().Context(), req.Symbol, req.N, domrepo.NormalizeTimeframe(req.TF))
	h.observe("channel", start, err)
	if err != nil {
		h.logger.Error("channel usecase error", xlogger.Error(err))
		return h.fail(c, err)
	}
	if b := h.storeBytes(key, xhttp.APIResponse{Status: 200, Message: "OK", Data: res}, h.cacheTTL); b != nil {
		return c.JSONBlob(200, b)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) RSI(c echo.Context) error {
	start := time.Now()
	req := &models.RSIRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "rsi") {
		return echo.NewHTTPError(429, "rate limited")
	}
	res, err := h.uc.RSI(c.Request().Context(), req.Symbol, req.N, req.Period, domrepo.NormalizeTimeframe(req.TF))
	h.observe("rsi", start, err)
	if err != nil {
		h.logger.Error("rsi usecase error", xlogger.Error(err))
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) Divergences(c echo.Context) error {
	start := time.Now()
	req := &models.DivergencesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "divergences") {
		return echo.NewHTTPError(429, "rate limited")
	}
	res, err := h.uc.Divergences(c.Request().Context(), req.Symbol, req.N, req.Lookback)
	h.observe("divergences", start, err)
	if err != nil {
		h.logger.Error("divergences usecase error", xlogger.Error(err))
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) Consolidations(c echo.Context) error {
	start := time.Now()
	req := &models.ConsolidationsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "consolidations") {
		return echo.NewHTTPError(429, "rate limited")
	}
	res, err := h.uc.Consolidations(c.Request().Context(), req.Symbol, req.N)
	h.observe("consolidations", start, err)
	if err != nil {
		h.logger.Error("consolidations usecase error", xlogger.Error(err))
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) RiskHistory(c echo.Context) error {
	start := time.Now()
	req := &models.RiskHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "risk_history") {
		return echo.NewHTTPError(429, "rate limited")
	}
	key := "risk:history:" + req.Symbol
	if b, ok := h.cachedBytes(key); ok {
		h.observe("risk_history", start, nil)
		return c.JSONBlob(200, b)
	}

	res, err := h.uc.RiskHistory(c.Request().Context(), req.Symbol, req.N)
	h.observe("risk_history", start, err)
	if err != nil {
		h.logger.Error("risk history usecase error", xlogger.Error(err))
		return h.fail(c, err)
	}
	if b := h.storeBytes(key, xhttp.APIResponse{Status: 200, Message: "OK", Data: res}, h.cacheTTL); b != nil {
		return c.JSONBlob(200, b)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) CurrentRisk(c echo.Context) error {
	start := time.Now()
	req := &models.CurrentRiskRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.uc.CurrentRisk(c.Request().Context(), req.Symbol, 0)
	h.observe("risk_current", start, err)
	if err != nil {
		h.logger.Error("current risk usecase error", xlogger.Error(err))
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) RiskFactors(c echo.Context) error {
	start := time.Now()
	req := &models.RiskFactorsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.uc.RiskFactors(c.Request().Context(), req.Symbol, req.N)
	h.observe("risk_factors", start, err)
	if err != nil {
		h.logger.Error("risk factors usecase error", xlogger.Error(err))
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) RegimeNow(c echo.Context) error {
	start := time.Now()
	req := &models.RegimeNowRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.uc.RegimeNow(c.Request().Context(), req.Symbol)
	h.observe("regime_now", start, err)
	if err != nil {
		h.logger.Error("regime now usecase error", xlogger.Error(err))
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) RegimeTrajectory(c echo.Context) error {
	start := time.Now()
	req := &models.RegimeTrajectoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "regime_trajectory") {
		return echo.NewHTTPError(429, "rate limited")
	}
	res, err := h.uc.RegimeTrajectory(c.Request().Context(), req.Symbol, req.Days)
	h.observe("regime_trajectory", start, err)
	if err != nil {
		h.logger.Error("regime trajectory usecase error", xlogger.Error(err))
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) Overview(c echo.Context) error {
	start := time.Now()
	req := &models.RiskFactorsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "overview") {
		return echo.NewHTTPError(429, "rate limited")
	}
	res, err := h.uc.Overview(c.Request().Context(), req.Symbol, req.N)
	h.observe("overview", start, err)
	if err != nil {
		h.logger.Error("overview usecase error", xlogger.Error(err))
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) Bars(c echo.Context) error {
	start := time.Now()
	req := &models.BarsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	now := time.Now().UTC()
	p := usecase.GetBarsParams{
		Symbol:    req.Symbol,
		From:      xhttp.ParseTimeDefault(req.From, now.AddDate(-1, 0, 0)),
		To:        xhttp.ParseTimeDefault(req.To, now),
		Timeframe: domrepo.NormalizeTimeframe(req.TF),
		Limit:     req.Limit,
	}
	res, err := h.bars.GetBars(c.Request().Context(), p)
	h.observe("bars", start, err)
	if err != nil {
		h.logger.Error("bars usecase error", xlogger.Error(err))
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}
