package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	models "ZoneWatch/internal/domain/models"
	domrepo "ZoneWatch/internal/domain/repository"
	svcmetrics "ZoneWatch/internal/service/metrics"
	"ZoneWatch/internal/services/zones"
	"ZoneWatch/internal/usecase"
	xhttp "ZoneWatch/pkg/http"
	xlogger "ZoneWatch/pkg/logger"
	xutil "ZoneWatch/pkg/util"

	"github.com/labstack/echo/v4"
)

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

// ZonesEchoHandler serves zone analysis, candles, the monitor catalog and order history.
type ZonesEchoHandler struct {
	logger   *xlogger.Logger
	analyzer *usecase.ZoneAnalyzer
	candles  *usecase.CandlesUseCase
	catalog  *usecase.Catalog
	builder  *usecase.CatalogBuilder
	orders   domrepo.OrderStorage
	checks   map[string]HealthCheck
}

func NewZonesEchoHandler(
	logger *xlogger.Logger,
	analyzer *usecase.ZoneAnalyzer,
	candles *usecase.CandlesUseCase,
	catalog *usecase.Catalog,
	builder *usecase.CatalogBuilder,
	orders domrepo.OrderStorage,
) *ZonesEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ZonesEchoHandler{
		logger:   logger,
		analyzer: analyzer,
		candles:  candles,
		catalog:  catalog,
		builder:  builder,
		orders:   orders,
		checks:   map[string]HealthCheck{},
	}
}

// AddHealthCheck registers a named dependency for /healthz.
func (h *ZonesEchoHandler) AddHealthCheck(name string, fn HealthCheck) {
	if fn != nil {
		h.checks[name] = fn
	}
}

func (h *ZonesEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/zones", h.Zones)
	g.GET("/zones/nested", h.NestedZones)
	g.GET("/candles", h.Candles)
	g.GET("/catalog", h.Catalog)
	g.POST("/catalog/refresh", h.RefreshCatalog)
	g.GET("/orders", h.Orders)
}

func (h *ZonesEchoHandler) Zones(c echo.Context) error {
	const endpoint = "zones"
	start := time.Now()
	req := &models.ZonesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rng, err := fetchRange(req.Period, req.From, req.To)
	if err != nil {
		return h.fail(c, endpoint, err)
	}

	rep, err := h.analyzer.Analyze(c.Request().Context(), usecase.AnalyzeParams{
		Symbol:   xutil.NormalizeSymbol(req.Symbol),
		Interval: domrepo.Interval(req.Interval),
		Range:    rng,
		Preset:   req.Preset,
	})
	observe(endpoint, start)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, rep)
}

func (h *ZonesEchoHandler) NestedZones(c echo.Context) error {
	const endpoint = "zones_nested"
	start := time.Now()
	req := &models.NestedZonesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	mode, err := zones.ParseNestingMode(req.Mode)
	if err != nil {
		return h.fail(c, endpoint, xhttp.BadRequestErrorf("%v", err).WithField("mode"))
	}

	rep, err := h.analyzer.AnalyzeNested(c.Request().Context(), usecase.NestedParams{
		Symbol:         xutil.NormalizeSymbol(req.Symbol),
		LowerInterval:  domrepo.Interval(req.LowerInterval),
		LowerRange:     domrepo.FetchRange{Period: req.LowerPeriod},
		HigherInterval: domrepo.Interval(req.HigherInterval),
		HigherRange:    domrepo.FetchRange{Period: req.HigherPeriod},
		Mode:           mode,
		Preset:         req.Preset,
	})
	observe(endpoint, start)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, rep)
}

func (h *ZonesEchoHandler) Candles(c echo.Context) error {
	const endpoint = "candles"
	start := time.Now()
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rng, err := fetchRange(req.Period, req.From, req.To)
	if err != nil {
		return h.fail(c, endpoint, err)
	}

	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol:   xutil.NormalizeSymbol(req.Symbol),
		Interval: domrepo.Interval(req.Interval),
		Range:    rng,
		Limit:    req.Limit,
	})
	observe(endpoint, start)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, res)
}

type catalogResponse struct {
	BuiltAt time.Time                  `json:"built_at"`
	Symbols int                        `json:"symbols"`
	Count   int                        `json:"count"`
	Levels  map[string][]usecase.Level `json:"levels"`
}

func (h *ZonesEchoHandler) Catalog(c echo.Context) error {
	req := &models.CatalogRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	snap := h.catalog.Current()
	if req.Latest {
		snap = snap.Latest()
	}
	return xhttp.SuccessResponse(c, catalogResponse{
		BuiltAt: snap.BuiltAt,
		Symbols: len(snap.Levels),
		Count:   snap.Count(),
		Levels:  snap.Levels,
	})
}

func (h *ZonesEchoHandler) RefreshCatalog(c echo.Context) error {
	if h.builder == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("catalog refresh is not configured"))
	}
	start := time.Now()
	rep := h.builder.Refresh(c.Request().Context())
	observe("catalog_refresh", start)
	return xhttp.SuccessResponse(c, rep)
}

func (h *ZonesEchoHandler) Orders(c echo.Context) error {
	const endpoint = "orders"
	req := &models.OrdersRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.orders == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("order store is not configured"))
	}
	start := time.Now()
	rows, err := h.orders.Query(c.Request().Context(), xutil.NormalizeSymbol(req.Symbol), req.Limit)
	observe(endpoint, start)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	if rows == nil {
		rows = []*models.OrderRecord{}
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *ZonesEchoHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	out := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			out[name] = err.Error()
			continue
		}
		out[name] = "ok"
	}
	return xhttp.DataResponse(c, status, out)
}

func (h *ZonesEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	svcmetrics.APIErrors.WithLabelValues(endpoint).Inc()
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
	} else {
		h.logger.Debug(endpoint+" request rejected", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func observe(endpoint string, start time.Time) {
	svcmetrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// toAppError maps domain errors to HTTP statuses.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var malformed *models.MalformedCandleError
	var upstream *xhttp.StatusError
	switch {
	case errors.Is(err, domrepo.ErrNoData):
		return xhttp.NotFoundErrorf("no market data").WithError(err)
	case errors.As(err, &malformed):
		return xhttp.UnprocessableErrorf("%s", malformed.Error()).WithError(err)
	case errors.Is(err, zones.ErrUnknownPreset):
		return xhttp.BadRequestErrorf("%v", err).WithField("preset")
	case errors.As(err, &upstream):
		return xhttp.BadGatewayErrorf("market data provider returned %d", upstream.StatusCode).WithError(err)
	}
	return xhttp.InternalErrorf("internal error").WithError(err)
}

func fetchRange(period, from, to string) (domrepo.FetchRange, error) {
	f, t, err := xhttp.ParseOptionalRange(from, to)
	if err != nil {
		return domrepo.FetchRange{}, err
	}
	if !f.IsZero() {
		return domrepo.FetchRange{From: f, To: t}, nil
	}
	return domrepo.FetchRange{Period: period}, nil
}
