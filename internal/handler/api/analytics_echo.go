package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"CrediTech/internal/domain/models"
	domsvc "CrediTech/internal/domain/service"
	"CrediTech/internal/service/metrics"
	"CrediTech/internal/service/ratelimit"
	"CrediTech/internal/services/forecast"
	"CrediTech/internal/services/model"
	xhttp "CrediTech/pkg/http"
	xlogger "CrediTech/pkg/logger"
)

// State is the read side of the analytics pipeline.
type State interface {
	Initialized() bool
	Stats() models.AnalyticsStats
	Categories() []models.CategoryInfo
	Indicators() (models.Indicators, bool)
	ClearModels() int
}

// ProfileAnalyzer runs the combined per-profile analysis.
type ProfileAnalyzer interface {
	Analyze(ctx context.Context, p models.BorrowerProfile) models.ProfileAnalysis
}

// RiskResponse is the assessment plus the historical comparison of the profile.
type RiskResponse struct {
	Assessment models.RiskAssessment       `json:"assessment"`
	Comparison models.HistoricalComparison `json:"comparison"`
}

// AnalyticsHandler serves the credit analytics API.
type AnalyticsHandler struct {
	logger     *xlogger.Logger
	state      State
	forecaster domsvc.Forecaster
	classifier domsvc.ProfileClassifier
	risk       domsvc.RiskAssessor
	history    domsvc.HistoryComparator
	analysis   ProfileAnalyzer
	limiter    *ratelimit.Limiter
	now        func() time.Time
}

func NewAnalyticsHandler(
	logger *xlogger.Logger,
	state State,
	forecaster domsvc.Forecaster,
	classifier domsvc.ProfileClassifier,
	risk domsvc.RiskAssessor,
	history domsvc.HistoryComparator,
	analysis ProfileAnalyzer,
	limiter *ratelimit.Limiter,
) *AnalyticsHandler {
	metrics.Register()
	return &AnalyticsHandler{
		logger:     xlogger.OrNop(logger).Component("api"),
		state:      state,
		forecaster: forecaster,
		classifier: classifier,
		risk:       risk,
		history:    history,
		analysis:   analysis,
		limiter:    limiter,
		now:        time.Now,
	}
}

func (h *AnalyticsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/health", h.instrument("health", h.Health))
	g.GET("/categories", h.instrument("categories", h.Categories))
	g.GET("/indicators", h.instrument("indicators", h.Indicators))
	g.GET("/forecast/:category", h.instrument("forecast", h.Forecast))
	g.GET("/clusters", h.instrument("clusters", h.Clusters))
	g.GET("/stats", h.instrument("stats", h.Stats))
	g.DELETE("/models", h.instrument("clear_models", h.ClearModels))

	limited := g.Group("", h.rateLimit)
	limited.POST("/profile/classify", h.instrument("classify", h.Classify))
	limited.POST("/risk/assess", h.instrument("assess", h.Assess))
	limited.POST("/profile/analyze", h.instrument("analyze", h.Analyze))
}

func (h *AnalyticsHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":      "ok",
		"initialized": h.state.Initialized(),
		"models":      h.state.Stats().Models,
		"timestamp":   h.now().UTC(),
	})
}

func (h *AnalyticsHandler) Categories(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return xhttp.SuccessResponse(c, h.state.Categories())
}

func (h *AnalyticsHandler) Indicators(c echo.Context) error {
	ind, ok := h.state.Indicators()
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("indicators not loaded yet"))
	}
	return xhttp.SuccessResponse(c, ind)
}

func (h *AnalyticsHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.forecaster.Predict(req.Category, req.Days)
	switch {
	case errors.Is(err, model.ErrModelNotFound):
		return xhttp.AppErrorResponse(c,
			xhttp.NotFoundErrorf("no trained model for category %q", req.Category).
				WithParam("category", req.Category).
				WithError(err))
	case errors.Is(err, forecast.ErrInvalidHorizon):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithParam("days", req.Days))
	case err != nil:
		h.logger.Error("forecast failed", xlogger.String("category", req.Category), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsHandler) Clusters(c echo.Context) error {
	set, ok := h.classifier.Current()
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("clustering not available"))
	}
	return xhttp.SuccessResponse(c, set)
}

func (h *AnalyticsHandler) Stats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.state.Stats())
}

func (h *AnalyticsHandler) ClearModels(c echo.Context) error {
	n := h.state.ClearModels()
	h.logger.Info("models cleared via api", xlogger.Int("count", n))
	return xhttp.SuccessResponse(c, map[string]int{"cleared": n})
}

func (h *AnalyticsHandler) Classify(c echo.Context) error {
	p, verr := readProfile(c)
	if verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.classifier.Classify(p))
}

func (h *AnalyticsHandler) Assess(c echo.Context) error {
	p, verr := readProfile(c)
	if verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, RiskResponse{
		Assessment: h.risk.Assess(p),
		Comparison: h.history.Compare(c.Request().Context(), p),
	})
}

func (h *AnalyticsHandler) Analyze(c echo.Context) error {
	p, verr := readProfile(c)
	if verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.analysis.Analyze(c.Request().Context(), p))
}

func readProfile(c echo.Context) (models.BorrowerProfile, interface{}) {
	var p models.BorrowerProfile
	if verr := xhttp.ReadAndValidateRequest(c, &p); verr != nil {
		return p, verr
	}
	return p, nil
}

func (h *AnalyticsHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.limiter == nil || h.limiter.Allow(c.RealIP()+":"+c.Path()) {
			return next(c)
		}
		metrics.RateLimited.WithLabelValues(c.Path()).Inc()
		h.logger.Warn("rate limited", xlogger.String("remote", c.RealIP()), xlogger.String("path", c.Path()))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
	}
}

func (h *AnalyticsHandler) instrument(endpoint string, fn echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := fn(c)
		metrics.Observe(endpoint, start, err != nil || c.Response().Status >= http.StatusInternalServerError)
		return err
	}
}

var _ xhttp.Handler = (*AnalyticsHandler)(nil)
