package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrediTech/internal/domain/models"
	"CrediTech/internal/service/ratelimit"
	"CrediTech/internal/services/cluster"
	"CrediTech/internal/services/forecast"
	"CrediTech/internal/services/model"
	"CrediTech/internal/services/risk"
	"CrediTech/internal/usecase"
	"CrediTech/pkg/util"
)

type stubState struct {
	cleared int
}

func (s *stubState) Initialized() bool { return true }
func (s *stubState) Stats() models.AnalyticsStats {
	return models.AnalyticsStats{Models: 4, Initialized: true}
}
func (s *stubState) Categories() []models.CategoryInfo {
	return []models.CategoryInfo{{Key: "veiculo-financiamento", SeriesID: 25503}}
}
func (s *stubState) Indicators() (models.Indicators, bool) {
	return models.Indicators{PolicyRate: 10.5, PriceIndex: 4.2}, true
}
func (s *stubState) ClearModels() int { s.cleared++; return 4 }

type stubForecaster struct{}

func (stubForecaster) Predict(category string, days int) (models.Forecast, error) {
	if category != "veiculo-financiamento" {
		return models.Forecast{}, fmt.Errorf("predict %s: %w", category, model.ErrModelNotFound)
	}
	if days < 1 {
		return models.Forecast{}, forecast.ErrInvalidHorizon
	}
	return models.Forecast{Category: category, Days: days, Points: make([]models.ForecastPoint, days)}, nil
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, limiter *ratelimit.Limiter) (*echo.Echo, *stubState) {
	t.Helper()
	cl := cluster.NewClusterer(cluster.Config{K: 3, Population: 120, MaxIterations: 10}, util.NewRand(9), nil)
	_, err := cl.Build(context.Background())
	require.NoError(t, err)

	classifier := cluster.NewClassifier(cl)
	scorer := risk.NewScorer(nil, nil)
	comparator := risk.NewHistoryComparatorFrom([]risk.ApprovalRecord{
		{Score: 740, Income: 8200, Profession: "servidor", Approved: true, ApprovedRate: 18.5},
	})
	state := &stubState{}
	h := NewAnalyticsHandler(nil, state, stubForecaster{}, classifier, scorer, comparator,
		usecase.NewProfileAnalysis(scorer, classifier, comparator), limiter)

	e := echo.New()
	h.RegisterRoutes(e)
	return e, state
}

func do(t *testing.T, e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

const profileJSON = `{"age":35,"income":8000,"credit_score":750,"profession":"servidor","purpose":"veiculo","requested_amount":30000}`

func TestHealthAndStats(t *testing.T) {
	e, _ := newTestServer(t, nil)

	rec, env := do(t, e, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"initialized":true`)

	_, env = do(t, e, http.MethodGet, "/api/stats", "")
	var st models.AnalyticsStats
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, 4, st.Models)
}

func TestForecastEndpoint(t *testing.T) {
	e, _ := newTestServer(t, nil)

	rec, env := do(t, e, http.MethodGet, "/api/forecast/veiculo-financiamento", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var f models.Forecast
	require.NoError(t, json.Unmarshal(env.Data, &f))
	assert.Equal(t, 7, f.Days, "days defaults to 7")
	assert.Len(t, f.Points, 7)

	rec, _ = do(t, e, http.MethodGet, "/api/forecast/veiculo-financiamento?days=30", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, e, http.MethodGet, "/api/forecast/consignado", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, env.Status)
	assert.Contains(t, string(env.Data), "ERR_NOT_FOUND")

	rec, _ = do(t, e, http.MethodGet, "/api/forecast/veiculo-financiamento?days=400", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	e, state := newTestServer(t, nil)

	rec, env := do(t, e, http.MethodGet, "/api/categories", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "veiculo-financiamento")

	_, env = do(t, e, http.MethodGet, "/api/indicators", "")
	assert.Contains(t, string(env.Data), `"policy_rate":10.5`)

	_, env = do(t, e, http.MethodGet, "/api/clusters", "")
	var set models.ClusterSet
	require.NoError(t, json.Unmarshal(env.Data, &set))
	assert.NotEmpty(t, set.Clusters)

	rec, _ = do(t, e, http.MethodDelete, "/api/models", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, state.cleared)
}

func TestAssessEndpoint(t *testing.T) {
	e, _ := newTestServer(t, nil)

	rec, env := do(t, e, http.MethodPost, "/api/risk/assess", profileJSON)
	require.Equal(t, http.StatusOK, rec.Code)

	var res RiskResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.NotEmpty(t, res.Assessment.Classification)
	assert.True(t, res.Comparison.Found)
	assert.Equal(t, 1, res.Comparison.SimilarProfiles)
}

func TestAssessRejectsInvalidProfile(t *testing.T) {
	e, _ := newTestServer(t, nil)

	rec, env := do(t, e, http.MethodPost, "/api/risk/assess", `{"credit_score":1500}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_LTE")
}

func TestClassifyAndAnalyze(t *testing.T) {
	e, _ := newTestServer(t, nil)

	rec, env := do(t, e, http.MethodPost, "/api/profile/classify", profileJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	var cls models.Classification
	require.NoError(t, json.Unmarshal(env.Data, &cls))
	assert.True(t, cls.Available)

	rec, env = do(t, e, http.MethodPost, "/api/profile/analyze", profileJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	var an models.ProfileAnalysis
	require.NoError(t, json.Unmarshal(env.Data, &an))
	assert.NotNil(t, an.Assessment)
	assert.NotNil(t, an.Cluster)
	assert.NotNil(t, an.History)
}

func TestPostRoutesAreRateLimited(t *testing.T) {
	e, _ := newTestServer(t, ratelimit.New(1, 0))

	rec, _ := do(t, e, http.MethodPost, "/api/profile/classify", profileJSON)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, env := do(t, e, http.MethodPost, "/api/profile/classify", profileJSON)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_RATE_LIMITED")

	rec, _ = do(t, e, http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code, "GET routes are not limited")
}
