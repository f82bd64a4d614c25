package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/optionspricing/internal/pricing/application"
	"github.com/wyfcoding/optionspricing/internal/pricing/domain"
)

type memoryRepo struct {
	mu    sync.Mutex
	saved []*domain.PricingResult
}

func (r *memoryRepo) Save(_ context.Context, result *domain.PricingResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	result.ID = uint(len(r.saved) + 1)
	r.saved = append(r.saved, result)
	return nil
}

func (r *memoryRepo) GetLatest(_ context.Context, symbol string) (*domain.PricingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].Symbol == symbol {
			return r.saved[i], nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) GetHistory(_ context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PricingResult
	for i := len(r.saved) - 1; i >= 0 && len(out) < limit; i-- {
		if r.saved[i].Symbol == symbol {
			out = append(out, r.saved[i])
		}
	}
	return out, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	engine := domain.NewDefaultEngine()
	repo := &memoryRepo{}
	cmd := application.NewPricingCommandService(engine, repo, nil, nil, nil, nil)
	query := application.NewPricingQueryService(engine, repo, nil, nil)
	handler := NewPricingHandler(cmd, query)

	router := gin.New()
	handler.RegisterRootRoutes(router)
	handler.RegisterRoutes(&router.RouterGroup)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validRequest() map[string]any {
	return map[string]any{
		"symbol":         "AAPL",
		"option_type":    "call",
		"spot_price":     100,
		"strike_price":   100,
		"time_to_expiry": 1,
		"risk_free_rate": 0.05,
		"volatility":     0.20,
	}
}

func TestRootEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Options Pricing API is running", body["message"])
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status          string   `json:"status"`
		ModelsAvailable []string `json:"models_available"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, []string{"BlackScholes", "BinomialTree", "MonteCarlo"}, body.ModelsAvailable)
}

func TestAPIHealthEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/api/options/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Options API is healthy")
}

func TestPriceOptionEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/options/price", validRequest())
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Symbol  string `json:"symbol"`
			Results []struct {
				ModelName string  `json:"model_name"`
				Price     float64 `json:"price"`
			} `json:"results"`
			Comparison *struct {
				AveragePrice float64 `json:"average_price"`
			} `json:"comparison"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Results, 3)
	assert.Equal(t, "AAPL", body.Data.Symbol)
	assert.InDelta(t, 10.4506, body.Data.Results[0].Price, 0.0001)
	require.NotNil(t, body.Data.Comparison)
}

func TestPriceOptionWithModelEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/options/price/BlackScholes", validRequest())
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Results []struct {
				ModelName string `json:"model_name"`
			} `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Results, 1)
	assert.Equal(t, "BlackScholes", body.Data.Results[0].ModelName)
}

func TestPriceOptionUnknownModelReturns400(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/options/price/Heston", validRequest())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UNKNOWN_MODEL")
}

func TestPriceOptionInvalidParametersReturns400(t *testing.T) {
	router := newTestRouter()

	req := validRequest()
	req["time_to_expiry"] = 15 // > 10 年

	w := doJSON(t, router, http.MethodPost, "/api/options/price", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_PARAMETERS")
}

func TestPriceOptionMissingFieldsReturns400(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/options/price", map[string]any{"symbol": "AAPL"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchPriceEndpoint(t *testing.T) {
	router := newTestRouter()

	bad := validRequest()
	bad["option_type"] = "straddle"

	w := doJSON(t, router, http.MethodPost, "/api/options/price/batch", map[string]any{
		"contracts": []map[string]any{validRequest(), bad},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			SuccessCount int `json:"success_count"`
			FailureCount int `json:"failure_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.SuccessCount)
	assert.Equal(t, 1, body.Data.FailureCount)
}

func TestGreeksEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/options/greeks", validRequest())
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Symbol string `json:"symbol"`
			Greeks struct {
				Delta string `json:"delta"`
			} `json:"greeks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "AAPL", body.Data.Symbol)
	assert.NotEmpty(t, body.Data.Greeks.Delta)
}

func TestModelsEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/api/options/models", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BlackScholes")
	assert.Contains(t, w.Body.String(), "BinomialTree")
	assert.Contains(t, w.Body.String(), "MonteCarlo")
}

func TestLatestResultEndpoint(t *testing.T) {
	router := newTestRouter()

	// 先定价，再查询最新结果
	w := doJSON(t, router, http.MethodPost, "/api/options/price/BlackScholes", validRequest())
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/options/results/AAPL/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BlackScholes")
}

func TestLatestResultNotFound(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/api/options/results/UNKNOWN/latest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/options/price", validRequest())
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/options/results/AAPL?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Symbol string `json:"symbol"`
			Count  int    `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "AAPL", body.Data.Symbol)
	assert.Equal(t, 2, body.Data.Count)
}
