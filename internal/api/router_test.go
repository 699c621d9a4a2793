package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salesbonus/internal/analysis"
	"github.com/wonny/salesbonus/internal/api/handlers"
	"github.com/wonny/salesbonus/internal/contracts"
	"github.com/wonny/salesbonus/internal/report"
	"github.com/wonny/salesbonus/pkg/config"
	"github.com/wonny/salesbonus/pkg/logger"
)

func testDataset() *contracts.Dataset {
	return &contracts.Dataset{
		Customers: []contracts.Customer{{ID: "c1"}},
		Products:  []contracts.Product{{SKU: "A", PurchasePrice: 10}},
		Sellers: []contracts.Seller{
			{ID: "s1", FirstName: "Alexey", LastName: "Smirnov"},
			{ID: "s2", FirstName: "Maria", LastName: "Kuznetsova"},
		},
		PurchaseRecords: []contracts.PurchaseRecord{
			{Date: "2024-01-05", SellerID: "s1", CustomerID: "c1", TotalAmount: 40,
				Items: []contracts.Item{{SKU: "A", SalePrice: 20, Quantity: 2}}},
		},
	}
}

func newTestRouter(t *testing.T, apiCfg config.APIConfig) (http.Handler, *report.MemoryRepository) {
	t.Helper()

	repo := report.NewMemoryRepository()
	runner, err := analysis.NewRunner(nil, logger.Nop())
	require.NoError(t, err)
	runner.WithRepository(repo)

	router := NewRouter(
		handlers.NewAnalysisHandler(runner, logger.Nop()),
		handlers.NewRunHandler(repo, logger.Nop()),
		apiCfg,
		logger.Nop(),
	)
	return router, repo
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, config.APIConfig{})

	rec := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAnalysis_RunAndFetch(t *testing.T) {
	router, _ := newTestRouter(t, config.APIConfig{})

	rec := do(t, router, http.MethodPost, "/api/analysis", testDataset())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var run contracts.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.NotEmpty(t, run.ID)
	require.Len(t, run.Sellers, 2)
	assert.Equal(t, "s1", run.Sellers[0].SellerID)
	assert.Equal(t, 3.0, run.Sellers[0].Bonus)
	assert.Len(t, run.Bonuses, 5)

	rec = do(t, router, http.MethodGet, "/api/runs/"+run.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/runs/latest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var latest contracts.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	assert.Equal(t, run.ID, latest.ID)

	rec = do(t, router, http.MethodGet, "/api/runs?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Runs  []contracts.RunSummary `json:"runs"`
		Count int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, run.ID, list.Runs[0].ID)
}

func TestAnalysis_StageEndpoints(t *testing.T) {
	router, repo := newTestRouter(t, config.APIConfig{})

	rec := do(t, router, http.MethodPost, "/api/analysis/ranking", testDataset())
	require.Equal(t, http.StatusOK, rec.Code)
	var ranking struct {
		Sellers []contracts.SellerReport `json:"sellers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranking))
	assert.Len(t, ranking.Sellers, 2)

	rec = do(t, router, http.MethodPost, "/api/analysis/bonuses", testDataset())
	require.Equal(t, http.StatusOK, rec.Code)
	var bonuses struct {
		Bonuses []contracts.BonusResult `json:"bonuses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bonuses))
	assert.Len(t, bonuses.Bonuses, 5)

	// stage endpoints never persist
	runs, err := repo.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestAnalysis_BadRequests(t *testing.T) {
	router, _ := newTestRouter(t, config.APIConfig{})

	empty := testDataset()
	empty.Products = []contracts.Product{}

	tests := []struct {
		name  string
		path  string
		body  interface{}
		field string
	}{
		{"malformed json", "/api/analysis", `{"customers": [`, ""},
		{"empty products", "/api/analysis", empty, "products"},
		{"empty products ranking", "/api/analysis/ranking", empty, "products"},
		{"null body bonuses", "/api/analysis/bonuses", "null", "customers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.field, resp.Field)
			if tt.field != "" {
				assert.Equal(t, contracts.ErrInvalidDataset.Error(), resp.Kind)
			}
		})
	}
}

func TestRuns_NotFoundAndLimits(t *testing.T) {
	router, _ := newTestRouter(t, config.APIConfig{})

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/runs/latest", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/runs/unknown", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/runs?limit=abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/runs?limit=0", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, router, http.MethodGet, "/api/analysis", nil).Code)
}

func TestPolicyEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, config.APIConfig{})

	rec := do(t, router, http.MethodGet, "/api/policy", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		PolicyHash string `json:"policy_hash"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.PolicyHash, 64)
}

func TestRateLimit(t *testing.T) {
	router, _ := newTestRouter(t, config.APIConfig{RateLimitRPS: 0.001, RateLimitBurst: 2})

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/api/policy", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/api/policy", nil).Code)

	rec := do(t, router, http.MethodGet, "/api/policy", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// health is outside /api
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/health", nil).Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
