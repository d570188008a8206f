package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zengarv/StockInsightAPI/internal/auth"
	"github.com/zengarv/StockInsightAPI/internal/dataset"
	"github.com/zengarv/StockInsightAPI/internal/domain/models"
	"github.com/zengarv/StockInsightAPI/internal/middleware"
	"github.com/zengarv/StockInsightAPI/internal/repository"
	svccache "github.com/zengarv/StockInsightAPI/internal/service/cache"
	"github.com/zengarv/StockInsightAPI/internal/service/ratelimit"
	"github.com/zengarv/StockInsightAPI/internal/tier"
	"github.com/zengarv/StockInsightAPI/internal/usecase"
	pkgcache "github.com/zengarv/StockInsightAPI/pkg/cache"
	"github.com/zengarv/StockInsightAPI/pkg/config"
	"github.com/zengarv/StockInsightAPI/pkg/logger"
)

type seriesRows struct{ rows []models.PriceRow }

func (s *seriesRows) Load(context.Context) ([]models.PriceRow, error) { return s.rows, nil }

type nopMetrics struct{}

func (nopMetrics) RecordCacheOp(string, string)   {}
func (nopMetrics) RecordRateLimit(string, string) {}
func (nopMetrics) RecordCompute(string, float64)  {}
func (nopMetrics) RecordDataset(int, int)         {}
func (nopMetrics) RecordError(string)             {}

type testEnv struct {
	e *echo.Echo
}

func newTestEnv(t *testing.T, freeQuota int64) *testEnv {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	rows := []models.PriceRow{
		{Symbol: "AAPL", Date: day(2), Close: 10},
		{Symbol: "AAPL", Date: day(3), Close: 20},
		{Symbol: "AAPL", Date: day(4), Close: 30},
		{Symbol: "AAPL", Date: day(5), Close: 40},
	}
	store, err := dataset.NewStore(context.Background(), &seriesRows{rows: rows}, log)
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}

	table, err := tier.NewTable(map[string]config.TierConfig{
		"free":    {DailyQuota: freeQuota, LookbackDays: 0, Indicators: []string{"sma", "ema"}},
		"pro":     {DailyQuota: 500, LookbackDays: 0, Indicators: []string{"sma", "ema", "rsi", "macd"}},
		"premium": {Indicators: []string{"sma", "ema", "rsi", "macd", "bollinger"}},
	})
	if err != nil {
		t.Fatalf("tiers: %v", err)
	}

	users, err := repository.NewSQLiteUserStore(filepath.Join(t.TempDir(), "users.db"), log)
	if err != nil {
		t.Fatalf("user store: %v", err)
	}
	t.Cleanup(func() { users.Close() })

	rec := nopMetrics{}
	limiter := ratelimit.NewDailyLimiter(ratelimit.NewMemoryStore(), table, nil)
	indCache := svccache.NewIndicatorCache(pkgcache.NewMemoryCache(), 30*time.Minute, 250*time.Millisecond, rec, log)
	cacheSvc := pkgcache.NewMemoryCache()

	jwtMgr := auth.NewJWTManager("test-secret", 30*time.Minute)
	hasher := auth.NewHasher(4)

	indUC := usecase.NewIndicatorsUseCase(store, table, limiter, indCache, rec, log)
	authUC := usecase.NewAuthUseCase(users, jwtMgr, hasher, log)
	guard := middleware.RequireAuth(authUC, log)

	e := echo.New()
	NewAuthHandler(log, authUC, guard).RegisterRoutes(e)
	NewIndicatorsHandler(log, indUC, guard).RegisterRoutes(e)
	NewSystemHandler("test", store, cacheSvc).RegisterRoutes(e)
	return &testEnv{e: e}
}

func (env *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) registerAndLogin(t *testing.T, username, tier string) string {
	t.Helper()
	rec := env.do(http.MethodPost, "/api/v1/auth/register", "",
		`{"username":"`+username+`","email":"`+username+`@example.com","password":"password123","tier":"`+tier+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = env.do(http.MethodPost, "/api/v1/auth/login", "",
		`{"username":"`+username+`","password":"password123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("login body: %v", err)
	}
	if envelope.Data.AccessToken == "" {
		t.Fatalf("no token in %s", rec.Body.String())
	}
	return envelope.Data.AccessToken
}

func TestHealthIsPublic(t *testing.T) {
	env := newTestEnv(t, 50)
	rec := env.do(http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"dataset_loaded":true`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestIndicatorsRequireAuth(t *testing.T) {
	env := newTestEnv(t, 50)
	rec := env.do(http.MethodGet, "/api/v1/indicators/sma?symbol=AAPL", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestSMAOverHTTP(t *testing.T) {
	env := newTestEnv(t, 50)
	token := env.registerAndLogin(t, "alice", "free")

	rec := env.do(http.MethodGet, "/api/v1/indicators/sma?symbol=AAPL&window=3", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data models.IndicatorResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("body: %v", err)
	}
	if envelope.Data.DataPoints != 4 || envelope.Data.Data[1].Value != 15 {
		t.Fatalf("response = %+v", envelope.Data)
	}
}

func TestTierForbiddenOverHTTP(t *testing.T) {
	env := newTestEnv(t, 50)
	token := env.registerAndLogin(t, "bob", "free")

	rec := env.do(http.MethodGet, "/api/v1/indicators/bollinger?symbol=AAPL", token, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
}

func TestRateLimitHeadersOn429(t *testing.T) {
	env := newTestEnv(t, 2)
	token := env.registerAndLogin(t, "carol", "free")

	for i := 0; i < 2; i++ {
		if rec := env.do(http.MethodGet, "/api/v1/indicators/sma?symbol=AAPL", token, ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
	}

	rec := env.do(http.MethodGet, "/api/v1/indicators/sma?symbol=AAPL", token, "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "2" || rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("headers = %v", rec.Header())
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("missing reset headers: %v", rec.Header())
	}
}

func TestUnknownSymbolIs404(t *testing.T) {
	env := newTestEnv(t, 50)
	token := env.registerAndLogin(t, "dave", "free")

	rec := env.do(http.MethodGet, "/api/v1/indicators/sma?symbol=NFLX", token, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
}

// Explicit zeros must fail the parameter contract, not be silently replaced
// by the documented default.
func TestExplicitZeroParameterIs400(t *testing.T) {
	env := newTestEnv(t, 50)
	token := env.registerAndLogin(t, "erin", "premium")

	paths := []string{
		"/api/v1/indicators/sma?symbol=AAPL&window=0",
		"/api/v1/indicators/ema?symbol=AAPL&window=0",
		"/api/v1/indicators/rsi?symbol=AAPL&period=0",
		"/api/v1/indicators/macd?symbol=AAPL&fast_period=0",
		"/api/v1/indicators/bollinger?symbol=AAPL&std_dev=0",
	}
	for _, path := range paths {
		rec := env.do(http.MethodGet, path, token, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d body %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestAbsentParameterKeepsDefault(t *testing.T) {
	env := newTestEnv(t, 50)
	token := env.registerAndLogin(t, "erin2", "free")

	rec := env.do(http.MethodGet, "/api/v1/indicators/sma?symbol=AAPL", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"window":20`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestAPIKeyFlow(t *testing.T) {
	env := newTestEnv(t, 50)
	token := env.registerAndLogin(t, "frank", "pro")

	rec := env.do(http.MethodPost, "/api/v1/auth/api-keys", token, `{"name":"ci"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create key: status %d body %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data models.APIKeyResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("body: %v", err)
	}
	if !strings.HasPrefix(envelope.Data.APIKey, "si_") {
		t.Fatalf("key = %q", envelope.Data.APIKey)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/indicators/rsi?symbol=AAPL&period=2", nil)
	req.Header.Set("X-API-Key", envelope.Data.APIKey)
	res := httptest.NewRecorder()
	env.e.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("rsi with api key: status %d body %s", res.Code, res.Body.String())
	}

	// the listing shows the key by prefix only, never the full key
	rec = env.do(http.MethodGet, "/api/v1/auth/api-keys", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list keys: status %d body %s", rec.Code, rec.Body.String())
	}
	var listEnvelope struct {
		Data models.APIKeyListResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listEnvelope); err != nil {
		t.Fatalf("list body: %v", err)
	}
	if listEnvelope.Data.Count != 1 || len(listEnvelope.Data.Keys) != 1 {
		t.Fatalf("listed %d keys, want 1", listEnvelope.Data.Count)
	}
	k := listEnvelope.Data.Keys[0]
	if k.Name != "ci" || k.Prefix != envelope.Data.Prefix {
		t.Fatalf("listed key = %+v", k)
	}
	if strings.Contains(rec.Body.String(), envelope.Data.APIKey) {
		t.Fatal("listing leaked the full api key")
	}
	if k.LastUsedAt == nil {
		t.Fatal("listed key has no last_used_at after use")
	}
}

func TestUserLimitsEndpoint(t *testing.T) {
	env := newTestEnv(t, 50)
	token := env.registerAndLogin(t, "grace", "free")

	if rec := env.do(http.MethodGet, "/api/v1/indicators/sma?symbol=AAPL", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("sma: status %d", rec.Code)
	}

	rec := env.do(http.MethodGet, "/api/v1/user/limits", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("limits: status %d", rec.Code)
	}
	var envelope struct {
		Data models.UserLimitsResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("body: %v", err)
	}
	if envelope.Data.Tier != "free" || envelope.Data.UsedToday != 1 || envelope.Data.Remaining != 49 {
		t.Fatalf("limits = %+v", envelope.Data)
	}
}
