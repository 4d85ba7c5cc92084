package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mdavis72884/bramble-claude-sub001/config"
	"github.com/mdavis72884/bramble-claude-sub001/internal/api/handler"
	"github.com/mdavis72884/bramble-claude-sub001/internal/repository"
	"github.com/mdavis72884/bramble-claude-sub001/internal/service"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/jwt"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/metrics"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/redis"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, BodyLimitBytes: 1 << 20},
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-key-for-router-2026",
			Issuer:         "bramble-auth",
			AccessTokenTTL: 15 * time.Minute,
		},
		Scheduler: config.SchedulerConfig{MaxSpanDays: 1100, PreviewCacheTTL: time.Minute},
		Draft:     config.DraftConfig{TTL: time.Hour},
		RateLimit: config.RateLimitConfig{Requests: 100, Window: time.Minute},
		Metrics:   config.MetricsConfig{Enabled: true, Namespace: "test"},
	}
}

func setupEngine(t *testing.T) (*gin.Engine, *jwt.Manager) {
	t.Helper()
	cfg := testConfig()

	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { raw.Close() })
	rdb := redis.Wrap(raw, zap.NewNop())

	reg := prometheus.NewRegistry()
	m := metrics.NewMetricsWith(cfg.Metrics.Namespace, reg, reg)

	// no database: only stateless routes are exercised
	repo := repository.NewRepository(nil)
	svc := service.NewService(cfg, repo, rdb, m, zap.NewNop())
	jwtMgr := jwt.NewManager(&cfg.Auth)

	return Setup(cfg, handler.NewHandler(svc), jwtMgr, rdb, nil, m, zap.NewNop()), jwtMgr
}

func TestHealth(t *testing.T) {
	r, _ := setupEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAPIRequiresToken(t *testing.T) {
	r, _ := setupEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/series", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFamilyCannotCreateSeries(t *testing.T) {
	r, mgr := setupEngine(t)
	token, err := mgr.GenerateAccessToken("user-1", jwt.RoleFamily, "coop-1")
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/series", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPreviewEndToEnd(t *testing.T) {
	r, mgr := setupEngine(t)
	token, err := mgr.GenerateAccessToken("user-1", jwt.RoleFamily, "coop-1")
	require.NoError(t, err)

	body := `{"startDate":"2025-01-06","endDate":"2025-01-12","dayTimes":[{"dayOfWeek":2,"startTime":"13:00","endTime":"14:00"}]}`
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/v1/schedules/preview", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"date":"2025-01-07"`)
		assert.Contains(t, w.Body.String(), `"summary":"Tue, 1pm - 2pm"`)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_preview_cache_total{result="hit"} 1`)
}
