package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mdavis72884/bramble-claude-sub001/config"
	"github.com/mdavis72884/bramble-claude-sub001/internal/api/handler"
	"github.com/mdavis72884/bramble-claude-sub001/internal/api/middleware"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/jwt"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/metrics"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/redis"
)

const healthTimeout = 2 * time.Second

// Setup builds the gin engine. db, rdb and m may be nil.
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	db *gorm.DB,
	m *metrics.Metrics,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	if cfg.Server.BodyLimitBytes > 0 {
		r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))
	}
	if m != nil {
		r.Use(middleware.Metrics(m))
	}

	// ── health / metrics ──
	r.GET("/health", healthHandler(db, rdb))
	if m != nil && cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window, logger))
	v1.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
	{
		editors := middleware.RoleAuth(jwt.RoleAdmin, jwt.RoleInstructor)
		admins := middleware.RoleAuth(jwt.RoleAdmin)

		// stateless schedule tools
		schedules := v1.Group("/schedules")
		{
			schedules.POST("/preview", h.Schedule.Preview)
			schedules.POST("/extract", h.Schedule.Extract)
			schedules.POST("/summary", h.Schedule.Summary)
			schedules.POST("/legacy-preview", h.Schedule.LegacyPreview)
			schedules.POST("/import-ics", h.Schedule.ImportICS)
		}

		// recurring classes
		series := v1.Group("/series")
		{
			series.GET("", h.Series.ListSeries)
			series.POST("", editors, h.Series.CreateSeries)
			series.GET("/:id", h.Series.GetSeries)
			series.PUT("/:id", editors, h.Series.UpdateSeries)
			series.DELETE("/:id", admins, h.Series.DeleteSeries)
			series.GET("/:id/sessions", h.Series.ListSessions)
			series.POST("/:id/one-offs", editors, h.Series.AddOneOff)
			series.POST("/:id/migrate-legacy", admins, h.Series.MigrateLegacy)
			series.GET("/:id/export.ics", h.Export.ExportICS)
			series.GET("/:id/export.xlsx", h.Export.ExportXLSX)
		}

		// form drafts
		drafts := v1.Group("/drafts")
		{
			drafts.PUT("/:key", h.Draft.SaveDraft)
			drafts.GET("/:key", h.Draft.GetDraft)
			drafts.DELETE("/:key", h.Draft.DeleteDraft)
		}
	}

	return r
}

// healthHandler reports dependency status. Only the database is required;
// redis is optional and reported as "disabled" when not configured.
func healthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		body := gin.H{"status": "ok", "database": "disabled", "redis": "disabled"}

		if db != nil {
			body["database"] = "ok"
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				body["database"] = "down"
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}

		if rdb != nil {
			body["redis"] = "ok"
			if err := rdb.Ping(ctx); err != nil {
				body["redis"] = "down"
			}
		}

		c.JSON(status, body)
	}
}
