package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/config"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/api/handler"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/api/middleware"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/redis"
)

const (
	// 排期/深化设计重算：每个操作人每分钟最多 10 次
	regenRateLimit  = 10
	regenRateWindow = time.Minute

	programmeBodyLimit = 1 << 20 // 1MB
	icsUploadLimit     = 5 << 20 // 5MB

	// 请求体超限错误码
	codeProgrammeTooLarge = 22013
	codeICSTooLarge       = 23005
)

// Setup 初始化并返回 Gin 路由引擎；rdb 可为 nil
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	regenLimit := middleware.RateLimit(rdb, regenRateLimit, regenRateWindow)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Actor())
	{
		// 项目维度
		jobs := v1.Group("/jobs/:id")
		{
			jobs.POST("/slots/generate", regenLimit, h.Slot.GenerateSlots)
			jobs.GET("/slots", h.Slot.ListSlots)
			jobs.GET("/slots/export", h.Export.ExportSlots)
			jobs.GET("/level-coverage", h.Slot.CheckLevelCoverage)

			jobs.GET("/drafting", h.Drafting.ListMilestones)

			jobs.GET("/programme", h.Programme.GetProgramme)
			jobs.PUT("/programme", middleware.BodyLimit(programmeBodyLimit, codeProgrammeTooLarge), h.Programme.SaveProgramme)
			jobs.PUT("/programme/reorder", h.Programme.ReorderEntries)
			jobs.POST("/programme/:entryId/split", h.Programme.SplitEntry)
			jobs.DELETE("/programme/:entryId", h.Programme.DeleteEntry)
		}

		// 生产排期
		slots := v1.Group("/slots/:id")
		{
			slots.PUT("/adjust", h.Slot.AdjustSlot)
			slots.POST("/book", h.Slot.BookSlot)
			slots.POST("/complete", h.Slot.CompleteSlot)
			slots.DELETE("", h.Slot.DeleteSlot)
			slots.GET("/adjustments", h.Slot.ListAdjustments)
		}

		// 深化设计
		drafting := v1.Group("/drafting")
		{
			drafting.POST("/generate", regenLimit, h.Drafting.Generate)
			drafting.PUT("/:id/assign", h.Drafting.Assign)
		}

		// 节假日
		holidays := v1.Group("/holidays")
		{
			holidays.GET("", h.Holiday.List)
			holidays.POST("", h.Holiday.Create)
			holidays.POST("/import", middleware.BodyLimit(icsUploadLimit, codeICSTooLarge), h.Holiday.ImportICS)
			holidays.DELETE("/:id", h.Holiday.Delete)
		}
	}

	return r
}
