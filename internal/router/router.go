package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/AlienQ7/Task/internal/config"
	"github.com/AlienQ7/Task/internal/handler"
	"github.com/AlienQ7/Task/internal/logger"
)

// Setup 配置 Gin 引擎：会话、日志与恢复中间件、模板与全部路由。
func Setup(cfg config.AppConfig, api *handler.API) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	r := gin.New()
	r.Use(logger.GinLogger(logger.L), logger.GinRecovery(logger.L))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("mission_session", store))

	r.LoadHTMLGlob("web/template/*.html")
	r.Static("/static", "./web/static")

	Register(r, api)

	return r
}

// Register 挂载全部路由，测试里可以直接对裸引擎调用。
func Register(r *gin.Engine, api *handler.API) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/auth", api.ShowAuthPage)
	r.POST("/auth/signup", api.Signup)
	r.POST("/auth/login", api.Login)
	r.GET("/logout", api.Logout)

	auth := r.Group("")
	auth.Use(handler.AuthRequired())
	{
		auth.GET("/", api.ShowDashboard)
		auth.GET("/ranks", api.ShowRanks)
		auth.POST("/account/delete", api.DeleteAccount)

		apiGroup := auth.Group("/api")
		{
			apiGroup.POST("/tasks", api.CreateTask)
			apiGroup.POST("/tasks/:id/toggle", api.ToggleTask)
			apiGroup.POST("/tasks/:id/permanent", api.SetTaskPermanent)
			apiGroup.DELETE("/tasks/:id", api.DeleteTask)
			apiGroup.POST("/checkin", api.Checkin)
			apiGroup.POST("/objective", api.SaveObjective)
			apiGroup.POST("/quota", api.SaveQuota)
			apiGroup.POST("/penalty", api.SetPenalty)
		}
	}
}
