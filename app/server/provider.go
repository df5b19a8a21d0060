package server

import (
	"github.com/cswni/mailstack/app/server/http/controller"
	common "github.com/cswni/mailstack/common/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	httpserver "github.com/we7coreteam/w7-rangine-go/v2/src/http/server"
)

type Provider struct {
}

func (provider *Provider) Register(httpServer *httpserver.Server) {
	httpServer.RegisterRouters(func(engine *gin.Engine) {
		engine.GET("/healthz", controller.Home{}.Healthz)

		cors := engine.Group("/", common.CorsMiddleware{}.Process, gzip.Gzip(gzip.DefaultCompression))

		cors.POST("/api/auth/token", controller.Auth{}.Token)

		cors.POST("/api/home/info", controller.Home{}.Info)

		cors.POST("/api/stack/status", controller.Stack{}.Status)
		cors.POST("/api/stack/history", controller.Stack{}.History)
		cors.POST("/api/stack/deploy", controller.Stack{}.Deploy)
		cors.POST("/api/stack/probe", controller.Stack{}.Probe)

		cors.POST("/api/service/logs", controller.Service{}.Logs)
		engine.GET("/api/service/logs/follow", controller.Service{}.LogsFollow)
	})
}
