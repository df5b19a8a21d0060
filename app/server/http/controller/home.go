package controller

import (
	"github.com/cswni/mailstack/app/server/logic"
	"github.com/cswni/mailstack/common/dao"
	"github.com/cswni/mailstack/common/service/docker"
	"github.com/gin-gonic/gin"
	"github.com/we7coreteam/w7-rangine-go/v2/pkg/support/facade"
	"github.com/we7coreteam/w7-rangine-go/v2/src/http/controller"
)

type Home struct {
	controller.Abstract
}

func (self Home) Info(http *gin.Context) {
	cfg, err := logic.Config()
	if err != nil {
		self.JsonResponseWithError(http, err, 500)
		return
	}
	info, err := docker.Sdk.Client.Info(docker.Sdk.Ctx)
	if err != nil {
		self.JsonResponseWithError(http, err, 500)
		return
	}
	latest, _ := dao.Deployment.Latest(cfg.StackName)
	self.JsonResponseWithoutError(http, gin.H{
		"version":   facade.GetConfig().GetString("app.version"),
		"hostname":  cfg.Hostname,
		"stackName": cfg.StackName,
		"swarm": gin.H{
			"nodeId":    info.Swarm.NodeID,
			"isManager": info.Swarm.ControlAvailable,
			"nodes":     info.Swarm.Nodes,
		},
		"lastDeployment": latest,
	})
}

func (self Home) Healthz(http *gin.Context) {
	http.String(200, "ok")
}
