package controller

import (
	"errors"
	"log/slog"

	deploylogic "github.com/cswni/mailstack/app/deploy/logic"
	"github.com/cswni/mailstack/app/server/logic"
	"github.com/cswni/mailstack/common/dao"
	"github.com/cswni/mailstack/common/service/docker"
	"github.com/cswni/mailstack/common/service/probe"
	"github.com/cswni/mailstack/common/types/define"
	"github.com/gin-gonic/gin"
	"github.com/we7coreteam/w7-rangine-go/v2/src/http/controller"
)

type Stack struct {
	controller.Abstract
}

func (self Stack) Status(http *gin.Context) {
	cfg, err := logic.Config()
	if err != nil {
		self.JsonResponseWithError(http, err, 500)
		return
	}
	states, err := deploylogic.ServiceStates(docker.Sdk.Ctx, docker.Sdk, cfg)
	if err != nil {
		self.JsonResponseWithError(http, err, 500)
		return
	}
	self.JsonResponseWithoutError(http, gin.H{
		"services": states,
	})
}

func (self Stack) History(http *gin.Context) {
	type ParamsValidate struct {
		Limit int `json:"limit"`
	}
	params := ParamsValidate{}
	if !self.Validate(http, &params) {
		return
	}
	cfg, err := logic.Config()
	if err != nil {
		self.JsonResponseWithError(http, err, 500)
		return
	}
	rows, err := dao.Deployment.History(cfg.StackName, params.Limit)
	if err != nil {
		self.JsonResponseWithError(http, err, 500)
		return
	}
	self.JsonResponseWithoutError(http, gin.H{
		"list": rows,
	})
}

// Deploy starts a pipeline run in the background and returns the journal
// row to poll.
func (self Stack) Deploy(http *gin.Context) {
	cfg, err := logic.Config()
	if err != nil {
		self.JsonResponseWithError(http, err, 500)
		return
	}
	latest, err := dao.Deployment.Latest(cfg.StackName)
	if err != nil {
		self.JsonResponseWithError(http, err, 500)
		return
	}
	if latest != nil && latest.Status == define.DeployStatusRunning {
		self.JsonResponseWithError(http, errors.New("a deployment is already running"), 409)
		return
	}
	go func() {
		deployer := deploylogic.NewDeployer(cfg, docker.Sdk)
		if _, err := deployer.Deploy(docker.Sdk.Ctx); err != nil {
			slog.Error("background deploy failed", "err", err)
		}
	}()
	self.JsonResponseWithoutError(http, gin.H{
		"started": true,
	})
}

func (self Stack) Probe(http *gin.Context) {
	cfg, err := logic.Config()
	if err != nil {
		self.JsonResponseWithError(http, err, 500)
		return
	}
	prober := probe.New(
		probe.WithTimeout(cfg.ProbeTimeout),
		probe.WithRetries(1),
	)
	report := prober.Run(http.Request.Context(), probe.Endpoints(*cfg))
	self.JsonResponseWithoutError(http, gin.H{
		"ok":      report.Ok(),
		"results": report.Results,
	})
}
