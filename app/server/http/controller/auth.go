package controller

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/cswni/mailstack/app/server/logic"
	"github.com/gin-gonic/gin"
	"github.com/we7coreteam/w7-rangine-go/v2/src/http/controller"
)

type Auth struct {
	controller.Abstract
}

// Token exchanges the operator api key for a short lived bearer token.
func (self Auth) Token(http *gin.Context) {
	type ParamsValidate struct {
		ApiKey string `json:"apiKey" binding:"required"`
		TtlSec int    `json:"ttlSec"`
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
	if subtle.ConstantTimeCompare([]byte(params.ApiKey), []byte(cfg.ApiKey)) != 1 {
		self.JsonResponseWithError(http, errors.New("invalid api key"), 401)
		return
	}
	token, err := logic.Token{}.Issue(time.Duration(params.TtlSec) * time.Second)
	if err != nil {
		self.JsonResponseWithError(http, err, 500)
		return
	}
	self.JsonResponseWithoutError(http, gin.H{
		"token": token,
	})
}
