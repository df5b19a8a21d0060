package common

import (
	"errors"
	"strings"

	"github.com/cswni/mailstack/app/server/logic"
	"github.com/cswni/mailstack/common/function"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/we7coreteam/w7-rangine-go/v2/src/http/middleware"
)

type AuthMiddleware struct {
	middleware.Abstract
}

func (self AuthMiddleware) Process(http *gin.Context) {
	if function.InArray([]string{
		"/api/auth/token",
		"/healthz",
	}, http.Request.URL.Path) {
		http.Next()
		return
	}
	if http.GetHeader("Authorization") == "" {
		self.JsonResponseWithError(http, errors.New("authorization required"), 401)
		http.AbortWithStatus(401)
		return
	}
	authCode := strings.Split(http.GetHeader("Authorization"), "Bearer ")
	if len(authCode) != 2 {
		self.JsonResponseWithError(http, errors.New("authorization required"), 401)
		http.AbortWithStatus(401)
		return
	}

	claims := logic.TokenClaims{}
	token, err := jwt.ParseWithClaims(authCode[1], &claims, func(t *jwt.Token) (interface{}, error) {
		return logic.Token{}.Secret(), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		self.JsonResponseWithError(http, err, 401)
		http.AbortWithStatus(401)
		return
	}
	if token.Valid {
		http.Next()
		return
	}
	self.JsonResponseWithError(http, errors.New("authorization required"), 401)
	http.AbortWithStatus(401)
}
