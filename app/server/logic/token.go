package logic

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/we7coreteam/w7-rangine-go/v2/pkg/support/facade"
)

const DefaultTokenTtl = 12 * time.Hour

type TokenClaims struct {
	jwt.RegisteredClaims
}

type Token struct {
}

// Secret signs API tokens with the operator API key from mailstack.env.
func (self Token) Secret() []byte {
	return []byte(facade.GetConfig().GetString("mailstack.api_key"))
}

func (self Token) Issue(ttl time.Duration) (string, error) {
	if len(self.Secret()) == 0 {
		return "", errors.New("api key not configured")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTtl
	}
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mailstack",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(self.Secret())
}
