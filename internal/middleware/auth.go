package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"prediction-wallet-service/internal/models"
	"prediction-wallet-service/internal/services"
	"prediction-wallet-service/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const accountKey = "account"
const roleKey = "role"

type identityClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

func parseToken(tokenString, secret string) (*identityClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &identityClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*identityClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// Auth verifies the bearer token and resolves the subject to a local
// account, creating it on first sight. The resolved account is stored on
// the request context for handlers.
func Auth(secret string, balance *services.BalanceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("missing bearer token", nil, http.StatusUnauthorized))
			return
		}

		claims, err := parseToken(token, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid token", nil, http.StatusUnauthorized))
			return
		}

		account, err := balance.EnsureAccount(claims.Subject, claims.Name, claims.Email, claims.Phone)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, common.NewErrorResponse("could not resolve account", nil, http.StatusInternalServerError))
			return
		}

		c.Set(accountKey, account)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// RequireAdmin gates a route on the token's role claim. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role := c.GetString(roleKey); role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, common.NewErrorResponse("admin access required", nil, http.StatusForbidden))
			return
		}
		c.Next()
	}
}

// CurrentAccount returns the account resolved by Auth.
func CurrentAccount(c *gin.Context) *models.Account {
	v, ok := c.Get(accountKey)
	if !ok {
		return nil
	}
	account, _ := v.(*models.Account)
	return account
}
