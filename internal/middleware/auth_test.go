package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prediction-wallet-service/internal/cache"
	"prediction-wallet-service/internal/models"
	"prediction-wallet-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-jwt-secret"

func newAuthTestEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Account{}, &models.LedgerEntry{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	balance := services.NewBalanceService(db, cache.New(nil))

	r := gin.New()
	r.GET("/me", Auth(testSecret, balance), func(c *gin.Context) {
		account := CurrentAccount(c)
		c.JSON(http.StatusOK, gin.H{"externalId": account.ExternalID, "name": account.Name})
	})
	r.GET("/admin", Auth(testSecret, balance), RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, db
}

func issueToken(t *testing.T, secret, sub, name, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  sub,
		"name": name,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func doGet(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthResolvesAccount(t *testing.T) {
	r, db := newAuthTestEnv(t)
	token := issueToken(t, testSecret, "sub-77", "Asha", "user")

	w := doGet(r, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "sub-77")

	var account models.Account
	if err := db.Where("external_id = ?", "sub-77").First(&account).Error; err != nil {
		t.Fatalf("account not created on first sight: %v", err)
	}
	assert.Equal(t, "Asha", account.Name)

	// A second request reuses the same row.
	doGet(r, "/me", token)
	var count int64
	db.Model(&models.Account{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAuthRejectsBadTokens(t *testing.T) {
	r, _ := newAuthTestEnv(t)

	w := doGet(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "missing header")

	w = doGet(r, "/me", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "malformed token")

	w = doGet(r, "/me", issueToken(t, "other-secret", "sub-1", "X", "user"))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "wrong signing key")
}

func TestRequireAdmin(t *testing.T) {
	r, _ := newAuthTestEnv(t)

	w := doGet(r, "/admin", issueToken(t, testSecret, "sub-1", "User", "user"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doGet(r, "/admin", issueToken(t, testSecret, "sub-2", "Op", "admin"))
	assert.Equal(t, http.StatusOK, w.Code)
}
