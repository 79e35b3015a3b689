package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type mwOKResponse struct {
	Owner string `json:"owner"`
}

type mwErrorResponse struct {
	Error string `json:"error"`
}

const testSecret = "test_secret"

func testConfig() config.Config {
	return config.Config{JWTSecret: testSecret}
}

// ownerをそのまま返すだけのハンドラ
func echoOwnerHandler(c echo.Context) error {
	owner, _ := c.Get(CtxOwnerKey).(string)
	return c.JSON(http.StatusOK, mwOKResponse{Owner: owner})
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func doRequest(authz string) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/me", echoOwnerHandler, AuthJWT(testConfig()))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthJWT_ValidToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "alice",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(15 * time.Minute).Unix(),
	})

	rec := doRequest("Bearer " + token)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.Owner)
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	rec := doRequest("")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body mwErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body.Error)
}

func TestAuthJWT_WrongScheme(t *testing.T) {
	rec := doRequest("Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	token := signToken(t, "other_secret", jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(15 * time.Minute).Unix(),
	})

	rec := doRequest("Bearer " + token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(-1 * time.Minute).Unix(),
	})

	rec := doRequest("Bearer " + token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_MissingSub(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(15 * time.Minute).Unix(),
	})

	rec := doRequest("Bearer " + token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
