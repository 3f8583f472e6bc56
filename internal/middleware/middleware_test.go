package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func token(t *testing.T, uid string, roles []string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"uid":   uid,
		"roles": roles,
		"perms": []string{"timeline:edit"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/", JWTAuth(testSecret))
	api.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("user_id")) })
	api.GET("/approve", RequireRole("kepala_marketing"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.GET("/edit", RequirePermission("timeline:edit"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r *gin.Engine, path, tok string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := router()
	if w := do(r, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: %d", w.Code)
	}
	if w := do(r, "/me", "garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: %d", w.Code)
	}
	w := do(r, "/me", token(t, "u-1", nil))
	if w.Code != http.StatusOK || w.Body.String() != "u-1" {
		t.Errorf("valid token: %d %s", w.Code, w.Body.String())
	}
	if w := do(r, "/me?token="+token(t, "u-2", nil), ""); w.Code != http.StatusOK {
		t.Errorf("query token: %d", w.Code)
	}
}

func TestRoleAndPermission(t *testing.T) {
	r := router()
	if w := do(r, "/approve", token(t, "u-1", []string{"produksi"})); w.Code != http.StatusForbidden {
		t.Errorf("missing role: %d", w.Code)
	}
	if w := do(r, "/approve", token(t, "u-1", []string{"kepala_marketing"})); w.Code != http.StatusNoContent {
		t.Errorf("approver: %d", w.Code)
	}
	if w := do(r, "/approve", token(t, "u-1", []string{AdminRole})); w.Code != http.StatusNoContent {
		t.Errorf("admin: %d", w.Code)
	}
	if w := do(r, "/edit", token(t, "u-1", nil)); w.Code != http.StatusNoContent {
		t.Errorf("permission: %d", w.Code)
	}
}
