package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qr_attendance/internal/models"
)

const testSecret = "test-secret"

func newProtectedRouter(denylist Denylist) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JWTMiddleware(testSecret, denylist), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"companyId": CompanyID(c), "jti": c.GetString(ContextJTI)})
	})
	return r
}

func get(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware(t *testing.T) {
	denylist := NewMemoryDenylist()
	r := newProtectedRouter(denylist)
	user := &models.User{ID: 7, Username: "admin", Role: "admin", CompanyID: "C1"}

	token, exp, err := IssueToken(user, testSecret, time.Hour)
	require.NoError(t, err)

	w := get(r, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"companyId":"C1"`)

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Token "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer not-a-jwt").Code)

	forged, _, err := IssueToken(user, "other-secret", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+forged).Code)

	noCompany, _, err := IssueToken(&models.User{ID: 8, Username: "x"}, testSecret, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+noCompany).Code)

	// 登出后 Token 失效
	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	require.NoError(t, denylist.Add(context.Background(), claims.ID, exp))
	w = get(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "logged out")
}

func TestMemoryDenylistExpiry(t *testing.T) {
	d := NewMemoryDenylist()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, d.Add(ctx, "a", now.Add(time.Minute)))
	ok, err := d.Contains(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, err = d.Contains(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.Add(ctx, "b", now.Add(time.Minute)))
	_, present := d.entries["a"]
	assert.False(t, present)
}

func TestRedisDenylist(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	d := NewRedisDenylist(client)
	ctx := context.Background()

	require.NoError(t, d.Add(ctx, "a", time.Now().Add(time.Minute)))
	ok, err := d.Contains(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Contains(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = d.Contains(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	// 已过期的 Token 不写入
	require.NoError(t, d.Add(ctx, "old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists(denylistKeyPrefix+"old"))
}
