package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/linskybing/fieldreport-go/internal/config"
	"github.com/linskybing/fieldreport-go/internal/domain/user"
	"github.com/linskybing/fieldreport-go/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupJWT(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.JwtSecret = "unit-test-secret"
	config.Issuer = "fieldreport-test"
	Init()
}

func protectedRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", JWTAuthMiddleware(), func(c *gin.Context) {
		uid, err := utils.GetUserIDFromContext(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": uid})
	})
	return r
}

func TestGenerateAndParseToken(t *testing.T) {
	setupJWT(t)

	tok, err := GenerateToken(7, "mg01@obra.com.br", user.RoleSupervisor, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "mg01@obra.com.br", claims.Username)
	assert.Equal(t, string(user.RoleSupervisor), claims.Role)
	assert.Equal(t, "fieldreport-test", claims.Issuer)
}

func TestParseToken_RejectsOtherKeyAndAlgorithm(t *testing.T) {
	setupJWT(t)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1})
	signed, err := forged.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = ParseToken(signed)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 1})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken(unsigned)
	assert.Error(t, err)
}

func TestJWTAuthMiddleware(t *testing.T) {
	setupJWT(t)
	r := protectedRouter()

	valid, err := GenerateToken(3, "tech", user.RoleTechnician, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(3, "tech", user.RoleTechnician, -time.Minute)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{name: "bearer header", header: "Bearer " + valid, want: http.StatusOK},
		{name: "cookie", cookie: valid, want: http.StatusOK},
		{name: "missing", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Token " + valid, want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc.def.ghi", want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, want: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
