package auth

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"butce-backend/internal/apperror"
	"butce-backend/internal/config"
	"butce-backend/internal/models"
	"butce-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want models.UserRole
		ok   bool
	}{
		{"GENEL_MUDUR", models.RoleGeneralManager, true},
		{"Genel Müdür", models.RoleGeneralManager, true},
		{"  genel   müdür ", models.RoleGeneralManager, true},
		{"OPERASYON MÜDÜRÜ", models.RoleOperationsManager, true},
		{"operasyon_muduru", models.RoleOperationsManager, true},
		{"ADMIN", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRole(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateToken(t *testing.T) {
	id := &Identity{ID: 42, Username: "op_manager", DisplayName: "Operasyon", Role: models.RoleOperationsManager}

	token, err := GenerateToken(testSecret, id)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "op_manager", claims.Username)
	assert.Equal(t, "Operasyon", claims.Name)
	assert.Equal(t, "OPERASYON_MUDURU", claims.Role)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), claims.ExpiresAt.Time, time.Minute)

	_, err = ParseToken("another-secret-another-secret-xx", token)
	assert.Error(t, err)
}

func signRaw(t *testing.T, claims *JWTCustomClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func newProtectedApp(roles ...models.UserRole) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperror.ErrorHandler(false)})
	app.Get("/me", JWTMiddleware(testSecret), RequireRole(roles...), MeHandler())
	return app
}

func get(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestMiddleware(t *testing.T) {
	gm, err := GenerateToken(testSecret, &Identity{ID: 1, Username: "gm", Role: models.RoleGeneralManager})
	require.NoError(t, err)
	op, err := GenerateToken(testSecret, &Identity{ID: 2, Username: "op", Role: models.RoleOperationsManager})
	require.NoError(t, err)

	legacy := signRaw(t, &JWTCustomClaims{
		Role:             "Genel Müdür",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "3", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	unknown := signRaw(t, &JWTCustomClaims{
		Role:             "MUHASEBE",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "4", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	expired := signRaw(t, &JWTCustomClaims{
		Role:             "GENEL_MUDUR",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "5", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})

	gmOnly := newProtectedApp(models.RoleGeneralManager)
	anyRole := newProtectedApp()

	assert.Equal(t, 401, get(t, gmOnly, ""))
	assert.Equal(t, 401, get(t, gmOnly, "not-a-token"))
	assert.Equal(t, 401, get(t, gmOnly, expired))
	assert.Equal(t, 200, get(t, gmOnly, gm))
	assert.Equal(t, 200, get(t, gmOnly, legacy))
	assert.Equal(t, 403, get(t, gmOnly, op))
	assert.Equal(t, 403, get(t, gmOnly, unknown))

	assert.Equal(t, 200, get(t, anyRole, op))
	assert.Equal(t, 200, get(t, anyRole, gm))
	assert.Equal(t, 403, get(t, anyRole, unknown))
}

func TestUserStoreAndLogin(t *testing.T) {
	db := testutil.NewDB(t)
	store := NewUserStore(db)
	ctx := testutil.Ctx()

	created, err := store.EnsureUser(ctx, "GM_Manager", "Genel Müdür", "s3cret!", models.RoleGeneralManager)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.EnsureUser(ctx, "gm_manager", "Genel Müdür", "other", models.RoleGeneralManager)
	require.NoError(t, err)
	assert.False(t, created)

	id, err := store.Verify(ctx, " gm_manager ", "s3cret!")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, models.RoleGeneralManager, id.Role)
	assert.Equal(t, "Genel Müdür", id.DisplayName)

	id, err = store.Verify(ctx, "gm_manager", "wrong")
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = store.Verify(ctx, "nobody", "s3cret!")
	require.NoError(t, err)
	assert.Nil(t, id)

	cfg := &config.Config{JWTSecret: testSecret}
	app := fiber.New(fiber.Config{ErrorHandler: apperror.ErrorHandler(false)})
	app.Post("/login", LoginHandler(cfg, store))

	login := func(body string) (int, map[string]any) {
		req := httptest.NewRequest("POST", "/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		var out map[string]any
		require.NoError(t, json.Unmarshal(raw, &out))
		return resp.StatusCode, out
	}

	status, out := login(`{"username":"gm_manager","password":"s3cret!"}`)
	require.Equal(t, 200, status)
	token, _ := out["token"].(string)
	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "GENEL_MUDUR", claims.Role)

	status, out = login(`{"username":"gm_manager","password":"nope"}`)
	assert.Equal(t, 401, status)
	assert.Equal(t, "Kullanıcı adı veya şifre hatalı", out["error"])

	status, _ = login(`{"username":""}`)
	assert.Equal(t, 400, status)
}
