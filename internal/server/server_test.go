package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"butce-backend/internal/auth"
	"butce-backend/internal/config"
	"butce-backend/internal/models"
	"butce-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const secret = "0123456789abcdef0123456789abcdef"

type harness struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{
		AppEnv:              "test",
		JWTSecret:           secret,
		CORSOrigins:         "*",
		ReportingCurrency:   "USD",
		AllowedCurrencies:   []string{"USD", "EUR", "TRY", "GBP"},
		DefaultInvestTarget: 20,
		DBAcquireTimeout:    5 * time.Second,
	}
	testutil.User(t, db, "op_manager", "op-sifre", models.RoleOperationsManager)
	testutil.User(t, db, "gm_manager", "gm-sifre", models.RoleGeneralManager)
	return &harness{t: t, app: New(cfg, zap.NewNop(), db, nil), db: db}
}

func (h *harness) do(method, target, token, body string) (int, map[string]any) {
	h.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func (h *harness) login(username, password string) string {
	h.t.Helper()
	status, out := h.do("POST", "/api/auth/login", "", fmt.Sprintf(`{"username":%q,"password":%q}`, username, password))
	require.Equal(h.t, 200, status, out)
	return out["token"].(string)
}

func TestHealthAndAuth(t *testing.T) {
	h := newHarness(t)

	status, out := h.do("GET", "/api/health", "", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, "ok", out["status"])

	status, out = h.do("POST", "/api/auth/login", "", `{"username":"op_manager","password":"yanlis"}`)
	assert.Equal(t, 401, status)
	assert.Equal(t, "Kullanıcı adı veya şifre hatalı", out["error"])

	status, _ = h.do("GET", "/api/users/me", "", "")
	assert.Equal(t, 401, status)

	token := h.login("OP_MANAGER", "op-sifre")
	status, out = h.do("GET", "/api/users/me", token, "")
	require.Equal(t, 200, status)
	assert.Equal(t, "op_manager", out["username"])
	assert.Equal(t, string(models.RoleOperationsManager), out["role"])
}

func TestRoleGating(t *testing.T) {
	h := newHarness(t)
	op := h.login("op_manager", "op-sifre")
	gm := h.login("gm_manager", "gm-sifre")

	status, _ := h.do("GET", "/api/reports/summary", op, "")
	assert.Equal(t, 403, status)
	status, _ = h.do("GET", "/api/reports/summary", gm, "")
	assert.Equal(t, 200, status)
	status, _ = h.do("GET", "/api/reports/export", op, "")
	assert.Equal(t, 403, status)

	status, _ = h.do("POST", "/api/transactions", gm, `{}`)
	assert.Equal(t, 403, status)
	status, _ = h.do("GET", "/api/transactions", gm, "")
	assert.Equal(t, 200, status)

	status, _ = h.do("GET", "/api/ret-assignments/summary", op, "")
	assert.Equal(t, 403, status)
	status, _ = h.do("GET", "/api/customers", op, "")
	assert.Equal(t, 200, status)

	// role spellings are folded before comparison
	folded, err := auth.GenerateToken(secret, &auth.Identity{ID: 2, Username: "gm_manager", Role: models.UserRole("genel müdür")})
	require.NoError(t, err)
	status, _ = h.do("GET", "/api/audit-logs", folded, "")
	assert.Equal(t, 200, status)

	unknown, err := auth.GenerateToken(secret, &auth.Identity{ID: 2, Username: "x", Role: models.UserRole("admin")})
	require.NoError(t, err)
	status, _ = h.do("GET", "/api/customers", unknown, "")
	assert.Equal(t, 403, status)
}

func TestEndToEnd(t *testing.T) {
	h := newHarness(t)
	op := h.login("op_manager", "op-sifre")
	gm := h.login("gm_manager", "gm-sifre")

	sp := testutil.Salesperson(t, h.db, "Ayşe", "S5", true)
	member := testutil.RetMember(t, h.db, "Retention Bir", true)

	status, cust := h.do("POST", "/api/customers", op, fmt.Sprintf(`{"name":"Ali Veli","salesperson_id":%d}`, sp.ID))
	require.Equal(t, 201, status, cust)
	customerID := uint(cust["id"].(float64))
	assert.Equal(t, fmt.Sprintf("%06d", customerID), cust["customer_code"])

	// not eligible before the first transaction
	assignBody := fmt.Sprintf(`{"customer_id":%d,"ret_member_id":%d}`, customerID, member.ID)
	status, out := h.do("POST", "/api/ret-assignments", gm, assignBody)
	assert.Equal(t, 400, status)
	assert.Equal(t, "Müşteri şu an atamaya uygun değil.", out["error"])

	status, tx := h.do("POST", "/api/transactions", op, fmt.Sprintf(
		`{"type":"YATIRIM","currency":"EUR","original_amount":"100,50","manual_rate_to_usd":1.08,"customer_id":%d,"salesperson_id":%d}`,
		customerID, sp.ID))
	require.Equal(t, 201, status, tx)
	assert.Equal(t, "108.54", tx["amount_usd"])

	status, first := h.do("POST", "/api/ret-assignments", gm, assignBody)
	require.Equal(t, 201, status, first)
	assert.Equal(t, false, first["idempotent"])

	status, second := h.do("POST", "/api/ret-assignments", gm, assignBody)
	require.Equal(t, 200, status, second)
	assert.Equal(t, true, second["idempotent"])
	assert.Equal(t, first["data"].(map[string]any)["id"], second["data"].(map[string]any)["id"])
	assert.Equal(t, "gm_manager kullanıcı", second["data"].(map[string]any)["assigned_by_name"])

	status, summary := h.do("GET", "/api/reports/summary", gm, "")
	require.Equal(t, 200, status)
	assert.Equal(t, "108.54", summary["total_invest_usd"])

	status, logs := h.do("GET", "/api/audit-logs?entity_type=transaction", gm, "")
	require.Equal(t, 200, status, logs)
}
