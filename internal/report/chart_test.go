package report

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"butce-backend/internal/apperror"
	"butce-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGranularityStart(t *testing.T) {
	thu := time.Date(2026, 10, 15, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-15", Daily.start(thu).Format("2006-01-02"))
	assert.Equal(t, "2026-10-12", Weekly.start(thu).Format("2006-01-02"))
	assert.Equal(t, "2026-10-01", Monthly.start(thu).Format("2006-01-02"))

	sun := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-12", Weekly.start(sun).Format("2006-01-02"))
}

func TestFlowChart(t *testing.T) {
	l := newLedger(t)
	svc := newReportService(l.db, nil)

	t.Run("daily default", func(t *testing.T) {
		chart, err := svc.FlowChart(testutil.Ctx(), Daily, 0)
		require.NoError(t, err)
		assert.Equal(t, "2026-10-09", chart.From)
		assert.Equal(t, "2026-10-15", chart.To)
		require.Len(t, chart.Points, 7)

		assert.Equal(t, "2026-10-09", chart.Points[0].Label)
		assert.True(t, chart.Points[0].NetUSD.IsZero())
		assertUSD(t, "50", chart.Points[1].InvestUSD)
		assertUSD(t, "30", chart.Points[2].WithdrawUSD)
		// legacy spelling counts as a withdrawal
		assertUSD(t, "2", chart.Points[3].WithdrawUSD)

		assertUSD(t, "50", chart.GrandTotals.InvestUSD)
		assertUSD(t, "32", chart.GrandTotals.WithdrawUSD)
		assertUSD(t, "18", chart.GrandTotals.NetUSD)
	})

	t.Run("weekly buckets start on monday", func(t *testing.T) {
		chart, err := svc.FlowChart(testutil.Ctx(), Weekly, 2)
		require.NoError(t, err)
		require.Len(t, chart.Points, 2)
		assert.Equal(t, "2026-10-05", chart.Points[0].Label)
		assertUSD(t, "20", chart.Points[0].NetUSD)
		assert.Equal(t, "2026-10-12", chart.Points[1].Label)
		assertUSD(t, "-2", chart.Points[1].NetUSD)
	})

	t.Run("monthly covers whole months", func(t *testing.T) {
		chart, err := svc.FlowChart(testutil.Ctx(), Monthly, 2)
		require.NoError(t, err)
		assert.Equal(t, "2026-09-01", chart.From)
		assert.Equal(t, "2026-10-31", chart.To)
		require.Len(t, chart.Points, 2)
		assertUSD(t, "500", chart.Points[0].InvestUSD)
		assertUSD(t, "198.54", chart.Points[1].InvestUSD)
		assertUSD(t, "166.54", chart.Points[1].NetUSD)
	})

	t.Run("too many points", func(t *testing.T) {
		_, err := svc.FlowChart(testutil.Ctx(), Daily, 400)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})
}

func TestFlowChartHandler(t *testing.T) {
	l := newLedger(t)
	svc := newReportService(l.db, nil)

	app := fiber.New(fiber.Config{ErrorHandler: apperror.ErrorHandler(false)})
	app.Get("/chart", FlowChartHandler(svc))

	get := func(target string) (int, map[string]any) {
		resp, err := app.Test(httptest.NewRequest("GET", target, nil))
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		out := map[string]any{}
		_ = json.Unmarshal(raw, &out)
		return resp.StatusCode, out
	}

	status, out := get("/chart?period=monthly&count=3")
	require.Equal(t, 200, status)
	assert.Equal(t, "monthly", out["period"])
	assert.Len(t, out["points"], 3)

	status, _ = get("/chart?period=yearly")
	assert.Equal(t, 400, status)
	status, _ = get("/chart?count=abc")
	assert.Equal(t, 400, status)
}
