package report

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"butce-backend/internal/apperror"
	"butce-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExport(t *testing.T) {
	l := newLedger(t)
	svc := newReportService(l.db, nil)

	f, err := svc.Export(testutil.Ctx(), mustRange(t, "2026-10-01", "2026-10-31"))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, exportSheet, f.GetSheetName(0))

	cell := func(ref string) string {
		t.Helper()
		v, err := f.GetCellValue(exportSheet, ref)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Tür", cell("C1"))
	assert.Equal(t, "2026-10-02 14:00", cell("B2"))
	assert.Equal(t, "YATIRIM", cell("C2"))
	assert.Equal(t, "Ayşe", cell("E2"))
	assert.Equal(t, "108.54", cell("J2"))

	// legacy spelling is exported as ÇEKİM
	assert.Equal(t, "ÇEKİM", cell("C5"))
	assert.Equal(t, "Can", cell("E5"))

	assert.Equal(t, "", cell("E6"))
	assert.Equal(t, "Retention", cell("F6"))
	assert.Equal(t, "", cell("A7"))

	assert.Equal(t, "Toplam yatırım (USD)", cell("A8"))
	assert.Equal(t, "198.54", cell("J8"))
	assert.Equal(t, "32", cell("J9"))
	assert.Equal(t, "166.54", cell("J10"))
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "islemler.xlsx", exportFilename(mustRange(t, "", "")))
	assert.Equal(t, "islemler_2026-10-01_2026-10-31.xlsx", exportFilename(mustRange(t, "2026-10-01", "2026-10-31")))
	assert.Equal(t, "islemler_2026-10-01.xlsx", exportFilename(mustRange(t, "2026-10-01", "")))
}

func TestExportHandler(t *testing.T) {
	l := newLedger(t)
	svc := newReportService(l.db, nil)

	app := fiber.New(fiber.Config{ErrorHandler: apperror.ErrorHandler(false)})
	app.Get("/export", ExportHandler(svc))

	resp, err := app.Test(httptest.NewRequest("GET", "/export?from=2026-09-01&to=2026-09-30", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, xlsxMIME, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "islemler_2026-09-01_2026-09-30.xlsx")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2)
	assert.Equal(t, "Can", rows[1][4])
	assert.Equal(t, "500", rows[1][9])

	resp, err = app.Test(httptest.NewRequest("GET", "/export?from=bad", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
