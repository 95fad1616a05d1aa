package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"butce-backend/internal/apperror"
	"butce-backend/internal/fold"
	"butce-backend/internal/models"
	"butce-backend/internal/period"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet = "İşlemler"
	xlsxMIME    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeaders = []string{"ID", "Tarih", "Tür", "Müşteri", "Satışçı", "Ret üyesi", "Tutar", "Para birimi", "Kur", "USD", "Not"}

type exportRow struct {
	ID              uint
	Type            models.TransactionType
	OriginalAmount  decimal.Decimal
	Currency        string
	ManualRateToUSD decimal.NullDecimal `gorm:"column:manual_rate_to_usd"`
	AmountUSD       decimal.Decimal     `gorm:"column:amount_usd"`
	CustomerName    *string
	SalespersonName *string
	RetMemberName   *string
	Note            *string
	CreatedAt       time.Time
}

// Export rng içindeki işlemleri tek sayfalık bir Excel dosyasına yazar, en
// eskiden başlayarak; altta toplam satırları. Önbelleğe alınmaz.
func (s *Service) Export(ctx context.Context, rng period.Range) (*excelize.File, error) {
	var rows []exportRow
	q := s.db.WithContext(ctx).Table("transactions AS t").
		Select(`t.id, t.type, t.original_amount, t.currency, t.manual_rate_to_usd, t.amount_usd,
			c.name AS customer_name, sp.name AS salesperson_name, rm.full_name AS ret_member_name,
			t.note, t.created_at`).
		Joins("LEFT JOIN customers c ON c.id = t.customer_id").
		Joins("LEFT JOIN salespersons sp ON sp.id = t.salesperson_id").
		Joins("LEFT JOIN ret_members rm ON rm.id = t.ret_member_id")
	if err := rng.Apply(q, "t.created_at").Order("t.created_at ASC, t.id ASC").Scan(&rows).Error; err != nil {
		return nil, apperror.Internal("Dışa aktarım verisi alınamadı", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, apperror.Internal("Excel dosyası oluşturulamadı", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return nil, apperror.Internal("Excel dosyası oluşturulamadı", err)
	}
	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, h)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	f.SetCellStyle(exportSheet, "A1", lastCol+"1", bold)

	investUSD, withdrawUSD := decimal.Zero, decimal.Zero
	for i, r := range rows {
		typ := r.Type
		if fold.Key(string(typ)) == "CEKIM" {
			typ = models.TransactionTypeWithdrawal
			withdrawUSD = withdrawUSD.Add(r.AmountUSD)
		} else if typ == models.TransactionTypeDeposit {
			investUSD = investUSD.Add(r.AmountUSD)
		}

		values := []any{
			r.ID,
			r.CreatedAt.UTC().Format("2006-01-02 15:04"),
			string(typ),
			deref(r.CustomerName),
			deref(r.SalespersonName),
			deref(r.RetMemberName),
			r.OriginalAmount.InexactFloat64(),
			r.Currency,
			nil,
			r.AmountUSD.Round(2).InexactFloat64(),
			deref(r.Note),
		}
		if r.ManualRateToUSD.Valid {
			values[8] = r.ManualRateToUSD.Decimal.InexactFloat64()
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, apperror.Internal("Excel satırı yazılamadı", err)
		}
	}

	total := len(rows) + 3
	f.SetCellValue(exportSheet, fmt.Sprintf("A%d", total), "Toplam yatırım (USD)")
	f.SetCellValue(exportSheet, fmt.Sprintf("J%d", total), investUSD.Round(2).InexactFloat64())
	f.SetCellValue(exportSheet, fmt.Sprintf("A%d", total+1), "Toplam çekim (USD)")
	f.SetCellValue(exportSheet, fmt.Sprintf("J%d", total+1), withdrawUSD.Round(2).InexactFloat64())
	f.SetCellValue(exportSheet, fmt.Sprintf("A%d", total+2), "Net (USD)")
	f.SetCellValue(exportSheet, fmt.Sprintf("J%d", total+2), investUSD.Sub(withdrawUSD).Round(2).InexactFloat64())
	f.SetCellStyle(exportSheet, fmt.Sprintf("A%d", total), fmt.Sprintf("J%d", total+2), bold)

	for col, width := range map[string]float64{"B": 18, "D": 24, "E": 18, "F": 18, "K": 40} {
		f.SetColWidth(exportSheet, col, col, width)
	}
	return f, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func exportFilename(rng period.Range) string {
	from, to := rng.Strings()
	switch {
	case from == "" && to == "":
		return "islemler.xlsx"
	case from == "":
		return "islemler_" + to + ".xlsx"
	case to == "":
		return "islemler_" + from + ".xlsx"
	}
	return fmt.Sprintf("islemler_%s_%s.xlsx", from, to)
}

// GET /api/reports/export?from=&to=
func ExportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rng, err := period.Parse(c.Query("from"), c.Query("to"))
		if err != nil {
			return err
		}
		f, err := svc.Export(c.UserContext(), rng)
		if err != nil {
			return err
		}
		defer f.Close()

		var buf bytes.Buffer
		if err := f.Write(&buf); err != nil {
			return apperror.Internal("Excel dosyası yazılamadı", err)
		}
		c.Set(fiber.HeaderContentType, xlsxMIME)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, exportFilename(rng)))
		return c.Send(buf.Bytes())
	}
}
