package report

import (
	"context"
	"time"

	"butce-backend/internal/apperror"
	"butce-backend/internal/fold"
	"butce-backend/internal/httputil"
	"butce-backend/internal/models"
	"butce-backend/internal/period"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

const maxChartPoints = 366

type ChartPoint struct {
	Label       string          `json:"label"` // bucket başlangıcı
	InvestUSD   decimal.Decimal `json:"invest_usd"`
	WithdrawUSD decimal.Decimal `json:"withdraw_usd"`
	NetUSD      decimal.Decimal `json:"net_usd"`
}

type Chart struct {
	Period      Granularity  `json:"period"`
	From        string       `json:"from"`
	To          string       `json:"to"`
	Points      []ChartPoint `json:"points"`
	GrandTotals ChartPoint   `json:"grand_totals"`
}

// count verilmezse gösterilen dilim sayısı
func (g Granularity) defaultCount() int {
	switch g {
	case Weekly:
		return 8
	case Monthly:
		return 12
	}
	return 7
}

// start t'yi içeren dilimin ilk günü. Hafta pazartesi başlar.
func (g Granularity) start(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch g {
	case Weekly:
		return d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
	case Monthly:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return d
}

func (g Granularity) next(t time.Time) time.Time {
	switch g {
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Monthly:
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case "":
		return Daily, nil
	case Daily, Weekly, Monthly:
		return g, nil
	}
	return "", apperror.Validation("period geçersiz (daily, weekly, monthly)")
}

// FlowChart bugünü içeren dilimle biten count adet ardışık dilim döner. Boş
// dilimler sıfır toplamla gelir.
func (s *Service) FlowChart(ctx context.Context, g Granularity, count int) (*Chart, error) {
	if count <= 0 {
		count = g.defaultCount()
	}
	if count > maxChartPoints {
		return nil, apperror.Validation("count en fazla 366 olabilir")
	}

	last := g.start(s.now().UTC())
	first := last
	for range count - 1 {
		first = g.start(first.AddDate(0, 0, -1))
	}
	rng := period.Days(first, g.next(last).AddDate(0, 0, -1))
	from, to := rng.Strings()

	return cached(ctx, s.cache, "flow_chart", func() (*Chart, error) {
		var rows []struct {
			Type      models.TransactionType
			AmountUSD decimal.Decimal `gorm:"column:amount_usd"`
			CreatedAt time.Time
		}
		q := s.db.WithContext(ctx).Table("transactions AS t").Select("t.type, t.amount_usd, t.created_at")
		if err := rng.Apply(q, "t.created_at").Scan(&rows).Error; err != nil {
			return nil, apperror.Internal("Grafik verisi alınamadı", err)
		}

		points := make([]ChartPoint, 0, count)
		index := make(map[time.Time]int, count)
		for b := first; !b.After(last); b = g.next(b) {
			index[b] = len(points)
			points = append(points, ChartPoint{Label: b.Format(period.Layout)})
		}

		out := &Chart{Period: g, From: from, To: to}
		for _, r := range rows {
			i, ok := index[g.start(r.CreatedAt.UTC())]
			if !ok {
				continue
			}
			switch {
			case r.Type == models.TransactionTypeDeposit:
				points[i].InvestUSD = points[i].InvestUSD.Add(r.AmountUSD)
				out.GrandTotals.InvestUSD = out.GrandTotals.InvestUSD.Add(r.AmountUSD)
			case fold.Key(string(r.Type)) == "CEKIM":
				points[i].WithdrawUSD = points[i].WithdrawUSD.Add(r.AmountUSD)
				out.GrandTotals.WithdrawUSD = out.GrandTotals.WithdrawUSD.Add(r.AmountUSD)
			}
		}
		for i := range points {
			points[i].NetUSD = points[i].InvestUSD.Sub(points[i].WithdrawUSD)
		}
		out.GrandTotals.Label = "toplam"
		out.GrandTotals.NetUSD = out.GrandTotals.InvestUSD.Sub(out.GrandTotals.WithdrawUSD)
		out.Points = points
		return out, nil
	}, string(g), count, from)
}

// GET /api/reports/flow-chart?period=daily&count=7
func FlowChartHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		g, err := ParseGranularity(c.Query("period"))
		if err != nil {
			return err
		}
		var count int
		if raw := c.Query("count"); raw != "" {
			n, ok := httputil.ParseUint(raw)
			if !ok {
				return apperror.Validation("count geçersiz")
			}
			count = int(n)
		}
		out, err := svc.FlowChart(c.UserContext(), g, count)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}
