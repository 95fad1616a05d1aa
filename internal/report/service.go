package report

import (
	"context"
	"slices"
	"time"

	"butce-backend/internal/apperror"
	"butce-backend/internal/models"
	"butce-backend/internal/period"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Summary struct {
	From             string          `json:"from,omitempty"`
	To               string          `json:"to,omitempty"`
	TotalInvestUSD   decimal.Decimal `json:"total_invest_usd"`
	TotalWithdrawUSD decimal.Decimal `json:"total_withdraw_usd"`
	NetFlowUSD       decimal.Decimal `json:"net_flow_usd"`
}

type SalespersonRow struct {
	SalespersonID   *uint           `json:"salesperson_id"`
	SalespersonName string          `json:"salesperson_name"`
	InvestUSD       decimal.Decimal `json:"invest_usd"`
	WithdrawUSD     decimal.Decimal `json:"withdraw_usd"`
	NetUSD          decimal.Decimal `json:"net_usd"`
}

type Window struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type SalespersonStat struct {
	SalespersonID      uint   `json:"salesperson_id"`
	SalespersonName    string `json:"salesperson_name"`
	CurrentInvestCount int64  `json:"current_invest_count"`
	PrevInvestCount    int64  `json:"prev_invest_count"`
	Target             int    `json:"target"`
	Remaining          int64  `json:"remaining"`
}

type Stats struct {
	Current  Window            `json:"current"`
	Previous Window            `json:"previous"`
	Rows     []SalespersonStat `json:"rows"`
}

type Service struct {
	db            *gorm.DB
	cache         *Cache
	defaultTarget int
	now           func() time.Time
}

func NewService(db *gorm.DB, cache *Cache, defaultTarget int) *Service {
	return &Service{db: db, cache: cache, defaultTarget: defaultTarget, now: time.Now}
}

// sums yatırım ve çekim toplamlarını seçer. Eski CEKIM kayıtları çekim sayılır.
func sums(q *gorm.DB, prefix string) *gorm.DB {
	return q.Select(prefix+`
		COALESCE(SUM(CASE WHEN t.type = ? THEN t.amount_usd ELSE 0 END), 0) AS invest_usd,
		COALESCE(SUM(CASE WHEN t.type IN ? THEN t.amount_usd ELSE 0 END), 0) AS withdraw_usd`,
		models.TransactionTypeDeposit, models.WithdrawalTypes)
}

func (s *Service) Summary(ctx context.Context, rng period.Range) (*Summary, error) {
	from, to := rng.Strings()
	return cached(ctx, s.cache, "summary", func() (*Summary, error) {
		var row struct {
			InvestUSD   decimal.Decimal
			WithdrawUSD decimal.Decimal
		}
		q := sums(s.db.WithContext(ctx).Table("transactions AS t"), "")
		if err := rng.Apply(q, "t.created_at").Scan(&row).Error; err != nil {
			return nil, apperror.Internal("Rapor özet alınamadı", err)
		}
		return &Summary{
			From:             from,
			To:               to,
			TotalInvestUSD:   row.InvestUSD,
			TotalWithdrawUSD: row.WithdrawUSD,
			NetFlowUSD:       row.InvestUSD.Sub(row.WithdrawUSD),
		}, nil
	}, from, to)
}

// BySalesperson: RET modundaki işlemler satışçısız ("-") satırda toplanır.
func (s *Service) BySalesperson(ctx context.Context, rng period.Range) ([]SalespersonRow, error) {
	from, to := rng.Strings()
	return cached(ctx, s.cache, "by_salesperson", func() ([]SalespersonRow, error) {
		q := sums(s.db.WithContext(ctx).Table("transactions AS t"), "sp.id AS salesperson_id, COALESCE(sp.name, '-') AS salesperson_name,").
			Joins("LEFT JOIN salespersons sp ON sp.id = t.salesperson_id")

		rows := []SalespersonRow{}
		if err := rng.Apply(q, "t.created_at").Group("sp.id, sp.name").Scan(&rows).Error; err != nil {
			return nil, apperror.Internal("Satışçı kırılımı alınamadı", err)
		}
		for i := range rows {
			rows[i].NetUSD = rows[i].InvestUSD.Sub(rows[i].WithdrawUSD)
		}
		sortRows(rows)
		return rows, nil
	}, from, to)
}

// SalespersonStats aralıktaki yatırım adedini bir önceki aralıkla
// karşılaştırır. salespersonID 0 ise tüm aktif satışçılar.
func (s *Service) SalespersonStats(ctx context.Context, salespersonID uint, rng period.Range) (*Stats, error) {
	current := rng.Closed(s.now())
	previous := current.Previous()
	cf, ct := current.Strings()
	pf, pt := previous.Strings()

	return cached(ctx, s.cache, "salesperson_stats", func() (*Stats, error) {
		var people []models.Salesperson
		q := s.db.WithContext(ctx).Order("name ASC, id ASC")
		if salespersonID > 0 {
			q = q.Where("id = ?", salespersonID)
		} else {
			q = q.Where("is_active = ?", true)
		}
		if err := q.Find(&people).Error; err != nil {
			return nil, apperror.Internal("Satışçı istatistikleri alınamadı", err)
		}
		if salespersonID > 0 && len(people) == 0 {
			return nil, apperror.NotFound("Satışçı bulunamadı")
		}

		cur, err := s.investCounts(ctx, current)
		if err != nil {
			return nil, err
		}
		prev, err := s.investCounts(ctx, previous)
		if err != nil {
			return nil, err
		}

		out := &Stats{
			Current:  Window{From: cf, To: ct},
			Previous: Window{From: pf, To: pt},
			Rows:     make([]SalespersonStat, 0, len(people)),
		}
		for _, sp := range people {
			target := s.defaultTarget
			if sp.TargetInvestCount != nil && *sp.TargetInvestCount > 0 {
				target = *sp.TargetInvestCount
			}
			out.Rows = append(out.Rows, SalespersonStat{
				SalespersonID:      sp.ID,
				SalespersonName:    sp.Name,
				CurrentInvestCount: cur[sp.ID],
				PrevInvestCount:    prev[sp.ID],
				Target:             target,
				Remaining:          max(int64(target)-cur[sp.ID], 0),
			})
		}
		return out, nil
	}, salespersonID, cf, ct)
}

func (s *Service) investCounts(ctx context.Context, rng period.Range) (map[uint]int64, error) {
	var rows []struct {
		SalespersonID uint
		Count         int64
	}
	q := s.db.WithContext(ctx).Table("transactions AS t").
		Select("t.salesperson_id, COUNT(*) AS count").
		Where("t.type = ? AND t.salesperson_id IS NOT NULL", models.TransactionTypeDeposit)
	if err := rng.Apply(q, "t.created_at").Group("t.salesperson_id").Scan(&rows).Error; err != nil {
		return nil, apperror.Internal("Yatırım adetleri alınamadı", err)
	}
	out := make(map[uint]int64, len(rows))
	for _, r := range rows {
		out[r.SalespersonID] = r.Count
	}
	return out, nil
}

// sortRows: net azalan, sonra yatırım azalan. Bazı sürücüler decimal
// kolonları metin döndüğü için sıralama Go'da yapılır.
func sortRows(rows []SalespersonRow) {
	slices.SortStableFunc(rows, func(a, b SalespersonRow) int {
		if c := b.NetUSD.Cmp(a.NetUSD); c != 0 {
			return c
		}
		return b.InvestUSD.Cmp(a.InvestUSD)
	})
}
