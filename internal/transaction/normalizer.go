package transaction

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"butce-backend/internal/apperror"
	"butce-backend/internal/fold"
	"butce-backend/internal/models"

	"github.com/shopspring/decimal"
)

const maxNoteLength = 1000

// Record: doğrulanmış, kaydedilmeye hazır işlem
type Record struct {
	Type           models.TransactionType
	OriginalAmount decimal.Decimal
	Currency       string
	ManualRate     decimal.NullDecimal
	AmountUSD      decimal.Decimal
	CustomerID     uint
	Attribution    Attribution
	Note           *string
}

// Normalizer işlem girdisini doğrular ve tutarı raporlama para birimine
// çevirir. Ekleme ve güncelleme aynı kuralları kullanır.
type Normalizer struct {
	reporting string
	allowed   map[string]struct{}
}

func NewNormalizer(reportingCurrency string, allowed []string) *Normalizer {
	n := &Normalizer{
		reporting: strings.ToUpper(strings.TrimSpace(reportingCurrency)),
		allowed:   make(map[string]struct{}, len(allowed)),
	}
	for _, c := range allowed {
		n.allowed[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
	}
	return n
}

func (n *Normalizer) ReportingCurrency() string { return n.reporting }

// Normalize kuralları sabit sırayla kontrol eder, ilk ihlali döner.
func (n *Normalizer) Normalize(in *Input) (*Record, error) {
	txType, ok := ParseType(asString(in.Type))
	if !ok {
		return nil, apperror.Validation("type YATIRIM veya ÇEKİM olmalı")
	}

	currency := strings.ToUpper(strings.TrimSpace(asString(in.Currency)))
	if currency == "" {
		return nil, apperror.Validation("currency zorunlu")
	}
	if _, ok := n.allowed[currency]; !ok {
		return nil, apperror.Validation(fmt.Sprintf("Geçersiz currency: %s", currency))
	}

	amount, ok := parseAmount(in.Amount)
	if !ok || !amount.IsPositive() {
		return nil, apperror.Validation("original_amount pozitif bir sayı olmalı")
	}

	rec := &Record{
		Type:           txType,
		OriginalAmount: amount,
		Currency:       currency,
		AmountUSD:      amount,
	}

	if currency != n.reporting {
		rate, ok := parseAmount(in.Rate)
		if !ok || !rate.IsPositive() {
			return nil, apperror.Validation(fmt.Sprintf("manual_rate_to_usd zorunlu ve pozitif olmalı (currency %s değilse)", n.reporting))
		}
		rec.ManualRate = decimal.NewNullDecimal(rate)
		rec.AmountUSD = amount.Mul(rate)
	}

	customerID, ok := positive(in.CustomerID)
	if !ok {
		return nil, apperror.Validation("customer_id geçersiz")
	}
	rec.CustomerID = customerID

	attr, err := ResolveAttribution(in.SalespersonID, in.RetMemberID)
	if err != nil {
		return nil, err
	}
	rec.Attribution = attr

	if note := strings.TrimSpace(asString(in.Note)); note != "" {
		if utf8.RuneCountInString(note) > maxNoteLength {
			return nil, apperror.Validation("note en fazla 1000 karakter olabilir")
		}
		rec.Note = &note
	}

	return rec, nil
}

// ParseType kullanıcının yazdığı türü normalize eder. Eski yazım CEKIM,
// ÇEKİM sayılır.
func ParseType(raw string) (models.TransactionType, bool) {
	switch fold.Key(raw) {
	case "YATIRIM":
		return models.TransactionTypeDeposit, true
	case "CEKIM":
		return models.TransactionTypeWithdrawal, true
	default:
		return "", false
	}
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// parseAmount sayı ve sayısal metin kabul eder; virgül ondalık ayırıcıdır.
func parseAmount(v any) (decimal.Decimal, bool) {
	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = strings.ReplaceAll(strings.TrimSpace(x), ",", ".")
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		s = strconv.Itoa(x)
	default:
		return decimal.Decimal{}, false
	}
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
