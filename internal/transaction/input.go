package transaction

import (
	"bytes"
	"encoding/json"
	"strings"

	"butce-backend/internal/apperror"
)

// Input: kabul edilen tüm alan yazımları tek alana indirgenmiş işlem isteği.
// Değerler JSON halinde kalır (json.Number, string, bool veya nil); doğrulama
// Normalizer'da yapılır.
type Input struct {
	Type          any
	Currency      any
	Amount        any
	Rate          any
	CustomerID    any
	SalespersonID any
	RetMemberID   any
	Note          any
}

// Kabul edilen yazımlar, öncelik sırasıyla. amount_usd istekten hiç okunmaz.
var (
	typeKeys        = []string{"type"}
	currencyKeys    = []string{"currency"}
	amountKeys      = []string{"original_amount", "originalAmount", "amount"}
	rateKeys        = []string{"manual_rate_to_usd", "manualRateToUsd", "manual_conversion_rate", "rate"}
	customerKeys    = []string{"customer_id", "customerId"}
	salespersonKeys = []string{"salesperson_id", "salespersonId"}
	retentionKeys   = []string{"ret_member_id", "retMemberId", "retention_member_id", "retentionMemberId"}
	noteKeys        = []string{"note"}
)

// DecodeInput JSON nesne gövdesini Input'a çevirir.
func DecodeInput(body []byte) (*Input, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return nil, apperror.Validation("Geçersiz istek gövdesi")
	}
	return FromMap(raw), nil
}

func FromMap(raw map[string]any) *Input {
	return &Input{
		Type:          pick(raw, typeKeys),
		Currency:      pick(raw, currencyKeys),
		Amount:        pick(raw, amountKeys),
		Rate:          pick(raw, rateKeys),
		CustomerID:    pick(raw, customerKeys),
		SalespersonID: pick(raw, salespersonKeys),
		RetMemberID:   pick(raw, retentionKeys),
		Note:          pick(raw, noteKeys),
	}
}

// pick: anahtarlar içinde ilk boş olmayan değer
func pick(raw map[string]any, keys []string) any {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}
