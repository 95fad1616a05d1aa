package transaction

import (
	"butce-backend/internal/apperror"
	"butce-backend/internal/httputil"
)

type Mode string

const (
	ModeSalesperson Mode = "salesperson"
	ModeRetention   Mode = "retention"
)

// Attribution: işlemin kime yazıldığı. Mode'a göre id'lerden yalnızca biri dolu.
type Attribution struct {
	Mode          Mode
	SalespersonID *uint
	RetMemberID   *uint
}

// ResolveAttribution: ret_member_id pozitifse RET modu, aksi halde (yok, 0,
// negatif, sayı değil) satışçı modu. RET modunda salesperson_id 0, "" veya
// null olmalı.
func ResolveAttribution(salespersonRaw, retentionRaw any) (Attribution, error) {
	if retID, ok := positive(retentionRaw); ok {
		if _, spState := httputil.ParseIDValue(salespersonRaw); spState != httputil.IDAbsent {
			return Attribution{}, apperror.Validation("RET işleminde salesperson_id gönderilmemeli")
		}
		return Attribution{Mode: ModeRetention, RetMemberID: &retID}, nil
	}

	spID, spState := httputil.ParseIDValue(salespersonRaw)
	if spState != httputil.IDPositive {
		return Attribution{}, apperror.Validation("salesperson_id geçersiz")
	}
	return Attribution{Mode: ModeSalesperson, SalespersonID: &spID}, nil
}

func positive(v any) (uint, bool) {
	id, state := httputil.ParseIDValue(v)
	return id, state == httputil.IDPositive
}
