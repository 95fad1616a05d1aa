package retention

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"butce-backend/internal/apperror"
	"butce-backend/internal/audit"
	"butce-backend/internal/httputil"
	"butce-backend/internal/models"
)

const maxNoteLength = 1000

// AssignRequest: gövdeden gelen ham id'ler; sayı ya da sayısal metin olabilir.
type AssignRequest struct {
	CustomerID  any     `json:"customer_id"`
	RetMemberID any     `json:"ret_member_id"`
	Note        *string `json:"note"`
}

type AssignResult struct {
	Idempotent bool        `json:"idempotent"`
	Data       *Assignment `json:"data"`
}

// Coordinator her müşteri için en fazla bir atama oluşturur. Yarışları
// ret_assignments.customer_id üzerindeki unique index belirler; insert öncesi
// kontroller yalnızca olağan yolda daha net cevap verir.
type Coordinator struct {
	store Store
}

func NewCoordinator(store Store) *Coordinator {
	return &Coordinator{store: store}
}

// Assign müşterinin atamasını döner, yoksa oluşturur. Sıfır actor oturum
// yok demektir.
func (co *Coordinator) Assign(ctx context.Context, actor audit.Actor, req AssignRequest) (*AssignResult, error) {
	customerID, cs := httputil.ParseIDValue(req.CustomerID)
	memberID, ms := httputil.ParseIDValue(req.RetMemberID)
	if cs != httputil.IDPositive || ms != httputil.IDPositive {
		return nil, apperror.Validation("customer_id ve ret_member_id zorunludur.")
	}

	note := httputil.TrimmedPtr(req.Note)
	if note != nil && utf8.RuneCountInString(*note) > maxNoteLength {
		return nil, apperror.Validation("note en fazla 1000 karakter olabilir")
	}
	if actor.ID == 0 {
		return nil, apperror.Unauthorized("Oturum bulunamadı")
	}

	if err := co.store.ActiveMember(ctx, memberID); err != nil {
		return nil, err
	}

	eligible, err := co.store.IsAssignable(ctx, customerID)
	if err != nil {
		return nil, err
	}
	// View atanmış müşterileri göstermez; "uygun değil" zaten atanmış da olabilir.
	existing, err := co.store.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &AssignResult{Idempotent: true, Data: existing}, nil
	}
	if !eligible {
		return nil, apperror.Validation("Müşteri şu an atamaya uygun değil.")
	}

	row := models.RetAssignment{
		CustomerID:       customerID,
		RetMemberID:      memberID,
		AssignedByUserID: actor.ID,
		Note:             note,
	}
	err = co.store.Insert(ctx, actor, &row)
	if errors.Is(err, ErrAlreadyAssigned) {
		winner, ferr := co.store.FindByCustomer(ctx, customerID)
		if ferr != nil {
			return nil, ferr
		}
		if winner == nil {
			// Kazanan kayıt arada silinmiş; istemci tekrar denesin.
			return nil, apperror.Conflict("Atama eşzamanlı olarak değişti, tekrar deneyin.")
		}
		return &AssignResult{Idempotent: true, Data: winner}, nil
	}
	if err != nil {
		return nil, err
	}

	created, err := co.store.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, apperror.Conflict("Atama eşzamanlı olarak değişti, tekrar deneyin.")
	}
	return &AssignResult{Idempotent: false, Data: created}, nil
}

// Unassign atamayı siler. Olmayan id NotFound döner.
func (co *Coordinator) Unassign(ctx context.Context, actor audit.Actor, id uint) error {
	return co.store.Delete(ctx, actor, id)
}

func likePattern(s string) string {
	return "%" + strings.TrimSpace(s) + "%"
}
