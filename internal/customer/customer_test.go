package customer

import (
	"fmt"
	"testing"

	"butce-backend/internal/apperror"
	"butce-backend/internal/audit"
	"butce-backend/internal/models"
	"butce-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var actor = audit.Actor{ID: 1, Name: "Operasyon"}

// sequence returns the given codes in order, then repeats the last one.
func sequence(codes ...string) CodeGenerator {
	i := 0
	return func() string {
		c := codes[min(i, len(codes)-1)]
		i++
		return c
	}
}

func newService(t *testing.T, gen CodeGenerator) (*Service, *gorm.DB, models.Salesperson) {
	t.Helper()
	db := testutil.NewDB(t)
	sp := testutil.Salesperson(t, db, "Ayşe", "S5", true)
	return NewService(db, NewAllocator(gen)), db, sp
}

func TestCanonicalCode(t *testing.T) {
	code, err := CanonicalCode(42)
	require.NoError(t, err)
	assert.Equal(t, "000042", code)

	code, err = CanonicalCode(999999)
	require.NoError(t, err)
	assert.Equal(t, "999999", code)

	_, err = CanonicalCode(1000000)
	assert.Error(t, err)
	_, err = CanonicalCode(0)
	assert.Error(t, err)
}

func TestRandomCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		c := RandomCode()
		require.Len(t, c, 6)
		assert.GreaterOrEqual(t, c, "100000")
		assert.LessOrEqual(t, c, "999999")
	}
}

func TestCreate_CanonicalCode(t *testing.T) {
	svc, db, sp := newService(t, nil)

	v, err := svc.Create(testutil.Ctx(), actor, Input{Name: ptr(" Ali Veli "), SalespersonID: float64(sp.ID)})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%06d", v.ID), v.CustomerCode)
	assert.Equal(t, "Ali Veli", v.Name)
	assert.Equal(t, "Ayşe", *v.SalespersonName)
	assert.True(t, v.IsActive)

	var stored models.Customer
	require.NoError(t, db.First(&stored, v.ID).Error)
	assert.Equal(t, v.CustomerCode, stored.CustomerCode)
}

func TestCreate_IsActive(t *testing.T) {
	svc, db, sp := newService(t, nil)

	inactive := false
	v, err := svc.Create(testutil.Ctx(), actor, Input{Name: ptr("Pasif Müşteri"), SalespersonID: sp.ID, IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, v.IsActive)

	var stored models.Customer
	require.NoError(t, db.First(&stored, v.ID).Error)
	assert.False(t, stored.IsActive)

	active := true
	v, err = svc.Create(testutil.Ctx(), actor, Input{Name: ptr("Aktif Müşteri"), SalespersonID: sp.ID, IsActive: &active})
	require.NoError(t, err)
	assert.True(t, v.IsActive)
}

func TestCreate_RetriesAfterTemporaryCollision(t *testing.T) {
	svc, db, sp := newService(t, sequence("555555", "555555", "777777"))
	taken := models.Customer{CustomerCode: "555555", Name: "Eski", IsActive: true}
	require.NoError(t, db.Create(&taken).Error)

	v, err := svc.Create(testutil.Ctx(), actor, Input{Name: ptr("Yeni"), SalespersonID: fmt.Sprint(sp.ID)})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%06d", v.ID), v.CustomerCode)

	var count int64
	db.Model(&models.Customer{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestCreate_ExhaustedAttemptsIsConflict(t *testing.T) {
	svc, db, sp := newService(t, sequence("555555"))
	taken := models.Customer{CustomerCode: "555555", Name: "Eski", IsActive: true}
	require.NoError(t, db.Create(&taken).Error)

	_, err := svc.Create(testutil.Ctx(), actor, Input{Name: ptr("Yeni"), SalespersonID: sp.ID})
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindConflict, appErr.Kind)
	assert.Equal(t, "Geçici customer_code üretilemedi.", appErr.Message)
	assert.True(t, appErr.Retryable())

	var count, logs int64
	db.Model(&models.Customer{}).Count(&count)
	db.Model(&models.AuditLog{}).Count(&logs)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(0), logs)
}

func TestCreate_IDBeyondSixDigitsRollsBack(t *testing.T) {
	svc, db, sp := newService(t, nil)
	require.NoError(t, db.Create(&models.Customer{ID: 999999, CustomerCode: "999999", Name: "Son", IsActive: true}).Error)

	_, err := svc.Create(testutil.Ctx(), actor, Input{Name: ptr("Taşan"), SalespersonID: sp.ID})
	assert.True(t, apperror.IsKind(err, apperror.KindInternal))

	var count int64
	db.Model(&models.Customer{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreate_Preconditions(t *testing.T) {
	svc, db, _ := newService(t, nil)
	passive := testutil.Salesperson(t, db, "Pasif", "S9", false)
	noCode := testutil.Salesperson(t, db, "Kodsuz", "", true)

	tests := []struct {
		name string
		in   Input
		want string
	}{
		{"blank name", Input{Name: ptr("  "), SalespersonID: 1}, "name zorunlu"},
		{"bad salesperson id", Input{Name: ptr("A"), SalespersonID: "x"}, "salesperson_id geçersiz"},
		{"missing salesperson", Input{Name: ptr("A")}, "salesperson_id geçersiz"},
		{"unknown salesperson", Input{Name: ptr("A"), SalespersonID: 999}, "Satışçı bulunamadı"},
		{"passive salesperson", Input{Name: ptr("A"), SalespersonID: passive.ID}, "Satışçı pasif"},
		{"salesperson without code", Input{Name: ptr("A"), SalespersonID: noCode.ID}, "Satışçı code boş olamaz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(testutil.Ctx(), actor, tt.in)
			var appErr *apperror.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperror.KindValidation, appErr.Kind)
			assert.Equal(t, tt.want, appErr.Message)
		})
	}
}

func TestUpdate_Coalesce(t *testing.T) {
	svc, db, sp := newService(t, nil)
	ctx := testutil.Ctx()
	other := testutil.Salesperson(t, db, "Can", "S7", true)

	v, err := svc.Create(ctx, actor, Input{Name: ptr("Ali"), Phone: ptr("555"), SalespersonID: sp.ID})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, actor, v.ID, Input{Name: ptr(""), Phone: ptr("  "), Email: ptr("ali@example.com"), SalespersonID: other.ID})
	require.NoError(t, err)
	assert.Equal(t, "Ali", updated.Name)
	assert.Equal(t, "555", *updated.Phone)
	assert.Equal(t, "ali@example.com", *updated.Email)
	assert.Equal(t, other.ID, *updated.SalespersonID)
	assert.Equal(t, v.CustomerCode, updated.CustomerCode)
	assert.True(t, updated.IsActive)

	_, err = svc.Update(ctx, actor, 999, Input{Name: ptr("X")})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestDeactivate(t *testing.T) {
	svc, _, sp := newService(t, nil)
	ctx := testutil.Ctx()

	v, err := svc.Create(ctx, actor, Input{Name: ptr("Ali"), SalespersonID: sp.ID})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, actor, v.ID))

	got, err := svc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	active := true
	rows, err := svc.List(ctx, Filter{Active: &active, Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.True(t, apperror.IsKind(svc.Deactivate(ctx, actor, 999), apperror.KindNotFound))
}

func ptr(s string) *string { return &s }
