package retention

import (
	"encoding/json"
	"testing"

	"butce-backend/internal/apperror"
	"butce-backend/internal/audit"
	"butce-backend/internal/models"
	"butce-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memberInput(t *testing.T, body string) MemberInput {
	t.Helper()
	var in MemberInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in
}

func TestMemberService_CRUD(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewMemberService(db)
	ctx := testutil.Ctx()
	actor := audit.Actor{ID: 1, Name: "Operasyon"}

	_, err := svc.Create(ctx, actor, memberInput(t, `{"full_name":"   "}`))
	assert.Equal(t, "full_name zorunlu", err.Error())

	m, err := svc.Create(ctx, actor, memberInput(t, `{"full_name":" Deniz Kaya ","email":"  ","phone":"555"}`))
	require.NoError(t, err)
	assert.Equal(t, "Deniz Kaya", m.FullName)
	assert.Nil(t, m.Email)
	assert.True(t, m.Active)

	_, err = svc.Update(ctx, actor, m.ID, memberInput(t, `{}`))
	assert.Equal(t, "Güncellenecek alan yok", err.Error())
	_, err = svc.Update(ctx, actor, m.ID, memberInput(t, `{"full_name":""}`))
	assert.Equal(t, "full_name boş olamaz", err.Error())

	updated, err := svc.Update(ctx, actor, m.ID, memberInput(t, `{"phone":null,"active":false}`))
	require.NoError(t, err)
	assert.Nil(t, updated.Phone)
	assert.False(t, updated.Active)
	assert.Equal(t, "Deniz Kaya", updated.FullName)

	_, err = svc.Update(ctx, actor, 999, memberInput(t, `{"active":true}`))
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	inactive := false
	rows, err := svc.List(ctx, MemberFilter{Search: "deniz", Active: &inactive, Limit: 100})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, svc.Delete(ctx, actor, m.ID))
	assert.True(t, apperror.IsKind(svc.Delete(ctx, actor, m.ID), apperror.KindNotFound))

	var logs int64
	db.Model(&models.AuditLog{}).Where("entity_type = ?", "ret_member").Count(&logs)
	assert.Equal(t, int64(3), logs)
}

func TestMemberService_DeleteRefusedWhileAssigned(t *testing.T) {
	f := newAssignFixture(t)
	ctx := testutil.Ctx()

	_, err := f.co.Assign(ctx, f.actor, f.request())
	require.NoError(t, err)

	err = NewMemberService(f.db).Delete(ctx, f.actor, f.member.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = RequireActiveMember(f.db, f.member.ID)
	assert.NoError(t, err)
}
