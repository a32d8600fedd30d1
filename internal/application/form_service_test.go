package application

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/linskybing/fieldreport-go/internal/domain/audit"
	"github.com/linskybing/fieldreport-go/internal/domain/form"
	"github.com/linskybing/fieldreport-go/internal/domain/schema"
	"github.com/linskybing/fieldreport-go/internal/domain/user"
	"github.com/linskybing/fieldreport-go/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitRnc(t *testing.T, env *testEnv, actor Actor, os string, draft bool, files ...UploadedFile) uint {
	t.Helper()
	res, err := env.svc.Submission.Submit(context.Background(), actor, SubmitInput{
		FormType: "rnc",
		Values:   map[string]any{"ordemServico": os, "gravidade": "baixa"},
		Files:    files,
		Draft:    draft,
	})
	require.NoError(t, err)
	return res.RecordID
}

func TestDeletePhoto_PrunesDataAndAudits(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)
	id := submitRnc(t, env, tech, "OS-42", false,
		textFile("fotos", "x.jpg", "xxx"),
		textFile("fotos", "y.jpg", "yyy"),
	)

	f, err := env.repos.Form.GetByID(id)
	require.NoError(t, err)
	require.Len(t, f.Photos, 2)
	var x, y form.Photo
	for _, p := range f.Photos {
		if p.OriginalName == "x.jpg" {
			x = p
		} else {
			y = p
		}
	}

	updated, err := env.svc.Form.DeletePhoto(context.Background(), tech, x.ID)
	require.NoError(t, err)
	require.Len(t, updated.Photos, 1)
	assert.Equal(t, y.ID, updated.Photos[0].ID)

	reloaded, err := env.repos.Form.GetByID(id)
	require.NoError(t, err)
	fotos := schema.FileDescriptors(reloaded.Data["fotos"])
	require.Len(t, fotos, 1)
	assert.Equal(t, y.URL, fotos[0]["url"])
	assert.False(t, env.blob.Has(x.ObjectPath))
	assert.True(t, env.blob.Has(y.ObjectPath))

	resourceType := audit.ResourceForm
	resourceID := strconv.FormatUint(uint64(id), 10)
	action := audit.ActionUpdate
	logs, err := env.repos.Audit.GetAuditLogs(repository.AuditQueryParams{
		ResourceType: &resourceType,
		ResourceID:   &resourceID,
		Action:       &action,
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	var before, after map[string]any
	require.NoError(t, json.Unmarshal(logs[0].OldData, &before))
	require.NoError(t, json.Unmarshal(logs[0].NewData, &after))
	assert.Len(t, before["fotos"], 2)
	assert.Len(t, after["fotos"], 1)

	rep, ok := env.mirror.Report("OS-42", id)
	require.True(t, ok)
	assert.Len(t, schema.FileDescriptors(rep.Data["fotos"]), 1)
}

func TestDeletePhoto_LastFileRemovesKey(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)
	id := submitRnc(t, env, tech, "OS-42", false, textFile("fotos", "x.jpg", "xxx"))

	f, err := env.repos.Form.GetByID(id)
	require.NoError(t, err)
	_, err = env.svc.Form.DeletePhoto(context.Background(), tech, f.Photos[0].ID)
	require.NoError(t, err)

	reloaded, err := env.repos.Form.GetByID(id)
	require.NoError(t, err)
	_, present := reloaded.Data["fotos"]
	assert.False(t, present)
	assert.Empty(t, reloaded.Photos)
}

func TestDeletePhoto_Errors(t *testing.T) {
	env := newTestEnv(t)
	owner := env.actor(t, "owner@obra.com.br", user.RoleTechnician)
	other := env.actor(t, "other@obra.com.br", user.RoleTechnician)
	id := submitRnc(t, env, owner, "OS-42", false, textFile("fotos", "x.jpg", "xxx"))
	f, err := env.repos.Form.GetByID(id)
	require.NoError(t, err)

	_, err = env.svc.Form.DeletePhoto(context.Background(), owner, 9999)
	assert.ErrorIs(t, err, ErrPhotoNotFound)

	_, err = env.svc.Form.DeletePhoto(context.Background(), other, f.Photos[0].ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListForms_ResolvesHandle(t *testing.T) {
	env := newTestEnv(t)
	mg := env.actor(t, "mg01@obra.com.br", user.RoleTechnician)
	other := env.actor(t, "rs02@obra.com.br", user.RoleTechnician)
	submitRnc(t, env, mg, "OS-1", false)
	submitRnc(t, env, mg, "OS-2", false)
	submitRnc(t, env, other, "OS-3", false)

	page, err := env.svc.Form.ListForms(form.ListQuery{UserID: "mg01"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	for _, f := range page.Items {
		assert.Equal(t, mg.UserID, f.UserID)
	}

	page, err = env.svc.Form.ListForms(form.ListQuery{UserID: "mg01@obra.com.br,rs02"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
}

func TestListForms_UnresolvedUserYieldsEmptyPage(t *testing.T) {
	env := newTestEnv(t)
	mg := env.actor(t, "mg01@obra.com.br", user.RoleTechnician)
	submitRnc(t, env, mg, "OS-1", false)

	for _, handle := range []string{"zz99", "%", "mg0_"} {
		page, err := env.svc.Form.ListForms(form.ListQuery{UserID: handle})
		require.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items, handle)
		assert.Zero(t, page.Total, handle)
	}
}

func TestListForms_FiltersAndPaging(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)
	for i := 0; i < 5; i++ {
		submitRnc(t, env, tech, "OS-9", i%2 == 0)
	}

	page, err := env.svc.Form.ListForms(form.ListQuery{OsNumber: "OS-9", PageSize: 2, Page: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Page)

	page, err = env.svc.Form.ListForms(form.ListQuery{Status: string(form.FormStatusDraft)})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)

	_, err = env.svc.Form.ListForms(form.ListQuery{From: "not-a-date"})
	assert.Error(t, err)
}

func TestFormLifecycle(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)
	sup := env.actor(t, "sup@obra.com.br", user.RoleSupervisor)
	ctx := context.Background()

	id := submitRnc(t, env, tech, "OS-42", true)

	updated, err := env.svc.Form.UpdateForm(ctx, tech, id, map[string]any{"ordemServico": "OS-43", "gravidade": "media"})
	require.NoError(t, err)
	assert.Equal(t, "OS-43", updated.OsNumber)
	assert.Equal(t, "media", updated.Data["gravidade"])

	_, err = env.svc.Form.UpdateForm(ctx, sup, id, map[string]any{"ordemServico": "OS-43"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.Form.ApproveForm(ctx, sup, id)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	res, err := env.svc.Form.SubmitForm(ctx, tech, id)
	require.NoError(t, err)
	assert.Equal(t, form.FormStatusSubmitted, res.Form.Status)
	assert.NotNil(t, res.Form.SubmittedAt)
	assert.True(t, res.Done)

	_, err = env.svc.Form.UpdateForm(ctx, tech, id, map[string]any{"ordemServico": "OS-44"})
	assert.ErrorIs(t, err, ErrNotEditable)

	_, err = env.svc.Form.ApproveForm(ctx, tech, id)
	assert.ErrorIs(t, err, ErrForbidden)

	approved, err := env.svc.Form.ApproveForm(ctx, sup, id)
	require.NoError(t, err)
	assert.Equal(t, form.FormStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, sup.UserID, *approved.ApprovedBy)

	_, err = env.svc.Form.SubmitForm(ctx, tech, id)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	rep, ok := env.mirror.Report("OS-43", id)
	require.True(t, ok)
	assert.Equal(t, string(form.FormStatusApproved), rep.Status)
}

func TestUpdateForm_KeepsStoredFiles(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)
	id := submitRnc(t, env, tech, "OS-42", true, textFile("fotos", "x.jpg", "xxx"))

	updated, err := env.svc.Form.UpdateForm(context.Background(), tech, id, map[string]any{"ordemServico": "OS-42", "descricao": "revisado"})
	require.NoError(t, err)
	assert.Len(t, schema.FileDescriptors(updated.Data["fotos"]), 1)
	assert.Equal(t, "revisado", updated.Data["descricao"])
}

func TestUpdateForm_MovingWorkOrderMovesMirrorCopy(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)
	ctx := context.Background()
	id := submitRnc(t, env, tech, "OS-1", true)
	_, ok := env.mirror.Report("OS-1", id)
	require.True(t, ok)

	updated, err := env.svc.Form.UpdateForm(ctx, tech, id, map[string]any{"ordemServico": "OS-2", "gravidade": "alta"})
	require.NoError(t, err)
	assert.Equal(t, "OS-2", updated.OsNumber)

	_, ok = env.mirror.Report("OS-1", id)
	assert.False(t, ok, "old work order copy removed")
	moved, ok := env.mirror.Report("OS-2", id)
	require.True(t, ok)
	assert.Equal(t, "alta", moved.Data["gravidade"])

	require.NoError(t, env.svc.Form.DeleteForm(ctx, tech, id))
	_, ok = env.mirror.Report("OS-1", id)
	assert.False(t, ok)
	_, ok = env.mirror.Report("OS-2", id)
	assert.False(t, ok)
}

func TestSubmitForm_DraftEvaluatesTriggers(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)
	ctx := context.Background()

	sub, err := env.svc.Submission.Submit(ctx, tech, SubmitInput{
		FormType: "cronograma-diario-obra",
		Values:   map[string]any{"ordemServico": "OS-7", "emissaoRNCDia": "S"},
		Draft:    true,
	})
	require.NoError(t, err)

	res, err := env.svc.Form.SubmitForm(ctx, tech, sub.RecordID)
	require.NoError(t, err)
	require.NotNil(t, res.Next)
	assert.Equal(t, "rnc-report", res.Next.LinkedFormID)
	assert.Equal(t, "OS-7", res.Next.Params["os"])
	assert.Equal(t, strconv.FormatUint(uint64(sub.RecordID), 10), res.Next.Params["originatingFormId"])
}

func TestDeleteForm(t *testing.T) {
	env := newTestEnv(t)
	owner := env.actor(t, "owner@obra.com.br", user.RoleTechnician)
	other := env.actor(t, "other@obra.com.br", user.RoleTechnician)
	admin := env.actor(t, "boss@obra.com.br", user.RoleAdmin)
	ctx := context.Background()

	id := submitRnc(t, env, owner, "OS-42", false, textFile("fotos", "x.jpg", "xxx"))
	require.Len(t, env.blob.Paths(), 1)

	assert.ErrorIs(t, env.svc.Form.DeleteForm(ctx, other, id), ErrForbidden)
	require.NoError(t, env.svc.Form.DeleteForm(ctx, admin, id))

	_, err := env.svc.Form.GetForm(id)
	assert.ErrorIs(t, err, ErrFormNotFound)
	assert.Empty(t, env.blob.Paths())
	_, ok := env.mirror.Report("OS-42", id)
	assert.False(t, ok)

	assert.ErrorIs(t, env.svc.Form.DeleteForm(ctx, admin, id), ErrFormNotFound)
}

func TestPruneFileURL(t *testing.T) {
	data := map[string]any{
		"fotos": []any{
			map[string]any{"name": "a", "url": "u1"},
			map[string]any{"name": "b", "url": "u2"},
		},
		"anexos": []any{map[string]any{"name": "c", "url": "u1"}},
		"texto":  "u1",
	}

	out := pruneFileURL(data, "u1")
	assert.Equal(t, []map[string]any{{"name": "b", "url": "u2"}}, out["fotos"])
	_, present := out["anexos"]
	assert.False(t, present)
	assert.Equal(t, "u1", out["texto"])
	assert.Len(t, data["fotos"], 2)
}
