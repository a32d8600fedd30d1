package application

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/linskybing/fieldreport-go/internal/domain/form"
	"github.com/linskybing/fieldreport-go/internal/domain/schema"
	"github.com/linskybing/fieldreport-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_RncEndsChain(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)

	res, err := env.svc.Submission.Submit(context.Background(), tech, SubmitInput{
		FormType: "rnc",
		Values:   map[string]any{"ordemServico": "OS-42", "gravidade": "alta", "descricao": "trinca na laje"},
	})
	require.NoError(t, err)

	assert.NotZero(t, res.RecordID)
	assert.Equal(t, "OS-42", res.OsID)
	assert.Equal(t, form.FormStatusSubmitted, res.Status)
	assert.True(t, res.Done)
	assert.Nil(t, res.Next)

	stored, err := env.repos.Form.GetByID(res.RecordID)
	require.NoError(t, err)
	assert.Equal(t, "OS-42", stored.OsNumber)
	assert.Equal(t, tech.UserID, stored.UserID)
	assert.NotNil(t, stored.SubmittedAt)
	assert.Equal(t, "alta", stored.Data["gravidade"])

	rep, ok := env.mirror.Report("OS-42", res.RecordID)
	require.True(t, ok)
	assert.Equal(t, "rnc", rep.FormType)
	assert.Equal(t, tech.Username, env.mirror.WorkOrders["OS-42"].LastUpdatedBy)
}

func TestSubmit_DailyLogTriggersRncReport(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)

	res, err := env.svc.Submission.Submit(context.Background(), tech, SubmitInput{
		FormType: "cronograma-diario-obra",
		Values:   map[string]any{"ordemServico": "OS-7", "emissaoRNCDia": "S"},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Next)
	assert.False(t, res.Done)
	assert.Equal(t, "rnc-report", res.Next.LinkedFormID)
	assert.Equal(t, map[string]string{
		"os":                "OS-7",
		"originatingFormId": strconv.FormatUint(uint64(res.RecordID), 10),
	}, res.Next.Params)
	assert.Equal(t, []string{"cronograma-diario-obra"}, res.Next.Chain)
}

func TestSubmit_ChainKeepsOriginAndInboundOs(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)

	res, err := env.svc.Submission.Submit(context.Background(), tech, SubmitInput{
		FormType: "rnc-report",
		Values: map[string]any{
			"origem":                 "execucao",
			"responsavelTratativa":   "Carlos",
			"necessitaAcaoCorretiva": "S",
		},
		Inbound: map[string]string{"os": "OS-7", "originatingFormId": "3"},
		Chain:   []string{"cronograma-diario-obra"},
	})
	require.NoError(t, err)
	assert.Equal(t, "OS-7", res.OsID)
	require.NotNil(t, res.Next)
	assert.Equal(t, "acao-corretiva", res.Next.LinkedFormID)
	assert.Equal(t, "3", res.Next.Params["originatingFormId"])
	assert.Equal(t, "execucao", res.Next.Params["origem"])
	assert.Equal(t, "Carlos", res.Next.Params["responsavel"])

	stored, err := env.repos.Form.GetByID(res.RecordID)
	require.NoError(t, err)
	require.NotNil(t, stored.OriginatingFormID)
	assert.Equal(t, uint(3), *stored.OriginatingFormID)
}

func TestSubmit_UnknownFormType(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)

	_, err := env.svc.Submission.Submit(context.Background(), tech, SubmitInput{FormType: "nope"})
	assert.ErrorIs(t, err, ErrUnknownFormType)
}

func TestSubmit_ValidationFailureWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)

	_, err := env.svc.Submission.Submit(context.Background(), tech, SubmitInput{
		FormType: "rnc",
		Values:   map[string]any{"gravidade": "alta"},
		Files:    []UploadedFile{textFile("fotos", "a.jpg", "aaa")},
	})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ordemServico", verr.Fields[0].FieldID)

	var count int64
	require.NoError(t, env.db.Model(&form.Form{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, env.blob.Paths())
}

func TestSubmit_StoresFilesAndDescriptors(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)

	res, err := env.svc.Submission.Submit(context.Background(), tech, SubmitInput{
		FormType: "rnc",
		Values:   map[string]any{"ordemServico": "OS-42"},
		Files: []UploadedFile{
			textFile("fotos", "a.jpg", "aaa"),
			textFile("fotos", "a.jpg", "bbb"),
			textFile("unknown", "c.jpg", "ccc"),
		},
	})
	require.NoError(t, err)

	stored, err := env.repos.Form.GetByID(res.RecordID)
	require.NoError(t, err)
	assert.Len(t, stored.Photos, 2)
	assert.Len(t, schema.FileDescriptors(stored.Data["fotos"]), 2)
	assert.Len(t, env.blob.Paths(), 2)
	for _, p := range stored.Photos {
		assert.True(t, env.blob.Has(p.ObjectPath))
		assert.True(t, strings.HasPrefix(p.ObjectPath, strconv.FormatUint(uint64(tech.UserID), 10)+"/rnc/OS-42/"))
	}
}

func TestSubmit_UploadFailureWritesNoRecord(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)
	env.blob.FailOn = func(path string) error {
		if strings.HasSuffix(path, "b.jpg") {
			return errors.New("bucket unavailable")
		}
		return nil
	}

	_, err := env.svc.Submission.Submit(context.Background(), tech, SubmitInput{
		FormType: "rnc",
		Values:   map[string]any{"ordemServico": "OS-42"},
		Files: []UploadedFile{
			textFile("fotos", "a.jpg", "aaa"),
			textFile("fotos", "b.jpg", "bbb"),
		},
	})
	assert.ErrorIs(t, err, ErrUploadFailed)

	var count int64
	require.NoError(t, env.db.Model(&form.Form{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&form.Photo{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, env.blob.Paths())
	assert.Empty(t, env.mirror.Reports)
}

func TestSubmit_MirrorFailureDoesNotFailSubmission(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)
	env.mirror.Err = errors.New("mongo unreachable")

	res, err := env.svc.Submission.Submit(context.Background(), tech, SubmitInput{
		FormType: "rnc",
		Values:   map[string]any{"ordemServico": "OS-42"},
	})
	require.NoError(t, err)
	assert.Equal(t, "OS-42", res.OsID)

	_, err = env.repos.Form.GetByID(res.RecordID)
	assert.NoError(t, err)
	assert.Empty(t, env.mirror.Reports)
}

func TestSubmit_DraftSkipsTriggers(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)

	res, err := env.svc.Submission.Submit(context.Background(), tech, SubmitInput{
		FormType: "cronograma-diario-obra",
		Values:   map[string]any{"ordemServico": "OS-7", "emissaoRNCDia": "S"},
		Draft:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, form.FormStatusDraft, res.Status)
	assert.True(t, res.Done)
	assert.Nil(t, res.Next)

	stored, err := env.repos.Form.GetByID(res.RecordID)
	require.NoError(t, err)
	assert.Nil(t, stored.SubmittedAt)
}

func TestParseOrigin(t *testing.T) {
	assert.Nil(t, parseOrigin(""))
	assert.Nil(t, parseOrigin("abc"))
	assert.Nil(t, parseOrigin("0"))
	got := parseOrigin(" 12 ")
	require.NotNil(t, got)
	assert.Equal(t, uint(12), *got)
}

func TestSubmit_FormEncodedCheckboxKeepsDependentFields(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)

	res, err := env.svc.Submission.Submit(context.Background(), tech, SubmitInput{
		FormType: "cronograma-diario-obra",
		Values: map[string]any{
			"ordemServico":     "OS-1",
			"clima":            "chuva",
			"paralisacaoChuva": "on",
			"horasParadas":     "3",
		},
	})
	require.NoError(t, err)

	stored, err := env.repos.Form.GetByID(res.RecordID)
	require.NoError(t, err)
	assert.Equal(t, true, stored.Data["paralisacaoChuva"])
	assert.Equal(t, 3.0, stored.Data["horasParadas"])

	report, ok := env.mirror.Report("OS-1", res.RecordID)
	require.True(t, ok)
	assert.Equal(t, 3.0, report.Data["horasParadas"])
}

func TestSubmit_FilesAcceptedForCheckboxRevealedField(t *testing.T) {
	env := newTestEnv(t)
	tech := env.actor(t, "tech@obra.com.br", user.RoleTechnician)

	res, err := env.svc.Submission.Submit(context.Background(), tech, SubmitInput{
		FormType: "ocorrencia-acidente",
		Values: map[string]any{
			"ordemServico":    "OS-5",
			"dataOcorrencia":  "2026-10-01T08:00",
			"comunicante":     "Carlos",
			"tipoOcorrencia":  "acidente",
			"houveVitima":     "on",
			"afastamento":     "s",
			"diasAfastamento": "2",
			"descricao":       "queda de nível",
			"gerarRnc":        "on",
		},
		Files: []UploadedFile{textFile("fotosLesao", "lesao.jpg", "img")},
	})
	require.NoError(t, err)

	stored, err := env.repos.Form.GetByID(res.RecordID)
	require.NoError(t, err)
	require.Len(t, stored.Photos, 1)
	assert.Equal(t, "fotosLesao", stored.Photos[0].FieldID)
	assert.Len(t, schema.FileDescriptors(stored.Data["fotosLesao"]), 1)
	assert.Equal(t, 2.0, stored.Data["diasAfastamento"])

	require.NotNil(t, res.Next)
	assert.Equal(t, "rnc-seguranca", res.Next.LinkedFormID)
	assert.Equal(t, "OS-5", res.Next.Params["os"])
}
