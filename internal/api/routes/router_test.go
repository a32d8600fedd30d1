package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/fieldreport-go/internal/api/middleware"
	"github.com/linskybing/fieldreport-go/internal/application"
	"github.com/linskybing/fieldreport-go/internal/config"
	"github.com/linskybing/fieldreport-go/internal/domain/schema"
	"github.com/linskybing/fieldreport-go/internal/domain/user"
	"github.com/linskybing/fieldreport-go/internal/mirror"
	"github.com/linskybing/fieldreport-go/internal/repository"
	"github.com/linskybing/fieldreport-go/internal/storage"
	"github.com/linskybing/fieldreport-go/internal/testutils"
	"github.com/linskybing/fieldreport-go/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type apiEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	blob   *storage.MemoryStore
	mirror *mirror.Memory
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.JwtSecret = "test-secret"
	config.Issuer = "fieldreport-test"
	middleware.Init()

	gormDB := testutils.NewTestDB(t)
	repos := repository.New(gormDB)
	registry := schema.Default()
	blob := storage.NewMemoryStore("http://files.test")
	m := mirror.NewMemory()
	svc := application.New(repos, registry, blob, m)

	return &apiEnv{
		t:      t,
		db:     gormDB,
		router: NewRouter(repos, svc, registry),
		blob:   blob,
		mirror: m,
	}
}

func (e *apiEnv) token(username string, role user.Role) string {
	e.t.Helper()
	u := testutils.CreateUser(e.t, e.db, username, role)
	tok, err := middleware.GenerateToken(u.UID, u.Username, u.Role, time.Hour)
	require.NoError(e.t, err)
	return tok
}

func (e *apiEnv) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) doJSON(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, token)
}

func multipartSubmission(t *testing.T, values map[string]any, files map[string][]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	raw, err := json.Marshal(values)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("values", string(raw)))
	for fieldID, names := range files {
		for _, name := range names {
			part, err := mw.CreateFormFile("files["+fieldID+"]", name)
			require.NoError(t, err)
			_, err = part.Write([]byte("content of " + name))
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

type submissionBody struct {
	RecordID uint               `json:"recordId"`
	OsID     string             `json:"osId"`
	Status   string             `json:"status"`
	Next     *schema.Navigation `json:"next"`
	Done     bool               `json:"done"`
}

func TestSubmitJSON_Rnc(t *testing.T) {
	env := newAPIEnv(t)
	tok := env.token("tech@obra.com.br", user.RoleTechnician)

	w := env.doJSON(http.MethodPost, "/submissions/rnc", tok, map[string]any{
		"values": map[string]any{"ordemServico": "OS-42", "gravidade": "alta"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got submissionBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotZero(t, got.RecordID)
	assert.Equal(t, "OS-42", got.OsID)
	assert.True(t, got.Done)
	assert.Nil(t, got.Next)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSubmitMultipart_WithFilesAndChain(t *testing.T) {
	env := newAPIEnv(t)
	tok := env.token("tech@obra.com.br", user.RoleTechnician)

	body, contentType := multipartSubmission(t,
		map[string]any{"origem": "execucao", "necessitaAcaoCorretiva": "N"},
		map[string][]string{"fotos": {"a.jpg", "b.jpg"}},
	)
	q := url.Values{"os": {"OS-7"}, "originatingFormId": {"1"}, "chain": {"cronograma-diario-obra"}}
	req := httptest.NewRequest(http.MethodPost, "/submissions/rnc-report?"+q.Encode(), body)
	req.Header.Set("Content-Type", contentType)
	w := env.do(req, tok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got submissionBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "OS-7", got.OsID)
	assert.True(t, got.Done)
	assert.Len(t, env.blob.Paths(), 2)

	w = env.doJSON(http.MethodGet, "/forms/"+strconv.FormatUint(uint64(got.RecordID), 10), tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored struct {
		OriginatingFormID *uint          `json:"originating_form_id"`
		Data              map[string]any `json:"data"`
		Photos            []any          `json:"photos"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	require.NotNil(t, stored.OriginatingFormID)
	assert.Equal(t, uint(1), *stored.OriginatingFormID)
	assert.Len(t, stored.Photos, 2)
	assert.Len(t, stored.Data["fotos"], 2)
}

func TestSubmit_DailyLogReturnsNextForm(t *testing.T) {
	env := newAPIEnv(t)
	tok := env.token("tech@obra.com.br", user.RoleTechnician)

	w := env.doJSON(http.MethodPost, "/submissions/cronograma-diario-obra", tok, map[string]any{
		"values": map[string]any{"ordemServico": "OS-7", "emissaoRNCDia": "S"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got submissionBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.Next)
	assert.False(t, got.Done)
	assert.Equal(t, "rnc-report", got.Next.LinkedFormID)
	assert.Equal(t, "OS-7", got.Next.Params["os"])
	assert.Equal(t, strconv.FormatUint(uint64(got.RecordID), 10), got.Next.Params["originatingFormId"])
}

func TestSubmit_ErrorMapping(t *testing.T) {
	env := newAPIEnv(t)
	tok := env.token("tech@obra.com.br", user.RoleTechnician)

	w := env.doJSON(http.MethodPost, "/submissions/rnc", tok, map[string]any{"values": map[string]any{}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var verr response.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verr))
	require.NotEmpty(t, verr.Fields)
	assert.Equal(t, "ordemServico", verr.Fields[0].FieldID)

	w = env.doJSON(http.MethodPost, "/submissions/does-not-exist", tok, map[string]any{"values": map[string]any{}})
	require.Equal(t, http.StatusNotFound, w.Code)
	var nf response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nf))
	assert.Equal(t, "form does not exist", nf.Error)

	w = env.doJSON(http.MethodPost, "/submissions/rnc", "", map[string]any{"values": map[string]any{}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/submissions/rnc", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, env.do(req, tok).Code)
}

func TestSubmit_UploadFailureIsBadGateway(t *testing.T) {
	env := newAPIEnv(t)
	tok := env.token("tech@obra.com.br", user.RoleTechnician)
	env.blob.FailOn = func(string) error { return errors.New("bucket offline") }

	body, contentType := multipartSubmission(t,
		map[string]any{"ordemServico": "OS-42"},
		map[string][]string{"fotos": {"a.jpg"}},
	)
	req := httptest.NewRequest(http.MethodPost, "/submissions/rnc", body)
	req.Header.Set("Content-Type", contentType)
	w := env.do(req, tok)
	require.Equal(t, http.StatusBadGateway, w.Code)

	w = env.doJSON(http.MethodGet, "/forms", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":0`)
}

func TestListForms_UnknownUserIsEmptyPage(t *testing.T) {
	env := newAPIEnv(t)
	tok := env.token("mg01@obra.com.br", user.RoleTechnician)
	w := env.doJSON(http.MethodPost, "/submissions/rnc", tok, map[string]any{
		"values": map[string]any{"ordemServico": "OS-42"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.doJSON(http.MethodGet, "/forms?user_id=mg01", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = env.doJSON(http.MethodGet, "/forms?user_id=nobody", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)
	assert.Contains(t, w.Body.String(), `"total":0`)

	w = env.doJSON(http.MethodGet, "/forms?from=yesterday", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApproveRequiresSupervisor(t *testing.T) {
	env := newAPIEnv(t)
	tech := env.token("tech@obra.com.br", user.RoleTechnician)
	sup := env.token("sup@obra.com.br", user.RoleSupervisor)

	w := env.doJSON(http.MethodPost, "/submissions/rnc", tech, map[string]any{
		"values": map[string]any{"ordemServico": "OS-42"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var got submissionBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	path := "/forms/" + strconv.FormatUint(uint64(got.RecordID), 10) + "/approve"

	assert.Equal(t, http.StatusForbidden, env.doJSON(http.MethodPost, path, tech, nil).Code)
	assert.Equal(t, http.StatusOK, env.doJSON(http.MethodPost, path, sup, nil).Code)
	assert.Equal(t, http.StatusConflict, env.doJSON(http.MethodPost, path, sup, nil).Code)
}

func TestExportEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	tok := env.token("tech@obra.com.br", user.RoleTechnician)
	w := env.doJSON(http.MethodPost, "/submissions/rnc", tok, map[string]any{
		"values": map[string]any{"ordemServico": "OS-42"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var got submissionBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	id := strconv.FormatUint(uint64(got.RecordID), 10)

	w = env.doJSON(http.MethodGet, "/forms/"+id+"/pdf", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, application.ContentTypePDF, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "rnc-OS-42-"+id+".pdf")

	w = env.doJSON(http.MethodGet, "/forms/"+id+"/xlsx", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, application.ContentTypeXLSX, w.Header().Get("Content-Type"))

	w = env.doJSON(http.MethodGet, "/forms/export?os_number=OS-42", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNotFound, env.doJSON(http.MethodGet, "/forms/9999/pdf", tok, nil).Code)
}

func TestSchemaEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	tok := env.token("tech@obra.com.br", user.RoleTechnician)

	w := env.doJSON(http.MethodGet, "/schemas", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"rnc"`)

	assert.Equal(t, http.StatusNotFound, env.doJSON(http.MethodGet, "/schemas/nope", tok, nil).Code)

	w = env.doJSON(http.MethodPost, "/schemas/rnc-report/visibility", tok, map[string]any{
		"values": map[string]any{"origem": "execucao", "fornecedor": "ACME"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var vis struct {
		Visible []string       `json:"visible"`
		Hidden  []string       `json:"hidden"`
		Values  map[string]any `json:"values"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vis))
	assert.Contains(t, vis.Hidden, "fornecedor")
	assert.Contains(t, vis.Hidden, "notaFiscal")
	assert.NotContains(t, vis.Values, "fornecedor")
	assert.Contains(t, vis.Visible, "ordemServico")
}

func TestLoginAndAdminRoutes(t *testing.T) {
	env := newAPIEnv(t)
	testutils.CreateUser(t, env.db, "boss@obra.com.br", user.RoleAdmin)

	form := url.Values{"username": {"boss@obra.com.br"}, "password": {"password"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := env.do(req, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tok response.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	assert.Equal(t, string(user.RoleAdmin), tok.Role)

	assert.Equal(t, http.StatusOK, env.doJSON(http.MethodGet, "/users", tok.Token, nil).Code)
	assert.Equal(t, http.StatusOK, env.doJSON(http.MethodGet, "/audit/logs", tok.Token, nil).Code)

	tech := env.token("tech@obra.com.br", user.RoleTechnician)
	assert.Equal(t, http.StatusForbidden, env.doJSON(http.MethodGet, "/audit/logs", tech, nil).Code)

	bad := url.Values{"username": {"boss@obra.com.br"}, "password": {"wrong"}}
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(bad.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusUnauthorized, env.do(req, "").Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newAPIEnv(t)
	assert.Equal(t, http.StatusOK, env.doJSON(http.MethodGet, "/healthz", "", nil).Code)

	w := env.doJSON(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fieldreport_api_requests_total")
}
