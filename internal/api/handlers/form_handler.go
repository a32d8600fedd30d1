package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/fieldreport-go/internal/application"
	"github.com/linskybing/fieldreport-go/internal/config"
	"github.com/linskybing/fieldreport-go/internal/domain/form"
	"github.com/linskybing/fieldreport-go/internal/domain/schema"
	"github.com/linskybing/fieldreport-go/pkg/response"
	"github.com/linskybing/fieldreport-go/pkg/utils"
)

type FormHandler struct {
	submissions *application.SubmissionService
	forms       *application.FormService
}

func NewFormHandler(submissions *application.SubmissionService, forms *application.FormService) *FormHandler {
	return &FormHandler{submissions: submissions, forms: forms}
}

// submitRequest is the JSON body accepted when no files are attached.
type submitRequest struct {
	Values map[string]any `json:"values"`
	Draft  bool           `json:"draft"`
}

const defaultUploadLimit = 32 << 20

// reservedQueryParams are not forwarded as inbound carry-over parameters.
var reservedQueryParams = map[string]bool{
	schema.ParamChain: true,
	"draft":           true,
}

// Submit godoc
// @Summary Submit a form
// @Description Accepts multipart/form-data with a "values" JSON object and files under "files[<fieldId>]", or a JSON body without files. Query parameters carry the chain context (os, originatingFormId, chain and carry-over pairs).
// @Tags forms
// @Security BearerAuth
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param formType path string true "Form definition id"
// @Param values formData string false "Field values as a JSON object"
// @Param draft formData bool false "Store as draft"
// @Param os query string false "Work order carried from the previous form"
// @Param originatingFormId query string false "First form of the chain"
// @Param chain query string false "Comma separated form ids already visited"
// @Success 201 {object} application.SubmissionResult
// @Failure 400 {object} response.ErrorResponse "Malformed request"
// @Failure 404 {object} response.ErrorResponse "form does not exist"
// @Failure 422 {object} response.ValidationErrorResponse "Field validation failed"
// @Failure 502 {object} response.ErrorResponse "File storage failed"
// @Router /submissions/{formType} [post]
func (h *FormHandler) Submit(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Unauthorized"})
		return
	}

	in := application.SubmitInput{
		FormType: c.Param("formType"),
		Inbound:  map[string]string{},
	}
	for key, vals := range c.Request.URL.Query() {
		if reservedQueryParams[key] || len(vals) == 0 {
			continue
		}
		in.Inbound[key] = vals[0]
	}
	if chain := c.Query(schema.ParamChain); chain != "" {
		for _, id := range strings.Split(chain, ",") {
			if id = strings.TrimSpace(id); id != "" {
				in.Chain = append(in.Chain, id)
			}
		}
	}
	in.Draft, _ = strconv.ParseBool(c.Query("draft"))

	limit := config.MaxUploadMB << 20
	if limit <= 0 {
		limit = defaultUploadLimit
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		mf, err := c.MultipartForm()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, response.ErrorResponse{Error: "upload too large"})
				return
			}
			c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid multipart form"})
			return
		}
		if raw := firstValue(mf.Value, "values"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &in.Values); err != nil {
				c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "values must be a JSON object"})
				return
			}
		}
		if d := firstValue(mf.Value, "draft"); d != "" {
			in.Draft, _ = strconv.ParseBool(d)
		}
		in.Files = uploadedFiles(mf)
	} else {
		var req submitRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid request body"})
			return
		}
		in.Values = req.Values
		in.Draft = in.Draft || req.Draft
	}

	res, err := h.submissions.Submit(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func firstValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// uploadedFiles collects parts named files[<fieldId>].
func uploadedFiles(mf *multipart.Form) []application.UploadedFile {
	var out []application.UploadedFile
	for key, headers := range mf.File {
		fieldID, ok := strings.CutPrefix(key, "files[")
		if !ok || !strings.HasSuffix(fieldID, "]") {
			continue
		}
		fieldID = strings.TrimSuffix(fieldID, "]")
		for _, fh := range headers {
			fh := fh
			out = append(out, application.UploadedFile{
				FieldID:     fieldID,
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Open: func() (io.ReadCloser, error) {
					return fh.Open()
				},
			})
		}
	}
	return out
}

// GetForm godoc
// @Summary Get a submitted form
// @Tags forms
// @Security BearerAuth
// @Produce json
// @Param id path int true "Form ID"
// @Success 200 {object} form.Form
// @Failure 404 {object} response.ErrorResponse "Form not found"
// @Router /forms/{id} [get]
func (h *FormHandler) GetForm(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid ID"})
		return
	}
	f, err := h.forms.GetForm(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// ListForms godoc
// @Summary List submitted forms
// @Description user_id accepts numeric ids, usernames or handles ("mg01" matches "mg01@..."), comma separated.
// @Tags forms
// @Security BearerAuth
// @Produce json
// @Param form_type query string false "Form type"
// @Param os_number query string false "Work order"
// @Param status query string false "DRAFT, SUBMITTED or APPROVED"
// @Param user_id query string false "User identifiers"
// @Param from query string false "Created from (date)"
// @Param to query string false "Created until (date)"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 200)"
// @Success 200 {object} form.FormPage
// @Failure 400 {object} response.ErrorResponse "Invalid query"
// @Router /forms [get]
func (h *FormHandler) ListForms(c *gin.Context) {
	var q form.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}
	page, err := h.forms.ListForms(q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// UpdateForm godoc
// @Summary Update a draft
// @Tags forms
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Form ID"
// @Param input body form.UpdateFormDTO true "New field values"
// @Success 200 {object} form.Form
// @Failure 403 {object} response.ErrorResponse "Not the owner"
// @Failure 409 {object} response.ErrorResponse "Form is not a draft"
// @Failure 422 {object} response.ValidationErrorResponse "Field validation failed"
// @Router /forms/{id} [put]
func (h *FormHandler) UpdateForm(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid ID"})
		return
	}
	var input form.UpdateFormDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Unauthorized"})
		return
	}

	f, err := h.forms.UpdateForm(c.Request.Context(), actor, id, input.Data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// DeleteForm godoc
// @Summary Delete a form and its files
// @Tags forms
// @Security BearerAuth
// @Param id path int true "Form ID"
// @Success 204 "No Content"
// @Failure 403 {object} response.ErrorResponse "Not the owner"
// @Failure 404 {object} response.ErrorResponse "Form not found"
// @Router /forms/{id} [delete]
func (h *FormHandler) DeleteForm(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid ID"})
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Unauthorized"})
		return
	}
	if err := h.forms.DeleteForm(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SubmitDraft godoc
// @Summary Submit a draft
// @Tags forms
// @Security BearerAuth
// @Produce json
// @Param id path int true "Form ID"
// @Success 200 {object} application.TransitionResult
// @Failure 409 {object} response.ErrorResponse "Form is not a draft"
// @Router /forms/{id}/submit [post]
func (h *FormHandler) SubmitDraft(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid ID"})
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Unauthorized"})
		return
	}
	res, err := h.forms.SubmitForm(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Approve godoc
// @Summary Approve a submitted form
// @Tags forms
// @Security BearerAuth
// @Produce json
// @Param id path int true "Form ID"
// @Success 200 {object} form.Form
// @Failure 403 {object} response.ErrorResponse "Supervisor or admin only"
// @Failure 409 {object} response.ErrorResponse "Form is not submitted"
// @Router /forms/{id}/approve [post]
func (h *FormHandler) Approve(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid ID"})
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Unauthorized"})
		return
	}
	f, err := h.forms.ApproveForm(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// DeletePhoto godoc
// @Summary Delete one attached file
// @Description Removes the stored file and its entry from the form data.
// @Tags forms
// @Security BearerAuth
// @Produce json
// @Param id path int true "Photo ID"
// @Success 200 {object} form.Form
// @Failure 403 {object} response.ErrorResponse "Not the owner"
// @Failure 404 {object} response.ErrorResponse "Photo not found"
// @Router /photos/{id} [delete]
func (h *FormHandler) DeletePhoto(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid ID"})
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Unauthorized"})
		return
	}
	f, err := h.forms.DeletePhoto(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}
