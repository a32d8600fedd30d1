package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/fieldreport-go/internal/application"
	"github.com/linskybing/fieldreport-go/internal/domain/form"
	"github.com/linskybing/fieldreport-go/pkg/response"
	"github.com/linskybing/fieldreport-go/pkg/utils"
)

type ExportHandler struct {
	svc *application.ExportService
}

func NewExportHandler(svc *application.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

func sendRendered(c *gin.Context, out *application.Rendered) {
	c.Header("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	c.Data(http.StatusOK, out.ContentType, out.Body)
}

// ExportPDF godoc
// @Summary Render a form as PDF
// @Tags exports
// @Security BearerAuth
// @Produce application/pdf
// @Param id path int true "Form ID"
// @Success 200 {file} file
// @Failure 404 {object} response.ErrorResponse "Form not found"
// @Router /forms/{id}/pdf [get]
func (h *ExportHandler) ExportPDF(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid ID"})
		return
	}
	out, err := h.svc.RenderPDF(id)
	if err != nil {
		respondError(c, err)
		return
	}
	sendRendered(c, out)
}

// ExportXLSX godoc
// @Summary Render a form as a spreadsheet
// @Tags exports
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Form ID"
// @Success 200 {file} file
// @Failure 404 {object} response.ErrorResponse "Form not found"
// @Router /forms/{id}/xlsx [get]
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid ID"})
		return
	}
	out, err := h.svc.RenderXLSX(id)
	if err != nil {
		respondError(c, err)
		return
	}
	sendRendered(c, out)
}

// ExportList godoc
// @Summary Export the filtered submission list as a spreadsheet
// @Tags exports
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param form_type query string false "Form type"
// @Param os_number query string false "Work order"
// @Param status query string false "Status"
// @Param user_id query string false "User identifiers"
// @Param from query string false "Created from (date)"
// @Param to query string false "Created until (date)"
// @Success 200 {file} file
// @Router /forms/export [get]
func (h *ExportHandler) ExportList(c *gin.Context) {
	var q form.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}
	out, err := h.svc.RenderList(q)
	if err != nil {
		respondError(c, err)
		return
	}
	sendRendered(c, out)
}
