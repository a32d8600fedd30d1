package application

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/linskybing/fieldreport-go/internal/domain/form"
	"github.com/linskybing/fieldreport-go/internal/domain/schema"
	"github.com/linskybing/fieldreport-go/internal/export"
	"github.com/linskybing/fieldreport-go/internal/repository"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// MaxExportRows bounds the spreadsheet extract across submissions.
	MaxExportRows = 10000
)

type Rendered struct {
	Filename    string
	ContentType string
	Body        []byte
}

type ExportService struct {
	Forms    *FormService
	Registry *schema.Registry
	Now      func() time.Time
}

func NewExportService(forms *FormService, registry *schema.Registry) *ExportService {
	return &ExportService{Forms: forms, Registry: registry, Now: time.Now}
}

func optionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(export.Location).Format(export.DateLayout)
}

// Document assembles the renderable view of f. A form type missing from
// the registry still renders, with raw key/value pairs.
func (s *ExportService) Document(f *form.Form) export.Document {
	doc := export.Document{
		Title:       f.FormType,
		GeneratedAt: s.Now(),
		Responsible: displayName(f.User),
	}

	def, ok := s.Registry.Get(f.FormType)
	if ok {
		doc.Title = def.Name
		doc.Fields = export.FieldValues(def, f.Data)
		if def.ResponsibleFieldID != "" {
			if r := schema.ValueString(f.Data[def.ResponsibleFieldID]); r != "" {
				doc.Responsible = r
			}
		}
	} else {
		doc.Fields = export.RawValues(f.Data)
	}

	doc.Summary = []export.LabeledValue{
		{Label: "ID", Value: strconv.FormatUint(uint64(f.ID), 10)},
		{Label: "OS", Value: f.OsNumber},
		{Label: "Status", Value: string(f.Status)},
		{Label: "Autor", Value: displayName(f.User)},
		{Label: "Criado em", Value: f.CreatedAt.In(export.Location).Format(export.DateLayout)},
		{Label: "Enviado em", Value: optionalDate(f.SubmittedAt)},
		{Label: "Aprovado em", Value: optionalDate(f.ApprovedAt)},
	}
	return doc
}

func exportFilename(f *form.Form, ext string) string {
	return fmt.Sprintf("%s-%s-%d.%s", f.FormType, f.OsNumber, f.ID, ext)
}

func (s *ExportService) RenderPDF(id uint) (*Rendered, error) {
	f, err := s.Forms.GetForm(id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.WritePDF(&buf, s.Document(f)); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return &Rendered{Filename: exportFilename(f, "pdf"), ContentType: ContentTypePDF, Body: buf.Bytes()}, nil
}

func (s *ExportService) RenderXLSX(id uint) (*Rendered, error) {
	f, err := s.Forms.GetForm(id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.WriteFieldsXLSX(&buf, s.Document(f)); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return &Rendered{Filename: exportFilename(f, "xlsx"), ContentType: ContentTypeXLSX, Body: buf.Bytes()}, nil
}

// RenderList writes one spreadsheet row per form matching q, walking every
// page up to MaxExportRows.
func (s *ExportService) RenderList(q form.ListQuery) (*Rendered, error) {
	q.Page = 1
	q.PageSize = repository.MaxPageSize

	var rows []export.SubmissionRow
	for len(rows) < MaxExportRows {
		page, err := s.Forms.ListForms(q)
		if err != nil {
			return nil, err
		}
		for _, f := range page.Items {
			rows = append(rows, export.SubmissionRow{
				ID:          f.ID,
				FormType:    f.FormType,
				OsNumber:    f.OsNumber,
				Status:      string(f.Status),
				Author:      displayName(f.User),
				CreatedAt:   f.CreatedAt,
				SubmittedAt: f.SubmittedAt,
				ApprovedAt:  f.ApprovedAt,
			})
		}
		if len(page.Items) < page.PageSize || int64(q.Page*q.PageSize) >= page.Total {
			break
		}
		q.Page++
	}

	var buf bytes.Buffer
	if err := export.WriteSubmissionsXLSX(&buf, rows); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	name := "formularios-" + s.Now().Format("20060102-1504") + ".xlsx"
	return &Rendered{Filename: name, ContentType: ContentTypeXLSX, Body: buf.Bytes()}, nil
}
