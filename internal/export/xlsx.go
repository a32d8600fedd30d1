package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSubmissions = "Formularios"
	SheetSummary     = "Resumo"
	SheetFields      = "Campos"
)

var SubmissionColumns = []string{"ID", "Tipo", "OS", "Status", "Autor", "Criado em", "Enviado em", "Aprovado em"}

type SubmissionRow struct {
	ID          uint
	FormType    string
	OsNumber    string
	Status      string
	Author      string
	CreatedAt   time.Time
	SubmittedAt *time.Time
	ApprovedAt  *time.Time
}

func formatOptionalDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(Location).Format(DateLayout)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
}

// WriteSubmissionsXLSX writes one row per submission under the fixed
// SubmissionColumns header.
func WriteSubmissionsXLSX(w io.Writer, rows []SubmissionRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSubmissions); err != nil {
		return err
	}

	header := make([]interface{}, len(SubmissionColumns))
	for i, c := range SubmissionColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetSubmissions, "A1", &header); err != nil {
		return err
	}
	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSubmissions, "A1", cell(len(SubmissionColumns), 1), style); err != nil {
		return err
	}

	for i, r := range rows {
		values := []interface{}{
			r.ID,
			r.FormType,
			r.OsNumber,
			r.Status,
			r.Author,
			r.CreatedAt.In(Location).Format(DateLayout),
			formatOptionalDate(r.SubmittedAt),
			formatOptionalDate(r.ApprovedAt),
		}
		if err := f.SetSheetRow(SheetSubmissions, cell(1, i+2), &values); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetSubmissions, "A", "H", 18); err != nil {
		return err
	}

	return f.Write(w)
}

// WriteFieldsXLSX writes a single submission: the summary block on one sheet
// and the field list on another, file links as hyperlinked cells after the
// value column.
func WriteFieldsXLSX(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetFields); err != nil {
		return err
	}
	style, err := headerStyle(f)
	if err != nil {
		return err
	}

	if err := f.SetCellValue(SheetSummary, "A1", doc.Title); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "A1", "A1", style); err != nil {
		return err
	}
	for i, s := range doc.Summary {
		row := []interface{}{s.Label, s.Value}
		if err := f.SetSheetRow(SheetSummary, cell(1, i+2), &row); err != nil {
			return err
		}
	}

	header := []interface{}{"Campo", "Valor", "Arquivos"}
	if err := f.SetSheetRow(SheetFields, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetFields, "A1", "C1", style); err != nil {
		return err
	}
	for i, lv := range doc.Fields {
		rowNum := i + 2
		row := []interface{}{lv.Label, lv.Value}
		if err := f.SetSheetRow(SheetFields, cell(1, rowNum), &row); err != nil {
			return err
		}
		for j, l := range lv.Links {
			c := cell(3+j, rowNum)
			if err := f.SetCellValue(SheetFields, c, l.Name); err != nil {
				return err
			}
			if err := f.SetCellHyperLink(SheetFields, c, l.URL, "External"); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(SheetFields, "A", "B", 36); err != nil {
		return err
	}

	return f.Write(w)
}

// ReadFieldsXLSX reads back the field sheet written by WriteFieldsXLSX.
func ReadFieldsXLSX(r io.Reader) ([]LabeledValue, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetFields)
	if err != nil {
		return nil, err
	}

	var out []LabeledValue
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		lv := LabeledValue{Label: row[0]}
		if len(row) > 1 {
			lv.Value = row[1]
		}
		for col := 3; col <= len(row); col++ {
			c := cell(col, i+1)
			ok, url, err := f.GetCellHyperLink(SheetFields, c)
			if err != nil {
				return nil, err
			}
			if ok {
				lv.Links = append(lv.Links, Link{Name: row[col-1], URL: url})
			}
		}
		out = append(out, lv)
	}
	return out, nil
}
