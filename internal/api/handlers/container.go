package handlers

import (
	"github.com/linskybing/fieldreport-go/internal/application"
	"github.com/linskybing/fieldreport-go/internal/domain/schema"
)

type Handlers struct {
	Audit  *AuditHandler
	User   *UserHandler
	Form   *FormHandler
	Schema *SchemaHandler
	Export *ExportHandler
}

func New(svc *application.Services, registry *schema.Registry) *Handlers {
	return &Handlers{
		Audit:  NewAuditHandler(svc.Audit),
		User:   NewUserHandler(svc.User),
		Form:   NewFormHandler(svc.Submission, svc.Form),
		Schema: NewSchemaHandler(registry),
		Export: NewExportHandler(svc.Export),
	}
}
