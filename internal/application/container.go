package application

import (
	"github.com/linskybing/fieldreport-go/internal/domain/schema"
	"github.com/linskybing/fieldreport-go/internal/mirror"
	"github.com/linskybing/fieldreport-go/internal/repository"
	"github.com/linskybing/fieldreport-go/internal/storage"
)

type Services struct {
	Audit      *AuditService
	User       *UserService
	Form       *FormService
	Submission *SubmissionService
	Export     *ExportService
	Backup     *BackupService
}

func New(repos *repository.Repos, registry *schema.Registry, blob storage.BlobStore, m mirror.Mirror) *Services {
	forms := NewFormService(repos, registry, blob, m)
	return &Services{
		Audit:      NewAuditService(repos),
		User:       NewUserService(repos),
		Form:       forms,
		Submission: NewSubmissionService(repos, registry, blob, m),
		Export:     NewExportService(forms, registry),
		Backup:     NewBackupService(repos, blob),
	}
}
