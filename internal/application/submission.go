package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/linskybing/fieldreport-go/internal/domain/audit"
	"github.com/linskybing/fieldreport-go/internal/domain/form"
	"github.com/linskybing/fieldreport-go/internal/domain/schema"
	"github.com/linskybing/fieldreport-go/internal/logging"
	"github.com/linskybing/fieldreport-go/internal/metrics"
	"github.com/linskybing/fieldreport-go/internal/mirror"
	"github.com/linskybing/fieldreport-go/internal/repository"
	"github.com/linskybing/fieldreport-go/internal/storage"
	"github.com/linskybing/fieldreport-go/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// UploadConcurrency bounds parallel blob writes within one submission.
const UploadConcurrency = 4

// UploadedFile is a file attached to a file-list field. Open is called once.
type UploadedFile struct {
	FieldID     string
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type SubmitInput struct {
	FormType string
	Values   map[string]any
	Files    []UploadedFile
	// Inbound holds the carry-over parameters the form was opened with.
	Inbound map[string]string
	// Chain lists the form ids already visited in this chain.
	Chain []string
	Draft bool
}

type SubmissionResult struct {
	RecordID uint               `json:"recordId"`
	OsID     string             `json:"osId"`
	Status   form.FormStatus    `json:"status"`
	Next     *schema.Navigation `json:"next,omitempty"`
	Done     bool               `json:"done"`
}

type storedFile struct {
	fieldID string
	path    string
	url     string
	name    string
	mime    string
	size    int64
}

type SubmissionService struct {
	Repos    *repository.Repos
	Registry *schema.Registry
	Blob     storage.BlobStore
	Mirror   mirror.Mirror
	Now      func() time.Time
}

func NewSubmissionService(repos *repository.Repos, registry *schema.Registry, blob storage.BlobStore, m mirror.Mirror) *SubmissionService {
	return &SubmissionService{
		Repos:    repos,
		Registry: registry,
		Blob:     blob,
		Mirror:   m,
		Now:      time.Now,
	}
}

// Submit validates, stores and mirrors one form, then evaluates its
// triggers. Nothing is written when validation or an upload fails.
func (s *SubmissionService) Submit(ctx context.Context, actor Actor, in SubmitInput) (*SubmissionResult, error) {
	def, ok := s.Registry.Get(in.FormType)
	if !ok {
		return nil, ErrUnknownFormType
	}
	log := logging.WithComponent("submission").WithFields(logrus.Fields{
		"form_type": def.ID,
		"user_id":   actor.UserID,
	})

	values := make(map[string]any, len(in.Values)+1)
	for k, v := range in.Values {
		values[k] = v
	}
	inboundOs := strings.TrimSpace(in.Inbound[schema.ParamOsNumber])
	if _, hasOsField := def.Field(def.OsFieldID); hasOsField && inboundOs != "" {
		if schema.ValueString(values[def.OsFieldID]) == "" {
			values[def.OsFieldID] = inboundOs
		}
	}

	visible := schema.PruneHiddenFields(def, schema.Canonicalize(def, values))
	files := acceptedFiles(def, visible, in.Files)
	attached := schema.Attachments{}
	for _, f := range files {
		attached[f.FieldID]++
	}

	data, err := schema.Normalize(def, values, attached)
	if err != nil {
		metrics.RecordSubmission(def.ID, metrics.ResultInvalid)
		return nil, err
	}

	osNumber := schema.ValueString(data[def.OsFieldID])
	if osNumber == "" {
		osNumber = inboundOs
	}
	if osNumber == "" {
		metrics.RecordSubmission(def.ID, metrics.ResultInvalid)
		return nil, &schema.ValidationError{Fields: []schema.FieldError{
			{FieldID: def.OsFieldID, Message: "work order is required"},
		}}
	}

	now := s.Now()
	stored, err := s.upload(ctx, actor.UserID, def.ID, osNumber, now, files)
	if err != nil {
		log.WithError(err).Error("upload failed")
		metrics.RecordSubmission(def.ID, metrics.ResultUploadFail)
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	for _, sf := range stored {
		descriptors, _ := data[sf.fieldID].([]map[string]any)
		data[sf.fieldID] = append(descriptors, map[string]any{
			"name":     sf.name,
			"url":      sf.url,
			"mimeType": sf.mime,
			"size":     sf.size,
		})
	}

	status := form.FormStatusSubmitted
	if in.Draft {
		status = form.FormStatusDraft
	}
	record := &form.Form{
		FormType:          def.ID,
		OsNumber:          osNumber,
		Status:            status,
		Data:              data,
		UserID:            actor.UserID,
		OriginatingFormID: parseOrigin(in.Inbound[schema.ParamOriginatingFormID]),
	}
	if status == form.FormStatusSubmitted {
		record.SubmittedAt = &now
	}

	err = s.Repos.ExecTx(func(r *repository.Repos) error {
		if err := r.Form.Create(record); err != nil {
			return err
		}
		for _, sf := range stored {
			photo := &form.Photo{
				FormID:       record.ID,
				FieldID:      sf.fieldID,
				URL:          sf.url,
				ObjectPath:   sf.path,
				OriginalName: sf.name,
				MimeType:     sf.mime,
				Size:         sf.size,
			}
			if err := r.Photo.Create(photo); err != nil {
				return err
			}
		}
		return utils.LogAudit(utils.AuditEntry{
			UserID:       actor.UserID,
			IP:           actor.IP,
			UserAgent:    actor.UserAgent,
			Action:       audit.ActionCreate,
			ResourceType: audit.ResourceForm,
			ResourceID:   strconv.FormatUint(uint64(record.ID), 10),
			After:        record,
			Description:  fmt.Sprintf("submitted %s for %s", def.ID, osNumber),
		}, r.Audit)
	})
	if err != nil {
		s.removeBlobs(stored)
		log.WithError(err).Error("persist submission")
		metrics.RecordSubmission(def.ID, metrics.ResultError)
		return nil, err
	}

	syncMirror(ctx, s.Mirror, record, actor.Username)

	result := &SubmissionResult{
		RecordID: record.ID,
		OsID:     osNumber,
		Status:   status,
	}
	if in.Draft {
		metrics.RecordSubmission(def.ID, metrics.ResultDraft)
		result.Done = true
		return result, nil
	}

	result.Next = schema.EvaluateTriggers(def, data, schema.TriggerContext{
		RecordID: result.recordIDString(),
		OsNumber: osNumber,
		Inbound:  in.Inbound,
		Chain:    in.Chain,
	})
	result.Done = result.Next == nil
	metrics.RecordSubmission(def.ID, metrics.ResultOK)
	log.WithFields(logrus.Fields{"form_id": record.ID, "os_number": osNumber, "done": result.Done}).Info("form submitted")
	return result, nil
}

func (r *SubmissionResult) recordIDString() string {
	return strconv.FormatUint(uint64(r.RecordID), 10)
}

// acceptedFiles keeps files attached to visible file fields of def.
func acceptedFiles(def schema.FormDefinition, visible map[string]any, files []UploadedFile) []UploadedFile {
	var out []UploadedFile
	for _, f := range files {
		field, ok := def.Field(f.FieldID)
		if !ok || field.Type != schema.FieldFile || !schema.IsFieldVisible(field, visible) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func parseOrigin(raw string) *uint {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return nil
	}
	origin := uint(id)
	return &origin
}

// upload stores every file concurrently. On any failure the files already
// written are removed before the error is returned.
func (s *SubmissionService) upload(ctx context.Context, ownerID uint, formType, osNumber string, at time.Time, files []UploadedFile) ([]storedFile, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if s.Blob == nil {
		return nil, errors.New("blob store not configured")
	}

	seen := make(map[string]bool, len(files))
	stored := make([]storedFile, len(files))
	for i, f := range files {
		name := utils.UniqueFilename(utils.SanitizeFilename(f.Filename), seen)
		stored[i] = storedFile{
			fieldID: f.FieldID,
			path:    utils.UploadPath(ownerID, formType, osNumber, at, name),
			name:    f.Filename,
			mime:    f.ContentType,
			size:    f.Size,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(UploadConcurrency)
	for i := range files {
		i := i
		g.Go(func() error {
			rc, err := files[i].Open()
			if err != nil {
				return fmt.Errorf("open %s: %w", files[i].Filename, err)
			}
			defer rc.Close()

			url, err := s.Blob.Store(gctx, stored[i].path, rc, files[i].Size, files[i].ContentType)
			if err != nil {
				return err
			}
			stored[i].url = url
			metrics.RecordUpload(files[i].Size)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var written []storedFile
		for _, sf := range stored {
			if sf.url != "" {
				written = append(written, sf)
			}
		}
		s.removeBlobs(written)
		return nil, err
	}
	return stored, nil
}

func (s *SubmissionService) removeBlobs(files []storedFile) {
	if len(files) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, f := range files {
		if err := s.Blob.Delete(ctx, f.path); err != nil {
			logging.WithComponent("submission").WithError(err).WithField("path", f.path).Warn("remove orphan blob")
		}
	}
}
