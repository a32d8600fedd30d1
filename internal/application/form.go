package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/linskybing/fieldreport-go/internal/domain/audit"
	"github.com/linskybing/fieldreport-go/internal/domain/form"
	"github.com/linskybing/fieldreport-go/internal/domain/schema"
	"github.com/linskybing/fieldreport-go/internal/domain/user"
	"github.com/linskybing/fieldreport-go/internal/logging"
	"github.com/linskybing/fieldreport-go/internal/mirror"
	"github.com/linskybing/fieldreport-go/internal/repository"
	"github.com/linskybing/fieldreport-go/internal/storage"
	"github.com/linskybing/fieldreport-go/pkg/utils"
	"gorm.io/gorm"
)

type FormService struct {
	Repos    *repository.Repos
	Registry *schema.Registry
	Blob     storage.BlobStore
	Mirror   mirror.Mirror
	Now      func() time.Time
}

func NewFormService(repos *repository.Repos, registry *schema.Registry, blob storage.BlobStore, m mirror.Mirror) *FormService {
	return &FormService{
		Repos:    repos,
		Registry: registry,
		Blob:     blob,
		Mirror:   m,
		Now:      time.Now,
	}
}

// TransitionResult carries the updated form and, when a draft was just
// submitted, the next form its triggers point at.
type TransitionResult struct {
	Form *form.Form         `json:"form"`
	Next *schema.Navigation `json:"next,omitempty"`
	Done bool               `json:"done"`
}

func (s *FormService) GetForm(id uint) (*form.Form, error) {
	f, err := s.Repos.Form.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	return f, nil
}

// ResolveUserIDs turns a comma separated list of user identifiers into
// internal ids. Each identifier may be a numeric id, an exact username or a
// handle matched as "<handle>@" against usernames and emails. Identifiers
// matching nobody contribute nothing.
func (s *FormService) ResolveUserIDs(raw string) ([]uint, error) {
	ids := []uint{}
	seen := map[uint]bool{}
	add := func(id uint) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, ident := range strings.Split(raw, ",") {
		ident = strings.TrimSpace(ident)
		if ident == "" {
			continue
		}
		if n, err := strconv.ParseUint(ident, 10, 64); err == nil {
			add(uint(n))
			continue
		}

		u, err := s.Repos.User.GetUserByUsername(ident)
		if err == nil {
			add(u.UID)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		users, err := s.Repos.User.FindByHandle(strings.TrimSuffix(ident, "@"))
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			add(u.UID)
		}
	}
	return ids, nil
}

func parseDateParam(raw string, endOfDay bool) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, ok := schema.ParseDate(raw)
	if !ok {
		return nil, fmt.Errorf("%w: invalid date %q", ErrInvalidQuery, raw)
	}
	if endOfDay && len(strings.TrimSpace(raw)) == len("2006-01-02") {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// ListForms applies q. A user filter that resolves to nobody yields an
// empty page rather than an error.
func (s *FormService) ListForms(q form.ListQuery) (*form.FormPage, error) {
	filter := form.ListFilter{
		FormType: q.FormType,
		OsNumber: q.OsNumber,
		Status:   form.FormStatus(q.Status),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = repository.DefaultPageSize
	}
	if filter.PageSize > repository.MaxPageSize {
		filter.PageSize = repository.MaxPageSize
	}

	var err error
	if filter.From, err = parseDateParam(q.From, false); err != nil {
		return nil, err
	}
	if filter.To, err = parseDateParam(q.To, true); err != nil {
		return nil, err
	}

	empty := &form.FormPage{Items: []form.Form{}, Page: filter.Page, PageSize: filter.PageSize}
	if strings.TrimSpace(q.UserID) != "" {
		ids, err := s.ResolveUserIDs(q.UserID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return empty, nil
		}
		filter.UserIDs = ids
	}

	items, total, err := s.Repos.Form.List(filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []form.Form{}
	}
	return &form.FormPage{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// canManage reports whether actor may edit or delete f.
func canManage(actor Actor, f *form.Form) bool {
	return actor.owns(f.UserID) || actor.IsAdmin()
}

func formResourceID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// UpdateForm replaces the data of a draft owned by actor. File fields left
// out of data keep their stored files.
func (s *FormService) UpdateForm(ctx context.Context, actor Actor, id uint, data map[string]any) (*form.Form, error) {
	f, err := s.GetForm(id)
	if err != nil {
		return nil, err
	}
	if !actor.owns(f.UserID) {
		return nil, ErrForbidden
	}
	if f.Status != form.FormStatusDraft {
		return nil, ErrNotEditable
	}
	def, ok := s.Registry.Get(f.FormType)
	if !ok {
		return nil, ErrUnknownFormType
	}

	values := make(map[string]any, len(data))
	for k, v := range data {
		values[k] = v
	}
	for _, field := range def.Fields {
		if field.Type != schema.FieldFile {
			continue
		}
		if _, present := values[field.ID]; !present {
			if stored, ok := f.Data[field.ID]; ok {
				values[field.ID] = stored
			}
		}
	}

	normalized, err := schema.Normalize(def, values, nil)
	if err != nil {
		return nil, err
	}
	prevOs := f.OsNumber
	if os := schema.ValueString(normalized[def.OsFieldID]); os != "" {
		f.OsNumber = os
	}

	before := f.Data
	f.Data = normalized
	err = s.Repos.ExecTx(func(r *repository.Repos) error {
		if err := r.Form.Update(f); err != nil {
			return err
		}
		return utils.LogAudit(utils.AuditEntry{
			UserID:       actor.UserID,
			IP:           actor.IP,
			UserAgent:    actor.UserAgent,
			Action:       audit.ActionUpdate,
			ResourceType: audit.ResourceForm,
			ResourceID:   formResourceID(f.ID),
			Before:       before,
			After:        f.Data,
			Description:  "draft updated",
		}, r.Audit)
	})
	if err != nil {
		return nil, err
	}

	// Mirror reports are keyed by work order, so a moved draft leaves its
	// old copy behind unless it is removed here.
	if prevOs != f.OsNumber {
		stale := *f
		stale.OsNumber = prevOs
		unmirror(ctx, s.Mirror, &stale)
	}
	syncMirror(ctx, s.Mirror, f, actor.Username)
	return f, nil
}

// DeleteForm removes f, its photos and their blobs. Only the owner or an
// administrator may delete.
func (s *FormService) DeleteForm(ctx context.Context, actor Actor, id uint) error {
	f, err := s.GetForm(id)
	if err != nil {
		return err
	}
	if !canManage(actor, f) {
		return ErrForbidden
	}

	err = s.Repos.ExecTx(func(r *repository.Repos) error {
		if err := r.Photo.DeleteByForm(f.ID); err != nil {
			return err
		}
		if err := r.Form.Delete(f.ID); err != nil {
			return err
		}
		return utils.LogAudit(utils.AuditEntry{
			UserID:       actor.UserID,
			IP:           actor.IP,
			UserAgent:    actor.UserAgent,
			Action:       audit.ActionDelete,
			ResourceType: audit.ResourceForm,
			ResourceID:   formResourceID(f.ID),
			Before:       f,
			Description:  fmt.Sprintf("deleted %s for %s", f.FormType, f.OsNumber),
		}, r.Audit)
	})
	if err != nil {
		return err
	}

	s.deleteBlobs(ctx, f.Photos)
	unmirror(ctx, s.Mirror, f)
	return nil
}

// SubmitForm moves a draft to SUBMITTED and evaluates its triggers as a
// fresh chain.
func (s *FormService) SubmitForm(ctx context.Context, actor Actor, id uint) (*TransitionResult, error) {
	f, err := s.GetForm(id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, f) {
		return nil, ErrForbidden
	}
	if !f.Status.CanTransitionTo(form.FormStatusSubmitted) {
		return nil, ErrInvalidTransition
	}

	now := s.Now()
	f.SubmittedAt = &now
	if err := s.transition(ctx, actor, f, form.FormStatusSubmitted); err != nil {
		return nil, err
	}

	res := &TransitionResult{Form: f}
	if def, ok := s.Registry.Get(f.FormType); ok {
		inbound := map[string]string{}
		if f.OriginatingFormID != nil {
			inbound[schema.ParamOriginatingFormID] = formResourceID(*f.OriginatingFormID)
		}
		res.Next = schema.EvaluateTriggers(def, f.Data, schema.TriggerContext{
			RecordID: formResourceID(f.ID),
			OsNumber: f.OsNumber,
			Inbound:  inbound,
		})
	}
	res.Done = res.Next == nil
	return res, nil
}

// ApproveForm moves a submitted form to APPROVED. Supervisors and
// administrators may approve.
func (s *FormService) ApproveForm(ctx context.Context, actor Actor, id uint) (*form.Form, error) {
	if !actor.Role.CanApprove() {
		return nil, ErrForbidden
	}
	f, err := s.GetForm(id)
	if err != nil {
		return nil, err
	}
	if !f.Status.CanTransitionTo(form.FormStatusApproved) {
		return nil, ErrInvalidTransition
	}

	now := s.Now()
	approver := actor.UserID
	f.ApprovedAt = &now
	f.ApprovedBy = &approver
	if err := s.transition(ctx, actor, f, form.FormStatusApproved); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FormService) transition(ctx context.Context, actor Actor, f *form.Form, next form.FormStatus) error {
	prev := f.Status
	f.Status = next
	err := s.Repos.ExecTx(func(r *repository.Repos) error {
		if err := r.Form.Update(f); err != nil {
			return err
		}
		return utils.LogAudit(utils.AuditEntry{
			UserID:       actor.UserID,
			IP:           actor.IP,
			UserAgent:    actor.UserAgent,
			Action:       audit.ActionStatus,
			ResourceType: audit.ResourceForm,
			ResourceID:   formResourceID(f.ID),
			Before:       map[string]any{"status": prev},
			After:        map[string]any{"status": next},
			Description:  fmt.Sprintf("status %s -> %s", prev, next),
		}, r.Audit)
	})
	if err != nil {
		f.Status = prev
		return err
	}
	syncMirror(ctx, s.Mirror, f, actor.Username)
	return nil
}

// DeletePhoto removes one stored file and prunes its descriptor out of the
// owning form's data so no dangling reference is left behind.
func (s *FormService) DeletePhoto(ctx context.Context, actor Actor, photoID uint) (*form.Form, error) {
	photo, err := s.Repos.Photo.GetByID(photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	f, err := s.GetForm(photo.FormID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, f) {
		return nil, ErrForbidden
	}

	before := copyData(f.Data)
	f.Data = pruneFileURL(f.Data, photo.URL)

	err = s.Repos.ExecTx(func(r *repository.Repos) error {
		if err := r.Photo.Delete(photo.ID); err != nil {
			return err
		}
		if err := r.Form.Update(f); err != nil {
			return err
		}
		if err := utils.LogAudit(utils.AuditEntry{
			UserID:       actor.UserID,
			IP:           actor.IP,
			UserAgent:    actor.UserAgent,
			Action:       audit.ActionDelete,
			ResourceType: audit.ResourcePhoto,
			ResourceID:   formResourceID(photo.ID),
			Before:       photo,
			Description:  "photo deleted: " + photo.OriginalName,
		}, r.Audit); err != nil {
			return err
		}
		return utils.LogAudit(utils.AuditEntry{
			UserID:       actor.UserID,
			IP:           actor.IP,
			UserAgent:    actor.UserAgent,
			Action:       audit.ActionUpdate,
			ResourceType: audit.ResourceForm,
			ResourceID:   formResourceID(f.ID),
			Before:       before,
			After:        f.Data,
			Description:  "file reference removed from data",
		}, r.Audit)
	})
	if err != nil {
		f.Data = before
		return nil, err
	}

	s.deleteBlobs(ctx, []form.Photo{*photo})
	syncMirror(ctx, s.Mirror, f, actor.Username)

	remaining := f.Photos[:0]
	for _, p := range f.Photos {
		if p.ID != photo.ID {
			remaining = append(remaining, p)
		}
	}
	f.Photos = remaining
	return f, nil
}

func (s *FormService) deleteBlobs(ctx context.Context, photos []form.Photo) {
	if s.Blob == nil {
		return
	}
	for _, p := range photos {
		if p.ObjectPath == "" {
			continue
		}
		if err := s.Blob.Delete(context.WithoutCancel(ctx), p.ObjectPath); err != nil {
			logging.WithComponent("forms").WithError(err).WithField("path", p.ObjectPath).Warn("delete blob")
		}
	}
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

// pruneFileURL drops every file descriptor whose url equals url. A file
// list left empty is removed, matching how submissions omit empty lists.
func pruneFileURL(data map[string]any, url string) map[string]any {
	out := copyData(data)
	for key, raw := range data {
		files := schema.FileDescriptors(raw)
		if len(files) == 0 {
			continue
		}
		kept := make([]map[string]any, 0, len(files))
		for _, d := range files {
			if u, _ := d["url"].(string); u != url {
				kept = append(kept, d)
			}
		}
		if len(kept) == len(files) {
			continue
		}
		if len(kept) == 0 {
			delete(out, key)
		} else {
			out[key] = kept
		}
	}
	return out
}

// displayName resolves the name shown for a form author.
func displayName(u user.User) string {
	if u.UID == 0 {
		return ""
	}
	return u.DisplayName()
}
