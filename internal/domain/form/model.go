package form

import (
	"time"

	"github.com/linskybing/fieldreport-go/internal/domain/user"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FormStatus string

const (
	FormStatusDraft     FormStatus = "DRAFT"
	FormStatusSubmitted FormStatus = "SUBMITTED"
	FormStatusApproved  FormStatus = "APPROVED"
)

// CanTransitionTo reports whether next directly follows s. The lifecycle is
// linear: DRAFT -> SUBMITTED -> APPROVED.
func (s FormStatus) CanTransitionTo(next FormStatus) bool {
	switch s {
	case FormStatusDraft:
		return next == FormStatusSubmitted
	case FormStatusSubmitted:
		return next == FormStatusApproved
	}
	return false
}

// Form is one submitted report. Data is schema-free at this layer; field
// typing is enforced by the schema package before anything is written.
type Form struct {
	gorm.Model
	FormType          string            `json:"form_type" gorm:"size:100;not null;index"`
	OsNumber          string            `json:"os_number" gorm:"size:100;not null;index"`
	Status            FormStatus        `json:"status" gorm:"size:20;not null;default:'DRAFT'"`
	Data              datatypes.JSONMap `json:"data"`
	UserID            uint              `json:"user_id" gorm:"index"`
	OriginatingFormID *uint             `json:"originating_form_id"`
	SubmittedAt       *time.Time        `json:"submitted_at"`
	ApprovedAt        *time.Time        `json:"approved_at"`
	ApprovedBy        *uint             `json:"approved_by"`
	User              user.User         `json:"user" gorm:"foreignKey:UserID"`
	Photos            []Photo           `json:"photos" gorm:"foreignKey:FormID"`
}

// Photo is a file stored in the blob store and attached to a form field.
type Photo struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	FormID       uint      `json:"form_id" gorm:"index"`
	FieldID      string    `json:"field_id" gorm:"size:100"`
	URL          string    `json:"url" gorm:"type:text"`
	ObjectPath   string    `json:"object_path" gorm:"type:text"`
	OriginalName string    `json:"original_name" gorm:"size:255"`
	MimeType     string    `json:"mime_type" gorm:"size:100"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}

// Descriptor is the entry written into Form.Data for every stored file.
func (p Photo) Descriptor() map[string]any {
	return map[string]any{
		"name":     p.OriginalName,
		"url":      p.URL,
		"mimeType": p.MimeType,
		"size":     p.Size,
	}
}
