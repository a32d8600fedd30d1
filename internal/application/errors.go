package application

import "errors"

var (
	ErrFormNotFound      = errors.New("form not found")
	ErrUnknownFormType   = errors.New("form does not exist")
	ErrPhotoNotFound     = errors.New("photo not found")
	ErrForbidden         = errors.New("permission denied")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotEditable       = errors.New("only drafts can be edited")
	ErrUploadFailed      = errors.New("file upload failed")
	ErrInvalidQuery      = errors.New("invalid query")
)
