package form

import "time"

type UpdateFormDTO struct {
	Data map[string]any `json:"data" binding:"required"`
}

type ListFilter struct {
	FormType string
	OsNumber string
	Status   FormStatus
	UserIDs  []uint
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

type ListQuery struct {
	FormType string `form:"form_type"`
	OsNumber string `form:"os_number"`
	Status   string `form:"status" binding:"omitempty,oneof=DRAFT SUBMITTED APPROVED"`
	UserID   string `form:"user_id"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

type FormPage struct {
	Items    []Form `json:"items"`
	Total    int64  `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}
