// Package mirror keeps a denormalized copy of submissions in a document
// store, grouped by work order. Writes are idempotent upserts and the copy
// is never read back as a source of truth.
package mirror

import (
	"context"
	"time"
)

type WorkOrderSummary struct {
	OsNumber      string
	LastReportAt  time.Time
	LastUpdatedBy string
	LastFormType  string
	LastReportID  uint
}

type Report struct {
	ID                uint
	OsNumber          string
	FormType          string
	Status            string
	UserID            uint
	OriginatingFormID *uint
	Data              map[string]any
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Mirror interface {
	UpsertWorkOrder(ctx context.Context, s WorkOrderSummary) error
	UpsertReport(ctx context.Context, r Report) error
	DeleteReport(ctx context.Context, osNumber string, reportID uint) error
	Close(ctx context.Context) error
}

// Operation names used in logs and metrics.
const (
	OpUpsertWorkOrder = "upsert_work_order"
	OpUpsertReport    = "upsert_report"
	OpDeleteReport    = "delete_report"
)

type Noop struct{}

func (Noop) UpsertWorkOrder(context.Context, WorkOrderSummary) error { return nil }
func (Noop) UpsertReport(context.Context, Report) error               { return nil }
func (Noop) DeleteReport(context.Context, string, uint) error         { return nil }
func (Noop) Close(context.Context) error                              { return nil }
