package application

import (
	"context"
	"time"

	"github.com/linskybing/fieldreport-go/internal/domain/form"
	"github.com/linskybing/fieldreport-go/internal/logging"
	"github.com/linskybing/fieldreport-go/internal/metrics"
	"github.com/linskybing/fieldreport-go/internal/mirror"
	"github.com/sirupsen/logrus"
)

// MirrorTimeout bounds each best-effort mirror write.
var MirrorTimeout = 5 * time.Second

func mirrorReport(f *form.Form) mirror.Report {
	return mirror.Report{
		ID:                f.ID,
		OsNumber:          f.OsNumber,
		FormType:          f.FormType,
		Status:            string(f.Status),
		UserID:            f.UserID,
		OriginatingFormID: f.OriginatingFormID,
		Data:              f.Data,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

func mirrorLog(f *form.Form) *logrus.Entry {
	return logging.WithComponent("mirror").WithFields(logrus.Fields{
		"form_id":   f.ID,
		"os_number": f.OsNumber,
		"form_type": f.FormType,
	})
}

// syncMirror copies f into the document mirror. Failures are logged and
// counted but never returned: the relational record is the source of truth.
func syncMirror(ctx context.Context, m mirror.Mirror, f *form.Form, updatedBy string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), MirrorTimeout)
	defer cancel()

	summary := mirror.WorkOrderSummary{
		OsNumber:      f.OsNumber,
		LastReportAt:  f.UpdatedAt,
		LastUpdatedBy: updatedBy,
		LastFormType:  f.FormType,
		LastReportID:  f.ID,
	}
	if err := m.UpsertWorkOrder(ctx, summary); err != nil {
		mirrorLog(f).WithError(err).Warn("mirror work order upsert failed")
		metrics.RecordMirrorFailure(mirror.OpUpsertWorkOrder)
	}
	if err := m.UpsertReport(ctx, mirrorReport(f)); err != nil {
		mirrorLog(f).WithError(err).Warn("mirror report upsert failed")
		metrics.RecordMirrorFailure(mirror.OpUpsertReport)
	}
}

func unmirror(ctx context.Context, m mirror.Mirror, f *form.Form) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), MirrorTimeout)
	defer cancel()

	if err := m.DeleteReport(ctx, f.OsNumber, f.ID); err != nil {
		mirrorLog(f).WithError(err).Warn("mirror report delete failed")
		metrics.RecordMirrorFailure(mirror.OpDeleteReport)
	}
}
