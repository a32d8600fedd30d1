package utils

import (
	"encoding/json"

	"github.com/linskybing/fieldreport-go/internal/domain/audit"
	"github.com/linskybing/fieldreport-go/internal/repository"
	"github.com/sirupsen/logrus"
)

// AuditEntry describes one mutation. Before and After are marshalled to
// JSON; nil leaves the column empty.
type AuditEntry struct {
	UserID       uint
	IP           string
	UserAgent    string
	Action       string
	ResourceType string
	ResourceID   string
	Before       any
	After        any
	Description  string
}

var LogAudit = func(entry AuditEntry, repos repository.AuditRepo) error {
	var oldData, newData []byte
	var err error

	if entry.Before != nil {
		oldData, err = json.Marshal(entry.Before)
		if err != nil {
			logrus.WithError(err).Warn("audit marshal old data")
		}
	}
	if entry.After != nil {
		newData, err = json.Marshal(entry.After)
		if err != nil {
			logrus.WithError(err).Warn("audit marshal new data")
		}
	}

	auditLog := &audit.AuditLog{
		UserID:       entry.UserID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		OldData:      oldData,
		NewData:      newData,
		IPAddress:    entry.IP,
		UserAgent:    entry.UserAgent,
		Description:  entry.Description,
	}

	return repos.CreateAuditLog(auditLog)
}
