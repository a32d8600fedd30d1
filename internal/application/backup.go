package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/linskybing/fieldreport-go/internal/domain/form"
	"github.com/linskybing/fieldreport-go/internal/repository"
	"github.com/linskybing/fieldreport-go/internal/storage"
	"github.com/linskybing/fieldreport-go/pkg/utils"
)

type BackupService struct {
	Repos *repository.Repos
	Blob  storage.BlobStore
	Now   func() time.Time
}

func NewBackupService(repos *repository.Repos, blob storage.BlobStore) *BackupService {
	return &BackupService{Repos: repos, Blob: blob, Now: time.Now}
}

type backupDocument struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Count       int         `json:"count"`
	Forms       []form.Form `json:"forms"`
}

// Run dumps every form with its photos into backups/<date>.json and
// returns the object path. A second run on the same day overwrites it.
func (s *BackupService) Run(ctx context.Context) (string, error) {
	forms, err := s.Repos.Form.ListAll()
	if err != nil {
		return "", fmt.Errorf("load forms: %w", err)
	}
	if forms == nil {
		forms = []form.Form{}
	}

	now := s.Now().UTC()
	body, err := json.MarshalIndent(backupDocument{GeneratedAt: now, Count: len(forms), Forms: forms}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}

	path := utils.BackupPath(now)
	if _, err := s.Blob.Store(ctx, path, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		return "", fmt.Errorf("store backup: %w", err)
	}
	return path, nil
}
