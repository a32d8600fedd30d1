package utils

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SanitizeFilename keeps the base name of an uploaded file and drops
// characters that would break an object path.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == '/', r == '?', r == '#', r == '%':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	return name
}

// UniqueFilename prefixes name with a short random id when it was already
// used in the same upload batch.
func UniqueFilename(name string, seen map[string]bool) string {
	if !seen[name] {
		seen[name] = true
		return name
	}
	unique := uuid.New().String()[:8] + "-" + name
	seen[unique] = true
	return unique
}

// UploadPath is <owner>/<formType>/<osNumber|general>/<unix-millis>/<filename>.
func UploadPath(ownerID uint, formType, osNumber string, at time.Time, filename string) string {
	segment := SanitizeFilename(osNumber)
	if strings.TrimSpace(osNumber) == "" {
		segment = "general"
	}
	return fmt.Sprintf("%d/%s/%s/%d/%s", ownerID, formType, segment, at.UnixMilli(), filename)
}

// BackupPath is backups/<yyyy-mm-dd>.json for the day of at.
func BackupPath(at time.Time) string {
	return "backups/" + at.Format("2006-01-02") + ".json"
}
