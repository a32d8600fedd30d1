package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"foto.jpg":               "foto.jpg",
		"../../etc/passwd":       "passwd",
		`C:\Users\mg\foto 1.jpg`: "foto 1.jpg",
		"a?b#c%.png":             "a_b_c_.png",
		"":                       "file",
		"   ":                    "file",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestUniqueFilename(t *testing.T) {
	seen := map[string]bool{}
	assert.Equal(t, "a.jpg", UniqueFilename("a.jpg", seen))
	second := UniqueFilename("a.jpg", seen)
	assert.NotEqual(t, "a.jpg", second)
	assert.True(t, strings.HasSuffix(second, "-a.jpg"))
}

func TestUploadPath(t *testing.T) {
	at := time.UnixMilli(1714566600000)
	assert.Equal(t, "7/rnc/OS-42/1714566600000/a.jpg", UploadPath(7, "rnc", "OS-42", at, "a.jpg"))
	assert.Equal(t, "7/rnc/general/1714566600000/a.jpg", UploadPath(7, "rnc", "", at, "a.jpg"))
}

func TestBackupPath(t *testing.T) {
	assert.Equal(t, "backups/2024-05-01.json", BackupPath(time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)))
}
