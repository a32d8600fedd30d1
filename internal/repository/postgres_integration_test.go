//go:build integration

package repository_test

import (
	"testing"

	"github.com/linskybing/fieldreport-go/internal/testutils"
)

func TestRepositories_Postgres(t *testing.T) {
	exerciseRepos(t, testutils.NewPostgresDB(t))
}
