package application

import (
	"io"
	"strings"
	"testing"

	"github.com/linskybing/fieldreport-go/internal/domain/schema"
	"github.com/linskybing/fieldreport-go/internal/domain/user"
	"github.com/linskybing/fieldreport-go/internal/mirror"
	"github.com/linskybing/fieldreport-go/internal/repository"
	"github.com/linskybing/fieldreport-go/internal/storage"
	"github.com/linskybing/fieldreport-go/internal/testutils"
	"gorm.io/gorm"
)

type testEnv struct {
	db     *gorm.DB
	repos  *repository.Repos
	blob   *storage.MemoryStore
	mirror *mirror.Memory
	svc    *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gormDB := testutils.NewTestDB(t)
	repos := repository.New(gormDB)
	blob := storage.NewMemoryStore("http://files.test")
	m := mirror.NewMemory()
	return &testEnv{
		db:     gormDB,
		repos:  repos,
		blob:   blob,
		mirror: m,
		svc:    New(repos, schema.Default(), blob, m),
	}
}

func (e *testEnv) actor(t *testing.T, username string, role user.Role) Actor {
	t.Helper()
	u := testutils.CreateUser(t, e.db, username, role)
	return Actor{UserID: u.UID, Username: u.Username, Role: u.Role, IP: "10.0.0.1", UserAgent: "test"}
}

func textFile(fieldID, name, body string) UploadedFile {
	return UploadedFile{
		FieldID:     fieldID,
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func repositoryParams() repository.AuditQueryParams {
	return repository.AuditQueryParams{Limit: 100}
}
