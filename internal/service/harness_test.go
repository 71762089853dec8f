package service_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Baaaki/trail-catalog/internal/assets"
	"github.com/Baaaki/trail-catalog/internal/cache"
	"github.com/Baaaki/trail-catalog/internal/journal"
	"github.com/Baaaki/trail-catalog/internal/repository"
	"github.com/Baaaki/trail-catalog/internal/service"
	"github.com/Baaaki/trail-catalog/internal/testutil"
	"github.com/Baaaki/trail-catalog/pkg/logger"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// stickyFs refuses to remove the directories listed in stuck.
type stickyFs struct {
	afero.Fs
	stuck map[string]bool
}

func (f *stickyFs) RemoveAll(name string) error {
	if f.stuck[strings.Trim(name, "/")] {
		return &os.PathError{Op: "removeall", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.RemoveAll(name)
}

// serviceEnv wires every service against one in-memory database, an
// in-memory asset filesystem and an in-memory journal.
type serviceEnv struct {
	testDB  *testutil.TestDatabase
	fs      *stickyFs
	store   *assets.Store
	journal *journal.Journal

	users     *repository.UserRepository
	trailRepo *repository.TrailRepository

	auth      *service.AuthService
	userSvc   *service.UserService
	trails    *service.TrailService
	feedbacks *service.FeedbackService
	reports   *service.ReportService
}

func newServiceEnv(t *testing.T, trailCache cache.TrailCache, verifier service.IdentityVerifier) *serviceEnv {
	logger.Init(false)

	testDB := testutil.SetupTestDatabase(t)
	db := testDB.DB

	fs := &stickyFs{Fs: afero.NewMemMapFs(), stuck: map[string]bool{}}
	j, err := journal.OpenWithFs(fs.Fs, "data/orphans.log")
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	trailRepo := repository.NewTrailRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	reportRepo := repository.NewReportRepository(db)

	refs := service.NewReferenceChecker(users, trailRepo)
	cascader := service.NewCascader(users, feedbackRepo, reportRepo)
	store := assets.NewStoreWithFs(afero.NewBasePathFs(fs, "/uploads"))

	return &serviceEnv{
		testDB:    testDB,
		fs:        fs,
		store:     store,
		journal:   j,
		users:     users,
		trailRepo: trailRepo,
		auth:      service.NewAuthService(users, verifier, testutil.TestJWTSecret, time.Hour),
		userSvc:   service.NewUserService(db, users, trailRepo, cascader),
		trails:    service.NewTrailService(db, trailRepo, refs, cascader, store, j, trailCache),
		feedbacks: service.NewFeedbackService(feedbackRepo, users, trailRepo, refs),
		reports:   service.NewReportService(reportRepo, users, trailRepo, refs),
	}
}

func (e *serviceEnv) close(t *testing.T) {
	_ = e.journal.Close()
	e.testDB.Teardown(t)
}

func (e *serviceEnv) reset(t *testing.T) {
	testutil.CleanDatabase(t, e.testDB.DB)
	e.fs.stuck = map[string]bool{}
	_ = e.fs.Fs.RemoveAll("/uploads")

	entries, err := e.journal.ReadAll()
	require.NoError(t, err)
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.TrailID)
	}
	require.NoError(t, e.journal.Cleanup(ids))
}

// stick makes removal of the trail's asset directory fail.
func (e *serviceEnv) stick(trailID string) {
	e.fs.stuck["uploads/"+trailID] = true
}

func gpxUpload() *service.Upload {
	return &service.Upload{Filename: "route.gpx", Body: strings.NewReader(testutil.SampleGPX)}
}

func kindOf(err error) service.Kind {
	return service.KindOf(err)
}
