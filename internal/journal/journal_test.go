package journal

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/Baaaki/trail-catalog/pkg/logger"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.TrailID
	}
	return out
}

func TestJournal_RecordAfterCleanup(t *testing.T) {
	logger.Init(false)

	j, err := Open(filepath.Join(t.TempDir(), "data", "orphans.log"))
	require.NoError(t, err)
	defer j.Close()

	for _, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, j.Record(id, "permission denied"))
	}

	entries, err := j.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(entries))
	assert.Equal(t, "permission denied", entries[0].Reason)
	assert.False(t, entries[0].Timestamp.IsZero())

	require.NoError(t, j.Cleanup([]string{"t1", "t2"}))

	entries, err = j.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"t3"}, ids(entries))

	// appends must land in the rewritten file
	require.NoError(t, j.Record("t4", "busy"))
	entries, err = j.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"t3", "t4"}, ids(entries))
}

func TestJournal_SurvivesReopen(t *testing.T) {
	fs := afero.NewMemMapFs()

	j, err := OpenWithFs(fs, "/var/journal/orphans.log")
	require.NoError(t, err)
	require.NoError(t, j.Record("t1", "io error"))
	require.NoError(t, j.Close())

	j, err = OpenWithFs(fs, "/var/journal/orphans.log")
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, ids(entries))
}

func TestJournal_SkipsMalformedLines(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/j.log", []byte("garbage\n{\"trail_id\":\"t1\"}\n{}\n"), 0o644))

	j, err := OpenWithFs(fs, "/j.log")
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, ids(entries))
}

func TestJournal_ConcurrentRecords(t *testing.T) {
	j, err := OpenWithFs(afero.NewMemMapFs(), "/j.log")
	require.NoError(t, err)
	defer j.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, j.Record("t", "x"))
		}()
	}
	wg.Wait()

	entries, err := j.ReadAll()
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}
