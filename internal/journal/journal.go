// Package journal keeps an append-only record of trail asset directories
// whose removal failed after the trail record was already deleted, so that a
// later sweep can retry them.
package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Baaaki/trail-catalog/pkg/logger"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Entry is one orphaned asset directory.
type Entry struct {
	TrailID   string    `json:"trail_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Journal is safe for concurrent use within one process.
type Journal struct {
	fs       afero.Fs
	filePath string
	file     afero.File
	mu       sync.Mutex
}

// Open opens (or creates) the journal file on the OS filesystem.
func Open(filePath string) (*Journal, error) {
	return OpenWithFs(afero.NewOsFs(), filePath)
}

func OpenWithFs(fs afero.Fs, filePath string) (*Journal, error) {
	if err := fs.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, err
	}

	file, err := fs.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	return &Journal{fs: fs, filePath: filePath, file: file}, nil
}

// Record appends an entry and syncs it to disk.
func (j *Journal) Record(trailID, reason string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := json.Marshal(Entry{TrailID: trailID, Reason: reason, Timestamp: time.Now().UTC()})
	if err != nil {
		return err
	}

	if _, err := j.file.Write(append(data, '\n')); err != nil {
		logger.Log.Error("Journal: failed to append entry",
			zap.String("trail_id", trailID),
			zap.Error(err),
		)
		return err
	}
	if err := j.file.Sync(); err != nil {
		logger.Log.Error("Journal: failed to sync",
			zap.String("trail_id", trailID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Debug("Journal: orphaned asset recorded", zap.String("trail_id", trailID))
	return nil
}

// ReadAll returns every recorded entry in append order. Malformed lines are
// skipped.
func (j *Journal) ReadAll() ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.readAllLocked()
}

// Cleanup drops every entry whose trail is in resolved and rewrites the file.
func (j *Journal) Cleanup(resolved []string) error {
	if len(resolved) == 0 {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.readAllLocked()
	if err != nil {
		return err
	}

	done := make(map[string]bool, len(resolved))
	for _, id := range resolved {
		done[id] = true
	}

	tmpPath := j.filePath + ".tmp"
	tmp, err := j.fs.Create(tmpPath)
	if err != nil {
		return err
	}
	remaining := 0
	for _, e := range entries {
		if done[e.TrailID] {
			continue
		}
		data, _ := json.Marshal(e)
		if _, err := tmp.Write(append(data, '\n')); err != nil {
			tmp.Close()
			return err
		}
		remaining++
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := j.file.Close(); err != nil {
		return err
	}
	if err := j.fs.Rename(tmpPath, j.filePath); err != nil {
		return err
	}

	// the append handle must point at the rewritten file
	file, err := j.fs.OpenFile(j.filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		logger.Log.Error("Journal: failed to reopen after cleanup", zap.Error(err))
		return err
	}
	j.file = file

	logger.Log.Info("Journal: cleanup completed",
		zap.Int("removed", len(entries)-remaining),
		zap.Int("remaining", remaining),
	)
	return nil
}

func (j *Journal) readAllLocked() ([]Entry, error) {
	f, err := j.fs.Open(j.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	defer f.Close()

	entries := []Entry{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil || e.TrailID == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
