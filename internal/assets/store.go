// Package assets stores the GPX track of each trail on disk, one directory
// per trail holding a single canonical file.
package assets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	// TrackExt is the only extension accepted for a trail asset.
	TrackExt  = ".gpx"
	trackBase = "track"
)

var (
	ErrUnsupportedMedia = errors.New("only .gpx files are accepted")
	ErrInvalidKey       = errors.New("invalid trail identifier")
	ErrNotFound         = errors.New("GPX file not found")
)

// Store maps a trail identifier to <base>/<id>/track.gpx. The identifier is
// the only key; callers never supply path segments. Writers to the same
// trail are not serialized and the last Put wins.
type Store struct {
	fs afero.Fs
}

// NewStore roots the store at baseDir on the OS filesystem, creating it when
// missing.
func NewStore(baseDir string) (*Store, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return NewStoreWithFs(afero.NewBasePathFs(afero.NewOsFs(), abs)), nil
}

// NewStoreWithFs uses fs as the store root.
func NewStoreWithFs(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// PublicPath is the URL path the static file server exposes the track under.
func PublicPath(trailID string) string {
	return "/uploads/" + trailID + "/" + trackBase + TrackExt
}

// AcceptsFile reports whether an upload named name may be stored as a track.
func AcceptsFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), TrackExt)
}

// validKey admits only the canonical lowercase hyphenated UUID form, so a
// trail never maps to more than one directory.
func validKey(trailID string) error {
	parsed, err := uuid.Parse(trailID)
	if err != nil || parsed.String() != trailID {
		return ErrInvalidKey
	}
	return nil
}

// Put writes r as the trail's track, replacing whatever was stored before.
// ext is the extension of the uploaded file name and must be .gpx.
func (s *Store) Put(trailID string, r io.Reader, ext string) (int64, error) {
	if !strings.EqualFold(ext, TrackExt) {
		return 0, ErrUnsupportedMedia
	}
	if err := validKey(trailID); err != nil {
		return 0, err
	}

	if err := s.fs.MkdirAll(trailID, 0o755); err != nil {
		return 0, fmt.Errorf("create trail dir: %w", err)
	}

	tmpName := path.Join(trailID, ".upload-"+uuid.NewString())
	tmp, err := s.fs.Create(tmpName)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	n, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = s.fs.Remove(tmpName)
		if copyErr != nil {
			return 0, fmt.Errorf("write track: %w", copyErr)
		}
		return 0, fmt.Errorf("close track: %w", closeErr)
	}

	existing, err := s.tracks(trailID)
	if err != nil {
		_ = s.fs.Remove(tmpName)
		return 0, err
	}
	for _, name := range existing {
		if err := s.fs.Remove(name); err != nil && !os.IsNotExist(err) {
			_ = s.fs.Remove(tmpName)
			return 0, fmt.Errorf("remove previous track: %w", err)
		}
	}

	if err := s.fs.Rename(tmpName, path.Join(trailID, trackBase+TrackExt)); err != nil {
		_ = s.fs.Remove(tmpName)
		return 0, fmt.Errorf("store track: %w", err)
	}

	return n, nil
}

// Open returns the stored track for streaming. The caller closes the file.
func (s *Store) Open(trailID string) (afero.File, os.FileInfo, error) {
	if err := validKey(trailID); err != nil {
		return nil, nil, ErrNotFound
	}

	matches, err := s.tracks(trailID)
	if err != nil {
		return nil, nil, err
	}
	if len(matches) == 0 {
		return nil, nil, ErrNotFound
	}

	f, err := s.fs.Open(matches[0])
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

// Exists reports whether the trail has a stored track.
func (s *Store) Exists(trailID string) (bool, error) {
	if err := validKey(trailID); err != nil {
		return false, nil
	}
	matches, err := s.tracks(trailID)
	return len(matches) > 0, err
}

// Delete removes the trail's whole directory. Deleting a missing directory
// is not an error.
func (s *Store) Delete(trailID string) error {
	if err := validKey(trailID); err != nil {
		return err
	}
	if err := s.fs.RemoveAll(trailID); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove trail dir: %w", err)
	}
	return nil
}

// Keys lists the trail identifiers that currently own a directory.
func (s *Store) Keys() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, ".")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() && validKey(e.Name()) == nil {
			keys = append(keys, e.Name())
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) tracks(trailID string) ([]string, error) {
	matches, err := afero.Glob(s.fs, path.Join(trailID, trackBase+".*"))
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	return matches, nil
}
