package media

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/olivier-w/climpd/internal/track"
)

// Extractor reads track properties for a path.
type Extractor func(ctx context.Context, path string) (track.Properties, error)

// ListPlayable walks dir and returns every supported media file below it,
// sorted case-insensitively. Hidden files and directories are skipped.
func ListPlayable(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(err, "reading library")
	}
	if !info.IsDir() {
		return nil, errors.Newf("%s is not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() && path != dir {
				return fs.SkipDir
			}
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsSupportedExt(filepath.Ext(path)) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", dir)
	}

	sortPaths(files)
	return files, nil
}

// Scan lists the playable files under dir and attaches properties to each.
// Extraction failures leave a track with empty properties. progress, when
// set, is called after every file.
func Scan(ctx context.Context, dir string, extract Extractor, progress func(done, total int)) ([]track.Track, error) {
	files, err := ListPlayable(dir)
	if err != nil {
		return nil, err
	}

	tracks := make([]track.Track, 0, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return tracks, errors.Wrap(err, "scan cancelled")
		}
		t := track.Track{Path: f}
		if extract != nil {
			if props, err := extract(ctx, f); err == nil {
				t.Properties = props
			}
		}
		tracks = append(tracks, t)
		if progress != nil {
			progress(i+1, len(files))
		}
	}
	return tracks, nil
}

// Siblings returns the supported media files in the same directory as path,
// sorted case-insensitively, along with the index of path in that list.
// Returns nil if fewer than 2 files are found.
func Siblings(path string) ([]string, int) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, 0
	}
	dir := filepath.Dir(absPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsSupportedExt(filepath.Ext(e.Name())) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) < 2 {
		return nil, 0
	}

	sortPaths(files)
	start := 0
	for i, f := range files {
		if f == absPath {
			start = i
			break
		}
	}
	return files, start
}

func sortPaths(files []string) {
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i]) < strings.ToLower(files[j])
	})
}
