package media

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// ParseLocalPlaylist parses a local .m3u/.m3u8/.pls file into local paths.
// Relative entries are resolved against the playlist file directory.
// Remote entries are dropped; only local files can be played.
func ParseLocalPlaylist(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsPlaylistExt(ext) {
		return nil, errors.Newf("unsupported playlist format %s", ext)
	}

	absPlaylistPath, err := filepath.Abs(path)
	if err != nil {
		absPlaylistPath = path
	}

	data, err := os.ReadFile(absPlaylistPath)
	if err != nil {
		return nil, errors.Wrap(err, "reading playlist")
	}
	if !utf8.Valid(data) {
		return nil, errors.New("playlist is not valid UTF-8")
	}

	baseDir := filepath.Dir(absPlaylistPath)
	scanner := bufio.NewScanner(strings.NewReader(strings.TrimPrefix(string(data), "\uFEFF")))

	switch ext {
	case ".pls":
		return parsePLS(scanner, baseDir), nil
	default:
		return parseM3U(scanner, baseDir), nil
	}
}

// FilterPlayableLocalPaths keeps only existing, non-directory, supported media
// files and reports how many entries were dropped.
func FilterPlayableLocalPaths(paths []string) ([]string, int) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		if !IsSupportedExt(filepath.Ext(p)) {
			continue
		}
		abs, err := filepath.Abs(p)
		if err == nil {
			p = abs
		}
		out = append(out, p)
	}
	return out, len(paths) - len(out)
}

// ExpandPaths turns command-line style arguments into playable files:
// playlists are expanded in place, everything else is kept as given.
func ExpandPaths(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if !IsPlaylistExt(filepath.Ext(a)) {
			out = append(out, a)
			continue
		}
		entries, err := ParseLocalPlaylist(a)
		if err != nil {
			continue
		}
		playable, _ := FilterPlayableLocalPaths(entries)
		out = append(out, playable...)
	}
	return out
}

func parseM3U(scanner *bufio.Scanner, baseDir string) []string {
	entries := make([]string, 0)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if p, ok := resolvePlaylistEntryPath(line, baseDir); ok {
			entries = append(entries, p)
		}
	}
	return entries
}

func parsePLS(scanner *bufio.Scanner, baseDir string) []string {
	entries := make([]string, 0)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		if val == "" || !isPLSFileKey(key) {
			continue
		}

		if p, ok := resolvePlaylistEntryPath(val, baseDir); ok {
			entries = append(entries, p)
		}
	}
	return entries
}

func isPLSFileKey(key string) bool {
	if len(key) < len("File") || !strings.EqualFold(key[:len("File")], "File") {
		return false
	}
	rest := key[len("File"):]
	if rest == "" {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return false
		}
	}
	return true
}

func resolvePlaylistEntryPath(raw, baseDir string) (string, bool) {
	raw = strings.Trim(raw, "\"")
	if strings.Contains(raw, "://") {
		return "", false
	}
	p := filepath.Clean(raw)
	if filepath.IsAbs(p) {
		return p, true
	}
	return filepath.Clean(filepath.Join(baseDir, p)), true
}
