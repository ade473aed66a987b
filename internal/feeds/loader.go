// Package feeds reads supplier feeds and store extracts from a directory of
// downloaded files.
package feeds

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/logging"
	"github.com/agentstation/stockmap/pkg/reconciler"
	"github.com/agentstation/stockmap/pkg/suppliers"
	"github.com/agentstation/stockmap/pkg/table"
)

// Loader finds and reads supplier files under a data directory.
type Loader struct {
	Dir string
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

var _ reconciler.FeedSource = (*Loader)(nil)

// File is a matched feed file.
type File struct {
	Path    string
	ModTime time.Time
}

// Load implements reconciler.FeedSource. Every error it returns satisfies
// errors.IsSourceUnavailable.
func (l *Loader) Load(ctx context.Context, s *suppliers.Supplier) (*reconciler.Feed, error) {
	logger := logging.FromContext(ctx)
	code := string(s.Code)

	files, err := l.Resolve(s)
	if err != nil {
		return nil, errors.WrapSourceUnavailable(code, l.Dir, err)
	}

	feed := &reconciler.Feed{}
	for _, c := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := ReadFile(c.Path, s.Format)
		if err != nil {
			return nil, errors.WrapSourceUnavailable(code, c.Path, err)
		}
		logger.Debug().
			Str("file", c.Path).
			Int("rows", t.Len()).
			Msg("Read supplier file")
		feed.Tables = append(feed.Tables, t)
		feed.Files = append(feed.Files, c.Path)
		if c.ModTime.After(feed.ReceivedAt) {
			feed.ReceivedAt = c.ModTime
		}
	}
	return feed, nil
}

// Resolve picks the files to read for s. Multi-file suppliers take the
// newest match of every pattern; others take the newest match overall.
func (l *Loader) Resolve(s *suppliers.Supplier) ([]File, error) {
	var all []File
	var perPattern []File

	for _, pattern := range s.Files {
		matches, err := l.match(pattern, s.NameLength)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			if s.MultiFile {
				return nil, errors.NewNotFoundError("file", filepath.Join(l.Dir, pattern))
			}
			continue
		}
		perPattern = append(perPattern, matches[0])
		all = append(all, matches...)
	}

	if s.MultiFile {
		return perPattern, nil
	}
	if len(all) == 0 {
		return nil, errors.NewNotFoundError("file", filepath.Join(l.Dir, s.Files[0]))
	}
	sortNewest(all)
	return all[:1], nil
}

// match globs pattern under the data directory, newest first.
func (l *Loader) match(pattern string, nameLength int) ([]File, error) {
	paths, err := filepath.Glob(filepath.Join(l.Dir, pattern))
	if err != nil {
		return nil, errors.WrapIO("glob", pattern, err)
	}

	var out []File
	for _, p := range paths {
		if nameLength > 0 && len(filepath.Base(p)) != nameLength {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, File{Path: p, ModTime: info.ModTime()})
	}
	sortNewest(out)
	return out, nil
}

func sortNewest(cs []File) {
	sort.SliceStable(cs, func(i, j int) bool {
		if !cs[i].ModTime.Equal(cs[j].ModTime) {
			return cs[i].ModTime.After(cs[j].ModTime)
		}
		return cs[i].Path > cs[j].Path
	})
}

// ReadOptional reads an extract when path is set and returns nil otherwise.
func ReadOptional(path string) (*table.Table, error) {
	if path == "" {
		return nil, nil
	}
	return ReadExtract(path)
}
