package content

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// fileNamePattern matches <slug>.<lang>.md or <slug>.<lang>.mdx. Anything
// else in the posts directory is not content and is skipped.
var fileNamePattern = regexp.MustCompile(`^(.+)\.(en|ko)\.(md|mdx)$`)

const parseConcurrency = 8

// Store reads and parses post source files from a directory. It never
// mutates the directory; every load re-reads the filesystem.
type Store struct {
	dir    string
	logger *zap.Logger
}

func NewStore(dir string, logger *zap.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// LoadAll parses every content file in the directory. A missing or
// unreadable directory yields an empty set: "no content" is a valid state,
// not a failure. Result order follows directory traversal order (sorted by
// file name), which keeps downstream tie-breaking deterministic.
func (s *Store) LoadAll() []*SourceDocument {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("Posts directory unreadable, serving empty content set",
			zap.String("dir", s.dir),
			zap.Error(err),
		)
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if fileNamePattern.MatchString(entry.Name()) {
			names = append(names, entry.Name())
		}
	}

	p := pool.New().WithMaxGoroutines(parseConcurrency)
	results := make([]*SourceDocument, len(names))
	resultsMu := sync.Mutex{}

	for idx, name := range names {
		idx, name := idx, name
		p.Go(func() {
			doc := s.parseFile(name)
			resultsMu.Lock()
			results[idx] = doc
			resultsMu.Unlock()
		})
	}

	p.Wait()

	docs := make([]*SourceDocument, 0, len(results))
	for _, doc := range results {
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	return docs
}

// LoadSlug parses only the files belonging to one slug.
func (s *Store) LoadSlug(slug string) []*SourceDocument {
	docs := make([]*SourceDocument, 0, 2)
	for _, doc := range s.LoadAll() {
		if doc.Slug == slug {
			docs = append(docs, doc)
		}
	}
	return docs
}

// parseFile reads one content file. Any per-file failure is contained here:
// the file is skipped with a warning and never aborts the whole load.
func (s *Store) parseFile(name string) *SourceDocument {
	match := fileNamePattern.FindStringSubmatch(name)
	if match == nil {
		return nil
	}
	slug, lang := match[1], Language(match[2])

	path := filepath.Join(s.dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("Failed to read post file, skipping",
			zap.String("file", name),
			zap.Error(err),
		)
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		s.logger.Warn("Failed to stat post file, skipping",
			zap.String("file", name),
			zap.Error(err),
		)
		return nil
	}

	meta, body := SplitFrontmatter(string(raw))

	var fm Frontmatter
	if meta != "" {
		if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
			s.logger.Warn("Malformed frontmatter, skipping file",
				zap.String("file", name),
				zap.Error(err),
			)
			return nil
		}
	}

	return &SourceDocument{
		Slug:        slug,
		Lang:        lang,
		Frontmatter: fm,
		Body:        body,
		ModTime:     info.ModTime(),
	}
}
