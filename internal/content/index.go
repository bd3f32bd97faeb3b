package content

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jinlee/portfolio-server-go/internal/cache"
	"github.com/jinlee/portfolio-server-go/pkg/errors"
)

const compiledPostTTL = time.Hour

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Service pairs language variants by slug and serves the two read paths:
// the full index listing and a single compiled post.
type Service struct {
	store    *Store
	compiler *Compiler
	cache    *cache.Cache
	logger   *zap.Logger
}

// NewService wires the content pipeline. cache may be nil; every lookup
// then compiles from source.
func NewService(store *Store, compiler *Compiler, c *cache.Cache, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		compiler: compiler,
		cache:    c,
		logger:   logger,
	}
}

type pair struct {
	slug string
	en   *SourceDocument
	ko   *SourceDocument
}

func (p *pair) complete() bool {
	return p.en != nil && p.ko != nil
}

// groupBySlug preserves encounter order so that equal-date entries sort the
// same way on every call regardless of map iteration order.
func groupBySlug(docs []*SourceDocument) []*pair {
	bySlug := make(map[string]*pair)
	ordered := make([]*pair, 0, len(docs)/2)

	for _, doc := range docs {
		p, ok := bySlug[doc.Slug]
		if !ok {
			p = &pair{slug: doc.Slug}
			bySlug[doc.Slug] = p
			ordered = append(ordered, p)
		}
		switch doc.Lang {
		case LangEN:
			p.en = doc
		case LangKO:
			p.ko = doc
		}
	}
	return ordered
}

func (p *pair) indexEntry() IndexEntry {
	return IndexEntry{
		Slug:      p.slug,
		TitleEN:   p.en.Frontmatter.Title,
		TitleKO:   p.ko.Frontmatter.Title,
		ExcerptEN: p.en.Frontmatter.Excerpt,
		ExcerptKO: p.ko.Frontmatter.Excerpt,
		Date:      p.en.Frontmatter.Date,
		ReadTime:  p.en.Frontmatter.ReadTime,
		Category:  p.en.Frontmatter.Category,
		Tags:      p.en.Frontmatter.Tags,
		Image:     p.en.Frontmatter.Image,
	}
}

// BuildIndex returns every complete language pair, newest first. Incomplete
// pairs are excluded from the result but reported in the logs so missing
// translations do not vanish silently.
func (s *Service) BuildIndex() []IndexEntry {
	docs := s.store.LoadAll()
	pairs := groupBySlug(docs)

	entries := make([]IndexEntry, 0, len(pairs))
	incomplete := make([]string, 0)
	for _, p := range pairs {
		if !p.complete() {
			incomplete = append(incomplete, p.slug)
			continue
		}
		entries = append(entries, p.indexEntry())
	}

	if len(incomplete) > 0 {
		s.logger.Warn("Posts missing a translation, excluded from index",
			zap.Strings("slugs", incomplete),
		)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return parseDate(entries[i].Date).After(parseDate(entries[j].Date))
	})

	return entries
}

// GetPost compiles both language bodies for one slug. Slugs without a
// complete pair yield a not-found error, never a crash.
func (s *Service) GetPost(ctx context.Context, slug string) (*CompiledPost, error) {
	docs := s.store.LoadSlug(slug)
	pairs := groupBySlug(docs)

	var p *pair
	if len(pairs) > 0 {
		p = pairs[0]
	}
	if p == nil || !p.complete() {
		return nil, errors.NewNotFoundError("post not found", map[string]any{
			"slug": slug,
		})
	}

	cacheKey := fmt.Sprintf("portfolio:post:%s:%d:%d",
		slug, p.en.ModTime.UnixNano(), p.ko.ModTime.UnixNano())

	if s.cache != nil {
		var cached CompiledPost
		if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
			return &cached, nil
		}
	}

	contentEN, err := s.compiler.Compile(p.en.Body)
	if err != nil {
		return nil, errors.New("failed to compile post", errors.KindInternal, 500, map[string]any{
			"slug": slug,
			"lang": LangEN,
		}).WithCause(err)
	}
	contentKO, err := s.compiler.Compile(p.ko.Body)
	if err != nil {
		return nil, errors.New("failed to compile post", errors.KindInternal, 500, map[string]any{
			"slug": slug,
			"lang": LangKO,
		}).WithCause(err)
	}

	post := &CompiledPost{
		IndexEntry: p.indexEntry(),
		ContentEN:  contentEN,
		ContentKO:  contentKO,
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, post, compiledPostTTL)
	}

	return post, nil
}

// parseDate is lenient: an unparsable date sorts as the zero time (last),
// deterministically, instead of aborting the index.
func parseDate(value string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
