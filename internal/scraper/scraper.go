// Package scraper reads tebeosfera.com: it classifies search and listing
// pages into candidates, extracts issue records, discovers issue-list
// endpoints and feeds candidate covers to the cover matcher.
package scraper

import (
	"context"
	"fmt"
	"image"
	"log"
	"net/url"
	"strings"
	"time"
	"unicode"

	"tebeosfera-scraper/internal/config"
	"tebeosfera-scraper/internal/cover"
	"tebeosfera-scraper/internal/models"

	"golang.org/x/sync/errgroup"
)

// Scraper wires a PageFetcher to the page parsers
type Scraper struct {
	config    *config.Config
	fetcher   PageFetcher
	sections  *SectionClassifier
	extractor *IssueExtractor
	endpoints *EndpointResolver
	matcher   *cover.Matcher
	logger    *log.Logger
}

// NewScraper builds a scraper over fetcher. The memo may be shared between
// scrapers; nil starts an empty one.
func NewScraper(cfg *config.Config, fetcher PageFetcher, memo *EndpointMemo, logger *log.Logger) *Scraper {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = log.Default()
	}
	base := cfg.Scrape.BaseURL
	return &Scraper{
		config:    cfg,
		fetcher:   fetcher,
		sections:  NewSectionClassifier(base),
		extractor: NewIssueExtractor(base),
		endpoints: NewEndpointResolver(fetcher, memo, cfg.Endpoints),
		matcher:   cover.NewMatcher(cfg.Match, cover.Decoder{}),
		logger:    logger,
	}
}

// withTimeout bounds one scraper operation by the configured request timeout
func (s *Scraper) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(s.config.Scrape.TimeoutMs)*time.Millisecond)
}

// SearchURL builds the free-text search page URL for query
func (s *Scraper) SearchURL(query string) string {
	term := strings.ReplaceAll(strings.TrimSpace(query), " ", "_")
	return strings.TrimRight(s.config.Scrape.BaseURL, "/") + "/buscador/" + url.PathEscape(term) + "/"
}

// Search returns every candidate of the search results page for query
func (s *Scraper) Search(ctx context.Context, query string) ([]models.CandidateStub, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	target := s.SearchURL(query)
	page, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("search %q failed: %w", query, err)
	}

	stubs := s.sections.Classify(page)
	s.logger.Printf("[scraper] search %q: %d candidates", query, len(stubs))
	return stubs, nil
}

// SearchSeries runs Search and folds the candidates into series groups
func (s *Scraper) SearchSeries(ctx context.Context, query string) ([]models.SeriesGroup, error) {
	stubs, err := s.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return GroupSeries(stubs), nil
}

// SeriesIssues lists the issues of a series. The collection page is read
// first; when it carries no issue rows the alternative endpoints are tried.
func (s *Scraper) SeriesIssues(ctx context.Context, seriesKey string) ([]models.CandidateStub, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	target := models.ResolveRef(s.config.Scrape.BaseURL, models.SeriesKey(seriesKey))
	page, fetchErr := s.fetcher.Fetch(ctx, target)
	var seriesID string
	if fetchErr == nil {
		if issues := issuesOnly(s.sections.Classify(page)); len(issues) > 0 {
			s.logger.Printf("[scraper] series %s: %d issues on collection page", seriesKey, len(issues))
			return issues, nil
		}
		seriesID = FindSeriesID(page)
	} else {
		s.logger.Printf("[scraper] series %s: collection page failed: %v", seriesKey, fetchErr)
	}

	body, ok := s.endpoints.Resolve(ctx, seriesKey, seriesID)
	if !ok {
		if fetchErr != nil {
			return nil, fmt.Errorf("list issues of %s failed: %w", seriesKey, fetchErr)
		}
		s.logger.Printf("[scraper] series %s: no endpoint returned an issue list", seriesKey)
		return []models.CandidateStub{}, nil
	}

	winner, _ := s.endpoints.memo.Get(OperationListIssues)
	issues := issuesOnly(s.sections.Classify(body))
	s.logger.Printf("[scraper] series %s: %d issues via %s", seriesKey, len(issues), winner)
	return issues, nil
}

// Issue fetches and extracts one issue page
func (s *Scraper) Issue(ctx context.Context, ref models.Ref) (*models.IssueRecord, error) {
	target := models.ResolveRef(s.config.Scrape.BaseURL, ref)
	if target == "" {
		return nil, &models.InvalidURLError{URL: fmt.Sprint(ref), Err: fmt.Errorf("unresolvable reference")}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	page, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetch issue failed: %w", err)
	}

	record, ok := s.extractor.Extract(page, target)
	if !ok {
		return nil, &models.NotIssuePageError{URL: target}
	}
	return record, nil
}

// FetchImages downloads and decodes urls concurrently. The result is index
// aligned with urls; a failed or empty entry is nil and never stops the batch.
func (s *Scraper) FetchImages(ctx context.Context, urls []string) []image.Image {
	images := make([]image.Image, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.config.Scrape.CoverWorkers))
	for i, u := range urls {
		if u == "" {
			continue
		}
		g.Go(func() error {
			data, err := s.fetcher.FetchBytes(ctx, u)
			if err != nil {
				s.logger.Printf("[scraper] cover %s: %v", u, err)
				return nil
			}
			img, err := s.matcher.Decode(data)
			if err != nil {
				s.logger.Printf("[scraper] cover %s: %v", u, err)
				return nil
			}
			images[i] = img
			return nil
		})
	}
	_ = g.Wait()

	return images
}

// MatchCover ranks the candidates' covers against reference. Each candidate
// contributes its thumbnail, or its full image when it has no thumbnail.
func (s *Scraper) MatchCover(ctx context.Context, reference image.Image, candidates []models.CandidateStub) models.MatchResult {
	urls := make([]string, len(candidates))
	for i, c := range candidates {
		urls[i] = c.ThumbnailURL
		if urls[i] == "" {
			urls[i] = c.FullImageURL
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result := s.matcher.BestMatch(reference, s.FetchImages(ctx, urls))
	s.logger.Printf("[scraper] cover match over %d candidates: best %d", len(candidates), result.BestIndex)
	return result
}

// DecodeImage decodes a local cover with the matcher's decoder
func (s *Scraper) DecodeImage(data []byte) (image.Image, error) {
	return s.matcher.Decode(data)
}

func issuesOnly(stubs []models.CandidateStub) []models.CandidateStub {
	issues := make([]models.CandidateStub, 0, len(stubs))
	for _, st := range stubs {
		if st.Kind == models.KindIssue {
			issues = append(issues, st)
		}
	}
	return issues
}

// GroupSeries folds candidates into one entry per series name, in first-seen
// order. Series and saga candidates keep their own key; issues are counted
// under their series group key, creating a group when none exists yet.
func GroupSeries(stubs []models.CandidateStub) []models.SeriesGroup {
	var groups []models.SeriesGroup
	index := make(map[string]int)

	for _, st := range stubs {
		switch st.Kind {
		case models.KindSeries, models.KindSaga:
			name := st.DerivedSeriesName
			if name == "" {
				name = st.DisplayTitle
			}
			if name == "" {
				name = st.Key
			}
			if _, ok := index[name]; ok {
				continue
			}
			index[name] = len(groups)
			groups = append(groups, models.SeriesGroup{
				Key:          st.Key,
				Name:         name,
				Kind:         st.Kind,
				ThumbnailURL: st.ThumbnailURL,
				FullImageURL: firstNonEmpty(st.FullImageURL, st.ThumbnailURL),
			})

		case models.KindIssue:
			if st.DerivedSeriesName == "" {
				continue
			}
			groupKey := SeriesGroupKey(st.DerivedSeriesName)
			i, ok := index[groupKey]
			if !ok {
				i = len(groups)
				index[groupKey] = i
				groups = append(groups, models.SeriesGroup{
					Key:          slugify(groupKey),
					Name:         strings.TrimSpace(st.DerivedSeriesName),
					Kind:         models.KindIssue,
					ThumbnailURL: st.ThumbnailURL,
					FullImageURL: firstNonEmpty(st.FullImageURL, st.ThumbnailURL),
				})
			}
			groups[i].IssueCount++
		}
	}
	return groups
}

// slugify lowercases name, joins words with "_" and drops punctuation
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.ReplaceAll(name, " ", "_")) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
