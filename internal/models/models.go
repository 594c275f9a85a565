package models

import "time"

// Kind identifies the type of remote entity a candidate stub points at
type Kind string

const (
	KindSeries Kind = "series"
	KindSaga   Kind = "saga"
	KindIssue  Kind = "issue"
)

// CandidateStub is a lightweight pointer to a remote entity found in search or listing results
type CandidateStub struct {
	Kind              Kind   `json:"kind"`
	Key               string `json:"key"`
	DisplayTitle      string `json:"displayTitle"`
	DerivedSeriesName string `json:"derivedSeriesName,omitempty"`
	DerivedIssueTitle string `json:"derivedIssueTitle,omitempty"`
	ThumbnailURL      string `json:"thumbnailUrl,omitempty"`
	FullImageURL      string `json:"fullImageUrl,omitempty"`
	URL               string `json:"url"`
}

// Ref returns the typed reference the stub resolves to
func (c CandidateStub) Ref() Ref {
	switch c.Kind {
	case KindIssue:
		return IssueKey(c.Key)
	case KindSaga:
		return SagaKey(c.Key)
	default:
		return SeriesKey(c.Key)
	}
}

// SeriesGroup folds search candidates into one entry per series. Issues
// without a series result of their own are grouped by their series name.
type SeriesGroup struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Kind         Kind   `json:"kind"`
	IssueCount   int    `json:"issueCount"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	FullImageURL string `json:"fullImageUrl,omitempty"`
}

// IssueRecord is the normalized metadata extracted from one issue detail page.
// Optional numbers are nil when the page does not carry them.
type IssueRecord struct {
	Key         string `json:"key,omitempty"`
	Title       string `json:"title,omitempty"`
	SeriesName  string `json:"seriesName,omitempty"`
	IssueNumber string `json:"issueNumber,omitempty"`
	TotalCount  *int   `json:"totalCount,omitempty"`
	VolumeYear  *int   `json:"volumeYear,omitempty"`

	Publisher         string `json:"publisher,omitempty"`
	PublisherLocation string `json:"publisherLocation,omitempty"`
	PublisherCountry  string `json:"publisherCountry,omitempty"`
	Imprint           string `json:"imprint,omitempty"`
	CollectionURL     string `json:"collectionUrl,omitempty"`

	Summary         string `json:"summary,omitempty"`
	Language        string `json:"language,omitempty"`
	Edition         string `json:"edition,omitempty"`
	PublicationType string `json:"publicationType,omitempty"`
	Format          string `json:"format,omitempty"`
	Binding         string `json:"binding,omitempty"`
	Dimensions      string `json:"dimensions,omitempty"`
	PageCount       *int   `json:"pageCount,omitempty"`
	Color           string `json:"color,omitempty"`
	Price           string `json:"price,omitempty"`
	Currency        string `json:"currency,omitempty"`

	OriginTitle     string `json:"originTitle,omitempty"`
	OriginPublisher string `json:"originPublisher,omitempty"`
	OriginCountry   string `json:"originCountry,omitempty"`

	ISBN         string `json:"isbn,omitempty"`
	LegalDeposit string `json:"legalDeposit,omitempty"`
	WebURL       string `json:"webUrl,omitempty"`

	ReleaseDate string `json:"releaseDate,omitempty"`
	Day         *int   `json:"day,omitempty"`
	Month       *int   `json:"month,omitempty"`
	Year        *int   `json:"year,omitempty"`

	Writers        []string `json:"writers,omitempty"`
	Pencillers     []string `json:"pencillers,omitempty"`
	Inkers         []string `json:"inkers,omitempty"`
	Colorists      []string `json:"colorists,omitempty"`
	Letterers      []string `json:"letterers,omitempty"`
	CoverArtists   []string `json:"coverArtists,omitempty"`
	Editors        []string `json:"editors,omitempty"`
	Translators    []string `json:"translators,omitempty"`
	AdaptedAuthors []string `json:"adaptedAuthors,omitempty"`

	Genres                []string `json:"genres,omitempty"`
	Characters            []string `json:"characters,omitempty"`
	StoryArcs             []string `json:"storyArcs,omitempty"`
	ImageURLs             []string `json:"imageUrls,omitempty"`
	DistributionCountries []string `json:"distributionCountries,omitempty"`
}

// SimilarityResult holds the scores of one image pair comparison
type SimilarityResult struct {
	PerceptualScore float64 `json:"perceptualScore"`
	HistogramScore  float64 `json:"histogramScore"`
	CombinedScore   float64 `json:"combinedScore"`
}

// MatchResult ranks N candidates against a reference image.
// Scores is aligned with the candidate input order.
type MatchResult struct {
	BestIndex int       `json:"bestIndex"`
	Scores    []float64 `json:"scores"`
}

// ErrorResponse represents error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Metadata contains request metadata
type Metadata struct {
	URL        string    `json:"url,omitempty"`
	ScrapedAt  time.Time `json:"scrapedAt"`
	DurationMs int64     `json:"durationMs"`
}

// SearchResponse is the API payload for a search or issue listing
type SearchResponse struct {
	Results  []CandidateStub `json:"results"`
	Metadata Metadata        `json:"metadata"`
}

// SeriesResponse is the API payload for grouped search results
type SeriesResponse struct {
	Results  []SeriesGroup `json:"results"`
	Metadata Metadata      `json:"metadata"`
}

// MatchResponse is the API payload for a cover match
type MatchResponse struct {
	Match      MatchResult     `json:"match"`
	Candidates []CandidateStub `json:"candidates"`
	Metadata   Metadata        `json:"metadata"`
}

// IssueResponse is the API payload for a single issue
type IssueResponse struct {
	Issue    *IssueRecord `json:"issue"`
	Metadata Metadata     `json:"metadata"`
}
