package scraper

import (
	"strings"
	"unicode/utf8"
)

// ParagraphQuality represents how likely a paragraph is to be a narrative summary
type ParagraphQuality struct {
	Score         int  `json:"score"`         // length plus keyword weighting
	Length        int  `json:"length"`        // characters, not bytes
	NarrativeHits int  `json:"narrativeHits"` // distinct narrative keywords found
	MetadataHits  int  `json:"metadataHits"`  // distinct production/metadata keywords found
	HasQuotes     bool `json:"hasQuotes"`     // quotation marks anywhere
	Skip          bool `json:"skip"`          // pure metadata, never a candidate
}

// Score weights for the paragraph fallback
const (
	narrativeKeywordBonus = 500
	quoteBonus            = 300
	mixedMetadataPenalty  = 50
	pureMetadataPenalty   = 150
	pureMetadataSkipHits  = 2
)

// ScoreParagraph analyzes a paragraph and returns its synopsis score
func ScoreParagraph(text string) ParagraphQuality {
	if text == "" {
		return ParagraphQuality{Skip: true}
	}

	q := ParagraphQuality{
		Length:        utf8.RuneCountInString(text),
		NarrativeHits: CountAny(text, NarrativeKeywords),
		MetadataHits:  CountAny(text, MetadataKeywords),
		HasQuotes:     hasQuotes(text),
	}
	q.Score = calculateParagraphScore(q)

	if q.MetadataHits >= pureMetadataSkipHits && !q.narrative() {
		q.Skip = true
	}
	return q
}

func (q ParagraphQuality) narrative() bool {
	return q.NarrativeHits > 0 || q.HasQuotes
}

// calculateParagraphScore only penalizes metadata heavily when no narrative
// signal is present; mixed paragraphs keep most of their bonus.
func calculateParagraphScore(q ParagraphQuality) int {
	score := q.Length

	if q.narrative() {
		score += narrativeKeywordBonus * q.NarrativeHits
		if q.HasQuotes {
			score += quoteBonus
		}
		score -= mixedMetadataPenalty * q.MetadataHits
	} else {
		score -= pureMetadataPenalty * q.MetadataHits
	}

	return score
}

// BestParagraph returns the highest scoring paragraph longer than minLen.
// The first paragraph wins ties and only positive scores count.
func BestParagraph(paragraphs []string, minLen int) string {
	best, bestScore := "", 0
	for _, p := range paragraphs {
		if utf8.RuneCountInString(p) <= minLen {
			continue
		}
		q := ScoreParagraph(p)
		if q.Skip {
			continue
		}
		if q.Score > bestScore {
			best, bestScore = p, q.Score
		}
	}
	return best
}

func hasQuotes(text string) bool {
	for _, q := range QuoteMarks {
		if strings.Contains(text, q) {
			return true
		}
	}
	return false
}
