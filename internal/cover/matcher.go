// Package cover ranks candidate cover images against a known cover using a
// difference hash and a color histogram.
package cover

import (
	"image"

	"tebeosfera-scraper/internal/config"
	"tebeosfera-scraper/internal/models"
)

// Matcher compares covers with fixed hash and histogram parameters
type Matcher struct {
	config  config.MatchConfig
	decoder ImageDecoder
}

func NewMatcher(cfg config.MatchConfig, decoder ImageDecoder) *Matcher {
	if decoder == nil {
		decoder = Decoder{}
	}
	return &Matcher{config: cfg, decoder: decoder}
}

// Compare scores one pair. A missing image gives all-zero scores.
func (m *Matcher) Compare(a, b image.Image) models.SimilarityResult {
	if a == nil || b == nil {
		return models.SimilarityResult{}
	}

	perceptual := HashSimilarity(
		DifferenceHash(a, m.config.HashSize),
		DifferenceHash(b, m.config.HashSize),
	)
	histogram := Intersection(
		ColorHistogram(a, m.config.HistogramSize),
		ColorHistogram(b, m.config.HistogramSize),
	)

	return models.SimilarityResult{
		PerceptualScore: perceptual,
		HistogramScore:  histogram,
		CombinedScore:   m.config.PerceptualWeight*perceptual + m.config.HistogramWeight*histogram,
	}
}

// BestMatch scores every candidate against ref. Scores keep the candidate
// order; nil candidates score 0. The first highest score wins, and BestIndex
// is -1 when there is no reference, no candidate or no positive score.
func (m *Matcher) BestMatch(ref image.Image, candidates []image.Image) models.MatchResult {
	if ref == nil || len(candidates) == 0 {
		return models.MatchResult{BestIndex: -1, Scores: []float64{}}
	}

	// the reference fingerprints are shared by every comparison
	refHash := DifferenceHash(ref, m.config.HashSize)
	refHist := ColorHistogram(ref, m.config.HistogramSize)

	result := models.MatchResult{BestIndex: -1, Scores: make([]float64, len(candidates))}
	best := 0.0
	for i, c := range candidates {
		if c == nil {
			continue
		}
		perceptual := HashSimilarity(refHash, DifferenceHash(c, m.config.HashSize))
		histogram := Intersection(refHist, ColorHistogram(c, m.config.HistogramSize))
		score := m.config.PerceptualWeight*perceptual + m.config.HistogramWeight*histogram

		result.Scores[i] = score
		if score > best {
			best = score
			result.BestIndex = i
		}
	}
	return result
}

// BestMatchBytes decodes ref and candidates before ranking them. A candidate
// that fails to decode scores 0; an undecodable ref yields no match.
func (m *Matcher) BestMatchBytes(ref []byte, candidates [][]byte) models.MatchResult {
	refImg, err := m.decoder.Decode(ref)
	if err != nil {
		refImg = nil
	}
	return m.BestMatch(refImg, m.DecodeAll(candidates))
}

// DecodeAll decodes each buffer, leaving nil at the index of any failure
func (m *Matcher) DecodeAll(data [][]byte) []image.Image {
	images := make([]image.Image, len(data))
	for i, d := range data {
		if img, err := m.decoder.Decode(d); err == nil {
			images[i] = img
		}
	}
	return images
}

// Decode exposes the matcher's decoder
func (m *Matcher) Decode(data []byte) (image.Image, error) {
	return m.decoder.Decode(data)
}
