package cover

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"tebeosfera-scraper/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatcher() *Matcher {
	return NewMatcher(config.DefaultMatchConfig(), nil)
}

// gradient fades from white on the left to black on the right
func gradient(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(255 - x*255/(w-1))
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func solid(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func checker(w, h, cell int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
			} else {
				img.Set(x, y, color.RGBA{R: 20, G: 20, B: 120, A: 255})
			}
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCompare_IdenticalImages(t *testing.T) {
	m := newTestMatcher()
	img := gradient(120, 160)

	got := m.Compare(img, img)
	assert.InDelta(t, 100, got.PerceptualScore, 1e-9)
	assert.InDelta(t, 100, got.HistogramScore, 1e-6)
	assert.InDelta(t, 100, got.CombinedScore, 1e-6)
}

func TestCompare_MissingImage(t *testing.T) {
	m := newTestMatcher()
	assert.Zero(t, m.Compare(nil, gradient(10, 10)))
	assert.Zero(t, m.Compare(gradient(10, 10), nil))
}

func TestBestMatch_PicksIdenticalCover(t *testing.T) {
	m := newTestMatcher()
	ref := gradient(120, 160)

	candidates := []image.Image{
		solid(80, 80, color.RGBA{R: 255, A: 255}),
		gradient(120, 160),
		checker(120, 160, 10),
	}

	result := m.BestMatch(ref, candidates)
	require.Len(t, result.Scores, 3)
	assert.Equal(t, 1, result.BestIndex)
	assert.InDelta(t, 100, result.Scores[1], 1e-6)
	assert.Less(t, result.Scores[0], result.Scores[1])
	assert.Less(t, result.Scores[2], result.Scores[1])
}

func TestBestMatch_ScalesDoNotMatter(t *testing.T) {
	m := newTestMatcher()

	result := m.BestMatch(gradient(300, 400), []image.Image{checker(60, 80, 5), gradient(60, 80)})
	assert.Equal(t, 1, result.BestIndex)
}

func TestBestMatch_PermutationInvariant(t *testing.T) {
	m := newTestMatcher()
	ref := checker(100, 100, 10)

	a := solid(50, 50, color.RGBA{G: 255, A: 255})
	b := checker(100, 100, 10)
	c := gradient(100, 100)

	forward := m.BestMatch(ref, []image.Image{a, b, c})
	reversed := m.BestMatch(ref, []image.Image{c, b, a})

	assert.Equal(t, 1, forward.BestIndex)
	assert.Equal(t, 1, reversed.BestIndex)
	assert.Equal(t, forward.Scores[0], reversed.Scores[2])
	assert.Equal(t, forward.Scores[1], reversed.Scores[1])
	assert.Equal(t, forward.Scores[2], reversed.Scores[0])
}

func TestBestMatch_FirstOfEqualScoresWins(t *testing.T) {
	m := newTestMatcher()
	ref := gradient(64, 64)

	result := m.BestMatch(ref, []image.Image{gradient(64, 64), gradient(64, 64)})
	assert.Equal(t, 0, result.BestIndex)
	assert.Equal(t, result.Scores[0], result.Scores[1])
}

func TestBestMatch_NoMatch(t *testing.T) {
	m := newTestMatcher()

	result := m.BestMatch(gradient(10, 10), nil)
	assert.Equal(t, -1, result.BestIndex)
	assert.NotNil(t, result.Scores)
	assert.Empty(t, result.Scores)

	result = m.BestMatch(nil, []image.Image{gradient(10, 10)})
	assert.Equal(t, -1, result.BestIndex)
	assert.Empty(t, result.Scores)

	result = m.BestMatch(gradient(10, 10), []image.Image{nil, nil})
	assert.Equal(t, -1, result.BestIndex)
	assert.Equal(t, []float64{0, 0}, result.Scores)
}

func TestBestMatchBytes(t *testing.T) {
	m := newTestMatcher()
	ref := encodePNG(t, gradient(90, 120))

	result := m.BestMatchBytes(ref, [][]byte{[]byte("no es una imagen"), nil, encodePNG(t, gradient(90, 120))})
	require.Len(t, result.Scores, 3)
	assert.Zero(t, result.Scores[0])
	assert.Zero(t, result.Scores[1])
	assert.Equal(t, 2, result.BestIndex)

	result = m.BestMatchBytes([]byte("roto"), [][]byte{ref})
	assert.Equal(t, -1, result.BestIndex)
	assert.Empty(t, result.Scores)
}

func TestDifferenceHash(t *testing.T) {
	bits := DifferenceHash(gradient(50, 50), 8)
	require.Len(t, bits, 64)
	for _, b := range bits {
		assert.True(t, b, "every pixel is brighter than its right neighbour")
	}

	assert.Nil(t, DifferenceHash(nil, 8))
	assert.Nil(t, DifferenceHash(gradient(5, 5), 0))
}

func TestHashSimilarity(t *testing.T) {
	a := []bool{true, true, false, false}
	b := []bool{true, false, false, true}

	assert.Equal(t, 2, HammingDistance(a, b))
	assert.InDelta(t, 50, HashSimilarity(a, b), 1e-9)
	assert.Equal(t, -1, HammingDistance(a, b[:3]))
	assert.Zero(t, HashSimilarity(a, b[:3]))
	assert.Zero(t, HashSimilarity(nil, nil))
}

func TestColorHistogram(t *testing.T) {
	hist := ColorHistogram(checker(40, 40, 4), 100)
	require.Len(t, hist, 3*bucketsPerChannel)

	sum := 0.0
	for _, v := range hist {
		sum += v
	}
	assert.InDelta(t, 1, sum, 1e-9)

	red := ColorHistogram(solid(10, 10, color.RGBA{R: 255, A: 255}), 10)
	blue := ColorHistogram(solid(10, 10, color.RGBA{B: 255, A: 255}), 10)
	// only the zero bucket of green is shared
	assert.InDelta(t, 100.0/3, Intersection(red, blue), 1e-9)
	assert.Zero(t, Intersection(red, blue[:10]))
	assert.Zero(t, Intersection(nil, nil))
}

func TestDecoder(t *testing.T) {
	var d Decoder

	img, err := d.Decode(encodePNG(t, gradient(4, 3)))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	_, err = d.Decode(nil)
	assert.Error(t, err)
	_, err = d.Decode([]byte("GIF89a roto"))
	assert.Error(t, err)
}
