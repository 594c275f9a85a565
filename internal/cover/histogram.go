package cover

import (
	"image"

	"golang.org/x/image/draw"
)

const bucketsPerChannel = 256

// Histogram is a normalized R, G, B histogram laid out channel after channel
type Histogram []float64

// ColorHistogram scales img to size×size and counts every channel value.
// Buckets are divided by the total count of all three channels, so a
// histogram sums to 1.
func ColorHistogram(img image.Image, size int) Histogram {
	if img == nil || size <= 0 {
		return nil
	}

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(rgba, rgba.Bounds(), img, img.Bounds(), draw.Src, nil)

	counts := make([]int, 3*bucketsPerChannel)
	for i := 0; i < len(rgba.Pix); i += 4 {
		counts[rgba.Pix[i]]++
		counts[bucketsPerChannel+int(rgba.Pix[i+1])]++
		counts[2*bucketsPerChannel+int(rgba.Pix[i+2])]++
	}

	total := float64(3 * size * size)
	hist := make(Histogram, len(counts))
	for i, c := range counts {
		hist[i] = float64(c) / total
	}
	return hist
}

// Intersection sums the per-bucket minimum of two histograms, scaled to 0..100
func Intersection(a, b Histogram) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	sum := 0.0
	for i := range a {
		sum += min(a[i], b[i])
	}
	return sum * 100
}
