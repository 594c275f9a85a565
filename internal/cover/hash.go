package cover

import (
	"image"

	"golang.org/x/image/draw"
)

// DifferenceHash returns the size×size dHash of img: the image is reduced to
// a (size+1)×size grayscale grid and each bit says whether a pixel is brighter
// than its right neighbour.
func DifferenceHash(img image.Image, size int) []bool {
	if img == nil || size <= 0 {
		return nil
	}

	gray := image.NewGray(image.Rect(0, 0, size+1, size))
	draw.CatmullRom.Scale(gray, gray.Bounds(), img, img.Bounds(), draw.Src, nil)

	bits := make([]bool, 0, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			bits = append(bits, gray.GrayAt(x, y).Y > gray.GrayAt(x+1, y).Y)
		}
	}
	return bits
}

// HammingDistance counts differing bits, or returns -1 when the hashes have
// different lengths.
func HammingDistance(a, b []bool) int {
	if len(a) != len(b) {
		return -1
	}
	distance := 0
	for i := range a {
		if a[i] != b[i] {
			distance++
		}
	}
	return distance
}

// HashSimilarity maps the Hamming distance onto 0..100. Hashes that cannot
// be compared score 0.
func HashSimilarity(a, b []bool) float64 {
	distance := HammingDistance(a, b)
	if distance < 0 || len(a) == 0 {
		return 0
	}
	return 100 * (1 - float64(distance)/float64(len(a)))
}
