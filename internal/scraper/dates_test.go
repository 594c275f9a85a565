package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw    string
		want   Date
		wantOK bool
	}{
		{raw: "18-XI-2025", want: Date{Day: 18, Month: 11, Year: 2025}, wantOK: true},
		{raw: "20-04-1998", want: Date{Day: 20, Month: 4, Year: 1998}, wantOK: true},
		{raw: "Madrid, 3-ii-1987, 1,50 €", want: Date{Day: 3, Month: 2, Year: 1987}, wantOK: true},
		{raw: "5/6/2001", want: Date{Day: 5, Month: 6, Year: 2001}, wantOK: true},
		{raw: "18-XIV-2025"},
		{raw: "18-IIII-2025"},
		{raw: "31-II-2020"},
		{raw: "20-13-1998"},
		{raw: "sin fecha"},
		{raw: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_InvalidRomanIsNotRetriedAsNumeric(t *testing.T) {
	// the numeric form appears later in the text but the Roman match wins first
	_, ok := ParseDate("1-L-1990 / 01-02-1990")
	assert.False(t, ok)
}
